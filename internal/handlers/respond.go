package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/otcheredev/call-panel-gateway/internal/adapters"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// NewValidator returns the request validator shared by handlers
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	return v
}

type failure struct {
	Success bool                  `json:"success"`
	Error   string                `json:"error"`
	Details []adapters.FieldIssue `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeFailure(w http.ResponseWriter, status int, message string, details ...adapters.FieldIssue) {
	writeJSON(w, status, failure{Success: false, Error: message, Details: details})
}

// decodeRequest reads a JSON body into dst and validates it
func decodeRequest(r *http.Request, v *validator.Validate, dst interface{}) []adapters.FieldIssue {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return []adapters.FieldIssue{{Path: "", Message: "invalid JSON body"}}
	}
	err := v.Struct(dst)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []adapters.FieldIssue{{Path: "", Message: err.Error()}}
	}
	issues := make([]adapters.FieldIssue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		issues = append(issues, adapters.FieldIssue{
			Path:    fe.Field(),
			Message: "failed " + fe.Tag() + " validation",
		})
	}
	return issues
}
