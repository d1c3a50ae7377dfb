package adapters

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAndValidate maps body onto dst and collects every problem as a
// path-addressed issue. Keys must match the json tags exactly; unknown and
// differently cased keys are ignored.
func decodeAndValidate(source string, body map[string]interface{}, dst interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:    dst,
		TagName:   "json",
		MatchName: func(mapKey, fieldName string) bool { return mapKey == fieldName },
	})
	if err != nil {
		return err
	}

	var issues []FieldIssue
	if err := decoder.Decode(body); err != nil {
		issues = collectDecodeIssues(err, issues)
	}

	if err := validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			issues = appendIssue(issues, FieldIssue{
				Path:    trimRoot(fe.Namespace()),
				Message: issueMessage(fe),
			})
		}
	}

	if len(issues) > 0 {
		return &ValidationError{Source: source, Issues: issues}
	}
	return nil
}

// collectDecodeIssues flattens the joined errors of a mapstructure decode
func collectDecodeIssues(err error, issues []FieldIssue) []FieldIssue {
	switch e := err.(type) {
	case *mapstructure.DecodeError:
		return appendIssue(issues, FieldIssue{Path: e.Name(), Message: decodeMessage(e.Unwrap())})
	case interface{ Unwrap() []error }:
		for _, inner := range e.Unwrap() {
			issues = collectDecodeIssues(inner, issues)
		}
		return issues
	case interface{ Unwrap() error }:
		return collectDecodeIssues(e.Unwrap(), issues)
	default:
		return appendIssue(issues, FieldIssue{Path: "", Message: err.Error()})
	}
}

func decodeMessage(err error) string {
	var typeErr *mapstructure.UnconvertibleTypeError
	if errors.As(err, &typeErr) {
		return "expected " + typeErr.Expected.Type().String() + ", got " + jsonKind(typeErr.Value)
	}
	return err.Error()
}

// jsonKind names a decoded JSON value the way a client would
func jsonKind(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	default:
		return reflect.TypeOf(v).String()
	}
}

// appendIssue keeps the first issue reported for a path
func appendIssue(issues []FieldIssue, issue FieldIssue) []FieldIssue {
	for _, existing := range issues {
		if existing.Path == issue.Path {
			return issues
		}
	}
	return append(issues, issue)
}

func trimRoot(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func issueMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
