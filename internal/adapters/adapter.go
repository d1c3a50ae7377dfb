// Package adapters turns upstream queue-system payloads into canonical calls.
package adapters

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/otcheredev/call-panel-gateway/internal/models"
)

// ErrUnknownFormat is returned when a body matches no known source
var ErrUnknownFormat = errors.New("unknown or unsupported payload format")

// SourceAdapter converts one upstream payload shape into a CallEntity
type SourceAdapter interface {
	// Source is the tag recorded as CallEntity.RawSource
	Source() string
	// Match reports whether the decoded body belongs to this source
	Match(body map[string]interface{}) bool
	// Parse validates the decoded body and maps it; now stands in for
	// missing timestamps
	Parse(body map[string]interface{}, now time.Time) (*models.CallEntity, error)
}

// FieldIssue is a single validation failure addressed by JSON path
type FieldIssue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError lists the field issues of a payload that matched a source
type ValidationError struct {
	Source string
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.Path+": "+issue.Message)
	}
	return fmt.Sprintf("invalid %s payload: %s", e.Source, strings.Join(parts, "; "))
}

// truthy mirrors the loose presence checks upstream integrations rely on
func truthy(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case float64:
		return val != 0
	case json.Number:
		return val.String() != "0"
	default:
		return true
	}
}
