package adapters

import (
	"strings"
	"time"

	"github.com/otcheredev/call-panel-gateway/internal/models"
)

// VersaAdapter parses calls pushed by Versa clinic software
type VersaAdapter struct{}

type versaPayload struct {
	SourceSystem *string    `json:"source_system" validate:"required"`
	CurrentCall  *versaCall `json:"current_call" validate:"required"`
}

type versaCall struct {
	PatientName      *string `json:"patient_name" validate:"required"`
	Destination      *string `json:"destination" validate:"required"`
	ProfessionalName *string `json:"professional_name"`
}

// Source returns the Versa source tag
func (VersaAdapter) Source() string {
	return models.SourceVersa
}

// Match checks for a source_system marker naming Versa
func (VersaAdapter) Match(body map[string]interface{}) bool {
	system, ok := body["source_system"].(string)
	return ok && strings.Contains(system, "Versa")
}

// Parse maps a Versa payload. Versa has no priority or call time.
func (a VersaAdapter) Parse(body map[string]interface{}, now time.Time) (*models.CallEntity, error) {
	var p versaPayload
	if err := decodeAndValidate(a.Source(), body, &p); err != nil {
		return nil, err
	}

	call := &models.CallEntity{
		Name:        *p.CurrentCall.PatientName,
		Destination: *p.CurrentCall.Destination,
		Timestamp:   now,
		IsPriority:  false,
		RawSource:   a.Source(),
	}
	if p.CurrentCall.ProfessionalName != nil {
		call.Professional = *p.CurrentCall.ProfessionalName
	}
	return call, nil
}
