package adapters

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/otcheredev/call-panel-gateway/internal/models"
)

// Normalizer dispatches a raw body to the first matching source adapter
type Normalizer struct {
	adapters []SourceAdapter
	now      func() time.Time
	newID    func() string
}

// NewNormalizer creates a normalizer trying Versa, then NovoSGA
func NewNormalizer() *Normalizer {
	return &Normalizer{
		adapters: []SourceAdapter{VersaAdapter{}, SGAAdapter{}},
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
}

// WithClock replaces the time source used for missing timestamps
func (n *Normalizer) WithClock(now func() time.Time) *Normalizer {
	n.now = now
	return n
}

// Sources lists the source tags in dispatch order
func (n *Normalizer) Sources() []string {
	sources := make([]string, 0, len(n.adapters))
	for _, a := range n.adapters {
		sources = append(sources, a.Source())
	}
	return sources
}

// Normalize converts raw into a CallEntity with a fresh id. It returns
// ErrUnknownFormat when no adapter claims the body and *ValidationError when
// the claiming adapter rejects it.
func (n *Normalizer) Normalize(raw []byte) (*models.CallEntity, error) {
	var body map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&body); err != nil || body == nil {
		return nil, ErrUnknownFormat
	}

	for _, adapter := range n.adapters {
		if !adapter.Match(body) {
			continue
		}
		call, err := adapter.Parse(body, n.now())
		if err != nil {
			return nil, err
		}
		call.ID = n.newID()
		return call, nil
	}

	return nil, ErrUnknownFormat
}
