package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/otcheredev/call-panel-gateway/internal/adapters"
	"github.com/otcheredev/call-panel-gateway/internal/metrics"
	"github.com/otcheredev/call-panel-gateway/internal/models"
	"github.com/rs/zerolog/log"
)

// Normalizer turns a raw upstream body into a canonical call
type Normalizer interface {
	Normalize(raw []byte) (*models.CallEntity, error)
}

// CallStore persists accepted calls
type CallStore interface {
	Create(ctx context.Context, call *models.Call) error
}

// Broadcaster fans a call out to a channel's displays
type Broadcaster interface {
	BroadcastCall(channel string, call interface{})
}

// IngestService accepts calls pushed by queue systems
type IngestService struct {
	normalizer  Normalizer
	calls       CallStore
	broadcaster Broadcaster
}

// NewIngestService creates a new ingest service
func NewIngestService(normalizer Normalizer, calls CallStore, broadcaster Broadcaster) *IngestService {
	return &IngestService{
		normalizer:  normalizer,
		calls:       calls,
		broadcaster: broadcaster,
	}
}

// Ingest normalizes raw, stores it and broadcasts it to channel. Adapter
// errors are returned unwrapped. A call is broadcast only once stored, and
// neither step is cancelled with ctx.
func (s *IngestService) Ingest(ctx context.Context, channel *models.Channel, raw []byte) (*models.CallEntity, error) {
	call, err := s.normalizer.Normalize(raw)
	if err != nil {
		var vErr *adapters.ValidationError
		source := "unknown"
		if errors.As(err, &vErr) {
			source = vErr.Source
		}
		metrics.CallsIngested.WithLabelValues(source, "rejected").Inc()
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)

	record := models.NewCallRecord(channel.ID, call, json.RawMessage(raw))
	if id, err := uuid.Parse(call.ID); err == nil {
		record.ID = id
	}
	if err := s.calls.Create(ctx, record); err != nil {
		metrics.CallsIngested.WithLabelValues(call.RawSource, "error").Inc()
		return nil, fmt.Errorf("failed to persist call: %w", err)
	}
	call.ID = record.ID.String()

	s.broadcaster.BroadcastCall(channel.Slug, *call)

	metrics.CallsIngested.WithLabelValues(call.RawSource, "accepted").Inc()
	log.Info().
		Str("channel", channel.Slug).
		Str("call_id", call.ID).
		Str("source", call.RawSource).
		Bool("priority", call.IsPriority).
		Msg("Call ingested")

	return call, nil
}
