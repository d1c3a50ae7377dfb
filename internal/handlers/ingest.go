package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/otcheredev/call-panel-gateway/internal/adapters"
	"github.com/otcheredev/call-panel-gateway/internal/middleware"
	"github.com/otcheredev/call-panel-gateway/internal/models"
	"github.com/rs/zerolog/log"
)

// CallIngester normalizes, stores and broadcasts an upstream call
type CallIngester interface {
	Ingest(ctx context.Context, channel *models.Channel, raw []byte) (*models.CallEntity, error)
}

type IngestHandler struct {
	ingester CallIngester
	maxBody  int64
}

func NewIngestHandler(ingester CallIngester, maxBody int64) *IngestHandler {
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	return &IngestHandler{ingester: ingester, maxBody: maxBody}
}

type ingestData struct {
	ID      string             `json:"id"`
	Channel string             `json:"channel"`
	Call    *models.CallEntity `json:"call"`
}

type ingestResponse struct {
	Success bool       `json:"success"`
	Data    ingestData `json:"data"`
}

// Ingest accepts a call pushed by a queue system for the authenticated channel
func (h *IngestHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	channel, ok := middleware.GetChannel(ctx)
	if !ok {
		writeFailure(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeFailure(w, http.StatusRequestEntityTooLarge, "Payload too large")
			return
		}
		writeFailure(w, http.StatusBadRequest, "Could not read request body")
		return
	}
	if !json.Valid(raw) {
		writeFailure(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	call, err := h.ingester.Ingest(ctx, channel, raw)
	if err != nil {
		var vErr *adapters.ValidationError
		switch {
		case errors.As(err, &vErr):
			log.Warn().Str("channel", channel.Slug).Str("source", vErr.Source).Msg("Ingest payload failed validation")
			writeFailure(w, http.StatusUnprocessableEntity, "Invalid payload", vErr.Issues...)
		case errors.Is(err, adapters.ErrUnknownFormat):
			log.Warn().Str("channel", channel.Slug).Msg("Ingest payload format not recognized")
			writeFailure(w, http.StatusBadRequest, adapters.ErrUnknownFormat.Error())
		default:
			log.Error().Err(err).Str("channel", channel.Slug).Msg("Failed to ingest call")
			writeFailure(w, http.StatusInternalServerError, "Internal Server Error")
		}
		return
	}

	writeJSON(w, http.StatusOK, ingestResponse{
		Success: true,
		Data:    ingestData{ID: call.ID, Channel: channel.Slug, Call: call},
	})
}
