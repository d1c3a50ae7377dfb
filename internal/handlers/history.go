package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/otcheredev/call-panel-gateway/internal/auth"
	"github.com/otcheredev/call-panel-gateway/internal/models"
	"github.com/otcheredev/call-panel-gateway/internal/services"
	"github.com/rs/zerolog/log"
)

// HistoryReader returns the latest calls of a channel
type HistoryReader interface {
	FindBySlug(ctx context.Context, slug string) (*models.Channel, error)
	History(ctx context.Context, channel *models.Channel) ([]models.CallEntity, error)
}

// CredentialVerifier checks a display credential against a channel secret
type CredentialVerifier interface {
	Verify(token, secret string) *models.ChannelClaims
}

type HistoryHandler struct {
	channels HistoryReader
	verifier CredentialVerifier
}

func NewHistoryHandler(channels HistoryReader, verifier CredentialVerifier) *HistoryHandler {
	return &HistoryHandler{channels: channels, verifier: verifier}
}

type historyResponse struct {
	Success bool                `json:"success"`
	Channel string              `json:"channel"`
	History []models.CallEntity `json:"history"`
}

// History lists recent calls for a display catching up after reconnecting.
// The caller must present a credential signed with the channel's secret.
func (h *HistoryHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	token := auth.BearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized", "message": "bearer token required"})
		return
	}

	channel, err := h.channels.FindBySlug(ctx, slug)
	if errors.Is(err, services.ErrChannelNotFound) {
		writeFailure(w, http.StatusNotFound, "Channel not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("channel", slug).Msg("History channel lookup failed")
		writeFailure(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if h.verifier.Verify(token, channel.APIKey) == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized", "message": "invalid token"})
		return
	}

	history, err := h.channels.History(ctx, channel)
	if err != nil {
		log.Error().Err(err).Str("channel", slug).Msg("Failed to load history")
		writeFailure(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJSON(w, http.StatusOK, historyResponse{Success: true, Channel: channel.Slug, History: history})
}
