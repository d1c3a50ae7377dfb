package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/otcheredev/call-panel-gateway/internal/middleware"
	"github.com/otcheredev/call-panel-gateway/internal/models"
	"github.com/otcheredev/call-panel-gateway/internal/pairing"
	"github.com/otcheredev/call-panel-gateway/internal/services"
	"github.com/rs/zerolog/log"
)

// ChannelFinder looks up an active channel
type ChannelFinder interface {
	FindBySlug(ctx context.Context, slug string) (*models.Channel, error)
}

// PairingValidator consumes a pairing code for a channel
type PairingValidator interface {
	Validate(ctx context.Context, code, slug, secret string) error
}

type PairingHandler struct {
	channels ChannelFinder
	registry PairingValidator
	audit    middleware.AuditRecorder
	validate *validator.Validate
}

func NewPairingHandler(channels ChannelFinder, registry PairingValidator, audit middleware.AuditRecorder, validate *validator.Validate) *PairingHandler {
	return &PairingHandler{
		channels: channels,
		registry: registry,
		audit:    audit,
		validate: validate,
	}
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Validate binds the display waiting on a code to a channel
func (h *PairingHandler) Validate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.PairingValidateRequest
	if issues := decodeRequest(r, h.validate, &req); issues != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request", issues...)
		return
	}

	entry := middleware.RequestMeta(r).Entry(models.AuditPairingValidate, models.AuditStatusFailure)
	entry.ChannelSlug = req.ChannelSlug

	channel, err := h.channels.FindBySlug(ctx, req.ChannelSlug)
	if errors.Is(err, services.ErrChannelNotFound) {
		entry.ErrorMessage = "channel not found"
		h.audit.Record(ctx, entry)
		writeFailure(w, http.StatusNotFound, "Channel not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("channel", req.ChannelSlug).Msg("Pairing channel lookup failed")
		writeFailure(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	entry.TenantID = &channel.TenantID

	if err := h.registry.Validate(ctx, req.Code, channel.Slug, channel.APIKey); err != nil {
		if errors.Is(err, pairing.ErrExpiredOrInvalidCode) {
			log.Warn().Str("channel", channel.Slug).Msg("Pairing rejected: invalid or expired code")
			entry.ErrorMessage = err.Error()
			h.audit.Record(ctx, entry)
			writeFailure(w, http.StatusGone, "Invalid or expired code")
			return
		}
		log.Error().Err(err).Str("channel", channel.Slug).Msg("Pairing validation failed")
		entry.ErrorMessage = "internal error"
		h.audit.Record(ctx, entry)
		writeFailure(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	entry.Status = models.AuditStatusSuccess
	h.audit.Record(ctx, entry)
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Paired successfully"})
}
