package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/otcheredev/call-panel-gateway/internal/middleware"
	"github.com/otcheredev/call-panel-gateway/internal/models"
	"github.com/otcheredev/call-panel-gateway/internal/services"
	"github.com/rs/zerolog/log"
)

// ChannelManager is the tenant-scoped channel administration
type ChannelManager interface {
	List(ctx context.Context, tenantID uuid.UUID) ([]models.Channel, error)
	Create(ctx context.Context, tenantID uuid.UUID, req *models.CreateChannelRequest) (*models.Channel, error)
	Update(ctx context.Context, tenantID uuid.UUID, slug string, req *models.UpdateChannelRequest) (*models.Channel, error)
	Deactivate(ctx context.Context, tenantID uuid.UUID, slug string) (*models.Channel, error)
	RotateKey(ctx context.Context, tenantID uuid.UUID, slug string, meta models.RequestMeta) (*models.Channel, error)
}

type ChannelHandler struct {
	channels ChannelManager
	validate *validator.Validate
}

func NewChannelHandler(channels ChannelManager, validate *validator.Validate) *ChannelHandler {
	return &ChannelHandler{channels: channels, validate: validate}
}

type channelResponse struct {
	Success bool            `json:"success"`
	Channel *models.Channel `json:"channel"`
}

type credentialsResponse struct {
	Success bool                      `json:"success"`
	Channel models.ChannelCredentials `json:"channel"`
}

type channelListResponse struct {
	Success  bool             `json:"success"`
	Channels []models.Channel `json:"channels"`
}

// List returns the tenant's channels
func (h *ChannelHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenant, ok := middleware.GetTenant(ctx)
	if !ok {
		writeFailure(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	channels, err := h.channels.List(ctx, tenant.ID)
	if err != nil {
		log.Error().Err(err).Str("tenant", tenant.Slug).Msg("Failed to list channels")
		writeFailure(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, channelListResponse{Success: true, Channels: channels})
}

// Create adds a channel and returns its secret once
func (h *ChannelHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenant, ok := middleware.GetTenant(ctx)
	if !ok {
		writeFailure(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.CreateChannelRequest
	if issues := decodeRequest(r, h.validate, &req); issues != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request", issues...)
		return
	}

	channel, err := h.channels.Create(ctx, tenant.ID, &req)
	if err != nil {
		h.fail(w, err, "Failed to create channel")
		return
	}
	log.Info().Str("tenant", tenant.Slug).Str("channel", channel.Slug).Msg("Channel created")
	writeJSON(w, http.StatusCreated, credentialsResponse{Success: true, Channel: credentials(channel)})
}

// Update changes a channel's name or active flag
func (h *ChannelHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenant, ok := middleware.GetTenant(ctx)
	if !ok {
		writeFailure(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req models.UpdateChannelRequest
	if issues := decodeRequest(r, h.validate, &req); issues != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request", issues...)
		return
	}

	channel, err := h.channels.Update(ctx, tenant.ID, chi.URLParam(r, "slug"), &req)
	if err != nil {
		h.fail(w, err, "Failed to update channel")
		return
	}
	writeJSON(w, http.StatusOK, channelResponse{Success: true, Channel: channel})
}

// Delete deactivates a channel; its calls are kept
func (h *ChannelHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenant, ok := middleware.GetTenant(ctx)
	if !ok {
		writeFailure(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	channel, err := h.channels.Deactivate(ctx, tenant.ID, chi.URLParam(r, "slug"))
	if err != nil {
		h.fail(w, err, "Failed to deactivate channel")
		return
	}
	writeJSON(w, http.StatusOK, channelResponse{Success: true, Channel: channel})
}

// RotateKey issues a new channel secret
func (h *ChannelHandler) RotateKey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenant, ok := middleware.GetTenant(ctx)
	if !ok {
		writeFailure(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	channel, err := h.channels.RotateKey(ctx, tenant.ID, chi.URLParam(r, "slug"), middleware.RequestMeta(r))
	if err != nil {
		h.fail(w, err, "Failed to rotate channel key")
		return
	}
	writeJSON(w, http.StatusOK, credentialsResponse{Success: true, Channel: credentials(channel)})
}

func (h *ChannelHandler) fail(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, services.ErrChannelNotFound):
		writeFailure(w, http.StatusNotFound, "Channel not found")
	case errors.Is(err, services.ErrSlugTaken):
		writeFailure(w, http.StatusConflict, "Slug already in use")
	default:
		log.Error().Err(err).Msg(msg)
		writeFailure(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

func credentials(c *models.Channel) models.ChannelCredentials {
	return models.ChannelCredentials{Slug: c.Slug, Name: c.Name, APIKey: c.APIKey}
}
