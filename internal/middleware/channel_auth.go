package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/otcheredev/call-panel-gateway/internal/models"
	"github.com/otcheredev/call-panel-gateway/internal/services"
	"github.com/rs/zerolog/log"
)

const ChannelKey contextKey = "channel"

// ChannelAuthenticator resolves an ingestion credential to its channel
type ChannelAuthenticator interface {
	Authenticate(ctx context.Context, apiKey, slug string) (*models.Channel, error)
}

// AuditRecorder stores audit entries on a best effort basis
type AuditRecorder interface {
	Record(ctx context.Context, entry *models.AuditLog)
}

// ChannelAuth authenticates upstream queue systems by x-auth-token and
// x-channel-id. A valid key whose tenant is switched off gets 403.
func ChannelAuth(channels ChannelAuthenticator, audit AuditRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get("x-auth-token")
			slug := r.Header.Get("x-channel-id")
			if apiKey == "" || slug == "" {
				writeJSON(w, http.StatusBadRequest, errorBody{
					Error:   "Bad Request",
					Message: "x-auth-token and x-channel-id headers are required",
				})
				return
			}

			ctx := r.Context()
			channel, err := channels.Authenticate(ctx, apiKey, slug)
			if errors.Is(err, services.ErrChannelNotFound) {
				log.Warn().Str("channel", slug).Msg("Ingest rejected: invalid channel credentials")
				writeJSON(w, http.StatusUnauthorized, errorBody{
					Error:   "Unauthorized",
					Message: "invalid channel or api key",
				})
				return
			}
			if err != nil {
				log.Error().Err(err).Str("channel", slug).Msg("Channel authentication failed")
				writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal Server Error"})
				return
			}

			if !channel.TenantActive() {
				log.Warn().Str("channel", slug).Str("tenant_id", channel.TenantID.String()).Msg("Ingest rejected: tenant inactive")
				entry := RequestMeta(r).Entry(models.AuditIngestKillSwitch, models.AuditStatusFailure)
				entry.TenantID = &channel.TenantID
				entry.ChannelSlug = channel.Slug
				entry.ErrorMessage = "tenant inactive"
				audit.Record(ctx, entry)

				writeJSON(w, http.StatusForbidden, errorBody{
					Error:   "Forbidden",
					Message: "tenant is inactive",
				})
				return
			}

			ctx = context.WithValue(ctx, ChannelKey, channel)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetChannel extracts the authenticated channel from context
func GetChannel(ctx context.Context) (*models.Channel, bool) {
	channel, ok := ctx.Value(ChannelKey).(*models.Channel)
	return channel, ok
}
