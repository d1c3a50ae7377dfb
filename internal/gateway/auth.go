package gateway

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/otcheredev/call-panel-gateway/internal/auth"
	"github.com/otcheredev/call-panel-gateway/internal/models"
	"github.com/otcheredev/call-panel-gateway/internal/repository"
	"github.com/rs/zerolog/log"
)

// ChannelLookup finds an active channel by slug
type ChannelLookup interface {
	FindBySlug(ctx context.Context, slug string) (*models.Channel, error)
}

// TokenVerifier checks a credential against a channel secret
type TokenVerifier interface {
	Verify(token, secret string) *models.ChannelClaims
}

type rejection struct {
	status int
	code   string
}

// authenticate resolves the connection's identity. A request without a
// channel slug is anonymous and may only use pairing rooms. Tenant state is
// not consulted here.
func (h *Hub) authenticate(r *http.Request) (*models.ChannelClaims, *rejection) {
	query := r.URL.Query()

	slug := strings.TrimSpace(query.Get("channelSlug"))
	if slug == "" {
		return nil, nil
	}

	token := auth.BearerToken(query.Get("token"))
	if token == "" {
		token = auth.BearerToken(r.Header.Get("Authorization"))
	}
	if token == "" {
		return nil, &rejection{http.StatusUnauthorized, ErrCodeTokenMissing}
	}

	channel, err := h.channels.FindBySlug(r.Context(), slug)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &rejection{http.StatusNotFound, ErrCodeChannelNotFound}
	}
	if err != nil {
		log.Error().Err(err).Str("channel", slug).Msg("Socket auth channel lookup failed")
		return nil, &rejection{http.StatusInternalServerError, ErrCodeInternal}
	}

	claims := h.verifier.Verify(token, channel.APIKey)
	if claims == nil {
		return nil, &rejection{http.StatusUnauthorized, ErrCodeInvalidToken}
	}
	// the signature proves the scope; the slug in the claims is rewritten to
	// the one whose secret verified it
	claims.Channel = channel.Slug
	return claims, nil
}
