package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/otcheredev/call-panel-gateway/internal/models"
	"github.com/otcheredev/call-panel-gateway/internal/services"
	"github.com/rs/zerolog/log"
)

const TenantKey contextKey = "tenant"

// TenantAuthenticator resolves a management token to an active tenant
type TenantAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Tenant, error)
}

// TenantAuth authenticates tenant management calls by x-tenant-token
func TenantAuth(tenants TenantAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("x-tenant-token")
			if token == "" {
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Unauthorized", Message: "x-tenant-token header is required"})
				return
			}

			tenant, err := tenants.Authenticate(r.Context(), token)
			switch {
			case errors.Is(err, services.ErrTenantNotFound), errors.Is(err, services.ErrTenantInactive):
				log.Warn().Err(err).Msg("Tenant authentication rejected")
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Unauthorized", Message: "invalid or inactive tenant"})
				return
			case err != nil:
				log.Error().Err(err).Msg("Tenant authentication failed")
				writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal Server Error"})
				return
			}

			ctx := context.WithValue(r.Context(), TenantKey, tenant)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetTenant extracts the authenticated tenant from context
func GetTenant(ctx context.Context) (*models.Tenant, bool) {
	tenant, ok := ctx.Value(TenantKey).(*models.Tenant)
	return tenant, ok
}
