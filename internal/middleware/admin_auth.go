package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/rs/zerolog/log"
)

// AdminKey guards system administration routes with a shared key
func AdminKey(key string) func(http.Handler) http.Handler {
	expected := []byte(key)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get("x-admin-key")
			if provided == "" {
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Unauthorized", Message: "x-admin-key header is required"})
				return
			}
			if len(expected) == 0 || subtle.ConstantTimeCompare([]byte(provided), expected) != 1 {
				log.Warn().Str("remote_addr", r.RemoteAddr).Str("path", r.URL.Path).Msg("Invalid admin key")
				writeJSON(w, http.StatusForbidden, errorBody{Error: "Forbidden", Message: "invalid admin key"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
