package middleware

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/otcheredev/call-panel-gateway/internal/models"
)

type contextKey string

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// RequestMeta collects the caller details recorded in audit logs. RealIP
// has already rewritten RemoteAddr when it runs first.
func RequestMeta(r *http.Request) models.RequestMeta {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return models.RequestMeta{IPAddress: ip, UserAgent: r.UserAgent()}
}
