package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Pinger reports whether a backing service answers
type Pinger func(ctx context.Context) error

// ClientCounter reports open socket connections
type ClientCounter interface {
	ClientCount() int
}

type HealthHandler struct {
	database Pinger
	redis    Pinger // nil when pairing codes are kept in memory
	sockets  ClientCounter
	started  time.Time
}

func NewHealthHandler(database, redis Pinger, sockets ClientCounter) *HealthHandler {
	return &HealthHandler{
		database: database,
		redis:    redis,
		sockets:  sockets,
		started:  time.Now(),
	}
}

type healthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Clients   int               `json:"clients"`
	Services  map[string]string `json:"services"`
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	response := healthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Services:  make(map[string]string),
	}
	if h.sockets != nil {
		response.Clients = h.sockets.ClientCount()
	}

	check := func(name string, ping Pinger) {
		if ping == nil {
			return
		}
		if err := ping(ctx); err != nil {
			response.Services[name] = "unhealthy"
			response.Status = "degraded"
			return
		}
		response.Services[name] = "healthy"
	}
	check("database", h.database)
	check("redis", h.redis)

	w.Header().Set("Content-Type", "application/json")
	if response.Status != "healthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(response)
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if h.database == nil || h.database(ctx) != nil {
		http.Error(w, "Service not ready", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
