// Package gateway is the websocket side of the service: it authenticates
// displays, tracks room membership and fans events out to rooms.
package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/otcheredev/call-panel-gateway/internal/metrics"
	"github.com/rs/zerolog/log"
)

// CodeRegistrar records pairing codes announced by displays
type CodeRegistrar interface {
	Register(ctx context.Context, code string) error
}

// Options configures connection handling
type Options struct {
	AllowedOrigins []string
	SendBuffer     int
	PingInterval   time.Duration
	WriteWait      time.Duration
	MaxMessageSize int64
}

func (o *Options) setDefaults() {
	if o.SendBuffer <= 0 {
		o.SendBuffer = 32
	}
	if o.PingInterval <= 0 {
		o.PingInterval = 25 * time.Second
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 10 * time.Second
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = 4096
	}
}

// Hub owns every connection and its room memberships
type Hub struct {
	channels ChannelLookup
	verifier TokenVerifier
	opts     Options
	upgrader websocket.Upgrader

	regMu     sync.RWMutex
	registrar CodeRegistrar

	mu      sync.RWMutex
	clients map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}
}

// NewHub creates a hub authenticating against channels with verifier
func NewHub(channels ChannelLookup, verifier TokenVerifier, opts Options) *Hub {
	opts.setDefaults()
	h := &Hub{
		channels: channels,
		verifier: verifier,
		opts:     opts,
		clients:  make(map[*Client]struct{}),
		rooms:    make(map[string]map[*Client]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// SetCodeRegistrar wires the pairing registry after construction
func (h *Hub) SetCodeRegistrar(registrar CodeRegistrar) {
	h.regMu.Lock()
	h.registrar = registrar
	h.regMu.Unlock()
}

func (h *Hub) codeRegistrar() CodeRegistrar {
	h.regMu.RLock()
	defer h.regMu.RUnlock()
	return h.registrar
}

// ChannelRoom returns the room key of a channel
func ChannelRoom(slug string) string {
	return "channel:" + slug
}

// ServeWS authenticates the request, upgrades it and serves the connection
// until it closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	claims, rej := h.authenticate(r)
	if rej != nil {
		metrics.SocketRejections.WithLabelValues(rej.code).Inc()
		log.Warn().Str("reason", rej.code).Str("remote_addr", r.RemoteAddr).Msg("Socket connection rejected")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(rej.status)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": rej.code})
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}

	client := &Client{
		id:     uuid.NewString(),
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, h.opts.SendBuffer),
		claims: claims,
		rooms:  make(map[string]struct{}),
	}
	h.register(client)

	go client.writePump()
	client.readPump()
}

// BroadcastCall sends a call_update to every connection joined to channel.
// An empty channel is logged and ignored.
func (h *Hub) BroadcastCall(channel string, call interface{}) {
	if channel == "" {
		log.Error().Msg("BroadcastCall invoked without a channel; dropping event")
		return
	}
	h.EmitToRoom(ChannelRoom(channel), EventCallUpdate, call)
}

// EmitToRoom sends event to every connection in room. Delivery is
// at-most-once: connections with a full send queue miss the frame.
func (h *Hub) EmitToRoom(room, event string, data interface{}) {
	frame, err := encode(event, data)
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("Failed to encode event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for client := range h.rooms[room] {
		if client.enqueue(frame) {
			delivered++
		}
	}

	metrics.BroadcastsTotal.WithLabelValues(event).Inc()
	log.Debug().Str("room", room).Str("event", event).Int("delivered", delivered).Msg("Event emitted")
}

// ClientCount returns the number of open connections
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomSize returns the number of connections joined to room
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		_ = c.conn.Close()
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	metrics.SocketConnections.Inc()
	evt := log.Info().Str("client", c.id)
	if c.claims != nil {
		evt = evt.Str("channel", c.claims.Channel)
	}
	evt.Msg("Socket connected")
}

// unregister removes c from every room and closes its send queue
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	for room := range c.rooms {
		members := h.rooms[room]
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	close(c.send)
	h.mu.Unlock()

	metrics.SocketConnections.Dec()
	log.Info().Str("client", c.id).Msg("Socket disconnected")
}

func (h *Hub) join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	c.rooms[room] = struct{}{}
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.opts.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
