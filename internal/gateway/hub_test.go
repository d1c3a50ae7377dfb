package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/otcheredev/call-panel-gateway/internal/auth"
	"github.com/otcheredev/call-panel-gateway/internal/models"
	"github.com/otcheredev/call-panel-gateway/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChannels struct {
	channels map[string]*models.Channel
	err      error
}

func (s *stubChannels) FindBySlug(ctx context.Context, slug string) (*models.Channel, error) {
	if s.err != nil {
		return nil, s.err
	}
	ch, ok := s.channels[slug]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return ch, nil
}

type stubRegistrar struct {
	mu    sync.Mutex
	codes []string
}

func (s *stubRegistrar) Register(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes = append(s.codes, code)
	return nil
}

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type harness struct {
	hub    *Hub
	server *httptest.Server
	signer *auth.TokenSigner
	lookup *stubChannels
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	lookup := &stubChannels{channels: map[string]*models.Channel{
		"recepcao": {Slug: "recepcao", APIKey: "secret-recepcao", IsActive: true},
		"triagem":  {Slug: "triagem", APIKey: "secret-triagem", IsActive: true},
	}}
	signer := auth.NewTokenSigner()
	hub := NewHub(lookup, signer, Options{SendBuffer: 8, PingInterval: time.Second, WriteWait: time.Second})
	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(func() {
		hub.Close()
		server.Close()
	})
	return &harness{hub: hub, server: server, signer: signer, lookup: lookup}
}

func (h *harness) url(query string) string {
	return "ws" + strings.TrimPrefix(h.server.URL, "http") + "/ws" + query
}

func (h *harness) token(t *testing.T, slug, secret string) string {
	t.Helper()
	token, err := h.signer.Issue(slug, secret, time.Hour)
	require.NoError(t, err)
	return token
}

func dial(t *testing.T, url string, header http.Header) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func dialRejected(t *testing.T, url string) (int, string) {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if conn != nil {
		conn.Close()
	}
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	require.NotNil(t, resp)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body["error"]
}

func send(t *testing.T, conn *websocket.Conn, event string, data interface{}) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]interface{}{"event": event, "data": data}))
}

func read(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func expectNoFrame(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	var f frame
	err := conn.ReadJSON(&f)
	var netErr interface{ Timeout() bool }
	require.Error(t, err, "unexpected frame %s", f.Event)
	assert.True(t, errors.As(err, &netErr) && netErr.Timeout())
}

func TestConnectRejections(t *testing.T) {
	h := newHarness(t)
	valid := h.token(t, "recepcao", "secret-recepcao")
	foreign := h.token(t, "recepcao", "secret-triagem")

	tests := []struct {
		name   string
		query  string
		status int
		code   string
	}{
		{"token missing", "?channelSlug=recepcao", http.StatusUnauthorized, ErrCodeTokenMissing},
		{"unknown channel", "?channelSlug=nope&token=" + valid, http.StatusNotFound, ErrCodeChannelNotFound},
		{"garbage token", "?channelSlug=recepcao&token=garbage", http.StatusUnauthorized, ErrCodeInvalidToken},
		{"token for other secret", "?channelSlug=recepcao&token=" + foreign, http.StatusUnauthorized, ErrCodeInvalidToken},
		{"token for other channel", "?channelSlug=triagem&token=" + valid, http.StatusUnauthorized, ErrCodeInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := dialRejected(t, h.url(tt.query))
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestConnectLookupFailure(t *testing.T) {
	h := newHarness(t)
	h.lookup.err = errors.New("connection refused")

	status, code := dialRejected(t, h.url("?channelSlug=recepcao&token=x"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, ErrCodeInternal, code)
}

func TestBroadcastReachesJoinedChannel(t *testing.T) {
	h := newHarness(t)
	token := h.token(t, "recepcao", "secret-recepcao")

	display := dial(t, h.url("?channelSlug=recepcao&token=Bearer%20"+token), nil)
	send(t, display, EventJoinChannel, "recepcao")
	ack := read(t, display)
	require.Equal(t, EventJoined, ack.Event)

	other := dial(t, h.url("?channelSlug=triagem&token="+h.token(t, "triagem", "secret-triagem")), nil)
	send(t, other, EventJoinChannel, "triagem")
	require.Equal(t, EventJoined, read(t, other).Event)

	call := models.CallEntity{ID: "c1", Name: "A001", Destination: "Sala 1 1", IsPriority: true, RawSource: models.SourceNovoSGA}
	h.hub.BroadcastCall("recepcao", call)

	got := read(t, display)
	assert.Equal(t, EventCallUpdate, got.Event)
	var received models.CallEntity
	require.NoError(t, json.Unmarshal(got.Data, &received))
	assert.Equal(t, "A001", received.Name)
	assert.True(t, received.IsPriority)

	expectNoFrame(t, other)
}

func TestBroadcastPreservesOrder(t *testing.T) {
	h := newHarness(t)
	display := dial(t, h.url("?channelSlug=recepcao&token="+h.token(t, "recepcao", "secret-recepcao")), nil)
	send(t, display, EventJoinChannel, "recepcao")
	require.Equal(t, EventJoined, read(t, display).Event)

	for _, name := range []string{"A1", "A2", "A3"} {
		h.hub.BroadcastCall("recepcao", models.CallEntity{Name: name})
	}
	for _, name := range []string{"A1", "A2", "A3"} {
		var call models.CallEntity
		require.NoError(t, json.Unmarshal(read(t, display).Data, &call))
		assert.Equal(t, name, call.Name)
	}
}

func TestAuthorizationHeaderToken(t *testing.T) {
	h := newHarness(t)
	header := http.Header{"Authorization": {"Bearer " + h.token(t, "recepcao", "secret-recepcao")}}

	display := dial(t, h.url("?channelSlug=recepcao"), header)
	send(t, display, EventJoinChannel, "recepcao")
	assert.Equal(t, EventJoined, read(t, display).Event)
}

func TestJoinChannelRequiresMatchingCredential(t *testing.T) {
	h := newHarness(t)

	anon := dial(t, h.url(""), nil)
	send(t, anon, EventJoinChannel, "recepcao")
	f := read(t, anon)
	assert.Equal(t, EventError, f.Event)
	assert.Contains(t, string(f.Data), "Unauthorized")

	display := dial(t, h.url("?channelSlug=recepcao&token="+h.token(t, "recepcao", "secret-recepcao")), nil)
	send(t, display, EventJoinChannel, "triagem")
	f = read(t, display)
	assert.Equal(t, EventError, f.Event)
	assert.Contains(t, string(f.Data), "Forbidden")

	assert.Equal(t, 0, h.hub.RoomSize(ChannelRoom("recepcao")))
	assert.Equal(t, 0, h.hub.RoomSize(ChannelRoom("triagem")))

	// rejected joins keep the socket usable
	send(t, display, EventPing, nil)
	assert.Equal(t, EventPong, read(t, display).Event)
}

func TestPairingRoomFlow(t *testing.T) {
	h := newHarness(t)
	registrar := &stubRegistrar{}
	h.hub.SetCodeRegistrar(registrar)

	display := dial(t, h.url(""), nil)
	send(t, display, EventRegisterTempCode, map[string]string{"code": "123456"})
	ack := read(t, display)
	require.Equal(t, EventJoined, ack.Event)
	assert.JSONEq(t, `{"room":"pairing-123456"}`, string(ack.Data))
	assert.Equal(t, []string{"123456"}, registrar.codes)

	watcher := dial(t, h.url(""), nil)
	send(t, watcher, EventWaitingPair, "123456")
	require.Equal(t, EventJoined, read(t, watcher).Event)

	h.hub.EmitToRoom("pairing-123456", "paired", map[string]string{"slug": "recepcao", "token": "t"})

	for _, conn := range []*websocket.Conn{display, watcher} {
		f := read(t, conn)
		assert.Equal(t, "paired", f.Event)
		assert.JSONEq(t, `{"slug":"recepcao","token":"t"}`, string(f.Data))
	}
}

func TestWaitingPairRejectsMalformedCode(t *testing.T) {
	h := newHarness(t)
	conn := dial(t, h.url(""), nil)

	send(t, conn, EventWaitingPair, "12ab")
	assert.Equal(t, EventError, read(t, conn).Event)
}

func TestBroadcastWithoutChannelIsIgnored(t *testing.T) {
	h := newHarness(t)
	assert.NotPanics(t, func() { h.hub.BroadcastCall("", models.CallEntity{}) })
}

func TestDisconnectLeavesRooms(t *testing.T) {
	h := newHarness(t)
	display := dial(t, h.url("?channelSlug=recepcao&token="+h.token(t, "recepcao", "secret-recepcao")), nil)
	send(t, display, EventJoinChannel, "recepcao")
	require.Equal(t, EventJoined, read(t, display).Event)
	require.Equal(t, 1, h.hub.RoomSize(ChannelRoom("recepcao")))

	display.Close()

	assert.Eventually(t, func() bool {
		return h.hub.RoomSize(ChannelRoom("recepcao")) == 0 && h.hub.ClientCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}
