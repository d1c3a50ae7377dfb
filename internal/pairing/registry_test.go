package pairing

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/otcheredev/call-panel-gateway/internal/auth"
	"github.com/otcheredev/call-panel-gateway/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emitted struct {
	room  string
	event string
	data  interface{}
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []emitted
}

func (e *recordingEmitter) EmitToRoom(room, event string, data interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, emitted{room, event, data})
}

func (e *recordingEmitter) all() []emitted {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]emitted(nil), e.events...)
}

type failingSigner struct{}

func (failingSigner) Issue(string, string, time.Duration) (string, error) {
	return "", errors.New("boom")
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestRegistry(t *testing.T) (*Registry, *recordingEmitter, *clock) {
	t.Helper()
	clk := &clock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	emitter := &recordingEmitter{}
	store := cache.NewMemoryCacheWithClock(clk.Now)
	signer := auth.NewTokenSigner().WithClock(clk.Now)
	return NewRegistry(store, signer, emitter, Options{Now: clk.Now}), emitter, clk
}

func TestValidateEmitsScopedCredential(t *testing.T) {
	ctx := context.Background()
	reg, emitter, clk := newTestRegistry(t)

	require.NoError(t, reg.Register(ctx, "123456"))
	require.NoError(t, reg.Validate(ctx, "123456", "recepcao-principal", "channel-secret"))

	events := emitter.all()
	require.Len(t, events, 1)
	assert.Equal(t, "pairing-123456", events[0].room)
	assert.Equal(t, EventPaired, events[0].event)

	payload, ok := events[0].data.(PairedPayload)
	require.True(t, ok)
	assert.Equal(t, "recepcao-principal", payload.Slug)

	claims := auth.NewTokenSigner().WithClock(clk.Now).Verify(payload.Token, "channel-secret")
	require.NotNil(t, claims)
	assert.Equal(t, "client", claims.Role)
	assert.Equal(t, "recepcao-principal", claims.Channel)
}

func TestValidateIsSingleUse(t *testing.T) {
	ctx := context.Background()
	reg, emitter, _ := newTestRegistry(t)

	require.NoError(t, reg.Register(ctx, "654321"))
	require.NoError(t, reg.Validate(ctx, "654321", "sala", "secret"))

	err := reg.Validate(ctx, "654321", "sala", "secret")
	assert.ErrorIs(t, err, ErrExpiredOrInvalidCode)
	assert.Len(t, emitter.all(), 1)
}

func TestValidateConcurrentSucceedsOnce(t *testing.T) {
	ctx := context.Background()
	reg, emitter, _ := newTestRegistry(t)
	require.NoError(t, reg.Register(ctx, "111222"))

	var ok int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if reg.Validate(ctx, "111222", "sala", "secret") == nil {
				atomic.AddInt32(&ok, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok)
	assert.Len(t, emitter.all(), 1)
}

func TestValidateExpired(t *testing.T) {
	ctx := context.Background()
	reg, emitter, clk := newTestRegistry(t)

	require.NoError(t, reg.Register(ctx, "123456"))
	clk.Advance(DefaultCodeTTL)

	assert.ErrorIs(t, reg.Validate(ctx, "123456", "sala", "secret"), ErrExpiredOrInvalidCode)
	assert.Empty(t, emitter.all())
}

func TestRegisterRefreshesExpiry(t *testing.T) {
	ctx := context.Background()
	reg, _, clk := newTestRegistry(t)

	require.NoError(t, reg.Register(ctx, "123456"))
	clk.Advance(4 * time.Minute)
	require.NoError(t, reg.Register(ctx, "123456"))
	clk.Advance(4 * time.Minute)

	assert.NoError(t, reg.Validate(ctx, "123456", "sala", "secret"))
}

func TestValidateUnknownCode(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	assert.ErrorIs(t, reg.Validate(context.Background(), "999999", "sala", "secret"), ErrExpiredOrInvalidCode)
	assert.ErrorIs(t, reg.Validate(context.Background(), "12ab", "sala", "secret"), ErrExpiredOrInvalidCode)
}

func TestRegisterMalformedCode(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	for _, code := range []string{"", "12345", "1234567", "abcdef", "12345a"} {
		assert.ErrorIs(t, reg.Register(context.Background(), code), ErrMalformedCode, code)
	}
}

func TestValidateSignerFailure(t *testing.T) {
	ctx := context.Background()
	clk := &clock{now: time.Now()}
	emitter := &recordingEmitter{}
	reg := NewRegistry(cache.NewMemoryCacheWithClock(clk.Now), failingSigner{}, emitter, Options{Now: clk.Now})

	require.NoError(t, reg.Register(ctx, "123456"))
	err := reg.Validate(ctx, "123456", "sala", "secret")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrExpiredOrInvalidCode)
	assert.Empty(t, emitter.all())
}
