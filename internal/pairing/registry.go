// Package pairing lets an unprovisioned display obtain a channel credential
// by showing a short code that an operator confirms.
package pairing

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/otcheredev/call-panel-gateway/internal/cache"
	"github.com/otcheredev/call-panel-gateway/internal/metrics"
	"github.com/rs/zerolog/log"
)

// EventPaired is emitted to a pairing room once its code is validated
const EventPaired = "paired"

const (
	DefaultCodeTTL  = 5 * time.Minute
	DefaultTokenTTL = 24 * time.Hour

	keyNamespace = "pairing"
)

var (
	// ErrExpiredOrInvalidCode covers unknown, expired and already used codes alike
	ErrExpiredOrInvalidCode = errors.New("invalid or expired pairing code")
	// ErrMalformedCode is returned for codes that are not six digits
	ErrMalformedCode = errors.New("pairing code must be 6 digits")

	codePattern = regexp.MustCompile(`^\d{6}$`)
)

// Emitter delivers an event to every connection in a room
type Emitter interface {
	EmitToRoom(room, event string, data interface{})
}

// Signer issues channel-scoped credentials
type Signer interface {
	Issue(channel, secret string, ttl time.Duration) (string, error)
}

// PairedPayload is the body of the paired event
type PairedPayload struct {
	Slug  string `json:"slug"`
	Token string `json:"token"`
}

// Options tunes a Registry; zero values take the defaults
type Options struct {
	CodeTTL  time.Duration
	TokenTTL time.Duration
	Now      func() time.Time
}

// Registry maps pending codes to their expiry
type Registry struct {
	store    cache.Cache
	signer   Signer
	emitter  Emitter
	codeTTL  time.Duration
	tokenTTL time.Duration
	now      func() time.Time
}

// NewRegistry creates a registry storing codes in store
func NewRegistry(store cache.Cache, signer Signer, emitter Emitter, opts Options) *Registry {
	if opts.CodeTTL <= 0 {
		opts.CodeTTL = DefaultCodeTTL
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = DefaultTokenTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Registry{
		store:    store,
		signer:   signer,
		emitter:  emitter,
		codeTTL:  opts.CodeTTL,
		tokenTTL: opts.TokenTTL,
		now:      opts.Now,
	}
}

// Room returns the temporary room a display waits in for its code
func Room(code string) string {
	return "pairing-" + code
}

// ValidCode reports whether code is six digits
func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}

// Register stores code as pending. Registering it again refreshes the expiry.
func (r *Registry) Register(ctx context.Context, code string) error {
	if !ValidCode(code) {
		return ErrMalformedCode
	}

	expiresAt := r.now().Add(r.codeTTL)
	value := []byte(strconv.FormatInt(expiresAt.UnixNano(), 10))
	if err := r.store.Set(ctx, cache.Key(keyNamespace, code), value, r.codeTTL); err != nil {
		return fmt.Errorf("failed to register pairing code: %w", err)
	}

	metrics.PairingRegistrations.Inc()
	log.Info().Str("code", code).Time("expires_at", expiresAt).Msg("Pairing code registered")
	return nil
}

// Validate consumes code and sends a credential for slug, signed with
// secret, to the code's pairing room. A code succeeds at most once.
func (r *Registry) Validate(ctx context.Context, code, slug, secret string) error {
	if !ValidCode(code) {
		metrics.PairingValidations.WithLabelValues("invalid_code").Inc()
		return ErrExpiredOrInvalidCode
	}

	value, err := r.store.Take(ctx, cache.Key(keyNamespace, code))
	if errors.Is(err, cache.ErrCacheMiss) {
		metrics.PairingValidations.WithLabelValues("invalid_code").Inc()
		return ErrExpiredOrInvalidCode
	}
	if err != nil {
		metrics.PairingValidations.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to read pairing code: %w", err)
	}

	expiresAt, err := strconv.ParseInt(string(value), 10, 64)
	if err != nil || !r.now().Before(time.Unix(0, expiresAt)) {
		metrics.PairingValidations.WithLabelValues("invalid_code").Inc()
		return ErrExpiredOrInvalidCode
	}

	token, err := r.signer.Issue(slug, secret, r.tokenTTL)
	if err != nil {
		metrics.PairingValidations.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to issue channel token: %w", err)
	}

	r.emitter.EmitToRoom(Room(code), EventPaired, PairedPayload{Slug: slug, Token: token})

	metrics.PairingValidations.WithLabelValues("paired").Inc()
	log.Info().Str("code", code).Str("channel", slug).Msg("Pairing code validated")
	return nil
}
