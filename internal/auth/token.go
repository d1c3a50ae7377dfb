// Package auth issues and verifies channel-scoped bearer credentials.
//
// There is no process-wide signing key: every token is signed with the secret
// of the channel it grants access to, so a token minted for one channel never
// verifies against another.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/otcheredev/call-panel-gateway/internal/models"
)

// DefaultTTL is the lifetime of a paired display credential
const DefaultTTL = 24 * time.Hour

var errEmptySecret = errors.New("empty signing secret")

// TokenSigner issues and verifies HS256 tokens with caller-supplied secrets
type TokenSigner struct {
	now func() time.Time
}

// NewTokenSigner creates a signer using the wall clock
func NewTokenSigner() *TokenSigner {
	return &TokenSigner{now: time.Now}
}

// WithClock returns a copy of the signer reading time from now
func (s *TokenSigner) WithClock(now func() time.Time) *TokenSigner {
	return &TokenSigner{now: now}
}

// Issue signs a client credential for channel with secret, valid for ttl
func (s *TokenSigner) Issue(channel, secret string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errEmptySecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	issuedAt := s.now()
	claims := models.ChannelClaims{
		Role:    models.RoleClient,
		Channel: channel,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Verify returns the claims of token if it was signed with secret and has not
// expired. Every failure yields nil.
func (s *TokenSigner) Verify(token, secret string) *models.ChannelClaims {
	if token == "" || secret == "" {
		return nil
	}

	claims := &models.ChannelClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil
	}
	return claims
}
