package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/otcheredev/call-panel-gateway/internal/repository"
)

var (
	// ErrChannelNotFound is returned for unknown, inactive or foreign channels
	ErrChannelNotFound = errors.New("channel not found")
	// ErrTenantNotFound is returned for unknown tenants or tokens
	ErrTenantNotFound = errors.New("tenant not found")
	// ErrTenantInactive is returned when a tenant's kill switch is off
	ErrTenantInactive = errors.New("tenant is inactive")
	// ErrSlugTaken is returned when a slug is already in use
	ErrSlugTaken = repository.ErrSlugTaken
)

// newSecret returns 64 hex characters of randomness
func newSecret() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}
