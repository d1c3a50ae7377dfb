package services

import (
	"context"

	"github.com/otcheredev/call-panel-gateway/internal/models"
	"github.com/rs/zerolog/log"
)

// AuditStore persists audit entries
type AuditStore interface {
	Create(ctx context.Context, entry *models.AuditLog) error
}

// AuditService records security events without failing the caller
type AuditService struct {
	store AuditStore
}

// NewAuditService creates a new audit service
func NewAuditService(store AuditStore) *AuditService {
	return &AuditService{store: store}
}

// Record stores entry. Errors are logged and swallowed, and the write
// outlives a cancelled request.
func (s *AuditService) Record(ctx context.Context, entry *models.AuditLog) {
	if s == nil || s.store == nil {
		return
	}
	if err := s.store.Create(context.WithoutCancel(ctx), entry); err != nil {
		log.Error().Err(err).Str("action", entry.Action).Msg("Failed to write audit log")
	}
}
