package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/otcheredev/call-panel-gateway/internal/models"
	"gorm.io/gorm"
)

// AuditFilter narrows an audit log listing; zero fields match everything
type AuditFilter struct {
	Action string
	Limit  int
	Offset int
}

// AuditRepository stores security events
type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create appends an audit entry
func (r *AuditRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

// ListByTenant returns a tenant's audit entries, newest first
func (r *AuditRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, filter AuditFilter) ([]models.AuditLog, error) {
	logs := make([]models.AuditLog, 0)
	query := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}
	query = query.Order("created_at DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	if err := query.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	return logs, nil
}
