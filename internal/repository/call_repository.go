package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/otcheredev/call-panel-gateway/internal/models"
	"gorm.io/gorm"
)

// CallRepository handles call record database operations
type CallRepository struct {
	db *gorm.DB
}

// NewCallRepository creates a new call repository
func NewCallRepository(db *gorm.DB) *CallRepository {
	return &CallRepository{db: db}
}

// Create inserts a call record; the assigned id is set on call
func (r *CallRepository) Create(ctx context.Context, call *models.Call) error {
	if err := r.db.WithContext(ctx).Create(call).Error; err != nil {
		return fmt.Errorf("failed to create call: %w", err)
	}
	return nil
}

// ListRecent returns the latest calls of a channel, newest first
func (r *CallRepository) ListRecent(ctx context.Context, channelID uuid.UUID, limit int) ([]models.Call, error) {
	var calls []models.Call
	query := r.db.WithContext(ctx).
		Where("channel_id = ?", channelID).
		Order("called_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&calls).Error; err != nil {
		return nil, fmt.Errorf("failed to get calls: %w", err)
	}
	return calls, nil
}
