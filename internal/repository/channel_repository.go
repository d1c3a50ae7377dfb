package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/otcheredev/call-panel-gateway/internal/models"
	"gorm.io/gorm"
)

// ChannelRepository handles channel database operations
type ChannelRepository struct {
	db *gorm.DB
}

// NewChannelRepository creates a new channel repository
func NewChannelRepository(db *gorm.DB) *ChannelRepository {
	return &ChannelRepository{db: db}
}

// FindBySlug returns an active channel with its tenant preloaded
func (r *ChannelRepository) FindBySlug(ctx context.Context, slug string) (*models.Channel, error) {
	var channel models.Channel
	if err := r.db.WithContext(ctx).
		Preload("Tenant").
		Where("slug = ? AND is_active = ?", slug, true).
		First(&channel).Error; err != nil {
		return nil, fmt.Errorf("failed to get channel: %w", translate(err))
	}
	return &channel, nil
}

// FindByAPIKeyAndSlug returns the active channel owning apiKey, with its
// tenant preloaded so the caller can evaluate the kill switch.
func (r *ChannelRepository) FindByAPIKeyAndSlug(ctx context.Context, apiKey, slug string) (*models.Channel, error) {
	var channel models.Channel
	if err := r.db.WithContext(ctx).
		Preload("Tenant").
		Where("api_key = ? AND slug = ? AND is_active = ?", apiKey, slug, true).
		First(&channel).Error; err != nil {
		return nil, fmt.Errorf("failed to get channel: %w", translate(err))
	}
	return &channel, nil
}

// FindByTenantAndSlug returns a tenant's channel regardless of its active flag
func (r *ChannelRepository) FindByTenantAndSlug(ctx context.Context, tenantID uuid.UUID, slug string) (*models.Channel, error) {
	var channel models.Channel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND slug = ?", tenantID, slug).
		First(&channel).Error; err != nil {
		return nil, fmt.Errorf("failed to get channel: %w", translate(err))
	}
	return &channel, nil
}

// ListByTenant returns all channels of a tenant, newest first
func (r *ChannelRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Channel, error) {
	var channels []models.Channel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&channels).Error; err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	return channels, nil
}

// Create creates a new channel
func (r *ChannelRepository) Create(ctx context.Context, channel *models.Channel) error {
	if err := r.db.WithContext(ctx).Create(channel).Error; err != nil {
		return fmt.Errorf("failed to create channel: %w", translate(err))
	}
	return nil
}

// Update persists the mutable fields of a channel
func (r *ChannelRepository) Update(ctx context.Context, channel *models.Channel) error {
	if err := r.db.WithContext(ctx).
		Model(channel).
		Select("name", "is_active", "api_key").
		Updates(channel).Error; err != nil {
		return fmt.Errorf("failed to update channel: %w", translate(err))
	}
	return nil
}
