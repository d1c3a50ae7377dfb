package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/otcheredev/call-panel-gateway/internal/models"
	"gorm.io/gorm"
)

// TenantRepository handles tenant database operations
type TenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// Create creates a new tenant
func (r *TenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	if err := r.db.WithContext(ctx).Create(tenant).Error; err != nil {
		return fmt.Errorf("failed to create tenant: %w", translate(err))
	}
	return nil
}

// GetByID retrieves a tenant by ID
func (r *TenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tenant).Error; err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", translate(err))
	}
	return &tenant, nil
}

// GetByAPIToken retrieves a tenant by its management token
func (r *TenantRepository) GetByAPIToken(ctx context.Context, token string) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.WithContext(ctx).Where("api_token = ?", token).First(&tenant).Error; err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", translate(err))
	}
	return &tenant, nil
}

// List returns all tenants, newest first
func (r *TenantRepository) List(ctx context.Context) ([]models.Tenant, error) {
	var tenants []models.Tenant
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&tenants).Error; err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	return tenants, nil
}

// UpdateAPIToken replaces a tenant's management token
func (r *TenantRepository) UpdateAPIToken(ctx context.Context, id uuid.UUID, token string) error {
	return r.updateColumn(ctx, id, "api_token", token)
}

// SetActive flips the tenant kill switch
func (r *TenantRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.updateColumn(ctx, id, "is_active", active)
}

func (r *TenantRepository) updateColumn(ctx context.Context, id uuid.UUID, column string, value interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&models.Tenant{}).
		Where("id = ?", id).
		Update(column, value)
	if res.Error != nil {
		return fmt.Errorf("failed to update tenant %s: %w", column, translate(res.Error))
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("failed to update tenant %s: %w", column, ErrNotFound)
	}
	return nil
}
