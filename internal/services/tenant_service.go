package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/otcheredev/call-panel-gateway/internal/models"
	"github.com/otcheredev/call-panel-gateway/internal/repository"
	"github.com/rs/zerolog/log"
)

// TenantStore is the tenant persistence used by TenantService
type TenantStore interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetByAPIToken(ctx context.Context, token string) (*models.Tenant, error)
	List(ctx context.Context) ([]models.Tenant, error)
	UpdateAPIToken(ctx context.Context, id uuid.UUID, token string) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

// TenantService handles tenant administration
type TenantService struct {
	tenants TenantStore
	audit   *AuditService
}

// NewTenantService creates a new tenant service
func NewTenantService(tenants TenantStore, audit *AuditService) *TenantService {
	return &TenantService{tenants: tenants, audit: audit}
}

// Authenticate returns the active tenant owning token
func (s *TenantService) Authenticate(ctx context.Context, token string) (*models.Tenant, error) {
	tenant, err := s.tenants.GetByAPIToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTenantNotFound
	}
	if err != nil {
		return nil, err
	}
	if !tenant.IsActive {
		return nil, ErrTenantInactive
	}
	return tenant, nil
}

// Create registers a tenant with a fresh management token
func (s *TenantService) Create(ctx context.Context, req *models.CreateTenantRequest) (*models.Tenant, error) {
	tenant := &models.Tenant{
		Name:     req.Name,
		Slug:     req.Slug,
		APIToken: newSecret(),
		IsActive: true,
	}
	if err := s.tenants.Create(ctx, tenant); err != nil {
		return nil, err
	}
	log.Info().Str("tenant", tenant.Slug).Msg("Tenant created")
	return tenant, nil
}

// List returns all tenants
func (s *TenantService) List(ctx context.Context) ([]models.Tenant, error) {
	return s.tenants.List(ctx)
}

// RotateToken replaces a tenant's management token
func (s *TenantService) RotateToken(ctx context.Context, id uuid.UUID, meta models.RequestMeta) (*models.Tenant, error) {
	token := newSecret()
	entry := meta.Entry(models.AuditTenantRotateKey, models.AuditStatusSuccess)
	entry.TenantID = &id

	if err := s.tenants.UpdateAPIToken(ctx, id, token); err != nil {
		return nil, s.failed(ctx, entry, err)
	}
	s.audit.Record(ctx, entry)

	tenant, err := s.tenants.GetByID(ctx, id)
	if err != nil {
		return nil, tenantErr(err)
	}
	return tenant, nil
}

// SetActive flips a tenant's kill switch
func (s *TenantService) SetActive(ctx context.Context, id uuid.UUID, active bool, meta models.RequestMeta) (*models.Tenant, error) {
	entry := meta.Entry(models.AuditTenantStatusChange, models.AuditStatusSuccess)
	entry.TenantID = &id

	if err := s.tenants.SetActive(ctx, id, active); err != nil {
		return nil, s.failed(ctx, entry, err)
	}
	s.audit.Record(ctx, entry)
	log.Warn().Str("tenant_id", id.String()).Bool("active", active).Msg("Tenant status changed")

	tenant, err := s.tenants.GetByID(ctx, id)
	if err != nil {
		return nil, tenantErr(err)
	}
	return tenant, nil
}

func (s *TenantService) failed(ctx context.Context, entry *models.AuditLog, err error) error {
	err = tenantErr(err)
	if !errors.Is(err, ErrTenantNotFound) {
		entry.Status = models.AuditStatusFailure
		entry.ErrorMessage = err.Error()
		s.audit.Record(ctx, entry)
	}
	return err
}

func tenantErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTenantNotFound
	}
	return err
}
