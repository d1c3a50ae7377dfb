package handlers

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/otcheredev/call-panel-gateway/internal/models"
	"github.com/otcheredev/call-panel-gateway/internal/repository"
	"github.com/otcheredev/call-panel-gateway/internal/services"
)

var (
	errChannelNotFound = services.ErrChannelNotFound
	errTenantNotFound  = services.ErrTenantNotFound
)

type fakeIngester struct {
	call *models.CallEntity
	err  error
	raw  []byte
}

func (f *fakeIngester) Ingest(ctx context.Context, channel *models.Channel, raw []byte) (*models.CallEntity, error) {
	f.raw = raw
	return f.call, f.err
}

type fakeChannels struct {
	channels map[string]*models.Channel
	history  []models.CallEntity
	err      error

	created *models.CreateChannelRequest
	rotated string
	listErr error
}

func (f *fakeChannels) FindBySlug(ctx context.Context, slug string) (*models.Channel, error) {
	if f.err != nil {
		return nil, f.err
	}
	ch, ok := f.channels[slug]
	if !ok {
		return nil, errChannelNotFound
	}
	return ch, nil
}

func (f *fakeChannels) History(ctx context.Context, channel *models.Channel) ([]models.CallEntity, error) {
	return f.history, nil
}

func (f *fakeChannels) List(ctx context.Context, tenantID uuid.UUID) ([]models.Channel, error) {
	var out []models.Channel
	for _, ch := range f.channels {
		if ch.TenantID == tenantID {
			out = append(out, *ch)
		}
	}
	return out, f.listErr
}

func (f *fakeChannels) Create(ctx context.Context, tenantID uuid.UUID, req *models.CreateChannelRequest) (*models.Channel, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = req
	return &models.Channel{TenantID: tenantID, Slug: req.Slug, Name: req.Name, APIKey: "fresh-secret", IsActive: true}, nil
}

func (f *fakeChannels) owned(tenantID uuid.UUID, slug string) (*models.Channel, error) {
	ch, ok := f.channels[slug]
	if !ok || ch.TenantID != tenantID {
		return nil, errChannelNotFound
	}
	return ch, nil
}

func (f *fakeChannels) Update(ctx context.Context, tenantID uuid.UUID, slug string, req *models.UpdateChannelRequest) (*models.Channel, error) {
	ch, err := f.owned(tenantID, slug)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		ch.Name = *req.Name
	}
	if req.IsActive != nil {
		ch.IsActive = *req.IsActive
	}
	return ch, nil
}

func (f *fakeChannels) Deactivate(ctx context.Context, tenantID uuid.UUID, slug string) (*models.Channel, error) {
	ch, err := f.owned(tenantID, slug)
	if err != nil {
		return nil, err
	}
	ch.IsActive = false
	return ch, nil
}

func (f *fakeChannels) RotateKey(ctx context.Context, tenantID uuid.UUID, slug string, meta models.RequestMeta) (*models.Channel, error) {
	ch, err := f.owned(tenantID, slug)
	if err != nil {
		return nil, err
	}
	ch.APIKey = "rotated-secret"
	f.rotated = slug
	return ch, nil
}

type fakeRegistry struct {
	err    error
	code   string
	slug   string
	secret string
}

func (f *fakeRegistry) Validate(ctx context.Context, code, slug, secret string) error {
	f.code, f.slug, f.secret = code, slug, secret
	return f.err
}

type fakeVerifier struct {
	valid map[string]string
}

func (f *fakeVerifier) Verify(token, secret string) *models.ChannelClaims {
	if s, ok := f.valid[token]; ok && s == secret {
		return &models.ChannelClaims{Role: models.RoleClient}
	}
	return nil
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []*models.AuditLog
}

func (a *recordingAudit) Record(ctx context.Context, entry *models.AuditLog) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
}

func (a *recordingAudit) last() *models.AuditLog {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.entries) == 0 {
		return nil
	}
	return a.entries[len(a.entries)-1]
}

type fakeTenants struct {
	tenants map[uuid.UUID]*models.Tenant
	err     error
}

func (f *fakeTenants) Create(ctx context.Context, req *models.CreateTenantRequest) (*models.Tenant, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Tenant{ID: uuid.New(), Name: req.Name, Slug: req.Slug, APIToken: "tenant-token", IsActive: true}, nil
}

func (f *fakeTenants) List(ctx context.Context) ([]models.Tenant, error) {
	out := make([]models.Tenant, 0, len(f.tenants))
	for _, t := range f.tenants {
		out = append(out, *t)
	}
	return out, f.err
}

func (f *fakeTenants) RotateToken(ctx context.Context, id uuid.UUID, meta models.RequestMeta) (*models.Tenant, error) {
	t, ok := f.tenants[id]
	if !ok {
		return nil, errTenantNotFound
	}
	t.APIToken = "rotated-token"
	return t, nil
}

func (f *fakeTenants) SetActive(ctx context.Context, id uuid.UUID, active bool, meta models.RequestMeta) (*models.Tenant, error) {
	t, ok := f.tenants[id]
	if !ok {
		return nil, errTenantNotFound
	}
	t.IsActive = active
	return t, nil
}

type fakeAuditLister struct {
	logs   []models.AuditLog
	filter repository.AuditFilter
}

func (f *fakeAuditLister) ListByTenant(ctx context.Context, tenantID uuid.UUID, filter repository.AuditFilter) ([]models.AuditLog, error) {
	f.filter = filter
	return f.logs, nil
}
