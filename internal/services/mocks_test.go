package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/otcheredev/call-panel-gateway/internal/models"
	"github.com/stretchr/testify/mock"
)

type mockCallStore struct{ mock.Mock }

func (m *mockCallStore) Create(ctx context.Context, call *models.Call) error {
	return m.Called(ctx, call).Error(0)
}

func (m *mockCallStore) ListRecent(ctx context.Context, channelID uuid.UUID, limit int) ([]models.Call, error) {
	args := m.Called(ctx, channelID, limit)
	calls, _ := args.Get(0).([]models.Call)
	return calls, args.Error(1)
}

type mockBroadcaster struct{ mock.Mock }

func (m *mockBroadcaster) BroadcastCall(channel string, call interface{}) {
	m.Called(channel, call)
}

type mockAuditStore struct{ mock.Mock }

func (m *mockAuditStore) Create(ctx context.Context, entry *models.AuditLog) error {
	return m.Called(ctx, entry).Error(0)
}

type mockChannelStore struct{ mock.Mock }

func (m *mockChannelStore) FindBySlug(ctx context.Context, slug string) (*models.Channel, error) {
	args := m.Called(ctx, slug)
	ch, _ := args.Get(0).(*models.Channel)
	return ch, args.Error(1)
}

func (m *mockChannelStore) FindByAPIKeyAndSlug(ctx context.Context, apiKey, slug string) (*models.Channel, error) {
	args := m.Called(ctx, apiKey, slug)
	ch, _ := args.Get(0).(*models.Channel)
	return ch, args.Error(1)
}

func (m *mockChannelStore) FindByTenantAndSlug(ctx context.Context, tenantID uuid.UUID, slug string) (*models.Channel, error) {
	args := m.Called(ctx, tenantID, slug)
	ch, _ := args.Get(0).(*models.Channel)
	return ch, args.Error(1)
}

func (m *mockChannelStore) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Channel, error) {
	args := m.Called(ctx, tenantID)
	chs, _ := args.Get(0).([]models.Channel)
	return chs, args.Error(1)
}

func (m *mockChannelStore) Create(ctx context.Context, channel *models.Channel) error {
	return m.Called(ctx, channel).Error(0)
}

func (m *mockChannelStore) Update(ctx context.Context, channel *models.Channel) error {
	return m.Called(ctx, channel).Error(0)
}

type mockTenantStore struct{ mock.Mock }

func (m *mockTenantStore) Create(ctx context.Context, tenant *models.Tenant) error {
	return m.Called(ctx, tenant).Error(0)
}

func (m *mockTenantStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	args := m.Called(ctx, id)
	t, _ := args.Get(0).(*models.Tenant)
	return t, args.Error(1)
}

func (m *mockTenantStore) GetByAPIToken(ctx context.Context, token string) (*models.Tenant, error) {
	args := m.Called(ctx, token)
	t, _ := args.Get(0).(*models.Tenant)
	return t, args.Error(1)
}

func (m *mockTenantStore) List(ctx context.Context) ([]models.Tenant, error) {
	args := m.Called(ctx)
	ts, _ := args.Get(0).([]models.Tenant)
	return ts, args.Error(1)
}

func (m *mockTenantStore) UpdateAPIToken(ctx context.Context, id uuid.UUID, token string) error {
	return m.Called(ctx, id, token).Error(0)
}

func (m *mockTenantStore) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}
