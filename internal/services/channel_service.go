package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/otcheredev/call-panel-gateway/internal/models"
	"github.com/otcheredev/call-panel-gateway/internal/repository"
)

// DefaultHistoryLimit is the number of calls returned by History
const DefaultHistoryLimit = 10

// ChannelStore is the channel persistence used by ChannelService
type ChannelStore interface {
	FindBySlug(ctx context.Context, slug string) (*models.Channel, error)
	FindByAPIKeyAndSlug(ctx context.Context, apiKey, slug string) (*models.Channel, error)
	FindByTenantAndSlug(ctx context.Context, tenantID uuid.UUID, slug string) (*models.Channel, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Channel, error)
	Create(ctx context.Context, channel *models.Channel) error
	Update(ctx context.Context, channel *models.Channel) error
}

// CallHistory reads stored calls
type CallHistory interface {
	ListRecent(ctx context.Context, channelID uuid.UUID, limit int) ([]models.Call, error)
}

// ChannelService handles channel lookup, history and management
type ChannelService struct {
	channels     ChannelStore
	calls        CallHistory
	audit        *AuditService
	historyLimit int
}

// NewChannelService creates a new channel service
func NewChannelService(channels ChannelStore, calls CallHistory, audit *AuditService, historyLimit int) *ChannelService {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &ChannelService{
		channels:     channels,
		calls:        calls,
		audit:        audit,
		historyLimit: historyLimit,
	}
}

// FindBySlug returns an active channel with its tenant
func (s *ChannelService) FindBySlug(ctx context.Context, slug string) (*models.Channel, error) {
	channel, err := s.channels.FindBySlug(ctx, slug)
	return channelResult(channel, err)
}

// Authenticate returns the active channel owning apiKey. The tenant is
// loaded but its state is left to the caller.
func (s *ChannelService) Authenticate(ctx context.Context, apiKey, slug string) (*models.Channel, error) {
	channel, err := s.channels.FindByAPIKeyAndSlug(ctx, apiKey, slug)
	return channelResult(channel, err)
}

// History returns the latest calls of an active channel, newest first
func (s *ChannelService) History(ctx context.Context, channel *models.Channel) ([]models.CallEntity, error) {
	calls, err := s.calls.ListRecent(ctx, channel.ID, s.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	history := make([]models.CallEntity, 0, len(calls))
	for i := range calls {
		history = append(history, calls[i].Entity())
	}
	return history, nil
}

// List returns every channel of a tenant
func (s *ChannelService) List(ctx context.Context, tenantID uuid.UUID) ([]models.Channel, error) {
	return s.channels.ListByTenant(ctx, tenantID)
}

// Create adds a channel to a tenant with a fresh signing secret
func (s *ChannelService) Create(ctx context.Context, tenantID uuid.UUID, req *models.CreateChannelRequest) (*models.Channel, error) {
	channel := &models.Channel{
		TenantID: tenantID,
		Slug:     req.Slug,
		Name:     req.Name,
		APIKey:   newSecret(),
		IsActive: true,
	}
	if err := s.channels.Create(ctx, channel); err != nil {
		return nil, err
	}
	return channel, nil
}

// Update changes a tenant channel's name or active flag
func (s *ChannelService) Update(ctx context.Context, tenantID uuid.UUID, slug string, req *models.UpdateChannelRequest) (*models.Channel, error) {
	channel, err := s.owned(ctx, tenantID, slug)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		channel.Name = *req.Name
	}
	if req.IsActive != nil {
		channel.IsActive = *req.IsActive
	}
	if err := s.channels.Update(ctx, channel); err != nil {
		return nil, err
	}
	return channel, nil
}

// Deactivate switches a tenant channel off without deleting it
func (s *ChannelService) Deactivate(ctx context.Context, tenantID uuid.UUID, slug string) (*models.Channel, error) {
	inactive := false
	return s.Update(ctx, tenantID, slug, &models.UpdateChannelRequest{IsActive: &inactive})
}

// RotateKey replaces a channel's signing secret. Credentials signed with
// the old secret stop verifying.
func (s *ChannelService) RotateKey(ctx context.Context, tenantID uuid.UUID, slug string, meta models.RequestMeta) (*models.Channel, error) {
	channel, err := s.owned(ctx, tenantID, slug)
	if err != nil {
		return nil, err
	}

	channel.APIKey = newSecret()
	entry := meta.Entry(models.AuditChannelRotateKey, models.AuditStatusSuccess)
	entry.TenantID = &tenantID
	entry.ChannelSlug = slug

	if err := s.channels.Update(ctx, channel); err != nil {
		entry.Status = models.AuditStatusFailure
		entry.ErrorMessage = err.Error()
		s.audit.Record(ctx, entry)
		return nil, err
	}
	s.audit.Record(ctx, entry)
	return channel, nil
}

func (s *ChannelService) owned(ctx context.Context, tenantID uuid.UUID, slug string) (*models.Channel, error) {
	channel, err := s.channels.FindByTenantAndSlug(ctx, tenantID, slug)
	return channelResult(channel, err)
}

func channelResult(channel *models.Channel, err error) (*models.Channel, error) {
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrChannelNotFound
	}
	if err != nil {
		return nil, err
	}
	return channel, nil
}
