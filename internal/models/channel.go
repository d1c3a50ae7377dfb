package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Channel represents one waiting-room display endpoint
type Channel struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index" json:"tenantId"`
	Tenant   *Tenant   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Slug     string    `gorm:"type:varchar(50);not null;uniqueIndex" json:"slug"`
	Name     string    `gorm:"type:varchar(100);not null" json:"name"`
	APIKey   string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"-"` // signing secret
	IsActive bool      `gorm:"not null;default:true" json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName overrides the table name
func (Channel) TableName() string {
	return "channels"
}

// BeforeCreate hook
func (c *Channel) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TenantActive reports the owning tenant's kill switch state. A channel
// loaded without its tenant is treated as active.
func (c *Channel) TenantActive() bool {
	return c.Tenant == nil || c.Tenant.IsActive
}

// ChannelCredentials is returned when a channel secret is created or rotated
type ChannelCredentials struct {
	Slug   string `json:"slug"`
	Name   string `json:"name"`
	APIKey string `json:"apiKey"`
}

// CreateChannelRequest represents a request to create a channel
type CreateChannelRequest struct {
	Slug string `json:"slug" validate:"required,min=3,max=50,slug"`
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// UpdateChannelRequest represents a partial channel update
type UpdateChannelRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	IsActive *bool   `json:"isActive,omitempty"`
}

// PairingValidateRequest is submitted by an operator to bind a display
type PairingValidateRequest struct {
	Code        string `json:"code" validate:"required,len=6,number"`
	ChannelSlug string `json:"channelSlug" validate:"required,min=3,max=50"`
}
