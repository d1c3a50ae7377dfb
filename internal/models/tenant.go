package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tenant represents a clinic owning one or more display channels
type Tenant struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Slug      string    `gorm:"type:varchar(50);not null;uniqueIndex" json:"slug"`
	APIToken  string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"-"`
	IsActive  bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName overrides the table name
func (Tenant) TableName() string {
	return "tenants"
}

// BeforeCreate hook
func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// RoleClient is the role carried by credentials handed to paired displays.
const RoleClient = "client"

// ChannelClaims is the payload of a scoped credential. The signature is
// produced with the channel's own secret, so Channel is informative only.
type ChannelClaims struct {
	Role    string `json:"role"`
	Channel string `json:"channel"`
	jwt.RegisteredClaims
}

// CreateTenantRequest represents a request to create a tenant
type CreateTenantRequest struct {
	Name string `json:"name" validate:"required,min=3,max=255"`
	Slug string `json:"slug" validate:"required,min=3,max=50,slug"`
}

// TenantStatusRequest toggles the tenant kill switch
type TenantStatusRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}
