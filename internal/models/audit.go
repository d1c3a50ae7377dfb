package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Audit actions
const (
	AuditIngestKillSwitch   = "ingest.kill_switch"
	AuditPairingValidate    = "pairing.validate"
	AuditTenantRotateKey    = "tenant.rotate_key"
	AuditTenantStatusChange = "tenant.status_change"
	AuditChannelRotateKey   = "channel.rotate_key"
)

// Audit statuses
const (
	AuditStatusSuccess = "success"
	AuditStatusFailure = "failure"
)

// AuditLog represents a security-relevant event
type AuditLog struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TenantID     *uuid.UUID `gorm:"type:uuid;index" json:"tenantId,omitempty"`
	ChannelSlug  string     `gorm:"type:varchar(50);index" json:"channelSlug,omitempty"`
	Action       string     `gorm:"type:varchar(100);not null;index" json:"action"`
	Status       string     `gorm:"type:varchar(20);index" json:"status"`
	IPAddress    string     `gorm:"type:varchar(45)" json:"ipAddress"`
	UserAgent    string     `gorm:"type:text" json:"userAgent"`
	ErrorMessage string     `gorm:"type:text" json:"errorMessage,omitempty"`
	CreatedAt    time.Time  `gorm:"index" json:"timestamp"`
}

// TableName overrides the table name
func (AuditLog) TableName() string {
	return "audit_logs"
}

// BeforeCreate hook
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// RequestMeta identifies the caller of an audited operation
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// Entry starts an audit log for action with the caller's details
func (m RequestMeta) Entry(action, status string) *AuditLog {
	return &AuditLog{
		Action:    action,
		Status:    status,
		IPAddress: m.IPAddress,
		UserAgent: m.UserAgent,
	}
}
