package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Source systems known to the normalizer
const (
	SourceVersa   = "Versa"
	SourceNovoSGA = "NovoSGA"
)

// CallEntity is the canonical patient call broadcast to displays
type CallEntity struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Destination  string    `json:"destination"`
	Professional string    `json:"professional,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	IsPriority   bool      `json:"isPriority"`
	RawSource    string    `json:"rawSource"`
}

// Call is the persisted record of an accepted call
type Call struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ChannelID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"channelId"`
	Channel      *Channel        `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	PatientName  string          `gorm:"type:varchar(255);not null" json:"patientName"`
	Destination  string          `gorm:"type:varchar(255);not null" json:"destination"`
	Professional *string         `gorm:"type:varchar(255)" json:"professional,omitempty"`
	Ticket       *string         `gorm:"type:varchar(50)" json:"ticket,omitempty"`
	IsPriority   bool            `gorm:"not null;default:false" json:"isPriority"`
	SourceSystem string          `gorm:"type:varchar(50);not null;index" json:"sourceSystem"`
	RawPayload   json.RawMessage `gorm:"type:jsonb" json:"-"`
	CalledAt     time.Time       `gorm:"not null;index" json:"calledAt"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// TableName overrides the table name
func (Call) TableName() string {
	return "calls"
}

// BeforeCreate hook
func (c *Call) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// NewCallRecord maps a normalized call onto its persisted row
func NewCallRecord(channelID uuid.UUID, entity *CallEntity, raw json.RawMessage) *Call {
	call := &Call{
		ChannelID:    channelID,
		PatientName:  entity.Name,
		Destination:  entity.Destination,
		IsPriority:   entity.IsPriority,
		SourceSystem: entity.RawSource,
		RawPayload:   raw,
		CalledAt:     entity.Timestamp,
	}
	if entity.Professional != "" {
		professional := entity.Professional
		call.Professional = &professional
	}
	// NovoSGA calls are identified by ticket
	if entity.RawSource == SourceNovoSGA {
		ticket := entity.Name
		call.Ticket = &ticket
	}
	return call
}

// Entity maps a persisted row back to its canonical form
func (c *Call) Entity() CallEntity {
	entity := CallEntity{
		ID:          c.ID.String(),
		Name:        c.PatientName,
		Destination: c.Destination,
		Timestamp:   c.CalledAt,
		IsPriority:  c.IsPriority,
		RawSource:   c.SourceSystem,
	}
	if c.Professional != nil {
		entity.Professional = *c.Professional
	}
	return entity
}
