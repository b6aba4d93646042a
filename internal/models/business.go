package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Business represents a tenant: one seller using the shared bot infrastructure.
// WhatsAppNumber is the transport-facing identifier inbound messages are
// addressed to; it must map to exactly one active business at a time.
type Business struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BusinessName   string    `gorm:"type:text;not null" json:"business_name"`
	WhatsAppNumber string    `gorm:"type:text;not null;index" json:"whatsapp_number"`
	Industry       string    `gorm:"type:text" json:"industry,omitempty"`
	PromptTemplate string    `gorm:"type:text" json:"prompt_template,omitempty"`
	Tone           string    `gorm:"type:text;default:'friendly'" json:"tone"`
	IsActive       bool      `gorm:"type:boolean;default:true" json:"is_active"`

	// Settings holds per-tenant overrides (fallback reply, currency, etc)
	Settings datatypes.JSON `gorm:"type:jsonb" json:"settings,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// BusinessSettings is the decoded shape of the Settings column
type BusinessSettings struct {
	FallbackReply string `json:"fallback_reply,omitempty"`
	Currency      string `json:"currency,omitempty"`
}

// DecodeSettings parses the settings blob; an empty column yields zero values.
func (b *Business) DecodeSettings() BusinessSettings {
	var settings BusinessSettings
	if len(b.Settings) > 0 {
		_ = json.Unmarshal(b.Settings, &settings)
	}
	return settings
}

// TableName specifies the table name
func (Business) TableName() string {
	return "businesses"
}

// BeforeCreate sets UUID before creating
func (b *Business) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
