package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	DefaultPrimaryColor = "#8A8AFF"
	DefaultAccentColor  = "#DBBFFF"
)

// SocialLinks are the public profile links shown on the booking page.
type SocialLinks struct {
	Instagram string `json:"instagram,omitempty" binding:"omitempty,url,max=255"`
	Facebook  string `json:"facebook,omitempty" binding:"omitempty,url,max=255"`
}

// Business is a tenant: one owner, its own services, hours and calendar.
type Business struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Address     string    `gorm:"size:255" json:"address"`
	Phone       string    `gorm:"size:20" json:"phone"`

	BusinessType string `gorm:"size:50" json:"business_type"`
	Timezone     string `gorm:"size:64;not null;default:'America/Sao_Paulo'" json:"timezone"`
	LogoURL      string `gorm:"size:512" json:"logo_url,omitempty"`

	PrimaryColor string                          `gorm:"size:9;not null;default:'#8A8AFF'" json:"primary_color"`
	AccentColor  string                          `gorm:"size:9;not null;default:'#DBBFFF'" json:"accent_color"`
	SocialLinks  datatypes.JSONType[SocialLinks] `gorm:"not null;default:'{}'" json:"social_links"`

	OwnerID uuid.UUID `gorm:"type:uuid;index" json:"owner_id"`
	Owner   *User     `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`

	IsActive          bool `gorm:"not null;default:true" json:"is_active"`
	MinAdvanceMinutes int  `gorm:"not null;default:0" json:"min_advance_minutes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
