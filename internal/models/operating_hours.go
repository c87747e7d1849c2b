package models

import (
	"time"

	"github.com/google/uuid"
)

// OperatingHours is the schedule of one weekday (0=Sunday..6=Saturday).
// Times are "HH:MM" in the business timezone.
type OperatingHours struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BusinessID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_hours_business_weekday" json:"business_id"`
	Weekday    int       `gorm:"not null;uniqueIndex:idx_hours_business_weekday" json:"weekday"`

	IsOpen    bool   `gorm:"not null;default:false" json:"is_open"`
	OpenTime  string `gorm:"size:5" json:"open_time"`
	CloseTime string `gorm:"size:5" json:"close_time"`

	Breaks []OperatingBreak `gorm:"foreignKey:OperatingHoursID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"breaks"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type OperatingBreak struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	OperatingHoursID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`

	StartTime string `gorm:"size:5;not null" json:"start"`
	EndTime   string `gorm:"size:5;not null" json:"end"`
}
