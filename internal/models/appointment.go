package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AnyStaff is the staff lane used when the client did not pick anyone.
const AnyStaff = "any"

type Appointment struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	BusinessID uuid.UUID `gorm:"type:uuid;not null;index:idx_appointments_lane" json:"business_id"`
	Business   *Business `gorm:"foreignKey:BusinessID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"business,omitempty"`

	StaffID string `gorm:"size:64;not null;default:'any';index:idx_appointments_lane" json:"staff_id"`

	ServiceID uuid.UUID `gorm:"type:uuid;not null;index" json:"service_id"`
	Service   *Service  `gorm:"foreignKey:ServiceID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"service,omitempty"`

	ClientID uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`
	Client   *User     `gorm:"foreignKey:ClientID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"client,omitempty"`

	StartTime time.Time `gorm:"not null;index:idx_appointments_lane" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`
	// Day is the local calendar date (business timezone) the slot belongs to.
	Day string `gorm:"size:10;not null" json:"day"`

	Status string `gorm:"size:20;not null;default:'confirmed';index" json:"status"`

	// Snapshots taken at booking time; later service edits never touch them.
	DurationMinutes int             `gorm:"not null" json:"duration_minutes"`
	Price           decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"price"`

	Notes       string     `gorm:"size:255" json:"notes"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookingLock is the row locked while a booking for (business, staff, day)
// is checked and written.
type BookingLock struct {
	BusinessID uuid.UUID `gorm:"type:uuid;primaryKey"`
	StaffID    string    `gorm:"size:64;primaryKey"`
	Day        string    `gorm:"size:10;primaryKey"`
	CreatedAt  time.Time
}
