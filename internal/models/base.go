package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// newID fills an empty primary key before insert, so the same models work
// on PostgreSQL and on SQLite (which has no gen_random_uuid()).
func newID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (b *Business) BeforeCreate(tx *gorm.DB) error {
	newID(&b.ID)
	return nil
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	newID(&u.ID)
	return nil
}

func (s *Service) BeforeCreate(tx *gorm.DB) error {
	newID(&s.ID)
	return nil
}

func (h *OperatingHours) BeforeCreate(tx *gorm.DB) error {
	newID(&h.ID)
	return nil
}

func (b *OperatingBreak) BeforeCreate(tx *gorm.DB) error {
	newID(&b.ID)
	return nil
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	newID(&a.ID)
	return nil
}

func (l *AuditLog) BeforeCreate(tx *gorm.DB) error {
	newID(&l.ID)
	return nil
}
