// Package events publishes appointment lifecycle events.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/agenda-scheduler/internal/models"
)

const (
	TypeAppointmentConfirmed = "appointment.confirmed"
	TypeAppointmentCancelled = "appointment.cancelled"
	TypeAppointmentCompleted = "appointment.completed"
)

type AppointmentEvent struct {
	EventID       uuid.UUID `json:"event_id"`
	Type          string    `json:"type"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	BusinessID    uuid.UUID `json:"business_id"`
	ServiceID     uuid.UUID `json:"service_id"`
	ClientID      uuid.UUID `json:"client_id"`
	StaffID       string    `json:"staff_id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func FromAppointment(eventType string, ap *models.Appointment, at time.Time) AppointmentEvent {
	return AppointmentEvent{
		EventID:       uuid.New(),
		Type:          eventType,
		AppointmentID: ap.ID,
		BusinessID:    ap.BusinessID,
		ServiceID:     ap.ServiceID,
		ClientID:      ap.ClientID,
		StaffID:       ap.StaffID,
		StartTime:     ap.StartTime.UTC(),
		EndTime:       ap.EndTime.UTC(),
		Status:        ap.Status,
		OccurredAt:    at.UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, ev AppointmentEvent) error
	Close() error
}

// Noop is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, AppointmentEvent) error { return nil }
func (Noop) Close() error                                    { return nil }
