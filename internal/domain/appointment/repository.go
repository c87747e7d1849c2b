package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/agenda-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/agenda-scheduler/internal/models"
)

type ScheduleRepository interface {
	// GetOperatingHours returns the validated hours of one weekday or
	// ErrScheduleNotFound.
	GetOperatingHours(
		ctx context.Context,
		businessID uuid.UUID,
		weekday int,
	) (availability.DayHours, error)
}

type AppointmentRepository interface {
	// -------- Availability --------
	ListConfirmed(
		ctx context.Context,
		businessID uuid.UUID,
		staffID string,
		from time.Time,
		to time.Time,
	) ([]models.Appointment, error)

	// -------- Booking --------

	// CreateIfFree inserts ap as confirmed unless it overlaps a confirmed
	// appointment of the same business and staff, in which case it returns
	// ErrSlotConflict and writes nothing.
	CreateIfFree(
		ctx context.Context,
		ap *models.Appointment,
	) error

	FindBooking(
		ctx context.Context,
		businessID uuid.UUID,
		staffID string,
		clientID uuid.UUID,
		start time.Time,
	) (*models.Appointment, error)

	// -------- State change --------
	GetAppointment(
		ctx context.Context,
		id uuid.UUID,
	) (*models.Appointment, error)

	// TransitionStatus moves a confirmed appointment to status `to`. It
	// returns ErrInvalidState when the stored row is no longer confirmed.
	TransitionStatus(
		ctx context.Context,
		ap *models.Appointment,
		to Status,
		at time.Time,
	) error

	CompleteElapsed(
		ctx context.Context,
		now time.Time,
		limit int,
	) ([]models.Appointment, error)

	// -------- Listing --------
	ListForPeriod(
		ctx context.Context,
		businessID uuid.UUID,
		from time.Time,
		to time.Time,
	) ([]models.Appointment, error)

	ListForClient(
		ctx context.Context,
		clientID uuid.UUID,
	) ([]models.Appointment, error)
}

type ServiceRepository interface {
	GetService(
		ctx context.Context,
		businessID uuid.UUID,
		serviceID uuid.UUID,
	) (*models.Service, error)
}

type BusinessRepository interface {
	GetBusiness(
		ctx context.Context,
		id uuid.UUID,
	) (*models.Business, error)
}

type Repository interface {
	ScheduleRepository
	AppointmentRepository
	ServiceRepository
	BusinessRepository
}
