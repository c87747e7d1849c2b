package appointment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/BruksfildServices01/agenda-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/agenda-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/agenda-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/agenda-scheduler/internal/events"
	"github.com/BruksfildServices01/agenda-scheduler/internal/httperr"
	"github.com/BruksfildServices01/agenda-scheduler/internal/models"
	"github.com/BruksfildServices01/agenda-scheduler/internal/timezone"
)

var tracer = otel.Tracer("github.com/BruksfildServices01/agenda-scheduler/internal/usecase/appointment")

// ======================================================
// INPUT
// ======================================================

type CreateAppointmentInput struct {
	BusinessID uuid.UUID
	ServiceID  uuid.UUID
	StaffID    string
	ClientID   uuid.UUID

	Date  string
	Time  string
	Notes string
}

// ======================================================
// USE CASE
// ======================================================

type CreateAppointment struct {
	repo      domain.Repository
	audit     *audit.Dispatcher
	publisher events.Publisher
	logger    *slog.Logger

	now              func() time.Time
	reconcileTimeout time.Duration
}

func NewCreateAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	publisher events.Publisher,
	logger *slog.Logger,
) *CreateAppointment {
	return &CreateAppointment{
		repo:             repo,
		audit:            audit,
		publisher:        publisher,
		logger:           logger,
		now:              time.Now,
		reconcileTimeout: 3 * time.Second,
	}
}

func (uc *CreateAppointment) WithClock(now func() time.Time) *CreateAppointment {
	uc.now = now
	return uc
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	in CreateAppointmentInput,
) (ap *models.Appointment, err error) {

	staffID, err := domain.ResolveStaff(in.StaffID)
	if err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "appointment.create")
	span.SetAttributes(
		attribute.String("business.id", in.BusinessID.String()),
		attribute.String("staff.id", staffID),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	// --------------------------------------------------
	// 1. Business
	// --------------------------------------------------
	business, err := uc.repo.GetBusiness(ctx, in.BusinessID)
	if err != nil {
		return nil, err
	}
	if !business.IsActive {
		return nil, domain.ErrInactiveBusiness
	}

	// --------------------------------------------------
	// 2. Date / time in the business timezone
	// --------------------------------------------------
	loc := timezone.Location(business.Timezone)

	start, err := timezone.ParseDateTime(in.Date, in.Time, loc)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}

	// --------------------------------------------------
	// 3. Minimum advance
	// --------------------------------------------------
	minAdvance := time.Duration(business.MinAdvanceMinutes) * time.Minute
	if start.Before(uc.now().Add(minAdvance)) {
		return nil, domain.ErrTooSoon
	}

	// --------------------------------------------------
	// 4. Service; end is always derived from its current duration
	// --------------------------------------------------
	service, err := uc.repo.GetService(ctx, in.BusinessID, in.ServiceID)
	if err != nil {
		return nil, err
	}
	if !service.Active {
		return nil, domain.ErrInactiveService
	}
	if service.DurationMinutes <= 0 {
		return nil, domain.ErrInvalidDuration
	}

	duration := time.Duration(service.DurationMinutes) * time.Minute
	slot := availability.Slot{Start: start, End: start.Add(duration)}

	// --------------------------------------------------
	// 5. Operating hours; the slot must be on the day's grid
	// --------------------------------------------------
	hours, err := uc.repo.GetOperatingHours(ctx, in.BusinessID, int(start.Weekday()))
	if errors.Is(err, domain.ErrScheduleNotFound) {
		return nil, domain.ErrClosedDay
	}
	if err != nil {
		return nil, err
	}
	if !hours.IsOpen {
		return nil, domain.ErrClosedDay
	}

	dayStart := timezone.StartOfDay(start, loc)
	grid := availability.Generate(dayStart, hours, duration)
	if !availability.Contains(grid, slot) {
		return nil, domain.ErrOutsideHours
	}

	// --------------------------------------------------
	// 6. Fresh availability read (fast path)
	// --------------------------------------------------
	busy, err := uc.repo.ListConfirmed(ctx, in.BusinessID, staffID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	if !availability.Contains(availability.Filter(grid, domain.Busy(busy)), slot) {
		uc.dispatchConflict(in, staffID, slot)
		return nil, domain.ErrSlotConflict
	}

	// --------------------------------------------------
	// 7. Atomic conditional write
	// --------------------------------------------------
	ap = &models.Appointment{
		BusinessID:      in.BusinessID,
		ServiceID:       service.ID,
		ClientID:        in.ClientID,
		StaffID:         staffID,
		StartTime:       slot.Start,
		EndTime:         slot.End,
		Day:             timezone.DayKey(start, loc),
		Status:          string(domain.InitialStatus()),
		DurationMinutes: service.DurationMinutes,
		Price:           service.Price,
		Notes:           in.Notes,
	}

	if err := uc.repo.CreateIfFree(ctx, ap); err != nil {
		switch {
		case errors.Is(err, domain.ErrSlotConflict):
			uc.dispatchConflict(in, staffID, slot)
			return nil, err
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
			found, rerr := uc.reconcile(ctx, ap, err)
			if rerr != nil {
				return nil, rerr
			}
			ap = found
		default:
			return nil, fmt.Errorf("create appointment: %w", err)
		}
	}

	// --------------------------------------------------
	// 8. Audit + event
	// --------------------------------------------------
	uc.audit.Dispatch(audit.Event{
		BusinessID: ap.BusinessID,
		UserID:     &in.ClientID,
		Action:     audit.ActionAppointmentCreated,
		Entity:     "appointment",
		EntityID:   &ap.ID,
		Metadata: map[string]any{
			"staff_id":   ap.StaffID,
			"start_time": ap.StartTime,
			"service_id": ap.ServiceID,
		},
	})
	publish(ctx, uc.publisher, uc.logger, events.TypeAppointmentConfirmed, ap, uc.now())

	return ap, nil
}

// reconcile is called when the write outcome is unknown. It never retries the
// write: it looks for the row on a fresh context and reports the original
// error if it is not there.
func (uc *CreateAppointment) reconcile(
	ctx context.Context,
	ap *models.Appointment,
	cause error,
) (*models.Appointment, error) {

	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.reconcileTimeout)
	defer cancel()

	found, err := uc.repo.FindBooking(rctx, ap.BusinessID, ap.StaffID, ap.ClientID, ap.StartTime)
	if err == nil {
		uc.logger.InfoContext(ctx, "booking write timed out but was committed", "appointment_id", found.ID)
		return found, nil
	}
	if !errors.Is(err, domain.ErrAppointmentNotFound) {
		uc.logger.WarnContext(ctx, "booking reconciliation failed", "err", err)
	}

	return nil, fmt.Errorf("create appointment: %w", cause)
}

func (uc *CreateAppointment) dispatchConflict(in CreateAppointmentInput, staffID string, slot availability.Slot) {
	uc.audit.Dispatch(audit.Event{
		BusinessID: in.BusinessID,
		UserID:     &in.ClientID,
		Action:     audit.ActionAppointmentConflict,
		Entity:     "appointment",
		Metadata: map[string]any{
			"staff_id":   staffID,
			"start_time": slot.Start,
			"service_id": in.ServiceID,
		},
	})
}

// publish never fails the request; the booking is already committed.
func publish(
	ctx context.Context,
	p events.Publisher,
	logger *slog.Logger,
	eventType string,
	ap *models.Appointment,
	at time.Time,
) {
	if err := p.Publish(context.WithoutCancel(ctx), events.FromAppointment(eventType, ap, at)); err != nil {
		logger.WarnContext(ctx, "event publish failed", "type", eventType, "appointment_id", ap.ID, "err", err)
	}
}
