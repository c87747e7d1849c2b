package appointment

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/agenda-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/agenda-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/agenda-scheduler/internal/events"
	"github.com/BruksfildServices01/agenda-scheduler/internal/models"
)

// TransitionInput identifies who changes which appointment. BusinessID is set
// when a business manager acts; it is uuid.Nil when the client acts on their
// own appointment.
type TransitionInput struct {
	AppointmentID uuid.UUID
	ActorID       uuid.UUID
	BusinessID    uuid.UUID
}

type CancelAppointment struct {
	repo      domain.Repository
	audit     *audit.Dispatcher
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewCancelAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	publisher events.Publisher,
	logger *slog.Logger,
) *CancelAppointment {
	return &CancelAppointment{
		repo:      repo,
		audit:     audit,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (uc *CancelAppointment) Execute(
	ctx context.Context,
	in TransitionInput,
) (*models.Appointment, error) {

	ap, err := loadForActor(ctx, uc.repo, in)
	if err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	if err := domain.Cancel(ap, now); err != nil {
		return nil, err
	}

	if err := uc.repo.TransitionStatus(ctx, ap, domain.StatusCancelled, now); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		BusinessID: ap.BusinessID,
		UserID:     &in.ActorID,
		Action:     audit.ActionAppointmentCancelled,
		Entity:     "appointment",
		EntityID:   &ap.ID,
	})
	publish(ctx, uc.publisher, uc.logger, events.TypeAppointmentCancelled, ap, now)

	return ap, nil
}

// loadForActor hides appointments outside the actor's scope as not found.
func loadForActor(
	ctx context.Context,
	repo domain.Repository,
	in TransitionInput,
) (*models.Appointment, error) {

	ap, err := repo.GetAppointment(ctx, in.AppointmentID)
	if err != nil {
		return nil, err
	}

	if in.BusinessID != uuid.Nil {
		if ap.BusinessID != in.BusinessID {
			return nil, domain.ErrAppointmentNotFound
		}
		return ap, nil
	}

	if ap.ClientID != in.ActorID {
		return nil, domain.ErrAppointmentNotFound
	}
	return ap, nil
}
