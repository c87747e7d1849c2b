package appointment

import (
	"context"
	"log/slog"
	"time"

	"github.com/BruksfildServices01/agenda-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/agenda-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/agenda-scheduler/internal/events"
	"github.com/BruksfildServices01/agenda-scheduler/internal/httperr"
	"github.com/BruksfildServices01/agenda-scheduler/internal/models"
)

type CompleteAppointment struct {
	repo      domain.Repository
	audit     *audit.Dispatcher
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewCompleteAppointment(
	repo domain.Repository,
	audit *audit.Dispatcher,
	publisher events.Publisher,
	logger *slog.Logger,
) *CompleteAppointment {
	return &CompleteAppointment{
		repo:      repo,
		audit:     audit,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (uc *CompleteAppointment) WithClock(now func() time.Time) *CompleteAppointment {
	uc.now = now
	return uc
}

// Execute completes an appointment on behalf of a business manager. An
// appointment that has not started yet cannot be completed.
func (uc *CompleteAppointment) Execute(
	ctx context.Context,
	in TransitionInput,
) (*models.Appointment, error) {

	ap, err := loadForActor(ctx, uc.repo, in)
	if err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	if now.Before(ap.StartTime) {
		return nil, httperr.ErrBusiness("appointment_not_started")
	}

	if err := domain.Complete(ap, now); err != nil {
		return nil, err
	}

	if err := uc.repo.TransitionStatus(ctx, ap, domain.StatusCompleted, now); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		BusinessID: ap.BusinessID,
		UserID:     &in.ActorID,
		Action:     audit.ActionAppointmentCompleted,
		Entity:     "appointment",
		EntityID:   &ap.ID,
	})
	publish(ctx, uc.publisher, uc.logger, events.TypeAppointmentCompleted, ap, now)

	return ap, nil
}
