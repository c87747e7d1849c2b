package appointment

import (
	"context"
	"log/slog"
	"time"

	"github.com/BruksfildServices01/agenda-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/agenda-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/agenda-scheduler/internal/events"
)

const completeBatchSize = 200

// CompleteElapsed moves every confirmed appointment whose end time has passed
// to completed. It is driven by the scheduler in internal/jobs.
type CompleteElapsed struct {
	repo      domain.Repository
	audit     *audit.Dispatcher
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewCompleteElapsed(
	repo domain.Repository,
	audit *audit.Dispatcher,
	publisher events.Publisher,
	logger *slog.Logger,
) *CompleteElapsed {
	return &CompleteElapsed{
		repo:      repo,
		audit:     audit,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (uc *CompleteElapsed) WithClock(now func() time.Time) *CompleteElapsed {
	uc.now = now
	return uc
}

func (uc *CompleteElapsed) Execute(ctx context.Context) (int, error) {
	now := uc.now().UTC()
	total := 0

	for {
		done, err := uc.repo.CompleteElapsed(ctx, now, completeBatchSize)
		if err != nil {
			return total, err
		}

		for i := range done {
			ap := &done[i]
			uc.audit.Dispatch(audit.Event{
				BusinessID: ap.BusinessID,
				Action:     audit.ActionAppointmentCompleted,
				Entity:     "appointment",
				EntityID:   &ap.ID,
				Metadata:   map[string]any{"source": "scheduler"},
			})
			publish(ctx, uc.publisher, uc.logger, events.TypeAppointmentCompleted, ap, now)
		}

		total += len(done)
		if len(done) < completeBatchSize {
			return total, nil
		}
	}
}
