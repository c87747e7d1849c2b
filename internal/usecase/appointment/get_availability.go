package appointment

import (
	"context"
	"errors"
	"slices"
	"time"

	domain "github.com/BruksfildServices01/agenda-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/agenda-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/agenda-scheduler/internal/models"
	"github.com/BruksfildServices01/agenda-scheduler/internal/timezone"
)

type GetAvailability struct {
	repo domain.Repository
	now  func() time.Time
}

func NewGetAvailability(repo domain.Repository) *GetAvailability {
	return &GetAvailability{repo: repo, now: time.Now}
}

func (uc *GetAvailability) WithClock(now func() time.Time) *GetAvailability {
	uc.now = now
	return uc
}

func (uc *GetAvailability) Execute(
	ctx context.Context,
	in domain.AvailabilityInput,
) (*domain.Availability, error) {

	day, err := uc.free(ctx, in)
	if err != nil {
		return nil, err
	}

	return &domain.Availability{
		Date:   day.date.Format("2006-01-02"),
		Closed: day.closed,
		Slots:  domain.ToTimeSlots(day.slots, day.loc),
	}, nil
}

// freeDay is the bookable state of one local date.
type freeDay struct {
	date     time.Time
	loc      *time.Location
	closed   bool
	hours    availability.DayHours
	slots    []availability.Slot
	business *models.Business
	service  *models.Service
}

// free always reads the latest confirmed appointments; nothing here is cached.
func (uc *GetAvailability) free(
	ctx context.Context,
	in domain.AvailabilityInput,
) (*freeDay, error) {

	staffID, err := domain.ResolveStaff(in.StaffID)
	if err != nil {
		return nil, err
	}

	business, err := uc.repo.GetBusiness(ctx, in.BusinessID)
	if err != nil {
		return nil, err
	}
	if !business.IsActive {
		return nil, domain.ErrBusinessNotFound
	}

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

	loc := timezone.Location(business.Timezone)
	date := time.Date(in.Date.Year(), in.Date.Month(), in.Date.Day(), 0, 0, 0, 0, loc)

	out := &freeDay{
		date:     date,
		loc:      loc,
		slots:    []availability.Slot{},
		business: business,
		service:  service,
	}

	hours, err := uc.repo.GetOperatingHours(ctx, in.BusinessID, int(date.Weekday()))
	if errors.Is(err, domain.ErrScheduleNotFound) {
		out.closed = true
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	out.hours = hours
	if !hours.IsOpen {
		out.closed = true
		return out, nil
	}

	busy, err := uc.repo.ListConfirmed(
		ctx,
		in.BusinessID,
		staffID,
		date,
		date.AddDate(0, 0, 1),
	)
	if err != nil {
		return nil, err
	}

	duration := time.Duration(service.DurationMinutes) * time.Minute
	cutoff := uc.now().Add(time.Duration(business.MinAdvanceMinutes) * time.Minute)

	out.slots = slices.Collect(availability.NotBefore(
		availability.Filter(availability.Generate(date, hours, duration), domain.Busy(busy)),
		cutoff,
	))
	return out, nil
}
