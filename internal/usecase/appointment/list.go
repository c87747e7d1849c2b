package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	domain "github.com/BruksfildServices01/agenda-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/agenda-scheduler/internal/dto"
	"github.com/BruksfildServices01/agenda-scheduler/internal/httperr"
	"github.com/BruksfildServices01/agenda-scheduler/internal/timezone"
)

// ======================================================
// BY DATE
// ======================================================

type ListAppointmentsByDate struct {
	repo domain.Repository
}

func NewListAppointmentsByDate(repo domain.Repository) *ListAppointmentsByDate {
	return &ListAppointmentsByDate{repo: repo}
}

func (uc *ListAppointmentsByDate) Execute(
	ctx context.Context,
	businessID uuid.UUID,
	date time.Time,
) ([]dto.AppointmentListDTO, error) {

	business, err := uc.repo.GetBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}

	loc := timezone.Location(business.Timezone)
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)

	apps, err := uc.repo.ListForPeriod(ctx, businessID, start, start.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	return dto.ToAppointmentList(apps, loc), nil
}

// ======================================================
// BY MONTH
// ======================================================

type ListAppointmentsByMonth struct {
	repo domain.Repository
}

func NewListAppointmentsByMonth(repo domain.Repository) *ListAppointmentsByMonth {
	return &ListAppointmentsByMonth{repo: repo}
}

func (uc *ListAppointmentsByMonth) Execute(
	ctx context.Context,
	businessID uuid.UUID,
	year int,
	month int,
) ([]dto.AppointmentListDTO, error) {

	if month < 1 || month > 12 || year < 2000 || year > 2100 {
		return nil, httperr.ErrBusiness("invalid_month")
	}

	business, err := uc.repo.GetBusiness(ctx, businessID)
	if err != nil {
		return nil, err
	}

	loc := timezone.Location(business.Timezone)
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)

	apps, err := uc.repo.ListForPeriod(ctx, businessID, start, start.AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}

	return dto.ToAppointmentList(apps, loc), nil
}

// ======================================================
// CLIENT
// ======================================================

type ListClientAppointments struct {
	repo domain.Repository
}

func NewListClientAppointments(repo domain.Repository) *ListClientAppointments {
	return &ListClientAppointments{repo: repo}
}

func (uc *ListClientAppointments) Execute(
	ctx context.Context,
	clientID uuid.UUID,
) ([]dto.ClientAppointmentDTO, error) {

	apps, err := uc.repo.ListForClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return dto.ToClientAppointments(apps), nil
}
