package appointment

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/agenda-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/agenda-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/agenda-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/agenda-scheduler/internal/events"
	"github.com/BruksfildServices01/agenda-scheduler/internal/models"
)

// fakeRepo is an in-memory domain.Repository. CreateIfFree checks and
// inserts under one mutex, the same guarantee the SQL implementation gives.
type fakeRepo struct {
	mu sync.Mutex

	business *models.Business
	service  *models.Service
	hours    map[int]availability.DayHours
	apps     []models.Appointment

	createCalls int
	createHook  func(ap *models.Appointment) error
}

func newFakeRepo(t *testing.T) *fakeRepo {
	t.Helper()

	hours, err := availability.ParseDayHours(1, true, "09:00", "12:00", nil)
	if err != nil {
		t.Fatalf("hours: %v", err)
	}

	return &fakeRepo{
		business: &models.Business{ID: uuid.New(), Name: "Studio", Timezone: "UTC", IsActive: true},
		service: &models.Service{
			ID:              uuid.New(),
			Name:            "Haircut",
			DurationMinutes: 30,
			Price:           decimal.RequireFromString("25"),
			Active:          true,
		},
		hours: map[int]availability.DayHours{1: hours},
	}
}

func (r *fakeRepo) GetBusiness(_ context.Context, id uuid.UUID) (*models.Business, error) {
	if id != r.business.ID {
		return nil, domain.ErrBusinessNotFound
	}
	b := *r.business
	return &b, nil
}

func (r *fakeRepo) GetService(_ context.Context, businessID, serviceID uuid.UUID) (*models.Service, error) {
	if businessID != r.business.ID || serviceID != r.service.ID {
		return nil, domain.ErrServiceNotFound
	}
	s := *r.service
	return &s, nil
}

func (r *fakeRepo) GetOperatingHours(_ context.Context, businessID uuid.UUID, weekday int) (availability.DayHours, error) {
	h, ok := r.hours[weekday]
	if !ok || businessID != r.business.ID {
		return availability.DayHours{}, domain.ErrScheduleNotFound
	}
	return h, nil
}

func (r *fakeRepo) ListConfirmed(_ context.Context, businessID uuid.UUID, staffID string, from, to time.Time) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Appointment
	for _, ap := range r.apps {
		if ap.BusinessID == businessID && ap.StaffID == staffID &&
			ap.Status == string(domain.StatusConfirmed) &&
			ap.StartTime.Before(to) && from.Before(ap.EndTime) {
			out = append(out, ap)
		}
	}
	return out, nil
}

func (r *fakeRepo) CreateIfFree(_ context.Context, ap *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.createCalls++
	if r.createHook != nil {
		if err := r.createHook(ap); err != nil {
			return err
		}
	}

	for _, other := range r.apps {
		if other.BusinessID == ap.BusinessID && other.StaffID == ap.StaffID &&
			other.Status == string(domain.StatusConfirmed) &&
			ap.StartTime.Before(other.EndTime) && other.StartTime.Before(ap.EndTime) {
			return domain.ErrSlotConflict
		}
	}

	ap.ID = uuid.New()
	ap.Status = string(domain.StatusConfirmed)
	r.apps = append(r.apps, *ap)
	return nil
}

func (r *fakeRepo) FindBooking(_ context.Context, businessID uuid.UUID, staffID string, clientID uuid.UUID, start time.Time) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ap := range r.apps {
		if ap.BusinessID == businessID && ap.StaffID == staffID && ap.ClientID == clientID &&
			ap.StartTime.Equal(start) && ap.Status == string(domain.StatusConfirmed) {
			found := ap
			return &found, nil
		}
	}
	return nil, domain.ErrAppointmentNotFound
}

func (r *fakeRepo) GetAppointment(_ context.Context, id uuid.UUID) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ap := range r.apps {
		if ap.ID == id {
			found := ap
			return &found, nil
		}
	}
	return nil, domain.ErrAppointmentNotFound
}

func (r *fakeRepo) TransitionStatus(_ context.Context, ap *models.Appointment, to domain.Status, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.apps {
		if r.apps[i].ID != ap.ID {
			continue
		}
		if r.apps[i].Status != string(domain.StatusConfirmed) {
			return domain.ErrInvalidState
		}
		r.apps[i].Status = string(to)
		if to == domain.StatusCancelled {
			r.apps[i].CancelledAt = &at
		} else {
			r.apps[i].CompletedAt = &at
		}
		return nil
	}
	return domain.ErrInvalidState
}

func (r *fakeRepo) CompleteElapsed(_ context.Context, now time.Time, limit int) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var done []models.Appointment
	for i := range r.apps {
		if len(done) == limit {
			break
		}
		if r.apps[i].Status == string(domain.StatusConfirmed) && !r.apps[i].EndTime.After(now) {
			r.apps[i].Status = string(domain.StatusCompleted)
			r.apps[i].CompletedAt = &now
			done = append(done, r.apps[i])
		}
	}
	return done, nil
}

func (r *fakeRepo) ListForPeriod(_ context.Context, businessID uuid.UUID, from, to time.Time) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Appointment
	for _, ap := range r.apps {
		if ap.BusinessID == businessID && !ap.StartTime.Before(from) && ap.StartTime.Before(to) {
			out = append(out, ap)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r *fakeRepo) ListForClient(_ context.Context, clientID uuid.UUID) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.Appointment
	for _, ap := range r.apps {
		if ap.ClientID == clientID {
			out = append(out, ap)
		}
	}
	return out, nil
}

func (r *fakeRepo) confirmed() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, ap := range r.apps {
		if ap.Status == string(domain.StatusConfirmed) {
			n++
		}
	}
	return n
}

var _ domain.Repository = (*fakeRepo)(nil)

// --------------------------------------------------
// Collaborators
// --------------------------------------------------

type memAudit struct {
	mu     sync.Mutex
	events []audit.Event
}

func (m *memAudit) Log(_ context.Context, ev audit.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

func (m *memAudit) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.events))
	for _, ev := range m.events {
		out = append(out, ev.Action)
	}
	return out
}

type memPublisher struct {
	mu     sync.Mutex
	events []events.AppointmentEvent
}

func (p *memPublisher) Publish(_ context.Context, ev events.AppointmentEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *memPublisher) Close() error { return nil }

func (p *memPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type harness struct {
	repo      *fakeRepo
	audit     *memAudit
	dispatch  *audit.Dispatcher
	publisher *memPublisher
	logger    *slog.Logger
	now       time.Time
}

// 2030-03-04 is a Monday; the clock is set a week earlier.
var monday = time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC)

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		repo:      newFakeRepo(t),
		audit:     &memAudit{},
		publisher: &memPublisher{},
		logger:    discardLogger(),
		now:       monday.AddDate(0, 0, -7),
	}
	h.dispatch = audit.NewDispatcher(h.audit, h.logger)
	t.Cleanup(h.dispatch.Close)
	return h
}

func (h *harness) clock() time.Time { return h.now }

func (h *harness) create() *CreateAppointment {
	return NewCreateAppointment(h.repo, h.dispatch, h.publisher, h.logger).WithClock(h.clock)
}

func (h *harness) input(clock string) CreateAppointmentInput {
	return CreateAppointmentInput{
		BusinessID: h.repo.business.ID,
		ServiceID:  h.repo.service.ID,
		ClientID:   uuid.New(),
		Date:       "2030-03-04",
		Time:       clock,
	}
}
