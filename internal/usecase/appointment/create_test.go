package appointment

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	domain "github.com/BruksfildServices01/agenda-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/agenda-scheduler/internal/httperr"
	"github.com/BruksfildServices01/agenda-scheduler/internal/models"
)

func TestCreate_ConfirmsFreeSlot(t *testing.T) {
	h := newHarness(t)

	ap, err := h.create().Execute(context.Background(), h.input("09:30"))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if ap.Status != string(domain.StatusConfirmed) {
		t.Fatalf("expected confirmed, got %s", ap.Status)
	}
	if !ap.StartTime.Equal(monday.Add(9*time.Hour+30*time.Minute)) || ap.EndTime.Sub(ap.StartTime) != 30*time.Minute {
		t.Fatalf("unexpected interval %s-%s", ap.StartTime, ap.EndTime)
	}
	if ap.StaffID != models.AnyStaff || ap.Day != "2030-03-04" {
		t.Fatalf("unexpected lane %q/%q", ap.StaffID, ap.Day)
	}
	if ap.DurationMinutes != 30 || !ap.Price.Equal(h.repo.service.Price) {
		t.Fatalf("snapshot not taken: %+v", ap)
	}

	h.dispatch.Close()
	if !slices.Contains(h.audit.actions(), "appointment_created") {
		t.Fatalf("expected audit event, got %v", h.audit.actions())
	}
	if got := h.publisher.types(); !slices.Equal(got, []string{"appointment.confirmed"}) {
		t.Fatalf("expected confirmed event, got %v", got)
	}
}

func TestCreate_EndUsesCurrentServiceDuration(t *testing.T) {
	h := newHarness(t)
	h.repo.service.DurationMinutes = 60

	ap, err := h.create().Execute(context.Background(), h.input("10:00"))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if ap.EndTime.Sub(ap.StartTime) != time.Hour || ap.DurationMinutes != 60 {
		t.Fatalf("expected 60 minute booking, got %+v", ap)
	}
}

func TestCreate_ConflictWritesNothing(t *testing.T) {
	h := newHarness(t)
	uc := h.create()

	if _, err := uc.Execute(context.Background(), h.input("09:30")); err != nil {
		t.Fatalf("first: %v", err)
	}

	_, err := uc.Execute(context.Background(), h.input("09:30"))
	if !errors.Is(err, domain.ErrSlotConflict) {
		t.Fatalf("expected slot conflict, got %v", err)
	}
	if n := h.repo.confirmed(); n != 1 {
		t.Fatalf("expected 1 confirmed appointment, got %d", n)
	}

	h.dispatch.Close()
	if !slices.Contains(h.audit.actions(), "appointment_conflict") {
		t.Fatalf("expected conflict to be audited, got %v", h.audit.actions())
	}
}

func TestCreate_ConcurrentSameSlotExactlyOneWins(t *testing.T) {
	for round := 0; round < 20; round++ {
		h := newHarness(t)
		uc := h.create()

		const n = 8
		var (
			wg    sync.WaitGroup
			start = make(chan struct{})
			errs  = make([]error, n)
		)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				_, errs[i] = uc.Execute(context.Background(), h.input("09:30"))
			}(i)
		}
		close(start)
		wg.Wait()

		wins, conflicts := 0, 0
		for _, err := range errs {
			switch {
			case err == nil:
				wins++
			case httperr.IsKind(err, httperr.KindSlotConflict):
				conflicts++
			default:
				t.Fatalf("unexpected error %v", err)
			}
		}
		if wins != 1 || conflicts != n-1 {
			t.Fatalf("round %d: expected 1 win and %d conflicts, got %d and %d", round, n-1, wins, conflicts)
		}
		if c := h.repo.confirmed(); c != 1 {
			t.Fatalf("round %d: expected 1 confirmed appointment, got %d", round, c)
		}
	}
}

func TestCreate_UnknownStaffCannotOpenALane(t *testing.T) {
	h := newHarness(t)
	uc := h.create()

	if _, err := uc.Execute(context.Background(), h.input("09:30")); err != nil {
		t.Fatalf("any lane: %v", err)
	}

	for _, staff := range []string{"maria", "nobody", "x1"} {
		in := h.input("09:30")
		in.StaffID = staff
		if _, err := uc.Execute(context.Background(), in); !errors.Is(err, domain.ErrStaffNotFound) {
			t.Fatalf("%q: expected staff_not_found, got %v", staff, err)
		}
	}

	in := h.input("09:30")
	in.StaffID = models.AnyStaff
	if _, err := uc.Execute(context.Background(), in); !errors.Is(err, domain.ErrSlotConflict) {
		t.Fatalf("explicit any: expected slot conflict, got %v", err)
	}

	if n := h.repo.confirmed(); n != 1 {
		t.Fatalf("expected 1 confirmed appointment, got %d", n)
	}
}

func TestCreate_Rejections(t *testing.T) {
	cases := []struct {
		name  string
		setup func(h *harness, in *CreateAppointmentInput)
		check func(err error) bool
	}{
		{
			name:  "closed day",
			setup: func(h *harness, in *CreateAppointmentInput) { in.Date = "2030-03-03" },
			check: func(err error) bool { return httperr.IsKind(err, httperr.KindClosedDay) },
		},
		{
			name:  "outside hours",
			setup: func(h *harness, in *CreateAppointmentInput) { in.Time = "11:45" },
			check: func(err error) bool { return errors.Is(err, domain.ErrOutsideHours) },
		},
		{
			name:  "off grid",
			setup: func(h *harness, in *CreateAppointmentInput) { in.Time = "09:10" },
			check: func(err error) bool { return errors.Is(err, domain.ErrOutsideHours) },
		},
		{
			name:  "too soon",
			setup: func(h *harness, in *CreateAppointmentInput) { h.now = monday.Add(9*time.Hour + 45*time.Minute) },
			check: func(err error) bool { return errors.Is(err, domain.ErrTooSoon) },
		},
		{
			name:  "unknown service",
			setup: func(h *harness, in *CreateAppointmentInput) { in.ServiceID = uuid.New() },
			check: func(err error) bool { return httperr.IsKind(err, httperr.KindNotFound) },
		},
		{
			name:  "unknown business",
			setup: func(h *harness, in *CreateAppointmentInput) { in.BusinessID = uuid.New() },
			check: func(err error) bool { return httperr.IsKind(err, httperr.KindNotFound) },
		},
		{
			name:  "invalid duration",
			setup: func(h *harness, in *CreateAppointmentInput) { h.repo.service.DurationMinutes = 0 },
			check: func(err error) bool { return httperr.IsKind(err, httperr.KindInvalidDuration) },
		},
		{
			name:  "bad date",
			setup: func(h *harness, in *CreateAppointmentInput) { in.Date = "04/03/2030" },
			check: func(err error) bool { return httperr.IsBusiness(err, "invalid_date_or_time") },
		},
	}

	for _, tc := range cases {
		h := newHarness(t)
		in := h.input("09:30")
		tc.setup(h, &in)

		_, err := h.create().Execute(context.Background(), in)
		if !tc.check(err) {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if n := h.repo.confirmed(); n != 0 {
			t.Fatalf("%s: nothing should be written, got %d", tc.name, n)
		}
	}
}

func TestCreate_TimeoutReconciledAsCommitted(t *testing.T) {
	h := newHarness(t)

	// The row is committed but the caller only sees a deadline.
	h.repo.createHook = func(ap *models.Appointment) error {
		ap.ID = uuid.New()
		ap.Status = string(domain.StatusConfirmed)
		h.repo.apps = append(h.repo.apps, *ap)
		return context.DeadlineExceeded
	}

	in := h.input("10:00")
	ap, err := h.create().Execute(context.Background(), in)
	if err != nil {
		t.Fatalf("expected reconciliation to succeed, got %v", err)
	}
	if ap.ClientID != in.ClientID || ap.ID == uuid.Nil {
		t.Fatalf("unexpected appointment %+v", ap)
	}
	if h.repo.createCalls != 1 {
		t.Fatalf("write must not be retried, got %d calls", h.repo.createCalls)
	}
}

func TestCreate_TimeoutNotCommittedReturnsError(t *testing.T) {
	h := newHarness(t)
	h.repo.createHook = func(*models.Appointment) error { return context.DeadlineExceeded }

	_, err := h.create().Execute(context.Background(), h.input("10:00"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if h.repo.createCalls != 1 {
		t.Fatalf("write must not be retried, got %d calls", h.repo.createCalls)
	}
	if n := h.repo.confirmed(); n != 0 {
		t.Fatalf("expected nothing stored, got %d", n)
	}
}
