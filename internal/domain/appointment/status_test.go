package appointment

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/BruksfildServices01/agenda-scheduler/internal/httperr"
	"github.com/BruksfildServices01/agenda-scheduler/internal/models"
)

func TestCancel_FromConfirmed(t *testing.T) {
	ap := &models.Appointment{Status: string(StatusConfirmed)}
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	if err := Cancel(ap, now); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if ap.Status != string(StatusCancelled) {
		t.Fatalf("expected cancelled, got %s", ap.Status)
	}
	if ap.CancelledAt == nil || !ap.CancelledAt.Equal(now) {
		t.Fatalf("expected cancelled_at to be set")
	}
}

func TestComplete_FromConfirmed(t *testing.T) {
	ap := &models.Appointment{Status: string(StatusConfirmed)}
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	if err := Complete(ap, now); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if ap.Status != string(StatusCompleted) || ap.CompletedAt == nil {
		t.Fatalf("expected completed with completed_at, got %+v", ap)
	}
}

func TestTerminalStatesReject(t *testing.T) {
	now := time.Now()
	for _, st := range []Status{StatusCancelled, StatusCompleted} {
		if !st.Terminal() {
			t.Fatalf("%s should be terminal", st)
		}

		ap := &models.Appointment{Status: string(st)}
		if err := Cancel(ap, now); !httperr.IsKind(err, httperr.KindInvalidState) {
			t.Fatalf("cancel from %s: expected invalid_state, got %v", st, err)
		}
		if err := Complete(ap, now); !httperr.IsKind(err, httperr.KindInvalidState) {
			t.Fatalf("complete from %s: expected invalid_state, got %v", st, err)
		}
		if ap.Status != string(st) {
			t.Fatalf("status changed from %s to %s", st, ap.Status)
		}
	}
}

func TestParseStatus(t *testing.T) {
	if s, err := ParseStatus("confirmed"); err != nil || s != StatusConfirmed {
		t.Fatalf("expected confirmed, got %q %v", s, err)
	}
	if _, err := ParseStatus("scheduled"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestResolveStaff(t *testing.T) {
	for _, in := range []string{"", models.AnyStaff} {
		lane, err := ResolveStaff(in)
		if err != nil || lane != models.AnyStaff {
			t.Fatalf("%q: expected %q, got %q %v", in, models.AnyStaff, lane, err)
		}
	}

	for _, in := range []string{"ana", "nobody", "ANY", strings.Repeat("x", 100)} {
		if _, err := ResolveStaff(in); !errors.Is(err, ErrStaffNotFound) {
			t.Fatalf("%q: expected staff_not_found, got %v", in, err)
		}
	}
}
