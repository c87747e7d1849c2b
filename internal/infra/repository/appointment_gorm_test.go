package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/BruksfildServices01/agenda-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/agenda-scheduler/internal/httperr"
	"github.com/BruksfildServices01/agenda-scheduler/internal/models"
	"github.com/BruksfildServices01/agenda-scheduler/internal/testutil"
)

// 2030-03-04 is a Monday.
var day = time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

func candidate(f testutil.Fixture, staff string, start time.Time) *models.Appointment {
	return &models.Appointment{
		BusinessID:      f.Business.ID,
		ServiceID:       f.Service.ID,
		ClientID:        f.Client.ID,
		StaffID:         staff,
		StartTime:       start,
		EndTime:         start.Add(30 * time.Minute),
		Day:             start.Format("2006-01-02"),
		DurationMinutes: 30,
		Price:           decimal.RequireFromString("25.00"),
	}
}

func TestCreateIfFree_RejectsOverlap(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.NewDB(t)
	f := testutil.Seed(t, gdb)
	repo := NewAppointmentGormRepository(gdb)

	if err := repo.CreateIfFree(ctx, candidate(f, models.AnyStaff, at(9, 30))); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	err := repo.CreateIfFree(ctx, candidate(f, models.AnyStaff, at(9, 30)))
	if !httperr.IsKind(err, httperr.KindSlotConflict) {
		t.Fatalf("expected slot conflict, got %v", err)
	}

	// Partial overlap is a conflict as well.
	partial := candidate(f, models.AnyStaff, at(9, 45))
	if err := repo.CreateIfFree(ctx, partial); !httperr.IsKind(err, httperr.KindSlotConflict) {
		t.Fatalf("expected slot conflict for 09:45, got %v", err)
	}

	var count int64
	gdb.Model(&models.Appointment{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one stored appointment, got %d", count)
	}
}

func TestCreateIfFree_AdjacentAndOtherLanes(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.NewDB(t)
	f := testutil.Seed(t, gdb)
	repo := NewAppointmentGormRepository(gdb)

	for _, ap := range []*models.Appointment{
		candidate(f, models.AnyStaff, at(9, 0)),
		candidate(f, models.AnyStaff, at(9, 30)),
		candidate(f, "maria", at(9, 0)),
	} {
		if err := repo.CreateIfFree(ctx, ap); err != nil {
			t.Fatalf("booking %s/%s: %v", ap.StaffID, ap.StartTime.Format("15:04"), err)
		}
	}

	var locks int64
	gdb.Model(&models.BookingLock{}).Count(&locks)
	if locks != 2 {
		t.Fatalf("expected one lock row per lane and day, got %d", locks)
	}
}

func TestCreateIfFree_CancelledDoesNotBlock(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.NewDB(t)
	f := testutil.Seed(t, gdb)
	repo := NewAppointmentGormRepository(gdb)

	first := candidate(f, models.AnyStaff, at(10, 0))
	if err := repo.CreateIfFree(ctx, first); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.TransitionStatus(ctx, first, domain.StatusCancelled, at(8, 0)); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if err := repo.CreateIfFree(ctx, candidate(f, models.AnyStaff, at(10, 0))); err != nil {
		t.Fatalf("rebooking a cancelled slot: %v", err)
	}
}

func TestListConfirmedAndFindBooking(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.NewDB(t)
	f := testutil.Seed(t, gdb)
	repo := NewAppointmentGormRepository(gdb)

	for _, h := range []int{9, 11} {
		if err := repo.CreateIfFree(ctx, candidate(f, models.AnyStaff, at(h, 0))); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	// Different lane, must not show up.
	if err := repo.CreateIfFree(ctx, candidate(f, "joao", at(10, 0))); err != nil {
		t.Fatalf("create: %v", err)
	}

	apps, err := repo.ListConfirmed(ctx, f.Business.ID, models.AnyStaff, day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("ListConfirmed: %v", err)
	}
	if len(apps) != 2 || !apps[0].StartTime.Equal(at(9, 0)) || !apps[1].StartTime.Equal(at(11, 0)) {
		t.Fatalf("unexpected confirmed list: %+v", apps)
	}

	found, err := repo.FindBooking(ctx, f.Business.ID, models.AnyStaff, f.Client.ID, at(11, 0))
	if err != nil {
		t.Fatalf("FindBooking: %v", err)
	}
	if !found.EndTime.Equal(at(11, 30)) {
		t.Fatalf("unexpected booking %+v", found)
	}

	_, err = repo.FindBooking(ctx, f.Business.ID, models.AnyStaff, f.Client.ID, at(10, 0))
	if !httperr.IsKind(err, httperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTransitionStatus_OnlyFromConfirmed(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.NewDB(t)
	f := testutil.Seed(t, gdb)
	repo := NewAppointmentGormRepository(gdb)

	ap := candidate(f, models.AnyStaff, at(9, 0))
	if err := repo.CreateIfFree(ctx, ap); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.TransitionStatus(ctx, ap, domain.StatusCompleted, at(9, 30)); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := repo.TransitionStatus(ctx, ap, domain.StatusCancelled, at(9, 40)); !httperr.IsKind(err, httperr.KindInvalidState) {
		t.Fatalf("expected invalid_state, got %v", err)
	}

	stored, err := repo.GetAppointment(ctx, ap.ID)
	if err != nil {
		t.Fatalf("GetAppointment: %v", err)
	}
	if stored.Status != string(domain.StatusCompleted) || stored.CompletedAt == nil || stored.CancelledAt != nil {
		t.Fatalf("unexpected stored state %+v", stored)
	}
}

func TestCompleteElapsed(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.NewDB(t)
	f := testutil.Seed(t, gdb)
	repo := NewAppointmentGormRepository(gdb)

	past := candidate(f, models.AnyStaff, at(9, 0))
	future := candidate(f, models.AnyStaff, at(11, 0))
	for _, ap := range []*models.Appointment{past, future} {
		if err := repo.CreateIfFree(ctx, ap); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	done, err := repo.CompleteElapsed(ctx, at(10, 0), 100)
	if err != nil {
		t.Fatalf("CompleteElapsed: %v", err)
	}
	if len(done) != 1 || done[0].ID != past.ID {
		t.Fatalf("expected only the 09:00 appointment, got %+v", done)
	}

	again, err := repo.CompleteElapsed(ctx, at(10, 0), 100)
	if err != nil || len(again) != 0 {
		t.Fatalf("second run should be a no-op, got %d %v", len(again), err)
	}

	stored, _ := repo.GetAppointment(ctx, future.ID)
	if stored.Status != string(domain.StatusConfirmed) {
		t.Fatalf("future appointment changed to %s", stored.Status)
	}
}

func TestGetOperatingHours(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.NewDB(t)
	f := testutil.Seed(t, gdb)
	repo := NewAppointmentGormRepository(gdb)

	h, err := repo.GetOperatingHours(ctx, f.Business.ID, 1)
	if err != nil {
		t.Fatalf("GetOperatingHours: %v", err)
	}
	if !h.IsOpen || h.Open.String() != "09:00" || h.Close.String() != "12:00" {
		t.Fatalf("unexpected hours %+v", h)
	}

	if _, err := repo.GetOperatingHours(ctx, f.Business.ID, 6); !httperr.IsKind(err, httperr.KindNotFound) {
		t.Fatalf("expected not found for saturday, got %v", err)
	}

	// A stored row that breaks the invariants is rejected at the boundary.
	bad := models.OperatingHours{BusinessID: f.Business.ID, Weekday: 6, IsOpen: true, OpenTime: "18:00", CloseTime: "09:00"}
	if err := gdb.Create(&bad).Error; err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = repo.GetOperatingHours(ctx, f.Business.ID, 6)
	if err == nil {
		t.Fatalf("expected invalid stored hours to fail")
	}
	if httperr.IsKind(err, httperr.KindInvalid) {
		t.Fatalf("invalid stored data must not surface as a client error: %v", err)
	}
}

func TestGetServiceAndBusiness_NotFound(t *testing.T) {
	ctx := context.Background()
	gdb := testutil.NewDB(t)
	f := testutil.Seed(t, gdb)
	repo := NewAppointmentGormRepository(gdb)

	if _, err := repo.GetService(ctx, f.Business.ID, f.Owner.ID); !httperr.IsBusiness(err, "service_not_found") {
		t.Fatalf("expected service_not_found, got %v", err)
	}
	if _, err := repo.GetBusiness(ctx, f.Owner.ID); !httperr.IsBusiness(err, "business_not_found") {
		t.Fatalf("expected business_not_found, got %v", err)
	}
	svc, err := repo.GetService(ctx, f.Business.ID, f.Service.ID)
	if err != nil || !svc.Price.Equal(decimal.RequireFromString("25")) {
		t.Fatalf("unexpected service %+v %v", svc, err)
	}
}

func TestCreateIfFree_ConcurrentOverlappingWritersOneWins(t *testing.T) {
	const writers = 8

	for round := 0; round < 5; round++ {
		gdb := testutil.NewFileDB(t, writers)
		f := testutil.Seed(t, gdb)
		repo := NewAppointmentGormRepository(gdb)

		var (
			wg    sync.WaitGroup
			start = make(chan struct{})
			errs  = make([]error, writers)
		)
		for i := 0; i < writers; i++ {
			// Half ask for 09:30, half for the overlapping 09:45.
			ap := candidate(f, models.AnyStaff, at(9, 30+15*(i%2)))
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				errs[i] = repo.CreateIfFree(context.Background(), ap)
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
				t.Fatalf("round %d: unexpected error %v", round, err)
			}
		}
		if wins != 1 || conflicts != writers-1 {
			t.Fatalf("round %d: expected 1 win and %d conflicts, got %d and %d", round, writers-1, wins, conflicts)
		}

		var confirmed int64
		if err := gdb.Model(&models.Appointment{}).
			Where("status = ?", string(domain.StatusConfirmed)).
			Count(&confirmed).Error; err != nil {
			t.Fatalf("count: %v", err)
		}
		if confirmed != 1 {
			t.Fatalf("round %d: expected 1 confirmed row, got %d", round, confirmed)
		}
	}
}
