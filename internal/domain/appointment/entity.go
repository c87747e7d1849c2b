package appointment

import (
	"time"

	"github.com/BruksfildServices01/agenda-scheduler/internal/models"
)

// ===============================
// Domain Actions
// ===============================

func Cancel(ap *models.Appointment, now time.Time) error {
	if err := CanCancel(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusCancelled)
	ap.CancelledAt = &now
	return nil
}

func Complete(ap *models.Appointment, now time.Time) error {
	if err := CanComplete(Status(ap.Status)); err != nil {
		return err
	}

	ap.Status = string(StatusCompleted)
	ap.CompletedAt = &now
	return nil
}

// ResolveStaff maps a requested staff choice to its booking lane. Businesses
// have no staff roster yet, so the shared lane is the only one that exists.
func ResolveStaff(staffID string) (string, error) {
	if staffID == "" || staffID == models.AnyStaff {
		return models.AnyStaff, nil
	}
	return "", ErrStaffNotFound
}
