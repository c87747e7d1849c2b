package appointment

import "github.com/BruksfildServices01/agenda-scheduler/internal/httperr"

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// ===============================
// Validations
// ===============================

// CanCancel: only confirmed appointments can be cancelled.
func CanCancel(current Status) error {
	if current != StatusConfirmed {
		return ErrInvalidState
	}
	return nil
}

// CanComplete: only confirmed appointments can be completed.
func CanComplete(current Status) error {
	if current != StatusConfirmed {
		return ErrInvalidState
	}
	return nil
}

func InitialStatus() Status {
	return StatusConfirmed
}

func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusConfirmed, StatusCancelled, StatusCompleted:
		return Status(s), nil
	}
	return "", httperr.ErrBusiness("invalid_status")
}
