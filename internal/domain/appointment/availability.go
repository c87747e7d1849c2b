package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/agenda-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/agenda-scheduler/internal/models"
)

type AvailabilityInput struct {
	BusinessID uuid.UUID
	ServiceID  uuid.UUID
	StaffID    string
	Date       time.Time
}

type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type Availability struct {
	Date   string     `json:"date"`
	Closed bool       `json:"closed"`
	Slots  []TimeSlot `json:"slots"`
}

// ToTimeSlots formats slots as local "HH:MM" pairs.
func ToTimeSlots(slots []availability.Slot, loc *time.Location) []TimeSlot {
	out := make([]TimeSlot, 0, len(slots))
	for _, s := range slots {
		out = append(out, TimeSlot{
			Start: s.Start.In(loc).Format("15:04"),
			End:   s.End.In(loc).Format("15:04"),
		})
	}
	return out
}

// Busy converts appointments into the intervals the availability filter
// works on.
func Busy(aps []models.Appointment) []availability.Slot {
	out := make([]availability.Slot, 0, len(aps))
	for _, ap := range aps {
		out = append(out, availability.Slot{Start: ap.StartTime, End: ap.EndTime})
	}
	return out
}
