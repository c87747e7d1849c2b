package appointment

import "github.com/BruksfildServices01/agenda-scheduler/internal/httperr"

var (
	ErrBusinessNotFound    = httperr.ErrNotFound("business_not_found")
	ErrServiceNotFound     = httperr.ErrNotFound("service_not_found")
	ErrScheduleNotFound    = httperr.ErrNotFound("operating_hours_not_found")
	ErrAppointmentNotFound = httperr.ErrNotFound("appointment_not_found")
	ErrStaffNotFound       = httperr.ErrNotFound("staff_not_found")

	ErrClosedDay       = httperr.New(httperr.KindClosedDay, "closed_day")
	ErrInvalidDuration = httperr.New(httperr.KindInvalidDuration, "invalid_duration")
	ErrSlotConflict    = httperr.New(httperr.KindSlotConflict, "slot_conflict")
	ErrInvalidState    = httperr.New(httperr.KindInvalidState, "invalid_state")

	ErrOutsideHours     = httperr.ErrBusiness("outside_working_hours")
	ErrTooSoon          = httperr.ErrBusiness("too_soon")
	ErrInactiveService  = httperr.ErrBusiness("service_inactive")
	ErrInactiveBusiness = httperr.ErrBusiness("business_inactive")
	ErrServiceInUse     = httperr.New(httperr.KindInvalidState, "service_in_use")
)
