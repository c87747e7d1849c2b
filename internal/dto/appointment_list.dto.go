package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/agenda-scheduler/internal/models"
	"github.com/BruksfildServices01/agenda-scheduler/internal/timezone"
)

type AppointmentListDTO struct {
	ID          uuid.UUID       `json:"id"`
	StartTime   time.Time       `json:"start_time"`
	EndTime     time.Time       `json:"end_time"`
	Status      string          `json:"status"`
	StaffID     string          `json:"staff_id"`
	ClientName  string          `json:"client_name"`
	ServiceName string          `json:"service_name"`
	Price       decimal.Decimal `json:"price"`
}

// ClientAppointmentDTO is what a client sees in their own dashboard.
type ClientAppointmentDTO struct {
	ID           uuid.UUID `json:"id"`
	BusinessID   uuid.UUID `json:"business_id"`
	BusinessName string    `json:"business_name"`
	ServiceName  string    `json:"service_name"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Status       string    `json:"status"`
}

// Start and end are rendered in loc.
func ToAppointmentList(apps []models.Appointment, loc *time.Location) []AppointmentListDTO {
	out := make([]AppointmentListDTO, 0, len(apps))
	for _, ap := range apps {
		item := AppointmentListDTO{
			ID:        ap.ID,
			StartTime: ap.StartTime.In(loc),
			EndTime:   ap.EndTime.In(loc),
			Status:    ap.Status,
			StaffID:   ap.StaffID,
			Price:     ap.Price,
		}
		if ap.Client != nil {
			item.ClientName = ap.Client.Name
		}
		if ap.Service != nil {
			item.ServiceName = ap.Service.Name
		}
		out = append(out, item)
	}
	return out
}

func ToClientAppointments(apps []models.Appointment) []ClientAppointmentDTO {
	out := make([]ClientAppointmentDTO, 0, len(apps))
	for _, ap := range apps {
		item := ClientAppointmentDTO{
			ID:         ap.ID,
			BusinessID: ap.BusinessID,
			StartTime:  ap.StartTime,
			EndTime:    ap.EndTime,
			Status:     ap.Status,
		}
		if ap.Business != nil {
			item.BusinessName = ap.Business.Name
			loc := timezone.Location(ap.Business.Timezone)
			item.StartTime = ap.StartTime.In(loc)
			item.EndTime = ap.EndTime.In(loc)
		}
		if ap.Service != nil {
			item.ServiceName = ap.Service.Name
		}
		out = append(out, item)
	}
	return out
}
