package handlers

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/agenda-scheduler/internal/httperr"
	"github.com/BruksfildServices01/agenda-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/agenda-scheduler/internal/middleware"
	usecase "github.com/BruksfildServices01/agenda-scheduler/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	create   *usecase.CreateAppointment
	cancel   *usecase.CancelAppointment
	complete *usecase.CompleteAppointment
	byDate   *usecase.ListAppointmentsByDate
	byMonth  *usecase.ListAppointmentsByMonth
	logger   *slog.Logger
}

func NewAppointmentHandler(
	create *usecase.CreateAppointment,
	cancel *usecase.CancelAppointment,
	complete *usecase.CompleteAppointment,
	byDate *usecase.ListAppointmentsByDate,
	byMonth *usecase.ListAppointmentsByMonth,
	logger *slog.Logger,
) *AppointmentHandler {
	return &AppointmentHandler{
		create:   create,
		cancel:   cancel,
		complete: complete,
		byDate:   byDate,
		byMonth:  byMonth,
		logger:   logger,
	}
}

// ======================================================
// DTOs
// ======================================================

type CreateAppointmentRequest struct {
	ServiceID string `json:"service_id" binding:"required"`
	StaffID   string `json:"staff_id" binding:"max=64"`
	Date      string `json:"date" binding:"required"` // YYYY-MM-DD
	Time      string `json:"time" binding:"required"` // HH:MM
	Notes     string `json:"notes" binding:"max=255"`
}

// ======================================================
// BOOK (CLIENT)
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	businessID, ok := paramID(c, "businessId", "business_not_found")
	if !ok {
		return
	}

	var req CreateAppointmentRequest
	if !bindJSON(c, &req) {
		return
	}

	serviceID, err := uuid.Parse(req.ServiceID)
	if err != nil {
		httperr.BadRequest(c, "invalid_service_id", "Invalid service.")
		return
	}

	ap, err := h.create.Execute(c.Request.Context(), usecase.CreateAppointmentInput{
		BusinessID: businessID,
		ServiceID:  serviceID,
		StaffID:    req.StaffID,
		ClientID:   middleware.UserID(c),
		Date:       req.Date,
		Time:       req.Time,
		Notes:      req.Notes,
	})
	if err != nil {
		httperr.FromError(c, h.logger, err, "failed_to_create_appointment")
		return
	}

	httpresp.Created(c, ap)
}

// ======================================================
// LIST (MANAGER)
// ======================================================

func (h *AppointmentHandler) ListByDate(c *gin.Context) {
	dateStr := c.Query("date")
	if dateStr == "" {
		httperr.BadRequest(c, "missing_date", "date is required.")
		return
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Invalid date.")
		return
	}

	out, err := h.byDate.Execute(c.Request.Context(), middleware.BusinessID(c), date)
	if err != nil {
		httperr.FromError(c, h.logger, err, "failed_to_list_appointments")
		return
	}

	httpresp.List(c, out)
}

func (h *AppointmentHandler) ListByMonth(c *gin.Context) {
	year, yerr := strconv.Atoi(c.Query("year"))
	month, merr := strconv.Atoi(c.Query("month"))
	if yerr != nil || merr != nil {
		httperr.BadRequest(c, "invalid_month", "year and month are required.")
		return
	}

	out, err := h.byMonth.Execute(c.Request.Context(), middleware.BusinessID(c), year, month)
	if err != nil {
		httperr.FromError(c, h.logger, err, "failed_to_list_appointments")
		return
	}

	httpresp.List(c, out)
}

// ======================================================
// STATUS (MANAGER)
// ======================================================

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	in, ok := managerTransition(c)
	if !ok {
		return
	}

	ap, err := h.cancel.Execute(c.Request.Context(), in)
	if err != nil {
		httperr.FromError(c, h.logger, err, "failed_to_cancel_appointment")
		return
	}
	httpresp.OK(c, ap)
}

func (h *AppointmentHandler) Complete(c *gin.Context) {
	in, ok := managerTransition(c)
	if !ok {
		return
	}

	ap, err := h.complete.Execute(c.Request.Context(), in)
	if err != nil {
		httperr.FromError(c, h.logger, err, "failed_to_complete_appointment")
		return
	}
	httpresp.OK(c, ap)
}

func managerTransition(c *gin.Context) (usecase.TransitionInput, bool) {
	id, ok := paramID(c, "id", "appointment_not_found")
	if !ok {
		return usecase.TransitionInput{}, false
	}
	return usecase.TransitionInput{
		AppointmentID: id,
		ActorID:       middleware.UserID(c),
		BusinessID:    middleware.BusinessID(c),
	}, true
}
