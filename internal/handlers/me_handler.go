package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/agenda-scheduler/internal/httperr"
	"github.com/BruksfildServices01/agenda-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/agenda-scheduler/internal/middleware"
	"github.com/BruksfildServices01/agenda-scheduler/internal/models"
	usecase "github.com/BruksfildServices01/agenda-scheduler/internal/usecase/appointment"
)

type MeHandler struct {
	db     *gorm.DB
	list   *usecase.ListClientAppointments
	cancel *usecase.CancelAppointment
	logger *slog.Logger
}

func NewMeHandler(
	db *gorm.DB,
	list *usecase.ListClientAppointments,
	cancel *usecase.CancelAppointment,
	logger *slog.Logger,
) *MeHandler {
	return &MeHandler{db: db, list: list, cancel: cancel, logger: logger}
}

// GetMe returns the caller and the businesses they own, if any.
func (h *MeHandler) GetMe(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.UserID(c)

	var user models.User
	if err := h.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.Unauthorized(c, "user_not_found", "Unknown user.")
			return
		}
		httperr.FromError(c, h.logger, err, "failed_to_load_user")
		return
	}

	var businesses []models.Business
	if err := h.db.WithContext(ctx).
		Where("owner_id = ?", userID).
		Order("name ASC").
		Find(&businesses).Error; err != nil {
		httperr.FromError(c, h.logger, err, "failed_to_load_user")
		return
	}
	if businesses == nil {
		businesses = []models.Business{}
	}

	c.JSON(http.StatusOK, gin.H{
		"user":       userView(&user),
		"businesses": businesses,
	})
}

func (h *MeHandler) Appointments(c *gin.Context) {
	out, err := h.list.Execute(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		httperr.FromError(c, h.logger, err, "failed_to_list_appointments")
		return
	}
	httpresp.List(c, out)
}

func (h *MeHandler) CancelAppointment(c *gin.Context) {
	id, ok := paramID(c, "id", "appointment_not_found")
	if !ok {
		return
	}

	ap, err := h.cancel.Execute(c.Request.Context(), usecase.TransitionInput{
		AppointmentID: id,
		ActorID:       middleware.UserID(c),
	})
	if err != nil {
		httperr.FromError(c, h.logger, err, "failed_to_cancel_appointment")
		return
	}
	httpresp.OK(c, ap)
}
