package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/agenda-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/agenda-scheduler/internal/httperr"
	"github.com/BruksfildServices01/agenda-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/agenda-scheduler/internal/models"
	usecase "github.com/BruksfildServices01/agenda-scheduler/internal/usecase/appointment"
)

////////////////////////////////////////////////////////
// HANDLER
////////////////////////////////////////////////////////

type PublicHandler struct {
	db           *gorm.DB
	availability *usecase.GetAvailability
	suggest      *usecase.SuggestTimes
	logger       *slog.Logger
}

func NewPublicHandler(
	db *gorm.DB,
	availability *usecase.GetAvailability,
	suggest *usecase.SuggestTimes,
	logger *slog.Logger,
) *PublicHandler {
	return &PublicHandler{
		db:           db,
		availability: availability,
		suggest:      suggest,
		logger:       logger,
	}
}

////////////////////////////////////////////////////////
// BUSINESSES
////////////////////////////////////////////////////////

func (h *PublicHandler) ListBusinesses(c *gin.Context) {
	query := strings.TrimSpace(strings.ToLower(c.Query("query")))
	businessType := strings.TrimSpace(strings.ToLower(c.Query("type")))

	q := h.db.WithContext(c.Request.Context()).
		Where("is_active = ?", true)

	if query != "" {
		like := "%" + query + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	if businessType != "" {
		q = q.Where("LOWER(business_type) = ?", businessType)
	}

	var businesses []models.Business
	if err := q.Order("name ASC").Find(&businesses).Error; err != nil {
		httperr.FromError(c, h.logger, err, "failed_to_list_businesses")
		return
	}

	httpresp.List(c, businesses)
}

func (h *PublicHandler) GetBusiness(c *gin.Context) {
	business, ok := h.activeBusiness(c)
	if !ok {
		return
	}

	var hours []models.OperatingHours
	if err := h.db.WithContext(c.Request.Context()).
		Preload("Breaks").
		Where("business_id = ?", business.ID).
		Order("weekday ASC").
		Find(&hours).Error; err != nil {
		httperr.FromError(c, h.logger, err, "failed_to_load_business")
		return
	}
	if hours == nil {
		hours = []models.OperatingHours{}
	}

	c.JSON(http.StatusOK, gin.H{
		"business":        business,
		"operating_hours": hours,
	})
}

////////////////////////////////////////////////////////
// SERVICES
////////////////////////////////////////////////////////

func (h *PublicHandler) ListServices(c *gin.Context) {
	business, ok := h.activeBusiness(c)
	if !ok {
		return
	}

	var services []models.Service
	if err := h.db.WithContext(c.Request.Context()).
		Where("business_id = ? AND active = ?", business.ID, true).
		Order("name ASC").
		Find(&services).Error; err != nil {
		httperr.FromError(c, h.logger, err, "failed_to_list_services")
		return
	}

	httpresp.List(c, services)
}

////////////////////////////////////////////////////////
// AVAILABILITY
////////////////////////////////////////////////////////

// Availability answers 200 with closed=true and no slots on a day the
// business does not open.
func (h *PublicHandler) Availability(c *gin.Context) {
	in, ok := availabilityInput(c)
	if !ok {
		return
	}

	out, err := h.availability.Execute(c.Request.Context(), in)
	if err != nil {
		httperr.FromError(c, h.logger, err, "availability_failed")
		return
	}

	httpresp.OK(c, out)
}

func (h *PublicHandler) Suggestions(c *gin.Context) {
	in, ok := availabilityInput(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httperr.BadRequest(c, "invalid_limit", "Limit must be a number.")
			return
		}
		limit = n
	}

	out, err := h.suggest.Execute(c.Request.Context(), usecase.SuggestInput{
		AvailabilityInput: in,
		Around:            c.Query("around"),
		Limit:             limit,
	})
	if err != nil {
		httperr.FromError(c, h.logger, err, "suggestions_failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":        in.Date.Format("2006-01-02"),
		"suggestions": out,
	})
}

////////////////////////////////////////////////////////
// HELPERS
////////////////////////////////////////////////////////

func (h *PublicHandler) activeBusiness(c *gin.Context) (*models.Business, bool) {
	id, ok := paramID(c, "businessId", "business_not_found")
	if !ok {
		return nil, false
	}

	var business models.Business
	err := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND is_active = ?", id, true).
		First(&business).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httperr.FromError(c, h.logger, domain.ErrBusinessNotFound, "")
		return nil, false
	}
	if err != nil {
		httperr.FromError(c, h.logger, err, "failed_to_load_business")
		return nil, false
	}
	return &business, true
}

// availabilityInput reads :businessId, ?service_id, ?date and ?staff_id.
// The date is a calendar date; the use case places it in the business
// timezone.
func availabilityInput(c *gin.Context) (domain.AvailabilityInput, bool) {
	businessID, ok := paramID(c, "businessId", "business_not_found")
	if !ok {
		return domain.AvailabilityInput{}, false
	}

	dateStr := c.Query("date")
	serviceStr := c.Query("service_id")
	if dateStr == "" || serviceStr == "" {
		httperr.BadRequest(c, "missing_params", "date and service_id are required.")
		return domain.AvailabilityInput{}, false
	}

	serviceID, err := uuid.Parse(serviceStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_service_id", "Invalid service.")
		return domain.AvailabilityInput{}, false
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Invalid date.")
		return domain.AvailabilityInput{}, false
	}

	return domain.AvailabilityInput{
		BusinessID: businessID,
		ServiceID:  serviceID,
		StaffID:    c.Query("staff_id"),
		Date:       date,
	}, true
}
