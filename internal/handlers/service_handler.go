package handlers

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/agenda-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/agenda-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/agenda-scheduler/internal/httperr"
	"github.com/BruksfildServices01/agenda-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/agenda-scheduler/internal/middleware"
	"github.com/BruksfildServices01/agenda-scheduler/internal/models"
)

type ServiceHandler struct {
	db     *gorm.DB
	audit  *audit.Dispatcher
	logger *slog.Logger
}

func NewServiceHandler(db *gorm.DB, audit *audit.Dispatcher, logger *slog.Logger) *ServiceHandler {
	return &ServiceHandler{db: db, audit: audit, logger: logger}
}

// --------- Requests ---------

type CreateServiceRequest struct {
	Name            string          `json:"name" binding:"required,max=100"`
	Description     string          `json:"description" binding:"max=255"`
	DurationMinutes int             `json:"duration_minutes"`
	Price           decimal.Decimal `json:"price"`
}

// UpdateServiceRequest only changes the fields that are present.
type UpdateServiceRequest struct {
	Name            *string          `json:"name" binding:"omitempty,max=100"`
	Description     *string          `json:"description" binding:"omitempty,max=255"`
	DurationMinutes *int             `json:"duration_minutes"`
	Price           *decimal.Decimal `json:"price"`
	Active          *bool            `json:"active"`
}

// --------- Handlers ---------

func (h *ServiceHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).
		Where("business_id = ?", middleware.BusinessID(c))

	if c.Query("active") == "true" {
		q = q.Where("active = ?", true)
	}

	var services []models.Service
	if err := q.Order("name ASC").Find(&services).Error; err != nil {
		httperr.FromError(c, h.logger, err, "failed_to_list_services")
		return
	}

	httpresp.List(c, services)
}

func (h *ServiceHandler) Create(c *gin.Context) {
	var req CreateServiceRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := validateService(req.DurationMinutes, req.Price); err != nil {
		httperr.FromError(c, h.logger, err, "")
		return
	}

	businessID := middleware.BusinessID(c)
	service := models.Service{
		BusinessID:      businessID,
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
		Active:          true,
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&service).Error; err != nil {
		httperr.FromError(c, h.logger, err, "failed_to_create_service")
		return
	}

	userID := middleware.UserID(c)
	h.audit.Dispatch(audit.Event{
		BusinessID: businessID,
		UserID:     &userID,
		Action:     audit.ActionServiceCreated,
		Entity:     "service",
		EntityID:   &service.ID,
		Metadata: map[string]any{
			"name":             service.Name,
			"duration_minutes": service.DurationMinutes,
			"price":            service.Price,
		},
	})

	httpresp.Created(c, service)
}

// Update edits a service. Duration and price are frozen once any
// appointment references the service.
func (h *ServiceHandler) Update(c *gin.Context) {
	serviceID, ok := paramID(c, "serviceId", "service_not_found")
	if !ok {
		return
	}

	var req UpdateServiceRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	businessID := middleware.BusinessID(c)

	var service models.Service
	err := h.db.WithContext(ctx).
		Where("id = ? AND business_id = ?", serviceID, businessID).
		First(&service).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httperr.FromError(c, h.logger, domain.ErrServiceNotFound, "")
		return
	}
	if err != nil {
		httperr.FromError(c, h.logger, err, "failed_to_update_service")
		return
	}

	duration := service.DurationMinutes
	if req.DurationMinutes != nil {
		duration = *req.DurationMinutes
	}
	price := service.Price
	if req.Price != nil {
		price = *req.Price
	}
	if err := validateService(duration, price); err != nil {
		httperr.FromError(c, h.logger, err, "")
		return
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	pricingChanged := duration != service.DurationMinutes || !price.Equal(service.Price)
	if pricingChanged {
		var refs int64
		if err := h.db.WithContext(ctx).
			Model(&models.Appointment{}).
			Where("service_id = ?", service.ID).
			Count(&refs).Error; err != nil {
			httperr.FromError(c, h.logger, err, "failed_to_update_service")
			return
		}
		if refs > 0 {
			httperr.FromError(c, h.logger, domain.ErrServiceInUse, "")
			return
		}
		updates["duration_minutes"] = duration
		updates["price"] = price
	}

	if len(updates) > 0 {
		if err := h.db.WithContext(ctx).Model(&service).Updates(updates).Error; err != nil {
			httperr.FromError(c, h.logger, err, "failed_to_update_service")
			return
		}
	}

	if err := h.db.WithContext(ctx).First(&service, "id = ?", service.ID).Error; err != nil {
		httperr.FromError(c, h.logger, err, "failed_to_update_service")
		return
	}

	userID := middleware.UserID(c)
	h.audit.Dispatch(audit.Event{
		BusinessID: businessID,
		UserID:     &userID,
		Action:     audit.ActionServiceUpdated,
		Entity:     "service",
		EntityID:   &service.ID,
		Metadata:   updates,
	})

	httpresp.OK(c, service)
}

func validateService(duration int, price decimal.Decimal) error {
	if duration <= 0 {
		return domain.ErrInvalidDuration
	}
	if price.IsNegative() {
		return httperr.ErrBusiness("invalid_price")
	}
	return nil
}
