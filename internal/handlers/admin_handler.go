package handlers

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/agenda-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/agenda-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/agenda-scheduler/internal/httperr"
	"github.com/BruksfildServices01/agenda-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/agenda-scheduler/internal/middleware"
	"github.com/BruksfildServices01/agenda-scheduler/internal/models"
	"github.com/BruksfildServices01/agenda-scheduler/internal/timezone"
	"github.com/BruksfildServices01/agenda-scheduler/internal/validators"
)

const defaultMinAdvanceMinutes = 60

var errOwnerNotFound = httperr.ErrNotFound("owner_not_found")

type AdminHandler struct {
	db     *gorm.DB
	audit  *audit.Dispatcher
	logger *slog.Logger
}

func NewAdminHandler(db *gorm.DB, audit *audit.Dispatcher, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{db: db, audit: audit, logger: logger}
}

// --------- Requests ---------

type ProvisionBusinessRequest struct {
	Name              string `json:"name" binding:"required,max=100"`
	Description       string `json:"description"`
	Address           string `json:"address" binding:"max=255"`
	Phone             string `json:"phone" binding:"max=20"`
	BusinessType      string `json:"business_type" binding:"max=50"`
	Timezone          string `json:"timezone"`
	OwnerEmail        string `json:"owner_email" binding:"required,email"`
	MinAdvanceMinutes *int   `json:"min_advance_minutes" binding:"omitempty,min=0,max=10080"`
	ThemeColor        string `json:"theme_color" binding:"omitempty,hexcolor"`
}

type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// --------- Handlers ---------

func (h *AdminHandler) List(c *gin.Context) {
	page, limit := pagination(c, 50, 200)

	q := h.db.WithContext(c.Request.Context()).Model(&models.Business{})
	if query := strings.TrimSpace(strings.ToLower(c.Query("query"))); query != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+query+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.FromError(c, h.logger, err, "failed_to_list_businesses")
		return
	}

	var businesses []models.Business
	if err := q.
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&businesses).Error; err != nil {
		httperr.FromError(c, h.logger, err, "failed_to_list_businesses")
		return
	}

	httpresp.Page(c, businesses, page, limit, total)
}

// Provision creates a tenant for an existing account and promotes that
// account to business owner. System administrators keep their role.
func (h *AdminHandler) Provision(c *gin.Context) {
	var req ProvisionBusinessRequest
	if !bindJSON(c, &req) {
		return
	}

	tz := req.Timezone
	if tz == "" {
		tz = timezone.Default()
	}
	if !timezone.IsValid(tz) {
		httperr.BadRequest(c, "invalid_timezone", "Unknown timezone.")
		return
	}

	minAdvance := defaultMinAdvanceMinutes
	if req.MinAdvanceMinutes != nil {
		minAdvance = *req.MinAdvanceMinutes
	}

	primary := models.DefaultPrimaryColor
	if req.ThemeColor != "" {
		primary = strings.ToUpper(req.ThemeColor)
	}

	ctx := c.Request.Context()
	var business models.Business

	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner models.User
		if err := tx.Where("email = ?", validators.NormalizeEmail(req.OwnerEmail)).
			First(&owner).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errOwnerNotFound
			}
			return err
		}

		if owner.Role == models.RoleClient {
			if err := tx.Model(&owner).Update("role", models.RoleBusinessOwner).Error; err != nil {
				return err
			}
		}

		business = models.Business{
			Name:              strings.TrimSpace(req.Name),
			Description:       req.Description,
			Address:           req.Address,
			Phone:             req.Phone,
			BusinessType:      strings.ToLower(strings.TrimSpace(req.BusinessType)),
			Timezone:          tz,
			OwnerID:           owner.ID,
			IsActive:          true,
			MinAdvanceMinutes: minAdvance,
			PrimaryColor:      primary,
			AccentColor:       models.DefaultAccentColor,
		}
		return tx.Create(&business).Error
	})
	if err != nil {
		httperr.FromError(c, h.logger, err, "failed_to_provision_business")
		return
	}

	adminID := middleware.UserID(c)
	h.audit.Dispatch(audit.Event{
		BusinessID: business.ID,
		UserID:     &adminID,
		Action:     audit.ActionBusinessProvisioned,
		Entity:     "business",
		EntityID:   &business.ID,
		Metadata: map[string]any{
			"owner_id": business.OwnerID,
			"name":     business.Name,
		},
	})

	httpresp.Created(c, business)
}

func (h *AdminHandler) SetActive(c *gin.Context) {
	businessID, ok := paramID(c, "businessId", "business_not_found")
	if !ok {
		return
	}

	var req SetActiveRequest
	if !bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	res := h.db.WithContext(ctx).
		Model(&models.Business{}).
		Where("id = ?", businessID).
		Update("is_active", *req.Active)
	if res.Error != nil {
		httperr.FromError(c, h.logger, res.Error, "failed_to_update_business")
		return
	}
	if res.RowsAffected == 0 {
		httperr.FromError(c, h.logger, domain.ErrBusinessNotFound, "")
		return
	}

	adminID := middleware.UserID(c)
	h.audit.Dispatch(audit.Event{
		BusinessID: businessID,
		UserID:     &adminID,
		Action:     audit.ActionBusinessActivation,
		Entity:     "business",
		EntityID:   &businessID,
		Metadata:   map[string]any{"active": *req.Active},
	})

	var business models.Business
	if err := h.db.WithContext(ctx).First(&business, "id = ?", businessID).Error; err != nil {
		httperr.FromError(c, h.logger, err, "failed_to_update_business")
		return
	}
	httpresp.OK(c, business)
}
