package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/agenda-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/agenda-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/agenda-scheduler/internal/httperr"
	"github.com/BruksfildServices01/agenda-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/agenda-scheduler/internal/media"
	"github.com/BruksfildServices01/agenda-scheduler/internal/middleware"
	"github.com/BruksfildServices01/agenda-scheduler/internal/models"
	"github.com/BruksfildServices01/agenda-scheduler/internal/timezone"
)

// ======================================================
// HANDLER
// ======================================================

type BusinessHandler struct {
	db     *gorm.DB
	audit  *audit.Dispatcher
	store  media.Store
	logger *slog.Logger
}

// NewBusinessHandler accepts a nil store; logo uploads then answer 503.
func NewBusinessHandler(db *gorm.DB, audit *audit.Dispatcher, store media.Store, logger *slog.Logger) *BusinessHandler {
	return &BusinessHandler{db: db, audit: audit, store: store, logger: logger}
}

type UpdateBusinessRequest struct {
	Name              *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description       *string `json:"description"`
	Address           *string `json:"address" binding:"omitempty,max=255"`
	Phone             *string `json:"phone" binding:"omitempty,max=20"`
	BusinessType      *string `json:"business_type" binding:"omitempty,max=50"`
	Timezone          *string `json:"timezone"`
	MinAdvanceMinutes *int    `json:"min_advance_minutes" binding:"omitempty,min=0,max=10080"`

	PrimaryColor *string             `json:"primary_color" binding:"omitempty,hexcolor"`
	AccentColor  *string             `json:"accent_color" binding:"omitempty,hexcolor"`
	SocialLinks  *models.SocialLinks `json:"social_links"`
}

// ======================================================
// GET
// ======================================================

func (h *BusinessHandler) Get(c *gin.Context) {
	business, ok := h.load(c)
	if !ok {
		return
	}
	httpresp.OK(c, business)
}

// ======================================================
// UPDATE
// ======================================================

func (h *BusinessHandler) Update(c *gin.Context) {
	var req UpdateBusinessRequest
	if !bindJSON(c, &req) {
		return
	}

	business, ok := h.load(c)
	if !ok {
		return
	}

	updates := map[string]any{}

	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.BusinessType != nil {
		updates["business_type"] = strings.ToLower(strings.TrimSpace(*req.BusinessType))
	}
	if req.Timezone != nil {
		if !timezone.IsValid(*req.Timezone) {
			httperr.BadRequest(c, "invalid_timezone", "Unknown timezone.")
			return
		}
		updates["timezone"] = *req.Timezone
	}
	if req.MinAdvanceMinutes != nil {
		updates["min_advance_minutes"] = *req.MinAdvanceMinutes
	}
	if req.PrimaryColor != nil {
		updates["primary_color"] = strings.ToUpper(*req.PrimaryColor)
	}
	if req.AccentColor != nil {
		updates["accent_color"] = strings.ToUpper(*req.AccentColor)
	}
	if req.SocialLinks != nil {
		updates["social_links"] = datatypes.NewJSONType(*req.SocialLinks)
	}

	if len(updates) == 0 {
		httpresp.OK(c, business)
		return
	}

	ctx := c.Request.Context()
	if err := h.db.WithContext(ctx).Model(business).Updates(updates).Error; err != nil {
		httperr.FromError(c, h.logger, err, "failed_to_update_business")
		return
	}

	userID := middleware.UserID(c)
	h.audit.Dispatch(audit.Event{
		BusinessID: business.ID,
		UserID:     &userID,
		Action:     audit.ActionBusinessUpdated,
		Entity:     "business",
		EntityID:   &business.ID,
		Metadata:   updates,
	})

	h.Get(c)
}

// ======================================================
// LOGO
// ======================================================

// UploadLogo takes a multipart "logo" file, normalises it to WebP and
// stores it under a new key so caches never serve a stale image.
func (h *BusinessHandler) UploadLogo(c *gin.Context) {
	if h.store == nil {
		httperr.Write(c, http.StatusServiceUnavailable, "storage_disabled", "Image storage is not configured.")
		return
	}

	business, ok := h.load(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, media.MaxLogoBytes+(64<<10))

	header, err := c.FormFile("logo")
	if err != nil {
		httperr.BadRequest(c, "missing_logo", "A logo file is required.")
		return
	}

	file, err := header.Open()
	if err != nil {
		httperr.FromError(c, h.logger, err, "failed_to_read_logo")
		return
	}
	defer file.Close()

	body, err := media.NormalizeLogo(file)
	if err != nil {
		httperr.FromError(c, h.logger, err, "failed_to_process_logo")
		return
	}

	ctx := c.Request.Context()
	key := fmt.Sprintf("businesses/%s/logo-%d.webp", business.ID, time.Now().Unix())

	url, err := h.store.Put(ctx, key, body, "image/webp")
	if err != nil {
		httperr.FromError(c, h.logger, err, "failed_to_store_logo")
		return
	}

	if err := h.db.WithContext(ctx).Model(business).Update("logo_url", url).Error; err != nil {
		httperr.FromError(c, h.logger, err, "failed_to_update_business")
		return
	}

	userID := middleware.UserID(c)
	h.audit.Dispatch(audit.Event{
		BusinessID: business.ID,
		UserID:     &userID,
		Action:     audit.ActionBusinessUpdated,
		Entity:     "business",
		EntityID:   &business.ID,
		Metadata:   map[string]any{"logo_url": url},
	})

	httpresp.OK(c, gin.H{"logo_url": url})
}

func (h *BusinessHandler) load(c *gin.Context) (*models.Business, bool) {
	var business models.Business
	err := h.db.WithContext(c.Request.Context()).
		First(&business, "id = ?", middleware.BusinessID(c)).Error
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
