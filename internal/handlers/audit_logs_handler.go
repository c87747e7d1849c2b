package handlers

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/agenda-scheduler/internal/httperr"
	"github.com/BruksfildServices01/agenda-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/agenda-scheduler/internal/middleware"
	"github.com/BruksfildServices01/agenda-scheduler/internal/models"
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewAuditLogsHandler(db *gorm.DB, logger *slog.Logger) *AuditLogsHandler {
	return &AuditLogsHandler{db: db, logger: logger}
}

// List pages through the business audit trail, newest first. from and to
// are inclusive UTC dates.
func (h *AuditLogsHandler) List(c *gin.Context) {
	page, limit := pagination(c, 50, 200)

	// --------------------------------------------------
	// Base query, always scoped to the business
	// --------------------------------------------------

	q := h.db.WithContext(c.Request.Context()).
		Model(&models.AuditLog{}).
		Where("business_id = ?", middleware.BusinessID(c))

	// --------------------------------------------------
	// Optional filters
	// --------------------------------------------------

	if action := c.Query("action"); action != "" {
		q = q.Where("action = ?", action)
	}

	if entity := c.Query("entity"); entity != "" {
		q = q.Where("entity = ?", entity)
	}

	if fromStr := c.Query("from"); fromStr != "" {
		from, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			httperr.BadRequest(c, "invalid_from", "Invalid from date.")
			return
		}
		q = q.Where("created_at >= ?", from)
	}

	if toStr := c.Query("to"); toStr != "" {
		to, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			httperr.BadRequest(c, "invalid_to", "Invalid to date.")
			return
		}
		q = q.Where("created_at < ?", to.AddDate(0, 0, 1))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.FromError(c, h.logger, err, "audit_count_failed")
		return
	}

	var logs []models.AuditLog
	if err := q.
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&logs).Error; err != nil {
		httperr.FromError(c, h.logger, err, "audit_list_failed")
		return
	}

	httpresp.Page(c, logs, page, limit, total)
}
