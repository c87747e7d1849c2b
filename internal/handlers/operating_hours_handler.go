package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/agenda-scheduler/internal/audit"
	"github.com/BruksfildServices01/agenda-scheduler/internal/domain/availability"
	"github.com/BruksfildServices01/agenda-scheduler/internal/httperr"
	"github.com/BruksfildServices01/agenda-scheduler/internal/middleware"
	"github.com/BruksfildServices01/agenda-scheduler/internal/models"
)

type OperatingHoursHandler struct {
	db     *gorm.DB
	audit  *audit.Dispatcher
	logger *slog.Logger
}

func NewOperatingHoursHandler(db *gorm.DB, audit *audit.Dispatcher, logger *slog.Logger) *OperatingHoursHandler {
	return &OperatingHoursHandler{db: db, audit: audit, logger: logger}
}

// ======================================================
// DTOs
// ======================================================

type BreakDTO struct {
	Start string `json:"start" binding:"required"`
	End   string `json:"end" binding:"required"`
}

type DayHoursDTO struct {
	Weekday   int        `json:"weekday"`
	IsOpen    bool       `json:"is_open"`
	OpenTime  string     `json:"open_time"`
	CloseTime string     `json:"close_time"`
	Breaks    []BreakDTO `json:"breaks"`
}

type UpdateOperatingHoursRequest struct {
	Days []DayHoursDTO `json:"days" binding:"required,min=1,max=7,dive"`
}

// ======================================================
// GET
// ======================================================

// Get always answers seven days; weekdays without a row are closed.
func (h *OperatingHoursHandler) Get(c *gin.Context) {
	businessID := middleware.BusinessID(c)

	var rows []models.OperatingHours
	if err := h.db.WithContext(c.Request.Context()).
		Preload("Breaks").
		Where("business_id = ?", businessID).
		Find(&rows).Error; err != nil {
		httperr.FromError(c, h.logger, err, "failed_to_load_operating_hours")
		return
	}

	week := make([]DayHoursDTO, 7)
	for wd := range week {
		week[wd] = DayHoursDTO{Weekday: wd, Breaks: []BreakDTO{}}
	}
	for _, r := range rows {
		if r.Weekday < 0 || r.Weekday > 6 {
			continue
		}
		day := DayHoursDTO{
			Weekday:   r.Weekday,
			IsOpen:    r.IsOpen,
			OpenTime:  r.OpenTime,
			CloseTime: r.CloseTime,
			Breaks:    make([]BreakDTO, 0, len(r.Breaks)),
		}
		for _, b := range r.Breaks {
			day.Breaks = append(day.Breaks, BreakDTO{Start: b.StartTime, End: b.EndTime})
		}
		week[r.Weekday] = day
	}

	c.JSON(http.StatusOK, gin.H{"days": week})
}

// ======================================================
// PUT
// ======================================================

// Update validates every day before writing anything, then replaces the
// given weekdays (and their breaks) in one transaction.
func (h *OperatingHoursHandler) Update(c *gin.Context) {
	var req UpdateOperatingHoursRequest
	if !bindJSON(c, &req) {
		return
	}

	seen := map[int]bool{}
	days := make([]availability.DayHours, 0, len(req.Days))
	for _, d := range req.Days {
		if seen[d.Weekday] {
			httperr.BadRequest(c, "duplicate_weekday", "Each weekday may appear only once.")
			return
		}
		seen[d.Weekday] = true

		breaks := make([][2]string, 0, len(d.Breaks))
		for _, b := range d.Breaks {
			breaks = append(breaks, [2]string{b.Start, b.End})
		}

		day, err := availability.ParseDayHours(d.Weekday, d.IsOpen, d.OpenTime, d.CloseTime, breaks)
		if err != nil {
			httperr.FromError(c, h.logger, err, "")
			return
		}
		days = append(days, day)
	}

	businessID := middleware.BusinessID(c)
	ctx := c.Request.Context()

	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, day := range days {
			if err := saveDay(ctx, tx, businessID, day); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		httperr.FromError(c, h.logger, err, "failed_to_update_operating_hours")
		return
	}

	userID := middleware.UserID(c)
	weekdays := make([]int, 0, len(days))
	for _, d := range days {
		weekdays = append(weekdays, d.Weekday)
	}
	h.audit.Dispatch(audit.Event{
		BusinessID: businessID,
		UserID:     &userID,
		Action:     audit.ActionHoursUpdated,
		Entity:     "operating_hours",
		Metadata:   map[string]any{"weekdays": weekdays},
	})

	h.Get(c)
}

func saveDay(ctx context.Context, tx *gorm.DB, businessID uuid.UUID, day availability.DayHours) error {
	row := models.OperatingHours{BusinessID: businessID, Weekday: day.Weekday}
	if err := tx.WithContext(ctx).
		Where("business_id = ? AND weekday = ?", businessID, day.Weekday).
		FirstOrCreate(&row).Error; err != nil {
		return err
	}

	open, closeAt := "", ""
	if day.IsOpen {
		open, closeAt = day.Open.String(), day.Close.String()
	}

	// Select forces is_open=false to be written.
	if err := tx.WithContext(ctx).
		Model(&row).
		Select("is_open", "open_time", "close_time").
		Updates(models.OperatingHours{IsOpen: day.IsOpen, OpenTime: open, CloseTime: closeAt}).Error; err != nil {
		return err
	}

	if err := tx.WithContext(ctx).
		Where("operating_hours_id = ?", row.ID).
		Delete(&models.OperatingBreak{}).Error; err != nil {
		return err
	}

	if !day.IsOpen || len(day.Breaks) == 0 {
		return nil
	}

	breaks := make([]models.OperatingBreak, 0, len(day.Breaks))
	for _, b := range day.Breaks {
		breaks = append(breaks, models.OperatingBreak{
			OperatingHoursID: row.ID,
			StartTime:        b.Start.String(),
			EndTime:          b.End.String(),
		})
	}
	return tx.WithContext(ctx).Create(&breaks).Error
}
