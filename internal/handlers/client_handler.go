package handlers

import (
	"cmp"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/agenda-scheduler/internal/httperr"
	"github.com/BruksfildServices01/agenda-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/agenda-scheduler/internal/middleware"
	"github.com/BruksfildServices01/agenda-scheduler/internal/models"
)

type ClientHandler struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewClientHandler(db *gorm.DB, logger *slog.Logger) *ClientHandler {
	return &ClientHandler{db: db, logger: logger}
}

type ClientSummary struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Appointments int       `json:"appointments"`
	LastVisit    time.Time `json:"last_visit"`
}

// ======================================================
// LIST CLIENTS (MANAGER)
// ======================================================

// List returns everyone who has booked with the business, most recent
// first.
func (h *ClientHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	businessID := middleware.BusinessID(c)
	query := strings.ToLower(strings.TrimSpace(c.Query("query")))

	var apps []models.Appointment
	if err := h.db.WithContext(ctx).
		Select("client_id", "start_time").
		Where("business_id = ?", businessID).
		Find(&apps).Error; err != nil {
		httperr.FromError(c, h.logger, err, "failed_to_list_clients")
		return
	}

	byClient := map[uuid.UUID]*ClientSummary{}
	for _, ap := range apps {
		s, ok := byClient[ap.ClientID]
		if !ok {
			s = &ClientSummary{ID: ap.ClientID}
			byClient[ap.ClientID] = s
		}
		s.Appointments++
		if ap.StartTime.After(s.LastVisit) {
			s.LastVisit = ap.StartTime
		}
	}

	clients := make([]ClientSummary, 0, len(byClient))
	if len(byClient) == 0 {
		httpresp.List(c, clients)
		return
	}

	q := h.db.WithContext(ctx).
		Where("id IN ?", slices.Collect(maps.Keys(byClient)))

	if query != "" {
		like := "%" + query + "%"
		q = q.Where(
			"LOWER(name) LIKE ? OR phone LIKE ? OR LOWER(email) LIKE ?",
			like, like, like,
		)
	}

	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		httperr.FromError(c, h.logger, err, "failed_to_list_clients")
		return
	}

	for _, u := range users {
		s := byClient[u.ID]
		s.Name, s.Email, s.Phone = u.Name, u.Email, u.Phone
		clients = append(clients, *s)
	}

	slices.SortFunc(clients, func(a, b ClientSummary) int {
		return cmp.Or(b.LastVisit.Compare(a.LastVisit), cmp.Compare(a.Name, b.Name))
	})

	httpresp.List(c, clients)
}
