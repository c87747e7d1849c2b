package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/agenda-scheduler/internal/httperr"
	"github.com/BruksfildServices01/agenda-scheduler/internal/models"
)

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httperr.BadRequest(c, "invalid_request", err.Error())
		return false
	}
	return true
}

// paramID parses a UUID path parameter. A malformed id answers 404 with
// notFoundCode, the same as an id that does not exist.
func paramID(c *gin.Context, name, notFoundCode string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httperr.NotFound(c, notFoundCode, "Not found.")
		return uuid.Nil, false
	}
	return id, true
}

// pagination reads ?page and ?limit with the given default and cap.
func pagination(c *gin.Context, def, maxLimit int) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}

	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(def)))
	if limit <= 0 || limit > maxLimit {
		limit = def
	}
	return page, limit
}

func userView(u *models.User) gin.H {
	return gin.H{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"phone": u.Phone,
		"role":  u.Role,
	}
}
