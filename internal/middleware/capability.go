package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/agenda-scheduler/internal/access"
)

// RequireBusinessManager resolves :businessId and lets through only users
// who can manage that business.
func RequireBusinessManager(checker access.Checker, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		businessID, err := uuid.Parse(c.Param("businessId"))
		if err != nil {
			abort(c, http.StatusNotFound, "business_not_found")
			return
		}

		ok, err := checker.CanManageBusiness(c.Request.Context(), UserID(c), businessID)
		if err != nil {
			logger.ErrorContext(c.Request.Context(), "capability check failed", "err", err)
			abort(c, http.StatusInternalServerError, "failed_to_check_access")
			return
		}
		if !ok {
			abort(c, http.StatusForbidden, "forbidden")
			return
		}

		c.Set(ContextBusinessID, businessID)
		c.Next()
	}
}

func RequireBooker(checker access.Checker, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := checker.CanBook(c.Request.Context(), UserID(c))
		if err != nil {
			logger.ErrorContext(c.Request.Context(), "capability check failed", "err", err)
			abort(c, http.StatusInternalServerError, "failed_to_check_access")
			return
		}
		if !ok {
			abort(c, http.StatusForbidden, "forbidden")
			return
		}
		c.Next()
	}
}

func RequireSystemAdmin(checker access.Checker, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := checker.IsSystemAdmin(c.Request.Context(), UserID(c))
		if err != nil {
			logger.ErrorContext(c.Request.Context(), "capability check failed", "err", err)
			abort(c, http.StatusInternalServerError, "failed_to_check_access")
			return
		}
		if !ok {
			abort(c, http.StatusForbidden, "forbidden")
			return
		}
		c.Next()
	}
}
