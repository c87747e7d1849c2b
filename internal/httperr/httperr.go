package httperr

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

type HTTPError struct {
	Code    string `json:"error_code"`
	Message string `json:"message"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Conflict(c *gin.Context, code, message string) {
	Write(c, http.StatusConflict, code, message)
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func Forbidden(c *gin.Context, code, message string) {
	Write(c, http.StatusForbidden, code, message)
}

var messages = map[Kind]string{
	KindInvalid:         "Invalid request.",
	KindNotFound:        "Not found.",
	KindClosedDay:       "No slots available on this day.",
	KindInvalidDuration: "Service duration must be a positive number of minutes.",
	KindSlotConflict:    "This time is no longer available, please pick another time.",
	KindInvalidState:    "The appointment can no longer be changed.",
	KindForbidden:       "You are not allowed to perform this action.",
}

func StatusFor(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindSlotConflict, KindInvalidState:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindClosedDay:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

// FromError writes err as JSON. Business errors keep their code; anything
// else is logged and reported as an internal error with fallbackCode.
func FromError(c *gin.Context, logger *slog.Logger, err error, fallbackCode string) {
	var be BusinessError
	if errors.As(err, &be) {
		Write(c, StatusFor(be.Kind), be.Code, messages[be.Kind])
		return
	}

	if logger != nil {
		logger.ErrorContext(c.Request.Context(), "request failed",
			"code", fallbackCode,
			"path", c.FullPath(),
			"err", err,
		)
	}
	Internal(c, fallbackCode, "Internal error.")
}
