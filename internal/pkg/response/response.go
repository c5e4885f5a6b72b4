package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"societyhub/internal/domain"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// CustomError aborts the chain after writing the error envelope.
func CustomError(c *gin.Context, statusCode int, code string, message string) {
	c.AbortWithStatusJSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// FromError maps the domain error taxonomy onto HTTP statuses. Unknown
// errors are recorded on the gin context for the error logger and reported
// as 500 without leaking their text.
func FromError(c *gin.Context, err error) {
	var (
		verr *domain.ValidationError
		cerr *domain.ConflictError
	)

	switch {
	case errors.As(err, &verr):
		if len(verr.Fields) > 0 {
			ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", verr.Message, verr.Fields)
			return
		}
		Error(c, http.StatusBadRequest, "VALIDATION_ERROR", verr.Message)
	case errors.As(err, &cerr):
		ErrorWithDetails(c, http.StatusConflict, "BOOKING_CONFLICT", "Amenity is not available for the selected time", gin.H{
			"conflicting_bookings": cerr.Conflicts,
		})
	case errors.Is(err, domain.ErrConflict):
		Error(c, http.StatusConflict, "BOOKING_CONFLICT", "Amenity is not available for the selected time")
	case errors.Is(err, domain.ErrValidation):
		Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		Error(c, http.StatusConflict, "INVALID_STATUS_TRANSITION", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrForbidden):
		Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	default:
		_ = c.Error(err)
		Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}
