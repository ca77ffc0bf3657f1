package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "github.com/ecopick/recycle-api/pkg/errors"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	TraceID string `json:"trace_id,omitempty"`
}

// ErrorHandler maps errors attached to the gin context onto HTTP
// responses using the application error taxonomy.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		traceID := c.GetString(ContextRequestID)
		for _, e := range c.Errors {
			log.Error().
				Err(e.Err).
				Str("request_id", traceID).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Str("client_ip", c.ClientIP()).
				Msg("Request error")
		}

		lastErr := c.Errors.Last().Err
		c.JSON(statusFor(lastErr), ErrorResponse{
			Code:    statusFor(lastErr),
			Message: lastErr.Error(),
			TraceID: traceID,
		})
	}
}

func statusFor(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case apperrors.ErrNotFound:
			return http.StatusNotFound
		case apperrors.ErrBadRequest, apperrors.ErrValidation:
			return http.StatusBadRequest
		case apperrors.ErrUnauthorized:
			return http.StatusUnauthorized
		case apperrors.ErrForbidden:
			return http.StatusForbidden
		case apperrors.ErrInsufficientInventory:
			return http.StatusConflict
		default:
			return http.StatusInternalServerError
		}
	}

	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest
	}
	var invErr *apperrors.InsufficientInventoryError
	if errors.As(err, &invErr) {
		return http.StatusConflict
	}
	var unknownErr *apperrors.UnknownMaterialError
	if errors.As(err, &unknownErr) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
