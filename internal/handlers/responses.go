package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/velopay/ledger-core/internal/apperrors"
	"github.com/velopay/ledger-core/internal/dto"
	"github.com/velopay/ledger-core/internal/middleware"
)

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrDuplicate),
		errors.Is(err, apperrors.ErrUnbalanced):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrInsufficientBalance),
		errors.Is(err, apperrors.ErrProcessingFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrApprovalRequired),
		errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrImmutabilityViolation):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the typed failure envelope for a service error.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Request failed", slog.String("error", err.Error()))
		message = "internal error"
	}
	c.JSON(status, dto.NewFailureResponse(apperrors.CodeFor(err), message))
}

// respondBindError writes the failure envelope for a request binding error.
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.NewFailureResponse(apperrors.CodeValidation, "invalid request format: "+err.Error()))
}

// actor resolves the acting principal recorded on audit records.
func actor(c *gin.Context) string {
	if id, ok := middleware.GetActorFromContext(c); ok {
		return id
	}
	return "anonymous"
}

// intQuery reads an integer query parameter, falling back on absent or
// malformed values.
func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// int64Query reads an int64 query parameter with a fallback.
func int64Query(c *gin.Context, name string, fallback int64) int64 {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return v
}
