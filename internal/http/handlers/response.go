// Package handlers provides HTTP handler implementations for the API.
//
// This file defines the standard response utilities used across all
// endpoints: a structured error envelope with a stable machine-readable
// code, and helpers for common success shapes. Server-side (5xx) failures
// are logged with request context; client errors are not.
//
// Example error response:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "message": "post not found"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/t-lnarr/muradoff/internal/http/middleware"
	"github.com/t-lnarr/muradoff/internal/services"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code"`
	// Human-readable message (safe to show to users)
	Message string `json:"message"`
}

// fail aborts the request with a structured error and logs server-side errors.
func fail(c *gin.Context, status int, code, msg string) {
	resp := ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail(), for router-level fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// failService translates a service-level sentinel error into the matching
// HTTP response. Unrecognized errors become an opaque 500.
func failService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrPostNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrPromoNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, services.ErrPermissionDenied),
		errors.Is(err, services.ErrUserBanned):
		fail(c, http.StatusForbidden, ErrCodeForbidden, err.Error())
	case errors.Is(err, services.ErrTrialExpired):
		fail(c, http.StatusForbidden, ErrCodeTrialExpired, err.Error())
	case errors.Is(err, services.ErrTooManyPosts):
		fail(c, http.StatusConflict, ErrCodeQuotaExceeded, err.Error())
	case errors.Is(err, services.ErrInvalidInterval),
		errors.Is(err, services.ErrInvalidPost),
		errors.Is(err, services.ErrSelfReferral),
		errors.Is(err, services.ErrUnknownPreset):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrAlreadyReferred),
		errors.Is(err, services.ErrPromoAlreadyUsed),
		errors.Is(err, services.ErrPromoExists),
		errors.Is(err, services.ErrBonusAlreadyClaimed):
		fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, services.ErrPromoExhausted):
		fail(c, http.StatusGone, ErrCodeExhausted, err.Error())
	case errors.Is(err, services.ErrInsufficientStars):
		fail(c, http.StatusPaymentRequired, ErrCodeInsufficientStars, err.Error())
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
	}
}

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent writes an HTTP 204 No Content response.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
