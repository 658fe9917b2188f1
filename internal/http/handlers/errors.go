// Package handlers defines HTTP-layer error codes used across all API
// endpoints.
//
// Codes are lowercase snake_case and stable: clients branch on them for
// programmatic error handling, with the message reserved for humans. Generic
// codes mirror common HTTP status semantics; domain-specific codes cover the
// business failures a status alone cannot convey.
package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeTrialExpired      = "trial_expired"
	ErrCodeQuotaExceeded     = "quota_exceeded"
	ErrCodeExhausted         = "exhausted"
	ErrCodeInsufficientStars = "insufficient_stars"
	ErrCodeMethodNotAllowed  = "method_not_allowed"
)
