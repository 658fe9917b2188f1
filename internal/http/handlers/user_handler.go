// User HTTP handlers.
//
// This file exposes endpoints for registration, profile, referral
// attribution, and language preference:
//   - POST /users        (register / refresh, optional referral)
//   - GET  /me           (profile with star balance)
//   - PUT  /me/language  (set preferred language)
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/t-lnarr/muradoff/internal/domain"
	"github.com/t-lnarr/muradoff/internal/http/middleware"
	"github.com/t-lnarr/muradoff/internal/services"
)

// UserService defines the user account operations consumed by HTTP handlers.
type UserService interface {
	// Ensure registers a user on first contact and refreshes the username.
	Ensure(ctx context.Context, id int64, username string) (*domain.User, error)
	// Get fetches a user.
	Get(ctx context.Context, id int64) (*domain.User, error)
	// RegisterReferral records a one-time attribution and pays the reward.
	RegisterReferral(ctx context.Context, inviterID, inviteeID int64) error
	// SetBanned bans or unbans a user.
	SetBanned(ctx context.Context, id int64, banned bool) error
	// SetLanguage stores the preferred language tag.
	SetLanguage(ctx context.Context, id int64, lang string) error
	// Broadcast notifies every registered user.
	Broadcast(ctx context.Context, text string, includeBanned bool) (int, error)
}

// RegisterRequest is the JSON payload for registration.
type RegisterRequest struct {
	// Username is the caller's platform handle, refreshed on every call.
	Username string `json:"username"`
	// ReferrerID optionally attributes this user to an inviter. Only the
	// first attribution ever counts; later ones are ignored.
	ReferrerID int64 `json:"referrer_id"`
}

// SetLanguageRequest is the JSON payload for PUT /me/language.
type SetLanguageRequest struct {
	Language string `json:"language" binding:"required"`
}

// ProfileResponse combines the user row with the star balance.
type ProfileResponse struct {
	User  *domain.User          `json:"user"`
	Stars *services.StarDetails `json:"stars"`
}

// Register handles POST /users. Registration is idempotent; the referral
// attribution inside it is not an error when it already happened.
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}

	id := caller(c)
	u, err := h.users.Ensure(c.Request.Context(), id, strings.TrimSpace(req.Username))
	if err != nil {
		failService(c, err)
		return
	}

	if req.ReferrerID > 0 {
		err := h.users.RegisterReferral(c.Request.Context(), req.ReferrerID, id)
		switch {
		case err == nil:
		case errors.Is(err, services.ErrAlreadyReferred),
			errors.Is(err, services.ErrSelfReferral),
			errors.Is(err, services.ErrUserNotFound):
			// Attribution is best effort; registration still succeeds.
			middleware.LoggerFrom(c).Debug().Err(err).Msg("referral skipped")
		default:
			failService(c, err)
			return
		}
	}
	ok(c, http.StatusOK, u)
}

// Me handles GET /me.
func (h *Handlers) Me(c *gin.Context) {
	id := caller(c)
	u, err := h.users.Get(c.Request.Context(), id)
	if err != nil {
		failService(c, err)
		return
	}
	stars, err := h.stars.Details(c.Request.Context(), id)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, ProfileResponse{User: u, Stars: stars})
}

// SetLanguage handles PUT /me/language.
func (h *Handlers) SetLanguage(c *gin.Context) {
	var req SetLanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}
	if err := h.users.SetLanguage(c.Request.Context(), caller(c), req.Language); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}
