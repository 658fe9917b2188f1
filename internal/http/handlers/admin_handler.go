// Operator HTTP handlers.
//
// This file exposes the operator tools behind the elevation gate:
//   - GET  /admin/stats            (counters and referral leaderboard)
//   - GET  /admin/users/{id}       (profile lookup with star balance)
//   - POST /admin/users/{id}/ban   (ban, posts evicted on next tick)
//   - POST /admin/users/{id}/unban (unban)
//   - POST /admin/users/{id}/stars (credit stars, optionally expiring)
//   - POST /admin/broadcast        (message every user)
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/t-lnarr/muradoff/internal/services"
)

// StatsService defines the read-only counters consumed by HTTP handlers.
type StatsService interface {
	Overview(ctx context.Context) (*services.Overview, error)
}

// FillStarsRequest is the JSON payload for POST /admin/users/{id}/stars.
type FillStarsRequest struct {
	Amount float64 `json:"amount" binding:"required"`
	// ExpiresHours makes the credit temporary; omit or 0 for persistent.
	ExpiresHours int `json:"expires_hours"`
}

// BroadcastRequest is the JSON payload for POST /admin/broadcast.
type BroadcastRequest struct {
	Text string `json:"text" binding:"required"`
	// IncludeBanned extends the broadcast to banned users.
	IncludeBanned bool `json:"include_banned"`
}

// BroadcastResponse reports how many notifications were handed off.
type BroadcastResponse struct {
	Recipients int `json:"recipients"`
}

// Stats handles GET /admin/stats.
func (h *Handlers) Stats(c *gin.Context) {
	o, err := h.stats.Overview(c.Request.Context())
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, o)
}

// GetUser handles GET /admin/users/:id.
func (h *Handlers) GetUser(c *gin.Context) {
	id, okID := pathUserID(c)
	if !okID {
		return
	}
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

// BanUser handles POST /admin/users/:id/ban.
func (h *Handlers) BanUser(c *gin.Context) {
	h.setBanned(c, true)
}

// UnbanUser handles POST /admin/users/:id/unban.
func (h *Handlers) UnbanUser(c *gin.Context) {
	h.setBanned(c, false)
}

func (h *Handlers) setBanned(c *gin.Context, banned bool) {
	id, ok := pathUserID(c)
	if !ok {
		return
	}
	if err := h.users.SetBanned(c.Request.Context(), id, banned); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}

// FillStars handles POST /admin/users/:id/stars.
func (h *Handlers) FillStars(c *gin.Context) {
	id, okID := pathUserID(c)
	if !okID {
		return
	}
	var req FillStarsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Amount <= 0 || req.ExpiresHours < 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}
	if err := h.stars.Fill(c.Request.Context(), id, req.Amount, req.ExpiresHours); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}

// Broadcast handles POST /admin/broadcast.
func (h *Handlers) Broadcast(c *gin.Context) {
	var req BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}
	n, err := h.users.Broadcast(c.Request.Context(), req.Text, req.IncludeBanned)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, BroadcastResponse{Recipients: n})
}

// pathUserID parses the :id path parameter, failing the request on junk.
func pathUserID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid user id")
		return 0, false
	}
	return id, true
}
