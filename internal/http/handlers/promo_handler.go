// Promo code HTTP handlers.
//
// This file exposes the user-facing redemption endpoint and the
// operator-facing code management endpoints:
//   - POST /promo/redeem       (redeem, once per user)
//   - POST /admin/promo        (create a code)
//   - GET  /admin/promo        (list codes)
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/t-lnarr/muradoff/internal/domain"
)

// PromoService defines the promo code operations consumed by HTTP handlers.
type PromoService interface {
	// Create registers a new code.
	Create(ctx context.Context, code string, stars float64, maxUses *int) (*domain.PromoCode, error)
	// List returns all codes.
	List(ctx context.Context) ([]domain.PromoCode, error)
	// Redeem credits the code's stars to the user.
	Redeem(ctx context.Context, userID int64, code string) (float64, error)
}

// RedeemRequest is the JSON payload for POST /promo/redeem.
type RedeemRequest struct {
	Code string `json:"code" binding:"required"`
}

// RedeemResponse reports the credited amount.
type RedeemResponse struct {
	Stars float64 `json:"stars"`
}

// CreatePromoRequest is the JSON payload for POST /admin/promo.
type CreatePromoRequest struct {
	Code  string  `json:"code" binding:"required"`
	Stars float64 `json:"stars" binding:"required"`
	// MaxUses caps total redemptions; omit for unlimited.
	MaxUses *int `json:"max_uses"`
}

// ListPromosResponse wraps a code listing.
type ListPromosResponse struct {
	Codes []domain.PromoCode `json:"codes"`
}

// RedeemPromo handles POST /promo/redeem.
func (h *Handlers) RedeemPromo(c *gin.Context) {
	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}
	stars, err := h.promos.Redeem(c.Request.Context(), caller(c), req.Code)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, RedeemResponse{Stars: stars})
}

// CreatePromo handles POST /admin/promo.
func (h *Handlers) CreatePromo(c *gin.Context) {
	var req CreatePromoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}
	p, err := h.promos.Create(c.Request.Context(), req.Code, req.Stars, req.MaxUses)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, p)
}

// ListPromos handles GET /admin/promo.
func (h *Handlers) ListPromos(c *gin.Context) {
	codes, err := h.promos.List(c.Request.Context())
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, ListPromosResponse{Codes: codes})
}
