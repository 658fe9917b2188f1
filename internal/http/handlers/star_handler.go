// Star balance HTTP handlers.
//
// This file exposes endpoints for the star economy:
//   - GET  /stars             (balance details)
//   - POST /stars/daily-bonus (claim the daily reward)
//   - POST /stars/exchange    (spend stars on posting days)
//   - POST /promo/redeem      (redeem a promo code)
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/t-lnarr/muradoff/internal/services"
)

// StarService defines the balance operations consumed by HTTP handlers.
type StarService interface {
	// Details returns the caller's balance split.
	Details(ctx context.Context, userID int64) (*services.StarDetails, error)
	// DailyBonus credits the daily reward once per 24 hours.
	DailyBonus(ctx context.Context, userID int64) (float64, error)
	// Exchange spends a preset price on posting days.
	Exchange(ctx context.Context, userID int64, price float64) (*time.Time, error)
	// Fill credits stars by operator action.
	Fill(ctx context.Context, userID int64, amount float64, expiresHours int) error
}

// ExchangeRequest is the JSON payload for POST /stars/exchange.
type ExchangeRequest struct {
	// Price is one of the fixed preset star prices.
	Price float64 `json:"price" binding:"required"`
}

// ExchangeResponse reports the extended access window.
type ExchangeResponse struct {
	AccessUntil time.Time `json:"access_until"`
}

// DailyBonusResponse reports the credited amount.
type DailyBonusResponse struct {
	Stars float64 `json:"stars"`
}

// StarDetails handles GET /stars.
func (h *Handlers) StarDetails(c *gin.Context) {
	d, err := h.stars.Details(c.Request.Context(), caller(c))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, d)
}

// DailyBonus handles POST /stars/daily-bonus.
func (h *Handlers) DailyBonus(c *gin.Context) {
	amount, err := h.stars.DailyBonus(c.Request.Context(), caller(c))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, DailyBonusResponse{Stars: amount})
}

// Exchange handles POST /stars/exchange.
func (h *Handlers) Exchange(c *gin.Context) {
	var req ExchangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}
	until, err := h.stars.Exchange(c.Request.Context(), caller(c), req.Price)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, ExchangeResponse{AccessUntil: *until})
}
