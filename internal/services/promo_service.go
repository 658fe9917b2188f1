// Package services – PromoService
//
// This file implements promo codes: operator-created star coupons with an
// optional global use limit, redeemable at most once per user.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/t-lnarr/muradoff/internal/domain"
	"github.com/t-lnarr/muradoff/internal/repo"
	"github.com/t-lnarr/muradoff/internal/texts"
)

// PromoService provides promo code creation, listing, and redemption.
type PromoService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Notifier tells users about redeemed credits. Optional.
	Notifier Notifier

	now func() time.Time
}

// NewPromoService constructs a PromoService.
func NewPromoService(db *gorm.DB, notifier Notifier) *PromoService {
	return &PromoService{DB: db, Notifier: notifier, now: time.Now}
}

// Create registers a new code worth stars. maxUses nil means unlimited.
func (s *PromoService) Create(ctx context.Context, code string, stars float64, maxUses *int) (*domain.PromoCode, error) {
	code = normalizeCode(code)
	if code == "" || stars <= 0 {
		return nil, ErrPromoNotFound
	}

	if _, err := repo.GetPromoCode(ctx, s.DB, code); err == nil {
		return nil, ErrPromoExists
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	p := &domain.PromoCode{
		Code:      code,
		Stars:     stars,
		MaxUses:   maxUses,
		CreatedAt: s.now().UTC(),
	}
	if err := repo.CreatePromoCode(ctx, s.DB, p); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns all codes, newest first.
func (s *PromoService) List(ctx context.Context) ([]domain.PromoCode, error) {
	return repo.ListPromoCodes(ctx, s.DB)
}

// Redeem credits the code's stars to the user. Each user may redeem a given
// code once, and a code with a use limit stops working once the limit is
// reached. Returns the credited amount.
func (s *PromoService) Redeem(ctx context.Context, userID int64, code string) (float64, error) {
	tr := otel.Tracer("services/PromoService")
	ctx, span := tr.Start(ctx, "Redeem",
		trace.WithAttributes(attribute.Int64("user.id", userID)),
	)
	defer span.End()

	code = normalizeCode(code)

	u, err := repo.GetUser(ctx, s.DB, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}

	p, err := repo.GetPromoCode(ctx, s.DB, code)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return 0, ErrPromoNotFound
		}
		return 0, err
	}
	if p.Exhausted() {
		return 0, ErrPromoExhausted
	}

	used, err := repo.HasRedeemed(ctx, s.DB, code, userID)
	if err != nil {
		return 0, err
	}
	if used {
		return 0, ErrPromoAlreadyUsed
	}

	if err := repo.RecordRedemption(ctx, s.DB, code, userID); err != nil {
		return 0, err
	}
	if err := repo.AddUserStars(ctx, s.DB, userID, p.Stars); err != nil {
		return 0, err
	}

	if s.Notifier != nil {
		s.Notifier.Notify(u.ID, texts.Tf(u.Language, texts.KeyStarsReceived, p.Stars))
	}
	return p.Stars, nil
}

// normalizeCode canonicalizes a promo code for storage and lookup.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
