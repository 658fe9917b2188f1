// Package repo – promo code and referral persistence.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/t-lnarr/muradoff/internal/domain"
)

// CreatePromoCode inserts a new code.
func CreatePromoCode(ctx context.Context, db *gorm.DB, p *domain.PromoCode) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(p).Error
}

// GetPromoCode fetches a code, or ErrNotFound if missing.
func GetPromoCode(ctx context.Context, db *gorm.DB, code string) (*domain.PromoCode, error) {
	var p domain.PromoCode
	if err := db.WithContext(ctx).First(&p, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPromoCodes returns all codes, newest first.
func ListPromoCodes(ctx context.Context, db *gorm.DB) ([]domain.PromoCode, error) {
	var out []domain.PromoCode
	err := db.WithContext(ctx).Order("created_at desc").Find(&out).Error
	return out, err
}

// HasRedeemed reports whether the user already redeemed the code.
func HasRedeemed(ctx context.Context, db *gorm.DB, code string, userID int64) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.PromoRedemption{}).
		Where("code = ? AND user_id = ?", code, userID).
		Count(&n).Error
	return n > 0, err
}

// RecordRedemption stores a redemption and bumps the code's use counter.
// The unique (code, user) index rejects double redemption at the DB level.
func RecordRedemption(ctx context.Context, db *gorm.DB, code string, userID int64) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := &domain.PromoRedemption{
			ID:        uuid.NewString(),
			Code:      code,
			UserID:    userID,
			CreatedAt: time.Now().UTC(),
		}
		if err := tx.Create(r).Error; err != nil {
			return err
		}
		return tx.Model(&domain.PromoCode{}).
			Where("code = ?", code).
			Update("used", gorm.Expr("used + 1")).Error
	})
}

// CreateReferral stores a one-time attribution. The unique invitee index
// makes a second attribution fail, which callers treat as "already referred".
func CreateReferral(ctx context.Context, db *gorm.DB, inviterID, inviteeID int64) error {
	r := &domain.Referral{
		ID:        uuid.NewString(),
		InviterID: inviterID,
		InviteeID: inviteeID,
		CreatedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).Create(r).Error
}

// HasReferral reports whether the invitee already has an attribution.
func HasReferral(ctx context.Context, db *gorm.DB, inviteeID int64) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Referral{}).
		Where("invitee_id = ?", inviteeID).
		Count(&n).Error
	return n > 0, err
}

// CountReferrals returns how many users an inviter has brought in.
func CountReferrals(ctx context.Context, db *gorm.DB, inviterID int64) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Referral{}).
		Where("inviter_id = ?", inviterID).
		Count(&n).Error
	return n, err
}

// TopReferrers returns inviter ids with their referral counts, highest first.
func TopReferrers(ctx context.Context, db *gorm.DB, limit int) ([]ReferrerCount, error) {
	var out []ReferrerCount
	err := db.WithContext(ctx).
		Model(&domain.Referral{}).
		Select("inviter_id, count(*) as count").
		Group("inviter_id").
		Order("count desc").
		Limit(limit).
		Scan(&out).Error
	return out, err
}

// ReferrerCount pairs an inviter with their referral total.
type ReferrerCount struct {
	InviterID int64 `json:"inviter_id"`
	Count     int64 `json:"count"`
}
