// Package repo – temporary star grant persistence.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/t-lnarr/muradoff/internal/domain"
)

// CreateStarGrant inserts a temporary star grant for a user.
func CreateStarGrant(ctx context.Context, db *gorm.DB, userID int64, amount float64, expiresAt time.Time) (*domain.StarGrant, error) {
	g := &domain.StarGrant{
		ID:        uuid.NewString(),
		UserID:    userID,
		Amount:    amount,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(g).Error; err != nil {
		return nil, err
	}
	return g, nil
}

// ListActiveStarGrants returns the user's unexpired grants, soonest-expiring
// first. Deduction consumes grants in this order so the shortest-lived stars
// are spent before they evaporate.
func ListActiveStarGrants(ctx context.Context, db *gorm.DB, userID int64, now time.Time) ([]domain.StarGrant, error) {
	var out []domain.StarGrant
	err := db.WithContext(ctx).
		Where("user_id = ? AND expires_at > ?", userID, now).
		Order("expires_at asc").
		Find(&out).Error
	return out, err
}

// SaveStarGrant persists a partially consumed grant.
func SaveStarGrant(ctx context.Context, db *gorm.DB, g *domain.StarGrant) error {
	return db.WithContext(ctx).Save(g).Error
}

// DeleteStarGrant removes a fully consumed grant.
func DeleteStarGrant(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Delete(&domain.StarGrant{}, "id = ?", id).Error
}

// PruneExpiredStarGrants removes grants whose expiry has passed for one user.
func PruneExpiredStarGrants(ctx context.Context, db *gorm.DB, userID int64, now time.Time) error {
	return db.WithContext(ctx).
		Where("user_id = ? AND expires_at <= ?", userID, now).
		Delete(&domain.StarGrant{}).Error
}
