// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a user is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/t-lnarr/muradoff/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateUser inserts a new user row. CreatedAt is set to UTC.
func CreateUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(u).Error
}

// GetUser fetches a user by id, or ErrNotFound if missing.
func GetUser(ctx context.Context, db *gorm.DB, id int64) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// SaveUser persists all fields of an already-loaded user.
func SaveUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	return db.WithContext(ctx).Save(u).Error
}

// SetUserBanned flips the banned flag. Returns ErrNotFound when no row
// was affected.
func SetUserBanned(ctx context.Context, db *gorm.DB, id int64, banned bool) error {
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Update("banned", banned)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AddUserStars adds delta to the persistent star balance of a user.
// Returns ErrNotFound when the user does not exist.
func AddUserStars(ctx context.Context, db *gorm.DB, id int64, delta float64) error {
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Update("stars", gorm.Expr("stars + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListUserIDs returns the ids of all users, optionally excluding banned ones.
// Used by the broadcast fan-out.
func ListUserIDs(ctx context.Context, db *gorm.DB, includeBanned bool) ([]int64, error) {
	q := db.WithContext(ctx).Model(&domain.User{})
	if !includeBanned {
		q = q.Where("banned = ?", false)
	}
	var ids []int64
	err := q.Pluck("id", &ids).Error
	return ids, err
}

// CountUsers returns the total number of users and how many joined since the
// given cutoff, for operator statistics.
func CountUsers(ctx context.Context, db *gorm.DB, joinedSince time.Time) (total, recent int64, err error) {
	if err = db.WithContext(ctx).Model(&domain.User{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	err = db.WithContext(ctx).
		Model(&domain.User{}).
		Where("created_at >= ?", joinedSince).
		Count(&recent).Error
	return total, recent, err
}
