// Package repo – scheduled post persistence.
//
// Functions here manage the scheduled_posts collection. The scheduler loop
// snapshots the whole collection once per tick; the lifecycle service
// mutates individual rows. Both run under the same coarse lock (see
// internal/scheduler), so these functions never need row locking.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/t-lnarr/muradoff/internal/domain"
)

// CreatePost inserts a new scheduled post.
func CreatePost(ctx context.Context, db *gorm.DB, p *domain.ScheduledPost) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(p).Error
}

// GetPost fetches a post by id, or ErrNotFound if missing.
func GetPost(ctx context.Context, db *gorm.DB, id string) (*domain.ScheduledPost, error) {
	var p domain.ScheduledPost
	if err := db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPosts returns every scheduled post, ordered by creation time. This is
// the scheduler's per-tick snapshot.
func ListPosts(ctx context.Context, db *gorm.DB) ([]domain.ScheduledPost, error) {
	var out []domain.ScheduledPost
	err := db.WithContext(ctx).Order("created_at asc").Find(&out).Error
	return out, err
}

// ListPostsByOwner returns all posts owned by a user, newest first.
func ListPostsByOwner(ctx context.Context, db *gorm.DB, ownerID int64) ([]domain.ScheduledPost, error) {
	var out []domain.ScheduledPost
	err := db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// CountPostsByOwner returns the number of posts a user currently owns,
// used to enforce the per-owner cap.
func CountPostsByOwner(ctx context.Context, db *gorm.DB, ownerID int64) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.ScheduledPost{}).
		Where("owner_id = ?", ownerID).
		Count(&total).Error
	return total, err
}

// CountPosts returns total and paused post counts for operator statistics.
func CountPosts(ctx context.Context, db *gorm.DB) (total, paused int64, err error) {
	if err = db.WithContext(ctx).Model(&domain.ScheduledPost{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	err = db.WithContext(ctx).
		Model(&domain.ScheduledPost{}).
		Where("paused = ?", true).
		Count(&paused).Error
	return total, paused, err
}

// MarkPostDispatched records a successful emission: the new message
// reference and the advanced NextFireAt.
func MarkPostDispatched(ctx context.Context, db *gorm.DB, id string, ref domain.MessageRef, nextFireAt time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.ScheduledPost{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_chat_id":    ref.ChatID,
			"last_message_id": ref.MessageID,
			"next_fire_at":    nextFireAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetPostPaused sets the paused flag. Returns ErrNotFound when no row
// was affected.
func SetPostPaused(ctx context.Context, db *gorm.DB, id string, paused bool) error {
	res := db.WithContext(ctx).
		Model(&domain.ScheduledPost{}).
		Where("id = ?", id).
		Update("paused", paused)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeletePost removes a post. Deleting an already-absent post is a no-op,
// which keeps eviction idempotent under concurrent explicit deletes.
func DeletePost(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Delete(&domain.ScheduledPost{}, "id = ?", id).Error
}
