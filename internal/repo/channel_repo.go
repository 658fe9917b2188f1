// Package repo – per-channel last-post pointer persistence.
//
// The channel_last_posts table backs the "at most one live message per
// channel" invariant: one row per channel, pointing at the message most
// recently emitted there by this system.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/t-lnarr/muradoff/internal/domain"
)

// GetChannelLastPost fetches the last-post pointer for a channel, or
// ErrNotFound when the channel has no recorded message.
func GetChannelLastPost(ctx context.Context, db *gorm.DB, channel string) (*domain.ChannelLastPost, error) {
	var c domain.ChannelLastPost
	if err := db.WithContext(ctx).First(&c, "channel = ?", channel).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// UpsertChannelLastPost overwrites the channel's pointer with the given
// post and message reference.
func UpsertChannelLastPost(ctx context.Context, db *gorm.DB, channel, postID string, ref domain.MessageRef) error {
	row := domain.ChannelLastPost{
		Channel:   channel,
		PostID:    postID,
		ChatID:    ref.ChatID,
		MessageID: ref.MessageID,
		UpdatedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "channel"}},
			UpdateAll: true,
		}).
		Create(&row).Error
}

// DeleteChannelLastPost removes the pointer for a channel. Missing rows
// are tolerated.
func DeleteChannelLastPost(ctx context.Context, db *gorm.DB, channel string) error {
	return db.WithContext(ctx).Delete(&domain.ChannelLastPost{}, "channel = ?", channel).Error
}
