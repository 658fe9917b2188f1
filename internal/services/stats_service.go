// Package services – StatsService
//
// Operator-facing counters: user totals, post totals, and the referral
// leaderboard.
package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/t-lnarr/muradoff/internal/repo"
)

// Overview is the operator statistics snapshot.
type Overview struct {
	TotalUsers   int64                `json:"total_users"`
	RecentUsers  int64                `json:"recent_users"`
	TotalPosts   int64                `json:"total_posts"`
	PausedPosts  int64                `json:"paused_posts"`
	TopReferrers []repo.ReferrerCount `json:"top_referrers"`
}

// StatsService aggregates read-only counters for the admin API.
type StatsService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// RecentWindow bounds the "recent users" counter.
	RecentWindow time.Duration
	// LeaderboardSize caps the referral leaderboard.
	LeaderboardSize int

	now func() time.Time
}

// NewStatsService constructs a StatsService with a 24h recency window.
func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{
		DB:              db,
		RecentWindow:    24 * time.Hour,
		LeaderboardSize: 10,
		now:             time.Now,
	}
}

// Overview collects the current counters.
func (s *StatsService) Overview(ctx context.Context) (*Overview, error) {
	since := s.now().UTC().Add(-s.RecentWindow)
	total, recent, err := repo.CountUsers(ctx, s.DB, since)
	if err != nil {
		return nil, err
	}
	posts, paused, err := repo.CountPosts(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	top, err := repo.TopReferrers(ctx, s.DB, s.LeaderboardSize)
	if err != nil {
		return nil, err
	}
	return &Overview{
		TotalUsers:   total,
		RecentUsers:  recent,
		TotalPosts:   posts,
		PausedPosts:  paused,
		TopReferrers: top,
	}, nil
}
