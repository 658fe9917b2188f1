// Package scheduler drives the periodic emission of scheduled posts.
//
// A single goroutine wakes on a fixed tick, snapshots the post collection,
// and for each post either skips it, emits it to its channel, or evicts it
// when its owner is no longer eligible. All tick work runs under a coarse
// mutex shared with the lifecycle service, so a tick and an API mutation
// never interleave.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/t-lnarr/muradoff/internal/domain"
	"github.com/t-lnarr/muradoff/internal/repo"
)

// Messenger sends and deletes channel messages on the chat platform.
type Messenger interface {
	SendText(ctx context.Context, channel, text string) (domain.MessageRef, error)
	SendPhoto(ctx context.Context, channel, photoRef, caption string) (domain.MessageRef, error)
	DeleteMessage(ctx context.Context, ref domain.MessageRef) error
}

// Notifier delivers a private notice to a user. Implementations are
// fire-and-forget: delivery failure must not propagate back here.
type Notifier interface {
	Notify(userID int64, text string)
}

// Scheduler owns the tick loop.
type Scheduler struct {
	db         *gorm.DB
	messenger  Messenger
	notifier   Notifier
	isElevated func(int64) bool

	mu *sync.Mutex // shared with the post lifecycle service

	tickInterval time.Duration
	errorBackoff time.Duration
	sendTimeout  time.Duration

	log zerolog.Logger
	now func() time.Time
}

// New wires a Scheduler. mu is the coarse lock shared with the lifecycle
// service; isElevated reports whether a user id is exempt from trial expiry.
func New(db *gorm.DB, m Messenger, n Notifier, mu *sync.Mutex, isElevated func(int64) bool, tick, backoff, sendTimeout time.Duration, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		db:           db,
		messenger:    m,
		notifier:     n,
		isElevated:   isElevated,
		mu:           mu,
		tickInterval: tick,
		errorBackoff: backoff,
		sendTimeout:  sendTimeout,
		log:          log.With().Str("component", "scheduler").Logger(),
		now:          time.Now,
	}
}

// Run ticks until ctx is cancelled. A failed tick is logged and followed by
// an extra backoff pause; the loop itself never exits on error.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info().
		Dur("tick", s.tickInterval).
		Dur("backoff", s.errorBackoff).
		Msg("scheduler started")

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := s.safeTick(ctx); err != nil {
				s.log.Error().Err(err).Msg("tick failed")
				select {
				case <-ctx.Done():
					s.log.Info().Msg("scheduler stopped")
					return ctx.Err()
				case <-time.After(s.errorBackoff):
				}
			}
		}
	}
}

// safeTick converts a tick panic into an error so one poisoned post cannot
// kill the loop.
func (s *Scheduler) safeTick(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tick panic: %v", r)
		}
	}()
	return s.Tick(ctx, s.now().UTC())
}

// Tick runs one full pass over the post collection at the given instant.
// Exported so tests can drive the scheduler without real time.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	defer func() {
		tickDuration.Observe(time.Since(start).Seconds())
		ticksTotal.Inc()
	}()

	posts, err := repo.ListPosts(ctx, s.db)
	if err != nil {
		return fmt.Errorf("list posts: %w", err)
	}

	for i := range posts {
		post := &posts[i]

		owner, err := repo.GetUser(ctx, s.db, post.OwnerID)
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			s.log.Warn().Err(err).Str("post_id", post.ID).Msg("owner lookup failed, skipping post")
			continue
		}

		elevated := s.isElevated != nil && s.isElevated(post.OwnerID)
		decision, reason := Evaluate(post, owner, elevated, now)

		switch decision {
		case DecisionFire:
			s.dispatch(ctx, post, owner, now)
		case DecisionEvict:
			s.evict(ctx, post, owner, reason)
		}
	}
	return nil
}
