package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/t-lnarr/muradoff/internal/domain"
	"github.com/t-lnarr/muradoff/internal/repo"
	"github.com/t-lnarr/muradoff/internal/texts"
)

// dispatch emits one due post: it first clears the channel's previous live
// message, then sends, then records the new pointer and the advanced fire
// time. A send failure pauses the post and tells the owner; it never evicts.
func (s *Scheduler) dispatch(ctx context.Context, post *domain.ScheduledPost, owner *domain.User, now time.Time) {
	s.deleteLast(ctx, post.Channel)

	sctx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	var (
		ref domain.MessageRef
		err error
	)
	switch post.Kind {
	case domain.KindPhoto:
		ref, err = s.messenger.SendPhoto(sctx, post.Channel, post.PhotoRef, post.Caption)
	default:
		ref, err = s.messenger.SendText(sctx, post.Channel, post.Text)
	}

	if err != nil {
		dispatchesTotal.WithLabelValues("failed").Inc()
		s.log.Warn().Err(err).
			Str("post_id", post.ID).
			Str("channel", post.Channel).
			Msg("send failed, pausing post")
		if perr := repo.SetPostPaused(ctx, s.db, post.ID, true); perr != nil {
			s.log.Error().Err(perr).Str("post_id", post.ID).Msg("failed to pause post after send error")
		}
		s.notifier.Notify(owner.ID, texts.T(owner.Language, texts.KeyAutoPaused))
		return
	}

	if uerr := repo.UpsertChannelLastPost(ctx, s.db, post.Channel, post.ID, ref); uerr != nil {
		s.log.Error().Err(uerr).Str("channel", post.Channel).Msg("failed to record channel pointer")
	}
	next := now.Add(post.Interval())
	if merr := repo.MarkPostDispatched(ctx, s.db, post.ID, ref, next); merr != nil {
		s.log.Error().Err(merr).Str("post_id", post.ID).Msg("failed to record dispatch")
	}

	dispatchesTotal.WithLabelValues("sent").Inc()
	s.log.Info().
		Str("post_id", post.ID).
		Str("channel", post.Channel).
		Int64("owner_id", post.OwnerID).
		Time("next_fire_at", next).
		Msg("post dispatched")
}

// evict removes a post whose owner is no longer eligible. If the channel's
// live message belongs to this post it is taken down first. Only trial
// expiry produces an owner notification; a missing owner has nobody to tell
// and a banned one was told at ban time.
func (s *Scheduler) evict(ctx context.Context, post *domain.ScheduledPost, owner *domain.User, reason EvictReason) {
	if last, err := repo.GetChannelLastPost(ctx, s.db, post.Channel); err == nil && last.PostID == post.ID {
		dctx, cancel := context.WithTimeout(ctx, s.sendTimeout)
		if derr := s.messenger.DeleteMessage(dctx, last.Ref()); derr != nil {
			s.log.Debug().Err(derr).Str("channel", post.Channel).Msg("live message delete failed during eviction")
		}
		cancel()
		if derr := repo.DeleteChannelLastPost(ctx, s.db, post.Channel); derr != nil {
			s.log.Error().Err(derr).Str("channel", post.Channel).Msg("failed to clear channel pointer")
		}
	}

	if err := repo.DeletePost(ctx, s.db, post.ID); err != nil {
		s.log.Error().Err(err).Str("post_id", post.ID).Msg("failed to evict post")
		return
	}

	evictionsTotal.WithLabelValues(reason.String()).Inc()
	s.log.Info().
		Str("post_id", post.ID).
		Int64("owner_id", post.OwnerID).
		Str("reason", reason.String()).
		Msg("post evicted")

	if reason == EvictTrialExpired && owner != nil {
		s.notifier.Notify(owner.ID, texts.T(owner.Language, texts.KeyTrialExpired))
	}
}

// deleteLast best-effort removes the channel's current live message before a
// new one goes out. The pointer row itself stays put: the upsert after a
// successful send replaces it, and a failed send leaves the old pointer as
// the next attempt's delete target.
func (s *Scheduler) deleteLast(ctx context.Context, channel string) {
	last, err := repo.GetChannelLastPost(ctx, s.db, channel)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			s.log.Warn().Err(err).Str("channel", channel).Msg("channel pointer lookup failed")
		}
		return
	}
	dctx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()
	if err := s.messenger.DeleteMessage(dctx, last.Ref()); err != nil {
		s.log.Debug().Err(err).Str("channel", channel).Msg("previous message delete failed")
	}
}
