package scheduler

import (
	"time"

	"github.com/t-lnarr/muradoff/internal/domain"
)

// Decision is the outcome of evaluating one post on a tick.
type Decision int

const (
	// DecisionSkip leaves the post untouched this tick.
	DecisionSkip Decision = iota
	// DecisionFire emits the post now.
	DecisionFire
	// DecisionEvict removes the post from the schedule.
	DecisionEvict
)

// EvictReason says why a post was evicted.
type EvictReason int

const (
	EvictNone EvictReason = iota
	EvictOwnerMissing
	EvictOwnerBanned
	EvictTrialExpired
)

func (r EvictReason) String() string {
	switch r {
	case EvictOwnerMissing:
		return "owner_missing"
	case EvictOwnerBanned:
		return "owner_banned"
	case EvictTrialExpired:
		return "trial_expired"
	default:
		return "none"
	}
}

// Evaluate decides what the tick should do with a post. Eviction checks run
// in a fixed order — missing owner, banned owner, expired trial — before any
// schedule checks, so an ineligible owner's post is removed even when it is
// paused or not yet due. Elevated owners are exempt from trial expiry only.
func Evaluate(post *domain.ScheduledPost, owner *domain.User, elevated bool, now time.Time) (Decision, EvictReason) {
	if owner == nil {
		return DecisionEvict, EvictOwnerMissing
	}
	if owner.Banned {
		return DecisionEvict, EvictOwnerBanned
	}
	if owner.TrialExpired(now) && !elevated {
		return DecisionEvict, EvictTrialExpired
	}
	if post.Paused {
		return DecisionSkip, EvictNone
	}
	if now.Before(post.NextFireAt) {
		return DecisionSkip, EvictNone
	}
	return DecisionFire, EvictNone
}
