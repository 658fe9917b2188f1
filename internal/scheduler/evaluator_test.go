package scheduler

import (
	"testing"
	"time"

	"github.com/t-lnarr/muradoff/internal/domain"
)

func TestEvaluate(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	duePost := func() *domain.ScheduledPost {
		return &domain.ScheduledPost{ID: "p1", OwnerID: 7, Channel: "@c", NextFireAt: past}
	}
	activeOwner := func() *domain.User {
		return &domain.User{ID: 7, TrialEnd: &future}
	}

	tests := []struct {
		name     string
		post     *domain.ScheduledPost
		owner    *domain.User
		elevated bool
		want     Decision
		reason   EvictReason
	}{
		{
			name: "due post fires",
			post: duePost(), owner: activeOwner(),
			want: DecisionFire, reason: EvictNone,
		},
		{
			name: "missing owner evicts",
			post: duePost(), owner: nil,
			want: DecisionEvict, reason: EvictOwnerMissing,
		},
		{
			name: "banned owner evicts",
			post: duePost(), owner: &domain.User{ID: 7, Banned: true, TrialEnd: &future},
			want: DecisionEvict, reason: EvictOwnerBanned,
		},
		{
			name: "expired trial evicts",
			post: duePost(), owner: &domain.User{ID: 7, TrialEnd: &past},
			want: DecisionEvict, reason: EvictTrialExpired,
		},
		{
			name: "elevated owner survives expired trial",
			post: duePost(), owner: &domain.User{ID: 7, TrialEnd: &past}, elevated: true,
			want: DecisionFire, reason: EvictNone,
		},
		{
			name: "elevated owner still evicted when banned",
			post: duePost(), owner: &domain.User{ID: 7, Banned: true}, elevated: true,
			want: DecisionEvict, reason: EvictOwnerBanned,
		},
		{
			name: "nil trial end never expires",
			post: duePost(), owner: &domain.User{ID: 7},
			want: DecisionFire, reason: EvictNone,
		},
		{
			name: "paused post skipped",
			post: &domain.ScheduledPost{ID: "p1", OwnerID: 7, NextFireAt: past, Paused: true},
			owner: activeOwner(),
			want: DecisionSkip, reason: EvictNone,
		},
		{
			name: "paused post of banned owner still evicted",
			post: &domain.ScheduledPost{ID: "p1", OwnerID: 7, NextFireAt: past, Paused: true},
			owner: &domain.User{ID: 7, Banned: true},
			want: DecisionEvict, reason: EvictOwnerBanned,
		},
		{
			name: "not due post skipped",
			post: &domain.ScheduledPost{ID: "p1", OwnerID: 7, NextFireAt: future},
			owner: activeOwner(),
			want: DecisionSkip, reason: EvictNone,
		},
		{
			name: "exactly due post fires",
			post: &domain.ScheduledPost{ID: "p1", OwnerID: 7, NextFireAt: now},
			owner: activeOwner(),
			want: DecisionFire, reason: EvictNone,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, reason := Evaluate(tc.post, tc.owner, tc.elevated, now)
			if got != tc.want || reason != tc.reason {
				t.Fatalf("Evaluate() = (%v, %v), want (%v, %v)", got, reason, tc.want, tc.reason)
			}
		})
	}
}

func TestEvictReasonString(t *testing.T) {
	if EvictTrialExpired.String() != "trial_expired" {
		t.Fatalf("unexpected string: %s", EvictTrialExpired)
	}
	if EvictNone.String() != "none" {
		t.Fatalf("unexpected string: %s", EvictNone)
	}
}
