package domain

import (
	"testing"
	"time"
)

func TestUserTrialExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	if (&User{TrialEnd: nil}).TrialExpired(now) {
		t.Fatal("nil trial end must never expire")
	}
	if (&User{TrialEnd: &future}).TrialExpired(now) {
		t.Fatal("future trial end reported expired")
	}
	if !(&User{TrialEnd: &past}).TrialExpired(now) {
		t.Fatal("past trial end reported active")
	}
	// The boundary instant is still inside the window.
	if (&User{TrialEnd: &now}).TrialExpired(now) {
		t.Fatal("trial expiring exactly now reported expired")
	}
}

func TestScheduledPostInterval(t *testing.T) {
	p := &ScheduledPost{IntervalMinutes: 90}
	if p.Interval() != 90*time.Minute {
		t.Fatalf("interval %v", p.Interval())
	}
}

func TestMessageRefIsZero(t *testing.T) {
	if !(MessageRef{}).IsZero() {
		t.Fatal("zero ref not recognized")
	}
	if (MessageRef{ChatID: -100, MessageID: 1}).IsZero() {
		t.Fatal("non-zero ref reported zero")
	}
}

func TestPromoCodeExhausted(t *testing.T) {
	if (&PromoCode{}).Exhausted() {
		t.Fatal("unlimited code reported exhausted")
	}
	two := 2
	if (&PromoCode{MaxUses: &two, Used: 1}).Exhausted() {
		t.Fatal("code with remaining uses reported exhausted")
	}
	if !(&PromoCode{MaxUses: &two, Used: 2}).Exhausted() {
		t.Fatal("fully used code not reported exhausted")
	}
}

func TestStarGrantExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	if (&StarGrant{ExpiresAt: now.Add(time.Second)}).Expired(now) {
		t.Fatal("future grant reported expired")
	}
	if !(&StarGrant{ExpiresAt: now}).Expired(now) {
		t.Fatal("grant expiring now should count as expired")
	}
}
