package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != "8080" || cfg.GinMode != "release" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected server defaults %+v", cfg)
	}
	if cfg.Scheduler.TickInterval != 5*time.Second ||
		cfg.Scheduler.ErrorBackoff != 15*time.Second ||
		cfg.Scheduler.SendTimeout != 10*time.Second {
		t.Fatalf("unexpected scheduler defaults %+v", cfg.Scheduler)
	}
	if cfg.Posting.MinIntervalMinutes != 1 ||
		cfg.Posting.MaxIntervalMinutes != 10080 ||
		cfg.Posting.MaxPostsPerUser != 6 {
		t.Fatalf("unexpected posting defaults %+v", cfg.Posting)
	}
	if cfg.Bonus.TrialDays != 2 || cfg.Bonus.DailyBonusStars != 1 {
		t.Fatalf("unexpected bonus defaults %+v", cfg.Bonus)
	}
	if cfg.OTEL.Enabled {
		t.Fatal("otel should be disabled by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("GIN_MODE", "weird") // coerced to release
	t.Setenv("LOG_LEVEL", "WARNING")
	t.Setenv("TICK_INTERVAL", "2s")
	t.Setenv("TICK_ERROR_BACKOFF", "8s")
	t.Setenv("ADMIN_IDS", "42, 1001")
	t.Setenv("REFERRAL_HOURS", "72")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9999" || cfg.GinMode != "release" || cfg.LogLevel != "warn" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.Scheduler.TickInterval != 2*time.Second || cfg.Scheduler.ErrorBackoff != 8*time.Second {
		t.Fatalf("scheduler overrides not applied: %+v", cfg.Scheduler)
	}
	if len(cfg.AdminIDs) != 2 || cfg.AdminIDs[0] != 42 || cfg.AdminIDs[1] != 1001 {
		t.Fatalf("admin ids not parsed: %+v", cfg.AdminIDs)
	}
	if cfg.Bonus.ReferralHours != 72 {
		t.Fatalf("referral hours not applied: %+v", cfg.Bonus)
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		k, v string
	}{
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"backoff below tick", "TICK_ERROR_BACKOFF", "1s"},
		{"zero tick", "TICK_INTERVAL", "0s"},
		{"max below min interval", "POST_MAX_INTERVAL_MINUTES", "0"},
		{"zero post cap", "MAX_POSTS_PER_USER", "0"},
		{"negative trial", "TRIAL_DAYS", "-1"},
		{"zero rate burst", "RATE_BURST", "0"},
		{"sample ratio out of range", "OTEL_TRACES_SAMPLER_ARG", "1.5"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.k, tc.v)
			if _, err := Load(); err == nil {
				t.Fatalf("expected validation error for %s=%s", tc.k, tc.v)
			}
		})
	}
}

func TestIsAdmin(t *testing.T) {
	cfg := Config{AdminIDs: []int64{1, 2}}
	if !cfg.IsAdmin(1) || cfg.IsAdmin(3) {
		t.Fatal("IsAdmin misclassified")
	}
}
