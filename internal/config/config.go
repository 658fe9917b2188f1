// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as the bot token, scheduler cadence, posting policy limits, star and
// referral bonuses, logging, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "muradoff-bot")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// SchedulerConfig groups the posting-loop cadence and failure handling.
type SchedulerConfig struct {
	TickInterval time.Duration // polling cadence between ticks
	ErrorBackoff time.Duration // extra sleep after an unexpected tick failure
	SendTimeout  time.Duration // per-call bound on platform send/delete
}

// PostingConfig bounds what users may schedule.
type PostingConfig struct {
	MinIntervalMinutes int // lowest accepted repost cadence
	MaxIntervalMinutes int // highest accepted repost cadence
	MaxPostsPerUser    int // concurrently owned posts per non-admin user
}

// BonusConfig holds the stars-economy knobs.
type BonusConfig struct {
	TrialDays       int     // free trial granted on first contact
	DailyBonusStars float64 // stars granted by the daily bonus
	ReferralStars   float64 // stars granted per successful referral
	ReferralHours   int     // if > 0, referral stars are temporary with this TTL
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	GinMode           string        // debug|release|test

	// Logging
	LogLevel  string // debug|info|warn|error|fatal|panic
	LogPretty bool   // pretty console logs in dev

	// Bot
	BotToken string  // messaging platform token
	AdminIDs []int64 // operator user ids with elevated privilege

	// App
	DBPath string // SQLite path

	Scheduler SchedulerConfig
	Posting   PostingConfig
	Bonus     BonusConfig

	// Rate limiting (admin API)
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging
		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getbool("LOG_PRETTY", false),

		// Bot
		BotToken: getenv("BOT_TOKEN", ""),
		AdminIDs: getids("ADMIN_IDS", nil),

		// App
		DBPath: getenv("DB_PATH", "bot.db"),

		Scheduler: SchedulerConfig{
			TickInterval: getdur("TICK_INTERVAL", 5*time.Second),
			ErrorBackoff: getdur("TICK_ERROR_BACKOFF", 15*time.Second),
			SendTimeout:  getdur("SEND_TIMEOUT", 10*time.Second),
		},
		Posting: PostingConfig{
			MinIntervalMinutes: getint("POST_MIN_INTERVAL_MINUTES", 1),
			MaxIntervalMinutes: getint("POST_MAX_INTERVAL_MINUTES", 10080),
			MaxPostsPerUser:    getint("MAX_POSTS_PER_USER", 6),
		},
		Bonus: BonusConfig{
			TrialDays:       getint("TRIAL_DAYS", 2),
			DailyBonusStars: getfloat("DAILY_BONUS_STARS", 1.0),
			ReferralStars:   getfloat("REFERRAL_STARS", 1.0),
			ReferralHours:   getint("REFERRAL_HOURS", 0),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "muradoff-bot"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.Scheduler.TickInterval <= 0 {
		return cfg, errors.New("TICK_INTERVAL must be > 0")
	}
	if cfg.Scheduler.ErrorBackoff < cfg.Scheduler.TickInterval {
		return cfg, errors.New("TICK_ERROR_BACKOFF must be >= TICK_INTERVAL")
	}
	if cfg.Scheduler.SendTimeout <= 0 {
		return cfg, errors.New("SEND_TIMEOUT must be > 0")
	}
	if cfg.Posting.MinIntervalMinutes < 1 {
		return cfg, errors.New("POST_MIN_INTERVAL_MINUTES must be >= 1")
	}
	if cfg.Posting.MaxIntervalMinutes < cfg.Posting.MinIntervalMinutes {
		return cfg, errors.New("POST_MAX_INTERVAL_MINUTES must be >= POST_MIN_INTERVAL_MINUTES")
	}
	if cfg.Posting.MaxPostsPerUser < 1 {
		return cfg, errors.New("MAX_POSTS_PER_USER must be >= 1")
	}
	if cfg.Bonus.TrialDays < 0 {
		return cfg, errors.New("TRIAL_DAYS must be >= 0")
	}
	if cfg.Bonus.DailyBonusStars < 0 || cfg.Bonus.ReferralStars < 0 {
		return cfg, errors.New("star bonuses must be >= 0")
	}
	if cfg.Bonus.ReferralHours < 0 {
		return cfg, errors.New("REFERRAL_HOURS must be >= 0")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// IsAdmin reports whether id is one of the statically configured operators.
func (c Config) IsAdmin(id int64) bool {
	for _, a := range c.AdminIDs {
		if a == id {
			return true
		}
	}
	return false
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

// getids parses a comma-separated list of numeric user ids. Malformed
// entries are skipped rather than failing the whole load.
func getids(k string, def []int64) []int64 {
	v, ok := os.LookupEnv(k)
	if !ok || v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if id, err := strconv.ParseInt(p, 10, 64); err == nil {
			out = append(out, id)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
