// Command bot runs the scheduled-posting backend: the SQLite-backed store,
// the scheduler loop, the messaging platform adapter, and the HTTP API the
// bot frontend talks to.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/t-lnarr/muradoff/internal/config"
	httpapi "github.com/t-lnarr/muradoff/internal/http"
	"github.com/t-lnarr/muradoff/internal/observability"
	"github.com/t-lnarr/muradoff/internal/platform/telegram"
	"github.com/t-lnarr/muradoff/internal/repo"
	"github.com/t-lnarr/muradoff/internal/scheduler"
	"github.com/t-lnarr/muradoff/internal/services"
	"github.com/t-lnarr/muradoff/internal/sysutil"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	// Local development convenience; absence of .env is fine.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	logger := log.With().Str("service", cfg.OTEL.ServiceName).Str("version", version).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		logger.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			logger.Warn().Err(err).Msg("otel shutdown failed")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.DBPath).Msg("database open failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		logger.Fatal().Err(err).Msg("database migration failed")
	}
	logger.Info().Str("path", cfg.DBPath).Msg("database ready")

	tg, err := telegram.New(cfg.BotToken, cfg.Scheduler.SendTimeout, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("platform adapter init failed")
	}

	// One coarse lock serializes scheduler ticks and lifecycle mutations.
	var mu sync.Mutex

	sched := scheduler.New(
		db, tg, tg, &mu, cfg.IsAdmin,
		cfg.Scheduler.TickInterval, cfg.Scheduler.ErrorBackoff, cfg.Scheduler.SendTimeout,
		logger,
	)

	svc := httpapi.Services{
		Posts: services.NewPostService(
			db, tg, tg, &mu, cfg.IsAdmin,
			cfg.Posting.MinIntervalMinutes, cfg.Posting.MaxIntervalMinutes, cfg.Posting.MaxPostsPerUser,
		),
		Users:  services.NewUserService(db, tg, cfg.Bonus.TrialDays, cfg.Bonus.ReferralStars, cfg.Bonus.ReferralHours),
		Stars:  services.NewStarService(db, tg, cfg.Bonus.DailyBonusStars),
		Promos: services.NewPromoService(db, tg),
		Stats:  services.NewStatsService(db),
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, svc, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	schedDone := make(chan struct{})
	go func() {
		defer close(schedDone)
		if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("scheduler exited")
		}
	}()

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server failed")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Error().Err(err).Msg("http shutdown failed")
	}
	<-schedDone
	logger.Info().Msg("bye")
}
