// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, panic recovery, metrics, CORS, and
// rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/t-lnarr/muradoff/internal/config"
	"github.com/t-lnarr/muradoff/internal/http/handlers"
	"github.com/t-lnarr/muradoff/internal/http/middleware"
	"github.com/t-lnarr/muradoff/internal/services"
)

// Services bundles the application services the router exposes. They are
// constructed in main because the post service shares state (the coarse
// lock, the platform adapter) with the scheduler.
type Services struct {
	Posts  *services.PostService
	Users  *services.UserService
	Stars  *services.StarService
	Promos *services.PromoService
	Stats  *services.StatsService
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine: observability, rate limiting, CORS, health and metrics endpoints,
// the authenticated user API, and the operator API behind the elevation gate.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Rate limiter (per user/IP)
//  8. CORS
func RegisterRoutes(r *gin.Engine, svc Services, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging
	r.Use(middleware.Logger())

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 8) CORS. The API serves the bot frontend only, so allow-all is fine.
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-User-ID"},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	h := handlers.New(svc.Posts, svc.Users, svc.Stars, svc.Promos, svc.Stats)

	// Authenticated user API
	api := r.Group("/api/v1", middleware.Identity())
	{
		// Account
		api.POST("/users", h.Register)
		api.GET("/me", h.Me)
		api.PUT("/me/language", h.SetLanguage)

		// Posts
		api.POST("/posts", h.CreatePost)
		api.GET("/posts", h.ListPosts)
		api.GET("/posts/:id", h.GetPost)
		api.POST("/posts/:id/pause", h.PausePost)
		api.POST("/posts/:id/resume", h.ResumePost)
		api.DELETE("/posts/:id", h.DeletePost)

		// Stars
		api.GET("/stars", h.StarDetails)
		api.POST("/stars/daily-bonus", h.DailyBonus)
		api.POST("/stars/exchange", h.Exchange)
		api.POST("/promo/redeem", h.RedeemPromo)
	}

	// Operator API
	admin := api.Group("/admin", middleware.RequireElevated(cfg.IsAdmin))
	{
		admin.GET("/stats", h.Stats)
		admin.POST("/broadcast", h.Broadcast)
		admin.POST("/promo", h.CreatePromo)
		admin.GET("/promo", h.ListPromos)
		admin.GET("/users/:id", h.GetUser)
		admin.POST("/users/:id/ban", h.BanUser)
		admin.POST("/users/:id/unban", h.UnbanUser)
		admin.POST("/users/:id/stars", h.FillStars)
	}
}

// limitBody caps the request body size for all endpoints using
// http.MaxBytesReader; oversized bodies error on read downstream.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
