// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// rate limiting, CORS, and security headers.
//
// Design goals:
//   - Observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/tbourn/go-microblog-backend/internal/config"
	"github.com/tbourn/go-microblog-backend/internal/http/handlers"
	"github.com/tbourn/go-microblog-backend/internal/http/middleware"
	"github.com/tbourn/go-microblog-backend/internal/services"
	"github.com/tbourn/go-microblog-backend/internal/translate"
)

// Services bundles the application services the router exposes. Wiring
// happens in cmd/server; the router only mounts them.
type Services struct {
	Users         *services.UserService
	Graph         *services.GraphService
	Posts         *services.PostService
	Feed          *services.FeedService
	Messages      *services.MessageService
	Notifications *services.NotificationService
	Tasks         *services.TaskService
	Translator    translate.Translator
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Rate limiter (per user/IP)
//  8. CORS and security headers
//
// The identity middleware runs only on the versioned API group, so /health
// and /metrics stay reachable without a caller identity.
func RegisterRoutes(r *gin.Engine, svc Services, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction (X-User-ID masked by default)
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (64 KiB: post bodies are tiny)
	r.Use(limitBody(64 << 10))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 8) CORS posture (safe defaults: allow all if none configured)
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.HeaderUserID},
		ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORS.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		EnablePolicy: true,
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

	h := handlers.New(
		svc.Users,
		svc.Graph,
		svc.Posts,
		svc.Feed,
		svc.Messages,
		svc.Notifications,
		svc.Tasks,
		svc.Translator,
	)

	// Versioned public API: every route below has a resolved acting user,
	// and presence (last_seen) is refreshed per request.
	api := r.Group(cfg.APIBasePath)
	api.Use(middleware.Identity(svc.Users))

	// Read-heavy listings benefit from compression.
	gz := gzip.Gzip(gzip.DefaultCompression)

	api.POST("/posts", h.CreatePost)
	api.GET("/feed", gz, h.HomeFeed)
	api.GET("/explore", gz, h.Explore)
	api.GET("/search", gz, h.SearchPosts)

	api.GET("/users/:username", h.GetProfile)
	api.GET("/users/:username/posts", gz, h.ListUserPosts)
	api.POST("/users/:username/follow", h.Follow)
	api.POST("/users/:username/unfollow", h.Unfollow)
	api.PUT("/profile", h.UpdateProfile)

	api.POST("/messages/:username", h.SendMessage)
	api.GET("/messages", gz, h.ListMessages)
	api.POST("/messages/read", h.MarkMessagesRead)
	api.GET("/messages/unread", h.UnreadCount)

	api.GET("/notifications", h.ListNotifications)

	api.POST("/tasks/export_posts", h.LaunchExport)
	api.GET("/tasks/export_posts", h.ExportInProgress)

	api.POST("/translate", h.Translate)
}

// limitBody caps the request body read by handlers; oversized bodies fail
// during binding with 400 rather than exhausting memory.
func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request != nil && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
