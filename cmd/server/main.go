// Command server runs the microblog HTTP API.
//
// Startup order: env file, config, logging, database, tracing, services,
// background runner, router, HTTP server. Shutdown reverses it: stop
// accepting requests, drain in-flight exports, flush traces.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-microblog-backend/internal/config"
	"github.com/tbourn/go-microblog-backend/internal/export"
	httpapi "github.com/tbourn/go-microblog-backend/internal/http"
	"github.com/tbourn/go-microblog-backend/internal/langdetect"
	"github.com/tbourn/go-microblog-backend/internal/observability"
	"github.com/tbourn/go-microblog-backend/internal/repo"
	"github.com/tbourn/go-microblog-backend/internal/search"
	"github.com/tbourn/go-microblog-backend/internal/services"
	"github.com/tbourn/go-microblog-backend/internal/sysutil"
	"github.com/tbourn/go-microblog-backend/internal/translate"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Info().Str("version", version).Str("port", cfg.Port).Msg("starting microblog server")

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	ctx := context.Background()
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("setup tracing")
	}

	// Services. The task runner is attached after construction because the
	// runner reports progress back through the task service.
	userSvc := services.NewUserService(db)
	graphSvc := services.NewGraphService(db)
	notifSvc := services.NewNotificationService(db)

	postSvc := services.NewPostService(db, langdetect.NewStopwordDetector(), search.NewMemory())
	postSvc.MaxBodyRunes = cfg.MaxBodyRunes

	feedSvc := services.NewFeedService(db, graphSvc)

	msgSvc := services.NewMessageService(db, notifSvc)
	msgSvc.MaxBodyRunes = cfg.MaxBodyRunes

	taskSvc := services.NewTaskService(db, notifSvc)
	runner := export.NewRunner(db, taskSvc)
	runner.Batch = cfg.ExportBatch
	taskSvc.Runner = runner

	if err := postSvc.WarmIndex(ctx); err != nil {
		log.Fatal().Err(err).Msg("warm search index")
	}

	var translator translate.Translator = translate.Unconfigured{}
	if cfg.Translate.Endpoint != "" {
		translator = translate.NewHTTPClient(cfg.Translate.Endpoint, cfg.Translate.APIKey)
	}

	gin.SetMode(cfg.GinMode)
	engine := gin.New()
	httpapi.RegisterRoutes(engine, httpapi.Services{
		Users:         userSvc,
		Graph:         graphSvc,
		Posts:         postSvc,
		Feed:          feedSvc,
		Messages:      msgSvc,
		Notifications: notifSvc,
		Tasks:         taskSvc,
		Translator:    translator,
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
		}
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	// Let in-flight export tasks finish writing their results.
	runner.Wait()

	if err := shutdownOTel(shutCtx); err != nil {
		log.Error().Err(err).Msg("tracing shutdown")
	}
	log.Info().Msg("stopped")
}
