// Command server runs the contract renewal reminder API.
//
// Startup order: env → config → logging → database → object storage →
// tracing → scheduler → HTTP server. Shutdown reverses it on SIGINT/SIGTERM.
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
	"github.com/sashabaranov/go-openai"

	"github.com/renewalradar/go-renewal-backend/internal/config"
	httpapi "github.com/renewalradar/go-renewal-backend/internal/http"
	"github.com/renewalradar/go-renewal-backend/internal/mail"
	"github.com/renewalradar/go-renewal-backend/internal/observability"
	"github.com/renewalradar/go-renewal-backend/internal/repo"
	"github.com/renewalradar/go-renewal-backend/internal/schedule"
	"github.com/renewalradar/go-renewal-backend/internal/services"
	"github.com/renewalradar/go-renewal-backend/internal/storage"
)

const version = "1.0.0"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	setupLogging(cfg)

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	ctx := context.Background()

	var store storage.ObjectStore
	if cfg.Storage.Enabled {
		ms, err := storage.NewMinioStore(storage.Config{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("connect object storage")
		}
		if err := ms.EnsureBucket(ctx); err != nil {
			log.Fatal().Err(err).Str("bucket", cfg.Storage.Bucket).Msg("ensure bucket")
		}
		store = ms
		log.Info().Str("bucket", cfg.Storage.Bucket).Msg("object storage ready")
	} else {
		log.Info().Msg("object storage disabled; uploads will return 503")
	}

	shutdownTracing, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("setup tracing")
	}

	mailer := mail.NewResendMailer(cfg.ResendAPIKey, cfg.EmailFrom, cfg.AppURL)

	var completer services.Completer
	if cfg.OpenAIAPIKey != "" {
		completer = openai.NewClient(cfg.OpenAIAPIKey)
	} else {
		log.Warn().Msg("OPENAI_API_KEY not set; date extraction disabled")
	}

	reminderSvc := &services.ReminderService{DB: db, Mailer: mailer}

	var sched *schedule.Scheduler
	if cfg.SchedulerEnabled {
		sched = schedule.New(reminderSvc, cfg.SchedulerSpec, 10*time.Minute)
		if err := sched.Start(); err != nil {
			log.Fatal().Err(err).Str("spec", cfg.SchedulerSpec).Msg("start scheduler")
		}
		log.Info().Str("spec", cfg.SchedulerSpec).Msg("reminder scheduler running")
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{
		DB:        db,
		Mailer:    mailer,
		Completer: completer,
		Store:     store,
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("base_path", cfg.APIBasePath).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	if sched != nil {
		sched.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("tracing shutdown")
	}
	log.Info().Msg("bye")
}

func setupLogging(cfg config.Config) {
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}
