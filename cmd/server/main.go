// Command server runs the challenge backend HTTP API.
//
// Startup order:
//  1. Load .env (best effort) and environment configuration
//  2. Configure global logging
//  3. Set up OpenTelemetry tracing (optional)
//  4. Open the database (Postgres when DATABASE_URL is set, SQLite otherwise)
//     and run migrations
//  5. Build the oracle client and mount all routes
//  6. Serve until SIGINT/SIGTERM, then drain gracefully
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
	"gorm.io/gorm"

	"github.com/kpolkampally/go-challenge-backend/internal/config"
	httpapi "github.com/kpolkampally/go-challenge-backend/internal/http"
	"github.com/kpolkampally/go-challenge-backend/internal/observability"
	"github.com/kpolkampally/go-challenge-backend/internal/oracle"
	"github.com/kpolkampally/go-challenge-backend/internal/repo"
	"github.com/kpolkampally/go-challenge-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(c); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db := openDB(cfg)
	if cfg.OTEL.Enabled {
		if err := repo.EnableTracing(db); err != nil {
			log.Warn().Err(err).Msg("gorm tracing disabled")
		}
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	oc := oracle.NewHTTPClient(oracle.Config{
		BaseURL:    cfg.Oracle.BaseURL,
		APIKey:     cfg.Oracle.APIKey,
		Model:      cfg.Oracle.Model,
		EmbedModel: cfg.Oracle.EmbedModel,
		Timeout:    cfg.Oracle.Timeout,
		MaxTokens:  cfg.Oracle.MaxTokens,
	})

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, oc, cfg)

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
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// openDB selects the storage backend from configuration. Postgres wins when
// DATABASE_URL is set; otherwise the local SQLite file is used.
func openDB(cfg config.Config) *gorm.DB {
	if cfg.DatabaseURL != "" {
		db, err := repo.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("postgres open failed")
		}
		return db
	}
	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("sqlite open failed")
	}
	return db
}
