// Copyright (c) 2026 Komira. All rights reserved.

// Command api starts the Komira HTTP API server.
//
// Startup is strictly ordered: logger, configuration, PostgreSQL, Redis,
// migrations, domain wiring, HTTP server with graceful shutdown. Every
// dependency is passed by explicit constructor injection; no business
// logic lives in this package.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/komira-app/komira/internal/api"
	"github.com/komira-app/komira/internal/catalog/chapter"
	"github.com/komira-app/komira/internal/catalog/manga"
	"github.com/komira-app/komira/internal/platform/config"
	"github.com/komira-app/komira/internal/platform/constants"
	"github.com/komira-app/komira/internal/platform/migration"
	pgstore "github.com/komira-app/komira/internal/platform/postgres"
	redisstore "github.com/komira-app/komira/internal/platform/redis"
	"github.com/komira-app/komira/internal/platform/sec"
	"github.com/komira-app/komira/internal/reader"
	"github.com/komira-app/komira/internal/reader/bookmark"
	"github.com/komira-app/komira/internal/reader/position"
	"github.com/komira-app/komira/internal/users/account"
	"github.com/komira-app/komira/internal/users/auth"
	"github.com/komira-app/komira/internal/users/preference"
)

// startupTimeout bounds the connect-and-migrate phase so a misconfigured
// database URL fails fast instead of hanging.
const startupTimeout = 30 * time.Second

func main() {
	logger := newLogger(slog.LevelInfo)
	if err := run(logger); err != nil {
		logger.Error("startup_failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// newLogger builds the process-wide JSON logger and installs it as the
// slog default.
func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler).With(slog.String("app", "komira"))
	slog.SetDefault(logger)
	return logger
}

func run(logger *slog.Logger) error {
	logger.Info("service_initializing")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if cfg.Debug {
		logger = newLogger(slog.LevelDebug)
		logger.Debug("debug_logging_enabled")
	}
	logger.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), startupTimeout)
	defer cancelStartup()

	// Lifetime context for background workers such as the rate limiter
	// sweeper. Cancelled when run returns.
	appCtx, cancelApp := context.WithCancel(context.Background())
	defer cancelApp()

	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer func() {
		logger.Info("closing postgres pool")
		pool.Close()
	}()

	cache, err := redisstore.NewClient(startupCtx, cfg.RedisURL, logger)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer func() {
		logger.Info("closing redis client")
		if closeErr := cache.Close(); closeErr != nil {
			logger.Error("redis close error", slog.Any("error", closeErr))
		}
	}()

	if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	tokenService, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	if err != nil {
		return fmt.Errorf("initialize jwt service: %w", err)
	}

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error { return pgstore.Ping(context.Background(), pool) },
		CheckCache:    func() error { return redisstore.Ping(context.Background(), cache) },
	}, logger)

	// Users: authentication, profile, preferences.
	userRepository := auth.NewUserRepository(pool)
	authSessionRepository := auth.NewSessionRepository(pool)
	resetTokenRepository := auth.NewResetTokenRepository(cache)
	verifyTokenRepository := auth.NewVerificationTokenRepository(cache)
	authService := auth.NewService(userRepository, authSessionRepository, resetTokenRepository, verifyTokenRepository, tokenService)
	authHandler := auth.NewHandler(authService)

	accountRepository := account.NewAccountRepository(pool)
	deviceSessionRepository := account.NewSessionRepository(pool)
	accountService := account.NewService(accountRepository, deviceSessionRepository, logger)
	accountHandler := account.NewHandler(accountService)

	preferenceRepository := preference.NewRepository(pool)
	preferenceService := preference.NewService(preferenceRepository, logger)
	preferenceHandler := preference.NewHandler(preferenceService)

	// Catalogue: titles, chapters, moderation pipeline.
	mangaRepository := manga.NewRepository(pool)
	mangaService := manga.NewService(mangaRepository, logger)

	chapterRepository := chapter.NewRepository(pool)
	pendingRepository := chapter.NewPendingRepository(pool)
	chapterService := chapter.NewService(chapterRepository, pendingRepository, logger)
	chapterHandler := chapter.NewHandler(chapterService, mangaService)

	// Reader: positions, sessions, bookmarks.
	bookmarkRepository := bookmark.NewRepository(pool)
	mangaHandler := manga.NewHandler(mangaService, bookmarkRepository)

	positionStore := position.NewRedisStore(cache, logger)
	resolver := reader.NewResolver(mangaService, chapterService, positionStore)
	sessionManager := reader.NewManager(resolver, positionStore, bookmarkRepository, preferenceService, logger)
	readerHandler := reader.NewHandler(sessionManager, bookmarkRepository)

	server := api.NewServer(appCtx, cfg, logger, tokenService, api.Handlers{
		Liveness:   liveness,
		Readiness:  readiness,
		Auth:       authHandler,
		Account:    accountHandler,
		Manga:      mangaHandler,
		Chapter:    chapterHandler,
		Reader:     readerHandler,
		Preference: preferenceHandler,
	})

	return serve(server, logger)
}

// serve runs the HTTP server until SIGTERM/SIGINT or a listener error,
// then drains in-flight requests within the shutdown timeout.
func serve(server *api.Server, logger *slog.Logger) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	listenErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
	}()

	select {
	case sig := <-quit:
		logger.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-listenErr:
		return fmt.Errorf("serve http: %w", err)
	}

	logger.Info("shutting_down_server", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("server_stopped_cleanly")
	return nil
}
