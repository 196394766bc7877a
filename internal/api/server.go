// Copyright (c) 2026 Komira. All rights reserved.

/*
Package api is the composition root of the HTTP transport: it chains the
middleware stack, mounts every domain handler on the chi router, and
owns the [http.Server] lifecycle. Only this package and cmd/api touch
net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/komira-app/komira/internal/catalog/chapter"
	"github.com/komira-app/komira/internal/catalog/manga"
	"github.com/komira-app/komira/internal/platform/config"
	"github.com/komira-app/komira/internal/platform/constants"
	"github.com/komira-app/komira/internal/platform/middleware"
	"github.com/komira-app/komira/internal/reader"
	"github.com/komira-app/komira/internal/users/account"
	"github.com/komira-app/komira/internal/users/auth"
	"github.com/komira-app/komira/internal/users/preference"
)

// Handlers collects every domain handler set the router mounts. Adding
// a domain means adding a field here and mounting it in newRouter.
type Handlers struct {
	// Liveness answers /health whenever the process is up.
	Liveness http.HandlerFunc

	// Readiness answers /ready once every dependency is reachable.
	Readiness http.HandlerFunc

	Auth       *auth.Handler
	Account    *account.Handler
	Manga      *manga.Handler
	Chapter    *chapter.Handler
	Reader     *reader.Handler
	Preference *preference.Handler
}

// Server binds the assembled router to an [http.Server]. Built once in
// cmd/api with every dependency injected.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

/*
NewServer assembles the middleware chain and route tree and wraps them
in a configured HTTP server.

Parameters:
  - ctx: lifetime context for middleware background workers.
  - verifier: validates bearer tokens for the Authenticate middleware.
*/
func NewServer(ctx context.Context, cfg *config.Config, logger *slog.Logger, verifier middleware.TokenVerifier, handlers Handlers) *Server {
	return &Server{
		logger: logger,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           newRouter(ctx, cfg, logger, verifier, handlers),
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

func newRouter(ctx context.Context, cfg *config.Config, logger *slog.Logger, verifier middleware.TokenVerifier, handlers Handlers) *chi.Mux {
	router := chi.NewRouter()

	// Global middleware, in execution order.
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger(logger))
	router.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	router.Use(middleware.RateLimit(ctx))
	router.Use(middleware.PanicRecovery(logger))
	router.Use(middleware.Authenticate(verifier))
	router.Use(middleware.CORS(cfg))
	router.Use(chimw.CleanPath)

	// Unauthenticated probes for container orchestration.
	router.Get("/health", handlers.Liveness)
	router.Get("/ready", handlers.Readiness)

	router.Route("/api/v1", func(api chi.Router) {
		api.Mount("/auth", handlers.Auth.Routes())

		api.Group(func(authed chi.Router) {
			authed.Use(middleware.RequireAuth)
			authed.Mount("/", handlers.Account.Routes())
		})

		handlers.Manga.RegisterRoutes(api)
		handlers.Chapter.RegisterRoutes(api)
		handlers.Reader.RegisterRoutes(api)
		handlers.Preference.RegisterRoutes(api)
	})

	return router
}

// ListenAndServe blocks serving requests until the server is closed or
// the listener fails.
func (server *Server) ListenAndServe() error {
	server.logger.Info("server_starting", slog.String("addr", server.httpServer.Addr))
	return server.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests, waiting at most timeout.
func (server *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return server.httpServer.Shutdown(ctx)
}
