// Copyright (c) 2026 Komira. All rights reserved.

package api

import (
	"log/slog"
	"net/http"

	"github.com/komira-app/komira/internal/platform/respond"
)

// HealthDependencies carries the pingers the readiness probe exercises.
// A nil checker is skipped, which keeps tests from needing live backends.
type HealthDependencies struct {
	CheckDatabase func() error
	CheckCache    func() error
}

type healthCheck struct {
	Name  string `json:"name"`
	IsOK  bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type healthHandler struct {
	dependencies HealthDependencies
	logger       *slog.Logger
}

// NewHealthHandlers returns the /health and /ready handler funcs.
func NewHealthHandlers(deps HealthDependencies, logger *slog.Logger) (liveness, readiness http.HandlerFunc) {
	handler := &healthHandler{dependencies: deps, logger: logger}
	return handler.liveness, handler.readiness
}

// liveness reports that the process is up. It never touches backends.
func (handler *healthHandler) liveness(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, map[string]string{"status": "ok"})
}

// readiness pings every wired dependency and reports 503 when any fails.
func (handler *healthHandler) readiness(writer http.ResponseWriter, request *http.Request) {
	checks := make([]healthCheck, 0, 2)
	if handler.dependencies.CheckDatabase != nil {
		checks = append(checks, handler.check("postgres", handler.dependencies.CheckDatabase))
	}
	if handler.dependencies.CheckCache != nil {
		checks = append(checks, handler.check("redis", handler.dependencies.CheckCache))
	}

	status, httpStatus := "ready", http.StatusOK
	for _, check := range checks {
		if !check.IsOK {
			status, httpStatus = "degraded", http.StatusServiceUnavailable
			break
		}
	}

	respond.JSON(writer, httpStatus, map[string]any{
		"status": status,
		"checks": checks,
	})
}

func (handler *healthHandler) check(name string, ping func() error) healthCheck {
	if err := ping(); err != nil {
		handler.logger.Error("readiness_check_failed",
			slog.String("dependency", name),
			slog.Any("error", err),
		)
		return healthCheck{Name: name, Error: err.Error()}
	}
	return healthCheck{Name: name, IsOK: true}
}
