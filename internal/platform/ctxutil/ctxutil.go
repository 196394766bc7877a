// Copyright (c) 2026 Komira. All rights reserved.

// Package ctxutil wraps the typed reads and writes of per-request context
// values: the correlation ID, the request-scoped logger, and the
// authenticated user's claims.
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/komira-app/komira/internal/platform/ctxkey"
	"github.com/komira-app/komira/internal/platform/sec"
)

// # Request Tracing

// WithRequestID attaches the correlation ID to the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxkey.KeyRequestID, id)
}

// GetRequestID returns the correlation ID, empty when absent.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxkey.KeyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger attaches the request-scoped logger to the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.KeyLogger, logger)
}

// GetLogger returns the request-scoped logger, falling back to the
// process default so callers never need a nil check.
func GetLogger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxkey.KeyLogger).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// # Identity & Access

// WithAuthUser attaches the verified auth claims to the context.
func WithAuthUser(ctx context.Context, user *sec.AuthClaims) context.Context {
	return context.WithValue(ctx, ctxkey.KeyUser, user)
}

// GetAuthUser returns the verified auth claims, nil for anonymous
// requests.
func GetAuthUser(ctx context.Context) *sec.AuthClaims {
	claims, _ := ctx.Value(ctxkey.KeyUser).(*sec.AuthClaims)
	return claims
}
