// Copyright (c) 2026 Komira. All rights reserved.

// Package constants collects the platform-wide fixed values: server
// timeouts, rate limits, header and cookie names, and the Redis key
// taxonomy. Domain-specific constants stay in their own packages; only
// values shared across layers live here.
package constants

import "time"

// # Metadata

const (
	AppName    = "komira-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout bounds reading an entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout bounds writing a response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout bounds the wait for the next request on a
	// keep-alive connection.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout bounds reading the request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for a whole request lifecycle,
	// and doubles as the per-connection statement timeout in Postgres.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long in-flight requests get to finish when
	// the server stops.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the sustained requests per second per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the bucket capacity per IP.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often idle IP buckets are swept.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is the idle time after which an IP bucket is dropped.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the iss claim stamped into access tokens.
	AuthIssuer = "komira.app"

	// RefreshTokenCookieName holds the refresh token on the client.
	RefreshTokenCookieName = "refresh_token"

	// RefreshTokenCookiePath scopes the cookie to the auth endpoints so it
	// is not sent with every API call.
	RefreshTokenCookiePath = "/api/v1/auth"
)

// # HTTP Header Names

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"

	// HeaderXDeviceID identifies the reading device for per-device position
	// recall. Clients generate a stable identifier and send it on every
	// reader request.
	HeaderXDeviceID = "X-Device-ID"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldItems   = "items"
	FieldTotal   = "total"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # Database Schemas

const (
	SchemaCore       = "core"
	SchemaUsers      = "users"
	SchemaLibrary    = "library"
	SchemaModeration = "moderation"
)

// # Redis Key Prefixes

const (
	RedisPrefixResetToken  = "auth:reset_token:"
	RedisPrefixVerifyToken = "auth:verify_token:"

	// RedisPrefixDevice namespaces per-device reader state (reading positions).
	RedisPrefixDevice = "device:"
)
