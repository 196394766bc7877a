// Copyright (c) 2026 Komira. All rights reserved.

package auth

import "time"

// Token lifetimes and sizes. Access tokens stay short so a leaked JWT
// ages out quickly; the refresh session carries the long tail.
const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 30 * 24 * time.Hour

	ResetTokenTTL        = 1 * time.Hour
	VerificationTokenTTL = 24 * time.Hour

	// Byte length of the random recovery and refresh tokens.
	RefreshTokenLength      = 32
	ResetTokenLength        = 32
	VerificationTokenLength = 32
)
