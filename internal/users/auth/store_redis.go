// Copyright (c) 2026 Komira. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/komira-app/komira/internal/platform/apperr"
	"github.com/komira-app/komira/internal/platform/constants"
)

// # Recovery Token Store

// redisTokenStore implements [TokenStore] on Redis. Both recovery flows use
// it with their own key prefix, so reset and verification tokens can never
// collide or substitute for each other.
type redisTokenStore struct {
	client   *redis.Client
	prefix   string
	notFound string
}

// NewResetTokenRepository constructs the Redis store for password reset tokens.
func NewResetTokenRepository(client *redis.Client) ResetTokenRepository {
	return &redisTokenStore{
		client:   client,
		prefix:   constants.RedisPrefixResetToken,
		notFound: "Reset token is invalid or expired",
	}
}

// NewVerificationTokenRepository constructs the Redis store for email verification tokens.
func NewVerificationTokenRepository(client *redis.Client) VerificationTokenRepository {
	return &redisTokenStore{
		client:   client,
		prefix:   constants.RedisPrefixVerifyToken,
		notFound: "Verification token is invalid or expired",
	}
}

// Set stores the token-to-user association. Redis owns the expiry; nothing
// here ever cleans up by hand.
func (store *redisTokenStore) Set(ctx context.Context, token string, userID string, ttl time.Duration) error {
	if err := store.client.Set(ctx, store.prefix+token, userID, ttl).Err(); err != nil {
		return fmt.Errorf("redis: failed to store recovery token: %w", err)
	}
	return nil
}

// Get returns the user the token was issued for. Expired tokens are
// indistinguishable from ones that never existed.
func (store *redisTokenStore) Get(ctx context.Context, token string) (string, error) {
	userID, err := store.client.Get(ctx, store.prefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperr.NotFound(store.notFound)
		}
		return "", fmt.Errorf("redis: failed to read recovery token: %w", err)
	}
	return userID, nil
}

// Delete burns the token after a successful redemption.
func (store *redisTokenStore) Delete(ctx context.Context, token string) error {
	if err := store.client.Del(ctx, store.prefix+token).Err(); err != nil {
		return fmt.Errorf("redis: failed to delete recovery token: %w", err)
	}
	return nil
}
