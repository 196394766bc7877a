// Copyright (c) 2026 Komira. All rights reserved.

package position

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/komira-app/komira/internal/platform/constants"
)

// # Redis Store

// redisStore implements [Store] on a shared Redis instance, namespacing each
// device's positions under the device prefix.
//
// Positions are written without a TTL: a device keeps its place in every
// chapter it ever opened until the key space is reclaimed externally.
type redisStore struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisStore constructs a Redis backed position store.
func NewRedisStore(client *redis.Client, logger *slog.Logger) Store {
	return &redisStore{client: client, logger: logger}
}

// deviceKey scopes a position key to a single device.
func deviceKey(deviceID, mangaID string, chapterNumber int) string {
	return constants.RedisPrefixDevice + deviceID + ":" + Key(mangaID, chapterNumber)
}

func (store *redisStore) Load(ctx context.Context, deviceID, mangaID string, chapterNumber int) (int, bool) {
	raw, err := store.client.Get(ctx, deviceKey(deviceID, mangaID, chapterNumber)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			store.logger.Warn("position_load_failed",
				slog.String("device_id", deviceID),
				slog.String("manga_id", mangaID),
				slog.Int("chapter_number", chapterNumber),
				slog.String("error", err.Error()),
			)
		}
		return 0, false
	}

	// A value that does not parse as a non-negative integer is treated as
	// absent, not as an error surfaced to the reader.
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		return 0, false
	}
	return index, true
}

func (store *redisStore) Save(ctx context.Context, deviceID, mangaID string, chapterNumber, pageIndex int) {
	err := store.client.Set(ctx, deviceKey(deviceID, mangaID, chapterNumber), strconv.Itoa(pageIndex), 0).Err()
	if err != nil {
		store.logger.Warn("position_save_failed",
			slog.String("device_id", deviceID),
			slog.String("manga_id", mangaID),
			slog.Int("chapter_number", chapterNumber),
			slog.String("error", err.Error()),
		)
	}
}
