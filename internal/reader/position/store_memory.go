// Copyright (c) 2026 Komira. All rights reserved.

package position

import (
	"context"
	"sync"
)

// # In-Memory Store

// memoryStore implements [Store] with a process-local map. It backs tests and
// single-node deployments running without Redis.
type memoryStore struct {
	mu        sync.RWMutex
	positions map[string]int
}

// NewMemoryStore constructs an in-memory position store.
func NewMemoryStore() Store {
	return &memoryStore{positions: make(map[string]int)}
}

func (store *memoryStore) Load(_ context.Context, deviceID, mangaID string, chapterNumber int) (int, bool) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	index, ok := store.positions[deviceID+":"+Key(mangaID, chapterNumber)]
	return index, ok
}

func (store *memoryStore) Save(_ context.Context, deviceID, mangaID string, chapterNumber, pageIndex int) {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.positions[deviceID+":"+Key(mangaID, chapterNumber)] = pageIndex
}
