// Package cache defines the persistent key/value cache the catalog provider
// reads at mount and writes after a successful fetch.
package cache

import (
	"context"
	"errors"

	gocache "github.com/patrickmn/go-cache"
)

// ErrMiss is returned by Get when no entry is stored under the key
var ErrMiss = errors.New("cache miss")

// Store abstracts the persistent catalog cache.
// Implementations: in-memory (default), Redis, Postgres.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Memory is a process-local Store backed by go-cache. Entries never expire.
type Memory struct {
	store *gocache.Cache
}

// NewMemory creates an empty in-memory cache
func NewMemory() *Memory {
	return &Memory{
		store: gocache.New(gocache.NoExpiration, 0),
	}
}

// Get returns a copy of the stored value
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	value, found := m.store.Get(key)
	if !found {
		return nil, ErrMiss
	}
	data, ok := value.([]byte)
	if !ok {
		return nil, ErrMiss
	}
	return append([]byte(nil), data...), nil
}

// Set stores a copy of value under key, replacing any previous entry
func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.store.Set(key, append([]byte(nil), value...), gocache.NoExpiration)
	return nil
}

// ItemCount returns the number of stored entries
func (m *Memory) ItemCount() int {
	return m.store.ItemCount()
}
