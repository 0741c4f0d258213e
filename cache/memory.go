// Package cache provides caching implementations for decoded permission sets.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/xraph/countersign"
	"github.com/xraph/countersign/permission"
)

// Compile-time interface check.
var _ countersign.Cache = (*Memory)(nil)

// Memory is an in-memory cache with TTL-based expiration, keyed by the
// packed permission string.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*entry
	ttl     time.Duration
	maxSize int
}

type entry struct {
	names     []permission.Name
	expiresAt time.Time
}

// MemoryOption configures the memory cache.
type MemoryOption func(*Memory)

// WithTTL sets the cache entry time-to-live.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(m *Memory) { m.ttl = ttl }
}

// WithMaxSize sets the maximum number of cache entries.
func WithMaxSize(n int) MemoryOption {
	return func(m *Memory) { m.maxSize = n }
}

// NewMemory creates a new in-memory cache.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries: make(map[string]*entry),
		ttl:     5 * time.Minute,
		maxSize: 10000,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the cached decoded set for a packed string.
func (m *Memory) Get(_ context.Context, packed string) ([]permission.Name, bool) {
	m.mu.RLock()
	e, ok := m.entries[packed]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, packed)
		m.mu.Unlock()
		return nil, false
	}
	return e.names, true
}

// Set stores a decoded set in the cache.
func (m *Memory) Set(_ context.Context, packed string, names []permission.Name) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Evict if at capacity.
	if len(m.entries) >= m.maxSize {
		m.evictExpired()
		if len(m.entries) >= m.maxSize {
			m.evictOne()
		}
	}

	m.entries[packed] = &entry{
		names:     names,
		expiresAt: time.Now().Add(m.ttl),
	}
}

// evictExpired removes all expired entries. Must hold write lock.
func (m *Memory) evictExpired() {
	now := time.Now()
	for k, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, k)
		}
	}
}

// evictOne removes one arbitrary entry. Must hold write lock.
func (m *Memory) evictOne() {
	for k := range m.entries {
		delete(m.entries, k)
		return
	}
}
