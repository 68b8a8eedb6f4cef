// Package cache provides the bounded memo store shared by URL rewrites.
package cache

import (
	"errors"
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSize is the capacity used when none is configured.
const DefaultSize = 100

// ErrInvalidSize is returned when a cache is built with a non-positive capacity.
var ErrInvalidSize = errors.New("cache size must be positive")

// Cache is a bounded key-value store. Implementations must be safe for
// concurrent use.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Put(key K, value V)
	Remove(key K) bool
	Len() int
	Purge()
}

// LRU evicts the least recently used entry once capacity is reached.
// Every call holds the underlying lock for lookup, recency update and
// eviction together.
type LRU[K comparable, V any] struct {
	entries   *lru.Cache[K, V]
	size      int
	evictions atomic.Uint64
}

// NewLRU creates an LRU holding at most size entries.
func NewLRU[K comparable, V any](size int) (*LRU[K, V], error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	entries, err := lru.New[K, V](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create lru: %w", err)
	}
	return &LRU[K, V]{entries: entries, size: size}, nil
}

// Get returns the value for key and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	return c.entries.Get(key)
}

// Put inserts or overwrites key.
func (c *LRU[K, V]) Put(key K, value V) {
	if c.entries.Add(key, value) {
		c.evictions.Add(1)
	}
}

func (c *LRU[K, V]) Remove(key K) bool {
	return c.entries.Remove(key)
}

func (c *LRU[K, V]) Len() int {
	return c.entries.Len()
}

func (c *LRU[K, V]) Purge() {
	c.entries.Purge()
}

// Size is the fixed capacity.
func (c *LRU[K, V]) Size() int {
	return c.size
}

// Evictions counts entries dropped to make room. Explicit Remove and Purge
// calls are not counted.
func (c *LRU[K, V]) Evictions() uint64 {
	return c.evictions.Load()
}
