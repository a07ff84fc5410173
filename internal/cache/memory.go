package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/quillworks/preflight/internal/hook"
)

// Memory is an in-process LRU cache. Entries expire ttl after insertion;
// expired entries read as misses.
type Memory struct {
	counters
	lru *expirable.LRU[string, hook.Result]
}

// compile-time interface check
var _ Cache = (*Memory)(nil)

// NewMemory creates an in-process cache holding at most maxEntries results,
// each valid for ttl after insertion.
func NewMemory(maxEntries int, ttl time.Duration) *Memory {
	m := &Memory{}
	m.lru = expirable.NewLRU[string, hook.Result](maxEntries, func(string, hook.Result) {
		m.evictions.Add(1)
	}, ttl)
	return m
}

// Get returns the cached result for key if present and unexpired.
func (m *Memory) Get(_ context.Context, key string) (hook.Result, bool) {
	res, ok := m.lru.Get(key)
	if ok {
		m.hits.Add(1)
	} else {
		m.misses.Add(1)
	}
	return res, ok
}

// Set stores a result under key.
func (m *Memory) Set(_ context.Context, key string, res hook.Result) {
	m.lru.Add(key, res)
}

// Stats returns a snapshot of the cache counters.
func (m *Memory) Stats() Stats {
	return m.snapshot("memory", true, m.lru.Len())
}

// Close drops all entries.
func (m *Memory) Close() error {
	m.lru.Purge()
	return nil
}
