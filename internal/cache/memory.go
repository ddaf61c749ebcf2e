package cache

import (
	"sync"

	"cascadelog/internal/cascade"
)

// MemoryCache is an in-memory cascade.Cache for tests and throwaway runs.
// Safe for concurrent use.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]*cascade.CacheEntry // key: userID + "\x00" + date
}

var _ cascade.Cache = (*MemoryCache)(nil)

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]*cascade.CacheEntry)}
}

func key(userID, date string) string { return userID + "\x00" + date }

func (c *MemoryCache) Get(userID, date string) (*cascade.CacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key(userID, date)]
	if !ok {
		return nil, nil
	}
	// Same validation the persistent store applies: a mis-keyed entry is
	// invisible.
	if entry.Date != date || entry.UserID != userID {
		return nil, nil
	}
	cp := *entry
	return &cp, nil
}

func (c *MemoryCache) Put(entry *cascade.CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *entry
	c.entries[key(entry.UserID, entry.Date)] = &cp
	return nil
}

func (c *MemoryCache) EvictStale(userID, currentDate string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, entry := range c.entries {
		if entry.UserID == userID && entry.Date != currentDate {
			delete(c.entries, k)
		}
	}
	return nil
}

func (c *MemoryCache) Clear(userID, date string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key(userID, date))
	return nil
}

func (c *MemoryCache) Close() error { return nil }

// Len returns the number of stored entries. Test helper.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Seed inserts an entry directly, bypassing key derivation. Test helper for
// exercising the mis-keyed-entry defense.
func (c *MemoryCache) Seed(mapKeyUserID, mapKeyDate string, entry *cascade.CacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *entry
	c.entries[key(mapKeyUserID, mapKeyDate)] = &cp
}
