package cache_test

import (
	"testing"

	"cascadelog/internal/cache"
	"cascadelog/internal/cascade"
)

func TestMemoryCache_RoundTrip(t *testing.T) {
	c := cache.NewMemoryCache()

	entry := &cascade.CacheEntry{
		UserID: "user-1",
		Date:   "2024-01-15",
		State:  cascade.EntryStarted,
	}
	if err := c.Put(entry); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := c.Get("user-1", "2024-01-15")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil || got.State != cascade.EntryStarted {
		t.Errorf("entry = %+v, want started", got)
	}

	// Mutating the returned copy must not affect the store.
	got.State = cascade.EntrySubmitted
	again, _ := c.Get("user-1", "2024-01-15")
	if again.State != cascade.EntryStarted {
		t.Error("store mutated through a returned copy")
	}
}

func TestMemoryCache_MisKeyedEntryIsInvisible(t *testing.T) {
	c := cache.NewMemoryCache()

	// An entry stored under today's key but claiming yesterday's date must
	// read as absent.
	c.Seed("user-1", "2024-01-15", &cascade.CacheEntry{
		UserID: "user-1",
		Date:   "2024-01-14",
		State:  cascade.EntrySubmitted,
	})

	got, err := c.Get("user-1", "2024-01-15")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != nil {
		t.Errorf("Get() = %+v, want nil for a mis-keyed entry", got)
	}
}

func TestMemoryCache_EvictStale(t *testing.T) {
	c := cache.NewMemoryCache()
	c.Put(&cascade.CacheEntry{UserID: "user-1", Date: "2024-01-13", State: cascade.EntrySubmitted})
	c.Put(&cascade.CacheEntry{UserID: "user-1", Date: "2024-01-14", State: cascade.EntrySubmitted})
	c.Put(&cascade.CacheEntry{UserID: "user-1", Date: "2024-01-15", State: cascade.EntryStarted})

	if err := c.EvictStale("user-1", "2024-01-15"); err != nil {
		t.Fatalf("EvictStale() error = %v", err)
	}
	if c.Len() != 1 {
		t.Errorf("len = %d, want 1", c.Len())
	}
	if got, _ := c.Get("user-1", "2024-01-15"); got == nil {
		t.Error("current entry was evicted")
	}
}
