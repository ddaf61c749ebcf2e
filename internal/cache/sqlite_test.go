package cache_test

import (
	"path/filepath"
	"testing"

	"cascadelog/internal/cache"
	"cascadelog/internal/cascade"
)

func newTestCache(t *testing.T) *cache.SQLiteCache {
	t.Helper()
	c, err := cache.NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("NewSQLiteCache() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestSQLiteCache_RoundTrip(t *testing.T) {
	c := newTestCache(t)

	entry := &cascade.CacheEntry{
		ID:          "entry-1",
		UserID:      "user-1",
		Date:        "2024-01-15",
		State:       cascade.EntrySubmitted,
		Description: "day 12",
		Files: cascade.Files{
			HTML: &cascade.FileRef{Name: "index.html", URL: "https://files/abc"},
			CSS:  &cascade.FileRef{Name: "style.css"},
		},
	}
	if err := c.Put(entry); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := c.Get("user-1", "2024-01-15")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil {
		t.Fatal("Get() = nil, want the stored entry")
	}
	if got.State != cascade.EntrySubmitted || got.Description != "day 12" {
		t.Errorf("entry = %+v, want stored values", got)
	}
	if got.ID != "entry-1" {
		t.Errorf("ID = %q, want the caller-stamped entry-1", got.ID)
	}
	if got.Files.HTML == nil || got.Files.HTML.URL != "https://files/abc" {
		t.Errorf("html = %+v, want name and url", got.Files.HTML)
	}
	if got.Files.CSS == nil || got.Files.CSS.URL != "" {
		t.Errorf("css = %+v, want name with empty url", got.Files.CSS)
	}
	if got.Files.JS != nil {
		t.Errorf("js = %+v, want nil for an absent slot", got.Files.JS)
	}
}

func TestSQLiteCache_Get(t *testing.T) {
	t.Run("absent entry reads as nil", func(t *testing.T) {
		c := newTestCache(t)
		got, err := c.Get("user-1", "2024-01-15")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if got != nil {
			t.Errorf("Get() = %+v, want nil", got)
		}
	})

	t.Run("entries are scoped per user", func(t *testing.T) {
		c := newTestCache(t)
		c.Put(&cascade.CacheEntry{UserID: "user-1", Date: "2024-01-15", State: cascade.EntryStarted})

		got, _ := c.Get("user-2", "2024-01-15")
		if got != nil {
			t.Errorf("Get() for other user = %+v, want nil", got)
		}
	})
}

func TestSQLiteCache_Put_Overwrites(t *testing.T) {
	c := newTestCache(t)

	c.Put(&cascade.CacheEntry{ID: "entry-1", UserID: "user-1", Date: "2024-01-15", State: cascade.EntryStarted})
	c.Put(&cascade.CacheEntry{
		ID:          "entry-2",
		UserID:      "user-1",
		Date:        "2024-01-15",
		State:       cascade.EntrySubmitted,
		Description: "second write",
	})

	got, _ := c.Get("user-1", "2024-01-15")
	if got == nil || got.State != cascade.EntrySubmitted || got.Description != "second write" {
		t.Errorf("entry = %+v, want the overwrite to win", got)
	}
	// The row keeps its identity across overwrites of the same day.
	if got != nil && got.ID != "entry-1" {
		t.Errorf("ID = %q, want entry-1 kept", got.ID)
	}
}

func TestSQLiteCache_Put_GeneratesIDWhenUnset(t *testing.T) {
	c := newTestCache(t)

	c.Put(&cascade.CacheEntry{UserID: "user-1", Date: "2024-01-15", State: cascade.EntryStarted})

	got, _ := c.Get("user-1", "2024-01-15")
	if got == nil {
		t.Fatal("Get() = nil, want the stored entry")
	}
	if got.ID == "" {
		t.Error("ID = empty, want a generated row ID")
	}
}

func TestSQLiteCache_EvictStale(t *testing.T) {
	c := newTestCache(t)

	c.Put(&cascade.CacheEntry{UserID: "user-1", Date: "2024-01-14", State: cascade.EntrySubmitted})
	c.Put(&cascade.CacheEntry{UserID: "user-1", Date: "2024-01-15", State: cascade.EntryStarted})
	c.Put(&cascade.CacheEntry{UserID: "user-2", Date: "2024-01-14", State: cascade.EntrySubmitted})

	if err := c.EvictStale("user-1", "2024-01-15"); err != nil {
		t.Fatalf("EvictStale() error = %v", err)
	}

	if got, _ := c.Get("user-1", "2024-01-14"); got != nil {
		t.Error("stale entry survived eviction")
	}
	if got, _ := c.Get("user-1", "2024-01-15"); got == nil {
		t.Error("current entry was evicted")
	}
	// Other users' entries are untouched.
	if got, _ := c.Get("user-2", "2024-01-14"); got == nil {
		t.Error("other user's entry was evicted")
	}
}

func TestSQLiteCache_Clear(t *testing.T) {
	c := newTestCache(t)

	c.Put(&cascade.CacheEntry{UserID: "user-1", Date: "2024-01-15", State: cascade.EntrySubmitted})
	if err := c.Clear("user-1", "2024-01-15"); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if got, _ := c.Get("user-1", "2024-01-15"); got != nil {
		t.Errorf("entry = %+v, want cleared", got)
	}

	// Clearing an absent entry is not an error.
	if err := c.Clear("user-1", "2024-01-15"); err != nil {
		t.Errorf("second Clear() error = %v", err)
	}
}
