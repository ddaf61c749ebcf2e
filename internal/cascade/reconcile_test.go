package cascade_test

import (
	"context"
	"errors"
	"testing"

	"cascadelog/internal/cascade"
	"cascadelog/internal/testutil"
)

func TestService_CheckToday(t *testing.T) {
	ctx := context.Background()

	t.Run("logged out returns pending without a network call", func(t *testing.T) {
		f := testutil.NewServiceFixture()

		status, err := f.Service.CheckToday(ctx)
		if err != nil {
			t.Fatalf("CheckToday() error = %v", err)
		}
		if status.State != cascade.StatePending {
			t.Errorf("State = %v, want pending", status.State)
		}
		if status.Phase != cascade.PhaseIdle {
			t.Errorf("Phase = %v, want idle", status.Phase)
		}
		if f.Backend.Calls["check-today"] != 0 {
			t.Errorf("check-today calls = %d, want 0", f.Backend.Calls["check-today"])
		}
	})

	t.Run("empty cache with remote denial verifies pending", func(t *testing.T) {
		f := testutil.NewServiceFixture()
		f.LogIn()

		status, err := f.Service.CheckToday(ctx)
		if err != nil {
			t.Fatalf("CheckToday() error = %v", err)
		}
		if status.State != cascade.StatePending {
			t.Errorf("State = %v, want pending", status.State)
		}
		if status.Phase != cascade.PhaseVerified {
			t.Errorf("Phase = %v, want verified", status.Phase)
		}
	})

	t.Run("remote submission populates the cache", func(t *testing.T) {
		f := testutil.NewServiceFixture()
		sess := f.LogIn()
		f.Backend.CheckTodayResult = &cascade.CheckTodayResult{
			Submitted:   true,
			Description: "flexbox galaxy",
			Files: cascade.Files{
				HTML: &cascade.FileRef{Name: "index.html", URL: "https://files/abc"},
			},
		}

		status, err := f.Service.CheckToday(ctx)
		if err != nil {
			t.Fatalf("CheckToday() error = %v", err)
		}
		if status.State != cascade.StateSubmitted {
			t.Errorf("State = %v, want submitted", status.State)
		}
		if status.Phase != cascade.PhaseVerified {
			t.Errorf("Phase = %v, want verified", status.Phase)
		}
		if status.FromCache {
			t.Error("FromCache = true, want false after verification")
		}

		today := cascade.Day(f.Clock.Now())
		entry, err := f.Cache.Get(sess.UserID, today)
		if err != nil {
			t.Fatalf("Cache.Get() error = %v", err)
		}
		if entry == nil {
			t.Fatal("cache entry missing after verified submission")
		}
		if entry.State != cascade.EntrySubmitted {
			t.Errorf("cache entry state = %v, want submitted", entry.State)
		}
		if entry.Files.HTML == nil || entry.Files.HTML.URL != "https://files/abc" {
			t.Errorf("cache entry files = %+v, want html url carried over", entry.Files)
		}
		if entry.ID != "id-1" {
			t.Errorf("cache entry ID = %q, want id-1 from the generator", entry.ID)
		}
	})

	t.Run("divergent cache entry is purged", func(t *testing.T) {
		f := testutil.NewServiceFixture()
		sess := f.LogIn()
		today := cascade.Day(f.Clock.Now())
		f.Cache.Put(&cascade.CacheEntry{
			UserID: sess.UserID,
			Date:   today,
			State:  cascade.EntrySubmitted,
			Files:  cascade.Files{HTML: &cascade.FileRef{Name: "index.html"}},
		})
		// Remote denies: the server-side record was deleted.

		status, err := f.Service.CheckToday(ctx)
		if err != nil {
			t.Fatalf("CheckToday() error = %v", err)
		}
		if status.State != cascade.StatePending {
			t.Errorf("State = %v, want pending", status.State)
		}
		if status.Phase != cascade.PhaseReconciled {
			t.Errorf("Phase = %v, want reconciled", status.Phase)
		}

		entry, _ := f.Cache.Get(sess.UserID, today)
		if entry != nil {
			t.Error("diverged cache entry survived the purge")
		}
	})

	t.Run("verification failure keeps the optimistic state", func(t *testing.T) {
		f := testutil.NewServiceFixture()
		sess := f.LogIn()
		today := cascade.Day(f.Clock.Now())
		f.Cache.Put(&cascade.CacheEntry{
			UserID:      sess.UserID,
			Date:        today,
			State:       cascade.EntrySubmitted,
			Description: "cached work",
		})
		netErr := &cascade.NetworkError{Op: "check-today", Err: errors.New("connection refused")}
		f.Backend.CheckTodayErr = netErr

		status, err := f.Service.CheckToday(ctx)
		if err != nil {
			t.Fatalf("CheckToday() error = %v, want nil (verification is non-fatal)", err)
		}
		if status.State != cascade.StateSubmitted {
			t.Errorf("State = %v, want submitted from cache", status.State)
		}
		if status.Phase != cascade.PhaseOptimistic {
			t.Errorf("Phase = %v, want optimistic", status.Phase)
		}
		if !status.FromCache {
			t.Error("FromCache = false, want true")
		}
		if status.VerifyErr == nil {
			t.Error("VerifyErr = nil, want the verification failure surfaced")
		}

		// The cache entry must survive for the next attempt.
		if entry, _ := f.Cache.Get(sess.UserID, today); entry == nil {
			t.Error("cache entry purged on a network failure")
		}
	})

	t.Run("stale entries are evicted before the read", func(t *testing.T) {
		f := testutil.NewServiceFixture()
		sess := f.LogIn()
		f.Cache.Put(&cascade.CacheEntry{
			UserID: sess.UserID,
			Date:   "2024-01-14", // yesterday
			State:  cascade.EntrySubmitted,
		})

		if _, err := f.Service.CheckToday(ctx); err != nil {
			t.Fatalf("CheckToday() error = %v", err)
		}

		if entry, _ := f.Cache.Get(sess.UserID, "2024-01-14"); entry != nil {
			t.Error("yesterday's entry survived eviction")
		}
		if f.Cache.Len() != 0 {
			t.Errorf("cache len = %d, want 0", f.Cache.Len())
		}
	})

	t.Run("editing marker survives a verified refresh", func(t *testing.T) {
		f := testutil.NewServiceFixture()
		sess := f.LogIn()
		today := cascade.Day(f.Clock.Now())
		f.Cache.Put(&cascade.CacheEntry{
			ID:     "entry-7",
			UserID: sess.UserID,
			Date:   today,
			State:  cascade.EntryStarted,
			Files:  cascade.Files{CSS: &cascade.FileRef{Name: "style.css"}},
		})
		f.Backend.CheckTodayResult = &cascade.CheckTodayResult{
			Submitted: true,
			Files:     cascade.Files{CSS: &cascade.FileRef{Name: "style.css", URL: "https://files/css"}},
		}

		status, err := f.Service.CheckToday(ctx)
		if err != nil {
			t.Fatalf("CheckToday() error = %v", err)
		}
		if status.State != cascade.StateStarted {
			t.Errorf("State = %v, want started (edit in progress)", status.State)
		}

		entry, _ := f.Cache.Get(sess.UserID, today)
		if entry == nil || entry.State != cascade.EntryStarted {
			t.Errorf("cache entry = %+v, want started preserved", entry)
		}
		if entry != nil && entry.ID != "entry-7" {
			t.Errorf("cache entry ID = %q, want entry-7 kept across the refresh", entry.ID)
		}
	})

	t.Run("is idempotent with no intervening writes", func(t *testing.T) {
		f := testutil.NewServiceFixture()
		f.LogIn()
		f.Backend.CheckTodayResult = &cascade.CheckTodayResult{
			Submitted:   true,
			Description: "day 12",
		}

		first, err := f.Service.CheckToday(ctx)
		if err != nil {
			t.Fatalf("first CheckToday() error = %v", err)
		}
		second, err := f.Service.CheckToday(ctx)
		if err != nil {
			t.Fatalf("second CheckToday() error = %v", err)
		}

		if first.State != second.State || first.Phase != second.Phase ||
			first.Description != second.Description {
			t.Errorf("runs diverged: first = %+v, second = %+v", first, second)
		}
	})
}
