package cascade

import (
	"context"
	"fmt"
)

// CheckToday produces the authoritative answer to "did the current user
// submit today?" while minimizing perceived latency.
//
// The reconciler is a two-phase read: an optimistic phase served entirely
// from the local cache, then a verification phase against the remote source
// of truth. Divergence (cache claims a submission the server no longer has)
// is healed by purging the cache entry; a failed verification keeps the
// optimistic state and is never fatal. Running it twice with no intervening
// writes yields the same result.
func (s *Service) CheckToday(ctx context.Context) (*DayStatus, error) {
	sess, err := s.CurrentSession()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	today := Day(now)

	// Logged out: empty state, no network call.
	if sess == nil {
		return &DayStatus{Date: today, State: StatePending, Phase: PhaseIdle}, nil
	}

	// Stale-day eviction must complete before any Get in this pass.
	if err := s.cache.EvictStale(sess.UserID, today); err != nil {
		return nil, fmt.Errorf("evicting stale cache entries: %w", err)
	}

	status := &DayStatus{Date: today, State: StatePending, Phase: PhaseIdle}

	// Optimistic phase: paint from the cache, never blocking on the network.
	entry, err := s.cache.Get(sess.UserID, today)
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}
	optimisticSubmit := false
	if entry != nil {
		status.FromCache = true
		status.Description = entry.Description
		status.Files = entry.Files
		switch entry.State {
		case EntrySubmitted:
			status.State = StateSubmitted
			status.Phase = PhaseOptimistic
			optimisticSubmit = true
			s.logger.Debug("showing cached submission", "date", today)
		case EntryStarted:
			status.State = StateStarted
		}
	}

	// Verification phase: always runs, even when the cache already painted.
	result, err := s.backend.CheckToday(ctx, sess.Token, StartOfDay(now))
	if err != nil {
		// Background verification failure is non-fatal: keep whatever the
		// optimistic phase produced.
		s.logger.Warn("verification failed, keeping local state", "error", err)
		status.VerifyErr = err
		return status, nil
	}

	if result.Submitted {
		// Remote confirms: overwrite the cache with the authoritative
		// record. Idempotent if the optimistic phase already matched.
		// A local "reopened for editing" marker survives the refresh — it
		// is the user's intent, not a claim about remote state.
		state := EntrySubmitted
		if entry != nil && entry.State == EntryStarted && !entry.Files.Empty() {
			state = EntryStarted
		}
		// Entry identity is stable across refreshes of the same day.
		id := s.idgen.New()
		if entry != nil && entry.ID != "" {
			id = entry.ID
		}
		fresh := &CacheEntry{
			ID:          id,
			UserID:      sess.UserID,
			Date:        today,
			State:       state,
			Description: result.Description,
			Files:       result.Files,
		}
		if err := s.cache.Put(fresh); err != nil {
			return nil, fmt.Errorf("refreshing cache: %w", err)
		}
		status.Description = result.Description
		status.Files = result.Files
		status.FromCache = false
		status.Phase = PhaseVerified
		if state == EntrySubmitted {
			status.State = StateSubmitted
		} else {
			status.State = StateStarted
		}
		return status, nil
	}

	// Remote denies a submission.
	if optimisticSubmit {
		// Divergence: the cache claimed a submission the server no longer
		// has (deleted server-side). The cache is never trusted once the
		// network has spoken — purge it and reset.
		s.logger.Info("cache diverged from remote, purging", "date", today)
		if err := s.cache.Clear(sess.UserID, today); err != nil {
			return nil, fmt.Errorf("purging diverged cache entry: %w", err)
		}
		return &DayStatus{Date: today, State: StatePending, Phase: PhaseReconciled}, nil
	}

	// Nothing submitted anywhere; a started marker stands.
	status.Phase = PhaseVerified
	return status, nil
}
