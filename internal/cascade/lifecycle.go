package cascade

import (
	"context"
	"fmt"
)

// StartDay opens today's session: pending -> started. A no-op if the day is
// already started or submitted.
func (s *Service) StartDay(ctx context.Context) (*DayStatus, error) {
	status, err := s.CheckToday(ctx)
	if err != nil {
		return nil, err
	}
	if status.State != StatePending {
		return status, nil
	}

	sess, err := s.CurrentSession()
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNoSession
	}

	entry := &CacheEntry{
		ID:     s.idgen.New(),
		UserID: sess.UserID,
		Date:   status.Date,
		State:  EntryStarted,
	}
	if err := s.cache.Put(entry); err != nil {
		return nil, fmt.Errorf("recording started state: %w", err)
	}

	status.State = StateStarted
	return status, nil
}

// Submit uploads today's submission. Requires at least one file and an
// active session; the validation runs before any network call. On success
// the cache gets a denormalized name-only snapshot keyed by today, so the
// next view paints instantly.
func (s *Service) Submit(ctx context.Context, sub SubmissionUpload) (*DayStatus, error) {
	if sub.HTML == nil && sub.CSS == nil && sub.JS == nil {
		return nil, &ValidationError{Msg: "you haven't attached any files"}
	}

	sess, err := s.CurrentSession()
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrNoSession
	}

	if err := s.backend.SubmitToday(ctx, sess.Token, sub); err != nil {
		return nil, err
	}

	today := Day(s.clock.Now())

	// Success snapshot: names only. URLs arrive with the next verification.
	files := Files{}
	if sub.HTML != nil {
		files.HTML = &FileRef{Name: sub.HTML.Name}
	}
	if sub.CSS != nil {
		files.CSS = &FileRef{Name: sub.CSS.Name}
	}
	if sub.JS != nil {
		files.JS = &FileRef{Name: sub.JS.Name}
	}
	entry := &CacheEntry{
		ID:          s.idgen.New(),
		UserID:      sess.UserID,
		Date:        today,
		State:       EntrySubmitted,
		Description: sub.Description,
		Files:       files,
	}
	if err := s.cache.Put(entry); err != nil {
		return nil, fmt.Errorf("caching submission snapshot: %w", err)
	}

	s.logger.Info("submission accepted", "date", today)

	return &DayStatus{
		Date:        today,
		State:       StateSubmitted,
		Phase:       PhaseVerified,
		Files:       files,
		Description: sub.Description,
	}, nil
}

// Edit reopens today's submission for editing: submitted -> started. The
// remote record is left untouched; a subsequent Submit performs the actual
// overwrite. Local-only, no network call.
func (s *Service) Edit(ctx context.Context) error {
	sess, err := s.CurrentSession()
	if err != nil {
		return err
	}
	if sess == nil {
		return ErrNoSession
	}

	today := Day(s.clock.Now())
	entry, err := s.cache.Get(sess.UserID, today)
	if err != nil {
		return fmt.Errorf("reading cache: %w", err)
	}
	if entry == nil || entry.State != EntrySubmitted {
		return &ValidationError{Msg: "nothing submitted today to edit"}
	}

	entry.State = EntryStarted
	if err := s.cache.Put(entry); err != nil {
		return fmt.Errorf("recording edit state: %w", err)
	}
	return nil
}

// Delete discards today's local submission state and cache entry, resetting
// the day to pending. The caller is responsible for confirmation.
//
// The remote record is intentionally not deleted — the original client never
// wired a remote delete — so if one exists the next verification pass will
// resurface it. Returns true when local state was actually removed.
func (s *Service) Delete(ctx context.Context) (bool, error) {
	sess, err := s.CurrentSession()
	if err != nil {
		return false, err
	}
	if sess == nil {
		return false, ErrNoSession
	}

	today := Day(s.clock.Now())
	entry, err := s.cache.Get(sess.UserID, today)
	if err != nil {
		return false, fmt.Errorf("reading cache: %w", err)
	}
	if entry == nil {
		return false, nil
	}

	if err := s.cache.Clear(sess.UserID, today); err != nil {
		return false, fmt.Errorf("clearing cache entry: %w", err)
	}
	s.logger.Info("local submission state deleted", "date", today)
	return true, nil
}
