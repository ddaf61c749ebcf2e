package session_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cascadelog/internal/cascade"
	"cascadelog/internal/config"
	"cascadelog/internal/session"
)

func newTestStore(t *testing.T) *session.FileStore {
	t.Helper()
	dir := t.TempDir()
	return session.NewFileStore(config.SessionConfig{
		StatePath: filepath.Join(dir, "session.json"),
		KeyPath:   filepath.Join(dir, "keys", "session.key"),
	})
}

func testSession() *cascade.Session {
	now := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	return &cascade.Session{
		UserID:         "user-1",
		Token:          "bearer-token-xyz",
		DisplayName:    "Test User",
		LoggedInAt:     now,
		LastActivityAt: now,
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save(testSession()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got == nil {
		t.Fatal("Load() = nil, want the saved session")
	}
	if got.UserID != "user-1" || got.Token != "bearer-token-xyz" || got.DisplayName != "Test User" {
		t.Errorf("session = %+v, want saved values", got)
	}
	if !got.LastActivityAt.Equal(testSession().LastActivityAt) {
		t.Errorf("LastActivityAt = %v, want preserved", got.LastActivityAt)
	}
}

func TestFileStore_Load(t *testing.T) {
	t.Run("missing state reads as logged out", func(t *testing.T) {
		s := newTestStore(t)
		got, err := s.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got != nil {
			t.Errorf("Load() = %+v, want nil", got)
		}
	})

	t.Run("corrupt state fails open", func(t *testing.T) {
		dir := t.TempDir()
		statePath := filepath.Join(dir, "session.json")
		if err := os.WriteFile(statePath, []byte("{not json"), 0600); err != nil {
			t.Fatal(err)
		}
		s := session.NewFileStore(config.SessionConfig{
			StatePath: statePath,
			KeyPath:   filepath.Join(dir, "session.key"),
		})

		got, err := s.Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want fail-open nil", err)
		}
		if got != nil {
			t.Errorf("Load() = %+v, want nil", got)
		}
	})

	t.Run("state sealed under a lost key fails open", func(t *testing.T) {
		dir := t.TempDir()
		statePath := filepath.Join(dir, "session.json")
		keyPath := filepath.Join(dir, "session.key")
		s := session.NewFileStore(config.SessionConfig{StatePath: statePath, KeyPath: keyPath})

		if err := s.Save(testSession()); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		// Losing the key makes the token undecryptable.
		if err := os.Remove(keyPath); err != nil {
			t.Fatal(err)
		}

		got, err := s.Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want fail-open nil", err)
		}
		if got != nil {
			t.Errorf("Load() = %+v, want nil", got)
		}
	})
}

func TestFileStore_TokenNotStoredInClear(t *testing.T) {
	dir := t.TempDir()
	statePath := filepath.Join(dir, "session.json")
	s := session.NewFileStore(config.SessionConfig{
		StatePath: statePath,
		KeyPath:   filepath.Join(dir, "session.key"),
	})

	sess := testSession()
	if err := s.Save(sess); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, err := os.ReadFile(statePath)
	if err != nil {
		t.Fatalf("reading state file: %v", err)
	}
	if strings.Contains(string(data), sess.Token) {
		t.Error("bearer token stored in the clear")
	}

	var state map[string]any
	if err := json.Unmarshal(data, &state); err != nil {
		t.Fatalf("state file is not JSON: %v", err)
	}
	if sealed, _ := state["token_sealed"].(string); sealed == "" {
		t.Error("token_sealed missing from state file")
	}
}

func TestFileStore_Clear(t *testing.T) {
	s := newTestStore(t)
	if err := s.Save(testSession()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if got, _ := s.Load(); got != nil {
		t.Errorf("Load() after Clear = %+v, want nil", got)
	}

	// Clearing twice is safe.
	if err := s.Clear(); err != nil {
		t.Errorf("second Clear() error = %v", err)
	}
}
