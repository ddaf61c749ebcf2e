package session

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"filippo.io/age"

	"cascadelog/internal/cascade"
	"cascadelog/internal/config"
)

// FileStore persists the session as a JSON state file. The bearer token is
// never written in the clear: it is age-encrypted under a locally generated
// X25519 identity kept next to the state file with 0600 permissions.
//
// Load fails open: a missing, corrupt, or undecryptable state file is
// reported as "logged out" — the only recovery is a fresh login.
type FileStore struct {
	statePath string
	keyPath   string
}

var _ cascade.SessionStore = (*FileStore)(nil)

// NewFileStore creates a FileStore from configuration.
func NewFileStore(cfg config.SessionConfig) *FileStore {
	return &FileStore{statePath: cfg.StatePath, keyPath: cfg.KeyPath}
}

// stateFile is the on-disk shape of the session.
type stateFile struct {
	UserID         string    `json:"user_id"`
	DisplayName    string    `json:"display_name"`
	TokenSealed    string    `json:"token_sealed"` // base64 of age ciphertext
	LoggedInAt     time.Time `json:"logged_in_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

func (s *FileStore) Load() (*cascade.Session, error) {
	data, err := os.ReadFile(s.statePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading session state: %w", err)
	}

	var state stateFile
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, nil
	}

	token, err := s.unseal(state.TokenSealed)
	if err != nil {
		return nil, nil
	}

	return &cascade.Session{
		UserID:         state.UserID,
		Token:          token,
		DisplayName:    state.DisplayName,
		LoggedInAt:     state.LoggedInAt,
		LastActivityAt: state.LastActivityAt,
	}, nil
}

func (s *FileStore) Save(sess *cascade.Session) error {
	sealed, err := s.seal(sess.Token)
	if err != nil {
		return fmt.Errorf("sealing token: %w", err)
	}

	state := stateFile{
		UserID:         sess.UserID,
		DisplayName:    sess.DisplayName,
		TokenSealed:    sealed,
		LoggedInAt:     sess.LoggedInAt,
		LastActivityAt: sess.LastActivityAt,
	}
	data, err := json.MarshalIndent(&state, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.statePath), 0700); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}

	// Atomic write: temp file + rename, so a crash never leaves a torn state.
	tmp, err := os.CreateTemp(filepath.Dir(s.statePath), ".session-*")
	if err != nil {
		return fmt.Errorf("creating temp session file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing session state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp session file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0600); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("restricting session file permissions: %w", err)
	}
	if err := os.Rename(tmpPath, s.statePath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing session state: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	if err := os.Remove(s.statePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session state: %w", err)
	}
	return nil
}

// identity loads the age identity, generating and storing one on first use.
func (s *FileStore) identity() (*age.X25519Identity, error) {
	data, err := os.ReadFile(s.keyPath)
	if err == nil {
		identity, err := age.ParseX25519Identity(string(bytes.TrimSpace(data)))
		if err != nil {
			return nil, fmt.Errorf("parsing session key: %w", err)
		}
		return identity, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading session key: %w", err)
	}

	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("generating session key: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.keyPath), 0700); err != nil {
		return nil, fmt.Errorf("creating key directory: %w", err)
	}
	if err := os.WriteFile(s.keyPath, []byte(identity.String()+"\n"), 0600); err != nil {
		return nil, fmt.Errorf("writing session key: %w", err)
	}
	return identity, nil
}

// seal encrypts the token to the local identity and encodes it as base64.
func (s *FileStore) seal(token string) (string, error) {
	identity, err := s.identity()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, identity.Recipient())
	if err != nil {
		return "", fmt.Errorf("creating encrypted writer: %w", err)
	}
	if _, err := io.WriteString(w, token); err != nil {
		return "", fmt.Errorf("encrypting token: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalizing token encryption: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// unseal decodes and decrypts a sealed token.
func (s *FileStore) unseal(sealed string) (string, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("decoding sealed token: %w", err)
	}

	identity, err := s.identity()
	if err != nil {
		return "", err
	}

	r, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
	if err != nil {
		return "", fmt.Errorf("decrypting token: %w", err)
	}
	token, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading decrypted token: %w", err)
	}
	return string(token), nil
}
