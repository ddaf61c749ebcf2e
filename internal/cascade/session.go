package cascade

import "time"

// Session is the locally persisted authentication state.
type Session struct {
	UserID         string
	Token          string
	DisplayName    string
	LoggedInAt     time.Time
	LastActivityAt time.Time
}

// SessionStore persists the session between command runs.
// Load returns (nil, nil) when no session is stored; a corrupt or
// unreadable session is also reported as absent, since the only safe
// recovery is to log in again.
type SessionStore interface {
	Load() (*Session, error)
	Save(sess *Session) error
	Clear() error
}
