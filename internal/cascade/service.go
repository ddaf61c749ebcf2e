package cascade

import (
	"fmt"
	"time"
)

// Service is the orchestration layer that coordinates the cache, the remote
// backend, and the session store to perform the operations the CLI exposes.
type Service struct {
	backend   Backend
	auth      AuthProvider
	cache     Cache
	sessions  SessionStore
	mirror    Mirror
	logger    Logger
	clock     Clock
	idgen     IDGenerator
	idleLimit time.Duration
}

// NewService creates a Service with the provided dependencies.
// idleLimit is the inactivity window after which a session is forcibly
// ended; zero disables the check.
func NewService(backend Backend, auth AuthProvider, cache Cache, sessions SessionStore, mirror Mirror, logger Logger, clock Clock, idgen IDGenerator, idleLimit time.Duration) *Service {
	return &Service{
		backend:   backend,
		auth:      auth,
		cache:     cache,
		sessions:  sessions,
		mirror:    mirror,
		logger:    logger,
		clock:     clock,
		idgen:     idgen,
		idleLimit: idleLimit,
	}
}

// IdleLimit returns the configured inactivity window.
func (s *Service) IdleLimit() time.Duration { return s.idleLimit }

// Logger returns the service's logger for collaborators that log on their
// own, like the playground server.
func (s *Service) Logger() Logger { return s.logger }

// CurrentSession returns the active session, enforcing the inactivity limit:
// a session idle for longer than the limit is destroyed and reported as
// absent. Returns (nil, nil) when logged out.
func (s *Service) CurrentSession() (*Session, error) {
	sess, err := s.sessions.Load()
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if sess == nil {
		return nil, nil
	}

	if s.idleLimit > 0 && s.clock.Now().Sub(sess.LastActivityAt) >= s.idleLimit {
		s.logger.Info("session idle limit exceeded, logging out",
			"user", sess.UserID, "last_activity", sess.LastActivityAt)
		if err := s.sessions.Clear(); err != nil {
			return nil, fmt.Errorf("clearing expired session: %w", err)
		}
		return nil, nil
	}

	return sess, nil
}

// TouchSession records user activity, restarting the inactivity countdown.
// A no-op when logged out.
func (s *Service) TouchSession() error {
	sess, err := s.sessions.Load()
	if err != nil || sess == nil {
		return err
	}
	sess.LastActivityAt = s.clock.Now()
	if err := s.sessions.Save(sess); err != nil {
		return fmt.Errorf("saving session activity: %w", err)
	}
	return nil
}
