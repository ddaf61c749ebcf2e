package testutil

import (
	"time"

	"cascadelog/internal/cache"
	"cascadelog/internal/cascade"
	"cascadelog/internal/mirror"
)

// ServiceFixture bundles a wired cascade.Service with handles to its
// in-memory collaborators so tests can script and inspect them.
type ServiceFixture struct {
	Service  *cascade.Service
	Backend  *StubBackend
	Auth     *StubAuth
	Cache    *cache.MemoryCache
	Sessions *MemorySessionStore
	Mirror   *mirror.MemoryMirror
	Clock    *StubClock
}

// NewServiceFixture wires a Service against in-memory collaborators with a
// 30 minute idle limit and the fixed test clock.
func NewServiceFixture() *ServiceFixture {
	backend := NewStubBackend()
	auth := NewStubAuth()
	c := cache.NewMemoryCache()
	sessions := NewMemorySessionStore()
	m := mirror.NewMemoryMirror("test-mirror")
	clock := FixedClock()

	svc := cascade.NewService(backend, auth, c, sessions, m,
		cascade.NewNopLogger(), clock, NewStubIDGenerator(), 30*time.Minute)

	return &ServiceFixture{
		Service:  svc,
		Backend:  backend,
		Auth:     auth,
		Cache:    c,
		Sessions: sessions,
		Mirror:   m,
		Clock:    clock,
	}
}

// LogIn seeds an active session for user-1, last active now.
func (f *ServiceFixture) LogIn() *cascade.Session {
	now := f.Clock.Now()
	sess := &cascade.Session{
		UserID:         "user-1",
		Token:          "token-1",
		DisplayName:    "Test User",
		LoggedInAt:     now,
		LastActivityAt: now,
	}
	f.Sessions.Save(sess)
	return sess
}
