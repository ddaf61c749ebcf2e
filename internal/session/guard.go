package session

import (
	"sync"
	"time"
)

// Guard forces a logout after a fixed idle window, independent of any
// server-side session TTL. It backs the long-running playground server:
// Arm starts the countdown, every qualifying user interaction calls Reset,
// and if the window elapses the timeout callback fires exactly once.
//
// A Guard that was never armed (no active session) costs nothing. Stop
// releases the pending timer; resets after the callback fired or after Stop
// do not revive the countdown.
type Guard struct {
	mu        sync.Mutex
	limit     time.Duration
	onTimeout func()
	timer     *time.Timer
	armed     bool
	fired     bool
	stopped   bool
}

// NewGuard creates a Guard with the given idle limit. The callback runs on
// the timer goroutine.
func NewGuard(limit time.Duration, onTimeout func()) *Guard {
	return &Guard{limit: limit, onTimeout: onTimeout}
}

// Arm starts the countdown. A no-op if already armed, fired, or stopped.
func (g *Guard) Arm() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.armed || g.fired || g.stopped || g.limit <= 0 {
		return
	}
	g.armed = true
	g.timer = time.AfterFunc(g.limit, g.fire)
}

// Reset restarts the countdown from zero. A no-op unless armed.
func (g *Guard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.armed || g.fired || g.stopped {
		return
	}
	g.timer.Stop()
	g.timer = time.AfterFunc(g.limit, g.fire)
}

// Stop cancels the countdown and releases the timer.
func (g *Guard) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stopped = true
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}

// Fired reports whether the timeout callback has run.
func (g *Guard) Fired() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fired
}

func (g *Guard) fire() {
	g.mu.Lock()
	if g.fired || g.stopped {
		g.mu.Unlock()
		return
	}
	g.fired = true
	g.timer = nil
	g.mu.Unlock()

	g.onTimeout()
}
