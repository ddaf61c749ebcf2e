package session_test

import (
	"sync/atomic"
	"testing"
	"time"

	"cascadelog/internal/session"
)

func TestGuard_FiresAfterIdleWindow(t *testing.T) {
	fired := make(chan struct{})
	g := session.NewGuard(20*time.Millisecond, func() { close(fired) })
	g.Arm()
	defer g.Stop()

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("guard never fired")
	}
	if !g.Fired() {
		t.Error("Fired() = false after the callback ran")
	}
}

func TestGuard_FiresExactlyOnce(t *testing.T) {
	var count atomic.Int32
	g := session.NewGuard(10*time.Millisecond, func() { count.Add(1) })
	g.Arm()
	defer g.Stop()

	time.Sleep(100 * time.Millisecond)
	// Resets after firing must not revive the countdown.
	g.Reset()
	time.Sleep(50 * time.Millisecond)

	if got := count.Load(); got != 1 {
		t.Errorf("callback ran %d times, want 1", got)
	}
}

func TestGuard_ResetDefersTheTimeout(t *testing.T) {
	fired := make(chan struct{})
	g := session.NewGuard(60*time.Millisecond, func() { close(fired) })
	g.Arm()
	defer g.Stop()

	// Keep resetting well inside the window; the guard must not fire.
	for i := 0; i < 5; i++ {
		time.Sleep(20 * time.Millisecond)
		g.Reset()
	}

	select {
	case <-fired:
		t.Fatal("guard fired despite activity")
	default:
	}

	// Once activity stops, it fires.
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("guard never fired after activity stopped")
	}
}

func TestGuard_Stop(t *testing.T) {
	var count atomic.Int32
	g := session.NewGuard(20*time.Millisecond, func() { count.Add(1) })
	g.Arm()
	g.Stop()

	time.Sleep(80 * time.Millisecond)
	if got := count.Load(); got != 0 {
		t.Errorf("callback ran %d times after Stop, want 0", got)
	}

	// Arming after Stop stays inert.
	g.Arm()
	time.Sleep(80 * time.Millisecond)
	if got := count.Load(); got != 0 {
		t.Errorf("callback ran %d times after re-arm, want 0", got)
	}
}

func TestGuard_NeverArmedCostsNothing(t *testing.T) {
	g := session.NewGuard(10*time.Millisecond, func() { t.Error("unarmed guard fired") })
	g.Reset() // no-op without Arm
	time.Sleep(50 * time.Millisecond)
	if g.Fired() {
		t.Error("Fired() = true, want false")
	}
}

func TestGuard_ZeroLimitDisables(t *testing.T) {
	g := session.NewGuard(0, func() { t.Error("guard with zero limit fired") })
	g.Arm()
	time.Sleep(50 * time.Millisecond)
	if g.Fired() {
		t.Error("Fired() = true, want false")
	}
}
