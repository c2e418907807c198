package realtime

import (
	"sync"
	"time"
)

// Gate is the two-phase startup gate deciding whether a change event is live
// traffic worth surfacing as a user-visible notification, or catch-up from
// the initial snapshot. Phase 1 (load): nothing surfaces. Phase 2 (live):
// begins once the subscription confirms plus a settle delay that drains
// events already in flight. The gate is per-session and re-armed on
// reconnect, never persisted.
type Gate struct {
	mu     sync.Mutex
	settle time.Duration
	live   bool
	timer  *time.Timer
}

func NewGate(settle time.Duration) *Gate {
	return &Gate{settle: settle}
}

// Arm schedules the switch to live after the settle delay. Called on every
// subscribed confirmation; re-arming an already-live gate is a no-op.
func (g *Gate) Arm() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.live || g.timer != nil {
		return
	}
	g.timer = time.AfterFunc(g.settle, func() {
		g.mu.Lock()
		g.live = true
		g.timer = nil
		g.mu.Unlock()
	})
}

// Reset drops back to the load phase. Called when the channel degrades so the
// next confirmation re-arms the gate.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	g.live = false
}

func (g *Gate) Live() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.live
}

// ShouldSurface reports whether an event may produce a user-visible alert.
// Presence is exempt from the catch-up gate: stale presence is worse than a
// harmless early render.
func (g *Gate) ShouldSurface(ev Event) bool {
	if ev.Topic == TopicPresence {
		return true
	}
	return g.Live()
}
