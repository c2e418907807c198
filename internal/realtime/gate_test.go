package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGate_LiveAfterSettle(t *testing.T) {
	g := NewGate(20 * time.Millisecond)

	taskEvent := Event{Topic: TopicTasks, Kind: EventInsert, RowID: "t1"}
	assert.False(t, g.ShouldSurface(taskEvent), "load phase suppresses alerts")

	g.Arm()
	assert.False(t, g.ShouldSurface(taskEvent), "settle delay still draining in-flight events")

	assert.Eventually(t, g.Live, 500*time.Millisecond, 5*time.Millisecond)
	assert.True(t, g.ShouldSurface(taskEvent))

	// Re-arming a live gate changes nothing.
	g.Arm()
	assert.True(t, g.Live())
}

func TestGate_ResetDropsToLoadPhase(t *testing.T) {
	g := NewGate(10 * time.Millisecond)

	g.Arm()
	assert.Eventually(t, g.Live, 500*time.Millisecond, 2*time.Millisecond)

	g.Reset()
	assert.False(t, g.Live(), "degraded channel re-enters load phase")

	// A pending arm cancelled by Reset must not fire later.
	g.Arm()
	g.Reset()
	time.Sleep(30 * time.Millisecond)
	assert.False(t, g.Live())

	g.Arm()
	assert.Eventually(t, g.Live, 500*time.Millisecond, 2*time.Millisecond)
}

func TestGate_PresenceBypassesGate(t *testing.T) {
	g := NewGate(time.Minute)

	presence := Event{Topic: TopicPresence, Kind: EventUpdate, RowID: "u1"}
	assert.True(t, g.ShouldSurface(presence), "presence renders regardless of phase")
	assert.False(t, g.Live())
}
