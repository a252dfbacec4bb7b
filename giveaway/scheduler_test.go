package giveaway

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestSchedulerFires(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	var fired atomic.Int32
	s.Arm(endKey("g1", "m1"), 10*time.Millisecond, func() { fired.Add(1) })

	waitFor(t, func() bool { return fired.Load() == 1 })
}

func TestSchedulerNegativeDelayFiresImmediately(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	var fired atomic.Int32
	s.Arm(endKey("g1", "m1"), -time.Hour, func() { fired.Add(1) })

	waitFor(t, func() bool { return fired.Load() == 1 })
}

func TestSchedulerCancel(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	var fired atomic.Int32
	key := endKey("g1", "m1")
	s.Arm(key, 30*time.Millisecond, func() { fired.Add(1) })
	s.Cancel(key)

	time.Sleep(80 * time.Millisecond)
	assert.Zero(t, fired.Load())
}

func TestSchedulerRearmReplaces(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	var first, second atomic.Int32
	key := endKey("g1", "m1")
	s.Arm(key, 30*time.Millisecond, func() { first.Add(1) })
	s.Arm(key, 10*time.Millisecond, func() { second.Add(1) })

	waitFor(t, func() bool { return second.Load() == 1 })
	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, first.Load(), "re-arming must drop the earlier callback")
}

func TestSchedulerKeysAreIndependent(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	var endFired, claimFired atomic.Int32
	s.Arm(endKey("g1", "m1"), 10*time.Millisecond, func() { endFired.Add(1) })
	s.Arm(claimKey("g1", "m1"), 10*time.Millisecond, func() { claimFired.Add(1) })

	waitFor(t, func() bool { return endFired.Load() == 1 && claimFired.Load() == 1 })
}

func TestSchedulerCancelGiveaway(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	var fired atomic.Int32
	s.Arm(endKey("g1", "m1"), 30*time.Millisecond, func() { fired.Add(1) })
	s.Arm(claimKey("g1", "m1"), 30*time.Millisecond, func() { fired.Add(1) })
	s.Arm(endKey("g1", "m2"), 30*time.Millisecond, func() { fired.Add(1) })

	s.CancelGiveaway("g1", "m1")

	waitFor(t, func() bool { return fired.Load() == 1 })
	time.Sleep(60 * time.Millisecond)
	require.Equal(t, int32(1), fired.Load(), "only the untouched giveaway's timer may fire")
}

func TestSchedulerStop(t *testing.T) {
	s := NewScheduler()

	var fired atomic.Int32
	s.Arm(endKey("g1", "m1"), 30*time.Millisecond, func() { fired.Add(1) })
	s.Arm(endKey("g2", "m2"), 30*time.Millisecond, func() { fired.Add(1) })
	s.Stop()

	time.Sleep(80 * time.Millisecond)
	assert.Zero(t, fired.Load())
}

func TestSchedulerCallbackPanicIsContained(t *testing.T) {
	s := NewScheduler()
	defer s.Stop()

	var fired atomic.Int32
	s.Arm(endKey("g1", "m1"), 5*time.Millisecond, func() { panic("boom") })
	s.Arm(endKey("g1", "m2"), 20*time.Millisecond, func() { fired.Add(1) })

	waitFor(t, func() bool { return fired.Load() == 1 })
}
