package session

import (
	"testing"
	"time"
)

// TestTimerTicks verifies the timer accumulates elapsed seconds while
// running and holds its value after Stop.
func TestTimerTicks(t *testing.T) {
	tm := newTimerWithInterval(5 * time.Millisecond)
	tm.Start()
	defer tm.Stop()

	deadline := time.After(2 * time.Second)
	for tm.ElapsedSeconds() < 3 {
		select {
		case <-deadline:
			t.Fatalf("timer did not reach 3 ticks, at %d", tm.ElapsedSeconds())
		case <-time.After(time.Millisecond):
		}
	}

	tm.Stop()
	frozen := tm.ElapsedSeconds()
	time.Sleep(20 * time.Millisecond)
	if got := tm.ElapsedSeconds(); got != frozen {
		t.Errorf("elapsed advanced after Stop: %d -> %d", frozen, got)
	}
}

// TestTimerStopIdempotent verifies stopping a stopped timer is safe, per
// the resource-cleanup contract.
func TestTimerStopIdempotent(t *testing.T) {
	tm := newTimerWithInterval(time.Millisecond)
	tm.Stop()
	tm.Start()
	tm.Stop()
	tm.Stop()
	if tm.Running() {
		t.Error("timer still running after Stop")
	}
}

// TestTimerReset verifies Reset stops the timer and zeroes the count.
func TestTimerReset(t *testing.T) {
	tm := newTimerWithInterval(time.Millisecond)
	tm.Start()

	deadline := time.After(2 * time.Second)
	for tm.ElapsedSeconds() < 1 {
		select {
		case <-deadline:
			t.Fatal("timer never ticked")
		case <-time.After(time.Millisecond):
		}
	}

	tm.Reset()
	if tm.Running() {
		t.Error("timer running after Reset")
	}
	if got := tm.ElapsedSeconds(); got != 0 {
		t.Errorf("elapsed after Reset = %d, want 0", got)
	}
}

// TestTimerRestart verifies a stopped timer resumes counting from where it
// left off when started again.
func TestTimerRestart(t *testing.T) {
	tm := newTimerWithInterval(time.Millisecond)
	tm.Start()

	deadline := time.After(2 * time.Second)
	for tm.ElapsedSeconds() < 2 {
		select {
		case <-deadline:
			t.Fatal("timer never reached 2")
		case <-time.After(time.Millisecond):
		}
	}
	tm.Stop()
	base := tm.ElapsedSeconds()

	tm.Start()
	defer tm.Stop()
	deadline = time.After(2 * time.Second)
	for tm.ElapsedSeconds() <= base {
		select {
		case <-deadline:
			t.Fatal("timer did not resume")
		case <-time.After(time.Millisecond):
		}
	}
}
