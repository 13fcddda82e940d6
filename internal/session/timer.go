package session

import (
	"sync"
	"time"
)

// Timer is a one-second-resolution stopwatch driven by a periodic tick.
// It backs both rest countdowns and cardio duration tracking. State is
// in-memory only — the surrounding session is itself ephemeral until
// finalized.
type Timer struct {
	interval time.Duration

	mu      sync.Mutex
	elapsed int
	stop    chan struct{}
	wg      sync.WaitGroup
}

// NewTimer returns a stopped timer ticking once per second.
func NewTimer() *Timer {
	return newTimerWithInterval(time.Second)
}

// newTimerWithInterval lets tests run the tick loop faster.
func newTimerWithInterval(interval time.Duration) *Timer {
	return &Timer{interval: interval}
}

// Start begins ticking. Starting a running timer is a no-op.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stop != nil {
		return
	}
	stop := make(chan struct{})
	t.stop = stop
	t.wg.Add(1)
	go t.run(stop)
}

func (t *Timer) run(stop chan struct{}) {
	defer t.wg.Done()
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			t.mu.Lock()
			t.elapsed++
			t.mu.Unlock()
		}
	}
}

// Stop halts ticking and releases the periodic schedule. Idempotent.
func (t *Timer) Stop() {
	t.mu.Lock()
	stop := t.stop
	t.stop = nil
	t.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	t.wg.Wait()
}

// Reset stops the timer and zeroes the elapsed count.
func (t *Timer) Reset() {
	t.Stop()
	t.mu.Lock()
	t.elapsed = 0
	t.mu.Unlock()
}

// ElapsedSeconds returns the number of whole seconds ticked so far.
func (t *Timer) ElapsedSeconds() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsed
}

// Running reports whether the timer is currently ticking.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stop != nil
}
