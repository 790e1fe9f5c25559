package wizard

import (
	"sync"
	"time"
)

// Scheduler runs fn once after d. Callbacks are never cancelled.
type Scheduler interface {
	After(d time.Duration, fn func())
}

type TimerScheduler struct{}

func (TimerScheduler) After(d time.Duration, fn func()) {
	time.AfterFunc(d, fn)
}

// ManualScheduler queues callbacks until the caller fires them. Used by tests
// to step through delays deterministically.
type ManualScheduler struct {
	mu      sync.Mutex
	pending []scheduled
}

type scheduled struct {
	delay time.Duration
	fn    func()
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (m *ManualScheduler) After(d time.Duration, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pending = append(m.pending, scheduled{delay: d, fn: fn})
}

func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.pending)
}

// Delays returns the delays of the queued callbacks in scheduling order.
func (m *ManualScheduler) Delays() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]time.Duration, len(m.pending))
	for i, p := range m.pending {
		out[i] = p.delay
	}

	return out
}

// RunNext fires the oldest callback. It reports false when nothing is queued.
func (m *ManualScheduler) RunNext() bool {
	m.mu.Lock()
	if len(m.pending) == 0 {
		m.mu.Unlock()
		return false
	}
	next := m.pending[0]
	m.pending = m.pending[1:]
	m.mu.Unlock()

	next.fn()

	return true
}

// RunAll fires queued callbacks, including ones scheduled while running, until none remain.
func (m *ManualScheduler) RunAll() {
	for m.RunNext() {
	}
}
