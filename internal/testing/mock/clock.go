package mock

import (
	"sort"
	"sync"
	"time"

	"eclipse/pkg/clock"
)

// MockClock implements clock.Clock with a controllable time value.
// This enables testing rename windows and cache expiry without waiting for
// real time to pass.
//
// Timers registered with AfterFunc fire synchronously on the goroutine that
// calls Advance, Add or Set, in deadline order.
type MockClock struct {
	mu      sync.Mutex
	current time.Time
	timers  []*mockTimer
	seq     int
}

var _ clock.Clock = (*MockClock)(nil)

type mockTimer struct {
	clock    *MockClock
	deadline time.Time
	seq      int
	fn       func()
	stopped  bool
	fired    bool
}

// NewMockClock creates a new mock clock initialized to the given time.
// If t is zero, the clock is initialized to the current time.
func NewMockClock(t time.Time) *MockClock {
	if t.IsZero() {
		t = time.Now()
	}
	return &MockClock{current: t}
}

// Now returns the current time according to this mock clock.
func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// AfterFunc schedules f to run once the clock has advanced by d.
func (m *MockClock) AfterFunc(d time.Duration, f func()) clock.Timer {
	m.mu.Lock()
	m.seq++
	t := &mockTimer{clock: m, deadline: m.current.Add(d), seq: m.seq, fn: f}
	m.timers = append(m.timers, t)
	m.mu.Unlock()

	if d <= 0 {
		m.fireDue()
	}
	return t
}

// Stop cancels the timer.
func (t *mockTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward by the given duration and fires due timers.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	m.current = m.current.Add(d)
	m.mu.Unlock()
	m.fireDue()
}

// Set sets the clock to a specific time and fires due timers.
func (m *MockClock) Set(t time.Time) {
	m.mu.Lock()
	m.current = t
	m.mu.Unlock()
	m.fireDue()
}

// Add is an alias for Advance for API familiarity.
func (m *MockClock) Add(d time.Duration) {
	m.Advance(d)
}

// PendingTimers returns the number of timers that have neither fired nor
// been stopped.
func (m *MockClock) PendingTimers() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// fireDue runs every due timer. Callbacks may register new timers; those
// are picked up by the next loop iteration if they are already due.
func (m *MockClock) fireDue() {
	for {
		m.mu.Lock()
		var due []*mockTimer
		pending := m.timers[:0]
		for _, t := range m.timers {
			switch {
			case t.stopped || t.fired:
			case !t.deadline.After(m.current):
				t.fired = true
				due = append(due, t)
			default:
				pending = append(pending, t)
			}
		}
		m.timers = pending
		m.mu.Unlock()

		if len(due) == 0 {
			return
		}
		sort.Slice(due, func(i, j int) bool {
			if due[i].deadline.Equal(due[j].deadline) {
				return due[i].seq < due[j].seq
			}
			return due[i].deadline.Before(due[j].deadline)
		})
		for _, t := range due {
			t.fn()
		}
	}
}
