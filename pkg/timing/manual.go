package timing

import (
	"sort"
	"sync"
	"time"
)

// Manual is a Clock whose time only moves when Advance is called. Timers
// fire synchronously inside Advance, in deadline order, on the calling
// goroutine — mirroring the cooperative, run-to-completion scheduling of
// the host event loop.
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	pending []*manualTimer
	seq     int64
}

// NewManual creates a manual clock starting at the given time.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

type manualTimer struct {
	clock    *Manual
	deadline time.Time
	seq      int64
	f        func()
	stopped  bool
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	for i, p := range t.clock.pending {
		if p == t {
			t.clock.pending = append(t.clock.pending[:i], t.clock.pending[i+1:]...)
			break
		}
	}
	return true
}

// Now returns the clock's current time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// AfterFunc schedules f at now+d. Non-positive d fires on the next Advance.
func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{clock: m, deadline: m.now.Add(d), seq: m.seq, f: f}
	m.pending = append(m.pending, t)
	return t
}

// Advance moves the clock forward by d, firing every timer whose deadline
// falls within the window in deadline order. Callbacks may schedule further
// timers; those also fire if they land inside the window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	for {
		next := m.nextDueLocked(target)
		if next == nil {
			break
		}
		next.stopped = true
		if next.deadline.After(m.now) {
			m.now = next.deadline
		}
		m.mu.Unlock()
		next.f()
		m.mu.Lock()
	}
	m.now = target
	m.mu.Unlock()
}

// nextDueLocked pops the earliest pending timer due at or before target.
func (m *Manual) nextDueLocked(target time.Time) *manualTimer {
	sort.SliceStable(m.pending, func(i, j int) bool {
		if !m.pending[i].deadline.Equal(m.pending[j].deadline) {
			return m.pending[i].deadline.Before(m.pending[j].deadline)
		}
		return m.pending[i].seq < m.pending[j].seq
	})
	for i, t := range m.pending {
		if t.deadline.After(target) {
			return nil
		}
		m.pending = append(m.pending[:i], m.pending[i+1:]...)
		return t
	}
	return nil
}
