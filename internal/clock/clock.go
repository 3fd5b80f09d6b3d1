// Package clock abstracts wall time and tick scheduling so the round loop can
// be driven by tests without sleeping.
package clock

import (
	"sync"
	"time"
)

type Clock interface {
	Now() time.Time
	// Tick delivers ticks every d until stop is called.
	Tick(d time.Duration) (ticks <-chan time.Time, stop func())
}

type Real struct{}

func (Real) Now() time.Time { return time.Now() }

func (Real) Tick(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Manual - clock moved by hand. Advance delivers one tick to every live
// ticker and blocks until each is received or stopped.
type Manual struct {
	mu      sync.Mutex
	now     time.Time
	tickers map[int]manualTicker
	next    int
}

type manualTicker struct {
	ch   chan time.Time
	done chan struct{}
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start, tickers: make(map[int]manualTicker)}
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) Tick(time.Duration) (<-chan time.Time, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.next
	m.next++
	t := manualTicker{ch: make(chan time.Time), done: make(chan struct{})}
	m.tickers[id] = t

	return t.ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.tickers[id]; ok {
			delete(m.tickers, id)
			close(t.done)
		}
	}
}

func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	now := m.now
	live := make([]manualTicker, 0, len(m.tickers))
	for _, t := range m.tickers {
		live = append(live, t)
	}
	m.mu.Unlock()

	for _, t := range live {
		select {
		case t.ch <- now:
		case <-t.done:
		}
	}
}
