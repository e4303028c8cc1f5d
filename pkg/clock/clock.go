// Package clock supplies the notion of "now" used by every expiry
// computation. Production code wires Real(); tests wire a Mock so expiry
// boundaries can be hit exactly without sleeping.
package clock

import (
	"sync"
	"time"
)

// Clock reports the current instant.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// Real returns the wall clock in UTC.
func Real() Clock { return realClock{} }

// Mock is a controllable Clock. It is safe for concurrent use.
type Mock struct {
	mu      sync.RWMutex
	current time.Time
}

// NewMock creates a mock clock set to t. A zero t starts at the current
// wall-clock second.
func NewMock(t time.Time) *Mock {
	if t.IsZero() {
		t = time.Now().UTC().Truncate(time.Second)
	}
	return &Mock{current: t}
}

func (m *Mock) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Advance moves the clock forward by d (backwards if d is negative).
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.current.Add(d)
}

// Set jumps the clock to t.
func (m *Mock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = t
}
