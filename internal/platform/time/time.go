// Package time holds the clock seam and date helpers shared by services
package time

import (
	"sync"
	"time"
)

// Clock returns the current instant
type Clock interface {
	Now() time.Time
}

// System is the wall clock in UTC
type System struct{}

// Now implements Clock
func (System) Now() time.Time { return time.Now().UTC() }

// Fixed is a settable clock for tests and replays
type Fixed struct {
	mu sync.Mutex
	t  time.Time
}

// NewFixed returns a clock frozen at t
func NewFixed(t time.Time) *Fixed { return &Fixed{t: t.UTC()} }

// Now implements Clock
func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

// Set moves the clock to t
func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	f.t = t.UTC()
	f.mu.Unlock()
}

// Advance moves the clock forward by d
func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

// Or returns c, or the system clock when c is nil
func Or(c Clock) Clock {
	if c == nil {
		return System{}
	}
	return c
}

// Date is midnight UTC on the given day
func Date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

// Ptr returns a pointer to t or nil if t is zero
func Ptr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// Within reports whether t lies in the half open window [from, to); a nil to is open ended
func Within(t, from time.Time, to *time.Time) bool {
	if t.Before(from) {
		return false
	}
	return to == nil || t.Before(*to)
}
