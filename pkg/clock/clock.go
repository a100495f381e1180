// Package clock abstracts time so that rate limiting and debouncing can be
// tested without waiting for real time to pass.
package clock

import "time"

// Clock provides the time operations used by eclipse.
type Clock interface {
	// Now returns the current time according to this clock.
	Now() time.Time

	// AfterFunc waits for d and then calls f in its own goroutine.
	// The returned Timer can cancel the pending call.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending AfterFunc call.
type Timer interface {
	// Stop prevents the timer from firing. It returns false if the timer
	// already fired or was stopped.
	Stop() bool
}

// Real implements Clock using the time package.
type Real struct{}

// Now returns the current time.
func (Real) Now() time.Time {
	return time.Now()
}

// AfterFunc calls time.AfterFunc.
func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
