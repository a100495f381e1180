package autochannel

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"eclipse/pkg/clock"
)

// DefaultRenameWindow is the presence rename window used when none is configured.
const DefaultRenameWindow = 10 * time.Minute

// RenamePolicy controls how often automatic renames may be applied to one
// auto-channel.
type RenamePolicy struct {
	// Window is the minimum time between two throttled renames of the same
	// channel.
	Window time.Duration

	// ThrottleMembership subjects renames caused by joins and leaves to the
	// same window as presence renames.
	ThrottleMembership bool
}

// DefaultRenamePolicy returns a policy with a ten minute presence window and
// unthrottled membership renames.
func DefaultRenamePolicy() RenamePolicy {
	return RenamePolicy{Window: DefaultRenameWindow}
}

// renameCause records what triggered a rename request.
type renameCause int

const (
	causeMembership renameCause = iota
	causePresence
	causeReindex
	causeTrailing
)

func (c renameCause) String() string {
	switch c {
	case causeMembership:
		return "membership"
	case causePresence:
		return "presence"
	case causeReindex:
		return "reindex"
	case causeTrailing:
		return "trailing"
	default:
		return "unknown"
	}
}

// throttled reports whether renames with this cause are subject to the window.
func (p RenamePolicy) throttled(cause renameCause) bool {
	switch cause {
	case causePresence, causeTrailing:
		return p.Window > 0
	case causeMembership, causeReindex:
		return p.Window > 0 && p.ThrottleMembership
	default:
		return false
	}
}

// renameThrottle hands out one rename token per channel per window and
// coalesces denied requests into a single trailing callback.
type renameThrottle struct {
	mu       sync.Mutex
	clock    clock.Clock
	window   time.Duration
	limiters map[string]*rate.Limiter
	trailing map[string]clock.Timer
	stopped  bool
}

func newRenameThrottle(c clock.Clock, window time.Duration) *renameThrottle {
	return &renameThrottle{
		clock:    c,
		window:   window,
		limiters: make(map[string]*rate.Limiter),
		trailing: make(map[string]clock.Timer),
	}
}

func (t *renameThrottle) limiterLocked(channelID string) *rate.Limiter {
	lim, ok := t.limiters[channelID]
	if !ok {
		lim = rate.NewLimiter(rate.Every(t.window), 1)
		t.limiters[channelID] = lim
	}
	return lim
}

// Acquire takes the channel's token if it is available. Otherwise it
// schedules fire for when the window reopens, unless a trailing call is
// already pending, and returns false.
func (t *renameThrottle) Acquire(channelID string, fire func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	r := t.limiterLocked(channelID).ReserveN(now, 1)
	if !r.OK() {
		return false
	}
	delay := r.DelayFrom(now)
	if delay == 0 {
		return true
	}
	r.CancelAt(now)

	if t.stopped {
		return false
	}
	if _, pending := t.trailing[channelID]; pending {
		return false
	}
	t.trailing[channelID] = t.clock.AfterFunc(delay, func() {
		t.mu.Lock()
		delete(t.trailing, channelID)
		t.mu.Unlock()
		fire()
	})
	return false
}

// Refund returns the token of a rename that did not succeed.
func (t *renameThrottle) Refund(channelID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.limiters[channelID]; ok {
		t.limiters[channelID] = rate.NewLimiter(rate.Every(t.window), 1)
	}
}

// Forget drops all state for a channel that is no longer tracked.
func (t *renameThrottle) Forget(channelID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if timer, ok := t.trailing[channelID]; ok {
		timer.Stop()
		delete(t.trailing, channelID)
	}
	delete(t.limiters, channelID)
}

// Pending reports whether a trailing rename is scheduled for the channel.
func (t *renameThrottle) Pending(channelID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.trailing[channelID]
	return ok
}

// Stop cancels all trailing timers. No new ones are scheduled afterwards.
func (t *renameThrottle) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopped = true
	for id, timer := range t.trailing {
		timer.Stop()
		delete(t.trailing, id)
	}
}
