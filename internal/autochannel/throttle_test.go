package autochannel

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"eclipse/internal/testing/mock"
)

func TestRenamePolicy_Throttled(t *testing.T) {
	tests := []struct {
		name   string
		policy RenamePolicy
		cause  renameCause
		want   bool
	}{
		{"presence throttled by default", DefaultRenamePolicy(), causePresence, true},
		{"trailing throttled by default", DefaultRenamePolicy(), causeTrailing, true},
		{"membership free by default", DefaultRenamePolicy(), causeMembership, false},
		{"reindex free by default", DefaultRenamePolicy(), causeReindex, false},
		{"membership shares window when enabled", RenamePolicy{Window: time.Minute, ThrottleMembership: true}, causeMembership, true},
		{"zero window disables throttling", RenamePolicy{}, causePresence, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.throttled(tt.cause))
		})
	}
}

func TestRenameThrottle_OnePerWindow(t *testing.T) {
	clk := mock.NewMockClock(time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC))
	th := newRenameThrottle(clk, 10*time.Minute)

	fired := 0
	fire := func() { fired++ }

	assert.True(t, th.Acquire("c1", fire))
	assert.False(t, th.Acquire("c1", fire))
	assert.False(t, th.Acquire("c1", fire))
	assert.True(t, th.Pending("c1"))

	// other channels have their own window
	assert.True(t, th.Acquire("c2", fire))

	clk.Advance(5 * time.Minute)
	assert.Zero(t, fired)

	clk.Advance(6 * time.Minute)
	assert.Equal(t, 1, fired, "denied requests coalesce into one trailing call")
	assert.False(t, th.Pending("c1"))
	assert.True(t, th.Acquire("c1", fire))
}

func TestRenameThrottle_Refund(t *testing.T) {
	clk := mock.NewMockClock(time.Time{})
	th := newRenameThrottle(clk, 10*time.Minute)

	assert.True(t, th.Acquire("c1", func() {}))
	th.Refund("c1")
	assert.True(t, th.Acquire("c1", func() {}))
}

func TestRenameThrottle_ForgetStopsTrailing(t *testing.T) {
	clk := mock.NewMockClock(time.Time{})
	th := newRenameThrottle(clk, time.Minute)

	fired := false
	assert.True(t, th.Acquire("c1", func() { fired = true }))
	assert.False(t, th.Acquire("c1", func() { fired = true }))

	th.Forget("c1")
	clk.Advance(time.Hour)
	assert.False(t, fired)
	assert.Zero(t, clk.PendingTimers())
}

func TestRenameThrottle_Stop(t *testing.T) {
	clk := mock.NewMockClock(time.Time{})
	th := newRenameThrottle(clk, time.Minute)

	th.Acquire("c1", func() {})
	th.Acquire("c1", func() {})
	th.Acquire("c2", func() {})
	th.Acquire("c2", func() {})
	assert.Equal(t, 2, clk.PendingTimers())

	th.Stop()
	assert.Zero(t, clk.PendingTimers())

	th.Acquire("c3", func() {})
	assert.False(t, th.Acquire("c3", func() {}))
	assert.Zero(t, clk.PendingTimers(), "no trailing rename after Stop")
}

func TestOrchestrator_ClaimIsAtomic(t *testing.T) {
	tests := []struct {
		name    string
		current string
		label   string
		want    int
	}{
		{"one claim wins", "Join to create", "#1 [General]", 1},
		{"nothing to claim when up to date", "#1 [General]", "#1 [General]", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Orchestrator{requested: make(map[string][]string)}

			var wg sync.WaitGroup
			var won atomic.Int32
			for range 32 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if o.claim("c1", tt.current, tt.label) {
						won.Add(1)
					}
				}()
			}
			wg.Wait()

			assert.Equal(t, int32(tt.want), won.Load())
			assert.Len(t, o.requested["c1"], tt.want)
		})
	}
}
