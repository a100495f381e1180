package mock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMockClock_Now(t *testing.T) {
	fixedTime := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	clock := NewMockClock(fixedTime)

	if !clock.Now().Equal(fixedTime) {
		t.Errorf("Expected time %v, got %v", fixedTime, clock.Now())
	}

	// Calling Now multiple times should return the same time
	if !clock.Now().Equal(fixedTime) {
		t.Errorf("Expected time to remain stable at %v, got %v", fixedTime, clock.Now())
	}
}

func TestMockClock_Advance(t *testing.T) {
	startTime := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	clock := NewMockClock(startTime)

	clock.Advance(1 * time.Hour)
	assert.Equal(t, startTime.Add(time.Hour), clock.Now())

	clock.Add(30 * time.Minute)
	assert.Equal(t, startTime.Add(90*time.Minute), clock.Now())
}

func TestMockClock_ZeroTimeUsesNow(t *testing.T) {
	before := time.Now()
	clock := NewMockClock(time.Time{})
	assert.False(t, clock.Now().Before(before))
}

func TestMockClock_AfterFunc(t *testing.T) {
	clock := NewMockClock(time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC))

	var order []string
	clock.AfterFunc(2*time.Minute, func() { order = append(order, "second") })
	clock.AfterFunc(time.Minute, func() { order = append(order, "first") })
	assert.Equal(t, 2, clock.PendingTimers())

	clock.Advance(59 * time.Second)
	assert.Empty(t, order)

	clock.Advance(2 * time.Minute)
	assert.Equal(t, []string{"first", "second"}, order)
	assert.Zero(t, clock.PendingTimers())
}

func TestMockClock_AfterFuncStop(t *testing.T) {
	clock := NewMockClock(time.Time{})

	fired := false
	timer := clock.AfterFunc(time.Second, func() { fired = true })
	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())

	clock.Advance(time.Minute)
	assert.False(t, fired)
}

func TestMockClock_TimerScheduledFromCallback(t *testing.T) {
	clock := NewMockClock(time.Time{})

	count := 0
	var tick func()
	tick = func() {
		count++
		if count < 3 {
			clock.AfterFunc(0, tick)
		}
	}
	clock.AfterFunc(time.Second, tick)

	clock.Advance(time.Second)
	assert.Equal(t, 3, count)
}

func TestMockClock_Set(t *testing.T) {
	clock := NewMockClock(time.Time{})

	fired := false
	target := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)
	clock.Set(target.Add(-time.Hour))
	clock.AfterFunc(30*time.Minute, func() { fired = true })

	clock.Set(target)
	assert.Equal(t, target, clock.Now())
	assert.True(t, fired)
}
