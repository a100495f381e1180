package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eclipse/internal/autochannel"
)

func env(id, guildID string) Envelope {
	return Envelope{ID: id, Event: autochannel.PresenceChanged{GuildID: guildID, MemberID: id}}
}

func TestGuildQueue_AddAndGet(t *testing.T) {
	q := newGuildQueue(0)

	require.NoError(t, q.Add(env("1", "g1")))
	assert.Equal(t, 1, q.Len())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	got, ok := q.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, "1", got.ID)
	assert.True(t, q.Processing("g1"))

	q.Done("g1")
	assert.False(t, q.Processing("g1"))
	assert.Zero(t, q.Len())
}

func TestGuildQueue_SerializesGuild(t *testing.T) {
	q := newGuildQueue(0)
	require.NoError(t, q.Add(env("a1", "a")))
	require.NoError(t, q.Add(env("a2", "a")))
	require.NoError(t, q.Add(env("b1", "b")))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	first, ok := q.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, "a1", first.ID)

	// guild a is busy, so the next event comes from guild b
	second, ok := q.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, "b1", second.ID)

	// nothing is ready until a1 is done
	short, cancelShort := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancelShort()
	_, ok = q.Get(short)
	assert.False(t, ok)

	q.Done("a")
	third, ok := q.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, "a2", third.ID)
}

func TestGuildQueue_FIFOWithinGuild(t *testing.T) {
	q := newGuildQueue(0)
	for _, id := range []string{"1", "2", "3", "4"} {
		require.NoError(t, q.Add(env(id, "g")))
	}

	ctx := context.Background()
	var order []string
	for i := 0; i < 4; i++ {
		e, ok := q.Get(ctx)
		require.True(t, ok)
		order = append(order, e.ID)
		q.Done("g")
	}
	assert.Equal(t, []string{"1", "2", "3", "4"}, order)
}

func TestGuildQueue_Depth(t *testing.T) {
	q := newGuildQueue(2)
	require.NoError(t, q.Add(env("1", "g")))
	require.NoError(t, q.Add(env("2", "g")))
	assert.ErrorIs(t, q.Add(env("3", "g")), ErrQueueFull)
	assert.NoError(t, q.Add(env("4", "other")))
	assert.Equal(t, 2, q.GuildLen("g"))
}

func TestGuildQueue_ContextCancellation(t *testing.T) {
	q := newGuildQueue(0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan bool)
	go func() {
		_, ok := q.Get(ctx)
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Get did not return after context cancellation")
	}
}

func TestGuildQueue_ShutdownDrainsPending(t *testing.T) {
	q := newGuildQueue(0)
	require.NoError(t, q.Add(env("1", "g")))
	q.Shutdown()

	assert.ErrorIs(t, q.Add(env("2", "g")), ErrStopped)

	ctx := context.Background()
	e, ok := q.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, "1", e.ID)
	q.Done("g")

	_, ok = q.Get(ctx)
	assert.False(t, ok)
}

func TestGuildQueue_WaitIdle(t *testing.T) {
	q := newGuildQueue(0)
	require.NoError(t, q.Add(env("1", "g")))

	go func() {
		e, ok := q.Get(context.Background())
		if ok {
			time.Sleep(5 * time.Millisecond)
			q.Done(e.Event.Guild())
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, q.WaitIdle(ctx))
	assert.Zero(t, q.Len())
}
