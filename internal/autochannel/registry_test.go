package autochannel

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_AddAndList(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Add("g1", "c1", "alice"))
	require.NoError(t, r.Add("g1", "c2", "bob"))
	require.NoError(t, r.Add("g2", "c3", "carol"))

	assert.Equal(t, []string{"c1", "c2"}, r.List("g1"))
	assert.Equal(t, []string{"c3"}, r.List("g2"))
	assert.Empty(t, r.List("g3"))
	assert.Equal(t, 3, r.Len())
	assert.ElementsMatch(t, []string{"g1", "g2"}, r.Guilds())

	guild, ok := r.Contains("c2")
	assert.True(t, ok)
	assert.Equal(t, "g1", guild)

	assert.Equal(t, 1, r.IndexOf("g1", "c2"))
	assert.Equal(t, -1, r.IndexOf("g2", "c2"))

	owner, ok := r.Owner("c1")
	assert.True(t, ok)
	assert.Equal(t, "alice", owner)
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add("g1", "c1", "alice"))

	assert.ErrorIs(t, r.Add("g1", "c1", "bob"), ErrAlreadyTracked)
	assert.ErrorIs(t, r.Add("g2", "c1", "bob"), ErrAlreadyTracked)
	assert.Equal(t, []string{"c1"}, r.List("g1"))
	assert.Empty(t, r.List("g2"))

	owner, _ := r.Owner("c1")
	assert.Equal(t, "alice", owner)
}

func TestRegistry_AddValidates(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Add("", "c1", "a"))
	assert.Error(t, r.Add("g1", "", "a"))
}

func TestRegistry_RemoveForgetsState(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add("g1", "c1", "alice"))
	require.NoError(t, r.Add("g1", "c2", "bob"))
	require.NoError(t, r.MarkRenamed("c1"))

	assert.False(t, r.Remove("g2", "c1"), "wrong guild")
	assert.True(t, r.Remove("g1", "c1"))
	assert.False(t, r.Remove("g1", "c1"), "second remove")

	_, ok := r.Contains("c1")
	assert.False(t, ok)
	_, ok = r.Owner("c1")
	assert.False(t, ok)
	assert.False(t, r.IsRenamed("c1"))
	assert.Equal(t, NonExistent{}, r.State("c1"))

	assert.Equal(t, []string{"c2"}, r.List("g1"))
	assert.Equal(t, 0, r.IndexOf("g1", "c2"))
}

func TestRegistry_StateFollowsTransitions(t *testing.T) {
	tests := []struct {
		name  string
		steps func(r Registry) error
		want  CloneState
	}{
		{"untracked", func(r Registry) error { return nil }, NonExistent{}},
		{"created", func(r Registry) error { return r.Add("g1", "c1", "alice") }, Active{Owner: "alice"}},
		{"transferred then renamed", func(r Registry) error {
			return errors.Join(r.Add("g1", "c1", "alice"), r.SetOwner("c1", "bob"), r.MarkRenamed("c1"))
		}, Active{Owner: "bob", ManuallyRenamed: true}},
		{"owner lost keeps rename flag", func(r Registry) error {
			return errors.Join(r.Add("g1", "c1", "alice"), r.MarkRenamed("c1"), r.ClearOwner("c1"))
		}, Active{ManuallyRenamed: true}},
		{"re-added after removal starts fresh", func(r Registry) error {
			err := errors.Join(r.Add("g1", "c1", "alice"), r.MarkRenamed("c1"))
			r.Remove("g1", "c1")
			return errors.Join(err, r.Add("g1", "c1", "carol"))
		}, Active{Owner: "carol"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			require.NoError(t, tt.steps(r))
			assert.Equal(t, tt.want, r.State("c1"))
		})
	}
}

func TestRegistry_RemoveLastChannelDropsGuild(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add("g1", "c1", "alice"))
	require.True(t, r.Remove("g1", "c1"))

	assert.Empty(t, r.Guilds())
	assert.Zero(t, r.Len())
}

func TestRegistry_ListIsACopy(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add("g1", "c1", "alice"))

	list := r.List("g1")
	list[0] = "mutated"
	assert.Equal(t, []string{"c1"}, r.List("g1"))
}

func TestRegistry_Ownership(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add("g1", "c1", "alice"))

	require.NoError(t, r.SetOwner("c1", "bob"))
	assert.Equal(t, Active{Owner: "bob"}, r.State("c1"))

	require.NoError(t, r.ClearOwner("c1"))
	_, ok := r.Owner("c1")
	assert.False(t, ok)
	assert.Equal(t, Active{}, r.State("c1"))

	assert.ErrorIs(t, r.SetOwner("unknown", "bob"), ErrNotTracked)
	assert.ErrorIs(t, r.ClearOwner("unknown"), ErrNotTracked)
	assert.ErrorIs(t, r.SetOwner("c1", ""), ErrIllegalTransition)
}

func TestRegistry_RenamedIsSticky(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add("g1", "c1", "alice"))

	require.NoError(t, r.MarkRenamed("c1"))
	require.NoError(t, r.MarkRenamed("c1"))
	require.NoError(t, r.SetOwner("c1", "bob"))
	require.NoError(t, r.ClearOwner("c1"))

	assert.True(t, r.IsRenamed("c1"))
	assert.ErrorIs(t, r.MarkRenamed("unknown"), ErrNotTracked)
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			guild := fmt.Sprintf("g%d", g)
			for i := 0; i < 100; i++ {
				id := fmt.Sprintf("c%d", i)
				// every goroutine races for the same ids
				if r.Add(guild, id, "owner") == nil {
					_ = r.MarkRenamed(id)
					_ = r.IndexOf(guild, id)
				}
				_ = r.List(guild)
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, 100, r.Len())
	seen := make(map[string]bool)
	for _, guild := range r.Guilds() {
		for _, id := range r.List(guild) {
			assert.False(t, seen[id], "channel %s tracked twice", id)
			seen[id] = true
		}
	}
	assert.Len(t, seen, 100)
}
