package autochannel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateTransitions(t *testing.T) {
	s, err := Created(NonExistent{}, "alice")
	require.NoError(t, err)
	assert.Equal(t, Active{Owner: "alice"}, s)
	assert.True(t, s.(Active).Owned())

	s, err = OwnerTransferred(s, "bob")
	require.NoError(t, err)
	assert.Equal(t, Active{Owner: "bob"}, s)

	s, err = OwnerLost(s)
	require.NoError(t, err)
	assert.False(t, s.(Active).Owned())

	s, err = ManuallyRenamed(s)
	require.NoError(t, err)
	assert.True(t, s.(Active).ManuallyRenamed)

	// the flag survives later transitions
	s, err = OwnerTransferred(s, "carol")
	require.NoError(t, err)
	assert.Equal(t, Active{Owner: "carol", ManuallyRenamed: true}, s)

	s, err = ManuallyRenamed(s)
	require.NoError(t, err)
	assert.True(t, s.(Active).ManuallyRenamed)

	s, err = Removed(s)
	require.NoError(t, err)
	assert.Equal(t, Deleted{}, s)
}

func TestStateTransitions_Illegal(t *testing.T) {
	tests := []struct {
		name string
		fn   func() (CloneState, error)
	}{
		{"create twice", func() (CloneState, error) { return Created(Active{Owner: "a"}, "b") }},
		{"create after delete", func() (CloneState, error) { return Created(Deleted{}, "b") }},
		{"transfer unknown", func() (CloneState, error) { return OwnerTransferred(NonExistent{}, "b") }},
		{"transfer to nobody", func() (CloneState, error) { return OwnerTransferred(Active{Owner: "a"}, "") }},
		{"lose owner of deleted", func() (CloneState, error) { return OwnerLost(Deleted{}) }},
		{"rename unknown", func() (CloneState, error) { return ManuallyRenamed(NonExistent{}) }},
		{"remove twice", func() (CloneState, error) { return Removed(Deleted{}) }},
		{"remove unknown", func() (CloneState, error) { return Removed(NonExistent{}) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.fn()
			assert.ErrorIs(t, err, ErrIllegalTransition)
		})
	}
}

func TestActiveString(t *testing.T) {
	assert.Equal(t, "Active(owner=<none>, manuallyRenamed=false)", Active{}.String())
	assert.Equal(t, "Active(owner=a, manuallyRenamed=true)", Active{Owner: "a", ManuallyRenamed: true}.String())
}
