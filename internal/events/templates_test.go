package events

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReasonEngine_Defaults(t *testing.T) {
	engine := MustReasonEngine()

	tests := []struct {
		name     string
		reason   Reason
		data     ReasonData
		expected string
	}{
		{
			name:     "clone created",
			reason:   ReasonCloneCreated,
			data:     ReasonData{Actor: "alice"},
			expected: "New auto-channel created by alice",
		},
		{
			name:     "owner left with successor",
			reason:   ReasonOwnerLeft,
			data:     ReasonData{Actor: "alice", NewOwner: "bob"},
			expected: "Channel owner alice has left their channel, designating bob as the new owner",
		},
		{
			name:     "owner left without successor",
			reason:   ReasonOwnerLeft,
			data:     ReasonData{Actor: "alice"},
			expected: "Channel owner alice has left their channel",
		},
		{
			name:     "property synced is lowercased",
			reason:   ReasonPropertySynced,
			data:     ReasonData{Property: "Bitrate"},
			expected: "Synced property bitrate with root channel",
		},
		{
			name:     "rename quotes the label",
			reason:   ReasonRenamed,
			data:     ReasonData{Label: "#1 [General]"},
			expected: `Auto-channel renamed to "#1 [General]"`,
		},
		{
			name:     "unknown reason falls back to its name",
			reason:   Reason("Mystery"),
			expected: "Mystery",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, engine.Render(tt.reason, tt.data))
		})
	}
}

func TestReasonEngine_EveryReasonHasTemplate(t *testing.T) {
	engine := MustReasonEngine()
	for _, reason := range Reasons {
		assert.NotEqual(t, string(reason), engine.Render(reason, ReasonData{Actor: "a"}), reason)
	}
}

func TestNewReasonEngine_Overrides(t *testing.T) {
	engine, err := NewReasonEngine(map[string]string{
		"CloneCreated": "Opened for {{.Actor | upper}}",
	})
	require.NoError(t, err)

	assert.Equal(t, "Opened for ALICE", engine.Render(ReasonCloneCreated, ReasonData{Actor: "alice"}))
	assert.Equal(t, "Every member has left the auto-channel", engine.Render(ReasonCloneEmpty, ReasonData{}))
}

func TestNewReasonEngine_InvalidOverrides(t *testing.T) {
	_, err := NewReasonEngine(map[string]string{
		"CloneCreated": "{{.Actor",
		"NoSuchReason": "x",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CloneCreated")
	assert.Contains(t, err.Error(), "NoSuchReason")
}

func TestReasonEngine_TruncatesLongReasons(t *testing.T) {
	engine := MustReasonEngine()
	out := engine.Render(ReasonCloneCreated, ReasonData{Actor: strings.Repeat("x", 2*MaxReasonLength)})

	assert.Len(t, []rune(out), MaxReasonLength)
	assert.True(t, strings.HasSuffix(out, "..."))
}
