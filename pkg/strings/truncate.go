package strings

import (
	"strings"
)

// DefaultDescriptionMaxLen is the default maximum length for descriptions in formatted output.
const DefaultDescriptionMaxLen = 60

// MinTruncateLen is the minimum maxLen value for TruncateDescription.
// Values smaller than this would not leave room for meaningful content plus "...".
const MinTruncateLen = 4

// TruncateDescription truncates a string to maxLen characters and ensures single-line output.
// It collapses all whitespace runs into single spaces and adds "..." if truncated.
//
// The function operates on runes rather than bytes, so multi-byte characters
// are never split. maxLen is clamped to MinTruncateLen.
func TruncateDescription(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	return Abbreviate(s, "...", max(maxLen, MinTruncateLen))
}

// Abbreviate shortens s to at most maxLen runes. When s is longer, the tail
// is cut and marker is appended so that the result is exactly maxLen runes.
//
//	Abbreviate("#1 [Team Fortress 2, ...]", "...]", 10) == "#1 [Te...]"
//
// If maxLen cannot hold the marker plus one rune of content it is raised
// to that minimum.
func Abbreviate(s, marker string, maxLen int) string {
	markerRunes := []rune(marker)
	if maxLen < len(markerRunes)+1 {
		maxLen = len(markerRunes) + 1
	}

	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-len(markerRunes)]) + marker
}
