package autochannel

import (
	"fmt"
	"sort"
	"strings"

	pkgstrings "eclipse/pkg/strings"
)

const (
	// DefaultLabel is used when a guild has no configured fallback label.
	DefaultLabel = "General"

	// MaxNameLength is the platform's channel name limit in characters.
	MaxNameLength = 100

	// maxActivities is how many activity names appear in a label.
	maxActivities = 3

	abbreviationMarker = "...]"
)

// activityCount is an activity name with the number of members doing it.
type activityCount struct {
	name  string
	count int
}

// Synthesize computes the label of an auto-channel from its members.
//
// Bots and custom statuses are ignored. The remaining activities are
// counted by name and ordered by count, most frequent first, with ties
// broken lexicographically. The top three form the body; without any
// activity the fallback label is used ("General" when empty). The result
// is "#<index+1> [body]", abbreviated to MaxNameLength characters with a
// trailing "...]".
func Synthesize(members []Member, index int, fallback string) string {
	activities := rankActivities(members)

	var body string
	if len(activities) == 0 {
		if fallback == "" {
			fallback = DefaultLabel
		}
		body = "[" + fallback + "]"
	} else {
		names := make([]string, 0, maxActivities)
		for i := 0; i < len(activities) && i < maxActivities; i++ {
			names = append(names, activities[i].name)
		}
		body = "[" + strings.Join(names, ", ") + "]"
	}

	label := fmt.Sprintf("#%d %s", index+1, body)
	return pkgstrings.Abbreviate(label, abbreviationMarker, MaxNameLength)
}

func rankActivities(members []Member) []activityCount {
	counts := make(map[string]int)
	for _, m := range members {
		if m.Bot {
			continue
		}
		for _, a := range m.Activities {
			if a.Type == ActivityCustomStatus {
				continue
			}
			counts[a.Name]++
		}
	}

	ranked := make([]activityCount, 0, len(counts))
	for name, count := range counts {
		ranked = append(ranked, activityCount{name: name, count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].name < ranked[j].name
	})
	return ranked
}
