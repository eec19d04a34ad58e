package domain

import (
	"sort"
	"time"
)

// SelectDate picks one date out of a repeating source's parsed dates
// according to the schedule's selection rule. Ties between equal dates
// resolve by input order via a stable sort.
func SelectDate(dates []time.Time, rule SelectionRule, now time.Time) (time.Time, bool) {
	if len(dates) == 0 {
		return time.Time{}, false
	}

	switch rule {
	case SelectionRuleAnyPast:
		// First date at or before now wins, in input order. With no
		// past dates, fall back to the earliest of the full set.
		for _, d := range dates {
			if !d.After(now) {
				return d, true
			}
		}
		return earliest(dates), true
	case SelectionRuleLatest:
		sorted := sortedCopy(dates)
		return sorted[len(sorted)-1], true
	default:
		return earliest(dates), true
	}
}

func earliest(dates []time.Time) time.Time {
	return sortedCopy(dates)[0]
}

func sortedCopy(dates []time.Time) []time.Time {
	out := make([]time.Time, len(dates))
	copy(out, dates)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
