package domain

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSelectDate_Empty(t *testing.T) {
	if _, ok := SelectDate(nil, SelectionRuleEarliest, time.Now()); ok {
		t.Fatalf("selection over empty set succeeded")
	}
}

func TestSelectDate_EarliestAndLatest(t *testing.T) {
	dates := []time.Time{
		day(2025, 6, 1),
		day(2025, 3, 1),
		day(2025, 9, 1),
	}

	got, ok := SelectDate(dates, SelectionRuleEarliest, day(2025, 1, 1))
	if !ok || !got.Equal(day(2025, 3, 1)) {
		t.Fatalf("earliest = %v, want 2025-03-01", got)
	}

	got, ok = SelectDate(dates, SelectionRuleLatest, day(2025, 1, 1))
	if !ok || !got.Equal(day(2025, 9, 1)) {
		t.Fatalf("latest = %v, want 2025-09-01", got)
	}
}

func TestSelectDate_AnyPastReturnsFirstPastInInputOrder(t *testing.T) {
	// 2099 comes first in input order and is the overall earliest
	// candidate only among future dates; the past one must win.
	dates := []time.Time{
		day(2025, 3, 1),
		day(2099, 1, 1),
	}
	now := day(2025, 6, 1)

	got, ok := SelectDate(dates, SelectionRuleAnyPast, now)
	if !ok || !got.Equal(day(2025, 3, 1)) {
		t.Fatalf("any_past = %v, want 2025-03-01", got)
	}

	// With two past dates the first by input order wins, not the
	// chronological minimum.
	dates = []time.Time{
		day(2025, 5, 1),
		day(2025, 3, 1),
	}
	got, ok = SelectDate(dates, SelectionRuleAnyPast, now)
	if !ok || !got.Equal(day(2025, 5, 1)) {
		t.Fatalf("any_past = %v, want 2025-05-01 (input order)", got)
	}
}

func TestSelectDate_AnyPastFallsBackToEarliest(t *testing.T) {
	dates := []time.Time{
		day(2100, 1, 1),
		day(2099, 1, 1),
	}
	now := day(2025, 6, 1)

	got, ok := SelectDate(dates, SelectionRuleAnyPast, now)
	if !ok || !got.Equal(day(2099, 1, 1)) {
		t.Fatalf("any_past fallback = %v, want 2099-01-01", got)
	}
}

func TestSelectDate_AnyPastAtNowCountsAsPast(t *testing.T) {
	now := day(2025, 6, 1)
	dates := []time.Time{now, day(2099, 1, 1)}

	got, ok := SelectDate(dates, SelectionRuleAnyPast, now)
	if !ok || !got.Equal(now) {
		t.Fatalf("any_past = %v, want %v (at-or-before)", got, now)
	}
}

func TestSelectDate_DoesNotReorderInput(t *testing.T) {
	dates := []time.Time{
		day(2025, 6, 1),
		day(2025, 3, 1),
	}
	if _, ok := SelectDate(dates, SelectionRuleLatest, day(2025, 1, 1)); !ok {
		t.Fatalf("selection failed")
	}
	if !dates[0].Equal(day(2025, 6, 1)) {
		t.Fatalf("input slice was reordered")
	}
}
