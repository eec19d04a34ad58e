package transitions

import (
	"context"
	"time"

	"termshift/internal/domain"
	"termshift/internal/store"
)

// DefaultBuffer is the grace interval applied to non-time-aware batch
// transitions: the item stays upcoming until the calendar day after its
// date plus the buffer has fully elapsed.
const DefaultBuffer = 24 * time.Hour

// Engine decides which of a schedule's two labels an item should hold
// and applies the decision through the label assigner.
type Engine struct {
	labels store.LabelAssigner
	buffer time.Duration
	loc    *time.Location
}

func NewEngine(labels store.LabelAssigner, buffer time.Duration, loc *time.Location) *Engine {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{labels: labels, buffer: buffer, loc: loc}
}

// Decide returns the label the item should hold right now: the past
// label iff the date has passed, with no buffer. Used by the on-save
// path to set the initial state.
func (e *Engine) Decide(date, now time.Time, sched domain.Schedule) string {
	if e.isPast(date, now, sched.TimeAware) {
		return sched.PastLabel
	}
	return sched.UpcomingLabel
}

// ShouldTransition reports whether a batch run may move the item to the
// past label. Time-aware schedules compare instants exactly; date-only
// schedules add the buffer before truncating to midnight, so a date
// never transitions on the day it passes.
func (e *Engine) ShouldTransition(date, now time.Time, timeAware bool) bool {
	if timeAware {
		return date.Before(now)
	}
	return e.dayStart(date.Add(e.buffer)).Before(e.dayStart(now))
}

func (e *Engine) isPast(date, now time.Time, timeAware bool) bool {
	if timeAware {
		return date.Before(now)
	}
	return e.dayStart(date).Before(e.dayStart(now))
}

// dayStart truncates to midnight in the engine's timezone.
func (e *Engine) dayStart(t time.Time) time.Time {
	t = t.In(e.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, e.loc)
}

// Apply sets exactly the given label on the item's axis, replacing
// whatever was there. Safe to repeat.
func (e *Engine) Apply(ctx context.Context, itemID int64, axis, label string) error {
	return e.labels.SetExclusiveLabel(ctx, itemID, axis, label)
}
