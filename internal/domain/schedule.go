package domain

import (
	"strings"
	"time"
)

type SourceKind string

const (
	SourceKindSingle    SourceKind = "single"
	SourceKindRepeating SourceKind = "repeating"
)

type SelectionRule string

const (
	SelectionRuleEarliest SelectionRule = "earliest"
	SelectionRuleLatest   SelectionRule = "latest"
	SelectionRuleAnyPast  SelectionRule = "any_past"
)

// Record is the plain serialized form of a Schedule, used for the
// persisted collection blob and for export/import payloads. Field names
// are stable across versions.
type Record struct {
	Name              string `json:"name"`
	ContentType       string `json:"content_type"`
	CategoryAxis      string `json:"category_axis"`
	DateSource        string `json:"date_source"`
	SourceKind        string `json:"source_kind"`
	DateSubfield      string `json:"date_subfield"`
	DateSelectionRule string `json:"date_selection_rule"`
	UpcomingLabel     string `json:"upcoming_label"`
	PastLabel         string `json:"past_label"`
	TimeAware         bool   `json:"time_aware"`
}

// Schedule binds one content type's date field to a pair of labels on a
// category axis. Immutable once constructed; updating a stored schedule
// means constructing a new one and replacing the entry.
type Schedule struct {
	Name          string
	ContentType   string
	CategoryAxis  string
	DateSource    string
	SourceKind    SourceKind
	DateSubfield  string
	SelectionRule SelectionRule
	UpcomingLabel string
	PastLabel     string
	TimeAware     bool
}

// NewSchedule constructs a validated Schedule from untrusted input.
// String fields are trimmed; unknown source kinds and selection rules
// fall back to their defaults rather than failing.
func NewSchedule(rec Record) (Schedule, error) {
	s := Schedule{
		Name:          strings.TrimSpace(rec.Name),
		ContentType:   strings.TrimSpace(rec.ContentType),
		CategoryAxis:  strings.TrimSpace(rec.CategoryAxis),
		DateSource:    strings.TrimSpace(rec.DateSource),
		DateSubfield:  strings.TrimSpace(rec.DateSubfield),
		UpcomingLabel: strings.TrimSpace(rec.UpcomingLabel),
		PastLabel:     strings.TrimSpace(rec.PastLabel),
		TimeAware:     rec.TimeAware,
	}

	switch SourceKind(strings.TrimSpace(rec.SourceKind)) {
	case SourceKindRepeating:
		s.SourceKind = SourceKindRepeating
	default:
		s.SourceKind = SourceKindSingle
	}

	switch SelectionRule(strings.TrimSpace(rec.DateSelectionRule)) {
	case SelectionRuleLatest:
		s.SelectionRule = SelectionRuleLatest
	case SelectionRuleAnyPast:
		s.SelectionRule = SelectionRuleAnyPast
	default:
		s.SelectionRule = SelectionRuleEarliest
	}

	if s.Name == "" {
		return Schedule{}, validationError("name is required")
	}
	if s.ContentType == "" {
		return Schedule{}, validationError("content_type is required")
	}
	if s.CategoryAxis == "" {
		return Schedule{}, validationError("category_axis is required")
	}
	if s.DateSource == "" {
		return Schedule{}, validationError("date_source is required")
	}
	if s.UpcomingLabel == "" {
		return Schedule{}, validationError("upcoming_label is required")
	}
	if s.PastLabel == "" {
		return Schedule{}, validationError("past_label is required")
	}
	if s.SourceKind == SourceKindRepeating && s.DateSubfield == "" {
		return Schedule{}, validationError("date_subfield is required for repeating sources")
	}

	return s, nil
}

// Record returns the plain serialized form of the schedule.
func (s Schedule) Record() Record {
	return Record{
		Name:              s.Name,
		ContentType:       s.ContentType,
		CategoryAxis:      s.CategoryAxis,
		DateSource:        s.DateSource,
		SourceKind:        string(s.SourceKind),
		DateSubfield:      s.DateSubfield,
		DateSelectionRule: string(s.SelectionRule),
		UpcomingLabel:     s.UpcomingLabel,
		PastLabel:         s.PastLabel,
		TimeAware:         s.TimeAware,
	}
}

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

// ResolvedDate is the transient outcome of resolving a schedule's date
// source against one content item. The time carries its location.
type ResolvedDate struct {
	Time  time.Time
	Found bool
}
