package domain

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// dateLayouts are tried in order against zone-less literal values. Go's
// parser rejects out-of-range components (a month of 13 fails rather
// than pattern-matching), which gives each attempt real calendar
// validation for free.
var dateLayouts = []string{
	"20060102",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"20060102 15:04:05",
	"02/01/2006",
	"02/01/2006 15:04:05",
	"01/02/2006",
	"01/02/2006 15:04:05",
	"02-01-2006",
	"01-02-2006",
	"2006/01/02",
	"2006/01/02 15:04:05",
}

// ParseDate interprets a raw field value as a point in time. Literal
// layouts are tried first, in priority order; values that match none of
// them go through a permissive natural-language parse. Values without
// explicit zone information are interpreted in loc.
func ParseDate(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}

	t, err := dateparse.ParseIn(raw, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// LocationFromSettings resolves the deployment timezone: a named zone if
// one is configured and loadable, otherwise a fixed zone built from a
// UTC offset in (possibly fractional) hours, named as ±HH:MM.
func LocationFromSettings(zoneName string, offsetHours float64) *time.Location {
	zoneName = strings.TrimSpace(zoneName)
	if zoneName != "" {
		if loc, err := time.LoadLocation(zoneName); err == nil {
			return loc
		}
	}

	if offsetHours == 0 {
		return time.UTC
	}

	sign := "+"
	abs := offsetHours
	if abs < 0 {
		sign = "-"
		abs = -abs
	}
	hours := int(abs)
	minutes := int(math.Round((abs - float64(hours)) * 60))
	if minutes == 60 {
		hours++
		minutes = 0
	}

	name := fmt.Sprintf("%s%02d:%02d", sign, hours, minutes)
	seconds := hours*3600 + minutes*60
	if sign == "-" {
		seconds = -seconds
	}
	return time.FixedZone(name, seconds)
}
