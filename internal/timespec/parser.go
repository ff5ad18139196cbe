// Package timespec turns user supplied time expressions into absolute times.
//
// Three grammars are accepted, tried in this order:
//  1. Relative offsets: "+10 hours", "+2 days", "+30 minutes"
//  2. Weekday names: "Monday" resolves to 09:00 on its next occurrence
//  3. Absolute timestamps: "2025-11-04 09:00", "2025-11-04T09:00:00"
//
// A spec starting with "+" is only ever parsed as a relative offset.
package timespec

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gitdelayed/internal/domain"
)

// relativeRe matches "+<n> <unit>" with an optional plural and optional space.
var relativeRe = regexp.MustCompile(`(?i)^\+(\d+)\s*(hours?|days?|minutes?)$`)

// weekdayHour is the time of day a bare weekday resolves to.
const weekdayHour = 9

var absoluteLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Parse resolves spec relative to now. The result is always strictly after now.
func Parse(spec string, now time.Time) (time.Time, error) {
	spec = strings.TrimSpace(spec)

	if strings.HasPrefix(spec, "+") {
		return ParseRelative(spec, now)
	}

	if t, err := ParseWeekday(spec, now); err == nil && t.After(now) {
		return t, nil
	}

	if t, err := ParseAbsolute(spec, now.Location()); err == nil {
		if !t.After(now) {
			return time.Time{}, fmt.Errorf("%w: %w: %s", domain.ErrInvalidTimeSpec, domain.ErrTimeInPast, spec)
		}
		return t, nil
	}

	return time.Time{}, fmt.Errorf("%w: couldn't parse %q, try: +10 hours, Monday, or 2025-11-04 09:00",
		domain.ErrInvalidTimeSpec, spec)
}

// ParseRelative parses "+<n> hour(s)|day(s)|minute(s)". n must be positive.
func ParseRelative(spec string, now time.Time) (time.Time, error) {
	matches := relativeRe.FindStringSubmatch(spec)
	if matches == nil {
		return time.Time{}, fmt.Errorf("%w: bad relative format %q, try: +10 hours", domain.ErrInvalidTimeSpec, spec)
	}

	amount, err := strconv.ParseInt(matches[1], 10, 32)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid amount %q", domain.ErrInvalidTimeSpec, matches[1])
	}
	if amount <= 0 {
		return time.Time{}, fmt.Errorf("%w: %w: %s resolves to now", domain.ErrInvalidTimeSpec, domain.ErrTimeInPast, spec)
	}

	var unit time.Duration
	switch u := strings.ToLower(matches[2]); {
	case strings.HasPrefix(u, "hour"):
		unit = time.Hour
	case strings.HasPrefix(u, "day"):
		unit = 24 * time.Hour
	default:
		unit = time.Minute
	}

	if amount > math.MaxInt64/int64(unit) {
		return time.Time{}, fmt.Errorf("%w: %s is too far in the future", domain.ErrInvalidTimeSpec, spec)
	}
	t := now.Add(time.Duration(amount) * unit)
	if !t.After(now) {
		return time.Time{}, fmt.Errorf("%w: %s is out of range", domain.ErrInvalidTimeSpec, spec)
	}
	return t, nil
}

// ParseWeekday resolves a weekday name to 09:00 on its next occurrence. On
// that same weekday the result is today only while it is still before 09:00.
func ParseWeekday(spec string, now time.Time) (time.Time, error) {
	target, ok := weekdays[strings.ToLower(spec)]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: unknown day %q", domain.ErrInvalidTimeSpec, spec)
	}

	daysAhead := (int(target) - int(now.Weekday()) + 7) % 7
	if daysAhead == 0 && now.Hour() >= weekdayHour {
		daysAhead = 7
	}

	return time.Date(now.Year(), now.Month(), now.Day()+daysAhead, weekdayHour, 0, 0, 0, now.Location()), nil
}

// ParseAbsolute parses spec against the accepted layouts in loc. The first
// layout that matches wins.
func ParseAbsolute(spec string, loc *time.Location) (time.Time, error) {
	for _, layout := range absoluteLayouts {
		if t, err := time.ParseInLocation(layout, spec, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: bad datetime format %q, try: 2025-11-04 09:00", domain.ErrInvalidTimeSpec, spec)
}
