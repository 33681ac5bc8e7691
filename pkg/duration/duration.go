// Package duration parses and formats human-readable durations. It accepts
// everything time.ParseDuration does plus day, week, month, and year units,
// written short ("30d", "2w") or as words ("30 days", "2 weeks").
//
// Months are 30 days and years 365 days; both are approximations and are
// only meant for coarse settings such as cache retention.
package duration

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// Day is 24 hours.
	Day = 24 * time.Hour
	// Week is 7 days.
	Week = 7 * Day
	// Month is 30 days.
	Month = 30 * Day
	// Year is 365 days.
	Year = 365 * Day
)

// extendedHours maps day-and-larger unit spellings to their length in hours.
// Hours are the largest unit time.ParseDuration accepts, so extended units
// are folded into an hour total before delegating to it.
var extendedHours = map[string]int64{
	"y": 365 * 24, "yr": 365 * 24, "yrs": 365 * 24, "year": 365 * 24, "years": 365 * 24,
	"mo": 30 * 24, "mos": 30 * 24, "month": 30 * 24, "months": 30 * 24,
	"w": 7 * 24, "wk": 7 * 24, "wks": 7 * 24, "week": 7 * 24, "weeks": 7 * 24,
	"d": 24, "day": 24, "days": 24,
}

// wordUnits maps spelled-out sub-day units to the suffix ParseDuration knows.
var wordUnits = map[string]string{
	"hour": "h", "hours": "h", "hr": "h", "hrs": "h",
	"minute": "m", "minutes": "m", "min": "m", "mins": "m",
	"second": "s", "seconds": "s", "sec": "s", "secs": "s",
	"millisecond": "ms", "milliseconds": "ms", "milli": "ms", "millis": "ms",
	"microsecond": "us", "microseconds": "us", "micro": "us", "micros": "us",
	"nanosecond": "ns", "nanoseconds": "ns", "nano": "ns", "nanos": "ns",
}

// Whitespace between the number and the unit is optional in both patterns,
// so "30d", "30 d", and "30 days" are all accepted.
var (
	extendedPattern = regexp.MustCompile(`(?i)(\d+)\s*(years?|yrs?|y|months?|mos?|mo|weeks?|wks?|w|days?|d)`)
	wordPattern     = regexp.MustCompile(`(?i)(\d+)\s*(hours?|hrs?|minutes?|mins?|seconds?|secs?|milliseconds?|millis?|microseconds?|micros?|nanoseconds?|nanos?)`)
)

// Parse parses a human-readable duration string. Extended units (days,
// weeks, months, years) are converted to hours, spelled-out sub-day units
// are shortened, and the result is handed to time.ParseDuration.
func Parse(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("duration: empty string")
	}

	s = strings.TrimSpace(s)

	negative := strings.HasPrefix(s, "-")
	if negative {
		s = strings.TrimSpace(strings.TrimPrefix(s, "-"))
	}

	var hours int64
	rest := extendedPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := extendedPattern.FindStringSubmatch(match)
		if len(parts) == 3 {
			n, _ := strconv.ParseInt(parts[1], 10, 64)
			if mult, ok := extendedHours[strings.ToLower(parts[2])]; ok {
				hours += n * mult
			}
		}
		return ""
	})

	rest = wordPattern.ReplaceAllStringFunc(rest, func(match string) string {
		parts := wordPattern.FindStringSubmatch(match)
		if len(parts) == 3 {
			if unit, ok := wordUnits[strings.ToLower(parts[2])]; ok {
				return parts[1] + unit
			}
		}
		return match
	})

	// ParseDuration rejects interior whitespace.
	rest = strings.Join(strings.Fields(rest), "")

	combined := rest
	if hours > 0 {
		combined = fmt.Sprintf("%dh", hours) + rest
	}
	if combined == "" {
		combined = "0s"
	}

	d, err := time.ParseDuration(combined)
	if err != nil {
		return 0, fmt.Errorf("duration: %w", err)
	}
	if negative {
		d = -d
	}
	return d, nil
}

// Format renders a duration using the largest extended units that divide it
// (years, months, weeks, days); whatever remains below a day is rendered in
// time.Duration's standard notation. Format and Parse round-trip.
func Format(d time.Duration) string {
	if d == 0 {
		return "0s"
	}

	negative := d < 0
	if negative {
		d = -d
	}

	var b strings.Builder
	for _, unit := range []struct {
		span  time.Duration
		label string
	}{{Year, "y"}, {Month, "mo"}, {Week, "w"}, {Day, "d"}} {
		if n := d / unit.span; n > 0 {
			fmt.Fprintf(&b, "%d%s", n, unit.label)
			d -= n * unit.span
		}
	}

	if d > 0 || b.Len() == 0 {
		b.WriteString(d.String())
	}

	if negative {
		return "-" + b.String()
	}
	return b.String()
}
