// Package datekey normalizes caller-supplied dates into the canonical
// YYYY-MM-DD day key used across the counter tables.
package datekey

import (
	"fmt"
	"time"
)

// Layout is the canonical day key format.
const Layout = "2006-01-02"

// Accepted input layouts for explicit day strings. RFC 3339 inputs keep only
// the date part.
var layouts = []string{
	Layout,
	"2006/01/02",
	time.RFC3339,
}

// Today returns the current local calendar day of the serving process.
func Today() string {
	return time.Now().Format(Layout)
}

// FromString parses an explicit day string into a canonical day key.
func FromString(s string) (string, error) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(Layout), nil
		}
	}
	return "", fmt.Errorf("unrecognized day %q", s)
}

// FromParts builds a day key from year/month/day integers (month 1-based).
// Out-of-range parts like month 13 or day 32 are rejected, never rolled into
// the following month or year.
func FromParts(year, month, day int) (string, error) {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return "", fmt.Errorf("date out of range: year=%d month=%d day=%d", year, month, day)
	}
	return t.Format(Layout), nil
}

// Resolve returns the day key for an optional day string, defaulting to the
// current local day when none is given.
func Resolve(day string) (string, error) {
	if day == "" {
		return Today(), nil
	}
	return FromString(day)
}
