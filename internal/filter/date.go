// Package filter implements the Filter/Sort Pipeline: the conjunction of
// scope, type-inclusion, agent, minimum-length, date-range, and home
// filters applied to the in-memory session set, merged with query
// ranking or time-sort ordering.
package filter

import (
	"time"

	"github.com/steeef/search-ui/internal/apperr"
)

// dateLayouts lists the accepted --after/--before input formats in the
// order they must be tried: for a shared separator, the 2-digit-year
// candidate precedes the 4-digit-year candidate, so "01/02/03" resolves
// as year 2003 rather than failing to match "01/02/2003"'s layout first
// and silently parsing a partial string.
var dateLayouts = []string{
	"20060102",
	"2006-01-02",
	"01/02/06",
	"01/02/2006",
	"01-02-06",
	"01-02-2006",
	"2006/01/02",
}

// ParseDate parses a flexible date input into its canonical YYYYMMDD
// form, trying each accepted layout in turn, plus the short MM/DD and
// MM-DD forms (which borrow the current year). Returns ok=false if no
// layout matches.
func ParseDate(input string, now time.Time) (canonical string, ok bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, input); err == nil {
			return t.Format("20060102"), true
		}
	}
	for _, layout := range []string{"01/02", "01-02"} {
		if t, err := time.Parse(layout, input); err == nil {
			t = time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return t.Format("20060102"), true
		}
	}
	return "", false
}

// DisplayDate renders a canonical YYYYMMDD value back to a short
// human-readable form, cached alongside the canonical form per spec.md
// §4.3 so the filter modal doesn't need to re-derive it every frame.
func DisplayDate(canonical string) string {
	t, err := time.Parse("20060102", canonical)
	if err != nil {
		return canonical
	}
	return t.Format("2006-01-02")
}

// CanonicalModified reduces an RFC3339 modified timestamp to its
// YYYYMMDD date component, for lexicographic comparison against
// after/before bounds.
func CanonicalModified(rfc3339 string) string {
	t, err := time.Parse(time.RFC3339, rfc3339)
	if err != nil {
		// Fall back to a string-prefix guess: most stored timestamps are
		// already date-prefixed even when not strictly RFC3339.
		if len(rfc3339) >= 10 && rfc3339[4] == '-' && rfc3339[7] == '-' {
			return rfc3339[0:4] + rfc3339[5:7] + rfc3339[8:10]
		}
		return ""
	}
	return t.Format("20060102")
}

// DateBound is a parsed date filter bound: the canonical comparison form
// plus the display form the filter modal shows back to the user.
type DateBound struct {
	Canonical string
	Display   string
}

// ParseBound parses a flexible date string into a DateBound, or returns
// an *apperr.DateParseFailure naming the raw input on failure.
func ParseBound(input string, now time.Time) (DateBound, error) {
	canonical, ok := ParseDate(input, now)
	if !ok {
		return DateBound{}, &apperr.DateParseFailure{Input: input}
	}
	return DateBound{Canonical: canonical, Display: DisplayDate(canonical)}, nil
}
