package filter

import (
	"errors"
	"testing"
	"time"

	"github.com/steeef/search-ui/internal/apperr"
)

func TestParseDate(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		input string
		want  string
		ok    bool
	}{
		{"20251129", "20251129", true},
		{"2025-11-29", "20251129", true},
		{"11/29/25", "20251129", true},
		{"11/29/2025", "20251129", true},
		{"11-29-25", "20251129", true},
		{"11-29-2025", "20251129", true},
		{"2025/11/29", "20251129", true},
		{"not-a-date", "", false},
	}
	for _, c := range cases {
		got, ok := ParseDate(c.input, now)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("ParseDate(%q) = %q, %v; want %q, %v", c.input, got, ok, c.want, c.ok)
		}
	}
}

// TestParseDateShortFormBorrowsCurrentYear covers the MM/DD and MM-DD
// short forms, which use now's year.
func TestParseDateShortFormBorrowsCurrentYear(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	for _, input := range []string{"11/29", "11-29"} {
		got, ok := ParseDate(input, now)
		if !ok || got != "20261129" {
			t.Errorf("ParseDate(%q) = %q, %v; want 20261129, true", input, got, ok)
		}
	}
}

// TestParseDateTwoDigitYearPrecedence guards the ordering spec.md calls
// out explicitly: for the "/" separator, the 2-digit-year candidate must
// be tried before the 4-digit-year candidate, or "11/29/25" misparses.
func TestParseDateTwoDigitYearPrecedence(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	got, ok := ParseDate("01/02/03", now)
	if !ok {
		t.Fatalf("ParseDate(01/02/03) failed to parse")
	}
	if got != "20030102" {
		t.Errorf("ParseDate(01/02/03) = %q, want 20030102 (year 2003, not 0003 or 0011)", got)
	}
}

func TestCanonicalModified(t *testing.T) {
	got := CanonicalModified("2026-07-31T10:15:00Z")
	if got != "20260731" {
		t.Errorf("CanonicalModified = %q, want 20260731", got)
	}
}

func TestDisplayDate(t *testing.T) {
	got := DisplayDate("20260731")
	if got != "2026-07-31" {
		t.Errorf("DisplayDate = %q, want 2026-07-31", got)
	}
}

func TestParseBoundRejectsUnrecognizedDate(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	_, err := ParseBound("not-a-date", now)
	if err == nil {
		t.Fatal("ParseBound(not-a-date) returned nil error, want DateParseFailure")
	}
	var dateErr *apperr.DateParseFailure
	if !errors.As(err, &dateErr) {
		t.Fatalf("ParseBound error = %v, want *apperr.DateParseFailure", err)
	}
	if dateErr.Input != "not-a-date" {
		t.Errorf("DateParseFailure.Input = %q, want %q", dateErr.Input, "not-a-date")
	}
}

func TestParseBoundAcceptsRecognizedDate(t *testing.T) {
	now := time.Date(2026, 7, 31, 0, 0, 0, 0, time.UTC)
	b, err := ParseBound("2025-11-29", now)
	if err != nil {
		t.Fatalf("ParseBound returned unexpected error: %v", err)
	}
	if b.Canonical != "20251129" || b.Display != "2025-11-29" {
		t.Errorf("ParseBound = %+v, want Canonical=20251129 Display=2025-11-29", b)
	}
}
