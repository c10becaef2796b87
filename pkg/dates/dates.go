// Package dates converts between the DD/MM/YYYY strings shown to employees and
// the ISO formats the API persists.
package dates

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DisplayLayout is the day-first layout used in forms and listings.
	DisplayLayout = "02/01/2006"

	// ISODateLayout is the calendar-date layout used in query parameters and payloads.
	ISODateLayout = "2006-01-02"
)

// isoLayouts are tried in order by ParseISO.
var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	ISODateLayout,
}

// ParseDisplay parses a DD/MM/YYYY string. Single-digit day and month are accepted.
func ParseDisplay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	t, err := time.Parse(DisplayLayout, s)
	if err == nil {
		return t, nil
	}
	if t, err2 := time.Parse("2/1/2006", s); err2 == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected DD/MM/YYYY: %w", s, err)
}

// FormatDisplay renders t as DD/MM/YYYY. The zero time renders as "".
func FormatDisplay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DisplayLayout)
}

// ParseISO parses an ISO date or timestamp, with or without a zone.
func ParseISO(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ISO date %q", s)
}

// FormatISODate renders the calendar date of t as YYYY-MM-DD.
func FormatISODate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(ISODateLayout)
}

// DisplayToISO converts "31/12/2024" to "2024-12-31".
func DisplayToISO(s string) (string, error) {
	t, err := ParseDisplay(s)
	if err != nil {
		return "", err
	}
	return FormatISODate(t), nil
}

// ISOToDisplay converts an ISO date or timestamp to DD/MM/YYYY.
// Empty input yields an empty string.
func ISOToDisplay(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	t, err := ParseISO(s)
	if err != nil {
		return "", err
	}
	return FormatDisplay(t), nil
}
