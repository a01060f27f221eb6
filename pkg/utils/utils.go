package utils

import (
	"time"
)

const DateLayout = "2006-01-02"

// ParseDate parses a strict "YYYY-MM-DD" string as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, loc)
}

// FormatDate renders a date-only string, dropping any time component.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// NormalizeDateString reduces either a "YYYY-MM-DD" string or a full
// timestamp string to its date-only prefix. The wire contract allows
// both encodings on output, so consumers normalize before comparing.
func NormalizeDateString(s string) string {
	if len(s) > len(DateLayout) {
		return s[:len(DateLayout)]
	}
	return s
}

// StartOfDay truncates t to local midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfNextMonth returns midnight on the first day of the month after t.
func StartOfNextMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location())
}
