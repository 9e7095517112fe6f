package helpers

import (
	"strings"
	"time"
)

// EventDateLayout is day/month/year hour:minute:second. Every component
// except the year may be written with one digit.
const EventDateLayout = "2/1/2006 15:4:5"

// EventDateExample is shown to users when a date is rejected.
const EventDateExample = "25/12/2025 18:00:00"

// ParseEventDateTime parses "25/12/2025 18:00:00" in loc (UTC when nil).
func ParseEventDateTime(input string, loc *time.Location) (time.Time, bool) {
	s := strings.TrimSpace(input)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(EventDateLayout, s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatEventRange renders "25 December, from 18:00 to 20:30" in loc.
func FormatEventRange(start, end time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	start, end = start.In(loc), end.In(loc)
	return start.Format("2 January") + ", from " + start.Format("15:04") + " to " + end.Format("15:04")
}
