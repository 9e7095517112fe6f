package logger

import (
	"strconv"
	"strings"
	"time"
)

// Took returns the time since start rounded to milliseconds.
func Took(start time.Time) time.Duration {
	return RoundMS(time.Since(start))
}

// RoundMS rounds d to milliseconds; negative durations become zero.
func RoundMS(d time.Duration) time.Duration {
	return max(d, 0).Round(time.Millisecond)
}

// Preview joins at most limit values and notes how many were left out,
// e.g. "a, b (+3 more)".
func Preview(values []string, limit int) string {
	if len(values) <= limit {
		return strings.Join(values, ", ")
	}
	head := strings.Join(values[:max(limit, 0)], ", ")
	rest := "+" + strconv.Itoa(len(values)-max(limit, 0)) + " more"
	if head == "" {
		return rest
	}
	return head + " (" + rest + ")"
}
