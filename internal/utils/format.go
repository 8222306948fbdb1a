// Package utils holds small formatting helpers shared by the CLI.
package utils

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// FormatAge returns how long before now t was, e.g. "3h ago".
func FormatAge(t, now time.Time) string {
	if t.IsZero() {
		return "N/A"
	}

	const (
		day   = 24 * time.Hour
		week  = 7 * day
		month = 30 * day
		year  = 365 * day
	)

	since := now.Sub(t)
	switch {
	case since < 0:
		return "just now"
	case since < time.Minute:
		return fmt.Sprintf("%ds ago", int(since.Seconds()))
	case since < time.Hour:
		return fmt.Sprintf("%dm ago", int(since.Minutes()))
	case since < day:
		return fmt.Sprintf("%dh ago", int(since/time.Hour))
	case since < week:
		return fmt.Sprintf("%dd ago", int(since/day))
	case since < month:
		return fmt.Sprintf("%dw ago", int(since/week))
	case since < year:
		return fmt.Sprintf("%dmo ago", int(since/month))
	default:
		return fmt.Sprintf("%dy ago", int(since/year))
	}
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	if n <= 3 {
		return string([]rune(s)[:n])
	}
	return string([]rune(s)[:n-3]) + "..."
}
