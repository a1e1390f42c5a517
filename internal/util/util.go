// Package util holds small helpers for host argument handling and display.
package util

import (
	"fmt"
	"strings"
)

// TrimQuotes removes leading and trailing double quotes from a string.
func TrimQuotes(s string) string {
	return strings.Trim(s, `"`)
}

// FixEscapeQuotes replaces escaped double quotes ("") with single double quotes (").
func FixEscapeQuotes(s string) string {
	return strings.ReplaceAll(s, `""`, `"`)
}

// CleanArgs trims the quoting the host wraps string arguments in. The input
// slice is not modified.
func CleanArgs(args []string) []string {
	out := make([]string, len(args))
	for i, v := range args {
		out[i] = FixEscapeQuotes(TrimQuotes(strings.TrimSpace(v)))
	}
	return out
}

// FormatCountdown renders a countdown the way it is drawn over a spawner:
// plain seconds up to a minute, M:SS above. Negative input renders as 0.
func FormatCountdown(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	if seconds <= 60 {
		return fmt.Sprintf("%d", seconds)
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
