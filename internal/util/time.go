package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseTimeFlexible accepts RFC3339 (with or without fractional seconds) or
// epoch milliseconds.
func ParseTimeFlexible(timeStr string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, timeStr)
	if err == nil {
		return t.UTC(), nil
	}

	ms, err := strconv.ParseInt(timeStr, 10, 64)
	if err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}

	return time.Time{}, fmt.Errorf("invalid time format: %s", timeStr)
}

// ParseTimeInput extends ParseTimeFlexible with "now" and "now-<duration>"
// (e.g. "now-1h", "now-7d"), relative to now.
func ParseTimeInput(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "now" {
		return now.UTC(), nil
	}
	if rest, ok := strings.CutPrefix(input, "now-"); ok {
		d, err := parseRelative(rest)
		if err != nil {
			return time.Time{}, err
		}
		return now.Add(-d).UTC(), nil
	}
	return ParseTimeFlexible(input)
}

func parseRelative(s string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid relative time: %s", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid relative time: %s", s)
	}
	return d, nil
}
