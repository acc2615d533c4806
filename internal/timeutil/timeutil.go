package timeutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01-02-2006",
}

var offsetUnits = map[byte]time.Duration{
	'd': 24 * time.Hour,
	'w': 7 * 24 * time.Hour,
}

// ParseOffset reads the unsigned part of a relative date bound. Besides
// everything time.ParseDuration understands it accepts whole days ("30d")
// and weeks ("2w").
func ParseOffset(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty offset")
	}
	if dur, err := time.ParseDuration(s); err == nil {
		return dur, nil
	}

	unit, ok := offsetUnits[s[len(s)-1]]
	if !ok {
		return 0, fmt.Errorf("unknown offset unit in %q", s)
	}
	n, err := strconv.ParseInt(s[:len(s)-1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid offset %q", s)
	}
	return time.Duration(n) * unit, nil
}

// ParseTime accepts an absolute date in one of the common SQL layouts, the
// literal "now", or a relative offset such as "-30d" or "+2w".
func ParseTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty time string")
	}
	if strings.EqualFold(s, "now") {
		return now, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	var sign time.Duration
	switch s[0] {
	case '-':
		sign = -1
	case '+':
		sign = 1
	default:
		return time.Time{}, fmt.Errorf("unrecognized date: %s", s)
	}
	dur, err := ParseOffset(s[1:])
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized date %s: %w", s, err)
	}
	return now.Add(sign * dur), nil
}
