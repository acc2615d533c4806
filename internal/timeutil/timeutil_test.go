package timeutil

import (
	"testing"
	"time"
)

func TestParseOffset(t *testing.T) {
	cases := map[string]time.Duration{
		"3d":  72 * time.Hour,
		"2w":  14 * 24 * time.Hour,
		"90m": 90 * time.Minute,
		"0d":  0,
	}
	for in, want := range cases {
		got, err := ParseOffset(in)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", in, err)
		}
		if got != want {
			t.Fatalf("%q: expected %v, got %v", in, want, got)
		}
	}

	for _, bad := range []string{"", "5y", "xd", "d"} {
		if _, err := ParseOffset(bad); err == nil {
			t.Fatalf("%q: expected error", bad)
		}
	}
}

func TestParseTime(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	cases := map[string]time.Time{
		"2020-01-02":           time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC),
		"2020-01-02 03:04:05":  time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC),
		"2020-01-02T03:04:05Z": time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC),
		"01-31-1999":           time.Date(1999, 1, 31, 0, 0, 0, 0, time.UTC),
		"now":                  now,
		"-1d":                  now.Add(-24 * time.Hour),
		"+1w":                  now.Add(7 * 24 * time.Hour),
		"-36h":                 now.Add(-36 * time.Hour),
	}
	for in, want := range cases {
		got, err := ParseTime(in, now)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", in, err)
		}
		if !got.Equal(want) {
			t.Fatalf("%q: expected %v, got %v", in, want, got)
		}
	}

	for _, bad := range []string{"yesterday", "-", "+3y"} {
		if _, err := ParseTime(bad, now); err == nil {
			t.Fatalf("%q: expected error", bad)
		}
	}
}
