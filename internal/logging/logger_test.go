package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	out := strings.TrimSpace(buf.String())
	if out == "" {
		return nil
	}
	var recs []map[string]any
	for _, line := range strings.Split(out, "\n") {
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("expected JSON log line %q: %v", line, err)
		}
		recs = append(recs, rec)
	}
	return recs
}

func TestLoggerComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter("info", &buf).WithComponent("generator")
	l.Infow("table.finished", map[string]any{"table": "users", "rows": 20})

	recs := decodeLines(t, &buf)
	if len(recs) != 1 {
		t.Fatalf("expected one record, got %d", len(recs))
	}
	rec := recs[0]
	for key, want := range map[string]any{
		"level":     "info",
		"msg":       "table.finished",
		"component": "generator",
		"table":     "users",
		"rows":      float64(20),
	} {
		if rec[key] != want {
			t.Fatalf("%s = %#v, want %#v", key, rec[key], want)
		}
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	cases := []struct {
		level string
		want  int
	}{
		{"debug", 4},
		{"info", 3},
		{"warn", 2},
		{"error", 1},
		{"bogus", 3},
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		l := NewLoggerWithWriter(tc.level, &buf)
		l.Debug("batch")
		l.Info("table")
		l.Warn("aborted")
		l.Error("failed")
		if got := len(decodeLines(t, &buf)); got != tc.want {
			t.Fatalf("level %q: got %d lines, want %d", tc.level, got, tc.want)
		}
	}
}

func TestLoggerErrorFieldAndPrintf(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter("debug", &buf)
	l.Warnw("table.aborted", map[string]any{"table": "orders", "reason": errors.New("stall")})
	l.Debug("filled %d rows", 5)

	recs := decodeLines(t, &buf)
	if len(recs) != 2 {
		t.Fatalf("expected two lines, got %d", len(recs))
	}
	if recs[0]["level"] != "warn" || recs[0]["reason"] != "stall" || recs[0]["table"] != "orders" {
		t.Fatalf("unexpected record: %#v", recs[0])
	}
	if recs[1]["msg"] != "filled 5 rows" {
		t.Fatalf("unexpected msg: %#v", recs[1]["msg"])
	}
}
