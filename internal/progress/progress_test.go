package progress

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmrzaf/dbfill/internal/logging"
)

func TestConsoleReporter(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	r.now = func() time.Time {
		calls++
		return start.Add(time.Duration(calls-1) * 1500 * time.Millisecond)
	}

	r.TableStarted("users", 0, 10)
	r.BatchInserted("users", 5, 5, 10)
	r.TableAborted("users", 5, 10, errors.New("batch inserted no new rows"))
	r.TableFinished("users", 5, 10)

	out := buf.String()
	assert.Contains(t, out, "users: 0 -> 10 rows")
	assert.Contains(t, out, "[###############...............] 5/10 +5")
	assert.Contains(t, out, "stopped at 5/10: batch inserted no new rows")
	assert.Contains(t, out, "done: 5/10 rows in 1.5s")
}

func TestConsoleReporter_NothingToDo(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	r := NewConsoleReporter(&buf)
	r.TableStarted("users", 12, 10)
	assert.Equal(t, "users: 12 rows, nothing to do\n", buf.String())
}

func TestBar_Clamps(t *testing.T) {
	assert.Equal(t, "[####] 9/4", bar(9, 4, 4))
	assert.Equal(t, "[....] 0/0", bar(0, 0, 4))
}

func TestMulti_FansOut(t *testing.T) {
	color.NoColor = true
	var console, logs bytes.Buffer
	r := Multi(NewConsoleReporter(&console), nil, NewLogReporter(logging.NewLoggerWithWriter("info", &logs)))

	r.TableStarted("orders", 0, 3)
	r.TableAborted("orders", 0, 3, errors.New("no referenced values"))

	assert.Contains(t, console.String(), "orders: 0 -> 3 rows")

	lines := strings.Split(strings.TrimSpace(logs.String()), "\n")
	require.Len(t, lines, 2)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &rec))
	assert.Equal(t, "table.aborted", rec["msg"])
	assert.Equal(t, "generator", rec["component"])
	assert.Equal(t, "no referenced values", rec["reason"])
}
