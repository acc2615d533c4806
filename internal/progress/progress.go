// Package progress renders table fill progress for people and for logs.
package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/mmrzaf/dbfill/internal/generator"
	"github.com/mmrzaf/dbfill/internal/logging"
)

type LogReporter struct {
	log *logging.Logger
}

func NewLogReporter(log *logging.Logger) *LogReporter {
	return &LogReporter{log: log.WithComponent("generator")}
}

func (r *LogReporter) TableStarted(table string, current, target int64) {
	r.log.Infow("table.started", map[string]any{"table": table, "current": current, "target": target})
}

func (r *LogReporter) BatchInserted(table string, inserted, current, target int64) {
	r.log.Debugw("table.batch", map[string]any{"table": table, "inserted": inserted, "current": current, "target": target})
}

func (r *LogReporter) TableAborted(table string, current, target int64, reason error) {
	r.log.Warnw("table.aborted", map[string]any{"table": table, "current": current, "target": target, "reason": reason})
}

func (r *LogReporter) TableFinished(table string, current, target int64) {
	r.log.Infow("table.finished", map[string]any{"table": table, "current": current, "target": target})
}

// ConsoleReporter prints one colored line per event.
type ConsoleReporter struct {
	out     io.Writer
	started map[string]time.Time
	now     func() time.Time

	title *color.Color
	info  *color.Color
	warn  *color.Color
	ok    *color.Color
}

func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{
		out:     out,
		started: make(map[string]time.Time),
		now:     time.Now,
		title:   color.New(color.FgCyan, color.Bold),
		info:    color.New(color.FgWhite),
		warn:    color.New(color.FgYellow),
		ok:      color.New(color.FgGreen),
	}
}

func (r *ConsoleReporter) TableStarted(table string, current, target int64) {
	r.started[table] = r.now()
	if current >= target {
		r.info.Fprintf(r.out, "%s: %d rows, nothing to do\n", table, current)
		return
	}
	r.title.Fprintf(r.out, "%s: %d -> %d rows\n", table, current, target)
}

func (r *ConsoleReporter) BatchInserted(table string, inserted, current, target int64) {
	r.info.Fprintf(r.out, "  %s %s +%d\n", table, bar(current, target, 30), inserted)
}

func (r *ConsoleReporter) TableAborted(table string, current, target int64, reason error) {
	r.warn.Fprintf(r.out, "  %s stopped at %d/%d: %v\n", table, current, target, reason)
}

func (r *ConsoleReporter) TableFinished(table string, current, target int64) {
	elapsed := r.now().Sub(r.started[table])
	delete(r.started, table)
	r.ok.Fprintf(r.out, "  %s done: %d/%d rows in %s\n", table, current, target, elapsed.Round(time.Millisecond))
}

func bar(current, target int64, width int) string {
	if target <= 0 {
		target = 1
	}
	filled := int(current * int64(width) / target)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	b := make([]byte, 0, width+2)
	b = append(b, '[')
	for i := 0; i < width; i++ {
		if i < filled {
			b = append(b, '#')
		} else {
			b = append(b, '.')
		}
	}
	b = append(b, ']')
	return fmt.Sprintf("%s %d/%d", b, current, target)
}

type multi []generator.Reporter

// Multi fans events out to every non-nil reporter.
func Multi(reporters ...generator.Reporter) generator.Reporter {
	out := make(multi, 0, len(reporters))
	for _, r := range reporters {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

func (m multi) TableStarted(table string, current, target int64) {
	for _, r := range m {
		r.TableStarted(table, current, target)
	}
}

func (m multi) BatchInserted(table string, inserted, current, target int64) {
	for _, r := range m {
		r.BatchInserted(table, inserted, current, target)
	}
}

func (m multi) TableAborted(table string, current, target int64, reason error) {
	for _, r := range m {
		r.TableAborted(table, current, target, reason)
	}
}

func (m multi) TableFinished(table string, current, target int64) {
	for _, r := range m {
		r.TableFinished(table, current, target)
	}
}
