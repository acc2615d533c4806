package generator

import (
	"context"
	"errors"

	"github.com/mmrzaf/dbfill/internal/domain"
)

type fkCall struct {
	table, column, refTable, refColumn string
	count                              int
	unique                             bool
	where                              string
}

// memConnector keeps rows in memory and records every call.
type memConnector struct {
	rows     map[string][]domain.Row
	fkValues map[string][]interface{}
	insertFn func(rows []domain.Row) int64
	failErr  error
	rawErr   map[string]error
	emptied  []string
	raw      []string
	inserts  [][]domain.Row
	fkCalls  []fkCall
}

func newMemConnector() *memConnector {
	return &memConnector{
		rows:     map[string][]domain.Row{},
		fkValues: map[string][]interface{}{},
		rawErr:   map[string]error{},
	}
}

func (m *memConnector) seed(table string, n int) {
	for i := 0; i < n; i++ {
		m.rows[table] = append(m.rows[table], domain.Row{})
	}
}

func (m *memConnector) CountLines(ctx context.Context, table string) (int64, error) {
	return int64(len(m.rows[table])), nil
}

func (m *memConnector) EmptyTable(ctx context.Context, table string) error {
	m.emptied = append(m.emptied, table)
	m.rows[table] = nil
	return nil
}

func (m *memConnector) ExecuteRawQuery(ctx context.Context, query string) error {
	m.raw = append(m.raw, query)
	return m.rawErr[query]
}

func (m *memConnector) GetValuesForForeignKeys(ctx context.Context, table, column, refTable, refColumn string, count int, unique bool, where string) ([]interface{}, error) {
	m.fkCalls = append(m.fkCalls, fkCall{table, column, refTable, refColumn, count, unique, where})
	pool := m.fkValues[refTable+"."+refColumn]
	if len(pool) == 0 {
		return nil, nil
	}
	if unique {
		if len(pool) > count {
			pool = pool[:count]
		}
		return append([]interface{}(nil), pool...), nil
	}
	out := make([]interface{}, count)
	for i := range out {
		out[i] = pool[i%len(pool)]
	}
	return out, nil
}

func (m *memConnector) Insert(ctx context.Context, table string, rows []domain.Row) (int64, error) {
	m.inserts = append(m.inserts, rows)
	n := int64(len(rows))
	if m.insertFn != nil {
		n = m.insertFn(rows)
	}
	m.rows[table] = append(m.rows[table], rows[:n]...)
	return n, m.failErr
}

func (m *memConnector) GetTablesInformation(ctx context.Context) ([]domain.TableInformation, error) {
	return nil, errors.New("not implemented")
}

func (m *memConnector) GetColumnsInformation(ctx context.Context, table string) ([]domain.ColumnInformation, error) {
	return nil, errors.New("not implemented")
}

func (m *memConnector) GetForeignKeys(ctx context.Context, table string) ([]domain.ForeignKeyInformation, error) {
	return nil, errors.New("not implemented")
}

func (m *memConnector) Destroy() error { return nil }

type event struct {
	kind            string
	current, target int64
	reason          error
}

type recordingReporter struct {
	events []event
}

func (r *recordingReporter) TableStarted(table string, current, target int64) {
	r.events = append(r.events, event{kind: "started", current: current, target: target})
}

func (r *recordingReporter) BatchInserted(table string, inserted, current, target int64) {
	r.events = append(r.events, event{kind: "batch", current: current, target: target})
}

func (r *recordingReporter) TableAborted(table string, current, target int64, reason error) {
	r.events = append(r.events, event{kind: "aborted", current: current, target: target, reason: reason})
}

func (r *recordingReporter) TableFinished(table string, current, target int64) {
	r.events = append(r.events, event{kind: "finished", current: current, target: target})
}

func (r *recordingReporter) count(kind string) int {
	n := 0
	for _, e := range r.events {
		if e.kind == kind {
			n++
		}
	}
	return n
}
