// Package generator fills one table at a time: it computes the row target,
// samples foreign key pools, synthesizes rows and inserts them in batches
// until the target is reached or the run stalls.
package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mmrzaf/dbfill/internal/connector"
	"github.com/mmrzaf/dbfill/internal/domain"
	"github.com/mmrzaf/dbfill/internal/generators"
	"github.com/mmrzaf/dbfill/internal/random"
	"github.com/mmrzaf/dbfill/internal/registry"
)

// MaxBatchSize bounds the number of rows handed to a single insert.
const MaxBatchSize = 1000

const nullProbability = 0.1

var (
	// ErrForeignKeyStarvation aborts a table whose required foreign key has
	// no referenced values to draw from.
	ErrForeignKeyStarvation = errors.New("no referenced values for required foreign key")
	// ErrInsertionStall aborts a table when a batch adds no rows.
	ErrInsertionStall = errors.New("batch inserted no new rows")
)

type Generator struct {
	conn          connector.DatabaseConnector
	rng           *random.Randomizer
	reporter      Reporter
	registry      *registry.GeneratorRegistry
	maxCharLength int
	pools         map[string][]interface{}
	clock         func() time.Time
}

type Option func(*Generator)

func WithRegistry(r *registry.GeneratorRegistry) Option {
	return func(g *Generator) { g.registry = r }
}

func WithMaxCharLength(n int) Option {
	return func(g *Generator) { g.maxCharLength = n }
}

// WithValuePools sets the shared named pools that column values overrides
// may reference.
func WithValuePools(pools map[string][]interface{}) Option {
	return func(g *Generator) { g.pools = pools }
}

func WithClock(clock func() time.Time) Option {
	return func(g *Generator) { g.clock = clock }
}

func New(conn connector.DatabaseConnector, rng *random.Randomizer, reporter Reporter, opts ...Option) *Generator {
	if reporter == nil {
		reporter = NopReporter{}
	}
	g := &Generator{
		conn:          conn,
		rng:           rng,
		reporter:      reporter,
		registry:      registry.DefaultGeneratorRegistry(),
		maxCharLength: domain.DefaultMaxCharLength,
		clock:         time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Result describes how far a Fill call got.
type Result struct {
	Table      string
	RowsBefore int64
	RowsAfter  int64
	Target     int64
	Batches    int
	// Aborted is ErrForeignKeyStarvation or ErrInsertionStall (possibly
	// wrapped) when generation stopped before reaching Target.
	Aborted error
}

type columnPlan struct {
	col    *domain.Column
	gen    generators.Generator
	values []interface{}
	fkKey  string
}

// Fill brings table up to its target row count. With reset the table is
// emptied first. Before and after hooks run around generation; a failing hook
// or connector call is returned, while starvation and stalls only end the
// table early and are reported through Result.Aborted.
func (g *Generator) Fill(ctx context.Context, table *domain.Table, reset bool) (*Result, error) {
	plans, err := g.plan(table)
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", table.Name, err)
	}
	generators.SeedFaker(g.rng.Seed())

	if reset {
		if err := g.conn.EmptyTable(ctx, table.Name); err != nil {
			return nil, fmt.Errorf("failed to empty table %s: %w", table.Name, err)
		}
	}

	if err := g.runHooks(ctx, table.Before); err != nil {
		return nil, fmt.Errorf("table %s before hook: %w", table.Name, err)
	}

	current, err := g.conn.CountLines(ctx, table.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to count rows of %s: %w", table.Name, err)
	}

	res := &Result{
		Table:      table.Name,
		RowsBefore: current,
		RowsAfter:  current,
		Target:     table.Target(current),
	}
	g.reporter.TableStarted(table.Name, current, res.Target)

	if err := g.generate(ctx, table, plans, res); err != nil {
		return res, err
	}

	if err := g.runHooks(ctx, table.After); err != nil {
		return res, fmt.Errorf("table %s after hook: %w", table.Name, err)
	}

	if res.Aborted == nil {
		g.reporter.TableFinished(table.Name, res.RowsAfter, res.Target)
	}
	return res, nil
}

func (g *Generator) generate(ctx context.Context, table *domain.Table, plans []*columnPlan, res *Result) error {
	genCtx := generators.GeneratorContext{MaxCharLength: g.maxCharLength, Now: g.clock()}

	for res.RowsAfter < res.Target {
		batchSize := res.Target - res.RowsAfter
		if batchSize > MaxBatchSize {
			batchSize = MaxBatchSize
		}

		pools, size, err := g.resolveForeignKeys(ctx, table, plans, int(batchSize))
		if err != nil {
			if errors.Is(err, ErrForeignKeyStarvation) {
				g.abort(res, err)
				return nil
			}
			return err
		}

		rows := make([]domain.Row, size)
		for i := range rows {
			row, err := g.row(plans, pools, i, genCtx)
			if err != nil {
				return fmt.Errorf("table %s, row %d: %w", table.Name, i, err)
			}
			rows[i] = row
		}

		inserted, err := g.conn.Insert(ctx, table.Name, rows)
		if err != nil {
			res.RowsAfter += inserted
			return fmt.Errorf("failed to insert batch into %s: %w", table.Name, err)
		}

		previous := res.RowsAfter
		res.RowsAfter += inserted
		res.Batches++
		g.reporter.BatchInserted(table.Name, inserted, res.RowsAfter, res.Target)

		if res.RowsAfter == previous {
			g.abort(res, fmt.Errorf("%w: %s stuck at %d of %d rows", ErrInsertionStall, table.Name, res.RowsAfter, res.Target))
			return nil
		}
	}
	return nil
}

func (g *Generator) abort(res *Result, reason error) {
	res.Aborted = reason
	g.reporter.TableAborted(res.Table, res.RowsAfter, res.Target, reason)
}

func (g *Generator) plan(table *domain.Table) ([]*columnPlan, error) {
	plans := make([]*columnPlan, 0, len(table.Columns))
	for i := range table.Columns {
		col := &table.Columns[i]
		if col.Options.AutoIncrement {
			continue
		}
		p := &columnPlan{col: col}
		switch {
		case col.Values != nil:
			values, err := col.Values.Expand(g.pools)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", col.Name, err)
			}
			p.values = values
		case col.ForeignKey != nil:
			p.fkKey = foreignKeyPoolKey(col)
		default:
			gen, err := g.registry.Get(col.Generator)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", col.Name, err)
			}
			if err := gen.Validate(col); err != nil {
				return nil, fmt.Errorf("column %s: %w", col.Name, err)
			}
			p.gen = gen
		}
		plans = append(plans, p)
	}
	return plans, nil
}

func (g *Generator) row(plans []*columnPlan, pools map[string][]interface{}, index int, genCtx generators.GeneratorContext) (domain.Row, error) {
	row := make(domain.Row, len(plans))
	for _, p := range plans {
		var v interface{}
		switch {
		case p.values != nil:
			v = g.rng.Pick(p.values)
		case p.fkKey != "":
			if pool := pools[p.fkKey]; index < len(pool) {
				v = pool[index]
			}
		default:
			val, err := p.gen.Generate(g.rng, p.col, genCtx)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", p.col.Name, err)
			}
			v = val
		}
		if p.col.Options.Nullable && p.col.Generator != domain.GeneratorEnum && g.rng.Chance(nullProbability) {
			v = nil
		}
		row[p.col.Name] = v
	}
	return row, nil
}

func (g *Generator) runHooks(ctx context.Context, statements []string) error {
	for i, stmt := range statements {
		if err := g.conn.ExecuteRawQuery(ctx, stmt); err != nil {
			return fmt.Errorf("statement %d: %w", i+1, err)
		}
	}
	return nil
}
