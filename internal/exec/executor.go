// Package exec runs a whole schema against one database: tables are filled
// in dependency order and the outcome of each is collected into run stats.
package exec

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/mmrzaf/dbfill/internal/connector"
	"github.com/mmrzaf/dbfill/internal/domain"
	"github.com/mmrzaf/dbfill/internal/generator"
	"github.com/mmrzaf/dbfill/internal/random"
	"github.com/mmrzaf/dbfill/internal/registry"
	"github.com/mmrzaf/dbfill/internal/validation"
)

type Options struct {
	Seed  int64
	Reset bool
	// Tables restricts the run to these tables. Empty means every table.
	Tables []string
}

type Executor struct {
	genRegistry *registry.GeneratorRegistry
	reporter    generator.Reporter
	clock       func() time.Time
}

func NewExecutor(genRegistry *registry.GeneratorRegistry, reporter generator.Reporter) *Executor {
	if reporter == nil {
		reporter = generator.NopReporter{}
	}
	return &Executor{genRegistry: genRegistry, reporter: reporter, clock: time.Now}
}

// Order returns the tables to fill, referenced tables first, restricted to
// the filter when one is given.
func Order(schema *domain.Schema, tables []string) ([]string, error) {
	order, err := validation.TopologicalSort(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to sort tables: %w", err)
	}
	if len(tables) == 0 {
		return order, nil
	}

	wanted := make(map[string]bool, len(tables))
	for _, name := range tables {
		if schema.Table(name) == nil {
			return nil, fmt.Errorf("table %s is not part of the schema", name)
		}
		wanted[name] = true
	}
	filtered := make([]string, 0, len(tables))
	for _, name := range order {
		if wanted[name] {
			filtered = append(filtered, name)
		}
	}
	return filtered, nil
}

// Execute fills every selected table. Tables that abort are recorded and the
// run moves on; hook or connector failures stop the run. The stats gathered
// so far are returned alongside such an error.
func (e *Executor) Execute(ctx context.Context, schema *domain.Schema, conn connector.DatabaseConnector, opts Options) (*domain.RunStats, error) {
	order, err := Order(schema, opts.Tables)
	if err != nil {
		return nil, err
	}

	start := e.clock()
	stats := &domain.RunStats{
		TableStats: make([]domain.TableRunStats, 0, len(order)),
	}
	defer func() {
		stats.DurationSeconds = e.clock().Sub(start).Seconds()
	}()

	for _, name := range order {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		table := schema.Table(name)
		tableStart := e.clock()

		gen := generator.New(conn, random.New(tableSeed(opts.Seed, name)), e.reporter,
			generator.WithRegistry(e.genRegistry),
			generator.WithMaxCharLength(schema.EffectiveMaxCharLength()),
			generator.WithValuePools(schema.Values),
			generator.WithClock(e.clock),
		)
		res, err := gen.Fill(ctx, table, opts.Reset)
		if res != nil {
			addResult(stats, res, e.clock().Sub(tableStart))
		}
		if err != nil {
			return stats, err
		}
	}

	return stats, nil
}

func addResult(stats *domain.RunStats, res *generator.Result, elapsed time.Duration) {
	ts := domain.TableRunStats{
		TableName:       res.Table,
		RowsBefore:      res.RowsBefore,
		RowsAfter:       res.RowsAfter,
		Target:          res.Target,
		Batches:         res.Batches,
		DurationSeconds: elapsed.Seconds(),
	}
	if res.Aborted != nil {
		ts.Aborted = res.Aborted.Error()
		stats.TablesAborted++
	} else {
		stats.TablesFilled++
	}
	stats.TotalRows += ts.RowsInserted()
	stats.TableStats = append(stats.TableStats, ts)
}

// tableSeed gives every table its own stream so filling a subset of tables
// produces the same rows as a full run would for them.
func tableSeed(seed int64, table string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(table))
	return seed ^ int64(h.Sum64())
}
