package generator

import (
	"context"
	"fmt"

	"github.com/mmrzaf/dbfill/internal/domain"
)

func foreignKeyPoolKey(col *domain.Column) string {
	return fmt.Sprintf("%s_%s_%s", col.Name, col.ForeignKey.Table, col.ForeignKey.Column)
}

// resolveForeignKeys samples a fresh pool for every foreign key column of the
// batch. It returns the pools and the number of rows the batch can hold: a
// unique pool smaller than the batch shrinks the batch to the pool size. A
// nullable column whose pool comes back empty is left without a pool and its
// rows get NULL.
func (g *Generator) resolveForeignKeys(ctx context.Context, table *domain.Table, plans []*columnPlan, batchSize int) (map[string][]interface{}, int, error) {
	pools := make(map[string][]interface{})
	size := batchSize
	for _, p := range plans {
		if p.fkKey == "" {
			continue
		}
		col := p.col
		fk := col.ForeignKey
		values, err := g.conn.GetValuesForForeignKeys(ctx, table.Name, col.Name, fk.Table, fk.Column, batchSize, col.Options.Unique, fk.Where)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to fetch values of %s.%s for %s.%s: %w", fk.Table, fk.Column, table.Name, col.Name, err)
		}
		if len(values) == 0 {
			if !col.Options.Nullable {
				return nil, 0, fmt.Errorf("%w: %s.%s references %s.%s", ErrForeignKeyStarvation, table.Name, col.Name, fk.Table, fk.Column)
			}
			continue
		}
		if col.Options.Unique && len(values) < size {
			size = len(values)
		}
		pools[p.fkKey] = values
	}
	return pools, size, nil
}
