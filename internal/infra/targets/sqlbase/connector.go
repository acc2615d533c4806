// Package sqlbase implements connector.DatabaseConnector over database/sql.
// Engine differences live behind Dialect.
package sqlbase

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/Masterminds/squirrel"

	"github.com/mmrzaf/dbfill/internal/domain"
)

type Dialect interface {
	Name() string
	PlaceholderFormat() squirrel.PlaceholderFormat
	QuoteIdent(name string) string
	QuoteTable(name string) string
	RandomOrder() string
	// MaxParams is the bind parameter limit of a single statement.
	MaxParams() int
	IgnoreDuplicates(b squirrel.InsertBuilder) squirrel.InsertBuilder
	// InsertDefaults inserts one row made only of column defaults.
	InsertDefaults(table string) string

	ListTables(ctx context.Context, db *sql.DB) ([]domain.TableInformation, error)
	ListColumns(ctx context.Context, db *sql.DB, table string) ([]domain.ColumnInformation, error)
	ListForeignKeys(ctx context.Context, db *sql.DB, table string) ([]domain.ForeignKeyInformation, error)
}

type Connector struct {
	db      *sql.DB
	dialect Dialect
	qb      squirrel.StatementBuilderType
}

func New(db *sql.DB, dialect Dialect) *Connector {
	return &Connector{
		db:      db,
		dialect: dialect,
		qb:      squirrel.StatementBuilder.PlaceholderFormat(dialect.PlaceholderFormat()),
	}
}

// Open opens and pings a database with the given driver.
func Open(ctx context.Context, driverName, dsn string, dialect Dialect) (*Connector, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", dialect.Name(), err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", dialect.Name(), err)
	}
	return New(db, dialect), nil
}

func (c *Connector) DB() *sql.DB { return c.db }

func (c *Connector) CountLines(ctx context.Context, table string) (int64, error) {
	query, args, err := c.qb.Select("COUNT(*)").From(c.dialect.QuoteTable(table)).ToSql()
	if err != nil {
		return 0, err
	}
	var n int64
	if err := c.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows in table %s: %w", table, err)
	}
	return n, nil
}

// EmptyTable deletes every row. DELETE is used instead of TRUNCATE because
// TRUNCATE refuses tables referenced by foreign keys on MySQL and PostgreSQL.
func (c *Connector) EmptyTable(ctx context.Context, table string) error {
	query, args, err := c.qb.Delete(c.dialect.QuoteTable(table)).ToSql()
	if err != nil {
		return err
	}
	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to empty table %s: %w", table, err)
	}
	return nil
}

func (c *Connector) ExecuteRawQuery(ctx context.Context, query string) error {
	_, err := c.db.ExecContext(ctx, query)
	return err
}

func (c *Connector) GetValuesForForeignKeys(ctx context.Context, table, column, refTable, refColumn string, count int, unique bool, where string) ([]interface{}, error) {
	if count <= 0 {
		return nil, nil
	}
	ref := c.dialect.QuoteIdent(refColumn)
	sb := c.qb.Select(ref).From(c.dialect.QuoteTable(refTable))
	if unique {
		col := c.dialect.QuoteIdent(column)
		sb = sb.Where(fmt.Sprintf("%s NOT IN (SELECT %s FROM %s WHERE %s IS NOT NULL)", ref, col, c.dialect.QuoteTable(table), col))
	}
	if where != "" {
		sb = sb.Where("(" + where + ")")
	}
	sb = sb.OrderBy(c.dialect.RandomOrder()).Limit(uint64(count))

	query, args, err := sb.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := make([]interface{}, 0, count)
	for rows.Next() {
		var v interface{}
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan %s.%s: %w", refTable, refColumn, err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if unique || len(values) == 0 || len(values) == count {
		return values, nil
	}
	padded := make([]interface{}, count)
	for i := range padded {
		padded[i] = values[i%len(values)]
	}
	return padded, nil
}

// Insert writes rows with duplicate-ignoring statements, split so that no
// statement exceeds the dialect's bind parameter limit.
func (c *Connector) Insert(ctx context.Context, table string, rows []domain.Row) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	columns := rowColumns(rows[0])
	if len(columns) == 0 {
		return c.insertDefaults(ctx, table, len(rows))
	}

	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = c.dialect.QuoteIdent(col)
	}

	chunk := c.dialect.MaxParams() / len(columns)
	if chunk < 1 {
		return 0, fmt.Errorf("table %s has too many columns (%d) for one statement", table, len(columns))
	}

	var inserted int64
	for start := 0; start < len(rows); start += chunk {
		end := start + chunk
		if end > len(rows) {
			end = len(rows)
		}
		ib := c.qb.Insert(c.dialect.QuoteTable(table)).Columns(quoted...)
		for _, row := range rows[start:end] {
			values := make([]interface{}, len(columns))
			for i, col := range columns {
				values[i] = row[col]
			}
			ib = ib.Values(values...)
		}
		query, args, err := c.dialect.IgnoreDuplicates(ib).ToSql()
		if err != nil {
			return inserted, err
		}
		res, err := c.db.ExecContext(ctx, query, args...)
		if err != nil {
			return inserted, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("failed to read inserted row count: %w", err)
		}
		inserted += n
	}
	return inserted, nil
}

func (c *Connector) insertDefaults(ctx context.Context, table string, n int) (int64, error) {
	query := c.dialect.InsertDefaults(table)
	var inserted int64
	for i := 0; i < n; i++ {
		res, err := c.db.ExecContext(ctx, query)
		if err != nil {
			return inserted, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return inserted, err
		}
		inserted += affected
	}
	return inserted, nil
}

func rowColumns(row domain.Row) []string {
	cols := make([]string, 0, len(row))
	for col := range row {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

func (c *Connector) GetTablesInformation(ctx context.Context) ([]domain.TableInformation, error) {
	return c.dialect.ListTables(ctx, c.db)
}

func (c *Connector) GetColumnsInformation(ctx context.Context, table string) ([]domain.ColumnInformation, error) {
	return c.dialect.ListColumns(ctx, c.db, table)
}

func (c *Connector) GetForeignKeys(ctx context.Context, table string) ([]domain.ForeignKeyInformation, error) {
	return c.dialect.ListForeignKeys(ctx, c.db, table)
}

func (c *Connector) Destroy() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
