package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"github.com/mmrzaf/dbfill/internal/domain"
	"github.com/mmrzaf/dbfill/internal/infra/targets/sqlbase"
)

const defaultSchema = "public"

// Dialect targets one PostgreSQL schema; tables are always schema-qualified.
type Dialect struct {
	Schema string
}

func NewDialect(schema string) Dialect {
	if schema == "" {
		schema = defaultSchema
	}
	return Dialect{Schema: schema}
}

func (Dialect) Name() string { return "postgres" }

func (Dialect) PlaceholderFormat() squirrel.PlaceholderFormat { return squirrel.Dollar }

func (Dialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d Dialect) QuoteTable(name string) string {
	return d.QuoteIdent(d.Schema) + "." + d.QuoteIdent(name)
}

func (Dialect) RandomOrder() string { return "RANDOM()" }

func (Dialect) MaxParams() int { return 65535 }

func (Dialect) IgnoreDuplicates(b squirrel.InsertBuilder) squirrel.InsertBuilder {
	return b.Suffix("ON CONFLICT DO NOTHING")
}

func (d Dialect) InsertDefaults(table string) string {
	return fmt.Sprintf("INSERT INTO %s DEFAULT VALUES ON CONFLICT DO NOTHING", d.QuoteTable(table))
}

func (d Dialect) ListTables(ctx context.Context, db *sql.DB) ([]domain.TableInformation, error) {
	q := squirrel.Select("table_name").
		From("information_schema.tables").
		Where(squirrel.Eq{"table_schema": d.Schema, "table_type": "BASE TABLE"}).
		OrderBy("table_name").
		PlaceholderFormat(squirrel.Dollar)
	return sqlbase.QueryTables(ctx, db, q)
}

// columnKey reports PRI for primary key columns and UNI for columns carrying
// a single-column unique constraint, mirroring MySQL's COLUMN_KEY.
const columnKey = `COALESCE((
	SELECT CASE WHEN tc.constraint_type = 'PRIMARY KEY' THEN 'PRI' ELSE 'UNI' END
	FROM information_schema.table_constraints tc
	JOIN information_schema.key_column_usage kcu
		ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
	WHERE tc.table_schema = c.table_schema AND tc.table_name = c.table_name
		AND kcu.column_name = c.column_name
		AND (tc.constraint_type = 'PRIMARY KEY' OR (tc.constraint_type = 'UNIQUE' AND (
			SELECT COUNT(*) FROM information_schema.key_column_usage k2
			WHERE k2.constraint_name = tc.constraint_name AND k2.table_schema = tc.table_schema) = 1))
	ORDER BY tc.constraint_type
	LIMIT 1), '') AS column_key`

const columnExtra = `CASE WHEN c.column_default LIKE 'nextval(%' OR c.is_identity = 'YES'
	THEN 'auto_increment' ELSE '' END AS extra`

func (d Dialect) ListColumns(ctx context.Context, db *sql.DB, table string) ([]domain.ColumnInformation, error) {
	q := squirrel.Select(
		"c.column_name", "c.data_type", "c.udt_name",
		"c.character_maximum_length", "c.numeric_precision", "c.numeric_scale",
		"c.is_nullable", columnKey, columnExtra,
	).
		From("information_schema.columns c").
		Where(squirrel.Eq{"c.table_schema": d.Schema, "c.table_name": table}).
		OrderBy("c.ordinal_position").
		PlaceholderFormat(squirrel.Dollar)
	cols, err := sqlbase.QueryColumns(ctx, db, q)
	if err != nil {
		return nil, err
	}
	for i := range cols {
		if cols[i].DataType != "USER-DEFINED" {
			continue
		}
		labels, err := enumLabels(ctx, db, cols[i].ColumnType)
		if err != nil {
			return nil, fmt.Errorf("failed to read labels of type %s: %w", cols[i].ColumnType, err)
		}
		cols[i].EnumValues = labels
	}
	return cols, nil
}

// enumLabels returns the labels of enum type typeName, or none when the type
// is not an enum.
func enumLabels(ctx context.Context, db *sql.DB, typeName string) ([]string, error) {
	rows, err := squirrel.Select("e.enumlabel").
		From("pg_type t").
		Join("pg_enum e ON e.enumtypid = t.oid").
		Where(squirrel.Eq{"t.typname": typeName}).
		OrderBy("e.enumsortorder").
		PlaceholderFormat(squirrel.Dollar).
		RunWith(db).
		QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}
	return labels, rows.Err()
}

func (d Dialect) ListForeignKeys(ctx context.Context, db *sql.DB, table string) ([]domain.ForeignKeyInformation, error) {
	q := squirrel.Select("tc.constraint_name", "kcu.column_name", "ccu.table_name", "ccu.column_name").
		From("information_schema.table_constraints tc").
		Join("information_schema.key_column_usage kcu ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema").
		Join("information_schema.constraint_column_usage ccu ON ccu.constraint_name = tc.constraint_name AND ccu.table_schema = tc.table_schema").
		Where(squirrel.Eq{"tc.constraint_type": "FOREIGN KEY", "tc.table_schema": d.Schema, "tc.table_name": table}).
		OrderBy("tc.constraint_name", "kcu.ordinal_position").
		PlaceholderFormat(squirrel.Dollar)
	return sqlbase.QueryForeignKeys(ctx, db, q)
}

func Open(ctx context.Context, dsn, schema string) (*sqlbase.Connector, error) {
	return sqlbase.Open(ctx, "postgres", dsn, NewDialect(schema))
}
