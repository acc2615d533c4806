package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mmrzaf/dbfill/internal/domain"
	"github.com/mmrzaf/dbfill/internal/infra/targets/sqlbase"
)

type Dialect struct{}

func (Dialect) Name() string { return "sqlite" }

func (Dialect) PlaceholderFormat() squirrel.PlaceholderFormat { return squirrel.Question }

func (Dialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d Dialect) QuoteTable(name string) string { return d.QuoteIdent(name) }

func (Dialect) RandomOrder() string { return "RANDOM()" }

func (Dialect) MaxParams() int { return 32766 }

func (Dialect) IgnoreDuplicates(b squirrel.InsertBuilder) squirrel.InsertBuilder {
	return b.Options("OR IGNORE")
}

func (d Dialect) InsertDefaults(table string) string {
	return fmt.Sprintf("INSERT OR IGNORE INTO %s DEFAULT VALUES", d.QuoteTable(table))
}

func (Dialect) ListTables(ctx context.Context, db *sql.DB) ([]domain.TableInformation, error) {
	q := squirrel.Select("name").
		From("sqlite_master").
		Where(squirrel.Eq{"type": "table"}).
		Where(squirrel.NotLike{"name": "sqlite_%"}).
		OrderBy("name")
	return sqlbase.QueryTables(ctx, db, q)
}

var typeLength = regexp.MustCompile(`\(\s*(\d+)`)

type pragmaColumn struct {
	name    string
	typ     string
	notNull bool
	pk      int
}

func (d Dialect) tableInfo(ctx context.Context, db *sql.DB, table string) ([]pragmaColumn, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", d.QuoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer rows.Close()

	var cols []pragmaColumn
	for rows.Next() {
		var cid, notNull, pk int
		var name, typ string
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols = append(cols, pragmaColumn{name: name, typ: typ, notNull: notNull == 1, pk: pk})
	}
	return cols, rows.Err()
}

// uniqueColumns returns the columns covered by a single-column unique index.
func (d Dialect) uniqueColumns(ctx context.Context, db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_list(%s)", d.QuoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("failed to read indexes of %s: %w", table, err)
	}
	var indexes []string
	for rows.Next() {
		var seq, unique, partial int
		var name, origin string
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			rows.Close()
			return nil, err
		}
		if unique == 1 && partial == 0 {
			indexes = append(indexes, name)
		}
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}

	out := make(map[string]bool)
	for _, index := range indexes {
		cols, err := d.indexColumns(ctx, db, index)
		if err != nil {
			return nil, err
		}
		if len(cols) == 1 {
			out[cols[0]] = true
		}
	}
	return out, nil
}

func (d Dialect) indexColumns(ctx context.Context, db *sql.DB, index string) ([]string, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_info(%s)", d.QuoteIdent(index)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cols []string
	for rows.Next() {
		var seqno, cid int
		var name sql.NullString
		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return nil, err
		}
		cols = append(cols, name.String)
	}
	return cols, rows.Err()
}

func (d Dialect) ListColumns(ctx context.Context, db *sql.DB, table string) ([]domain.ColumnInformation, error) {
	cols, err := d.tableInfo(ctx, db, table)
	if err != nil {
		return nil, err
	}
	unique, err := d.uniqueColumns(ctx, db, table)
	if err != nil {
		return nil, err
	}

	pkCount := 0
	for _, c := range cols {
		if c.pk > 0 {
			pkCount++
		}
	}

	out := make([]domain.ColumnInformation, 0, len(cols))
	for _, c := range cols {
		columnType := strings.ToLower(strings.TrimSpace(c.typ))
		info := domain.ColumnInformation{
			Name:       c.name,
			DataType:   baseType(columnType),
			ColumnType: columnType,
			IsNullable: !c.notNull && c.pk == 0,
		}
		if m := typeLength.FindStringSubmatch(columnType); m != nil {
			if n, err := strconv.ParseInt(m[1], 10, 64); err == nil {
				switch info.DataType {
				case "decimal", "numeric", "dec":
					info.NumericPrecision = &n
				default:
					info.CharMaxLength = &n
				}
			}
		}
		switch {
		case c.pk > 0:
			info.ColumnKey = "PRI"
		case unique[c.name]:
			info.ColumnKey = "UNI"
		}
		// An INTEGER PRIMARY KEY is an alias of the rowid.
		if c.pk > 0 && pkCount == 1 && info.DataType == "integer" {
			info.Extra = "auto_increment"
		}
		out = append(out, info)
	}
	return out, nil
}

func baseType(columnType string) string {
	if i := strings.IndexAny(columnType, "( "); i >= 0 {
		columnType = columnType[:i]
	}
	if columnType == "" {
		return "blob"
	}
	return columnType
}

func (d Dialect) ListForeignKeys(ctx context.Context, db *sql.DB, table string) ([]domain.ForeignKeyInformation, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%s)", d.QuoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("failed to read foreign keys of %s: %w", table, err)
	}
	var fks []domain.ForeignKeyInformation
	for rows.Next() {
		var id, seq int
		var refTable, from string
		var to sql.NullString
		var onUpdate, onDelete, match string
		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			rows.Close()
			return nil, err
		}
		fks = append(fks, domain.ForeignKeyInformation{
			ConstraintName:   fmt.Sprintf("fk_%s_%d", table, id),
			Column:           from,
			ReferencedTable:  refTable,
			ReferencedColumn: to.String,
		})
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}

	// REFERENCES without a column list points at the primary key.
	for i := range fks {
		if fks[i].ReferencedColumn != "" {
			continue
		}
		cols, err := d.tableInfo(ctx, db, fks[i].ReferencedTable)
		if err != nil {
			return nil, err
		}
		for _, c := range cols {
			if c.pk == 1 {
				fks[i].ReferencedColumn = c.name
				break
			}
		}
	}
	return fks, nil
}

// Open opens a database file. A sqlite:// prefix is accepted and the
// foreign_keys pragma is turned on unless the DSN already sets it.
func Open(ctx context.Context, path string) (*sqlbase.Connector, error) {
	path = strings.TrimPrefix(path, "sqlite://")
	if !strings.Contains(path, "_foreign_keys") && !strings.Contains(path, "_fk") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		path += sep + "_foreign_keys=on"
	}
	c, err := sqlbase.Open(ctx, "sqlite3", path, Dialect{})
	if err != nil {
		return nil, err
	}
	c.DB().SetMaxOpenConns(1)
	return c, nil
}
