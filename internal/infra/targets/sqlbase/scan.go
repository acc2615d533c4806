package sqlbase

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/mmrzaf/dbfill/internal/domain"
)

// QueryTables runs a single-column query of table names.
func QueryTables(ctx context.Context, db *sql.DB, q squirrel.Sqlizer) ([]domain.TableInformation, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []domain.TableInformation
	for rows.Next() {
		var t domain.TableInformation
		if err := rows.Scan(&t.Name); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// QueryColumns expects, in order: name, data type, column type, character
// length, numeric precision, numeric scale, nullable (YES or NO), key and
// extra.
func QueryColumns(ctx context.Context, db *sql.DB, q squirrel.Sqlizer) ([]domain.ColumnInformation, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns: %w", err)
	}
	defer rows.Close()

	var cols []domain.ColumnInformation
	for rows.Next() {
		var c domain.ColumnInformation
		var charLen, precision, scale sql.NullInt64
		var nullable string
		var key, extra sql.NullString
		if err := rows.Scan(&c.Name, &c.DataType, &c.ColumnType, &charLen, &precision, &scale, &nullable, &key, &extra); err != nil {
			return nil, err
		}
		c.IsNullable = strings.EqualFold(nullable, "YES")
		c.CharMaxLength = nullInt(charLen)
		c.NumericPrecision = nullInt(precision)
		c.NumericScale = nullInt(scale)
		c.ColumnKey = key.String
		c.Extra = extra.String
		cols = append(cols, c)
	}
	return cols, rows.Err()
}

// QueryForeignKeys expects constraint name, column, referenced table and
// referenced column.
func QueryForeignKeys(ctx context.Context, db *sql.DB, q squirrel.Sqlizer) ([]domain.ForeignKeyInformation, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list foreign keys: %w", err)
	}
	defer rows.Close()

	var fks []domain.ForeignKeyInformation
	for rows.Next() {
		var fk domain.ForeignKeyInformation
		if err := rows.Scan(&fk.ConstraintName, &fk.Column, &fk.ReferencedTable, &fk.ReferencedColumn); err != nil {
			return nil, err
		}
		fks = append(fks, fk)
	}
	return fks, rows.Err()
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}
