package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"

	"github.com/mmrzaf/dbfill/internal/domain"
	"github.com/mmrzaf/dbfill/internal/infra/targets/sqlbase"
)

type Dialect struct{}

func (Dialect) Name() string { return "mysql" }

func (Dialect) PlaceholderFormat() squirrel.PlaceholderFormat { return squirrel.Question }

func (Dialect) QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (d Dialect) QuoteTable(name string) string { return d.QuoteIdent(name) }

func (Dialect) RandomOrder() string { return "RAND()" }

func (Dialect) MaxParams() int { return 65535 }

func (Dialect) IgnoreDuplicates(b squirrel.InsertBuilder) squirrel.InsertBuilder {
	return b.Options("IGNORE")
}

func (d Dialect) InsertDefaults(table string) string {
	return fmt.Sprintf("INSERT INTO %s () VALUES ()", d.QuoteTable(table))
}

func (Dialect) ListTables(ctx context.Context, db *sql.DB) ([]domain.TableInformation, error) {
	q := squirrel.Select("table_name").
		From("information_schema.tables").
		Where("table_schema = DATABASE()").
		Where(squirrel.Eq{"table_type": "BASE TABLE"}).
		OrderBy("table_name")
	return sqlbase.QueryTables(ctx, db, q)
}

func (Dialect) ListColumns(ctx context.Context, db *sql.DB, table string) ([]domain.ColumnInformation, error) {
	q := squirrel.Select(
		"column_name", "data_type", "column_type",
		"character_maximum_length", "numeric_precision", "numeric_scale",
		"is_nullable", "column_key", "extra",
	).
		From("information_schema.columns").
		Where("table_schema = DATABASE()").
		Where(squirrel.Eq{"table_name": table}).
		OrderBy("ordinal_position")
	return sqlbase.QueryColumns(ctx, db, q)
}

func (Dialect) ListForeignKeys(ctx context.Context, db *sql.DB, table string) ([]domain.ForeignKeyInformation, error) {
	q := squirrel.Select("constraint_name", "column_name", "referenced_table_name", "referenced_column_name").
		From("information_schema.key_column_usage").
		Where("table_schema = DATABASE()").
		Where(squirrel.Eq{"table_name": table}).
		Where(squirrel.NotEq{"referenced_table_name": nil}).
		OrderBy("constraint_name", "ordinal_position")
	return sqlbase.QueryForeignKeys(ctx, db, q)
}

// NormalizeDSN accepts both the driver's native DSN and a mysql:// URL.
func NormalizeDSN(dsn string) (string, error) {
	if strings.HasPrefix(dsn, "mysql://") {
		rest := strings.TrimPrefix(dsn, "mysql://")
		at := strings.LastIndex(rest, "@")
		if at < 0 {
			return "", fmt.Errorf("mysql url is missing credentials: %s", dsn)
		}
		credentials, remainder := rest[:at], rest[at+1:]
		hostPort, dbAndParams := remainder, ""
		if slash := strings.Index(remainder, "/"); slash >= 0 {
			hostPort, dbAndParams = remainder[:slash], remainder[slash+1:]
		}
		dsn = fmt.Sprintf("%s@tcp(%s)/%s", credentials, hostPort, dbAndParams)
	}
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid mysql dsn: %w", err)
	}
	if cfg.DBName == "" {
		return "", fmt.Errorf("mysql dsn must name a database")
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

func Open(ctx context.Context, dsn string) (*sqlbase.Connector, error) {
	normalized, err := NormalizeDSN(dsn)
	if err != nil {
		return nil, err
	}
	c, err := sqlbase.Open(ctx, "mysql", normalized, Dialect{})
	if err != nil {
		return nil, err
	}
	db := c.DB()
	db.SetMaxOpenConns(2)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(3 * time.Minute)
	return c, nil
}
