// Package connector defines the database boundary used by the generator and
// the analyzer. Every call is a blocking round trip and honors ctx.
package connector

import (
	"context"

	"github.com/mmrzaf/dbfill/internal/domain"
)

type DatabaseConnector interface {
	CountLines(ctx context.Context, table string) (int64, error)
	EmptyTable(ctx context.Context, table string) error
	ExecuteRawQuery(ctx context.Context, query string) error
	// GetValuesForForeignKeys samples up to count values of refTable.refColumn.
	// Unique sampling returns distinct values only; otherwise the result is
	// padded by repetition to exactly count entries whenever any value exists.
	GetValuesForForeignKeys(ctx context.Context, table, column, refTable, refColumn string, count int, unique bool, where string) ([]interface{}, error)
	// Insert writes rows, skipping those the database rejects as duplicates,
	// and returns how many were actually inserted.
	Insert(ctx context.Context, table string, rows []domain.Row) (int64, error)

	GetTablesInformation(ctx context.Context) ([]domain.TableInformation, error)
	GetColumnsInformation(ctx context.Context, table string) ([]domain.ColumnInformation, error)
	GetForeignKeys(ctx context.Context, table string) ([]domain.ForeignKeyInformation, error)

	Destroy() error
}
