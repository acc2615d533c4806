package sqlbase

import (
	"context"
	"database/sql"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmrzaf/dbfill/internal/domain"
)

type testDialect struct {
	maxParams int
}

func (testDialect) Name() string                                  { return "test" }
func (testDialect) PlaceholderFormat() squirrel.PlaceholderFormat { return squirrel.Question }
func (testDialect) QuoteIdent(name string) string                 { return "`" + name + "`" }
func (d testDialect) QuoteTable(name string) string               { return d.QuoteIdent(name) }
func (testDialect) RandomOrder() string                           { return "RAND()" }
func (d testDialect) MaxParams() int                              { return d.maxParams }
func (testDialect) IgnoreDuplicates(b squirrel.InsertBuilder) squirrel.InsertBuilder {
	return b.Options("IGNORE")
}
func (testDialect) InsertDefaults(table string) string { return "INSERT INTO `" + table + "` () VALUES ()" }
func (testDialect) ListTables(context.Context, *sql.DB) ([]domain.TableInformation, error) {
	return nil, nil
}
func (testDialect) ListColumns(context.Context, *sql.DB, string) ([]domain.ColumnInformation, error) {
	return nil, nil
}
func (testDialect) ListForeignKeys(context.Context, *sql.DB, string) ([]domain.ForeignKeyInformation, error) {
	return nil, nil
}

func newMock(t *testing.T, maxParams int) (*Connector, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db, testDialect{maxParams: maxParams}), mock
}

func TestCountLines(t *testing.T) {
	c, mock := newMock(t, 100)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM `users`")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	n, err := c.CountLines(context.Background(), "users")
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEmptyTable(t *testing.T) {
	c, mock := newMock(t, 100)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `users`")).WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, c.EmptyTable(context.Background(), "users"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetValuesForForeignKeys_PadsNonUnique(t *testing.T) {
	c, mock := newMock(t, 100)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT `id` FROM `users` WHERE (active = 1) ORDER BY RAND() LIMIT 5")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)).AddRow(int64(9)))

	values, err := c.GetValuesForForeignKeys(context.Background(), "orders", "user_id", "users", "id", 5, false, "active = 1")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{int64(7), int64(9), int64(7), int64(9), int64(7)}, values)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetValuesForForeignKeys_UniqueExcludesUsedValues(t *testing.T) {
	c, mock := newMock(t, 100)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT `id` FROM `users` WHERE `id` NOT IN (SELECT `user_id` FROM `profiles` WHERE `user_id` IS NOT NULL) ORDER BY RAND() LIMIT 5")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

	values, err := c.GetValuesForForeignKeys(context.Background(), "profiles", "user_id", "users", "id", 5, true, "")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{int64(3)}, values)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetValuesForForeignKeys_Empty(t *testing.T) {
	c, mock := newMock(t, 100)
	mock.ExpectQuery("SELECT `id` FROM `users`").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	values, err := c.GetValuesForForeignKeys(context.Background(), "orders", "user_id", "users", "id", 5, false, "")
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestInsert_IgnoresDuplicatesAndCountsAffected(t *testing.T) {
	c, mock := newMock(t, 100)
	mock.ExpectExec(regexp.QuoteMeta("INSERT IGNORE INTO `users` (`age`,`name`) VALUES (?,?),(?,?)")).
		WithArgs(int64(30), "ann", int64(41), "bob").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := c.Insert(context.Background(), "users", []domain.Row{
		{"name": "ann", "age": int64(30)},
		{"name": "bob", "age": int64(41)},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_SplitsByParameterLimit(t *testing.T) {
	c, mock := newMock(t, 4)
	rows := make([]domain.Row, 5)
	for i := range rows {
		rows[i] = domain.Row{"a": i, "b": i}
	}
	mock.ExpectExec(regexp.QuoteMeta("VALUES (?,?),(?,?)")).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("VALUES (?,?),(?,?)")).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("VALUES (?,?)")).WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := c.Insert(context.Background(), "t", rows)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_OnlyDefaults(t *testing.T) {
	c, mock := newMock(t, 100)
	q := regexp.QuoteMeta("INSERT INTO `t` () VALUES ()")
	mock.ExpectExec(q).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(q).WillReturnResult(sqlmock.NewResult(2, 1))

	n, err := c.Insert(context.Background(), "t", []domain.Row{{}, {}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteRawQuery(t *testing.T) {
	c, mock := newMock(t, 100)
	mock.ExpectExec(regexp.QuoteMeta("SET FOREIGN_KEY_CHECKS = 0")).WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, c.ExecuteRawQuery(context.Background(), "SET FOREIGN_KEY_CHECKS = 0"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows(
		[]string{"name", "data_type", "column_type", "len", "precision", "scale", "nullable", "key", "extra"}).
		AddRow("id", "int", "int unsigned", nil, int64(10), int64(0), "NO", "PRI", "auto_increment").
		AddRow("email", "varchar", "varchar(120)", int64(120), nil, nil, "YES", nil, nil))

	cols, err := QueryColumns(context.Background(), db, squirrel.Select("*").From("columns"))
	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.True(t, cols[0].Unsigned())
	assert.True(t, cols[0].AutoIncrement())
	assert.True(t, cols[0].Unique())
	assert.False(t, cols[0].IsNullable)
	assert.Equal(t, int64(120), *cols[1].CharMaxLength)
	assert.Nil(t, cols[1].NumericPrecision)
	assert.True(t, cols[1].IsNullable)
	assert.True(t, strings.HasPrefix(cols[1].ColumnType, "varchar"))
}
