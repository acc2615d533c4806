package mysql

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmrzaf/dbfill/internal/domain"
	"github.com/mmrzaf/dbfill/internal/infra/targets/sqlbase"
)

func TestNormalizeDSN(t *testing.T) {
	cases := []struct {
		in      string
		prefix  string
		wantErr bool
	}{
		{in: "root:secret@tcp(localhost:3306)/shop", prefix: "root:secret@tcp(localhost:3306)/shop?"},
		{in: "mysql://root:secret@db:3306/shop", prefix: "root:secret@tcp(db:3306)/shop?"},
		{in: "mysql://db:3306/shop", wantErr: true},
		{in: "root@tcp(localhost:3306)/", wantErr: true},
	}
	for _, tc := range cases {
		got, err := NormalizeDSN(tc.in)
		if tc.wantErr {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.True(t, strings.HasPrefix(got, tc.prefix), got)
		assert.Contains(t, got, "parseTime=true")
	}
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, "`odd``name`", Dialect{}.QuoteIdent("odd`name"))
}

func TestInsertUsesInsertIgnore(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	c := sqlbase.New(db, Dialect{})

	mock.ExpectExec(regexp.QuoteMeta("INSERT IGNORE INTO `users` (`name`) VALUES (?)")).
		WithArgs("ann").
		WillReturnResult(sqlmock.NewResult(1, 1))

	n, err := c.Insert(context.Background(), "users", []domain.Row{{"name": "ann"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListForeignKeys(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM information_schema.key_column_usage WHERE table_schema = DATABASE() AND table_name = ? AND referenced_table_name IS NOT NULL")).
		WithArgs("orders").
		WillReturnRows(sqlmock.NewRows([]string{"constraint_name", "column_name", "referenced_table_name", "referenced_column_name"}).
			AddRow("fk_orders_user", "user_id", "users", "id"))

	fks, err := Dialect{}.ListForeignKeys(context.Background(), db, "orders")
	require.NoError(t, err)
	assert.Equal(t, []domain.ForeignKeyInformation{{ConstraintName: "fk_orders_user", Column: "user_id", ReferencedTable: "users", ReferencedColumn: "id"}}, fks)
	require.NoError(t, mock.ExpectationsWereMet())
}
