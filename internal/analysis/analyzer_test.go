package analysis

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmrzaf/dbfill/internal/domain"
	"github.com/mmrzaf/dbfill/internal/logging"
)

type introspector struct {
	tables  []domain.TableInformation
	columns map[string][]domain.ColumnInformation
	fks     map[string][]domain.ForeignKeyInformation
}

func (i *introspector) CountLines(context.Context, string) (int64, error) { return 0, nil }
func (i *introspector) EmptyTable(context.Context, string) error          { return nil }
func (i *introspector) ExecuteRawQuery(context.Context, string) error     { return nil }
func (i *introspector) GetValuesForForeignKeys(context.Context, string, string, string, string, int, bool, string) ([]interface{}, error) {
	return nil, errors.New("unexpected call")
}
func (i *introspector) Insert(context.Context, string, []domain.Row) (int64, error) {
	return 0, errors.New("unexpected call")
}
func (i *introspector) GetTablesInformation(context.Context) ([]domain.TableInformation, error) {
	return i.tables, nil
}
func (i *introspector) GetColumnsInformation(_ context.Context, table string) ([]domain.ColumnInformation, error) {
	return i.columns[table], nil
}
func (i *introspector) GetForeignKeys(_ context.Context, table string) ([]domain.ForeignKeyInformation, error) {
	return i.fks[table], nil
}
func (i *introspector) Destroy() error { return nil }

func n(v int64) *int64 { return &v }

func shop() *introspector {
	return &introspector{
		tables: []domain.TableInformation{{Name: "users"}, {Name: "orders"}, {Name: "order_items"}},
		columns: map[string][]domain.ColumnInformation{
			"users": {
				{Name: "id", DataType: "int", ColumnType: "int unsigned", ColumnKey: "PRI", Extra: "auto_increment"},
				{Name: "email", DataType: "varchar", ColumnType: "varchar(120)", CharMaxLength: n(120), ColumnKey: "UNI"},
				{Name: "active", DataType: "tinyint", ColumnType: "tinyint(1)"},
				{Name: "status", DataType: "enum", ColumnType: "enum('new','it''s','gone')", IsNullable: true},
			},
			"orders": {
				{Name: "id", DataType: "bigint", ColumnType: "bigint", ColumnKey: "PRI", Extra: "auto_increment"},
				{Name: "user_id", DataType: "int", ColumnType: "int unsigned"},
				{Name: "total", DataType: "decimal", ColumnType: "decimal(8,2)", NumericPrecision: n(8), NumericScale: n(2)},
				{Name: "placed_at", DataType: "timestamp without time zone", ColumnType: "timestamp"},
			},
			"order_items": {
				{Name: "order_id", DataType: "bigint", ColumnType: "bigint", ColumnKey: "PRI"},
				{Name: "sku", DataType: "character varying", ColumnType: "varchar", CharMaxLength: n(16), ColumnKey: "PRI"},
				{Name: "flags", DataType: "bit", ColumnType: "bit(4)", NumericPrecision: n(4)},
			},
		},
		fks: map[string][]domain.ForeignKeyInformation{
			"orders":      {{ConstraintName: "fk_user", Column: "user_id", ReferencedTable: "users", ReferencedColumn: "id"}},
			"order_items": {{ConstraintName: "fk_order", Column: "order_id", ReferencedTable: "orders", ReferencedColumn: "id"}},
		},
	}
}

func newAnalyzer(conn *introspector) *Analyzer {
	return NewAnalyzer(conn, logging.NewLoggerWithWriter("error", io.Discard))
}

func TestAnalyze(t *testing.T) {
	schema, err := newAnalyzer(shop()).Analyze(context.Background(), Options{MaxLines: 250})
	require.NoError(t, err)
	require.Len(t, schema.Tables, 3)

	users := schema.Table("users")
	require.NotNil(t, users)
	assert.Equal(t, int64(250), *users.MaxLines)

	id := users.Columns[0]
	assert.Equal(t, domain.GeneratorInt, id.Generator)
	assert.True(t, id.Options.AutoIncrement)
	assert.True(t, id.Options.Unique)
	assert.Equal(t, "0", id.Options.Min.String())
	assert.Equal(t, "4294967295", id.Options.Max.String())

	email := users.Columns[1]
	assert.Equal(t, domain.GeneratorVarchar, email.Generator)
	assert.True(t, email.Options.Unique)
	assert.Nil(t, email.Options.Min)
	assert.Equal(t, "120", email.Options.Max.String())

	assert.Equal(t, domain.GeneratorBool, users.Columns[2].Generator)

	status := users.Columns[3]
	assert.Equal(t, domain.GeneratorEnum, status.Generator)
	assert.True(t, status.Options.Nullable)
	assert.Equal(t, "3", status.Options.Max.String())

	orders := schema.Table("orders")
	require.NotNil(t, orders)
	fk := orders.Columns[1].ForeignKey
	require.NotNil(t, fk)
	assert.Equal(t, domain.ForeignKey{Table: "users", Column: "id"}, *fk)
	assert.Equal(t, "-999999", orders.Columns[2].Options.Min.String())
	assert.Equal(t, "999999", orders.Columns[2].Options.Max.String())
	assert.Equal(t, domain.GeneratorTimestamp, orders.Columns[3].Generator)

	items := schema.Table("order_items")
	require.NotNil(t, items)
	assert.False(t, items.Columns[0].Options.Unique, "composite key columns are not unique")
	assert.Equal(t, domain.GeneratorVarchar, items.Columns[1].Generator)
	assert.Equal(t, domain.GeneratorBit, items.Columns[2].Generator)
	assert.Equal(t, "4", items.Columns[2].Options.Max.String())
}

func TestAnalyze_TableFilter(t *testing.T) {
	schema, err := newAnalyzer(shop()).Analyze(context.Background(), Options{Tables: []string{"orders"}})
	require.NoError(t, err)
	require.Len(t, schema.Tables, 1)
	assert.Equal(t, int64(DefaultMaxLines), *schema.Tables[0].MaxLines)

	_, err = newAnalyzer(shop()).Analyze(context.Background(), Options{Tables: []string{"nope"}})
	require.Error(t, err)
}

func TestGeneratorFor_UnknownFallsBackToVarchar(t *testing.T) {
	assert.Equal(t, domain.GeneratorVarchar, GeneratorFor(domain.ColumnInformation{DataType: "geometry"}))
	assert.Equal(t, domain.GeneratorDouble, GeneratorFor(domain.ColumnInformation{DataType: "double precision"}))
	assert.Equal(t, domain.GeneratorTinyInt, GeneratorFor(domain.ColumnInformation{DataType: "tinyint", ColumnType: "tinyint(4)"}))
}

func TestMemberCount(t *testing.T) {
	assert.Equal(t, 2, memberCount("set('a','b')"))
	assert.Equal(t, 1, memberCount("enum('x,y')"))
	assert.Equal(t, 0, memberCount("int"))
}

func TestAnalyze_PostgresColumnShapes(t *testing.T) {
	conn := &introspector{
		tables: []domain.TableInformation{{Name: "events"}},
		columns: map[string][]domain.ColumnInformation{
			"events": {
				{Name: "id", DataType: "uuid", ColumnType: "uuid"},
				{Name: "starts", DataType: "time without time zone", ColumnType: "time"},
				{Name: "ends", DataType: "time with time zone", ColumnType: "timetz"},
				{Name: "mask", DataType: "bit", ColumnType: "bit", CharMaxLength: n(8)},
				{Name: "tags", DataType: "bit varying", ColumnType: "varbit", CharMaxLength: n(20)},
				{Name: "mood", DataType: "USER-DEFINED", ColumnType: "mood", EnumValues: []string{"sad", "ok", "happy"}},
				{Name: "geom", DataType: "USER-DEFINED", ColumnType: "geometry", IsNullable: true},
				{Name: "addr", DataType: "inet", ColumnType: "inet", IsNullable: true},
				{Name: "labels", DataType: "ARRAY", ColumnType: "_text", IsNullable: true},
			},
		},
	}
	schema, err := newAnalyzer(conn).Analyze(context.Background(), Options{})
	require.NoError(t, err)
	events := schema.Table("events")
	require.NotNil(t, events)

	names := make([]string, 0, len(events.Columns))
	for _, c := range events.Columns {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"id", "starts", "ends", "mask", "tags", "mood"}, names, "unsupported types are skipped")

	id := events.Columns[0]
	assert.Equal(t, domain.GeneratorChar, id.Generator)
	assert.Equal(t, "uuid", id.Options.Faker, "uuid columns always get UUIDs")

	for _, c := range events.Columns[1:3] {
		assert.Equal(t, domain.GeneratorTime, c.Generator)
		assert.Equal(t, "0", c.Options.Min.String())
		assert.Equal(t, "23", c.Options.Max.String())
	}

	mask := events.Columns[3]
	assert.Equal(t, domain.GeneratorBit, mask.Generator)
	assert.True(t, mask.Options.BitString)
	assert.Equal(t, "8", mask.Options.Max.String())

	tags := events.Columns[4]
	assert.Equal(t, domain.GeneratorBit, tags.Generator)
	assert.True(t, tags.Options.BitString)
	assert.Equal(t, "20", tags.Options.Max.String())

	mood := events.Columns[5]
	assert.Equal(t, domain.GeneratorEnum, mood.Generator)
	require.NotNil(t, mood.Values)
	assert.Equal(t, domain.ValuesLiteral, mood.Values.Kind)
	assert.Equal(t, []interface{}{"sad", "ok", "happy"}, mood.Values.Literal)
}

func TestColumnFromInformation_MySQLBitAndTimeUnchanged(t *testing.T) {
	bit := ColumnFromInformation(domain.ColumnInformation{Name: "flags", DataType: "bit", ColumnType: "bit(4)", NumericPrecision: n(4)}, false)
	assert.False(t, bit.Options.BitString)

	tm := ColumnFromInformation(domain.ColumnInformation{Name: "t", DataType: "time", ColumnType: "time"}, false)
	assert.Equal(t, domain.GeneratorTime, tm.Generator)
	assert.Nil(t, tm.Options.Min)
	assert.Nil(t, tm.Options.Max)
}
