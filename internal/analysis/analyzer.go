// Package analysis derives a fill schema from a live database.
package analysis

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/mmrzaf/dbfill/internal/connector"
	"github.com/mmrzaf/dbfill/internal/domain"
	"github.com/mmrzaf/dbfill/internal/logging"
)

// DefaultMaxLines is the maxLines written for every analysed table.
const DefaultMaxLines = 100

type Options struct {
	// Tables restricts the analysis; empty means every base table.
	Tables   []string
	MaxLines int64
}

type Analyzer struct {
	conn connector.DatabaseConnector
	log  *logging.Logger
}

func NewAnalyzer(conn connector.DatabaseConnector, log *logging.Logger) *Analyzer {
	return &Analyzer{conn: conn, log: log.WithComponent("analysis")}
}

func (a *Analyzer) Analyze(ctx context.Context, opts Options) (*domain.Schema, error) {
	maxLines := opts.MaxLines
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}

	tables, err := a.conn.GetTablesInformation(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	wanted := make(map[string]bool, len(opts.Tables))
	for _, t := range opts.Tables {
		wanted[t] = true
	}
	found := make(map[string]bool, len(tables))

	schema := &domain.Schema{}
	for _, info := range tables {
		found[info.Name] = true
		if len(wanted) > 0 && !wanted[info.Name] {
			continue
		}
		table, err := a.analyzeTable(ctx, info.Name, maxLines)
		if err != nil {
			return nil, err
		}
		schema.Tables = append(schema.Tables, *table)
		a.log.Debugw("table.analysed", map[string]any{"table": info.Name, "columns": len(table.Columns)})
	}

	for t := range wanted {
		if !found[t] {
			return nil, fmt.Errorf("table not found: %s", t)
		}
	}
	a.log.Infow("schema.analysed", map[string]any{"tables": len(schema.Tables)})
	return schema, nil
}

func (a *Analyzer) analyzeTable(ctx context.Context, name string, maxLines int64) (*domain.Table, error) {
	columns, err := a.conn.GetColumnsInformation(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", name, err)
	}
	fks, err := a.conn.GetForeignKeys(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read foreign keys of %s: %w", name, err)
	}

	byColumn := make(map[string]domain.ForeignKeyInformation, len(fks))
	for _, fk := range fks {
		byColumn[fk.Column] = fk
	}

	primaryKeys := 0
	for _, c := range columns {
		if c.ColumnKey == "PRI" {
			primaryKeys++
		}
	}

	limit := maxLines
	table := &domain.Table{Name: name, MaxLines: &limit}
	for _, info := range columns {
		if !Supported(info) {
			a.log.Warnw("column.skipped", map[string]any{
				"table":    name,
				"column":   info.Name,
				"type":     info.DataType,
				"nullable": info.IsNullable,
			})
			continue
		}
		col := ColumnFromInformation(info, primaryKeys > 1)
		if fk, ok := byColumn[info.Name]; ok {
			col.ForeignKey = &domain.ForeignKey{Table: fk.ReferencedTable, Column: fk.ReferencedColumn}
		}
		table.Columns = append(table.Columns, col)
	}
	return table, nil
}

// ColumnFromInformation maps an introspected column to a schema column. A
// column of a composite primary key is not unique on its own.
func ColumnFromInformation(info domain.ColumnInformation, compositeKey bool) domain.Column {
	col := domain.Column{
		Name:      info.Name,
		Generator: GeneratorFor(info),
		Options: domain.ColumnOptions{
			Nullable:      info.IsNullable,
			AutoIncrement: info.AutoIncrement(),
			Unique:        info.ColumnKey == "UNI" || (info.ColumnKey == "PRI" && !compositeKey),
		},
	}
	col.Options.Min, col.Options.Max = bounds(info, col.Generator)

	switch {
	case len(info.EnumValues) > 0:
		labels := make([]interface{}, len(info.EnumValues))
		for i, l := range info.EnumValues {
			labels[i] = l
		}
		col.Values = domain.LiteralValues(labels...)
	case strings.EqualFold(info.DataType, "uuid"):
		col.Options.Faker = "uuid"
	case col.Generator == domain.GeneratorBit && bitString(info):
		col.Options.BitString = true
	}
	return col
}

// unsupportedTypes are PostgreSQL types no generator produces valid input
// for.
var unsupportedTypes = map[string]bool{
	"array":    true,
	"interval": true,
	"inet":     true,
	"cidr":     true,
	"macaddr":  true,
	"macaddr8": true,
	"money":    true,
	"point":    true,
	"line":     true,
	"lseg":     true,
	"box":      true,
	"path":     true,
	"polygon":  true,
	"circle":   true,
	"tsvector": true,
	"tsquery":  true,
}

// Supported reports whether a column can be filled. User defined types are
// supported only when they are enums.
func Supported(info domain.ColumnInformation) bool {
	dataType := strings.ToLower(strings.TrimSpace(info.DataType))
	if dataType == "user-defined" {
		return len(info.EnumValues) > 0
	}
	return !unsupportedTypes[dataType]
}

// bitString tells PostgreSQL bit columns, which take '0101' literals, from
// MySQL ones, whose column type always carries the width.
func bitString(info domain.ColumnInformation) bool {
	dataType := strings.ToLower(info.DataType)
	return dataType == "bit varying" || (dataType == "bit" && !strings.Contains(info.ColumnType, "("))
}

var dataTypes = map[string]domain.GeneratorTag{
	"bit":        domain.GeneratorBit,
	"tinyint":    domain.GeneratorTinyInt,
	"bool":       domain.GeneratorBool,
	"boolean":    domain.GeneratorBoolean,
	"smallint":   domain.GeneratorSmallInt,
	"int2":       domain.GeneratorSmallInt,
	"mediumint":  domain.GeneratorMediumInt,
	"int":        domain.GeneratorInt,
	"int4":       domain.GeneratorInt,
	"integer":    domain.GeneratorInteger,
	"serial":     domain.GeneratorInteger,
	"bigint":     domain.GeneratorBigInt,
	"int8":       domain.GeneratorBigInt,
	"bigserial":  domain.GeneratorBigInt,
	"decimal":    domain.GeneratorDecimal,
	"numeric":    domain.GeneratorDecimal,
	"dec":        domain.GeneratorDec,
	"float":      domain.GeneratorFloat,
	"real":       domain.GeneratorFloat,
	"double":     domain.GeneratorDouble,
	"date":       domain.GeneratorDate,
	"datetime":   domain.GeneratorDateTime,
	"timestamp":  domain.GeneratorTimestamp,
	"time":       domain.GeneratorTime,
	"year":       domain.GeneratorYear,
	"char":       domain.GeneratorChar,
	"character":  domain.GeneratorChar,
	"varchar":    domain.GeneratorVarchar,
	"binary":     domain.GeneratorBinary,
	"varbinary":  domain.GeneratorVarbinary,
	"tinyblob":   domain.GeneratorTinyBlob,
	"tinytext":   domain.GeneratorTinyBlob,
	"text":       domain.GeneratorText,
	"clob":       domain.GeneratorText,
	"json":       domain.GeneratorText,
	"jsonb":      domain.GeneratorText,
	"mediumtext": domain.GeneratorMediumText,
	"longtext":   domain.GeneratorLongText,
	"blob":       domain.GeneratorBlob,
	"bytea":      domain.GeneratorBlob,
	"mediumblob": domain.GeneratorMediumBlob,
	"longblob":   domain.GeneratorLongBlob,
	"set":        domain.GeneratorSet,
	"enum":       domain.GeneratorEnum,
	"uuid":       domain.GeneratorChar,
}

// GeneratorFor picks the generator tag of an introspected column. Unknown
// types fall back to varchar.
func GeneratorFor(info domain.ColumnInformation) domain.GeneratorTag {
	dataType := strings.ToLower(strings.TrimSpace(info.DataType))
	columnType := strings.ToLower(info.ColumnType)

	switch {
	case len(info.EnumValues) > 0:
		return domain.GeneratorEnum
	case dataType == "bit varying":
		return domain.GeneratorBit
	case dataType == "tinyint" && strings.HasPrefix(columnType, "tinyint(1)"):
		return domain.GeneratorBool
	case strings.HasPrefix(dataType, "character varying"):
		return domain.GeneratorVarchar
	case strings.HasPrefix(dataType, "timestamp"):
		return domain.GeneratorTimestamp
	case strings.HasPrefix(dataType, "time "):
		return domain.GeneratorTime
	case strings.HasPrefix(dataType, "double"):
		return domain.GeneratorDouble
	}
	if tag, ok := dataTypes[dataType]; ok {
		return tag
	}
	return domain.GeneratorVarchar
}

var unsignedMax = map[domain.GeneratorTag]int64{
	domain.GeneratorTinyInt:   math.MaxUint8,
	domain.GeneratorSmallInt:  math.MaxUint16,
	domain.GeneratorMediumInt: 1<<24 - 1,
	domain.GeneratorInt:       math.MaxUint32,
	domain.GeneratorInteger:   math.MaxUint32,
	domain.GeneratorBigInt:    math.MaxInt64,
}

func bounds(info domain.ColumnInformation, tag domain.GeneratorTag) (min, max *domain.Bound) {
	switch tag {
	case domain.GeneratorTinyInt, domain.GeneratorSmallInt, domain.GeneratorMediumInt,
		domain.GeneratorInt, domain.GeneratorInteger, domain.GeneratorBigInt:
		if info.Unsigned() {
			return domain.IntBound(0), domain.IntBound(unsignedMax[tag])
		}
	case domain.GeneratorDecimal, domain.GeneratorDec:
		if info.NumericPrecision != nil {
			scale := int64(0)
			if info.NumericScale != nil {
				scale = *info.NumericScale
			}
			digits := *info.NumericPrecision - scale
			if digits > 15 {
				digits = 15
			}
			limit := math.Pow10(int(digits)) - 1
			if limit < 0 {
				limit = 0
			}
			if info.Unsigned() {
				return domain.NumberBound(0), domain.NumberBound(limit)
			}
			return domain.NumberBound(-limit), domain.NumberBound(limit)
		}
	case domain.GeneratorChar, domain.GeneratorVarchar, domain.GeneratorBinary, domain.GeneratorVarbinary:
		if info.CharMaxLength != nil && *info.CharMaxLength > 0 {
			return nil, domain.IntBound(*info.CharMaxLength)
		}
		if strings.EqualFold(info.DataType, "uuid") {
			return domain.IntBound(36), domain.IntBound(36)
		}
	case domain.GeneratorTime:
		if strings.HasPrefix(strings.ToLower(info.DataType), "time ") {
			return domain.IntBound(0), domain.IntBound(23)
		}
	case domain.GeneratorBit:
		if info.NumericPrecision != nil && *info.NumericPrecision > 0 {
			return nil, domain.IntBound(*info.NumericPrecision)
		}
		if info.CharMaxLength != nil && *info.CharMaxLength > 0 {
			return nil, domain.IntBound(*info.CharMaxLength)
		}
		if n := typeArgument(info.ColumnType); n > 0 {
			return nil, domain.IntBound(n)
		}
	case domain.GeneratorEnum, domain.GeneratorSet:
		if len(info.EnumValues) > 0 {
			return nil, domain.IntBound(int64(len(info.EnumValues)))
		}
		if n := memberCount(info.ColumnType); n > 0 {
			return nil, domain.IntBound(int64(n))
		}
	}
	return nil, nil
}

// memberCount counts the quoted members of enum('a','b') or set('a','b').
func memberCount(columnType string) int {
	open := strings.Index(columnType, "(")
	end := strings.LastIndex(columnType, ")")
	if open < 0 || end <= open {
		return 0
	}
	body := columnType[open+1 : end]
	count := 0
	inQuote := false
	for i := 0; i < len(body); i++ {
		if body[i] != '\'' {
			continue
		}
		if inQuote && i+1 < len(body) && body[i+1] == '\'' {
			i++
			continue
		}
		if inQuote {
			count++
		}
		inQuote = !inQuote
	}
	return count
}

func typeArgument(columnType string) int64 {
	open := strings.Index(columnType, "(")
	end := strings.Index(columnType, ")")
	if open < 0 || end <= open {
		return 0
	}
	var n int64
	if _, err := fmt.Sscanf(columnType[open+1:end], "%d", &n); err != nil {
		return 0
	}
	return n
}
