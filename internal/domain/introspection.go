package domain

import "strings"

// TableInformation describes a base table found by introspection.
type TableInformation struct {
	Name string
}

// ColumnInformation is the INFORMATION_SCHEMA view of a column.
type ColumnInformation struct {
	Name             string
	DataType         string
	ColumnType       string
	CharMaxLength    *int64
	NumericPrecision *int64
	NumericScale     *int64
	IsNullable       bool
	ColumnKey        string
	Extra            string

	// EnumValues lists the labels of a PostgreSQL enum type in sort order.
	EnumValues []string
}

func (c ColumnInformation) Unsigned() bool {
	return strings.Contains(strings.ToLower(c.ColumnType), "unsigned")
}

func (c ColumnInformation) AutoIncrement() bool {
	return strings.Contains(strings.ToLower(c.Extra), "auto_increment")
}

func (c ColumnInformation) Unique() bool {
	return c.ColumnKey == "PRI" || c.ColumnKey == "UNI"
}

type ForeignKeyInformation struct {
	ConstraintName   string
	Column           string
	ReferencedTable  string
	ReferencedColumn string
}
