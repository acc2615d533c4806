package domain

// DefaultMaxCharLength caps random string lengths when a schema does not set one.
const DefaultMaxCharLength = 4096

type Schema struct {
	Name          string                   `json:"name,omitempty" yaml:"name,omitempty"`
	MaxCharLength int                      `json:"maxCharLength,omitempty" yaml:"maxCharLength,omitempty"`
	Seed          *int64                   `json:"seed,omitempty" yaml:"seed,omitempty"`
	Values        map[string][]interface{} `json:"values,omitempty" yaml:"values,omitempty"`
	Tables        []Table                  `json:"tables" yaml:"tables"`
}

// EffectiveMaxCharLength returns the string length ceiling applied to every
// generated string of the schema.
func (s *Schema) EffectiveMaxCharLength() int {
	if s.MaxCharLength > 0 {
		return s.MaxCharLength
	}
	return DefaultMaxCharLength
}

func (s *Schema) Table(name string) *Table {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i]
		}
	}
	return nil
}

type Table struct {
	Name     string   `json:"name" yaml:"name"`
	MaxLines *int64   `json:"maxLines,omitempty" yaml:"maxLines,omitempty"`
	AddLines *int64   `json:"addLines,omitempty" yaml:"addLines,omitempty"`
	Lines    *int64   `json:"lines,omitempty" yaml:"lines,omitempty"` // Deprecated: use MaxLines
	Columns  []Column `json:"columns" yaml:"columns"`
	Before   []string `json:"before,omitempty" yaml:"before,omitempty"`
	After    []string `json:"after,omitempty" yaml:"after,omitempty"`
}

// Limits returns the effective maxLines/addLines pair. The legacy lines field
// only counts when neither of the newer fields is set.
func (t *Table) Limits() (maxLines, addLines *int64) {
	if t.MaxLines == nil && t.AddLines == nil && t.Lines != nil {
		return t.Lines, nil
	}
	return t.MaxLines, t.AddLines
}

// Target computes the row count a fill run is aiming for, given the current
// number of rows in the table.
func (t *Table) Target(current int64) int64 {
	maxLines, addLines := t.Limits()
	if addLines != nil {
		target := current + *addLines
		if maxLines != nil && *maxLines < target {
			target = *maxLines
		}
		return target
	}
	if maxLines != nil {
		return *maxLines
	}
	return current
}

type Column struct {
	Name       string        `json:"name" yaml:"name"`
	Generator  GeneratorTag  `json:"generator" yaml:"generator"`
	Options    ColumnOptions `json:"options,omitempty" yaml:"options,omitempty"`
	ForeignKey *ForeignKey   `json:"foreignKey,omitempty" yaml:"foreignKey,omitempty"`
	Values     *Values       `json:"values,omitempty" yaml:"values,omitempty"`
}

type ColumnOptions struct {
	Nullable      bool   `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	Unique        bool   `json:"unique,omitempty" yaml:"unique,omitempty"`
	AutoIncrement bool   `json:"autoIncrement,omitempty" yaml:"autoIncrement,omitempty"`
	Min           *Bound `json:"min,omitempty" yaml:"min,omitempty"`
	Max           *Bound `json:"max,omitempty" yaml:"max,omitempty"`
	Faker         string `json:"faker,omitempty" yaml:"faker,omitempty"`

	// BitString sends bit values as a '0101' literal instead of an integer.
	BitString bool `json:"bitString,omitempty" yaml:"bitString,omitempty"`
}

type ForeignKey struct {
	Table  string `json:"table" yaml:"table"`
	Column string `json:"column" yaml:"column"`
	Where  string `json:"where,omitempty" yaml:"where,omitempty"`
}

// Row maps column names to values. Columns absent from the map are left to
// the database default.
type Row map[string]interface{}
