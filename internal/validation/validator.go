package validation

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/mmrzaf/dbfill/internal/domain"
	"github.com/mmrzaf/dbfill/internal/registry"
)

type Validator struct {
	genRegistry *registry.GeneratorRegistry
}

func NewValidator(genRegistry *registry.GeneratorRegistry) *Validator {
	return &Validator{genRegistry: genRegistry}
}

// Connectors quote every identifier, so reserved words are fine; the pattern
// keeps names free of quoting and statement characters.
var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

func IsValidIdentifier(s string) bool {
	return identRe.MatchString(strings.TrimSpace(s))
}

func (v *Validator) ValidateSchema(schema *domain.Schema) error {
	if len(schema.Tables) == 0 {
		return errors.New("schema must have at least one table")
	}
	if schema.MaxCharLength < 0 {
		return fmt.Errorf("maxCharLength must be >= 0, got %d", schema.MaxCharLength)
	}
	for name, pool := range schema.Values {
		if name == "" {
			return errors.New("values pool name is required")
		}
		if len(pool) == 0 {
			return fmt.Errorf("values pool %s is empty", name)
		}
	}

	tableNames := make(map[string]bool)
	for i := range schema.Tables {
		table := &schema.Tables[i]
		if err := v.validateTable(schema, table, tableNames); err != nil {
			return fmt.Errorf("table '%s': %w", table.Name, err)
		}
	}

	if _, err := TopologicalSort(schema); err != nil {
		return fmt.Errorf("dependency validation failed: %w", err)
	}
	return nil
}

func (v *Validator) validateTable(schema *domain.Schema, table *domain.Table, tableNames map[string]bool) error {
	if table.Name == "" {
		return errors.New("table name is required")
	}
	if !IsValidIdentifier(table.Name) {
		return fmt.Errorf("invalid table identifier: %s", table.Name)
	}
	if tableNames[table.Name] {
		return fmt.Errorf("duplicate table name: %s", table.Name)
	}
	tableNames[table.Name] = true

	maxLines, addLines := table.Limits()
	if maxLines == nil && addLines == nil {
		return errors.New("one of maxLines or addLines is required")
	}
	if maxLines != nil && *maxLines < 0 {
		return fmt.Errorf("maxLines must be >= 0, got %d", *maxLines)
	}
	if addLines != nil && *addLines < 0 {
		return fmt.Errorf("addLines must be >= 0, got %d", *addLines)
	}

	if len(table.Columns) == 0 {
		return errors.New("table must have at least one column")
	}
	columnNames := make(map[string]bool)
	for i := range table.Columns {
		col := &table.Columns[i]
		if err := v.validateColumn(schema, col, columnNames); err != nil {
			return fmt.Errorf("column '%s': %w", col.Name, err)
		}
	}

	for i, stmt := range table.Before {
		if strings.TrimSpace(stmt) == "" {
			return fmt.Errorf("before statement %d is empty", i+1)
		}
	}
	for i, stmt := range table.After {
		if strings.TrimSpace(stmt) == "" {
			return fmt.Errorf("after statement %d is empty", i+1)
		}
	}
	return nil
}

func (v *Validator) validateColumn(schema *domain.Schema, col *domain.Column, columnNames map[string]bool) error {
	if col.Name == "" {
		return errors.New("column name is required")
	}
	if !IsValidIdentifier(col.Name) {
		return fmt.Errorf("invalid column identifier: %s", col.Name)
	}
	if columnNames[col.Name] {
		return fmt.Errorf("duplicate column name: %s", col.Name)
	}
	columnNames[col.Name] = true

	if col.ForeignKey != nil {
		if col.ForeignKey.Table == "" || col.ForeignKey.Column == "" {
			return errors.New("foreignKey must include table and column")
		}
		if !IsValidIdentifier(col.ForeignKey.Table) {
			return fmt.Errorf("invalid foreignKey table identifier: %s", col.ForeignKey.Table)
		}
		if !IsValidIdentifier(col.ForeignKey.Column) {
			return fmt.Errorf("invalid foreignKey column identifier: %s", col.ForeignKey.Column)
		}
	}

	if col.Values != nil {
		if _, err := col.Values.Expand(schema.Values); err != nil {
			return fmt.Errorf("invalid values: %w", err)
		}
	}

	// Only columns filled by a generator need a known tag.
	if col.Options.AutoIncrement || col.Values != nil || col.ForeignKey != nil {
		if col.Generator == "" {
			return nil
		}
	}
	if col.Generator == "" {
		return errors.New("generator is required")
	}
	gen, err := v.genRegistry.Get(col.Generator)
	if err != nil {
		return fmt.Errorf("generator not found: %s", col.Generator)
	}
	if err := gen.Validate(col); err != nil {
		return fmt.Errorf("generator validation failed: %w", err)
	}
	return nil
}

func (v *Validator) ValidateTarget(t *domain.TargetConfig) error {
	if t.Name == "" {
		return errors.New("target name is required")
	}
	if t.Kind == "" {
		return errors.New("target kind is required")
	}
	if t.DSN == "" {
		return errors.New("target dsn is required")
	}

	switch t.Kind {
	case domain.TargetKindPostgres:
		if t.Schema != "" && !IsValidIdentifier(t.Schema) {
			return fmt.Errorf("invalid target schema identifier: %s", t.Schema)
		}
	case domain.TargetKindMySQL, domain.TargetKindSQLite:
		if t.Schema != "" {
			return fmt.Errorf("%s targets must not set schema", t.Kind)
		}
	default:
		return fmt.Errorf("unsupported target kind: %s", t.Kind)
	}
	if t.Database != "" && !IsValidIdentifier(t.Database) {
		return fmt.Errorf("invalid target database identifier: %s", t.Database)
	}
	return nil
}

func (v *Validator) ValidateRunRequest(req *domain.RunRequest) error {
	hasSchemaID := req.SchemaID != ""
	hasSchema := req.Schema != nil
	if !hasSchemaID && !hasSchema {
		return errors.New("either schema_id or schema must be provided")
	}
	if hasSchemaID && hasSchema {
		return errors.New("only one of schema_id or schema must be provided")
	}

	hasTargetID := req.TargetID != ""
	hasTarget := req.Target != nil
	if !hasTargetID && !hasTarget {
		return errors.New("either target_id or target must be provided")
	}
	if hasTargetID && hasTarget {
		return errors.New("only one of target_id or target must be provided")
	}

	for _, name := range req.Tables {
		if !IsValidIdentifier(name) {
			return fmt.Errorf("invalid table name in tables: %s", name)
		}
		if req.Schema != nil && req.Schema.Table(name) == nil {
			return fmt.Errorf("table %s is not part of the schema", name)
		}
	}

	if req.Schema != nil {
		if err := v.ValidateSchema(req.Schema); err != nil {
			return fmt.Errorf("schema validation failed: %w", err)
		}
	}
	if req.Target != nil {
		if err := v.ValidateTarget(req.Target); err != nil {
			return fmt.Errorf("target validation failed: %w", err)
		}
	}
	return nil
}

// TopologicalSort orders tables so that referenced tables come before the
// tables pointing at them. Self references and references to tables outside
// the schema are ignored. When the full graph has a cycle, edges coming from
// nullable foreign keys are dropped and the sort is retried, since those
// rows can be inserted with NULL references. Ties keep declaration order.
func TopologicalSort(schema *domain.Schema) ([]string, error) {
	if order, ok := topologicalSort(schema, true); ok {
		return order, nil
	}
	if order, ok := topologicalSort(schema, false); ok {
		return order, nil
	}
	return nil, errors.New("cycle detected in table dependencies")
}

func topologicalSort(schema *domain.Schema, withNullable bool) ([]string, bool) {
	position := make(map[string]int, len(schema.Tables))
	for i, t := range schema.Tables {
		position[t.Name] = i
	}

	graph := make(map[string][]string) // dependency -> dependents
	inDegree := make(map[string]int)
	for _, table := range schema.Tables {
		if _, ok := inDegree[table.Name]; !ok {
			inDegree[table.Name] = 0
		}
		seen := make(map[string]bool)
		for _, col := range table.Columns {
			fk := col.ForeignKey
			if fk == nil || fk.Table == table.Name || seen[fk.Table] {
				continue
			}
			if _, inSchema := position[fk.Table]; !inSchema {
				continue
			}
			if col.Options.Nullable && !withNullable {
				continue
			}
			seen[fk.Table] = true
			graph[fk.Table] = append(graph[fk.Table], table.Name)
			inDegree[table.Name]++
		}
	}

	byPosition := func(q []string) {
		sort.Slice(q, func(i, j int) bool { return position[q[i]] < position[q[j]] })
	}

	queue := make([]string, 0)
	for _, table := range schema.Tables {
		if inDegree[table.Name] == 0 {
			queue = append(queue, table.Name)
		}
	}

	result := make([]string, 0, len(schema.Tables))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, dependent := range graph[node] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
		byPosition(queue)
	}
	return result, len(result) == len(schema.Tables)
}
