package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/mmrzaf/dbfill/internal/domain"
)

// HashSchema fingerprints the parts of a schema that change what gets
// written. The schema name is left out so a renamed copy hashes the same.
func HashSchema(schema *domain.Schema) (string, error) {
	canonical := canonicalizeSchema(schema)
	data, err := json.Marshal(canonical)
	if err != nil {
		return "", err
	}

	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

func canonicalizeSchema(schema *domain.Schema) map[string]interface{} {
	tables := make([]map[string]interface{}, len(schema.Tables))
	for i := range schema.Tables {
		table := &schema.Tables[i]
		columns := make([]map[string]interface{}, len(table.Columns))
		for j, col := range table.Columns {
			colMap := map[string]interface{}{
				"name":      col.Name,
				"generator": col.Generator,
				"options":   col.Options,
			}
			if col.ForeignKey != nil {
				colMap["foreign_key"] = col.ForeignKey
			}
			if col.Values != nil {
				colMap["values"] = col.Values
			}
			columns[j] = colMap
		}

		maxLines, addLines := table.Limits()
		tables[i] = map[string]interface{}{
			"name":      table.Name,
			"max_lines": maxLines,
			"add_lines": addLines,
			"columns":   columns,
			"before":    table.Before,
			"after":     table.After,
		}
	}

	result := map[string]interface{}{
		"max_char_length": schema.EffectiveMaxCharLength(),
		"tables":          tables,
	}
	if len(schema.Values) > 0 {
		result["values"] = schema.Values
	}
	return result
}
