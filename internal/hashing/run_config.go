package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/mmrzaf/dbfill/internal/domain"
)

type runConfigHashPayload struct {
	SchemaHash   string   `json:"schema_hash"`
	TargetKind   string   `json:"target_kind"`
	TargetSchema string   `json:"target_schema,omitempty"`
	TargetDSN    string   `json:"target_dsn"`
	Reset        bool     `json:"reset"`
	Tables       []string `json:"tables,omitempty"`
	Seed         int64    `json:"seed"`
}

// HashRunConfig fingerprints everything that determines a run's outcome on a
// given database state. The table filter is order insensitive.
func HashRunConfig(schema *domain.Schema, target *domain.TargetConfig, reset bool, tables []string, seed int64) (string, error) {
	sh, err := HashSchema(schema)
	if err != nil {
		return "", err
	}

	var filter []string
	if len(tables) > 0 {
		filter = append(filter, tables...)
		sort.Strings(filter)
	}

	p := runConfigHashPayload{
		SchemaHash:   sh,
		TargetKind:   target.Kind,
		TargetSchema: target.Schema,
		TargetDSN:    target.DSN,
		Reset:        reset,
		Tables:       filter,
		Seed:         seed,
	}
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
