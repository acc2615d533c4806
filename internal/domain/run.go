package domain

import (
	"encoding/json"
	"time"
)

type TargetConfig struct {
	ID       string            `json:"id" yaml:"id"`
	Name     string            `json:"name" yaml:"name"`
	Kind     string            `json:"kind" yaml:"kind"`
	DSN      string            `json:"dsn" yaml:"dsn"`
	Schema   string            `json:"schema,omitempty" yaml:"schema,omitempty"`
	Database string            `json:"database,omitempty" yaml:"database,omitempty"`
	Options  map[string]string `json:"options,omitempty" yaml:"options,omitempty"`
}

// TargetCheck is the outcome of probing a target's connectivity.
type TargetCheck struct {
	TargetID      string    `json:"target_id" yaml:"target_id"`
	OK            bool      `json:"ok" yaml:"ok"`
	LatencyMS     int64     `json:"latency_ms" yaml:"latency_ms"`
	ServerVersion string    `json:"server_version,omitempty" yaml:"server_version,omitempty"`
	Tables        int       `json:"tables" yaml:"tables"`
	Error         string    `json:"error,omitempty" yaml:"error,omitempty"`
	CheckedAt     time.Time `json:"checked_at" yaml:"checked_at"`
}

const (
	TargetKindMySQL    = "mysql"
	TargetKindPostgres = "postgres"
	TargetKindSQLite   = "sqlite"
)

type Run struct {
	ID          string          `json:"id" yaml:"id"`
	SchemaName  string          `json:"schema_name" yaml:"schema_name"`
	TargetName  string          `json:"target_name" yaml:"target_name"`
	TargetKind  string          `json:"target_kind" yaml:"target_kind"`
	Seed        int64           `json:"seed" yaml:"seed"`
	Reset       bool            `json:"reset" yaml:"reset"`
	ConfigHash  string          `json:"config_hash" yaml:"config_hash"`
	Status      RunStatus       `json:"status" yaml:"status"`
	StartedAt   time.Time       `json:"started_at" yaml:"started_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	Stats       json.RawMessage `json:"stats,omitempty" yaml:"-"`
	Error       string          `json:"error,omitempty" yaml:"error,omitempty"`
}

type RunStatus string

const (
	RunStatusRunning RunStatus = "running"
	RunStatusSuccess RunStatus = "success"
	RunStatusPartial RunStatus = "partial"
	RunStatusFailed  RunStatus = "failed"
)

type RunStats struct {
	TablesFilled    int             `json:"tables_filled" yaml:"tables_filled"`
	TablesAborted   int             `json:"tables_aborted" yaml:"tables_aborted"`
	TotalRows       int64           `json:"total_rows" yaml:"total_rows"`
	DurationSeconds float64         `json:"duration_seconds" yaml:"duration_seconds"`
	TableStats      []TableRunStats `json:"table_stats" yaml:"table_stats"`
}

type TableRunStats struct {
	TableName       string  `json:"table_name" yaml:"table_name"`
	RowsBefore      int64   `json:"rows_before" yaml:"rows_before"`
	RowsAfter       int64   `json:"rows_after" yaml:"rows_after"`
	Target          int64   `json:"target" yaml:"target"`
	Batches         int     `json:"batches" yaml:"batches"`
	Aborted         string  `json:"aborted,omitempty" yaml:"aborted,omitempty"`
	DurationSeconds float64 `json:"duration_seconds" yaml:"duration_seconds"`
}

// RowsInserted is the number of rows the run added to the table.
func (s TableRunStats) RowsInserted() int64 {
	return s.RowsAfter - s.RowsBefore
}

type RunRequest struct {
	SchemaID string        `json:"schema_id,omitempty"`
	Schema   *Schema       `json:"schema,omitempty"`
	TargetID string        `json:"target_id,omitempty"`
	Target   *TargetConfig `json:"target,omitempty"`
	Seed     *int64        `json:"seed,omitempty"`
	Reset    bool          `json:"reset,omitempty"`
	Tables   []string      `json:"tables,omitempty"`
}
