package app

import (
	"context"
	"fmt"
	"time"

	"github.com/mmrzaf/dbfill/internal/domain"
	"github.com/mmrzaf/dbfill/internal/infra/targets/mysql"
	"github.com/mmrzaf/dbfill/internal/infra/targets/postgres"
	"github.com/mmrzaf/dbfill/internal/infra/targets/sqlbase"
	"github.com/mmrzaf/dbfill/internal/infra/targets/sqlite"
	"github.com/mmrzaf/dbfill/internal/validation"
)

// OpenConnector connects to a target and pings it.
func OpenConnector(ctx context.Context, t *domain.TargetConfig) (*sqlbase.Connector, error) {
	effective := resolveTargetForRun(t, "")
	switch effective.Kind {
	case domain.TargetKindMySQL:
		return mysql.Open(ctx, effective.DSN)
	case domain.TargetKindPostgres:
		return postgres.Open(ctx, effective.DSN, effective.Schema)
	case domain.TargetKindSQLite:
		return sqlite.Open(ctx, effective.DSN)
	default:
		return nil, fmt.Errorf("unsupported target kind: %q", effective.Kind)
	}
}

var versionQueries = map[string]string{
	domain.TargetKindMySQL:    "SELECT VERSION()",
	domain.TargetKindPostgres: "SHOW server_version",
	domain.TargetKindSQLite:   "SELECT sqlite_version()",
}

// CheckTarget validates t, connects to it and lists its tables. The returned
// check is filled in even when err is not nil.
func CheckTarget(ctx context.Context, t *domain.TargetConfig) (*domain.TargetCheck, error) {
	check := &domain.TargetCheck{
		TargetID:  t.ID,
		CheckedAt: time.Now().UTC(),
	}

	val := validation.NewValidator(nil)
	if err := val.ValidateTarget(t); err != nil {
		check.Error = err.Error()
		return check, err
	}

	start := time.Now()
	conn, err := OpenConnector(ctx, t)
	check.LatencyMS = time.Since(start).Milliseconds()
	if err != nil {
		check.Error = err.Error()
		return check, err
	}
	defer conn.Destroy()

	tables, err := conn.GetTablesInformation(ctx)
	if err != nil {
		check.Error = err.Error()
		return check, err
	}
	check.OK = true
	check.Tables = len(tables)

	var version string
	if err := conn.DB().QueryRowContext(ctx, versionQueries[t.Kind]).Scan(&version); err == nil {
		check.ServerVersion = version
	}
	return check, nil
}
