package app

import (
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/mmrzaf/dbfill/internal/config"
	"github.com/mmrzaf/dbfill/internal/domain"
	"github.com/mmrzaf/dbfill/internal/infra/repos/targets"
)

// TargetFromConfig builds an ad hoc target from the database and driver
// settings. It returns nil when no database is configured.
func TargetFromConfig(cfg *config.Config) *domain.TargetConfig {
	if cfg == nil || strings.TrimSpace(cfg.Database) == "" {
		return nil
	}
	kind := cfg.Driver
	if kind == "" {
		kind = targets.InferKind(cfg.Database)
	}
	return &domain.TargetConfig{
		ID:   "config",
		Name: "config",
		Kind: kind,
		DSN:  strings.TrimSpace(cfg.Database),
	}
}

func resolveTargetForRun(base *domain.TargetConfig, dbOverride string) *domain.TargetConfig {
	if base == nil {
		return nil
	}
	t := *base
	if dbOverride != "" {
		t.Database = dbOverride
	}
	if t.Database == "" {
		return &t
	}
	switch t.Kind {
	case domain.TargetKindPostgres:
		t.DSN = withPostgresDatabase(t.DSN, t.Database)
	case domain.TargetKindMySQL:
		t.DSN = withMySQLDatabase(t.DSN, t.Database)
	}
	return &t
}

func withPostgresDatabase(dsn, database string) string {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return dsn
	}
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" && u.Host != "" {
		u.Path = "/" + database
		return u.String()
	}
	parts := strings.Fields(dsn)
	found := false
	for i := range parts {
		if strings.HasPrefix(strings.ToLower(parts[i]), "dbname=") {
			parts[i] = "dbname=" + database
			found = true
			break
		}
	}
	if !found {
		parts = append(parts, "dbname="+database)
	}
	return strings.Join(parts, " ")
}

func withMySQLDatabase(dsn, database string) string {
	dsn = strings.TrimSpace(dsn)
	if u, err := url.Parse(dsn); err == nil && u.Scheme == "mysql" && u.Host != "" {
		u.Path = "/" + database
		return u.String()
	}
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return dsn
	}
	cfg.DBName = database
	return cfg.FormatDSN()
}
