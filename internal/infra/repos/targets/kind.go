package targets

import (
	"strings"

	"github.com/mmrzaf/dbfill/internal/domain"
)

// InferKind guesses the target kind from the shape of a DSN. It returns an
// empty string when nothing matches.
func InferKind(dsn string) string {
	dsn = strings.TrimSpace(dsn)
	lower := strings.ToLower(dsn)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return domain.TargetKindPostgres
	case strings.HasPrefix(lower, "mysql://"):
		return domain.TargetKindMySQL
	case strings.HasPrefix(lower, "sqlite://"), strings.HasPrefix(lower, "file:"), lower == ":memory:":
		return domain.TargetKindSQLite
	case strings.Contains(lower, "@tcp("), strings.Contains(lower, "@unix("):
		return domain.TargetKindMySQL
	case strings.Contains(lower, "host=") || strings.Contains(lower, "dbname="):
		return domain.TargetKindPostgres
	}
	for _, ext := range []string{".db", ".sqlite", ".sqlite3"} {
		if strings.HasSuffix(lower, ext) {
			return domain.TargetKindSQLite
		}
	}
	return ""
}
