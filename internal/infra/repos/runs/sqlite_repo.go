package runs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mmrzaf/dbfill/internal/domain"
)

// ErrNotFound is returned by Get for an unknown run ID.
var ErrNotFound = errors.New("run not found")

// Repository keeps the history of generate runs.
type Repository interface {
	Init() error
	Create(ctx context.Context, run *domain.Run) error
	Update(ctx context.Context, run *domain.Run) error
	Get(ctx context.Context, id string) (*domain.Run, error)
	List(ctx context.Context, limit int, status string) ([]*domain.Run, error)
	Close() error
}

type SQLiteRepository struct {
	dbPath string
	db     *sql.DB
}

func NewSQLiteRepository(dbPath string) *SQLiteRepository {
	return &SQLiteRepository{dbPath: dbPath}
}

var runColumns = []string{
	"id", "schema_name", "target_name", "target_kind",
	"seed", "reset", "config_hash", "status",
	"started_at", "completed_at", "stats", "error",
}

// Init opens the history database, creating its directory and table when
// missing.
func (r *SQLiteRepository) Init() error {
	if dir := filepath.Dir(r.dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite3", r.dbPath)
	if err != nil {
		return err
	}
	db.SetMaxOpenConns(1)
	r.db = db

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		schema_name TEXT NOT NULL,
		target_name TEXT NOT NULL,
		target_kind TEXT NOT NULL,
		seed INTEGER NOT NULL,
		reset INTEGER NOT NULL DEFAULT 0,
		config_hash TEXT NOT NULL,
		status TEXT NOT NULL,
		started_at TEXT NOT NULL,
		completed_at TEXT,
		stats TEXT,
		error TEXT
	)`

	if _, err := r.db.Exec(createTableSQL); err != nil {
		return err
	}
	_, err = r.db.Exec(`CREATE INDEX IF NOT EXISTS runs_started_at ON runs (started_at)`)
	return err
}

func (r *SQLiteRepository) DB() *sql.DB { return r.db }

func (r *SQLiteRepository) Create(ctx context.Context, run *domain.Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}

	_, err := squirrel.Insert("runs").
		Columns(runColumns...).
		Values(
			run.ID, run.SchemaName, run.TargetName, run.TargetKind,
			run.Seed, run.Reset, run.ConfigHash, string(run.Status),
			formatTime(&run.StartedAt), formatTime(run.CompletedAt), nullString(string(run.Stats)), nullString(run.Error),
		).
		RunWith(r.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) Update(ctx context.Context, run *domain.Run) error {
	res, err := squirrel.Update("runs").
		Set("status", string(run.Status)).
		Set("completed_at", formatTime(run.CompletedAt)).
		Set("stats", nullString(string(run.Stats))).
		Set("error", nullString(run.Error)).
		Where(squirrel.Eq{"id": run.ID}).
		RunWith(r.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to update run %s: %w", run.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, run.ID)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*domain.Run, error) {
	row := squirrel.Select(runColumns...).
		From("runs").
		Where(squirrel.Eq{"id": id}).
		RunWith(r.db).
		QueryRowContext(ctx)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return run, err
}

// List returns runs newest first. A zero limit means no limit and an empty
// status matches every run.
func (r *SQLiteRepository) List(ctx context.Context, limit int, status string) ([]*domain.Run, error) {
	q := squirrel.Select(runColumns...).
		From("runs").
		OrderBy("started_at DESC", "id")
	if status != "" {
		q = q.Where(squirrel.Eq{"status": status})
	}
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	rows, err := q.RunWith(r.db).QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]*domain.Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func scanRun(s squirrel.RowScanner) (*domain.Run, error) {
	var run domain.Run
	var status string
	var startedAtStr string
	var completedAtStr sql.NullString
	var statsStr sql.NullString
	var errorStr sql.NullString

	err := s.Scan(
		&run.ID, &run.SchemaName, &run.TargetName, &run.TargetKind,
		&run.Seed, &run.Reset, &run.ConfigHash, &status,
		&startedAtStr, &completedAtStr, &statsStr, &errorStr,
	)
	if err != nil {
		return nil, err
	}

	run.Status = domain.RunStatus(status)
	run.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAtStr)
	if completedAtStr.Valid {
		t, _ := time.Parse(time.RFC3339Nano, completedAtStr.String)
		run.CompletedAt = &t
	}
	if statsStr.Valid {
		run.Stats = []byte(statsStr.String)
	}
	if errorStr.Valid {
		run.Error = errorStr.String
	}

	return &run, nil
}

func formatTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
