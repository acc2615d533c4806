package app

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mmrzaf/dbfill/internal/analysis"
	"github.com/mmrzaf/dbfill/internal/domain"
	"github.com/mmrzaf/dbfill/internal/infra/repos/runs"
	"github.com/mmrzaf/dbfill/internal/infra/repos/schemas"
	"github.com/mmrzaf/dbfill/internal/infra/repos/targets"
	"github.com/mmrzaf/dbfill/internal/infra/targets/sqlite"
	"github.com/mmrzaf/dbfill/internal/logging"
	"github.com/mmrzaf/dbfill/internal/registry"
)

const shopDDL = `
CREATE TABLE users (
	id INTEGER PRIMARY KEY,
	email VARCHAR(60) NOT NULL UNIQUE,
	age INTEGER
);
CREATE TABLE orders (
	id INTEGER PRIMARY KEY,
	user_id INTEGER NOT NULL REFERENCES users(id),
	total DECIMAL(8,2)
);`

type fixture struct {
	dbPath     string
	schemaDir  string
	runRepo    *runs.SQLiteRepository
	svc        *RunService
	analyzeSvc *AnalyzeService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	f := &fixture{
		dbPath:    filepath.Join(dir, "shop.db"),
		schemaDir: filepath.Join(dir, "schemas"),
	}

	conn, err := sqlite.Open(context.Background(), f.dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := conn.ExecuteRawQuery(context.Background(), shopDDL); err != nil {
		t.Fatal(err)
	}
	_ = conn.Destroy()

	targetDir := filepath.Join(dir, "targets")
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		t.Fatal(err)
	}
	target := "name: local\nkind: sqlite\ndsn: " + f.dbPath + "\n"
	if err := os.WriteFile(filepath.Join(targetDir, "local.yaml"), []byte(target), 0o644); err != nil {
		t.Fatal(err)
	}

	f.runRepo = runs.NewSQLiteRepository(filepath.Join(dir, "state", "runs.db"))
	if err := f.runRepo.Init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = f.runRepo.Close() })

	logger := logging.NewLogger("error")
	genRegistry := registry.DefaultGeneratorRegistry()
	f.svc = NewRunService(
		schemas.NewFileRepository(f.schemaDir),
		targets.NewFileRepository(targetDir),
		f.runRepo,
		genRegistry,
		logger,
		0,
	)
	f.analyzeSvc = NewAnalyzeService(genRegistry, logger)
	return f
}

func (f *fixture) target() *domain.TargetConfig {
	return &domain.TargetConfig{Name: "local", Kind: domain.TargetKindSQLite, DSN: f.dbPath}
}

func TestAnalyzeThenGenerate_SQLite(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	schema, err := f.analyzeSvc.Analyze(ctx, f.target(), analysis.Options{MaxLines: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(schema.Tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(schema.Tables))
	}
	if err := schemas.NewFileRepository(f.schemaDir).Save(filepath.Join(f.schemaDir, "shop.json"), schema); err != nil {
		t.Fatal(err)
	}

	seed := int64(5)
	req := &domain.RunRequest{SchemaID: "shop", TargetID: "local", Seed: &seed}

	plan, err := f.svc.Plan(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	if len(plan) != 2 || plan[0].Table != "users" || plan[0].Missing() != 10 {
		t.Fatalf("unexpected plan: %#v", plan)
	}

	run, stats, err := f.svc.Generate(ctx, req, nil)
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != domain.RunStatusSuccess {
		t.Fatalf("expected success, got %s (%s)", run.Status, run.Error)
	}
	if stats.TotalRows != 20 {
		t.Fatalf("expected 20 rows, got %d", stats.TotalRows)
	}
	if run.Seed != 5 || run.SchemaName != "shop" || run.ConfigHash == "" {
		t.Fatalf("unexpected run: %#v", run)
	}

	stored, err := f.svc.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatal(err)
	}
	var storedStats domain.RunStats
	if err := json.Unmarshal(stored.Stats, &storedStats); err != nil {
		t.Fatal(err)
	}
	if storedStats.TotalRows != 20 || stored.CompletedAt == nil {
		t.Fatalf("unexpected stored run: %#v", stored)
	}

	plan, err = f.svc.Plan(ctx, req)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range plan {
		if p.Missing() != 0 {
			t.Fatalf("expected full tables after run, got %#v", p)
		}
	}

	// same config on a full database writes nothing
	run2, stats2, err := f.svc.Generate(ctx, req, nil)
	if err != nil {
		t.Fatal(err)
	}
	if stats2.TotalRows != 0 || run2.ConfigHash != run.ConfigHash {
		t.Fatalf("expected idempotent rerun, got %d rows", stats2.TotalRows)
	}

	list, err := f.svc.ListRuns(ctx, 10, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 recorded runs, got %d", len(list))
	}
}

func TestGenerate_PartialWhenForeignKeysStarve(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	limit := int64(5)
	schema := &domain.Schema{
		Name: "orders_only",
		Tables: []domain.Table{
			{
				Name:     "orders",
				MaxLines: &limit,
				Columns: []domain.Column{
					{Name: "id", Options: domain.ColumnOptions{AutoIncrement: true}},
					{Name: "user_id", ForeignKey: &domain.ForeignKey{Table: "users", Column: "id"}},
				},
			},
		},
	}

	run, stats, err := f.svc.Generate(ctx, &domain.RunRequest{Schema: schema, Target: f.target()}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != domain.RunStatusPartial {
		t.Fatalf("expected partial run, got %s", run.Status)
	}
	if stats.TablesAborted != 1 || run.Error == "" {
		t.Fatalf("expected abort to be recorded, got %#v / %q", stats, run.Error)
	}

	partial, err := f.svc.ListRuns(ctx, 0, string(domain.RunStatusPartial))
	if err != nil {
		t.Fatal(err)
	}
	if len(partial) != 1 {
		t.Fatalf("expected one partial run, got %d", len(partial))
	}
}

func TestGenerate_FailedRunIsRecorded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	limit := int64(1)
	schema := &domain.Schema{
		Name: "broken",
		Tables: []domain.Table{
			{
				Name:     "users",
				MaxLines: &limit,
				Before:   []string{"DELETE FROM missing_table"},
				Columns:  []domain.Column{{Name: "email", Generator: domain.GeneratorVarchar}},
			},
		},
	}

	run, _, err := f.svc.Generate(ctx, &domain.RunRequest{Schema: schema, Target: f.target()}, nil)
	if err == nil {
		t.Fatal("expected hook failure")
	}
	if run == nil || run.Status != domain.RunStatusFailed {
		t.Fatalf("expected failed run, got %#v", run)
	}
	stored, err := f.svc.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != domain.RunStatusFailed || stored.Error == "" {
		t.Fatalf("expected failure to be stored, got %#v", stored)
	}
}

func TestGenerate_InvalidRequest(t *testing.T) {
	f := newFixture(t)
	if _, _, err := f.svc.Generate(context.Background(), &domain.RunRequest{TargetID: "local"}, nil); err == nil {
		t.Fatal("expected error without a schema")
	}
	if _, _, err := f.svc.Generate(context.Background(), &domain.RunRequest{SchemaID: "nope", TargetID: "local"}, nil); err == nil {
		t.Fatal("expected error for unknown schema")
	}
}

func TestCheckTarget_SQLite(t *testing.T) {
	f := newFixture(t)
	check, err := CheckTarget(context.Background(), f.target())
	if err != nil {
		t.Fatal(err)
	}
	if !check.OK || check.Tables != 2 || check.ServerVersion == "" {
		t.Fatalf("unexpected check: %#v", check)
	}

	check, err = CheckTarget(context.Background(), &domain.TargetConfig{Name: "x", Kind: "oracle", DSN: "x"})
	if err == nil || check.OK {
		t.Fatalf("expected failed check, got %#v", check)
	}
}
