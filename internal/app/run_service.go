package app

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mmrzaf/dbfill/internal/domain"
	"github.com/mmrzaf/dbfill/internal/exec"
	"github.com/mmrzaf/dbfill/internal/generator"
	"github.com/mmrzaf/dbfill/internal/hashing"
	"github.com/mmrzaf/dbfill/internal/infra/repos/runs"
	"github.com/mmrzaf/dbfill/internal/infra/repos/schemas"
	"github.com/mmrzaf/dbfill/internal/infra/repos/targets"
	"github.com/mmrzaf/dbfill/internal/logging"
	"github.com/mmrzaf/dbfill/internal/registry"
	"github.com/mmrzaf/dbfill/internal/validation"
)

type RunService struct {
	schemaRepo    schemas.Repository
	targetRepo    targets.Repository
	runRepo       runs.Repository
	genRegistry   *registry.GeneratorRegistry
	validator     *validation.Validator
	logger        *logging.Logger
	maxCharLength int
}

// NewRunService wires the repositories used by generate runs. runRepo may be
// nil, in which case runs are not recorded. maxCharLength applies to
// schemas that do not set their own.
func NewRunService(
	schemaRepo schemas.Repository,
	targetRepo targets.Repository,
	runRepo runs.Repository,
	genRegistry *registry.GeneratorRegistry,
	logger *logging.Logger,
	maxCharLength int,
) *RunService {
	return &RunService{
		schemaRepo:    schemaRepo,
		targetRepo:    targetRepo,
		runRepo:       runRepo,
		genRegistry:   genRegistry,
		validator:     validation.NewValidator(genRegistry),
		logger:        logger.WithComponent("run"),
		maxCharLength: maxCharLength,
	}
}

// PlanEntry is one table of a dry run.
type PlanEntry struct {
	Table   string `json:"table"`
	Current int64  `json:"current"`
	Target  int64  `json:"target"`
}

func (p PlanEntry) Missing() int64 {
	if p.Target <= p.Current {
		return 0
	}
	return p.Target - p.Current
}

func (s *RunService) resolve(req *domain.RunRequest) (*domain.Schema, *domain.TargetConfig, error) {
	if err := s.validator.ValidateRunRequest(req); err != nil {
		return nil, nil, fmt.Errorf("invalid run request: %w", err)
	}

	schema := req.Schema
	if req.SchemaID != "" {
		loaded, err := s.schemaRepo.Get(req.SchemaID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load schema: %w", err)
		}
		schema = loaded
	}
	if schema.MaxCharLength == 0 && s.maxCharLength > 0 {
		schema.MaxCharLength = s.maxCharLength
	}
	if err := s.validator.ValidateSchema(schema); err != nil {
		return nil, nil, fmt.Errorf("schema validation failed: %w", err)
	}

	target := req.Target
	if req.TargetID != "" {
		loaded, err := s.targetRepo.Get(req.TargetID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load target: %w", err)
		}
		target = loaded
	}
	if err := s.validator.ValidateTarget(target); err != nil {
		return nil, nil, fmt.Errorf("target validation failed: %w", err)
	}
	return schema, target, nil
}

// Plan reports, without writing anything, how many rows each selected table
// has and would be filled up to.
func (s *RunService) Plan(ctx context.Context, req *domain.RunRequest) ([]PlanEntry, error) {
	schema, target, err := s.resolve(req)
	if err != nil {
		return nil, err
	}
	order, err := exec.Order(schema, req.Tables)
	if err != nil {
		return nil, err
	}

	conn, err := OpenConnector(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", target.Name, err)
	}
	defer conn.Destroy()

	plan := make([]PlanEntry, 0, len(order))
	for _, name := range order {
		current := int64(0)
		if !req.Reset {
			current, err = conn.CountLines(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("failed to count rows of %s: %w", name, err)
			}
		}
		plan = append(plan, PlanEntry{Table: name, Current: current, Target: schema.Table(name).Target(current)})
	}
	return plan, nil
}

// Generate fills the target and records the run. Aborted tables mark the run
// partial without failing it; the run and the stats gathered so far are
// returned alongside any hard error.
func (s *RunService) Generate(ctx context.Context, req *domain.RunRequest, reporter generator.Reporter) (*domain.Run, *domain.RunStats, error) {
	schema, target, err := s.resolve(req)
	if err != nil {
		return nil, nil, err
	}

	var seed int64
	switch {
	case req.Seed != nil:
		seed = *req.Seed
	case schema.Seed != nil:
		seed = *schema.Seed
	default:
		seed = generateSeed()
	}

	configHash, err := hashing.HashRunConfig(schema, target, req.Reset, req.Tables, seed)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash run config: %w", err)
	}

	run := &domain.Run{
		SchemaName: schema.Name,
		TargetName: target.Name,
		TargetKind: target.Kind,
		Seed:       seed,
		Reset:      req.Reset,
		ConfigHash: configHash,
		Status:     domain.RunStatusRunning,
		StartedAt:  time.Now().UTC(),
	}
	if s.runRepo != nil {
		if err := s.runRepo.Create(ctx, run); err != nil {
			return nil, nil, fmt.Errorf("failed to create run: %w", err)
		}
	}

	s.logger.Infow("run.started", map[string]any{
		"run_id": run.ID, "schema": schema.Name, "target": target.Name, "seed": seed, "reset": req.Reset,
	})

	conn, err := OpenConnector(ctx, target)
	if err != nil {
		err = fmt.Errorf("failed to connect to %s: %w", target.Name, err)
		s.finish(run, nil, err)
		return run, nil, err
	}
	defer conn.Destroy()

	executor := exec.NewExecutor(s.genRegistry, reporter)
	stats, err := executor.Execute(ctx, schema, conn, exec.Options{
		Seed:   seed,
		Reset:  req.Reset,
		Tables: req.Tables,
	})
	s.finish(run, stats, err)
	return run, stats, err
}

func (s *RunService) finish(run *domain.Run, stats *domain.RunStats, runErr error) {
	now := time.Now().UTC()
	run.CompletedAt = &now

	switch {
	case runErr != nil:
		run.Status = domain.RunStatusFailed
		run.Error = runErr.Error()
	case stats != nil && stats.TablesAborted > 0:
		run.Status = domain.RunStatusPartial
		run.Error = abortSummary(stats)
	default:
		run.Status = domain.RunStatusSuccess
	}

	if stats != nil {
		if data, err := json.Marshal(stats); err == nil {
			run.Stats = data
		}
	}

	fields := map[string]any{"run_id": run.ID, "status": string(run.Status)}
	if stats != nil {
		fields["rows"] = stats.TotalRows
		fields["tables_filled"] = stats.TablesFilled
		fields["tables_aborted"] = stats.TablesAborted
		fields["duration_s"] = stats.DurationSeconds
	}
	if runErr != nil {
		fields["error"] = runErr
		s.logger.Errorw("run.failed", fields)
	} else {
		s.logger.Infow("run.completed", fields)
	}

	if s.runRepo == nil {
		return
	}
	// the run outcome is recorded even when the caller's context is done
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.runRepo.Update(ctx, run); err != nil {
		s.logger.Error("Failed to update run %s: %v", run.ID, err)
	}
}

func abortSummary(stats *domain.RunStats) string {
	parts := make([]string, 0, stats.TablesAborted)
	for _, ts := range stats.TableStats {
		if ts.Aborted != "" {
			parts = append(parts, ts.TableName+": "+ts.Aborted)
		}
	}
	return strings.Join(parts, "; ")
}

func (s *RunService) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	if s.runRepo == nil {
		return nil, errors.New("run history is not configured")
	}
	return s.runRepo.Get(ctx, id)
}

func (s *RunService) ListRuns(ctx context.Context, limit int, status string) ([]*domain.Run, error) {
	if s.runRepo == nil {
		return nil, errors.New("run history is not configured")
	}
	return s.runRepo.List(ctx, limit, status)
}

func generateSeed() int64 {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return int64(binary.LittleEndian.Uint64(b[:]) >> 1)
}
