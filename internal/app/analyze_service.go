package app

import (
	"context"
	"fmt"

	"github.com/mmrzaf/dbfill/internal/analysis"
	"github.com/mmrzaf/dbfill/internal/domain"
	"github.com/mmrzaf/dbfill/internal/logging"
	"github.com/mmrzaf/dbfill/internal/registry"
	"github.com/mmrzaf/dbfill/internal/validation"
)

type AnalyzeService struct {
	validator *validation.Validator
	logger    *logging.Logger
}

func NewAnalyzeService(genRegistry *registry.GeneratorRegistry, logger *logging.Logger) *AnalyzeService {
	return &AnalyzeService{
		validator: validation.NewValidator(genRegistry),
		logger:    logger,
	}
}

// Analyze introspects target and returns a schema that fills every selected
// table up to opts.MaxLines rows. The schema is validated before it is
// returned so a saved analysis can be used by generate as is.
func (s *AnalyzeService) Analyze(ctx context.Context, target *domain.TargetConfig, opts analysis.Options) (*domain.Schema, error) {
	if err := s.validator.ValidateTarget(target); err != nil {
		return nil, fmt.Errorf("target validation failed: %w", err)
	}
	conn, err := OpenConnector(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", target.Name, err)
	}
	defer conn.Destroy()

	schema, err := analysis.NewAnalyzer(conn, s.logger).Analyze(ctx, opts)
	if err != nil {
		return nil, err
	}
	if len(schema.Tables) == 0 {
		return nil, fmt.Errorf("no tables found in %s", target.Name)
	}
	if err := s.validator.ValidateSchema(schema); err != nil {
		return schema, fmt.Errorf("analysed schema is not valid: %w", err)
	}
	return schema, nil
}
