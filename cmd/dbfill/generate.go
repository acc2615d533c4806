package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mmrzaf/dbfill/internal/analysis"
	"github.com/mmrzaf/dbfill/internal/app"
	"github.com/mmrzaf/dbfill/internal/domain"
	"github.com/mmrzaf/dbfill/internal/generator"
	"github.com/mmrzaf/dbfill/internal/infra/repos/runs"
	"github.com/mmrzaf/dbfill/internal/infra/repos/schemas"
	"github.com/mmrzaf/dbfill/internal/infra/repos/targets"
	"github.com/mmrzaf/dbfill/internal/progress"
	"github.com/mmrzaf/dbfill/internal/registry"
)

func analyseCmd() *cobra.Command {
	var (
		output   string
		target   string
		tables   []string
		maxLines int64
	)

	cmd := &cobra.Command{
		Use:     "analyse",
		Aliases: []string{"analyze"},
		Short:   "Write a schema file describing the tables of a database",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			defer logger.Sync()

			t, err := resolveTarget(target)
			if err != nil {
				return err
			}

			svc := app.NewAnalyzeService(registry.DefaultGeneratorRegistry(), logger)
			schema, err := svc.Analyze(cmd.Context(), t, analysis.Options{
				Tables:   splitList(tables),
				MaxLines: maxLines,
			})
			if schema == nil {
				return err
			}
			if err != nil {
				logger.Warn("Saving schema anyway: %v", err)
			}

			if err := schemas.NewFileRepository(filepath.Dir(output)).Save(output, schema); err != nil {
				return err
			}
			fmt.Printf("Wrote %d tables to %s\n", len(schema.Tables), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "schema.json", "Schema file to write (.json or .yaml)")
	cmd.Flags().StringVar(&target, "target", "", "Target name from the targets directory")
	cmd.Flags().StringSliceVar(&tables, "tables", nil, "Only analyse these tables")
	cmd.Flags().Int64Var(&maxLines, "max-lines", analysis.DefaultMaxLines, "maxLines written for every table")
	return cmd
}

func generateCmd() *cobra.Command {
	var (
		schemaRef string
		target    string
		tables    []string
		seed      int64
		reset     bool
		dryRun    bool
		quiet     bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Fill the tables of a schema up to their row targets",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := newLogger()
			defer logger.Sync()

			if schemaRef == "" {
				schemaRef = cfg.Schema
			}
			schema, err := loadSchema(schemaRef)
			if err != nil {
				return fmt.Errorf("failed to load schema: %w", err)
			}
			t, err := resolveTarget(target)
			if err != nil {
				return err
			}

			req := &domain.RunRequest{
				Schema: schema,
				Target: t,
				Reset:  reset,
				Tables: splitList(tables),
			}
			switch {
			case cmd.Flags().Changed("seed"):
				req.Seed = &seed
			case cfg.SeedSet:
				req.Seed = &cfg.Seed
			}

			genRegistry := registry.DefaultGeneratorRegistry()
			schemaRepo := schemas.NewFileRepository(cfg.SchemasDir)
			targetRepo := targets.NewFileRepository(cfg.TargetsDir)

			if dryRun {
				svc := app.NewRunService(schemaRepo, targetRepo, nil, genRegistry, logger, cfg.MaxCharLength)
				plan, err := svc.Plan(ctx, req)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "TABLE\tCURRENT\tTARGET\tMISSING")
				for _, p := range plan {
					fmt.Fprintf(w, "%s\t%d\t%d\t%d\n", p.Table, p.Current, p.Target, p.Missing())
				}
				return w.Flush()
			}

			runRepo := runs.NewSQLiteRepository(cfg.RunsDB)
			if err := runRepo.Init(); err != nil {
				return fmt.Errorf("failed to open run history: %w", err)
			}
			defer runRepo.Close()

			svc := app.NewRunService(schemaRepo, targetRepo, runRepo, genRegistry, logger, cfg.MaxCharLength)
			run, stats, err := svc.Generate(ctx, req, progress.Multi(progress.NewLogReporter(logger), consoleReporter(quiet)))
			if err != nil {
				return err
			}

			summary := fmt.Sprintf("Run %s: %d rows in %d tables (%.2fs, seed %d)",
				run.ID, stats.TotalRows, len(stats.TableStats), stats.DurationSeconds, run.Seed)
			if run.Status == domain.RunStatusPartial {
				color.New(color.FgYellow).Printf("%s, %d aborted\n", summary, stats.TablesAborted)
				return nil
			}
			color.New(color.FgGreen).Println(summary)
			return nil
		},
	}

	cmd.Flags().StringVar(&schemaRef, "schema", "", "Schema file or name (default from config)")
	cmd.Flags().StringVar(&target, "target", "", "Target name from the targets directory")
	cmd.Flags().StringSliceVar(&tables, "tables", nil, "Only fill these tables")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed")
	cmd.Flags().BoolVar(&reset, "reset", false, "Empty every selected table first")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show current and target row counts without writing")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print progress")
	return cmd
}

func consoleReporter(quiet bool) generator.Reporter {
	if quiet {
		return nil
	}
	return progress.NewConsoleReporter(os.Stdout)
}
