package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mmrzaf/dbfill/internal/app"
	"github.com/mmrzaf/dbfill/internal/domain"
	"github.com/mmrzaf/dbfill/internal/infra/repos/runs"
	"github.com/mmrzaf/dbfill/internal/infra/repos/schemas"
	"github.com/mmrzaf/dbfill/internal/infra/repos/targets"
	"github.com/mmrzaf/dbfill/internal/registry"
	"github.com/mmrzaf/dbfill/internal/validation"
)

func schemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect schema files",
	}

	var format string

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List schemas",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := schemas.NewFileRepository(cfg.SchemasDir).List()
			if err != nil {
				return err
			}

			if format == "json" {
				return printFormatted(list, "json")
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTABLES")
			for _, s := range list {
				fmt.Fprintf(w, "%s\t%d\n", s.Name, len(s.Tables))
			}
			return w.Flush()
		},
	}
	listCmd.Flags().StringVar(&format, "format", "table", "Output format (table|json)")

	var showFormat string
	showCmd := &cobra.Command{
		Use:   "show <name|path>",
		Short: "Show a schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := loadSchema(args[0])
			if err != nil {
				return err
			}
			return printFormatted(schema, showFormat)
		},
	}
	showCmd.Flags().StringVar(&showFormat, "format", "yaml", "Output format (yaml|json)")

	validateCmd := &cobra.Command{
		Use:   "validate [name|path]",
		Short: "Validate a schema and print its fill order",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := cfg.Schema
			if len(args) == 1 {
				ref = args[0]
			}
			schema, err := loadSchema(ref)
			if err != nil {
				return err
			}

			validator := validation.NewValidator(registry.DefaultGeneratorRegistry())
			if err := validator.ValidateSchema(schema); err != nil {
				fmt.Printf("Validation failed: %v\n", err)
				return err
			}

			order, err := validation.TopologicalSort(schema)
			if err != nil {
				return err
			}
			fmt.Printf("Schema '%s' is valid\n", schema.Name)
			for i, name := range order {
				fmt.Printf("  %d. %s\n", i+1, name)
			}
			return nil
		},
	}

	cmd.AddCommand(listCmd, showCmd, validateCmd)
	return cmd
}

func targetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "target",
		Short: "Inspect targets",
	}

	var format string

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List targets",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := targets.NewFileRepository(cfg.TargetsDir).List()
			if err != nil {
				return err
			}
			list = targets.RedactTargets(list)

			if format == "json" {
				return printFormatted(list, "json")
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tKIND\tDSN")
			for _, t := range list {
				dsn := t.DSN
				if len(dsn) > 50 {
					dsn = dsn[:47] + "..."
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.ID, t.Name, t.Kind, dsn)
			}
			return w.Flush()
		},
	}
	listCmd.Flags().StringVar(&format, "format", "table", "Output format (table|json)")

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show target details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := targets.NewFileRepository(cfg.TargetsDir).Get(args[0])
			if err != nil {
				return err
			}
			return printFormatted(targets.RedactTarget(target), "yaml")
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check [id]",
		Short: "Connect to a target and report what it sees",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			target, err := resolveTarget(name)
			if err != nil {
				return err
			}

			check, err := app.CheckTarget(cmd.Context(), target)
			if err != nil {
				fmt.Printf("Target '%s' is unreachable: %v\n", target.Name, err)
				return err
			}
			fmt.Printf("Target '%s' OK: %s %s, %d tables, %dms\n",
				target.Name, target.Kind, check.ServerVersion, check.Tables, check.LatencyMS)
			return nil
		},
	}

	cmd.AddCommand(listCmd, showCmd, checkCmd)
	return cmd
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Inspect the run history",
	}

	openRuns := func() (*app.RunService, func() error, error) {
		repo := runs.NewSQLiteRepository(cfg.RunsDB)
		if err := repo.Init(); err != nil {
			return nil, nil, fmt.Errorf("failed to open run history: %w", err)
		}
		svc := app.NewRunService(
			schemas.NewFileRepository(cfg.SchemasDir),
			targets.NewFileRepository(cfg.TargetsDir),
			repo,
			registry.DefaultGeneratorRegistry(),
			newLogger(),
			cfg.MaxCharLength,
		)
		return svc, repo.Close, nil
	}

	var limit int
	var status string
	var format string

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeRuns, err := openRuns()
			if err != nil {
				return err
			}
			defer closeRuns()

			list, err := svc.ListRuns(cmd.Context(), limit, status)
			if err != nil {
				return err
			}

			if format == "json" {
				return printFormatted(list, "json")
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSCHEMA\tTARGET\tSTATUS\tROWS\tSTARTED")
			for _, r := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
					shortID(r.ID), r.SchemaName, r.TargetName, r.Status, totalRows(r), r.StartedAt.Local().Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 20, "Limit results")
	listCmd.Flags().StringVar(&status, "status", "", "Filter by status")
	listCmd.Flags().StringVar(&format, "format", "table", "Output format (table|json)")

	showCmd := &cobra.Command{
		Use:   "show <run_id>",
		Short: "Show run details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeRuns, err := openRuns()
			if err != nil {
				return err
			}
			defer closeRuns()

			run, err := svc.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if err := printFormatted(run, "yaml"); err != nil {
				return err
			}
			if len(run.Stats) == 0 {
				return nil
			}
			var stats domain.RunStats
			if err := json.Unmarshal(run.Stats, &stats); err != nil {
				return fmt.Errorf("run %s has unreadable stats: %w", run.ID, err)
			}
			return printFormatted(map[string]*domain.RunStats{"stats": &stats}, "yaml")
		},
	}

	cmd.AddCommand(listCmd, showCmd)
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func totalRows(r *domain.Run) int64 {
	var stats domain.RunStats
	if len(r.Stats) == 0 || json.Unmarshal(r.Stats, &stats) != nil {
		return 0
	}
	return stats.TotalRows
}
