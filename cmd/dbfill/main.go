package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mmrzaf/dbfill/internal/app"
	"github.com/mmrzaf/dbfill/internal/config"
	"github.com/mmrzaf/dbfill/internal/domain"
	"github.com/mmrzaf/dbfill/internal/infra/repos/schemas"
	"github.com/mmrzaf/dbfill/internal/infra/repos/targets"
	"github.com/mmrzaf/dbfill/internal/logging"
)

var (
	configFile string
	cfg        *config.Config

	database   string
	driver     string
	schemasDir string
	targetsDir string
	runsDBPath string
	logLevel   string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:           "dbfill",
		Short:         "Fill database tables with generated rows",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (default ./dbfill.yaml if present)")
	flags.StringVar(&database, "database", "", "Database DSN")
	flags.StringVar(&driver, "driver", "", "Database driver (mysql|postgres|sqlite)")
	flags.StringVar(&schemasDir, "schemas-dir", "", "Schemas directory")
	flags.StringVar(&targetsDir, "targets-dir", "", "Targets directory")
	flags.StringVar(&runsDBPath, "runs-db", "", "Run history database path")
	flags.StringVar(&logLevel, "log-level", "", "Log level (debug|info|warn|error)")

	rootCmd.AddCommand(analyseCmd())
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(schemaCmd())
	rootCmd.AddCommand(targetCmd())
	rootCmd.AddCommand(runCmd())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// loadConfig reads the configuration and lets explicitly set flags win.
func loadConfig(cmd *cobra.Command) error {
	loaded, err := config.Load(configFile)
	if err != nil {
		return err
	}

	overrides := []struct {
		flag  string
		value string
		field *string
	}{
		{"database", database, &loaded.Database},
		{"driver", strings.ToLower(driver), &loaded.Driver},
		{"schemas-dir", schemasDir, &loaded.SchemasDir},
		{"targets-dir", targetsDir, &loaded.TargetsDir},
		{"runs-db", runsDBPath, &loaded.RunsDB},
		{"log-level", strings.ToLower(logLevel), &loaded.LogLevel},
	}
	for _, o := range overrides {
		if cmd.Flags().Changed(o.flag) {
			*o.field = o.value
		}
	}
	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded
	return nil
}

func newLogger() *logging.Logger {
	return logging.NewLogger(cfg.LogLevel)
}

// loadSchema resolves ref as a file path first and as a schema name in the
// schemas directory otherwise.
func loadSchema(ref string) (*domain.Schema, error) {
	repo := schemas.NewFileRepository(cfg.SchemasDir)
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		return repo.GetByPath(ref)
	}
	return repo.Get(ref)
}

// resolveTarget returns the named target, or the target built from the
// database setting when name is empty.
func resolveTarget(name string) (*domain.TargetConfig, error) {
	if name != "" {
		return targets.NewFileRepository(cfg.TargetsDir).Get(name)
	}
	if t := app.TargetFromConfig(cfg); t != nil {
		return t, nil
	}
	return nil, fmt.Errorf("no database configured: use --target, --database or DBFILL_DATABASE")
}

func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func printFormatted(v interface{}, format string) error {
	var data []byte
	var err error
	switch format {
	case "json":
		data, err = json.MarshalIndent(v, "", "  ")
		data = append(data, '\n')
	case "yaml", "":
		data, err = yaml.Marshal(v)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}
