package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "DBFILL"

type Config struct {
	Database      string `mapstructure:"database"`
	Driver        string `mapstructure:"driver"`
	Schema        string `mapstructure:"schema"`
	SchemasDir    string `mapstructure:"schemas_dir"`
	TargetsDir    string `mapstructure:"targets_dir"`
	RunsDB        string `mapstructure:"runs_db"`
	LogLevel      string `mapstructure:"log_level"`
	MaxCharLength int    `mapstructure:"max_char_length"`
	Seed          int64  `mapstructure:"seed"`
	// SeedSet reports whether a seed was configured at all; zero is a valid seed.
	SeedSet bool `mapstructure:"-"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database", "")
	v.SetDefault("driver", "")
	v.SetDefault("schema", "schema.json")
	v.SetDefault("schemas_dir", "./schemas")
	v.SetDefault("targets_dir", "./targets")
	v.SetDefault("runs_db", "./dbfill-runs.sqlite")
	v.SetDefault("log_level", "info")
	v.SetDefault("max_char_length", 0)
}

// Load reads configuration from, in increasing priority: defaults, the config
// file, a .env file in the working directory and DBFILL_* environment
// variables. An empty configFile searches for dbfill.{yaml,json} in the
// working directory; a missing file is not an error in that case.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("seed"); err != nil {
		return nil, err
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("dbfill")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.SeedSet = v.IsSet("seed")
	cfg.Driver = strings.ToLower(cfg.Driver)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Driver {
	case "", "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported driver: %s. Supported drivers: mysql, postgres, sqlite", c.Driver)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level: %s", c.LogLevel)
	}
	if c.MaxCharLength < 0 {
		return fmt.Errorf("max_char_length must be >= 0, got %d", c.MaxCharLength)
	}
	return nil
}
