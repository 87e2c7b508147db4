// Package config loads reportcore configuration from report.yml with
// environment-variable overrides.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the reportcore run configuration.
type Config struct {
	Catalog CatalogConfig `mapstructure:"catalog"`
	Output  OutputConfig  `mapstructure:"output"`
	Report  ReportConfig  `mapstructure:"report"`
}

// CatalogConfig locates the catalog feed. Source is either a CSV path
// or a database DSN (postgres:// for the warehouse, sqlite:// for a
// local snapshot).
type CatalogConfig struct {
	Source        string `mapstructure:"source"`
	Table         string `mapstructure:"table"`
	Authority     string `mapstructure:"authority"`
	AuthorityName string `mapstructure:"authority_name"`
	SchemaVersion string `mapstructure:"schema_version"`
}

// OutputConfig controls where artifacts land.
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// ReportConfig carries per-report defaults the CLI flags can override.
type ReportConfig struct {
	LayerID      string `mapstructure:"layer_id"`
	UnitSystem   string `mapstructure:"unit_system"`
	TargetLevel  int    `mapstructure:"target_level"`
	WeightColumn string `mapstructure:"weight_column"`
}

// Load reads report.yml or report.yaml from the working directory,
// applying defaults and environment overrides (REPORTCORE_*).
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("catalog.table", "layer_definitions_latest")
	v.SetDefault("output.dir", "output")
	v.SetDefault("report.unit_system", "SI")
	v.SetDefault("report.target_level", 8)
	v.SetDefault("report.weight_column", "segment_area")

	v.SetConfigName("report")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("reportcore")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file - defaults plus flags still work.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	switch strings.ToLower(cfg.Report.UnitSystem) {
	case "si", "metric", "imperial", "us":
	default:
		return fmt.Errorf("report.unit_system must be SI or imperial, got: %s", cfg.Report.UnitSystem)
	}
	switch cfg.Report.TargetLevel {
	case 0, 2, 4, 6, 8, 10, 12:
	default:
		return fmt.Errorf("report.target_level must be a HUC level (2-12, even), got: %d", cfg.Report.TargetLevel)
	}
	return nil
}
