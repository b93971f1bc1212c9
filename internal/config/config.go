package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/joho/godotenv"

	"go-lifeexp-report/internal/model"
	"go-lifeexp-report/pkg/utils"
)

// Config represents the complete application configuration
type Config struct {
	DataPath  string
	OutputDir string
	Database  DatabaseConfig
	Report    ReportConfig
	Chart     ChartConfig
}

// DatabaseConfig holds run store settings
type DatabaseConfig struct {
	Driver  string
	DSN     string
	Enabled bool
}

// ReportConfig holds report run settings
type ReportConfig struct {
	ExportFormats   []string
	Transformations []string
	Workers         int
	PreviewRows     int
}

// ChartConfig holds chart rendering settings
type ChartConfig struct {
	Enabled bool
	Width   int
	Height  int
}

var (
	supportedDrivers = []string{"sqlite3", "postgres"}
	supportedFormats = []string{"csv", "json", "xlsx"}
)

// Load reads a .env file if present, then the LIFEEXP_* environment
// variables. The result is not validated; callers apply their overrides
// first and then call Validate.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	config := &Config{
		DataPath:  getEnvOrDefault("LIFEEXP_DATA_PATH", "data/data.csv"),
		OutputDir: getEnvOrDefault("LIFEEXP_OUTPUT_DIR", "output"),
		Database: DatabaseConfig{
			Driver:  getEnvOrDefault("LIFEEXP_DB_DRIVER", "sqlite3"),
			DSN:     getEnvOrDefault("LIFEEXP_DB_DSN", "lifeexp.db"),
			Enabled: getEnvBoolOrDefault("LIFEEXP_STORE", true),
		},
		Report: ReportConfig{
			ExportFormats:   utils.SplitList(getEnvOrDefault("LIFEEXP_EXPORT_FORMATS", "csv,json")),
			Transformations: utils.SplitList(getEnvOrDefault("LIFEEXP_TRANSFORMS", "")),
			Workers:         getEnvIntOrDefault("LIFEEXP_WORKERS", 1),
			PreviewRows:     getEnvIntOrDefault("LIFEEXP_PREVIEW_ROWS", 20),
		},
		Chart: ChartConfig{
			Enabled: getEnvBoolOrDefault("LIFEEXP_CHARTS", true),
			Width:   getEnvIntOrDefault("LIFEEXP_CHART_WIDTH", 1024),
			Height:  getEnvIntOrDefault("LIFEEXP_CHART_HEIGHT", 640),
		},
	}

	return config, nil
}

// Validate checks the settings that cannot be defaulted away
func (c *Config) Validate() error {
	if c.DataPath == "" {
		return errors.New("data path is required")
	}
	if c.OutputDir == "" {
		return errors.New("output directory is required")
	}
	if c.Database.Enabled {
		if !slices.Contains(supportedDrivers, c.Database.Driver) {
			return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
		}
		if c.Database.DSN == "" {
			return errors.New("database DSN is required when the store is enabled")
		}
	}
	for _, f := range c.Report.ExportFormats {
		if !slices.Contains(supportedFormats, f) {
			return fmt.Errorf("unsupported export format: %s", f)
		}
	}
	if c.Report.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Report.Workers)
	}
	if c.Report.PreviewRows < 0 {
		return fmt.Errorf("preview rows must not be negative, got %d", c.Report.PreviewRows)
	}
	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return fmt.Errorf("invalid chart size %dx%d", c.Chart.Width, c.Chart.Height)
	}
	return nil
}

// RunSpec builds the run configuration handed to the pipeline
func (c *Config) RunSpec() model.RunSpec {
	return model.RunSpec{
		DataPath:        c.DataPath,
		OutputDir:       c.OutputDir,
		Transformations: c.Report.Transformations,
		Export: model.Export{
			Formats: c.Report.ExportFormats,
			DB:      c.Database.Enabled,
		},
		Workers:     c.Report.Workers,
		PreviewRows: c.Report.PreviewRows,
		Charts:      c.Chart.Enabled,
	}
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
