package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-lifeexp-report/internal/config"
)

func baseConfig() *config.Config {
	return &config.Config{
		DataPath:  "data/data.csv",
		OutputDir: "output",
		Database:  config.DatabaseConfig{Driver: "sqlite3", DSN: "lifeexp.db", Enabled: true},
		Report: config.ReportConfig{
			ExportFormats: []string{"csv", "json"},
			Workers:       1,
			PreviewRows:   20,
		},
		Chart: config.ChartConfig{Enabled: true, Width: 1024, Height: 640},
	}
}

func TestApplyFlagsOverridesOnlyChangedFlags(t *testing.T) {
	cmd := newRunCmd()
	require.NoError(t, cmd.ParseFlags([]string{
		"--output", "out",
		"--export", " XLSX, csv ",
		"--transforms", "normalizeNames",
		"--no-charts",
		"--no-store",
		"--workers", "4",
	}))

	cfg := baseConfig()
	require.NoError(t, applyFlags(cmd, cfg))

	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, []string{"xlsx", "csv"}, cfg.Report.ExportFormats)
	assert.Equal(t, []string{"normalizenames"}, cfg.Report.Transformations)
	assert.False(t, cfg.Chart.Enabled)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, 4, cfg.Report.Workers)

	// untouched flags keep the environment values
	assert.Equal(t, "data/data.csv", cfg.DataPath)
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, 20, cfg.Report.PreviewRows)
}

func TestApplyFlagsExplicitFalse(t *testing.T) {
	cmd := newRunCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--no-charts=false", "--preview-rows", "0"}))

	cfg := baseConfig()
	cfg.Chart.Enabled = false
	require.NoError(t, applyFlags(cmd, cfg))

	assert.True(t, cfg.Chart.Enabled)
	assert.Equal(t, 0, cfg.Report.PreviewRows)
}

func TestApplyFlagsIgnoresFlagsTheCommandLacks(t *testing.T) {
	cmd := newHistoryCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--db-dsn", "history.db"}))

	cfg := baseConfig()
	require.NoError(t, applyFlags(cmd, cfg))
	assert.Equal(t, "history.db", cfg.Database.DSN)
	assert.Equal(t, []string{"csv", "json"}, cfg.Report.ExportFormats)
}

func TestLoadConfigPrecedence(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LIFEEXP_DATA_PATH", "env.csv")
	t.Setenv("LIFEEXP_WORKERS", "0")

	cmd := newRunCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--workers", "4"}))

	cfg, err := loadConfig(cmd, []string{"arg.csv"})
	require.NoError(t, err, "flags are applied before validation")
	assert.Equal(t, "arg.csv", cfg.DataPath)
	assert.Equal(t, 4, cfg.Report.Workers)

	cfg, err = loadConfig(newRunCmd(), nil)
	assert.Nil(t, cfg)
	assert.ErrorContains(t, err, "workers must be at least 1")
}

func TestLoadConfigRejectsBadExportFlag(t *testing.T) {
	t.Chdir(t.TempDir())

	cmd := newRunCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--export", "pdf"}))

	_, err := loadConfig(cmd, nil)
	assert.ErrorContains(t, err, "unsupported export format: pdf")
}
