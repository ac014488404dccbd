package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/analytic/internal/errs"
	"github.com/cleared-dev/analytic/internal/model"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default("Test Biz", "eur")
	cfg.Currencies = append(cfg.Currencies, model.Currency{Code: "USD", Name: "US Dollar", Digits: 2, Rate: decimal.RequireFromString("1.1")})
	cfg.Storage = StorageConfig{Backend: BackendSQLite, SQLitePath: ".analytic/analytic.db"}

	path := filepath.Join(t.TempDir(), FileName)
	err := Save(path, cfg)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Company, got.Company)
	assert.Equal(t, cfg.Storage, got.Storage)
	assert.Equal(t, cfg.Log, got.Log)
	require.Len(t, got.Currencies, 2)
	assert.Equal(t, "USD", got.Currencies[1].Code)
	assert.Equal(t, "US Dollar", got.Currencies[1].Name)
	assert.True(t, got.Currencies[1].Rate.Equal(decimal.RequireFromString("1.1")))
	assert.NoError(t, got.Validate())
}

func TestDefaults(t *testing.T) {
	cfg := Default("My Company", "jpy")

	assert.Equal(t, "My Company", cfg.Company.Name)
	assert.Equal(t, "JPY", cfg.Company.Currency)
	require.Len(t, cfg.Currencies, 1)
	assert.Equal(t, int32(0), cfg.Currencies[0].Digits)
	assert.True(t, cfg.Currencies[0].Rate.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, BackendCSV, cfg.Storage.Backend)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())

	assert.Equal(t, int32(2), Default("x", "SEK").Currencies[0].Digits)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestYAMLFormat(t *testing.T) {
	cfg := Default("Test Biz", "EUR")
	path := filepath.Join(t.TempDir(), FileName)
	err := Save(path, cfg)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "name: Test Biz")
	assert.Contains(t, contents, "currency: EUR")
	assert.Contains(t, contents, "backend: csv")
	assert.Contains(t, contents, "rate: \"1\"")
	assert.NotContains(t, contents, "sqlite_path")
}

func TestEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default("Biz", "EUR")))

	t.Setenv("ANALYTIC_STORAGE_BACKEND", "sqlite")
	t.Setenv("ANALYTIC_SQLITE_PATH", "/tmp/a.db")
	t.Setenv("ANALYTIC_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "/tmp/a.db", cfg.Storage.SQLitePath)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format, "unset variables keep file values")
}

func TestValidateSQLiteDefaultPath(t *testing.T) {
	cfg := Default("Biz", "EUR")
	cfg.Storage.Backend = BackendSQLite
	assert.NoError(t, cfg.Validate(), "an empty sqlite_path falls back to the default location")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"missing name", func(c *Config) { c.Company.Name = "" }},
		{"lowercase currency", func(c *Config) { c.Company.Currency = "eur" }},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "postgres" }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"bad log level", func(c *Config) { c.Log.Level = "trace" }},
		{"no currencies", func(c *Config) { c.Currencies = nil }},
		{"company currency unlisted", func(c *Config) { c.Company.Currency = "USD" }},
		{"zero company rate", func(c *Config) { c.Currencies[0].Rate = decimal.Zero }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default("Biz", "EUR")
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, errs.ErrConfiguration)
		})
	}
}
