package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/analytic/internal/errs"
	"github.com/cleared-dev/analytic/internal/model"
)

// FileName is the project configuration file at the repo root.
const FileName = "analytic.yaml"

// EnvPrefix prefixes environment overrides, e.g. ANALYTIC_LOG_LEVEL.
const EnvPrefix = "ANALYTIC"

// Storage backends.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// Config represents the top-level analytic.yaml configuration.
type Config struct {
	Company    CompanyConfig    `yaml:"company"`
	Currencies []model.Currency `yaml:"currencies" validate:"required,dive"`
	Storage    StorageConfig    `yaml:"storage"`
	Log        LogConfig        `yaml:"log"`
}

// CompanyConfig identifies the company owning the analytic chart.
type CompanyConfig struct {
	Name     string `yaml:"name" validate:"required"`
	Currency string `yaml:"currency" validate:"required,len=3,uppercase"`
}

// StorageConfig selects where lines and accounts are read from. An empty
// SQLitePath means .analytic/analytic.db under the repo root.
type StorageConfig struct {
	Backend    string `yaml:"backend" validate:"oneof=csv sqlite"`
	SQLitePath string `yaml:"sqlite_path,omitempty"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Format string `yaml:"format" validate:"oneof=text json"`
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
}

// overrides are read from the environment and win over the file.
type overrides struct {
	StorageBackend string `envconfig:"STORAGE_BACKEND"`
	SQLitePath     string `envconfig:"SQLITE_PATH"`
	LogFormat      string `envconfig:"LOG_FORMAT"`
	LogLevel       string `envconfig:"LOG_LEVEL"`
}

var validate = validator.New()

// Load reads an analytic.yaml file from disk and applies environment
// overrides. The result is not validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	var o overrides
	if err := envconfig.Process(EnvPrefix, &o); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	if o.StorageBackend != "" {
		c.Storage.Backend = o.StorageBackend
	}
	if o.SQLitePath != "" {
		c.Storage.SQLitePath = o.SQLitePath
	}
	if o.LogFormat != "" {
		c.Log.Format = o.LogFormat
	}
	if o.LogLevel != "" {
		c.Log.Level = o.LogLevel
	}
	return nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate checks field formats and that the company currency has a rate.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("invalid config: %w", err)
		}
		msgs := make([]string, len(fieldErrs))
		for i, fe := range fieldErrs {
			msgs[i] = fmt.Sprintf("%s failed %q check", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("invalid config: %s: %w", strings.Join(msgs, "; "), errs.ErrConfiguration)
	}

	for _, cur := range c.Currencies {
		if strings.EqualFold(cur.Code, c.Company.Currency) {
			if !cur.Rate.IsPositive() {
				return fmt.Errorf("company currency %s needs a positive rate: %w", c.Company.Currency, errs.ErrConfiguration)
			}
			return nil
		}
	}
	return fmt.Errorf("company currency %s is not listed under currencies: %w", c.Company.Currency, errs.ErrConfiguration)
}

// knownDigits lists minor-unit digits for currencies offered by Default.
var knownDigits = map[string]int32{
	"CHF": 2,
	"EUR": 2,
	"GBP": 2,
	"JPY": 0,
	"USD": 2,
}

// Default returns a Config for a new project whose only currency is the
// company currency at rate 1.
func Default(companyName, currency string) *Config {
	code := strings.ToUpper(currency)
	digits, ok := knownDigits[code]
	if !ok {
		digits = 2
	}
	return &Config{
		Company: CompanyConfig{
			Name:     companyName,
			Currency: code,
		},
		Currencies: []model.Currency{
			{Code: code, Digits: digits, Rate: decimal.NewFromInt(1)},
		},
		Storage: StorageConfig{
			Backend: BackendCSV,
		},
		Log: LogConfig{
			Format: "text",
			Level:  "info",
		},
	}
}
