// Package config loads tally.yaml and environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/tally-dev/tally/internal/log"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/tax"
)

// FileName is the project configuration file at the data directory root.
const FileName = "tally.yaml"

const defaultDataPath = "data"

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Environment variables that override file values.
const (
	EnvStorageBackend = "TALLY_STORAGE_BACKEND"
	EnvStoragePath    = "TALLY_STORAGE_PATH"
	EnvLogLevel       = "TALLY_LOG_LEVEL"
)

// Config represents the top-level tally.yaml configuration.
type Config struct {
	Business     BusinessConfig `yaml:"business"`
	Fiscal       FiscalConfig   `yaml:"fiscal"`
	Payroll      PayrollConfig  `yaml:"payroll"`
	BankAccounts []BankAccount  `yaml:"bank_accounts,omitempty"`
	Storage      StorageConfig  `yaml:"storage"`
	Log          LogConfig      `yaml:"log"`
}

// BusinessConfig identifies the company whose books this is.
type BusinessConfig struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	EntityType string `yaml:"entity_type"`
}

// FiscalConfig defines the fiscal year boundaries.
type FiscalConfig struct {
	YearStart string `yaml:"year_start"` // "MM-DD" format, e.g. "01-01"
}

// PayrollConfig holds defaults applied to new payroll runs.
type PayrollConfig struct {
	DefaultTaxRates tax.Rates           `yaml:"default_tax_rates"`
	PaymentMethod   model.PaymentMethod `yaml:"payment_method"`
}

// BankAccount maps a bank export to a chart-of-accounts entry.
type BankAccount struct {
	Name          string `yaml:"name"`
	Format        string `yaml:"format"` // importer parser, e.g. "chase"
	LastFour      string `yaml:"last_four"`
	AccountNumber int    `yaml:"account_number"`
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"` // relative paths resolve against the data directory
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Load reads a tally.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Storage.fill()
	return &cfg, nil
}

// fill supplies the file backend and its default path when tally.yaml
// leaves them out.
func (s *StorageConfig) fill() {
	if s.Backend == "" {
		s.Backend = BackendFile
	}
	if s.Backend == BackendFile && s.Path == "" {
		s.Path = defaultDataPath
	}
}

// LoadDir loads <dir>/.env when present, then <dir>/tally.yaml, then
// applies environment overrides and validates the result.
func LoadDir(dir string) (*Config, error) {
	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	cfg, err := Load(filepath.Join(dir, FileName))
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
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

// Default returns a Config with sensible defaults for a new project.
func Default(businessName, entityType string) *Config {
	return &Config{
		Business: BusinessConfig{
			ID:         "default",
			Name:       businessName,
			EntityType: entityType,
		},
		Fiscal: FiscalConfig{
			YearStart: "01-01",
		},
		Payroll: PayrollConfig{
			DefaultTaxRates: tax.Rates{
				SocialSecurity: tax.SocialSecurityRate,
				Medicare:       tax.MedicareRate,
			},
			PaymentMethod: model.PaymentDirectDeposit,
		},
		Storage: StorageConfig{
			Backend: BackendFile,
			Path:    defaultDataPath,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyEnv overrides storage and log settings from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvStorageBackend); ok && v != "" {
		c.Storage.Backend = v
	}
	if v, ok := lookup(EnvStoragePath); ok && v != "" {
		c.Storage.Path = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Business.ID == "" {
		return errors.New("config: business.id is required")
	}
	if _, err := parseYearStart(c.Fiscal.YearStart); err != nil {
		return fmt.Errorf("config: fiscal.year_start: %w", err)
	}
	if err := c.Payroll.DefaultTaxRates.Validate(); err != nil {
		return fmt.Errorf("config: payroll.default_tax_rates: %w", err)
	}
	if c.Payroll.PaymentMethod != "" && !c.Payroll.PaymentMethod.Valid() {
		return fmt.Errorf("config: payroll.payment_method %q is not recognized", c.Payroll.PaymentMethod)
	}
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("config: storage.path is required for the %s backend", c.Storage.Backend)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("config: storage.backend %q must be one of file, sqlite, memory", c.Storage.Backend)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: log.level: %w", err)
	}
	return nil
}

// StoragePath resolves the storage path against the data directory.
func (c *Config) StoragePath(dir string) string {
	if c.Storage.Path == "" || filepath.IsAbs(c.Storage.Path) {
		return c.Storage.Path
	}
	return filepath.Join(dir, c.Storage.Path)
}

// BankAccount returns the configured bank account by name, or the first
// one when name is empty.
func (c *Config) BankAccount(name string) (BankAccount, bool) {
	for _, b := range c.BankAccounts {
		if name == "" || b.Name == name {
			return b, true
		}
	}
	return BankAccount{}, false
}

type monthDay struct {
	month time.Month
	day   int
}

func parseYearStart(s string) (monthDay, error) {
	if s == "" {
		return monthDay{month: time.January, day: 1}, nil
	}
	t, err := time.Parse("01-02", s)
	if err != nil {
		return monthDay{}, fmt.Errorf("%q is not MM-DD", s)
	}
	return monthDay{month: t.Month(), day: t.Day()}, nil
}

// YearStartFor returns the first day of the fiscal year containing date.
// An unparseable YearStart falls back to January 1.
func (f FiscalConfig) YearStartFor(date time.Time) time.Time {
	md, err := parseYearStart(f.YearStart)
	if err != nil {
		md = monthDay{month: time.January, day: 1}
	}
	date = model.Day(date)
	start := time.Date(date.Year(), md.month, md.day, 0, 0, 0, 0, time.UTC)
	if start.After(date) {
		start = start.AddDate(-1, 0, 0)
	}
	return start
}
