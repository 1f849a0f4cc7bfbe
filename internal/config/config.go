package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"BollScan/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Benchmark struct {
		Symbol string  `yaml:"symbol"`
		Min    float64 `yaml:"min"`
		Max    float64 `yaml:"max"`
	} `yaml:"benchmark"`
	Strategy struct {
		BucketMode    string `yaml:"bucket_mode"`    // run3 | week | month
		SellReference string `yaml:"sell_reference"` // mid | upper
		EntryPolicy   string `yaml:"entry_policy"`   // breakout-required | first-breakdown
		Window        int    `yaml:"window"`
		PeriodStart   string `yaml:"period_start"` // YYYY-MM-DD, empty = open
		PeriodEnd     string `yaml:"period_end"`
	} `yaml:"strategy"`
	Filter struct {
		MarketCapMin float64 `yaml:"market_cap_min"` // hundred-million units
		MarketCapMax float64 `yaml:"market_cap_max"`
		PEMin        float64 `yaml:"pe_min"`
		PEMax        float64 `yaml:"pe_max"`
	} `yaml:"filter"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
	} `yaml:"schedule"`
	StartDate string `yaml:"start_date"` // first-download start for empty caches
	Workers   int    `yaml:"workers"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is fine; defaults carry it.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("BOLLSCAN_SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("BOLLSCAN_BENCHMARK_SYMBOL"); v != "" {
		cfg.Benchmark.Symbol = v
	}
	if v := os.Getenv("BOLLSCAN_BUCKET_MODE"); v != "" {
		cfg.Strategy.BucketMode = v
	}
	if v := os.Getenv("BOLLSCAN_ENTRY_POLICY"); v != "" {
		cfg.Strategy.EntryPolicy = v
	}
	if v := os.Getenv("BOLLSCAN_WINDOW"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Strategy.Window = n
		}
	}
	if v := os.Getenv("BOLLSCAN_REFRESH_CRON"); v != "" {
		cfg.Schedule.RefreshCron = v
	}

	// Defaults
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/bollscan.db"
	}
	if cfg.Benchmark.Symbol == "" {
		cfg.Benchmark.Symbol = "000001"
	}
	if cfg.Benchmark.Min == 0 && cfg.Benchmark.Max == 0 {
		cfg.Benchmark.Min = 3180
		cfg.Benchmark.Max = 3600
	}
	if cfg.Strategy.Window == 0 {
		cfg.Strategy.Window = 20
	}
	if cfg.Strategy.PeriodStart == "" {
		cfg.Strategy.PeriodStart = "2023-01-16"
	}
	if cfg.Filter.MarketCapMin == 0 && cfg.Filter.MarketCapMax == 0 {
		cfg.Filter.MarketCapMin = 50
		cfg.Filter.MarketCapMax = 20000
	}
	if cfg.Filter.PEMin == 0 && cfg.Filter.PEMax == 0 {
		cfg.Filter.PEMin = 20
		cfg.Filter.PEMax = 45
	}
	if cfg.Schedule.RefreshCron == "" {
		cfg.Schedule.RefreshCron = "0 30 16 * * 1-5"
	}
	if cfg.StartDate == "" {
		cfg.StartDate = "2023-01-03"
	}
	if cfg.Workers == 0 {
		cfg.Workers = 4
	}

	return cfg, nil
}

// Settings is the parsed, validated strategy configuration the engine
// consumes. Parsing failures here are caller errors and fail fast.
type Settings struct {
	Mode        model.BucketMode
	SellRef     model.SellReference
	Policy      model.EntryPolicy
	Window      int
	PeriodStart time.Time
	PeriodEnd   time.Time
	Constraint  model.Constraint
}

// Settings parses and validates the strategy section.
func (c *Config) Settings() (Settings, error) {
	var s Settings
	var err error

	if s.Mode, err = model.ParseBucketMode(c.Strategy.BucketMode); err != nil {
		return s, fmt.Errorf("strategy.bucket_mode: %w", err)
	}
	if s.SellRef, err = model.ParseSellReference(c.Strategy.SellReference); err != nil {
		return s, fmt.Errorf("strategy.sell_reference: %w", err)
	}
	if s.Policy, err = model.ParseEntryPolicy(c.Strategy.EntryPolicy); err != nil {
		return s, fmt.Errorf("strategy.entry_policy: %w", err)
	}
	if c.Strategy.Window <= 0 {
		return s, fmt.Errorf("strategy.window must be positive, got %d", c.Strategy.Window)
	}
	s.Window = c.Strategy.Window

	if s.PeriodStart, err = parseDate(c.Strategy.PeriodStart); err != nil {
		return s, fmt.Errorf("strategy.period_start: %w", err)
	}
	if s.PeriodEnd, err = parseDate(c.Strategy.PeriodEnd); err != nil {
		return s, fmt.Errorf("strategy.period_end: %w", err)
	}

	s.Constraint = model.Constraint{
		MarketCapMin: c.Filter.MarketCapMin,
		MarketCapMax: c.Filter.MarketCapMax,
		PEMin:        c.Filter.PEMin,
		PEMax:        c.Filter.PEMax,
		BenchmarkMin: c.Benchmark.Min,
		BenchmarkMax: c.Benchmark.Max,
	}
	if err := s.Constraint.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// ParsedStartDate returns the first-download start for empty caches.
func (c *Config) ParsedStartDate() (time.Time, error) {
	d, err := parseDate(c.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("start_date: %w", err)
	}
	return d, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation("2006-01-02", s, time.UTC)
}
