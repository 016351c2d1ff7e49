// Package config reads kontab settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fuabioo/kontab/internal/formula"
	"github.com/fuabioo/kontab/internal/sheet"
	"github.com/joho/godotenv"
)

// Environment variables
const (
	EnvBasepath     = "KONTAB_BASEPATH"
	EnvAllowedPaths = "KONTAB_ALLOWED_PATHS"
	EnvVATRate      = "KONTAB_VAT_RATE"
	EnvCacheSize    = "KONTAB_CACHE_SIZE"
	EnvWorkers      = "KONTAB_WORKERS"
	EnvLogLevel     = "KONTAB_LOG_LEVEL"
)

// ErrInvalidValue is returned when a variable cannot be parsed
var ErrInvalidValue = errors.New("invalid configuration value")

// Config holds process-wide settings
type Config struct {
	Basepath     string
	AllowedPaths []string
	VATRate      float64
	CacheSize    int
	Workers      int
	LogLevel     slog.Level
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		VATRate:   formula.DefaultAccountingRate,
		CacheSize: sheet.DefaultCacheSize,
		Workers:   sheet.DefaultWorkers,
		LogLevel:  slog.LevelInfo,
	}
}

// LoadDotenv loads the given .env files, or ./.env when none are named.
// Missing files are ignored; variables already set are kept.
func LoadDotenv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load %s: %w", strings.Join(existing, ", "), err)
	}
	return nil
}

// Load returns Default overridden by the KONTAB_* variables
func Load() (Config, error) {
	return FromLookup(os.LookupEnv)
}

// FromLookup is Load with a custom variable source
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvBasepath); ok {
		cfg.Basepath = v
	}
	if v, ok := get(EnvAllowedPaths); ok {
		cfg.AllowedPaths = SplitPaths(v)
	}
	if v, ok := get(EnvVATRate); ok {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil || rate < 0 {
			return cfg, fmt.Errorf("%w: %s=%q", ErrInvalidValue, EnvVATRate, v)
		}
		cfg.VATRate = rate
	}
	if v, ok := get(EnvCacheSize); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return cfg, fmt.Errorf("%w: %s=%q", ErrInvalidValue, EnvCacheSize, v)
		}
		cfg.CacheSize = n
	}
	if v, ok := get(EnvWorkers); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return cfg, fmt.Errorf("%w: %s=%q", ErrInvalidValue, EnvWorkers, v)
		}
		cfg.Workers = n
	}
	if v, ok := get(EnvLogLevel); ok {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return cfg, fmt.Errorf("%w: %s=%q", ErrInvalidValue, EnvLogLevel, v)
		}
	}
	return cfg, nil
}

// SplitPaths splits a list-separator delimited path list, dropping blanks
func SplitPaths(s string) []string {
	var out []string
	for _, p := range filepath.SplitList(s) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Logger returns a text logger on stderr at the configured level
func (c Config) Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: c.LogLevel}))
}

// Engine returns a formula engine using the configured VAT rate
func (c Config) Engine() *formula.Engine {
	return formula.New(formula.WithAccountingRate(c.VATRate))
}

// SheetOptions returns store options matching the configuration
func (c Config) SheetOptions() []sheet.Option {
	return []sheet.Option{
		sheet.WithEngine(c.Engine()),
		sheet.WithCacheSize(c.CacheSize),
		sheet.WithWorkers(c.Workers),
		sheet.WithLogger(c.Logger()),
	}
}
