package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"suppqc/domain/pvalue"
	"suppqc/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	// Breaks is the number of histogram bins.
	Breaks int
	// FDR is the false discovery rate threshold.
	FDR float64
	// Variables are the covariate filters in priority order.
	Variables []pvalue.Variable
	// DatabaseURL enables Postgres persistence of summaries when set.
	DatabaseURL string
	// Workers bounds the per-table fan-out.
	Workers int
	// Port is the HTTP listen port of the API service.
	Port string
}

// Default returns the standard configuration.
func Default() *Config {
	summarizer := pvalue.DefaultConfig()
	return &Config{
		Breaks:    summarizer.Breaks,
		FDR:       summarizer.FDR,
		Variables: summarizer.Variables,
		Workers:   runtime.NumCPU(),
		Port:      "8080",
	}
}

// Load reads configuration from environment variables on top of the defaults
// and validates it. Invalid values are fatal, never silently defaulted.
func Load() (*Config, error) {
	cfg := Default()

	if v := os.Getenv("SUPPQC_BREAKS"); v != "" {
		breaks, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.ConfigInvalid("SUPPQC_BREAKS is not an integer: " + v)
		}
		cfg.Breaks = breaks
	}
	if v := os.Getenv("SUPPQC_FDR"); v != "" {
		fdr, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, errors.ConfigInvalid("SUPPQC_FDR is not a number: " + v)
		}
		cfg.FDR = fdr
	}
	if v := os.Getenv("SUPPQC_VARS"); v != "" {
		vars, err := ParseVars(strings.Fields(v))
		if err != nil {
			return nil, err
		}
		cfg.Variables = vars
	}
	if v := os.Getenv("SUPPQC_WORKERS"); v != "" {
		workers, err := strconv.Atoi(v)
		if err != nil || workers < 1 {
			return nil, errors.ConfigInvalid("SUPPQC_WORKERS must be a positive integer")
		}
		cfg.Workers = workers
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}

	if err := cfg.Summarizer().Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Summarizer projects the summarization part of the configuration.
func (c *Config) Summarizer() pvalue.Config {
	return pvalue.Config{
		Breaks:    c.Breaks,
		FDR:       c.FDR,
		Variables: c.Variables,
	}
}

// ParseVars parses ordered "key=value" pairs into covariate filters,
// preserving the given priority order.
func ParseVars(pairs []string) ([]pvalue.Variable, error) {
	vars := make([]pvalue.Variable, 0, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, errors.ConfigInvalid(fmt.Sprintf("variable %q is not key=value", pair))
		}
		threshold, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, errors.ConfigInvalid(fmt.Sprintf("threshold for %s is not a number: %s", key, value))
		}
		vars = append(vars, pvalue.Variable{Name: key, Threshold: threshold})
	}
	return vars, nil
}
