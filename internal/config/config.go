// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/student-assessment/internal/llm"
	"github.com/jonathan/student-assessment/internal/rules"
)

// Default values applied by MergeWithDefaults when neither the file nor the
// flags set a value.
const (
	DefaultConcurrency     = 4
	DefaultMaxAttempts     = 3
	DefaultPipelineTimeout = 300
	DefaultAddr            = ":8080"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Paths
	Input  string `json:"input,omitempty"`  // Path to the test input JSON (profiles + config)
	Output string `json:"output,omitempty"` // Path the report JSON is written to
	Rules  string `json:"rules,omitempty"`  // Path to a YAML rule set replacing the built-in one

	// Pipeline
	PipelineURL     string                   `json:"pipeline_url,omitempty" validate:"omitempty,url"`     // Remote pipeline endpoint; the LLM invoker is used when empty
	PipelineTimeout int                      `json:"pipeline_timeout_seconds,omitempty" validate:"gte=0"` // Per-invocation timeout for the remote pipeline
	MaxAttempts     int                      `json:"max_attempts,omitempty" validate:"gte=0,lte=10"`      // Attempts per LLM stage
	Models          map[llm.ModelTier]string `json:"models,omitempty" validate:"omitempty,dive,keys,required,endkeys,required"`
	APIKey          string                   `json:"api_key,omitempty"` // Gemini API key

	// Batch
	Concurrency int             `json:"concurrency,omitempty" validate:"gte=0,lte=64"` // Concurrent pipeline invocations
	Seed        uint64          `json:"seed,omitempty"`                                // Seed for variant generation; 0 picks a random seed
	Thresholds  json.RawMessage `json:"thresholds,omitempty"`                          // Partial comparator threshold overrides

	// Behavior
	Verbose     bool   `json:"verbose,omitempty"`      // Print detailed debug information
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	Addr        string `json:"addr,omitempty"`         // Listen address for the HTTP server
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	for tier := range c.Models {
		switch tier {
		case llm.TierLite, llm.TierStandard, llm.TierAdvanced:
		default:
			return fmt.Errorf("config error: unknown model tier %q", tier)
		}
	}

	if c.Input != "" {
		if _, err := os.Stat(c.Input); os.IsNotExist(err) {
			return fmt.Errorf("config error: input file not found: %s", c.Input)
		}
	}
	if c.Rules != "" {
		if _, err := os.Stat(c.Rules); os.IsNotExist(err) {
			return fmt.Errorf("config error: rules file not found: %s", c.Rules)
		}
	}

	if _, err := c.ApplyThresholds(rules.DefaultThresholds()); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	return nil
}

// ApplyThresholds overlays the configured threshold overrides on base.
// Thresholds not named in the config keep their base value.
func (c *Config) ApplyThresholds(base rules.Thresholds) (rules.Thresholds, error) {
	if len(c.Thresholds) == 0 {
		return base, nil
	}
	out := base
	if err := json.Unmarshal(c.Thresholds, &out); err != nil {
		return base, fmt.Errorf("invalid thresholds: %w", err)
	}
	if err := out.Validate(); err != nil {
		return base, fmt.Errorf("invalid thresholds: %w", err)
	}
	return out, nil
}

// LLMConfig returns the LLM client configuration with model overrides applied.
func (c *Config) LLMConfig() *llm.Config {
	cfg := llm.DefaultConfig()
	for tier, model := range c.Models {
		cfg = cfg.WithModel(tier, model)
	}
	return cfg
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Input == "" {
		result.Input = defaults.Input
	}
	if result.Output == "" {
		result.Output = defaults.Output
	}
	if result.Rules == "" {
		result.Rules = defaults.Rules
	}
	if result.PipelineURL == "" {
		result.PipelineURL = defaults.PipelineURL
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.Addr == "" {
		result.Addr = firstNonEmpty(defaults.Addr, DefaultAddr)
	}
	if len(result.Thresholds) == 0 {
		result.Thresholds = defaults.Thresholds
	}
	if len(result.Models) == 0 {
		result.Models = defaults.Models
	}

	// Int fields: use default if zero
	if result.Concurrency == 0 {
		result.Concurrency = firstPositive(defaults.Concurrency, DefaultConcurrency)
	}
	if result.MaxAttempts == 0 {
		result.MaxAttempts = firstPositive(defaults.MaxAttempts, DefaultMaxAttempts)
	}
	if result.PipelineTimeout == 0 {
		result.PipelineTimeout = firstPositive(defaults.PipelineTimeout, DefaultPipelineTimeout)
	}
	if result.Seed == 0 {
		result.Seed = defaults.Seed
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
