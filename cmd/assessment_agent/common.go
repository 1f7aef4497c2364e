package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/student-assessment/internal/comparison"
	"github.com/jonathan/student-assessment/internal/config"
	"github.com/jonathan/student-assessment/internal/llm"
	"github.com/jonathan/student-assessment/internal/pipeline"
	"github.com/jonathan/student-assessment/internal/rules"
	"github.com/jonathan/student-assessment/internal/schemas"
	"github.com/jonathan/student-assessment/internal/types"
	"github.com/jonathan/student-assessment/internal/variants"
)

// sharedFlags holds the flags common to the batch commands. Flag values land
// in cfg and override the config file only when set explicitly.
type sharedFlags struct {
	configPath string
	cfg        config.Config

	profiles       []string
	injection      bool
	removal        bool
	rephrasing     bool
	skipActionPlan bool
}

func bindInputFlags(cmd *cobra.Command, f *sharedFlags) {
	flags := cmd.Flags()
	flags.StringVar(&f.configPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	flags.StringVarP(&f.cfg.Input, "input", "i", "", "Path to test input JSON (profiles and batch config)")
	flags.StringVarP(&f.cfg.Output, "out", "o", "", "Output file (defaults to stdout)")
	flags.StringVar(&f.cfg.Rules, "rules", "", "Path to a YAML rule set replacing the built-in one")
	flags.Uint64Var(&f.cfg.Seed, "seed", 0, "Seed for variant generation (0 picks a random seed)")

	flags.StringSliceVar(&f.profiles, "profiles", nil, "Profile ids to test (defaults to the input's selection)")
	flags.BoolVar(&f.injection, "injection", false, "Generate evidence injection variants")
	flags.BoolVar(&f.removal, "removal", false, "Generate evidence removal variants")
	flags.BoolVar(&f.rephrasing, "rephrasing", false, "Generate rephrased variants")
	flags.BoolVar(&f.skipActionPlan, "skip-action-plan", false, "Skip the action plan stage")
}

func bindPipelineFlags(cmd *cobra.Command, f *sharedFlags) {
	flags := cmd.Flags()
	flags.StringVar(&f.cfg.PipelineURL, "pipeline-url", "", "Remote pipeline endpoint (uses the built-in Gemini pipeline when empty)")
	flags.IntVar(&f.cfg.Concurrency, "concurrency", 0, "Concurrent pipeline invocations")
	flags.IntVar(&f.cfg.MaxAttempts, "max-attempts", 0, "Attempts per pipeline stage")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	flags.StringVar(&f.cfg.APIKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	// Database URL for report archiving
	flags.StringVar(&f.cfg.DatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
}

// resolve loads the config file, applies explicitly set flags and fills
// defaults. Environment variables only supply secrets nobody else set.
func (f *sharedFlags) resolve(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if f.configPath != "" {
		loaded, err := config.LoadConfig(f.configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
		logger.Debug("loaded config", zap.String("path", f.configPath))
	}

	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.Input = f.cfg.Input
	}
	if flags.Changed("out") {
		cfg.Output = f.cfg.Output
	}
	if flags.Changed("rules") {
		cfg.Rules = f.cfg.Rules
	}
	if flags.Changed("seed") {
		cfg.Seed = f.cfg.Seed
	}
	if flags.Changed("pipeline-url") {
		cfg.PipelineURL = f.cfg.PipelineURL
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = f.cfg.Concurrency
	}
	if flags.Changed("max-attempts") {
		cfg.MaxAttempts = f.cfg.MaxAttempts
	}
	if flags.Changed("api-key") {
		cfg.APIKey = f.cfg.APIKey
	}
	if flags.Changed("db-url") {
		cfg.DatabaseURL = f.cfg.DatabaseURL
	}
	if flags.Changed("addr") {
		cfg.Addr = f.cfg.Addr
	}
	if verbose {
		cfg.Verbose = true
	}

	merged := cfg.MergeWithDefaults(config.Config{
		APIKey:      os.Getenv("GEMINI_API_KEY"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
	})
	if err := merged.Validate(); err != nil {
		return merged, err
	}
	return merged, nil
}

// applyInputOverrides lets flags replace the batch config stored in the
// input file.
func (f *sharedFlags) applyInputOverrides(cmd *cobra.Command, input *types.TestInput) {
	flags := cmd.Flags()
	if flags.Changed("profiles") {
		input.Config.SelectedProfileIDs = f.profiles
	}
	if flags.Changed("injection") {
		input.Config.RunInjection = f.injection
	}
	if flags.Changed("removal") {
		input.Config.RunRemoval = f.removal
	}
	if flags.Changed("rephrasing") {
		input.Config.RunRephrasing = f.rephrasing
	}
	if flags.Changed("skip-action-plan") {
		input.Config.SkipActionPlan = f.skipActionPlan
	}
}

// loadInput reads a test input file and checks it against the input schema.
func loadInput(path string) (*types.TestInput, error) {
	if path == "" {
		return nil, fmt.Errorf("--input is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file %s: %w", path, err)
	}
	if err := schemas.Validate(schemas.TestInput, data); err != nil {
		return nil, err
	}
	var input types.TestInput
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("failed to parse input JSON: %w", err)
	}
	return &input, nil
}

// loadRuleSet returns the built-in or configured rule set with the config's
// threshold overrides applied.
func loadRuleSet(cfg config.Config) (*rules.RuleSet, error) {
	var (
		rs  *rules.RuleSet
		err error
	)
	if cfg.Rules != "" {
		rs, err = rules.LoadFile(cfg.Rules)
	} else {
		rs, err = rules.Default()
	}
	if err != nil {
		return nil, err
	}
	th, err := cfg.ApplyThresholds(rs.Thresholds)
	if err != nil {
		return nil, err
	}
	return rs.WithThresholds(th), nil
}

// newGenerator seeds variant generation. A zero seed is replaced by a random
// one that is logged so the batch can be replayed.
func newGenerator(rs *rules.RuleSet, seed uint64) (*variants.Generator, uint64) {
	if seed == 0 {
		seed = rand.Uint64()
	}
	logger.Info("variant generation seeded", zap.Uint64("seed", seed))
	return variants.NewGenerator(rs, variants.NewSeededRandom(seed)), seed
}

func newComparator(rs *rules.RuleSet) *comparison.Comparator {
	return comparison.NewComparator(rs.Thresholds)
}

// buildInvoker returns the pipeline invoker for cfg: the remote endpoint when
// PipelineURL is set, otherwise the Gemini-backed pipeline. Stage output is
// always checked against the stage contracts. record additionally serves
// identical (profile, options) pairs once.
func buildInvoker(ctx context.Context, cfg config.Config, record bool) (pipeline.Invoker, func(), error) {
	var inner pipeline.Invoker
	cleanup := func() {}

	if cfg.PipelineURL != "" {
		inner = pipeline.NewHTTPInvoker(cfg.PipelineURL, time.Duration(cfg.PipelineTimeout)*time.Second)
		logger.Info("using remote pipeline", zap.String("url", cfg.PipelineURL))
	} else {
		if cfg.APIKey == "" {
			return nil, nil, fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required (or set --pipeline-url)")
		}
		client, err := llm.NewClient(ctx, cfg.LLMConfig(), cfg.APIKey)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		inner = pipeline.NewLLMInvoker(client,
			pipeline.WithMaxAttempts(cfg.MaxAttempts),
			pipeline.WithLogger(logger))
		cleanup = func() { _ = client.Close() }
		logger.Info("using built-in pipeline", zap.String("model", client.GetModel(llm.TierStandard)))
	}

	var inv pipeline.Invoker = pipeline.NewValidatingInvoker(inner)
	if record {
		inv = pipeline.NewRecordingInvoker(inv)
	}
	return inv, cleanup, nil
}

// writeJSON writes v as indented JSON to path, or to stdout when path is empty.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file %s: %w", path, err)
	}
	return nil
}

// progressOut is where human-readable output goes: stdout unless the JSON
// result itself is written there.
func progressOut(output string) io.Writer {
	if output == "" {
		return os.Stderr
	}
	return os.Stdout
}
