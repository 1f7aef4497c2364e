package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/student-assessment/internal/config"
	"github.com/jonathan/student-assessment/internal/pipeline"
	"github.com/jonathan/student-assessment/internal/rules"
	"github.com/jonathan/student-assessment/internal/schemas"
)

func newFlagCommand(t *testing.T, args ...string) (*cobra.Command, *sharedFlags) {
	t.Helper()
	f := &sharedFlags{}
	cmd := &cobra.Command{Use: "test"}
	bindInputFlags(cmd, f)
	bindPipelineFlags(cmd, f)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd, f
}

func TestResolve_FlagsOverrideConfigFile(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("DATABASE_URL", "")
	input := writeTestFile(t, "input.json", sampleInput)
	cfgPath := writeTestFile(t, "config.json", `{
  "input": "`+input+`",
  "output": "from-file.json",
  "concurrency": 8,
  "seed": 11
}`)

	cmd, f := newFlagCommand(t, "--config", cfgPath, "--out", "from-flag.json", "--seed", "42")
	cfg, err := f.resolve(cmd)
	require.NoError(t, err)

	assert.Equal(t, input, cfg.Input)
	assert.Equal(t, "from-flag.json", cfg.Output)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, 8, cfg.Concurrency, "unset flags keep file values")
	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, config.DefaultMaxAttempts, cfg.MaxAttempts)
	assert.Equal(t, config.DefaultPipelineTimeout, cfg.PipelineTimeout)
}

func TestResolve_FlagBeatsEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")

	cmd, f := newFlagCommand(t, "--api-key", "flag-key")
	cfg, err := f.resolve(cmd)
	require.NoError(t, err)
	assert.Equal(t, "flag-key", cfg.APIKey)
}

func TestResolve_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "missing config file", args: []string{"--config", "/nonexistent/config.json"}, wantErr: "failed to load config"},
		{name: "missing input file", args: []string{"--input", "/nonexistent/input.json"}, wantErr: "input file not found"},
		{name: "concurrency out of range", args: []string{"--concurrency", "500"}, wantErr: "config error"},
		{name: "bad pipeline url", args: []string{"--pipeline-url", "not a url"}, wantErr: "config error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, f := newFlagCommand(t, tt.args...)
			_, err := f.resolve(cmd)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestApplyInputOverrides(t *testing.T) {
	input, err := loadInput(writeTestFile(t, "input.json", sampleInput))
	require.NoError(t, err)

	cmd, f := newFlagCommand(t, "--profiles", "blair", "--removal", "--rephrasing=false", "--skip-action-plan")
	f.applyInputOverrides(cmd, input)

	assert.Equal(t, []string{"blair"}, input.Config.SelectedProfileIDs)
	assert.True(t, input.Config.RunInjection, "unset flags keep input values")
	assert.True(t, input.Config.RunRemoval)
	assert.False(t, input.Config.RunRephrasing)
	assert.True(t, input.Config.SkipActionPlan)
}

func TestLoadInput(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		input, err := loadInput(writeTestFile(t, "input.json", sampleInput))
		require.NoError(t, err)
		require.Len(t, input.Profiles, 2)
		assert.Equal(t, "alex", input.Profiles[0].ID)
		assert.Equal(t, "I won first place at a coding hackathon.", input.Profiles[0].Profile.PastAchievements)
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := loadInput("")
		assert.EqualError(t, err, "--input is required")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadInput(filepath.Join(t.TempDir(), "missing.json"))
		assert.ErrorContains(t, err, "failed to read input file")
	})

	t.Run("schema violation", func(t *testing.T) {
		_, err := loadInput(writeTestFile(t, "input.json", `{"profiles": [{"id": "x"}]}`))
		var ve *schemas.ValidationError
		assert.ErrorAs(t, err, &ve)
	})
}

func TestLoadRuleSet(t *testing.T) {
	rs, err := loadRuleSet(config.Config{})
	require.NoError(t, err)
	assert.Equal(t, rules.DefaultThresholds(), rs.Thresholds)

	rs, err = loadRuleSet(config.Config{Thresholds: json.RawMessage(`{"plan_task_delta": 5}`)})
	require.NoError(t, err)
	assert.Equal(t, 5, rs.Thresholds.PlanTaskDelta)

	_, err = loadRuleSet(config.Config{Rules: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestNewGenerator_SeedIsReproducible(t *testing.T) {
	rs := rules.MustDefault()
	input, err := loadInput(writeTestFile(t, "input.json", sampleInput))
	require.NoError(t, err)
	entry := input.Profiles[0]

	g1, seed := newGenerator(rs, 99)
	g2, _ := newGenerator(rs, 99)
	assert.Equal(t, uint64(99), seed)

	v1 := g1.Injection(entry.ID, entry.Name, entry.Profile)
	v2 := g2.Injection(entry.ID, entry.Name, entry.Profile)
	assert.Equal(t, v1.AddedEvidence, v2.AddedEvidence)

	_, picked := newGenerator(rs, 0)
	assert.NotZero(t, picked)
}

func TestBuildInvoker(t *testing.T) {
	t.Run("remote pipeline needs no API key", func(t *testing.T) {
		inv, cleanup, err := buildInvoker(context.Background(), config.Config{PipelineURL: "http://localhost:9999/analyze", PipelineTimeout: 5}, true)
		require.NoError(t, err)
		defer cleanup()
		assert.IsType(t, &pipeline.RecordingInvoker{}, inv)
	})

	t.Run("without recording", func(t *testing.T) {
		inv, cleanup, err := buildInvoker(context.Background(), config.Config{PipelineURL: "http://localhost:9999/analyze"}, false)
		require.NoError(t, err)
		defer cleanup()
		assert.IsType(t, &pipeline.ValidatingInvoker{}, inv)
	})

	t.Run("built-in pipeline needs API key", func(t *testing.T) {
		_, _, err := buildInvoker(context.Background(), config.Config{}, true)
		assert.ErrorContains(t, err, "GEMINI_API_KEY")
	})
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.json")
	require.NoError(t, writeJSON(path, map[string]int{"total_runs": 3}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"total_runs": 3}`, string(data))
}
