package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/student-assessment/internal/llm"
	"github.com/jonathan/student-assessment/internal/prompts"
	"github.com/jonathan/student-assessment/internal/types"
)

// DefaultMaxAttempts is how many times a stage is tried before it is recorded as failed.
const DefaultMaxAttempts = 3

// LLMInvoker runs the four analysis stages sequentially against an LLM.
// A failed stage is recorded in PipelineResults.Errors and stages depending
// on it are skipped; only cancellation aborts the invocation.
type LLMInvoker struct {
	client      llm.Client
	maxAttempts int
	backoff     time.Duration
	logger      *zap.Logger
}

// LLMInvokerOption configures an LLMInvoker.
type LLMInvokerOption func(*LLMInvoker)

// WithMaxAttempts sets the attempts per stage (minimum 1).
func WithMaxAttempts(n int) LLMInvokerOption {
	return func(inv *LLMInvoker) { inv.maxAttempts = max(1, n) }
}

// WithBackoff sets the base delay between attempts; it grows linearly.
func WithBackoff(d time.Duration) LLMInvokerOption {
	return func(inv *LLMInvoker) { inv.backoff = d }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) LLMInvokerOption {
	return func(inv *LLMInvoker) {
		if logger != nil {
			inv.logger = logger
		}
	}
}

// NewLLMInvoker creates an invoker backed by client.
func NewLLMInvoker(client llm.Client, opts ...LLMInvokerOption) *LLMInvoker {
	inv := &LLMInvoker{
		client:      client,
		maxAttempts: DefaultMaxAttempts,
		backoff:     time.Second,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// Invoke implements Invoker.
func (inv *LLMInvoker) Invoke(ctx context.Context, profile *types.StudentProfile, opts InvokeOptions) (*types.PipelineResults, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}
	profileJSON, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}

	results := &types.PipelineResults{}
	data := map[string]string{"Profile": string(profileJSON)}
	done := make(map[string]bool, len(Stages))

	for _, def := range Stages {
		if def.Name == StageActionPlan && opts.SkipActionPlan {
			continue
		}
		if missing := missingDependencies(def, done); len(missing) > 0 {
			results.Errors = append(results.Errors, (&DependencyError{Stage: def.Name, Missing: missing}).Error())
			continue
		}

		raw, err := inv.runStage(ctx, def, data, results)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return results, ctxErr
			}
			inv.logger.Warn("pipeline stage failed", zap.String("stage", def.Name), zap.Error(err))
			results.Errors = append(results.Errors, err.Error())
			continue
		}
		data[def.OutputKey] = raw
		done[def.Name] = true
	}
	return results, nil
}

// runStage renders the prompt and retries until the output satisfies the
// stage contract. It returns the accepted raw JSON.
func (inv *LLMInvoker) runStage(ctx context.Context, def StageDefinition, data map[string]string, results *types.PipelineResults) (string, error) {
	prompt, err := prompts.Render(promptFile, def.PromptKey, data)
	if err != nil {
		return "", &StageError{Stage: def.Name, Attempts: 0, Cause: err}
	}

	var lastErr error
	for attempt := 1; attempt <= inv.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if attempt > 1 && inv.backoff > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(inv.backoff * time.Duration(attempt-1)):
			}
		}

		inv.logger.Debug("running pipeline stage",
			zap.String("stage", def.Name),
			zap.Int("attempt", attempt),
			zap.String("model", inv.client.GetModel(def.Tier)))

		raw, err := inv.client.GenerateJSON(ctx, prompt, def.Tier)
		if err != nil {
			lastErr = err
			continue
		}
		raw = llm.CleanJSONBlock(raw)
		if err := def.assign([]byte(raw), results); err != nil {
			lastErr = err
			continue
		}
		return raw, nil
	}
	return "", &StageError{Stage: def.Name, Attempts: inv.maxAttempts, Cause: lastErr}
}
