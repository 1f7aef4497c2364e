// Package pipeline defines the contract of the external analysis pipeline
// (intake analysis, skill gaps, recommendations, 30-day plan) and provides
// adapters for it: an LLM-backed reference invoker, an HTTP client for a
// remote pipeline, and decorators for contract validation and de-duplication.
package pipeline

import (
	"context"

	"github.com/jonathan/student-assessment/internal/types"
)

// InvokeOptions tunes a single pipeline invocation.
type InvokeOptions struct {
	SkipActionPlan bool `json:"skip_action_plan"`
}

// Invoker runs the analysis pipeline for one profile. Stage failures should be
// reported in PipelineResults.Errors; a returned error means the invocation
// as a whole failed.
type Invoker interface {
	Invoke(ctx context.Context, profile *types.StudentProfile, opts InvokeOptions) (*types.PipelineResults, error)
}

// InvokerFunc adapts a function to the Invoker interface.
type InvokerFunc func(ctx context.Context, profile *types.StudentProfile, opts InvokeOptions) (*types.PipelineResults, error)

// Invoke calls f.
func (f InvokerFunc) Invoke(ctx context.Context, profile *types.StudentProfile, opts InvokeOptions) (*types.PipelineResults, error) {
	return f(ctx, profile, opts)
}
