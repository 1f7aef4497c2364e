package pipeline

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jonathan/student-assessment/internal/types"
)

// ValidatingInvoker re-checks every stage returned by an inner Invoker
// against its schema. A stage that fails is dropped (set to nil) and the
// contract violation is recorded in Errors, so comparators see missing data
// instead of malformed data.
type ValidatingInvoker struct {
	inner Invoker
}

// NewValidatingInvoker decorates inner with contract validation.
func NewValidatingInvoker(inner Invoker) *ValidatingInvoker {
	return &ValidatingInvoker{inner: inner}
}

// Invoke implements Invoker.
func (v *ValidatingInvoker) Invoke(ctx context.Context, profile *types.StudentProfile, opts InvokeOptions) (*types.PipelineResults, error) {
	results, err := v.inner.Invoke(ctx, profile, opts)
	if err != nil || results == nil {
		if err == nil {
			err = errors.New("pipeline returned no results")
		}
		return results, err
	}
	return CheckContract(results), nil
}

// CheckContract validates each non-nil stage of results and returns a copy in
// which invalid stages are nil and their violations appended to Errors.
func CheckContract(results *types.PipelineResults) *types.PipelineResults {
	out := *results
	out.Errors = append([]string(nil), results.Errors...)

	check := func(stage string, value any) bool {
		raw, err := json.Marshal(value)
		if err == nil {
			def := stageByName(stage)
			err = def.assign(raw, &types.PipelineResults{})
		}
		if err != nil {
			out.Errors = append(out.Errors, err.Error())
			return false
		}
		return true
	}

	if out.IntakeAnalysis != nil && !check(StageIntake, out.IntakeAnalysis) {
		out.IntakeAnalysis = nil
	}
	if out.SkillGapAnalysis != nil && !check(StageSkillGaps, out.SkillGapAnalysis) {
		out.SkillGapAnalysis = nil
	}
	if out.Recommendations != nil && !check(StageRecommendations, out.Recommendations) {
		out.Recommendations = nil
	}
	if out.ActionPlan != nil && !check(StageActionPlan, out.ActionPlan) {
		out.ActionPlan = nil
	}
	return &out
}

func stageByName(name string) StageDefinition {
	for _, def := range Stages {
		if def.Name == name {
			return def
		}
	}
	panic("unknown pipeline stage " + name)
}
