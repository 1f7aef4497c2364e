// Package types provides type definitions for structured data used throughout the student-assessment system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// TestConfig selects what a perturbation batch runs.
type TestConfig struct {
	SelectedProfileIDs []string `json:"selected_profile_ids,omitempty"`
	RunInjection       bool     `json:"run_injection"`
	RunRemoval         bool     `json:"run_removal"`
	RunRephrasing      bool     `json:"run_rephrasing"`
	SkipActionPlan     bool     `json:"skip_action_plan"`
}

// TestInput is the orchestrator input: candidate profiles plus batch config.
type TestInput struct {
	Profiles []ProfileEntry `json:"profiles" validate:"required,min=1,dive"`
	Config   TestConfig     `json:"config"`
}

// Validate validates the TestInput using the validator.
func (in *TestInput) Validate() error {
	validate := validator.New()
	return validate.Struct(in)
}

// PerturbationSummary counts runs by outcome and variant type.
type PerturbationSummary struct {
	TotalRuns             int                 `json:"total_runs"`
	SuccessfulRuns        int                 `json:"successful_runs"`
	FailedRuns            int                 `json:"failed_runs"`
	RunsByVariant         map[VariantType]int `json:"runs_by_variant"`
	AttributionConsistent int                 `json:"attribution_consistent"`
	HallucinationFree     int                 `json:"hallucination_free"`
	RecommendationsStable int                 `json:"recommendations_stable"`
	PlansAppropriate      int                 `json:"plans_appropriate"`
}

// PerturbationMetrics holds aggregate robustness rates (percentages).
type PerturbationMetrics struct {
	AttributionConsistencyRate    int                 `json:"attribution_consistency_rate"`
	HallucinationFreeRate         int                 `json:"hallucination_free_rate"`
	RecommendationStabilityRate   int                 `json:"recommendation_stability_rate"`
	ActionPlanAppropriatenessRate int                 `json:"action_plan_appropriateness_rate"`
	AverageSkillConsistency       int                 `json:"average_skill_consistency"`
	SkillConsistencyByVariant     map[VariantType]int `json:"skill_consistency_by_variant"`
}

// SkillConsistencyRow is one row of the reporting table.
type SkillConsistencyRow struct {
	VariantType        VariantType `json:"variant_type"`
	Label              string      `json:"label"`
	Runs               int         `json:"runs"`
	AverageConsistency int         `json:"average_consistency"`
	ExpectedBehavior   string      `json:"expected_behavior"`
}

// PerturbationTestResult is the self-describing JSON envelope of a batch.
type PerturbationTestResult struct {
	ProfilesTested        int                       `json:"profiles_tested"`
	TotalRuns             int                       `json:"total_runs"`
	Results               []VariantComparisonResult `json:"results"`
	Summary               PerturbationSummary       `json:"summary"`
	Metrics               PerturbationMetrics       `json:"metrics"`
	Timestamp             time.Time                 `json:"timestamp"`
	ExecutionTimeTotalMS  int64                     `json:"execution_time_total_ms"`
	SkillConsistencyTable []SkillConsistencyRow     `json:"skill_consistency_table"`
}
