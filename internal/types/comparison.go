// Package types provides type definitions for structured data used throughout the student-assessment system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// ReasonMissingData is the reasoning recorded when a comparison cannot be made.
const ReasonMissingData = "missing data for comparison"

// Plan change proportions.
const (
	ProportionUnchanged       = "unchanged"
	ProportionProportional    = "proportional"
	ProportionDisproportional = "disproportional"
)

// SkillConsistencyResult compares confidence scores between two signal bundles.
type SkillConsistencyResult struct {
	SkillDifferences      map[Skill]float64 `json:"skill_differences"`
	AverageDifference     float64           `json:"average_difference"`
	ConsistencyPercentage int               `json:"consistency_percentage"`
}

// AttributionResult reports whether skill changes are explained by the evidence change.
type AttributionResult struct {
	IsConsistent      bool     `json:"is_consistent"`
	SkillsChanged     []Skill  `json:"skills_changed"`
	UnexpectedChanges []string `json:"unexpected_changes"`
	Reasoning         string   `json:"reasoning"`
	DataMissing       bool     `json:"data_missing,omitempty"`
}

// HallucinationResult lists pipeline claims that cannot be traced to the profile.
type HallucinationResult struct {
	HasHallucinations       bool     `json:"has_hallucinations"`
	UntracedSkills          []string `json:"untraced_skills"`
	UntracedRecommendations []string `json:"untraced_recommendations"`
	UntracedPlanSteps       []string `json:"untraced_plan_steps"`
	Reasoning               string   `json:"reasoning"`
	DataMissing             bool     `json:"data_missing,omitempty"`
}

// RecommendationStabilityResult compares recommendation themes.
type RecommendationStabilityResult struct {
	IsStable                  bool     `json:"is_stable"`
	CategoriesChanged         []string `json:"categories_changed"`
	AddedThemes               []string `json:"added_themes,omitempty"`
	RemovedThemes             []string `json:"removed_themes,omitempty"`
	SignificantRankingChanges bool     `json:"significant_ranking_changes"`
	Reasoning                 string   `json:"reasoning"`
	DataMissing               bool     `json:"data_missing,omitempty"`
}

// ActionPlanSensitivityResult judges whether plan changes fit the evidence change.
type ActionPlanSensitivityResult struct {
	IsAppropriate         bool     `json:"is_appropriate"`
	PlanChangesProportion string   `json:"plan_changes_proportion"`
	UnrelatedStepsAdded   []string `json:"unrelated_steps_added"`
	Reasoning             string   `json:"reasoning"`
	DataMissing           bool     `json:"data_missing,omitempty"`
}

// VariantComparisonResult is the outcome of one (profile, variant) run.
type VariantComparisonResult struct {
	ProfileID               string                        `json:"profile_id"`
	ProfileName             string                        `json:"profile_name"`
	VariantID               string                        `json:"variant_id"`
	VariantType             VariantType                   `json:"variant_type"`
	VariantDescription      string                        `json:"variant_description"`
	SkillConsistency        SkillConsistencyResult        `json:"skill_consistency"`
	Attribution             AttributionResult             `json:"attribution"`
	Hallucination           HallucinationResult           `json:"hallucination"`
	RecommendationStability RecommendationStabilityResult `json:"recommendation_stability"`
	ActionPlanSensitivity   ActionPlanSensitivityResult   `json:"action_plan_sensitivity"`
	Errors                  []string                      `json:"errors,omitempty"`
	ExecutionTimeMS         int64                         `json:"execution_time_ms"`
	Timestamp               time.Time                     `json:"timestamp"`
}

// Succeeded reports whether the run produced pipeline output without errors.
func (r *VariantComparisonResult) Succeeded() bool {
	return len(r.Errors) == 0
}
