// Package types provides type definitions for structured data used throughout the student-assessment system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// SkillSignal is the pipeline's judgment about one skill.
type SkillSignal struct {
	EvidenceFound   bool     `json:"evidence_found"`
	EvidencePhrases []string `json:"evidence_phrases"`
	EvidenceSources []string `json:"evidence_sources"`
	Confidence      float64  `json:"confidence"`
	Reasoning       string   `json:"reasoning"`
}

// SkillSignals maps each skill to its signal.
type SkillSignals map[Skill]*SkillSignal

// IntakeAnalysis is the output of the intake analysis stage.
type IntakeAnalysis struct {
	SkillSignals SkillSignals `json:"skill_signals"`
	Summary      string       `json:"summary,omitempty"`
}

// SkillGap describes one gap found by the skill-gap stage.
type SkillGap struct {
	Name        string `json:"name"`
	Skill       Skill  `json:"skill"`
	Priority    string `json:"priority,omitempty"`
	Description string `json:"description,omitempty"`
}

// SkillGapAnalysis is the output of the skill-gap stage.
type SkillGapAnalysis struct {
	Gaps      []SkillGap `json:"gaps"`
	Strengths []string   `json:"strengths,omitempty"`
}

// Recommendation categories.
const (
	CategoryCourse      = "course"
	CategoryProject     = "project"
	CategoryCompetition = "competition"
)

// Recommendation is one suggested opportunity.
type Recommendation struct {
	ID             string  `json:"id,omitempty"`
	Title          string  `json:"title"`
	Category       string  `json:"category"`
	Description    string  `json:"description,omitempty"`
	Reasoning      string  `json:"reasoning"`
	SkillAlignment []Skill `json:"skill_alignment"`
	Priority       int     `json:"priority,omitempty"`
}

// RecommendationSet is the output of the recommendation stage.
type RecommendationSet struct {
	Recommendations []Recommendation `json:"recommendations"`
}

// PlanTask is one step of the 30-day action plan.
type PlanTask struct {
	Week           int     `json:"week"`
	Title          string  `json:"title"`
	Description    string  `json:"description,omitempty"`
	RelatedSkill   Skill   `json:"related_skill"`
	EvidenceSource string  `json:"evidence_source,omitempty"`
	EstimatedHours float64 `json:"estimated_hours,omitempty"`
}

// ActionPlan is the output of the 30-day plan stage.
type ActionPlan struct {
	Goal  string     `json:"goal,omitempty"`
	Tasks []PlanTask `json:"tasks"`
}

// PipelineResults bundles the four stage outputs. Any stage may be nil when it
// failed or was skipped; Errors explains why.
type PipelineResults struct {
	IntakeAnalysis   *IntakeAnalysis    `json:"intake_analysis"`
	SkillGapAnalysis *SkillGapAnalysis  `json:"skill_gap_analysis"`
	Recommendations  *RecommendationSet `json:"recommendations"`
	ActionPlan       *ActionPlan        `json:"action_plan"`
	Errors           []string           `json:"errors,omitempty"`
}

// Signals returns the skill signals, or nil when the intake stage is missing.
func (r *PipelineResults) Signals() SkillSignals {
	if r == nil || r.IntakeAnalysis == nil {
		return nil
	}
	return r.IntakeAnalysis.SkillSignals
}

// Recs returns the recommendation set, or nil when unavailable.
func (r *PipelineResults) Recs() *RecommendationSet {
	if r == nil {
		return nil
	}
	return r.Recommendations
}

// Plan returns the action plan, or nil when unavailable.
func (r *PipelineResults) Plan() *ActionPlan {
	if r == nil {
		return nil
	}
	return r.ActionPlan
}
