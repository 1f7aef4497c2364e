package rules

import "fmt"

// Thresholds are the numeric cut-offs used by the comparators.
// None of the defaults has an empirical derivation; treat them as calibration knobs.
type Thresholds struct {
	// ConfidenceDelta is the confidence change (0..1) above which a skill counts as moved.
	ConfidenceDelta float64 `yaml:"confidence_delta" json:"confidence_delta"`
	// ChangedEvidenceDelta is the evidence-phrase count change that marks a skill changed.
	ChangedEvidenceDelta int `yaml:"changed_evidence_delta" json:"changed_evidence_delta"`
	// RephrasedEvidenceDelta is the evidence count change that is unexpected after rephrasing.
	RephrasedEvidenceDelta int `yaml:"rephrased_evidence_delta" json:"rephrased_evidence_delta"`
	// RephrasedMaxChangedSkills is how many skills may change at all after rephrasing.
	RephrasedMaxChangedSkills int `yaml:"rephrased_max_changed_skills" json:"rephrased_max_changed_skills"`

	TraceWordOverlap float64 `yaml:"trace_word_overlap" json:"trace_word_overlap"`
	ClaimWordOverlap float64 `yaml:"claim_word_overlap" json:"claim_word_overlap"`
	ClaimMinWords    int     `yaml:"claim_min_words" json:"claim_min_words"`
	// MinWordLength: only words strictly longer than this are compared.
	MinWordLength                    int `yaml:"min_word_length" json:"min_word_length"`
	ToleratedUntracedRecommendations int `yaml:"tolerated_untraced_recommendations" json:"tolerated_untraced_recommendations"`

	RankingChange            int `yaml:"ranking_change" json:"ranking_change"`
	RephrasedMaxThemeChanges int `yaml:"rephrased_max_theme_changes" json:"rephrased_max_theme_changes"`
	InjectionMaxAddedThemes  int `yaml:"injection_max_added_themes" json:"injection_max_added_themes"`
	RemovalMaxRemovedThemes  int `yaml:"removal_max_removed_themes" json:"removal_max_removed_themes"`

	PlanTaskDelta int `yaml:"plan_task_delta" json:"plan_task_delta"`
}

// DefaultThresholds returns the stock comparator thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ConfidenceDelta:                  0.15,
		ChangedEvidenceDelta:             1,
		RephrasedEvidenceDelta:           2,
		RephrasedMaxChangedSkills:        1,
		TraceWordOverlap:                 0.5,
		ClaimWordOverlap:                 0.3,
		ClaimMinWords:                    3,
		MinWordLength:                    3,
		ToleratedUntracedRecommendations: 1,
		RankingChange:                    3,
		RephrasedMaxThemeChanges:         1,
		InjectionMaxAddedThemes:          2,
		RemovalMaxRemovedThemes:          2,
		PlanTaskDelta:                    2,
	}
}

// Validate checks that thresholds are within usable ranges.
func (t Thresholds) Validate() error {
	if t.ConfidenceDelta < 0 || t.ConfidenceDelta > 1 {
		return fmt.Errorf("confidence_delta must be within [0,1], got %v", t.ConfidenceDelta)
	}
	if t.TraceWordOverlap < 0 || t.TraceWordOverlap > 1 {
		return fmt.Errorf("trace_word_overlap must be within [0,1], got %v", t.TraceWordOverlap)
	}
	if t.ClaimWordOverlap < 0 || t.ClaimWordOverlap > 1 {
		return fmt.Errorf("claim_word_overlap must be within [0,1], got %v", t.ClaimWordOverlap)
	}
	counts := map[string]int{
		"changed_evidence_delta":             t.ChangedEvidenceDelta,
		"rephrased_evidence_delta":           t.RephrasedEvidenceDelta,
		"rephrased_max_changed_skills":       t.RephrasedMaxChangedSkills,
		"claim_min_words":                    t.ClaimMinWords,
		"min_word_length":                    t.MinWordLength,
		"tolerated_untraced_recommendations": t.ToleratedUntracedRecommendations,
		"ranking_change":                     t.RankingChange,
		"rephrased_max_theme_changes":        t.RephrasedMaxThemeChanges,
		"injection_max_added_themes":         t.InjectionMaxAddedThemes,
		"removal_max_removed_themes":         t.RemovalMaxRemovedThemes,
		"plan_task_delta":                    t.PlanTaskDelta,
	}
	for name, v := range counts {
		if v < 0 {
			return fmt.Errorf("%s must be non-negative, got %d", name, v)
		}
	}
	return nil
}
