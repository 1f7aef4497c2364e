package comparison

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/student-assessment/internal/rules"
	"github.com/jonathan/student-assessment/internal/types"
)

func TestCompare_OriginalRow(t *testing.T) {
	c := NewComparator(rules.DefaultThresholds())
	current := baseResults()
	variant := variantOf(types.VariantOriginal)

	// The baseline argument is ignored for the original row.
	got := c.Compare(variant, nil, current, nil)

	assert.Equal(t, "p1", got.ProfileID)
	assert.Equal(t, "v1", got.VariantID)
	assert.Equal(t, types.VariantOriginal, got.VariantType)
	assert.Equal(t, 100, got.SkillConsistency.ConsistencyPercentage)
	assert.True(t, got.Attribution.IsConsistent)
	assert.True(t, got.RecommendationStability.IsStable)
	assert.True(t, got.ActionPlanSensitivity.IsAppropriate)
	assert.Equal(t, types.ProportionUnchanged, got.ActionPlanSensitivity.PlanChangesProportion)
	assert.False(t, got.Hallucination.HasHallucinations)
	assert.True(t, got.Succeeded())
}

func TestCompare_FailedVariant(t *testing.T) {
	c := NewComparator(rules.DefaultThresholds())
	variant := variantOf(types.VariantInjection, types.SkillLeadership)

	got := c.Compare(variant, baseResults(), nil, []string{"pipeline: timeout"})

	assert.Equal(t, []string{"pipeline: timeout"}, got.Errors)
	assert.False(t, got.Succeeded())
	assert.Equal(t, 0, got.SkillConsistency.ConsistencyPercentage)
	assert.True(t, got.Attribution.DataMissing)
	assert.True(t, got.Hallucination.DataMissing)
	assert.True(t, got.RecommendationStability.DataMissing)
	assert.True(t, got.ActionPlanSensitivity.DataMissing)
}

func TestCompare_StageErrorsAreRecorded(t *testing.T) {
	c := NewComparator(rules.DefaultThresholds())
	current := baseResults()
	current.ActionPlan = nil
	current.Errors = []string{"action plan: invalid JSON"}

	got := c.Compare(variantOf(types.VariantRephrased), baseResults(), current, nil)

	assert.Equal(t, []string{"action plan: invalid JSON"}, got.Errors)
	assert.True(t, got.ActionPlanSensitivity.DataMissing)
	assert.False(t, got.Attribution.DataMissing)
	assert.Equal(t, 100, got.SkillConsistency.ConsistencyPercentage)
}

func TestCompare_EmptyResultsWithoutErrors(t *testing.T) {
	c := NewComparator(rules.DefaultThresholds())

	got := c.Compare(variantOf(types.VariantRemoval, types.SkillTechnical), baseResults(), &types.PipelineResults{}, nil)

	assert.False(t, got.Succeeded())
	assert.Contains(t, got.Errors[0], "no intake analysis")
}

func TestCompare_InjectionMovesRelatedSkill(t *testing.T) {
	c := NewComparator(rules.DefaultThresholds())
	current := baseResults()
	current.IntakeAnalysis.SkillSignals[types.SkillLeadership] = &types.SkillSignal{
		EvidencePhrases: []string{"tutor younger students"},
		Confidence:      0.6,
	}

	got := c.Compare(variantOf(types.VariantInjection, types.SkillLeadership), baseResults(), current, nil)

	assert.True(t, got.Attribution.IsConsistent, got.Attribution.Reasoning)
	assert.Equal(t, []types.Skill{types.SkillLeadership}, got.Attribution.SkillsChanged)
	assert.Equal(t, 90, got.SkillConsistency.ConsistencyPercentage)
}

func TestCompare_MissingBaseline(t *testing.T) {
	c := NewComparator(rules.DefaultThresholds())

	got := c.Compare(variantOf(types.VariantRemoval, types.SkillTechnical), nil, baseResults(), nil)

	assert.Equal(t, []string{ErrNoBaseline}, got.Errors)
	assert.False(t, got.Succeeded())
	assert.Equal(t, 0, got.SkillConsistency.ConsistencyPercentage)
	assert.Equal(t, 100.0, got.SkillConsistency.AverageDifference)
	assert.True(t, got.Attribution.DataMissing)
	assert.True(t, got.RecommendationStability.DataMissing)
	assert.True(t, got.ActionPlanSensitivity.DataMissing)
}

func TestCompare_MissingBaselineKeepsOwnError(t *testing.T) {
	c := NewComparator(rules.DefaultThresholds())

	got := c.Compare(variantOf(types.VariantRemoval, types.SkillTechnical), nil, nil, []string{"boom"})

	assert.Equal(t, []string{"boom"}, got.Errors)
	assert.Equal(t, 0, got.SkillConsistency.ConsistencyPercentage)
}
