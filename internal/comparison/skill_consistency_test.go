package comparison

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/student-assessment/internal/types"
)

func TestSkillConsistency_Identical(t *testing.T) {
	for _, c := range []float64{0, 0.33, 0.5, 1} {
		s := uniformSignals(c)
		got := SkillConsistency(s, s)

		assert.Equal(t, 100, got.ConsistencyPercentage)
		assert.Zero(t, got.AverageDifference)
		assert.Len(t, got.SkillDifferences, len(types.AllSkills))
		for _, d := range got.SkillDifferences {
			assert.Zero(t, d)
		}
	}
}

func TestSkillConsistency_MissingSides(t *testing.T) {
	s := uniformSignals(0.6)

	noVariant := SkillConsistency(s, nil)
	assert.Equal(t, 0, noVariant.ConsistencyPercentage)
	for _, sk := range types.AllSkills {
		assert.Equal(t, 100.0, noVariant.SkillDifferences[sk])
	}

	noBaseline := SkillConsistency(nil, s)
	assert.Equal(t, 100, noBaseline.ConsistencyPercentage)

	assert.Equal(t, 0, SkillConsistency(nil, nil).ConsistencyPercentage, "a failed run never scores as consistent")
}

func TestSkillConsistency_Differences(t *testing.T) {
	baseline := uniformSignals(0.5)
	variant := withConfidence(withConfidence(baseline, types.SkillLeadership, 0.8), types.SkillCreativity, 0.25)

	got := SkillConsistency(baseline, variant)

	assert.InDelta(t, 30.0, got.SkillDifferences[types.SkillLeadership], 1e-9)
	assert.InDelta(t, 25.0, got.SkillDifferences[types.SkillCreativity], 1e-9)
	assert.InDelta(t, 0.0, got.SkillDifferences[types.SkillCommunication], 1e-9)
	// (30 + 25) / 6 = 9.1666 -> 9.2; 100 - 9.2 = 90.8 -> 91
	assert.InDelta(t, 9.2, got.AverageDifference, 1e-9)
	assert.Equal(t, 91, got.ConsistencyPercentage)
}

func TestSkillConsistency_MissingSkillCountsAsZero(t *testing.T) {
	baseline := uniformSignals(1)
	variant := types.SkillSignals{}

	got := SkillConsistency(baseline, variant)

	assert.Equal(t, 0, got.ConsistencyPercentage)
	assert.InDelta(t, 100.0, got.AverageDifference, 1e-9)
}

func TestSkillConsistency_Bounds(t *testing.T) {
	values := []float64{0, 0.1, 0.37, 0.5, 0.91, 1}
	for _, a := range values {
		for _, b := range values {
			got := SkillConsistency(uniformSignals(a), uniformSignals(b))
			assert.GreaterOrEqual(t, got.ConsistencyPercentage, 0)
			assert.LessOrEqual(t, got.ConsistencyPercentage, 100)
		}
	}
}
