package comparison

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/student-assessment/internal/rules"
	"github.com/jonathan/student-assessment/internal/types"
)

func TestCheckAttribution_RephrasedAgainstItself(t *testing.T) {
	s := uniformSignals(0.5)

	got := CheckAttribution(variantOf(types.VariantRephrased), s, s, rules.DefaultThresholds())

	assert.True(t, got.IsConsistent)
	assert.Empty(t, got.SkillsChanged)
	assert.Empty(t, got.UnexpectedChanges)
	assert.False(t, got.DataMissing)
}

func TestCheckAttribution_MissingData(t *testing.T) {
	s := uniformSignals(0.5)
	th := rules.DefaultThresholds()

	for _, tc := range []struct{ baseline, current types.SkillSignals }{{nil, s}, {s, nil}, {nil, nil}} {
		got := CheckAttribution(variantOf(types.VariantInjection, types.SkillLeadership), tc.baseline, tc.current, th)
		assert.False(t, got.IsConsistent)
		assert.True(t, got.DataMissing)
		assert.Equal(t, types.ReasonMissingData, got.Reasoning)
	}
}

func TestCheckAttribution_Policies(t *testing.T) {
	base := uniformSignals(0.5)
	th := rules.DefaultThresholds()

	tests := []struct {
		name           string
		variant        *types.ProfileVariant
		current        types.SkillSignals
		wantConsistent bool
		wantChanged    []types.Skill
		wantUnexpected int
	}{
		{
			name:           "rephrased small drift tolerated",
			variant:        variantOf(types.VariantRephrased),
			current:        withConfidence(base, types.SkillCreativity, 0.6),
			wantConsistent: true,
			wantChanged:    nil,
		},
		{
			name:           "rephrased confidence exactly at threshold is not a change",
			variant:        variantOf(types.VariantRephrased),
			current:        withConfidence(base, types.SkillCreativity, 0.65),
			wantConsistent: true,
		},
		{
			name:           "rephrased confidence jump is unexpected",
			variant:        variantOf(types.VariantRephrased),
			current:        withConfidence(base, types.SkillCreativity, 0.8),
			wantConsistent: false,
			wantChanged:    []types.Skill{types.SkillCreativity},
			wantUnexpected: 1,
		},
		{
			name:           "rephrased one extra phrase changes but is expected",
			variant:        variantOf(types.VariantRephrased),
			current:        withPhrases(base, types.SkillCreativity, "a", "b"),
			wantConsistent: true,
			wantChanged:    []types.Skill{types.SkillCreativity},
		},
		{
			name:           "rephrased two changed skills exceed the strict bar",
			variant:        variantOf(types.VariantRephrased),
			current:        withPhrases(withPhrases(base, types.SkillCreativity, "a", "b"), types.SkillLeadership, "c", "d"),
			wantConsistent: false,
			wantChanged:    []types.Skill{types.SkillCreativity, types.SkillLeadership},
		},
		{
			name:           "rephrased evidence jump of two is unexpected",
			variant:        variantOf(types.VariantRephrased),
			current:        withPhrases(base, types.SkillCreativity, "a", "b", "c"),
			wantConsistent: false,
			wantChanged:    []types.Skill{types.SkillCreativity},
			wantUnexpected: 1,
		},
		{
			name:           "injection rise on injected skill",
			variant:        variantOf(types.VariantInjection, types.SkillLeadership),
			current:        withConfidence(base, types.SkillLeadership, 0.9),
			wantConsistent: true,
			wantChanged:    []types.Skill{types.SkillLeadership},
		},
		{
			name:           "injection rise on unrelated skill",
			variant:        variantOf(types.VariantInjection, types.SkillLeadership),
			current:        withConfidence(base, types.SkillTechnical, 0.9),
			wantConsistent: false,
			wantChanged:    []types.Skill{types.SkillTechnical},
			wantUnexpected: 1,
		},
		{
			name:           "injection fall is not judged",
			variant:        variantOf(types.VariantInjection, types.SkillLeadership),
			current:        withConfidence(base, types.SkillTechnical, 0.1),
			wantConsistent: true,
			wantChanged:    []types.Skill{types.SkillTechnical},
		},
		{
			name:           "removal fall on removed skill",
			variant:        variantOf(types.VariantRemoval, types.SkillLeadership),
			current:        withConfidence(base, types.SkillLeadership, 0.1),
			wantConsistent: true,
			wantChanged:    []types.Skill{types.SkillLeadership},
		},
		{
			name:           "removal fall on unrelated skill",
			variant:        variantOf(types.VariantRemoval, types.SkillLeadership),
			current:        withConfidence(base, types.SkillCommunication, 0.2),
			wantConsistent: false,
			wantChanged:    []types.Skill{types.SkillCommunication},
			wantUnexpected: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckAttribution(tt.variant, base, tt.current, th)

			assert.Equal(t, tt.wantConsistent, got.IsConsistent, got.Reasoning)
			if tt.wantChanged == nil {
				assert.Empty(t, got.SkillsChanged)
			} else {
				assert.Equal(t, tt.wantChanged, got.SkillsChanged)
			}
			assert.Len(t, got.UnexpectedChanges, tt.wantUnexpected)
			assert.NotEmpty(t, got.Reasoning)
		})
	}
}
