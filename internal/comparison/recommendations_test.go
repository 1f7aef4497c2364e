package comparison

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/student-assessment/internal/rules"
	"github.com/jonathan/student-assessment/internal/types"
)

func rec(category string, skills ...types.Skill) types.Recommendation {
	return types.Recommendation{Title: category + " pick", Category: category, SkillAlignment: skills}
}

func recsOf(items ...types.Recommendation) *types.RecommendationSet {
	return &types.RecommendationSet{Recommendations: items}
}

func TestThemes(t *testing.T) {
	got := Themes(recsOf(
		rec("Course", types.SkillTechnical),
		rec("project", types.SkillTechnical, types.SkillCreativity),
	))

	assert.Equal(t, map[string]bool{"course": true, "project": true, "technical_skills": true, "creativity": true}, got)
	assert.Empty(t, Themes(nil))
}

func TestCheckRecommendationStability(t *testing.T) {
	th := rules.DefaultThresholds()
	baseline := recsOf(
		rec(types.CategoryCourse, types.SkillTechnical),
		rec(types.CategoryCompetition, types.SkillProblemSolving),
	)

	tests := []struct {
		name        string
		vt          types.VariantType
		current     *types.RecommendationSet
		wantStable  bool
		wantChanged []string
		wantRanking bool
	}{
		{
			name:        "rephrased identical",
			vt:          types.VariantRephrased,
			current:     baseline,
			wantStable:  true,
			wantChanged: []string{},
		},
		{
			name: "rephrased one new theme",
			vt:   types.VariantRephrased,
			current: recsOf(
				rec(types.CategoryCourse, types.SkillTechnical, types.SkillLeadership),
				rec(types.CategoryCompetition, types.SkillProblemSolving),
			),
			wantStable:  true,
			wantChanged: []string{"leadership"},
		},
		{
			name: "rephrased swap is two changes",
			vt:   types.VariantRephrased,
			current: recsOf(
				rec(types.CategoryCourse, types.SkillTechnical),
				rec(types.CategoryProject, types.SkillProblemSolving),
			),
			wantStable:  false,
			wantChanged: []string{"competition", "project"},
		},
		{
			name: "rephrased count jump is significant",
			vt:   types.VariantRephrased,
			current: recsOf(
				rec(types.CategoryCourse, types.SkillTechnical),
				rec(types.CategoryCourse, types.SkillTechnical),
				rec(types.CategoryCourse, types.SkillTechnical),
				rec(types.CategoryCourse, types.SkillTechnical),
				rec(types.CategoryCompetition, types.SkillProblemSolving),
			),
			wantStable:  false,
			wantChanged: []string{},
			wantRanking: true,
		},
		{
			name: "injection adds two themes",
			vt:   types.VariantInjection,
			current: recsOf(
				rec(types.CategoryCourse, types.SkillTechnical),
				rec(types.CategoryCompetition, types.SkillProblemSolving),
				rec(types.CategoryProject, types.SkillLeadership),
			),
			wantStable:  true,
			wantChanged: []string{"leadership", "project"},
		},
		{
			name: "injection drops a theme",
			vt:   types.VariantInjection,
			current: recsOf(
				rec(types.CategoryCourse, types.SkillTechnical),
				rec(types.CategoryCompetition, types.SkillLeadership),
			),
			wantStable:  false,
			wantChanged: []string{"leadership", "problem_solving"},
		},
		{
			name:        "removal drops two themes",
			vt:          types.VariantRemoval,
			current:     recsOf(rec(types.CategoryCourse, types.SkillTechnical)),
			wantStable:  true,
			wantChanged: []string{"competition", "problem_solving"},
		},
		{
			name: "removal adds a theme",
			vt:   types.VariantRemoval,
			current: recsOf(
				rec(types.CategoryCourse, types.SkillTechnical, types.SkillCreativity),
				rec(types.CategoryCompetition, types.SkillProblemSolving),
			),
			wantStable:  false,
			wantChanged: []string{"creativity"},
		},
		{
			name: "original uses the strict policy",
			vt:   types.VariantOriginal,
			current: recsOf(
				rec(types.CategoryCourse, types.SkillTechnical, types.SkillCreativity, types.SkillLeadership),
				rec(types.CategoryCompetition, types.SkillProblemSolving),
			),
			wantStable:  false,
			wantChanged: []string{"creativity", "leadership"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckRecommendationStability(baseline, tt.current, tt.vt, th)

			assert.Equal(t, tt.wantStable, got.IsStable, got.Reasoning)
			assert.Equal(t, tt.wantChanged, got.CategoriesChanged)
			assert.Equal(t, tt.wantRanking, got.SignificantRankingChanges)
			assert.False(t, got.DataMissing)
		})
	}
}

func TestCheckRecommendationStability_MissingData(t *testing.T) {
	got := CheckRecommendationStability(nil, recsOf(), types.VariantRephrased, rules.DefaultThresholds())

	assert.True(t, got.DataMissing)
	assert.False(t, got.IsStable)
	assert.Equal(t, types.ReasonMissingData, got.Reasoning)
}
