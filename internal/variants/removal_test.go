package variants

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/student-assessment/internal/rules"
	"github.com/jonathan/student-assessment/internal/types"
)

func TestRemoval(t *testing.T) {
	tests := []struct {
		name             string
		activities       string
		achievements     string
		wantActivities   string
		wantAchievements string
		wantType         types.EvidenceType
		wantContent      string
		wantSkills       []types.Skill
	}{
		{
			name:           "leadership sentence",
			activities:     "I led the debate team to states. I also enjoy reading.",
			wantActivities: "I also enjoy reading.",
			wantType:       types.EvidenceExperience,
			wantContent:    "I led the debate team to states.",
			wantSkills:     []types.Skill{types.SkillLeadership},
		},
		{
			name:           "technical sentence in the middle",
			activities:     "I play piano. I coded a weather app in Python. I walk my dog.",
			wantActivities: "I play piano. I walk my dog.",
			wantType:       types.EvidenceExperience,
			wantContent:    "I coded a weather app in Python.",
			wantSkills:     []types.Skill{types.SkillTechnical},
		},
		{
			name:           "single keyword sentence is still removed",
			activities:     "I presented at the science fair",
			wantActivities: "",
			wantType:       types.EvidenceExperience,
			wantContent:    "I presented at the science fair",
			wantSkills:     []types.Skill{types.SkillCommunication},
		},
		{
			name:             "achievement with bucket",
			activities:       "I enjoy reading.",
			achievements:     "I won first place at a coding hackathon. I like soccer.",
			wantActivities:   "I enjoy reading.",
			wantAchievements: "I like soccer.",
			wantType:         types.EvidenceAchievement,
			wantContent:      "I won first place at a coding hackathon.",
			wantSkills:       []types.Skill{types.SkillTechnical, types.SkillProblemSolving},
		},
		{
			name:           "achievement without bucket",
			achievements:   "Received a scholarship.",
			wantActivities: "",
			wantType:       types.EvidenceAchievement,
			wantContent:    "Received a scholarship.",
			wantSkills:     []types.Skill{types.SkillProblemSolving},
		},
		{
			name:           "fallback removes last sentence",
			activities:     "I enjoy reading. I walk my dog.",
			wantActivities: "I enjoy reading.",
			wantType:       types.EvidenceExperience,
			wantContent:    "I walk my dog.",
			wantSkills:     []types.Skill{types.SkillProblemSolving},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenerator(rules.MustDefault(), nil)
			p := &types.StudentProfile{PastActivities: tt.activities, PastAchievements: tt.achievements}

			v := g.Removal("p1", "Alex", p)

			require.Len(t, v.RemovedEvidence, 1)
			item := v.RemovedEvidence[0]
			assert.Equal(t, tt.wantType, item.Type)
			assert.Equal(t, tt.wantContent, item.Content)
			assert.Equal(t, tt.wantSkills, item.RelatedSkills)
			assert.Equal(t, tt.wantActivities, v.Profile.PastActivities)
			assert.Equal(t, tt.wantAchievements, v.Profile.PastAchievements)
			assert.Equal(t, tt.activities, p.PastActivities, "input must not be mutated")
			assert.NoError(t, v.Validate())
		})
	}
}

func TestRemoval_NothingToRemove(t *testing.T) {
	for _, activities := range []string{"", "I enjoy reading."} {
		g := NewGenerator(rules.MustDefault(), nil)
		p := &types.StudentProfile{PastActivities: activities}

		v := g.Removal("p1", "Alex", p)

		assert.Empty(t, v.RemovedEvidence)
		assert.Equal(t, activities, v.Profile.PastActivities)
		assert.Contains(t, v.Description, "No removable evidence")
		assert.NotSame(t, p, v.Profile)
	}
}

func TestRemoval_IndicatorOrder(t *testing.T) {
	g := NewGenerator(rules.MustDefault(), nil)
	// The technical sentence comes first in the text, but leadership is checked first.
	p := &types.StudentProfile{PastActivities: "I coded a game. I was captain of the chess club."}

	v := g.Removal("p1", "Alex", p)

	require.Len(t, v.RemovedEvidence, 1)
	assert.Equal(t, []types.Skill{types.SkillLeadership}, v.RemovedEvidence[0].RelatedSkills)
	assert.Equal(t, "I coded a game.", v.Profile.PastActivities)
}
