package variants

import (
	"fmt"
	"strings"

	"github.com/jonathan/student-assessment/internal/types"
)

// Injection appends one or two evidence templates for skills relevant to the
// student's goals. Each template lands in the field its type belongs to.
func (g *Generator) Injection(profileID, profileName string, profile *types.StudentProfile) *types.ProfileVariant {
	p := profile.Clone()
	v := g.newVariant(types.VariantInjection, profileID, profileName, p)

	relevant := g.rules.SkillsForGoals(profile.Goals)
	count := min(1+g.random.IntN(2), len(relevant))

	var names []string
	for _, skill := range g.pickDistinct(relevant, count) {
		templates := g.rules.EvidenceTemplates[skill]
		if len(templates) == 0 {
			continue
		}
		tmpl := templates[g.random.IntN(len(templates))]
		switch tmpl.Type {
		case types.EvidenceExperience:
			p.PastActivities = appendSentence(p.PastActivities, tmpl.Text)
		case types.EvidenceAchievement:
			p.PastAchievements = appendSentence(p.PastAchievements, tmpl.Text)
		case types.EvidenceGoal:
			p.GoalsFreeText = appendSentence(p.GoalsFreeText, tmpl.Text)
		}
		v.AddedEvidence = append(v.AddedEvidence, types.EvidenceItem{
			Type:          tmpl.Type,
			Content:       tmpl.Text,
			RelatedSkills: []types.Skill{skill},
		})
		names = append(names, string(skill))
	}

	if len(v.AddedEvidence) == 0 {
		v.Description = "No evidence templates available for the student's goals"
		return v
	}
	v.Description = fmt.Sprintf("Injected %d evidence item(s) for: %s", len(v.AddedEvidence), strings.Join(names, ", "))
	return v
}

// pickDistinct draws n distinct skills from pool without replacement.
func (g *Generator) pickDistinct(pool []types.Skill, n int) []types.Skill {
	remaining := append([]types.Skill(nil), pool...)
	picked := make([]types.Skill, 0, n)
	for i := 0; i < n && len(remaining) > 0; i++ {
		j := g.random.IntN(len(remaining))
		picked = append(picked, remaining[j])
		remaining = append(remaining[:j], remaining[j+1:]...)
	}
	return picked
}
