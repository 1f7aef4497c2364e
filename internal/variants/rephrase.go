package variants

import (
	"fmt"
	"strings"

	"github.com/jonathan/student-assessment/internal/types"
)

// Rephrased rewrites free-text fields with meaning-preserving substitutions.
// A field is reported only when its text actually changed.
func (g *Generator) Rephrased(profileID, profileName string, profile *types.StudentProfile) *types.ProfileVariant {
	p := profile.Clone()
	v := g.newVariant(types.VariantRephrased, profileID, profileName, p)

	fields := []struct {
		name  string
		value *string
	}{
		{"past_activities", &p.PastActivities},
		{"past_achievements", &p.PastAchievements},
		{"interests_free_text", &p.InterestsFreeText},
		{"goals_free_text", &p.GoalsFreeText},
	}
	for _, f := range fields {
		text := *f.value
		if text == "" {
			continue
		}
		for _, rule := range g.rules.Rephrasings {
			if !rule.Pattern.MatchString(text) {
				continue
			}
			replacement := rule.Replacements[g.random.IntN(len(rule.Replacements))]
			text = rule.Pattern.ReplaceAllLiteralString(text, replacement)
		}
		if text != *f.value {
			*f.value = text
			v.RephrasedFields = append(v.RephrasedFields, f.name)
		}
	}

	if len(v.RephrasedFields) == 0 {
		v.Description = "No rephrasing patterns matched; profile left unchanged"
		return v
	}
	v.Description = fmt.Sprintf("Rephrased %s", strings.Join(v.RephrasedFields, ", "))
	return v
}
