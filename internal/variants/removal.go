package variants

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/student-assessment/internal/types"
)

// Removal deletes exactly one piece of evidence, preferring a skill-indicating
// sentence in past activities, then an achievement sentence, then the last
// sentence of past activities when there are at least two.
func (g *Generator) Removal(profileID, profileName string, profile *types.StudentProfile) *types.ProfileVariant {
	p := profile.Clone()
	v := g.newVariant(types.VariantRemoval, profileID, profileName, p)
	rr := g.rules.Removal

	for _, ind := range rr.Indicators {
		if sentence := findSentence(ind.Sentence, p.PastActivities); sentence != "" {
			p.PastActivities = cutSentence(p.PastActivities, sentence)
			v.RemovedEvidence = []types.EvidenceItem{{
				Type:          types.EvidenceExperience,
				Content:       sentence,
				RelatedSkills: []types.Skill{ind.Skill},
			}}
			v.Description = fmt.Sprintf("Removed %s evidence from past activities: %q", ind.Skill, sentence)
			return v
		}
	}

	if rr.AchievementSentence != nil {
		if sentence := findSentence(rr.AchievementSentence, p.PastAchievements); sentence != "" {
			skills := g.achievementSkills(sentence)
			p.PastAchievements = cutSentence(p.PastAchievements, sentence)
			v.RemovedEvidence = []types.EvidenceItem{{
				Type:          types.EvidenceAchievement,
				Content:       sentence,
				RelatedSkills: skills,
			}}
			v.Description = fmt.Sprintf("Removed achievement from past achievements: %q", sentence)
			return v
		}
	}

	sentences := SplitSentences(p.PastActivities)
	if len(sentences) < 2 {
		v.Description = "No removable evidence found; profile left unchanged"
		return v
	}
	last := sentences[len(sentences)-1]
	p.PastActivities = strings.Join(sentences[:len(sentences)-1], " ")
	v.RemovedEvidence = []types.EvidenceItem{{
		Type:          types.EvidenceExperience,
		Content:       last,
		RelatedSkills: []types.Skill{rr.DefaultSkill},
	}}
	v.Description = fmt.Sprintf("Removed last sentence of past activities: %q", last)
	return v
}

// achievementSkills tags an achievement sentence via the keyword buckets.
func (g *Generator) achievementSkills(sentence string) []types.Skill {
	seen := make(map[types.Skill]bool)
	var skills []types.Skill
	for _, b := range g.rules.Removal.AchievementBuckets {
		if !b.Pattern.MatchString(sentence) {
			continue
		}
		for _, s := range b.Skills {
			if !seen[s] {
				seen[s] = true
				skills = append(skills, s)
			}
		}
	}
	if len(skills) == 0 {
		skills = []types.Skill{g.rules.Removal.DefaultSkill}
	}
	return skills
}

func findSentence(re *regexp.Regexp, text string) string {
	if re == nil || text == "" {
		return ""
	}
	return strings.TrimSpace(re.FindString(text))
}

func cutSentence(text, sentence string) string {
	return collapseWhitespace(strings.Replace(text, sentence, "", 1))
}
