package comparison

import (
	"github.com/jonathan/student-assessment/internal/types"
)

// signalsOf builds a full bundle with the given confidences and one evidence
// phrase per skill unless overridden.
func signalsOf(conf map[types.Skill]float64) types.SkillSignals {
	out := make(types.SkillSignals, len(types.AllSkills))
	for _, s := range types.AllSkills {
		out[s] = &types.SkillSignal{
			EvidenceFound:   true,
			EvidencePhrases: []string{"robotics club"},
			Confidence:      conf[s],
		}
	}
	return out
}

func uniformSignals(c float64) types.SkillSignals {
	conf := make(map[types.Skill]float64)
	for _, s := range types.AllSkills {
		conf[s] = c
	}
	return signalsOf(conf)
}

func withConfidence(base types.SkillSignals, s types.Skill, c float64) types.SkillSignals {
	out := make(types.SkillSignals, len(base))
	for k, v := range base {
		cp := *v
		out[k] = &cp
	}
	out[s].Confidence = c
	return out
}

func withPhrases(base types.SkillSignals, s types.Skill, phrases ...string) types.SkillSignals {
	out := make(types.SkillSignals, len(base))
	for k, v := range base {
		cp := *v
		out[k] = &cp
	}
	out[s].EvidencePhrases = phrases
	return out
}

func variantOf(vt types.VariantType, evidence ...types.Skill) *types.ProfileVariant {
	v := &types.ProfileVariant{ID: "v1", ProfileID: "p1", ProfileName: "Alex", VariantType: vt, Profile: testProfile()}
	items := []types.EvidenceItem{{Type: types.EvidenceExperience, Content: "x", RelatedSkills: evidence}}
	switch vt {
	case types.VariantInjection:
		v.AddedEvidence = items
	case types.VariantRemoval:
		v.RemovedEvidence = items
	}
	return v
}

func testProfile() *types.StudentProfile {
	return &types.StudentProfile{
		Interests:        []string{"robotics", "music"},
		Goals:            []string{"build_skills"},
		PastActivities:   "I built a line-following robot for the robotics club. I tutor younger students in math.",
		PastAchievements: "Won second place at the regional science fair.",
		Challenges:       "Time management during exam season.",
	}
}
