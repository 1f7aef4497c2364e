// Package variants generates controlled perturbations of a student profile:
// evidence injection, evidence removal and meaning-preserving rephrasing.
package variants

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/student-assessment/internal/rules"
	"github.com/jonathan/student-assessment/internal/types"
)

// Generator produces profile variants from a rule set and a random source.
// Given the same rules and a replayed random source, output is identical.
type Generator struct {
	rules  *rules.RuleSet
	random RandomSource
	newID  func() string
}

// NewGenerator creates a Generator. A nil random source uses DefaultRandom.
func NewGenerator(rs *rules.RuleSet, random RandomSource) *Generator {
	if random == nil {
		random = DefaultRandom()
	}
	return &Generator{rules: rs, random: random, newID: uuid.NewString}
}

// Generate produces a single variant of the given type.
func (g *Generator) Generate(vt types.VariantType, profileID, profileName string, profile *types.StudentProfile) (*types.ProfileVariant, error) {
	if profile == nil {
		return nil, &GenerationError{VariantType: string(vt), Message: "profile is nil"}
	}
	switch vt {
	case types.VariantOriginal:
		return g.Original(profileID, profileName, profile), nil
	case types.VariantInjection:
		return g.Injection(profileID, profileName, profile), nil
	case types.VariantRemoval:
		return g.Removal(profileID, profileName, profile), nil
	case types.VariantRephrased:
		return g.Rephrased(profileID, profileName, profile), nil
	default:
		return nil, &GenerationError{VariantType: string(vt), Message: "unknown variant type"}
	}
}

// GenerateAll returns the original variant followed by one variant per
// enabled flag, in the order injection, removal, rephrased.
func (g *Generator) GenerateAll(profileID, profileName string, profile *types.StudentProfile, cfg types.TestConfig) []*types.ProfileVariant {
	out := []*types.ProfileVariant{g.Original(profileID, profileName, profile)}
	if cfg.RunInjection {
		out = append(out, g.Injection(profileID, profileName, profile))
	}
	if cfg.RunRemoval {
		out = append(out, g.Removal(profileID, profileName, profile))
	}
	if cfg.RunRephrasing {
		out = append(out, g.Rephrased(profileID, profileName, profile))
	}
	return out
}

// Original wraps the profile unchanged. The variant shares the input profile.
func (g *Generator) Original(profileID, profileName string, profile *types.StudentProfile) *types.ProfileVariant {
	v := g.newVariant(types.VariantOriginal, profileID, profileName, profile)
	v.Description = "Original profile (no perturbation)"
	return v
}

func (g *Generator) newVariant(vt types.VariantType, profileID, profileName string, profile *types.StudentProfile) *types.ProfileVariant {
	return &types.ProfileVariant{
		ID:          g.newID(),
		ProfileID:   profileID,
		ProfileName: profileName,
		VariantType: vt,
		Profile:     profile,
	}
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	sentenceRe   = regexp.MustCompile(`[^.!?]+[.!?]*`)
)

// SplitSentences splits text on sentence punctuation, keeping the punctuation.
func SplitSentences(text string) []string {
	var out []string
	for _, s := range sentenceRe.FindAllString(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func collapseWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

func appendSentence(field, sentence string) string {
	if strings.TrimSpace(field) == "" {
		return sentence
	}
	return strings.TrimSpace(field) + " " + sentence
}
