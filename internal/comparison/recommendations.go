package comparison

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jonathan/student-assessment/internal/rules"
	"github.com/jonathan/student-assessment/internal/types"
)

// Themes returns the set of skills and categories a recommendation set touches.
func Themes(set *types.RecommendationSet) map[string]bool {
	themes := make(map[string]bool)
	if set == nil {
		return themes
	}
	for _, rec := range set.Recommendations {
		for _, s := range rec.SkillAlignment {
			themes[string(s)] = true
		}
		if c := strings.ToLower(strings.TrimSpace(rec.Category)); c != "" {
			themes[c] = true
		}
	}
	return themes
}

func difference(a, b map[string]bool) []string {
	out := []string{}
	for k := range a {
		if !b[k] {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out
}

// CheckRecommendationStability compares recommendation themes between
// baseline and current under the policy for the variant type.
func CheckRecommendationStability(baseline, current *types.RecommendationSet, vt types.VariantType, th rules.Thresholds) types.RecommendationStabilityResult {
	result := types.RecommendationStabilityResult{CategoriesChanged: []string{}}
	if baseline == nil || current == nil {
		result.DataMissing = true
		result.Reasoning = types.ReasonMissingData
		return result
	}

	before, after := Themes(baseline), Themes(current)
	result.AddedThemes = difference(after, before)
	result.RemovedThemes = difference(before, after)
	result.CategoriesChanged = append(append(result.CategoriesChanged, result.AddedThemes...), result.RemovedThemes...)
	slices.Sort(result.CategoriesChanged)

	countDelta := len(current.Recommendations) - len(baseline.Recommendations)
	if countDelta < 0 {
		countDelta = -countDelta
	}
	result.SignificantRankingChanges = countDelta >= th.RankingChange

	added, removed := len(result.AddedThemes), len(result.RemovedThemes)
	switch policyType(vt) {
	case types.VariantInjection:
		result.IsStable = added <= th.InjectionMaxAddedThemes && removed == 0
	case types.VariantRemoval:
		result.IsStable = added == 0 && removed <= th.RemovalMaxRemovedThemes
	default:
		result.IsStable = added+removed <= th.RephrasedMaxThemeChanges && !result.SignificantRankingChanges
	}

	result.Reasoning = fmt.Sprintf("%d theme(s) added, %d removed, recommendation count changed by %d for %s variant",
		added, removed, countDelta, vt)
	if !result.IsStable {
		result.Reasoning += "; outside expected range"
	}
	return result
}
