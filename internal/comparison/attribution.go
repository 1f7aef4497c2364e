package comparison

import (
	"fmt"
	"math"
	"strings"

	"github.com/jonathan/student-assessment/internal/rules"
	"github.com/jonathan/student-assessment/internal/types"
)

// policyType maps a variant to the expectation policy used to judge it. The
// original row is held to the strict rephrased bar.
func policyType(vt types.VariantType) types.VariantType {
	if vt == types.VariantOriginal {
		return types.VariantRephrased
	}
	return vt
}

// CheckAttribution reports whether the skill changes between baseline and
// current are explained by the evidence the variant added or removed.
func CheckAttribution(variant *types.ProfileVariant, baseline, current types.SkillSignals, th rules.Thresholds) types.AttributionResult {
	result := types.AttributionResult{
		SkillsChanged:     []types.Skill{},
		UnexpectedChanges: []string{},
	}
	if baseline == nil || current == nil {
		result.DataMissing = true
		result.Reasoning = types.ReasonMissingData
		return result
	}

	related := make(map[types.Skill]bool)
	for _, s := range variant.RelatedSkills() {
		related[s] = true
	}
	policy := policyType(variant.VariantType)

	for _, s := range types.AllSkills {
		delta := roundDelta(confidence(current, s) - confidence(baseline, s))
		absDelta := math.Abs(delta)
		evidenceDelta := evidenceCount(current, s) - evidenceCount(baseline, s)
		if evidenceDelta < 0 {
			evidenceDelta = -evidenceDelta
		}

		changed := absDelta > th.ConfidenceDelta || evidenceDelta >= th.ChangedEvidenceDelta
		if changed {
			result.SkillsChanged = append(result.SkillsChanged, s)
		}

		switch policy {
		case types.VariantRephrased:
			if changed && (absDelta > th.ConfidenceDelta || evidenceDelta >= th.RephrasedEvidenceDelta) {
				result.UnexpectedChanges = append(result.UnexpectedChanges,
					fmt.Sprintf("%s: confidence %+.2f, evidence count changed by %d after rephrasing", s, delta, evidenceDelta))
			}
		case types.VariantInjection:
			if delta > th.ConfidenceDelta && !related[s] {
				result.UnexpectedChanges = append(result.UnexpectedChanges,
					fmt.Sprintf("%s: confidence rose by %.2f without related injected evidence", s, delta))
			}
		case types.VariantRemoval:
			if -delta > th.ConfidenceDelta && !related[s] {
				result.UnexpectedChanges = append(result.UnexpectedChanges,
					fmt.Sprintf("%s: confidence fell by %.2f without related removed evidence", s, -delta))
			}
		}
	}

	result.IsConsistent = len(result.UnexpectedChanges) == 0
	if policy == types.VariantRephrased && len(result.SkillsChanged) > th.RephrasedMaxChangedSkills {
		result.IsConsistent = false
	}
	result.Reasoning = attributionReasoning(variant.VariantType, result)
	return result
}

func attributionReasoning(vt types.VariantType, r types.AttributionResult) string {
	if len(r.SkillsChanged) == 0 {
		return fmt.Sprintf("No material skill changes for %s variant", vt)
	}
	names := make([]string, len(r.SkillsChanged))
	for i, s := range r.SkillsChanged {
		names[i] = string(s)
	}
	msg := fmt.Sprintf("%d skill(s) changed for %s variant (%s)", len(r.SkillsChanged), vt, strings.Join(names, ", "))
	if len(r.UnexpectedChanges) > 0 {
		return fmt.Sprintf("%s; %d unexpected", msg, len(r.UnexpectedChanges))
	}
	if !r.IsConsistent {
		return msg + "; too many changes for a meaning-preserving edit"
	}
	return msg + "; all explained by the evidence change"
}
