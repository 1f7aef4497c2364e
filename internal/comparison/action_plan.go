package comparison

import (
	"fmt"

	"github.com/jonathan/student-assessment/internal/rules"
	"github.com/jonathan/student-assessment/internal/types"
)

// CheckActionPlan judges whether the change in the 30-day plan is
// proportionate to the evidence change the variant made.
func CheckActionPlan(variant *types.ProfileVariant, baseline, current *types.ActionPlan, th rules.Thresholds) types.ActionPlanSensitivityResult {
	result := types.ActionPlanSensitivityResult{UnrelatedStepsAdded: []string{}}
	if baseline == nil || current == nil {
		result.DataMissing = true
		result.Reasoning = types.ReasonMissingData
		return result
	}

	taskDelta := len(current.Tasks) - len(baseline.Tasks)

	baseSkills := make(map[types.Skill]bool)
	for _, t := range baseline.Tasks {
		baseSkills[t.RelatedSkill] = true
	}
	var newSkills []types.Skill
	isNew := make(map[types.Skill]bool)
	for _, t := range current.Tasks {
		if t.RelatedSkill != "" && !baseSkills[t.RelatedSkill] && !isNew[t.RelatedSkill] {
			isNew[t.RelatedSkill] = true
			newSkills = append(newSkills, t.RelatedSkill)
		}
	}

	related := make(map[types.Skill]bool)
	for _, s := range variant.RelatedSkills() {
		related[s] = true
	}
	policy := policyType(variant.VariantType)

	// Tasks in a new skill area that the evidence change does not explain.
	explained := func(s types.Skill) bool {
		return policy == types.VariantInjection && related[s]
	}
	for _, t := range current.Tasks {
		if isNew[t.RelatedSkill] && !explained(t.RelatedSkill) {
			result.UnrelatedStepsAdded = append(result.UnrelatedStepsAdded, t.Title)
		}
	}
	unexplained := 0
	for _, s := range newSkills {
		if !explained(s) {
			unexplained++
		}
	}

	switch policy {
	case types.VariantInjection:
		result.IsAppropriate = unexplained == 0 && taskDelta >= -th.PlanTaskDelta
	case types.VariantRemoval:
		result.IsAppropriate = taskDelta <= th.PlanTaskDelta && len(newSkills) == 0
	default:
		result.IsAppropriate = abs(taskDelta) <= th.PlanTaskDelta && len(newSkills) == 0
	}

	switch {
	case taskDelta == 0 && len(newSkills) == 0:
		result.PlanChangesProportion = types.ProportionUnchanged
	case result.IsAppropriate:
		result.PlanChangesProportion = types.ProportionProportional
	default:
		result.PlanChangesProportion = types.ProportionDisproportional
	}

	result.Reasoning = fmt.Sprintf("Task count changed by %+d with %d new skill area(s) for %s variant",
		taskDelta, len(newSkills), variant.VariantType)
	if unexplained > 0 {
		result.Reasoning += fmt.Sprintf("; %d not explained by the evidence change", unexplained)
	}
	return result
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
