package comparison

import (
	"slices"

	"github.com/jonathan/student-assessment/internal/rules"
	"github.com/jonathan/student-assessment/internal/types"
)

// ErrNoBaseline is the row error for a variant whose profile's original run
// produced no skill signals.
const ErrNoBaseline = "baseline run failed; no comparison possible"

// Comparator runs the four comparison axes for one (profile, variant) pair.
type Comparator struct {
	thresholds rules.Thresholds
}

// NewComparator creates a Comparator using the given thresholds.
func NewComparator(th rules.Thresholds) *Comparator {
	return &Comparator{thresholds: th}
}

// Thresholds returns the thresholds the comparator applies.
func (c *Comparator) Thresholds() rules.Thresholds {
	return c.thresholds
}

// Compare builds the comparison row for variant. baseline is the pipeline
// output of the profile's original variant and is ignored for the original
// row itself, which is compared against its own output. A variant without
// baseline signals scores 0 and, unless it already failed, carries
// ErrNoBaseline. runErrors carries invocation failures; stage errors in
// current are appended to them.
func (c *Comparator) Compare(variant *types.ProfileVariant, baseline, current *types.PipelineResults, runErrors []string) *types.VariantComparisonResult {
	errs := slices.Clone(runErrors)
	if current != nil {
		errs = append(errs, current.Errors...)
	}
	if len(errs) == 0 && current.Signals() == nil {
		errs = append(errs, "pipeline returned no intake analysis")
	}

	var consistency types.SkillConsistencyResult
	if variant.VariantType == types.VariantOriginal {
		consistency = SkillConsistency(nil, current.Signals())
		baseline = current
	} else if baseline.Signals() == nil {
		// Without a baseline the variant cannot be scored; it must not
		// inherit the original's own 100.
		consistency = noComparison()
		if len(errs) == 0 {
			errs = append(errs, ErrNoBaseline)
		}
	} else {
		consistency = SkillConsistency(baseline.Signals(), current.Signals())
	}

	return &types.VariantComparisonResult{
		ProfileID:               variant.ProfileID,
		ProfileName:             variant.ProfileName,
		VariantID:               variant.ID,
		VariantType:             variant.VariantType,
		VariantDescription:      variant.Description,
		SkillConsistency:        consistency,
		Attribution:             CheckAttribution(variant, baseline.Signals(), current.Signals(), c.thresholds),
		Hallucination:           DetectHallucinations(variant.Profile, current, c.thresholds),
		RecommendationStability: CheckRecommendationStability(baseline.Recs(), current.Recs(), variant.VariantType, c.thresholds),
		ActionPlanSensitivity:   CheckActionPlan(variant, baseline.Plan(), current.Plan(), c.thresholds),
		Errors:                  errs,
	}
}
