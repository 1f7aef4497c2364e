// Package metrics reduces perturbation comparison rows into robustness rates,
// summary counts and the skill consistency reporting table. Every function
// recomputes from the full result list; nothing is cached.
package metrics

import (
	"math"
	"time"

	"github.com/jonathan/student-assessment/internal/types"
)

// tableOrder is the fixed row order of the skill consistency table.
var tableOrder = []types.VariantType{
	types.VariantOriginal,
	types.VariantRephrased,
	types.VariantRemoval,
	types.VariantInjection,
}

var tableLabels = map[types.VariantType]struct{ label, expected string }{
	types.VariantOriginal:  {"Original (baseline)", "Reference run; always 100%"},
	types.VariantRephrased: {"Rephrased", "High consistency; wording changes only"},
	types.VariantRemoval:   {"Evidence removed", "Related skills may drop, others stay stable"},
	types.VariantInjection: {"Evidence injected", "Related skills may rise, others stay stable"},
}

// Calculate computes the four pass rates and the skill consistency averages.
// Rows whose comparison lacked data are left out of that axis's denominator.
func Calculate(results []types.VariantComparisonResult) types.PerturbationMetrics {
	var attr, hall, recs, plan tally
	for _, r := range results {
		attr.add(r.Attribution.DataMissing, r.Attribution.IsConsistent)
		hall.add(r.Hallucination.DataMissing, !r.Hallucination.HasHallucinations)
		recs.add(r.RecommendationStability.DataMissing, r.RecommendationStability.IsStable)
		plan.add(r.ActionPlanSensitivity.DataMissing, r.ActionPlanSensitivity.IsAppropriate)
	}

	overall, _ := averageConsistency(results, "")

	return types.PerturbationMetrics{
		AttributionConsistencyRate:    attr.rate(),
		HallucinationFreeRate:         hall.rate(),
		RecommendationStabilityRate:   recs.rate(),
		ActionPlanAppropriatenessRate: plan.rate(),
		AverageSkillConsistency:       overall,
		SkillConsistencyByVariant:     consistencyByVariant(results),
	}
}

// Summarize counts runs by outcome and variant type.
func Summarize(results []types.VariantComparisonResult) types.PerturbationSummary {
	s := types.PerturbationSummary{
		TotalRuns:     len(results),
		RunsByVariant: make(map[types.VariantType]int, len(tableOrder)),
	}
	for _, vt := range tableOrder {
		s.RunsByVariant[vt] = 0
	}
	for i := range results {
		r := &results[i]
		s.RunsByVariant[r.VariantType]++
		if r.Succeeded() {
			s.SuccessfulRuns++
		} else {
			s.FailedRuns++
		}
		if !r.Attribution.DataMissing && r.Attribution.IsConsistent {
			s.AttributionConsistent++
		}
		if !r.Hallucination.DataMissing && !r.Hallucination.HasHallucinations {
			s.HallucinationFree++
		}
		if !r.RecommendationStability.DataMissing && r.RecommendationStability.IsStable {
			s.RecommendationsStable++
		}
		if !r.ActionPlanSensitivity.DataMissing && r.ActionPlanSensitivity.IsAppropriate {
			s.PlansAppropriate++
		}
	}
	return s
}

// SkillConsistencyTable returns the fixed four-row reporting table.
func SkillConsistencyTable(results []types.VariantComparisonResult) []types.SkillConsistencyRow {
	byVariant := consistencyByVariant(results)
	rows := make([]types.SkillConsistencyRow, 0, len(tableOrder))
	for _, vt := range tableOrder {
		runs := 0
		for _, r := range results {
			if r.VariantType == vt {
				runs++
			}
		}
		rows = append(rows, types.SkillConsistencyRow{
			VariantType:        vt,
			Label:              tableLabels[vt].label,
			Runs:               runs,
			AverageConsistency: byVariant[vt],
			ExpectedBehavior:   tableLabels[vt].expected,
		})
	}
	return rows
}

// Report assembles the JSON envelope for a finished batch.
func Report(results []types.VariantComparisonResult, profilesTested int, timestamp time.Time, elapsed time.Duration) *types.PerturbationTestResult {
	if results == nil {
		results = []types.VariantComparisonResult{}
	}
	return &types.PerturbationTestResult{
		ProfilesTested:        profilesTested,
		TotalRuns:             len(results),
		Results:               results,
		Summary:               Summarize(results),
		Metrics:               Calculate(results),
		Timestamp:             timestamp,
		ExecutionTimeTotalMS:  elapsed.Milliseconds(),
		SkillConsistencyTable: SkillConsistencyTable(results),
	}
}

// Refresh recomputes every aggregate of report from its result rows.
func Refresh(report *types.PerturbationTestResult) {
	report.TotalRuns = len(report.Results)
	report.Summary = Summarize(report.Results)
	report.Metrics = Calculate(report.Results)
	report.SkillConsistencyTable = SkillConsistencyTable(report.Results)
}

type tally struct {
	pass, eligible int
}

func (t *tally) add(missing, pass bool) {
	if missing {
		return
	}
	t.eligible++
	if pass {
		t.pass++
	}
}

func (t tally) rate() int {
	if t.eligible == 0 {
		return 0
	}
	return int(math.Round(float64(t.pass) * 100 / float64(t.eligible)))
}

// averageConsistency averages rows of type vt, or all rows when vt is empty.
func averageConsistency(results []types.VariantComparisonResult, vt types.VariantType) (int, bool) {
	sum, n := 0, 0
	for _, r := range results {
		if vt != "" && r.VariantType != vt {
			continue
		}
		sum += r.SkillConsistency.ConsistencyPercentage
		n++
	}
	if n == 0 {
		return 0, false
	}
	return int(math.Round(float64(sum) / float64(n))), true
}

// consistencyByVariant defaults an absent original to 100 and other types to 0.
func consistencyByVariant(results []types.VariantComparisonResult) map[types.VariantType]int {
	out := make(map[types.VariantType]int, len(tableOrder))
	for _, vt := range tableOrder {
		avg, ok := averageConsistency(results, vt)
		if !ok && vt == types.VariantOriginal {
			avg = 100
		}
		out[vt] = avg
	}
	return out
}
