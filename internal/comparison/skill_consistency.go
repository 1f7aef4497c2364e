// Package comparison compares a variant's pipeline output against its
// baseline along four independent axes: skill consistency, attribution,
// hallucination, and recommendation/plan stability.
package comparison

import (
	"math"

	"github.com/jonathan/student-assessment/internal/types"
)

// SkillConsistency compares confidence scores on a 0-100 scale.
//
// A nil variant (pipeline failure) scores 0 with every difference at 100. A nil
// baseline means the variant is its own baseline and scores 100.
func SkillConsistency(baseline, variant types.SkillSignals) types.SkillConsistencyResult {
	diffs := make(map[types.Skill]float64, len(types.AllSkills))

	if variant == nil {
		return noComparison()
	}
	if baseline == nil {
		for _, s := range types.AllSkills {
			diffs[s] = 0
		}
		return types.SkillConsistencyResult{SkillDifferences: diffs, AverageDifference: 0, ConsistencyPercentage: 100}
	}

	var total float64
	for _, s := range types.AllSkills {
		d := round1(math.Abs(confidence(variant, s)*100 - confidence(baseline, s)*100))
		diffs[s] = d
		total += d
	}
	avg := round1(total / float64(len(types.AllSkills)))
	pct := max(0, int(math.Round(100-avg)))

	return types.SkillConsistencyResult{
		SkillDifferences:      diffs,
		AverageDifference:     avg,
		ConsistencyPercentage: min(pct, 100),
	}
}

// noComparison is the result for a pair that has nothing to compare: every
// difference at 100 and a consistency of 0.
func noComparison() types.SkillConsistencyResult {
	diffs := make(map[types.Skill]float64, len(types.AllSkills))
	for _, s := range types.AllSkills {
		diffs[s] = 100
	}
	return types.SkillConsistencyResult{SkillDifferences: diffs, AverageDifference: 100, ConsistencyPercentage: 0}
}

// confidence returns 0 for a skill the bundle does not mention.
func confidence(signals types.SkillSignals, s types.Skill) float64 {
	if sig := signals[s]; sig != nil {
		return sig.Confidence
	}
	return 0
}

func evidenceCount(signals types.SkillSignals, s types.Skill) int {
	if sig := signals[s]; sig != nil {
		return len(sig.EvidencePhrases)
	}
	return 0
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// roundDelta strips float noise so 0.65-0.50 compares equal to 0.15.
func roundDelta(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
