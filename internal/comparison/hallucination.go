package comparison

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/student-assessment/internal/rules"
	"github.com/jonathan/student-assessment/internal/types"
)

// claimPatterns capture the claim introduced by phrases such as
// "the student has ..." inside recommendation reasoning.
var claimPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bstudent\s+(?:has|mentioned|demonstrated)\s+([^.;!?]+)`),
	regexp.MustCompile(`(?i)\bbased on (?:the )?student'?s\s+([^.;!?]+)`),
	regexp.MustCompile(`(?i)\bgiven (?:the student'?s|their)\s+([^.;!?]+)`),
}

// BuildCorpus concatenates every free-text and categorical profile field in lowercase.
func BuildCorpus(p *types.StudentProfile) string {
	return strings.ToLower(strings.Join(p.TextFields(), " "))
}

// significantWords splits text into lowercase words longer than minLen.
func significantWords(text string, minLen int) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	words := fields[:0]
	for _, w := range fields {
		if utf8.RuneCountInString(w) > minLen {
			words = append(words, w)
		}
	}
	return words
}

// wordOverlap is the share of words found in the corpus.
func wordOverlap(words []string, corpus string) float64 {
	if len(words) == 0 {
		return 1
	}
	found := 0
	for _, w := range words {
		if strings.Contains(corpus, w) {
			found++
		}
	}
	return float64(found) / float64(len(words))
}

// IsTraceable reports whether phrase can be traced to the lowercase corpus,
// either as a direct substring or by word overlap. Phrases with no word longer
// than the minimum length are too short to judge and count as traceable.
func IsTraceable(phrase, corpus string, th rules.Thresholds) bool {
	p := strings.ToLower(strings.TrimSpace(phrase))
	if p == "" || strings.Contains(corpus, p) {
		return true
	}
	return wordOverlap(significantWords(p, th.MinWordLength), corpus) >= th.TraceWordOverlap
}

// ExtractClaims returns the claims introduced in a piece of reasoning text.
func ExtractClaims(reasoning string) []string {
	var claims []string
	for _, re := range claimPatterns {
		for _, m := range re.FindAllStringSubmatch(reasoning, -1) {
			if c := strings.TrimSpace(m[1]); c != "" {
				claims = append(claims, c)
			}
		}
	}
	return claims
}

// DetectHallucinations looks for pipeline output that cannot be traced to the profile.
func DetectHallucinations(profile *types.StudentProfile, results *types.PipelineResults, th rules.Thresholds) types.HallucinationResult {
	result := types.HallucinationResult{
		UntracedSkills:          []string{},
		UntracedRecommendations: []string{},
		UntracedPlanSteps:       []string{},
	}
	if profile == nil || results == nil ||
		(results.IntakeAnalysis == nil && results.Recommendations == nil && results.ActionPlan == nil) {
		result.DataMissing = true
		result.Reasoning = types.ReasonMissingData
		return result
	}
	corpus := BuildCorpus(profile)

	signals := results.Signals()
	for _, s := range types.AllSkills {
		sig := signals[s]
		if sig == nil {
			continue
		}
		for _, phrase := range sig.EvidencePhrases {
			if !IsTraceable(phrase, corpus, th) {
				result.UntracedSkills = append(result.UntracedSkills, fmt.Sprintf("%s: %q", s, phrase))
			}
		}
	}

	var known []string
	if recs := results.Recs(); recs != nil {
		for _, rec := range recs.Recommendations {
			known = append(known, rec.Title)
			for _, claim := range ExtractClaims(rec.Reasoning) {
				words := significantWords(claim, th.MinWordLength)
				if len(words) >= th.ClaimMinWords && wordOverlap(words, corpus) < th.ClaimWordOverlap {
					result.UntracedRecommendations = append(result.UntracedRecommendations, fmt.Sprintf("%s: %q", rec.Title, claim))
				}
			}
		}
	}
	if results.SkillGapAnalysis != nil {
		for _, gap := range results.SkillGapAnalysis.Gaps {
			known = append(known, gap.Name)
		}
	}

	if plan := results.Plan(); plan != nil {
		for _, task := range plan.Tasks {
			src := strings.TrimSpace(task.EvidenceSource)
			if src == "" || matchesAny(src, known) || IsTraceable(src, corpus, th) {
				continue
			}
			result.UntracedPlanSteps = append(result.UntracedPlanSteps, fmt.Sprintf("%s: %q", task.Title, src))
		}
	}

	result.HasHallucinations = len(result.UntracedSkills) > 0 ||
		len(result.UntracedRecommendations) > th.ToleratedUntracedRecommendations ||
		len(result.UntracedPlanSteps) > 0
	result.Reasoning = hallucinationReasoning(result)
	return result
}

// matchesAny reports whether source names one of the known titles, ignoring
// case. The source must contain the whole title; a fragment of a title does
// not count.
func matchesAny(source string, known []string) bool {
	src := strings.ToLower(source)
	for _, k := range known {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" && strings.Contains(src, k) {
			return true
		}
	}
	return false
}

func hallucinationReasoning(r types.HallucinationResult) string {
	if !r.HasHallucinations && len(r.UntracedRecommendations) == 0 {
		return "All evidence, claims and plan sources trace back to the profile"
	}
	msg := fmt.Sprintf("Untraced: %d skill evidence phrase(s), %d recommendation claim(s), %d plan step(s)",
		len(r.UntracedSkills), len(r.UntracedRecommendations), len(r.UntracedPlanSteps))
	if !r.HasHallucinations {
		return msg + "; within tolerance"
	}
	return msg
}
