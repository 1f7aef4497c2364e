// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/student-assessment/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func verdict(ok, missing bool) string {
	switch {
	case missing:
		return "– n/a"
	case ok:
		return "✓ pass"
	default:
		return "✗ fail"
	}
}

// PrintVariant outputs a generated variant and the evidence it changed.
func (p *Printer) PrintVariant(v *types.ProfileVariant) {
	if v == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Profile:  %s (%s)\n", v.ProfileName, v.ProfileID))
	sb.WriteString(fmt.Sprintf("Type:     %s\n", v.VariantType))
	sb.WriteString(fmt.Sprintf("Change:   %s\n", v.Description))

	writeEvidence := func(label string, items []types.EvidenceItem) {
		if len(items) == 0 {
			return
		}
		sb.WriteString(fmt.Sprintf("\n%s:\n", label))
		count := min(len(items), maxItemsToShow)
		for i := 0; i < count; i++ {
			item := items[i]
			sb.WriteString(fmt.Sprintf("  • [%s] %s\n", item.Type, truncate(item.Content, 45)))
			if len(item.RelatedSkills) > 0 {
				sb.WriteString(fmt.Sprintf("    skills: %s\n", joinSkills(item.RelatedSkills)))
			}
		}
		if len(items) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
		}
	}
	writeEvidence("Added evidence", v.AddedEvidence)
	writeEvidence("Removed evidence", v.RemovedEvidence)

	if len(v.RephrasedFields) > 0 {
		sb.WriteString(fmt.Sprintf("\nRephrased: %s\n", strings.Join(v.RephrasedFields, ", ")))
	}

	p.printBox("PROFILE VARIANT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintComparison outputs the four verdicts of one comparison row.
func (p *Printer) PrintComparison(r *types.VariantComparisonResult) {
	if r == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Profile:      %s\n", r.ProfileName))
	sb.WriteString(fmt.Sprintf("Variant:      %s\n", r.VariantType))
	sb.WriteString(fmt.Sprintf("Consistency:  %d%% (avg diff %.1f)\n", r.SkillConsistency.ConsistencyPercentage, r.SkillConsistency.AverageDifference))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Attribution:      %s\n", verdict(r.Attribution.IsConsistent, r.Attribution.DataMissing)))
	sb.WriteString(fmt.Sprintf("Hallucinations:   %s\n", verdict(!r.Hallucination.HasHallucinations, r.Hallucination.DataMissing)))
	sb.WriteString(fmt.Sprintf("Recommendations:  %s\n", verdict(r.RecommendationStability.IsStable, r.RecommendationStability.DataMissing)))
	sb.WriteString(fmt.Sprintf("Action plan:      %s", verdict(r.ActionPlanSensitivity.IsAppropriate, r.ActionPlanSensitivity.DataMissing)))
	if prop := r.ActionPlanSensitivity.PlanChangesProportion; prop != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", prop))
	}
	sb.WriteString("\n")

	if len(r.Attribution.UnexpectedChanges) > 0 {
		sb.WriteString("\nUnexpected changes:\n")
		count := min(len(r.Attribution.UnexpectedChanges), 3)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  ⚠ %s\n", r.Attribution.UnexpectedChanges[i]))
		}
		if len(r.Attribution.UnexpectedChanges) > 3 {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(r.Attribution.UnexpectedChanges)-3))
		}
	}

	if len(r.Errors) > 0 {
		sb.WriteString("\nErrors:\n")
		for _, e := range r.Errors {
			sb.WriteString(fmt.Sprintf("  ✗ %s\n", e))
		}
	}

	p.printBox("VARIANT COMPARISON", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMetrics outputs the aggregate robustness rates and run counts.
func (p *Printer) PrintMetrics(m types.PerturbationMetrics, s types.PerturbationSummary) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Runs:  %d total, %d ok, %d failed\n\n", s.TotalRuns, s.SuccessfulRuns, s.FailedRuns))
	sb.WriteString(fmt.Sprintf("Attribution consistency:    %3d%%\n", m.AttributionConsistencyRate))
	sb.WriteString(fmt.Sprintf("Hallucination free:         %3d%%\n", m.HallucinationFreeRate))
	sb.WriteString(fmt.Sprintf("Recommendation stability:   %3d%%\n", m.RecommendationStabilityRate))
	sb.WriteString(fmt.Sprintf("Action plan appropriate:    %3d%%\n", m.ActionPlanAppropriatenessRate))
	sb.WriteString(fmt.Sprintf("Average skill consistency:  %3d%%", m.AverageSkillConsistency))

	p.printBox("ROBUSTNESS METRICS", sb.String())
}

// PrintSkillConsistencyTable outputs the per-variant consistency table.
func (p *Printer) PrintSkillConsistencyTable(rows []types.SkillConsistencyRow) {
	if len(rows) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-18s %5s %6s\n", "Variant", "Runs", "Avg"))
	for i, row := range rows {
		sb.WriteString(fmt.Sprintf("%-18s %5d %5d%%\n", row.Label, row.Runs, row.AverageConsistency))
		sb.WriteString(fmt.Sprintf("  %s", row.ExpectedBehavior))
		if i < len(rows)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("SKILL CONSISTENCY BY VARIANT", sb.String())
}

// PrintFailures outputs the per-run errors of a batch.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintFailures(results []types.VariantComparisonResult) {
	var sb strings.Builder
	failed := 0
	for _, r := range results {
		if r.Succeeded() {
			continue
		}
		failed++
		if failed > maxItemsToShow {
			continue
		}
		sb.WriteString(fmt.Sprintf("✗ %s / %s\n", r.ProfileName, r.VariantType))
		for _, e := range r.Errors {
			sb.WriteString(fmt.Sprintf("  %s\n", e))
		}
	}

	if failed == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ ALL RUNS SUCCEEDED")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}
	if failed > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("... and %d more failed runs\n", failed-maxItemsToShow))
	}

	p.printBox(fmt.Sprintf("FAILED RUNS (%d)", failed), strings.TrimSuffix(sb.String(), "\n"))
}

func joinSkills(skills []types.Skill) string {
	names := make([]string, len(skills))
	for i, s := range skills {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
