package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/student-assessment/internal/metrics"
	"github.com/jonathan/student-assessment/internal/observability"
	"github.com/jonathan/student-assessment/internal/schemas"
	"github.com/jonathan/student-assessment/internal/types"
)

var (
	metricsReport string
	metricsOut    string
)

var metricsCommand = &cobra.Command{
	Use:   "metrics",
	Short: "Recompute metrics and the consistency table of a saved report",
	Long: `Reads a report written by perturb, recomputes the summary, metrics and skill
consistency table from its result rows and prints them. With --out the refreshed report
is written as JSON.`,
	RunE: runMetrics,
}

func init() {
	metricsCommand.Flags().StringVarP(&metricsReport, "report", "r", "", "Path to a saved report JSON")
	metricsCommand.Flags().StringVarP(&metricsOut, "out", "o", "", "Write the refreshed report to this file")
	_ = metricsCommand.MarkFlagRequired("report")
	rootCmd.AddCommand(metricsCommand)
}

func runMetrics(_ *cobra.Command, _ []string) error {
	report, err := refreshReport(metricsReport)
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintMetrics(report.Metrics, report.Summary)
	printer.PrintSkillConsistencyTable(report.SkillConsistencyTable)
	printer.PrintFailures(report.Results)

	if metricsOut != "" {
		return writeJSON(metricsOut, report)
	}
	return nil
}

// refreshReport loads a saved report and recomputes every aggregate from its
// rows.
func refreshReport(path string) (*types.PerturbationTestResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report %s: %w", path, err)
	}
	if err := schemas.Validate(schemas.PerturbationReport, data); err != nil {
		return nil, err
	}
	var report types.PerturbationTestResult
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse report JSON: %w", err)
	}
	metrics.Refresh(&report)
	return &report, nil
}
