package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/student-assessment/internal/config"
	"github.com/jonathan/student-assessment/internal/db"
	"github.com/jonathan/student-assessment/internal/observability"
	"github.com/jonathan/student-assessment/internal/perturbation"
	"github.com/jonathan/student-assessment/internal/types"
)

var perturbFlags sharedFlags

var perturbCommand = &cobra.Command{
	Use:   "perturb",
	Short: "Run a perturbation batch and write the robustness report",
	Long: `Generates variants for every selected profile, runs the analysis pipeline once per
(profile, variant) pair, compares each variant against its profile's original run and writes
the JSON report.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runPerturb,
}

func init() {
	bindInputFlags(perturbCommand, &perturbFlags)
	bindPipelineFlags(perturbCommand, &perturbFlags)
	rootCmd.AddCommand(perturbCommand)
}

func runPerturb(cmd *cobra.Command, _ []string) error {
	cfg, err := perturbFlags.resolve(cmd)
	if err != nil {
		return err
	}
	input, err := loadInput(cfg.Input)
	if err != nil {
		return err
	}
	perturbFlags.applyInputOverrides(cmd, input)

	rs, err := loadRuleSet(cfg)
	if err != nil {
		return err
	}
	generator, _ := newGenerator(rs, cfg.Seed)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	invoker, cleanup, err := buildInvoker(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer cleanup()

	var printer *observability.Printer
	if cfg.Verbose {
		printer = observability.NewPrinter(progressOut(cfg.Output))
	}

	runner := &perturbation.Runner{
		Invoker:     invoker,
		Generator:   generator,
		Comparator:  newComparator(rs),
		Concurrency: cfg.Concurrency,
		Logger:      logger,
		OnProgress: func(ev perturbation.ProgressEvent) {
			logger.Info(ev.Message, zap.Int("completed", ev.Completed), zap.Int("total", ev.Total))
			if printer != nil {
				printer.PrintComparison(ev.Result)
			}
		},
	}

	report, runErr := runner.Run(ctx, input)
	if report == nil {
		return runErr
	}

	if printer != nil {
		printer.PrintMetrics(report.Metrics, report.Summary)
		printer.PrintSkillConsistencyTable(report.SkillConsistencyTable)
		printer.PrintFailures(report.Results)
	}

	if err := writeJSON(cfg.Output, report); err != nil {
		return err
	}
	if cfg.Output != "" {
		logger.Info("report written", zap.String("path", cfg.Output))
	}

	if cfg.DatabaseURL != "" {
		archiveReport(cfg, input.Config, report, runErr)
	}

	return runErr
}

// archiveReport stores the report. Failures are logged; the report is
// already written.
func archiveReport(cfg config.Config, batch types.TestConfig, report *types.PerturbationTestResult, runErr error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Warn("report not archived", zap.Error(err))
		return
	}
	defer database.Close()

	if err := database.EnsureSchema(ctx); err != nil {
		logger.Warn("report not archived", zap.Error(err))
		return
	}
	runID, err := database.ArchiveReport(ctx, batch, report, db.StatusFor(runErr))
	if err != nil {
		logger.Warn("report not archived", zap.Error(err))
		return
	}
	logger.Info("report archived", zap.String("run_id", runID.String()))
	_, _ = fmt.Fprintf(os.Stderr, "Run ID: %s\n", runID)
}
