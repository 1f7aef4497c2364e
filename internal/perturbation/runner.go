// Package perturbation orchestrates perturbation batches: it generates
// variants for each selected profile, runs the analysis pipeline once per
// (profile, variant) pair, compares every variant against its profile's
// original run and aggregates the rows into a report.
package perturbation

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/student-assessment/internal/comparison"
	"github.com/jonathan/student-assessment/internal/metrics"
	"github.com/jonathan/student-assessment/internal/pipeline"
	"github.com/jonathan/student-assessment/internal/types"
	"github.com/jonathan/student-assessment/internal/variants"
)

// DefaultConcurrency is the number of pipeline invocations run at once when
// Runner.Concurrency is not set.
const DefaultConcurrency = 4

// ProgressEvent represents a progress update during a batch
type ProgressEvent struct {
	Completed   int                            `json:"completed"`
	Total       int                            `json:"total"`
	Message     string                         `json:"message"`
	ProfileID   string                         `json:"profile_id,omitempty"`
	VariantType types.VariantType              `json:"variant_type,omitempty"`
	Result      *types.VariantComparisonResult `json:"result,omitempty"`
}

// Runner executes perturbation batches.
type Runner struct {
	Invoker     pipeline.Invoker
	Generator   *variants.Generator
	Comparator  *comparison.Comparator
	Concurrency int
	Logger      *zap.Logger
	// OnProgress, when set, receives one event per finished run. Calls are
	// serialized.
	OnProgress func(ProgressEvent)
	// Store, when set, receives rows as they finish so callers can take
	// snapshots while the batch runs.
	Store *ResultStore
}

// ProfileVariants groups the variants generated for one profile.
type ProfileVariants struct {
	Entry    types.ProfileEntry
	Variants []*types.ProfileVariant
}

// Prepare validates input, resolves the profile selection and generates the
// variants for every selected profile. The first variant of each group is
// always the original.
func (r *Runner) Prepare(input *types.TestInput) ([]ProfileVariants, error) {
	if r.Generator == nil {
		return nil, errors.New("runner has no variant generator")
	}
	selected, err := SelectProfiles(input)
	if err != nil {
		return nil, err
	}
	plan := make([]ProfileVariants, 0, len(selected))
	for _, entry := range selected {
		plan = append(plan, ProfileVariants{
			Entry:    entry,
			Variants: r.Generator.GenerateAll(entry.ID, entry.Name, entry.Profile, input.Config),
		})
	}
	return plan, nil
}

// SelectProfiles returns the profiles named by the config selection, in input
// order. An empty selection selects every profile.
func SelectProfiles(input *types.TestInput) ([]types.ProfileEntry, error) {
	if input == nil {
		return nil, &InputError{Message: "input is nil"}
	}
	if err := input.Validate(); err != nil {
		return nil, &InputError{Message: "validation failed", Cause: err}
	}

	ids := input.Config.SelectedProfileIDs
	if len(ids) == 0 {
		return slices.Clone(input.Profiles), nil
	}

	known := make(map[string]bool, len(input.Profiles))
	for _, p := range input.Profiles {
		known[p.ID] = true
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !known[id] {
			return nil, &InputError{Message: fmt.Sprintf("unknown profile id %q", id)}
		}
		want[id] = true
	}

	var selected []types.ProfileEntry
	for _, p := range input.Profiles {
		if want[p.ID] {
			selected = append(selected, p)
			delete(want, p.ID)
		}
	}
	return selected, nil
}

// baseline is the original run of one profile that its variants compare against.
type baseline struct {
	done    chan struct{}
	results *types.PipelineResults
}

type unit struct {
	order   int
	variant *types.ProfileVariant
	base    *baseline
}

// Run executes the batch described by input and returns its report.
//
// Individual run failures are recorded on their rows and never abort the
// batch. When ctx is cancelled no new runs start; the partial report is
// returned together with the context error. A batch without any successful
// run returns the report and a *NoSuccessfulRunsError.
func (r *Runner) Run(ctx context.Context, input *types.TestInput) (*types.PerturbationTestResult, error) {
	if r.Invoker == nil {
		return nil, errors.New("runner has no pipeline invoker")
	}
	if r.Comparator == nil {
		return nil, errors.New("runner has no comparator")
	}
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	plan, err := r.Prepare(input)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	store := r.Store
	if store == nil {
		store = NewResultStore()
	}

	units := schedule(plan)
	total := len(units)
	order := make(map[string]int, total)
	for _, u := range units {
		order[u.variant.ID] = u.order
	}

	logger.Info("starting perturbation batch",
		zap.Int("profiles", len(plan)),
		zap.Int("runs", total),
		zap.Bool("skip_action_plan", input.Config.SkipActionPlan))

	progress := &progressReporter{total: total, fn: r.OnProgress}
	opts := pipeline.InvokeOptions{SkipActionPlan: input.Config.SkipActionPlan}

	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	var g errgroup.Group
	g.SetLimit(concurrency)

	// Originals come first in units so that every variant waiting on a
	// baseline waits on a run that already holds a slot.
	for _, u := range units {
		g.Go(func() error {
			r.runUnit(ctx, u, opts, store, progress, logger)
			return nil
		})
	}
	_ = g.Wait()

	results := store.Snapshot()
	slices.SortStableFunc(results, func(a, b types.VariantComparisonResult) int {
		return order[a.VariantID] - order[b.VariantID]
	})
	report := metrics.Report(results, len(plan), start.UTC(), time.Since(start))

	logger.Info("perturbation batch finished",
		zap.Int("runs", report.TotalRuns),
		zap.Int("successful", report.Summary.SuccessfulRuns),
		zap.Int("failed", report.Summary.FailedRuns),
		zap.Int64("elapsed_ms", report.ExecutionTimeTotalMS))

	if err := ctx.Err(); err != nil {
		batchesTotal.WithLabelValues(statusCancelled).Inc()
		return report, err
	}
	if report.Summary.SuccessfulRuns == 0 {
		batchesTotal.WithLabelValues(statusFailure).Inc()
		return report, &NoSuccessfulRunsError{Errors: collectErrors(results)}
	}
	batchesTotal.WithLabelValues(statusSuccess).Inc()
	return report, nil
}

// schedule flattens the plan into units, originals first. order follows the
// plan so final rows come out grouped by profile in generation order.
func schedule(plan []ProfileVariants) []unit {
	var originals, others []unit
	n := 0
	for _, pv := range plan {
		base := &baseline{done: make(chan struct{})}
		for _, v := range pv.Variants {
			u := unit{order: n, variant: v, base: base}
			n++
			if v.VariantType == types.VariantOriginal {
				originals = append(originals, u)
			} else {
				others = append(others, u)
			}
		}
	}
	return append(originals, others...)
}

func (r *Runner) runUnit(ctx context.Context, u unit, opts pipeline.InvokeOptions, store *ResultStore, progress *progressReporter, logger *zap.Logger) {
	v := u.variant
	isOriginal := v.VariantType == types.VariantOriginal
	if isOriginal {
		defer close(u.base.done)
	} else {
		<-u.base.done
	}

	log := logger.With(
		zap.String("profile_id", v.ProfileID),
		zap.String("variant_id", v.ID),
		zap.String("variant_type", string(v.VariantType)))

	if ctx.Err() != nil {
		runsTotal.WithLabelValues(string(v.VariantType), statusCancelled).Inc()
		log.Debug("run skipped: batch cancelled")
		return
	}

	runsInFlight.Inc()
	start := time.Now()
	results, err := r.Invoker.Invoke(ctx, v.Profile, opts)
	runsInFlight.Dec()

	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		runsTotal.WithLabelValues(string(v.VariantType), statusCancelled).Inc()
		log.Debug("run interrupted by cancellation")
		return
	}

	var runErrors []string
	if err != nil {
		runErrors = append(runErrors, err.Error())
		log.Warn("pipeline invocation failed", zap.Error(err))
	}
	if isOriginal {
		u.base.results = results
	}

	row := r.Comparator.Compare(v, u.base.results, results, runErrors)
	elapsed := time.Since(start)
	row.Timestamp = start.UTC()
	row.ExecutionTimeMS = elapsed.Milliseconds()
	store.Append(*row)

	status := statusSuccess
	if !row.Succeeded() {
		status = statusFailure
	}
	runsTotal.WithLabelValues(string(v.VariantType), status).Inc()
	runDuration.WithLabelValues(string(v.VariantType)).Observe(elapsed.Seconds())

	log.Debug("run finished",
		zap.String("status", status),
		zap.Int("consistency", row.SkillConsistency.ConsistencyPercentage),
		zap.Duration("elapsed", elapsed))

	progress.report(ProgressEvent{
		Message:     fmt.Sprintf("Completed %s variant for %s", v.VariantType, v.ProfileName),
		ProfileID:   v.ProfileID,
		VariantType: v.VariantType,
		Result:      row,
	})
}

// progressReporter serializes progress callbacks behind a single counter.
type progressReporter struct {
	mu        sync.Mutex
	completed int
	total     int
	fn        func(ProgressEvent)
}

func (p *progressReporter) report(ev ProgressEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completed++
	if p.fn == nil {
		return
	}
	ev.Completed = p.completed
	ev.Total = p.total
	p.fn(ev)
}

func collectErrors(results []types.VariantComparisonResult) []string {
	var errs []string
	for _, r := range results {
		for _, e := range r.Errors {
			errs = append(errs, fmt.Sprintf("%s/%s: %s", r.ProfileName, r.VariantType, e))
		}
	}
	return errs
}
