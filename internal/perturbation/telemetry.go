package perturbation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess   = "success"
	statusFailure   = "failure"
	statusCancelled = "cancelled"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assessment_perturbation_runs_total",
		Help: "Total perturbation runs by variant type and outcome",
	}, []string{"variant_type", "status"})

	runDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assessment_perturbation_run_duration_seconds",
		Help:    "Duration of one pipeline invocation plus comparison",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"variant_type"})

	runsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "assessment_perturbation_runs_in_flight",
		Help: "Pipeline invocations currently running",
	})

	batchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "assessment_perturbation_batches_total",
		Help: "Total perturbation batches by outcome",
	}, []string{"status"})
)
