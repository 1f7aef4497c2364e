package perturbation

import (
	"slices"
	"sync"

	"github.com/jonathan/student-assessment/internal/metrics"
	"github.com/jonathan/student-assessment/internal/types"
)

// ResultStore accumulates comparison rows during a batch. It is append-only;
// readers get snapshots and never see a row change after it was appended.
type ResultStore struct {
	mu      sync.RWMutex
	results []types.VariantComparisonResult
}

// NewResultStore creates an empty store.
func NewResultStore() *ResultStore {
	return &ResultStore{}
}

// Append records a finished row.
func (s *ResultStore) Append(r types.VariantComparisonResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
}

// Snapshot returns a copy of the rows recorded so far.
func (s *ResultStore) Snapshot() []types.VariantComparisonResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.results)
}

// Len returns the number of recorded rows.
func (s *ResultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}

// Metrics recomputes the aggregate metrics over the current rows.
func (s *ResultStore) Metrics() types.PerturbationMetrics {
	return metrics.Calculate(s.Snapshot())
}
