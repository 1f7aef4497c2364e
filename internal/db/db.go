// Package db provides PostgreSQL storage for perturbation batch reports.
package db

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/student-assessment/internal/types"
)

//go:embed schema.sql
var schemaSQL string

// DefaultListLimit is used by ListRuns when no positive limit is given.
const DefaultListLimit = 50

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the tables used by the archive if they do not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// CreateRun records the start of a batch and returns its ID
func (db *DB) CreateRun(ctx context.Context, profilesTested int, cfg types.TestConfig) (uuid.UUID, error) {
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal run config: %w", err)
	}

	var id uuid.UUID
	err = db.pool.QueryRow(ctx,
		`INSERT INTO perturbation_runs (status, profiles_tested, config)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		StatusRunning, profilesTested, cfgJSON,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create run: %w", err)
	}
	return id, nil
}

// CompleteRun marks a batch as finished with the given status and counts
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status string, totalRuns, successfulRuns int) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE perturbation_runs
		 SET status = $1, total_runs = $2, successful_runs = $3, completed_at = NOW()
		 WHERE id = $4`,
		status, totalRuns, successfulRuns, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("run not found: %s", runID)
	}
	return nil
}

// SaveReport stores the JSON envelope of a batch, replacing any earlier report
func (db *DB) SaveReport(ctx context.Context, runID uuid.UUID, report *types.PerturbationTestResult) error {
	if report == nil {
		return errors.New("report is nil")
	}
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO perturbation_reports (run_id, report)
		 VALUES ($1, $2)
		 ON CONFLICT (run_id) DO UPDATE SET report = $2, created_at = NOW()`,
		runID, data,
	)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// ArchiveReport creates a completed run together with its report in one
// transaction.
func (db *DB) ArchiveReport(ctx context.Context, cfg types.TestConfig, report *types.PerturbationTestResult, status string) (uuid.UUID, error) {
	if report == nil {
		return uuid.Nil, errors.New("report is nil")
	}
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal run config: %w", err)
	}
	data, err := json.Marshal(report)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal report: %w", err)
	}

	var id uuid.UUID
	err = pgx.BeginFunc(ctx, db.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx,
			`INSERT INTO perturbation_runs (status, profiles_tested, total_runs, successful_runs, config, completed_at)
			 VALUES ($1, $2, $3, $4, $5, NOW())
			 RETURNING id`,
			status, report.ProfilesTested, report.TotalRuns, report.Summary.SuccessfulRuns, cfgJSON,
		).Scan(&id); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO perturbation_reports (run_id, report) VALUES ($1, $2)`,
			id, data,
		)
		return err
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to archive report: %w", err)
	}
	return id, nil
}

// GetReport retrieves the report of a batch. Returns nil when none is stored.
func (db *DB) GetReport(ctx context.Context, runID uuid.UUID) (*types.PerturbationTestResult, error) {
	var data []byte
	err := db.pool.QueryRow(ctx,
		`SELECT report FROM perturbation_reports WHERE run_id = $1`,
		runID,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	var report types.PerturbationTestResult
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &report, nil
}

const runColumns = `id, status, profiles_tested, total_runs, successful_runs, config, created_at, completed_at`

func scanRun(row pgx.Row) (*Run, error) {
	var run Run
	var cfg []byte
	if err := row.Scan(&run.ID, &run.Status, &run.ProfilesTested, &run.TotalRuns, &run.SuccessfulRuns, &cfg, &run.CreatedAt, &run.CompletedAt); err != nil {
		return nil, err
	}
	if len(cfg) > 0 {
		run.Config = json.RawMessage(cfg)
	}
	return &run, nil
}

// GetRun retrieves a batch record by ID. Returns nil when it does not exist.
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	run, err := scanRun(db.pool.QueryRow(ctx,
		`SELECT `+runColumns+` FROM perturbation_runs WHERE id = $1`,
		runID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns retrieves recent batch records, newest first
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := db.pool.Query(ctx,
		`SELECT `+runColumns+` FROM perturbation_runs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// DeleteRun deletes a batch record and its report (via cascade)
func (db *DB) DeleteRun(ctx context.Context, runID uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM perturbation_runs WHERE id = $1`, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("run not found: %s", runID)
	}
	return nil
}

// StatusFor maps a batch outcome to a run status.
func StatusFor(err error) string {
	switch {
	case err == nil:
		return StatusCompleted
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return StatusCancelled
	default:
		return StatusFailed
	}
}
