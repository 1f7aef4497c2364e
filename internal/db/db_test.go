package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemaSQL(t *testing.T) {
	assert.Contains(t, schemaSQL, "CREATE TABLE IF NOT EXISTS perturbation_runs")
	assert.Contains(t, schemaSQL, "CREATE TABLE IF NOT EXISTS perturbation_reports")
	assert.Contains(t, schemaSQL, "ON DELETE CASCADE")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"success", nil, StatusCompleted},
		{"cancelled", context.Canceled, StatusCancelled},
		{"wrapped deadline", fmt.Errorf("batch: %w", context.DeadlineExceeded), StatusCancelled},
		{"failure", errors.New("no successful perturbation runs"), StatusFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestRun_IsTerminal(t *testing.T) {
	assert.False(t, (&Run{Status: StatusRunning}).IsTerminal())
	assert.True(t, (&Run{Status: StatusCompleted}).IsTerminal())
	assert.True(t, (&Run{Status: StatusCancelled}).IsTerminal())
}
