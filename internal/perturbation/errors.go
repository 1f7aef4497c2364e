package perturbation

import (
	"fmt"
	"strings"
)

// InputError reports an invalid batch input.
type InputError struct {
	Message string
	Cause   error
}

func (e *InputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid test input: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid test input: %s", e.Message)
}

func (e *InputError) Unwrap() error {
	return e.Cause
}

// NoSuccessfulRunsError is returned when a batch finished without a single
// successful run. Errors lists every per-run failure.
type NoSuccessfulRunsError struct {
	Errors []string
}

func (e *NoSuccessfulRunsError) Error() string {
	if len(e.Errors) == 0 {
		return "no successful perturbation runs"
	}
	return fmt.Sprintf("no successful perturbation runs (%d error(s)): %s", len(e.Errors), strings.Join(e.Errors, "; "))
}
