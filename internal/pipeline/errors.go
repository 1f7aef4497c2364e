package pipeline

import "fmt"

// ContractError reports stage output that does not satisfy its JSON schema.
// It is distinct from transport failures so callers can tell a malformed
// response from a missing one.
type ContractError struct {
	Stage  string
	Schema string
	Cause  error
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("%s output violates %s contract: %v", e.Stage, e.Schema, e.Cause)
}

func (e *ContractError) Unwrap() error {
	return e.Cause
}

// StageError reports a stage that failed after all attempts.
type StageError struct {
	Stage    string
	Attempts int
	Cause    error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed after %d attempt(s): %v", e.Stage, e.Attempts, e.Cause)
}

func (e *StageError) Unwrap() error {
	return e.Cause
}

// DependencyError reports a stage skipped because an earlier stage produced nothing.
type DependencyError struct {
	Stage   string
	Missing []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s skipped: missing dependencies %v", e.Stage, e.Missing)
}
