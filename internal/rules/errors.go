package rules

import "fmt"

// LoadError represents a failure to read, parse or compile a rule file.
type LoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	path := e.Path
	if path == "" {
		path = "(embedded)"
	}
	if e.Cause != nil {
		return fmt.Sprintf("failed to load rules %s: %s: %v", path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load rules %s: %s", path, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
