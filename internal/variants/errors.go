package variants

import "fmt"

// GenerationError is returned when a variant cannot be produced at all.
type GenerationError struct {
	VariantType string
	Message     string
	Cause       error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to generate %s variant: %s: %v", e.VariantType, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to generate %s variant: %s", e.VariantType, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}
