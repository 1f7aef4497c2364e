package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/jonathan/student-assessment/internal/perturbation"
	"github.com/jonathan/student-assessment/internal/schemas"
)

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		inputErr   *perturbation.InputError
		noRunsErr  *perturbation.NoSuccessfulRunsError
		invalidErr *schemas.ValidationError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &inputErr), errors.As(err, &invalidErr):
		return http.StatusBadRequest
	case errors.As(err, &noRunsErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
