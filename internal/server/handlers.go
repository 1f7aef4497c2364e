package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/student-assessment/internal/db"
	"github.com/jonathan/student-assessment/internal/perturbation"
	"github.com/jonathan/student-assessment/internal/schemas"
	"github.com/jonathan/student-assessment/internal/types"
)

const (
	maxInputBytes  = 4 << 20
	archiveTimeout = 10 * time.Second
)

// RunResponse is the outcome of a batch.
type RunResponse struct {
	RunID  string                        `json:"run_id,omitempty"`
	Status string                        `json:"status"`
	Error  string                        `json:"error,omitempty"`
	Errors []string                      `json:"errors,omitempty"`
	Report *types.PerturbationTestResult `json:"report"`
}

// VariantsResponse lists generated variants per profile.
type VariantsResponse struct {
	Profiles []ProfileVariantsResponse `json:"profiles"`
}

// ProfileVariantsResponse is one profile's variants.
type ProfileVariantsResponse struct {
	ID       string                  `json:"id"`
	Name     string                  `json:"name"`
	Variants []*types.ProfileVariant `json:"variants"`
}

type fieldErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (s *Server) newRunner(onProgress func(perturbation.ProgressEvent)) *perturbation.Runner {
	return &perturbation.Runner{
		Invoker:     s.invoker,
		Generator:   s.generator,
		Comparator:  s.comparator,
		Concurrency: s.concurrency,
		Logger:      s.logger,
		OnProgress:  onProgress,
	}
}

// decodeInput validates the request body against the test input schema and
// decodes it. It writes the error response itself and returns false on
// failure.
func (s *Server) decodeInput(w http.ResponseWriter, r *http.Request) (*types.TestInput, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxInputBytes))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return nil, false
	}
	if !json.Valid(body) {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return nil, false
	}
	if err := schemas.Validate(schemas.TestInput, body); err != nil {
		var ve *schemas.ValidationError
		if !errors.As(err, &ve) {
			s.errorResponse(w, http.StatusInternalServerError, err.Error())
			return nil, false
		}
		details := make([]fieldErrorResponse, 0, len(ve.Errors))
		for _, fe := range ve.Errors {
			details = append(details, fieldErrorResponse{Field: fe.Field, Message: fe.Message})
		}
		s.jsonResponse(w, http.StatusBadRequest, map[string]any{
			"error":   "invalid test input",
			"details": details,
		})
		return nil, false
	}

	var input types.TestInput
	if err := json.Unmarshal(body, &input); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return nil, false
	}
	return &input, true
}

// handleRun runs a batch synchronously and returns its report.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	input, ok := s.decodeInput(w, r)
	if !ok {
		return
	}

	report, err := s.newRunner(nil).Run(r.Context(), input)
	if report == nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, HTTPStatus(err), s.finish(r.Context(), input, report, err))
}

// handleRunStream runs a batch and streams one progress event per finished
// run, followed by a complete event carrying the report.
func (s *Server) handleRunStream(w http.ResponseWriter, r *http.Request) {
	input, ok := s.decodeInput(w, r)
	if !ok {
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	report, err := s.newRunner(func(ev perturbation.ProgressEvent) {
		if werr := sse.WriteEvent("progress", ev); werr != nil {
			s.logger.Debug("progress event dropped", zap.Error(werr))
		}
	}).Run(r.Context(), input)

	if report == nil {
		sse.WriteError(err.Error())
		return
	}
	sse.WriteComplete(s.finish(r.Context(), input, report, err))
}

// finish archives the report when an archive is configured and builds the
// response body.
func (s *Server) finish(ctx context.Context, input *types.TestInput, report *types.PerturbationTestResult, runErr error) RunResponse {
	resp := RunResponse{Status: db.StatusFor(runErr), Report: report}
	if runErr != nil {
		resp.Error = runErr.Error()
		var noRuns *perturbation.NoSuccessfulRunsError
		if errors.As(runErr, &noRuns) {
			resp.Errors = noRuns.Errors
		}
	}

	if s.archive != nil {
		// The report is archived even when the client went away.
		archiveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), archiveTimeout)
		defer cancel()
		id, err := s.archive.ArchiveReport(archiveCtx, input.Config, report, resp.Status)
		if err != nil {
			s.logger.Error("failed to archive report", zap.Error(err))
		} else {
			resp.RunID = id.String()
		}
	}
	return resp
}

// handleVariants generates variants without invoking the pipeline.
func (s *Server) handleVariants(w http.ResponseWriter, r *http.Request) {
	input, ok := s.decodeInput(w, r)
	if !ok {
		return
	}

	plan, err := s.newRunner(nil).Prepare(input)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	resp := VariantsResponse{Profiles: make([]ProfileVariantsResponse, 0, len(plan))}
	for _, pv := range plan {
		resp.Profiles = append(resp.Profiles, ProfileVariantsResponse{
			ID:       pv.Entry.ID,
			Name:     pv.Entry.Name,
			Variants: pv.Variants,
		})
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleListRuns lists archived batches, newest first.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "Run archive not configured")
		return
	}

	limit := db.DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.errorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := s.archive.ListRuns(r.Context(), limit)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if runs == nil {
		runs = []db.Run{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"runs": runs})
}

// handleGetRun returns the archived report of one batch.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "Run archive not configured")
		return
	}

	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid run ID format")
		return
	}

	report, err := s.archive.GetReport(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if report == nil {
		s.errorResponse(w, http.StatusNotFound, "Run not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, report)
}
