package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jonathan/student-assessment/internal/types"
)

// maxResponseBytes bounds how much of a remote pipeline response is read.
const maxResponseBytes = 4 << 20

// HTTPInvoker calls a remote analysis pipeline that accepts
// {"profile": ..., "skip_action_plan": bool} and answers with PipelineResults JSON.
type HTTPInvoker struct {
	url    string
	client *http.Client
}

// NewHTTPInvoker creates an invoker for the pipeline endpoint at url.
func NewHTTPInvoker(url string, timeout time.Duration) *HTTPInvoker {
	return &HTTPInvoker{url: url, client: &http.Client{Timeout: timeout}}
}

type httpInvokeRequest struct {
	Profile        *types.StudentProfile `json:"profile"`
	SkipActionPlan bool                  `json:"skip_action_plan"`
}

// Invoke implements Invoker.
func (h *HTTPInvoker) Invoke(ctx context.Context, profile *types.StudentProfile, opts InvokeOptions) (*types.PipelineResults, error) {
	body, err := json.Marshal(httpInvokeRequest{Profile: profile, SkipActionPlan: opts.SkipActionPlan})
	if err != nil {
		return nil, fmt.Errorf("failed to encode pipeline request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pipeline request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read pipeline response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pipeline returned status %d: %s", resp.StatusCode, truncate(string(data), 200))
	}

	var results types.PipelineResults
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, &ContractError{Stage: "response", Schema: "pipeline_results", Cause: err}
	}
	return &results, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
