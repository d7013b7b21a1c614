package credit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrRequest is returned when the backend cannot be reached or answers
// with something other than an analysis envelope.
var ErrRequest = errors.New("credit analysis request failed")

// AnalysisError is a failure the backend reported in its envelope.
type AnalysisError struct {
	Status  string
	Message string
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("credit analysis %s: %s", e.Status, e.Message)
}

// Result is a successful analysis with the backend's status message.
type Result struct {
	Message string
	Report  Report
}

// Client talks to the credit analysis endpoint.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient returns a Client for the backend at baseURL. The analysis waits
// on an interactive login, so timeout should be generous.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Analyze starts the analysis and waits for the report.
func (c *Client) Analyze(ctx context.Context) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/start-credit-analysis", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %w", ErrRequest, err)
	}

	var envelope struct {
		Status  string          `json:"status"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: status %d: %w", ErrRequest, resp.StatusCode, err)
	}
	c.logger.Info("credit analysis finished",
		zap.String("status", envelope.Status),
		zap.Duration("took", time.Since(start)),
	)
	if envelope.Status != "success" {
		return nil, &AnalysisError{Status: envelope.Status, Message: envelope.Message}
	}

	var report Report
	if len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, &report); err != nil {
			return nil, fmt.Errorf("%w: decoding report: %w", ErrRequest, err)
		}
	}
	return &Result{Message: envelope.Message, Report: report}, nil
}
