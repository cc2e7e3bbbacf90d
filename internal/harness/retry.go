// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sirseerhq/harness-report/internal/apierror"
	reporterrors "github.com/sirseerhq/harness-report/internal/errors"
)

// RetryConfig configures the retry behavior for API calls
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// BackoffStep is the linear backoff increment: the wait after the n-th
	// failed attempt is n * BackoffStep.
	BackoffStep time.Duration
}

// DefaultRetryConfig returns the default retry configuration: three attempts
// with 2s and 4s waits between them.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts: 3,
		BackoffStep: 2 * time.Second,
	}
}

// RetryClient wraps a Client with automatic retry of transient failures
// (network errors, timeouts, 5xx, 429) using linear backoff. Any other
// failure is returned after the first attempt.
type RetryClient struct {
	client    Client
	config    *RetryConfig
	inspector apierror.Inspector
	logger    *slog.Logger
}

// NewRetryClient creates a new RetryClient with the given configuration
func NewRetryClient(client Client, config *RetryConfig, logger *slog.Logger) *RetryClient {
	if config == nil {
		config = DefaultRetryConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RetryClient{
		client:    client,
		config:    config,
		inspector: apierror.NewInspector(),
		logger:    logger,
	}
}

// ListProjects implements the Client interface with retry logic
func (r *RetryClient) ListProjects(ctx context.Context, pageIndex, pageSize int) (*ProjectPage, error) {
	return withRetry(ctx, r, "list projects", func() (*ProjectPage, error) {
		return r.client.ListProjects(ctx, pageIndex, pageSize)
	})
}

// FetchExecutions implements the Client interface with retry logic
func (r *RetryClient) FetchExecutions(ctx context.Context, q ExecutionQuery) (*ExecutionPage, error) {
	return withRetry(ctx, r, "fetch executions", func() (*ExecutionPage, error) {
		return r.client.FetchExecutions(ctx, q)
	})
}

// withRetry runs call until it succeeds, fails permanently, or the attempt
// budget is spent. The exhaustion error wraps both ErrRetriesExhausted and
// the last failure.
func withRetry[T any](ctx context.Context, r *RetryClient, op string, call func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	attempts := max(r.config.MaxAttempts, 1)
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := call()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		if !r.inspector.IsRetryable(err) {
			return zero, err
		}
		if attempt == attempts {
			break
		}

		backoff := r.calculateBackoff(attempt)
		r.logger.Warn("API call failed, retrying",
			"op", op,
			"attempt", attempt,
			"max_attempts", attempts,
			"retry_in", backoff,
			"error", err)

		timer := time.NewTimer(backoff)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		}
	}

	return zero, fmt.Errorf("%s: %w after %d attempts: %w", op, reporterrors.ErrRetriesExhausted, attempts, lastErr)
}

// calculateBackoff returns the wait after the given failed attempt (1 based).
func (r *RetryClient) calculateBackoff(attempt int) time.Duration {
	return time.Duration(attempt) * r.config.BackoffStep
}

// AsAPIError returns the *APIError in err's chain, if any.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
