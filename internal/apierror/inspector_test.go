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

package apierror

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	reporterrors "github.com/sirseerhq/harness-report/internal/errors"
)

// statusError mimics the client's API error type.
type statusError struct{ code int }

func (e statusError) Error() string   { return fmt.Sprintf("unexpected status %d", e.code) }
func (e statusError) HTTPStatus() int { return e.code }

func TestHarnessErrorInspector_IsAuthError(t *testing.T) {
	inspector := NewInspector()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"401 status", statusError{401}, true},
		{"403 status", statusError{403}, true},
		{"wrapped 401 status", fmt.Errorf("list projects: %w", statusError{401}), true},
		{"404 status", statusError{404}, false},
		{"sentinel", fmt.Errorf("oops: %w", reporterrors.ErrUnauthorized), true},
		{"message", errors.New("401 Unauthorized"), true},
		{"not an auth error", errors.New("something went wrong"), false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inspector.IsAuthError(tt.err); got != tt.want {
				t.Errorf("IsAuthError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHarnessErrorInspector_IsRetryable(t *testing.T) {
	inspector := NewInspector()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"500", statusError{500}, true},
		{"502", statusError{502}, true},
		{"503 wrapped", fmt.Errorf("fetch: %w", statusError{503}), true},
		{"429", statusError{429}, true},
		{"400", statusError{400}, false},
		{"401", statusError{401}, false},
		{"404", statusError{404}, false},
		{"connection refused", errors.New("dial tcp 127.0.0.1:1: connect: connection refused"), true},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"net.OpError", &net.OpError{Op: "dial", Err: errors.New("boom")}, true},
		{"sentinel network failure", fmt.Errorf("x: %w", reporterrors.ErrNetworkFailure), true},
		{"context canceled", context.Canceled, false},
		{"decode error", errors.New("invalid character 'x' looking for beginning of value"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inspector.IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestHarnessErrorInspector_Classification(t *testing.T) {
	inspector := NewInspector()

	if !inspector.IsRateLimitError(statusError{429}) {
		t.Error("429 should be a rate limit error")
	}
	if inspector.IsRateLimitError(statusError{500}) {
		t.Error("500 should not be a rate limit error")
	}
	if !inspector.IsRateLimitError(errors.New("API rate limit exceeded")) {
		t.Error("rate limit message should be a rate limit error")
	}
	if !inspector.IsServerError(statusError{504}) {
		t.Error("504 should be a server error")
	}
	if inspector.IsServerError(errors.New("500 in a message only")) {
		t.Error("server errors are only detected from a status code")
	}
	if !inspector.IsNotFoundError(statusError{404}) {
		t.Error("404 should be a not found error")
	}
	if inspector.IsNetworkError(statusError{503}) {
		t.Error("an HTTP response is never a network error")
	}
}
