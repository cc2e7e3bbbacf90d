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
	"net"
	"net/http"
	"strings"

	reporterrors "github.com/sirseerhq/harness-report/internal/errors"
)

// Inspector provides methods to classify errors returned by the Harness API client.
type Inspector interface {
	// IsAuthError returns true if the credential was rejected (401/403).
	IsAuthError(err error) bool

	// IsNotFoundError returns true if the requested resource does not exist.
	IsNotFoundError(err error) bool

	// IsRateLimitError returns true if the API rate limiter rejected the call (429).
	IsRateLimitError(err error) bool

	// IsServerError returns true for 5xx responses.
	IsServerError(err error) bool

	// IsNetworkError returns true for connectivity failures and timeouts.
	IsNetworkError(err error) bool

	// IsRetryable returns true if the request may succeed when repeated.
	IsRetryable(err error) bool
}

// statusCoder is implemented by errors that carry an HTTP response status.
type statusCoder interface {
	HTTPStatus() int
}

// HarnessErrorInspector implements Inspector. It checks the error chain for
// an HTTP status and known sentinels first and falls back to message
// inspection for errors produced outside this module (net/http, url).
type HarnessErrorInspector struct{}

// NewInspector creates a new HarnessErrorInspector.
func NewInspector() Inspector {
	return &HarnessErrorInspector{}
}

// status returns the HTTP status carried in the error chain, or 0.
func status(err error) int {
	var sc statusCoder
	if errors.As(err, &sc) {
		return sc.HTTPStatus()
	}
	return 0
}

// IsAuthError checks if the error is an authentication or authorization error.
func (i *HarnessErrorInspector) IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	if code := status(err); code != 0 {
		return code == http.StatusUnauthorized || code == http.StatusForbidden
	}
	if errors.Is(err, reporterrors.ErrUnauthorized) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "401") ||
		strings.Contains(errStr, "403") ||
		strings.Contains(errStr, "unauthorized") ||
		strings.Contains(errStr, "forbidden")
}

// IsNotFoundError checks if the error is a not found error.
func (i *HarnessErrorInspector) IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	if code := status(err); code != 0 {
		return code == http.StatusNotFound
	}
	return errors.Is(err, reporterrors.ErrNotFound)
}

// IsRateLimitError checks if the error is a rate limit error.
func (i *HarnessErrorInspector) IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	if code := status(err); code != 0 {
		return code == http.StatusTooManyRequests
	}
	if errors.Is(err, reporterrors.ErrRateLimit) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests")
}

// IsServerError checks if the error came from a 5xx response.
func (i *HarnessErrorInspector) IsServerError(err error) bool {
	code := status(err)
	return code >= 500 && code <= 599
}

// IsNetworkError checks if the error is a network connectivity error or a timeout.
// A cancelled context is not a network error.
func (i *HarnessErrorInspector) IsNetworkError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if status(err) != 0 {
		return false
	}
	if errors.Is(err, reporterrors.ErrNetworkFailure) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "temporary failure") ||
		strings.Contains(errStr, "dial tcp") ||
		strings.Contains(errStr, "tls handshake") ||
		strings.Contains(errStr, "unexpected eof") ||
		strings.Contains(errStr, "network is unreachable")
}

// IsRetryable reports whether the failure is transient: network errors,
// timeouts, 5xx and 429.
func (i *HarnessErrorInspector) IsRetryable(err error) bool {
	return i.IsNetworkError(err) || i.IsServerError(err) || i.IsRateLimitError(err)
}
