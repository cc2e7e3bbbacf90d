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
	"net/http"
	"strings"

	reporterrors "github.com/sirseerhq/harness-report/internal/errors"
)

// maxErrorBody is how much of a failed response body is kept for diagnostics.
const maxErrorBody = 500

// APIError describes a failed request: either the transport failed (Status is
// 0 and Err is set) or the server answered with a non-2xx status, or the
// response could not be decoded. It holds everything needed to replay the
// call by hand.
type APIError struct {
	Method     string
	URL        string
	Payload    []byte
	AuthHeader string
	Status     int
	Body       string
	Err        error
}

// HTTPStatus returns the response status, or 0 if no response was received.
func (e *APIError) HTTPStatus() int {
	return e.Status
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", e.Method, e.URL)
	if e.Status >= 300 {
		fmt.Fprintf(&b, ": unexpected status %d %s", e.Status, http.StatusText(e.Status))
		if e.Body != "" {
			fmt.Fprintf(&b, ": response body: %s", e.Body)
		}
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Is maps the failure onto the sentinel errors used for exit codes.
func (e *APIError) Is(target error) bool {
	switch target {
	case reporterrors.ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case reporterrors.ErrNotFound:
		return e.Status == http.StatusNotFound
	case reporterrors.ErrRateLimit:
		return e.Status == http.StatusTooManyRequests
	case reporterrors.ErrNetworkFailure:
		return e.Status == 0 && e.Err != nil && !errors.Is(e.Err, context.Canceled)
	}
	return false
}

// Curl renders the request as a curl command with the credential replaced
// by a placeholder.
func (e *APIError) Curl() string {
	var b strings.Builder
	fmt.Fprintf(&b, "curl --location --request %s '%s'", e.Method, e.URL)

	switch e.AuthHeader {
	case "x-api-key":
		b.WriteString(" \\\n  --header 'x-api-key: <YOUR_API_KEY>'")
	default:
		b.WriteString(" \\\n  --header 'Authorization: Bearer <YOUR_AUTH_TOKEN>'")
	}

	if len(e.Payload) > 0 {
		b.WriteString(" \\\n  --header 'Content-Type: application/json'")
		fmt.Fprintf(&b, " \\\n  --data '%s'", strings.ReplaceAll(string(e.Payload), "'", `'\''`))
	}
	return b.String()
}

// truncate shortens a response body for inclusion in an error.
func truncate(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}
