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
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sirseerhq/harness-report/pkg/version"
)

// maxResponseSize caps how much of a response body is read (10MB).
const maxResponseSize = 10 * 1024 * 1024

// RequestObserver is notified of every request sent to the API.
type RequestObserver interface {
	IncrementAPICall()
}

// authTransport adds the credential header, the User-Agent and the
// response size limit to every request.
type authTransport struct {
	header string
	value  string
	base   http.RoundTripper
}

// RoundTrip implements http.RoundTripper
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	req = req.Clone(req.Context())

	req.Header.Set(t.header, t.value)
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.Body != nil {
		resp.Body = &limitedReader{
			ReadCloser: resp.Body,
			limit:      maxResponseSize,
		}
	}

	return resp, nil
}

// countingTransport reports each request to a RequestObserver.
type countingTransport struct {
	observer RequestObserver
	base     http.RoundTripper
}

// RoundTrip implements http.RoundTripper
func (t *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.observer.IncrementAPICall()
	return t.base.RoundTrip(req)
}

// ErrResponseTooLarge is returned when a response body is longer than the
// client accepts. Repeating the request would return the same body, so it
// is not retried.
var ErrResponseTooLarge = errors.New("response body too large")

// limitedReader fails once more than limit bytes have been read instead of
// silently truncating. A body of exactly limit bytes reads normally.
type limitedReader struct {
	io.ReadCloser
	limit int64
	read  int64
}

func (lr *limitedReader) Read(p []byte) (n int, err error) {
	if lr.read > lr.limit {
		return 0, lr.tooLarge()
	}

	// Allow one byte past the limit so that an oversized body is detected
	// rather than cut off at exactly limit bytes.
	if remaining := lr.limit + 1 - lr.read; int64(len(p)) > remaining {
		p = p[:remaining]
	}

	n, err = lr.ReadCloser.Read(p)
	lr.read += int64(n)
	if lr.read > lr.limit {
		return n, lr.tooLarge()
	}
	return n, err
}

func (lr *limitedReader) tooLarge() error {
	return fmt.Errorf("%w: exceeds limit of %d bytes", ErrResponseTooLarge, lr.limit)
}
