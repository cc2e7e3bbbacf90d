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
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirseerhq/harness-report/internal/config"
)

// Options tune a RESTClient. Zero values select defaults.
type Options struct {
	// Timeout bounds each request. Defaults to 30s.
	Timeout time.Duration

	// Observer, if set, is notified of every outbound request.
	Observer RequestObserver

	// Transport replaces http.DefaultTransport as the innermost transport.
	Transport http.RoundTripper
}

// RESTClient implements Client over the Harness NextGen REST API.
type RESTClient struct {
	baseURL    string
	scope      Scope
	httpClient *http.Client
	authHeader string
}

// NewRESTClient creates a client for baseURL scoped to an account and
// organization, authenticating every request with creds.
func NewRESTClient(baseURL string, scope Scope, creds *config.Credentials, opts Options) *RESTClient {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	var transport http.RoundTripper = http.DefaultTransport
	if opts.Transport != nil {
		transport = opts.Transport
	}
	if opts.Observer != nil {
		transport = &countingTransport{observer: opts.Observer, base: transport}
	}

	header, value := creds.Header()
	return &RESTClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		scope:   scope,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			Transport: &authTransport{
				header: header,
				value:  value,
				base:   transport,
			},
		},
		authHeader: header,
	}
}

// ListProjects fetches one page of the organization's projects, most
// recently modified first.
func (c *RESTClient) ListProjects(ctx context.Context, pageIndex, pageSize int) (*ProjectPage, error) {
	q := c.scopeQuery()
	q.Set("pageIndex", strconv.Itoa(pageIndex))
	q.Set("pageSize", strconv.Itoa(pageSize))
	q.Set("sortOrders", "lastModifiedAt,DESC")
	q.Set("onlyFavorites", "false")
	if c.scope.OrgID != "" {
		q.Set("orgIdentifier", c.scope.OrgID)
	}

	var page ProjectPage
	if err := c.do(ctx, http.MethodGet, "/ng/api/aggregate/projects", q, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// executionFilter is the POST body of the execution summary listing.
type executionFilter struct {
	FilterType string    `json:"filterType"`
	TimeRange  timeRange `json:"timeRange"`
}

type timeRange struct {
	StartTime int64 `json:"startTime"`
	EndTime   int64 `json:"endTime"`
}

// FetchExecutions fetches one page of CD execution summaries for a project,
// newest first.
func (c *RESTClient) FetchExecutions(ctx context.Context, eq ExecutionQuery) (*ExecutionPage, error) {
	q := c.scopeQuery()
	q.Set("projectIdentifier", eq.ProjectID)
	q.Set("orgIdentifier", c.scope.OrgID)
	q.Set("page", strconv.Itoa(eq.Page))
	q.Set("size", strconv.Itoa(eq.Size))
	q.Set("sort", "startTs,DESC")
	q.Set("myDeployments", "false")
	q.Set("searchTerm", "")
	q.Set("module", "cd")

	body := executionFilter{
		FilterType: "PipelineExecution",
		TimeRange: timeRange{
			StartTime: eq.StartTime,
			EndTime:   eq.EndTime,
		},
	}

	var page ExecutionPage
	if err := c.do(ctx, http.MethodPost, "/pipeline/api/pipelines/execution/summary", q, body, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// scopeQuery returns the query parameters every endpoint requires.
func (c *RESTClient) scopeQuery() url.Values {
	q := url.Values{}
	q.Set("routingId", c.scope.AccountID)
	q.Set("accountIdentifier", c.scope.AccountID)
	return q
}

// do sends a request and decodes the data field of the response envelope
// into out. Every failure is returned as an *APIError.
func (c *RESTClient) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	apiErr := &APIError{
		Method:     method,
		URL:        c.baseURL + path + "?" + query.Encode(),
		AuthHeader: c.authHeader,
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		apiErr.Payload = payload
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiErr.URL, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		apiErr.Err = err
		return apiErr
	}
	defer resp.Body.Close()

	data, readErr := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr.Status = resp.StatusCode
		apiErr.Body = truncate(data)
		return apiErr
	}
	if errors.Is(readErr, ErrResponseTooLarge) {
		apiErr.Status = resp.StatusCode
		apiErr.Err = readErr
		return apiErr
	}
	// A body cut short is a transport failure, so Status stays 0.
	if readErr != nil {
		apiErr.Err = fmt.Errorf("failed to read response: %w", readErr)
		return apiErr
	}
	apiErr.Status = resp.StatusCode

	env := envelope[json.RawMessage]{}
	if err := json.Unmarshal(data, &env); err != nil {
		apiErr.Body = truncate(data)
		apiErr.Err = fmt.Errorf("failed to decode response: %w", err)
		return apiErr
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		apiErr.Body = truncate(data)
		apiErr.Err = fmt.Errorf("response has no data (status %q, message %q)", env.Status, env.Message)
		return apiErr
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		apiErr.Body = truncate(data)
		apiErr.Err = fmt.Errorf("failed to decode response data: %w", err)
		return apiErr
	}

	return nil
}
