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
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
)

// MockClient is an in-memory implementation of the Client interface for
// testing. It pages and time-filters its executions the way the API does:
// newest first, inclusive time range.
type MockClient struct {
	// Projects returned by ListProjects, in API order.
	Projects []Project

	// Executions per project id.
	Executions map[string][]ExecutionSummary

	// Failures makes FetchExecutions fail for a project: the value is the
	// number of calls that fail before the project recovers, or <0 to fail
	// forever. Failing calls return FailureError.
	Failures     map[string]int
	FailureError error

	// ListError, if set, is returned by every ListProjects call.
	ListError error

	// Track calls for verification
	ListCalls      int
	ExecutionCalls []ExecutionQuery
	failed         map[string]int
}

// MockClientOption allows configuring the mock client
type MockClientOption func(*MockClient)

// NewMockClient creates a mock client with options
func NewMockClient(opts ...MockClientOption) *MockClient {
	m := &MockClient{
		Executions:   make(map[string][]ExecutionSummary),
		Failures:     make(map[string]int),
		FailureError: &APIError{Method: http.MethodPost, URL: "mock://executions", Status: http.StatusServiceUnavailable},
		failed:       make(map[string]int),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithProjects sets the project listing
func WithProjects(ids ...string) MockClientOption {
	return func(m *MockClient) {
		for _, id := range ids {
			m.Projects = append(m.Projects, Project{Identifier: id, Name: id})
		}
	}
}

// WithExecutions adds execution summaries to a project
func WithExecutions(projectID string, summaries ...ExecutionSummary) MockClientOption {
	return func(m *MockClient) {
		m.Executions[projectID] = append(m.Executions[projectID], summaries...)
	}
}

// WithFailures makes the first n execution calls for a project fail (n<0: all)
func WithFailures(projectID string, n int) MockClientOption {
	return func(m *MockClient) {
		m.Failures[projectID] = n
	}
}

// ListProjects implements the Client interface
func (m *MockClient) ListProjects(ctx context.Context, pageIndex, pageSize int) (*ProjectPage, error) {
	m.ListCalls++

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.ListError != nil {
		return nil, m.ListError
	}
	if pageSize <= 0 {
		return nil, fmt.Errorf("invalid page size %d", pageSize)
	}

	page := &ProjectPage{
		TotalItems: len(m.Projects),
		TotalPages: pageCount(len(m.Projects), pageSize),
		PageIndex:  pageIndex,
	}
	for _, p := range pageSlice(m.Projects, pageIndex, pageSize) {
		var agg ProjectAggregate
		agg.ProjectResponse.Project = p
		page.Content = append(page.Content, agg)
	}
	return page, nil
}

// FetchExecutions implements the Client interface
func (m *MockClient) FetchExecutions(ctx context.Context, q ExecutionQuery) (*ExecutionPage, error) {
	m.ExecutionCalls = append(m.ExecutionCalls, q)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n, ok := m.Failures[q.ProjectID]; ok && (n < 0 || m.failed[q.ProjectID] < n) {
		m.failed[q.ProjectID]++
		return nil, m.FailureError
	}
	if q.Size <= 0 {
		return nil, fmt.Errorf("invalid page size %d", q.Size)
	}

	var matching []ExecutionSummary
	for _, s := range m.Executions[q.ProjectID] {
		if s.StartTs >= q.StartTime && s.StartTs <= q.EndTime {
			matching = append(matching, s)
		}
	}
	slices.SortStableFunc(matching, func(a, b ExecutionSummary) int {
		return cmp.Compare(b.StartTs, a.StartTs)
	})

	page := &ExecutionPage{
		TotalElements: len(matching),
		TotalPages:    pageCount(len(matching), q.Size),
	}
	for _, s := range pageSlice(matching, q.Page, q.Size) {
		raw, err := json.Marshal(s)
		if err != nil {
			return nil, err
		}
		page.Content = append(page.Content, raw)
	}
	return page, nil
}

func pageCount(total, size int) int {
	return (total + size - 1) / size
}

func pageSlice[T any](items []T, page, size int) []T {
	start := page * size
	if start < 0 || start >= len(items) {
		return nil
	}
	return items[start:min(start+size, len(items))]
}
