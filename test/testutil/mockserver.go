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

// Package testutil provides common test helpers for harness-report
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// RecordedRequest is a request received by HarnessServer.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// HarnessServer is an httptest server emulating the two Harness endpoints
// the report uses. Executions are filtered by the inclusive timeRange of the
// request, sorted newest first and paged like the real API.
type HarnessServer struct {
	*httptest.Server

	mu         sync.Mutex
	projects   []string
	executions map[string][]map[string]interface{}
	failures   map[string]int
	failStatus map[string]int
	failed     map[string]int
	rejectAuth bool
	requests   []RecordedRequest
}

// NewHarnessServer starts a mock Harness API; it is closed on test cleanup.
func NewHarnessServer(t *testing.T) *HarnessServer {
	t.Helper()

	s := &HarnessServer{
		executions: make(map[string][]map[string]interface{}),
		failures:   make(map[string]int),
		failStatus: make(map[string]int),
		failed:     make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// AddProjects appends projects to the organization listing.
func (s *HarnessServer) AddProjects(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = append(s.projects, ids...)
}

// AddExecutions adds execution summaries (see ExecutionBuilder) to a project.
func (s *HarnessServer) AddExecutions(project string, execs ...map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.executions[project] = append(s.executions[project], execs...)
}

// FailProject makes the first n execution requests for a project answer
// with status (n<0: every request).
func (s *HarnessServer) FailProject(project string, n, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[project] = n
	s.failStatus[project] = status
}

// RejectCredentials makes the server answer 401 to every request.
func (s *HarnessServer) RejectCredentials() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectAuth = true
}

// Requests returns every request received so far.
func (s *HarnessServer) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// ExecutionRequests counts execution summary requests for a project.
func (s *HarnessServer) ExecutionRequests(project string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Path == ExecutionsPath && r.Query.Get("projectIdentifier") == project {
			n++
		}
	}
	return n
}

// Endpoint paths served by HarnessServer.
const (
	ProjectsPath   = "/ng/api/aggregate/projects"
	ExecutionsPath = "/pipeline/api/pipelines/execution/summary"
)

func (s *HarnessServer) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	s.requests = append(s.requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   body,
	})
	reject := s.rejectAuth
	s.mu.Unlock()

	if reject || (!strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") && r.Header.Get("x-api-key") == "") {
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"status":  "ERROR",
			"code":    "INVALID_CREDENTIAL",
			"message": "Invalid credentials",
		})
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == ProjectsPath:
		s.handleProjects(w, r)
	case r.Method == http.MethodPost && r.URL.Path == ExecutionsPath:
		s.handleExecutions(w, r, body)
	default:
		http.NotFound(w, r)
	}
}

func (s *HarnessServer) handleProjects(w http.ResponseWriter, r *http.Request) {
	pageIndex, _ := strconv.Atoi(r.URL.Query().Get("pageIndex"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize <= 0 {
		pageSize = 20
	}

	s.mu.Lock()
	projects := append([]string(nil), s.projects...)
	s.mu.Unlock()

	content := make([]map[string]interface{}, 0)
	for i := pageIndex * pageSize; i >= 0 && i < len(projects) && i < (pageIndex+1)*pageSize; i++ {
		content = append(content, map[string]interface{}{
			"projectResponse": map[string]interface{}{
				"project": map[string]interface{}{
					"orgIdentifier": r.URL.Query().Get("orgIdentifier"),
					"identifier":    projects[i],
					"name":          projects[i],
				},
			},
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "SUCCESS",
		"data": map[string]interface{}{
			"totalPages": (len(projects) + pageSize - 1) / pageSize,
			"totalItems": len(projects),
			"pageIndex":  pageIndex,
			"content":    content,
		},
	})
}

func (s *HarnessServer) handleExecutions(w http.ResponseWriter, r *http.Request, body []byte) {
	project := r.URL.Query().Get("projectIdentifier")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if size <= 0 {
		size = 20
	}

	var filter struct {
		TimeRange struct {
			StartTime int64 `json:"startTime"`
			EndTime   int64 `json:"endTime"`
		} `json:"timeRange"`
	}
	if err := json.Unmarshal(body, &filter); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"status": "ERROR", "message": err.Error()})
		return
	}

	s.mu.Lock()
	if n, ok := s.failures[project]; ok && (n < 0 || s.failed[project] < n) {
		s.failed[project]++
		status := s.failStatus[project]
		s.mu.Unlock()
		writeJSON(w, status, map[string]interface{}{"status": "ERROR", "message": http.StatusText(status)})
		return
	}
	var matching []map[string]interface{}
	for _, e := range s.executions[project] {
		ts := startTs(e)
		if ts >= filter.TimeRange.StartTime && ts <= filter.TimeRange.EndTime {
			matching = append(matching, e)
		}
	}
	s.mu.Unlock()

	sort.SliceStable(matching, func(i, j int) bool {
		return startTs(matching[i]) > startTs(matching[j])
	})

	content := make([]map[string]interface{}, 0)
	for i := page * size; i >= 0 && i < len(matching) && i < (page+1)*size; i++ {
		content = append(content, matching[i])
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "SUCCESS",
		"data": map[string]interface{}{
			"totalElements": len(matching),
			"totalPages":    (len(matching) + size - 1) / size,
			"content":       content,
		},
	})
}

func startTs(e map[string]interface{}) int64 {
	switch v := e["startTs"].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
