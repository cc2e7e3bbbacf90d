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
	"encoding/json"
	"errors"
	"time"
)

// Scope is the account and organization every request is issued against.
type Scope struct {
	AccountID string
	OrgID     string
}

// ExecutionQuery selects one page of execution summaries. StartTime and
// EndTime are epoch milliseconds and both inclusive, matching the API's
// timeRange filter.
type ExecutionQuery struct {
	ProjectID string
	Page      int
	Size      int
	StartTime int64
	EndTime   int64
}

// ExecutionPage is one page of the execution summary listing. Content is kept
// raw so that a single malformed summary can be skipped without losing the
// rest of the page.
type ExecutionPage struct {
	TotalElements int               `json:"totalElements"`
	TotalPages    int               `json:"totalPages"`
	Content       []json.RawMessage `json:"content"`
}

// ExecutionSummary is the subset of a pipeline execution summary the report uses.
type ExecutionSummary struct {
	Name               string                `json:"name"`
	PipelineIdentifier string                `json:"pipelineIdentifier"`
	PlanExecutionID    string                `json:"planExecutionId"`
	Status             string                `json:"status"`
	StartTs            int64                 `json:"startTs"`
	EndTs              int64                 `json:"endTs"`
	LayoutNodeMap      map[string]LayoutNode `json:"layoutNodeMap"`
}

// LayoutNode is one stage of an execution graph.
type LayoutNode struct {
	NodeType   string     `json:"nodeType"`
	Name       string     `json:"name"`
	Status     string     `json:"status"`
	StartTs    int64      `json:"startTs"`
	EndTs      int64      `json:"endTs"`
	ModuleInfo ModuleInfo `json:"moduleInfo"`
}

// ModuleInfo holds per-module stage details. Only CD stages are reported.
type ModuleInfo struct {
	CD *CDModuleInfo `json:"cd"`
}

// CDModuleInfo describes where and what a deployment stage deployed.
type CDModuleInfo struct {
	InfraExecutionSummary *InfraExecutionSummary `json:"infraExecutionSummary"`
	ServiceInfo           *ServiceInfo           `json:"serviceInfo"`
}

// InfraExecutionSummary names the target environment of a stage. Type is
// "Production" or "PreProduction".
type InfraExecutionSummary struct {
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
	Type       string `json:"type"`
}

// ServiceInfo names the deployed service.
type ServiceInfo struct {
	Identifier  string `json:"identifier"`
	DisplayName string `json:"displayName"`
}

// ErrMalformedSummary is returned by DecodeSummary for summaries that lack an
// execution identifier.
var ErrMalformedSummary = errors.New("execution summary has no planExecutionId")

// DecodeSummary decodes one raw element of ExecutionPage.Content.
func DecodeSummary(raw json.RawMessage) (*ExecutionSummary, error) {
	var s ExecutionSummary
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	if s.PlanExecutionID == "" {
		return nil, ErrMalformedSummary
	}
	return &s, nil
}

// ProjectPage is one page of the aggregate project listing.
type ProjectPage struct {
	TotalPages int                `json:"totalPages"`
	TotalItems int                `json:"totalItems"`
	PageIndex  int                `json:"pageIndex"`
	Content    []ProjectAggregate `json:"content"`
}

// ProjectAggregate wraps a project in the aggregate listing.
type ProjectAggregate struct {
	ProjectResponse struct {
		Project Project `json:"project"`
	} `json:"projectResponse"`
}

// Project identifies a Harness project.
type Project struct {
	OrgIdentifier string `json:"orgIdentifier"`
	Identifier    string `json:"identifier"`
	Name          string `json:"name"`
}

// Record is one Production deployment stage of one pipeline execution: the
// unit the report is made of. Timestamps are epoch milliseconds of the
// execution as a whole.
type Record struct {
	PipelineName       string
	PipelineIdentifier string
	ProjectID          string
	ExecutionID        string
	StageName          string
	ServiceName        string
	EnvironmentName    string
	EnvironmentType    string
	Status             string
	StartTs            int64
	EndTs              int64
}

// Duration returns EndTs - StartTs, never negative. It is zero when either
// timestamp is missing.
func (r Record) Duration() time.Duration {
	if r.StartTs == 0 || r.EndTs == 0 || r.EndTs < r.StartTs {
		return 0
	}
	return time.Duration(r.EndTs-r.StartTs) * time.Millisecond
}

// envelope is the standard Harness response wrapper.
type envelope[T any] struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}
