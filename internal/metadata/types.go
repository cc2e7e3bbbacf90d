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

package metadata

import (
	"time"
)

// Project outcomes recorded in ProjectResult.Status.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// RunMetadata is the record of one report run: what was asked for, what
// each project produced and how many API calls it took.
type RunMetadata struct {
	Version    string          `json:"version"`
	RunID      string          `json:"run_id"`
	Parameters RunParams       `json:"parameters"`
	Results    RunResults      `json:"results"`
	Projects   []ProjectResult `json:"projects"`
}

// RunParams captures the inputs of a run so it can be reproduced.
type RunParams struct {
	AccountID       string    `json:"account_id"`
	OrgID           string    `json:"org_id"`
	ProjectID       string    `json:"project_id,omitempty"`
	ExcludeProjects []string  `json:"exclude_projects,omitempty"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	PageSize        int       `json:"page_size"`
	OutputPath      string    `json:"output_path"`
}

// RunResults holds the totals of a run.
type RunResults struct {
	TotalRecords      int       `json:"total_records"`
	ProjectsProcessed int       `json:"projects_processed"`
	ProjectsFailed    int       `json:"projects_failed"`
	APICallCount      int       `json:"api_calls_made"`
	Duration          string    `json:"run_duration"`
	StartedAt         time.Time `json:"started_at"`
	CompletedAt       time.Time `json:"completed_at"`
}

// ProjectResult is the outcome for one project.
type ProjectResult struct {
	ProjectID string `json:"project_id"`
	Status    string `json:"status"`
	Records   int    `json:"records"`
	Batches   int    `json:"batches"`
	Error     string `json:"error,omitempty"`
}
