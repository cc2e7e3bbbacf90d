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

// Package report turns execution records into CSV rows.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirseerhq/harness-report/internal/harness"
)

// Columns is the header row of the report.
var Columns = []string{
	"Pipeline",
	"Project ID",
	"Execution URL",
	"Service Name",
	"Start Time",
	"End Time",
	"Environment Name",
	"Status",
	"Duration",
}

// Header returns a copy of Columns.
func Header() []string {
	return append([]string(nil), Columns...)
}

const timestampLayout = "2006-01-02 15:04:05"

// FormatTimestamp renders epoch milliseconds as UTC "YYYY-MM-DD HH:MM:SS".
// Zero renders as an empty string.
func FormatTimestamp(ms int64) string {
	if ms == 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format(timestampLayout)
}

// FormatDuration renders end-start as HH:MM:SS. Hours are not capped.
// A missing timestamp renders as an empty string and an end before start
// as 00:00:00.
func FormatDuration(startMs, endMs int64) string {
	if startMs == 0 || endMs == 0 {
		return ""
	}
	total := max(endMs-startMs, 0) / 1000
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, total%3600/60, total%60)
}

// ExecutionURL links to the execution in the Harness UI.
func ExecutionURL(baseURL, accountID, orgID, projectID, pipelineID, executionID string) string {
	base := strings.TrimRight(baseURL, "/")
	base = strings.TrimSuffix(base, "/gateway")
	return fmt.Sprintf("%s/ng/#/account/%s/cd/orgs/%s/projects/%s/pipelines/%s/executions/%s/pipeline",
		base, accountID, orgID, projectID, pipelineID, executionID)
}

// Transformer formats records of one account and organization.
type Transformer struct {
	BaseURL   string
	AccountID string
	OrgID     string
}

// Row formats rec in Columns order.
func (t Transformer) Row(rec harness.Record) []string {
	return []string{
		rec.PipelineName,
		rec.ProjectID,
		ExecutionURL(t.BaseURL, t.AccountID, t.OrgID, rec.ProjectID, rec.PipelineIdentifier, rec.ExecutionID),
		rec.ServiceName,
		FormatTimestamp(rec.StartTs),
		FormatTimestamp(rec.EndTs),
		rec.EnvironmentName,
		rec.Status,
		FormatDuration(rec.StartTs, rec.EndTs),
	}
}

// Rows formats recs in order.
func (t Transformer) Rows(recs []harness.Record) [][]string {
	rows := make([][]string, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, t.Row(rec))
	}
	return rows
}
