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

package testutil

import (
	"fmt"
	"time"
)

// Environment types used by Harness infrastructure definitions.
const (
	EnvProduction    = "Production"
	EnvPreProduction = "PreProduction"
)

// ExecutionBuilder provides a fluent API for creating execution summaries in
// the shape the Harness execution summary endpoint returns.
type ExecutionBuilder struct {
	name        string
	pipelineID  string
	executionID string
	status      string
	startTs     int64
	endTs       int64
	nodes       map[string]interface{}
}

// NewExecution creates a builder for a successful execution of the "deploy"
// pipeline. An empty executionID yields a malformed summary.
func NewExecution(executionID string) *ExecutionBuilder {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC).UnixMilli()
	return &ExecutionBuilder{
		name:        "Deploy",
		pipelineID:  "deploy",
		executionID: executionID,
		status:      "Success",
		startTs:     start,
		endTs:       start + (5 * time.Minute).Milliseconds(),
		nodes:       make(map[string]interface{}),
	}
}

// WithPipeline sets the pipeline identifier and display name
func (b *ExecutionBuilder) WithPipeline(identifier, name string) *ExecutionBuilder {
	b.pipelineID = identifier
	b.name = name
	return b
}

// WithStatus sets the execution status
func (b *ExecutionBuilder) WithStatus(status string) *ExecutionBuilder {
	b.status = status
	return b
}

// StartedAt sets the start time, keeping the duration
func (b *ExecutionBuilder) StartedAt(t time.Time) *ExecutionBuilder {
	d := b.endTs - b.startTs
	b.startTs = t.UnixMilli()
	b.endTs = b.startTs + d
	return b
}

// StartedAtMillis sets the start time in epoch milliseconds, keeping the duration
func (b *ExecutionBuilder) StartedAtMillis(ms int64) *ExecutionBuilder {
	d := b.endTs - b.startTs
	b.startTs = ms
	b.endTs = ms + d
	return b
}

// Lasting sets the end time relative to the start time
func (b *ExecutionBuilder) Lasting(d time.Duration) *ExecutionBuilder {
	b.endTs = b.startTs + d.Milliseconds()
	return b
}

// Running clears the end time
func (b *ExecutionBuilder) Running() *ExecutionBuilder {
	b.endTs = 0
	return b
}

// WithStage adds a CD deployment stage. An empty service leaves serviceInfo null.
func (b *ExecutionBuilder) WithStage(name, envType, envName, service, status string) *ExecutionBuilder {
	var serviceInfo interface{}
	if service != "" {
		serviceInfo = map[string]interface{}{
			"identifier":  service,
			"displayName": service,
		}
	}

	nodeID := fmt.Sprintf("node-%02d", len(b.nodes)+1)
	b.nodes[nodeID] = map[string]interface{}{
		"nodeType": "Deployment",
		"name":     name,
		"status":   status,
		"startTs":  b.startTs + int64(len(b.nodes))*1000,
		"endTs":    b.endTs,
		"moduleInfo": map[string]interface{}{
			"cd": map[string]interface{}{
				"infraExecutionSummary": map[string]interface{}{
					"identifier": envName,
					"name":       envName,
					"type":       envType,
				},
				"serviceInfo": serviceInfo,
			},
		},
	}
	return b
}

// WithProductionStage adds a successful Production stage deploying service
func (b *ExecutionBuilder) WithProductionStage(envName, service string) *ExecutionBuilder {
	return b.WithStage("deploy-"+envName, EnvProduction, envName, service, "Success")
}

// WithApprovalStage adds a non-CD stage
func (b *ExecutionBuilder) WithApprovalStage(name string) *ExecutionBuilder {
	nodeID := fmt.Sprintf("node-%02d", len(b.nodes)+1)
	b.nodes[nodeID] = map[string]interface{}{
		"nodeType":   "Approval",
		"name":       name,
		"status":     "Success",
		"startTs":    b.startTs,
		"endTs":      b.startTs + 1000,
		"moduleInfo": map[string]interface{}{},
	}
	return b
}

// Build returns the summary as a JSON-ready map
func (b *ExecutionBuilder) Build() map[string]interface{} {
	summary := map[string]interface{}{
		"name":               b.name,
		"pipelineIdentifier": b.pipelineID,
		"status":             b.status,
		"startTs":            b.startTs,
		"layoutNodeMap":      b.nodes,
	}
	if b.executionID != "" {
		summary["planExecutionId"] = b.executionID
	}
	if b.endTs != 0 {
		summary["endTs"] = b.endTs
	}
	return summary
}

// ProductionRun builds a one-stage Production execution started at ms.
func ProductionRun(executionID string, ms int64) map[string]interface{} {
	return NewExecution(executionID).
		StartedAtMillis(ms).
		WithProductionStage("prod", "api").
		Build()
}
