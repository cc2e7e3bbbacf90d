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

// Package metadata tracks statistics about a report run: the API calls it
// made, the records each project produced and which projects failed. The
// result can be saved as a JSON file next to the report for auditing and
// troubleshooting.
package metadata

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Tracker collects statistics during a run. It implements
// harness.RequestObserver and collector.BatchObserver.
type Tracker struct {
	runID        string
	startTime    time.Time
	apiCallCount int
	projects     []ProjectResult
	index        map[string]int
}

// New creates a tracker with a fresh run ID, started now.
func New() *Tracker {
	return &Tracker{
		runID:     uuid.NewString(),
		startTime: time.Now(),
		index:     make(map[string]int),
	}
}

// RunID returns the unique identifier of this run.
func (t *Tracker) RunID() string {
	return t.runID
}

// IncrementAPICall records that an API request was sent.
func (t *Tracker) IncrementAPICall() {
	t.apiCallCount++
}

// APICalls returns the number of API requests sent so far.
func (t *Tracker) APICalls() int {
	return t.apiCallCount
}

func (t *Tracker) project(id string) *ProjectResult {
	i, ok := t.index[id]
	if !ok {
		i = len(t.projects)
		t.index[id] = i
		t.projects = append(t.projects, ProjectResult{ProjectID: id})
	}
	return &t.projects[i]
}

// RecordBatches records how many time windows a project was fetched in.
func (t *Tracker) RecordBatches(projectID string, batches int) {
	t.project(projectID).Batches = batches
}

// ProjectCompleted records a project whose records were all written.
func (t *Tracker) ProjectCompleted(projectID string, records int) {
	p := t.project(projectID)
	p.Status = StatusCompleted
	p.Records = records
	p.Error = ""
}

// ProjectFailed records a project that was skipped because of err.
func (t *Tracker) ProjectFailed(projectID string, err error) {
	p := t.project(projectID)
	p.Status = StatusFailed
	p.Records = 0
	if err != nil {
		p.Error = err.Error()
	}
}

// Totals returns the record count and the number of completed and failed
// projects.
func (t *Tracker) Totals() (records, completed, failed int) {
	for _, p := range t.projects {
		switch p.Status {
		case StatusCompleted:
			completed++
			records += p.Records
		case StatusFailed:
			failed++
		}
	}
	return records, completed, failed
}

// GenerateMetadata creates the metadata record for the run so far.
func (t *Tracker) GenerateMetadata(version string, params RunParams) *RunMetadata {
	completedAt := time.Now()
	records, completed, failed := t.Totals()

	return &RunMetadata{
		Version:    version,
		RunID:      t.runID,
		Parameters: params,
		Results: RunResults{
			TotalRecords:      records,
			ProjectsProcessed: completed + failed,
			ProjectsFailed:    failed,
			APICallCount:      t.apiCallCount,
			Duration:          completedAt.Sub(t.startTime).Round(time.Millisecond).String(),
			StartedAt:         t.startTime,
			CompletedAt:       completedAt,
		},
		Projects: append([]ProjectResult(nil), t.projects...),
	}
}

// SaveMetadata writes metadata to path as indented JSON. The file is written
// to a temporary name first and renamed into place.
func SaveMetadata(metadata *RunMetadata, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create metadata directory: %w", err)
		}
	}

	tmpFile := path + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return fmt.Errorf("failed to create metadata file: %w", err)
	}

	if err := WriteMetadataToWriter(metadata, file); err != nil {
		_ = file.Close()
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to close metadata file: %w", err)
	}

	if err := os.Rename(tmpFile, path); err != nil {
		return fmt.Errorf("failed to save metadata file: %w", err)
	}

	return nil
}

// LoadMetadata reads a metadata file written by SaveMetadata.
func LoadMetadata(path string) (*RunMetadata, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata file: %w", err)
	}
	defer file.Close()

	var metadata RunMetadata
	if err := json.NewDecoder(file).Decode(&metadata); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	return &metadata, nil
}

// WriteMetadataToWriter writes metadata to w as indented JSON.
func WriteMetadataToWriter(metadata *RunMetadata, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(metadata)
}
