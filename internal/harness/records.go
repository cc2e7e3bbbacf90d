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
	"slices"
)

// ExtractRecords returns one Record per CD stage of s whose target
// environment type equals envType. Stages are ordered by start time, then by
// node id, so output is stable regardless of map iteration order.
func ExtractRecords(projectID string, s *ExecutionSummary, envType string) []Record {
	if s == nil || len(s.LayoutNodeMap) == 0 {
		return nil
	}

	ids := make([]string, 0, len(s.LayoutNodeMap))
	for id, node := range s.LayoutNodeMap {
		if env := stageEnvironment(node); env == nil || env.Type != envType {
			continue
		}
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int {
		na, nb := s.LayoutNodeMap[a], s.LayoutNodeMap[b]
		if c := cmp.Compare(na.StartTs, nb.StartTs); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	records := make([]Record, 0, len(ids))
	for _, id := range ids {
		node := s.LayoutNodeMap[id]
		env := stageEnvironment(node)

		var service string
		if si := node.ModuleInfo.CD.ServiceInfo; si != nil {
			service = si.DisplayName
		}

		records = append(records, Record{
			PipelineName:       s.Name,
			PipelineIdentifier: s.PipelineIdentifier,
			ProjectID:          projectID,
			ExecutionID:        s.PlanExecutionID,
			StageName:          node.Name,
			ServiceName:        service,
			EnvironmentName:    env.Name,
			EnvironmentType:    env.Type,
			Status:             node.Status,
			StartTs:            s.StartTs,
			EndTs:              s.EndTs,
		})
	}
	return records
}

// stageEnvironment returns the infrastructure summary of a CD stage, or nil
// for non-CD nodes.
func stageEnvironment(node LayoutNode) *InfraExecutionSummary {
	if node.ModuleInfo.CD == nil {
		return nil
	}
	return node.ModuleInfo.CD.InfraExecutionSummary
}
