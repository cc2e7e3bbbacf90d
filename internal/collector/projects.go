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

package collector

import (
	"context"
	"fmt"
	"slices"
)

// Projects returns the projects to report on. A non-empty projectID is
// returned as the only project unless it is excluded, in which case there
// is nothing to report. Otherwise every project of the organization is
// listed, in API order, minus exclude.
func (c *Collector) Projects(ctx context.Context, projectID string, exclude []string) ([]string, error) {
	if projectID != "" {
		if slices.Contains(exclude, projectID) {
			c.logger.Warn("requested project is in the exclusion list, nothing to fetch",
				"project", projectID)
			return nil, nil
		}
		return []string{projectID}, nil
	}

	var (
		projects []string
		excluded int
	)
	for page := 0; ; page++ {
		if page > 0 {
			if err := c.Pause(ctx); err != nil {
				return nil, err
			}
		}

		resp, err := c.client.ListProjects(ctx, page, c.opts.ProjectPageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to list projects: %w", err)
		}

		for _, agg := range resp.Content {
			id := agg.ProjectResponse.Project.Identifier
			if id == "" {
				continue
			}
			if slices.Contains(exclude, id) {
				excluded++
				continue
			}
			projects = append(projects, id)
		}

		if len(resp.Content) == 0 || page+1 >= resp.TotalPages {
			break
		}
	}

	c.logger.Info("found projects",
		"count", len(projects),
		"excluded", excluded)

	return projects, nil
}
