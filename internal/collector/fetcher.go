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
	"iter"

	"github.com/sirseerhq/harness-report/internal/harness"
)

// Executions returns the Production records of one project in window w,
// fetching page after page until the reported total has been read or the
// API returns an empty page. The sequence stops after the first error.
func (c *Collector) Executions(ctx context.Context, projectID string, w Window) iter.Seq2[harness.Record, error] {
	return c.paginate(ctx, projectID, w, nil)
}

// paginate walks the pages of w. If first is non-nil it is used as page 0
// instead of fetching it again.
func (c *Collector) paginate(ctx context.Context, projectID string, w Window, first *harness.ExecutionPage) iter.Seq2[harness.Record, error] {
	return func(yield func(harness.Record, error) bool) {
		if w.Empty() {
			return
		}

		seen := 0
		for page := 0; ; page++ {
			resp := first
			if page > 0 {
				if err := c.Pause(ctx); err != nil {
					yield(harness.Record{}, err)
					return
				}
			}
			if page > 0 || resp == nil {
				var err error
				if resp, err = c.fetchPage(ctx, projectID, w, page); err != nil {
					yield(harness.Record{}, err)
					return
				}
			}

			if page == 0 && resp.TotalElements > c.opts.RecordLimit {
				c.logger.Warn("window exceeds the API record limit, results will be truncated",
					"project", projectID,
					"window", w.String(),
					"total", resp.TotalElements,
					"limit", c.opts.RecordLimit)
			}
			if len(resp.Content) == 0 {
				return
			}

			for _, raw := range resp.Content {
				seen++

				summary, err := harness.DecodeSummary(raw)
				if err != nil {
					c.logger.Warn("skipping malformed execution",
						"project", projectID,
						"page", page,
						"error", err)
					continue
				}

				for _, rec := range harness.ExtractRecords(projectID, summary, c.opts.EnvironmentType) {
					if !yield(rec, nil) {
						return
					}
				}
			}

			c.logger.Debug("fetched execution page",
				"project", projectID,
				"page", page,
				"seen", seen,
				"total", resp.TotalElements)

			if seen >= resp.TotalElements {
				return
			}
		}
	}
}

func (c *Collector) fetchPage(ctx context.Context, projectID string, w Window, page int) (*harness.ExecutionPage, error) {
	start, end := w.APIRange()
	resp, err := c.client.FetchExecutions(ctx, harness.ExecutionQuery{
		ProjectID: projectID,
		Page:      page,
		Size:      c.opts.PageSize,
		StartTime: start,
		EndTime:   end,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch executions for project %s (page %d, %s): %w", projectID, page, w, err)
	}
	return resp, nil
}
