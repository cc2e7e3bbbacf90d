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
	"iter"

	"github.com/sirseerhq/harness-report/internal/harness"
)

// ProjectExecutions returns every Production record of a project in w. It
// probes the window with a first page; if the reported total fits in the
// record limit the probe is reused as page 0 of a single paginated fetch,
// otherwise w is split into BatchWindow sub-windows fetched oldest first.
func (c *Collector) ProjectExecutions(ctx context.Context, projectID string, w Window) iter.Seq2[harness.Record, error] {
	return func(yield func(harness.Record, error) bool) {
		if w.Empty() {
			return
		}

		probe, err := c.fetchPage(ctx, projectID, w, 0)
		if err != nil {
			yield(harness.Record{}, err)
			return
		}

		if probe.TotalElements <= c.opts.RecordLimit {
			c.recordBatches(projectID, 1)
			for rec, err := range c.paginate(ctx, projectID, w, probe) {
				if !yield(rec, err) {
					return
				}
			}
			return
		}

		windows := w.Split(c.opts.BatchWindow)
		c.recordBatches(projectID, len(windows))
		c.logger.Info("splitting project into time batches",
			"project", projectID,
			"total", probe.TotalElements,
			"limit", c.opts.RecordLimit,
			"batches", len(windows),
			"batch_window", c.opts.BatchWindow)

		for i, sub := range windows {
			if err := c.Pause(ctx); err != nil {
				yield(harness.Record{}, err)
				return
			}

			c.logger.Debug("fetching batch",
				"project", projectID,
				"batch", i+1,
				"of", len(windows),
				"window", sub.String())

			for rec, err := range c.paginate(ctx, projectID, sub, nil) {
				if !yield(rec, err) {
					return
				}
			}
		}
	}
}
