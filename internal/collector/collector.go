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
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/sirseerhq/harness-report/internal/config"
	"github.com/sirseerhq/harness-report/internal/harness"
)

// Options controls paging, batching and pacing.
type Options struct {
	PageSize        int
	ProjectPageSize int
	// RecordLimit is the most records the API returns for one query.
	RecordLimit int
	// BatchWindow is the sub-window length used once a project exceeds RecordLimit.
	BatchWindow     time.Duration
	EnvironmentType string
	// MinDelay and MaxDelay bound the random pause between requests.
	MinDelay time.Duration
	MaxDelay time.Duration
}

// OptionsFromConfig copies the fetch settings of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		PageSize:        cfg.Fetch.PageSize,
		ProjectPageSize: cfg.Fetch.ProjectPageSize,
		RecordLimit:     cfg.Fetch.RecordLimit,
		BatchWindow:     cfg.Fetch.BatchWindow,
		EnvironmentType: cfg.Fetch.EnvironmentType,
		MinDelay:        cfg.Fetch.MinDelay,
		MaxDelay:        cfg.Fetch.MaxDelay,
	}
}

// BatchObserver is told how many windows a project's fetch was split into.
type BatchObserver interface {
	RecordBatches(projectID string, batches int)
}

// Collector fetches projects and execution records through a harness.Client.
type Collector struct {
	client   harness.Client
	opts     Options
	logger   *slog.Logger
	observer BatchObserver

	// sleep waits for d or until ctx is done
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Collector. Zero-valued options fall back to the defaults in
// package config.
func New(client harness.Client, opts Options, logger *slog.Logger) *Collector {
	if opts.PageSize <= 0 {
		opts.PageSize = config.DefaultPageSize
	}
	if opts.ProjectPageSize <= 0 {
		opts.ProjectPageSize = config.DefaultProjectPageSize
	}
	if opts.RecordLimit <= 0 {
		opts.RecordLimit = config.DefaultRecordLimit
	}
	if opts.BatchWindow <= 0 {
		opts.BatchWindow = config.DefaultBatchWindow
	}
	if opts.EnvironmentType == "" {
		opts.EnvironmentType = config.DefaultEnvironmentType
	}
	if opts.MaxDelay < opts.MinDelay {
		opts.MaxDelay = opts.MinDelay
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Collector{
		client: client,
		opts:   opts,
		logger: logger,
		sleep:  sleepContext,
	}
}

// SetBatchObserver registers o to receive per-project batch counts.
func (c *Collector) SetBatchObserver(o BatchObserver) {
	c.observer = o
}

// Pause waits a random duration between MinDelay and MaxDelay.
func (c *Collector) Pause(ctx context.Context) error {
	d := c.opts.MinDelay
	if spread := c.opts.MaxDelay - c.opts.MinDelay; spread > 0 {
		d += rand.N(spread)
	}
	if d <= 0 {
		return ctx.Err()
	}
	return c.sleep(ctx, d)
}

func (c *Collector) recordBatches(projectID string, n int) {
	if c.observer != nil {
		c.observer.RecordBatches(projectID, n)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
