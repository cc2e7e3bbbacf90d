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

// Package config types define the configuration structures used throughout
// harness-report. These types represent settings that can be loaded from
// YAML configuration files, environment variables, or command-line flags.
package config

import "time"

// Default values for a run.
const (
	DefaultBaseURL         = "https://app.harness.io"
	DefaultPageSize        = 50
	DefaultProjectPageSize = 20
	DefaultRecordLimit     = 10000
	DefaultBatchWindow     = 10 * 24 * time.Hour
	DefaultEnvironmentType = "Production"
	DefaultOutputPath      = "pipeline_executions.csv"

	// DefaultStartTime is 2025-01-01T00:00:00Z in epoch milliseconds.
	DefaultStartTime int64 = 1735689600000
)

// Config represents the complete configuration for harness-report.
// It consolidates settings from various sources and provides a unified
// interface for accessing configuration values throughout the application.
type Config struct {
	Harness         HarnessConfig `yaml:"harness"`
	Fetch           FetchConfig   `yaml:"fetch"`
	Retry           RetryConfig   `yaml:"retry"`
	Output          OutputConfig  `yaml:"output"`
	ExcludeProjects []string      `yaml:"exclude_projects"`
}

// HarnessConfig identifies the Harness installation and the account and
// organization a run is scoped to. Credentials are never read from the
// config file, only the names of the environment variables holding them.
type HarnessConfig struct {
	BaseURL      string `yaml:"base_url"`
	AccountID    string `yaml:"account_id"`
	OrgID        string `yaml:"org_id"`
	AuthTokenEnv string `yaml:"auth_token_env"`
	APIKeyEnv    string `yaml:"api_key_env"`
}

// FetchConfig controls pagination, batching and pacing of execution queries.
type FetchConfig struct {
	PageSize        int           `yaml:"page_size"`
	ProjectPageSize int           `yaml:"project_page_size"`
	RecordLimit     int           `yaml:"record_limit"`
	BatchWindow     time.Duration `yaml:"batch_window"`
	EnvironmentType string        `yaml:"environment_type"`
	MinDelay        time.Duration `yaml:"min_delay"`
	MaxDelay        time.Duration `yaml:"max_delay"`
}

// RetryConfig controls the bounded retry policy wrapped around every API call.
// Waits grow linearly: BackoffStep after the first failure, twice that after
// the second, and so on.
type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts"`
	BackoffStep    time.Duration `yaml:"backoff_step"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// OutputConfig names the files a run produces.
type OutputConfig struct {
	Path         string `yaml:"path"`
	MetadataPath string `yaml:"metadata_path"`
}

// DefaultConfig returns a Config with the defaults used against app.harness.io.
func DefaultConfig() *Config {
	return &Config{
		Harness: HarnessConfig{
			BaseURL:      DefaultBaseURL,
			AuthTokenEnv: "HARNESS_AUTH_TOKEN",
			APIKeyEnv:    "HARNESS_API_KEY",
		},
		Fetch: FetchConfig{
			PageSize:        DefaultPageSize,
			ProjectPageSize: DefaultProjectPageSize,
			RecordLimit:     DefaultRecordLimit,
			BatchWindow:     DefaultBatchWindow,
			EnvironmentType: DefaultEnvironmentType,
			MinDelay:        500 * time.Millisecond,
			MaxDelay:        time.Second,
		},
		Retry: RetryConfig{
			MaxAttempts:    3,
			BackoffStep:    2 * time.Second,
			RequestTimeout: 30 * time.Second,
		},
		Output: OutputConfig{
			Path: DefaultOutputPath,
		},
	}
}
