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

// Package config provides configuration management for harness-report with
// support for multiple configuration sources and a well-defined precedence
// order.
//
// Configuration sources (in precedence order, highest to lowest):
//  1. Command-line flags
//  2. Environment variables (including those loaded from a .env file)
//  3. YAML configuration file
//  4. Built-in defaults
//
// Credentials are only ever taken from flags or the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	reporterrors "github.com/sirseerhq/harness-report/internal/errors"
	"gopkg.in/yaml.v3"
)

// DefaultEnvFile is loaded when no env file is named explicitly. A missing
// default file is not an error.
const DefaultEnvFile = ".env"

// LoadConfig loads configuration from multiple sources and applies them in
// the correct precedence order. If configPath is provided, it loads from
// that specific file. Otherwise, it searches standard locations:
//   - .harness-report.yaml (current directory)
//   - .harness-report.yml (current directory)
//   - ~/.harness-report/config.yaml
//
// envFile names a dotenv file whose variables are added to the process
// environment without overriding variables that are already set. An empty
// envFile means DefaultEnvFile.
func LoadConfig(configPath, envFile string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if err := loadConfigFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		home, _ := os.UserHomeDir()
		defaultPaths := []string{
			".harness-report.yaml",
			".harness-report.yml",
			filepath.Join(home, ".harness-report", "config.yaml"),
		}

		for _, path := range defaultPaths {
			if _, err := os.Stat(path); err == nil {
				if err := loadConfigFile(path, cfg); err != nil {
					return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
				}
				break
			}
		}
	}

	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	cfg.Output.Path = expandPath(cfg.Output.Path)
	cfg.Output.MetadataPath = expandPath(cfg.Output.MetadataPath)

	return cfg, nil
}

// loadConfigFile reads and parses a YAML config file
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return nil
}

// loadEnvFile loads a dotenv file into the process environment.
func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(cfg *Config) {
	if baseURL := os.Getenv("HARNESS_BASE_URL"); baseURL != "" {
		cfg.Harness.BaseURL = baseURL
	}
	if accountID := os.Getenv("HARNESS_ACCOUNT_ID"); accountID != "" {
		cfg.Harness.AccountID = accountID
	}
	if orgID := os.Getenv("HARNESS_ORG_ID"); orgID != "" {
		cfg.Harness.OrgID = orgID
	}

	if pageSize := os.Getenv("HARNESS_PAGE_SIZE"); pageSize != "" {
		if size, err := parsePositiveInt(pageSize); err == nil {
			cfg.Fetch.PageSize = size
		}
	}
	if out := os.Getenv("HARNESS_REPORT_OUTPUT"); out != "" {
		cfg.Output.Path = out
	}
	if exclude := os.Getenv("HARNESS_EXCLUDE_PROJECTS"); exclude != "" {
		cfg.ExcludeProjects = splitList(exclude)
	}
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home := os.Getenv("HOME")
		if home == "" {
			home = os.Getenv("USERPROFILE") // Windows
		}
		path = filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// parsePositiveInt parses a string to a positive integer
func parsePositiveInt(s string) (int, error) {
	var i int
	_, err := fmt.Sscanf(s, "%d", &i)
	if err != nil {
		return 0, fmt.Errorf("failed to parse integer from '%s': %w", s, err)
	}
	if i <= 0 {
		return 0, fmt.Errorf("value must be positive, got: %d", i)
	}
	return i, nil
}

// splitList splits a comma or whitespace separated list, dropping empty items.
func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

// Validate checks that the resolved configuration can drive a run. It is
// called after flags have been applied so that required identifiers given
// on the command line are taken into account. All failures wrap
// errors.ErrInvalidConfig.
func (c *Config) Validate() error {
	var problems []string

	if c.Harness.BaseURL == "" {
		problems = append(problems, "base URL cannot be empty")
	}
	if c.Harness.AccountID == "" {
		problems = append(problems, "account id is required")
	}
	if c.Harness.OrgID == "" {
		problems = append(problems, "org id is required")
	}
	if c.Fetch.PageSize <= 0 {
		problems = append(problems, fmt.Sprintf("page size must be positive, got: %d", c.Fetch.PageSize))
	}
	if c.Fetch.ProjectPageSize <= 0 {
		problems = append(problems, fmt.Sprintf("project page size must be positive, got: %d", c.Fetch.ProjectPageSize))
	}
	if c.Fetch.RecordLimit <= 0 {
		problems = append(problems, fmt.Sprintf("record limit must be positive, got: %d", c.Fetch.RecordLimit))
	}
	if c.Fetch.BatchWindow <= 0 {
		problems = append(problems, fmt.Sprintf("batch window must be positive, got: %s", c.Fetch.BatchWindow))
	}
	if c.Fetch.EnvironmentType == "" {
		problems = append(problems, "environment type cannot be empty")
	}
	if c.Fetch.MinDelay < 0 || c.Fetch.MaxDelay < c.Fetch.MinDelay {
		problems = append(problems, fmt.Sprintf("invalid delay range %s..%s", c.Fetch.MinDelay, c.Fetch.MaxDelay))
	}
	if c.Retry.MaxAttempts < 1 {
		problems = append(problems, fmt.Sprintf("max attempts must be at least 1, got: %d", c.Retry.MaxAttempts))
	}
	if c.Retry.BackoffStep < 0 {
		problems = append(problems, fmt.Sprintf("backoff step cannot be negative, got: %s", c.Retry.BackoffStep))
	}
	if c.Retry.RequestTimeout <= 0 {
		problems = append(problems, fmt.Sprintf("request timeout must be positive, got: %s", c.Retry.RequestTimeout))
	}
	if c.Output.Path == "" {
		problems = append(problems, "output path cannot be empty")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", reporterrors.ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
