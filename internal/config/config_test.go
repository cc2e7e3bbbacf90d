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

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	reporterrors "github.com/sirseerhq/harness-report/internal/errors"
)

// validConfig returns defaults with the identifiers a run requires.
func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Harness.AccountID = "acct"
	cfg.Harness.OrgID = "default"
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Harness.BaseURL != "https://app.harness.io" {
		t.Errorf("BaseURL = %s, want https://app.harness.io", cfg.Harness.BaseURL)
	}
	if cfg.Harness.AuthTokenEnv != "HARNESS_AUTH_TOKEN" {
		t.Errorf("AuthTokenEnv = %s, want HARNESS_AUTH_TOKEN", cfg.Harness.AuthTokenEnv)
	}
	if cfg.Fetch.PageSize != 50 {
		t.Errorf("PageSize = %d, want 50", cfg.Fetch.PageSize)
	}
	if cfg.Fetch.RecordLimit != 10000 {
		t.Errorf("RecordLimit = %d, want 10000", cfg.Fetch.RecordLimit)
	}
	if cfg.Fetch.BatchWindow != 240*time.Hour {
		t.Errorf("BatchWindow = %s, want 240h", cfg.Fetch.BatchWindow)
	}
	if cfg.Fetch.EnvironmentType != "Production" {
		t.Errorf("EnvironmentType = %s, want Production", cfg.Fetch.EnvironmentType)
	}
	if cfg.Retry.MaxAttempts != 3 || cfg.Retry.BackoffStep != 2*time.Second {
		t.Errorf("Retry = %+v, want 3 attempts with 2s step", cfg.Retry)
	}
	if cfg.Retry.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %s, want 30s", cfg.Retry.RequestTimeout)
	}
	if cfg.Output.Path != "pipeline_executions.csv" {
		t.Errorf("Output.Path = %s, want pipeline_executions.csv", cfg.Output.Path)
	}
}

func TestLoadConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
harness:
  base_url: https://harness.internal.example.com/gateway
  account_id: acct123
  org_id: platform
  api_key_env: MY_HARNESS_KEY

fetch:
  page_size: 100
  batch_window: 120h
  environment_type: Production
  min_delay: 0s
  max_delay: 250ms

retry:
  max_attempts: 5
  backoff_step: 1s

output:
  path: /tmp/report.csv
  metadata_path: /tmp/report.json

exclude_projects:
  - sandbox
  - legacy
`
	if err := os.WriteFile(configPath, []byte(configContent), 0o644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(configPath, "")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Harness.BaseURL != "https://harness.internal.example.com/gateway" {
		t.Errorf("BaseURL = %s", cfg.Harness.BaseURL)
	}
	if cfg.Harness.AccountID != "acct123" || cfg.Harness.OrgID != "platform" {
		t.Errorf("scope = %s/%s, want acct123/platform", cfg.Harness.AccountID, cfg.Harness.OrgID)
	}
	if cfg.Harness.APIKeyEnv != "MY_HARNESS_KEY" {
		t.Errorf("APIKeyEnv = %s, want MY_HARNESS_KEY", cfg.Harness.APIKeyEnv)
	}
	// Unset keys keep their defaults.
	if cfg.Harness.AuthTokenEnv != "HARNESS_AUTH_TOKEN" {
		t.Errorf("AuthTokenEnv = %s, want default", cfg.Harness.AuthTokenEnv)
	}
	if cfg.Fetch.PageSize != 100 {
		t.Errorf("PageSize = %d, want 100", cfg.Fetch.PageSize)
	}
	if cfg.Fetch.BatchWindow != 120*time.Hour {
		t.Errorf("BatchWindow = %s, want 120h", cfg.Fetch.BatchWindow)
	}
	if cfg.Fetch.MaxDelay != 250*time.Millisecond {
		t.Errorf("MaxDelay = %s, want 250ms", cfg.Fetch.MaxDelay)
	}
	if cfg.Retry.MaxAttempts != 5 || cfg.Retry.BackoffStep != time.Second {
		t.Errorf("Retry = %+v", cfg.Retry)
	}
	if cfg.Output.MetadataPath != "/tmp/report.json" {
		t.Errorf("MetadataPath = %s", cfg.Output.MetadataPath)
	}
	if strings.Join(cfg.ExcludeProjects, ",") != "sandbox,legacy" {
		t.Errorf("ExcludeProjects = %v", cfg.ExcludeProjects)
	}
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), "")
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("fetch: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path, ""); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("HARNESS_BASE_URL", "https://custom.harness.example.com")
	t.Setenv("HARNESS_ACCOUNT_ID", "env-acct")
	t.Setenv("HARNESS_ORG_ID", "env-org")
	t.Setenv("HARNESS_PAGE_SIZE", "75")
	t.Setenv("HARNESS_REPORT_OUTPUT", "/env/out.csv")
	t.Setenv("HARNESS_EXCLUDE_PROJECTS", "a,b c")

	cfg, err := LoadConfig("", "")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Harness.BaseURL != "https://custom.harness.example.com" {
		t.Errorf("BaseURL = %s", cfg.Harness.BaseURL)
	}
	if cfg.Harness.AccountID != "env-acct" || cfg.Harness.OrgID != "env-org" {
		t.Errorf("scope = %s/%s", cfg.Harness.AccountID, cfg.Harness.OrgID)
	}
	if cfg.Fetch.PageSize != 75 {
		t.Errorf("PageSize = %d, want 75", cfg.Fetch.PageSize)
	}
	if cfg.Output.Path != "/env/out.csv" {
		t.Errorf("Output.Path = %s", cfg.Output.Path)
	}
	if strings.Join(cfg.ExcludeProjects, "|") != "a|b|c" {
		t.Errorf("ExcludeProjects = %v", cfg.ExcludeProjects)
	}
}

func TestEnvFile(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), "test.env")
	content := "HARNESS_ORG_ID=from-dotenv\nHARNESS_ACCOUNT_ID=from-dotenv-acct\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	// Already-set variables are not overridden by the file.
	t.Setenv("HARNESS_ACCOUNT_ID", "from-process")
	// Registers cleanup of the variable the file is about to set.
	t.Setenv("HARNESS_ORG_ID", "")
	os.Unsetenv("HARNESS_ORG_ID")

	cfg, err := LoadConfig("", envPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Harness.OrgID != "from-dotenv" {
		t.Errorf("OrgID = %s, want from-dotenv", cfg.Harness.OrgID)
	}
	if cfg.Harness.AccountID != "from-process" {
		t.Errorf("AccountID = %s, want from-process", cfg.Harness.AccountID)
	}
}

func TestEnvFile_MissingExplicit(t *testing.T) {
	_, err := LoadConfig("", filepath.Join(t.TempDir(), "nope.env"))
	if err == nil {
		t.Fatal("expected error for missing explicit env file")
	}
}

func TestResolveCredentials(t *testing.T) {
	tests := []struct {
		name       string
		flagToken  string
		flagKey    string
		envToken   string
		envKey     string
		wantMethod AuthMethod
		wantHeader string
		wantValue  string
		wantErr    bool
	}{
		{
			name:       "token flag",
			flagToken:  "abc",
			wantMethod: AuthBearer,
			wantHeader: "Authorization",
			wantValue:  "Bearer abc",
		},
		{
			name:       "token flag already carrying Bearer",
			flagToken:  "Bearer abc",
			wantMethod: AuthBearer,
			wantHeader: "Authorization",
			wantValue:  "Bearer abc",
		},
		{
			name:       "token flag with lower case scheme",
			flagToken:  "bearer abc",
			wantMethod: AuthBearer,
			wantHeader: "Authorization",
			wantValue:  "Bearer abc",
		},
		{
			name:       "token flag with upper case scheme and extra spaces",
			flagToken:  "BEARER   abc",
			wantMethod: AuthBearer,
			wantHeader: "Authorization",
			wantValue:  "Bearer abc",
		},
		{
			name:       "token that only starts with the word bearer",
			flagToken:  "bearerabc",
			wantMethod: AuthBearer,
			wantHeader: "Authorization",
			wantValue:  "Bearer bearerabc",
		},
		{
			name:       "api key flag",
			flagKey:    "pat.xyz",
			wantMethod: AuthAPIKey,
			wantHeader: "x-api-key",
			wantValue:  "pat.xyz",
		},
		{
			name:      "both flags",
			flagToken: "abc",
			flagKey:   "pat.xyz",
			wantErr:   true,
		},
		{
			name:    "neither",
			wantErr: true,
		},
		{
			name:       "api key from env",
			envKey:     "pat.env",
			wantMethod: AuthAPIKey,
			wantHeader: "x-api-key",
			wantValue:  "pat.env",
		},
		{
			name:     "both from env",
			envToken: "abc",
			envKey:   "pat.env",
			wantErr:  true,
		},
		{
			name:       "flag wins over env as a whole",
			flagToken:  "flag-token",
			envKey:     "pat.env",
			wantMethod: AuthBearer,
			wantHeader: "Authorization",
			wantValue:  "Bearer flag-token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HARNESS_AUTH_TOKEN", tt.envToken)
			t.Setenv("HARNESS_API_KEY", tt.envKey)

			creds, err := ResolveCredentials(tt.flagToken, tt.flagKey, DefaultConfig())
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !errors.Is(err, reporterrors.ErrInvalidConfig) {
					t.Errorf("error %v does not wrap ErrInvalidConfig", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if creds.Method != tt.wantMethod {
				t.Errorf("Method = %v, want %v", creds.Method, tt.wantMethod)
			}
			name, value := creds.Header()
			if name != tt.wantHeader || value != tt.wantValue {
				t.Errorf("Header() = %s: %s, want %s: %s", name, value, tt.wantHeader, tt.wantValue)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: "",
		},
		{
			name:    "missing account",
			mutate:  func(c *Config) { c.Harness.AccountID = "" },
			wantErr: "account id is required",
		},
		{
			name:    "missing org",
			mutate:  func(c *Config) { c.Harness.OrgID = "" },
			wantErr: "org id is required",
		},
		{
			name:    "zero page size",
			mutate:  func(c *Config) { c.Fetch.PageSize = 0 },
			wantErr: "page size must be positive",
		},
		{
			name:    "zero batch window",
			mutate:  func(c *Config) { c.Fetch.BatchWindow = 0 },
			wantErr: "batch window must be positive",
		},
		{
			name:    "inverted delay range",
			mutate:  func(c *Config) { c.Fetch.MinDelay = 2 * time.Second; c.Fetch.MaxDelay = time.Second },
			wantErr: "invalid delay range",
		},
		{
			name:    "no attempts",
			mutate:  func(c *Config) { c.Retry.MaxAttempts = 0 },
			wantErr: "max attempts must be at least 1",
		},
		{
			name:    "empty base url",
			mutate:  func(c *Config) { c.Harness.BaseURL = "" },
			wantErr: "base URL cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want %s", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %s", err, tt.wantErr)
			}
			if !errors.Is(err, reporterrors.ErrInvalidConfig) {
				t.Errorf("Validate() error %v does not wrap ErrInvalidConfig", err)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home := os.Getenv("HOME")
	if home == "" {
		home = os.Getenv("USERPROFILE")
	}

	tests := []struct {
		input string
		want  string
	}{
		{"~/report.csv", filepath.Join(home, "report.csv")},
		{"/absolute/path.csv", "/absolute/path.csv"},
		{"relative/path.csv", "relative/path.csv"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := expandPath(tt.input); got != tt.want {
			t.Errorf("expandPath(%s) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestParsePositiveInt(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"50", 50, false},
		{"1", 1, false},
		{"0", 0, true},
		{"-1", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := parsePositiveInt(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("parsePositiveInt(%s) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parsePositiveInt(%s) = %d, want %d", tt.input, got, tt.want)
		}
	}
}
