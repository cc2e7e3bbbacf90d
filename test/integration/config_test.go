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

package integration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirseerhq/harness-report/test/testutil"
)

// TestConfigPrecedence checks flags > environment > .env file > config file.
func TestConfigPrecedence(t *testing.T) {
	skipUnlessIntegration(t)
	binary := buildBinary(t)

	tests := []struct {
		name    string
		fileOrg string
		dotenv  string
		env     []string
		args    []string
		wantOrg string
	}{
		{
			name:    "config file",
			fileOrg: "from-file",
			wantOrg: "from-file",
		},
		{
			name:    "dotenv overrides file",
			fileOrg: "from-file",
			dotenv:  "HARNESS_ORG_ID=from-dotenv\n",
			wantOrg: "from-dotenv",
		},
		{
			name:    "environment overrides dotenv",
			fileOrg: "from-file",
			dotenv:  "HARNESS_ORG_ID=from-dotenv\n",
			env:     []string{"HARNESS_ORG_ID=from-env"},
			wantOrg: "from-env",
		},
		{
			name:    "flag overrides everything",
			fileOrg: "from-file",
			dotenv:  "HARNESS_ORG_ID=from-dotenv\n",
			env:     []string{"HARNESS_ORG_ID=from-env"},
			args:    []string{"--org-id", "from-flag"},
			wantOrg: "from-flag",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := testutil.NewHarnessServer(t)
			server.AddProjects("web")

			dir := t.TempDir()
			cfg := fastConfig(t, dir, server.URL, "  account_id: acct\n  org_id: "+tt.fileOrg+"\n")
			if tt.dotenv != "" {
				if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(tt.dotenv), 0o600); err != nil {
					t.Fatal(err)
				}
			}

			env := append([]string{"HARNESS_API_KEY=k"}, tt.env...)
			args := append([]string{"fetch", "--config", cfg}, tt.args...)
			result := runCLI(t, binary, dir, env, args...)
			if result.exitCode != 0 {
				t.Fatalf("exit code = %d\nstderr: %s", result.exitCode, result.stderr)
			}

			reqs := server.Requests()
			if len(reqs) == 0 {
				t.Fatal("no requests made")
			}
			if got := reqs[0].Query.Get("orgIdentifier"); got != tt.wantOrg {
				t.Errorf("orgIdentifier = %q, want %q", got, tt.wantOrg)
			}
		})
	}
}
