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

// Package main implements the harness-report command-line interface.
// It lists the projects of a Harness organization, fetches their pipeline
// executions and writes the Production deployments to a CSV file.
//
// Usage:
//
//	harness-report fetch --account-id <id> --org-id <id> [flags]
//
// Example:
//
//	export HARNESS_API_KEY=pat.xxxx
//	harness-report fetch --account-id abc123 --org-id default \
//	    --start-date 2025-01-01 --end-date 2025-03-31 --output q1.csv
//
// Exactly one credential is required, given with --auth-token or --api-key
// or through HARNESS_AUTH_TOKEN / HARNESS_API_KEY.
//
// A project whose fetch fails after retries is logged with a curl command
// reproducing the failing request and skipped; the run carries on with the
// next project.
//
// Exit codes:
//   - 0: Success, including runs where some projects were skipped
//   - 1: General or configuration error
//   - 2: Authentication rejected while listing projects
//   - 3: Network failure while listing projects
package main
