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

// Package harness provides a client for the Harness NextGen REST API to list
// projects and page through pipeline execution summaries. It abstracts the
// request shapes and authentication and offers a retrying wrapper with the
// bounded linear backoff policy used for every call.
//
// The package includes:
//   - A Client interface for listing projects and fetching execution pages
//   - A REST implementation over net/http
//   - A RetryClient decorator with linear backoff
//   - APIError, carrying enough detail to rebuild the failing call as curl
//   - Mock client for testing
//
// Basic usage:
//
//	client := harness.NewRESTClient("https://app.harness.io", harness.Scope{
//	    AccountID: "acct",
//	    OrgID:     "default",
//	}, creds, harness.Options{})
//	page, err := client.FetchExecutions(ctx, harness.ExecutionQuery{
//	    ProjectID: "payments",
//	    Size:      50,
//	    StartTime: start,
//	    EndTime:   end,
//	})
package harness
