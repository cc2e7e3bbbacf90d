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

package harness

import "context"

// Client defines the interface for interacting with the Harness API.
// This interface allows for easy mocking in tests.
type Client interface {
	// ListProjects retrieves one page of the organization's projects.
	// pageIndex is zero based.
	ListProjects(ctx context.Context, pageIndex, pageSize int) (*ProjectPage, error)

	// FetchExecutions retrieves one page of CD pipeline execution summaries
	// for a project and an inclusive time range.
	FetchExecutions(ctx context.Context, q ExecutionQuery) (*ExecutionPage, error)
}
