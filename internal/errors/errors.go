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

// Package errors defines sentinel errors for consistent error handling across the application.
// These errors map to specific exit codes in the CLI for proper scripting support.
package errors

import "errors"

// Sentinel errors for consistent error handling and exit code mapping
var (
	// ErrInvalidConfig indicates the run was misconfigured (auth, scope, time range).
	// Reported before any network call. Maps to exit code 1.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnauthorized indicates Harness rejected the supplied credential.
	// Maps to exit code 2.
	ErrUnauthorized = errors.New("harness authentication failed")

	// ErrNotFound indicates the account, organization or project does not exist
	// or is not visible to the credential.
	ErrNotFound = errors.New("harness resource not found")

	// ErrNetworkFailure indicates a network connection problem.
	// Maps to exit code 3.
	ErrNetworkFailure = errors.New("network connection failed")

	// ErrRateLimit indicates the Harness API rate limiter rejected the request.
	ErrRateLimit = errors.New("harness rate limit exceeded")

	// ErrRetriesExhausted indicates every attempt allowed by the retry policy failed.
	ErrRetriesExhausted = errors.New("retries exhausted")
)
