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

// Package output writes report rows as CSV.
//
// A Writer writes the header row once when it is created and then appends
// rows in batches. Every WriteRows call is flushed before it returns, so the
// rows of a completed project are on disk even if a later project fails or
// the run is interrupted.
//
// Example usage:
//
//	w, err := output.NewFileWriter("pipeline_executions.csv", report.Header())
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//
//	if err := w.WriteRows(rows); err != nil {
//	    return err
//	}
//
//	fmt.Printf("Wrote %d rows\n", w.Count())
package output
