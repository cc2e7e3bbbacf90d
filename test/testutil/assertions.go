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

package testutil

import (
	"strings"
	"testing"
)

// AssertCSVRows checks that a CSV file has the given header and rowCount data
// rows, and returns the data rows.
func AssertCSVRows(t *testing.T, path string, header []string, rowCount int) [][]string {
	t.Helper()

	records := ReadCSV(t, path)
	if len(records) == 0 {
		t.Fatalf("CSV file %s is empty, expected a header", path)
	}

	if strings.Join(records[0], ",") != strings.Join(header, ",") {
		t.Errorf("CSV header = %v, want %v", records[0], header)
	}

	rows := records[1:]
	if len(rows) != rowCount {
		t.Errorf("Expected %d data rows, got %d", rowCount, len(rows))
	}

	return rows
}

// Column returns the values of column index across rows
func Column(rows [][]string, index int) []string {
	values := make([]string, 0, len(rows))
	for _, row := range rows {
		if index < len(row) {
			values = append(values, row[index])
		}
	}
	return values
}

// AssertContainsString checks if a string contains a substring
func AssertContainsString(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Errorf("Expected string to contain %q, got: %s", needle, haystack)
	}
}

// AssertNotContainsString checks if a string does not contain a substring
func AssertNotContainsString(t *testing.T, haystack, needle string) {
	t.Helper()
	if strings.Contains(haystack, needle) {
		t.Errorf("Expected string to NOT contain %q, got: %s", needle, haystack)
	}
}

// AssertErrorContains checks if an error contains expected text
func AssertErrorContains(t *testing.T, err error, expected string) {
	t.Helper()
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), expected) {
		t.Errorf("Expected error to contain %q, got: %v", expected, err)
	}
}
