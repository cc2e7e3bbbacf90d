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

package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sync"
)

// Writer is a CSV writer with a fixed header.
type Writer struct {
	mu        sync.Mutex
	csv       *csv.Writer
	header    []string
	count     int
	bytes     int64
	closeFunc func() error
	closed    bool
}

// countingWriter tracks how many bytes reach the destination.
type countingWriter struct {
	w io.Writer
	n *int64
}

func (c countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	*c.n += int64(n)
	return n, err
}

// NewWriter creates a CSV writer on w and writes header immediately.
func NewWriter(w io.Writer, header []string) (*Writer, error) {
	writer := &Writer{header: header}
	writer.csv = csv.NewWriter(countingWriter{w: w, n: &writer.bytes})

	if err := writer.writeHeader(); err != nil {
		return nil, err
	}
	return writer, nil
}

// NewFileWriter creates or truncates filename and writes header to it.
// The caller must call Close() when done to ensure the file is properly closed.
func NewFileWriter(filename string, header []string) (*Writer, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	writer, err := NewWriter(file, header)
	if err != nil {
		file.Close()
		return nil, err
	}
	writer.closeFunc = file.Close
	return writer, nil
}

func (w *Writer) writeHeader() error {
	if len(w.header) == 0 {
		return nil
	}
	if err := w.csv.Write(w.header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	return nil
}

// WriteRows appends rows and flushes. Each row must have as many fields as
// the header.
func (w *Writer) WriteRows(rows [][]string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("write to closed writer")
	}

	for _, row := range rows {
		if len(w.header) > 0 && len(row) != len(w.header) {
			return fmt.Errorf("row has %d fields, expected %d", len(row), len(w.header))
		}
		if err := w.csv.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
		w.count++
	}

	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return fmt.Errorf("failed to flush rows: %w", err)
	}
	return nil
}

// Count returns the number of data rows written.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Size returns the number of bytes written, header included.
func (w *Writer) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.bytes
}

// Close flushes and closes the underlying file, if any. It is safe to call
// more than once.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	w.csv.Flush()
	flushErr := w.csv.Error()

	if w.closeFunc != nil {
		if err := w.closeFunc(); err != nil {
			return err
		}
	}
	return flushErr
}
