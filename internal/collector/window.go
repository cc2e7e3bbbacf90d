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

package collector

import (
	"fmt"
	"time"
)

// Window is a half-open time range [Start, End) in epoch milliseconds.
type Window struct {
	Start int64
	End   int64
}

// NewWindow returns the window between two times.
func NewWindow(start, end time.Time) Window {
	return Window{Start: start.UnixMilli(), End: end.UnixMilli()}
}

// Empty reports whether the window contains no instant.
func (w Window) Empty() bool {
	return w.End <= w.Start
}

// APIRange returns the inclusive startTime and endTime sent to the API.
func (w Window) APIRange() (startTime, endTime int64) {
	return w.Start, w.End - 1
}

// Split cuts the window into consecutive sub-windows of length step. The
// last sub-window ends at w.End. A non-positive step returns the window
// unchanged.
func (w Window) Split(step time.Duration) []Window {
	if w.Empty() {
		return nil
	}
	ms := step.Milliseconds()
	if ms <= 0 {
		return []Window{w}
	}

	windows := make([]Window, 0, (w.End-w.Start+ms-1)/ms)
	for start := w.Start; start < w.End; start += ms {
		windows = append(windows, Window{Start: start, End: min(start+ms, w.End)})
	}
	return windows
}

func (w Window) String() string {
	return fmt.Sprintf("%s..%s",
		time.UnixMilli(w.Start).UTC().Format(time.DateTime),
		time.UnixMilli(w.End).UTC().Format(time.DateTime))
}
