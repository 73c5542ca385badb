// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package duration

import (
	"strconv"
	"strings"
	"time"
)

var units = []struct {
	name  string
	value time.Duration
}{
	{"h", time.Hour},
	{"m", time.Minute},
	{"s", time.Second},
	{"ms", time.Millisecond},
	{"us", time.Microsecond},
	{"ns", time.Nanosecond},
}

// Format returns a compact human-readable duration. Negative durations keep
// their sign so that a clock running behind reads differently from one
// running ahead.
//
// Examples:
//   - 90 * time.Second => "1m 30s"
//   - 1500 * time.Microsecond => "1ms 500us"
//   - -2 * time.Millisecond => "-2ms"
func Format(d time.Duration) string {
	if d == 0 {
		return "0s"
	}

	sign := ""
	u := uint64(d)
	if d < 0 {
		sign = "-"
		u = -u
	}

	parts := make([]string, 0, len(units))
	for _, unit := range units {
		step := uint64(unit.value)
		if u >= step {
			parts = append(parts, strconv.FormatUint(u/step, 10)+unit.name)
			u %= step
		}
	}
	return sign + strings.Join(parts, " ")
}
