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

package memory

import "go.uber.org/atomic"

// Stats is a snapshot of the accesses served by a storage component
type Stats struct {
	Reads        uint64
	Writes       uint64
	BytesRead    uint64
	BytesWritten uint64
}

// counters hold the live access counts of a storage component
type counters struct {
	reads        *atomic.Uint64
	writes       *atomic.Uint64
	bytesRead    *atomic.Uint64
	bytesWritten *atomic.Uint64
}

func newCounters() counters {
	return counters{
		reads:        atomic.NewUint64(0),
		writes:       atomic.NewUint64(0),
		bytesRead:    atomic.NewUint64(0),
		bytesWritten: atomic.NewUint64(0),
	}
}

func (c counters) read(length uint64) {
	c.reads.Inc()
	c.bytesRead.Add(length)
}

func (c counters) write(length uint64) {
	c.writes.Inc()
	c.bytesWritten.Add(length)
}

func (c counters) snapshot() Stats {
	return Stats{
		Reads:        c.reads.Load(),
		Writes:       c.writes.Load(),
		BytesRead:    c.bytesRead.Load(),
		BytesWritten: c.bytesWritten.Load(),
	}
}
