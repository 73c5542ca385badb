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

package ticker

import (
	"sync"
	"time"
)

// Ticker delivers ticks at intervals.
// A tick is dropped when the receiver is not ready, so slow receivers never
// accumulate a backlog.
type Ticker struct {
	Ticks     chan time.Time
	intervals time.Duration
	mutex     sync.Mutex
	ticking   bool
	stopCh    chan struct{}
	stopped   chan struct{}
}

// New creates an instance of Ticker that ticks every intervals.
func New(intervals time.Duration) *Ticker {
	if intervals <= 0 {
		panic("intervals must be greater than zero")
	}
	return &Ticker{
		Ticks:     make(chan time.Time),
		intervals: intervals,
	}
}

// Start the ticker. Ticks are delivered on the ticker's
// channel until Stop is called
func (t *Ticker) Start() {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if t.ticking {
		return
	}
	t.stopCh = make(chan struct{})
	t.stopped = make(chan struct{})
	t.ticking = true
	go t.tickingLoop(t.stopCh, t.stopped)
}

// Stop stops the ticker and waits for the ticking goroutine to exit.
// No ticks are delivered after Stop returns.
func (t *Ticker) Stop() {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	if !t.ticking {
		return
	}
	t.ticking = false
	close(t.stopCh)
	<-t.stopped
}

// Ticking returns true when the ticker is ticking
// and false when it is stopped
func (t *Ticker) Ticking() bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.ticking
}

func (t *Ticker) tickingLoop(stopCh, stopped chan struct{}) {
	defer close(stopped)
	ticker := time.NewTicker(t.intervals)
	defer ticker.Stop()
	for {
		select {
		case tc := <-ticker.C:
			select {
			case t.Ticks <- tc:
			case <-stopCh:
				return
			default:
			}
		case <-stopCh:
			return
		}
	}
}
