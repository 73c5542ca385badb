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

package clock

import (
	"math"
	"time"
)

// Timeline holds the running totals of an oscillator. It is owned by the
// pacing loop and survives a stop so that the next run resumes it.
type Timeline struct {
	start           time.Time
	pausedAt        time.Time
	paused          bool
	secondsPerCycle float64
	cycles          uint64
	batches         uint64
	overruns        uint64
	drift           time.Duration
}

// NewTimeline starts a timeline at start for the given frequency and speed multiplier
func NewTimeline(start time.Time, frequency, multiplier float64) *Timeline {
	return &Timeline{
		start:           start,
		secondsPerCycle: multiplier / frequency,
	}
}

// Nominal returns the wall-clock duration of cycles at the target frequency
func (t *Timeline) Nominal(cycles uint64) time.Duration {
	return time.Duration(math.Round(float64(cycles) * t.secondsPerCycle * float64(time.Second)))
}

// Expected returns the wall-clock time the cycles executed so far should have taken
func (t *Timeline) Expected() time.Duration {
	return t.Nominal(t.cycles)
}

// Complete records a finished batch and reports whether it overran its budget
func (t *Timeline) Complete(budget, spent uint64) (overrun bool) {
	t.batches++
	t.cycles += spent
	if spent > budget {
		t.overruns++
		return true
	}
	return false
}

// NextPeriod computes the sleep before the next batch of budget cycles.
// The cumulative drift since start is added to the nominal period: running
// slow shortens it, running fast lengthens it. The result is never negative.
func (t *Timeline) NextPeriod(now time.Time, budget uint64) time.Duration {
	t.drift = t.Expected() - now.Sub(t.start)
	period := t.Nominal(budget) + t.drift
	if period < 0 {
		return 0
	}
	return period
}

// Cycles returns the number of cycles executed
func (t *Timeline) Cycles() uint64 {
	return t.cycles
}

// Batches returns the number of completed batches
func (t *Timeline) Batches() uint64 {
	return t.batches
}

// Overruns returns the number of batches that spent more than their budget
func (t *Timeline) Overruns() uint64 {
	return t.overruns
}

// Drift returns the last measured difference between expected and actual elapsed time.
// A negative drift means the simulation is behind the wall clock.
func (t *Timeline) Drift() time.Duration {
	return t.drift
}

// Start returns the instant the timeline started, shifted forward by every pause
func (t *Timeline) Start() time.Time {
	return t.start
}

// Pause freezes the timeline at now
func (t *Timeline) Pause(now time.Time) {
	t.pausedAt = now
	t.paused = true
}

// Resume continues a paused timeline at now. The time spent paused is not
// counted as drift.
func (t *Timeline) Resume(now time.Time) {
	if !t.paused {
		return
	}
	t.start = t.start.Add(now.Sub(t.pausedAt))
	t.paused = false
}
