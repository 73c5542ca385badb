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
	"go.opentelemetry.io/otel/metric"

	"github.com/kaiseki/kaiseki/log"
)

const (
	// DefaultFrequency is the target frequency in hertz
	DefaultFrequency = 4_194_304.0
	// DefaultInitialBudget is the first cycle budget granted, about one 60Hz frame at DefaultFrequency
	DefaultInitialBudget = 70_224
)

// Option is the interface that applies an oscillator option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(oscillator *Oscillator)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(oscillator *Oscillator)

// Apply applies the option
func (f OptionFunc) Apply(oscillator *Oscillator) {
	f(oscillator)
}

// WithFrequency sets the target frequency in hertz
func WithFrequency(hz float64) Option {
	return OptionFunc(func(oscillator *Oscillator) {
		oscillator.frequency = hz
	})
}

// WithInitialBudget sets the budget of the first batch
func WithInitialBudget(cycles uint64) Option {
	return OptionFunc(func(oscillator *Oscillator) {
		oscillator.initialBudget = cycles
	})
}

// WithMaxBatches stops the oscillator after n completed batches. Zero means unbounded.
func WithMaxBatches(n uint64) Option {
	return OptionFunc(func(oscillator *Oscillator) {
		oscillator.maxBatches = n
	})
}

// WithSpeedMultiplier scales the wall-clock period of every cycle.
// Values above one slow the simulation down.
func WithSpeedMultiplier(multiplier float64) Option {
	return OptionFunc(func(oscillator *Oscillator) {
		oscillator.multiplier = multiplier
	})
}

// WithTimeSource sets the wall clock used for pacing
func WithTimeSource(source TimeSource) Option {
	return OptionFunc(func(oscillator *Oscillator) {
		oscillator.timeSource = source
	})
}

// WithLogger sets the oscillator logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(oscillator *Oscillator) {
		oscillator.logger = logger
	})
}

// WithMeter sets the meter used to create the oscillator instruments
func WithMeter(meter metric.Meter) Option {
	return OptionFunc(func(oscillator *Oscillator) {
		oscillator.meter = meter
	})
}
