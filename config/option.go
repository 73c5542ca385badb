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

package config

import (
	"github.com/kaiseki/kaiseki/actor"
	"github.com/kaiseki/kaiseki/log"
)

// Option is the interface that applies a configuration option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(config *Config)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(config *Config)

// Apply applies the configuration option
func (f OptionFunc) Apply(c *Config) {
	f(c)
}

// WithFrequency sets the clock frequency in Hz
func WithFrequency(hz float64) Option {
	return OptionFunc(func(config *Config) {
		config.Frequency = hz
	})
}

// WithInitialBudget sets the cycle budget of the first batch
func WithInitialBudget(cycles uint64) Option {
	return OptionFunc(func(config *Config) {
		config.InitialBudget = cycles
	})
}

// WithSpeedMultiplier runs the clock faster or slower than real time
func WithSpeedMultiplier(multiplier float64) Option {
	return OptionFunc(func(config *Config) {
		config.SpeedMultiplier = multiplier
	})
}

// WithMaxBatches stops the clock after n batches
func WithMaxBatches(n uint64) Option {
	return OptionFunc(func(config *Config) {
		config.MaxBatches = n
	})
}

// WithRAMSize sets the RAM capacity
func WithRAMSize(size uint64) Option {
	return OptionFunc(func(config *Config) {
		config.RAMSize = size
	})
}

// WithProgram loads image in RAM at base. The fetcher starts there.
func WithProgram(base uint64, image []byte) Option {
	return OptionFunc(func(config *Config) {
		config.ProgramBase = base
		config.Program = image
	})
}

// WithFetchWindow sets the number of bytes the fetcher cycles through
func WithFetchWindow(size uint64) Option {
	return OptionFunc(func(config *Config) {
		config.FetchWindow = size
	})
}

// WithHaltAfter halts the fetcher after n fetches
func WithHaltAfter(n uint64) Option {
	return OptionFunc(func(config *Config) {
		config.HaltAfter = n
	})
}

// WithROM maps a ROM holding contents at base
func WithROM(base uint64, contents []byte) Option {
	return OptionFunc(func(config *Config) {
		config.ROMBase = base
		config.ROM = contents
	})
}

// WithDisplay sets the framebuffer dimensions and where it is mapped
func WithDisplay(width, height, base uint64) Option {
	return OptionFunc(func(config *Config) {
		config.DisplayWidth = width
		config.DisplayHeight = height
		config.DisplayBase = base
	})
}

// WithDisplayExecutor selects how the display actor runs
func WithDisplayExecutor(executor actor.Executor) Option {
	return OptionFunc(func(config *Config) {
		config.DisplayExecutor = executor
	})
}

// WithLogger sets the logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(config *Config) {
		config.Logger = logger
	})
}
