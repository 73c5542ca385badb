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
	"github.com/kaiseki/kaiseki/internal/validation"
	"github.com/kaiseki/kaiseki/log"
)

const (
	// DefaultFrequency is the machine clock rate in Hz
	DefaultFrequency = 500.0
	// DefaultInitialBudget is the number of cycles granted to the first batch
	DefaultInitialBudget = 8
	// DefaultRAMSize is the RAM capacity in bytes, mapped from address zero
	DefaultRAMSize = 0x1000
	// DefaultProgramBase is where the program image is loaded and fetched from
	DefaultProgramBase = 0x200
	// DefaultFetchWindow is the number of bytes the fetcher cycles through
	DefaultFetchWindow = 0x800
	// DefaultDisplayBase is where the framebuffer is mapped on the memory bus
	DefaultDisplayBase = 0x8000
	// DefaultDisplayWidth is the framebuffer width in pixels
	DefaultDisplayWidth = 64
	// DefaultDisplayHeight is the framebuffer height in pixels
	DefaultDisplayHeight = 32
)

// Config describes how a machine is assembled
type Config struct {
	// Specifies the clock frequency in Hz
	Frequency float64
	// Specifies the cycle budget of the first batch
	InitialBudget uint64
	// Specifies how much faster than real time the clock runs
	SpeedMultiplier float64
	// Specifies after how many batches the clock stops. Zero runs until cancelled.
	MaxBatches uint64
	// Specifies the RAM capacity in bytes
	RAMSize uint64
	// Specifies where the program image is loaded in RAM
	ProgramBase uint64
	// Specifies the program image
	Program []byte
	// Specifies the number of bytes the fetcher cycles through from ProgramBase
	FetchWindow uint64
	// Specifies after how many fetches the fetcher halts. Zero never halts.
	HaltAfter uint64
	// Specifies where the optional ROM is mapped
	ROMBase uint64
	// Specifies the ROM contents. No ROM is mapped when empty.
	ROM []byte
	// Specifies the framebuffer dimensions
	DisplayWidth  uint64
	DisplayHeight uint64
	// Specifies where the framebuffer is mapped on the memory bus
	DisplayBase uint64
	// Specifies how the display actor runs
	DisplayExecutor actor.Executor
	// Specifies the logger shared by every component
	Logger log.Logger
}

// New creates a Config with the defaults and the given options applied
func New(options ...Option) *Config {
	config := &Config{
		Frequency:       DefaultFrequency,
		InitialBudget:   DefaultInitialBudget,
		SpeedMultiplier: 1,
		RAMSize:         DefaultRAMSize,
		ProgramBase:     DefaultProgramBase,
		FetchWindow:     DefaultFetchWindow,
		DisplayWidth:    DefaultDisplayWidth,
		DisplayHeight:   DefaultDisplayHeight,
		DisplayBase:     DefaultDisplayBase,
		DisplayExecutor: actor.TaskExecutor,
		Logger:          log.DefaultLogger,
	}

	for _, opt := range options {
		opt.Apply(config)
	}
	return config
}

// Validate checks the configuration and reports every violation
func (c *Config) Validate() error {
	programFits := c.ProgramBase <= c.RAMSize && uint64(len(c.Program)) <= c.RAMSize-c.ProgramBase
	windowFits := c.ProgramBase <= c.RAMSize && c.FetchWindow <= c.RAMSize-c.ProgramBase

	return validation.New("machine config", validation.AllErrors()).
		AddValidator(validation.NewPositiveValidator("frequency", c.Frequency)).
		AddValidator(validation.NewPositiveValidator("initial budget", c.InitialBudget)).
		AddValidator(validation.NewPositiveValidator("speed multiplier", c.SpeedMultiplier)).
		AddValidator(validation.NewPositiveValidator("RAM size", c.RAMSize)).
		AddValidator(validation.NewRangeValidator("fetch window", c.FetchWindow, 2, c.RAMSize)).
		AddValidator(validation.NewPositiveValidator("display width", c.DisplayWidth)).
		AddValidator(validation.NewPositiveValidator("display height", c.DisplayHeight)).
		AddAssertion(c.FetchWindow%2 == 0, "the [fetch window] must be even").
		AddAssertion(programFits, "the [program] must fit in RAM").
		AddAssertion(windowFits, "the [fetch window] must fit in RAM").
		AddAssertion(c.Logger != nil, "the [logger] is required").
		Validate()
}
