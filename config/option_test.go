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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kaiseki/kaiseki/actor"
	"github.com/kaiseki/kaiseki/log"
)

func TestOptions(t *testing.T) {
	testCases := []struct {
		name           string
		option         Option
		expectedConfig Config
	}{
		{
			name:           "WithFrequency",
			option:         WithFrequency(60),
			expectedConfig: Config{Frequency: 60},
		},
		{
			name:           "WithInitialBudget",
			option:         WithInitialBudget(16),
			expectedConfig: Config{InitialBudget: 16},
		},
		{
			name:           "WithSpeedMultiplier",
			option:         WithSpeedMultiplier(2),
			expectedConfig: Config{SpeedMultiplier: 2},
		},
		{
			name:           "WithMaxBatches",
			option:         WithMaxBatches(10),
			expectedConfig: Config{MaxBatches: 10},
		},
		{
			name:           "WithRAMSize",
			option:         WithRAMSize(0x2000),
			expectedConfig: Config{RAMSize: 0x2000},
		},
		{
			name:           "WithProgram",
			option:         WithProgram(0x300, []byte{0x00, 0xE0}),
			expectedConfig: Config{ProgramBase: 0x300, Program: []byte{0x00, 0xE0}},
		},
		{
			name:           "WithFetchWindow",
			option:         WithFetchWindow(0x100),
			expectedConfig: Config{FetchWindow: 0x100},
		},
		{
			name:           "WithHaltAfter",
			option:         WithHaltAfter(4),
			expectedConfig: Config{HaltAfter: 4},
		},
		{
			name:           "WithROM",
			option:         WithROM(0x4000, []byte{1}),
			expectedConfig: Config{ROMBase: 0x4000, ROM: []byte{1}},
		},
		{
			name:           "WithDisplay",
			option:         WithDisplay(128, 64, 0x9000),
			expectedConfig: Config{DisplayWidth: 128, DisplayHeight: 64, DisplayBase: 0x9000},
		},
		{
			name:           "WithDisplayExecutor",
			option:         WithDisplayExecutor(actor.ThreadExecutor),
			expectedConfig: Config{DisplayExecutor: actor.ThreadExecutor},
		},
		{
			name:           "WithLogger",
			option:         WithLogger(log.DiscardLogger),
			expectedConfig: Config{Logger: log.DiscardLogger},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var cfg Config
			tc.option.Apply(&cfg)
			assert.Equal(t, tc.expectedConfig, cfg)
		})
	}
}
