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

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaiseki/kaiseki/config"
	"github.com/kaiseki/kaiseki/display"
	"github.com/kaiseki/kaiseki/internal/ticker"
	"github.com/kaiseki/kaiseki/log"
	"github.com/kaiseki/kaiseki/memory"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestPresent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ram := memory.NewRAM("sprites", 1)
	require.NoError(t, ram.Write(0, []byte{0x80}))
	screen, err := display.NewMonochrome(ctx, ram, display.WithSize(2, 1), display.WithLogger(log.DiscardLogger))
	require.NoError(t, err)
	defer screen.Close()

	poller := ticker.New(5 * time.Millisecond)
	poller.Start()
	defer poller.Stop()

	out := new(syncBuffer)
	done := make(chan struct{})
	go func() {
		defer close(done)
		present(ctx, screen, poller, out)
	}()

	_, err = screen.Draw(ctx, display.DrawSprite{Length: 1})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return strings.Contains(out.String(), "#.\n") }, time.Second, 5*time.Millisecond)

	// an unchanged frame is rendered once
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 1, strings.Count(out.String(), "#."))

	cancel()
	<-done
}

func TestRun(t *testing.T) {
	t.Run("With the final frame rendered after the duration", func(t *testing.T) {
		dir := t.TempDir()
		program := filepath.Join(dir, "program.bin")
		image := []byte{
			0xA2, 0x10, // I = 0x210
			0x60, 0x05, // V0 = 5
			0xD0, 0x01, // draw 1 row at (5, 5)
		}
		image = append(image, make([]byte, 0x10-len(image))...)
		image = append(image, 0xF0)
		require.NoError(t, os.WriteFile(program, image, 0o600))

		cmd := &runCmd{
			Program:   program,
			Base:      0x200,
			ROMBase:   0x4000,
			Frequency: 500,
			Speed:     1,
			HaltAfter: 3,
			Duration:  200 * time.Millisecond,
			Poll:      10 * time.Millisecond,
			Executor:  "task",
			LogLevel:  "error",
		}
		out := new(syncBuffer)
		require.NoError(t, cmd.run(context.Background(), out))

		frame := out.String()
		assert.NotContains(t, frame, "disconnected")
		assert.Contains(t, frame, ".....####...")
	})

	t.Run("With an interrupted run", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		cmd := &runCmd{
			Base:      0x200,
			ROMBase:   0x4000,
			Frequency: 500,
			Speed:     1,
			Duration:  time.Minute,
			Poll:      10 * time.Millisecond,
			Executor:  "thread",
			LogLevel:  "error",
		}
		out := new(syncBuffer)
		require.NoError(t, cmd.run(ctx, out))
		assert.Contains(t, out.String(), "................")
	})
}

func TestOptions(t *testing.T) {
	dir := t.TempDir()
	program := filepath.Join(dir, "program.bin")
	require.NoError(t, os.WriteFile(program, []byte{0x00, 0xE0}, 0o600))

	cmd := &runCmd{Program: program, Base: 0x300, Frequency: 60, Speed: 2, Executor: "thread"}
	options, err := cmd.options(log.DiscardLogger)
	require.NoError(t, err)

	cfg := config.New(options...)
	require.NoError(t, cfg.Validate())
	assert.EqualValues(t, 0x300, cfg.ProgramBase)
	assert.Equal(t, []byte{0x00, 0xE0}, cfg.Program)
	assert.EqualValues(t, 60, cfg.Frequency)
	assert.EqualValues(t, 2, cfg.SpeedMultiplier)
	assert.Equal(t, "thread", cfg.DisplayExecutor.String())

	cmd.ROM = filepath.Join(dir, "missing.bin")
	_, err = cmd.options(log.DiscardLogger)
	require.Error(t, err)
}
