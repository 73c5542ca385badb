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

package machine

import (
	"context"
	"encoding/binary"
	"fmt"

	"go.uber.org/atomic"

	"github.com/kaiseki/kaiseki/bus"
	"github.com/kaiseki/kaiseki/clock"
	"github.com/kaiseki/kaiseki/component"
	"github.com/kaiseki/kaiseki/display"
	"github.com/kaiseki/kaiseki/log"
)

// Fetcher is a driven unit that spends one cycle per instruction word. The
// word of cycle n is read at base + (2n mod window), so the fetch position
// follows the clock rather than a program counter.
//
// A few words have a visible effect, enough to drive a display:
//
//	00E0  clear the display
//	6XKK  set register X to KK
//	7XKK  add KK to register X
//	ANNN  set the sprite address to NNN
//	DXYN  draw N sprite rows at (VX, VY)
//
// Every other word is fetched and ignored.
type Fetcher struct {
	id        component.ID
	memory    component.Addressable
	display   *bus.Connection[display.Message]
	base      uint64
	window    uint64
	haltAfter uint64
	logger    log.Logger

	// registers are only touched by ExecuteCycles, which the clock never runs concurrently
	registers [16]byte
	index     uint64

	fetched    *atomic.Uint64
	lastWord   *atomic.Uint32
	collisions *atomic.Uint64
}

var (
	_ component.Component = (*Fetcher)(nil)
	_ clock.DrivenUnit    = (*Fetcher)(nil)
)

// NewFetcher creates a fetcher reading from memory. Display words are ignored
// when screen is nil. A zero haltAfter never halts.
func NewFetcher(id component.ID, memory component.Addressable, screen *bus.Connection[display.Message], base, window, haltAfter uint64, logger log.Logger) *Fetcher {
	return &Fetcher{
		id:         id,
		memory:     memory,
		display:    screen,
		base:       base,
		window:     window,
		haltAfter:  haltAfter,
		logger:     logger.With("fetcher", id.String()),
		fetched:    atomic.NewUint64(0),
		lastWord:   atomic.NewUint32(0),
		collisions: atomic.NewUint64(0),
	}
}

// ID returns the fetcher identity
func (f *Fetcher) ID() component.ID {
	return f.id
}

// Fetched returns the number of words fetched so far
func (f *Fetcher) Fetched() uint64 {
	return f.fetched.Load()
}

// LastWord returns the last word fetched
func (f *Fetcher) LastWord() uint16 {
	return uint16(f.lastWord.Load())
}

// Collisions returns the number of sprite draws that turned a pixel off
func (f *Fetcher) Collisions() uint64 {
	return f.collisions.Load()
}

// Halted reports whether the fetcher stopped spending cycles
func (f *Fetcher) Halted() bool {
	return f.haltAfter > 0 && f.fetched.Load() >= f.haltAfter
}

// ExecuteCycles fetches one word per cycle, stopping early once halted
func (f *Fetcher) ExecuteCycles(ctx context.Context, start, budget uint64) (uint64, error) {
	var spent uint64
	for cycle := start; cycle < start+budget; cycle++ {
		if f.Halted() {
			break
		}

		address := f.base + (2*cycle)%f.window
		bytes, err := f.memory.Read(address, 2)
		if err != nil {
			return spent, fmt.Errorf("cycle %d: fetch at 0x%04X: %w", cycle, address, err)
		}

		word := binary.BigEndian.Uint16(bytes)
		f.fetched.Inc()
		f.lastWord.Store(uint32(word))
		spent++

		if f.logger.Enabled(log.DebugLevel) {
			f.logger.Debugf("cycle %d | load 0x%04X => 0x%04X", cycle, address, word)
		}

		if err := f.execute(ctx, word); err != nil {
			return spent, fmt.Errorf("cycle %d: execute 0x%04X: %w", cycle, word, err)
		}
	}
	return spent, nil
}

func (f *Fetcher) execute(ctx context.Context, word uint16) error {
	x := (word >> 8) & 0xF
	y := (word >> 4) & 0xF
	kk := byte(word)

	switch word >> 12 {
	case 0x0:
		if word == 0x00E0 {
			return f.request(ctx, display.Clear{})
		}
	case 0x6:
		f.registers[x] = kk
	case 0x7:
		f.registers[x] += kk
	case 0xA:
		f.index = uint64(word & 0x0FFF)
	case 0xD:
		return f.request(ctx, display.DrawSprite{
			Address: f.index,
			Length:  uint64(word & 0xF),
			X:       uint64(f.registers[x]),
			Y:       uint64(f.registers[y]),
		})
	}
	return nil
}

func (f *Fetcher) request(ctx context.Context, message display.Message) error {
	if f.display == nil {
		return nil
	}

	reply, err := f.display.Request(ctx, message)
	if err != nil {
		return err
	}
	if result, ok := reply.(display.DrawSpriteResult); ok && result.Collision {
		f.collisions.Inc()
		f.registers[0xF] = 1
	} else if ok {
		f.registers[0xF] = 0
	}
	return nil
}
