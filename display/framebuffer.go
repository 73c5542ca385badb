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

package display

import (
	"context"
	"fmt"
	"strings"

	"github.com/zeebo/xxh3"
	"go.uber.org/atomic"

	"github.com/kaiseki/kaiseki/component"
	"github.com/kaiseki/kaiseki/errors"
	"github.com/kaiseki/kaiseki/future"
)

// outcome is the reply of a framebuffer command
type outcome struct {
	collision bool
	pixels    []byte
	err       error
}

// command is handled by the framebuffer actor
type command interface{ command() }

type (
	clearCommand struct{ reply *future.Reply[outcome] }
	drawCommand  struct {
		sprite DrawSprite
		reply  *future.Reply[outcome]
	}
	writeCommand struct {
		address uint64
		data    []byte
		reply   *future.Reply[outcome]
	}
	snapshotCommand struct{ reply *future.Reply[outcome] }
)

func (clearCommand) command()    {}
func (drawCommand) command()     {}
func (writeCommand) command()    {}
func (snapshotCommand) command() {}

// framebuffer is the pixel state owned by the display actor, one byte per pixel.
// A copy of the pixels is published after every change for readers outside
// the actor, sprite reads that resolve to the display itself included.
type framebuffer struct {
	width     uint64
	height    uint64
	pixels    []byte
	memory    component.Addressable
	published *atomic.Pointer[[]byte]
}

func newFramebuffer(width, height uint64, memory component.Addressable) *framebuffer {
	pixels := make([]byte, width*height)
	published := make([]byte, len(pixels))
	return &framebuffer{
		width:     width,
		height:    height,
		pixels:    pixels,
		memory:    memory,
		published: atomic.NewPointer(&published),
	}
}

func (f *framebuffer) Dispatch(_ context.Context, cmd command) {
	switch c := cmd.(type) {
	case clearCommand:
		clear(f.pixels)
		f.publish()
		_ = c.reply.Send(outcome{})
	case drawCommand:
		collision, err := f.draw(c.sprite)
		if err == nil {
			f.publish()
		}
		_ = c.reply.Send(outcome{collision: collision, err: err})
	case writeCommand:
		err := f.write(c.address, c.data)
		if err == nil {
			f.publish()
		}
		_ = c.reply.Send(outcome{err: err})
	case snapshotCommand:
		pixels := make([]byte, len(f.pixels))
		copy(pixels, f.pixels)
		_ = c.reply.Send(outcome{pixels: pixels})
	}
}

// publish replaces the snapshot served to readers outside the actor
func (f *framebuffer) publish() {
	pixels := make([]byte, len(f.pixels))
	copy(pixels, f.pixels)
	f.published.Store(&pixels)
}

// snapshot returns the last published pixels. It never enters the actor.
func (f *framebuffer) snapshot() []byte {
	return *f.published.Load()
}

func (f *framebuffer) draw(sprite DrawSprite) (bool, error) {
	rows, err := f.memory.Read(sprite.Address, sprite.Length)
	if err != nil {
		return false, err
	}

	collision := false
	for dy, row := range rows {
		y := (sprite.Y + uint64(dy)) % f.height
		for dx := range uint64(8) {
			if row&(0x80>>dx) == 0 {
				continue
			}
			x := (sprite.X + dx) % f.width
			pixel := &f.pixels[y*f.width+x]
			if *pixel != 0 {
				collision = true
			}
			*pixel ^= 1
		}
	}
	return collision, nil
}

func (f *framebuffer) write(address uint64, data []byte) error {
	size := uint64(len(f.pixels))
	if address > size || uint64(len(data)) > size-address {
		return fmt.Errorf("%w: %d byte(s) at 0x%04X, framebuffer holds 0x%04X", errors.ErrOutOfRange, len(data), address, size)
	}
	copy(f.pixels[address:], data)
	return nil
}

// digest hashes a framebuffer snapshot
func digest(pixels []byte) uint64 {
	return xxh3.Hash(pixels)
}

// render draws a framebuffer snapshot with one text line per row
func render(pixels []byte, width uint64) string {
	var sb strings.Builder
	for offset := uint64(0); offset < uint64(len(pixels)); offset += width {
		for _, pixel := range pixels[offset : offset+width] {
			if pixel != 0 {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
