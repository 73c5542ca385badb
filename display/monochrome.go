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
	"errors"
	"fmt"
	"slices"

	"github.com/kaiseki/kaiseki/actor"
	"github.com/kaiseki/kaiseki/bus"
	"github.com/kaiseki/kaiseki/component"
	gerrors "github.com/kaiseki/kaiseki/errors"
	"github.com/kaiseki/kaiseki/future"
	"github.com/kaiseki/kaiseki/internal/validation"
	"github.com/kaiseki/kaiseki/log"
)

// Monochrome is a one-bit framebuffer. Its pixels are owned by an actor so
// bus handlers and presentation reads never race. It is addressable, one
// byte per pixel in row-major order, for presentation polling.
type Monochrome struct {
	id     component.ID
	width  uint64
	height uint64
	frame  *actor.Handle[command]
	state  *framebuffer
	logger log.Logger
}

var _ component.Addressable = (*Monochrome)(nil)

// NewMonochrome creates a display reading sprite data from memory. The
// framebuffer actor stops when ctx is done or Close is called.
func NewMonochrome(ctx context.Context, memory component.Addressable, opts ...Option) (*Monochrome, error) {
	config := newOptions(opts...)
	if err := validation.New("display", validation.AllErrors()).
		AddValidator(validation.NewEmptyStringValidator("name", config.name)).
		AddValidator(validation.NewPositiveValidator("width", config.width)).
		AddValidator(validation.NewPositiveValidator("height", config.height)).
		AddAssertion(memory != nil, "the [memory] is required").
		Validate(); err != nil {
		return nil, err
	}

	id := config.id
	if id.IsZero() {
		id = component.NewID(config.name)
	}
	spawnOpts := []actor.SpawnOption{
		actor.WithID(id),
		actor.WithExecutor(config.executor),
		actor.WithMailboxSize(8),
		actor.WithLogger(config.logger),
	}
	if config.meter != nil {
		spawnOpts = append(spawnOpts, actor.WithMeter(config.meter))
	}

	state := newFramebuffer(config.width, config.height, memory)
	frame := actor.Spawn[command](ctx, state, spawnOpts...)

	return &Monochrome{
		id:     id,
		width:  config.width,
		height: config.height,
		frame:  frame,
		state:  state,
		logger: config.logger.With("display", id.String()),
	}, nil
}

// ID returns the display identity
func (d *Monochrome) ID() component.ID {
	return d.id
}

// Width returns the framebuffer width in pixels
func (d *Monochrome) Width() uint64 {
	return d.width
}

// Height returns the framebuffer height in pixels
func (d *Monochrome) Height() uint64 {
	return d.height
}

// Size returns the number of addressable bytes
func (d *Monochrome) Size() uint64 {
	return d.width * d.height
}

// Clear blanks the framebuffer
func (d *Monochrome) Clear(ctx context.Context) error {
	_, err := d.call(ctx, func(reply *future.Reply[outcome]) command {
		return clearCommand{reply: reply}
	})
	return err
}

// Draw XOR-draws a sprite and reports whether a lit pixel was turned off
func (d *Monochrome) Draw(ctx context.Context, sprite DrawSprite) (bool, error) {
	result, err := d.call(ctx, func(reply *future.Reply[outcome]) command {
		return drawCommand{sprite: sprite, reply: reply}
	})
	return result.collision, err
}

// Frame returns a copy of the pixels, one byte per pixel
func (d *Monochrome) Frame(ctx context.Context) ([]byte, error) {
	result, err := d.call(ctx, func(reply *future.Reply[outcome]) command {
		return snapshotCommand{reply: reply}
	})
	return result.pixels, err
}

// Read returns length pixels starting at address from the last applied
// command. It does not wait for queued commands, so sprite data can be read
// from the framebuffer while a draw is being applied.
func (d *Monochrome) Read(address, length uint64) ([]byte, error) {
	if !d.frame.Alive() {
		return nil, gerrors.ErrDisconnected
	}
	pixels := d.state.snapshot()
	size := uint64(len(pixels))
	if address > size || length > size-address {
		return nil, fmt.Errorf("%w: %d byte(s) at 0x%04X, framebuffer holds 0x%04X", gerrors.ErrOutOfRange, length, address, size)
	}
	return slices.Clone(pixels[address : address+length]), nil
}

// Write overwrites pixels starting at address
func (d *Monochrome) Write(address uint64, data []byte) error {
	_, err := d.call(context.Background(), func(reply *future.Reply[outcome]) command {
		return writeCommand{address: address, data: data, reply: reply}
	})
	return err
}

// Digest returns the xxh3 hash of the framebuffer
func (d *Monochrome) Digest(ctx context.Context) (uint64, error) {
	pixels, err := d.Frame(ctx)
	if err != nil {
		return 0, err
	}
	return digest(pixels), nil
}

// String renders the framebuffer, '#' for lit pixels
func (d *Monochrome) String() string {
	pixels, err := d.Frame(context.Background())
	if err != nil {
		return fmt.Sprintf("%s: %v", d.id, err)
	}
	return render(pixels, d.width)
}

// Serve answers the display requests received on conn until ctx is done or
// every driver has left the bus. The connection is closed on return.
func (d *Monochrome) Serve(ctx context.Context, conn *bus.Connection[Message]) error {
	defer conn.Close()

	for {
		envelope, err := conn.Recv(ctx)
		if err != nil {
			switch {
			case ctx.Err() != nil:
				return nil
			case errors.Is(err, gerrors.ErrDisconnected):
				d.logger.Debugf("driver left: %v", err)
				continue
			case errors.Is(err, gerrors.ErrNoSendersToReceiver):
				d.logger.Info("no driver left, display stopped")
				return nil
			default:
				return err
			}
		}

		var response Message
		switch m := envelope.Payload().(type) {
		case Clear:
			if err := d.Clear(ctx); err != nil {
				return d.stopped(ctx, err)
			}
			response = ClearDone{}
		case DrawSprite:
			collision, err := d.Draw(ctx, m)
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, gerrors.ErrDisconnected) {
					return d.stopped(ctx, err)
				}
				d.logger.Errorf("%s failed: %v", m, err)
				envelope.Drop()
				continue
			}
			response = DrawSpriteResult{Collision: collision}
		default:
			d.logger.Warnf("ignoring %s from %s", m, envelope.Sender())
			envelope.Drop()
			continue
		}

		if envelope.ExpectsReply() {
			if err := envelope.Reply(response); err != nil {
				d.logger.Debugf("reply %s not delivered: %v", response, err)
			}
		}
	}
}

// Err returns why the framebuffer actor stopped, nil while it runs
func (d *Monochrome) Err() error {
	return d.frame.Err()
}

// Close stops the framebuffer actor once pending commands are applied
func (d *Monochrome) Close() {
	d.frame.Release()
	<-d.frame.Done()
}

// stopped maps the failure of a framebuffer command while serving
func (d *Monochrome) stopped(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (d *Monochrome) call(ctx context.Context, build func(reply *future.Reply[outcome]) command) (outcome, error) {
	result, err := actor.Call(ctx, d.frame, build)
	if err != nil {
		return outcome{}, err
	}
	return result, result.err
}
