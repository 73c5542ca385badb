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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/goleak"

	"github.com/kaiseki/kaiseki/actor"
	"github.com/kaiseki/kaiseki/bus"
	"github.com/kaiseki/kaiseki/component"
	gerrors "github.com/kaiseki/kaiseki/errors"
	"github.com/kaiseki/kaiseki/log"
	"github.com/kaiseki/kaiseki/memory"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestDisplay(t *testing.T, sprites []byte, opts ...Option) *Monochrome {
	t.Helper()
	ram := memory.NewRAM("sprites", 64)
	require.NoError(t, ram.Write(0, sprites))

	opts = append([]Option{
		WithLogger(log.DiscardLogger),
		WithMeter(noop.NewMeterProvider().Meter("test")),
	}, opts...)
	d, err := NewMonochrome(context.Background(), ram, opts...)
	require.NoError(t, err)
	t.Cleanup(d.Close)
	return d
}

func lit(t *testing.T, d *Monochrome) []uint64 {
	t.Helper()
	pixels, err := d.Frame(context.Background())
	require.NoError(t, err)
	var on []uint64
	for i, pixel := range pixels {
		if pixel != 0 {
			on = append(on, uint64(i))
		}
	}
	return on
}

func TestMonochrome(t *testing.T) {
	ctx := context.Background()

	t.Run("With sprite drawn and erased", func(t *testing.T) {
		d := newTestDisplay(t, []byte{0xF0, 0x90})

		collision, err := d.Draw(ctx, DrawSprite{Address: 0, Length: 2, X: 1, Y: 1})
		require.NoError(t, err)
		assert.False(t, collision)
		assert.Equal(t, []uint64{65, 66, 67, 68, 129, 132}, lit(t, d))

		collision, err = d.Draw(ctx, DrawSprite{Address: 0, Length: 2, X: 1, Y: 1})
		require.NoError(t, err)
		assert.True(t, collision)
		assert.Empty(t, lit(t, d))
	})

	t.Run("With sprite wrapping around the edges", func(t *testing.T) {
		d := newTestDisplay(t, []byte{0xC0, 0xC0}, WithSize(8, 4))
		_, err := d.Draw(ctx, DrawSprite{Address: 0, Length: 2, X: 7, Y: 3})
		require.NoError(t, err)
		assert.Equal(t, []uint64{0, 7, 24, 31}, lit(t, d))
	})

	t.Run("With clear", func(t *testing.T) {
		d := newTestDisplay(t, []byte{0xFF})
		blank, err := d.Digest(ctx)
		require.NoError(t, err)

		_, err = d.Draw(ctx, DrawSprite{Length: 1})
		require.NoError(t, err)
		drawn, err := d.Digest(ctx)
		require.NoError(t, err)
		assert.NotEqual(t, blank, drawn)

		require.NoError(t, d.Clear(ctx))
		cleared, err := d.Digest(ctx)
		require.NoError(t, err)
		assert.Equal(t, blank, cleared)
	})

	t.Run("With sprite outside memory", func(t *testing.T) {
		d := newTestDisplay(t, nil)
		_, err := d.Draw(ctx, DrawSprite{Address: 60, Length: 8})
		require.ErrorIs(t, err, gerrors.ErrOutOfRange)
		assert.Empty(t, lit(t, d))
	})

	t.Run("With addressable pixels", func(t *testing.T) {
		d := newTestDisplay(t, nil, WithSize(4, 2))
		assert.EqualValues(t, 8, d.Size())
		require.NoError(t, d.Write(2, []byte{1, 1}))

		data, err := d.Read(0, 4)
		require.NoError(t, err)
		assert.Equal(t, []byte{0, 0, 1, 1}, data)

		_, err = d.Read(6, 4)
		require.ErrorIs(t, err, gerrors.ErrOutOfRange)
		require.ErrorIs(t, d.Write(7, []byte{1, 1}), gerrors.ErrOutOfRange)
	})

	t.Run("With sprite read from the framebuffer itself", func(t *testing.T) {
		memoryBus := bus.NewAddressableBus("memory", bus.WithLogger(log.DiscardLogger))
		d, err := NewMonochrome(ctx, memoryBus, WithSize(8, 4),
			WithLogger(log.DiscardLogger), WithMeter(noop.NewMeterProvider().Meter("test")))
		require.NoError(t, err)
		defer d.Close()
		require.NoError(t, memoryBus.MapSized(0, d.Size(), d))

		// pixel 0 is lit, so the row read back at address 0 is 0x01
		require.NoError(t, d.Write(0, []byte{1}))

		timeoutCtx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		collision, err := d.Draw(timeoutCtx, DrawSprite{Address: 0, Length: 1})
		require.NoError(t, err)
		assert.False(t, collision)
		assert.Equal(t, []uint64{0, 7}, lit(t, d))

		data, err := memoryBus.Read(0, 8)
		require.NoError(t, err)
		assert.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 1}, data)
	})

	t.Run("With rendering", func(t *testing.T) {
		d := newTestDisplay(t, []byte{0xA0}, WithSize(4, 2), WithExecutor(actor.ThreadExecutor))
		_, err := d.Draw(ctx, DrawSprite{Length: 1, Y: 1})
		require.NoError(t, err)
		assert.Equal(t, "....\n#.#.\n", d.String())
	})

	t.Run("With invalid options", func(t *testing.T) {
		_, err := NewMonochrome(ctx, memory.NewRAM("ram", 1), WithSize(0, 0), WithLogger(log.DiscardLogger))
		require.ErrorIs(t, err, gerrors.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "width")
		assert.Contains(t, err.Error(), "height")

		_, err = NewMonochrome(ctx, nil, WithLogger(log.DiscardLogger))
		require.ErrorIs(t, err, gerrors.ErrInvalidConfig)

		_, err = NewMonochrome(ctx, memory.NewRAM("ram", 1), WithName(""), WithLogger(log.DiscardLogger))
		require.ErrorIs(t, err, gerrors.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "name")
	})

	t.Run("With closed display", func(t *testing.T) {
		ram := memory.NewRAM("ram", 1)
		d, err := NewMonochrome(ctx, ram, WithLogger(log.DiscardLogger), WithMeter(noop.NewMeterProvider().Meter("test")))
		require.NoError(t, err)
		d.Close()
		require.ErrorIs(t, d.Clear(ctx), gerrors.ErrDisconnected)
		_, err = d.Read(0, 1)
		require.ErrorIs(t, err, gerrors.ErrDisconnected)
	})
}

func TestServe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	memoryBus := bus.NewAddressableBus("memory", bus.WithLogger(log.DiscardLogger))
	ram := memory.NewRAM("ram", 16)
	require.NoError(t, ram.Write(0, []byte{0x80}))
	require.NoError(t, memoryBus.MapSized(0x200, ram.Size(), ram))

	d, err := NewMonochrome(ctx, memoryBus, WithLogger(log.DiscardLogger), WithMeter(noop.NewMeterProvider().Meter("test")))
	require.NoError(t, err)
	defer d.Close()

	displayBus := bus.NewMessageBus[Message]("display", bus.WithLogger(log.DiscardLogger))
	cpu, conn, err := displayBus.Connect(component.NewID("cpu"), d.ID())
	require.NoError(t, err)

	served := make(chan error, 1)
	go func() { served <- d.Serve(ctx, conn) }()

	reply, err := cpu.Request(ctx, DrawSprite{Address: 0x200, Length: 1, X: 2})
	require.NoError(t, err)
	assert.Equal(t, DrawSpriteResult{Collision: false}, reply)

	reply, err = cpu.Request(ctx, DrawSprite{Address: 0x200, Length: 1, X: 2})
	require.NoError(t, err)
	assert.Equal(t, DrawSpriteResult{Collision: true}, reply)

	reply, err = cpu.Request(ctx, Clear{})
	require.NoError(t, err)
	assert.Equal(t, ClearDone{}, reply)

	// the sprite address is unmapped so the request is dropped
	_, err = cpu.Request(ctx, DrawSprite{Address: 0x900, Length: 1})
	require.ErrorIs(t, err, gerrors.ErrDisconnected)

	// notifications are applied without a reply
	require.NoError(t, cpu.Send(ctx, DrawSprite{Address: 0x200, Length: 1}))
	require.Eventually(t, func() bool {
		pixels, err := d.Frame(context.Background())
		if err != nil {
			return false
		}
		var on int
		for _, pixel := range pixels {
			if pixel != 0 {
				on++
			}
		}
		return on == 1
	}, time.Second, time.Millisecond)

	cpu.Close()
	select {
	case err := <-served:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("display did not stop")
	}
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "Clear", Clear{}.String())
	assert.Equal(t, "ClearDone", ClearDone{}.String())
	assert.Equal(t, "DrawSprite{address: 0x0200, length: 5, x: 1, y: 2}", DrawSprite{Address: 0x200, Length: 5, X: 1, Y: 2}.String())
	assert.Equal(t, "DrawSpriteResult{collision: true}", DrawSpriteResult{Collision: true}.String())
}
