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

package bus

import (
	"context"

	"github.com/kaiseki/kaiseki/component"
)

// Connection is the view of a message bus from one component
type Connection[M any] struct {
	bus *MessageBus[M]
	id  component.ID
}

// ID returns the component the connection acts for
func (c *Connection[M]) ID() component.ID {
	return c.id
}

// Send delivers message to every receiver connected to this component
func (c *Connection[M]) Send(ctx context.Context, message M) error {
	return c.bus.Send(ctx, c.id, message)
}

// Recv waits for the next message addressed to this component
func (c *Connection[M]) Recv(ctx context.Context) (*Envelope[M], error) {
	return c.bus.Recv(ctx, c.id)
}

// TryRecv returns a queued message without waiting
func (c *Connection[M]) TryRecv() (*Envelope[M], error) {
	return c.bus.TryRecv(c.id)
}

// Request sends payload to every receiver and waits for the first reply
func (c *Connection[M]) Request(ctx context.Context, payload M) (M, error) {
	return c.bus.Request(ctx, c.id, payload)
}

// Close removes the component from the bus
func (c *Connection[M]) Close() {
	c.bus.Remove(c.id)
}
