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

package actor

import (
	"context"

	"github.com/kaiseki/kaiseki/errors"
	"github.com/kaiseki/kaiseki/future"
)

// Call sends the message built around a fresh reply slot and waits for the
// reply. The slot is dropped when Dispatch returns without fulfilling it or
// when the executor terminates first; Call then fails with errors.ErrDisconnected.
//
//	sum, err := actor.Call(ctx, handle, func(reply *future.Reply[int]) AdderMessage {
//		return Add{Value: 3, Reply: reply}
//	})
func Call[M, R any](ctx context.Context, h *Handle[M], build func(reply *future.Reply[R]) M) (R, error) {
	var zero R
	if h.released.Load() {
		return zero, errors.ErrDisconnected
	}

	reply := future.NewReply[R]()
	if err := h.executor.enqueue(ctx, &letter[M]{message: build(reply), reply: reply}); err != nil {
		return zero, err
	}
	return reply.Await(ctx)
}
