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

	"go.uber.org/atomic"

	"github.com/kaiseki/kaiseki/component"
	"github.com/kaiseki/kaiseki/errors"
)

// Handle is a reference to a running actor. Every clone refers to the same
// mailbox; messages from one handle are dispatched in the order they were sent.
//
// The mailbox is closed when the last handle is released. Messages queued
// before that are still dispatched.
type Handle[M any] struct {
	executor *executor[M]
	released *atomic.Bool
}

var _ component.Component = (*Handle[int])(nil)

// Spawn starts an executor for state and returns the first handle to it.
// Cancelling ctx terminates the executor after the message being dispatched;
// queued messages are dropped.
func Spawn[M any](ctx context.Context, state State[M], opts ...SpawnOption) *Handle[M] {
	x := newExecutor(ctx, state, newSpawnConfig(opts...))
	x.start()
	return &Handle[M]{executor: x, released: atomic.NewBool(false)}
}

// ID returns the actor identity
func (h *Handle[M]) ID() component.ID {
	return h.executor.id
}

// Send queues msg, suspending while the mailbox is full.
// It returns errors.ErrDisconnected when the executor is gone.
func (h *Handle[M]) Send(ctx context.Context, msg M) error {
	if h.released.Load() {
		return errors.ErrDisconnected
	}
	return h.executor.enqueue(ctx, &letter[M]{message: msg})
}

// Clone returns a new handle to the same actor
func (h *Handle[M]) Clone() *Handle[M] {
	h.executor.refs.Inc()
	return &Handle[M]{executor: h.executor, released: atomic.NewBool(false)}
}

// Release gives up the handle. Releasing the last handle closes the mailbox.
// Releasing twice has no effect.
func (h *Handle[M]) Release() {
	if !h.released.CompareAndSwap(false, true) {
		return
	}
	if h.executor.refs.Dec() == 0 {
		h.executor.close()
	}
}

// Done is closed once the executor has terminated
func (h *Handle[M]) Done() <-chan struct{} {
	return h.executor.done
}

// Err returns the cause of the executor termination. It is nil while the
// executor runs and after a clean shutdown.
func (h *Handle[M]) Err() error {
	select {
	case <-h.executor.done:
		return h.executor.err
	default:
		return nil
	}
}

// Alive reports whether the executor still accepts messages
func (h *Handle[M]) Alive() bool {
	return !h.released.Load() && !h.executor.isClosed()
}

// MailboxLen returns a snapshot of the number of queued messages
func (h *Handle[M]) MailboxLen() int64 {
	return h.executor.mailbox.Len()
}
