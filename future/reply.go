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

package future

import (
	"context"
	"sync"

	"github.com/kaiseki/kaiseki/errors"
)

type replyState int

const (
	pending replyState = iota
	fulfilled
	cancelled
	dropped
)

// Reply is a one-shot reply slot shared by a requester and a responder.
//
// The responder fulfils it at most once with Send. The requester waits with
// Await; abandoning the wait cancels the slot, after which Send reports
// errors.ErrReplyCancelled without side effects. A responder that is done
// with the slot without answering calls Drop, which wakes the requester with
// errors.ErrDisconnected.
type Reply[T any] struct {
	mu        sync.Mutex
	state     replyState
	value     T
	done      chan struct{}
	cancelled chan struct{}
}

// NewReply creates a pending reply slot
func NewReply[T any]() *Reply[T] {
	return &Reply[T]{
		done:      make(chan struct{}),
		cancelled: make(chan struct{}),
	}
}

// Send fulfils the slot with value.
func (r *Reply[T]) Send(value T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch r.state {
	case cancelled, dropped:
		return errors.ErrReplyCancelled
	case fulfilled:
		return errors.ErrReplyAlreadySent
	}
	r.value = value
	r.state = fulfilled
	close(r.done)
	return nil
}

// Drop releases an unfulfilled slot. It is a no-op once the slot is resolved.
func (r *Reply[T]) Drop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != pending {
		return
	}
	r.state = dropped
	close(r.done)
}

// Cancel marks the slot as abandoned by the requester.
// It is a no-op once the slot is resolved.
func (r *Reply[T]) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != pending {
		return
	}
	r.state = cancelled
	close(r.cancelled)
}

// Await blocks until the slot is fulfilled or dropped, or ctx is done.
// A done ctx cancels the slot unless a value won the race.
func (r *Reply[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-r.done:
		return r.Result()
	case <-ctx.Done():
		r.Cancel()
		if r.Resolved() {
			return r.Result()
		}
		var zero T
		return zero, ctx.Err()
	}
}

// Result returns the slot outcome without blocking.
// A pending or cancelled slot yields errors.ErrReplyCancelled.
func (r *Reply[T]) Result() (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var zero T
	switch r.state {
	case fulfilled:
		return r.value, nil
	case dropped:
		return zero, errors.ErrDisconnected
	default:
		return zero, errors.ErrReplyCancelled
	}
}

// Done is closed once the slot is fulfilled or dropped.
func (r *Reply[T]) Done() <-chan struct{} {
	return r.done
}

// Cancelled is closed once the requester abandons the slot.
func (r *Reply[T]) Cancelled() <-chan struct{} {
	return r.cancelled
}

// Resolved reports whether the slot was fulfilled or dropped.
func (r *Reply[T]) Resolved() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == fulfilled || r.state == dropped
}

// IsCancelled reports whether the requester abandoned the slot.
func (r *Reply[T]) IsCancelled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == cancelled
}
