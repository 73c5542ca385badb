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
	"sync/atomic"

	"github.com/Workiva/go-datastructures/queue"

	"github.com/kaiseki/kaiseki/errors"
)

// BlockingMailbox is a bounded ring buffer whose Dequeue waits for a message.
// It backs the thread executor.
type BlockingMailbox[T any] struct {
	underlying *queue.RingBuffer
	signal     chan struct{}
	closed     atomic.Bool
}

var _ Mailbox[int] = (*BlockingMailbox[int])(nil)

// NewBlockingMailbox creates a BlockingMailbox holding up to capacity messages
func NewBlockingMailbox[T any](capacity int) *BlockingMailbox[T] {
	return &BlockingMailbox[T]{
		underlying: queue.NewRingBuffer(uint64(max(capacity, 1))),
		signal:     make(chan struct{}, 1),
	}
}

// Enqueue places the given value in the mailbox. It fails when the buffer is full.
func (m *BlockingMailbox[T]) Enqueue(value T) error {
	if m.closed.Load() {
		return errors.ErrDisconnected
	}
	ok, err := m.underlying.Offer(value)
	if err != nil {
		return errors.ErrDisconnected
	}
	if !ok {
		return errors.ErrMailboxFull
	}
	m.notify()
	return nil
}

// Dequeue waits for the oldest message. It reports false once the mailbox
// is closed and drained.
func (m *BlockingMailbox[T]) Dequeue() (T, bool) {
	var zero T
	for {
		if m.underlying.Len() > 0 {
			item, err := m.underlying.Get()
			if err != nil {
				return zero, false
			}
			return item.(T), true
		}
		if m.closed.Load() {
			// an offer may have landed between the length check and close
			if m.underlying.Len() > 0 {
				continue
			}
			m.underlying.Dispose()
			return zero, false
		}
		<-m.signal
	}
}

// IsEmpty returns true when the mailbox is empty
func (m *BlockingMailbox[T]) IsEmpty() bool {
	return m.underlying.Len() == 0
}

// Len returns mailbox length
func (m *BlockingMailbox[T]) Len() int64 {
	return int64(m.underlying.Len())
}

// Close stops accepting messages and wakes a waiting consumer
func (m *BlockingMailbox[T]) Close() {
	m.closed.Store(true)
	m.notify()
}

func (m *BlockingMailbox[T]) notify() {
	select {
	case m.signal <- struct{}{}:
	default:
	}
}
