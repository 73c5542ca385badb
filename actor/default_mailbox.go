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
	"sync"
	"sync/atomic"

	"github.com/kaiseki/kaiseki/errors"
)

type mpscNode[T any] struct {
	next atomic.Pointer[mpscNode[T]]
	data T
}

// DefaultMailbox is a lock-free multi-producer single-consumer queue.
// Dequeue never blocks; it backs the task executor.
type DefaultMailbox[T any] struct {
	// Separate cache lines to avoid false sharing between producers and consumer
	head   atomic.Pointer[mpscNode[T]] // consumer only
	_pad1  [64]byte
	tail   atomic.Pointer[mpscNode[T]] // producers only
	_pad2  [64]byte
	closed atomic.Bool
	nodes  sync.Pool
}

var _ Mailbox[int] = (*DefaultMailbox[int])(nil)

// NewDefaultMailbox creates an empty DefaultMailbox
func NewDefaultMailbox[T any]() *DefaultMailbox[T] {
	m := &DefaultMailbox[T]{}
	m.nodes.New = func() any { return new(mpscNode[T]) }
	dummy := new(mpscNode[T])
	m.head.Store(dummy)
	m.tail.Store(dummy)
	return m
}

// Enqueue places the given value in the mailbox
func (m *DefaultMailbox[T]) Enqueue(value T) error {
	if m.closed.Load() {
		return errors.ErrDisconnected
	}
	n := m.nodes.Get().(*mpscNode[T])
	n.data = value

	prev := m.tail.Swap(n)
	prev.next.Store(n)
	return nil
}

// Dequeue takes the oldest message from the mailbox
func (m *DefaultMailbox[T]) Dequeue() (T, bool) {
	var zero T
	head := m.head.Load()
	next := head.next.Load()
	if next == nil {
		return zero, false
	}

	m.head.Store(next)
	value := next.data
	next.data = zero

	head.next.Store(nil)
	m.nodes.Put(head)
	return value, true
}

// Len returns mailbox length
func (m *DefaultMailbox[T]) Len() int64 {
	n := m.head.Load().next.Load()
	var count int64
	for n != nil {
		count++
		n = n.next.Load()
	}
	return count
}

// IsEmpty returns true when the mailbox is empty
func (m *DefaultMailbox[T]) IsEmpty() bool {
	return m.head.Load().next.Load() == nil
}

// Close stops accepting messages
func (m *DefaultMailbox[T]) Close() {
	m.closed.Store(true)
}
