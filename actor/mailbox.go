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

// Mailbox is the ordered, single-consumer queue between the handles of an
// actor and its executor.
//
// Capacity is enforced by the handles, so Enqueue only fails once the
// mailbox is closed.
type Mailbox[T any] interface {
	// Enqueue pushes a message into the mailbox.
	// It is safe for concurrent calls by multiple producers.
	Enqueue(msg T) error
	// Dequeue fetches the next message. It reports false once the mailbox
	// is empty; a blocking mailbox waits instead until a message arrives or
	// it is closed.
	// Only the executor calls Dequeue.
	Dequeue() (T, bool)
	// IsEmpty reports whether the mailbox currently has no messages.
	// This is a best-effort snapshot under concurrency.
	IsEmpty() bool
	// Len returns a snapshot of the number of messages in the mailbox.
	Len() int64
	// Close stops accepting messages. Queued messages can still be dequeued.
	Close()
}
