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
	"github.com/kaiseki/kaiseki/component"
	"github.com/kaiseki/kaiseki/errors"
	"github.com/kaiseki/kaiseki/future"
)

// Envelope carries a message across a message bus channel
type Envelope[M any] struct {
	sender  component.ID
	reply   *future.Reply[M]
	payload M
}

// Sender returns the ID of the component that sent the message
func (e *Envelope[M]) Sender() component.ID {
	return e.sender
}

// Payload returns the message
func (e *Envelope[M]) Payload() M {
	return e.payload
}

// ExpectsReply reports whether the message was sent with Request
func (e *Envelope[M]) ExpectsReply() bool {
	return e.reply != nil
}

// Reply answers a request. Replying to a requester that stopped waiting
// returns errors.ErrReplyCancelled and has no other effect.
func (e *Envelope[M]) Reply(message M) error {
	if e.reply == nil {
		return errors.ErrNoReplyExpected
	}
	return e.reply.Send(message)
}

// Abandoned is closed once the requester stopped waiting for the reply.
// It never closes for a message sent without Request.
func (e *Envelope[M]) Abandoned() <-chan struct{} {
	if e.reply == nil {
		return nil
	}
	return e.reply.Cancelled()
}

// Drop abandons a request without answering it. A requester left with no
// pending reply observes the receiver as disconnected.
func (e *Envelope[M]) Drop() {
	if e.reply != nil {
		e.reply.Drop()
	}
}
