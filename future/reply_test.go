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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/kaiseki/kaiseki/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestReply(t *testing.T) {
	t.Run("With value sent before await", func(t *testing.T) {
		reply := NewReply[int]()
		require.NoError(t, reply.Send(42))
		value, err := reply.Await(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 42, value)
		assert.True(t, reply.Resolved())
	})

	t.Run("With value sent concurrently", func(t *testing.T) {
		reply := NewReply[string]()
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			time.Sleep(10 * time.Millisecond)
			assert.NoError(t, reply.Send("pong"))
		}()
		value, err := reply.Await(context.Background())
		wg.Wait()
		require.NoError(t, err)
		assert.Equal(t, "pong", value)
	})

	t.Run("With second send rejected", func(t *testing.T) {
		reply := NewReply[int]()
		require.NoError(t, reply.Send(1))
		require.ErrorIs(t, reply.Send(2), errors.ErrReplyAlreadySent)
		value, err := reply.Result()
		require.NoError(t, err)
		assert.Equal(t, 1, value)
	})

	t.Run("With abandoned wait", func(t *testing.T) {
		reply := NewReply[int]()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err := reply.Await(ctx)
		require.ErrorIs(t, err, context.DeadlineExceeded)
		require.True(t, reply.IsCancelled())
		select {
		case <-reply.Cancelled():
		default:
			t.Fatal("cancelled channel not closed")
		}
		// the responder learns about the abandon without failing hard
		require.ErrorIs(t, reply.Send(7), errors.ErrReplyCancelled)
	})

	t.Run("With dropped slot", func(t *testing.T) {
		reply := NewReply[int]()
		reply.Drop()
		_, err := reply.Await(context.Background())
		require.ErrorIs(t, err, errors.ErrDisconnected)
		require.ErrorIs(t, reply.Send(1), errors.ErrReplyCancelled)
	})

	t.Run("With drop after send", func(t *testing.T) {
		reply := NewReply[int]()
		require.NoError(t, reply.Send(3))
		reply.Drop()
		reply.Cancel()
		value, err := reply.Await(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, value)
		assert.False(t, reply.IsCancelled())
	})
}
