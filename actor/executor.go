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
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/atomic"
	"golang.org/x/sync/semaphore"

	"github.com/kaiseki/kaiseki/component"
	"github.com/kaiseki/kaiseki/errors"
	imetric "github.com/kaiseki/kaiseki/internal/metric"
	"github.com/kaiseki/kaiseki/log"
)

const (
	// idle means the executor is not draining the mailbox
	idle int32 = iota
	// busy means a goroutine is draining the mailbox
	busy
)

// dropper is the reply slot of a message built with Call
type dropper interface {
	Drop()
}

// letter is a mailbox entry
type letter[M any] struct {
	message M
	reply   dropper
}

// drop releases the reply slot of a letter that will never be dispatched
func (l *letter[M]) drop() {
	if l.reply != nil {
		l.reply.Drop()
	}
}

// executor owns the state of one actor and its mailbox
type executor[M any] struct {
	id       component.ID
	state    State[M]
	strategy Executor
	mailbox  Mailbox[*letter[M]]
	slots    *semaphore.Weighted
	refs     *atomic.Int64

	// ctx is handed to Dispatch; cancelling it terminates the executor
	ctx context.Context

	// mu orders enqueues against close
	mu     sync.RWMutex
	closed bool

	processing *atomic.Int32
	finisher   sync.Once
	done       chan struct{}
	err        error

	// dead is cancelled when the executor terminates, waking suspended senders
	dead       context.Context
	cancelDead context.CancelFunc
	unwatch    func() bool

	logger  log.Logger
	metrics *imetric.ActorMetric
	attrs   otelmetric.MeasurementOption
}

func newExecutor[M any](ctx context.Context, state State[M], config *spawnConfig) *executor[M] {
	dead, cancelDead := context.WithCancel(context.Background())
	x := &executor[M]{
		id:         config.id,
		state:      state,
		strategy:   config.executor,
		slots:      semaphore.NewWeighted(int64(config.mailboxSize)),
		refs:       atomic.NewInt64(1),
		ctx:        ctx,
		processing: atomic.NewInt32(idle),
		done:       make(chan struct{}),
		dead:       dead,
		cancelDead: cancelDead,
		logger:     config.logger.With("actor", config.id.String(), "executor", config.executor.String()),
		attrs:      otelmetric.WithAttributes(attribute.String("executor", config.executor.String())),
	}

	meter := config.meter
	if meter == nil {
		meter = imetric.DefaultMeter()
	}
	metrics, err := imetric.NewActorMetric(meter)
	if err != nil {
		x.logger.Warnf("actor metrics disabled: %v", err)
		metrics, _ = imetric.NewActorMetric(noop.NewMeterProvider().Meter(""))
	}
	x.metrics = metrics

	switch config.executor {
	case ThreadExecutor:
		// the ring buffer rounds its size up, capacity is enforced by slots
		x.mailbox = NewBlockingMailbox[*letter[M]](config.mailboxSize)
	default:
		x.mailbox = NewDefaultMailbox[*letter[M]]()
	}
	return x
}

// start launches the executor and ties it to the lifetime of ctx
func (x *executor[M]) start() {
	x.metrics.SpawnCount().Add(x.ctx, 1, x.attrs)
	x.unwatch = context.AfterFunc(x.ctx, x.close)

	if x.strategy == ThreadExecutor {
		go x.threadLoop()
	}
	x.logger.Debug("executor started")
}

// enqueue suspends until the mailbox has room, then queues l.
// It fails with ErrDisconnected once the executor is closed or dead.
func (x *executor[M]) enqueue(ctx context.Context, l *letter[M]) error {
	acquireCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(x.dead, cancel)
	err := x.slots.Acquire(acquireCtx, 1)
	stop()
	cancel()
	if err != nil {
		if x.dead.Err() != nil {
			return errors.ErrDisconnected
		}
		return ctx.Err()
	}

	x.mu.RLock()
	if x.closed {
		x.mu.RUnlock()
		x.slots.Release(1)
		return errors.ErrDisconnected
	}
	err = x.mailbox.Enqueue(l)
	x.mu.RUnlock()
	if err != nil {
		x.slots.Release(1)
		return err
	}

	if x.strategy == TaskExecutor {
		x.schedule()
	}
	return nil
}

// close stops accepting messages. Queued messages are still dispatched
// unless the executor context is done.
func (x *executor[M]) close() {
	x.mu.Lock()
	if x.closed {
		x.mu.Unlock()
		return
	}
	x.closed = true
	x.mailbox.Close()
	x.mu.Unlock()

	if x.strategy == TaskExecutor {
		x.schedule()
	}
}

func (x *executor[M]) isClosed() bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.closed
}

// schedule starts a draining goroutine when transitioning from idle to busy.
func (x *executor[M]) schedule() {
	if !x.processing.CompareAndSwap(idle, busy) {
		return
	}
	go x.taskLoop()
}

func (x *executor[M]) taskLoop() {
	for {
		for {
			l, ok := x.mailbox.Dequeue()
			if !ok {
				break
			}
			if !x.deliver(l) {
				return
			}
		}

		if x.isClosed() {
			if err := x.ctx.Err(); err != nil {
				x.die(context.Cause(x.ctx))
				return
			}
			// closed before the emptiness check, so nothing can be queued anymore
			if x.mailbox.IsEmpty() {
				x.finish(nil)
				return
			}
			continue
		}

		x.processing.Store(idle)

		// messages or a close may have arrived while busy, when schedule could not start a loop
		if (!x.mailbox.IsEmpty() || x.isClosed()) && x.processing.CompareAndSwap(idle, busy) {
			continue
		}
		return
	}
}

func (x *executor[M]) threadLoop() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		l, ok := x.mailbox.Dequeue()
		if !ok {
			if err := x.ctx.Err(); err != nil {
				x.die(context.Cause(x.ctx))
				return
			}
			x.finish(nil)
			return
		}
		if !x.deliver(l) {
			return
		}
	}
}

// deliver frees the mailbox slot of l and dispatches it.
// It reports false once the executor has terminated.
func (x *executor[M]) deliver(l *letter[M]) bool {
	x.slots.Release(1)
	if err := x.ctx.Err(); err != nil {
		l.drop()
		x.die(context.Cause(x.ctx))
		return false
	}

	if err := x.dispatch(l); err != nil {
		x.metrics.DeathCount().Add(context.Background(), 1, x.attrs)
		x.logger.Error(err)
		x.die(err)
		return false
	}
	return true
}

// dispatch applies one message to the state, recovering a panic into an error.
// An unfulfilled reply slot is dropped once Dispatch returns.
func (x *executor[M]) dispatch(l *letter[M]) (err error) {
	defer l.drop()
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = errors.NewPanicError(e)
				return
			}
			err = errors.NewPanicError(fmt.Errorf("%v", r))
		}
	}()

	start := time.Now()
	x.state.Dispatch(x.ctx, l.message)
	x.metrics.ProcessedCount().Add(x.ctx, 1, x.attrs)
	x.metrics.DispatchDuration().Record(x.ctx, time.Since(start).Microseconds(), x.attrs)
	return nil
}

// die terminates the executor: the mailbox is closed and every queued
// message is dropped so that pending callers observe the disconnection.
func (x *executor[M]) die(cause error) {
	x.mu.Lock()
	x.closed = true
	x.mailbox.Close()
	x.mu.Unlock()

	dropped := 0
	for {
		l, ok := x.mailbox.Dequeue()
		if !ok {
			break
		}
		x.slots.Release(1)
		l.drop()
		dropped++
	}
	if dropped > 0 {
		x.logger.Warnf("dropped %d queued message(s)", dropped)
	}
	x.finish(cause)
}

func (x *executor[M]) finish(cause error) {
	x.finisher.Do(func() {
		x.err = cause
		x.unwatch()
		x.cancelDead()
		close(x.done)
		x.logger.Debug("executor stopped")
	})
}
