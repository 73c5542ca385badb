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
	"reflect"
	"slices"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.uber.org/multierr"

	"github.com/kaiseki/kaiseki/component"
	"github.com/kaiseki/kaiseki/errors"
	"github.com/kaiseki/kaiseki/future"
	imetric "github.com/kaiseki/kaiseki/internal/metric"
	"github.com/kaiseki/kaiseki/log"
)

// link is a one-directional channel between two components.
// The data channel is never closed; closing the link closes done instead.
type link[M any] struct {
	from   component.ID
	to     component.ID
	ch     chan *Envelope[M]
	done   chan struct{}
	closer sync.Once
}

func newLink[M any](from, to component.ID, capacity int) *link[M] {
	return &link[M]{
		from: from,
		to:   to,
		ch:   make(chan *Envelope[M], capacity),
		done: make(chan struct{}),
	}
}

func (l *link[M]) close() {
	l.closer.Do(func() { close(l.done) })
}

func (l *link[M]) closed() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}

func (l *link[M]) disconnected() error {
	return &errors.DisconnectedError{From: l.from, To: l.to}
}

// poll returns a queued envelope without blocking
func (l *link[M]) poll() (*Envelope[M], bool) {
	select {
	case envelope := <-l.ch:
		return envelope, true
	default:
		return nil, false
	}
}

// MessageBus connects components through bounded FIFO channels.
// Every channel joins one sender to one receiver. A component may be the
// sender or receiver of any number of channels.
type MessageBus[M any] struct {
	id        component.ID
	mu        sync.RWMutex
	senders   map[component.ID][]*link[M]
	receivers map[component.ID][]*link[M]
	removed   mapset.Set[component.ID]
	capacity  int
	logger    log.Logger
	metrics   *imetric.BusMetric
	attrs     otelmetric.MeasurementOption
}

// NewMessageBus creates a message bus without channels
func NewMessageBus[M any](name string, opts ...Option) *MessageBus[M] {
	config := newOptions(opts...)
	id := component.NewID(name)
	return &MessageBus[M]{
		id:        id,
		senders:   make(map[component.ID][]*link[M]),
		receivers: make(map[component.ID][]*link[M]),
		removed:   mapset.NewSet[component.ID](),
		capacity:  config.channelCapacity,
		logger:    config.logger.With("bus", id.String()),
		metrics:   newBusMetric(config),
		attrs:     otelmetric.WithAttributes(attribute.String("bus", name)),
	}
}

// ID returns the bus identity
func (b *MessageBus[M]) ID() component.ID {
	return b.id
}

// Connect opens a channel from sender to receiver and returns a connection
// handle for each end.
func (b *MessageBus[M]) Connect(sender, receiver component.ID) (*Connection[M], *Connection[M], error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.removed.Contains(sender) {
		return nil, nil, errors.NewErrComponentRemoved(sender)
	}
	if b.removed.Contains(receiver) {
		return nil, nil, errors.NewErrComponentRemoved(receiver)
	}

	l := newLink[M](sender, receiver, b.capacity)
	b.senders[sender] = append(b.senders[sender], l)
	b.receivers[receiver] = append(b.receivers[receiver], l)
	b.logger.Debugf("connected %s => %s", sender, receiver)

	return &Connection[M]{bus: b, id: sender}, &Connection[M]{bus: b, id: receiver}, nil
}

// Send delivers message to every receiver connected to sender, suspending
// while a channel is full. Every live receiver gets the message even when
// some peers are gone; the disconnections are reported together.
func (b *MessageBus[M]) Send(ctx context.Context, sender component.ID, message M) error {
	links := b.outgoing(sender)
	if len(links) == 0 {
		return errors.NewErrNoReceiversForSender(sender)
	}

	var err error
	for _, l := range links {
		envelope := &Envelope[M]{sender: sender, payload: message}
		if sendErr := b.deliver(ctx, l, envelope); sendErr != nil {
			if ctx.Err() != nil {
				return sendErr
			}
			err = multierr.Append(err, sendErr)
			continue
		}
		b.metrics.SentCount().Add(ctx, 1, b.attrs)
	}
	return err
}

// Recv suspends until a message is available on any channel of receiver.
func (b *MessageBus[M]) Recv(ctx context.Context, receiver component.ID) (*Envelope[M], error) {
	links := b.incoming(receiver)
	if len(links) == 0 {
		return nil, errors.NewErrNoSendersToReceiver(receiver)
	}

	// a queued message always wins over a closed peer
	for _, l := range links {
		if envelope, ok := l.poll(); ok {
			return b.received(ctx, envelope), nil
		}
	}

	cases := make([]reflect.SelectCase, 0, 2*len(links)+1)
	for _, l := range links {
		cases = append(cases,
			reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(l.ch)},
			reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(l.done)})
	}
	cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctx.Done())})

	chosen, value, _ := reflect.Select(cases)
	if chosen == len(cases)-1 {
		return nil, ctx.Err()
	}

	l := links[chosen/2]
	if chosen%2 == 0 {
		return b.received(ctx, value.Interface().(*Envelope[M])), nil
	}

	if envelope, ok := l.poll(); ok {
		return b.received(ctx, envelope), nil
	}
	b.prune(l)
	return nil, l.disconnected()
}

// TryRecv returns a queued message of receiver without suspending.
func (b *MessageBus[M]) TryRecv(receiver component.ID) (*Envelope[M], error) {
	links := b.incoming(receiver)
	if len(links) == 0 {
		return nil, errors.NewErrNoSendersToReceiver(receiver)
	}

	for _, l := range links {
		if envelope, ok := l.poll(); ok {
			return b.received(context.Background(), envelope), nil
		}
	}

	for _, l := range links {
		if l.closed() {
			b.prune(l)
			return nil, l.disconnected()
		}
	}
	return nil, errors.NewErrNoMessagesAvailable(receiver)
}

// Request sends payload to every receiver connected to sender with a reply
// slot each, then suspends until the first reply. The remaining slots are
// cancelled. Cancelling ctx cancels every slot.
func (b *MessageBus[M]) Request(ctx context.Context, sender component.ID, payload M) (M, error) {
	var zero M
	links := b.outgoing(sender)
	if len(links) == 0 {
		return zero, errors.NewErrNoReceiversForSender(sender)
	}

	b.metrics.RequestCount().Add(ctx, 1, b.attrs)

	type pendingReply struct {
		link  *link[M]
		reply *future.Reply[M]
	}

	pending := make([]pendingReply, 0, len(links))
	defer func() {
		for _, p := range pending {
			p.reply.Cancel()
		}
	}()

	var lastErr error
	for _, l := range links {
		reply := future.NewReply[M]()
		envelope := &Envelope[M]{sender: sender, reply: reply, payload: payload}
		if err := b.deliver(ctx, l, envelope); err != nil {
			if ctx.Err() != nil {
				return zero, err
			}
			lastErr = err
			continue
		}
		b.metrics.SentCount().Add(ctx, 1, b.attrs)
		pending = append(pending, pendingReply{link: l, reply: reply})
	}

	for len(pending) > 0 {
		cases := make([]reflect.SelectCase, 0, 2*len(pending)+1)
		for _, p := range pending {
			cases = append(cases,
				reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(p.reply.Done())},
				reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(p.link.done)})
		}
		cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctx.Done())})

		chosen, _, _ := reflect.Select(cases)
		if chosen == len(cases)-1 {
			return zero, ctx.Err()
		}

		p := pending[chosen/2]
		if value, err := p.reply.Result(); err == nil {
			return value, nil
		}

		// the receiver went away or dropped the request without answering
		p.reply.Cancel()
		b.logger.Debugf("request from %s to %s abandoned by receiver", sender, p.link.to)
		lastErr = p.link.disconnected()
		pending = slices.Delete(pending, chosen/2, chosen/2+1)
	}

	if lastErr == nil {
		lastErr = errors.NewErrNoReceiversForSender(sender)
	}
	return zero, lastErr
}

// Remove closes every channel of id. Peers observe the disconnection on their
// next operation. The id is never accepted again by this bus.
func (b *MessageBus[M]) Remove(id component.ID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.removed.Add(id) {
		return
	}

	for _, l := range b.senders[id] {
		l.close()
	}
	for _, l := range b.receivers[id] {
		l.close()
	}
	delete(b.senders, id)
	delete(b.receivers, id)
	b.logger.Infof("removed %s", id)
}

func (b *MessageBus[M]) deliver(ctx context.Context, l *link[M], envelope *Envelope[M]) error {
	if l.closed() {
		b.prune(l)
		return l.disconnected()
	}

	select {
	case l.ch <- envelope:
		return nil
	case <-l.done:
		b.prune(l)
		return l.disconnected()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *MessageBus[M]) received(ctx context.Context, envelope *Envelope[M]) *Envelope[M] {
	b.metrics.ReceivedCount().Add(ctx, 1, b.attrs)
	return envelope
}

func (b *MessageBus[M]) outgoing(sender component.ID) []*link[M] {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.senders[sender])
}

func (b *MessageBus[M]) incoming(receiver component.ID) []*link[M] {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.receivers[receiver])
}

// prune forgets a closed link on the surviving side
func (b *MessageBus[M]) prune(l *link[M]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.senders[l.from] = slices.DeleteFunc(b.senders[l.from], func(x *link[M]) bool { return x == l })
	if len(b.senders[l.from]) == 0 {
		delete(b.senders, l.from)
	}
	b.receivers[l.to] = slices.DeleteFunc(b.receivers[l.to], func(x *link[M]) bool { return x == l })
	if len(b.receivers[l.to]) == 0 {
		delete(b.receivers, l.to)
	}
}
