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
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	imetric "github.com/kaiseki/kaiseki/internal/metric"
	"github.com/kaiseki/kaiseki/log"
)

// DefaultChannelCapacity is the number of in-flight messages a message bus
// channel holds before senders suspend.
const DefaultChannelCapacity = 8

type options struct {
	logger          log.Logger
	meter           metric.Meter
	channelCapacity int
}

// Option is the interface that applies a bus option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(opts *options)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(opts *options)

// Apply applies the option
func (f OptionFunc) Apply(opts *options) {
	f(opts)
}

// WithLogger sets the bus logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(opts *options) {
		opts.logger = logger
	})
}

// WithMeter sets the meter used to create the bus instruments
func WithMeter(meter metric.Meter) Option {
	return OptionFunc(func(opts *options) {
		opts.meter = meter
	})
}

// WithChannelCapacity sets the capacity of each message bus channel.
// Values lower than one are ignored.
func WithChannelCapacity(capacity int) Option {
	return OptionFunc(func(opts *options) {
		if capacity > 0 {
			opts.channelCapacity = capacity
		}
	})
}

func newOptions(opts ...Option) *options {
	config := &options{
		logger:          log.DefaultLogger,
		meter:           imetric.DefaultMeter(),
		channelCapacity: DefaultChannelCapacity,
	}
	for _, opt := range opts {
		opt.Apply(config)
	}
	return config
}

// newBusMetric falls back to no-op instruments when the configured meter rejects them
func newBusMetric(config *options) *imetric.BusMetric {
	busMetric, err := imetric.NewBusMetric(config.meter)
	if err != nil {
		config.logger.Warnf("bus metrics disabled: %v", err)
		busMetric, _ = imetric.NewBusMetric(noop.NewMeterProvider().Meter(""))
	}
	return busMetric
}
