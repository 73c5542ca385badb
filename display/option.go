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

package display

import (
	"go.opentelemetry.io/otel/metric"

	"github.com/kaiseki/kaiseki/actor"
	"github.com/kaiseki/kaiseki/component"
	"github.com/kaiseki/kaiseki/log"
)

const (
	// DefaultWidth is the framebuffer width in pixels
	DefaultWidth = 64
	// DefaultHeight is the framebuffer height in pixels
	DefaultHeight = 32
)

type options struct {
	id       component.ID
	name     string
	width    uint64
	height   uint64
	logger   log.Logger
	meter    metric.Meter
	executor actor.Executor
}

// Option is the interface that applies a display option.
type Option interface {
	// Apply sets the Option value of a config.
	Apply(*options)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*options)

// Apply applies the options
func (f OptionFunc) Apply(o *options) {
	f(o)
}

// WithName sets the display label
func WithName(name string) Option {
	return OptionFunc(func(o *options) {
		o.name = name
	})
}

// WithID sets the display identity. The name option is ignored when it is set.
func WithID(id component.ID) Option {
	return OptionFunc(func(o *options) {
		o.id = id
		o.name = id.Label()
	})
}

// WithSize sets the framebuffer dimensions
func WithSize(width, height uint64) Option {
	return OptionFunc(func(o *options) {
		o.width = width
		o.height = height
	})
}

// WithLogger sets the logger
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(o *options) {
		o.logger = logger
	})
}

// WithMeter sets the meter of the framebuffer actor
func WithMeter(meter metric.Meter) Option {
	return OptionFunc(func(o *options) {
		o.meter = meter
	})
}

// WithExecutor selects how the framebuffer actor runs
func WithExecutor(executor actor.Executor) Option {
	return OptionFunc(func(o *options) {
		o.executor = executor
	})
}

func newOptions(opts ...Option) *options {
	o := &options{
		name:     "monochrome display",
		width:    DefaultWidth,
		height:   DefaultHeight,
		logger:   log.DefaultLogger,
		executor: actor.TaskExecutor,
	}
	for _, opt := range opts {
		opt.Apply(o)
	}
	return o
}
