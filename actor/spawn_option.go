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
	"go.opentelemetry.io/otel/metric"

	"github.com/kaiseki/kaiseki/component"
	"github.com/kaiseki/kaiseki/log"
)

// Executor selects how an actor runs its dispatch loop
type Executor int

const (
	// TaskExecutor runs the dispatch loop on a goroutine scheduled only
	// while the mailbox has messages.
	TaskExecutor Executor = iota
	// ThreadExecutor runs the dispatch loop on a dedicated goroutine locked
	// to an OS thread, blocking while the mailbox is empty.
	ThreadExecutor
)

// String returns the executor name
func (e Executor) String() string {
	if e == ThreadExecutor {
		return "thread"
	}
	return "task"
}

// DefaultMailboxSize is the number of messages an actor mailbox holds before
// senders suspend.
const DefaultMailboxSize = 1

type spawnConfig struct {
	executor    Executor
	mailboxSize int
	id          component.ID
	name        string
	logger      log.Logger
	meter       metric.Meter
}

func newSpawnConfig(opts ...SpawnOption) *spawnConfig {
	config := &spawnConfig{
		executor:    TaskExecutor,
		mailboxSize: DefaultMailboxSize,
		name:        "actor",
		logger:      log.DefaultLogger,
	}

	for _, opt := range opts {
		opt.Apply(config)
	}

	if config.id.IsZero() {
		config.id = component.NewID(config.name)
	}
	return config
}

// SpawnOption is the interface that applies to an actor at spawn time
type SpawnOption interface {
	// Apply sets the Option value of a config.
	Apply(config *spawnConfig)
}

var _ SpawnOption = spawnOption(nil)

type spawnOption func(config *spawnConfig)

func (f spawnOption) Apply(c *spawnConfig) {
	f(c)
}

// WithExecutor selects the executor strategy. The default is TaskExecutor.
func WithExecutor(executor Executor) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.executor = executor
	})
}

// WithMailboxSize sets the mailbox capacity. Values lower than one are ignored.
func WithMailboxSize(size int) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		if size > 0 {
			config.mailboxSize = size
		}
	})
}

// WithID sets the identity of the actor. It takes precedence over WithName.
func WithID(id component.ID) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.id = id
	})
}

// WithName sets the label of the generated actor identity
func WithName(name string) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.name = name
	})
}

// WithLogger sets the actor logger
func WithLogger(logger log.Logger) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.logger = logger
	})
}

// WithMeter sets the meter used to create the actor instruments
func WithMeter(meter metric.Meter) SpawnOption {
	return spawnOption(func(config *spawnConfig) {
		config.meter = meter
	})
}
