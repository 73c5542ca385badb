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

package clock

import (
	"context"

	"github.com/kaiseki/kaiseki/bus"
	"github.com/kaiseki/kaiseki/log"
)

// DrivenUnit executes the cycles granted by an oscillator
type DrivenUnit interface {
	// ExecuteCycles runs up to budget cycles starting at start and returns
	// the number of cycles actually spent. Stopping early is allowed.
	ExecuteCycles(ctx context.Context, start, budget uint64) (uint64, error)
}

// DrivenUnitFunc adapts a function to DrivenUnit
type DrivenUnitFunc func(ctx context.Context, start, budget uint64) (uint64, error)

// ExecuteCycles calls f
func (f DrivenUnitFunc) ExecuteCycles(ctx context.Context, start, budget uint64) (uint64, error) {
	return f(ctx, start, budget)
}

// Serve answers the batch requests received on conn with unit until ctx is
// done or unit fails. The connection is closed on return so the oscillator
// observes the disconnection.
func Serve(ctx context.Context, conn *bus.Connection[Message], unit DrivenUnit, logger log.Logger) error {
	defer conn.Close()
	if logger == nil {
		logger = log.DiscardLogger
	}
	logger = logger.With("unit", conn.ID().String())

	for {
		envelope, err := conn.Recv(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		start, ok := envelope.Payload().(CycleBatchStart)
		if !ok {
			logger.Warnf("ignoring %s from %s", envelope.Payload(), envelope.Sender())
			continue
		}

		select {
		case <-envelope.Abandoned():
			logger.Debugf("skipping batch at cycle %d, the oscillator stopped waiting", start.StartCycle)
			continue
		default:
		}

		spent, err := unit.ExecuteCycles(ctx, start.StartCycle, start.CycleBudget)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Errorf("batch at cycle %d failed: %v", start.StartCycle, err)
			return err
		}

		if err := envelope.Reply(CycleBatchEnd{StartCycle: start.StartCycle, CyclesSpent: spent}); err != nil {
			logger.Debugf("batch reply at cycle %d not delivered: %v", start.StartCycle, err)
		}
	}
}
