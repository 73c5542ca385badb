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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/goleak"

	"github.com/kaiseki/kaiseki/bus"
	"github.com/kaiseki/kaiseki/component"
	"github.com/kaiseki/kaiseki/errors"
	"github.com/kaiseki/kaiseki/log"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// manualTime is a TimeSource that only moves when slept on or advanced
type manualTime struct {
	mu     sync.Mutex
	now    time.Time
	jitter time.Duration
	sleeps []time.Duration
}

func newManualTime() *manualTime {
	return &manualTime{now: time.Unix(0, 0)}
}

func (m *manualTime) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *manualTime) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sleeps = append(m.sleeps, d)
	m.now = m.now.Add(d + m.jitter)
	return nil
}

func (m *manualTime) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

func (m *manualTime) Sleeps() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.sleeps...)
}

type rig struct {
	oscillatorConn *bus.Connection[Message]
	unitConn       *bus.Connection[Message]
}

func newRig(t *testing.T) *rig {
	t.Helper()
	clockBus := bus.NewMessageBus[Message]("clock",
		bus.WithLogger(log.DiscardLogger),
		bus.WithMeter(noop.NewMeterProvider().Meter("test")))
	oscillatorConn, unitConn, err := clockBus.Connect(component.NewID("oscillator"), component.NewID("unit"))
	require.NoError(t, err)
	return &rig{oscillatorConn: oscillatorConn, unitConn: unitConn}
}

// serve runs unit in the background and returns a function that stops it
func (r *rig) serve(t *testing.T, unit DrivenUnit) func() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, r.unitConn, unit, log.DiscardLogger) }()
	return func() {
		cancel()
		require.NoError(t, <-done)
	}
}

func newTestOscillator(t *testing.T, conn *bus.Connection[Message], opts ...Option) *Oscillator {
	t.Helper()
	opts = append([]Option{
		WithLogger(log.DiscardLogger),
		WithMeter(noop.NewMeterProvider().Meter("test")),
	}, opts...)
	oscillator, err := NewOscillator(conn, opts...)
	require.NoError(t, err)
	return oscillator
}

func TestOscillator(t *testing.T) {
	t.Run("With budget converging to the unit throughput", func(t *testing.T) {
		r := newRig(t)
		var budgets []uint64
		stop := r.serve(t, DrivenUnitFunc(func(_ context.Context, _, budget uint64) (uint64, error) {
			budgets = append(budgets, budget)
			return min(budget, 100), nil
		}))
		defer stop()

		oscillator := newTestOscillator(t, r.oscillatorConn,
			WithTimeSource(newManualTime()),
			WithInitialBudget(1000),
			WithMaxBatches(5))
		require.NoError(t, oscillator.Run(context.Background()))

		assert.Equal(t, []uint64{1000, 100, 100, 100, 100}, budgets)
		stats := oscillator.Stats()
		assert.EqualValues(t, 500, stats.Cycles)
		assert.EqualValues(t, 5, stats.Batches)
		assert.EqualValues(t, 100, stats.Budget)
		assert.Zero(t, stats.Overruns)
	})

	t.Run("With consecutive start cycles", func(t *testing.T) {
		r := newRig(t)
		var starts []uint64
		stop := r.serve(t, DrivenUnitFunc(func(_ context.Context, start, budget uint64) (uint64, error) {
			starts = append(starts, start)
			return budget / 2, nil
		}))
		defer stop()

		oscillator := newTestOscillator(t, r.oscillatorConn,
			WithTimeSource(newManualTime()),
			WithInitialBudget(64),
			WithMaxBatches(4))
		require.NoError(t, oscillator.Run(context.Background()))
		assert.Equal(t, []uint64{0, 32, 48, 56}, starts)
	})

	t.Run("With idle unit keeping a budget of one", func(t *testing.T) {
		r := newRig(t)
		stop := r.serve(t, DrivenUnitFunc(func(context.Context, uint64, uint64) (uint64, error) {
			return 0, nil
		}))
		defer stop()

		oscillator := newTestOscillator(t, r.oscillatorConn, WithTimeSource(newManualTime()), WithMaxBatches(3))
		require.NoError(t, oscillator.Run(context.Background()))
		assert.EqualValues(t, 1, oscillator.Stats().Budget)
		assert.Zero(t, oscillator.Stats().Cycles)
	})

	t.Run("With overruns logged but not fatal", func(t *testing.T) {
		r := newRig(t)
		var budgets []uint64
		stop := r.serve(t, DrivenUnitFunc(func(_ context.Context, _, budget uint64) (uint64, error) {
			budgets = append(budgets, budget)
			return budget + 5, nil
		}))
		defer stop()

		oscillator := newTestOscillator(t, r.oscillatorConn,
			WithTimeSource(newManualTime()),
			WithInitialBudget(10),
			WithMaxBatches(3))
		require.NoError(t, oscillator.Run(context.Background()))

		assert.Equal(t, []uint64{10, 10, 10}, budgets)
		stats := oscillator.Stats()
		assert.EqualValues(t, 3, stats.Overruns)
		assert.EqualValues(t, 45, stats.Cycles)
	})

	t.Run("With drift corrected after a stall", func(t *testing.T) {
		r := newRig(t)
		source := newManualTime()
		stop := r.serve(t, DrivenUnitFunc(func(_ context.Context, start, budget uint64) (uint64, error) {
			if start == 20 {
				// the unit stalls for three periods
				source.Advance(30 * time.Millisecond)
			}
			return budget, nil
		}))
		defer stop()

		oscillator := newTestOscillator(t, r.oscillatorConn,
			WithTimeSource(source),
			WithFrequency(1000),
			WithInitialBudget(10),
			WithMaxBatches(8))
		require.NoError(t, oscillator.Run(context.Background()))

		ms := time.Millisecond
		expected := []time.Duration{10 * ms, 10 * ms, 10 * ms, 0, 0, 0, 10 * ms, 10 * ms}
		sleeps := source.Sleeps()
		require.Len(t, sleeps, len(expected))
		for i := range expected {
			assert.InDelta(t, expected[i], sleeps[i], float64(time.Microsecond), "sleep %d", i)
		}

		stats := oscillator.Stats()
		assert.InDelta(t, 0, stats.Drift, float64(time.Microsecond))
		elapsed := source.Now().Sub(time.Unix(0, 0))
		assert.InDelta(t, 80*ms, elapsed, float64(time.Microsecond))
	})

	t.Run("With drift bounded under host jitter", func(t *testing.T) {
		r := newRig(t)
		source := newManualTime()
		source.jitter = 2 * time.Millisecond
		stop := r.serve(t, DrivenUnitFunc(func(_ context.Context, _, budget uint64) (uint64, error) {
			return budget, nil
		}))
		defer stop()

		oscillator := newTestOscillator(t, r.oscillatorConn,
			WithTimeSource(source),
			WithFrequency(1000),
			WithInitialBudget(10),
			WithMaxBatches(50))
		require.NoError(t, oscillator.Run(context.Background()))

		// each oversleep is compensated by the next period
		for _, sleep := range source.Sleeps()[1:] {
			assert.InDelta(t, 8*time.Millisecond, sleep, float64(time.Microsecond))
		}
		elapsed := source.Now().Sub(time.Unix(0, 0))
		assert.InDelta(t, 500*time.Millisecond, elapsed, float64(2*time.Millisecond+time.Microsecond))
	})

	t.Run("With speed multiplier", func(t *testing.T) {
		r := newRig(t)
		source := newManualTime()
		stop := r.serve(t, DrivenUnitFunc(func(_ context.Context, _, budget uint64) (uint64, error) {
			return budget, nil
		}))
		defer stop()

		oscillator := newTestOscillator(t, r.oscillatorConn,
			WithTimeSource(source),
			WithFrequency(1000),
			WithInitialBudget(10),
			WithSpeedMultiplier(2),
			WithMaxBatches(2))
		require.NoError(t, oscillator.Run(context.Background()))
		for _, sleep := range source.Sleeps() {
			assert.InDelta(t, 20*time.Millisecond, sleep, float64(time.Microsecond))
		}
	})

	t.Run("With start cycle mismatch", func(t *testing.T) {
		r := newRig(t)
		go func() {
			envelope, err := r.unitConn.Recv(context.Background())
			if assert.NoError(t, err) {
				start := envelope.Payload().(CycleBatchStart)
				assert.NoError(t, envelope.Reply(CycleBatchEnd{StartCycle: start.StartCycle + 1, CyclesSpent: 1}))
			}
		}()

		oscillator := newTestOscillator(t, r.oscillatorConn, WithTimeSource(newManualTime()))
		err := oscillator.Run(context.Background())
		require.ErrorIs(t, err, errors.ErrStartCycleMismatch)
		var mismatch *errors.StartCycleMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.EqualValues(t, 0, mismatch.Expected)
		assert.EqualValues(t, 1, mismatch.Actual)
	})

	t.Run("With unexpected reply", func(t *testing.T) {
		r := newRig(t)
		go func() {
			envelope, err := r.unitConn.Recv(context.Background())
			if assert.NoError(t, err) {
				assert.NoError(t, envelope.Reply(CycleBatchStart{}))
			}
		}()

		oscillator := newTestOscillator(t, r.oscillatorConn, WithTimeSource(newManualTime()))
		require.ErrorIs(t, oscillator.Run(context.Background()), errors.ErrUnexpectedMessage)
	})

	t.Run("With failing unit", func(t *testing.T) {
		r := newRig(t)
		done := make(chan error, 1)
		go func() {
			done <- Serve(context.Background(), r.unitConn, DrivenUnitFunc(func(context.Context, uint64, uint64) (uint64, error) {
				return 0, errors.ErrOutOfRange
			}), log.DiscardLogger)
		}()

		oscillator := newTestOscillator(t, r.oscillatorConn, WithTimeSource(newManualTime()))
		require.ErrorIs(t, oscillator.Run(context.Background()), errors.ErrDisconnected)
		require.ErrorIs(t, <-done, errors.ErrOutOfRange)
	})

	t.Run("With cancellation", func(t *testing.T) {
		r := newRig(t)
		stop := r.serve(t, DrivenUnitFunc(func(_ context.Context, _, budget uint64) (uint64, error) {
			return budget, nil
		}))
		defer stop()

		oscillator := newTestOscillator(t, r.oscillatorConn, WithFrequency(1000), WithInitialBudget(1))
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		require.NoError(t, oscillator.Run(ctx))
		assert.Positive(t, oscillator.Stats().Batches)
	})

	t.Run("With a run resumed after a stop", func(t *testing.T) {
		r := newRig(t)
		var starts []uint64
		stop := r.serve(t, DrivenUnitFunc(func(_ context.Context, start, budget uint64) (uint64, error) {
			starts = append(starts, start)
			return budget, nil
		}))
		defer stop()

		source := newManualTime()
		oscillator := newTestOscillator(t, r.oscillatorConn,
			WithTimeSource(source),
			WithFrequency(500),
			WithInitialBudget(8),
			WithMaxBatches(2))
		require.NoError(t, oscillator.Run(context.Background()))
		assert.EqualValues(t, 16, oscillator.Stats().Cycles)

		// the time spent stopped is not drift
		source.Advance(time.Hour)
		require.NoError(t, oscillator.Run(context.Background()))

		assert.Equal(t, []uint64{0, 8, 16, 24}, starts)
		stats := oscillator.Stats()
		assert.EqualValues(t, 32, stats.Cycles)
		assert.EqualValues(t, 4, stats.Batches)
		assert.EqualValues(t, 8, stats.Budget)
		assert.InDelta(t, 0, float64(stats.Drift), float64(time.Microsecond))
		for _, sleep := range source.Sleeps() {
			assert.InDelta(t, float64(16*time.Millisecond), float64(sleep), float64(time.Microsecond))
		}
	})

	t.Run("With abandoned batches skipped", func(t *testing.T) {
		r := newRig(t)
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := r.oscillatorConn.Request(timeoutCtx, CycleBatchStart{StartCycle: 0, CycleBudget: 4})
		require.ErrorIs(t, err, context.DeadlineExceeded)

		var starts []uint64
		stop := r.serve(t, DrivenUnitFunc(func(_ context.Context, start, budget uint64) (uint64, error) {
			starts = append(starts, start)
			return budget, nil
		}))
		defer stop()

		reply, err := r.oscillatorConn.Request(context.Background(), CycleBatchStart{StartCycle: 4, CycleBudget: 4})
		require.NoError(t, err)
		assert.Equal(t, CycleBatchEnd{StartCycle: 4, CyclesSpent: 4}, reply)
		assert.Equal(t, []uint64{4}, starts)
	})

	t.Run("With concurrent runs rejected", func(t *testing.T) {
		r := newRig(t)
		oscillator := newTestOscillator(t, r.oscillatorConn, WithTimeSource(newManualTime()))

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- oscillator.Run(ctx) }()

		// the first run is blocked on its first request
		_, err := r.unitConn.Recv(context.Background())
		require.NoError(t, err)
		require.ErrorIs(t, oscillator.Run(context.Background()), errors.ErrAlreadyRunning)
		cancel()
		require.NoError(t, <-done)
	})

	t.Run("With invalid options", func(t *testing.T) {
		r := newRig(t)
		_, err := NewOscillator(r.oscillatorConn,
			WithLogger(log.DiscardLogger),
			WithFrequency(0),
			WithInitialBudget(0),
			WithSpeedMultiplier(-1))
		require.ErrorIs(t, err, errors.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "frequency")
		assert.Contains(t, err.Error(), "initial budget")

		_, err = NewOscillator(nil, WithLogger(log.DiscardLogger))
		require.ErrorIs(t, err, errors.ErrInvalidConfig)
	})
}

func TestTimeline(t *testing.T) {
	start := time.Unix(100, 0)
	timeline := NewTimeline(start, 1_000_000, 1)
	assert.Equal(t, time.Millisecond, timeline.Nominal(1000))

	assert.False(t, timeline.Complete(1000, 1000))
	assert.True(t, timeline.Complete(1000, 1500))
	assert.EqualValues(t, 2500, timeline.Cycles())
	assert.EqualValues(t, 2, timeline.Batches())
	assert.EqualValues(t, 1, timeline.Overruns())

	// behind by 1.5ms
	period := timeline.NextPeriod(start.Add(4*time.Millisecond), 1000)
	assert.Equal(t, -1500*time.Microsecond, timeline.Drift())
	assert.Zero(t, period)

	// ahead by 0.5ms
	period = timeline.NextPeriod(start.Add(2*time.Millisecond), 1000)
	assert.Equal(t, 500*time.Microsecond, timeline.Drift())
	assert.Equal(t, 1500*time.Microsecond, period)

	// a pause shifts the start and leaves the drift untouched
	timeline.Pause(start.Add(2 * time.Millisecond))
	timeline.Resume(start.Add(time.Second))
	assert.Equal(t, start.Add(time.Second-2*time.Millisecond), timeline.Start())
	timeline.NextPeriod(start.Add(time.Second), 1000)
	assert.Equal(t, 500*time.Microsecond, timeline.Drift())

	// resuming a running timeline has no effect
	timeline.Resume(start.Add(time.Hour))
	assert.Equal(t, start.Add(time.Second-2*time.Millisecond), timeline.Start())
}

func TestMessages(t *testing.T) {
	var message Message = CycleBatchStart{StartCycle: 1, CycleBudget: 2}
	assert.Equal(t, "CycleBatchStart{start=1 budget=2}", message.String())
	message = CycleBatchEnd{StartCycle: 1, CyclesSpent: 2}
	assert.Equal(t, "CycleBatchEnd{start=1 spent=2}", message.String())
}
