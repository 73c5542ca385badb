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
	"time"

	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/atomic"

	"github.com/kaiseki/kaiseki/bus"
	"github.com/kaiseki/kaiseki/component"
	"github.com/kaiseki/kaiseki/errors"
	"github.com/kaiseki/kaiseki/internal/duration"
	imetric "github.com/kaiseki/kaiseki/internal/metric"
	"github.com/kaiseki/kaiseki/internal/validation"
	"github.com/kaiseki/kaiseki/log"
)

// Stats is a snapshot of the oscillator progress
type Stats struct {
	Cycles   uint64
	Batches  uint64
	Overruns uint64
	Budget   uint64
	Drift    time.Duration
	Period   time.Duration
}

// Oscillator paces a driven unit. It grants cycle budgets over a clock
// message bus, shrinks the budget to what the unit actually spends, and
// sleeps between batches so simulated time tracks wall-clock time.
type Oscillator struct {
	conn          *bus.Connection[Message]
	frequency     float64
	initialBudget uint64
	maxBatches    uint64
	multiplier    float64
	timeSource    TimeSource
	logger        log.Logger
	meter         otelmetric.Meter
	metrics       *imetric.OscillatorMetric
	attrs         otelmetric.MeasurementOption

	// timeline and resumeBudget are only touched by the running loop
	timeline     *Timeline
	resumeBudget uint64

	running  *atomic.Bool
	cycles   *atomic.Uint64
	batches  *atomic.Uint64
	overruns *atomic.Uint64
	budget   *atomic.Uint64
	drift    *atomic.Duration
	period   *atomic.Duration
}

var _ component.Component = (*Oscillator)(nil)

// NewOscillator creates an oscillator that requests batches through conn
func NewOscillator(conn *bus.Connection[Message], opts ...Option) (*Oscillator, error) {
	oscillator := &Oscillator{
		conn:          conn,
		frequency:     DefaultFrequency,
		initialBudget: DefaultInitialBudget,
		multiplier:    1,
		timeSource:    SystemTime,
		logger:        log.DefaultLogger,
		meter:         imetric.DefaultMeter(),
		running:       atomic.NewBool(false),
		cycles:        atomic.NewUint64(0),
		batches:       atomic.NewUint64(0),
		overruns:      atomic.NewUint64(0),
		budget:        atomic.NewUint64(0),
		drift:         atomic.NewDuration(0),
		period:        atomic.NewDuration(0),
	}

	for _, opt := range opts {
		opt.Apply(oscillator)
	}

	if err := validation.New("oscillator", validation.AllErrors()).
		AddAssertion(conn != nil, "the [connection] is required").
		AddValidator(validation.NewPositiveValidator("frequency", oscillator.frequency)).
		AddValidator(validation.NewPositiveValidator("initial budget", oscillator.initialBudget)).
		AddValidator(validation.NewPositiveValidator("speed multiplier", oscillator.multiplier)).
		AddAssertion(oscillator.timeSource != nil, "the [time source] is required").
		Validate(); err != nil {
		return nil, err
	}

	metrics, err := imetric.NewOscillatorMetric(oscillator.meter)
	if err != nil {
		oscillator.logger.Warnf("oscillator metrics disabled: %v", err)
		metrics, _ = imetric.NewOscillatorMetric(noop.NewMeterProvider().Meter(""))
	}

	oscillator.metrics = metrics
	oscillator.attrs = otelmetric.WithAttributes(attribute.String("oscillator", conn.ID().String()))
	oscillator.logger = oscillator.logger.With("oscillator", conn.ID().String())
	oscillator.budget.Store(oscillator.initialBudget)
	oscillator.resumeBudget = oscillator.initialBudget
	return oscillator, nil
}

// ID returns the identity the oscillator uses on the clock bus
func (o *Oscillator) ID() component.ID {
	return o.conn.ID()
}

// Stats returns a snapshot of the progress of the current or last run
func (o *Oscillator) Stats() Stats {
	return Stats{
		Cycles:   o.cycles.Load(),
		Batches:  o.batches.Load(),
		Overruns: o.overruns.Load(),
		Budget:   o.budget.Load(),
		Drift:    o.drift.Load(),
		Period:   o.period.Load(),
	}
}

// Run drives batches until ctx is done, the batch limit is reached or the
// protocol fails. Cancellation is a clean stop and returns nil. A start cycle
// mismatch or a reply other than CycleBatchEnd aborts the run.
// Running again after a stop resumes where the previous run left off: cycle
// count, budget and pacing carry over and the pause is not counted as drift.
// The batch limit applies to each run.
func (o *Oscillator) Run(ctx context.Context) error {
	if !o.running.CompareAndSwap(false, true) {
		return errors.ErrAlreadyRunning
	}
	defer o.running.Store(false)

	timeline := o.resume()
	budget := o.resumeBudget
	defer func() { o.pause(timeline, budget) }()

	period := timeline.Nominal(budget)
	o.logger.Infof("starting at %.0fHz (x%.2f) from cycle %d with budget %d",
		o.frequency, o.multiplier, timeline.Cycles(), budget)

	for ran := uint64(0); o.maxBatches == 0 || ran < o.maxBatches; ran++ {
		request := CycleBatchStart{StartCycle: timeline.Cycles(), CycleBudget: budget}
		reply, err := o.conn.Request(ctx, request)
		if err != nil {
			if ctx.Err() != nil {
				o.stopped(timeline)
				return nil
			}
			return err
		}

		end, ok := reply.(CycleBatchEnd)
		if !ok {
			o.logger.Errorf("unexpected reply to %s: %v", request, reply)
			return errors.NewErrUnexpectedMessage(reply)
		}

		if end.StartCycle != request.StartCycle {
			err := &errors.StartCycleMismatchError{Expected: request.StartCycle, Actual: end.StartCycle}
			o.logger.Error(err)
			return err
		}

		nextBudget := o.nextBudget(ctx, timeline, request, end)
		err = o.timeSource.Sleep(ctx, period)
		budget = nextBudget
		if err != nil {
			o.stopped(timeline)
			return nil
		}

		period = timeline.NextPeriod(o.timeSource.Now(), budget)
		o.publish(ctx, timeline, budget, period)
	}

	o.logger.Infof("completed %d batches (%d cycles)", timeline.Batches(), timeline.Cycles())
	return nil
}

// resume returns the timeline of the previous run, or starts one
func (o *Oscillator) resume() *Timeline {
	now := o.timeSource.Now()
	if o.timeline == nil {
		o.timeline = NewTimeline(now, o.frequency, o.multiplier)
		return o.timeline
	}
	o.timeline.Resume(now)
	return o.timeline
}

// pause keeps the pacing state for the next run
func (o *Oscillator) pause(timeline *Timeline, budget uint64) {
	timeline.Pause(o.timeSource.Now())
	o.resumeBudget = budget

	// a batch interrupted during its sleep was recorded but not published
	if unpublished := timeline.Batches() - o.batches.Load(); unpublished > 0 {
		o.metrics.BatchCount().Add(context.Background(), int64(unpublished), o.attrs)
		o.metrics.CycleCount().Add(context.Background(), int64(timeline.Cycles()-o.cycles.Load()), o.attrs)
	}
	o.cycles.Store(timeline.Cycles())
	o.batches.Store(timeline.Batches())
	o.overruns.Store(timeline.Overruns())
	o.budget.Store(budget)
}

func (o *Oscillator) stopped(timeline *Timeline) {
	o.logger.Infof("stopped after %d cycles, %s of simulated time",
		timeline.Cycles(), duration.Format(timeline.Expected()))
	o.logger.Debugf("timeline started %s ago", duration.Format(o.timeSource.Now().Sub(timeline.Start())))
}

// nextBudget records the batch and derives the budget of the next one.
// The unit is the authority on its throughput: a batch that spent less than
// granted shrinks the budget, floored at one cycle so the loop keeps moving.
func (o *Oscillator) nextBudget(ctx context.Context, timeline *Timeline, request CycleBatchStart, end CycleBatchEnd) uint64 {
	if timeline.Complete(request.CycleBudget, end.CyclesSpent) {
		o.metrics.OverrunCount().Add(ctx, 1, o.attrs)
		o.logger.Warnf("batch at cycle %d overran its budget: spent %d of %d",
			request.StartCycle, end.CyclesSpent, request.CycleBudget)
		return request.CycleBudget
	}

	if end.CyclesSpent < request.CycleBudget {
		return max(end.CyclesSpent, 1)
	}
	return request.CycleBudget
}

func (o *Oscillator) publish(ctx context.Context, timeline *Timeline, budget uint64, period time.Duration) {
	o.metrics.BatchCount().Add(ctx, 1, o.attrs)
	o.metrics.CycleCount().Add(ctx, int64(timeline.Cycles()-o.cycles.Load()), o.attrs)
	o.metrics.Drift().Record(ctx, timeline.Drift().Microseconds(), o.attrs)

	o.cycles.Store(timeline.Cycles())
	o.batches.Store(timeline.Batches())
	o.overruns.Store(timeline.Overruns())
	o.budget.Store(budget)
	o.drift.Store(timeline.Drift())
	o.period.Store(period)

	if o.logger.Enabled(log.DebugLevel) {
		o.logger.Debugf("batch %d: cycles=%d budget=%d drift=%s next period=%s",
			timeline.Batches(), timeline.Cycles(), budget, duration.Format(timeline.Drift()), duration.Format(period))
	}
}
