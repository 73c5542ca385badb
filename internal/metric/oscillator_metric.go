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

package metric

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// OscillatorMetric defines the clock instrumentation
type OscillatorMetric struct {
	batchCount   metric.Int64Counter
	cycleCount   metric.Int64Counter
	overrunCount metric.Int64Counter
	// Specifies the drift observed after each batch, in microseconds
	drift metric.Int64Histogram
}

// NewOscillatorMetric creates an instance of OscillatorMetric
func NewOscillatorMetric(meter metric.Meter) (*OscillatorMetric, error) {
	oscillatorMetric := new(OscillatorMetric)
	var err error
	if oscillatorMetric.batchCount, err = meter.Int64Counter(
		"oscillator_batch_count",
		metric.WithDescription("Total number of cycle batches completed"),
	); err != nil {
		return nil, fmt.Errorf("failed to create batchCount instrument, %w", err)
	}

	if oscillatorMetric.cycleCount, err = meter.Int64Counter(
		"oscillator_cycle_count",
		metric.WithDescription("Total number of cycles executed"),
	); err != nil {
		return nil, fmt.Errorf("failed to create cycleCount instrument, %w", err)
	}

	if oscillatorMetric.overrunCount, err = meter.Int64Counter(
		"oscillator_overrun_count",
		metric.WithDescription("Total number of batches that exceeded their budget"),
	); err != nil {
		return nil, fmt.Errorf("failed to create overrunCount instrument, %w", err)
	}

	if oscillatorMetric.drift, err = meter.Int64Histogram(
		"oscillator_drift",
		metric.WithDescription("Difference between expected and actual elapsed time"),
		metric.WithUnit("us"),
	); err != nil {
		return nil, fmt.Errorf("failed to create drift instrument, %w", err)
	}

	return oscillatorMetric, nil
}

// BatchCount returns the completed batches counter
func (x *OscillatorMetric) BatchCount() metric.Int64Counter {
	return x.batchCount
}

// CycleCount returns the executed cycles counter
func (x *OscillatorMetric) CycleCount() metric.Int64Counter {
	return x.cycleCount
}

// OverrunCount returns the overrun counter
func (x *OscillatorMetric) OverrunCount() metric.Int64Counter {
	return x.overrunCount
}

// Drift returns the drift histogram
func (x *OscillatorMetric) Drift() metric.Int64Histogram {
	return x.drift
}
