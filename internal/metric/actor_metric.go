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

// ActorMetric defines the actor instrumentation
type ActorMetric struct {
	// Specifies the total number of instances spawned
	spawnCount metric.Int64Counter
	// Specifies the total number of messages processed
	processedCount metric.Int64Counter
	// Specifies the total number of executors that died
	deathCount metric.Int64Counter
	// Specifies the dispatch duration in microseconds
	dispatchDuration metric.Int64Histogram
}

// NewActorMetric creates an instance of ActorMetric
func NewActorMetric(meter metric.Meter) (*ActorMetric, error) {
	actorMetric := new(ActorMetric)
	var err error
	if actorMetric.spawnCount, err = meter.Int64Counter(
		"actor_spawn_count",
		metric.WithDescription("Total number of instances created"),
	); err != nil {
		return nil, fmt.Errorf("failed to create spawnCount instrument, %w", err)
	}

	if actorMetric.processedCount, err = meter.Int64Counter(
		"actor_processed_count",
		metric.WithDescription("Total number of messages processed"),
	); err != nil {
		return nil, fmt.Errorf("failed to create processedCount instrument, %w", err)
	}

	if actorMetric.deathCount, err = meter.Int64Counter(
		"actor_death_count",
		metric.WithDescription("Total number of executors terminated by a failure"),
	); err != nil {
		return nil, fmt.Errorf("failed to create deathCount instrument, %w", err)
	}

	if actorMetric.dispatchDuration, err = meter.Int64Histogram(
		"actor_dispatch_duration",
		metric.WithDescription("The latency of a message dispatch in microseconds"),
		metric.WithUnit("us"),
	); err != nil {
		return nil, fmt.Errorf("failed to create dispatchDuration instrument, %w", err)
	}

	return actorMetric, nil
}

// SpawnCount returns the spawned instances counter
func (x *ActorMetric) SpawnCount() metric.Int64Counter {
	return x.spawnCount
}

// ProcessedCount returns the processed messages counter
func (x *ActorMetric) ProcessedCount() metric.Int64Counter {
	return x.processedCount
}

// DeathCount returns the executor deaths counter
func (x *ActorMetric) DeathCount() metric.Int64Counter {
	return x.deathCount
}

// DispatchDuration returns the dispatch latency histogram
func (x *ActorMetric) DispatchDuration() metric.Int64Histogram {
	return x.dispatchDuration
}
