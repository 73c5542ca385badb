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

// BusMetric defines the bus instrumentation
type BusMetric struct {
	// Specifies the total number of addressed reads
	readCount metric.Int64Counter
	// Specifies the total number of addressed writes
	writeCount metric.Int64Counter
	// Specifies the total number of accesses that hit no mapping
	missCount metric.Int64Counter
	// Specifies the total number of messages sent
	sentCount metric.Int64Counter
	// Specifies the total number of messages received
	receivedCount metric.Int64Counter
	// Specifies the total number of requests issued
	requestCount metric.Int64Counter
}

// NewBusMetric creates an instance of BusMetric
func NewBusMetric(meter metric.Meter) (*BusMetric, error) {
	busMetric := new(BusMetric)
	var err error
	if busMetric.readCount, err = meter.Int64Counter(
		"bus_read_count",
		metric.WithDescription("Total number of addressed reads"),
	); err != nil {
		return nil, fmt.Errorf("failed to create readCount instrument, %w", err)
	}

	if busMetric.writeCount, err = meter.Int64Counter(
		"bus_write_count",
		metric.WithDescription("Total number of addressed writes"),
	); err != nil {
		return nil, fmt.Errorf("failed to create writeCount instrument, %w", err)
	}

	if busMetric.missCount, err = meter.Int64Counter(
		"bus_miss_count",
		metric.WithDescription("Total number of accesses to unmapped addresses"),
	); err != nil {
		return nil, fmt.Errorf("failed to create missCount instrument, %w", err)
	}

	if busMetric.sentCount, err = meter.Int64Counter(
		"bus_sent_count",
		metric.WithDescription("Total number of messages sent"),
	); err != nil {
		return nil, fmt.Errorf("failed to create sentCount instrument, %w", err)
	}

	if busMetric.receivedCount, err = meter.Int64Counter(
		"bus_received_count",
		metric.WithDescription("Total number of messages received"),
	); err != nil {
		return nil, fmt.Errorf("failed to create receivedCount instrument, %w", err)
	}

	if busMetric.requestCount, err = meter.Int64Counter(
		"bus_request_count",
		metric.WithDescription("Total number of requests issued"),
	); err != nil {
		return nil, fmt.Errorf("failed to create requestCount instrument, %w", err)
	}

	return busMetric, nil
}

// ReadCount returns the addressed reads counter
func (x *BusMetric) ReadCount() metric.Int64Counter {
	return x.readCount
}

// WriteCount returns the addressed writes counter
func (x *BusMetric) WriteCount() metric.Int64Counter {
	return x.writeCount
}

// MissCount returns the unmapped accesses counter
func (x *BusMetric) MissCount() metric.Int64Counter {
	return x.missCount
}

// SentCount returns the sent messages counter
func (x *BusMetric) SentCount() metric.Int64Counter {
	return x.sentCount
}

// ReceivedCount returns the received messages counter
func (x *BusMetric) ReceivedCount() metric.Int64Counter {
	return x.receivedCount
}

// RequestCount returns the requests counter
func (x *BusMetric) RequestCount() metric.Int64Counter {
	return x.requestCount
}
