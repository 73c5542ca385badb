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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestNewBusMetric(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	busMetric, err := NewBusMetric(meter)
	require.NoError(t, err)
	assert.NotNil(t, busMetric.ReadCount())
	assert.NotNil(t, busMetric.WriteCount())
	assert.NotNil(t, busMetric.MissCount())
	assert.NotNil(t, busMetric.SentCount())
	assert.NotNil(t, busMetric.ReceivedCount())
	assert.NotNil(t, busMetric.RequestCount())
}

func TestNewOscillatorMetric(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	oscillatorMetric, err := NewOscillatorMetric(meter)
	require.NoError(t, err)
	assert.NotNil(t, oscillatorMetric.BatchCount())
	assert.NotNil(t, oscillatorMetric.CycleCount())
	assert.NotNil(t, oscillatorMetric.OverrunCount())
	assert.NotNil(t, oscillatorMetric.Drift())
}

func TestNewActorMetric(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")
	actorMetric, err := NewActorMetric(meter)
	require.NoError(t, err)
	assert.NotNil(t, actorMetric.SpawnCount())
	assert.NotNil(t, actorMetric.ProcessedCount())
	assert.NotNil(t, actorMetric.DeathCount())
	assert.NotNil(t, actorMetric.DispatchDuration())
}

func TestDefaultMeter(t *testing.T) {
	require.NotNil(t, DefaultMeter())
}
