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

package log

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZap(t *testing.T) {
	t.Run("With debug level", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(DebugLevel, buffer)
		require.Equal(t, DebugLevel, logger.LogLevel())

		logger.Debugf("fetched %d bytes", 2)
		entry := decode(t, buffer.Bytes())
		assert.Equal(t, "fetched 2 bytes", entry["msg"])
		assert.Equal(t, DebugLevel.String(), entry["level"])
	})

	t.Run("With info level filtering debug", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(InfoLevel, buffer)
		logger.Debug("hidden")
		require.Empty(t, buffer.Bytes())
		require.False(t, logger.Enabled(DebugLevel))
		require.True(t, logger.Enabled(WarningLevel))

		logger.Warn("overrun")
		entry := decode(t, buffer.Bytes())
		assert.Equal(t, "overrun", entry["msg"])
		assert.Equal(t, "warn", entry["level"])
	})

	t.Run("With structured fields", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(InfoLevel, buffer)
		logger.With("bus", "memory", "address", uint64(0x200), "period", time.Millisecond, "dangling").Info("mapped")

		entry := decode(t, buffer.Bytes())
		assert.Equal(t, "memory", entry["bus"])
		assert.EqualValues(t, 0x200, entry["address"])
		assert.Equal(t, "1ms", entry["period"])
		assert.Equal(t, "dangling", entry["_"])
	})

	t.Run("With no fields returns the same logger", func(t *testing.T) {
		logger := NewZap(InfoLevel, new(bytes.Buffer))
		require.Same(t, logger, logger.With())
		require.Same(t, logger, logger.With(1, 2))
	})

	t.Run("With error level", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		logger := NewZap(ErrorLevel, buffer)
		require.Equal(t, ErrorLevel, logger.LogLevel())
		logger.Info("hidden")
		require.Empty(t, buffer.Bytes())
		logger.Errorf("executor %s died", "cpu")
		entry := decode(t, buffer.Bytes())
		assert.Equal(t, "executor cpu died", entry["msg"])
		require.NoError(t, logger.Flush())
	})
}

func TestDiscardLogger(t *testing.T) {
	DiscardLogger.Info("nothing")
	DiscardLogger.Errorf("nothing %d", 1)
	require.False(t, DiscardLogger.Enabled(ErrorLevel))
	require.Equal(t, DiscardLogger, DiscardLogger.With("k", "v"))
	require.NoError(t, DiscardLogger.Flush())
	require.Equal(t, InfoLevel, DiscardLogger.LogLevel())
}

func TestParseLevel(t *testing.T) {
	testCases := map[string]Level{
		"debug":   DebugLevel,
		"warn":    WarningLevel,
		"warning": WarningLevel,
		"error":   ErrorLevel,
		"info":    InfoLevel,
		"bogus":   InfoLevel,
	}
	for name, expected := range testCases {
		assert.Equal(t, expected, ParseLevel(name), name)
	}
}

func decode(t *testing.T, line []byte) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(line), &entry))
	return entry
}
