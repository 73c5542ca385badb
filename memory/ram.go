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

package memory

import (
	"fmt"
	"sync"

	"github.com/kaiseki/kaiseki/component"
	"github.com/kaiseki/kaiseki/errors"
)

// RAM is a zero-initialised read-write byte array
type RAM struct {
	id       component.ID
	mu       sync.RWMutex
	buffer   []byte
	counters counters
}

var _ component.Addressable = (*RAM)(nil)

// NewRAM creates a RAM holding size bytes
func NewRAM(name string, size uint64) *RAM {
	return &RAM{
		id:       component.NewID(name),
		buffer:   make([]byte, size),
		counters: newCounters(),
	}
}

// ID returns the RAM identity
func (r *RAM) ID() component.ID {
	return r.id
}

// Size returns the capacity in bytes
func (r *RAM) Size() uint64 {
	return uint64(len(r.buffer))
}

// Read returns a copy of length bytes at address
func (r *RAM) Read(address, length uint64) ([]byte, error) {
	if err := checkBounds(r.Size(), address, length); err != nil {
		return nil, err
	}

	r.mu.RLock()
	data := make([]byte, length)
	copy(data, r.buffer[address:address+length])
	r.mu.RUnlock()

	r.counters.read(length)
	return data, nil
}

// Write stores data at address
func (r *RAM) Write(address uint64, data []byte) error {
	length := uint64(len(data))
	if err := checkBounds(r.Size(), address, length); err != nil {
		return err
	}

	r.mu.Lock()
	copy(r.buffer[address:], data)
	r.mu.Unlock()

	r.counters.write(length)
	return nil
}

// Stats returns the access counters
func (r *RAM) Stats() Stats {
	return r.counters.snapshot()
}

// checkBounds fails when [address, address+length) leaves a buffer of size bytes
func checkBounds(size, address, length uint64) error {
	if address > size || length > size-address {
		return fmt.Errorf("%w: %d byte(s) at 0x%04X, size is 0x%04X", errors.ErrOutOfRange, length, address, size)
	}
	return nil
}
