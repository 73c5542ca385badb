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

	"github.com/kaiseki/kaiseki/component"
	"github.com/kaiseki/kaiseki/errors"
)

// ROM is a byte array fixed at construction. Writes are rejected.
type ROM struct {
	id       component.ID
	buffer   []byte
	counters counters
}

var _ component.Addressable = (*ROM)(nil)

// NewROM creates a ROM of size bytes whose first bytes are contents
func NewROM(name string, size uint64, contents []byte) (*ROM, error) {
	if uint64(len(contents)) > size {
		return nil, fmt.Errorf("%w: %d byte(s) of contents exceed size 0x%04X", errors.ErrOutOfRange, len(contents), size)
	}

	buffer := make([]byte, size)
	copy(buffer, contents)
	return &ROM{
		id:       component.NewID(name),
		buffer:   buffer,
		counters: newCounters(),
	}, nil
}

// ID returns the ROM identity
func (r *ROM) ID() component.ID {
	return r.id
}

// Size returns the capacity in bytes
func (r *ROM) Size() uint64 {
	return uint64(len(r.buffer))
}

// Read returns a copy of length bytes at address
func (r *ROM) Read(address, length uint64) ([]byte, error) {
	if err := checkBounds(r.Size(), address, length); err != nil {
		return nil, err
	}

	data := make([]byte, length)
	copy(data, r.buffer[address:address+length])
	r.counters.read(length)
	return data, nil
}

// Write always fails with errors.ErrReadOnly
func (r *ROM) Write(uint64, []byte) error {
	return errors.ErrReadOnly
}

// Stats returns the access counters. Writes are never counted.
func (r *ROM) Stats() Stats {
	return r.counters.snapshot()
}
