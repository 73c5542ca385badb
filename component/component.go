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

package component

// Component is implemented by every simulated unit.
type Component interface {
	// ID returns the unit identifier
	ID() ID
}

// Addressable is the capability a unit exposes to be mapped on an
// addressable bus. Addresses are local to the unit: the bus re-bases an
// absolute address to an offset from the start of the unit's mapping before
// delegating.
//
// Implementations handle their own internal concurrency; the bus may call
// Read and Write from many goroutines at once.
type Addressable interface {
	Component
	// Read returns length bytes starting at the local address
	Read(address, length uint64) ([]byte, error)
	// Write stores data starting at the local address
	Write(address uint64, data []byte) error
}
