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

package bus

import (
	"context"
	"math"
	"slices"
	"sync"

	"github.com/Workiva/go-datastructures/augmentedtree"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"

	"github.com/kaiseki/kaiseki/component"
	"github.com/kaiseki/kaiseki/errors"
	imetric "github.com/kaiseki/kaiseki/internal/metric"
	"github.com/kaiseki/kaiseki/log"
)

// MaxAddress is the highest address a mapping may cover.
const MaxAddress = uint64(math.MaxInt64 - 1)

// Mapping is an inclusive address range owned by a component
type Mapping struct {
	Start     uint64
	End       uint64
	Component component.Addressable
}

// Contains reports whether address falls inside the mapping
func (m Mapping) Contains(address uint64) bool {
	return address >= m.Start && address <= m.End
}

// span is the interval tree entry of a mapping. Bounds are stored half-open.
type span struct {
	mapping Mapping
	low     int64
	high    int64
	id      uint64
}

var _ augmentedtree.Interval = (*span)(nil)

func (s *span) LowAtDimension(uint64) int64  { return s.low }
func (s *span) HighAtDimension(uint64) int64 { return s.high }
func (s *span) ID() uint64                   { return s.id }

func (s *span) OverlapsAtDimension(other augmentedtree.Interval, dimension uint64) bool {
	return s.high > other.LowAtDimension(dimension) && s.low < other.HighAtDimension(dimension)
}

// AddressableBus routes addressed reads and writes to the component that owns
// the address. Ranges never overlap.
type AddressableBus struct {
	id       component.ID
	mu       sync.RWMutex
	tree     augmentedtree.Tree
	mappings []Mapping
	nextID   uint64
	logger   log.Logger
	metrics  *imetric.BusMetric
	attrs    otelmetric.MeasurementOption
}

var _ component.Addressable = (*AddressableBus)(nil)

// NewAddressableBus creates an empty addressable bus
func NewAddressableBus(name string, opts ...Option) *AddressableBus {
	config := newOptions(opts...)
	id := component.NewID(name)
	return &AddressableBus{
		id:      id,
		tree:    augmentedtree.New(1),
		logger:  config.logger.With("bus", id.String()),
		metrics: newBusMetric(config),
		attrs:   otelmetric.WithAttributes(attribute.String("bus", name)),
	}
}

// ID returns the bus identity
func (b *AddressableBus) ID() component.ID {
	return b.id
}

// Map assigns the inclusive range [start, end] to c.
// It fails with a *errors.MappingConflictError naming every owner the range overlaps.
func (b *AddressableBus) Map(start, end uint64, c component.Addressable) error {
	if end < start || end > MaxAddress {
		return errors.ErrInvalidRange
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	entry := &span{
		mapping: Mapping{Start: start, End: end, Component: c},
		low:     int64(start),
		high:    int64(end) + 1,
	}

	if owners := b.overlapping(entry); len(owners) > 0 {
		return &errors.MappingConflictError{New: c.ID(), Existing: owners, Start: start, End: end}
	}

	b.nextID++
	entry.id = b.nextID
	b.tree.Add(entry)
	b.mappings = append(b.mappings, entry.mapping)
	b.logger.Infof("mapped %s at 0x%04X-0x%04X", c.ID(), start, end)
	return nil
}

// MapSized assigns length bytes starting at start to c
func (b *AddressableBus) MapSized(start, length uint64, c component.Addressable) error {
	if length == 0 || start > MaxAddress-(length-1) {
		return errors.ErrInvalidRange
	}
	return b.Map(start, start+length-1, c)
}

// Read reads length bytes at address from the owning component
func (b *AddressableBus) Read(address, length uint64) ([]byte, error) {
	return b.read(component.ID{}, address, length)
}

// Write writes data at address to the owning component
func (b *AddressableBus) Write(address uint64, data []byte) error {
	return b.write(component.ID{}, address, data)
}

// Port returns a view of the bus for requester. Misses through the port are
// logged and reported with the requester.
func (b *AddressableBus) Port(requester component.ID) *Port {
	return &Port{bus: b, requester: requester}
}

func (b *AddressableBus) read(requester component.ID, address, length uint64) ([]byte, error) {
	mapping, err := b.lookup(requester, address)
	if err != nil {
		return nil, err
	}

	b.metrics.ReadCount().Add(context.Background(), 1, b.attrs)
	data, err := mapping.Component.Read(address-mapping.Start, length)
	if err != nil {
		return nil, &errors.ComponentAccessError{
			Op:        errors.ReadOp,
			Component: mapping.Component.ID(),
			Address:   address,
			Length:    length,
			Err:       err,
		}
	}
	return data, nil
}

func (b *AddressableBus) write(requester component.ID, address uint64, data []byte) error {
	mapping, err := b.lookup(requester, address)
	if err != nil {
		return err
	}

	b.metrics.WriteCount().Add(context.Background(), 1, b.attrs)
	if err := mapping.Component.Write(address-mapping.Start, data); err != nil {
		return &errors.ComponentAccessError{
			Op:        errors.WriteOp,
			Component: mapping.Component.ID(),
			Address:   address,
			Length:    uint64(len(data)),
			Err:       err,
		}
	}
	return nil
}

// Mappings returns a snapshot of the mappings sorted by start address
func (b *AddressableBus) Mappings() []Mapping {
	b.mu.RLock()
	mappings := slices.Clone(b.mappings)
	b.mu.RUnlock()

	slices.SortFunc(mappings, func(a, b Mapping) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		default:
			return 0
		}
	})
	return mappings
}

func (b *AddressableBus) lookup(requester component.ID, address uint64) (Mapping, error) {
	if address <= MaxAddress {
		b.mu.RLock()
		probe := &span{low: int64(address), high: int64(address) + 1}
		for _, interval := range b.tree.Query(probe) {
			if mapping := interval.(*span).mapping; mapping.Contains(address) {
				b.mu.RUnlock()
				return mapping, nil
			}
		}
		b.mu.RUnlock()
	}

	b.metrics.MissCount().Add(context.Background(), 1, b.attrs)
	if requester.IsZero() {
		b.logger.Warnf("no component mapped at 0x%04X", address)
	} else {
		b.logger.Warnf("no component mapped at 0x%04X, requested by %s", address, requester)
	}
	return Mapping{}, &errors.NoComponentMappedError{Address: address, Requester: requester}
}

// overlapping returns the owners of every mapping that shares an address with entry.
// The caller holds the write lock.
func (b *AddressableBus) overlapping(entry *span) []component.ID {
	var owners []component.ID
	for _, interval := range b.tree.Query(entry) {
		existing := interval.(*span)
		if existing.low < entry.high && entry.low < existing.high {
			owners = append(owners, existing.mapping.Component.ID())
		}
	}
	return owners
}

// Port is an addressable view of a bus bound to the component using it
type Port struct {
	bus       *AddressableBus
	requester component.ID
}

var _ component.Addressable = (*Port)(nil)

// ID returns the requester the port is bound to
func (p *Port) ID() component.ID {
	return p.requester
}

// Read reads length bytes at address on behalf of the requester
func (p *Port) Read(address, length uint64) ([]byte, error) {
	return p.bus.read(p.requester, address, length)
}

// Write writes data at address on behalf of the requester
func (p *Port) Write(address uint64, data []byte) error {
	return p.bus.write(p.requester, address, data)
}
