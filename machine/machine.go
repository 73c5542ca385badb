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

package machine

import (
	"context"
	"errors"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/kaiseki/kaiseki/bus"
	"github.com/kaiseki/kaiseki/clock"
	"github.com/kaiseki/kaiseki/component"
	"github.com/kaiseki/kaiseki/config"
	"github.com/kaiseki/kaiseki/display"
	gerrors "github.com/kaiseki/kaiseki/errors"
	"github.com/kaiseki/kaiseki/internal/errorschain"
	"github.com/kaiseki/kaiseki/log"
	"github.com/kaiseki/kaiseki/memory"
)

// Machine wires a clock, a fetcher, memory and a display together:
//
//	oscillator --clock bus--> fetcher --display bus--> display
//	                             |                        |
//	                             +------memory bus--------+
//
// RAM is mapped from address zero, the optional ROM and the framebuffer at
// their configured bases.
type Machine struct {
	id     component.ID
	config *config.Config
	logger log.Logger

	memoryBus  *bus.AddressableBus
	clockBus   *bus.MessageBus[clock.Message]
	displayBus *bus.MessageBus[display.Message]

	ram        *memory.RAM
	rom        *memory.ROM
	display    *display.Monochrome
	fetcher    *Fetcher
	oscillator *clock.Oscillator

	unitConn    *bus.Connection[clock.Message]
	displayConn *bus.Connection[display.Message]

	fetcherID    component.ID
	oscillatorID component.ID
	displayID    component.ID

	components mapset.Set[component.ID]
	started    *atomic.Bool
}

// New assembles a machine from cfg. The display actor lives until ctx is
// done or Close is called.
func New(ctx context.Context, cfg *config.Config) (*Machine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &Machine{
		id:         component.NewID("machine"),
		config:     cfg,
		logger:     cfg.Logger.With("machine", "kaiseki"),
		memoryBus:  bus.NewAddressableBus("memory bus", bus.WithLogger(cfg.Logger)),
		clockBus:   bus.NewMessageBus[clock.Message]("clock bus", bus.WithLogger(cfg.Logger), bus.WithChannelCapacity(1)),
		displayBus: bus.NewMessageBus[display.Message]("display bus", bus.WithLogger(cfg.Logger)),
		ram:        memory.NewRAM("RAM", cfg.RAMSize),
		components: mapset.NewSet[component.ID](),
		started:    atomic.NewBool(false),

		fetcherID:    component.NewID("fetcher"),
		oscillatorID: component.NewID("oscillator"),
		displayID:    component.NewID("monochrome display"),
	}

	if err := errorschain.New(errorschain.ReturnFirst()).
		AddErrorFn(func() error { return m.mapMemory(ctx) }).
		AddErrorFn(m.connect).
		Error(); err != nil {
		if m.display != nil {
			m.display.Close()
		}
		return nil, err
	}

	m.logger.Infof("assembled %d components", m.components.Cardinality())
	return m, nil
}

func (m *Machine) mapMemory(ctx context.Context) error {
	if err := m.memoryBus.MapSized(0, m.ram.Size(), m.ram); err != nil {
		return err
	}
	m.components.Add(m.ram.ID())

	if len(m.config.Program) > 0 {
		if err := m.ram.Write(m.config.ProgramBase, m.config.Program); err != nil {
			return fmt.Errorf("load program: %w", err)
		}
	}

	if len(m.config.ROM) > 0 {
		rom, err := memory.NewROM("ROM", uint64(len(m.config.ROM)), m.config.ROM)
		if err != nil {
			return err
		}
		if err := m.memoryBus.MapSized(m.config.ROMBase, rom.Size(), rom); err != nil {
			return err
		}
		m.rom = rom
		m.components.Add(rom.ID())
	}

	// sprite reads go through a port so misses name the display
	screen, err := display.NewMonochrome(ctx, m.memoryBus.Port(m.displayID),
		display.WithID(m.displayID),
		display.WithSize(m.config.DisplayWidth, m.config.DisplayHeight),
		display.WithExecutor(m.config.DisplayExecutor),
		display.WithLogger(m.config.Logger))
	if err != nil {
		return err
	}
	if err := m.memoryBus.MapSized(m.config.DisplayBase, screen.Size(), screen); err != nil {
		screen.Close()
		return err
	}
	m.display = screen
	m.components.Add(screen.ID())
	return nil
}

func (m *Machine) connect() error {
	fetcherDisplay, displayConn, err := m.displayBus.Connect(m.fetcherID, m.displayID)
	if err != nil {
		return err
	}
	m.displayConn = displayConn

	oscillatorConn, unitConn, err := m.clockBus.Connect(m.oscillatorID, m.fetcherID)
	if err != nil {
		return err
	}
	m.unitConn = unitConn

	m.fetcher = NewFetcher(m.fetcherID, m.memoryBus.Port(m.fetcherID), fetcherDisplay,
		m.config.ProgramBase, m.config.FetchWindow, m.config.HaltAfter, m.config.Logger)

	m.oscillator, err = clock.NewOscillator(oscillatorConn,
		clock.WithFrequency(m.config.Frequency),
		clock.WithInitialBudget(m.config.InitialBudget),
		clock.WithSpeedMultiplier(m.config.SpeedMultiplier),
		clock.WithMaxBatches(m.config.MaxBatches),
		clock.WithLogger(m.config.Logger))
	if err != nil {
		return err
	}

	m.components.Add(m.fetcherID)
	m.components.Add(m.oscillatorID)
	return nil
}

// ID returns the machine identity
func (m *Machine) ID() component.ID {
	return m.id
}

// Run drives the machine until ctx is done, the clock reaches its batch
// limit or a component fails. A machine runs once.
func (m *Machine) Run(ctx context.Context) error {
	if !m.started.CompareAndSwap(false, true) {
		return gerrors.ErrAlreadyRunning
	}

	m.logger.Info("starting machine")
	group, gctx := errgroup.WithContext(ctx)

	// the driven side stops with the clock
	driven, stop := context.WithCancel(gctx)
	defer stop()

	group.Go(func() error {
		defer stop()
		return m.oscillator.Run(gctx)
	})
	group.Go(func() error {
		return clock.Serve(driven, m.unitConn, m.fetcher, m.logger)
	})
	group.Go(func() error {
		return m.display.Serve(driven, m.displayConn)
	})

	err := group.Wait()
	stats := m.oscillator.Stats()
	m.logger.Infof("machine stopped after %d cycles in %d batches", stats.Cycles, stats.Batches)
	return err
}

// Close releases the display actor and reports why it stopped when it
// failed. A display stopped by its context being done is not a failure.
func (m *Machine) Close() error {
	m.display.Close()

	displayErr := m.display.Err()
	if errors.Is(displayErr, context.Canceled) || errors.Is(displayErr, context.DeadlineExceeded) {
		displayErr = nil
	}
	if displayErr != nil {
		displayErr = fmt.Errorf("display: %w", displayErr)
	}

	return errorschain.New(errorschain.ReturnAll()).
		AddError(displayErr).
		AddErrorFn(m.closeLinks).
		Error()
}

// closeLinks removes the machine components from the message buses so a
// closed machine refuses to be driven
func (m *Machine) closeLinks() error {
	m.clockBus.Remove(m.oscillatorID)
	m.clockBus.Remove(m.fetcherID)
	m.displayBus.Remove(m.fetcherID)
	m.displayBus.Remove(m.displayID)
	return nil
}

// Bus returns the memory bus
func (m *Machine) Bus() *bus.AddressableBus {
	return m.memoryBus
}

// Display returns the framebuffer
func (m *Machine) Display() *display.Monochrome {
	return m.display
}

// Oscillator returns the machine clock
func (m *Machine) Oscillator() *clock.Oscillator {
	return m.oscillator
}

// Fetcher returns the driven unit
func (m *Machine) Fetcher() *Fetcher {
	return m.fetcher
}

// RAM returns the machine RAM
func (m *Machine) RAM() *memory.RAM {
	return m.ram
}

// ROM returns the machine ROM, nil when none is configured
func (m *Machine) ROM() *memory.ROM {
	return m.rom
}

// Components returns the identities of every assembled component
func (m *Machine) Components() []component.ID {
	return m.components.ToSlice()
}
