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

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kaiseki/kaiseki/actor"
	"github.com/kaiseki/kaiseki/config"
	"github.com/kaiseki/kaiseki/display"
	"github.com/kaiseki/kaiseki/internal/duration"
	"github.com/kaiseki/kaiseki/internal/errorschain"
	"github.com/kaiseki/kaiseki/internal/ticker"
	"github.com/kaiseki/kaiseki/log"
	"github.com/kaiseki/kaiseki/machine"
)

type runCmd struct {
	Program   string        `name:"program" type:"existingfile" help:"Program image loaded at --base."`
	Base      uint64        `name:"base" default:"512" help:"Address the program is loaded and fetched from."`
	ROM       string        `name:"rom" type:"existingfile" help:"ROM image mapped at --rom-base."`
	ROMBase   uint64        `name:"rom-base" default:"16384" help:"Address the ROM is mapped at."`
	Frequency float64       `name:"frequency" default:"500" help:"Clock frequency in Hz."`
	Speed     float64       `name:"speed" default:"1" help:"Speed multiplier applied to the clock."`
	Batches   uint64        `name:"batches" help:"Stop after this many batches. Zero runs until --duration."`
	HaltAfter uint64        `name:"halt-after" help:"Halt the fetcher after this many fetches."`
	Duration  time.Duration `name:"duration" default:"5s" help:"How long the machine runs."`
	Poll      time.Duration `name:"poll" default:"250ms" help:"How often the display is polled."`
	Executor  string        `name:"executor" enum:"task,thread" default:"task" help:"Display actor executor (${enum})."`
	LogLevel  string        `name:"log-level" enum:"debug,info,warn,error" default:"info" help:"Log level (${enum})."`
}

// Run assembles the machine, drives it and renders every new frame on stdout
func (r *runCmd) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return r.run(ctx, os.Stdout)
}

// run drives the machine for the configured duration. The display outlives
// the run so the final frame can still be rendered.
func (r *runCmd) run(ctx context.Context, out io.Writer) error {
	logger := log.NewZap(log.ParseLevel(r.LogLevel), os.Stderr)
	defer func() { _ = logger.Flush() }()

	options, err := r.options(logger)
	if err != nil {
		return err
	}

	m, err := machine.New(context.Background(), config.New(options...))
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithTimeout(ctx, r.Duration)
	defer cancel()

	poller := ticker.New(r.Poll)
	poller.Start()
	presented := make(chan struct{})
	go func() {
		defer close(presented)
		present(runCtx, m.Display(), poller, out)
	}()

	err = m.Run(runCtx)
	cancel()
	poller.Stop()
	<-presented

	fmt.Fprint(out, m.Display().String())
	stats := m.Oscillator().Stats()
	logger.Infof("ran %d cycles in %d batches, %d overrun(s), drift %s, %d word(s) fetched",
		stats.Cycles, stats.Batches, stats.Overruns, duration.Format(stats.Drift), m.Fetcher().Fetched())

	return errorschain.New(errorschain.ReturnAll()).
		AddError(err).
		AddErrorFn(m.Close).
		Error()
}

func (r *runCmd) options(logger log.Logger) ([]config.Option, error) {
	options := []config.Option{
		config.WithLogger(logger),
		config.WithFrequency(r.Frequency),
		config.WithSpeedMultiplier(r.Speed),
		config.WithMaxBatches(r.Batches),
		config.WithHaltAfter(r.HaltAfter),
	}

	if r.Executor == actor.ThreadExecutor.String() {
		options = append(options, config.WithDisplayExecutor(actor.ThreadExecutor))
	}

	if r.Program != "" {
		image, err := os.ReadFile(r.Program)
		if err != nil {
			return nil, fmt.Errorf("read program: %w", err)
		}
		options = append(options, config.WithProgram(r.Base, image))
	}

	if r.ROM != "" {
		image, err := os.ReadFile(r.ROM)
		if err != nil {
			return nil, fmt.Errorf("read ROM: %w", err)
		}
		options = append(options, config.WithROM(r.ROMBase, image))
	}
	return options, nil
}

// present renders the display on out whenever its digest changes
func present(ctx context.Context, screen *display.Monochrome, poller *ticker.Ticker, out io.Writer) {
	var last uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-poller.Ticks:
			digest, err := screen.Digest(ctx)
			if err != nil || digest == last {
				continue
			}
			last = digest
			fmt.Fprint(out, screen.String())
			fmt.Fprintln(out)
		}
	}
}
