// Command tcutick boots the timer driver against the simulated timer block
// and drives a periodic tick through it: every expiry interrupt dispatches
// to a handler that rearms the channel, exactly the way a scheduling tick
// consumes a one-shot timer-event endpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/jzsoc/tcu/internal/clk"
	"github.com/jzsoc/tcu/internal/clockevent"
	"github.com/jzsoc/tcu/internal/irq"
	"github.com/jzsoc/tcu/internal/regmap"
	"github.com/jzsoc/tcu/internal/tcu"
	"github.com/jzsoc/tcu/internal/tcusim"
	"github.com/jzsoc/tcu/internal/topology"
)

func run() error {
	topoPath := flag.String("topology", "", "path to a topology YAML file (default: built-in two-channel block)")
	events := flag.Int64("events", 64, "number of timer events to drive")
	rate := flag.Uint64("rate", 750000, "simulated timer clock rate in Hz")
	period := flag.Uint("period", 7500, "countdown ticks per event")
	step := flag.Uint("step", 512, "simulator ticks per advance step")
	timeout := flag.Duration("timeout", 30*time.Second, "give up if the events do not arrive in time")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	topo := &topology.Topology{
		Interrupts: []int{26, 27},
		Timers:     []int{0},
	}
	if *topoPath != "" {
		var err error
		topo, err = topology.Load(*topoPath)
		if err != nil {
			return err
		}
	}

	if *period > tcu.MaxEventTicks || *period < tcu.MinEventTicks {
		return fmt.Errorf("period %d outside programmable range [%d, %d]",
			*period, tcu.MinEventTicks, tcu.MaxEventTicks)
	}

	// Wire the simulated block: interrupt lines per the topology, the
	// simulator raising them, a fixed-rate gate per channel, and the
	// per-channel control registers windowed out of the main file.
	lines := irq.NewController()
	for idx, num := range topo.Interrupts {
		lines.AddLine(idx, num)
	}
	sim := tcusim.New(topo.ChannelCount(), lines)

	clocks := clk.Map{}
	for idx := range topo.Interrupts {
		clocks[fmt.Sprintf("timer%d", idx)] = clk.NewFixedGate(*rate)
	}

	controls := tcu.ControlRegsFunc(func(idx int) (regmap.Interface, error) {
		return regmap.Window(sim.Regs(), tcu.RegTCSR(idx)), nil
	})

	registry := clockevent.NewRegistry()
	_, eventChans, err := tcu.Boot(tcu.BootConfig{
		Topology:  topo,
		Base:      sim.Regs(),
		Enable:    sim.EnableRegs(),
		Clocks:    clocks,
		Controls:  controls,
		Lines:     lines,
		Registrar: registry,
		Policy:    tcu.FailFast,
	})
	if err != nil {
		return fmt.Errorf("boot: %w", err)
	}

	// Tick consumer: count the event and rearm from inside the dispatch.
	bar := progressbar.Default(*events)
	var fired atomic.Int64
	done := make(chan struct{})
	dev := eventChans[0].Device()
	dev.SetEventHandler(func(d *clockevent.Device) {
		n := fired.Add(1)
		_ = bar.Add(1)
		if n >= *events {
			select {
			case <-done:
			default:
				close(done)
			}
			return
		}
		if err := d.SetNextEvent(uint32(*period)); err != nil {
			slog.Error("rearm failed", "device", d.Name, "error", err)
		}
	})
	if err := dev.SetNextEvent(uint32(*period)); err != nil {
		return fmt.Errorf("arm %s: %w", dev.Name, err)
	}

	start := time.Now()
	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		for {
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			default:
				sim.Advance(uint32(*step))
			}
		}
	})
	g.Go(func() error {
		select {
		case <-done:
			return nil
		case <-time.After(*timeout):
			return fmt.Errorf("timed out after %s with %d/%d events", *timeout, fired.Load(), *events)
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if err := dev.SetStateShutdown(); err != nil {
		return fmt.Errorf("shutdown %s: %w", dev.Name, err)
	}
	slog.Info("tick run complete",
		"device", dev.Name,
		"events", fired.Load(),
		"virtual_ticks", uint64(fired.Load())*uint64(*period),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tcutick: %v\n", err)
		os.Exit(1)
	}
}
