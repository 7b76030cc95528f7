// Command piratecrew is the engine's entry point: it wires config parsing,
// logging, persistence, the peer transport, and the single-threaded
// cooperative main loop together, following main.go's
// setupLogging/initConfig/initDB bootstrap sequence and handlers.go's
// Server.Run background-task-plus-dispatch-loop shape, generalized from
// one HTTP server goroutine to the timer/terminal/network trio the
// concurrency model calls for.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vitadek/piratecrew/internal/clock"
	"github.com/vitadek/piratecrew/internal/config"
	"github.com/vitadek/piratecrew/internal/logging"
	"github.com/vitadek/piratecrew/internal/peer"
	"github.com/vitadek/piratecrew/internal/persistence"
	"github.com/vitadek/piratecrew/internal/transport"
)

const appVersion = "0.1.0"

// eventKind discriminates the bounded multi-producer channel every
// background task feeds and the main loop alone drains, the concurrency
// model's single point of world mutation.
type eventKind int

const (
	clockEvent eventKind = iota
	terminalEvent
	networkEvent
)

type appEvent struct {
	kind     eventKind
	now      clock.Tick
	terminal string
	swarm    peer.SwarmEvent
}

func main() {
	os.Exit(run())
}

func run() int {
	opts, err := config.Parse(os.Args[1:])
	if err != nil {
		if config.IsHelp(err) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := opts.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	log, logFile, err := logging.Default("piratecrew.log", opts.Debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer logFile.Close()
	worldLog := logging.Component(log, "world")
	netLog := logging.Component(log, "net")

	if opts.ResetWorld {
		if err := persistence.Reset(opts.StorePrefix); err != nil {
			worldLog.Error().Err(err).Msg("reset store")
			return 1
		}
	}

	w, identity, err := loadOrGenerateWorld(opts)
	if err != nil {
		worldLog.Error().Err(err).Msg("load world: fatal")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events := make(chan appEvent, 256)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return runClockTask(gctx, events) })
	g.Go(func() error { return runTerminalTask(gctx, events) })

	// swarm stays a nil peer.Transport interface value (not a typed nil
	// pointer) when networking is disabled, so every `swarm == nil` check
	// downstream behaves correctly.
	var swarm peer.Transport
	if !opts.DisableNetwork {
		ws := transport.New(identity.PeerId)
		ws.SetKeypair([]byte(identity.Blob()))
		swarmEvents := make(chan peer.SwarmEvent, 256)
		if err := ws.StartPollingEvents(swarmEvents, gctx.Done(), int(opts.NetworkPort)); err != nil {
			netLog.Error().Err(err).Msg("start network listener: fatal")
			return 1
		}
		if opts.SeedIp != "" {
			if err := ws.DialSeed(opts.SeedIp); err != nil {
				netLog.Warn().Err(err).Str("addr", opts.SeedIp).Msg("dial seed failed")
			}
		}
		g.Go(func() error { return forwardSwarmEvents(gctx, swarmEvents, events) })
		swarm = ws
	}

	lastInput := time.Now()
	loopErr := mainLoop(gctx, w, identity, swarm, opts, worldLog, netLog, events, &lastInput)

	if err := persistOnExit(w, opts); err != nil {
		worldLog.Error().Err(err).Msg("final persist on shutdown")
	}

	stop()
	_ = g.Wait()

	if loopErr != nil {
		worldLog.Error().Err(loopErr).Msg("main loop exited with error")
		return 1
	}
	return 0
}

// runClockTask is the timer background task: it wakes at FAST cadence
// (~40 ms), finer than every other cadence so the main loop's
// SimulateToNow call always has fresh wall-clock progress to consume,
// mirroring the clock task's SlowTick/FastTick split.
func runClockTask(ctx context.Context, events chan<- appEvent) error {
	ticker := time.NewTicker(time.Duration(clock.FastInterval) * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			select {
			case events <- appEvent{kind: clockEvent, now: clock.Now()}:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// runTerminalTask reads newline-delimited commands from stdin, the
// terminal-input background task the concurrency model calls for.
func runTerminalTask(ctx context.Context, events chan<- appEvent) error {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		select {
		case events <- appEvent{kind: terminalEvent, terminal: line}:
		case <-ctx.Done():
			return nil
		}
	}
	return nil
}

// forwardSwarmEvents relays peer.SwarmEvent notifications from the
// transport-owned channel onto the unified event channel the main loop
// reads from, the adaptation point between the pluggable transport's own
// channel type and the single multi-producer channel the loop expects.
func forwardSwarmEvents(ctx context.Context, swarmEvents <-chan peer.SwarmEvent, events chan<- appEvent) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-swarmEvents:
			select {
			case events <- appEvent{kind: networkEvent, swarm: ev}:
			case <-ctx.Done():
				return nil
			}
		}
	}
}
