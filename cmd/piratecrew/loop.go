package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/vitadek/piratecrew/internal/clock"
	"github.com/vitadek/piratecrew/internal/config"
	"github.com/vitadek/piratecrew/internal/peer"
	"github.com/vitadek/piratecrew/internal/persistence"
	"github.com/vitadek/piratecrew/internal/security"
	"github.com/vitadek/piratecrew/internal/uicallback"
	"github.com/vitadek/piratecrew/internal/world"
)

// mainLoop is the single-threaded cooperative loop: it awaits the next
// event from the bounded channel, mutates the world, drains the UI
// callback FIFO, and persists if dirty, in that fixed order, before
// awaiting again.
func mainLoop(
	ctx context.Context,
	w *world.World,
	identity *security.Identity,
	swarm peer.Transport,
	opts *config.Options,
	worldLog, netLog zerolog.Logger,
	events <-chan appEvent,
	lastInput *time.Time,
) error {
	var autoQuitTimer *time.Ticker
	if opts.AutoQuitAfterSecs > 0 {
		autoQuitTimer = time.NewTicker(5 * time.Second)
		defer autoQuitTimer.Stop()
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			switch ev.kind {
			case clockEvent:
				w.SimulateToNow(ev.now, false)
			case terminalEvent:
				*lastInput = time.Now()
				handleTerminalCommand(w, ev.terminal, worldLog)
			case networkEvent:
				if swarm == nil {
					continue
				}
				if _, err := peer.HandleNetworkEvent(w, ev.swarm, identity.PeerId, appVersion, int64(clock.Now())); err != nil {
					netLog.Warn().Err(err).Msg("network event rejected")
					w.Callbacks.Push(uicallback.Callback{Kind: uicallback.Error, Message: err.Error()})
				}
			}

			drainCallbacks(w, worldLog)

			if w.DirtyNetwork && swarm != nil {
				if err := publishDirtyState(w, swarm); err != nil {
					netLog.Warn().Err(err).Msg("publish own state failed")
				}
			}
			if w.DirtyPersist {
				if _, err := persistence.SaveWorld(w, opts.StorePrefix, true, opts.StoreUncompressed); err != nil {
					worldLog.Error().Err(err).Msg("save world failed, will retry next dirty tick")
				} else {
					w.ClearDirty()
				}
			}

		case <-tickerFire(autoQuitTimer):
			if opts.AutoQuitAfterSecs > 0 && time.Since(*lastInput) > time.Duration(opts.AutoQuitAfterSecs)*time.Second {
				worldLog.Info().Msg("auto-quit idle timeout reached")
				return nil
			}
		}
	}
}

// tickerFire returns t's channel, or nil if t is nil, so a disabled
// auto-quit timer's select case simply never fires rather than needing a
// separate branch.
func tickerFire(t *time.Ticker) <-chan time.Time {
	if t == nil {
		return nil
	}
	return t.C
}

// publishDirtyState re-broadcasts own state once per dirty-network tick:
// own team snapshot plus any still-open challenges and trades, so a
// reconnecting peer catches back up instead of waiting for the next
// unrelated mutation.
func publishDirtyState(w *world.World, swarm peer.Transport) error {
	now := int64(clock.Now())
	if err := peer.SendOwnTeam(w, swarm, now); err != nil {
		return err
	}
	if err := peer.ResendOpenChallenges(w, swarm, now); err != nil {
		return err
	}
	return peer.ResendOpenTrades(w, swarm, now)
}

// drainCallbacks empties the UI callback queue and logs each one, standing
// in for the renderer this headless engine doesn't have; a future UI layer
// subscribes to the same Queue.Drain call instead of this logging shim.
func drainCallbacks(w *world.World, worldLog zerolog.Logger) {
	for _, cb := range w.Callbacks.Drain() {
		worldLog.Info().Str("callback", cb.Kind.String()).Str("message", cb.Message).Msg("ui callback")
	}
}
