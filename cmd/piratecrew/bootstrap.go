package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vitadek/piratecrew/internal/automanage"
	"github.com/vitadek/piratecrew/internal/clock"
	"github.com/vitadek/piratecrew/internal/config"
	"github.com/vitadek/piratecrew/internal/galaxy"
	"github.com/vitadek/piratecrew/internal/persistence"
	"github.com/vitadek/piratecrew/internal/player"
	"github.com/vitadek/piratecrew/internal/rng"
	"github.com/vitadek/piratecrew/internal/security"
	"github.com/vitadek/piratecrew/internal/team"
	"github.com/vitadek/piratecrew/internal/world"
)

// loadOrGenerateWorld implements the CLI surface's world-selection rule: a
// failure to load a selected world at startup is fatal, but
// --generate-local-world bypasses loading entirely and bootstraps a fresh
// one. The network identity keypair is loaded from the persisted world if
// present, generated fresh and persisted on first boot otherwise.
func loadOrGenerateWorld(opts *config.Options) (*world.World, *security.Identity, error) {
	if opts.GenerateLocalWorld {
		return generateLocalWorld(opts)
	}

	w, err := persistence.LoadWorld(opts.StorePrefix)
	if err == nil {
		return w, w.Identity, nil
	}
	if os.IsNotExist(errors.Unwrap(err)) {
		return generateLocalWorld(opts)
	}
	return nil, nil, fmt.Errorf("load world: %w", err)
}

// generateLocalWorld builds a fresh galaxy lattice, a home planet at the
// fixed default-spawn landmark, and an own team staffed up to the roster
// minimum, mirroring start_world.go's first-boot genesis branch.
func generateLocalWorld(opts *config.Options) (*world.World, *security.Identity, error) {
	identity, err := security.Generate()
	if err != nil {
		return nil, nil, fmt.Errorf("generate identity: %w", err)
	}

	now := clock.Now()
	w := world.New(int64(opts.Seed), identity, now)

	field := galaxy.NewField(int64(opts.Seed))
	home := galaxy.NewPlanet(field, 0, 0)
	home.Id = galaxy.DefaultSpawnId
	home.Name = "Default Spawn"
	w.Planets[home.Id] = home

	t := team.New("New Crew", home.Id, int64(now))
	w.Teams[t.Id] = t
	w.OwnTeamId = &t.Id
	home.TeamIds = append(home.TeamIds, t.Id)

	r := rng.Deterministic(uint64(opts.Seed), uint64(opts.Seed)>>32, int64(now))
	for len(t.PlayerIds) < automanage.MinPlayersPerGame {
		p := player.NewRandom(home.Id, player.Human, r)
		w.Players[p.Id] = p
		if err := t.AddPlayer(p.Id, automanage.MaxPlayersPerTeam); err != nil {
			break
		}
		p.AssignToTeam(t.Id)
	}

	return w, identity, nil
}

// persistOnExit implements the cancellation rule: finalize by persisting
// the world if an own team exists, then exit. A failure to save here is
// logged by the caller but never escalated to a nonzero exit code, since
// save failures are non-fatal everywhere else too.
func persistOnExit(w *world.World, opts *config.Options) error {
	if w.OwnTeamId == nil {
		return nil
	}
	_, err := persistence.SaveWorld(w, opts.StorePrefix, true, opts.StoreUncompressed)
	return err
}

// handleTerminalCommand implements the small set of operator commands a
// headless run accepts over stdin, the terminal/UI surface's input half
// without a renderer attached.
func handleTerminalCommand(w *world.World, line string, worldLog zerolog.Logger) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	switch fields[0] {
	case "status":
		worldLog.Info().
			Int("teams", len(w.Teams)).
			Int("players", len(w.Players)).
			Int("planets", len(w.Planets)).
			Int("games", len(w.Games)).
			Msg("status")
	case "quit":
		w.Callbacks.Popup("shutting down on operator request")
	default:
		worldLog.Warn().Str("command", fields[0]).Msg("unknown terminal command")
	}
}
