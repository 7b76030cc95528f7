// Package world implements the Entity Store aggregate: the flat in-memory
// maps for every entity kind, the three dirty flags, the network identity
// blob, past-game/past-tournament summaries, and the "simulate to now"
// orchestration that drives every subsystem package off a single
// clock.Scheduler.
//
// Grounded on original_source/src/core/world.rs's World struct and its
// tick_* dispatch functions (tick_travel, tick_players_update,
// tick_auto_hire_free_pirates, tick_free_pirates, tournament generation),
// wired here to the already-ported internal/travel, internal/automanage,
// internal/matchengine, and internal/tournament packages instead of
// reimplementing their logic.
package world

import (
	"sort"

	"github.com/vitadek/piratecrew/internal/automanage"
	"github.com/vitadek/piratecrew/internal/clock"
	"github.com/vitadek/piratecrew/internal/galaxy"
	"github.com/vitadek/piratecrew/internal/ids"
	"github.com/vitadek/piratecrew/internal/kartoffel"
	"github.com/vitadek/piratecrew/internal/matchengine"
	"github.com/vitadek/piratecrew/internal/piraterr"
	"github.com/vitadek/piratecrew/internal/player"
	"github.com/vitadek/piratecrew/internal/rng"
	"github.com/vitadek/piratecrew/internal/security"
	"github.com/vitadek/piratecrew/internal/skill"
	"github.com/vitadek/piratecrew/internal/team"
	"github.com/vitadek/piratecrew/internal/tournament"
	"github.com/vitadek/piratecrew/internal/travel"
	"github.com/vitadek/piratecrew/internal/uicallback"
)

// GameSummary is the retained, size-reduced record of a finished game
//, grounded on
// original_source/src/game_engine/game.rs's GameSummary::from_game.
type GameSummary struct {
	Id                 ids.GameId
	HomeTeamId         ids.TeamId
	AwayTeamId         ids.TeamId
	HomeTeamName       string
	AwayTeamName       string
	HomeTeamKnockedOut bool
	AwayTeamKnockedOut bool
	HomeScore          int
	AwayScore          int
	Location           ids.PlanetId
	Attendance         uint32
	StartingAt         int64
	EndedAt            *int64
	Winner             *ids.TeamId
	IsNetwork          bool
}

func summarizeGame(g *matchengine.Game) GameSummary {
	return GameSummary{
		Id:                 g.Id,
		HomeTeamId:         g.HomeTeamInGame.TeamId,
		AwayTeamId:         g.AwayTeamInGame.TeamId,
		HomeTeamName:       g.HomeTeamInGame.Name,
		AwayTeamName:       g.AwayTeamInGame.Name,
		HomeTeamKnockedOut: g.HomeKnockedOut(),
		AwayTeamKnockedOut: g.AwayKnockedOut(),
		HomeScore:          g.HomeScoreTotal(),
		AwayScore:          g.AwayScoreTotal(),
		Location:           g.Location,
		Attendance:         g.Attendance,
		StartingAt:         g.StartingAt,
		EndedAt:            g.EndedAt,
		Winner:             g.Winner,
		IsNetwork:          g.IsNetwork,
	}
}

// TournamentSummary is the retained record of a finished tournament (spec
// §3 Tournament: "past-tournament summaries"), grounded on
// original_source/src/game_engine/tournament.rs's
// TournamentSummary::from_tournament.
type TournamentSummary struct {
	Id                    ids.TournamentId
	OrganizerId           ids.TeamId
	MaxParticipants       int
	GameIds               []ids.GameId
	PlanetId              ids.PlanetId
	PlanetName            string
	PlanetTotalPopulation uint32
	StartingAt            int64
	EndedAt               *int64
	Winner                *ids.TeamId
}

func summarizeTournament(t *tournament.Tournament) TournamentSummary {
	return TournamentSummary{
		Id:                    t.Id,
		OrganizerId:           t.OrganizerId,
		MaxParticipants:       t.MaxParticipants,
		GameIds:               append([]ids.GameId(nil), t.GameIds...),
		PlanetId:              t.PlanetId,
		PlanetName:            t.PlanetName,
		PlanetTotalPopulation: t.PlanetTotalPopulation,
		StartingAt:            t.StartingAt,
		EndedAt:               t.EndedAt,
		Winner:                t.Winner,
	}
}

// World is the root aggregate.
type World struct {
	Seed      int64
	OwnTeamId *ids.TeamId
	Identity  *security.Identity

	scheduler *clock.Scheduler

	Teams       map[ids.TeamId]*team.Team
	Players     map[ids.PlayerId]*player.Player
	Planets     map[ids.PlanetId]*galaxy.Planet
	Games       map[ids.GameId]*matchengine.Game
	Tournaments map[ids.TournamentId]*tournament.Tournament
	Kartoffels  map[ids.KartoffelId]*kartoffel.Kartoffel

	PastGames       map[ids.GameId]GameSummary
	PastTournaments map[ids.TournamentId]TournamentSummary

	DirtyPersist bool
	DirtyNetwork bool
	DirtyUI      bool

	Callbacks uicallback.Queue
}

// New bootstraps an empty World from a seed and identity, with the
// scheduler markers all seeded at initial.
func New(seed int64, identity *security.Identity, initial clock.Tick) *World {
	return &World{
		Seed:            seed,
		Identity:        identity,
		scheduler:       clock.NewScheduler(initial),
		Teams:           map[ids.TeamId]*team.Team{},
		Players:         map[ids.PlayerId]*player.Player{},
		Planets:         map[ids.PlanetId]*galaxy.Planet{},
		Games:           map[ids.GameId]*matchengine.Game{},
		Tournaments:     map[ids.TournamentId]*tournament.Tournament{},
		Kartoffels:      map[ids.KartoffelId]*kartoffel.Kartoffel{},
		PastGames:       map[ids.GameId]GameSummary{},
		PastTournaments: map[ids.TournamentId]TournamentSummary{},
	}
}

// Restore rebuilds a World from persisted fields, re-seeding the scheduler
// without re-aligning SHORT.
func Restore(seed int64, identity *security.Identity, fast, short, medium, long clock.Tick) *World {
	w := New(seed, identity, short)
	w.scheduler = clock.RestoreMarkers(fast, short, medium, long)
	return w
}

// Markers exposes the scheduler's four last-tick markers for persistence
//.
func (w *World) Markers() (fast, short, medium, long clock.Tick) {
	return w.scheduler.Markers()
}

// --- Entity Store access ---

// GetTeam is the fallible `get` variant.
func (w *World) GetTeam(id ids.TeamId) (*team.Team, bool) {
	t, ok := w.Teams[id]
	return t, ok
}

// GetTeamOrErr is the `get_or_err` variant, surfacing NotFound.
func (w *World) GetTeamOrErr(id ids.TeamId) (*team.Team, error) {
	t, ok := w.Teams[id]
	if !ok {
		return nil, piraterr.NotFoundf("no team with id %s", id)
	}
	return t, nil
}

func (w *World) GetPlayer(id ids.PlayerId) (*player.Player, bool) {
	p, ok := w.Players[id]
	return p, ok
}

func (w *World) GetPlayerOrErr(id ids.PlayerId) (*player.Player, error) {
	p, ok := w.Players[id]
	if !ok {
		return nil, piraterr.NotFoundf("no player with id %s", id)
	}
	return p, nil
}

func (w *World) GetPlanet(id ids.PlanetId) (*galaxy.Planet, bool) {
	p, ok := w.Planets[id]
	return p, ok
}

func (w *World) GetPlanetOrErr(id ids.PlanetId) (*galaxy.Planet, error) {
	p, ok := w.Planets[id]
	if !ok {
		return nil, piraterr.NotFoundf("no planet with id %s", id)
	}
	return p, nil
}

func (w *World) GetGame(id ids.GameId) (*matchengine.Game, bool) {
	g, ok := w.Games[id]
	return g, ok
}

func (w *World) GetTournament(id ids.TournamentId) (*tournament.Tournament, bool) {
	t, ok := w.Tournaments[id]
	return t, ok
}

func (w *World) GetTournamentOrErr(id ids.TournamentId) (*tournament.Tournament, error) {
	t, ok := w.Tournaments[id]
	if !ok {
		return nil, piraterr.NotFoundf("no tournament with id %s", id)
	}
	return t, nil
}

// RosterOf collects the Player entries for a team's current PlayerIds,
// skipping any id that has gone missing (defensive against a partially
// applied peer filter rather than an invariant the rest of the engine
// should ever actually trip).
func (w *World) RosterOf(t *team.Team) []*player.Player {
	roster := make([]*player.Player, 0, len(t.PlayerIds))
	for _, id := range t.PlayerIds {
		if p, ok := w.Players[id]; ok {
			roster = append(roster, p)
		}
	}
	return roster
}

// Drink applies the Drink action (spec §4.6/§8 S3) for playerID on behalf
// of teamID: a RUM-fueled morale boost, or — for a Spugna-trait drinker on
// a traveling team — a portal teleport to a random other planet. now is the tick the
// action is applied at, used as the new travel "started" tick on a
// teleport and as the deterministic RNG's tick component. Pushes a Drink
// UiCallback on success.
func (w *World) Drink(teamID ids.TeamId, playerID ids.PlayerId, now int64) error {
	t, err := w.GetTeamOrErr(teamID)
	if err != nil {
		return err
	}
	p, err := w.GetPlayerOrErr(playerID)
	if err != nil {
		return err
	}

	hi, lo := playerID.Words()
	r := rng.Deterministic(hi, lo^uint64(now), now)
	result, err := travel.HandleDrink(t, p, w.Planets, now, r)
	if err != nil {
		return err
	}

	w.Callbacks.Push(uicallback.Callback{Kind: uicallback.Drink, TeamId: teamID, PlayerId: playerID})
	if result.Teleported {
		w.Callbacks.Popup("%s teleports to a distant planet after one too many rounds of rum.", t.Name)
	}
	w.MarkDirty(true, true, true)
	return nil
}

// MarkDirty sets whichever dirty flags the caller indicates.
func (w *World) MarkDirty(persist, network, ui bool) {
	w.DirtyPersist = w.DirtyPersist || persist
	w.DirtyNetwork = w.DirtyNetwork || network
	w.DirtyUI = w.DirtyUI || ui
}

// ClearDirty resets all three flags, called by the outer loop once it has
// persisted/gossiped/redrawn.
func (w *World) ClearDirty() {
	w.DirtyPersist = false
	w.DirtyNetwork = false
	w.DirtyUI = false
}

// --- Simulation ---

// SimulateToNow drains the scheduler until caught up with now, invoking the
// matching handler for every FAST/SHORT/MEDIUM/LONG event in order, reusing
// the same handlers the live loop calls rather than a separate catch-up
// path. spaceAdventureActive gates whether FAST ticks fire at all.
//
// catchup tracks whether the scheduler needed more than one Poll round to
// reach now: the first round is a live single-tick advance, any further
// round only happens after an offline gap spanning multiple MEDIUM/LONG
// intervals. Tournament Confirmation/Syncing handling (spec §4.5) reads
// this to decide whether the organizer's confirm callback can fire at all,
// per spec's own note that a replay spanning that window cancels the
// tournament rather than pretending the organizer was online to click it.
func (w *World) SimulateToNow(now clock.Tick, spaceAdventureActive bool) {
	catchup := false
	for !w.scheduler.CaughtUp(now) {
		for _, ev := range w.scheduler.Poll(now, spaceAdventureActive) {
			switch ev.Cadence {
			case clock.Fast:
				w.onFast(ev.Tick)
			case clock.Short:
				w.onShort(ev.Tick)
			case clock.Medium:
				w.onMedium(ev.Tick, catchup)
			case clock.Long:
				w.onLong(ev.Tick)
			}
		}
		catchup = true
	}
}

// onFast is the space-adventure mini-physics hook point; the
// FAST-cadence entity arena lives in internal/spaceadventure and is driven
// from the outer loop rather than from here, since it needs direct access
// to terminal input events this package doesn't receive.
func (w *World) onFast(now clock.Tick) {}

// onShort drives per-second work: active game turns and travel/exploration
// completion checks.
func (w *World) onShort(now clock.Tick) {
	w.stepGames(int64(now))
	w.tickTravelAndExploration(int64(now))
}

func (w *World) stepGames(now int64) {
	for id, g := range w.Games {
		if g.EndedAt != nil {
			continue
		}
		if now < g.StartingAt {
			continue
		}
		for g.EndedAt == nil && g.StartingAt+int64(g.TimerSeconds) <= now {
			if !g.Step() {
				break
			}
		}
		if g.EndedAt != nil {
			w.finishGame(id, g)
		}
	}
	w.MarkDirty(true, true, true)
}

func (w *World) finishGame(id ids.GameId, g *matchengine.Game) {
	w.PastGames[id] = summarizeGame(g)
	delete(w.Games, id)
	if t, ok := w.Teams[g.HomeTeamInGame.TeamId]; ok {
		t.CurrentGame = nil
	}
	if t, ok := w.Teams[g.AwayTeamInGame.TeamId]; ok {
		t.CurrentGame = nil
	}
	w.Callbacks.Popup("Game %s has ended.", id)
}

func (w *World) tickTravelAndExploration(now int64) {
	for _, t := range w.Teams {
		switch t.CurrentLocation.Kind {
		case team.Travelling:
			planet, ok := w.Planets[t.CurrentLocation.To]
			if !ok {
				continue
			}
			if cb, landed := travel.TickTravel(t, planet, w.RosterOf(t), now); landed {
				w.Callbacks.Push(uicallback.Callback{
					Kind:       uicallback.TeamLanded,
					TeamId:     t.Id,
					PlanetId:   planet.Id,
					PlanetName: cb.PlanetName,
				})
			}
		case team.Exploring:
			planet, ok := w.Planets[t.CurrentLocation.Around]
			if !ok {
				continue
			}
			hi, lo := t.Id.Words()
			r := rng.Deterministic(hi, lo^uint64(now), 0)
			result, done := travel.TickExploration(t, planet, w.RosterOf(t), now, r)
			if !done {
				continue
			}
			for _, p := range result.FreePirates {
				w.Players[p.Id] = p
			}
			w.Callbacks.Push(uicallback.Callback{
				Kind:               uicallback.ExplorationResultReady,
				TeamId:             t.Id,
				Collected:          result.Collected,
				AsteroidDiscovered: result.AsteroidDiscovered,
			})
			if result.AsteroidDiscovered {
				w.Callbacks.Push(uicallback.Callback{Kind: uicallback.AsteroidNameDialog, TeamId: t.Id})
			}
		}
	}
	w.MarkDirty(true, true, true)
}

// onMedium drives minute-cadence policies: non-playing tiredness recovery,
// morale-driven release, and tournament bracket advancement.
func (w *World) onMedium(now clock.Tick, catchup bool) {
	inGame := map[ids.PlayerId]bool{}
	for _, g := range w.Games {
		for id := range g.HomeTeamInGame.Players {
			inGame[id] = true
		}
		for id := range g.AwayTeamInGame.Players {
			inGame[id] = true
		}
	}

	for _, t := range w.Teams {
		if t.PeerId != nil {
			continue
		}
		roster := w.RosterOf(t)
		doctorBonus := w.doctorBonus(t)
		automanage.RecoverTiredness(roster, inGame, doctorBonus)

		if w.OwnTeamId != nil && t.Id == *w.OwnTeamId {
			continue
		}
		hi, lo := t.Id.Words()
		r := rng.Deterministic(hi, lo^uint64(now), int64(now))
		released := automanage.ReleaseLowMoralePlayers(t, roster, r)
		for _, pid := range released {
			w.releasePlayer(t, pid)
		}
	}

	w.advanceTournaments(int64(now), catchup)
	w.MarkDirty(true, true, true)
}

func (w *World) doctorBonus(t *team.Team) float32 {
	doctorID, ok := t.CrewRoles.Holder(player.Doctor)
	if !ok {
		return 1.0
	}
	doctor, ok := w.Players[doctorID]
	if !ok {
		return 1.0
	}
	return 1.0 + doctor.AverageSkill()/skill.MaxSkill
}

// advanceTournaments drives the Confirmation/Syncing organizer-facing
// callbacks and Started-state bracket generation (spec §4.5), and files
// every newly-terminal tournament (Ended or Canceled) into PastTournaments.
// catchup disables the organizer's confirm callback and forces a cancel
// instead, per spec's note that "the organizer is online in that narrow
// window" is assumed, and a replay over a long offline gap can't honor it.
func (w *World) advanceTournaments(now int64, catchup bool) {
	for id, t := range w.Tournaments {
		if t.EndedAt != nil || t.Canceled() {
			continue
		}

		if pushConfirm, pushSync := t.AdvanceLifecycle(now, catchup); pushConfirm || pushSync {
			if pushConfirm {
				w.Callbacks.Push(uicallback.Callback{Kind: uicallback.ConfirmTournamentParticipants, TournamentId: id})
			}
			if pushSync {
				w.Callbacks.Push(uicallback.Callback{Kind: uicallback.SendConfirmedTournament, TournamentId: id})
			}
		}

		if !t.Canceled() && now >= t.StartingAt {
			games := t.GenerateNextGames(now, w.Games)
			for _, g := range games {
				w.Games[g.Id] = g
			}
		}

		switch {
		case t.Canceled():
			w.clearTournamentRegistration(t)
			w.PastTournaments[id] = summarizeTournament(t)
			delete(w.Tournaments, id)
			w.Callbacks.Push(uicallback.Callback{Kind: uicallback.CancelTournament, TournamentId: id})
		case t.EndedAt != nil:
			w.clearTournamentRegistration(t)
			w.PastTournaments[id] = summarizeTournament(t)
			delete(w.Tournaments, id)
			w.Callbacks.Popup("Tournament %s has ended.", id)
		}
	}
}

// clearTournamentRegistration implements spec §4.5's participating-team
// book-keeping rule: every participant's tournament_registration_state is
// cleared once a tournament reaches a terminal state, whether registered
// teams never made it past the confirmation window (Canceled) or played it
// out (Ended).
func (w *World) clearTournamentRegistration(tourn *tournament.Tournament) {
	for teamID := range tourn.RegisteredTeams {
		if t, ok := w.Teams[teamID]; ok {
			t.TournamentId = nil
		}
	}
	for teamID := range tourn.Participants {
		if t, ok := w.Teams[teamID]; ok {
			t.TournamentId = nil
		}
	}
}

// onLong drives daily-cadence policies: per-player long-tick update,
// retirement, free-pirate refresh, and AI auto-hire.
func (w *World) onLong(now clock.Tick) {
	for _, t := range w.Teams {
		if t.PeerId != nil {
			continue
		}
		roster := w.RosterOf(t)
		automanage.ApplyLongTickToRoster(roster)

		hi, lo := t.Id.Words()
		r := rng.Deterministic(hi, lo^uint64(now), int64(now))
		for _, pid := range automanage.RetireEligiblePlayers(roster, r) {
			w.releasePlayer(t, pid)
			w.Callbacks.Popup("%s has retired from %s.", pid, t.Name)
		}
	}

	w.refreshFreePirates(int64(now))
	w.autoHireAll(int64(now))
	w.MarkDirty(true, true, true)
}

func (w *World) refreshFreePirates(now int64) {
	automanage.RefreshFreePirates(w.Players)
	r := rng.NonDeterministic()
	for _, planet := range w.Planets {
		if planet.SatelliteOf != nil {
			continue
		}
		generated := automanage.PopulatePlanetFreePirates(planet.Id, 3, r)
		for _, p := range generated {
			w.Players[p.Id] = p
		}
	}
}

func (w *World) autoHireAll(now int64) {
	freeByPlanet := map[ids.PlanetId][]*player.Player{}
	for _, p := range w.Players {
		if p.Team != nil {
			continue
		}
		freeByPlanet[p.Info.HomePlanet] = append(freeByPlanet[p.Info.HomePlanet], p)
	}

	teamIDs := make([]ids.TeamId, 0, len(w.Teams))
	for id := range w.Teams {
		teamIDs = append(teamIDs, id)
	}
	sort.Slice(teamIDs, func(i, j int) bool { return teamIDs[i].String() < teamIDs[j].String() })

	for _, teamID := range teamIDs {
		t := w.Teams[teamID]
		if t.PeerId != nil || (w.OwnTeamId != nil && t.Id == *w.OwnTeamId) {
			continue
		}
		if t.CurrentLocation.Kind != team.OnPlanet {
			continue
		}
		candidates := freeByPlanet[t.CurrentLocation.PlanetId]
		if len(candidates) == 0 {
			continue
		}
		roster := w.RosterOf(t)
		decision := automanage.AutoHire(t, roster, candidates)
		if decision == nil {
			continue
		}
		if decision.Release != nil {
			w.releasePlayer(t, *decision.Release)
		}
		for _, p := range decision.Hire {
			if err := t.AddPlayer(p.Id, automanage.MaxPlayersPerTeam); err != nil {
				continue
			}
			p.AssignToTeam(t.Id)
			candidates = removePlayer(candidates, p.Id)
		}
		freeByPlanet[t.CurrentLocation.PlanetId] = candidates
	}
}

func removePlayer(list []*player.Player, id ids.PlayerId) []*player.Player {
	out := list[:0]
	for _, p := range list {
		if p.Id != id {
			out = append(out, p)
		}
	}
	return out
}

// releasePlayer removes a player from its team's roster and clears its team
// pointer, the reciprocal pair of mutations invariant I1 requires stay in
// sync.
func (w *World) releasePlayer(t *team.Team, id ids.PlayerId) {
	t.RemovePlayer(id)
	if p, ok := w.Players[id]; ok {
		p.Release()
	}
}
