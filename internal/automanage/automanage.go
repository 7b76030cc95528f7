// Package automanage implements the MEDIUM/LONG-tick auto-management
// policies: non-playing tiredness recovery, morale-driven release,
// retirement, free-pirate refresh, and AI auto-hire. It does not re-sort
// AI roster positions or change AI tactics.
//
// Grounded on original_source/src/core/world.rs: tick_players_update's
// release-on-low-morale loop (morale < MORALE_THRESHOLD_FOR_LEAVING, roll
// probability (1 - morale/MAX) * LEAVING_PROBABILITY_MORALE_MODIFIER,
// Crumiro exempted), tick_auto_hire_free_pirates (rating-sorted candidate
// selection, release-worst-then-hire-best at capacity), and
// tick_free_pirates (retain only rostered players, then repopulate every
// planet). MinPlayersPerGame/MaxPlayersPerTeam/AutoGenerateGamesNumber are
// pinned from constants.rs.
package automanage

import (
	"sort"

	"github.com/vitadek/piratecrew/internal/ids"
	"github.com/vitadek/piratecrew/internal/player"
	"github.com/vitadek/piratecrew/internal/rng"
	"github.com/vitadek/piratecrew/internal/skill"
	"github.com/vitadek/piratecrew/internal/team"
)

// Constants pinned from original_source/src/world/constants.rs.
const (
	MinPlayersPerGame = 5
	MaxPlayersPerTeam = MinPlayersPerGame + 5

	AutoGenerateGamesNumber    = 3
	MaxAvgTirednessPerAutoGame = 2.0
	LeavingProbabilityModifier = 0.025 * (1.0 / 2.0)
)

// NonPlayingTirednessRecoveryPerMediumTick is this engine's documented pin
// for the MEDIUM-tick recovery rate applied to non-playing players on
// non-peer teams;
// the exact constant wasn't retrieved into constants.rs.
const NonPlayingTirednessRecoveryPerMediumTick = 0.2

// RecoverTiredness applies one MEDIUM tick's worth of recovery to every
// player not currently in a game, scaled by the team doctor's average
// skill.
func RecoverTiredness(roster []*player.Player, inGame map[ids.PlayerId]bool, doctorBonus float32) {
	if doctorBonus <= 0 {
		doctorBonus = 1
	}
	for _, p := range roster {
		if inGame[p.Id] {
			continue
		}
		p.Tiredness -= NonPlayingTirednessRecoveryPerMediumTick * doctorBonus
		if p.Tiredness < 0 {
			p.Tiredness = 0
		}
	}
}

// ApplyLongTickToRoster runs Player.ApplyLongTick over every roster
// player, the per-player half of world.rs's LONG-tick
// tick_players_update.
func ApplyLongTickToRoster(roster []*player.Player) {
	for _, p := range roster {
		p.ApplyLongTick()
	}
}

// RetireEligiblePlayers rolls ShouldRetire for every non-Crumiro player and
// returns the ids that retire this LONG tick: a non-Crumiro player whose
// relative_age exceeds MIN_RELATIVE_RETIREMENT_AGE retires with
// probability equal to uniform(MIN, 1) < relative_age, grounded on
// world.rs's tick_retire_players.
func RetireEligiblePlayers(roster []*player.Player, r *rng.Rand) []ids.PlayerId {
	var out []ids.PlayerId
	for _, p := range roster {
		if p.SpecialTrait != nil && *p.SpecialTrait == player.Crumiro {
			continue
		}
		if p.ShouldRetire(r) {
			out = append(out, p.Id)
		}
	}
	return out
}

// ReleaseLowMoralePlayers returns the ids of players who ask to leave this
// MEDIUM tick: any non-Crumiro player whose morale is below
// MORALE_THRESHOLD_FOR_LEAVING leaves with probability (1 - morale/MAX) *
// LEAVING_PROBABILITY_MORALE_MODIFIER, never dropping a team below
// minPlayersPerGame (world.rs's can_release_player gate, reused here via
// team.Team.CanReleasePlayer).
func ReleaseLowMoralePlayers(t *team.Team, roster []*player.Player, r *rng.Rand) []ids.PlayerId {
	var out []ids.PlayerId
	if err := t.CanReleasePlayer(MinPlayersPerGame); err != nil {
		return nil
	}
	for _, p := range roster {
		if !p.WantsToLeave() {
			continue
		}
		if p.Morale >= player.MoraleThresholdForLeaving {
			continue
		}
		probability := float64(1.0-p.Morale/skill.MaxSkill) * LeavingProbabilityModifier
		if r.Float64() < probability {
			out = append(out, p.Id)
		}
		if len(roster)-len(out) <= MinPlayersPerGame {
			break
		}
	}
	return out
}

// RefreshFreePirates drops every player not attached to a team and returns nothing further; the
// caller is responsible for calling PopulatePlanetFreePirates
// (player.NewRandom per pirate) per planet afterward, since that
// needs the galaxy's planet set which this package doesn't own.
func RefreshFreePirates(allPlayers map[ids.PlayerId]*player.Player) {
	for id, p := range allPlayers {
		if p.Team == nil {
			delete(allPlayers, id)
		}
	}
}

// PopulatePlanetFreePirates generates exactly populationCount new free
// pirates on a planet, each with a random Population via player.NewRandom.
// Their initial skills are not biased by the planet's population or by any
// team's reputation.
func PopulatePlanetFreePirates(homePlanet ids.PlanetId, populationCount int, r *rng.Rand) []*player.Player {
	out := make([]*player.Player, 0, populationCount)
	for i := 0; i < populationCount; i++ {
		pop := player.Population(r.Intn(4))
		out = append(out, player.NewRandom(homePlanet, pop, r))
	}
	return out
}

// byRating sorts players by TirednessWeightedRating descending for the
// auto-hire candidate comparisons below (world.rs's sort_by_rating).
func byRating(players []*player.Player) {
	sort.Slice(players, func(i, j int) bool {
		return players[i].TirednessWeightedRating() > players[j].TirednessWeightedRating()
	})
}

// HireDecision is what AutoHire proposes for one AI team: players to sign
// from the free-pirate pool, and (if the roster was already at capacity)
// the weakest current player to release first.
type HireDecision struct {
	TeamId  ids.TeamId
	Hire    []*player.Player
	Release *ids.PlayerId
}

// AutoHire implements the LONG-tick policy: for each non-own team, if
// under roster min or it has a free pirate strictly better than its worst,
// hire the best available free pirate on the same planet (releasing the
// worst when at capacity), grounded on world.rs's
// tick_auto_hire_free_pirates. candidatesOnPlanet must already be filtered
// to free pirates co-located with t and not yet claimed this tick by
// another team (the caller owns that cross-team bookkeeping since it spans
// every AI team, not just one).
func AutoHire(t *team.Team, roster []*player.Player, candidatesOnPlanet []*player.Player) *HireDecision {
	if len(candidatesOnPlanet) == 0 {
		return nil
	}
	candidates := append([]*player.Player(nil), candidatesOnPlanet...)
	byRating(candidates)

	needed := MinPlayersPerGame - len(roster)
	if needed < 1 {
		needed = 1
	}
	if needed > len(candidates) {
		needed = len(candidates)
	}
	picked := candidates[:needed]

	decision := &HireDecision{TeamId: t.Id}

	if len(roster) >= MaxPlayersPerTeam {
		worstRoster := append([]*player.Player(nil), roster...)
		byRating(worstRoster)
		worst := worstRoster[len(worstRoster)-1]
		best := candidates[0]
		if worst.TirednessWeightedRating() >= best.TirednessWeightedRating() {
			return nil
		}
		id := worst.Id
		decision.Release = &id
		decision.Hire = []*player.Player{best}
		return decision
	}

	if len(roster) >= MinPlayersPerGame {
		// Not below the floor, and not forced by a capacity swap: only
		// hire if some candidate strictly beats the team's weakest player.
		worstRoster := append([]*player.Player(nil), roster...)
		byRating(worstRoster)
		worst := worstRoster[len(worstRoster)-1]
		if candidates[0].TirednessWeightedRating() <= worst.TirednessWeightedRating() {
			return nil
		}
	}

	decision.Hire = picked
	return decision
}
