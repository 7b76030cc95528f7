package automanage

import (
	"testing"

	"github.com/vitadek/piratecrew/internal/ids"
	"github.com/vitadek/piratecrew/internal/player"
	"github.com/vitadek/piratecrew/internal/rng"
	"github.com/vitadek/piratecrew/internal/team"
)

func newRoster(n int, planet ids.PlanetId, r *rng.Rand) []*player.Player {
	roster := make([]*player.Player, 0, n)
	for i := 0; i < n; i++ {
		roster = append(roster, player.NewRandom(planet, player.Human, r))
	}
	return roster
}

func TestRecoverTirednessSkipsPlayingPlayers(t *testing.T) {
	planet := ids.NewPlanetId()
	r := rng.Deterministic(1, 1, 0)
	roster := newRoster(2, planet, r)
	for _, p := range roster {
		p.Tiredness = 5
	}
	inGame := map[ids.PlayerId]bool{roster[0].Id: true}

	RecoverTiredness(roster, inGame, 1.0)

	if roster[0].Tiredness != 5 {
		t.Fatalf("expected playing player's tiredness untouched, got %v", roster[0].Tiredness)
	}
	if roster[1].Tiredness >= 5 {
		t.Fatalf("expected non-playing player's tiredness to recover, got %v", roster[1].Tiredness)
	}
}

func TestRecoverTirednessNeverGoesNegative(t *testing.T) {
	planet := ids.NewPlanetId()
	r := rng.Deterministic(2, 2, 0)
	roster := newRoster(1, planet, r)
	roster[0].Tiredness = 0.05

	RecoverTiredness(roster, map[ids.PlayerId]bool{}, 10.0)

	if roster[0].Tiredness < 0 {
		t.Fatalf("expected tiredness clamped at 0, got %v", roster[0].Tiredness)
	}
}

func TestReleaseLowMoralePlayersRespectsRosterFloor(t *testing.T) {
	planet := ids.NewPlanetId()
	r := rng.Deterministic(3, 3, 0)
	tm := team.New("Crew", planet, 0)
	roster := newRoster(MinPlayersPerGame, planet, r)
	for _, p := range roster {
		p.Morale = 0
		tm.PlayerIds = append(tm.PlayerIds, p.Id)
	}

	released := ReleaseLowMoralePlayers(tm, roster, r)
	if len(released) != 0 {
		t.Fatalf("expected no releases at the roster floor, got %d", len(released))
	}
}

func TestReleaseLowMoralePlayersSkipsHighMorale(t *testing.T) {
	planet := ids.NewPlanetId()
	r := rng.Deterministic(4, 4, 0)
	tm := team.New("Crew", planet, 0)
	roster := newRoster(MinPlayersPerGame+2, planet, r)
	for _, p := range roster {
		p.Morale = 15
		tm.PlayerIds = append(tm.PlayerIds, p.Id)
	}

	released := ReleaseLowMoralePlayers(tm, roster, r)
	if len(released) != 0 {
		t.Fatalf("expected no releases with high morale, got %d", len(released))
	}
}

func TestRetireEligiblePlayersExemptsCrumiro(t *testing.T) {
	planet := ids.NewPlanetId()
	r := rng.Deterministic(5, 5, 0)
	roster := newRoster(3, planet, r)
	crumiro := player.Crumiro
	for _, p := range roster {
		p.SpecialTrait = &crumiro
		p.Info.Age = 1000
	}

	retired := RetireEligiblePlayers(roster, r)
	if len(retired) != 0 {
		t.Fatalf("expected Crumiro players never to retire, got %d", len(retired))
	}
}

func TestAutoHireFillsBelowMinimum(t *testing.T) {
	planet := ids.NewPlanetId()
	r := rng.Deterministic(6, 6, 0)
	tm := team.New("Crew", planet, 0)
	roster := newRoster(2, planet, r)
	candidates := newRoster(4, planet, r)

	decision := AutoHire(tm, roster, candidates)
	if decision == nil {
		t.Fatalf("expected a hire decision when below MinPlayersPerGame")
	}
	if len(decision.Hire) != MinPlayersPerGame-len(roster) {
		t.Fatalf("expected to hire up to the roster floor, got %d", len(decision.Hire))
	}
	if decision.Release != nil {
		t.Fatalf("expected no release when under capacity, got %v", decision.Release)
	}
}

func TestAutoHireNoCandidatesReturnsNil(t *testing.T) {
	planet := ids.NewPlanetId()
	r := rng.Deterministic(7, 7, 0)
	tm := team.New("Crew", planet, 0)
	roster := newRoster(MinPlayersPerGame, planet, r)

	if decision := AutoHire(tm, roster, nil); decision != nil {
		t.Fatalf("expected no hire decision with no candidates, got %+v", decision)
	}
}

func TestAutoHireSwapsAtCapacityOnlyWhenStrictlyBetter(t *testing.T) {
	planet := ids.NewPlanetId()
	r := rng.Deterministic(8, 8, 0)
	tm := team.New("Crew", planet, 0)
	roster := newRoster(MaxPlayersPerTeam, planet, r)
	for _, p := range roster {
		for i := range p.Skills {
			p.Skills[i] = 1
		}
	}
	candidates := newRoster(1, planet, r)
	for i := range candidates[0].Skills {
		candidates[0].Skills[i] = 20
	}

	decision := AutoHire(tm, roster, candidates)
	if decision == nil {
		t.Fatalf("expected a swap decision when a candidate strictly outclasses the worst rostered player")
	}
	if decision.Release == nil {
		t.Fatalf("expected a release at roster capacity")
	}
	if len(decision.Hire) != 1 {
		t.Fatalf("expected exactly one hire on swap, got %d", len(decision.Hire))
	}
}
