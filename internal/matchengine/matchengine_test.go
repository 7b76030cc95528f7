package matchengine

import (
	"testing"

	"github.com/vitadek/piratecrew/internal/ids"
	"github.com/vitadek/piratecrew/internal/player"
	"github.com/vitadek/piratecrew/internal/rng"
)

func newTestRoster(homePlanet ids.PlanetId) []*player.Player {
	r := rng.Deterministic(1, 2, 0)
	roster := make([]*player.Player, 0, 6)
	for i := 0; i < 6; i++ {
		roster = append(roster, player.NewRandom(homePlanet, player.Human, r))
	}
	return roster
}

func newTestGame() *Game {
	planet := ids.NewPlanetId()
	home := NewTeamInGame(ids.NewTeamId(), nil, "Home", 5, PickAndRoll, newTestRoster(planet))
	away := NewTeamInGame(ids.NewTeamId(), nil, "Away", 5, Isolation, newTestRoster(planet))
	return New(ids.NewGameId(), home, away, 1000, planet, 500, false)
}

func TestDeterministicReplay(t *testing.T) {
	planet := ids.NewPlanetId()
	gameID := ids.NewGameId()

	buildGame := func() *Game {
		r := rng.Deterministic(42, 7, 0)
		roster1 := make([]*player.Player, 0, 6)
		roster2 := make([]*player.Player, 0, 6)
		for i := 0; i < 6; i++ {
			roster1 = append(roster1, player.NewRandom(planet, player.Human, r))
		}
		for i := 0; i < 6; i++ {
			roster2 = append(roster2, player.NewRandom(planet, player.Human, r))
		}
		home := NewTeamInGame(ids.NewTeamId(), nil, "Home", 5, PickAndRoll, roster1)
		away := NewTeamInGame(ids.NewTeamId(), nil, "Away", 5, Isolation, roster2)
		return New(gameID, home, away, 1000, planet, 500, false)
	}

	g1 := buildGame()
	g2 := buildGame()
	g1.Run(200)
	g2.Run(200)

	if len(g1.ActionResults) != len(g2.ActionResults) {
		t.Fatalf("replay produced different lengths: %d vs %d", len(g1.ActionResults), len(g2.ActionResults))
	}
	for i := range g1.ActionResults {
		a, b := g1.ActionResults[i], g2.ActionResults[i]
		if a.Description != b.Description || a.HomeScore != b.HomeScore || a.AwayScore != b.AwayScore {
			t.Fatalf("replay diverged at step %d: %+v vs %+v", i, a, b)
		}
	}
}

func TestGameEventuallyEnds(t *testing.T) {
	g := newTestGame()
	g.Run(5000)
	if g.EndedAt == nil {
		t.Fatalf("expected game to end within 5000 steps")
	}
}

func TestKnockedOutTeamLosesImmediately(t *testing.T) {
	g := newTestGame()
	for _, p := range g.HomeTeamInGame.Players {
		p.Tiredness = 20
	}
	if !g.HomeTeamInGame.knockedOut() {
		t.Fatalf("expected home team to be knocked out")
	}
	g.Step()
	if g.EndedAt == nil {
		t.Fatalf("expected game to end immediately when a team is fully knocked out")
	}
	if g.Winner == nil || *g.Winner != g.AwayTeamInGame.TeamId {
		t.Fatalf("expected away team to win, got %v", g.Winner)
	}
}

func TestDoubleKnockoutIsAlwaysATieRegardlessOfScore(t *testing.T) {
	g := newTestGame()
	// Seed an unequal score so a naive end(nil) (which falls back to score
	// comparison) would wrongly crown a winner; double knockout must
	// override that and force a tie (spec §4.4).
	g.ActionResults = append(g.ActionResults, ActionOutput{HomeScore: 40, AwayScore: 30})
	for _, p := range g.HomeTeamInGame.Players {
		p.Tiredness = 20
	}
	for _, p := range g.AwayTeamInGame.Players {
		p.Tiredness = 20
	}
	g.Step()
	if g.EndedAt == nil {
		t.Fatalf("expected game to end immediately on double knockout")
	}
	if g.Winner != nil {
		t.Fatalf("expected a tie (nil winner) on double knockout, got %v", *g.Winner)
	}
}

// TestSubstitutionSwapsTiredStarterForFreshBench exercises spec §4.4's
// coach-AI substitution path: after a BallInBackcourt situation, a starter
// past the tiredness threshold is swapped for a fresher bench player,
// without touching score or possession.
func TestSubstitutionSwapsTiredStarterForFreshBench(t *testing.T) {
	planet := ids.NewPlanetId()
	r := rng.Deterministic(9, 9, 0)
	roster := make([]*player.Player, 0, 7)
	for i := 0; i < 7; i++ {
		roster = append(roster, player.NewRandom(planet, player.Human, r))
	}
	home := NewTeamInGame(ids.NewTeamId(), nil, "Home", 5, PickAndRoll, roster)
	away := NewTeamInGame(ids.NewTeamId(), nil, "Away", 5, Isolation, newTestRoster(planet))
	g := New(ids.NewGameId(), home, away, 1000, planet, 500, false)
	g.ActionResults = append(g.ActionResults, ActionOutput{Situation: SituationBallInBackcourt, Possession: Home})

	onCourt := home.onCourt()
	tiredId := onCourt[0]
	home.Players[tiredId].Tiredness = SubstitutionTirednessThreshold + 1

	preHomeScore, preAwayScore, prePossession := g.homeScore(), g.awayScore(), g.Possession

	found := false
	for tick := 0; tick < 5000 && !found; tick++ {
		g.TimerSeconds = tick
		out, ok := g.trySubstitution(g.seed())
		if !ok {
			continue
		}
		found = true
		if out.Situation != SituationAfterSubstitution || out.Action != Substitution {
			t.Fatalf("expected a Substitution ActionOutput, got %+v", out)
		}
		if out.HomeScore != preHomeScore || out.AwayScore != preAwayScore {
			t.Fatalf("substitution must not alter score")
		}
		if out.Possession != prePossession {
			t.Fatalf("substitution must not alter possession")
		}
		if home.Positions[tiredId] != -1 {
			t.Fatalf("expected the tired starter benched, still at position %d", home.Positions[tiredId])
		}
	}
	if !found {
		t.Fatalf("expected a substitution to trigger within the search budget")
	}
}

func TestScoresNeverNegative(t *testing.T) {
	g := newTestGame()
	g.Run(500)
	for _, out := range g.ActionResults {
		if out.HomeScore < 0 || out.AwayScore < 0 {
			t.Fatalf("negative score in output: %+v", out)
		}
	}
}
