package tournament

import (
	"testing"

	"github.com/vitadek/piratecrew/internal/ids"
	"github.com/vitadek/piratecrew/internal/matchengine"
	"github.com/vitadek/piratecrew/internal/player"
	"github.com/vitadek/piratecrew/internal/rng"
)

func newParticipant(planet ids.PlanetId) *matchengine.TeamInGame {
	r := rng.Deterministic(uint64(rngCounter), 99, 0)
	rngCounter++
	roster := make([]*player.Player, 0, 6)
	for i := 0; i < 6; i++ {
		roster = append(roster, player.NewRandom(planet, player.Human, r))
	}
	return matchengine.NewTeamInGame(ids.NewTeamId(), nil, "Crew", 1, matchengine.Isolation, roster)
}

var rngCounter uint64 = 1

func TestBracketInitializationPairsAllParticipants(t *testing.T) {
	planet := ids.NewPlanetId()
	organizer := newParticipant(planet)
	tourn, err := New(organizer.TeamId, 8, 1000, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tourn.PlanetId = planet
	if err := tourn.ConfirmOrganizer(organizer); err != nil {
		t.Fatalf("ConfirmOrganizer: %v", err)
	}
	for i := 0; i < 5; i++ {
		p := newParticipant(planet)
		tourn.Participants[p.TeamId] = p
	}

	games := tourn.GenerateNextGames(tourn.StartingAt, map[ids.GameId]*matchengine.Game{})
	if len(games) != 3 {
		t.Fatalf("expected 3 games pairing 6 teams, got %d", len(games))
	}
}

func TestOddParticipantCountLeavesABye(t *testing.T) {
	planet := ids.NewPlanetId()
	tourn, err := New(ids.NewTeamId(), 8, 1000, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tourn.PlanetId = planet
	for i := 0; i < 5; i++ {
		p := newParticipant(planet)
		tourn.Participants[p.TeamId] = p
	}

	games := tourn.GenerateNextGames(tourn.StartingAt, map[ids.GameId]*matchengine.Game{})
	if len(games) != 2 {
		t.Fatalf("expected 2 games from 5 participants with one bye, got %d", len(games))
	}
	if tourn.pendingTeamForNextGame == nil {
		t.Fatalf("expected a bye team to be pending")
	}
}

func TestStateTransitionsByTick(t *testing.T) {
	tourn, err := New(ids.NewTeamId(), 8, 1000, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := tourn.State(500); got != Registration {
		t.Fatalf("expected Registration before closing, got %v", got)
	}
	if got := tourn.State(1001); got != Confirmation {
		t.Fatalf("expected Confirmation after closing, before starting_at, got %v", got)
	}
	if got := tourn.State(tourn.StartingAt); got != Started {
		t.Fatalf("expected Started at starting_at, got %v", got)
	}
}

func TestRegisterTeamRejectedAfterClosing(t *testing.T) {
	planet := ids.NewPlanetId()
	tourn, err := New(ids.NewTeamId(), 8, 1000, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p := newParticipant(planet)
	if err := tourn.RegisterTeam(p, 2000); err == nil {
		t.Fatalf("expected registration after closing to fail")
	}
}

// TestEmptyParticipantsCancelsImmediately covers spec §4.5's "fewer than 2
// participants" cancellation trigger: zero participants at Started must
// produce a Canceled tournament, not a no-winner Ended one.
func TestEmptyParticipantsCancelsImmediately(t *testing.T) {
	tourn, err := New(ids.NewTeamId(), 8, 1000, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tourn.GenerateNextGames(tourn.StartingAt, map[ids.GameId]*matchengine.Game{})
	if !tourn.Canceled() {
		t.Fatalf("expected tournament with no participants to cancel")
	}
	if tourn.EndedAt != nil {
		t.Fatalf("expected Canceled, not Ended, for zero participants")
	}
}

// TestSoleParticipantCancelsRatherThanWinningSolo covers the same trigger
// for exactly one participant: spec never describes an instant solo
// "winner", only the <2 cancellation.
func TestSoleParticipantCancelsRatherThanWinningSolo(t *testing.T) {
	planet := ids.NewPlanetId()
	tourn, err := New(ids.NewTeamId(), 8, 1000, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tourn.PlanetId = planet
	solo := newParticipant(planet)
	tourn.Participants[solo.TeamId] = solo

	tourn.GenerateNextGames(tourn.StartingAt, map[ids.GameId]*matchengine.Game{})
	if !tourn.Canceled() {
		t.Fatalf("expected a sole participant to cancel the tournament")
	}
	if tourn.Winner != nil {
		t.Fatalf("expected no winner to be declared, got %v", *tourn.Winner)
	}
}

// TestAdvanceLifecycleCancelsOnCatchupDuringConfirmation is the S4
// scenario from spec §8: registrations closed, starting_at just ahead, zero
// registrants, ticked as a catch-up (simulate-to-now) round rather than
// live. Expect Canceled.
func TestAdvanceLifecycleCancelsOnCatchupDuringConfirmation(t *testing.T) {
	tourn, err := New(ids.NewTeamId(), 8, 1000, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pushConfirm, pushSync := tourn.AdvanceLifecycle(1001, true)
	if pushConfirm || pushSync {
		t.Fatalf("expected no callback to be pushed during a catch-up round")
	}
	if !tourn.Canceled() {
		t.Fatalf("expected catch-up through the Confirmation window to cancel the tournament")
	}
}

// TestAdvanceLifecycleLiveConfirmationPushesCallback mirrors the same
// window ticked live with the organizer and a second team registered: both
// the confirm and sync callbacks fire (Confirmation/Syncing collapse onto
// a single tick here, see AdvanceLifecycle) instead of a cancellation.
func TestAdvanceLifecycleLiveConfirmationPushesCallback(t *testing.T) {
	planet := ids.NewPlanetId()
	organizer := newParticipant(planet)
	tourn, err := New(organizer.TeamId, 8, 1000, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tourn.RegisteredTeams[organizer.TeamId] = organizer
	other := newParticipant(planet)
	tourn.RegisteredTeams[other.TeamId] = other

	pushConfirm, pushSync := tourn.AdvanceLifecycle(1001, false)
	if !pushConfirm || !pushSync {
		t.Fatalf("expected both callbacks to fire, got confirm=%v sync=%v", pushConfirm, pushSync)
	}
	if tourn.Canceled() {
		t.Fatalf("expected a live tick with enough registrants not to cancel")
	}
}

// TestAdvanceLifecycleCancelsWhenOrganizerMissing covers the other §4.5
// trigger: reaching the Confirmation/Syncing tick with 2+ registered teams
// but without the organizer itself among them cancels the tournament.
func TestAdvanceLifecycleCancelsWhenOrganizerMissing(t *testing.T) {
	planet := ids.NewPlanetId()
	organizerID := ids.NewTeamId()
	tourn, err := New(organizerID, 8, 1000, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tourn.RegisteredTeams[newParticipant(planet).TeamId] = newParticipant(planet)
	tourn.RegisteredTeams[newParticipant(planet).TeamId] = newParticipant(planet)

	pushConfirm, pushSync := tourn.AdvanceLifecycle(1001, false)
	if pushConfirm || pushSync {
		t.Fatalf("expected no callback when the organizer never registered")
	}
	if !tourn.Canceled() {
		t.Fatalf("expected missing-organizer tick to cancel the tournament")
	}
}
