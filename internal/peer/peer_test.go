package peer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vitadek/piratecrew/internal/clock"
	"github.com/vitadek/piratecrew/internal/galaxy"
	"github.com/vitadek/piratecrew/internal/ids"
	"github.com/vitadek/piratecrew/internal/matchengine"
	"github.com/vitadek/piratecrew/internal/player"
	"github.com/vitadek/piratecrew/internal/resource"
	"github.com/vitadek/piratecrew/internal/rng"
	"github.com/vitadek/piratecrew/internal/team"
	"github.com/vitadek/piratecrew/internal/world"
)

func TestEnvelopeRoundtrip(t *testing.T) {
	payload := []byte(`{"hello":"world"}`)
	raw := Encode(12345, payload)

	env, err := Decode(raw)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if env.Timestamp != 12345 {
		t.Fatalf("expected timestamp 12345, got %d", env.Timestamp)
	}
	if string(env.Payload) != string(payload) {
		t.Fatalf("expected payload %q, got %q", payload, env.Payload)
	}
}

func TestDecodeRejectsShortFrame(t *testing.T) {
	if _, err := Decode([]byte{1, 2, 3}); err == nil {
		t.Fatalf("expected a CodecError on a too-short frame")
	}
}

func newRoster(n int, planet ids.PlanetId, r *rng.Rand) []*player.Player {
	roster := make([]*player.Player, n)
	for i := range roster {
		roster[i] = player.NewRandom(planet, player.Human, r)
	}
	return roster
}

func TestMergeNetworkTeamRejectsMissingPeerId(t *testing.T) {
	w := world.New(0, nil, 0)
	nt := NetworkTeam{Team: team.New("Ghost Crew", ids.NewPlanetId(), 0)}
	if _, err := MergeNetworkTeam(w, nt, nil); err == nil {
		t.Fatalf("expected rejection for a NetworkTeam with no peer_id")
	}
}

func TestMergeNetworkTeamRejectsOwnRosterCollision(t *testing.T) {
	w := world.New(0, nil, 0)
	planet := ids.NewPlanetId()
	r := rng.Deterministic(1, 1, 0)

	own := team.New("Own Crew", planet, 0)
	shared := player.NewRandom(planet, player.Human, r)
	own.PlayerIds = append(own.PlayerIds, shared.Id)
	w.Teams[own.Id] = own
	w.Players[shared.Id] = shared
	w.OwnTeamId = &own.Id

	peerID := ids.NewPeerId()
	incoming := team.New("Peer Crew", planet, 0)
	incoming.PeerId = &peerID
	incoming.PlayerIds = append(incoming.PlayerIds, shared.Id)

	if _, err := MergeNetworkTeam(w, NetworkTeam{Team: incoming}, nil); err == nil {
		t.Fatalf("expected rejection when incoming team claims a player on our own roster")
	}
}

func TestMergeNetworkTeamReplacesPriorCopyAndReportsVersion(t *testing.T) {
	w := world.New(0, nil, 0)
	planet := ids.NewPlanetId()
	peerID := ids.NewPeerId()
	r := rng.Deterministic(2, 2, 0)

	priorPlayer := player.NewRandom(planet, player.Human, r)
	prior := team.New("Peer Crew", planet, 0)
	prior.PeerId = &peerID
	prior.Version = 1
	prior.CurrentLocation = team.Location{Kind: team.OnPlanet, PlanetId: planet}
	prior.PlayerIds = []ids.PlayerId{priorPlayer.Id}
	w.Teams[prior.Id] = prior
	w.Players[priorPlayer.Id] = priorPlayer
	w.Planets[planet] = &galaxy.Planet{Id: planet, TeamIds: []ids.TeamId{prior.Id}}

	newPlayer := player.NewRandom(planet, player.Human, r)
	updated := *prior
	updated.Version = 2
	updated.PlayerIds = []ids.PlayerId{newPlayer.Id}

	versionUpdated, err := MergeNetworkTeam(w, NetworkTeam{Team: &updated, Players: []*player.Player{newPlayer}}, nil)
	if err != nil {
		t.Fatalf("unexpected merge error: %v", err)
	}
	if !versionUpdated {
		t.Fatalf("expected version_updated=true for a newer version")
	}
	if _, stillThere := w.Players[priorPlayer.Id]; stillThere {
		t.Fatalf("expected the prior copy's player to be cleaned up")
	}
	if _, ok := w.Players[newPlayer.Id]; !ok {
		t.Fatalf("expected the incoming player to be inserted")
	}
	for _, id := range w.Planets[planet].TeamIds {
		if id == prior.Id {
			t.Fatalf("expected the prior team to be removed from its old planet's team list")
		}
	}
}

func TestChallengeHandshakeHappyPath(t *testing.T) {
	w := world.New(0, nil, 0)
	planet := ids.NewPlanetId()
	r := rng.Deterministic(3, 3, 0)

	proposerPeer, targetPeer := ids.NewPeerId(), ids.NewPeerId()
	proposer := team.New("Proposer", planet, 0)
	proposer.PeerId = &proposerPeer
	proposer.CurrentLocation = team.Location{Kind: team.OnPlanet, PlanetId: planet}
	w.Teams[proposer.Id] = proposer

	target := team.New("Target", planet, 0)
	target.PeerId = &targetPeer
	target.CurrentLocation = team.Location{Kind: team.OnPlanet, PlanetId: planet}
	w.Teams[target.Id] = target

	syn := AuthorChallenge(proposer, proposerPeer, targetPeer, newRoster(5, planet, r), matchengine.Isolation)

	synAck := HandleSyn(target, syn, newRoster(5, planet, r), matchengine.Isolation)
	if synAck.State != team.SynAck {
		t.Fatalf("expected SynAck, got state %d (error=%q)", synAck.State, synAck.Error)
	}

	ack, err := HandleSynAck(w, proposer, synAck, 1000)
	if err != nil {
		t.Fatalf("unexpected HandleSynAck error: %v", err)
	}
	if proposer.CurrentGame == nil || *proposer.CurrentGame != ack.Id {
		t.Fatalf("expected proposer's CurrentGame to be set to the generated game")
	}

	proposerChallenge := proposer.Challenges[targetPeer]
	targetGame, err := HandleAck(w, target, proposerChallenge)
	if err != nil {
		t.Fatalf("unexpected HandleAck error: %v", err)
	}
	if targetGame.Id != ack.Id {
		t.Fatalf("expected both sides to converge on the same GameId")
	}
	if _, stillPending := target.Challenges[proposerPeer]; stillPending {
		t.Fatalf("expected the resolved challenge to be purged from the target")
	}
}

func TestHandleSynRejectsWhenTargetInGame(t *testing.T) {
	planet := ids.NewPlanetId()
	existing := ids.NewGameId()
	target := team.New("Target", planet, 0)
	target.CurrentLocation = team.Location{Kind: team.OnPlanet, PlanetId: planet}
	target.CurrentGame = &existing

	syn := &team.Challenge{State: team.Syn, ProposerPeerId: ids.NewPeerId(), TargetPeerId: ids.NewPeerId()}
	result := HandleSyn(target, syn, nil, matchengine.Isolation)
	if result.State != team.Failed {
		t.Fatalf("expected a Failed challenge when the target already has a game in flight")
	}
}

func TestTradeHandshakeSwapsPlayersAndSatoshis(t *testing.T) {
	w := world.New(0, nil, 0)
	planet := ids.NewPlanetId()
	r := rng.Deterministic(4, 4, 0)

	proposerPeer, targetPeer := ids.NewPeerId(), ids.NewPeerId()
	proposer := team.New("Proposer", planet, 0)
	target := team.New("Target", planet, 0)
	w.Teams[proposer.Id] = proposer
	w.Teams[target.Id] = target

	given := player.NewRandom(planet, player.Human, r)
	received := player.NewRandom(planet, player.Human, r)
	proposer.PlayerIds = append(proposer.PlayerIds, given.Id)
	target.PlayerIds = append(target.PlayerIds, received.Id)
	w.Players[given.Id] = given
	w.Players[received.Id] = received
	proposer.Resources = map[resource.Kind]int{resource.Satoshi: 0}
	target.Resources = map[resource.Kind]int{resource.Satoshi: 100}

	syn := AuthorTrade(proposer, proposerPeer, targetPeer, given.Id, 50)
	synAck := HandleSynTrade(target, syn, received.Id)
	if synAck.State != team.SynAck {
		t.Fatalf("expected SynAck trade, got state %d", synAck.State)
	}
	ack := HandleSynAckTrade(proposer, synAck)

	if err := ApplyTrade(w, proposer.Id, target.Id, ack); err != nil {
		t.Fatalf("unexpected ApplyTrade error: %v", err)
	}

	if given.Team == nil || *given.Team != target.Id {
		t.Fatalf("expected the given player to now belong to the target team")
	}
	if received.Team == nil || *received.Team != proposer.Id {
		t.Fatalf("expected the received player to now belong to the proposer team")
	}
	if proposer.Resources[resource.Satoshi] != 50 || target.Resources[resource.Satoshi] != 50 {
		t.Fatalf("expected a 50-satoshi transfer, got proposer=%d target=%d",
			proposer.Resources[resource.Satoshi], target.Resources[resource.Satoshi])
	}
}

// TestDisconnectRemovesPeerEntitiesExceptStandingPlanet is the S6 scenario
// from spec §8: three peer-owned entities on different planets, a
// disconnect for one peer id, and the expectation that every entity it
// owns disappears except the planet the own team is currently standing on.
func TestDisconnectRemovesPeerEntitiesExceptStandingPlanet(t *testing.T) {
	require := require.New(t)
	w := world.New(0, nil, clock.Tick(0))
	p := ids.NewPeerId()
	other := ids.NewPeerId()

	standing := ids.NewPlanetId()
	elsewhere := ids.NewPlanetId()
	untouched := ids.NewPlanetId()
	w.Planets[standing] = &galaxy.Planet{Id: standing, PeerId: &p}
	w.Planets[elsewhere] = &galaxy.Planet{Id: elsewhere, PeerId: &p}
	w.Planets[untouched] = &galaxy.Planet{Id: untouched, PeerId: &other}

	own := team.New("Own Crew", standing, 0)
	own.CurrentLocation = team.Location{Kind: team.OnPlanet, PlanetId: standing}
	w.Teams[own.Id] = own
	w.OwnTeamId = &own.Id

	peerTeam := team.New("Peer Crew", elsewhere, 0)
	peerTeam.PeerId = &p
	w.Teams[peerTeam.Id] = peerTeam

	otherPeerTeam := team.New("Other Peer Crew", untouched, 0)
	otherPeerTeam.PeerId = &other
	w.Teams[otherPeerTeam.Id] = otherPeerTeam

	own.Challenges = map[ids.PeerId]*team.Challenge{p: {State: team.Syn}}

	Disconnect(w, p)

	_, peerTeamStillPresent := w.Teams[peerTeam.Id]
	require.False(peerTeamStillPresent, "expected the disconnected peer's team to be removed")

	_, elsewherePlanetStillPresent := w.Planets[elsewhere]
	require.False(elsewherePlanetStillPresent, "expected the disconnected peer's remote planet to be removed")

	_, standingPlanetStillPresent := w.Planets[standing]
	require.True(standingPlanetStillPresent, "expected the planet the own team stands on to be retained")

	require.Empty(own.Challenges, "expected the own team's challenge with the disconnected peer to be cleared")

	_, otherTeamStillPresent := w.Teams[otherPeerTeam.Id]
	require.True(otherTeamStillPresent, "expected an unrelated peer's team to be untouched")
	_, untouchedPlanetStillPresent := w.Planets[untouched]
	require.True(untouchedPlanetStillPresent, "expected an unrelated peer's planet to be untouched")
}
