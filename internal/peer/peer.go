// Package peer implements the gossip envelope, topic semantics, and the
// NetworkTeam / Challenge / Trade peer-sync protocols. The low-level
// swarm transport is out of scope here — this package specifies only the
// message envelope and topic semantics; internal/transport supplies a
// reference implementation of the Transport interface this package
// defines, and this package never imports it back.
//
// Grounded on consensus.go's fan-out pattern (JSON-marshal,
// lz4-compress, broadcast to every known peer; its ed25519-sign step is not
// carried over, so envelopes are unsigned) generalized
// from a single heartbeat message type to six topic-addressed payload
// kinds, and on start_world.go's CompressLZ4/DecompressLZ4 helpers for the
// envelope codec.
package peer

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pierrec/lz4/v4"

	"github.com/vitadek/piratecrew/internal/automanage"
	"github.com/vitadek/piratecrew/internal/galaxy"
	"github.com/vitadek/piratecrew/internal/ids"
	"github.com/vitadek/piratecrew/internal/matchengine"
	"github.com/vitadek/piratecrew/internal/piraterr"
	"github.com/vitadek/piratecrew/internal/player"
	"github.com/vitadek/piratecrew/internal/resource"
	"github.com/vitadek/piratecrew/internal/team"
	"github.com/vitadek/piratecrew/internal/world"
)

// Topic is one of the six gossip channels a node publishes and subscribes
// to.
type Topic int

const (
	TopicTeam Topic = iota
	TopicGame
	TopicChallenge
	TopicTrade
	TopicSeedInfo
	TopicChat
)

func (t Topic) String() string {
	switch t {
	case TopicTeam:
		return "TEAM"
	case TopicGame:
		return "GAME"
	case TopicChallenge:
		return "CHALLENGE"
	case TopicTrade:
		return "TRADE"
	case TopicSeedInfo:
		return "SEED_INFO"
	case TopicChat:
		return "CHAT"
	default:
		return "UNKNOWN"
	}
}

// NetworkGameStartDelay is the gap between a Challenge resolving to Ack and
// the generated game's starting_at. Referenced by name in
// original_source but its numeric value lived in the constants.rs region
// the retrieval pack filtered out, so this engine pins its own value
// rather than fabricating a citation: 30 s, in millisecond ticks.
const NetworkGameStartDelay = 30_000

// Encode wraps payload in the wire frame: an 8-byte
// little-endian timestamp followed by an lz4-compressed, self-describing
// payload (the caller is responsible for having already serialized
// payload, e.g. via encoding/json, into the data model it round-trips).
func Encode(timestamp int64, payload []byte) []byte {
	compressed := compressLZ4(payload)
	out := make([]byte, 8+len(compressed))
	binary.LittleEndian.PutUint64(out[:8], uint64(timestamp))
	copy(out[8:], compressed)
	return out
}

// Envelope is a decoded wire frame.
type Envelope struct {
	Timestamp int64
	Payload   []byte
}

// Decode reverses Encode, surfacing CodecError on a malformed frame.
func Decode(raw []byte) (*Envelope, error) {
	if len(raw) < 8 {
		return nil, piraterr.New(piraterr.CodecError, "envelope shorter than the 8-byte timestamp prefix")
	}
	ts := int64(binary.LittleEndian.Uint64(raw[:8]))
	payload, err := decompressLZ4(raw[8:])
	if err != nil {
		return nil, piraterr.Wrap(piraterr.CodecError, err, "decompressing envelope payload")
	}
	return &Envelope{Timestamp: ts, Payload: payload}, nil
}

func compressLZ4(src []byte) []byte {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	w.Write(src)
	w.Close()
	return buf.Bytes()
}

func decompressLZ4(src []byte) ([]byte, error) {
	r := lz4.NewReader(bytes.NewReader(src))
	return io.ReadAll(r)
}

// SwarmEventKind discriminates an inbound transport notification.
type SwarmEventKind int

const (
	ListenAddrDiscovered SwarmEventKind = iota
	PeerConnected
	PeerDisconnected
	Subscribed
	MessageReceived
)

// SwarmEvent is a single opaque transport notification handed to the core.
type SwarmEvent struct {
	Kind    SwarmEventKind
	PeerId  ids.PeerId
	Topic   Topic
	Payload []byte
	Addr    string
}

// Transport is the core's view of the gossip network. internal/transport supplies the
// reference gorilla/websocket implementation; core logic depends only on
// this interface.
type Transport interface {
	StartPollingEvents(events chan<- SwarmEvent, cancel <-chan struct{}, tcpPort int) error
	Publish(topic Topic, payload []byte) error
	DialSeed(addr string) error
	SetKeypair(blob []byte)
	KeypairBytes() []byte
}

// NetworkTeam is the outbound snapshot of a locally-owned team sent over
// the gossip network: the team itself plus its players and asteroids.
type NetworkTeam struct {
	Team      *team.Team
	Players   []*player.Player
	Asteroids []*galaxy.Planet
}

// MergeNetworkTeam applies an inbound NetworkTeam to w, following spec
// §4.8's merge paragraph verbatim: reject if peer_id is absent or self;
// reject if any incoming player_id collides with own-team's roster
// (own-team state has precedence); replace any prior copy, cleaning up its
// old roster; attach the incoming asteroids without touching any parent
// satellite list (peer asteroids are invisible in the galaxy map).
// selfPeerId is nil when the local node has no network identity yet.
func MergeNetworkTeam(w *world.World, nt NetworkTeam, selfPeerId *ids.PeerId) (versionUpdated bool, err error) {
	if nt.Team.PeerId == nil {
		return false, piraterr.New(piraterr.NetworkRejected, "NetworkTeam missing peer_id")
	}
	if selfPeerId != nil && *nt.Team.PeerId == *selfPeerId {
		return false, piraterr.New(piraterr.NetworkRejected, "NetworkTeam claims our own peer_id")
	}

	if w.OwnTeamId != nil {
		if own, ok := w.Teams[*w.OwnTeamId]; ok {
			ownRoster := make(map[ids.PlayerId]bool, len(own.PlayerIds))
			for _, id := range own.PlayerIds {
				ownRoster[id] = true
			}
			for _, id := range nt.Team.PlayerIds {
				if ownRoster[id] {
					return false, piraterr.New(piraterr.NetworkRejected, "NetworkTeam claims a player already on our own roster")
				}
			}
		}
	}

	prior, hadPrior := w.Teams[nt.Team.Id]
	if hadPrior {
		if prior.CurrentLocation.Kind == team.OnPlanet {
			if planet, ok := w.Planets[prior.CurrentLocation.PlanetId]; ok {
				planet.TeamIds = removeTeamId(planet.TeamIds, prior.Id)
			}
		}
		for _, id := range prior.PlayerIds {
			delete(w.Players, id)
		}
	}

	for _, p := range nt.Players {
		p.PeerId = nt.Team.PeerId
		w.Players[p.Id] = p
	}
	for _, a := range nt.Asteroids {
		w.Planets[a.Id] = a
	}
	w.Teams[nt.Team.Id] = nt.Team

	if !hadPrior {
		return true, nil
	}
	return prior.Version < nt.Team.Version, nil
}

func removeTeamId(list []ids.TeamId, target ids.TeamId) []ids.TeamId {
	out := list[:0]
	for _, id := range list {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

// AuthorChallenge starts a Syn from own's perspective, proposer = ownPeerId,
// target = targetPeerId, with own's TeamInGame snapshot attached as the
// home team.
func AuthorChallenge(own *team.Team, ownPeerId, targetPeerId ids.PeerId, homeRoster []*player.Player, tactic matchengine.Tactic) *team.Challenge {
	home := matchengine.NewTeamInGame(own.Id, &ownPeerId, own.Name, own.Reputation, tactic, homeRoster)
	c := &team.Challenge{
		State:          team.Syn,
		ProposerPeerId: ownPeerId,
		TargetPeerId:   targetPeerId,
		HomeTeam:       home,
	}
	if own.Challenges == nil {
		own.Challenges = map[ids.PeerId]*team.Challenge{}
	}
	own.Challenges[targetPeerId] = c
	return c
}

// validateChallengeTarget checks the readiness preconditions a challenge
// target must satisfy before accepting (no game in flight, on same
// planet, not exploring, etc.); same-planet comparison against the
// proposer is the caller's responsibility since it requires the proposer's
// team record, which this package does not assume is locally known.
func validateChallengeTarget(target *team.Team) error {
	if target.CurrentGame != nil {
		return piraterr.New(piraterr.PreconditionFailed, "team %s already has a game in progress", target.Id)
	}
	if target.CurrentLocation.Kind != team.OnPlanet {
		return piraterr.New(piraterr.PreconditionFailed, "team %s is not available to accept a challenge", target.Id)
	}
	return nil
}

// HandleSyn is the target's reaction to an inbound Syn: validate, attach
// its own TeamInGame snapshot as the away team, and flip to SynAck. On
// failure it returns a Failed challenge instead, per spec.
func HandleSyn(target *team.Team, incoming *team.Challenge, awayRoster []*player.Player, tactic matchengine.Tactic) *team.Challenge {
	if err := validateChallengeTarget(target); err != nil {
		c := *incoming
		c.State = team.Failed
		c.Error = err.Error()
		storeChallenge(target, incoming.ProposerPeerId, &c)
		return &c
	}
	away := matchengine.NewTeamInGame(target.Id, &incoming.TargetPeerId, target.Name, target.Reputation, tactic, awayRoster)
	c := *incoming
	c.State = team.SynAck
	c.AwayTeam = away
	storeChallenge(target, incoming.ProposerPeerId, &c)
	return &c
}

func storeChallenge(t *team.Team, counterparty ids.PeerId, c *team.Challenge) {
	if t.Challenges == nil {
		t.Challenges = map[ids.PeerId]*team.Challenge{}
	}
	t.Challenges[counterparty] = c
}

// HandleSynAck is the proposer's reaction to a SynAck: allocate a GameId and
// starting_at, flip to Ack, and locally generate the network game.
func HandleSynAck(w *world.World, own *team.Team, incoming *team.Challenge, now int64) (*matchengine.Game, error) {
	if incoming.State != team.SynAck {
		return nil, piraterr.New(piraterr.NetworkRejected, "expected a SynAck challenge")
	}
	if incoming.HomeTeam == nil || incoming.AwayTeam == nil {
		return nil, piraterr.New(piraterr.NetworkRejected, "SynAck missing a TeamInGame snapshot")
	}
	gameID := ids.NewGameId()
	startingAt := now + NetworkGameStartDelay
	g := matchengine.New(gameID, incoming.HomeTeam, incoming.AwayTeam, startingAt, own.CurrentLocation.PlanetId, 0, true)
	w.Games[gameID] = g
	own.CurrentGame = &gameID

	c := *incoming
	c.State = team.Ack
	c.GameId = &gameID
	c.StartingAt = &startingAt
	storeChallenge(own, incoming.TargetPeerId, &c)
	return g, nil
}

// HandleAck is the target's reaction to an Ack: locally generate the
// matching network game using the proposer's id and timestamps, and purge
// the resolved challenge.
func HandleAck(w *world.World, target *team.Team, incoming *team.Challenge) (*matchengine.Game, error) {
	if incoming.State != team.Ack || incoming.GameId == nil || incoming.StartingAt == nil {
		return nil, piraterr.New(piraterr.NetworkRejected, "Ack challenge missing game_id or starting_at")
	}
	if incoming.HomeTeam == nil || incoming.AwayTeam == nil {
		return nil, piraterr.New(piraterr.NetworkRejected, "Ack challenge missing a TeamInGame snapshot")
	}
	g := matchengine.New(*incoming.GameId, incoming.HomeTeam, incoming.AwayTeam, *incoming.StartingAt, target.CurrentLocation.PlanetId, 0, true)
	w.Games[*incoming.GameId] = g
	target.CurrentGame = incoming.GameId
	delete(target.Challenges, incoming.ProposerPeerId)
	return g, nil
}

// PurgeChallenge drops t's side of a Challenge with counterparty, used on
// Failed (spec: "both sides purge the Challenge") and after a resolved Ack.
func PurgeChallenge(t *team.Team, counterparty ids.PeerId) {
	delete(t.Challenges, counterparty)
}

// AuthorTrade starts a Syn trade offer naming the proposer's own player to
// give up.
func AuthorTrade(own *team.Team, ownPeerId, targetPeerId ids.PeerId, offeredPlayer ids.PlayerId, deltaSatoshis int64) *team.Trade {
	t := &team.Trade{
		State:          team.Syn,
		ProposerPeerId: ownPeerId,
		TargetPeerId:   targetPeerId,
		ProposerPlayer: &offeredPlayer,
		DeltaSatoshis:  deltaSatoshis,
	}
	if own.Trades == nil {
		own.Trades = map[ids.PeerId]*team.Trade{}
	}
	own.Trades[targetPeerId] = t
	return t
}

// HandleSynTrade is the target's reaction to an inbound Syn trade: name the
// player it offers in return and flip to SynAck, or fail if it doesn't hold
// that player.
func HandleSynTrade(target *team.Team, incoming *team.Trade, counteredPlayer ids.PlayerId) *team.Trade {
	if incoming.ProposerPlayer == nil || !hasPlayer(target, counteredPlayer) {
		tr := *incoming
		tr.State = team.Failed
		storeTrade(target, incoming.ProposerPeerId, &tr)
		return &tr
	}
	tr := *incoming
	tr.State = team.SynAck
	tr.TargetPlayer = &counteredPlayer
	storeTrade(target, incoming.ProposerPeerId, &tr)
	return &tr
}

func hasPlayer(t *team.Team, id ids.PlayerId) bool {
	for _, pid := range t.PlayerIds {
		if pid == id {
			return true
		}
	}
	return false
}

func storeTrade(t *team.Team, counterparty ids.PeerId, tr *team.Trade) {
	if t.Trades == nil {
		t.Trades = map[ids.PeerId]*team.Trade{}
	}
	t.Trades[counterparty] = tr
}

// HandleSynAckTrade is the proposer's reaction to a SynAck trade: flip to
// Ack. The actual roster/satoshi swap happens in ApplyTrade once both sides
// observe the Ack, not here.
func HandleSynAckTrade(own *team.Team, incoming *team.Trade) *team.Trade {
	tr := *incoming
	tr.State = team.Ack
	storeTrade(own, incoming.TargetPeerId, &tr)
	return &tr
}

// ApplyTrade executes the roster swap and satoshi settlement once a Trade
// has resolved to Ack. Both the proposer's
// and the target's local Team records must already be in w.Teams.
func ApplyTrade(w *world.World, proposerID, targetID ids.TeamId, tr *team.Trade) error {
	if tr.State != team.Ack || tr.ProposerPlayer == nil || tr.TargetPlayer == nil {
		return piraterr.New(piraterr.PreconditionFailed, "trade is not in a resolved Ack state")
	}
	proposer, err := w.GetTeamOrErr(proposerID)
	if err != nil {
		return err
	}
	target, err := w.GetTeamOrErr(targetID)
	if err != nil {
		return err
	}
	given, err := w.GetPlayerOrErr(*tr.ProposerPlayer)
	if err != nil {
		return err
	}
	received, err := w.GetPlayerOrErr(*tr.TargetPlayer)
	if err != nil {
		return err
	}

	proposer.RemovePlayer(given.Id)
	target.RemovePlayer(received.Id)
	if err := target.AddPlayer(given.Id, automanage.MaxPlayersPerTeam); err != nil {
		return err
	}
	if err := proposer.AddPlayer(received.Id, automanage.MaxPlayersPerTeam); err != nil {
		return err
	}
	given.AssignToTeam(target.Id)
	received.AssignToTeam(proposer.Id)

	if proposer.Resources == nil {
		proposer.Resources = map[resource.Kind]int{}
	}
	if target.Resources == nil {
		target.Resources = map[resource.Kind]int{}
	}
	proposer.Resources[resource.Satoshi] += int(tr.DeltaSatoshis)
	target.Resources[resource.Satoshi] -= int(tr.DeltaSatoshis)
	if proposer.Resources[resource.Satoshi] < 0 {
		proposer.Resources[resource.Satoshi] = 0
	}
	if target.Resources[resource.Satoshi] < 0 {
		target.Resources[resource.Satoshi] = 0
	}
	return nil
}

// IngestNetworkGame inserts a spectated game, fast-forwarding it to the
// advertised timer before inserting.
func IngestNetworkGame(w *world.World, g *matchengine.Game, advertisedTimer int64) {
	for g.EndedAt == nil && g.StartingAt+int64(g.TimerSeconds) <= advertisedTimer {
		if !g.Step() {
			break
		}
	}
	w.Games[g.Id] = g
}

// SeedInfo is the periodic broadcast a seed node may publish.
type SeedInfo struct {
	ConnectedPeersCount int
	AppVersion          string
	Message             string
	TeamRanking         []RankingEntry
	PlayerRanking       []RankingEntry
}

// RankingEntry is one row of a SeedInfo ladder; the ladder UI itself lives
// outside core (spec: "the rankings feed a ladder UI (outside core)").
type RankingEntry struct {
	Id    string
	Name  string
	Score float64
}

// IngestSeedInfo applies an inbound SeedInfo: an app_version that differs
// from localVersion pushes a version popup, and a non-empty broadcast
// message is surfaced. Versions are compared for equality only, not
// ordered, and the version popup is pushed again on every such SeedInfo.
// Rankings are ignored here since core holds no ranking state of its own
// (persistence.RankingStore stores them for a seed node).
func IngestSeedInfo(w *world.World, localVersion string, info SeedInfo) {
	if info.AppVersion != "" && info.AppVersion != localVersion {
		w.Callbacks.Popup("A new version is available: %s", info.AppVersion)
	}
	if info.Message != "" {
		w.Callbacks.Popup("%s", info.Message)
	}
}

// Disconnect removes every entity whose peer_id == p, except a peer planet
// the own team currently stands on, retains in-flight games involving the
// own team or any tournament, and clears every challenge/trade whose
// counterparty is p.
func Disconnect(w *world.World, p ids.PeerId) {
	keepGame := map[ids.GameId]bool{}
	for _, t := range w.Tournaments {
		for _, gid := range t.GameIds {
			keepGame[gid] = true
		}
	}

	for id, g := range w.Games {
		involvesPeer := (g.HomeTeamInGame.PeerId != nil && *g.HomeTeamInGame.PeerId == p) ||
			(g.AwayTeamInGame.PeerId != nil && *g.AwayTeamInGame.PeerId == p)
		if !involvesPeer || keepGame[id] {
			continue
		}
		if w.OwnTeamId != nil && (g.HomeTeamInGame.TeamId == *w.OwnTeamId || g.AwayTeamInGame.TeamId == *w.OwnTeamId) {
			continue
		}
		delete(w.Games, id)
	}

	for id, t := range w.Teams {
		if t.PeerId == nil || *t.PeerId != p {
			continue
		}
		for _, pid := range t.PlayerIds {
			delete(w.Players, pid)
		}
		delete(w.Teams, id)
	}

	for id, pl := range w.Players {
		if pl.PeerId != nil && *pl.PeerId == p {
			delete(w.Players, id)
		}
	}

	for id, planet := range w.Planets {
		if planet.PeerId == nil || *planet.PeerId != p {
			continue
		}
		if ownTeamStandingOn(w, id) {
			continue
		}
		delete(w.Planets, id)
	}

	for _, t := range w.Teams {
		delete(t.Challenges, p)
		delete(t.Trades, p)
	}
}

func ownTeamStandingOn(w *world.World, planetID ids.PlanetId) bool {
	if w.OwnTeamId == nil {
		return false
	}
	own, ok := w.Teams[*w.OwnTeamId]
	if !ok {
		return false
	}
	return own.CurrentLocation.Kind == team.OnPlanet && own.CurrentLocation.PlanetId == planetID
}
