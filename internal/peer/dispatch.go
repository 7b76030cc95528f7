package peer

import (
	"encoding/json"

	"github.com/vitadek/piratecrew/internal/ids"
	"github.com/vitadek/piratecrew/internal/matchengine"
	"github.com/vitadek/piratecrew/internal/piraterr"
	"github.com/vitadek/piratecrew/internal/team"
	"github.com/vitadek/piratecrew/internal/uicallback"
	"github.com/vitadek/piratecrew/internal/world"
)

// HandleNetworkEvent is the core's handle_network_events: it turns one
// opaque SwarmEvent into a world mutation plus, optionally, a UI callback,
// the same split every tick handler in this engine follows (mutate, then
// queue what the UI needs to know). appVersion is forwarded to
// IngestSeedInfo, which compares an inbound SeedInfo's version against it.
func HandleNetworkEvent(w *world.World, ev SwarmEvent, selfPeerId ids.PeerId, appVersion string, now int64) (*uicallback.Callback, error) {
	switch ev.Kind {
	case PeerDisconnected:
		Disconnect(w, ev.PeerId)
		return nil, nil
	case PeerConnected, ListenAddrDiscovered, Subscribed:
		return nil, nil
	case MessageReceived:
		return handleMessage(w, ev, selfPeerId, appVersion, now)
	default:
		return nil, nil
	}
}

func handleMessage(w *world.World, ev SwarmEvent, selfPeerId ids.PeerId, appVersion string, now int64) (*uicallback.Callback, error) {
	env, err := Decode(ev.Payload)
	if err != nil {
		return nil, err
	}

	switch ev.Topic {
	case TopicTeam:
		var nt NetworkTeam
		if err := json.Unmarshal(env.Payload, &nt); err != nil {
			return nil, piraterr.Wrap(piraterr.CodecError, err, "peer: decode NetworkTeam")
		}
		if _, err := MergeNetworkTeam(w, nt, &selfPeerId); err != nil {
			return nil, err
		}
		return nil, nil

	case TopicGame:
		var g matchengine.Game
		if err := json.Unmarshal(env.Payload, &g); err != nil {
			return nil, piraterr.Wrap(piraterr.CodecError, err, "peer: decode Game")
		}
		IngestNetworkGame(w, &g, env.Timestamp)
		return nil, nil

	case TopicChallenge:
		return handleChallengeMessage(w, ev.PeerId, env.Payload, selfPeerId, now)

	case TopicTrade:
		return handleTradeMessage(w, ev.PeerId, env.Payload, selfPeerId)

	case TopicSeedInfo:
		var info SeedInfo
		if err := json.Unmarshal(env.Payload, &info); err != nil {
			return nil, piraterr.Wrap(piraterr.CodecError, err, "peer: decode SeedInfo")
		}
		IngestSeedInfo(w, appVersion, info)
		return nil, nil

	case TopicChat:
		var msg string
		if err := json.Unmarshal(env.Payload, &msg); err != nil {
			return nil, piraterr.Wrap(piraterr.CodecError, err, "peer: decode chat message")
		}
		cb := uicallback.Callback{Kind: uicallback.PushUiPopup, Message: msg}
		w.Callbacks.Push(cb)
		return &cb, nil

	default:
		return nil, nil
	}
}

// handleChallengeMessage advances the challenge state machine one hop: an
// inbound Syn addressed to us is stored and surfaced as a popup (a full
// renderer decides whether to accept and calls HandleSyn itself); an
// inbound SynAck addressed to our proposing team completes the game via
// HandleSynAck; an inbound Ack addressed to our target team completes the
// game via HandleAck; an inbound Failed purges both sides' copy.
func handleChallengeMessage(w *world.World, from ids.PeerId, payload []byte, selfPeerId ids.PeerId, now int64) (*uicallback.Callback, error) {
	var c team.Challenge
	if err := json.Unmarshal(payload, &c); err != nil {
		return nil, piraterr.Wrap(piraterr.CodecError, err, "peer: decode Challenge")
	}

	switch c.State {
	case team.Syn:
		if c.TargetPeerId != selfPeerId || w.OwnTeamId == nil {
			return nil, nil
		}
		own, err := w.GetTeamOrErr(*w.OwnTeamId)
		if err != nil {
			return nil, err
		}
		storeChallenge(own, c.ProposerPeerId, &c)
		cb := uicallback.Callback{Kind: uicallback.PushUiPopup, Message: "Incoming challenge from " + from.String()}
		w.Callbacks.Push(cb)
		return &cb, nil

	case team.SynAck:
		if c.ProposerPeerId != selfPeerId || w.OwnTeamId == nil {
			return nil, nil
		}
		own, err := w.GetTeamOrErr(*w.OwnTeamId)
		if err != nil {
			return nil, err
		}
		if _, err := HandleSynAck(w, own, &c, now); err != nil {
			return nil, err
		}
		cb := uicallback.Callback{Kind: uicallback.PushUiPopup, Message: "Challenge accepted, game starting"}
		w.Callbacks.Push(cb)
		return &cb, nil

	case team.Ack:
		if c.TargetPeerId != selfPeerId || w.OwnTeamId == nil {
			return nil, nil
		}
		own, err := w.GetTeamOrErr(*w.OwnTeamId)
		if err != nil {
			return nil, err
		}
		if _, err := HandleAck(w, own, &c); err != nil {
			return nil, err
		}
		return nil, nil

	case team.Failed:
		if w.OwnTeamId == nil {
			return nil, nil
		}
		if own, ok := w.Teams[*w.OwnTeamId]; ok {
			PurgeChallenge(own, from)
		}
		return nil, nil
	}
	return nil, nil
}

func handleTradeMessage(w *world.World, from ids.PeerId, payload []byte, selfPeerId ids.PeerId) (*uicallback.Callback, error) {
	var tr team.Trade
	if err := json.Unmarshal(payload, &tr); err != nil {
		return nil, piraterr.Wrap(piraterr.CodecError, err, "peer: decode Trade")
	}

	if w.OwnTeamId == nil {
		return nil, nil
	}
	own, err := w.GetTeamOrErr(*w.OwnTeamId)
	if err != nil {
		return nil, err
	}

	switch tr.State {
	case team.Syn:
		if tr.TargetPeerId != selfPeerId {
			return nil, nil
		}
		storeTrade(own, tr.ProposerPeerId, &tr)
		cb := uicallback.Callback{Kind: uicallback.PushUiPopup, Message: "Incoming trade offer from " + from.String()}
		w.Callbacks.Push(cb)
		return &cb, nil

	case team.SynAck:
		if tr.ProposerPeerId != selfPeerId {
			return nil, nil
		}
		storeTrade(own, tr.TargetPeerId, &tr)
		cb := uicallback.Callback{Kind: uicallback.PushUiPopup, Message: "Counter-offer received for trade"}
		w.Callbacks.Push(cb)
		return &cb, nil

	case team.Ack:
		proposer, ok := findTeamByPeer(w, tr.ProposerPeerId, selfPeerId)
		if !ok {
			return nil, nil
		}
		target, ok := findTeamByPeer(w, tr.TargetPeerId, selfPeerId)
		if !ok {
			return nil, nil
		}
		if err := ApplyTrade(w, proposer, target, &tr); err != nil {
			return nil, err
		}
		return nil, nil

	case team.Failed:
		delete(own.Trades, from)
		return nil, nil
	}
	return nil, nil
}

// findTeamByPeer resolves a peer id (which may be our own) to the local
// team id representing it: our own team if it matches selfPeerId, or the
// ingested NetworkTeam copy otherwise.
func findTeamByPeer(w *world.World, p, selfPeerId ids.PeerId) (ids.TeamId, bool) {
	if p == selfPeerId && w.OwnTeamId != nil {
		return *w.OwnTeamId, true
	}
	for id, t := range w.Teams {
		if t.PeerId != nil && *t.PeerId == p {
			return id, true
		}
	}
	return ids.TeamId{}, false
}
