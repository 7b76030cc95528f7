package peer

import (
	"encoding/json"

	"github.com/vitadek/piratecrew/internal/piraterr"
	"github.com/vitadek/piratecrew/internal/world"
)

// SendOwnTeam publishes the local node's own team as a NetworkTeam
// snapshot on TopicTeam, the gossip message every other peer's
// MergeNetworkTeam ingests. A no-op if there is no own team yet.
func SendOwnTeam(w *world.World, t Transport, now int64) error {
	if w.OwnTeamId == nil {
		return nil
	}
	own, err := w.GetTeamOrErr(*w.OwnTeamId)
	if err != nil {
		return err
	}

	nt := NetworkTeam{Team: own, Players: w.RosterOf(own)}
	for _, aid := range own.AsteroidIds {
		if planet, ok := w.Planets[aid]; ok {
			nt.Asteroids = append(nt.Asteroids, planet)
		}
	}

	return publishJSON(t, TopicTeam, nt, now)
}

// ResendOpenChallenges republishes every Challenge still pending on the
// own team, so a reconnecting peer picks the handshake back up instead of
// timing out silently.
func ResendOpenChallenges(w *world.World, t Transport, now int64) error {
	if w.OwnTeamId == nil {
		return nil
	}
	own, err := w.GetTeamOrErr(*w.OwnTeamId)
	if err != nil {
		return err
	}
	for _, c := range own.Challenges {
		if err := publishJSON(t, TopicChallenge, c, now); err != nil {
			return err
		}
	}
	return nil
}

// ResendOpenTrades republishes every Trade still pending on the own team.
func ResendOpenTrades(w *world.World, t Transport, now int64) error {
	if w.OwnTeamId == nil {
		return nil
	}
	own, err := w.GetTeamOrErr(*w.OwnTeamId)
	if err != nil {
		return err
	}
	for _, tr := range own.Trades {
		if err := publishJSON(t, TopicTrade, tr, now); err != nil {
			return err
		}
	}
	return nil
}

func publishJSON(t Transport, topic Topic, v interface{}, now int64) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return piraterr.Wrap(piraterr.CodecError, err, "peer: encode %s payload", topic)
	}
	return t.Publish(topic, Encode(now, payload))
}
