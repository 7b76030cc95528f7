// Package tournament implements the bracket state machine, grounded
// verbatim on original_source/src/game_engine/tournament.rs:
// Registration/Confirmation/Syncing/Started/Ended/Canceled state
// derivation (Tournament::state), seeded shuffle-and-pair bracket
// initialization and winner-propagation in generate_next_games, and
// deterministic per-(tournament_id, tick) RNG (get_rng_seed/get_rng).
package tournament

import (
	"encoding/json"
	"sort"

	"github.com/vitadek/piratecrew/internal/ids"
	"github.com/vitadek/piratecrew/internal/matchengine"
	"github.com/vitadek/piratecrew/internal/piraterr"
	"github.com/vitadek/piratecrew/internal/rng"
)

// ConfirmationStateDuration pinned from tournament.rs's
// CONFIRMATION_STATE_DURATION = 5 * SECONDS, in millisecond ticks.
const ConfirmationStateDuration = 5 * 1000

// GameTimeInterval pinned from tournament.rs's game_time_interval default
// of 1 * HOURS, expressed in this engine's millisecond ticks.
const GameTimeInterval = 3600 * 1000

// State is the bracket lifecycle stage.
type State int

const (
	Registration State = iota
	Confirmation
	Syncing
	Started
	Ended
	Canceled
)

func (s State) String() string {
	switch s {
	case Registration:
		return "registration"
	case Confirmation:
		return "confirmation"
	case Syncing:
		return "syncing"
	case Started:
		return "started"
	case Ended:
		return "ended"
	case Canceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Tournament is the full entity, grounded field-for-field on
// tournament.rs's Tournament struct (TournamentType/kartoffel_id trimmed:
// this engine scopes a Tournament to organizer/participants/bracket state).
type Tournament struct {
	Id                    ids.TournamentId
	OrganizerId           ids.TeamId
	MaxParticipants        int
	PlanetId              ids.PlanetId
	PlanetName            string
	PlanetTotalPopulation uint32

	RegistrationsClosingAt int64
	StartingAt             int64
	GameTimeInterval       int64

	RegisteredTeams map[ids.TeamId]*matchengine.TeamInGame
	Participants    map[ids.TeamId]*matchengine.TeamInGame

	GameIds                  []ids.GameId
	pendingTeamForNextGame   *ids.TeamId
	initialized              bool
	canceled                 bool

	EndedAt *int64
	Winner  *ids.TeamId
}

// tournamentWire mirrors Tournament with its three bracket-progress fields
// exported, so a save/load round trip preserves them. Persistence marshals
// *Tournament directly (it never sees this type); these methods exist so
// json.Marshal/Unmarshal on a Tournament do the right thing without the
// rest of the package having to route through an exported accessor for
// every internal field.
type tournamentWire struct {
	Id                     ids.TournamentId
	OrganizerId            ids.TeamId
	MaxParticipants         int
	PlanetId               ids.PlanetId
	PlanetName             string
	PlanetTotalPopulation  uint32
	RegistrationsClosingAt int64
	StartingAt             int64
	GameTimeInterval       int64
	RegisteredTeams        map[ids.TeamId]*matchengine.TeamInGame
	Participants           map[ids.TeamId]*matchengine.TeamInGame
	GameIds                []ids.GameId
	PendingTeamForNextGame *ids.TeamId
	Initialized            bool
	Canceled               bool
	EndedAt                *int64
	Winner                 *ids.TeamId
}

func (t *Tournament) MarshalJSON() ([]byte, error) {
	return json.Marshal(tournamentWire{
		Id:                     t.Id,
		OrganizerId:            t.OrganizerId,
		MaxParticipants:        t.MaxParticipants,
		PlanetId:               t.PlanetId,
		PlanetName:             t.PlanetName,
		PlanetTotalPopulation:  t.PlanetTotalPopulation,
		RegistrationsClosingAt: t.RegistrationsClosingAt,
		StartingAt:             t.StartingAt,
		GameTimeInterval:       t.GameTimeInterval,
		RegisteredTeams:        t.RegisteredTeams,
		Participants:           t.Participants,
		GameIds:                t.GameIds,
		PendingTeamForNextGame: t.pendingTeamForNextGame,
		Initialized:            t.initialized,
		Canceled:               t.canceled,
		EndedAt:                t.EndedAt,
		Winner:                 t.Winner,
	})
}

func (t *Tournament) UnmarshalJSON(data []byte) error {
	var w tournamentWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*t = Tournament{
		Id:                     w.Id,
		OrganizerId:            w.OrganizerId,
		MaxParticipants:        w.MaxParticipants,
		PlanetId:               w.PlanetId,
		PlanetName:             w.PlanetName,
		PlanetTotalPopulation:  w.PlanetTotalPopulation,
		RegistrationsClosingAt: w.RegistrationsClosingAt,
		StartingAt:             w.StartingAt,
		GameTimeInterval:       w.GameTimeInterval,
		RegisteredTeams:        w.RegisteredTeams,
		Participants:           w.Participants,
		GameIds:                w.GameIds,
		pendingTeamForNextGame: w.PendingTeamForNextGame,
		initialized:            w.Initialized,
		canceled:               w.Canceled,
		EndedAt:                w.EndedAt,
		Winner:                 w.Winner,
	}
	return nil
}

// New constructs a Tournament; starting_at is registrations_closing_at +
// ConfirmationStateDuration, mirroring Tournament::new.
func New(organizer ids.TeamId, maxParticipants int, registrationsClosingAt, now int64) (*Tournament, error) {
	if registrationsClosingAt <= now {
		return nil, piraterr.New(piraterr.PreconditionFailed, "tournament is closing registrations in the past")
	}
	return &Tournament{
		Id:                     ids.NewTournamentId(),
		OrganizerId:            organizer,
		MaxParticipants:        maxParticipants,
		RegistrationsClosingAt: registrationsClosingAt,
		StartingAt:             registrationsClosingAt + ConfirmationStateDuration,
		GameTimeInterval:       GameTimeInterval,
		RegisteredTeams:        map[ids.TeamId]*matchengine.TeamInGame{},
		Participants:           map[ids.TeamId]*matchengine.TeamInGame{},
	}, nil
}

// State derives the lifecycle stage from the current tick, mirroring
// Tournament::state's layered checks (canceled > ended > started >
// registration-open > confirmation).
func (t *Tournament) State(now int64) State {
	if t.canceled {
		return Canceled
	}
	if t.EndedAt != nil {
		return Ended
	}
	if t.StartingAt <= now {
		return Started
	}
	if now <= t.RegistrationsClosingAt {
		return Registration
	}
	return Confirmation
}

// Cancel marks the tournament Canceled terminally.
func (t *Tournament) Cancel() { t.canceled = true }

// Canceled reports whether Cancel has already fired.
func (t *Tournament) Canceled() bool { return t.canceled }

// AdvanceLifecycle handles the Confirmation/Syncing window transition that
// GenerateNextGames doesn't cover, per spec §4.5's cancellation triggers:
// fewer than 2 registrations/participants, or the organizer missing that
// window. State never reports a distinct Syncing value (starting_at is
// pinned to registrations_closing_at+ConfirmationStateDuration in New,
// exactly mirroring tournament.rs's Tournament::state, which also folds
// both into one Confirmation return) so both of spec's "Confirmation" and
// "Syncing" checks collapse onto the single tick State reports as
// Confirmation. catchup is true when this tick is being replayed as part
// of a "simulate to now" catch-up rather than live, matching spec's note
// that the window assumes the organizer's client is online to answer a
// ConfirmTournamentParticipants callback — a replay spanning it can't
// honor that and cancels instead. Returns which UiCallback(s) the caller
// should push this tick.
func (t *Tournament) AdvanceLifecycle(now int64, catchup bool) (pushConfirm, pushSync bool) {
	if t.canceled || t.EndedAt != nil {
		return false, false
	}
	if t.State(now) != Confirmation {
		return false, false
	}
	if catchup {
		t.Cancel()
		return false, false
	}
	if len(t.RegisteredTeams) < 2 {
		t.Cancel()
		return false, false
	}
	_, organizerRegistered := t.RegisteredTeams[t.OrganizerId]
	_, organizerConfirmed := t.Participants[t.OrganizerId]
	if !organizerRegistered && !organizerConfirmed {
		t.Cancel()
		return false, false
	}
	return true, true
}

// RegisterTeam adds team to the registration pool while Registration is
// open.
func (t *Tournament) RegisterTeam(team *matchengine.TeamInGame, now int64) error {
	if now > t.RegistrationsClosingAt {
		return piraterr.New(piraterr.PreconditionFailed, "tournament registrations are closed")
	}
	t.RegisteredTeams[team.TeamId] = team
	return nil
}

// ConfirmTeamRegistration moves a registered team into Participants
//.
func (t *Tournament) ConfirmTeamRegistration(team *matchengine.TeamInGame, now int64) error {
	if now < t.RegistrationsClosingAt || now > t.StartingAt {
		return piraterr.New(piraterr.PreconditionFailed, "tournament is not in its confirmation window")
	}
	t.Participants[team.TeamId] = team
	return nil
}

// ConfirmOrganizer lets the organizer write directly into Participants
// without going through the registered pool.
func (t *Tournament) ConfirmOrganizer(team *matchengine.TeamInGame) error {
	if team.TeamId != t.OrganizerId {
		return piraterr.New(piraterr.PreconditionFailed, "only the organizing team can confirm itself directly")
	}
	t.Participants[team.TeamId] = team
	return nil
}

func (t *Tournament) seed(currentTick int64) *rng.Rand {
	hi, lo := t.Id.Words()
	return rng.Deterministic(hi, lo, currentTick)
}

// sortedParticipantIds returns participant team ids in a stable order, the
// basis the seeded shuffle below permutes deterministically (Go's map
// iteration order is randomized per-process, so we must sort before
// shuffling for Tournament determinism to hold across runs).
func (t *Tournament) sortedParticipantIds() []ids.TeamId {
	out := make([]ids.TeamId, 0, len(t.Participants))
	for id := range t.Participants {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// GenerateNextGames implements the Started-state bracket logic, grounded
// verbatim on tournament.rs's generate_next_games: initialize the
// bracket on first call (seeded shuffle-and-pair, odd leftover becomes the
// bye), then on each subsequent call scan ended live games, propagate
// winners (coin-flip on tie), and pair the winner with any pending bye; when
// no live games remain and a team is still pending, that team is the
// champion.
func (t *Tournament) GenerateNextGames(currentTick int64, liveGames map[ids.GameId]*matchengine.Game) []*matchengine.Game {
	if t.canceled || t.StartingAt > currentTick || t.EndedAt != nil {
		return nil
	}
	if len(t.Participants) < 2 {
		// Spec §4.5: fewer than 2 participants is a Canceled trigger, not a
		// solo "win" or a no-op Ended state.
		t.Cancel()
		return nil
	}

	if !t.initialized {
		r := t.seed(t.StartingAt)
		order := t.sortedParticipantIds()
		r.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		var newGames []*matchengine.Game
		for _, teamID := range order {
			tig := t.Participants[teamID]
			if t.pendingTeamForNextGame != nil {
				pending := t.Participants[*t.pendingTeamForNextGame]
				game := t.newGame(r, tig, pending, currentTick+t.GameTimeInterval)
				t.GameIds = append(t.GameIds, game.Id)
				newGames = append(newGames, game)
				t.pendingTeamForNextGame = nil
			} else {
				id := teamID
				t.pendingTeamForNextGame = &id
			}
		}
		t.initialized = true
		return newGames
	}

	if len(liveGames) == 0 {
		if t.pendingTeamForNextGame != nil {
			winner := *t.pendingTeamForNextGame
			t.Winner = &winner
			ended := currentTick
			t.EndedAt = &ended
		}
		return nil
	}

	r := t.seed(currentTick)
	var newGames []*matchengine.Game
	for _, game := range sortedLiveGames(liveGames) {
		if game.EndedAt == nil {
			continue
		}
		var winnerID ids.TeamId
		if game.Winner != nil {
			winnerID = *game.Winner
		} else if r.Float64() < 0.5 {
			winnerID = game.HomeTeamInGame.TeamId
		} else {
			winnerID = game.AwayTeamInGame.TeamId
		}

		if t.pendingTeamForNextGame != nil {
			home := t.Participants[*t.pendingTeamForNextGame]
			away := t.Participants[winnerID]
			game := t.newGame(r, home, away, currentTick+t.GameTimeInterval)
			t.GameIds = append(t.GameIds, game.Id)
			newGames = append(newGames, game)
			t.pendingTeamForNextGame = nil
		} else {
			id := winnerID
			t.pendingTeamForNextGame = &id
		}
	}
	return newGames
}

// sortedLiveGames returns liveGames' values ordered by GameId, the same
// rationale as sortedParticipantIds: this loop both consumes r.Float64()
// tie-break rolls and decides bracket pairing order off map iteration,
// so unsorted iteration would let two independently replaying nodes
// diverge (spec §4.5/§1(e)).
func sortedLiveGames(liveGames map[ids.GameId]*matchengine.Game) []*matchengine.Game {
	out := make([]*matchengine.Game, 0, len(liveGames))
	for _, game := range liveGames {
		out = append(out, game)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id.String() < out[j].Id.String() })
	return out
}

func (t *Tournament) newGame(r *rng.Rand, home, away *matchengine.TeamInGame, startingAt int64) *matchengine.Game {
	gameID := ids.GameId(newDeterministicUUID(r))
	return matchengine.New(gameID, home, away, startingAt, t.PlanetId, t.PlanetTotalPopulation, home.PeerId != nil && away.PeerId != nil)
}

// newDeterministicUUID draws 16 bytes from the tournament's seeded RNG
// (tournament.rs: `GameId::from_u128(rng.random())`).
func newDeterministicUUID(r *rng.Rand) [16]byte {
	var u [16]byte
	for i := 0; i < 16; i++ {
		u[i] = byte(r.Intn(256))
	}
	return u
}
