// Package ids defines the universally-unique identifier types used for
// every entity kind in the world. Each kind is a
// distinct Go type wrapping uuid.UUID so the compiler rejects passing a
// PlayerId where a TeamId is expected.
package ids

import (
	"encoding/json"

	"github.com/google/uuid"
)

// TeamId identifies a Team.
type TeamId uuid.UUID

// PlayerId identifies a Player.
type PlayerId uuid.UUID

// PlanetId identifies a Planet (including asteroids, which are a Planet
// subtype).
type PlanetId uuid.UUID

// GameId identifies a Game.
type GameId uuid.UUID

// TournamentId identifies a Tournament.
type TournamentId uuid.UUID

// KartoffelId identifies a Kartoffel.
type KartoffelId uuid.UUID

// PeerId is the opaque identity attached to any entity authored by a remote
// node. Its absence on an entity means the entity is locally authored.
type PeerId uuid.UUID

// Nil is the zero value shared by every id type's underlying representation.
var Nil = uuid.Nil

func NewTeamId() TeamId             { return TeamId(uuid.New()) }
func NewPlayerId() PlayerId         { return PlayerId(uuid.New()) }
func NewPlanetId() PlanetId         { return PlanetId(uuid.New()) }
func NewGameId() GameId             { return GameId(uuid.New()) }
func NewTournamentId() TournamentId { return TournamentId(uuid.New()) }
func NewKartoffelId() KartoffelId   { return KartoffelId(uuid.New()) }
func NewPeerId() PeerId             { return PeerId(uuid.New()) }

func (id TeamId) String() string       { return uuid.UUID(id).String() }
func (id PlayerId) String() string     { return uuid.UUID(id).String() }
func (id PlanetId) String() string     { return uuid.UUID(id).String() }
func (id GameId) String() string       { return uuid.UUID(id).String() }
func (id TournamentId) String() string { return uuid.UUID(id).String() }
func (id KartoffelId) String() string  { return uuid.UUID(id).String() }
func (id PeerId) String() string       { return uuid.UUID(id).String() }

func (id TeamId) IsNil() bool       { return id == TeamId(Nil) }
func (id PlayerId) IsNil() bool     { return id == PlayerId(Nil) }
func (id PlanetId) IsNil() bool     { return id == PlanetId(Nil) }
func (id GameId) IsNil() bool       { return id == GameId(Nil) }
func (id TournamentId) IsNil() bool { return id == TournamentId(Nil) }
func (id KartoffelId) IsNil() bool  { return id == KartoffelId(Nil) }
func (id PeerId) IsNil() bool       { return id == PeerId(Nil) }

// splitWords splits the id into two big-endian 64-bit words (exposed as
// Words on each id type), the mixing input the Randomness component uses
// to derive deterministic seeds.
func splitWords(u uuid.UUID) (hi, lo uint64) {
	for i := 0; i < 8; i++ {
		hi = hi<<8 | uint64(u[i])
	}
	for i := 8; i < 16; i++ {
		lo = lo<<8 | uint64(u[i])
	}
	return hi, lo
}

func (id TeamId) Words() (hi, lo uint64)       { return splitWords(uuid.UUID(id)) }
func (id PlayerId) Words() (hi, lo uint64)     { return splitWords(uuid.UUID(id)) }
func (id PlanetId) Words() (hi, lo uint64)     { return splitWords(uuid.UUID(id)) }
func (id GameId) Words() (hi, lo uint64)       { return splitWords(uuid.UUID(id)) }
func (id TournamentId) Words() (hi, lo uint64) { return splitWords(uuid.UUID(id)) }
func (id KartoffelId) Words() (hi, lo uint64)  { return splitWords(uuid.UUID(id)) }

// ParseTeamId etc. let the persistence/network codecs round-trip ids via
// their string form without exposing uuid.Parse everywhere.
func ParseTeamId(s string) (TeamId, error) {
	u, err := uuid.Parse(s)
	return TeamId(u), err
}

func ParsePlayerId(s string) (PlayerId, error) {
	u, err := uuid.Parse(s)
	return PlayerId(u), err
}

func ParsePlanetId(s string) (PlanetId, error) {
	u, err := uuid.Parse(s)
	return PlanetId(u), err
}

func ParseGameId(s string) (GameId, error) {
	u, err := uuid.Parse(s)
	return GameId(u), err
}

func ParseTournamentId(s string) (TournamentId, error) {
	u, err := uuid.Parse(s)
	return TournamentId(u), err
}

func ParsePeerId(s string) (PeerId, error) {
	u, err := uuid.Parse(s)
	return PeerId(u), err
}

// JSON marshaling is hand-rolled (rather than inherited) because Go does not
// promote uuid.UUID's TextMarshaler across a defined type; without this each
// id would serialize as a 16-element byte array instead of the canonical
// hex-dashed string the codec and gossip envelope both expect.
func (id TeamId) MarshalJSON() ([]byte, error)   { return json.Marshal(uuid.UUID(id).String()) }
func (id PlayerId) MarshalJSON() ([]byte, error) { return json.Marshal(uuid.UUID(id).String()) }
func (id PlanetId) MarshalJSON() ([]byte, error) { return json.Marshal(uuid.UUID(id).String()) }
func (id GameId) MarshalJSON() ([]byte, error)   { return json.Marshal(uuid.UUID(id).String()) }
func (id TournamentId) MarshalJSON() ([]byte, error) {
	return json.Marshal(uuid.UUID(id).String())
}
func (id KartoffelId) MarshalJSON() ([]byte, error) { return json.Marshal(uuid.UUID(id).String()) }
func (id PeerId) MarshalJSON() ([]byte, error)      { return json.Marshal(uuid.UUID(id).String()) }

func unmarshalInto(data []byte) (uuid.UUID, error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return uuid.Nil, err
	}
	if s == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(s)
}

func (id *TeamId) UnmarshalJSON(data []byte) error {
	u, err := unmarshalInto(data)
	*id = TeamId(u)
	return err
}

func (id *PlayerId) UnmarshalJSON(data []byte) error {
	u, err := unmarshalInto(data)
	*id = PlayerId(u)
	return err
}

func (id *PlanetId) UnmarshalJSON(data []byte) error {
	u, err := unmarshalInto(data)
	*id = PlanetId(u)
	return err
}

func (id *GameId) UnmarshalJSON(data []byte) error {
	u, err := unmarshalInto(data)
	*id = GameId(u)
	return err
}

func (id *TournamentId) UnmarshalJSON(data []byte) error {
	u, err := unmarshalInto(data)
	*id = TournamentId(u)
	return err
}

func (id *KartoffelId) UnmarshalJSON(data []byte) error {
	u, err := unmarshalInto(data)
	*id = KartoffelId(u)
	return err
}

func (id *PeerId) UnmarshalJSON(data []byte) error {
	u, err := unmarshalInto(data)
	*id = PeerId(u)
	return err
}

// MarshalText/UnmarshalText let these ids serve as JSON map keys: the
// encoding/json package only accepts a map key type whose Kind is string or
// integer, or one implementing encoding.TextMarshaler, and none of these id
// types satisfy the first two. Persistence's save format keys several maps
// (teams, players, tournament rosters) by entity id, so this is load-bearing
// rather than decorative.
func (id TeamId) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id PlayerId) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id PlanetId) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id GameId) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id TournamentId) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}
func (id KartoffelId) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id PeerId) MarshalText() ([]byte, error)      { return []byte(id.String()), nil }

func (id *TeamId) UnmarshalText(text []byte) error {
	u, err := uuid.Parse(string(text))
	*id = TeamId(u)
	return err
}

func (id *PlayerId) UnmarshalText(text []byte) error {
	u, err := uuid.Parse(string(text))
	*id = PlayerId(u)
	return err
}

func (id *PlanetId) UnmarshalText(text []byte) error {
	u, err := uuid.Parse(string(text))
	*id = PlanetId(u)
	return err
}

func (id *GameId) UnmarshalText(text []byte) error {
	u, err := uuid.Parse(string(text))
	*id = GameId(u)
	return err
}

func (id *TournamentId) UnmarshalText(text []byte) error {
	u, err := uuid.Parse(string(text))
	*id = TournamentId(u)
	return err
}

func (id *KartoffelId) UnmarshalText(text []byte) error {
	u, err := uuid.Parse(string(text))
	*id = KartoffelId(u)
	return err
}

func (id *PeerId) UnmarshalText(text []byte) error {
	u, err := uuid.Parse(string(text))
	*id = PeerId(u)
	return err
}
