// Package team implements the Team entity: location, jersey,
// spaceship, resources (with the FUEL/storage dual-capacity rule), crew
// roles, and the peer handshake maps (Challenge/Trade), plus invariants
// I1-I5.
//
// Team/Spaceship/Jersey were not retrieved into original_source (filtered
// out by the pack's size cap), so their field shapes are original to this
// package; the capacity/resource-packing API (available_storage_capacity,
// available_fuel_capacity, add_resource, the "fill by decreasing base
// price" exploration loop) is grounded on
// original_source/src/core/world.rs's TeamLocation handling and
// exploration-resource-collection loop (the call sites still present in
// the retrieved file), and on crew-role assignment at world.rs:292-357.
package team

import (
	"github.com/vitadek/piratecrew/internal/ids"
	"github.com/vitadek/piratecrew/internal/matchengine"
	"github.com/vitadek/piratecrew/internal/piraterr"
	"github.com/vitadek/piratecrew/internal/player"
	"github.com/vitadek/piratecrew/internal/resource"
)

// LocationKind enumerates the four mutually-exclusive location variants a
// Team can be in: OnPlanet, Travelling, Exploring, or OnSpaceAdventure.
type LocationKind int

const (
	OnPlanet LocationKind = iota
	Travelling
	Exploring
	OnSpaceAdventure
)

// Location is a tagged union over the four location kinds. Only the fields
// relevant to Kind are meaningful; callers must switch on Kind before
// reading the rest (mirrors the original's enum-with-payload shape without
// a sum type in Go).
type Location struct {
	Kind LocationKind

	// OnPlanet / OnSpaceAdventure
	PlanetId ids.PlanetId

	// Travelling
	From     ids.PlanetId
	To       ids.PlanetId
	Started  int64
	Duration int64
	Distance uint64

	// Exploring
	Around       ids.PlanetId
	ExploreStart int64
}

// JerseyStyle is the cosmetic rendering style of a team's jersey.
type JerseyStyle int

const (
	Plain JerseyStyle = iota
	Stripes
	Horizontal
	Fancy
)

// Jersey is the team's cosmetic kit: a style plus a 3-color palette.
type Jersey struct {
	Style  JerseyStyle
	Colors [3][3]uint8 // RGB triplets
}

// Spaceship is the team's vehicle: hull/engine/upgrade tier plus the
// fuel/storage capacities and speed those tiers derive.
type Spaceship struct {
	Hull           int
	Engine         int
	Upgrades       []string
	PendingUpgrade *string
}

// BaseTankCapacity pinned from original_source/src/world/constants.rs
// (BASE_TANK_CAPACITY = 60).
const BaseTankCapacity = 60

// BaseStorageCapacity is the hull-tier-0 storage hold size; the constant
// isn't separately named in constants.rs (only BASE_TANK_CAPACITY is), so
// this engine pins its own base of 100 and lets hull tier scale it the
// same way engine tier scales the tank.
const BaseStorageCapacity = 100

// NewSpaceship returns a tier-0 spaceship with the base capacities.
func NewSpaceship() Spaceship {
	return Spaceship{Hull: 0, Engine: 0}
}

// FuelCapacity scales with engine tier. Every spaceship starts from the
// same base tank regardless of instance, so this derives straight from the
// package constant rather than a per-instance copy of it.
func (s Spaceship) FuelCapacity() int {
	return BaseTankCapacity * (1 + s.Engine)
}

// StorageCapacity scales with hull tier.
func (s Spaceship) StorageCapacity() int {
	return BaseStorageCapacity * (1 + s.Hull)
}

// Speed derives from engine tier, grounded on
// SPACESHIP_BASE_COST_MULTIPLIER's role as the per-tier scaling factor the
// original applies uniformly across spaceship derived stats.
func (s Spaceship) Speed() float64 {
	const spaceshipBaseCostMultiplier = 1.1
	speed := 1.0
	for i := 0; i < s.Engine; i++ {
		speed *= spaceshipBaseCostMultiplier
	}
	return speed
}

// CrewRoles holds the singleton role assignments plus the open mozzo list
//, grounded on
// original_source/src/core/world.rs:292-357's crew_roles.{captain,pilot,
// doctor,mozzo} field access.
type CrewRoles struct {
	Captain  *ids.PlayerId
	Pilot    *ids.PlayerId
	Doctor   *ids.PlayerId
	Engineer *ids.PlayerId
	Mozzo    []ids.PlayerId
}

// Holder returns the current holder of role, if any (Mozzo is a list, not a
// singleton, so it always returns nil, false for Mozzo).
func (c CrewRoles) Holder(role player.CrewRole) (ids.PlayerId, bool) {
	switch role {
	case player.Captain:
		if c.Captain != nil {
			return *c.Captain, true
		}
	case player.Pilot:
		if c.Pilot != nil {
			return *c.Pilot, true
		}
	case player.Doctor:
		if c.Doctor != nil {
			return *c.Doctor, true
		}
	case player.Engineer:
		if c.Engineer != nil {
			return *c.Engineer, true
		}
	}
	return ids.PlayerId{}, false
}

// Clear removes playerID from whichever role it currently holds, singleton
// or mozzo, satisfying Team invariant I2 (at most one player per singleton
// role) before a reassignment.
func (c *CrewRoles) Clear(playerID ids.PlayerId) {
	if c.Captain != nil && *c.Captain == playerID {
		c.Captain = nil
	}
	if c.Pilot != nil && *c.Pilot == playerID {
		c.Pilot = nil
	}
	if c.Doctor != nil && *c.Doctor == playerID {
		c.Doctor = nil
	}
	if c.Engineer != nil && *c.Engineer == playerID {
		c.Engineer = nil
	}
	filtered := c.Mozzo[:0]
	for _, id := range c.Mozzo {
		if id != playerID {
			filtered = append(filtered, id)
		}
	}
	c.Mozzo = filtered
}

// Assign sets playerID as the new holder of role, first clearing any prior
// role the player held (enforces I2).
func (c *CrewRoles) Assign(playerID ids.PlayerId, role player.CrewRole) {
	c.Clear(playerID)
	switch role {
	case player.Captain:
		c.Captain = &playerID
	case player.Pilot:
		c.Pilot = &playerID
	case player.Doctor:
		c.Doctor = &playerID
	case player.Engineer:
		c.Engineer = &playerID
	default:
		c.Mozzo = append(c.Mozzo, playerID)
	}
}

// ChallengeState is the three-phase handshake state. States only advance
// forward, never backward.
type ChallengeState int

const (
	Syn ChallengeState = iota
	SynAck
	Ack
	Failed
)

// Challenge is a peer game-invite handshake. HomeTeam is
// attached by the proposer at Syn; AwayTeam is attached by the target when
// it flips to SynAck. Both snapshots travel over the wire untouched by
// internal/peer, which only drives the state machine.
type Challenge struct {
	State          ChallengeState
	ProposerPeerId ids.PeerId
	TargetPeerId   ids.PeerId
	HomeTeam       *matchengine.TeamInGame
	AwayTeam       *matchengine.TeamInGame
	GameId         *ids.GameId
	StartingAt     *int64
	Error          string
}

// Trade is a peer player-trade handshake.
type Trade struct {
	State          ChallengeState
	ProposerPeerId ids.PeerId
	TargetPeerId   ids.PeerId
	ProposerPlayer *ids.PlayerId
	TargetPlayer   *ids.PlayerId
	DeltaSatoshis  int64
}

// Team is the full entity.
type Team struct {
	Id         ids.TeamId
	PeerId     *ids.PeerId
	Name       string
	CreatedAt  int64
	HomePlanet ids.PlanetId

	CurrentLocation Location

	Jersey    Jersey
	Spaceship Spaceship

	Resources map[resource.Kind]int

	Reputation float32
	Honours    map[string]bool

	CrewRoles  CrewRoles
	PlayerIds  []ids.PlayerId
	CurrentGame *ids.GameId
	AsteroidIds []ids.PlanetId

	TotalTravelledKm uint64

	Challenges map[ids.PeerId]*Challenge
	Trades     map[ids.PeerId]*Trade

	TournamentId *ids.TournamentId

	Version uint64
}

// New returns a fresh Team bootstrapped on homePlanet with a full fuel tank
// and a tier-0 ship, mirroring world.rs's team-creation path
// (`resources.insert(Resource::FUEL, spaceship.fuel_capacity())`).
func New(name string, homePlanet ids.PlanetId, createdAt int64) *Team {
	ship := NewSpaceship()
	t := &Team{
		Id:         ids.NewTeamId(),
		Name:       name,
		CreatedAt:  createdAt,
		HomePlanet: homePlanet,
		CurrentLocation: Location{
			Kind:     OnPlanet,
			PlanetId: homePlanet,
		},
		Spaceship:  ship,
		Resources:  map[resource.Kind]int{resource.Fuel: ship.FuelCapacity()},
		Honours:    map[string]bool{},
		Challenges: map[ids.PeerId]*Challenge{},
		Trades:     map[ids.PeerId]*Trade{},
	}
	return t
}

// UsedFuelCapacity returns resources[FUEL].
func (t *Team) UsedFuelCapacity() int { return t.Resources[resource.Fuel] }

// AvailableFuelCapacity is invariant I3's headroom: fuel_capacity - used.
func (t *Team) AvailableFuelCapacity() int {
	return t.Spaceship.FuelCapacity() - t.UsedFuelCapacity()
}

// UsedStorageCapacity sums storage_footprint(r)*count(r) over every
// resource except FUEL (invariant I4).
func (t *Team) UsedStorageCapacity() int {
	used := 0
	for r, n := range t.Resources {
		if r == resource.Fuel {
			continue
		}
		used += r.StorageFootprint() * n
	}
	return used
}

// AvailableStorageCapacity is invariant I4's headroom.
func (t *Team) AvailableStorageCapacity() int {
	return t.Spaceship.StorageCapacity() - t.UsedStorageCapacity()
}

// AddResource adds amount units of r, rejecting the mutation if it would
// violate invariant I3 (FUEL) or I4 (everything else).
func (t *Team) AddResource(r resource.Kind, amount int) error {
	if amount < 0 {
		return piraterr.New(piraterr.InvariantViolated, "cannot add a negative resource amount")
	}
	if r == resource.Fuel {
		if amount > t.AvailableFuelCapacity() {
			return piraterr.New(piraterr.InvariantViolated, "adding %d fuel exceeds tank capacity", amount)
		}
	} else {
		if r.StorageFootprint()*amount > t.AvailableStorageCapacity() {
			return piraterr.New(piraterr.InvariantViolated, "adding %d of %s exceeds storage capacity", amount, r)
		}
	}
	t.Resources[r] += amount
	t.Version++
	return nil
}

// RemoveResource subtracts amount units of r, rejecting the mutation if the
// team doesn't hold enough.
func (t *Team) RemoveResource(r resource.Kind, amount int) error {
	if t.Resources[r] < amount {
		return piraterr.New(piraterr.PreconditionFailed, "team does not hold %d of %s", amount, r)
	}
	t.Resources[r] -= amount
	t.Version++
	return nil
}

// FillByDecreasingBasePrice packs found resources into whatever headroom
// the team has left, most-valuable-first, exactly mirroring
// world.rs's exploration resource-collection loop (sort by decreasing
// base_price, fuel against the tank, everything else against storage
// divided by its per-unit footprint). Returns what was actually collected.
func (t *Team) FillByDecreasingBasePrice(found map[resource.Kind]int) map[resource.Kind]int {
	collected := map[resource.Kind]int{}
	for _, r := range resource.ByDecreasingBasePrice() {
		amount, ok := found[r]
		if !ok || amount <= 0 {
			continue
		}
		var storable int
		if r == resource.Fuel {
			storable = min(t.AvailableFuelCapacity(), amount)
		} else {
			footprint := r.StorageFootprint()
			if footprint <= 0 {
				storable = amount
			} else {
				storable = min(t.AvailableStorageCapacity()/footprint, amount)
			}
		}
		if storable > 0 {
			_ = t.AddResource(r, storable)
		}
		collected[r] = storable
	}
	return collected
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// CanReleasePlayer enforces the roster-floor side of invariant checking
// before a release: a team cannot drop below MinPlayersPerGame players
//, grounded on world.rs's can_release_player gate.
func (t *Team) CanReleasePlayer(minPlayersPerGame int) error {
	if len(t.PlayerIds) <= minPlayersPerGame {
		return piraterr.New(piraterr.InvariantViolated, "releasing a player would drop roster below the minimum of %d", minPlayersPerGame)
	}
	return nil
}

// AddPlayer appends playerID to the roster (the reciprocal half of invariant
// I1; the Player-side team pointer is the caller's responsibility via
// player.Player.AssignToTeam), rejecting duplicates and the
// MaxPlayersPerTeam ceiling.
func (t *Team) AddPlayer(playerID ids.PlayerId, maxPlayersPerTeam int) error {
	for _, id := range t.PlayerIds {
		if id == playerID {
			return piraterr.New(piraterr.InvariantViolated, "player %s already on roster", playerID)
		}
	}
	if len(t.PlayerIds) >= maxPlayersPerTeam {
		return piraterr.New(piraterr.InvariantViolated, "roster already at max of %d players", maxPlayersPerTeam)
	}
	t.PlayerIds = append(t.PlayerIds, playerID)
	t.Version++
	return nil
}

// RemovePlayer deletes playerID from the roster and from any crew role it
// held.
func (t *Team) RemovePlayer(playerID ids.PlayerId) {
	t.CrewRoles.Clear(playerID)
	out := t.PlayerIds[:0]
	for _, id := range t.PlayerIds {
		if id != playerID {
			out = append(out, id)
		}
	}
	t.PlayerIds = out
	t.Version++
}

// IsTravelling reports whether invariant I5 applies: a Travelling team must
// not have landed yet (started+duration >= now) until the landing tick
// fires.
func (t *Team) IsTravelling(now int64) bool {
	return t.CurrentLocation.Kind == Travelling && t.CurrentLocation.Started+t.CurrentLocation.Duration >= now
}

// StartTravel transitions the team into Travelling, grounded on
// world.rs's `team.current_location = TeamLocation::Travelling{...}`
// assignment sites.
func (t *Team) StartTravel(from, to ids.PlanetId, started, duration int64, distance uint64) {
	t.CurrentLocation = Location{
		Kind:     Travelling,
		From:     from,
		To:       to,
		Started:  started,
		Duration: duration,
		Distance: distance,
	}
	t.Version++
}

// Land transitions a Travelling team to OnPlanet{to} once started+duration
// has elapsed (world.rs: `own_team.current_location =
// TeamLocation::OnPlanet { planet_id: to }`). addDistance is false for a
// teleport/portal landing, matching spec §4.6: "if not teleporting or
// portaling then add distance to total_travelled".
func (t *Team) Land(planetID ids.PlanetId, addDistance bool) {
	if addDistance {
		t.TotalTravelledKm += t.CurrentLocation.Distance
	}
	t.CurrentLocation = Location{Kind: OnPlanet, PlanetId: planetID}
	t.Version++
}

// StartExploring transitions the team into Exploring around its current
// planet.
func (t *Team) StartExploring(around ids.PlanetId, started int64) {
	t.CurrentLocation = Location{Kind: Exploring, Around: around, ExploreStart: started}
	t.Version++
}

// StopExploring transitions an Exploring team back to OnPlanet{around}
// (world.rs: `team.current_location = TeamLocation::OnPlanet { planet_id:
// around }`).
func (t *Team) StopExploring() {
	around := t.CurrentLocation.Around
	t.CurrentLocation = Location{Kind: OnPlanet, PlanetId: around}
	t.Version++
}
