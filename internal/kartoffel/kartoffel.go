// Package kartoffel implements the Kartoffel collectible entity,
// grounded verbatim on original_source/src/core/kartoffel.rs.
package kartoffel

import (
	"github.com/vitadek/piratecrew/internal/ids"
)

// Rarity is the collectible's rarity tier.
type Rarity int

const (
	Common Rarity = iota
	Uncommon
	Rare
	Legendary
)

func (r Rarity) String() string {
	switch r {
	case Uncommon:
		return "uncommon"
	case Rare:
		return "rare"
	case Legendary:
		return "legendary"
	default:
		return "common"
	}
}

// LocationKind mirrors the Kartoffel's current_location tag: it either
// sits on a planet or travels with the team that picked it up.
type LocationKind int

const (
	OnPlanet LocationKind = iota
	WithTeam
)

// Location is the Kartoffel's whereabouts.
type Location struct {
	Kind     LocationKind
	PlanetId ids.PlanetId
	TeamId   ids.TeamId
}

// Kartoffel is the full entity, field-for-field matching
// original_source/src/core/kartoffel.rs's Kartoffel struct.
type Kartoffel struct {
	Id              ids.KartoffelId
	PeerId          *ids.PeerId
	Rarity          Rarity
	Version         uint64
	Name            string
	Filename        string
	CurrentLocation Location
}

// New returns a fresh common Kartoffel sitting on homePlanet, mirroring
// Kartoffel::random (which the original leaves non-randomized beyond the
// id: rarity, name, and filename are all fixed defaults).
func New(homePlanet ids.PlanetId) *Kartoffel {
	return &Kartoffel{
		Id:       ids.NewKartoffelId(),
		Rarity:   Common,
		Name:     "Kartoffle",
		Filename: "kartoffel1",
		CurrentLocation: Location{
			Kind:     OnPlanet,
			PlanetId: homePlanet,
		},
	}
}

// PickUp transitions the Kartoffel to travel with team, picked up from
// whatever planet it was sitting on.
func (k *Kartoffel) PickUp(team ids.TeamId) {
	k.CurrentLocation = Location{Kind: WithTeam, TeamId: team}
	k.Version++
}

// Drop transitions the Kartoffel back onto a planet, e.g. when its carrying
// team disbands or the item is discarded.
func (k *Kartoffel) Drop(planet ids.PlanetId) {
	k.CurrentLocation = Location{Kind: OnPlanet, PlanetId: planet}
	k.Version++
}
