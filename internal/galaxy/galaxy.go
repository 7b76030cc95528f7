// Package galaxy implements the Planet entity and procedurally populated
// galaxy generation.
//
// Planet's field shape and resource-price curve are grounded directly on
// original_source/src/world/planet.rs (Planet, PlanetType,
// resource_price/resource_buy_price/resource_sell_price,
// random_population, Planet::asteroid). Large-scale galaxy layout (star
// type, orbital axis, asteroid probability) is supplemented with
// github.com/ojrac/opensimplex-go noise fields, since planet.rs's own
// fields are filled in by whatever generator built the galaxy rather than
// spelling one out; per-resource efficiency stays hash-based
// (Vitadek-OwnWorld/ownworld.go's GetEfficiency) since adjacent resources
// on the same planet should not be spatially correlated the way
// large-scale layout is.
package galaxy

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ojrac/opensimplex-go"
	"lukechampine.com/blake3"

	"github.com/vitadek/piratecrew/internal/ids"
	"github.com/vitadek/piratecrew/internal/player"
	"github.com/vitadek/piratecrew/internal/resource"
)

// PlanetType is the cosmetic/gameplay star-system archetype (spec-silent on
// enumeration; grounded verbatim on original_source/src/world/planet.rs's
// PlanetType enum).
type PlanetType int

const (
	BlackHole PlanetType = iota
	Sol
	Earth
	Lava
	Ice
	Gas
	Islands
	Ring
	Rocky
	Wet
	planetTypeCount
)

var planetTypeNames = [planetTypeCount]string{
	BlackHole: "black_hole", Sol: "sol", Earth: "earth", Lava: "lava", Ice: "ice",
	Gas: "gas", Islands: "islands", Ring: "ring", Rocky: "rocky", Wet: "wet",
}

func (t PlanetType) String() string {
	if t < 0 || int(t) >= len(planetTypeNames) {
		return "earth"
	}
	return planetTypeNames[t]
}

// PopulationCount pairs a population with how many of them live on a
// planet, the weighted pool random_population samples from.
type PopulationCount struct {
	Population player.Population
	Count      uint32
}

// ResourceAmount pairs a resource kind with its base abundance on a planet,
// the input to Planet.ResourcePrice's hyperbolic-tangent curve.
type ResourceAmount struct {
	Resource resource.Kind
	Amount   uint32
}

// Planet is the full entity, grounded field-for-field on
// original_source/src/world/planet.rs's Planet struct.
type Planet struct {
	Id      ids.PlanetId
	PeerId  *ids.PeerId
	Version uint64

	Name string

	Populations    []PopulationCount
	BaseResources  []ResourceAmount
	AsteroidProbability float32

	RotationPeriod   int
	RevolutionPeriod int
	Gravity          int
	PlanetType       PlanetType

	Satellites    []ids.PlanetId
	SatelliteOf   *ids.PlanetId
	AxisX, AxisY  float32

	TeamIds []ids.TeamId
}

// TotalPopulation sums every population count living on the planet.
func (p *Planet) TotalPopulation() uint32 {
	var total uint32
	for _, pc := range p.Populations {
		total += pc.Count
	}
	return total
}

// baseResourceAmount looks up how much of r the planet has, 0 if absent.
func (p *Planet) baseResourceAmount(r resource.Kind) uint32 {
	for _, ra := range p.BaseResources {
		if ra.Resource == r {
			return ra.Amount
		}
	}
	return 0
}

// ResourcePrice follows planet.rs's hyperbolic-tangent curve: scarcer
// resources (low base amount) get a higher amount_modifier, and price
// saturates via tanh instead of growing unbounded.
func (p *Planet) ResourcePrice(r resource.Kind) uint32 {
	baseAmount := p.baseResourceAmount(r)
	amountModifier := 1.0 + (2.0 - float64(baseAmount)/20.0)
	base := float64(r.BasePrice())
	price := base * amountModifier * math.Tanh(base*amountModifier)
	return uint32(price)
}

// ResourceBuyPrice and ResourceSellPrice apply planet.rs's
// population-scaled bid/ask spread around ResourcePrice.
func (p *Planet) ResourceBuyPrice(r resource.Kind) uint32 {
	price := p.ResourcePrice(r)
	delta := 10.0 + 100.0/float64(maxu32(p.TotalPopulation(), 1))
	out := price + uint32(float64(price)/delta)
	if out < 1 {
		out = 1
	}
	return out
}

func (p *Planet) ResourceSellPrice(r resource.Kind) uint32 {
	price := p.ResourcePrice(r)
	delta := 10.0 + 100.0/float64(maxu32(p.TotalPopulation(), 1))
	sub := uint32(float64(price) / delta)
	if sub >= price {
		return 0
	}
	return price - sub
}

func maxu32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

// AddPopulation folds amount more of population into the planet's pool,
// merging into an existing entry if present (planet.rs: add_population).
func (p *Planet) AddPopulation(pop player.Population, amount uint32) {
	for i := range p.Populations {
		if p.Populations[i].Population == pop {
			p.Populations[i].Count += amount
			return
		}
	}
	p.Populations = append(p.Populations, PopulationCount{Population: pop, Count: amount})
}

// NewAsteroid returns a minimal Planet representing an asteroid orbiting
// satelliteOf, grounded on planet.rs's Planet::asteroid: no populations or
// resources of its own, rocky, small, short rotation.
func NewAsteroid(name string, satelliteOf ids.PlanetId, axisX, axisY float32, rotationPeriod, gravity int) *Planet {
	return &Planet{
		Id:               ids.NewPlanetId(),
		Name:             name,
		RotationPeriod:   rotationPeriod,
		RevolutionPeriod: 365,
		Gravity:          gravity,
		PlanetType:       Rocky,
		SatelliteOf:      &satelliteOf,
		AxisX:            axisX,
		AxisY:            axisY,
	}
}

// GalaxyRootId, DefaultSpawnId and SolId are the fixed, once-at-genesis landmark ids restored
// from original_source/src/world/planet.rs: a galaxy root, the default
// spawn, and a Sol-equivalent. These are deterministic UUIDs (derived from fixed
// byte-patterns via blake3) rather than random so every bootstrap of the
// engine names the same landmarks.
var (
	GalaxyRootId    = fixedPlanetId("galaxy-root")
	DefaultSpawnId  = fixedPlanetId("default-spawn")
	SolId           = fixedPlanetId("sol")
)

func fixedPlanetId(label string) ids.PlanetId {
	h := blake3.Sum256([]byte("piratecrew-well-known-planet:" + label))
	var u [16]byte
	copy(u[:], h[:16])
	var id ids.PlanetId
	copy(id[:], u[:])
	return id
}

// Field is the large-scale noise-driven generator for galaxy layout: star
// type, orbital axis, and asteroid probability vary smoothly across
// neighboring coordinates instead of being independently hashed per planet,
// wired on github.com/ojrac/opensimplex-go.
type Field struct {
	typeNoise     opensimplex.Noise
	axisNoise     opensimplex.Noise
	asteroidNoise opensimplex.Noise
}

// NewField builds a Field from a galaxy seed, deriving three independent
// noise layers from it via blake3 so they don't correlate with each other.
func NewField(seed int64) *Field {
	return &Field{
		typeNoise:     opensimplex.New(deriveSeed(seed, "type")),
		axisNoise:     opensimplex.New(deriveSeed(seed, "axis")),
		asteroidNoise: opensimplex.New(deriveSeed(seed, "asteroid")),
	}
}

func deriveSeed(seed int64, label string) int64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(seed))
	copy(buf[8:], []byte(label))
	h := blake3.Sum256(buf[:])
	return int64(binary.LittleEndian.Uint64(h[:8]))
}

// TypeAt returns the PlanetType for galaxy lattice coordinate (x, y),
// bucketing a [-1,1] noise sample into the 10-member PlanetType enum so
// neighboring coordinates tend to share a star type.
func (f *Field) TypeAt(x, y float64) PlanetType {
	v := (f.typeNoise.Eval2(x, y) + 1) / 2
	idx := int(v * float64(planetTypeCount))
	if idx >= int(planetTypeCount) {
		idx = int(planetTypeCount) - 1
	}
	return PlanetType(idx)
}

// AxisAt returns a smoothly-varying orbital axis pair for coordinate (x, y).
func (f *Field) AxisAt(x, y float64) (float32, float32) {
	ax := (f.axisNoise.Eval2(x, y) + 1) / 2 * 50 + 10
	ay := (f.axisNoise.Eval2(y, x) + 1) / 2 * 50 + 10
	return float32(ax), float32(ay)
}

// AsteroidProbabilityAt returns a [0,1] probability for coordinate (x, y),
// the field Team.StartExploring-adjacent logic multiplies by
// ASTEROID_DISCOVERY_PROBABILITY (original_source/src/world/constants.rs)
// to get the per-exploration discovery chance.
func (f *Field) AsteroidProbabilityAt(x, y float64) float32 {
	v := (f.asteroidNoise.Eval2(x, y) + 1) / 2
	return float32(v)
}

// NewPlanet builds a galaxy-lattice planet at (x, y), deriving its
// PlanetType, axis, and asteroid probability from the noise field and its
// name deterministically from the coordinate so re-running generation with
// the same seed reproduces the same galaxy.
func NewPlanet(f *Field, x, y int) *Planet {
	fx, fy := float64(x), float64(y)
	axisX, axisY := f.AxisAt(fx, fy)
	return &Planet{
		Id:                  ids.NewPlanetId(),
		Name:                fmt.Sprintf("Planet-%d-%d", x, y),
		AsteroidProbability: f.AsteroidProbabilityAt(fx, fy),
		RotationPeriod:      1 + int(math.Abs(fx))%24,
		RevolutionPeriod:    365,
		Gravity:             1 + int(math.Abs(fy))%4,
		PlanetType:          f.TypeAt(fx, fy),
		AxisX:               axisX,
		AxisY:               axisY,
	}
}
