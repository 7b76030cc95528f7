// Package travel implements travel duration and landing,
// pilot-change mid-flight rescaling, exploration completion (resource and
// free-pirate discovery), space-adventure return handling, and spaceship/
// asteroid upgrade timers.
//
// Grounded on original_source/src/core/world.rs's tick_travel (landing,
// teleport/portal reputation-bonus gating, jersey reapplication) and its
// exploration-completion branch (asteroid discovery roll, the
// decreasing-base-price resource packing loop, free-pirate draw), and on
// original_source/src/world/constants.rs for every numeric constant.
package travel

import (
	"math"
	"sort"

	"github.com/vitadek/piratecrew/internal/galaxy"
	"github.com/vitadek/piratecrew/internal/ids"
	"github.com/vitadek/piratecrew/internal/piraterr"
	"github.com/vitadek/piratecrew/internal/player"
	"github.com/vitadek/piratecrew/internal/resource"
	"github.com/vitadek/piratecrew/internal/rng"
	"github.com/vitadek/piratecrew/internal/skill"
	"github.com/vitadek/piratecrew/internal/team"
)

// Numeric constants pinned from original_source/src/world/constants.rs.
const (
	LandingTimeOverheadSeconds = 10 * 60
	ReputationBonusPerDistance = 0.000002
	AsteroidDiscoveryProbability = 0.15
	PortalDiscoveryProbability   = 0.05
	MaxNumAsteroidPerTeam        = 5

	TeleportTravelDuration = 0
	PortalTravelDuration   = 3600 * 1000 // 1 hour in millisecond ticks, grounded on QUICK_EXPLORATION_TIME's "short" tier

	QuickExplorationTime = 3600 * 1000
	LongExplorationTime  = 8 * QuickExplorationTime
)

// Duration computes a travel's duration from distance and the pilot's
// speed bonus: (LANDING_OVERHEAD + distance/speed) / pilot_speed_bonus,
// grounded on world.rs's spaceship_speed()-divided landing-time formula at
// the can_teleport_to call site. The overhead is converted from seconds to
// millisecond ticks.
func Duration(distance uint64, shipSpeed, pilotSpeedBonus float64) int64 {
	if pilotSpeedBonus <= 0 {
		pilotSpeedBonus = 1
	}
	return int64((LandingTimeOverheadSeconds*1000 + float64(distance)/shipSpeed) / pilotSpeedBonus)
}

// StartTravel begins a flight from->to, rejecting the mutation if the team
// is not free to move: a team may only be in exactly one
// of OnPlanet/Travelling/Exploring/OnSpaceAdventure at a time.
func StartTravel(t *team.Team, from, to ids.PlanetId, distance uint64, shipSpeed, pilotSpeedBonus float64, now int64) error {
	if t.CurrentLocation.Kind != team.OnPlanet {
		return piraterr.New(piraterr.PreconditionFailed, "team must be on a planet to start travelling")
	}
	duration := Duration(distance, shipSpeed, pilotSpeedBonus)
	t.StartTravel(from, to, now, duration, distance)
	return nil
}

// RescalePilotChange recomputes remaining travel duration when the pilot
// changes (promotion, demotion, or release) mid-flight, grounded on spec
// §4.6: "new_duration = (duration - elapsed) * old_speed_bonus /
// new_speed_bonus; reset started = now".
func RescalePilotChange(t *team.Team, oldSpeedBonus, newSpeedBonus float64, now int64) {
	if t.CurrentLocation.Kind != team.Travelling {
		return
	}
	if newSpeedBonus <= 0 {
		newSpeedBonus = 1
	}
	elapsed := now - t.CurrentLocation.Started
	remaining := t.CurrentLocation.Duration - elapsed
	if remaining < 0 {
		remaining = 0
	}
	newDuration := int64(float64(remaining) * oldSpeedBonus / newSpeedBonus)
	t.CurrentLocation.Started = now
	t.CurrentLocation.Duration = newDuration
	t.Version++
}

// LandedCallback is what TickTravel emits on a successful landing, the
// payload the outer UiCallback layer turns into a popup.
type LandedCallback struct {
	TeamName   string
	PlanetName string
}

// TickTravel advances a Travelling team by one SHORT tick, landing it if
// its flight has completed. now is the tick being
// simulated; planet is the destination the team is travelling to.
func TickTravel(t *team.Team, planet *galaxy.Planet, roster []*player.Player, now int64) (*LandedCallback, bool) {
	if t.CurrentLocation.Kind != team.Travelling {
		return nil, false
	}
	loc := t.CurrentLocation
	if now <= loc.Started+loc.Duration {
		return nil, false
	}

	isTeleporting := loc.Duration == TeleportTravelDuration
	isUsingPortal := loc.Duration <= PortalTravelDuration

	t.Land(planet.Id, !isTeleporting && !isUsingPortal)
	planet.TeamIds = append(planet.TeamIds, t.Id)
	for _, p := range roster {
		applyTravelJersey(p, t.Jersey)
	}

	if !isTeleporting && !isUsingPortal {
		bonus := float32(math.Pow(math.Log(float64(loc.Distance)+1), 4) * ReputationBonusPerDistance)
		t.Reputation = clampf32(t.Reputation+bonus, 0, 20)
	}

	return &LandedCallback{TeamName: t.Name, PlanetName: planet.Name}, true
}

// applyTravelJersey is a hook point for the jersey-reapplication side
// effect world.rs performs on landing (player.set_jersey); since the
// player model carries no jersey field of its own (cosmetics live on the
// Team), this is currently a no-op placeholder kept so the call site stays
// where the original has it, ready to wire once per-player jersey overlays
// are introduced.
func applyTravelJersey(p *player.Player, j team.Jersey) {
	_ = p
	_ = j
}

func clampf32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// DrinkResult reports what a round of rum did, the payload the outer
// UiCallback layer turns into a popup.
type DrinkResult struct {
	Teleported     bool
	TargetPlanetId ids.PlanetId
}

// HandleDrink implements the Drink UiCallback (spec §4.6/§8 S3): a player
// on a RUM-holding team drinks, taking a tiredness hit in exchange for a
// morale lift. If the drinker carries the Spugna trait and the team is
// mid-flight, the rum triggers a portal teleport instead of the ordinary
// buzz: the destination is redirected to a planet other than the current
// origin and destination (a zero-distance TeleportTravelDuration flight,
// so the next TickTravel lands it without adding to total_travelled or
// granting the travel reputation bonus), and the drinker's morale is set
// to the skill ceiling outright rather than nudged by MoraleDrinkBonus.
func HandleDrink(t *team.Team, p *player.Player, planets map[ids.PlanetId]*galaxy.Planet, now int64, r *rng.Rand) (*DrinkResult, error) {
	if t.Resources[resource.Rum] < 1 {
		return nil, piraterr.New(piraterr.PreconditionFailed, "team has no RUM to drink")
	}
	if err := t.RemoveResource(resource.Rum, 1); err != nil {
		return nil, err
	}

	isSpugna := p.SpecialTrait != nil && *p.SpecialTrait == player.Spugna
	if isSpugna && t.CurrentLocation.Kind == team.Travelling {
		target, ok := randomOtherPlanet(planets, t.CurrentLocation.From, t.CurrentLocation.To, r)
		if !ok {
			return nil, piraterr.New(piraterr.PreconditionFailed, "no other planet to teleport to")
		}
		t.CurrentLocation.To = target
		t.CurrentLocation.Distance = 0
		t.CurrentLocation.Duration = TeleportTravelDuration
		t.CurrentLocation.Started = now
		t.Version++

		p.Morale = skill.MaxSkill
		p.Tiredness = clampf32(p.Tiredness+player.TirednessDrinkMalusSpugna, 0, skill.MaxSkill)
		return &DrinkResult{Teleported: true, TargetPlanetId: target}, nil
	}

	p.AddMorale(player.MoraleDrinkBonus)
	p.Tiredness = clampf32(p.Tiredness+player.TirednessDrinkMalus, 0, skill.MaxSkill)
	return &DrinkResult{}, nil
}

// randomOtherPlanet picks a planet id other than exclude1/exclude2,
// deterministically: sort candidates first since Go map iteration order is
// randomized per-process and this draws from the caller's seeded RNG.
func randomOtherPlanet(planets map[ids.PlanetId]*galaxy.Planet, exclude1, exclude2 ids.PlanetId, r *rng.Rand) (ids.PlanetId, bool) {
	candidates := make([]ids.PlanetId, 0, len(planets))
	for id := range planets {
		if id == exclude1 || id == exclude2 {
			continue
		}
		candidates = append(candidates, id)
	}
	if len(candidates) == 0 {
		return ids.PlanetId{}, false
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].String() < candidates[j].String() })
	return candidates[r.Intn(len(candidates))], true
}

// StartExploring transitions a team into Exploring around its current
// planet for duration ticks.
func StartExploring(t *team.Team, around ids.PlanetId, duration, now int64) error {
	if t.CurrentLocation.Kind != team.OnPlanet {
		return piraterr.New(piraterr.PreconditionFailed, "team must be on a planet to start exploring")
	}
	t.StartExploring(around, now)
	t.CurrentLocation.Duration = duration
	return nil
}

// ExplorationResult is the payload TickExploration emits on completion.
type ExplorationResult struct {
	AsteroidDiscovered bool
	AsteroidTypeRoll   int
	Collected          map[resource.Kind]int
	FreePirates        []*player.Player
}

// TickExploration advances an Exploring team by one SHORT tick, resolving
// the exploration on completion, grounded
// on world.rs's exploration-completion branch.
func TickExploration(t *team.Team, planet *galaxy.Planet, roster []*player.Player, now int64, r *rng.Rand) (*ExplorationResult, bool) {
	if t.CurrentLocation.Kind != team.Exploring {
		return nil, false
	}
	loc := t.CurrentLocation
	if now <= loc.ExploreStart+loc.Duration {
		return nil, false
	}

	t.StopExploring()
	for _, p := range roster {
		applyTravelJersey(p, t.Jersey)
	}

	result := &ExplorationResult{}

	teamAsteroidModifier := float64(MaxNumAsteroidPerTeam-min(len(t.AsteroidIds), MaxNumAsteroidPerTeam)) / float64(MaxNumAsteroidPerTeam)
	discoveryProbability := AsteroidDiscoveryProbability * float64(planet.AsteroidProbability) * teamAsteroidModifier
	if discoveryProbability > 1 {
		discoveryProbability = 1
	}
	if discoveryProbability > 0 && r.Float64() < discoveryProbability {
		result.AsteroidDiscovered = true
		result.AsteroidTypeRoll = r.Intn(30)
	}

	planet.TeamIds = append(planet.TeamIds, t.Id)

	found := resourcesFoundAfterExploration(planet, r, 1.0)
	result.Collected = t.FillByDecreasingBasePrice(found)

	numPirates := r.Intn(3)
	for i := 0; i < numPirates; i++ {
		result.FreePirates = append(result.FreePirates, player.NewRandom(planet.Id, player.Population(r.Intn(4)), r))
	}

	return result, true
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// resourcesFoundAfterExploration implements the exploration formula: for each
// (resource, base) on the planet, sum 8 independent uniform draws from
// [-base/2, base), with base = floor(2^(base/2) * exploration_bonus),
// clamped >= 0.
func resourcesFoundAfterExploration(planet *galaxy.Planet, r *rng.Rand, explorationBonus float64) map[resource.Kind]int {
	found := map[resource.Kind]int{}
	for _, ra := range planet.BaseResources {
		base := math.Floor(math.Pow(2, float64(ra.Amount)/2) * explorationBonus)
		var sum float64
		for i := 0; i < 8; i++ {
			sum += -base/2 + r.Float64()*(base*1.5)
		}
		if sum < 0 {
			sum = 0
		}
		found[ra.Resource] = int(sum)
	}
	return found
}

// SpaceAdventureReturn implements the load-time recovery rule: a
// team found in OnSpaceAdventure is teleported to OnPlanet{around}, its
// resources (except SATOSHI) are zeroed, and its spaceship durability is
// set to 0.
func SpaceAdventureReturn(t *team.Team) bool {
	if t.CurrentLocation.Kind != team.OnSpaceAdventure {
		return false
	}
	around := t.CurrentLocation.PlanetId
	for r := range t.Resources {
		if r != resource.Satoshi {
			t.Resources[r] = 0
		}
	}
	t.Spaceship.Hull = 0
	t.CurrentLocation = team.Location{Kind: team.OnPlanet, PlanetId: around}
	t.Version++
	return true
}

// Upgrade is a spaceship or asteroid improvement in progress.
type Upgrade struct {
	Target         string
	Started        int64
	Duration       int64
	EngineerBonus  float64
}

// TickUpgrade reports whether an Upgrade has completed by now; completion
// is left to the caller to apply (hull/engine/storage tier bump, or
// asteroid tier bump), mirroring spec's "the upgrade changes the hull/
// engine/storage or the asteroid tier" being an outer-layer concern.
func TickUpgrade(u *Upgrade, now int64) bool {
	return now > u.Started+u.Duration
}

// RescaleUpgradeEngineerChange applies the same proportional rescale rule
// travel's pilot-change handling uses, when the engineer role changes
// mid-upgrade.
func RescaleUpgradeEngineerChange(u *Upgrade, oldBonus, newBonus float64, now int64) {
	if newBonus <= 0 {
		newBonus = 1
	}
	elapsed := now - u.Started
	remaining := u.Duration - elapsed
	if remaining < 0 {
		remaining = 0
	}
	u.Duration = int64(float64(remaining) * oldBonus / newBonus)
	u.Started = now
}
