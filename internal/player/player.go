// Package player implements the Player entity: info, team
// membership, the 20-skill model, tiredness/morale, special traits, and
// historical stats, plus generation and the LONG-tick update that ages,
// trains, and decays a player.
//
// Grounded on original_source/src/core/player.rs (Player, InfoStats, Trait,
// modify_skill/update_skills_training/tick_players_update-equivalent logic)
// and original_source/src/world/constants.rs for every numeric constant
// below. GamePosition-weighted build tables from the original are not in
// the retrieval pack, so generation here rolls skills directly from a
// population/role-driven base level instead of a per-position weight table
// — documented in DESIGN.md.
package player

import (
	"math"

	"github.com/vitadek/piratecrew/internal/ids"
	"github.com/vitadek/piratecrew/internal/piraterr"
	"github.com/vitadek/piratecrew/internal/rng"
	"github.com/vitadek/piratecrew/internal/skill"
)

// Numeric constants pinned verbatim from
// original_source/src/world/constants.rs, so LONG-tick training/decay/aging
// behavior matches the original Rust engine's tuning.
const (
	ExperiencePerSkillMultiplier = 0.0000125
	MaxSkillIncreasePerLongTick  = 0.5
	SkillDecrementPerLongTick    = -0.05

	ReputationPerExperience        = 0.0001
	ReputationDecreasePerLongTick  = 0.1
	AgeIncreasePerLongTick         = 0.1

	TraitProbability          = 0.25
	MinRelativeRetirementAge  = 0.96
	PeakPerformanceRelativeAge = 0.65
	MoraleThresholdForLeaving = 2.0

	// MoraleModifier tiers.
	moraleSevereMalus = -5.0
	moraleHighMalus   = -2.5
	moraleMediumMalus = -1.0
	moraleSmallMalus  = -0.5
	moraleSmallBonus  = 0.5
	moraleMediumBonus = 1.0
	moraleHighBonus   = 2.5
	moraleSevereBonus = 5.0

	MoraleDecreasePerLongTick = moraleMediumMalus
	MoraleIncreasePerGame     = moraleSevereBonus
	MoraleReleaseMalus        = moraleMediumMalus
	MoraleDrinkBonus          = moraleHighBonus

	// TirednessCost tiers.
	tirednessNone     = 0.0
	tirednessLow      = 0.005
	tirednessMedium   = 0.15
	tirednessHigh     = 0.5
	tirednessSevere   = 2.5
	tirednessCritical = 5.0

	TirednessDrinkMalus       = tirednessSevere
	TirednessDrinkMalusSpugna = tirednessHigh
)

// Pronoun is the player's flavor pronoun, cosmetic only.
type Pronoun int

const (
	He Pronoun = iota
	She
	They
)

func (p Pronoun) String() string {
	switch p {
	case He:
		return "he"
	case She:
		return "she"
	case They:
		return "they"
	default:
		return "they"
	}
}

// Population is the player's species/ancestry flavor, which gates name
// pools and the min/max age band used by relative-age computations. The
// original's population table (core/types.rs) was not in the retrieval
// pack; ages below are a reasonable invented band documented in DESIGN.md.
type Population int

const (
	Human Population = iota
	Cyborg
	Polpett
	Octopulp
	populationCount
)

type ageBand struct{ min, max float32 }

var ageBands = [populationCount]ageBand{
	Human:    {min: 18, max: 40},
	Cyborg:   {min: 5, max: 200},
	Polpett:  {min: 10, max: 25},
	Octopulp: {min: 1, max: 10},
}

func (p Population) MinAge() float32 { return ageBands[p%populationCount].min }
func (p Population) MaxAge() float32 { return ageBands[p%populationCount].max }

// RelativeAge maps an absolute age into [0,1] within the population's band,
// the unit every age-driven modifier in the engine actually operates on.
func (p Population) RelativeAge(age float32) float32 {
	band := ageBands[p%populationCount]
	if band.max <= band.min {
		return 0
	}
	r := (age - band.min) / (band.max - band.min)
	if r < 0 {
		r = 0
	}
	if r > 1 {
		r = 1
	}
	return r
}

func (p Population) String() string {
	switch p {
	case Human:
		return "human"
	case Cyborg:
		return "cyborg"
	case Polpett:
		return "polpett"
	case Octopulp:
		return "octopulp"
	default:
		return "human"
	}
}

// CrewRole is a team position a player can be assigned to.
type CrewRole int

const (
	Mozzo CrewRole = iota
	Captain
	Pilot
	Doctor
	Engineer
)

func (r CrewRole) String() string {
	switch r {
	case Captain:
		return "captain"
	case Pilot:
		return "pilot"
	case Doctor:
		return "doctor"
	case Engineer:
		return "engineer"
	default:
		return "mozzo"
	}
}

// Trait is the optional special trait a player can roll at generation time
//.
type Trait int

const (
	Killer Trait = iota
	Relentless
	Showpirate
	Spugna
	Crumiro
)

func (t Trait) String() string {
	switch t {
	case Killer:
		return "killer"
	case Relentless:
		return "relentless"
	case Showpirate:
		return "showpirate"
	case Spugna:
		return "spugna"
	case Crumiro:
		return "crumiro"
	default:
		return "unknown"
	}
}

// Image is the cosmetic-only appearance descriptor. WoodenLeg/EyePatch/
// Hook are the three
// cosmetics that additionally cap a specific skill (quickness / vision /
// ball-handling respectively), per original_source's set_wooden_leg/
// set_eye_patch/set_hook.
type Image struct {
	Seed      int64
	WoodenLeg bool
	EyePatch  bool
	Hook      bool
}

// CapFor returns the skill cap a worn cosmetic imposes on index i, or nil.
func (img Image) CapFor(i skill.Index) *skill.Cap {
	switch {
	case img.WoodenLeg && i == skill.Quickness:
		return &skill.Cap{Index: skill.Quickness, Limit: skill.WoodenLegQuicknessCap}
	case img.EyePatch && i == skill.Vision:
		return &skill.Cap{Index: skill.Vision, Limit: skill.EyePatchVisionCap}
	case img.Hook && i == skill.BallHandling:
		return &skill.Cap{Index: skill.BallHandling, Limit: skill.HookBallHandlingCap}
	default:
		return nil
	}
}

// GameStats accumulates per-player historical statistics across every game
// the player has appeared in (spec's SUPPLEMENTED "historical per-player
// game stats", restoring InfoStats.historical_stats since the match engine
// would otherwise discard these at game-archive time).
type GameStats struct {
	GamesPlayed  int
	Points       int
	Assists      int
	Rebounds     int
	Steals       int
	Blocks       int
	Knockouts    int
	TimesKnocked int
}

// AddGame folds one game's per-player stat line into the running totals.
func (s *GameStats) AddGame(points, assists, rebounds, steals, blocks int, knockedOutOthers, wasKnockedOut bool) {
	s.GamesPlayed++
	s.Points += points
	s.Assists += assists
	s.Rebounds += rebounds
	s.Steals += steals
	s.Blocks += blocks
	if knockedOutOthers {
		s.Knockouts++
	}
	if wasKnockedOut {
		s.TimesKnocked++
	}
}

// InfoStats is the player's identity/body information: names, age,
// pronouns, population, height, weight, home planet, and crew role.
type InfoStats struct {
	FirstName   string
	LastName    string
	CrewRole    CrewRole
	HomePlanet  ids.PlanetId
	Population  Population
	Age         float32
	Pronouns    Pronoun
	Height      float32
	Weight      float32
}

func (i InfoStats) ShortName() string {
	if len(i.FirstName) == 0 {
		return i.LastName
	}
	return string(i.FirstName[0]) + "." + i.LastName
}

func (i InfoStats) FullName() string { return i.FirstName + " " + i.LastName }

// RelativeAge is age normalized into [0,1] within the player's population's
// age band, the input every age-dependent engine modifier actually uses.
func (i InfoStats) RelativeAge() float32 { return i.Population.RelativeAge(i.Age) }

// Player is the full entity.
type Player struct {
	Id      ids.PlayerId
	PeerId  *ids.PeerId
	Version uint64

	Info InfoStats
	Team *ids.TeamId

	SpecialTrait *Trait

	Reputation float32
	Potential  float32

	Skills         skill.Values
	SkillsTraining skill.Values

	Tiredness float32
	Morale    float32

	Image           Image
	HistoricalStats GameStats
}

// New returns a zero-value-safe Player with a fresh id, the shape every
// generation path starts from before randomizing fields.
func New() *Player {
	return &Player{Id: ids.NewPlayerId()}
}

// AverageSkill returns the mean of all 20 skills, the rating the original
// calls Player::average_skill and uses throughout generation, reputation,
// and tiredness-weighted rating.
func (p *Player) AverageSkill() float32 { return p.Skills.Average() }

// IsKnockedOut reports whether the player's tiredness has hit the ceiling,
// which per spec's Player invariant forces morale to 0.
func (p *Player) IsKnockedOut() bool { return p.Tiredness >= skill.MaxSkill }

// TirednessWeightedRating is the effective in-game rating accounting for
// fatigue: a knocked-out player contributes nothing; otherwise rating
// degrades linearly with half of accumulated tiredness.
func (p *Player) TirednessWeightedRating() float32 {
	if p.IsKnockedOut() {
		return 0
	}
	return p.AverageSkill() * (skill.MaxSkill - p.Tiredness/2)
}

// ModifySkill routes every skill change through the per-trait cosmetic cap
// and the cosmetic's compensating growth bonus (Hook boosts Strength growth
// by 50%, Eye-Patch boosts Charisma growth by 50%), mirroring
// modify_skill's idx==2/idx==19 special cases.
func (p *Player) ModifySkill(i skill.Index, delta float32) {
	if delta > 0 {
		if p.Image.Hook && i == skill.Strength {
			delta *= 1.5
		}
		if p.Image.EyePatch && i == skill.Charisma {
			delta *= 1.5
		}
	}
	cap := p.Image.CapFor(i)
	p.Skills.ModifySkill(i, delta, cap)
}

// AddMorale applies a morale delta, halving (up to 2x) negative malus by
// the player's charisma, and floors at a per-trait minimum (Crumiro floors
// at 0.15*MaxSkill instead of 0), grounded on player.rs's add_morale.
func (p *Player) AddMorale(delta float32) {
	minMorale := float32(0)
	if p.SpecialTrait != nil && *p.SpecialTrait == Crumiro {
		minMorale = 0.15 * skill.MaxSkill
	}
	modDelta := delta
	if delta < 0 {
		modDelta = delta / (1 + p.Skills[skill.Charisma]/skill.MaxSkill)
	}
	p.Morale = clamp(p.Morale+modDelta, minMorale, skill.MaxSkill)
}

// AddTiredness applies a tiredness delta scaled down by the player's
// stamina, capped at a per-trait ceiling (Relentless 0.8*MaxSkill, Crumiro
// 0.85*MaxSkill, everyone else MaxSkill), and zeroes morale the instant
// tiredness reaches MaxSkill (IsKnockedOut); a Relentless or Crumiro
// player's ceiling sits below that, so their morale is never zeroed here.
// Grounded on player.rs's add_tiredness/is_knocked_out.
func (p *Player) AddTiredness(delta float32) {
	maxTiredness := skill.MaxSkill
	if p.SpecialTrait != nil {
		switch *p.SpecialTrait {
		case Relentless:
			maxTiredness = 0.8 * skill.MaxSkill
		case Crumiro:
			maxTiredness = 0.85 * skill.MaxSkill
		}
	}
	scaled := delta / (1 + p.Skills[skill.Stamina]/skill.MaxSkill)
	p.Tiredness = clamp(p.Tiredness+scaled, 0, maxTiredness)
	if p.IsKnockedOut() {
		p.Morale = 0
	}
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// UpdateSkillsTraining folds one game's (or one training session's)
// already-position-weighted experience into the per-skill training
// accumulator, applying the same potential-modifier shape as
// update_skills_training: players below their potential improve faster,
// players above it improve slower, and the per-skill accumulator caps at
// MaxSkillIncreasePerLongTick.
func (p *Player) UpdateSkillsTraining(expPerSkill skill.Values, trainingBonus float32, focus *skill.Group) {
	avg := p.AverageSkill()
	var potentialModifier float32
	if avg > p.Potential {
		potentialModifier = float32(math.Pow(float64(1.0+(p.Potential-avg)/skill.MaxSkill), 10))
	} else {
		potentialModifier = 1.0 + (p.Potential-avg)/skill.MaxSkill
	}

	for idx := skill.Index(0); idx < skill.Count; idx++ {
		if expPerSkill[idx] == 0 {
			continue
		}
		focusBonus := float32(1.0)
		if focus != nil {
			if idx.GroupOf() == *focus {
				focusBonus = 2.0
			} else {
				focusBonus = 0.5
			}
		}
		inc := expPerSkill[idx] * trainingBonus * focusBonus * potentialModifier
		p.SkillsTraining[idx] += inc
		if p.SkillsTraining[idx] > MaxSkillIncreasePerLongTick {
			p.SkillsTraining[idx] = MaxSkillIncreasePerLongTick
		}
	}
}

// ApplyLongTick advances one LONG tick: ages the player, decays reputation
// and morale, decays+trains every skill by the age-weighted amount
// tick_players_update computes, and resets the training accumulator.
// Crumiro-trait players are exempted from morale/skill effects (they are
// "the emperor's crew", immune to ordinary crew dynamics) but still have
// their training accumulator cleared and reputation zeroed, exactly
// mirroring the original's early-continue branch.
func (p *Player) ApplyLongTick() {
	p.Version++
	p.Info.Age += AgeIncreasePerLongTick

	if p.SpecialTrait != nil && *p.SpecialTrait == Crumiro {
		p.SkillsTraining = skill.Values{}
		p.Reputation = 0
		return
	}

	p.AddMorale(MoraleDecreasePerLongTick)
	p.Reputation = clamp(p.Reputation-ReputationDecreasePerLongTick, 0, skill.MaxSkill)

	relAge := p.Info.RelativeAge()
	factor := (1 - PeakPerformanceRelativeAge) / maxf32((1-0.5*(relAge+PeakPerformanceRelativeAge)), 0.01)

	for idx := skill.Index(0); idx < skill.Count; idx++ {
		var ageModifier float32
		switch {
		case PeakPerformanceRelativeAge >= relAge:
			ageModifier = maxf32(1.0/(1.5-relAge/(2*PeakPerformanceRelativeAge)), 1.0)
		case idx > 15:
			ageModifier = factor
		case idx < 4:
			ageModifier = 4.0 * factor
		default:
			ageModifier = 2.0 * factor
		}
		p.ModifySkill(idx, SkillDecrementPerLongTick*clamp(ageModifier, 0, skill.MaxSkill))
		p.ModifySkill(idx, p.SkillsTraining[idx])
	}
	p.SkillsTraining = skill.Values{}
}

func maxf32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// ShouldRetire applies the retirement roll used by auto-management:
// a player past MinRelativeRetirementAge retires with probability scaled by
// how far past the threshold their relative age sits, grounded on
// world.rs's tick_retire_players.
func (p *Player) ShouldRetire(r *rng.Rand) bool {
	relAge := p.Info.RelativeAge()
	if relAge <= MinRelativeRetirementAge {
		return false
	}
	roll := MinRelativeRetirementAge + r.Float64()*(1.0-MinRelativeRetirementAge)
	return float64(relAge) > roll
}

// WantsToLeave reports whether morale has fallen below the threshold at
// which a player may ask to leave their team, grounded on MORALE_THRESHOLD_FOR_LEAVING.
// Crumiro-trait players never ask to leave.
func (p *Player) WantsToLeave() bool {
	return p.Morale < MoraleThresholdForLeaving && (p.SpecialTrait == nil || *p.SpecialTrait != Crumiro)
}

// AssignTrait rolls the special-trait selection of Player::build: a player
// qualifies for at most one trait, checked in the same priority order as
// the original (Killer > Showpirate > Spugna > Relentless), each gated by a
// skill threshold and TRAIT_PROBABILITY.
func (p *Player) AssignTrait(r *rng.Rand) {
	switch {
	case p.Skills[skill.Strength] > 15 && r.Float64() < TraitProbability:
		t := Killer
		p.SpecialTrait = &t
	case p.Skills[skill.Charisma] > 15 && r.Float64() < TraitProbability:
		t := Showpirate
		p.SpecialTrait = &t
	case p.Skills[skill.Intuition] > 10 && r.Float64() < TraitProbability:
		t := Spugna
		p.SpecialTrait = &t
	case p.Skills[skill.Stamina] > 15 && r.Float64() < TraitProbability:
		t := Relentless
		p.SpecialTrait = &t
	}
}

// ApplyCosmeticCompensation mirrors the original's "if a skill rolled below
// the cosmetic's cap threshold, wear that cosmetic and give a small
// compensating bonus to unrelated skills" logic at generation time, so a
// Wooden-Leg/Eye-Patch/Hook pirate isn't simply worse than an uncapped one.
func (p *Player) ApplyCosmeticCompensation() {
	if p.Skills[skill.Quickness] < skill.WoodenLegQuicknessCap {
		p.Image.WoodenLeg = true
		p.Skills.ModifySkill(skill.Charisma, 1.25, nil)
		p.Skills.ModifySkill(skill.PostMoves, 0.75, nil)
	}
	if p.Skills[skill.Vision] < skill.EyePatchVisionCap {
		p.Image.EyePatch = true
		p.Skills.ModifySkill(skill.Charisma, 2.0, nil)
	}
	if p.Skills[skill.BallHandling] < skill.HookBallHandlingCap {
		p.Image.Hook = true
		p.Skills.ModifySkill(skill.Strength, 1.25, nil)
		p.Skills.ModifySkill(skill.Charisma, 0.75, nil)
	}
}

// NewRandom generates a fresh free pirate on homePlanet using deterministic
// per-(id, tick) randomness, following Player::build's shape: roll a base
// skill level weighted by relative age peaking at
// PEAK_PERFORMANCE_RELATIVE_AGE, apply cosmetic compensation, roll a
// special trait, then derive potential and starting reputation from the
// resulting average skill.
func NewRandom(homePlanet ids.PlanetId, population Population, r *rng.Rand) *Player {
	p := New()
	p.Info.HomePlanet = homePlanet
	p.Info.Population = population
	p.Info.Pronouns = Pronoun(r.Intn(3))
	p.Info.Age = population.MinAge() + float32(r.Float64())*0.55*(population.MaxAge()-population.MinAge())
	p.Info.Height = 180 + float32(r.NormFloat64())*5
	p.Info.Weight = (float32(r.Intn(10)+12) + p.Info.Height/20) * p.Info.Height * p.Info.Height / 10000

	relAge := p.Info.RelativeAge()
	var baseLevelModifier float32
	if PeakPerformanceRelativeAge >= relAge {
		baseLevelModifier = relAge / PeakPerformanceRelativeAge
	} else {
		baseLevelModifier = (relAge - 1) / (PeakPerformanceRelativeAge - 1)
	}
	baseLevel := (5 + float32(r.Float64())*5) * baseLevelModifier

	for idx := skill.Index(0); idx < skill.Count; idx++ {
		roll := baseLevel + float32(r.NormFloat64())*2
		p.Skills.ModifySkill(idx, roll, nil)
	}
	p.Skills.Clamp()

	p.ApplyCosmeticCompensation()
	p.AssignTrait(r)

	stdDev := 3.0 + 1.0 - float64(relAge)
	extraPotential := math.Abs(r.NormFloat64() * stdDev)
	avg := p.AverageSkill()
	p.Potential = clamp(avg+float32(extraPotential), avg, skill.MaxSkill)
	p.Reputation = clamp(avg/5+relAge*5, 0, skill.MaxSkill)

	return p
}

// AssignToTeam sets team membership, keeping the player-team relationship
// consistent on the Player side (the Team/World layer is
// responsible for the reciprocal player_ids update).
func (p *Player) AssignToTeam(team ids.TeamId) {
	t := team
	p.Team = &t
	p.Version++
}

// Release clears team membership and applies the morale malus a released
// player takes.
func (p *Player) Release() {
	p.Team = nil
	p.Version++
	p.AddMorale(MoraleReleaseMalus)
}

// ErrNotFree is returned by operations that require an unassigned player.
var ErrNotFree = piraterr.New(piraterr.PreconditionFailed, "player already belongs to a team")
