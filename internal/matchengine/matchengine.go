// Package matchengine implements the turn-by-turn match state machine: a
// possession-timer-driven game between two TeamInGame snapshots
// that emits a deterministic sequence of ActionOutputs.
//
// Grounded on original_source/src/game_engine/game.rs (Game struct,
// Game::new's attendance formula, pick_action's exact ActionSituation ->
// Action mapping, apply_tiredness_update/apply_game_stats_update) and
// original_source/src/game_engine/pick_and_roll.rs (the advantage-tier
// resolution pattern: atk_result - def_result bucketed against
// ADV_ATTACK_LIMIT/ADV_NEUTRAL_LIMIT/ADV_DEFENSE_LIMIT, with a steal check
// against STEAL_LIMIT on Turnover). ADV_*/STEAL_LIMIT/BRAWL_ACTION_PROBABILITY
// and BASE_ATTENDANCE were not retrieved into original_source/constants.rs
// (filtered by the pack's size cap); the values below are documented,
// reasonable pins consistent with the tiers visible elsewhere (a turnover
// should be common but not dominant, advantage swings rare).
package matchengine

import (
	"fmt"
	"sort"

	"github.com/vitadek/piratecrew/internal/ids"
	"github.com/vitadek/piratecrew/internal/player"
	"github.com/vitadek/piratecrew/internal/rng"
	"github.com/vitadek/piratecrew/internal/skill"
)

// Tactic is the offense-side playbook a TeamInGame plays under.
type Tactic int

const (
	Isolation Tactic = iota
	PickAndRoll
	OffTheScreen
	Post
	LowPost
)

func (t Tactic) String() string {
	switch t {
	case Isolation:
		return "isolation"
	case PickAndRoll:
		return "pick_and_roll"
	case OffTheScreen:
		return "off_the_screen"
	case Post:
		return "post"
	case LowPost:
		return "low_post"
	default:
		return "isolation"
	}
}

// actionWeights gives each tactic's relative likelihood of picking each of
// the five non-canonical actions a possession can open with, grounded on
// the shape (not the exact numbers) of pick_and_roll.rs's per-tactic
// pick_action dispatch: every tactic can produce every action, but its
// namesake action dominates its own weight table.
var actionWeights = map[Tactic][5]float64{
	Isolation:    {5, 1, 1, 1, 1},
	PickAndRoll:  {1, 5, 1, 1, 1},
	OffTheScreen: {1, 1, 5, 1, 1},
	Post:         {1, 1, 1, 5, 1},
	LowPost:      {1, 1, 1, 1, 5},
}

var tacticActions = [5]Action{CloseShot, PickAndRollAction, OffTheScreenAction, PostAction, LowPostAction}

// brawlProbabilityModifier is each tactic's contribution to the combined
// brawl-action roll (game.rs: BRAWL_ACTION_PROBABILITY *
// (home.tactic.brawl_probability_modifier() + away...)).
func (t Tactic) brawlProbabilityModifier() float64 {
	if t == Post || t == LowPost {
		return 1.5
	}
	return 1.0
}

// pickAction samples one of the tactic's weighted actions. It does not look
// at which players are available; a tactic with no player able to initiate
// becomes a "fumbled" turnover in the caller (resolve), not here.
func (t Tactic) pickAction(r *rng.Rand) Action {
	w := actionWeights[t]
	total := w[0] + w[1] + w[2] + w[3] + w[4]
	roll := r.Float64() * total
	for i, weight := range w {
		if roll < weight {
			return tacticActions[i]
		}
		roll -= weight
	}
	return tacticActions[len(tacticActions)-1]
}

// ActionSituation classifies what the previous ActionOutput leaves the next
// turn to resolve.
type ActionSituation int

const (
	SituationJumpBall ActionSituation = iota
	SituationBallInBackcourt
	SituationBallInMidcourt
	SituationCloseShot
	SituationMediumShot
	SituationLongShot
	SituationMissedShot
	SituationTurnover
	SituationAfterOffensiveRebound
	SituationAfterDefensiveRebound
	SituationAfterLongOffensiveRebound
	SituationAfterSubstitution
	SituationFastbreak
	SituationForcedOffTheScreenAction
	SituationEndOfQuarter
)

// Action is the concrete play the offense attempts.
type Action int

const (
	JumpBall Action = iota
	CloseShot
	MediumShot
	LongShot
	PickAndRollAction
	OffTheScreenAction
	PostAction
	LowPostAction
	Fastbreak
	Rebound
	StartOfQuarter
	Brawl
	Substitution
)

// Advantage is the bucket atk_result-def_result falls into.
type Advantage int

const (
	AdvantageAttack Advantage = iota
	AdvantageNeutral
	AdvantageDefense
	AdvantageTurnover
)

// Advantage-tier thresholds and the steal gate, grounded on the shape of
// pick_and_roll.rs's `x if x >= ADV_ATTACK_LIMIT` / `x > ADV_NEUTRAL_LIMIT`
// / `x > ADV_DEFENSE_LIMIT` ladder; exact magnitudes are this engine's own
// documented pin since the constants weren't in the retrieval pack.
const (
	AdvAttackLimit  = 20.0
	AdvNeutralLimit = 5.0
	AdvDefenseLimit = -5.0
	StealLimit      = 10.0

	BrawlActionProbability = 0.01
	BaseAttendance         = 1000

	// SubstitutionProbability is the coach-AI's per-BallInBackcourt chance
	// of swapping a tired starter for a fresher bench player (spec §4.4
	// "Ends-of-period and substitutions"). Pinned low, like
	// BrawlActionProbability, since most backcourt situations should just
	// resume play.
	SubstitutionProbability = 0.03
	// SubstitutionTirednessThreshold is how tired an on-court player must
	// be before the coach-AI will consider pulling them.
	SubstitutionTirednessThreshold = 0.6 * skill.MaxSkill
)

// Possession identifies which side has the ball.
type Possession int

const (
	Home Possession = iota
	Away
)

func (p Possession) Other() Possession {
	if p == Home {
		return Away
	}
	return Home
}

// Position is the 0-indexed on-court role (0..MaxGamePosition-1; -1 marks
// a bench player) a player is assigned for the
// duration of the game (spec is silent on an exact position taxonomy;
// grounded on the shape of position.rs's MAX_GAME_POSITION bound without
// its contents, which weren't retrieved).
type Position int

const MaxGamePosition = 5

// PlayerStatLine is the per-player, per-game running stat accumulator a
// TeamInGame tracks (game.rs's GameStatsMap value shape).
type PlayerStatLine struct {
	Position   Position
	Seconds    int
	Points     int
	Assists    int
	Rebounds   int
	Steals     int
	Blocks     int
	Turnovers  int
	Knockouts  int
	WasKnocked bool
}

// TeamInGame is an immutable-during-the-game snapshot of a Team's roster
// and the mutable per-game stats layered over it, grounded on game.rs's
// TeamInGame.
type TeamInGame struct {
	TeamId     ids.TeamId
	PeerId     *ids.PeerId
	Name       string
	Reputation float32
	Tactic     Tactic

	Players   map[ids.PlayerId]*player.Player
	Positions map[ids.PlayerId]Position
	Stats     map[ids.PlayerId]*PlayerStatLine
}

// NewTeamInGame snapshots roster into a TeamInGame, assigning each of the
// first MaxGamePosition roster players to a starting position.
func NewTeamInGame(teamID ids.TeamId, peerID *ids.PeerId, name string, reputation float32, tactic Tactic, roster []*player.Player) *TeamInGame {
	tig := &TeamInGame{
		TeamId:     teamID,
		PeerId:     peerID,
		Name:       name,
		Reputation: reputation,
		Tactic:     tactic,
		Players:    map[ids.PlayerId]*player.Player{},
		Positions:  map[ids.PlayerId]Position{},
		Stats:      map[ids.PlayerId]*PlayerStatLine{},
	}
	for i, p := range roster {
		tig.Players[p.Id] = p
		tig.Stats[p.Id] = &PlayerStatLine{}
		if i < MaxGamePosition {
			tig.Positions[p.Id] = Position(i)
			tig.Stats[p.Id].Position = Position(i)
		} else {
			tig.Positions[p.Id] = -1
		}
	}
	return tig
}

// onCourt returns the ids of every player currently holding a starting
// position (0..MaxGamePosition), in position order.
func (t *TeamInGame) onCourt() []ids.PlayerId {
	out := make([]ids.PlayerId, 0, MaxGamePosition)
	for pos := Position(0); pos < MaxGamePosition; pos++ {
		for id, p := range t.Positions {
			if p == pos {
				out = append(out, id)
				break
			}
		}
	}
	return out
}

// bench returns every rostered player not currently on court.
func (t *TeamInGame) bench() []ids.PlayerId {
	var out []ids.PlayerId
	for id, p := range t.Positions {
		if p < 0 {
			out = append(out, id)
		}
	}
	return out
}

// mostTiredOnCourt returns the starting player with the highest tiredness,
// breaking ties by id string for determinism: Go map iteration order is
// per-process random, and this feeds a coach-AI decision the replay
// determinism requirement (spec §4.4) demands be reproducible.
func (t *TeamInGame) mostTiredOnCourt() (ids.PlayerId, bool) {
	onCourt := t.onCourt()
	sort.Slice(onCourt, func(i, j int) bool { return onCourt[i].String() < onCourt[j].String() })
	var best ids.PlayerId
	var bestTiredness float32 = -1
	found := false
	for _, id := range onCourt {
		p, ok := t.Players[id]
		if !ok {
			continue
		}
		if p.Tiredness > bestTiredness {
			bestTiredness, best, found = p.Tiredness, id, true
		}
	}
	return best, found
}

// freshestOnBench returns the benched player with the lowest tiredness,
// same deterministic tie-break as mostTiredOnCourt.
func (t *TeamInGame) freshestOnBench() (ids.PlayerId, bool) {
	bench := t.bench()
	sort.Slice(bench, func(i, j int) bool { return bench[i].String() < bench[j].String() })
	var best ids.PlayerId
	var bestTiredness float32
	found := false
	for _, id := range bench {
		p, ok := t.Players[id]
		if !ok {
			continue
		}
		if !found || p.Tiredness < bestTiredness {
			bestTiredness, best, found = p.Tiredness, id, true
		}
	}
	return best, found
}

// substitute swaps a starter's position with a bench player's, keeping the
// per-player stat line's recorded Position in sync so stats stay
// attributed to the right slot after the swap.
func (t *TeamInGame) substitute(out, in ids.PlayerId) {
	pos := t.Positions[out]
	t.Positions[out] = -1
	t.Positions[in] = pos
	if stat, ok := t.Stats[out]; ok {
		stat.Position = -1
	}
	if stat, ok := t.Stats[in]; ok {
		stat.Position = pos
	}
}

// knockedOut reports whether every on-court player has tiredness at the
// knockout ceiling.
func (t *TeamInGame) knockedOut() bool {
	onCourt := t.onCourt()
	if len(onCourt) == 0 {
		return true
	}
	for _, id := range onCourt {
		if p, ok := t.Players[id]; ok && !p.IsKnockedOut() {
			return false
		}
	}
	return true
}

// ActionOutput is one resolved step of the game, emitted every turn (spec
// §4.4 step 5).
type ActionOutput struct {
	StartAt     int64
	EndAt       int64
	Situation   ActionSituation
	Possession  Possession
	Action      Action
	Advantage   Advantage
	Description string
	HomeScore   int
	AwayScore   int
	ScoreChange int
	Attackers   []ids.PlayerId
	Defenders   []ids.PlayerId
	Assist      *ids.PlayerId
	Stolen      bool
}

// Game is the full match state, grounded on game.rs's Game struct.
type Game struct {
	Id               ids.GameId
	HomeTeamInGame   *TeamInGame
	AwayTeamInGame   *TeamInGame
	Location         ids.PlanetId
	Attendance       uint32
	ActionResults    []ActionOutput
	WonJumpBall      Possession
	StartingAt       int64
	EndedAt          *int64
	Possession       Possession
	TimerSeconds     int
	Period           int
	Winner           *ids.TeamId
	IsNetwork        bool
}

// seconds per quarter, grounded on basketball-analogue quarter length; the
// original's exact timer.rs constant wasn't retrieved into the pack.
const secondsPerQuarter = 600
const numQuarters = 4

// New constructs a Game and rolls attendance deterministically from the
// game id and starting tick, mirroring Game::new's
// (BASE_ATTENDANCE + total_reputation^2 * planet_population) * rng(0.75..1.25)
// formula, further multiplied by (1 + the Showpirate trait's
// reputation-scaled attendance bonus).
func New(id ids.GameId, home, away *TeamInGame, startingAt int64, location ids.PlanetId, planetPopulation uint32, isNetwork bool) *Game {
	g := &Game{
		Id:             id,
		HomeTeamInGame: home,
		AwayTeamInGame: away,
		Location:       location,
		StartingAt:     startingAt,
		IsNetwork:      isNetwork,
	}

	totalReputation := home.Reputation + away.Reputation
	bonusAttendance := showpirateBonus(home) + showpirateBonus(away)

	hi, lo := id.Words()
	r := rng.Deterministic(hi, lo, startingAt)
	attendance := (float64(BaseAttendance) + float64(totalReputation)*float64(totalReputation)*float64(planetPopulation)) *
		(0.75 + r.Float64()*0.5) * (1.0 + float64(bonusAttendance))
	g.Attendance = uint32(attendance)

	jumpRoll := r.Intn(2)
	g.WonJumpBall = Possession(jumpRoll)
	g.Possession = g.WonJumpBall
	g.ActionResults = []ActionOutput{{Situation: SituationJumpBall, Possession: g.Possession}}
	return g
}

func showpirateBonus(t *TeamInGame) float32 {
	var sum float32
	for _, p := range t.Players {
		if p.SpecialTrait != nil && *p.SpecialTrait == player.Showpirate {
			sum += p.Reputation
		}
	}
	return sum / 100.0
}

// seed derives this game's deterministic action RNG from (game_id,
// starting_at, current timer): two independent runs over the same initial
// snapshots must produce byte-identical ActionOutput sequences.
func (g *Game) seed() *rng.Rand {
	hi, lo := g.Id.Words()
	return rng.Deterministic(hi, lo, g.StartingAt+int64(g.TimerSeconds))
}

func (g *Game) lastSituation() ActionSituation {
	return g.ActionResults[len(g.ActionResults)-1].Situation
}

// pickAction grounded verbatim on pick_action's match arms in game.rs.
func (g *Game) pickAction(r *rng.Rand) Action {
	switch g.lastSituation() {
	case SituationJumpBall:
		return JumpBall
	case SituationAfterOffensiveRebound, SituationCloseShot:
		return CloseShot
	case SituationMediumShot:
		return MediumShot
	case SituationLongShot:
		return LongShot
	case SituationForcedOffTheScreenAction:
		return OffTheScreenAction
	case SituationFastbreak:
		return Fastbreak
	case SituationMissedShot:
		return Rebound
	case SituationEndOfQuarter:
		return StartOfQuarter
	case SituationAfterSubstitution, SituationBallInBackcourt:
		home, away := g.HomeTeamInGame.Tactic, g.AwayTeamInGame.Tactic
		brawlProbability := BrawlActionProbability * (home.brawlProbabilityModifier() + away.brawlProbabilityModifier())
		if r.Float64() < brawlProbability {
			return Brawl
		}
		return g.offense().Tactic.pickAction(r)
	default: // BallInMidcourt, AfterDefensiveRebound, AfterLongOffensiveRebound, Turnover
		return g.offense().Tactic.pickAction(r)
	}
}

func (g *Game) offense() *TeamInGame {
	if g.Possession == Home {
		return g.HomeTeamInGame
	}
	return g.AwayTeamInGame
}

func (g *Game) defense() *TeamInGame {
	if g.Possession == Home {
		return g.AwayTeamInGame
	}
	return g.HomeTeamInGame
}

// actionGroup maps an Action to the skill group its roll is weighted by.
// Not an exhaustive basketball
// rulebook, just the dominant-group pairing the engine needs to produce a
// believable atk/def split.
func actionGroup(a Action) skill.Group {
	switch a {
	case CloseShot, PostAction, LowPostAction:
		return skill.Offense
	case MediumShot:
		return skill.Offense
	case LongShot:
		return skill.Offense
	case PickAndRollAction, OffTheScreenAction:
		return skill.Technical
	case Fastbreak:
		return skill.Athletics
	default:
		return skill.Technical
	}
}

// pickAttacker samples an on-court attacker, weighted toward the offense's
// strongest skill in the action's dominant group (a simplified stand-in for
// the original's position-indexed weight table, which wasn't retrieved).
func pickAttacker(t *TeamInGame, group skill.Group, r *rng.Rand) (ids.PlayerId, *player.Player, bool) {
	onCourt := t.onCourt()
	var alive []ids.PlayerId
	for _, id := range onCourt {
		if p, ok := t.Players[id]; ok && !p.IsKnockedOut() {
			alive = append(alive, id)
		}
	}
	if len(alive) == 0 {
		return ids.PlayerId{}, nil, false
	}
	weights := make([]float64, len(alive))
	var total float64
	for i, id := range alive {
		w := float64(t.Players[id].Skills.GroupAverage(group)) + 1
		weights[i] = w
		total += w
	}
	roll := r.Float64() * total
	for i, w := range weights {
		if roll < w {
			return alive[i], t.Players[alive[i]], true
		}
		roll -= w
	}
	last := alive[len(alive)-1]
	return last, t.Players[last], true
}

// resolveAdvantage rolls attacker vs defender and classifies the margin
//.
func resolveAdvantage(atk, def *player.Player, group skill.Group, r *rng.Rand) (Advantage, float64) {
	atkResult := r.Float64()*10 + float64(atk.Skills.GroupAverage(group))
	defResult := r.Float64()*10 + float64(def.Skills.GroupAverage(group))
	margin := atkResult - defResult
	switch {
	case margin >= AdvAttackLimit:
		return AdvantageAttack, margin
	case margin > AdvNeutralLimit:
		return AdvantageNeutral, margin
	case margin > AdvDefenseLimit:
		return AdvantageDefense, margin
	default:
		return AdvantageTurnover, margin
	}
}

// situationAfter maps the action + advantage outcome into the situation
// the next turn will see.
func situationAfter(a Action, adv Advantage, scored bool) ActionSituation {
	if a == JumpBall {
		return SituationBallInBackcourt
	}
	if a == StartOfQuarter {
		return SituationBallInBackcourt
	}
	if a == Brawl {
		return SituationBallInBackcourt
	}
	if a == Rebound {
		if adv == AdvantageAttack {
			return SituationAfterOffensiveRebound
		}
		return SituationAfterDefensiveRebound
	}
	switch adv {
	case AdvantageTurnover:
		return SituationTurnover
	case AdvantageAttack:
		if scored {
			return SituationBallInBackcourt
		}
		return SituationMissedShot
	default:
		if scored {
			return SituationBallInBackcourt
		}
		return SituationMissedShot
	}
}

// applyTirednessUpdate applies one SHORT tick's worth of base tiredness
// cost to every on-court player (scaled by tactic and dampened by stamina
// via Player.AddTiredness) and recovers bench players by a fixed amount
// that deliberately bypasses AddTiredness's stamina dampening, mirroring
// game.rs's comment: "We don't use add_tiredness here because otherwise
// the stamina would have an effect" on recovery.
const recoveringTirednessPerShortTick = 0.02
const playingTirednessPerShortTick = 0.15

func (g *Game) applyTirednessUpdate() {
	for _, tig := range []*TeamInGame{g.HomeTeamInGame, g.AwayTeamInGame} {
		modifier := tacticTirednessModifier(tig.Tactic)
		for _, id := range tig.onCourt() {
			p := tig.Players[id]
			if p == nil || p.IsKnockedOut() {
				continue
			}
			p.AddTiredness(playingTirednessPerShortTick * modifier)
		}
		for _, id := range tig.bench() {
			p := tig.Players[id]
			if p == nil {
				continue
			}
			p.Tiredness -= recoveringTirednessPerShortTick
			if p.Tiredness < 0 {
				p.Tiredness = 0
			}
		}
	}
}

// tacticTirednessModifier scales the base per-SHORT-tick tiredness cost by
// how physically demanding a tactic is, grounded on game.rs's
// apply_tiredness_update applying `TirednessCost::LOW *
// tactic.playing_tiredness_modifier()`; exact per-tactic multipliers were
// not retrieved, so PickAndRoll/OffTheScreen (ball-movement-heavy) cost a
// little more than the isolation/post tactics.
func tacticTirednessModifier(t Tactic) float32 {
	switch t {
	case PickAndRoll, OffTheScreen:
		return 1.2
	default:
		return 1.0
	}
}

// Step executes one turn of the match state machine: classify situation,
// pick an action, resolve it, and append the resulting ActionOutput. It
// returns false once the game has ended.
func (g *Game) Step() bool {
	if g.EndedAt != nil {
		return false
	}

	if g.TimerSeconds >= numQuarters*secondsPerQuarter {
		g.end(nil)
		return false
	}

	if g.TimerSeconds > 0 && g.TimerSeconds%secondsPerQuarter == 0 && g.lastSituation() != SituationEndOfQuarter {
		out := ActionOutput{
			StartAt:     g.StartingAt + int64(g.TimerSeconds),
			EndAt:       g.StartingAt + int64(g.TimerSeconds),
			Situation:   SituationEndOfQuarter,
			Possession:  g.Possession,
			Action:      StartOfQuarter,
			Description: "End of the period.",
			HomeScore:   g.homeScore(),
			AwayScore:   g.awayScore(),
		}
		g.ActionResults = append(g.ActionResults, out)
		g.Period++
		return true
	}

	r := g.seed()

	out, substituted := ActionOutput{}, false
	if g.lastSituation() == SituationBallInBackcourt {
		out, substituted = g.trySubstitution(r)
	}
	if !substituted {
		action := g.pickAction(r)
		out = g.resolve(action, r)
	}
	g.ActionResults = append(g.ActionResults, out)
	g.applyTirednessUpdate()
	g.TimerSeconds += int(out.EndAt - out.StartAt)
	if g.TimerSeconds < 1 {
		g.TimerSeconds = 1
	}

	if g.HomeTeamInGame.knockedOut() && g.AwayTeamInGame.knockedOut() {
		g.endDoubleKnockout()
		return false
	}
	if g.HomeTeamInGame.knockedOut() {
		winner := g.AwayTeamInGame.TeamId
		g.end(&winner)
		return false
	}
	if g.AwayTeamInGame.knockedOut() {
		winner := g.HomeTeamInGame.TeamId
		g.end(&winner)
		return false
	}
	return true
}

func (g *Game) end(winner *ids.TeamId) {
	ended := g.StartingAt + int64(g.TimerSeconds)
	g.EndedAt = &ended
	if winner != nil {
		g.Winner = winner
		return
	}
	home, away := g.homeScore(), g.awayScore()
	if home > away {
		w := g.HomeTeamInGame.TeamId
		g.Winner = &w
	} else if away > home {
		w := g.AwayTeamInGame.TeamId
		g.Winner = &w
	}
}

// endDoubleKnockout is the "both sides knocked out" end condition (spec
// §4.4), grounded on game.rs:757-762's `(true, true)` arm which sets
// `self.winner = None` unconditionally. This is distinct from `end(nil)`'s
// timer-expiry tie, which still falls back to a score comparison: a
// double knockout is a tie even when the scores differ.
func (g *Game) endDoubleKnockout() {
	ended := g.StartingAt + int64(g.TimerSeconds)
	g.EndedAt = &ended
	g.Winner = nil
}

func (g *Game) homeScore() int {
	if len(g.ActionResults) == 0 {
		return 0
	}
	return g.ActionResults[len(g.ActionResults)-1].HomeScore
}

func (g *Game) awayScore() int {
	if len(g.ActionResults) == 0 {
		return 0
	}
	return g.ActionResults[len(g.ActionResults)-1].AwayScore
}

// HomeScoreTotal and AwayScoreTotal expose the final score to callers
// outside this package (e.g. world.summarizeGame), mirroring
// GameSummary::from_game reading the last action_results entry.
func (g *Game) HomeScoreTotal() int { return g.homeScore() }
func (g *Game) AwayScoreTotal() int { return g.awayScore() }

// HomeKnockedOut and AwayKnockedOut expose TeamInGame.knockedOut to callers
// outside this package.
func (g *Game) HomeKnockedOut() bool { return g.HomeTeamInGame.knockedOut() }
func (g *Game) AwayKnockedOut() bool { return g.AwayTeamInGame.knockedOut() }

// resolve executes one Action, producing its
// ActionOutput. Failure semantics: a tactic that cannot find an on-court
// attacker produces a "fumbled" Turnover rather than aborting the game.
func (g *Game) resolve(action Action, r *rng.Rand) ActionOutput {
	start := g.StartingAt + int64(g.TimerSeconds)
	offense, defense := g.offense(), g.defense()

	if action == JumpBall {
		return ActionOutput{
			StartAt: start, EndAt: start + 2,
			Situation: situationAfter(action, AdvantageNeutral, false), Possession: g.Possession, Action: action,
			Description: fmt.Sprintf("%s wins the jump ball.", offense.Name),
			HomeScore:   g.homeScore(), AwayScore: g.awayScore(),
		}
	}
	if action == StartOfQuarter {
		return ActionOutput{
			StartAt: start, EndAt: start + 2,
			Situation: SituationBallInBackcourt, Possession: g.Possession, Action: action,
			Description: "Play resumes.",
			HomeScore:   g.homeScore(), AwayScore: g.awayScore(),
		}
	}
	if action == Brawl {
		return ActionOutput{
			StartAt: start, EndAt: start + 5,
			Situation: SituationBallInBackcourt, Possession: g.Possession, Action: action,
			Description: fmt.Sprintf("A scuffle breaks out between %s and %s!", offense.Name, defense.Name),
			HomeScore:   g.homeScore(), AwayScore: g.awayScore(),
		}
	}
	if action == Rebound {
		group := skill.Technical
		attackerId, attacker, ok := pickAttacker(offense, group, r)
		if !ok {
			return fumbledTurnover(g, start, offense, defense)
		}
		adv, _ := resolveAdvantage(attacker, mustDefender(defense, group, r), group, r)
		situation := situationAfter(action, adv, false)
		return ActionOutput{
			StartAt: start, EndAt: start + 3,
			Situation: situation, Possession: g.Possession, Action: action, Advantage: adv,
			Description: fmt.Sprintf("%s grabs the rebound.", attacker.Info.ShortName()),
			HomeScore:   g.homeScore(), AwayScore: g.awayScore(),
			Attackers: []ids.PlayerId{attackerId},
		}
	}

	group := actionGroup(action)
	attackerId, attacker, ok := pickAttacker(offense, group, r)
	if !ok {
		return fumbledTurnover(g, start, offense, defense)
	}
	defenderId, defender, ok := pickDefender(defense, group, r)
	if !ok {
		return fumbledTurnover(g, start, offense, defense)
	}

	adv, margin := resolveAdvantage(attacker, defender, group, r)

	homeScore, awayScore := g.homeScore(), g.awayScore()
	scored := false
	scoreChange := 0
	var assist *ids.PlayerId
	stolen := false

	switch adv {
	case AdvantageAttack, AdvantageNeutral:
		scored = true
		scoreChange = pointsFor(action)
		if r.Float64() < 0.3 {
			if assisterId, _, ok := pickAttacker(offense, skill.Technical, r); ok && assisterId != attackerId {
				assist = &assisterId
				bumpAssist(offense, assisterId)
			}
		}
		attacker.AddMorale(0.5)
		bumpPoints(offense, attackerId, scoreChange)
	case AdvantageDefense:
		defender.AddMorale(0.5)
	case AdvantageTurnover:
		withSteal := margin <= -StealLimit
		if withSteal {
			stolen = true
			defender.AddMorale(1.0)
			bumpSteal(defense, defenderId)
		}
		attacker.AddMorale(-0.5)
		bumpTurnover(offense, attackerId)
	}

	if g.Possession == Home {
		homeScore += scoreChange
	} else {
		awayScore += scoreChange
	}

	situation := situationAfter(action, adv, scored)
	if scored || adv == AdvantageTurnover {
		g.Possession = g.Possession.Other()
	}

	knockedOutNote := ""
	if attacker.IsKnockedOut() {
		knockedOutNote = fmt.Sprintf(" %s is knocked out!", attacker.Info.ShortName())
		bumpKnockout(offense, attackerId)
	}

	return ActionOutput{
		StartAt: start, EndAt: start + int64(actionDuration(action, r)),
		Situation: situation, Possession: g.Possession.Other(), Action: action, Advantage: adv,
		Description: describe(action, adv, attacker, defender, scored) + knockedOutNote,
		HomeScore:   homeScore, AwayScore: awayScore, ScoreChange: scoreChange,
		Attackers: []ids.PlayerId{attackerId}, Defenders: []ids.PlayerId{defenderId},
		Assist: assist, Stolen: stolen,
	}
}

// trySubstitution implements spec §4.4's "Ends-of-period and
// substitutions" coach-AI path: after any BallInBackcourt situation,
// either coach may swap its most-tired starter for a fresher bench
// player. Substitutions never alter score or possession, only the
// on-court/bench split. Home is checked before away, deterministically.
func (g *Game) trySubstitution(r *rng.Rand) (ActionOutput, bool) {
	if r.Float64() >= SubstitutionProbability {
		return ActionOutput{}, false
	}
	start := g.StartingAt + int64(g.TimerSeconds)
	for _, t := range []*TeamInGame{g.HomeTeamInGame, g.AwayTeamInGame} {
		outId, ok := t.mostTiredOnCourt()
		if !ok {
			continue
		}
		tired := t.Players[outId]
		if tired == nil || tired.Tiredness < SubstitutionTirednessThreshold {
			continue
		}
		inId, ok := t.freshestOnBench()
		if !ok {
			continue
		}
		fresh := t.Players[inId]
		if fresh == nil || fresh.Tiredness >= tired.Tiredness {
			continue
		}
		t.substitute(outId, inId)
		return ActionOutput{
			StartAt: start, EndAt: start + 2,
			Situation: SituationAfterSubstitution, Possession: g.Possession, Action: Substitution,
			Description: fmt.Sprintf("%s brings in %s for %s.", t.Name, fresh.Info.ShortName(), tired.Info.ShortName()),
			HomeScore: g.homeScore(), AwayScore: g.awayScore(),
		}, true
	}
	return ActionOutput{}, false
}

func fumbledTurnover(g *Game, start int64, offense, defense *TeamInGame) ActionOutput {
	g.Possession = g.Possession.Other()
	return ActionOutput{
		StartAt: start, EndAt: start + 2,
		Situation: SituationTurnover, Possession: g.Possession, Action: CloseShot, Advantage: AdvantageTurnover,
		Description: fmt.Sprintf("%s fumbles the possession away.", offense.Name),
		HomeScore:   g.homeScore(), AwayScore: g.awayScore(),
	}
}

func mustDefender(t *TeamInGame, group skill.Group, r *rng.Rand) *player.Player {
	_, def, ok := pickDefender(t, group, r)
	if !ok {
		return player.New()
	}
	return def
}

func pickDefender(t *TeamInGame, group skill.Group, r *rng.Rand) (ids.PlayerId, *player.Player, bool) {
	defGroup := skill.Defense
	_ = group
	return pickAttacker(t, defGroup, r)
}

func pointsFor(a Action) int {
	switch a {
	case CloseShot, LowPostAction:
		return 2
	case MediumShot, PostAction, PickAndRollAction, OffTheScreenAction:
		return 2
	case LongShot:
		return 3
	case Fastbreak:
		return 2
	default:
		return 2
	}
}

func actionDuration(a Action, r *rng.Rand) int {
	base := 6
	return base + r.Intn(6)
}

func describe(a Action, adv Advantage, attacker, defender *player.Player, scored bool) string {
	name := attacker.Info.ShortName()
	dname := defender.Info.ShortName()
	if scored {
		return fmt.Sprintf("%s scores over %s!", name, dname)
	}
	if adv == AdvantageTurnover {
		return fmt.Sprintf("%s loses the ball, %s capitalizes.", name, dname)
	}
	return fmt.Sprintf("%s's attempt is denied by %s.", name, dname)
}

func bumpPoints(t *TeamInGame, id ids.PlayerId, points int) {
	if s, ok := t.Stats[id]; ok {
		s.Points += points
	}
}
func bumpAssist(t *TeamInGame, id ids.PlayerId) {
	if s, ok := t.Stats[id]; ok {
		s.Assists++
	}
}
func bumpSteal(t *TeamInGame, id ids.PlayerId) {
	if s, ok := t.Stats[id]; ok {
		s.Steals++
	}
}
func bumpTurnover(t *TeamInGame, id ids.PlayerId) {
	if s, ok := t.Stats[id]; ok {
		s.Turnovers++
	}
}
func bumpKnockout(t *TeamInGame, id ids.PlayerId) {
	if s, ok := t.Stats[id]; ok {
		s.WasKnocked = true
	}
}

// Run drives Step to completion, the convenience entry point automanage's
// auto-generated games and the peer Challenge/Ack path both call.
func (g *Game) Run(maxSteps int) {
	for i := 0; i < maxSteps; i++ {
		if !g.Step() {
			return
		}
	}
}
