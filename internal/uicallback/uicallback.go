// Package uicallback implements the UiCallback contract: every
// user-visible outcome of a tick handler is queued as one of these values
// instead of the handler touching a renderer directly, so the core stays
// renderer-agnostic and testable without a UI.
//
// Grounded on Vitadek-OwnWorld's UI-facing event queue: every callback carries
// the data needed for the UI to render without peeking at the world, and
// handlers follow a fixed ordering rule — world mutations, then UI
// callbacks pushed onto a FIFO, then dirty-flag propagation.
package uicallback

import (
	"fmt"

	"github.com/vitadek/piratecrew/internal/ids"
	"github.com/vitadek/piratecrew/internal/resource"
)

// Kind discriminates the payload carried by a Callback.
type Kind int

const (
	PushUiPopup Kind = iota
	TeamLanded
	ExplorationResultReady
	AsteroidNameDialog
	UpgradeSpaceshipComplete
	UpgradeAsteroidComplete
	ConfirmTournamentParticipants
	SendConfirmedTournament
	CancelTournament
	Drink
	Error
)

func (k Kind) String() string {
	switch k {
	case PushUiPopup:
		return "push_ui_popup"
	case TeamLanded:
		return "team_landed"
	case ExplorationResultReady:
		return "exploration_result_ready"
	case AsteroidNameDialog:
		return "asteroid_name_dialog"
	case UpgradeSpaceshipComplete:
		return "upgrade_spaceship_complete"
	case UpgradeAsteroidComplete:
		return "upgrade_asteroid_complete"
	case ConfirmTournamentParticipants:
		return "confirm_tournament_participants"
	case SendConfirmedTournament:
		return "send_confirmed_tournament"
	case CancelTournament:
		return "cancel_tournament"
	case Drink:
		return "drink"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Callback is a single queued UI event. Only the fields relevant to Kind
// are meaningful, mirroring the tagged-union shape team.Location and
// player's trait payloads already use in this codebase.
type Callback struct {
	Kind Kind

	Message string // PushUiPopup, Error

	TeamId   ids.TeamId   // TeamLanded, ExplorationResultReady, AsteroidNameDialog, Drink, UpgradeSpaceshipComplete, UpgradeAsteroidComplete
	PlanetId ids.PlanetId // TeamLanded
	PlanetName string     // TeamLanded

	Collected map[resource.Kind]int // ExplorationResultReady
	AsteroidDiscovered bool         // ExplorationResultReady

	TournamentId ids.TournamentId // ConfirmTournamentParticipants, SendConfirmedTournament, CancelTournament

	PlayerId ids.PlayerId // Drink
}

// Queue is the FIFO a tick handler appends to and the outer loop drains
// once per event.
type Queue struct {
	items []Callback
}

// Push appends cb to the tail of the queue.
func (q *Queue) Push(cb Callback) {
	q.items = append(q.items, cb)
}

// Popup is a convenience constructor for the common case of a plain
// message popup.
func (q *Queue) Popup(format string, args ...interface{}) {
	q.Push(Callback{Kind: PushUiPopup, Message: fmt.Sprintf(format, args...)})
}

// Drain removes and returns every queued callback in FIFO order, leaving
// the queue empty.
func (q *Queue) Drain() []Callback {
	out := q.items
	q.items = nil
	return out
}

// Len reports how many callbacks are currently queued.
func (q *Queue) Len() int { return len(q.items) }
