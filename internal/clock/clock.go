// Package clock implements the Clock & Tick Scheduler: a
// monotonic millisecond wall clock and a four-cadence (FAST/SHORT/MEDIUM/
// LONG) scheduler with drift-free bucket alignment for the SHORT cadence,
// shared by the live main loop and the "simulate to now" catch-up path.
package clock

import "time"

// Tick is a wall-clock millisecond value. Never negative; monotonic by
// construction (the scheduler refuses to move a marker backward).
type Tick int64

const (
	FastInterval   Tick = 40        // ~25 Hz, space-adventure only
	ShortInterval  Tick = 1_000     // 1 s
	MediumInterval Tick = 60_000    // 1 min
	LongInterval   Tick = 86_400_000 // 24 h
)

// Now returns the current wall-clock time as a Tick. This is the one place
// in the engine allowed to call time.Now() directly; every simulation path
// downstream receives a Tick value instead of calling this itself, which is
// what keeps the match engine and tournament engine replayable.
func Now() Tick {
	return Tick(time.Now().UnixMilli())
}

// Cadence identifies which of the four coupled tick rates an Event belongs
// to.
type Cadence int

const (
	Fast Cadence = iota
	Short
	Medium
	Long
)

func (c Cadence) String() string {
	switch c {
	case Fast:
		return "FAST"
	case Short:
		return "SHORT"
	case Medium:
		return "MEDIUM"
	case Long:
		return "LONG"
	default:
		return "UNKNOWN"
	}
}

// Event is a single cadence firing, carrying the tick value the handler
// should treat as "now" for that cadence.
type Event struct {
	Cadence Cadence
	Tick    Tick
}

// Scheduler holds the four last-tick markers (the Entity Store keeps
// these, but the scheduling logic that advances them lives here so it can
// be unit tested independently of the world).
type Scheduler struct {
	fast, short, medium, long Tick
}

// NewScheduler seeds all four markers from an initial observation (usually
// the tick stored in a freshly-loaded World, or clock.Now() on a fresh
// bootstrap). The SHORT marker is immediately rounded down to its interval
// boundary so independently-booted peers that load state at the same wall
// second compute the same first SHORT tick value.
func NewScheduler(initial Tick) *Scheduler {
	s := &Scheduler{fast: initial, short: initial, medium: initial, long: initial}
	s.short = alignDown(s.short, ShortInterval)
	return s
}

func alignDown(t, interval Tick) Tick {
	return t - (t % interval)
}

// Markers returns the current {FAST, SHORT, MEDIUM, LONG} marker values, the
// shape the World persists.
func (s *Scheduler) Markers() (fast, short, medium, long Tick) {
	return s.fast, s.short, s.medium, s.long
}

// RestoreMarkers re-seeds the scheduler from persisted markers, e.g. after
// World.Load. Unlike NewScheduler it does not re-align SHORT, since a
// previously-aligned marker is already on a boundary.
func RestoreMarkers(fast, short, medium, long Tick) *Scheduler {
	return &Scheduler{fast: fast, short: short, medium: medium, long: long}
}

// Poll advances at most one interval per cadence and returns the events
// that fired, in FAST, SHORT, MEDIUM, LONG order. A clock
// observation at or before the current marker is a no-op for every cadence
// it doesn't clear — this handles a clock jumping backward by simply never
// decreasing a marker.
//
// Calling Poll repeatedly with the same `now` until CaughtUp reports true is
// the "simulate to now" path: the same handlers that drive the live loop
// replay the catch-up, advancing markers by exactly one interval per call.
func (s *Scheduler) Poll(now Tick, spaceAdventureActive bool) []Event {
	var events []Event

	if spaceAdventureActive && now > s.fast && now-s.fast >= FastInterval {
		s.fast = now
		events = append(events, Event{Fast, s.fast})
	}

	if now > s.short && now-s.short >= ShortInterval {
		next := alignDown(s.short+ShortInterval, ShortInterval)
		if next <= s.short {
			next = s.short + ShortInterval
		}
		s.short = next
		events = append(events, Event{Short, s.short})
	}

	if now > s.medium && now-s.medium >= MediumInterval {
		s.medium += MediumInterval
		events = append(events, Event{Medium, s.medium})
	}

	if now > s.long && now-s.long >= LongInterval {
		s.long += LongInterval
		events = append(events, Event{Long, s.long})
	}

	return events
}

// CaughtUp reports whether every cadence marker is within one interval of
// now, i.e. whether a "simulate to now" loop calling Poll can stop.
func (s *Scheduler) CaughtUp(now Tick) bool {
	return now-s.short < ShortInterval &&
		now-s.medium < MediumInterval &&
		now-s.long < LongInterval
}
