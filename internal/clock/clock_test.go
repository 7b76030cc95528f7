package clock

import "testing"

func TestPollAlignsShortToBoundary(t *testing.T) {
	s := NewScheduler(1234)
	_, short, _, _ := s.Markers()
	if short != 1000 {
		t.Fatalf("expected short marker aligned to 1000, got %d", short)
	}
}

func TestPollBackwardClockIsNoOp(t *testing.T) {
	s := NewScheduler(10_000)
	events := s.Poll(5_000, false)
	if len(events) != 0 {
		t.Fatalf("expected no events from a backward clock jump, got %v", events)
	}
	_, short, medium, long := s.Markers()
	if short != 10_000 || medium != 10_000 || long != 10_000 {
		t.Fatalf("markers must never decrease, got short=%d medium=%d long=%d", short, medium, long)
	}
}

func TestSimulateToNowIdempotence(t *testing.T) {
	// Advancing by 2*LongInterval in one catch-up run must match advancing
	// by LongInterval twice via separate catch-up runs.
	run := func(target Tick) (shortTicks, mediumTicks, longTicks int) {
		s := NewScheduler(0)
		for !s.CaughtUp(target) {
			for _, e := range s.Poll(target, false) {
				switch e.Cadence {
				case Short:
					shortTicks++
				case Medium:
					mediumTicks++
				case Long:
					longTicks++
				}
			}
		}
		return
	}

	oneShot := func() (int, int, int) { return run(2 * LongInterval) }
	s1, m1, l1 := oneShot()

	// Two sequential catch-ups covering the same total span.
	twoShot := func() (int, int, int) {
		s := NewScheduler(0)
		var sc, mc, lc int
		advance := func(target Tick) {
			for !s.CaughtUp(target) {
				for _, e := range s.Poll(target, false) {
					switch e.Cadence {
					case Short:
						sc++
					case Medium:
						mc++
					case Long:
						lc++
					}
				}
			}
		}
		advance(LongInterval)
		advance(2 * LongInterval)
		return sc, mc, lc
	}
	s2, m2, l2 := twoShot()

	if s1 != s2 || m1 != m2 || l1 != l2 {
		t.Fatalf("simulate-to-now not idempotent: one-shot=(%d,%d,%d) two-shot=(%d,%d,%d)", s1, m1, l1, s2, m2, l2)
	}
	if l1 != 2 {
		t.Fatalf("expected exactly 2 LONG ticks over a 2*LongInterval span, got %d", l1)
	}
}
