package uicallback

import "testing"

func TestQueueFIFOOrder(t *testing.T) {
	var q Queue
	q.Popup("first %d", 1)
	q.Push(Callback{Kind: TeamLanded, PlanetName: "Jupiter"})

	drained := q.Drain()
	if len(drained) != 2 {
		t.Fatalf("expected 2 callbacks, got %d", len(drained))
	}
	if drained[0].Kind != PushUiPopup || drained[0].Message != "first 1" {
		t.Fatalf("expected first callback to be the popup, got %+v", drained[0])
	}
	if drained[1].Kind != TeamLanded || drained[1].PlanetName != "Jupiter" {
		t.Fatalf("expected second callback to be TeamLanded, got %+v", drained[1])
	}
	if q.Len() != 0 {
		t.Fatalf("expected queue empty after Drain, got %d", q.Len())
	}
}
