package team

import (
	"testing"

	"github.com/vitadek/piratecrew/internal/ids"
	"github.com/vitadek/piratecrew/internal/player"
	"github.com/vitadek/piratecrew/internal/resource"
)

func TestNewTeamStartsWithFullFuelTank(t *testing.T) {
	tm := New("The Black Flag", ids.NewPlanetId(), 0)
	if tm.Resources[resource.Fuel] != tm.Spaceship.FuelCapacity() {
		t.Fatalf("expected full fuel tank at creation, got %d/%d", tm.Resources[resource.Fuel], tm.Spaceship.FuelCapacity())
	}
	if tm.CurrentLocation.Kind != OnPlanet {
		t.Fatalf("expected a new team OnPlanet, got %v", tm.CurrentLocation.Kind)
	}
}

func TestAddResourceRejectsOverFuelCapacity(t *testing.T) {
	tm := New("Crew", ids.NewPlanetId(), 0)
	if err := tm.AddResource(resource.Fuel, 1); err == nil {
		t.Fatalf("expected adding fuel beyond capacity to fail")
	}
}

func TestAddResourceRejectsOverStorageCapacity(t *testing.T) {
	tm := New("Crew", ids.NewPlanetId(), 0)
	huge := tm.Spaceship.StorageCapacity()/resource.Gem.StorageFootprint() + 1
	if err := tm.AddResource(resource.Gem, huge); err == nil {
		t.Fatalf("expected adding gems beyond storage capacity to fail")
	}
}

func TestCrewRoleAssignmentEnforcesSingleHolder(t *testing.T) {
	var roles CrewRoles
	p1, p2 := ids.NewPlayerId(), ids.NewPlayerId()
	roles.Assign(p1, player.Captain)
	roles.Assign(p2, player.Captain)
	holder, ok := roles.Holder(player.Captain)
	if !ok || holder != p2 {
		t.Fatalf("expected p2 to be sole captain, got %v ok=%v", holder, ok)
	}
}

func TestFillByDecreasingBasePriceRespectsCapacity(t *testing.T) {
	tm := New("Crew", ids.NewPlanetId(), 0)
	found := map[resource.Kind]int{
		resource.Gem:  1000,
		resource.Gold: 1000,
	}
	collected := tm.FillByDecreasingBasePrice(found)
	if tm.UsedStorageCapacity() > tm.Spaceship.StorageCapacity() {
		t.Fatalf("storage capacity invariant violated: used=%d cap=%d", tm.UsedStorageCapacity(), tm.Spaceship.StorageCapacity())
	}
	if collected[resource.Gem] == 0 && collected[resource.Gold] == 0 {
		t.Fatalf("expected at least some resources collected")
	}
}

func TestCanReleasePlayerEnforcesRosterFloor(t *testing.T) {
	tm := New("Crew", ids.NewPlanetId(), 0)
	for i := 0; i < 5; i++ {
		_ = tm.AddPlayer(ids.NewPlayerId(), 10)
	}
	if err := tm.CanReleasePlayer(5); err == nil {
		t.Fatalf("expected release to be rejected at the roster floor")
	}
}
