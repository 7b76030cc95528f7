package travel

import (
	"testing"

	"github.com/vitadek/piratecrew/internal/galaxy"
	"github.com/vitadek/piratecrew/internal/ids"
	"github.com/vitadek/piratecrew/internal/player"
	"github.com/vitadek/piratecrew/internal/resource"
	"github.com/vitadek/piratecrew/internal/rng"
	"github.com/vitadek/piratecrew/internal/skill"
	"github.com/vitadek/piratecrew/internal/team"
)

func TestStartTravelRejectsWhenNotOnPlanet(t *testing.T) {
	tm := team.New("Crew", ids.NewPlanetId(), 0)
	tm.StartExploring(tm.HomePlanet, 0)
	if err := StartTravel(tm, tm.HomePlanet, ids.NewPlanetId(), 1000, 100, 1.0, 0); err == nil {
		t.Fatalf("expected StartTravel to reject a non-OnPlanet team")
	}
}

func TestTickTravelLandsAfterDuration(t *testing.T) {
	tm := team.New("Crew", ids.NewPlanetId(), 0)
	dest := ids.NewPlanetId()
	if err := StartTravel(tm, tm.HomePlanet, dest, 1000, 100, 1.0, 0); err != nil {
		t.Fatalf("StartTravel: %v", err)
	}
	duration := tm.CurrentLocation.Duration
	planet := &galaxy.Planet{Id: dest, Name: "Destination"}

	if _, landed := TickTravel(tm, planet, nil, duration); landed {
		t.Fatalf("expected no landing exactly at duration boundary (strict >)")
	}
	cb, landed := TickTravel(tm, planet, nil, duration+1)
	if !landed {
		t.Fatalf("expected landing after duration elapsed")
	}
	if cb.PlanetName != "Destination" {
		t.Fatalf("unexpected landed callback: %+v", cb)
	}
	if tm.CurrentLocation.Kind != team.OnPlanet || tm.CurrentLocation.PlanetId != dest {
		t.Fatalf("expected team OnPlanet at destination, got %+v", tm.CurrentLocation)
	}
}

func TestSpaceAdventureReturnZeroesResourcesExceptSatoshi(t *testing.T) {
	tm := team.New("Crew", ids.NewPlanetId(), 0)
	tm.CurrentLocation = team.Location{Kind: team.OnSpaceAdventure, PlanetId: tm.HomePlanet}
	tm.Resources[1] = 50 // resource.Gold
	tm.Resources[0] = 999 // resource.Satoshi

	if !SpaceAdventureReturn(tm) {
		t.Fatalf("expected SpaceAdventureReturn to apply")
	}
	if tm.Resources[1] != 0 {
		t.Fatalf("expected non-satoshi resources zeroed, got %d", tm.Resources[1])
	}
	if tm.Resources[0] != 999 {
		t.Fatalf("expected satoshi preserved, got %d", tm.Resources[0])
	}
	if tm.CurrentLocation.Kind != team.OnPlanet {
		t.Fatalf("expected team back OnPlanet, got %v", tm.CurrentLocation.Kind)
	}
}

func TestHandleDrinkOrdinaryPlayerGetsMoraleBumpAndTirednessCost(t *testing.T) {
	planet := ids.NewPlanetId()
	tm := team.New("Crew", planet, 0)
	_ = tm.AddResource(resource.Rum, 1)

	r := rng.Deterministic(1, 2, 0)
	p := player.NewRandom(planet, player.Human, r)
	p.SpecialTrait = nil
	preMorale := p.Morale

	result, err := HandleDrink(tm, p, nil, 0, r)
	if err != nil {
		t.Fatalf("HandleDrink: %v", err)
	}
	if result.Teleported {
		t.Fatalf("expected a non-Spugna drink not to teleport")
	}
	if tm.Resources[resource.Rum] != 0 {
		t.Fatalf("expected RUM decremented to 0, got %d", tm.Resources[resource.Rum])
	}
	if p.Morale <= preMorale {
		t.Fatalf("expected morale to rise from drinking, got %v -> %v", preMorale, p.Morale)
	}
}

// TestHandleDrinkSpugnaPilotTeleportsMidFlight is the S3 scenario from spec
// §8: a Spugna-trait pilot drinking while the team is travelling teleports
// it to a random planet other than the original origin/destination,
// decrements RUM, leaves total_travelled untouched, and sets the drinker's
// morale to the skill ceiling.
func TestHandleDrinkSpugnaPilotTeleportsMidFlight(t *testing.T) {
	origin := ids.NewPlanetId()
	destination := ids.NewPlanetId()
	alternate := ids.NewPlanetId()
	planets := map[ids.PlanetId]*galaxy.Planet{
		origin:      {Id: origin},
		destination: {Id: destination, Name: "Destination"},
		alternate:   {Id: alternate, Name: "Alternate"},
	}

	tm := team.New("Crew", origin, 0)
	if err := StartTravel(tm, origin, destination, 5000, 100, 1.0, 0); err != nil {
		t.Fatalf("StartTravel: %v", err)
	}
	_ = tm.AddResource(resource.Rum, 1)

	r := rng.Deterministic(1, 2, 0)
	pilot := player.NewRandom(origin, player.Human, r)
	spugna := player.Spugna
	pilot.SpecialTrait = &spugna

	result, err := HandleDrink(tm, pilot, planets, 100, r)
	if err != nil {
		t.Fatalf("HandleDrink: %v", err)
	}
	if !result.Teleported {
		t.Fatalf("expected the Spugna pilot's drink to trigger a teleport")
	}
	if result.TargetPlanetId == origin || result.TargetPlanetId == destination {
		t.Fatalf("expected teleport target distinct from origin/destination, got %v", result.TargetPlanetId)
	}
	if tm.Resources[resource.Rum] != 0 {
		t.Fatalf("expected RUM decremented to 0, got %d", tm.Resources[resource.Rum])
	}
	if pilot.Morale != skill.MaxSkill {
		t.Fatalf("expected morale set to the skill ceiling, got %v", pilot.Morale)
	}

	target := planets[tm.CurrentLocation.To]
	if cb, landed := TickTravel(tm, target, nil, 101); !landed || cb == nil {
		t.Fatalf("expected the redirected (zero-duration) flight to land immediately")
	}
	if tm.TotalTravelledKm != 0 {
		t.Fatalf("expected total_travelled unchanged by a teleport, got %d", tm.TotalTravelledKm)
	}
	if tm.CurrentLocation.Kind != team.OnPlanet || tm.CurrentLocation.PlanetId != result.TargetPlanetId {
		t.Fatalf("expected team OnPlanet at the teleport target, got %+v", tm.CurrentLocation)
	}
}

func TestResourcesFoundAfterExplorationNonNegative(t *testing.T) {
	planet := &galaxy.Planet{
		BaseResources: []galaxy.ResourceAmount{{Resource: 1, Amount: 40}},
	}
	r := rng.Deterministic(1, 2, 3)
	found := resourcesFoundAfterExploration(planet, r, 1.0)
	for k, v := range found {
		if v < 0 {
			t.Fatalf("resource %v found negative amount %d", k, v)
		}
	}
}
