package spaceadventure

import (
	"testing"

	"github.com/vitadek/piratecrew/internal/resource"
	"github.com/vitadek/piratecrew/internal/rng"
)

func TestVec2ClampLength(t *testing.T) {
	v := Vec2{X: 30, Y: 40} // length 50
	clamped := v.ClampLength(10)
	if got := clamped.Length(); got > 10.0001 {
		t.Fatalf("expected length <= 10, got %v", got)
	}

	under := Vec2{X: 1, Y: 0}.ClampLength(10)
	if under != (Vec2{X: 1, Y: 0}) {
		t.Fatalf("expected vector under the cap to pass through unchanged, got %v", under)
	}
}

func TestHitBoxOverlaps(t *testing.T) {
	a := NewCircularHitBox(10)
	b := NewCircularHitBox(10)

	if !a.Overlaps(Vec2{X: 0, Y: 0}, b, Vec2{X: 5, Y: 0}) {
		t.Fatalf("expected overlapping hit boxes 5 apart with radius 10 each")
	}
	if a.Overlaps(Vec2{X: 0, Y: 0}, b, Vec2{X: 100, Y: 100}) {
		t.Fatalf("expected no overlap far apart")
	}
}

func TestSpaceshipUpdateBodyClipsToScreen(t *testing.T) {
	s := NewSpaceship(Vec2{X: 5, Y: 5}, 100)
	s.SetThrust(Vec2{X: -1000, Y: -1000})
	for i := 0; i < 5; i++ {
		s.UpdateBody(0.1)
	}
	if s.Position().X < 0 || s.Position().Y < 0 {
		t.Fatalf("expected spaceship clipped to non-negative screen coords, got %v", s.Position())
	}
}

func TestAsteroidUpdateBodyWraps(t *testing.T) {
	a := NewAsteroid(Vec2{X: -asteroidRadius - 1, Y: 0}, Vec2{}, 10, nil)
	a.UpdateBody(0)
	if a.Position().X != ScreenWidth+asteroidRadius {
		t.Fatalf("expected asteroid to wrap to the opposite edge, got %v", a.Position())
	}
}

func TestAsteroidDestroyedAtZeroHealth(t *testing.T) {
	a := NewAsteroid(Vec2{}, Vec2{}, 10, map[resource.Kind]int{resource.Gold: 5})
	callbacks := a.HandleCallback(Callback{Kind: DamageEntity, Damage: 5})
	if len(callbacks) != 0 {
		t.Fatalf("expected no destroy callback yet, got %v", callbacks)
	}
	callbacks = a.HandleCallback(Callback{Kind: DamageEntity, Damage: 10})
	if len(callbacks) != 1 || callbacks[0].Kind != DestroyEntity {
		t.Fatalf("expected a DestroyEntity callback once health is exhausted, got %v", callbacks)
	}
}

func TestAsteroidFragmentsCarryPayload(t *testing.T) {
	payload := map[resource.Kind]int{resource.Gold: 3, resource.Gem: 2}
	a := NewAsteroid(Vec2{X: 100, Y: 100}, Vec2{}, 10, payload)
	r := rng.Deterministic(1, 2, 3)

	frags := a.Fragments(r)
	if len(frags) != len(payload) {
		t.Fatalf("expected %d fragments, got %d", len(payload), len(frags))
	}
	total := map[resource.Kind]int{}
	for _, f := range frags {
		total[f.Resource()] += f.Amount()
	}
	for kind, amount := range payload {
		if total[kind] != amount {
			t.Fatalf("expected fragment payload %d for %v, got %d", amount, kind, total[kind])
		}
	}
}

func TestProjectileDestroysAsteroidOnContact(t *testing.T) {
	sa := NewSpaceAdventure(100)
	astId := sa.SpawnAsteroid(Vec2{X: 400, Y: 300}, Vec2{}, 10, map[resource.Kind]int{resource.Gold: 1})

	proj := NewProjectile(Vec2{X: 400, Y: 300}, Vec2{}, sa.spaceship.Id())
	sa.addEntity(proj)

	r := rng.Deterministic(7, 9, 1)
	sa.Step(0, r)

	if _, ok := sa.entities[astId]; ok {
		t.Fatalf("expected asteroid destroyed by direct projectile hit")
	}
	foundFragment := false
	for _, e := range sa.entities {
		if _, ok := e.(*FragmentEntity); ok {
			foundFragment = true
		}
	}
	if !foundFragment {
		t.Fatalf("expected a fragment spawned from the destroyed asteroid's payload")
	}
}

func TestAsteroidDamagesSpaceshipOnContact(t *testing.T) {
	sa := NewSpaceAdventure(100)
	sa.SpawnAsteroid(sa.spaceship.Position(), Vec2{}, 1000, nil)

	r := rng.Deterministic(1, 1, 1)
	startDurability := sa.spaceship.Durability()
	sa.Step(0, r)

	if sa.spaceship.Durability() >= startDurability {
		t.Fatalf("expected spaceship to take collision damage from the asteroid")
	}
}

func TestCollectorPullsAndCollectsFragment(t *testing.T) {
	sa := NewSpaceAdventure(100)
	frag := NewFragment(sa.spaceship.Position().Add(Vec2{X: 80, Y: 0}), Vec2{}, resource.Gem, 4)
	fragId := sa.addEntity(frag)

	r := rng.Deterministic(2, 2, 2)
	// Far enough apart that the first tick only accelerates the fragment
	// toward the collector, not collects it outright.
	sa.Step(0.05, r)
	if _, ok := sa.entities[fragId]; !ok {
		t.Fatalf("expected fragment to still exist after the pull-only tick")
	}

	for i := 0; i < 100; i++ {
		sa.Step(0.05, r)
		if sa.collected[resource.Gem] > 0 {
			break
		}
	}
	if sa.collected[resource.Gem] != 4 {
		t.Fatalf("expected 4 gems collected, got %d", sa.collected[resource.Gem])
	}
}

func TestAdventureTerminatesAtZeroDurability(t *testing.T) {
	sa := NewSpaceAdventure(5)
	sa.SpawnAsteroid(sa.spaceship.Position(), Vec2{}, 1000, nil)

	r := rng.Deterministic(3, 3, 3)
	for i := 0; i < 5 && !sa.Done(); i++ {
		sa.Step(0, r)
	}

	if !sa.Done() {
		t.Fatalf("expected the adventure to terminate once durability reached zero")
	}

	durabilityAtEnd := sa.spaceship.Durability()
	sa.Step(0, r)
	if sa.spaceship.Durability() != durabilityAtEnd {
		t.Fatalf("expected Step to be a no-op once the adventure is done")
	}
}

func TestFireSpawnsProjectileTowardDirection(t *testing.T) {
	sa := NewSpaceAdventure(100)
	before := len(sa.entities)
	sa.Fire(Vec2{X: 1, Y: 0})
	if len(sa.entities) != before+1 {
		t.Fatalf("expected Fire to add one projectile entity")
	}

	// A zero-length direction must not spawn anything.
	sa.Fire(Vec2{})
	if len(sa.entities) != before+1 {
		t.Fatalf("expected Fire with a zero direction to be a no-op")
	}
}
