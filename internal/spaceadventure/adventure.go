package spaceadventure

import (
	"sort"

	"github.com/vitadek/piratecrew/internal/resource"
	"github.com/vitadek/piratecrew/internal/rng"
)

const projectileFireSpeed = 400.0

// SpaceAdventure is the entity arena itself: every spaceship/asteroid/
// projectile/shield/collector/fragment/particle in play, advanced one FAST
// tick at a time by Step. Grounded on entity.rs's top-level game loop
// (update_body -> update_sprite -> collision -> handle_space_callback),
// generalized here into four explicit passes over a plain id-keyed map
// instead of an ECS World.
type SpaceAdventure struct {
	entities  map[int]GameEntity
	nextId    int
	spaceship *SpaceshipEntity
	collector *CollectorEntity
	shield    *ShieldEntity
	collected map[resource.Kind]int
	done      bool
}

// NewSpaceAdventure starts a fresh arena: a single player spaceship at
// screen center with durability hit points, plus its attached shield and
// collector.
func NewSpaceAdventure(durability float32) *SpaceAdventure {
	sa := &SpaceAdventure{entities: map[int]GameEntity{}, collected: map[resource.Kind]int{}}

	ship := NewSpaceship(Vec2{X: ScreenWidth / 2, Y: ScreenHeight / 2}, durability)
	shipId := sa.addEntity(ship)
	sa.spaceship = ship

	sa.shield = NewShield(shipId)
	sa.addEntity(sa.shield)

	sa.collector = NewCollector(shipId)
	sa.addEntity(sa.collector)

	return sa
}

func (sa *SpaceAdventure) addEntity(e GameEntity) int {
	id := sa.nextId
	sa.nextId++
	e.SetId(id)
	sa.entities[id] = e
	return id
}

func (sa *SpaceAdventure) sortedIds() []int {
	ids := make([]int, 0, len(sa.entities))
	for id := range sa.entities {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// SpawnAsteroid adds an asteroid hazard/resource source to the arena,
// returning its id.
func (sa *SpaceAdventure) SpawnAsteroid(position, velocity Vec2, health float32, payload map[resource.Kind]int) int {
	return sa.addEntity(NewAsteroid(position, velocity, health, payload))
}

// Spaceship exposes the player entity so callers (travel/world) can read
// its position and set thrust/shield state between ticks.
func (sa *SpaceAdventure) Spaceship() *SpaceshipEntity { return sa.spaceship }

// Fire launches a projectile from the spaceship's current position toward
// direction, a no-op if direction has zero length.
func (sa *SpaceAdventure) Fire(direction Vec2) {
	l := direction.Length()
	if l == 0 {
		return
	}
	velocity := direction.Scale(projectileFireSpeed / l)
	sa.addEntity(NewProjectile(sa.spaceship.Position(), velocity, sa.spaceship.Id()))
}

// Collected returns the resources gathered so far via Collect callbacks.
// Nothing in this package adds them to a team's inventory.
func (sa *SpaceAdventure) Collected() map[resource.Kind]int { return sa.collected }

// Done reports whether the adventure has terminated: the spaceship's
// durability reached zero.
func (sa *SpaceAdventure) Done() bool { return sa.done }

// Step advances the arena by deltatime seconds through the four update
// passes, then checks the cancellation condition. r supplies the
// randomness asteroid-death fragment scattering needs.
func (sa *SpaceAdventure) Step(deltatime float64, r *rng.Rand) {
	if sa.done {
		return
	}

	ids := sa.sortedIds()
	var callbacks []Callback

	for _, id := range ids {
		callbacks = append(callbacks, sa.entities[id].UpdateBody(deltatime)...)
	}
	sa.shield.Follow(sa.spaceship.Position(), sa.spaceship.ShieldActive())
	sa.collector.Follow(sa.spaceship.Position())

	for _, id := range sa.sortedIds() {
		callbacks = append(callbacks, sa.entities[id].UpdateSprite(deltatime)...)
	}

	callbacks = append(callbacks, sa.collide()...)

	sa.applyCallbacks(callbacks, r)

	if sa.spaceship.Durability() <= 0 {
		sa.done = true
	}
}

// collide runs broad-phase AABB against both previous and current rects
// (so fast-moving bodies can't tunnel through each other between ticks),
// then the narrow-phase hit-box test, over every entity pair.
func (sa *SpaceAdventure) collide() []Callback {
	ids := sa.sortedIds()
	var callbacks []Callback

	for i, idA := range ids {
		a, ok := sa.entities[idA]
		if !ok {
			continue
		}
		for _, idB := range ids[i+1:] {
			b, ok := sa.entities[idB]
			if !ok {
				continue
			}
			if !a.Rect().Overlaps(b.Rect()) && !a.PreviousRect().Overlaps(b.PreviousRect()) {
				continue
			}
			callbacks = append(callbacks, sa.resolvePair(a, b)...)
		}
	}
	return callbacks
}

// resolvePair dispatches a single broad-phase hit between a and b by
// collider type, narrowing to the hit-box test for every pair except the
// collector/fragment magnet, which acts on the wider broad-phase rect
// alone (the magnet pulls before contact).
func (sa *SpaceAdventure) resolvePair(a, b GameEntity) []Callback {
	ta, tb := a.ColliderType(), b.ColliderType()

	if ta == ColliderCollector && tb == ColliderFragment {
		return sa.resolveCollectorFragment(a, b)
	}
	if ta == ColliderFragment && tb == ColliderCollector {
		return sa.resolveCollectorFragment(b, a)
	}

	if !a.HitBox().Overlaps(a.Position(), b.HitBox(), b.Position()) {
		return nil
	}

	switch {
	case ta == ColliderProjectile && tb == ColliderAsteroid:
		return []Callback{
			{Kind: DamageEntity, Id: b.Id(), Damage: a.CollisionDamage()},
			{Kind: DestroyEntity, Id: a.Id()},
		}
	case ta == ColliderAsteroid && tb == ColliderProjectile:
		return sa.resolvePair(b, a)
	case ta == ColliderAsteroid && tb == ColliderSpaceship:
		return []Callback{{Kind: DamageEntity, Id: b.Id(), Damage: a.CollisionDamage()}}
	case ta == ColliderSpaceship && tb == ColliderAsteroid:
		return sa.resolvePair(b, a)
	}
	return nil
}

// resolveCollectorFragment implements the magnet-then-collect behavior
// fragment.rs's AccelerateEntity callback exists to serve: a fragment
// within collector range accelerates toward the collector every tick, and
// is consumed once it actually touches the collector's hit box.
func (sa *SpaceAdventure) resolveCollectorFragment(collector, fragment GameEntity) []Callback {
	if collector.HitBox().Overlaps(collector.Position(), fragment.HitBox(), fragment.Position()) {
		f := fragment.(*FragmentEntity)
		return []Callback{
			{Kind: Collect, Id: fragment.Id(), Resource: f.Resource(), Amount: f.Amount()},
			{Kind: DestroyEntity, Id: fragment.Id()},
		}
	}

	delta := collector.Position().Sub(fragment.Position())
	l := delta.Length()
	if l == 0 {
		return nil
	}
	return []Callback{{Kind: AccelerateEntity, Id: fragment.Id(), Acceleration: delta.Scale(1 / l)}}
}

// applyCallbacks drains the callback queue breadth-first: DestroyEntity
// removes the entity (spawning an asteroid's fragments first), Collect
// folds into the collected total, and everything else is routed through
// the target entity's HandleCallback, whose own return value is
// re-enqueued (a DamageEntity callback can itself produce a DestroyEntity
// once health is exhausted).
func (sa *SpaceAdventure) applyCallbacks(callbacks []Callback, r *rng.Rand) {
	pending := callbacks
	destroyed := map[int]bool{}

	for len(pending) > 0 {
		cb := pending[0]
		pending = pending[1:]

		switch cb.Kind {
		case DestroyEntity:
			if destroyed[cb.Id] {
				continue
			}
			e, ok := sa.entities[cb.Id]
			if !ok {
				continue
			}
			destroyed[cb.Id] = true
			if ast, ok := e.(*AsteroidEntity); ok {
				for _, frag := range ast.Fragments(r) {
					sa.addEntity(frag)
				}
			}
			delete(sa.entities, cb.Id)
		case Collect:
			sa.collected[cb.Resource] += cb.Amount
		default:
			e, ok := sa.entities[cb.Id]
			if !ok || destroyed[cb.Id] {
				continue
			}
			pending = append(pending, e.HandleCallback(cb)...)
		}
	}
}
