package spaceadventure

import (
	"math"

	"github.com/vitadek/piratecrew/internal/resource"
	"github.com/vitadek/piratecrew/internal/rng"
)

const asteroidRadius = 60

// AsteroidEntity is a static-ish hazard/resource source: it drifts slowly,
// absorbs projectile damage, and on death spawns a spread of FragmentEntity
// instances carrying the resources it was seeded with, grounded on
// entity.rs's Asteroid variant plus the fragment-on-death behavior
// fragment.rs exists to serve.
type AsteroidEntity struct {
	id               int
	position         Vec2
	previousPosition Vec2
	velocity         Vec2
	health           float32
	hitBox           HitBox
	payload          map[resource.Kind]int
}

// NewAsteroid places a stationary-drift asteroid at position, carrying
// payload resources to release as fragments on death.
func NewAsteroid(position, velocity Vec2, health float32, payload map[resource.Kind]int) *AsteroidEntity {
	return &AsteroidEntity{
		position:         position,
		previousPosition: position,
		velocity:         velocity,
		health:           health,
		hitBox:           NewCircularHitBox(asteroidRadius),
		payload:          payload,
	}
}

func (a *AsteroidEntity) SetId(id int)      { a.id = id }
func (a *AsteroidEntity) Id() int           { return a.id }
func (a *AsteroidEntity) Layer() int        { return 0 }
func (a *AsteroidEntity) HitBox() HitBox    { return a.hitBox }
func (a *AsteroidEntity) Position() Vec2    { return a.position }
func (a *AsteroidEntity) PreviousPosition() Vec2 { return a.previousPosition }
func (a *AsteroidEntity) Velocity() Vec2    { return a.velocity }

func (a *AsteroidEntity) Rect() Rect {
	return Rect{Min: a.position.Sub(Vec2{X: asteroidRadius, Y: asteroidRadius}), Max: a.position.Add(Vec2{X: asteroidRadius, Y: asteroidRadius})}
}

func (a *AsteroidEntity) PreviousRect() Rect {
	return Rect{Min: a.previousPosition.Sub(Vec2{X: asteroidRadius, Y: asteroidRadius}), Max: a.previousPosition.Add(Vec2{X: asteroidRadius, Y: asteroidRadius})}
}

func (a *AsteroidEntity) UpdateBody(deltatime float64) []Callback {
	a.previousPosition = a.position
	a.position = a.position.Add(a.velocity.Scale(deltatime))

	if a.position.X < -asteroidRadius {
		a.position.X = ScreenWidth + asteroidRadius
	} else if a.position.X > ScreenWidth+asteroidRadius {
		a.position.X = -asteroidRadius
	}
	if a.position.Y < -asteroidRadius {
		a.position.Y = ScreenHeight + asteroidRadius
	} else if a.position.Y > ScreenHeight+asteroidRadius {
		a.position.Y = -asteroidRadius
	}
	return nil
}

func (a *AsteroidEntity) UpdateSprite(deltatime float64) []Callback { return nil }
func (a *AsteroidEntity) ColliderType() ColliderType                { return ColliderAsteroid }
func (a *AsteroidEntity) CollisionDamage() float32                  { return 10 }
func (a *AsteroidEntity) Update(deltatime float64) []Callback       { return nil }

// HandleCallback applies DamageEntity and, once health is exhausted,
// requests the asteroid's own destruction (SpaceAdventure.applyCallbacks
// reacts to the DestroyEntity by spawning fragments — see Fragments()).
func (a *AsteroidEntity) HandleCallback(cb Callback) []Callback {
	if cb.Kind != DamageEntity {
		return nil
	}
	a.health -= cb.Damage
	if a.health <= 0 {
		return []Callback{{Kind: DestroyEntity, Id: a.id}}
	}
	return nil
}

// Fragments scatters the asteroid's payload into a ring of FragmentEntity
// instances around its last position, applied when an asteroid's health
// reaches zero and SpaceAdventure spawns its fragments.
func (a *AsteroidEntity) Fragments(r *rng.Rand) []*FragmentEntity {
	out := make([]*FragmentEntity, 0, len(a.payload))
	i := 0
	for kind, amount := range a.payload {
		angle := float64(i) * (2 * 3.14159265 / float64(len(a.payload)+1))
		speed := 10.0 + r.Float64()*10.0
		velocity := Vec2{X: speed * math.Cos(angle), Y: speed * math.Sin(angle)}
		out = append(out, NewFragment(a.position, velocity, kind, amount))
		i++
	}
	return out
}
