package spaceadventure

import "github.com/vitadek/piratecrew/internal/resource"

// ColliderType discriminates what an entity collides as, grounded on
// entity.rs's Entity enum variants. The Particle/Shield cosmetics have a
// ColliderType too, but no case of the collision pass resolves them.
type ColliderType int

const (
	ColliderAsteroid ColliderType = iota
	ColliderCollector
	ColliderFragment
	ColliderProjectile
	ColliderShield
	ColliderSpaceship
	ColliderParticle
)

// EntityState mirrors utils::EntityState's Decaying{lifetime} variant,
// the only state fragment.rs and particle.go need (a timed self-destruct).
type EntityState struct {
	Decaying bool
	Lifetime float64
}

// CallbackKind discriminates a SpaceCallback's payload, grounded on
// space_callback::SpaceCallback's variants referenced across entity.rs and
// fragment.rs (DestroyEntity, DamageEntity, AccelerateEntity, Collect).
type CallbackKind int

const (
	DestroyEntity CallbackKind = iota
	DamageEntity
	AccelerateEntity
	Collect
)

// Callback is a single emitted event from an update/collision pass,
// applied by SpaceAdventure.applyCallbacks after the full entity sweep
// completes; applying one may spawn new entities (an asteroid's death
// callback spawning its fragments, for instance).
type Callback struct {
	Kind CallbackKind
	Id   int

	Damage       float32 // DamageEntity
	Acceleration Vec2    // AccelerateEntity

	Resource resource.Kind // Collect
	Amount   int           // Collect
}

// Body is the physics contract every entity satisfies: position, velocity,
// and the axis-aligned rect used for broad-phase collision.
type Body interface {
	Position() Vec2
	PreviousPosition() Vec2
	Velocity() Vec2
	Rect() Rect
	PreviousRect() Rect
	UpdateBody(deltatime float64) []Callback
}

// Sprite is the animation/visual-effect contract; image pixel data itself
// is out of scope here (see package doc comment), so this tracks only the
// hit box a renderer would composite against and the layer it draws on.
type Sprite interface {
	Layer() int
	HitBox() HitBox
	UpdateSprite(deltatime float64) []Callback
}

// Collider is the collision contract: what type this entity collides as,
// and how much damage it deals on contact.
type Collider interface {
	ColliderType() ColliderType
	CollisionDamage() float32
}

// GameEntity is the arena-membership contract: an id, a draw layer, a
// per-tick update, and a way to absorb callbacks the collision pass emits.
type GameEntity interface {
	Body
	Sprite
	Collider
	SetId(id int)
	Id() int
	Update(deltatime float64) []Callback
	HandleCallback(cb Callback) []Callback
}

// Screen bounds pinned from original_source/src/space_adventure/constants.rs
// (SCREEN_WIDTH / SCREEN_HEIGHT), used by each entity's UpdateBody to clip
// or wrap at the edges.
const (
	ScreenWidth  = 800
	ScreenHeight = 600
)
