package spaceadventure

import "github.com/vitadek/piratecrew/internal/resource"

// fragmentHitBoxRadius and fragmentMagnetAcceleration are pinned from
// fragment.rs's HIT_BOX_RADIUS / MAGNET_ACCELERATION constants.
const (
	fragmentHitBoxRadius       = 40
	fragmentMagnetAcceleration = 35.0
	fragmentLifetime           = 10.0
	fragmentMaxSpeed           = 30.0
)

// FragmentEntity is a resource chunk released by a destroyed asteroid,
// grounded verbatim on fragment.rs: it decays after a fixed lifetime,
// drifts under explicit Euler integration, accelerates toward a collector
// that has latched onto it (the AccelerateEntity callback fragment.rs's
// handle_space_callback reacts to), and carries the resource/amount a
// Collector converts into team inventory on contact.
type FragmentEntity struct {
	id               int
	position         Vec2
	previousPosition Vec2
	velocity         Vec2
	acceleration     Vec2
	lifetime         float64
	hitBox           HitBox
	resource         resource.Kind
	amount           int
}

// NewFragment places a fragment at position with initial velocity,
// carrying amount units of resource (fragment.rs's FragmentEntity::new).
func NewFragment(position, velocity Vec2, r resource.Kind, amount int) *FragmentEntity {
	return &FragmentEntity{
		position:         position,
		previousPosition: position,
		velocity:         velocity,
		lifetime:         fragmentLifetime,
		hitBox:           NewCircularHitBox(fragmentHitBoxRadius),
		resource:         r,
		amount:           amount,
	}
}

func (f *FragmentEntity) SetId(id int) { f.id = id }
func (f *FragmentEntity) Id() int      { return f.id }
func (f *FragmentEntity) Layer() int   { return 1 }
func (f *FragmentEntity) HitBox() HitBox { return f.hitBox }

func (f *FragmentEntity) Position() Vec2         { return f.position }
func (f *FragmentEntity) PreviousPosition() Vec2 { return f.previousPosition }
func (f *FragmentEntity) Velocity() Vec2         { return f.velocity }

func (f *FragmentEntity) Rect() Rect {
	return Rect{Min: f.position.Sub(Vec2{X: fragmentHitBoxRadius, Y: fragmentHitBoxRadius}), Max: f.position.Add(Vec2{X: fragmentHitBoxRadius, Y: fragmentHitBoxRadius})}
}

func (f *FragmentEntity) PreviousRect() Rect {
	return Rect{Min: f.previousPosition.Sub(Vec2{X: fragmentHitBoxRadius, Y: fragmentHitBoxRadius}), Max: f.previousPosition.Add(Vec2{X: fragmentHitBoxRadius, Y: fragmentHitBoxRadius})}
}

// UpdateBody is fragment.rs's update_body: decay the lifetime, integrate
// position/velocity under explicit Euler clamped to fragmentMaxSpeed, and
// emit DestroyEntity once the lifetime expires or the fragment drifts off
// screen.
func (f *FragmentEntity) UpdateBody(deltatime float64) []Callback {
	f.lifetime -= deltatime
	if f.lifetime <= 0 {
		return []Callback{{Kind: DestroyEntity, Id: f.id}}
	}

	f.previousPosition = f.position
	f.velocity = f.velocity.Add(f.acceleration.Scale(deltatime)).ClampLength(fragmentMaxSpeed)
	f.position = f.position.Add(f.velocity.Scale(deltatime))
	f.acceleration = Vec2{}

	if f.position.X < 0 || f.position.X > ScreenWidth || f.position.Y < 0 || f.position.Y > ScreenHeight {
		return []Callback{{Kind: DestroyEntity, Id: f.id}}
	}
	return nil
}

func (f *FragmentEntity) UpdateSprite(deltatime float64) []Callback { return nil }

func (f *FragmentEntity) ColliderType() ColliderType { return ColliderFragment }
func (f *FragmentEntity) CollisionDamage() float32   { return 0 }

// Update has no behavior of its own beyond UpdateBody/UpdateSprite; present
// to satisfy GameEntity the same way entity.rs's delegate! macro routes
// Entity::update straight through to the concrete variant.
func (f *FragmentEntity) Update(deltatime float64) []Callback { return nil }

// HandleCallback reacts to AccelerateEntity by setting the fragment's
// acceleration toward whatever collector latched onto it, exactly
// fragment.rs's handle_space_callback match arm.
func (f *FragmentEntity) HandleCallback(cb Callback) []Callback {
	if cb.Kind == AccelerateEntity {
		f.acceleration = cb.Acceleration.Scale(fragmentMagnetAcceleration)
	}
	return nil
}

// Resource and Amount expose the payload a Collector consumes on contact
// (fragment.rs's ResourceFragment trait impl).
func (f *FragmentEntity) Resource() resource.Kind { return f.resource }
func (f *FragmentEntity) Amount() int             { return f.amount }
