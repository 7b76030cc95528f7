package spaceadventure

const (
	spaceshipRadius   = 30
	spaceshipMaxSpeed = 250.0
)

// SpaceshipEntity is the single player-controlled entity in the arena.
// Thrust is set externally by whatever reads terminal input (out of scope
// here); this package only integrates whatever thrust vector was last set.
type SpaceshipEntity struct {
	id               int
	position         Vec2
	previousPosition Vec2
	velocity         Vec2
	thrust           Vec2
	durability       float32
	hitBox           HitBox
	shieldActive     bool
}

// NewSpaceship places a fresh spaceship at position with full durability.
func NewSpaceship(position Vec2, durability float32) *SpaceshipEntity {
	return &SpaceshipEntity{
		position:         position,
		previousPosition: position,
		durability:       durability,
		hitBox:           NewCircularHitBox(spaceshipRadius),
	}
}

func (s *SpaceshipEntity) SetId(id int)      { s.id = id }
func (s *SpaceshipEntity) Id() int           { return s.id }
func (s *SpaceshipEntity) Layer() int        { return 2 }
func (s *SpaceshipEntity) HitBox() HitBox    { return s.hitBox }
func (s *SpaceshipEntity) Position() Vec2    { return s.position }
func (s *SpaceshipEntity) PreviousPosition() Vec2 { return s.previousPosition }
func (s *SpaceshipEntity) Velocity() Vec2    { return s.velocity }
func (s *SpaceshipEntity) Durability() float32 { return s.durability }

// SetThrust records the player's current thrust input, consumed on the next
// UpdateBody call.
func (s *SpaceshipEntity) SetThrust(t Vec2) { s.thrust = t }

// SetShieldActive toggles the shield the player is holding up, consulted by
// HandleCallback, which ignores incoming DamageEntity while it is up.
func (s *SpaceshipEntity) SetShieldActive(active bool) { s.shieldActive = active }

func (s *SpaceshipEntity) ShieldActive() bool { return s.shieldActive }

func (s *SpaceshipEntity) Rect() Rect {
	return Rect{Min: s.position.Sub(Vec2{X: spaceshipRadius, Y: spaceshipRadius}), Max: s.position.Add(Vec2{X: spaceshipRadius, Y: spaceshipRadius})}
}

func (s *SpaceshipEntity) PreviousRect() Rect {
	return Rect{Min: s.previousPosition.Sub(Vec2{X: spaceshipRadius, Y: spaceshipRadius}), Max: s.previousPosition.Add(Vec2{X: spaceshipRadius, Y: spaceshipRadius})}
}

// UpdateBody integrates position/velocity under explicit Euler, clamping
// speed and clipping to the screen.
func (s *SpaceshipEntity) UpdateBody(deltatime float64) []Callback {
	s.previousPosition = s.position
	s.velocity = s.velocity.Add(s.thrust.Scale(deltatime)).ClampLength(spaceshipMaxSpeed)
	s.position = s.position.Add(s.velocity.Scale(deltatime))

	if s.position.X < 0 {
		s.position.X = 0
	} else if s.position.X > ScreenWidth {
		s.position.X = ScreenWidth
	}
	if s.position.Y < 0 {
		s.position.Y = 0
	} else if s.position.Y > ScreenHeight {
		s.position.Y = ScreenHeight
	}
	return nil
}

func (s *SpaceshipEntity) UpdateSprite(deltatime float64) []Callback { return nil }
func (s *SpaceshipEntity) ColliderType() ColliderType                { return ColliderSpaceship }
func (s *SpaceshipEntity) CollisionDamage() float32                  { return 0 }
func (s *SpaceshipEntity) Update(deltatime float64) []Callback       { return nil }

// HandleCallback applies incoming damage unless the shield is up. Once
// Durability reaches zero, SpaceAdventure.Step terminates the adventure.
func (s *SpaceshipEntity) HandleCallback(cb Callback) []Callback {
	if cb.Kind == DamageEntity && !s.shieldActive {
		s.durability -= cb.Damage
	}
	return nil
}
