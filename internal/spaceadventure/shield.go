package spaceadventure

const shieldRadius = 40

// ShieldEntity tracks alongside the spaceship while its shield is held up;
// it exists as a distinct arena entity (rather than a spaceship field)
// purely so it participates in the same broad-phase pass everything else
// does, matching entity.rs's Shield variant.
type ShieldEntity struct {
	id       int
	ownerId  int
	position Vec2
	hitBox   HitBox
	active   bool
}

// NewShield attaches a shield to ownerId, initially inactive.
func NewShield(ownerId int) *ShieldEntity {
	return &ShieldEntity{ownerId: ownerId, hitBox: NewCircularHitBox(shieldRadius)}
}

func (s *ShieldEntity) SetId(id int)      { s.id = id }
func (s *ShieldEntity) Id() int           { return s.id }
func (s *ShieldEntity) OwnerId() int      { return s.ownerId }
func (s *ShieldEntity) Layer() int        { return 2 }
func (s *ShieldEntity) HitBox() HitBox    { return s.hitBox }
func (s *ShieldEntity) Position() Vec2    { return s.position }
func (s *ShieldEntity) PreviousPosition() Vec2 { return s.position }
func (s *ShieldEntity) Velocity() Vec2    { return Vec2{} }
func (s *ShieldEntity) Active() bool      { return s.active }

// Follow repositions the shield onto its owner, called once per tick by
// SpaceAdventure before the collision pass.
func (s *ShieldEntity) Follow(ownerPosition Vec2, active bool) {
	s.position = ownerPosition
	s.active = active
}

func (s *ShieldEntity) Rect() Rect {
	return Rect{Min: s.position.Sub(Vec2{X: shieldRadius, Y: shieldRadius}), Max: s.position.Add(Vec2{X: shieldRadius, Y: shieldRadius})}
}
func (s *ShieldEntity) PreviousRect() Rect { return s.Rect() }

func (s *ShieldEntity) UpdateBody(deltatime float64) []Callback   { return nil }
func (s *ShieldEntity) UpdateSprite(deltatime float64) []Callback { return nil }
func (s *ShieldEntity) ColliderType() ColliderType                { return ColliderShield }
func (s *ShieldEntity) CollisionDamage() float32                  { return 0 }
func (s *ShieldEntity) Update(deltatime float64) []Callback       { return nil }
func (s *ShieldEntity) HandleCallback(cb Callback) []Callback     { return nil }
