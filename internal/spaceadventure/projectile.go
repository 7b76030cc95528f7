package spaceadventure

const (
	projectileRadius   = 6
	projectileLifetime = 3.0
	projectileDamage   = 25
)

// ProjectileEntity is a spaceship-fired shot: travels in a straight line at
// constant velocity, expires after projectileLifetime seconds or on
// leaving the screen, and deals projectileDamage to asteroids it hits
// (resolved by SpaceAdventure's collision pass, not by the entity itself).
type ProjectileEntity struct {
	id               int
	ownerId          int
	position         Vec2
	previousPosition Vec2
	velocity         Vec2
	lifetime         float64
	hitBox           HitBox
}

// NewProjectile fires from position at velocity, owned by ownerId (exposed
// as OwnerId). The collision pass resolves projectiles only against
// asteroids, so a projectile never damages a spaceship.
func NewProjectile(position, velocity Vec2, ownerId int) *ProjectileEntity {
	return &ProjectileEntity{
		position:         position,
		previousPosition: position,
		velocity:         velocity,
		ownerId:          ownerId,
		lifetime:         projectileLifetime,
		hitBox:           NewCircularHitBox(projectileRadius),
	}
}

func (p *ProjectileEntity) SetId(id int)      { p.id = id }
func (p *ProjectileEntity) Id() int           { return p.id }
func (p *ProjectileEntity) OwnerId() int      { return p.ownerId }
func (p *ProjectileEntity) Layer() int        { return 1 }
func (p *ProjectileEntity) HitBox() HitBox    { return p.hitBox }
func (p *ProjectileEntity) Position() Vec2    { return p.position }
func (p *ProjectileEntity) PreviousPosition() Vec2 { return p.previousPosition }
func (p *ProjectileEntity) Velocity() Vec2    { return p.velocity }

func (p *ProjectileEntity) Rect() Rect {
	return Rect{Min: p.position.Sub(Vec2{X: projectileRadius, Y: projectileRadius}), Max: p.position.Add(Vec2{X: projectileRadius, Y: projectileRadius})}
}

func (p *ProjectileEntity) PreviousRect() Rect {
	return Rect{Min: p.previousPosition.Sub(Vec2{X: projectileRadius, Y: projectileRadius}), Max: p.previousPosition.Add(Vec2{X: projectileRadius, Y: projectileRadius})}
}

func (p *ProjectileEntity) UpdateBody(deltatime float64) []Callback {
	p.lifetime -= deltatime
	if p.lifetime <= 0 {
		return []Callback{{Kind: DestroyEntity, Id: p.id}}
	}

	p.previousPosition = p.position
	p.position = p.position.Add(p.velocity.Scale(deltatime))

	if p.position.X < 0 || p.position.X > ScreenWidth || p.position.Y < 0 || p.position.Y > ScreenHeight {
		return []Callback{{Kind: DestroyEntity, Id: p.id}}
	}
	return nil
}

func (p *ProjectileEntity) UpdateSprite(deltatime float64) []Callback { return nil }
func (p *ProjectileEntity) ColliderType() ColliderType                { return ColliderProjectile }
func (p *ProjectileEntity) CollisionDamage() float32                  { return projectileDamage }
func (p *ProjectileEntity) Update(deltatime float64) []Callback       { return nil }
func (p *ProjectileEntity) HandleCallback(cb Callback) []Callback     { return nil }
