package spaceadventure

const particleRadius = 3

// ParticleEntity is a short-lived cosmetic effect (impact sparks, engine
// trail), grounded on entity.rs's Particle variant: pure decoration, it
// never takes part in damage resolution and carries no hit box solid
// points, so collision detection skips it entirely.
type ParticleEntity struct {
	id               int
	position         Vec2
	previousPosition Vec2
	velocity         Vec2
	lifetime         float64
}

// NewParticle spawns a decaying visual-only particle at position.
func NewParticle(position, velocity Vec2, lifetime float64) *ParticleEntity {
	return &ParticleEntity{position: position, previousPosition: position, velocity: velocity, lifetime: lifetime}
}

func (p *ParticleEntity) SetId(id int)      { p.id = id }
func (p *ParticleEntity) Id() int           { return p.id }
func (p *ParticleEntity) Layer() int        { return 3 }
func (p *ParticleEntity) HitBox() HitBox    { return HitBox{} }
func (p *ParticleEntity) Position() Vec2    { return p.position }
func (p *ParticleEntity) PreviousPosition() Vec2 { return p.previousPosition }
func (p *ParticleEntity) Velocity() Vec2    { return p.velocity }

func (p *ParticleEntity) Rect() Rect {
	return Rect{Min: p.position.Sub(Vec2{X: particleRadius, Y: particleRadius}), Max: p.position.Add(Vec2{X: particleRadius, Y: particleRadius})}
}
func (p *ParticleEntity) PreviousRect() Rect {
	return Rect{Min: p.previousPosition.Sub(Vec2{X: particleRadius, Y: particleRadius}), Max: p.previousPosition.Add(Vec2{X: particleRadius, Y: particleRadius})}
}

func (p *ParticleEntity) UpdateBody(deltatime float64) []Callback {
	p.lifetime -= deltatime
	if p.lifetime <= 0 {
		return []Callback{{Kind: DestroyEntity, Id: p.id}}
	}
	p.previousPosition = p.position
	p.position = p.position.Add(p.velocity.Scale(deltatime))
	return nil
}

func (p *ParticleEntity) UpdateSprite(deltatime float64) []Callback { return nil }
func (p *ParticleEntity) ColliderType() ColliderType                { return ColliderParticle }
func (p *ParticleEntity) CollisionDamage() float32                  { return 0 }
func (p *ParticleEntity) Update(deltatime float64) []Callback       { return nil }
func (p *ParticleEntity) HandleCallback(cb Callback) []Callback     { return nil }
