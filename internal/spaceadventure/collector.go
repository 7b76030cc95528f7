package spaceadventure

const (
	collectorRadius = 20
	collectorRange  = 150
)

// CollectorEntity is the tractor-beam magnet the player's spaceship carries
// (entity.rs's Collector variant): it rides along with its owner and, in
// SpaceAdventure's collision pass, pulls any Fragment within collectorRange
// toward itself and emits a Collect callback on contact.
type CollectorEntity struct {
	id       int
	ownerId  int
	position Vec2
	hitBox   HitBox
}

// NewCollector attaches a collector to ownerId.
func NewCollector(ownerId int) *CollectorEntity {
	return &CollectorEntity{ownerId: ownerId, hitBox: NewCircularHitBox(collectorRadius)}
}

func (c *CollectorEntity) SetId(id int)      { c.id = id }
func (c *CollectorEntity) Id() int           { return c.id }
func (c *CollectorEntity) OwnerId() int      { return c.ownerId }
func (c *CollectorEntity) Layer() int        { return 2 }
func (c *CollectorEntity) HitBox() HitBox    { return c.hitBox }
func (c *CollectorEntity) Position() Vec2    { return c.position }
func (c *CollectorEntity) PreviousPosition() Vec2 { return c.position }
func (c *CollectorEntity) Velocity() Vec2    { return Vec2{} }

// Follow repositions the collector onto its owner each tick, like
// ShieldEntity.Follow.
func (c *CollectorEntity) Follow(ownerPosition Vec2) { c.position = ownerPosition }

func (c *CollectorEntity) Rect() Rect {
	return Rect{Min: c.position.Sub(Vec2{X: collectorRange, Y: collectorRange}), Max: c.position.Add(Vec2{X: collectorRange, Y: collectorRange})}
}
func (c *CollectorEntity) PreviousRect() Rect { return c.Rect() }

func (c *CollectorEntity) UpdateBody(deltatime float64) []Callback   { return nil }
func (c *CollectorEntity) UpdateSprite(deltatime float64) []Callback { return nil }
func (c *CollectorEntity) ColliderType() ColliderType                { return ColliderCollector }
func (c *CollectorEntity) CollisionDamage() float32                  { return 0 }
func (c *CollectorEntity) Update(deltatime float64) []Callback       { return nil }
func (c *CollectorEntity) HandleCallback(cb Callback) []Callback     { return nil }
