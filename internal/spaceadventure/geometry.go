// Package spaceadventure implements a single-threaded, real-time entity
// arena driven only by FAST ticks, with uniform Body/Sprite/Collider/
// GameEntity interfaces over spaceship/asteroid/projectile/shield/
// particle/fragment/collector entities.
//
// Grounded on original_source/src/space_adventure/entity.rs's Entity enum
// and delegate! macro (the Go equivalent is an interface plus one struct
// per concrete kind, dispatch via a type switch instead of a macro) and
// fragment.rs for the fragment entity's decay/magnet/collect behavior.
// Pixel-level rendering (RgbaImage, visual-effect image compositing) is
// out of scope here: the engine's Sprite contract tracks only the timers a
// renderer would need, not pixel data, mirroring the rest of this module's
// callbacks-carry-data-never-pixels separation from the UI layer.
package spaceadventure

import "math"

// Vec2 is a 2D float vector, the Go stand-in for glam::Vec2 in the
// original (no vector-math library is pulled in anywhere in the retrieval
// pack, so this is hand-rolled rather than borrowed).
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Length() float64      { return math.Hypot(v.X, v.Y) }

// ClampLength returns v clamped to at most max in magnitude, mirroring
// Vec2::clamp_length_max used throughout the original's update_body.
func (v Vec2) ClampLength(max float64) Vec2 {
	l := v.Length()
	if l <= max || l == 0 {
		return v
	}
	return v.Scale(max / l)
}

// Rect is an axis-aligned bounding box, min/max corners.
type Rect struct {
	Min, Max Vec2
}

// Overlaps reports whether r and o intersect, the broad-phase swept-AABB
// test run against previous/current rects before any narrow-phase check.
func (r Rect) Overlaps(o Rect) bool {
	return r.Min.X <= o.Max.X && r.Max.X >= o.Min.X &&
		r.Min.Y <= o.Max.Y && r.Max.Y >= o.Min.Y
}

// HitBox is the narrow-phase collision mask: a set of offsets from the
// entity's center that count as solid, the Go analogue of fragment.rs's
// `HashMap<I16Vec2, bool>` built by iterating a bounding circle. Plain
// (x*1000+y) integer keys stand in for the original's I16Vec2 key since Go
// maps can't key on a struct with `+` syntax as conveniently, but the
// semantics — "is this relative point solid" — are unchanged.
type HitBox map[int64]bool

func hitBoxKey(x, y int16) int64 {
	return int64(x)<<32 | int64(uint32(int32(y)))
}

// NewCircularHitBox builds a HitBox covering every integer offset within
// radius of the origin, exactly fragment.rs's FragmentEntity::new
// construction loop.
func NewCircularHitBox(radius int16) HitBox {
	hb := HitBox{}
	r2 := int32(radius) * int32(radius)
	for x := -radius; x <= radius; x++ {
		for y := -radius; y <= radius; y++ {
			if int32(x)*int32(x)+int32(y)*int32(y) <= r2 {
				hb[hitBoxKey(x, y)] = true
			}
		}
	}
	hb[hitBoxKey(0, 0)] = true
	return hb
}

// Overlaps reports whether two hit boxes, centered at centerA and centerB,
// share at least one solid offset: the narrow-phase check, reduced from
// pixel alpha to the boolean mask the original keys its HitBox on.
func (hb HitBox) Overlaps(centerA Vec2, other HitBox, centerB Vec2) bool {
	delta := centerB.Sub(centerA)
	dx, dy := int16(delta.X), int16(delta.Y)
	for key, solid := range hb {
		if !solid {
			continue
		}
		x := int16(key >> 32)
		y := int16(int32(key))
		ox, oy := x-dx, y-dy
		if other[hitBoxKey(ox, oy)] {
			return true
		}
	}
	return false
}
