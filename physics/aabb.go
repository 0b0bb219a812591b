// Copyright © 2024 Galvanized Logic Inc.

package physics

import "github.com/pellucid/phys2d/math/lin"

// Vec2 re-exports the module's vector type so callers of this package's
// public API (Listener, World queries) don't need to import math/lin
// themselves for the common case.
type Vec2 = lin.Vec2

// AABB is an axis-aligned bounding box: the smallest box, aligned to the
// world axes, that contains some geometry. Every proxy the broad phase
// tracks and every shape's Compute_aabb result is one of these.
type AABB struct {
	Lower, Upper lin.Vec2
}

// NewAABB builds an AABB from its corners.
func NewAABB(lower, upper lin.Vec2) AABB { return AABB{Lower: lower, Upper: upper} }

// IsValid reports whether the box is well formed (lower <= upper on both
// axes and every component finite).
func (a AABB) IsValid() bool {
	d := a.Upper.Sub(a.Lower)
	if d[0] < 0 || d[1] < 0 {
		return false
	}
	return isFinite(a.Lower[0]) && isFinite(a.Lower[1]) && isFinite(a.Upper[0]) && isFinite(a.Upper[1])
}

// Center returns the midpoint of the box.
func (a AABB) Center() lin.Vec2 { return a.Lower.Add(a.Upper).Mul(0.5) }

// Extents returns the half-width, half-height of the box.
func (a AABB) Extents() lin.Vec2 { return a.Upper.Sub(a.Lower).Mul(0.5) }

// Perimeter returns twice the sum of the box's width and height -- it is
// what the tree's insertion heuristic and area-ratio metric minimize,
// not true area, because perimeter is cheap and works in any dimension.
func (a AABB) Perimeter() float64 {
	w := a.Upper[0] - a.Lower[0]
	h := a.Upper[1] - a.Lower[1]
	return 2 * (w + h)
}

// Union returns the smallest AABB containing both a and b.
func (a AABB) Union(b AABB) AABB {
	return AABB{Lower: lin.MinV(a.Lower, b.Lower), Upper: lin.MaxV(a.Upper, b.Upper)}
}

// Contains reports whether b is entirely inside a.
func (a AABB) Contains(b AABB) bool {
	return a.Lower[0] <= b.Lower[0] && a.Lower[1] <= b.Lower[1] &&
		b.Upper[0] <= a.Upper[0] && b.Upper[1] <= a.Upper[1]
}

// Overlaps reports whether a and b intersect, including touching edges.
func Overlaps(a, b AABB) bool {
	d1 := lin.Vec2{b.Lower[0] - a.Upper[0], b.Lower[1] - a.Upper[1]}
	d2 := lin.Vec2{a.Lower[0] - b.Upper[0], a.Lower[1] - b.Upper[1]}
	if d1[0] > 0 || d1[1] > 0 {
		return false
	}
	if d2[0] > 0 || d2[1] > 0 {
		return false
	}
	return true
}

// Extend grows a by a fixed margin on every side and returns the result.
func (a AABB) Extend(margin float64) AABB {
	m := lin.Vec2{margin, margin}
	return AABB{Lower: a.Lower.Sub(m), Upper: a.Upper.Add(m)}
}

// Translate offsets the whole box by delta.
func (a AABB) Translate(delta lin.Vec2) AABB {
	return AABB{Lower: a.Lower.Add(delta), Upper: a.Upper.Add(delta)}
}

func isFinite(f float64) bool { return f == f && f < 1e300 && f > -1e300 }
