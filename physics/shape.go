// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"math"

	"github.com/pellucid/phys2d/math/lin"
)

// Shape is a physics collision primitive used for 2D collision detection.
// A Shape is always defined in local space; combine it with a Transform to
// place it anywhere in world space. Shapes are immutable once constructed
// and may be shared by more than one Fixture.
type Shape interface {
	Type() ShapeType // Type returns the shape's tag.

	// ChildCount returns the number of independently-collidable children.
	// Disk, Edge and Polygon always return 1; Chain returns len(edges).
	ChildCount() int

	// Child returns a DistanceProxy view over child i, used by GJK (§4.3)
	// and the manifold builder (§4.5).
	Child(i int) DistanceProxy

	// ComputeAABB returns the tight AABB of child i under transform xf.
	ComputeAABB(xf lin.T, i int) AABB

	// MassData returns the mass, center of mass and rotational inertia
	// (about the shape's local origin) this shape would have at the given
	// density.
	MassData(density float64) MassData

	// TestPoint reports whether world point p lies inside the shape
	// placed at transform xf.
	TestPoint(xf lin.T, p lin.Vec2) bool

	// RayCast intersects a ray (already expressed in the shape's local
	// frame via xf) against child i. ok is false if there is no hit within
	// [0, input.MaxFraction].
	RayCast(xf lin.T, i int, input RayCastInput) (output RayCastOutput, ok bool)
}

// ShapeType enumerates the shapes the manifold builder's dispatch table (§4.5,
// §9) switches on.
type ShapeType int

const (
	DiskShapeType ShapeType = iota
	EdgeShapeType
	PolygonShapeType
	ChainShapeType
	numShapeTypes
)

// MassData is the output of Shape.MassData.
type MassData struct {
	Mass   float64
	Center lin.Vec2
	I      float64 // rotational inertia about the shape's local origin
}

// RayCastInput is a ray segment p1->p2, valid over fractions [0, MaxFraction].
type RayCastInput struct {
	P1, P2      lin.Vec2
	MaxFraction float64
}

// RayCastOutput is the result of a successful ray cast: the hit normal and
// the fraction along the input segment at which the hit occurred.
type RayCastOutput struct {
	Normal   lin.Vec2
	Fraction float64
}

// DistanceProxy is a read-only view over one convex child shape, built once
// per GJK/TOI call. It never allocates beyond what the caller supplies.
type DistanceProxy struct {
	Vertices []lin.Vec2
	Radius   float64
}

// GetSupport returns the index of the proxy vertex furthest in direction d.
func (p DistanceProxy) GetSupport(d lin.Vec2) int {
	best, bestDot := 0, p.Vertices[0].Dot(d)
	for i := 1; i < len(p.Vertices); i++ {
		dot := p.Vertices[i].Dot(d)
		if dot > bestDot {
			best, bestDot = i, dot
		}
	}
	return best
}

// NewCircleProxy builds a single-vertex proxy for a disk of radius r centered
// at c -- GJK treats a disk as one rounded point.
func NewCircleProxy(c lin.Vec2, r float64) DistanceProxy {
	return DistanceProxy{Vertices: []lin.Vec2{c}, Radius: r}
}

// Shape interface
// ============================================================================
// Disk

// Disk is a solid circle of Radius centered at Center, in local space.
type Disk struct {
	Center lin.Vec2
	Radius float64
}

// NewDisk creates a Disk shape. A non-positive radius panics -- a zero-area
// shape cannot answer MassData sensibly.
func NewDisk(center lin.Vec2, radius float64) *Disk {
	if radius <= 0 {
		panic("physics: disk radius must be positive")
	}
	return &Disk{Center: center, Radius: radius}
}

func (d *Disk) Type() ShapeType  { return DiskShapeType }
func (d *Disk) ChildCount() int  { return 1 }
func (d *Disk) Child(i int) DistanceProxy {
	return NewCircleProxy(d.Center, d.Radius)
}

func (d *Disk) ComputeAABB(xf lin.T, i int) AABB {
	c := xf.Apply(d.Center)
	r := lin.Vec2{d.Radius, d.Radius}
	return AABB{Lower: c.Sub(r), Upper: c.Add(r)}
}

func (d *Disk) MassData(density float64) MassData {
	mass := density * math.Pi * d.Radius * d.Radius
	i := mass * (0.5*d.Radius*d.Radius + d.Center.Dot(d.Center))
	return MassData{Mass: mass, Center: d.Center, I: i}
}

func (d *Disk) TestPoint(xf lin.T, p lin.Vec2) bool {
	center := xf.Apply(d.Center)
	return p.Sub(center).Len() <= d.Radius
}

func (d *Disk) RayCast(xf lin.T, i int, input RayCastInput) (RayCastOutput, bool) {
	position := xf.Apply(d.Center)
	s := input.P1.Sub(position)
	b := s.Dot(s) - d.Radius*d.Radius

	r := input.P2.Sub(input.P1)
	rr := r.Dot(r)
	if rr < lin.Epsilon {
		return RayCastOutput{}, false
	}
	c := s.Dot(r)
	sigma := c*c - rr*b
	if sigma < 0 || rr < lin.Epsilon {
		return RayCastOutput{}, false
	}
	t := -(c + math.Sqrt(sigma))
	if t >= 0 && t <= input.MaxFraction*rr {
		t /= rr
		hit := s.Add(lin.MulSV(t, r))
		return RayCastOutput{Normal: hit.Normalize(), Fraction: t}, true
	}
	return RayCastOutput{}, false
}

// Disk
// ============================================================================
// Edge -- a single straight segment, optionally carrying ghost vertices
// that tell the manifold builder which side of the segment admits contact
// when it is used as an open (one-sided) edge inside a Chain.

type Edge struct {
	V1, V2         lin.Vec2
	Ghost1, Ghost2 lin.Vec2
	HasGhost1      bool
	HasGhost2      bool
	Radius         float64 // usually 0; some chains round their edges
}

// NewEdge creates a standalone two-sided edge from v1 to v2.
func NewEdge(v1, v2 lin.Vec2) *Edge { return &Edge{V1: v1, V2: v2} }

func (e *Edge) Type() ShapeType { return EdgeShapeType }
func (e *Edge) ChildCount() int { return 1 }
func (e *Edge) Child(i int) DistanceProxy {
	return DistanceProxy{Vertices: []lin.Vec2{e.V1, e.V2}, Radius: e.Radius}
}

func (e *Edge) ComputeAABB(xf lin.T, i int) AABB {
	v1, v2 := xf.Apply(e.V1), xf.Apply(e.V2)
	r := lin.Vec2{e.Radius, e.Radius}
	return AABB{Lower: lin.MinV(v1, v2).Sub(r), Upper: lin.MaxV(v1, v2).Add(r)}
}

// MassData for an edge is degenerate: it has area zero, so it is given a
// conventional zero mass. Edges are normally attached to static bodies.
func (e *Edge) MassData(density float64) MassData {
	mid := e.V1.Add(e.V2).Mul(0.5)
	return MassData{Mass: 0, Center: mid, I: 0}
}

func (e *Edge) TestPoint(xf lin.T, p lin.Vec2) bool { return false }

func (e *Edge) RayCast(xf lin.T, i int, input RayCastInput) (RayCastOutput, bool) {
	v1, v2 := xf.Apply(e.V1), xf.Apply(e.V2)
	edge := v2.Sub(v1)
	normal := lin.V2(edge[1], -edge[0]).Normalize()

	denom := input.P2.Sub(input.P1).Dot(normal)
	if lin.Aeq(denom, 0) {
		return RayCastOutput{}, false
	}
	t := v1.Sub(input.P1).Dot(normal) / denom
	if t < 0 || t > input.MaxFraction {
		return RayCastOutput{}, false
	}
	point := input.P1.Add(lin.MulSV(t, input.P2.Sub(input.P1)))
	s := point.Sub(v1).Dot(edge) / edge.Dot(edge)
	if s < 0 || s > 1 {
		return RayCastOutput{}, false
	}
	if denom > 0 {
		normal = normal.Mul(-1)
	}
	return RayCastOutput{Normal: normal, Fraction: t}, true
}

// Edge
// ============================================================================
// Polygon -- a convex hull of up to MaxPolygonVertices vertices, wound
// counter-clockwise, with per-edge outward normals precomputed.

const MaxPolygonVertices = 8

type Polygon struct {
	Vertices []lin.Vec2
	Normals  []lin.Vec2
	Centroid lin.Vec2
	Radius   float64 // polygon skin, usually LinearSlop
}

// NewPolygon builds a convex polygon from an arbitrary point set by taking
// its convex hull, winding it CCW, and computing edge normals and centroid.
// Panics (InvalidArgument in spec terms) if fewer than 3 unique hull
// vertices result.
func NewPolygon(points []lin.Vec2) *Polygon {
	hull := convexHull(points)
	if len(hull) < 3 {
		panic("physics: polygon requires at least 3 unique vertices")
	}
	if len(hull) > MaxPolygonVertices {
		hull = hull[:MaxPolygonVertices]
	}
	p := &Polygon{Vertices: hull, Radius: LinearSlop}
	p.Normals = make([]lin.Vec2, len(hull))
	for i := range hull {
		j := (i + 1) % len(hull)
		edge := hull[j].Sub(hull[i])
		n := lin.V2(edge[1], -edge[0])
		p.Normals[i] = n.Normalize()
	}
	p.Centroid = polygonCentroid(hull)
	return p
}

// NewBox creates a box polygon of half-width hx and half-height hy centered
// at the origin.
func NewBox(hx, hy float64) *Polygon {
	return NewPolygon([]lin.Vec2{
		{-hx, -hy}, {hx, -hy}, {hx, hy}, {-hx, hy},
	})
}

func (p *Polygon) Type() ShapeType { return PolygonShapeType }
func (p *Polygon) ChildCount() int { return 1 }
func (p *Polygon) Child(i int) DistanceProxy {
	return DistanceProxy{Vertices: p.Vertices, Radius: p.Radius}
}

func (p *Polygon) ComputeAABB(xf lin.T, i int) AABB {
	lower := xf.Apply(p.Vertices[0])
	upper := lower
	for k := 1; k < len(p.Vertices); k++ {
		v := xf.Apply(p.Vertices[k])
		lower, upper = lin.MinV(lower, v), lin.MaxV(upper, v)
	}
	r := lin.Vec2{p.Radius, p.Radius}
	return AABB{Lower: lower.Sub(r), Upper: upper.Add(r)}
}

func (p *Polygon) MassData(density float64) MassData {
	// Shoelace-formula centroid + inertia over triangles fanned from the
	// polygon's own first vertex, the standard polygon mass formula.
	origin := p.Vertices[0]
	var area, i float64
	center := lin.Zero2
	const inv3 = 1.0 / 3.0
	for k := 1; k < len(p.Vertices)-1; k++ {
		e1 := p.Vertices[k].Sub(origin)
		e2 := p.Vertices[k+1].Sub(origin)
		d := lin.Cross2(e1, e2)
		triArea := 0.5 * d
		area += triArea
		center = center.Add(e1.Add(e2).Mul(triArea * inv3))
		intx2 := e1[0]*e1[0] + e1[0]*e2[0] + e2[0]*e2[0]
		inty2 := e1[1]*e1[1] + e1[1]*e2[1] + e2[1]*e2[1]
		i += (0.25 * inv3 * d) * (intx2 + inty2)
	}
	mass := density * area
	if area > lin.Epsilon {
		center = center.Mul(1 / area)
	}
	com := center.Add(origin)
	i = density * i
	// shift inertia from origin to center of mass, then back to local origin
	// of the shape (Box2D keeps I about the body origin, not the centroid).
	i += mass * (com.Dot(com) - center.Dot(center))
	return MassData{Mass: mass, Center: com, I: i}
}

func (p *Polygon) TestPoint(xf lin.T, point lin.Vec2) bool {
	local := xf.ApplyT(point)
	for i := range p.Vertices {
		if p.Normals[i].Dot(local.Sub(p.Vertices[i])) > 0 {
			return false
		}
	}
	return true
}

func (p *Polygon) RayCast(xf lin.T, i int, input RayCastInput) (RayCastOutput, bool) {
	p1 := xf.ApplyT(input.P1)
	p2 := xf.ApplyT(input.P2)
	d := p2.Sub(p1)

	lower, upper := 0.0, input.MaxFraction
	index := -1
	for k := range p.Vertices {
		numerator := p.Normals[k].Dot(p.Vertices[k].Sub(p1))
		denominator := p.Normals[k].Dot(d)
		if denominator == 0 {
			if numerator < 0 {
				return RayCastOutput{}, false
			}
			continue
		}
		t := numerator / denominator
		if denominator < 0 && t > lower {
			lower, index = t, k
		} else if denominator > 0 && t < upper {
			upper = t
		}
		if upper < lower {
			return RayCastOutput{}, false
		}
	}
	if index >= 0 {
		normal := xf.Q.Apply(p.Normals[index])
		return RayCastOutput{Normal: normal, Fraction: lower}, true
	}
	return RayCastOutput{}, false
}

// Polygon
// ============================================================================
// Chain -- a sequence of connected edges, each usable as a one-sided child
// shape with ghost vertices from its neighbours.

type Chain struct {
	Vertices []lin.Vec2
	Loop     bool
}

// NewChain builds an open chain. If loop is true the last vertex connects
// back to the first and every edge gets ghost vertices from its neighbours.
func NewChain(vertices []lin.Vec2, loop bool) *Chain {
	if len(vertices) < 2 {
		panic("physics: chain requires at least 2 vertices")
	}
	return &Chain{Vertices: vertices, Loop: loop}
}

func (c *Chain) Type() ShapeType { return ChainShapeType }
func (c *Chain) ChildCount() int {
	if c.Loop {
		return len(c.Vertices)
	}
	return len(c.Vertices) - 1
}

func (c *Chain) edge(i int) (v1, v2 lin.Vec2, g1, g2 lin.Vec2, hasG1, hasG2 bool) {
	n := len(c.Vertices)
	v1, v2 = c.Vertices[i], c.Vertices[(i+1)%n]
	if c.Loop {
		g1 = c.Vertices[(i-1+n)%n]
		g2 = c.Vertices[(i+2)%n]
		hasG1, hasG2 = true, true
	} else {
		if i > 0 {
			g1, hasG1 = c.Vertices[i-1], true
		}
		if i+2 < n {
			g2, hasG2 = c.Vertices[i+2], true
		}
	}
	return
}

func (c *Chain) Child(i int) DistanceProxy {
	v1, v2, _, _, _, _ := c.edge(i)
	return DistanceProxy{Vertices: []lin.Vec2{v1, v2}}
}

func (c *Chain) ComputeAABB(xf lin.T, i int) AABB {
	v1, v2, _, _, _, _ := c.edge(i)
	p1, p2 := xf.Apply(v1), xf.Apply(v2)
	return AABB{Lower: lin.MinV(p1, p2), Upper: lin.MaxV(p1, p2)}
}

func (c *Chain) MassData(density float64) MassData {
	return MassData{Mass: 0, Center: c.Vertices[0], I: 0}
}

func (c *Chain) TestPoint(xf lin.T, p lin.Vec2) bool { return false }

func (c *Chain) RayCast(xf lin.T, i int, input RayCastInput) (RayCastOutput, bool) {
	v1, v2, _, _, _, _ := c.edge(i)
	e := &Edge{V1: v1, V2: v2}
	return e.RayCast(xf, 0, input)
}

// edgeGhosts exposes the ghost vertices of chain child i (§4.5
// supplement). The manifold builder does not call it.
func (c *Chain) edgeGhosts(i int) (g1, g2 lin.Vec2, hasG1, hasG2 bool) {
	_, _, g1, g2, hasG1, hasG2 = c.edge(i)
	return
}

// convexHull computes the CCW convex hull of points using a monotone chain
// sweep, deduplicating coincident points.
func convexHull(points []lin.Vec2) []lin.Vec2 {
	pts := make([]lin.Vec2, 0, len(points))
	for _, p := range points {
		dup := false
		for _, q := range pts {
			if p.Sub(q).Len() < LinearSlop {
				dup = true
				break
			}
		}
		if !dup {
			pts = append(pts, p)
		}
	}
	if len(pts) < 3 {
		return pts
	}
	sortByAngleAroundCentroid(pts)
	hull := make([]lin.Vec2, 0, len(pts))
	for _, p := range pts {
		for len(hull) >= 2 && lin.Cross2(hull[len(hull)-1].Sub(hull[len(hull)-2]), p.Sub(hull[len(hull)-2])) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull
}

func sortByAngleAroundCentroid(pts []lin.Vec2) {
	c := lin.Zero2
	for _, p := range pts {
		c = c.Add(p)
	}
	c = c.Mul(1 / float64(len(pts)))
	for i := 1; i < len(pts); i++ {
		for j := i; j > 0; j-- {
			a := math.Atan2(pts[j][1]-c[1], pts[j][0]-c[0])
			b := math.Atan2(pts[j-1][1]-c[1], pts[j-1][0]-c[0])
			if a < b {
				pts[j], pts[j-1] = pts[j-1], pts[j]
			} else {
				break
			}
		}
	}
}

func polygonCentroid(v []lin.Vec2) lin.Vec2 {
	c := lin.Zero2
	var area float64
	origin := v[0]
	for i := 1; i < len(v)-1; i++ {
		e1, e2 := v[i].Sub(origin), v[i+1].Sub(origin)
		d := lin.Cross2(e1, e2)
		c = c.Add(e1.Add(e2).Mul(d))
		area += d
	}
	if area > lin.Epsilon {
		c = c.Mul(1.0 / (3.0 * area))
	}
	return c.Add(origin)
}
