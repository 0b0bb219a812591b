// Copyright © 2013-2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"math"

	"github.com/pellucid/phys2d/math/lin"
)

// ManifoldKind tags a Manifold's shape (§3).
type ManifoldKind int

const (
	ManifoldUnset ManifoldKind = iota
	ManifoldCircles
	ManifoldFaceA
	ManifoldFaceB
)

// ContactFeatureKind distinguishes whether a contact feature names a vertex
// or a face.
type ContactFeatureKind int

const (
	FeatureVertex ContactFeatureKind = iota
	FeatureFace
)

// ContactFeature encodes which vertex/edge of A met which vertex/edge of B
// (§4.5) -- the key §4.7 uses to match a new manifold point against the
// previous step's for impulse warm-starting.
type ContactFeature struct {
	IndexA, IndexB int
	TypeA, TypeB   ContactFeatureKind
}

// ManifoldPoint is one contact point, in the reference shape's local frame.
// NormalImpulse/TangentImpulse persist across steps for warm-starting.
type ManifoldPoint struct {
	LocalPoint     lin.Vec2
	Feature        ContactFeature
	NormalImpulse  float64
	TangentImpulse float64
}

// Manifold is the tagged union of §3: Unset, Circles, FaceA or FaceB. Local
// points are resolved to world space by the solver from the bodies'
// current transforms, never cached across a potentially-moved step.
type Manifold struct {
	Kind       ManifoldKind
	LocalNormal lin.Vec2 // for FaceA/FaceB
	LocalPoint  lin.Vec2 // reference point: circle center or face anchor
	Points      [2]ManifoldPoint
	PointCount  int
}

// relativeTolerance biases reference-edge selection away from flip-flopping
// under tiny perturbations (§4.5 polygon-polygon).
const relativeTolerance = 0.98

// CollideShapes dispatches on the (typeA, typeB) pair per the canonical
// ordering of §9: a constant table keyed by shape-type pair, generalized
// here as a switch over the tagged Shape union rather than a literal 2-D
// array, since Go's sum-type idiom is the type switch.
func CollideShapes(shapeA Shape, indexA int, xfA lin.T, shapeB Shape, indexB int, xfB lin.T) Manifold {
	switch a := shapeA.(type) {
	case *Disk:
		switch b := shapeB.(type) {
		case *Disk:
			return collideCircles(a, xfA, b, xfB)
		case *Polygon:
			return flipManifold(collidePolygonCircle(b, xfB, a, xfA))
		case *Edge:
			return flipManifold(collideEdgeCircle(b, xfB, a, xfA))
		case *Chain:
			return flipManifold(collideChainCircle(b, indexB, xfB, a, xfA))
		}
	case *Polygon:
		switch b := shapeB.(type) {
		case *Disk:
			return collidePolygonCircle(a, xfA, b, xfB)
		case *Polygon:
			return collidePolygons(a, xfA, b, xfB)
		case *Edge:
			return flipManifold(collideEdgePolygon(b, xfB, a, xfA))
		case *Chain:
			return flipManifold(collideChainPolygon(b, indexB, xfB, a, xfA))
		}
	case *Edge:
		switch b := shapeB.(type) {
		case *Disk:
			return collideEdgeCircle(a, xfA, b, xfB)
		case *Polygon:
			return collideEdgePolygon(a, xfA, b, xfB)
		}
	case *Chain:
		switch b := shapeB.(type) {
		case *Disk:
			return collideChainCircle(a, indexA, xfA, b, xfB)
		case *Polygon:
			return collideChainPolygon(a, indexA, xfA, b, xfB)
		}
	}
	return Manifold{Kind: ManifoldUnset}
}

func flipManifold(m Manifold) Manifold {
	switch m.Kind {
	case ManifoldFaceA:
		m.Kind = ManifoldFaceB
	case ManifoldFaceB:
		m.Kind = ManifoldFaceA
	}
	for i := 0; i < m.PointCount; i++ {
		m.Points[i].Feature.IndexA, m.Points[i].Feature.IndexB = m.Points[i].Feature.IndexB, m.Points[i].Feature.IndexA
		m.Points[i].Feature.TypeA, m.Points[i].Feature.TypeB = m.Points[i].Feature.TypeB, m.Points[i].Feature.TypeA
	}
	return m
}

// collideCircles: circle-circle (§4.5).
func collideCircles(a *Disk, xfA lin.T, b *Disk, xfB lin.T) Manifold {
	pA := xfA.Apply(a.Center)
	pB := xfB.Apply(b.Center)
	d := pB.Sub(pA)
	dist := d.Len()
	if dist > a.Radius+b.Radius {
		return Manifold{Kind: ManifoldUnset}
	}
	return Manifold{
		Kind:       ManifoldCircles,
		LocalPoint: a.Center,
		Points: [2]ManifoldPoint{{
			LocalPoint: b.Center,
		}},
		PointCount: 1,
	}
}

// collidePolygonCircle: polygon-circle (§4.5). The circle center is
// transformed into the polygon's local frame; the polygon edge with
// maximum signed distance from it is found, then classified as either a
// face region (emit FaceA) or a vertex region (emit a Circles-style point).
func collidePolygonCircle(poly *Polygon, xfA lin.T, disk *Disk, xfB lin.T) Manifold {
	c := xfB.Apply(disk.Center)
	cLocal := xfA.ApplyT(c)

	maxSep := -math.MaxFloat64
	normalIndex := 0
	for i, v := range poly.Vertices {
		sep := poly.Normals[i].Dot(cLocal.Sub(v))
		if sep > maxSep {
			maxSep, normalIndex = sep, i
		}
	}
	rA, rB := poly.Radius, disk.Radius
	if maxSep > rA+rB {
		return Manifold{Kind: ManifoldUnset}
	}

	n := len(poly.Vertices)
	v1 := poly.Vertices[normalIndex]
	v2 := poly.Vertices[(normalIndex+1)%n]

	if maxSep < lin.Epsilon {
		return Manifold{
			Kind:        ManifoldFaceA,
			LocalNormal: poly.Normals[normalIndex],
			LocalPoint:  v1.Add(v2).Mul(0.5),
			Points:      [2]ManifoldPoint{{LocalPoint: disk.Center, Feature: ContactFeature{IndexA: normalIndex, TypeA: FeatureFace}}},
			PointCount:  1,
		}
	}

	u1 := cLocal.Sub(v1).Dot(v2.Sub(v1))
	u2 := cLocal.Sub(v2).Dot(v1.Sub(v2))
	var localNormal lin.Vec2
	var localPoint lin.Vec2
	var feature int
	switch {
	case u1 <= 0:
		if cLocal.Sub(v1).Len() > rA+rB {
			return Manifold{Kind: ManifoldUnset}
		}
		localNormal, localPoint, feature = cLocal.Sub(v1).Normalize(), v1, normalIndex
	case u2 <= 0:
		if cLocal.Sub(v2).Len() > rA+rB {
			return Manifold{Kind: ManifoldUnset}
		}
		localNormal, localPoint, feature = cLocal.Sub(v2).Normalize(), v2, (normalIndex+1)%n
	default:
		localNormal, localPoint, feature = poly.Normals[normalIndex], v1.Add(v2).Mul(0.5), normalIndex
	}
	return Manifold{
		Kind:        ManifoldFaceA,
		LocalNormal: localNormal,
		LocalPoint:  localPoint,
		Points:      [2]ManifoldPoint{{LocalPoint: disk.Center, Feature: ContactFeature{IndexA: feature, TypeA: FeatureVertex}}},
		PointCount:  1,
	}
}

// collideEdgeCircle treats the edge as a 2-vertex open polygon; only its
// front normal is tested, so in the face region the circle can only be
// hit from the front.
func collideEdgeCircle(e *Edge, xfA lin.T, disk *Disk, xfB lin.T) Manifold {
	poly := &Polygon{
		Vertices: []lin.Vec2{e.V1, e.V2},
		Normals:  []lin.Vec2{edgeNormal(e.V1, e.V2), edgeNormal(e.V2, e.V1)},
		Radius:   e.Radius,
	}
	return collidePolygonCircleOpenEdge(poly, xfA, disk, xfB)
}

func edgeNormal(v1, v2 lin.Vec2) lin.Vec2 { return lin.Perp(v2.Sub(v1)).Mul(-1).Normalize() }

// collidePolygonCircleOpenEdge is collidePolygonCircle restricted to a
// single front face (an edge has no back region to test).
func collidePolygonCircleOpenEdge(poly *Polygon, xfA lin.T, disk *Disk, xfB lin.T) Manifold {
	c := xfB.Apply(disk.Center)
	cLocal := xfA.ApplyT(c)
	v1, v2 := poly.Vertices[0], poly.Vertices[1]
	normal := poly.Normals[0]
	sep := normal.Dot(cLocal.Sub(v1))
	rA, rB := poly.Radius, disk.Radius
	if sep > rA+rB {
		return Manifold{Kind: ManifoldUnset}
	}
	u1 := cLocal.Sub(v1).Dot(v2.Sub(v1))
	u2 := cLocal.Sub(v2).Dot(v1.Sub(v2))
	switch {
	case u1 <= 0:
		if cLocal.Sub(v1).Len() > rA+rB {
			return Manifold{Kind: ManifoldUnset}
		}
		return Manifold{Kind: ManifoldFaceA, LocalNormal: cLocal.Sub(v1).Normalize(), LocalPoint: v1,
			Points: [2]ManifoldPoint{{LocalPoint: disk.Center, Feature: ContactFeature{IndexA: 0, TypeA: FeatureVertex}}}, PointCount: 1}
	case u2 <= 0:
		if cLocal.Sub(v2).Len() > rA+rB {
			return Manifold{Kind: ManifoldUnset}
		}
		return Manifold{Kind: ManifoldFaceA, LocalNormal: cLocal.Sub(v2).Normalize(), LocalPoint: v2,
			Points: [2]ManifoldPoint{{LocalPoint: disk.Center, Feature: ContactFeature{IndexA: 1, TypeA: FeatureVertex}}}, PointCount: 1}
	default:
		if sep < -lin.Epsilon {
			return Manifold{Kind: ManifoldUnset}
		}
		return Manifold{Kind: ManifoldFaceA, LocalNormal: normal, LocalPoint: v1.Add(v2).Mul(0.5),
			Points: [2]ManifoldPoint{{LocalPoint: disk.Center, Feature: ContactFeature{IndexA: 0, TypeA: FeatureFace}}}, PointCount: 1}
	}
}

// clipVertex is one vertex produced by clipSegmentToLine, carrying the
// ContactFeature of the edge/vertex that produced it.
type clipVertex struct {
	v       lin.Vec2
	feature ContactFeature
}

// clipSegmentToLine clips the 2-vertex segment in against the half-plane
// {x : normal . x <= offset}, producing at most 2 output vertices (§4.5
// polygon-polygon clipping, formerly a standalone clipping routine, folded
// in here since the manifold builder is its only caller).
func clipSegmentToLine(in [2]clipVertex, normal lin.Vec2, offset float64, vertexIndexA int) ([2]clipVertex, int) {
	var out [2]clipVertex
	count := 0

	d0 := normal.Dot(in[0].v) - offset
	d1 := normal.Dot(in[1].v) - offset

	if d0 <= 0 {
		out[count] = in[0]
		count++
	}
	if d1 <= 0 {
		out[count] = in[1]
		count++
	}
	if d0*d1 < 0 {
		interp := d0 / (d0 - d1)
		out[count] = clipVertex{
			v:       in[0].v.Add(lin.MulSV(interp, in[1].v.Sub(in[0].v))),
			feature: ContactFeature{IndexA: vertexIndexA, TypeA: FeatureVertex, IndexB: in[0].feature.IndexB, TypeB: in[0].feature.TypeB},
		}
		count++
	}
	return out, count
}

// findMaxSeparation finds the edge of poly1 with maximum signed separation
// from poly2's vertices (one half of the SAT test in §4.5).
func findMaxSeparation(poly1, poly2 *Polygon, xf1, xf2 lin.T) (bestSep float64, edge int) {
	xf := lin.MulT(xf2, xf1)
	bestSep = -math.MaxFloat64
	for i, n := range poly1.Normals {
		normal := xf.ApplyVec(n)
		v1 := xf.Apply(poly1.Vertices[i])

		minDot := math.MaxFloat64
		for _, v2 := range poly2.Vertices {
			d := normal.Dot(v2)
			if d < minDot {
				minDot = d
			}
		}
		sep := minDot - normal.Dot(v1)
		if sep > bestSep {
			bestSep, edge = sep, i
		}
	}
	return
}

// findIncidentEdge finds the edge on poly2 most anti-parallel to poly1's
// reference edge normal.
func findIncidentEdge(poly1 *Polygon, xf1 lin.T, edge1 int, poly2 *Polygon, xf2 lin.T) [2]clipVertex {
	normal1 := lin.MulT(xf2, xf1).ApplyVec(poly1.Normals[edge1])

	index := 0
	minDot := math.MaxFloat64
	for i, n := range poly2.Normals {
		d := normal1.Dot(n)
		if d < minDot {
			minDot, index = d, i
		}
	}
	i1 := index
	i2 := (index + 1) % len(poly2.Vertices)
	return [2]clipVertex{
		{v: poly2.Vertices[i1], feature: ContactFeature{IndexB: i1, TypeB: FeatureVertex, IndexA: edge1, TypeA: FeatureFace}},
		{v: poly2.Vertices[i2], feature: ContactFeature{IndexB: i2, TypeB: FeatureVertex, IndexA: edge1, TypeA: FeatureFace}},
	}
}

// collidePolygons: polygon-polygon (§4.5). SAT finds the best separating
// edge on each polygon; the reference edge is the one with smallest max
// separation, biased by relativeTolerance to avoid flip-flop. The incident
// polygon's edge is clipped against the reference edge's two side planes.
func collidePolygons(polyA *Polygon, xfA lin.T, polyB *Polygon, xfB lin.T) Manifold {
	totalRadius := polyA.Radius + polyB.Radius

	sepA, edgeA := findMaxSeparation(polyA, polyB, xfA, xfB)
	if sepA > totalRadius {
		return Manifold{Kind: ManifoldUnset}
	}
	sepB, edgeB := findMaxSeparation(polyB, polyA, xfB, xfA)
	if sepB > totalRadius {
		return Manifold{Kind: ManifoldUnset}
	}

	var ref, inc *Polygon
	var xfRef, xfInc lin.T
	var edge1 int
	flip := false
	if sepB > sepA+relativeTolerance*LinearSlop {
		ref, inc, xfRef, xfInc, edge1, flip = polyB, polyA, xfB, xfA, edgeB, true
	} else {
		ref, inc, xfRef, xfInc, edge1, flip = polyA, polyB, xfA, xfB, edgeA, false
	}

	incident := findIncidentEdge(ref, xfRef, edge1, inc, xfInc)

	n := len(ref.Vertices)
	i1, i2 := edge1, (edge1+1)%n
	v11, v12 := ref.Vertices[i1], ref.Vertices[i2]
	localTangent := v12.Sub(v11).Normalize()
	localNormal := lin.CrossVS(localTangent, 1)
	planePoint := v11.Add(v12).Mul(0.5)

	// transform incident-edge clip points into the reference polygon's
	// local frame so clipSegmentToLine can operate purely in 2D scalars.
	relXf := lin.MulT(xfRef, xfInc)
	inLocal := [2]clipVertex{
		{v: relXf.Apply(incident[0].v), feature: incident[0].feature},
		{v: relXf.Apply(incident[1].v), feature: incident[1].feature},
	}

	frontOffset := localNormal.Dot(v11)
	sideOffset1 := -localTangent.Dot(v11) + totalRadius
	sideOffset2 := localTangent.Dot(v12) + totalRadius

	clip1, count1 := clipSegmentToLine(inLocal, localTangent.Mul(-1), sideOffset1, i1)
	if count1 < 2 {
		return Manifold{Kind: ManifoldUnset}
	}
	clip2, count2 := clipSegmentToLine(clip1, localTangent, sideOffset2, i2)
	if count2 < 2 {
		return Manifold{Kind: ManifoldUnset}
	}

	m := Manifold{LocalNormal: localNormal, LocalPoint: planePoint}
	pointCount := 0
	for i := 0; i < 2; i++ {
		separation := localNormal.Dot(clip2[i].v) - frontOffset
		if separation <= totalRadius {
			mp := ManifoldPoint{LocalPoint: clip2[i].v, Feature: clip2[i].feature}
			if flip {
				mp.Feature.IndexA, mp.Feature.IndexB = mp.Feature.IndexB, mp.Feature.IndexA
				mp.Feature.TypeA, mp.Feature.TypeB = mp.Feature.TypeB, mp.Feature.TypeA
			}
			m.Points[pointCount] = mp
			pointCount++
		}
	}
	m.PointCount = pointCount
	if pointCount == 0 {
		m.Kind = ManifoldUnset
		return m
	}
	if flip {
		m.Kind = ManifoldFaceB
	} else {
		m.Kind = ManifoldFaceA
	}
	return m
}

// collideEdgePolygon treats the edge as a 2-vertex polygon with both faces
// admissible and runs the polygon-polygon collider. The edge's ghost
// vertices are not consulted.
func collideEdgePolygon(e *Edge, xfA lin.T, poly *Polygon, xfB lin.T) Manifold {
	asPoly := &Polygon{
		Vertices: []lin.Vec2{e.V1, e.V2},
		Normals:  []lin.Vec2{edgeNormal(e.V1, e.V2), edgeNormal(e.V2, e.V1)},
		Radius:   e.Radius,
	}
	return collidePolygons(asPoly, xfA, poly, xfB)
}

// collideChainCircle dispatches child i of the chain (as a plain edge; its
// ghost vertices are not carried over) against a circle.
func collideChainCircle(c *Chain, i int, xfA lin.T, disk *Disk, xfB lin.T) Manifold {
	proxy := c.Child(i)
	e := &Edge{V1: proxy.Vertices[0], V2: proxy.Vertices[1]}
	return collideEdgeCircle(e, xfA, disk, xfB)
}

// collideChainPolygon dispatches child i of the chain against a polygon,
// suppressing the contact when the polygon's centroid lies more than
// LinearSlop behind the edge's own face. The ghost vertices are copied
// onto the edge but play no part in this test or in collideEdgePolygon.
func collideChainPolygon(c *Chain, i int, xfA lin.T, poly *Polygon, xfB lin.T) Manifold {
	v1, v2, g1, g2, hasG1, hasG2 := c.edge(i)
	e := &Edge{V1: v1, V2: v2, Ghost1: g1, Ghost2: g2, HasGhost1: hasG1, HasGhost2: hasG2}

	centroidLocal := xfA.ApplyT(xfB.Apply(poly.Centroid))
	normal := edgeNormal(v1, v2)
	if normal.Dot(centroidLocal.Sub(v1)) < -LinearSlop {
		// polygon centroid is behind the edge's single admissible face:
		// this chain edge cannot be the one generating the contact.
		return Manifold{Kind: ManifoldUnset}
	}
	return collideEdgePolygon(e, xfA, poly, xfB)
}

// testOverlap is a cheap touching test used by sensors (§4.6 step 2): it
// runs GJK with a fresh cache and reports whether the distance is within
// the combined radii.
func testOverlap(shapeA Shape, indexA int, xfA lin.T, shapeB Shape, indexB int, xfB lin.T) bool {
	proxyA := shapeA.Child(indexA)
	proxyB := shapeB.Child(indexB)
	var cache SimplexCache
	out := Distance(DistanceInput{ProxyA: proxyA, ProxyB: proxyB, TransformA: xfA, TransformB: xfB}, &cache, 20)
	return out.Distance < 10*lin.Epsilon
}
