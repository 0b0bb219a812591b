// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"math"

	"github.com/pellucid/phys2d/math/lin"
)

// simplexVertex is one supporting pair in a Simplex: a point on each
// proxy plus the local vertex indices that produced it (§3 SimplexEdge).
type simplexVertex struct {
	wA, wB   lin.Vec2 // support points in world space
	w        lin.Vec2 // wB - wA
	a        float64  // barycentric coefficient
	indexA   int
	indexB   int
}

// simplex holds up to 3 simplexVertex entries. Invariant: at most one entry
// per (indexA, indexB) pair.
type simplex struct {
	v     [3]simplexVertex
	count int
}

// SimplexCache snapshots a simplex's winning index pairs and metric so the
// next Distance call on the same proxy pair can warm-start instead of
// starting from a single arbitrary vertex (§3, §4.3, §8 scenario 5).
type SimplexCache struct {
	Metric   float64
	Count    int
	IndexA   [3]int
	IndexB   [3]int
}

// DistanceInput bundles the two proxies, their world transforms, and a
// flag requesting the output be adjusted by their vertex radii.
type DistanceInput struct {
	ProxyA, ProxyB DistanceProxy
	TransformA, TransformB lin.T
	UseRadii       bool
}

// DistanceOutput is the result of Distance.
type DistanceOutput struct {
	PointA, PointB lin.Vec2
	Distance       float64
	Iterations     int
}

func (s *simplex) readCache(cache *SimplexCache, input DistanceInput) {
	s.count = cache.Count
	for i := 0; i < s.count; i++ {
		v := &s.v[i]
		v.indexA, v.indexB = cache.IndexA[i], cache.IndexB[i]
		v.wA = input.TransformA.Apply(input.ProxyA.Vertices[v.indexA])
		v.wB = input.TransformB.Apply(input.ProxyB.Vertices[v.indexB])
		v.w = v.wB.Sub(v.wA)
		v.a = 0
	}
	if s.count == 0 {
		v := &s.v[0]
		v.indexA, v.indexB = 0, 0
		v.wA = input.TransformA.Apply(input.ProxyA.Vertices[0])
		v.wB = input.TransformB.Apply(input.ProxyB.Vertices[0])
		v.w = v.wB.Sub(v.wA)
		v.a = 1
		s.count = 1
	}
}

func (s *simplex) writeCache(cache *SimplexCache) {
	cache.Metric = s.metric()
	cache.Count = s.count
	for i := 0; i < s.count; i++ {
		cache.IndexA[i] = s.v[i].indexA
		cache.IndexB[i] = s.v[i].indexB
	}
}

func (s *simplex) metric() float64 {
	switch s.count {
	case 1:
		return 0
	case 2:
		return s.v[0].w.Sub(s.v[1].w).Len()
	case 3:
		return lin.Cross2(s.v[1].w.Sub(s.v[0].w), s.v[2].w.Sub(s.v[0].w))
	}
	return 0
}

func (s *simplex) searchDirection() lin.Vec2 {
	switch s.count {
	case 1:
		return s.v[0].w.Mul(-1)
	case 2:
		e := s.v[1].w.Sub(s.v[0].w)
		sgn := lin.Cross2(e, s.v[0].w.Mul(-1))
		if sgn > 0 {
			return lin.Perp(e)
		}
		return lin.CrossSV(1, e).Mul(-1)
	}
	return lin.Zero2
}

func (s *simplex) closestPoint() lin.Vec2 {
	switch s.count {
	case 1:
		return s.v[0].w
	case 2:
		return lin.MulSV(s.v[0].a, s.v[0].w).Add(lin.MulSV(s.v[1].a, s.v[1].w))
	}
	return lin.Zero2
}

func (s *simplex) witnessPoints() (pA, pB lin.Vec2) {
	switch s.count {
	case 1:
		return s.v[0].wA, s.v[0].wB
	case 2:
		pA = lin.MulSV(s.v[0].a, s.v[0].wA).Add(lin.MulSV(s.v[1].a, s.v[1].wA))
		pB = lin.MulSV(s.v[0].a, s.v[0].wB).Add(lin.MulSV(s.v[1].a, s.v[1].wB))
		return
	default:
		pA = lin.MulSV(s.v[0].a, s.v[0].wA).Add(lin.MulSV(s.v[1].a, s.v[1].wA)).Add(lin.MulSV(s.v[2].a, s.v[2].wA))
		return pA, pA
	}
}

// contains reports whether (ia, ib) is already present in the simplex --
// step 3 of §4.3's "no progress" termination.
func (s *simplex) contains(ia, ib int) bool {
	for i := 0; i < s.count; i++ {
		if s.v[i].indexA == ia && s.v[i].indexB == ib {
			return true
		}
	}
	return false
}

// solve2 reduces a 2-vertex simplex to the sub-simplex closest to the
// origin, updating barycentric coefficients.
func (s *simplex) solve2() {
	w1, w2 := s.v[0].w, s.v[1].w
	e12 := w2.Sub(w1)
	d12_2 := -w1.Dot(e12)
	if d12_2 <= 0 {
		s.v[0].a = 1
		s.count = 1
		return
	}
	d12_1 := w2.Dot(e12)
	if d12_1 <= 0 {
		s.v[0] = s.v[1]
		s.v[0].a = 1
		s.count = 1
		return
	}
	inv := 1 / (d12_1 + d12_2)
	s.v[0].a = d12_1 * inv
	s.v[1].a = d12_2 * inv
	s.count = 2
}

// solve3 reduces a 3-vertex simplex via Voronoi-region classification; if
// the origin lies inside the triangle the simplex "contains" it (distance
// zero, overlap).
func (s *simplex) solve3() {
	w1, w2, w3 := s.v[0].w, s.v[1].w, s.v[2].w

	e12 := w2.Sub(w1)
	w1e12, w2e12 := -w1.Dot(e12), w2.Dot(e12)

	e13 := w3.Sub(w1)
	w1e13, w3e13 := -w1.Dot(e13), w3.Dot(e13)

	e23 := w3.Sub(w2)
	w2e23, w3e23 := -w2.Dot(e23), w3.Dot(e23)

	n123 := lin.Cross2(e12, e13)

	d123_1 := n123 * lin.Cross2(w2, w3)
	d123_2 := n123 * lin.Cross2(w3, w1)
	d123_3 := n123 * lin.Cross2(w1, w2)

	if w1e12 <= 0 && w1e13 <= 0 {
		s.v[0].a = 1
		s.count = 1
		return
	}
	if w2e12 <= 0 && w2e23 <= 0 {
		s.v[0] = s.v[1]
		s.v[0].a = 1
		s.count = 1
		return
	}
	if w3e13 <= 0 && w3e23 <= 0 {
		s.v[0] = s.v[2]
		s.v[0].a = 1
		s.count = 1
		return
	}
	if w1e12 > 0 && w2e12 > 0 && d123_3 <= 0 {
		inv := 1 / (w1e12 + w2e12)
		s.v[0].a = w1e12 * inv
		s.v[1].a = w2e12 * inv
		s.count = 2
		return
	}
	if w1e13 > 0 && w3e13 > 0 && d123_2 <= 0 {
		inv := 1 / (w1e13 + w3e13)
		s.v[0].a = w1e13 * inv
		s.v[1] = s.v[2]
		s.v[1].a = w3e13 * inv
		s.count = 2
		return
	}
	if w2e23 > 0 && w3e23 > 0 && d123_1 <= 0 {
		inv := 1 / (w2e23 + w3e23)
		s.v[0] = s.v[1]
		s.v[1] = s.v[2]
		s.v[0].a = w2e23 * inv
		s.v[1].a = w3e23 * inv
		s.count = 2
		return
	}
	// origin is inside the triangle.
	inv := 1 / (d123_1 + d123_2 + d123_3)
	s.v[0].a = d123_1 * inv
	s.v[1].a = d123_2 * inv
	s.v[2].a = d123_3 * inv
	s.count = 3
}

// Distance runs GJK (§4.3): reconstructs an initial simplex from cache (or
// a single arbitrary vertex if the cache is empty), iterates up to
// maxIters, and writes the winning index pairs and metric back to cache so
// the next call on the same proxy pair can warm-start.
func Distance(input DistanceInput, cache *SimplexCache, maxIters int) DistanceOutput {
	var s simplex
	s.readCache(cache, input)

	saveA := [3]int{}
	saveB := [3]int{}
	iter := 0
	for ; iter < maxIters; iter++ {
		saveCount := s.count
		for i := 0; i < saveCount; i++ {
			saveA[i], saveB[i] = s.v[i].indexA, s.v[i].indexB
		}

		switch s.count {
		case 1:
		case 2:
			s.solve2()
		case 3:
			s.solve3()
		}

		if s.count == 3 {
			// origin contained: overlap, distance 0.
			break
		}

		d := s.searchDirection()
		if d.Dot(d) < lin.Epsilon*lin.Epsilon {
			break
		}

		vertex := &s.v[s.count]
		vertex.indexA = input.ProxyA.GetSupport(input.TransformA.ApplyVecT(d.Mul(-1)))
		vertex.wA = input.TransformA.Apply(input.ProxyA.Vertices[vertex.indexA])
		vertex.indexB = input.ProxyB.GetSupport(input.TransformB.ApplyVecT(d))
		vertex.wB = input.TransformB.Apply(input.ProxyB.Vertices[vertex.indexB])
		vertex.w = vertex.wB.Sub(vertex.wA)

		duplicate := false
		for i := 0; i < saveCount; i++ {
			if vertex.indexA == saveA[i] && vertex.indexB == saveB[i] {
				duplicate = true
				break
			}
		}
		if duplicate {
			break
		}
		s.count++
	}

	pA, pB := s.witnessPoints()
	s.writeCache(cache)

	output := DistanceOutput{PointA: pA, PointB: pB, Iterations: iter}
	output.Distance = pA.Sub(pB).Len()

	if input.UseRadii {
		rA, rB := input.ProxyA.Radius, input.ProxyB.Radius
		if output.Distance < lin.Epsilon {
			mid := pA.Add(pB).Mul(0.5)
			output.PointA, output.PointB = mid, mid
			output.Distance = 0
		} else {
			n := pB.Sub(pA).Normalize()
			output.PointA = pA.Add(lin.MulSV(rA, n))
			output.PointB = pB.Sub(lin.MulSV(rB, n))
			output.Distance = math.Max(0, output.Distance-rA-rB)
		}
	}
	return output
}
