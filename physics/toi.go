// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"log/slog"
	"math"

	"github.com/pellucid/phys2d/math/lin"
)

// ToiInput bundles the two proxies, their sweeps, and the target band the
// conservative-advancement root finder searches for (§4.4).
type ToiInput struct {
	ProxyA, ProxyB DistanceProxy
	SweepA, SweepB lin.Sweep
	TMax           float64
}

// ToiOutput is the result of TimeOfImpact: the diagnostic state and the
// fraction (within [0, TMax]) at which the search stopped.
type ToiOutput struct {
	State ToiState
	T     float64
}

// separationFunction evaluates the signed separation along a fixed axis as
// a sweep pair advances from t=0 to t=1, in one of three flavors chosen by
// which proxy contributed the winning simplex's face (§4.4).
type separationFunction struct {
	proxyA, proxyB DistanceProxy
	sweepA, sweepB lin.Sweep
	localPoint     lin.Vec2
	axis           lin.Vec2
	kind           int // 0: points, 1: faceA, 2: faceB
}

const (
	sepPoints = iota
	sepFaceA
	sepFaceB
)

func newSeparationFunction(cache *SimplexCache, proxyA, proxyB DistanceProxy, sweepA, sweepB lin.Sweep, t1 float64) separationFunction {
	f := separationFunction{proxyA: proxyA, proxyB: proxyB, sweepA: sweepA, sweepB: sweepB}
	count := cache.Count
	xfA, xfB := sweepA.GetTransform(t1), sweepB.GetTransform(t1)

	if count == 1 {
		f.kind = sepPoints
		localA := proxyA.Vertices[cache.IndexA[0]]
		localB := proxyB.Vertices[cache.IndexB[0]]
		pA, pB := xfA.Apply(localA), xfB.Apply(localB)
		f.axis = pB.Sub(pA).Normalize()
		return f
	}

	if cache.IndexA[0] == cache.IndexA[1] {
		// two points on B, one on A: face on B.
		f.kind = sepFaceB
		localA1, localA2 := proxyB.Vertices[cache.IndexB[0]], proxyB.Vertices[cache.IndexB[1]]
		f.localPoint = localA1.Add(localA2).Mul(0.5)
		axis := lin.Perp(localA2.Sub(localA1)).Normalize()
		normal := xfB.Q.Apply(axis)
		pB := xfB.Apply(f.localPoint)
		pA := xfA.Apply(proxyA.Vertices[cache.IndexA[0]])
		if pA.Sub(pB).Dot(normal) < 0 {
			normal = normal.Mul(-1)
		}
		f.axis = normal
		return f
	}

	// two points on A, one on B: face on A.
	f.kind = sepFaceA
	localA1, localA2 := proxyA.Vertices[cache.IndexA[0]], proxyA.Vertices[cache.IndexA[1]]
	f.localPoint = localA1.Add(localA2).Mul(0.5)
	axis := lin.Perp(localA2.Sub(localA1)).Normalize()
	normal := xfA.Q.Apply(axis)
	pA := xfA.Apply(f.localPoint)
	pB := xfB.Apply(proxyB.Vertices[cache.IndexB[0]])
	if pB.Sub(pA).Dot(normal) < 0 {
		normal = normal.Mul(-1)
	}
	f.axis = normal
	return f
}

// findMinSeparation returns the minimum separation at time t and the proxy
// vertex indices achieving it.
func (f *separationFunction) findMinSeparation(t float64) (sep float64, indexA, indexB int) {
	xfA, xfB := f.sweepA.GetTransform(t), f.sweepB.GetTransform(t)
	switch f.kind {
	case sepPoints:
		axisA := xfA.ApplyVecT(f.axis)
		axisB := xfB.ApplyVecT(f.axis.Mul(-1))
		indexA = f.proxyA.GetSupport(axisA)
		indexB = f.proxyB.GetSupport(axisB)
		pA := xfA.Apply(f.proxyA.Vertices[indexA])
		pB := xfB.Apply(f.proxyB.Vertices[indexB])
		return pB.Sub(pA).Dot(f.axis), indexA, indexB
	case sepFaceA:
		normal := xfA.Q.Apply(f.axis)
		pA := xfA.Apply(f.localPoint)
		axisB := xfB.ApplyVecT(normal.Mul(-1))
		indexB = f.proxyB.GetSupport(axisB)
		pB := xfB.Apply(f.proxyB.Vertices[indexB])
		return pB.Sub(pA).Dot(normal), -1, indexB
	default: // sepFaceB
		normal := xfB.Q.Apply(f.axis)
		pB := xfB.Apply(f.localPoint)
		axisA := xfA.ApplyVecT(normal.Mul(-1))
		indexA = f.proxyA.GetSupport(axisA)
		pA := xfA.Apply(f.proxyA.Vertices[indexA])
		return pA.Sub(pB).Dot(normal), indexA, -1
	}
}

// evaluate returns the separation at time t for the fixed pair of indices
// found by findMinSeparation, used while root-finding.
func (f *separationFunction) evaluate(indexA, indexB int, t float64) float64 {
	xfA, xfB := f.sweepA.GetTransform(t), f.sweepB.GetTransform(t)
	switch f.kind {
	case sepPoints:
		pA := xfA.Apply(f.proxyA.Vertices[indexA])
		pB := xfB.Apply(f.proxyB.Vertices[indexB])
		return pB.Sub(pA).Dot(f.axis)
	case sepFaceA:
		normal := xfA.Q.Apply(f.axis)
		pA := xfA.Apply(f.localPoint)
		pB := xfB.Apply(f.proxyB.Vertices[indexB])
		return pB.Sub(pA).Dot(normal)
	default:
		normal := xfB.Q.Apply(f.axis)
		pB := xfB.Apply(f.localPoint)
		pA := xfA.Apply(f.proxyA.Vertices[indexA])
		return pA.Sub(pB).Dot(normal)
	}
}

// TimeOfImpact runs the conservative-advancement root finder of §4.4: an
// outer loop bounded by maxToiIters that calls Distance to test for
// immediate overlap/touch, and an inner push-back loop bounded by
// MaxPolygonVertices that narrows [t1, t2] via bisection/secant until the
// separation function crosses the target band.
func TimeOfImpact(input ToiInput, target, tolerance float64, maxToiIters, maxRootIters, maxDistIters int) ToiOutput {
	t1 := 0.0
	var cache SimplexCache

	for outer := 0; outer < maxToiIters; outer++ {
		xfA := input.SweepA.GetTransform(t1)
		xfB := input.SweepB.GetTransform(t1)

		distOutput := Distance(DistanceInput{
			ProxyA: input.ProxyA, ProxyB: input.ProxyB,
			TransformA: xfA, TransformB: xfB,
		}, &cache, maxDistIters)

		if distOutput.Distance <= 0 {
			return ToiOutput{State: ToiOverlapped, T: 0}
		}
		if distOutput.Distance < target+tolerance {
			return ToiOutput{State: ToiTouching, T: t1}
		}

		fcn := newSeparationFunction(&cache, input.ProxyA, input.ProxyB, input.SweepA, input.SweepB, t1)

		done := false
		t2 := input.TMax
		for push := 0; push < MaxPolygonVertices; push++ {
			s2, indexA, indexB := fcn.findMinSeparation(t2)
			if s2 > target+tolerance {
				return ToiOutput{State: ToiSeparated, T: t2}
			}
			if s2 > target-tolerance {
				t1 = t2
				break
			}
			s1 := fcn.evaluate(indexA, indexB, t1)
			if s1 < target-tolerance {
				return ToiOutput{State: ToiBelowMinTarget, T: t1}
			}
			if s1 <= target+tolerance {
				return ToiOutput{State: ToiTouching, T: t1}
			}

			a1, a2 := t1, t2
			root := 0
			for ; root < maxRootIters; root++ {
				var t float64
				if root&1 != 0 {
					t = a1 + (target-s1)*(a2-a1)/(s2-s1) // secant
				} else {
					t = 0.5 * (a1 + a2) // bisection
				}
				s := fcn.evaluate(indexA, indexB, t)
				if math.Abs(s-target) < tolerance {
					t2 = t
					break
				}
				if s > target {
					a1, s1 = t, s
				} else {
					a2, s2 = t, s
				}
				if lin.NextAfter(a1, a2) >= a2 {
					t2 = a2
					break
				}
			}
			if root == maxRootIters {
				done = true
				break
			}
		}

		if done {
			logger.Debug("toi root finder iteration cap reached", slog.Int("maxRootIters", maxRootIters))
			return ToiOutput{State: ToiMaxRootIters, T: t1}
		}
	}
	logger.Debug("toi outer iteration cap reached", slog.Int("maxToiIters", maxToiIters))
	return ToiOutput{State: ToiMaxToiIters, T: t1}
}
