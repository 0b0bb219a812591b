// Copyright © 2013-2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import (
	"log/slog"
	"math"

	"github.com/pellucid/phys2d/math/lin"
)

// velocityConstraintPoint is the per-manifold-point solver state (§4.7).
type velocityConstraintPoint struct {
	rA, rB lin.Vec2

	normalImpulse  float64
	tangentImpulse float64

	normalMass  float64
	tangentMass float64

	velocityBias float64
}

// velocityConstraint is built once per contact at the start of the
// velocity phase and iterated over VelocityIterations times (§4.7).
type velocityConstraint struct {
	contact *Contact

	indexA, indexB int
	invMassA, invMassB float64
	invIA, invIB       float64

	friction    float64
	restitution float64
	tangentSpeed float64

	normal lin.Vec2
	// k is the 2x2 block-solve matrix, valid only when
	// pointCount == 2 (§4.7, §9 block-solve supplement).
	k Mat22

	points     [2]velocityConstraintPoint
	pointCount int
}

// Mat22 is a narrow alias so this file reads like the rest of the solver's
// vocabulary without importing lin.Mat22 everywhere by its long name.
type Mat22 = lin.Mat22

// positionConstraint mirrors velocityConstraint but carries only the data
// the position (Baumgarte) phase needs: local geometry, not velocities.
type positionConstraint struct {
	indexA, indexB int
	invMassA, invMassB float64
	invIA, invIB       float64
	localCenterA, localCenterB lin.Vec2

	localNormal lin.Vec2
	localPoint  lin.Vec2
	localPoints [2]lin.Vec2

	radiusA, radiusB float64
	kind             ManifoldKind
	pointCount       int
}

// contactSolver runs the sequential-impulse velocity and position phases
// over one island's contacts (§4.7).
type contactSolver struct {
	conf StepConf

	positions []bodyConstraint
	contacts  []*Contact

	velocityConstraints []velocityConstraint
	positionConstraints []positionConstraint
}

// newContactSolver builds per-contact constraint data from the island's
// current manifolds. Bodies must already have been snapshotted into
// positions (§4.7, §4.8 step 3c).
func newContactSolver(conf StepConf, positions []bodyConstraint, contacts []*Contact) *contactSolver {
	s := &contactSolver{
		conf:      conf,
		positions: positions,
		contacts:  contacts,
	}
	s.velocityConstraints = make([]velocityConstraint, len(contacts))
	s.positionConstraints = make([]positionConstraint, len(contacts))

	for i, c := range contacts {
		m := c.manifold
		fA, fB := c.fixtureA, c.fixtureB
		ia, ib := fA.body.islandIndex, fB.body.islandIndex
		ca, cb := &positions[ia], &positions[ib]

		vc := &s.velocityConstraints[i]
		*vc = velocityConstraint{
			contact:      c,
			indexA:       ia,
			indexB:       ib,
			invMassA:     ca.invMass,
			invMassB:     cb.invMass,
			invIA:        ca.invI,
			invIB:        cb.invI,
			friction:     c.friction,
			restitution:  c.restitution,
			tangentSpeed: c.tangentSpeed,
			pointCount:   m.PointCount,
		}
		for j := 0; j < m.PointCount; j++ {
			vp := &vc.points[j]
			if conf.DoWarmStart {
				vp.normalImpulse = m.Points[j].NormalImpulse
				vp.tangentImpulse = m.Points[j].TangentImpulse
			}
		}

		pc := &s.positionConstraints[i]
		*pc = positionConstraint{
			indexA:       ia,
			indexB:       ib,
			invMassA:     ca.invMass,
			invMassB:     cb.invMass,
			invIA:        ca.invI,
			invIB:        cb.invI,
			localCenterA: ca.localCenter,
			localCenterB: cb.localCenter,
			localNormal:  m.LocalNormal,
			localPoint:   m.LocalPoint,
			radiusA:      shapeRadius(fA.shape),
			radiusB:      shapeRadius(fB.shape),
			kind:         m.Kind,
			pointCount:   m.PointCount,
		}
		for j := 0; j < m.PointCount; j++ {
			pc.localPoints[j] = m.Points[j].LocalPoint
		}
	}
	return s
}

func shapeRadius(s Shape) float64 {
	switch v := s.(type) {
	case *Disk:
		return v.Radius
	case *Edge:
		return v.Radius
	case *Polygon:
		return v.Radius
	default:
		return 0
	}
}

// initializeVelocityConstraints resolves each manifold point's world-space
// anchors, effective masses and restitution bias from the positions
// snapshotted at the start of the step (§4.7).
func (s *contactSolver) initializeVelocityConstraints() {
	for i := range s.velocityConstraints {
		vc := &s.velocityConstraints[i]
		pc := &s.positionConstraints[i]
		ca, cb := &s.positions[vc.indexA], &s.positions[vc.indexB]

		xfA := lin.T{P: ca.position.P.Sub(ca.position.Q.Apply(ca.localCenter)), Q: ca.position.Q}
		xfB := lin.T{P: cb.position.P.Sub(cb.position.Q.Apply(cb.localCenter)), Q: cb.position.Q}

		worldNormal, worldPoints, _ := worldManifold(pc, xfA, xfB)
		vc.normal = worldNormal

		for j := 0; j < vc.pointCount; j++ {
			vp := &vc.points[j]
			vp.rA = worldPoints[j].Sub(ca.position.P)
			vp.rB = worldPoints[j].Sub(cb.position.P)

			rnA := lin.Cross2(vp.rA, vc.normal)
			rnB := lin.Cross2(vp.rB, vc.normal)
			kNormal := vc.invMassA + vc.invMassB + vc.invIA*rnA*rnA + vc.invIB*rnB*rnB
			if kNormal > 0 {
				vp.normalMass = 1 / kNormal
			}

			tangent := lin.CrossVS(vc.normal, 1)
			rtA := lin.Cross2(vp.rA, tangent)
			rtB := lin.Cross2(vp.rB, tangent)
			kTangent := vc.invMassA + vc.invMassB + vc.invIA*rtA*rtA + vc.invIB*rtB*rtB
			if kTangent > 0 {
				vp.tangentMass = 1 / kTangent
			}

			vRelN := vc.restitution * relativeNormalVelocity(ca, cb, vp.rA, vp.rB, vc.normal)
			vp.velocityBias = 0
			if vRelN < -s.conf.VelocityThreshold {
				vp.velocityBias = -vRelN
			}
		}

		if vc.pointCount == 2 {
			vc.k = blockSolveK(vc)
		}
	}
}

func relativeNormalVelocity(ca, cb *bodyConstraint, rA, rB, normal lin.Vec2) float64 {
	vA := ca.linearVelocity.Add(lin.CrossSV(ca.angularVelocity, rA))
	vB := cb.linearVelocity.Add(lin.CrossSV(cb.angularVelocity, rB))
	return normal.Dot(vB.Sub(vA))
}

// blockSolveK assembles the 2x2 effective-mass matrix used by the 2-point
// block solver (§4.7, §9). A singular K (zero determinant) is detected by
// solveVelocityConstraints, which then solves the two points one at a time
// on the single-point path.
func blockSolveK(vc *velocityConstraint) Mat22 {
	p0, p1 := &vc.points[0], &vc.points[1]
	rn1A, rn1B := lin.Cross2(p0.rA, vc.normal), lin.Cross2(p0.rB, vc.normal)
	rn2A, rn2B := lin.Cross2(p1.rA, vc.normal), lin.Cross2(p1.rB, vc.normal)

	k11 := vc.invMassA + vc.invMassB + vc.invIA*rn1A*rn1A + vc.invIB*rn1B*rn1B
	k22 := vc.invMassA + vc.invMassB + vc.invIA*rn2A*rn2A + vc.invIB*rn2B*rn2B
	k12 := vc.invMassA + vc.invMassB + vc.invIA*rn1A*rn2A + vc.invIB*rn1B*rn2B

	return lin.NewMat22S(k11, k12, k12, k22)
}

// warmStart applies the prior step's accumulated impulses before the first
// velocity iteration (§4.7).
func (s *contactSolver) warmStart() {
	if !s.conf.DoWarmStart {
		return
	}
	for i := range s.velocityConstraints {
		vc := &s.velocityConstraints[i]
		ca, cb := &s.positions[vc.indexA], &s.positions[vc.indexB]
		tangent := lin.CrossVS(vc.normal, 1)

		for j := 0; j < vc.pointCount; j++ {
			vp := &vc.points[j]
			p := lin.MulSV(vp.normalImpulse, vc.normal).Add(lin.MulSV(vp.tangentImpulse, tangent))
			ca.linearVelocity = ca.linearVelocity.Sub(lin.MulSV(vc.invMassA, p))
			ca.angularVelocity -= vc.invIA * lin.Cross2(vp.rA, p)
			cb.linearVelocity = cb.linearVelocity.Add(lin.MulSV(vc.invMassB, p))
			cb.angularVelocity += vc.invIB * lin.Cross2(vp.rB, p)
		}
	}
}

// solveVelocityConstraints runs one velocity iteration over every contact:
// tangent (friction) impulse first, clamped to the Coulomb cone of the
// current normal impulse, then the normal impulse itself -- 1-point solve
// directly, 2-point solve via the block K matrix when DoBlockSolve allows
// it (§4.7, §9).
func (s *contactSolver) solveVelocityConstraints() {
	for i := range s.velocityConstraints {
		vc := &s.velocityConstraints[i]
		ca, cb := &s.positions[vc.indexA], &s.positions[vc.indexB]
		tangent := lin.CrossVS(vc.normal, 1)

		for j := 0; j < vc.pointCount; j++ {
			vp := &vc.points[j]
			dv := cb.linearVelocity.Add(lin.CrossSV(cb.angularVelocity, vp.rB)).
				Sub(ca.linearVelocity.Add(lin.CrossSV(ca.angularVelocity, vp.rA)))
			vt := dv.Dot(tangent) - vc.tangentSpeed
			lambda := vp.tangentMass * -vt

			maxFriction := vc.friction * vp.normalImpulse
			newImpulse := lin.Clamp(vp.tangentImpulse+lambda, -maxFriction, maxFriction)
			lambda = newImpulse - vp.tangentImpulse
			vp.tangentImpulse = newImpulse

			p := lin.MulSV(lambda, tangent)
			ca.linearVelocity = ca.linearVelocity.Sub(lin.MulSV(vc.invMassA, p))
			ca.angularVelocity -= vc.invIA * lin.Cross2(vp.rA, p)
			cb.linearVelocity = cb.linearVelocity.Add(lin.MulSV(vc.invMassB, p))
			cb.angularVelocity += vc.invIB * lin.Cross2(vp.rB, p)
		}

		if vc.pointCount == 1 || !s.conf.DoBlockSolve || vc.k.Determinant() == 0 {
			for j := 0; j < vc.pointCount; j++ {
				vp := &vc.points[j]
				dv := cb.linearVelocity.Add(lin.CrossSV(cb.angularVelocity, vp.rB)).
					Sub(ca.linearVelocity.Add(lin.CrossSV(ca.angularVelocity, vp.rA)))
				vn := dv.Dot(vc.normal)
				lambda := -vp.normalMass * (vn - vp.velocityBias)

				newImpulse := math.Max(vp.normalImpulse+lambda, 0)
				lambda = newImpulse - vp.normalImpulse
				vp.normalImpulse = newImpulse

				p := lin.MulSV(lambda, vc.normal)
				ca.linearVelocity = ca.linearVelocity.Sub(lin.MulSV(vc.invMassA, p))
				ca.angularVelocity -= vc.invIA * lin.Cross2(vp.rA, p)
				cb.linearVelocity = cb.linearVelocity.Add(lin.MulSV(vc.invMassB, p))
				cb.angularVelocity += vc.invIB * lin.Cross2(vp.rB, p)
			}
			continue
		}

		s.solveBlock(vc, ca, cb)
	}
}

// solveBlock is the 2-point block solve (§4.7, §9): the two normal
// impulses are found together by solving the 2x2 LCP-like system in one
// shot instead of sequentially, which converges faster for stacked boxes.
// A singular K does not reach here: solveVelocityConstraints sends it to
// the single-point path.
func (s *contactSolver) solveBlock(vc *velocityConstraint, ca, cb *bodyConstraint) {
	p0, p1 := &vc.points[0], &vc.points[1]

	a := lin.Vec2{p0.normalImpulse, p1.normalImpulse}
	if a[0] < 0 || a[1] < 0 {
		return
	}

	dv1 := cb.linearVelocity.Add(lin.CrossSV(cb.angularVelocity, p0.rB)).
		Sub(ca.linearVelocity.Add(lin.CrossSV(ca.angularVelocity, p0.rA)))
	dv2 := cb.linearVelocity.Add(lin.CrossSV(cb.angularVelocity, p1.rB)).
		Sub(ca.linearVelocity.Add(lin.CrossSV(ca.angularVelocity, p1.rA)))

	vn1 := dv1.Dot(vc.normal) - p0.velocityBias
	vn2 := dv2.Dot(vc.normal) - p1.velocityBias

	b := lin.Vec2{vn1, vn2}.Sub(vc.k.MulV(a))

	x := vc.k.Inverse().MulV(lin.Vec2{-b[0], -b[1]})
	if vc.k.Determinant() == 0 || x[0] < 0 || x[1] < 0 {
		// Degenerate K or a negative solution: clamp point 1 to zero and
		// solve for point 2 alone, the standard fallback for this case.
		x = lin.Vec2{0, -b[1] / kDiag(vc, 1)}
		if x[1] < 0 {
			x = lin.Vec2{0, 0}
		}
	}

	d := lin.Vec2{x[0] - a[0], x[1] - a[1]}
	p0.normalImpulse, p1.normalImpulse = x[0], x[1]

	pImpulse1 := lin.MulSV(d[0], vc.normal)
	pImpulse2 := lin.MulSV(d[1], vc.normal)
	total := pImpulse1.Add(pImpulse2)

	applyAngular1 := vc.invIA * (lin.Cross2(p0.rA, pImpulse1) + lin.Cross2(p1.rA, pImpulse2))
	applyAngular2 := vc.invIB * (lin.Cross2(p0.rB, pImpulse1) + lin.Cross2(p1.rB, pImpulse2))

	ca.linearVelocity = ca.linearVelocity.Sub(lin.MulSV(vc.invMassA, total))
	ca.angularVelocity -= applyAngular1
	cb.linearVelocity = cb.linearVelocity.Add(lin.MulSV(vc.invMassB, total))
	cb.angularVelocity += applyAngular2
}

func kDiag(vc *velocityConstraint, idx int) float64 {
	if idx == 0 {
		return vc.k.Col1[0]
	}
	return vc.k.Col2[1]
}

// storeImpulses writes the accumulated impulses back into the contact's
// manifold so next step's Update can warm-start from them (§4.6, §4.7).
func (s *contactSolver) storeImpulses() {
	for i := range s.velocityConstraints {
		vc := &s.velocityConstraints[i]
		m := &vc.contact.manifold
		for j := 0; j < vc.pointCount; j++ {
			m.Points[j].NormalImpulse = vc.points[j].normalImpulse
			m.Points[j].TangentImpulse = vc.points[j].tangentImpulse
		}
	}
}

// solvePositionConstraints runs one Baumgarte position-correction pass,
// nudging bodies apart along each contact's normal until the worst
// penetration is within slop (§4.7). It returns the minimum separation
// found, for the caller's early-out check.
func (s *contactSolver) solvePositionConstraints() float64 {
	minSeparation := 0.0

	for i := range s.positionConstraints {
		pc := &s.positionConstraints[i]
		ca, cb := &s.positions[pc.indexA], &s.positions[pc.indexB]

		for j := 0; j < pc.pointCount; j++ {
			xfA := lin.T{P: ca.position.P.Sub(ca.position.Q.Apply(ca.localCenter)), Q: ca.position.Q}
			xfB := lin.T{P: cb.position.P.Sub(cb.position.Q.Apply(cb.localCenter)), Q: cb.position.Q}

			normal, point, separation := positionSolverData(pc, xfA, xfB, j)
			if separation < minSeparation {
				minSeparation = separation
			}

			rA := point.Sub(ca.position.P)
			rB := point.Sub(cb.position.P)

			c := lin.Clamp(s.conf.Baumgarte*(separation+s.conf.LinearSlop), -s.conf.MaxLinearCorrection, 0)

			rnA := lin.Cross2(rA, normal)
			rnB := lin.Cross2(rB, normal)
			k := pc.invMassA + pc.invMassB + pc.invIA*rnA*rnA + pc.invIB*rnB*rnB
			var impulse float64
			if k > 0 {
				impulse = -c / k
			}

			p := lin.MulSV(impulse, normal)
			ca.position.P = ca.position.P.Sub(lin.MulSV(pc.invMassA, p))
			ca.position.Q = lin.NewRot(ca.position.Q.Angle() - pc.invIA*lin.Cross2(rA, p))
			cb.position.P = cb.position.P.Add(lin.MulSV(pc.invMassB, p))
			cb.position.Q = lin.NewRot(cb.position.Q.Angle() + pc.invIB*lin.Cross2(rB, p))
		}
	}
	return minSeparation
}

// worldManifold resolves a manifold's local geometry to world space given
// the two bodies' current (solver-local) transforms (§3, §4.6).
func worldManifold(pc *positionConstraint, xfA, xfB lin.T) (normal lin.Vec2, points [2]lin.Vec2, separations [2]float64) {
	switch pc.kind {
	case ManifoldCircles:
		pointA := xfA.Apply(pc.localPoint)
		pointB := xfB.Apply(pc.localPoints[0])
		normal = lin.Vec2{1, 0}
		if pointB.Sub(pointA).Len() > lin.Epsilon {
			normal = lin.MulSV(1/pointB.Sub(pointA).Len(), pointB.Sub(pointA))
		}
		cA := pointA.Add(lin.MulSV(pc.radiusA, normal))
		cB := pointB.Sub(lin.MulSV(pc.radiusB, normal))
		points[0] = lin.MulSV(0.5, cA.Add(cB))
		separations[0] = pointB.Sub(pointA).Len() - pc.radiusA - pc.radiusB
	case ManifoldFaceA:
		normal = xfA.Q.Apply(pc.localNormal)
		planePoint := xfA.Apply(pc.localPoint)
		for i := 0; i < pc.pointCount; i++ {
			clip := xfB.Apply(pc.localPoints[i])
			separations[i] = clip.Sub(planePoint).Dot(normal) - pc.radiusA - pc.radiusB
			cA := clip.Add(lin.MulSV(pc.radiusA-clip.Sub(planePoint).Dot(normal), normal))
			cB := clip.Sub(lin.MulSV(pc.radiusB, normal))
			points[i] = lin.MulSV(0.5, cA.Add(cB))
		}
	case ManifoldFaceB:
		normal = xfB.Q.Apply(pc.localNormal)
		planePoint := xfB.Apply(pc.localPoint)
		for i := 0; i < pc.pointCount; i++ {
			clip := xfA.Apply(pc.localPoints[i])
			separations[i] = clip.Sub(planePoint).Dot(normal) - pc.radiusA - pc.radiusB
			cB := clip.Add(lin.MulSV(pc.radiusB-clip.Sub(planePoint).Dot(normal), normal))
			cA := clip.Sub(lin.MulSV(pc.radiusA, normal))
			points[i] = lin.MulSV(0.5, cA.Add(cB))
		}
		// FaceB manifolds store the normal pointing from B to A in local
		// space; flip to the A-to-B convention the velocity solver expects.
		normal = lin.MulSV(-1, normal)
	}
	return normal, points, separations
}

// positionSolverData is worldManifold specialized to a single point index,
// used by the position phase which (unlike the velocity phase) needs to
// re-derive world geometry every iteration as bodies move.
func positionSolverData(pc *positionConstraint, xfA, xfB lin.T, index int) (normal, point lin.Vec2, separation float64) {
	n, pts, seps := worldManifold(pc, xfA, xfB)
	return n, pts[index], seps[index]
}

// contactImpulse reads back the per-point normal/tangent impulses
// storeImpulses just wrote into c's manifold, for reporting to
// Listener.PostSolve (§6 Listener interface).
func contactImpulse(c *Contact) ContactImpulse {
	var imp ContactImpulse
	imp.Count = c.manifold.PointCount
	for i := 0; i < c.manifold.PointCount; i++ {
		imp.NormalImpulses[i] = c.manifold.Points[i].NormalImpulse
		imp.TangentImpulses[i] = c.manifold.Points[i].TangentImpulse
	}
	return imp
}

// solveIsland runs the full velocity-then-position solve for one island's
// bodies, contacts and joints over one (sub)step (§4.7, §4.8 steps 3c-3g).
// dt is the time this (sub)step advances; velocityIters/positionIters let
// the caller use the TOI-tuned iteration counts for mini-islands. It
// reports whether the position phase converged within positionIters (§8
// invariants 5-6), and fires listener.PostSolve for every non-sensor
// touching contact right after impulses are stored (§5's ordering
// guarantee: post_solve follows the velocity solver).
func solveIsland(island *Island, conf StepConf, dt float64, velocityIters, positionIters int, gravity lin.Vec2, listener Listener) bool {
	island.positions = make([]bodyConstraint, len(island.bodies))
	velocities := make([]lin.Vec2, len(island.bodies))
	angularVelocities := make([]float64, len(island.bodies))

	for i, b := range island.bodies {
		island.positions[i] = bodyConstraint{
			body:            b,
			invMass:         b.invMass,
			invI:            b.invI,
			localCenter:     b.localCenter,
			position:        lin.T{P: b.sweep.C, Q: b.sweep.A},
			linearVelocity:  b.linearVelocity,
			angularVelocity: b.angularVelocity,
		}
		if b.accelerable() {
			v := b.linearVelocity.Add(lin.MulSV(dt, lin.MulSV(b.gravityScale, gravity).Add(lin.MulSV(b.invMass, b.force))))
			v = lin.MulSV(1/(1+dt*b.linearDamping), v)
			w := b.angularVelocity + dt*b.invI*b.torque
			w = w / (1 + dt*b.angularDamping)
			island.positions[i].linearVelocity = v
			island.positions[i].angularVelocity = clampAngularVelocity(w, dt)
		}
		velocities[i] = island.positions[i].linearVelocity
		angularVelocities[i] = island.positions[i].angularVelocity
	}

	solver := newContactSolver(conf, island.positions, island.contacts)
	solver.initializeVelocityConstraints()
	solver.warmStart()
	for _, j := range island.joints {
		j.InitVelocityConstraints(island.positions, conf)
	}

	for iter := 0; iter < velocityIters; iter++ {
		for _, j := range island.joints {
			j.SolveVelocityConstraints(island.positions)
		}
		solver.solveVelocityConstraints()
	}
	solver.storeImpulses()

	if listener != nil {
		for _, c := range island.contacts {
			if !c.IsTouching() || c.isSensor() {
				continue
			}
			listener.PostSolve(c, contactImpulse(c))
		}
	}

	for i := range island.positions {
		pos := &island.positions[i]
		translation := lin.MulSV(dt, pos.linearVelocity)
		if translation.Dot(translation) > conf.MaxTranslation*conf.MaxTranslation {
			ratio := conf.MaxTranslation / translation.Len()
			pos.linearVelocity = lin.MulSV(ratio, pos.linearVelocity)
		}
		rotation := dt * pos.angularVelocity
		if rotation*rotation > conf.MaxRotation*conf.MaxRotation {
			ratio := conf.MaxRotation / math.Abs(rotation)
			pos.angularVelocity *= ratio
		}
		pos.position.P = pos.position.P.Add(lin.MulSV(dt, pos.linearVelocity))
		pos.position.Q = lin.NewRot(pos.position.Q.Angle() + dt*pos.angularVelocity)
	}

	positionSolved := false
	for iter := 0; iter < positionIters; iter++ {
		contactsOK := solver.solvePositionConstraints() >= -3*conf.LinearSlop
		jointsOK := true
		for _, j := range island.joints {
			if !j.SolvePositionConstraints(island.positions, conf) {
				jointsOK = false
			}
		}
		if contactsOK && jointsOK {
			positionSolved = true
			break
		}
	}

	for i, b := range island.bodies {
		pos := &island.positions[i]
		b.linearVelocity = pos.linearVelocity
		b.angularVelocity = pos.angularVelocity
		b.sweep.C, b.sweep.A = pos.position.P, pos.position.Q
		b.sweep.C0, b.sweep.A0 = pos.position.P, pos.position.Q
		b.synchronizeTransform()
	}

	if !positionSolved {
		logger.Debug("island position phase did not converge", slog.Int("bodies", len(island.bodies)), slog.Int("positionIters", positionIters))
	}
	return positionSolved
}
