// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"math"

	"github.com/pellucid/phys2d/math/lin"
)

// Joint is the solver contract concrete joints must satisfy (§4.7, §9).
// The core ships one concrete joint (DistanceJoint) purely to exercise this
// contract end-to-end in tests; every other joint type is an external
// collaborator.
type Joint interface {
	BodyA() *Body
	BodyB() *Body
	CollideConnected() bool

	// InitVelocityConstraints prepares per-step solver data (mass terms,
	// bias terms) from the island's body constraints.
	InitVelocityConstraints(bodies []bodyConstraint, conf StepConf)
	// SolveVelocityConstraints is called once per velocity iteration.
	SolveVelocityConstraints(bodies []bodyConstraint)
	// SolvePositionConstraints is called once per position iteration and
	// reports whether the joint is satisfied to within tolerance. An
	// island's position phase is "solved" only when every contact AND
	// every joint reports true (§4.7).
	SolvePositionConstraints(bodies []bodyConstraint, conf StepConf) bool
}

// jointEdge links a body to one of its incident joints, mirroring
// contactEdge.
type jointEdge struct {
	other *Body
	joint Joint
}

// DistanceJoint constrains the distance between an anchor point on each
// body to a fixed length. It is the simplest joint in the reference
// engine this core's contract was modeled on, and the one that engine's
// own test suite uses to exercise the Joint interface.
type DistanceJoint struct {
	bodyA, bodyB     *Body
	localAnchorA     lin.Vec2
	localAnchorB     lin.Vec2
	length           float64
	collideConnected bool

	// per-step solver state
	u                lin.Vec2
	rA, rB           lin.Vec2
	mass             float64
	bias             float64
	impulse          float64
}

// indices reads the island-local index the world stamps onto each body for
// the duration of a step (§3 Island, §9) rather than caching a private
// copy that could go stale if the body is re-islanded.
func (j *DistanceJoint) indices() (int, int) { return j.bodyA.islandIndex, j.bodyB.islandIndex }

// NewDistanceJoint creates a joint holding bodyA's anchorA and bodyB's
// anchorB (both in local coordinates) at their current world distance.
func NewDistanceJoint(bodyA, bodyB *Body, anchorA, anchorB lin.Vec2) *DistanceJoint {
	worldA := bodyA.xf.Apply(anchorA)
	worldB := bodyB.xf.Apply(anchorB)
	return &DistanceJoint{
		bodyA: bodyA, bodyB: bodyB,
		localAnchorA: anchorA, localAnchorB: anchorB,
		length: worldB.Sub(worldA).Len(),
	}
}

func (j *DistanceJoint) BodyA() *Body           { return j.bodyA }
func (j *DistanceJoint) BodyB() *Body           { return j.bodyB }
func (j *DistanceJoint) CollideConnected() bool { return j.collideConnected }

func (j *DistanceJoint) InitVelocityConstraints(bodies []bodyConstraint, conf StepConf) {
	ia, ib := j.indices()
	ca, cb := &bodies[ia], &bodies[ib]
	j.rA = ca.position.Q.Apply(j.localAnchorA.Sub(ca.localCenter))
	j.rB = cb.position.Q.Apply(j.localAnchorB.Sub(cb.localCenter))
	d := cb.position.P.Add(j.rB).Sub(ca.position.P.Add(j.rA))

	length := d.Len()
	if length > lin.Epsilon {
		j.u = lin.MulSV(1/length, d)
	} else {
		j.u = lin.Zero2
	}

	crA := lin.Cross2(j.rA, j.u)
	crB := lin.Cross2(j.rB, j.u)
	invMass := ca.invMass + ca.invI*crA*crA + cb.invMass + cb.invI*crB*crB
	if invMass > 0 {
		j.mass = 1 / invMass
	}

	c := length - j.length
	j.bias = conf.Baumgarte / conf.DeltaTime * c

	impulse := j.impulse
	p := lin.MulSV(impulse, j.u)
	ca.linearVelocity = ca.linearVelocity.Sub(lin.MulSV(ca.invMass, p))
	ca.angularVelocity -= ca.invI * lin.Cross2(j.rA, p)
	cb.linearVelocity = cb.linearVelocity.Add(lin.MulSV(cb.invMass, p))
	cb.angularVelocity += cb.invI * lin.Cross2(j.rB, p)
}

func (j *DistanceJoint) SolveVelocityConstraints(bodies []bodyConstraint) {
	ia, ib := j.indices()
	ca, cb := &bodies[ia], &bodies[ib]
	vpA := ca.linearVelocity.Add(lin.CrossSV(ca.angularVelocity, j.rA))
	vpB := cb.linearVelocity.Add(lin.CrossSV(cb.angularVelocity, j.rB))
	cdot := j.u.Dot(vpB.Sub(vpA))

	impulse := -j.mass * (cdot + j.bias)
	j.impulse += impulse

	p := lin.MulSV(impulse, j.u)
	ca.linearVelocity = ca.linearVelocity.Sub(lin.MulSV(ca.invMass, p))
	ca.angularVelocity -= ca.invI * lin.Cross2(j.rA, p)
	cb.linearVelocity = cb.linearVelocity.Add(lin.MulSV(cb.invMass, p))
	cb.angularVelocity += cb.invI * lin.Cross2(j.rB, p)
}

func (j *DistanceJoint) SolvePositionConstraints(bodies []bodyConstraint, conf StepConf) bool {
	ia, ib := j.indices()
	ca, cb := &bodies[ia], &bodies[ib]
	rA := ca.position.Q.Apply(j.localAnchorA.Sub(ca.localCenter))
	rB := cb.position.Q.Apply(j.localAnchorB.Sub(cb.localCenter))
	d := cb.position.P.Add(rB).Sub(ca.position.P.Add(rA))

	length := d.Len()
	var u lin.Vec2
	if length > lin.Epsilon {
		u = lin.MulSV(1/length, d)
	}
	c := lin.Clamp(length-j.length, -conf.MaxLinearCorrection, conf.MaxLinearCorrection)
	impulse := -j.mass * c

	crA, crB := lin.Cross2(rA, u), lin.Cross2(rB, u)
	invMass := ca.invMass + ca.invI*crA*crA + cb.invMass + cb.invI*crB*crB
	if invMass > 0 {
		impulse = -c / invMass
	}

	p := lin.MulSV(impulse, u)
	ca.position.P = ca.position.P.Sub(lin.MulSV(ca.invMass, p))
	ca.position.Q = lin.NewRot(ca.position.Q.Angle() - ca.invI*lin.Cross2(rA, p))
	cb.position.P = cb.position.P.Add(lin.MulSV(cb.invMass, p))
	cb.position.Q = lin.NewRot(cb.position.Q.Angle() + cb.invI*lin.Cross2(rB, p))

	return math.Abs(c) < LinearSlop
}
