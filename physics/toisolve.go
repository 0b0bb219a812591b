// Copyright © 2013-2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "math"

// solveTOI implements §4.8 step 4: repeatedly find the contact with the
// smallest remaining time of impact across the whole world, advance its
// two bodies (and anything dragged along in their mini island) to that
// instant, and resolve it with a TOI-tuned solve pass, up to MaxSubSteps
// times per step.
func (w *World) solveTOI(conf StepConf) {
	for _, c := range w.contactManager.contacts {
		c.flags &^= contactToiValid
		c.toiSubstepCount = 0
	}

	for iter := 0; iter < conf.MaxSubSteps; iter++ {
		minContact, minAlpha := w.findMinTOIContact(conf)
		if minContact == nil || minAlpha > 1-10*epsilonTOI {
			break
		}

		bodyA, bodyB := minContact.fixtureA.body, minContact.fixtureB.body
		backupA, backupB := bodyA.sweep, bodyB.sweep
		bodyA.advance(minAlpha)
		bodyB.advance(minAlpha)

		minContact.Update(w.listener)
		minContact.flags &^= contactToiValid
		minContact.toiSubstepCount++

		if !minContact.IsTouching() || minContact.isSensor() {
			bodyA.sweep, bodyB.sweep = backupA, backupB
			bodyA.synchronizeTransform()
			bodyB.synchronizeTransform()
			continue
		}

		bodyA.SetAwake(true)
		bodyB.SetAwake(true)

		island := buildMiniIsland(bodyA, bodyB)
		remaining := (1 - minAlpha) * conf.DeltaTime
		solveIsland(island, conf, remaining, conf.ToiVelocityIterations, conf.ToiPositionIterations, w.gravity, w.listener)

		for _, b := range island.bodies {
			for _, e := range b.contacts {
				e.contact.flags &^= contactToiValid
			}
		}
	}
}

// epsilonTOI is the tolerance solveTOI uses to decide a TOI event is close
// enough to "end of step" to stop chasing. The root finder in toi.go works
// to its own LinearSlop-based tolerance instead.
const epsilonTOI = 1e-10

// findMinTOIContact scans every eligible contact, computing (and caching)
// its time of impact, and returns the one with the smallest alpha along
// with that alpha. A contact is eligible only if at least one side is a
// moving dynamic body, at least one side demands continuous collision
// (impenetrable, or simply non-dynamic on the other side), and at least
// one side is awake (§4.8 step 4a-4b).
func (w *World) findMinTOIContact(conf StepConf) (*Contact, float64) {
	var minContact *Contact
	minAlpha := 1.0

	for _, c := range w.contactManager.contacts {
		if !c.IsEnabled() || c.isSensor() {
			continue
		}
		if c.toiSubstepCount >= conf.MaxToiIters {
			continue
		}

		alpha := 1.0
		if c.flags&contactToiValid != 0 {
			alpha = c.toi
		} else {
			var ok bool
			alpha, ok = w.computeTOI(c, conf)
			if !ok {
				continue
			}
			c.toi = alpha
			c.flags |= contactToiValid
		}

		if alpha < minAlpha {
			minAlpha = alpha
			minContact = c
		}
	}
	return minContact, minAlpha
}

// computeTOI runs the eligibility checks and, if the pair qualifies,
// advances both sweeps' Alpha0 to their common start and calls
// TimeOfImpact (§4.8 step 4b-4c).
func (w *World) computeTOI(c *Contact, conf StepConf) (float64, bool) {
	bodyA, bodyB := c.fixtureA.body, c.fixtureB.body

	if bodyA.kind != DynamicBody && bodyB.kind != DynamicBody {
		return 0, false
	}
	activeA := bodyA.awake && bodyA.kind != StaticBody
	activeB := bodyB.awake && bodyB.kind != StaticBody
	if !activeA && !activeB {
		return 0, false
	}
	wantsTOI := bodyA.impenetrable || bodyB.impenetrable ||
		bodyA.kind != DynamicBody || bodyB.kind != DynamicBody
	if !wantsTOI {
		return 0, false
	}
	if !c.shouldCollide() || c.fixtureA.isSensor || c.fixtureB.isSensor {
		return 0, false
	}

	alpha0 := math.Max(bodyA.sweep.Alpha0, bodyB.sweep.Alpha0)
	bodyA.sweep.Advance(alpha0)
	bodyB.sweep.Advance(alpha0)

	input := ToiInput{
		ProxyA: c.fixtureA.shape.Child(c.indexA),
		ProxyB: c.fixtureB.shape.Child(c.indexB),
		SweepA: bodyA.sweep,
		SweepB: bodyB.sweep,
		TMax:   1,
	}
	target := math.Max(LinearSlop, conf.LinearSlop*3)
	tolerance := conf.LinearSlop * 0.25
	output := TimeOfImpact(input, target, tolerance, conf.MaxToiIters, conf.MaxRootIters, conf.MaxDistanceIters)

	if output.State != ToiTouching {
		return 1, true
	}
	// output.T is a beta fraction from the sweeps' (already advanced)
	// Alpha0 to 1 (lin.Sweep.GetTransform's convention); convert back to an
	// absolute step fraction.
	alpha := alpha0 + output.T*(1-alpha0)
	return math.Min(alpha, 1), true
}
