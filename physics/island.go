// Copyright © 2013-2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

import "github.com/pellucid/phys2d/math/lin"

// bodyConstraint is the per-island snapshot the solver mutates and the
// world writes back from at the end of the step (§3 BodyConstraint).
type bodyConstraint struct {
	body        *Body
	invMass     float64
	invI        float64
	localCenter lin.Vec2

	position lin.T // position.P is the center of mass, not the body origin
	linearVelocity  lin.Vec2
	angularVelocity float64
}

// Island is a transient per-step collection of bodies, contacts and joints
// flood-filled from one seed body (§3, §4.8). The island-local index
// stamped on each body is valid only between buildIsland and its teardown.
type Island struct {
	bodies   []*Body
	contacts []*Contact
	joints   []Joint

	positions []bodyConstraint
}

// buildIsland flood-fills one island starting at seed, following contact
// edges (touching, enabled, non-sensor) and joint edges; static bodies
// join the island (so they can be read by the solver) but do not
// propagate it further (§4.8 step 3b). islandedJoints is owned by the
// calling World and reset once per step by clearIslandFlags, so that two
// worlds stepped on separate goroutines never share state.
func buildIsland(seed *Body, islandedJoints map[Joint]bool) *Island {
	island := &Island{}
	stack := []*Body{seed}
	seed.islanded = true

	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		b.islandIndex = len(island.bodies)
		island.bodies = append(island.bodies, b)

		if b.kind == StaticBody {
			continue
		}

		for _, e := range b.contacts {
			c := e.contact
			if c.islanded {
				continue
			}
			if !c.IsTouching() || !c.IsEnabled() || c.isSensor() {
				continue
			}
			other := e.other
			if !other.enabled {
				continue
			}
			c.islanded = true
			island.contacts = append(island.contacts, c)
			if !other.islanded {
				other.islanded = true
				stack = append(stack, other)
			}
		}

		for _, e := range b.joints {
			if islandedJoints[e.joint] {
				continue
			}
			other := e.other
			if !other.enabled {
				continue
			}
			island.joints = append(island.joints, e.joint)
			islandedJoints[e.joint] = true
			if !other.islanded {
				other.islanded = true
				stack = append(stack, other)
			}
		}
	}
	return island
}

// clearIslandFlags resets the transient islanded bits on every body and
// contact, and empties islandedJoints, before a new regular-solve pass
// (§4.8 step 3a).
func clearIslandFlags(bodies []*Body, contacts []*Contact, islandedJoints map[Joint]bool) {
	for _, b := range bodies {
		b.islanded = false
	}
	for _, c := range contacts {
		c.islanded = false
	}
	for j := range islandedJoints {
		delete(islandedJoints, j)
	}
}

// buildMiniIsland seeds a TOI island from exactly two bodies, flood-filling
// only through touching contacts (not joints) to pull in neighbours
// dragged into the collision (§4.8 step 4d). Static bodies are included
// but do not propagate further, matching the regular island's static-body
// behavior.
func buildMiniIsland(a, b *Body) *Island {
	island := &Island{}
	seedOne := func(seed *Body) {
		seed.islandIndex = len(island.bodies)
		island.bodies = append(island.bodies, seed)
	}
	seedOne(a)
	seedOne(b)

	stack := []*Body{}
	if a.kind != StaticBody {
		stack = append(stack, a)
	}
	if b.kind != StaticBody {
		stack = append(stack, b)
	}
	visited := map[*Body]bool{a: true, b: true}

	for len(stack) > 0 {
		body := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range body.contacts {
			c := e.contact
			if !c.IsTouching() || !c.IsEnabled() || c.isSensor() {
				continue
			}
			if contains(island.contacts, c) {
				continue
			}
			island.contacts = append(island.contacts, c)
			other := e.other
			if visited[other] {
				continue
			}
			visited[other] = true
			other.islandIndex = len(island.bodies)
			island.bodies = append(island.bodies, other)
			if other.kind != StaticBody {
				stack = append(stack, other)
			}
		}
	}
	return island
}

func contains(cs []*Contact, c *Contact) bool {
	for _, x := range cs {
		if x == c {
			return true
		}
	}
	return false
}
