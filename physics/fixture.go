// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package physics

// Filter controls which fixture pairs the contact manager considers for
// collision (§3 Fixture data model): two fixtures collide only if
// (a.categoryBits & b.maskBits) != 0 and (b.categoryBits & a.maskBits) != 0,
// unless they share a non-zero group index, in which case the group index's
// sign overrides the bitmask test.
type Filter struct {
	CategoryBits uint16
	MaskBits     uint16
	GroupIndex   int16
}

// DefaultFilter collides with everything.
var DefaultFilter = Filter{CategoryBits: 0x0001, MaskBits: 0xFFFF}

// shouldCollide implements the filter rule above.
func (f Filter) shouldCollide(g Filter) bool {
	if f.GroupIndex == g.GroupIndex && f.GroupIndex != 0 {
		return f.GroupIndex > 0
	}
	return f.CategoryBits&g.MaskBits != 0 && g.CategoryBits&f.MaskBits != 0
}

// FixtureDef describes a fixture to be created by Body.CreateFixture.
type FixtureDef struct {
	Shape       Shape
	Density     float64
	Friction    float64
	Restitution float64
	IsSensor    bool
	Filter      Filter
	UserData    any
}

// Fixture binds an immutable Shape to a Body with material properties used
// by the contact solver (§3). A fixture's lifetime never exceeds its body's.
type Fixture struct {
	body *Body

	shape       Shape
	density     float64
	friction    float64
	restitution float64
	isSensor    bool
	filter      Filter
	userData    any

	proxies []int // broad-phase proxy ids, one per shape child
}

func newFixture(b *Body, def FixtureDef) *Fixture {
	filter := def.Filter
	if filter == (Filter{}) {
		filter = DefaultFilter
	}
	f := &Fixture{
		body:        b,
		shape:       def.Shape,
		density:     def.Density,
		friction:    def.Friction,
		restitution: def.Restitution,
		isSensor:    def.IsSensor,
		filter:      filter,
		userData:    def.UserData,
	}
	f.proxies = make([]int, def.Shape.ChildCount())
	for i := range f.proxies {
		f.proxies[i] = -1
	}
	return f
}

// Body returns the owning body.
func (f *Fixture) Body() *Body { return f.body }

// Shape returns the fixture's (immutable, possibly shared) shape.
func (f *Fixture) Shape() Shape { return f.shape }

// IsSensor reports whether this fixture reports overlap without generating
// solid contact response (§4.6 step 2).
func (f *Fixture) IsSensor() bool { return f.isSensor }

// SetSensor toggles sensor behavior and marks incident contacts filter-dirty
// so the next collide pass re-evaluates touching state.
func (f *Fixture) SetSensor(flag bool) {
	if flag == f.isSensor {
		return
	}
	f.isSensor = flag
	for _, e := range f.body.contacts {
		if e.contact.fixtureA == f || e.contact.fixtureB == f {
			e.contact.flagFilterDirty()
		}
	}
}

// Filter returns the fixture's collision filter.
func (f *Fixture) Filter() Filter { return f.filter }

// SetFilter changes the fixture's collision filter and marks incident
// contacts filter-dirty so collision is re-evaluated.
func (f *Fixture) SetFilter(filter Filter) {
	f.filter = filter
	for _, e := range f.body.contacts {
		if e.contact.fixtureA == f || e.contact.fixtureB == f {
			e.contact.flagFilterDirty()
		}
	}
	f.body.world.touchFixtureProxies(f)
}

// Friction returns the fixture's surface friction coefficient.
func (f *Fixture) Friction() float64 { return f.friction }

// Restitution returns the fixture's bounciness coefficient.
func (f *Fixture) Restitution() float64 { return f.restitution }

// UserData returns the opaque value supplied at creation.
func (f *Fixture) UserData() any { return f.userData }
