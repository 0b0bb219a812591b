// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"sort"

	"github.com/pellucid/phys2d/math/lin"
)

// pairKey is a canonicalized (min,max) proxy-id pair, used to deduplicate
// the pair buffer (§4.2).
type pairKey struct{ a, b int }

// BroadPhase owns one Tree and the move/pair buffers of §4.2. create_proxy
// forwards to the tree and enqueues the new id; update_proxy updates the
// tree and enqueues only if the tree's fat AABB actually changed;
// touch_proxy enqueues without touching the tree (used when a fixture
// filter changed and collision must be re-evaluated).
type BroadPhase struct {
	tree        *Tree
	moveBuffer  []int
	moveSet     map[int]bool
	pairBuffer  []pairKey
}

// NewBroadPhase returns an empty broad phase.
func NewBroadPhase() *BroadPhase {
	return &BroadPhase{tree: NewTree(), moveSet: map[int]bool{}}
}

// CreateProxy inserts a fattened leaf for aabb and enqueues it as moved.
func (bp *BroadPhase) CreateProxy(aabb AABB, data any) int {
	id := bp.tree.CreateProxy(aabb, data)
	bp.enqueueMove(id)
	return id
}

// DestroyProxy removes a proxy. Box2D's broad phase does not bother
// dequeuing it from the move buffer -- a stale id found there during
// UpdatePairs is simply skipped since the tree no longer has a fat AABB to
// query (this implementation guards that case explicitly).
func (bp *BroadPhase) DestroyProxy(id int) {
	delete(bp.moveSet, id)
	bp.tree.DestroyProxy(id)
}

// MoveProxy updates the proxy and enqueues it only if the tree reports the
// fat AABB actually changed.
func (bp *BroadPhase) MoveProxy(id int, tightAABB AABB, displacement lin.Vec2) {
	if bp.tree.MoveProxy(id, tightAABB, displacement) {
		bp.enqueueMove(id)
	}
}

// TouchProxy enqueues id for re-evaluation without touching the tree.
func (bp *BroadPhase) TouchProxy(id int) { bp.enqueueMove(id) }

func (bp *BroadPhase) enqueueMove(id int) {
	if bp.moveSet[id] {
		return
	}
	bp.moveSet[id] = true
	bp.moveBuffer = append(bp.moveBuffer, id)
}

// FatAABB returns the tree's stored fat AABB for id.
func (bp *BroadPhase) FatAABB(id int) AABB { return bp.tree.FatAABB(id) }

// UserData returns the opaque value passed to CreateProxy.
func (bp *BroadPhase) UserData(id int) any { return bp.tree.UserData(id) }

// TestOverlap reports whether two proxies' fat AABBs currently overlap.
func (bp *BroadPhase) TestOverlap(idA, idB int) bool {
	return Overlaps(bp.tree.FatAABB(idA), bp.tree.FatAABB(idB))
}

// Query runs a DFS over the tree for leaves overlapping aabb.
func (bp *BroadPhase) Query(aabb AABB, cb func(id int) bool) { bp.tree.Query(aabb, cb) }

// RayCast runs the tree's ray cast.
func (bp *BroadPhase) RayCast(input TreeRayCastInput, cb func(id int, p1, p2 lin.Vec2) float64) {
	bp.tree.RayCast(input, cb)
}

// ShiftOrigin forwards to the tree.
func (bp *BroadPhase) ShiftOrigin(delta lin.Vec2) { bp.tree.ShiftOrigin(delta) }

// Stats reports proxy/move/pair-buffer sizes for host instrumentation; it
// has no effect on §4.2's guarantees.
type BroadPhaseStats struct {
	ProxyCount int
	MoveCount  int
	PairCount  int
}

func (bp *BroadPhase) Stats() BroadPhaseStats {
	// Every internal node has two children, so n leaves take 2n-1 nodes.
	proxies := (bp.tree.nodeCount + 1) / 2
	return BroadPhaseStats{ProxyCount: proxies, MoveCount: len(bp.moveBuffer), PairCount: len(bp.pairBuffer)}
}

// UpdatePairs implements §4.2's algorithm: for each id in the move buffer,
// query the tree with that id's fat AABB and emit a canonicalized pair for
// every overlapping leaf whose id != self. The emitted list is sorted and
// deduplicated before cb is invoked once per unique pair. The move buffer
// is cleared on return.
func (bp *BroadPhase) UpdatePairs(cb func(dataA, dataB any)) {
	bp.pairBuffer = bp.pairBuffer[:0]

	for _, queryID := range bp.moveBuffer {
		if !bp.moveSet[queryID] {
			continue // destroyed after it was enqueued
		}
		fat := bp.tree.FatAABB(queryID)
		bp.tree.Query(fat, func(id int) bool {
			if id == queryID {
				return true
			}
			a, b := queryID, id
			if a > b {
				a, b = b, a
			}
			bp.pairBuffer = append(bp.pairBuffer, pairKey{a, b})
			return true
		})
	}

	for k := range bp.moveSet {
		delete(bp.moveSet, k)
	}
	bp.moveBuffer = bp.moveBuffer[:0]

	if len(bp.pairBuffer) == 0 {
		return
	}
	sort.Slice(bp.pairBuffer, func(i, j int) bool {
		if bp.pairBuffer[i].a != bp.pairBuffer[j].a {
			return bp.pairBuffer[i].a < bp.pairBuffer[j].a
		}
		return bp.pairBuffer[i].b < bp.pairBuffer[j].b
	})
	prev := pairKey{-1, -1}
	for _, p := range bp.pairBuffer {
		if p == prev {
			continue
		}
		prev = p
		cb(bp.tree.UserData(p.a), bp.tree.UserData(p.b))
	}
}
