// Copyright © 2024 Galvanized Logic Inc.

package physics

import (
	"log/slog"
	"math"

	"github.com/pellucid/phys2d/math/lin"
)

const nullNode = -1

// treeNode is either an internal node (both children set, userData nil) or
// a leaf (both children nullNode, userData set). Freed nodes reuse the
// parent field as the freelist's next pointer (§9: ports the source's
// parent/next union as two states of one field rather than a tagged sum,
// since the discriminant would cost more than the union saved).
type treeNode struct {
	aabb   AABB
	parent int // also "next" when the node is on the freelist
	child1 int
	child2 int
	height int // -1 means this slot is free
	data   any
}

func (n *treeNode) isLeaf() bool { return n.child1 == nullNode }

// Tree is a dynamic AABB bounding-volume hierarchy (§4.1). Leaves store a
// fattened AABB so bodies can move a small amount without triggering a
// tree update. All node references are slice indices, never pointers, so
// the node pool may grow by reallocation without invalidating external ids.
type Tree struct {
	nodes     []treeNode
	root      int
	freeList  int
	nodeCount int
}

// NewTree returns an empty tree with a small initial capacity.
func NewTree() *Tree {
	t := &Tree{root: nullNode}
	t.nodes = make([]treeNode, 16)
	for i := range t.nodes {
		t.nodes[i] = treeNode{parent: i + 1, height: -1}
	}
	t.nodes[len(t.nodes)-1].parent = nullNode
	t.freeList = 0
	return t
}

// allocateNode pops a node off the freelist, growing (doubling) the pool
// first if it is empty.
func (t *Tree) allocateNode() int {
	if t.freeList == nullNode {
		old := len(t.nodes)
		grown := make([]treeNode, old*2)
		copy(grown, t.nodes)
		for i := old; i < len(grown); i++ {
			grown[i] = treeNode{parent: i + 1, height: -1}
		}
		grown[len(grown)-1].parent = nullNode
		t.nodes = grown
		t.freeList = old
		logger.Debug("tree freelist exhausted, growing node pool", slog.Int("from", old), slog.Int("to", len(grown)))
	}
	id := t.freeList
	t.freeList = t.nodes[id].parent
	t.nodes[id] = treeNode{parent: nullNode, child1: nullNode, child2: nullNode, height: 0}
	t.nodeCount++
	return id
}

func (t *Tree) freeNode(id int) {
	t.nodes[id] = treeNode{parent: t.freeList, height: -1}
	t.freeList = id
	t.nodeCount--
}

// CreateProxy inserts a leaf for aabb fattened by AabbExtension and returns
// its stable id.
func (t *Tree) CreateProxy(aabb AABB, data any) int {
	id := t.allocateNode()
	t.nodes[id].aabb = aabb.Extend(AabbExtension)
	t.nodes[id].data = data
	t.nodes[id].height = 0
	t.insertLeaf(id)
	return id
}

// DestroyProxy removes leaf id, rebalancing on the way up.
func (t *Tree) DestroyProxy(id int) {
	t.removeLeaf(id)
	t.freeNode(id)
}

// MoveProxy implements update_proxy: if tightAABB still fits inside the
// leaf's stored fat AABB, it does nothing and returns false. Otherwise it
// recomputes a fat AABB — extended by AabbExtension and additionally
// unioned with the tight box predictively translated by displacement — and
// reinserts, returning true.
func (t *Tree) MoveProxy(id int, tightAABB AABB, displacement lin.Vec2) bool {
	fat := t.nodes[id].aabb
	if fat.Contains(tightAABB) {
		return false
	}
	t.removeLeaf(id)

	newFat := tightAABB.Extend(AabbExtension)
	predicted := tightAABB.Translate(lin.MulSV(AabbMultiplier, displacement)).Extend(AabbExtension)
	newFat = newFat.Union(predicted)

	t.nodes[id].aabb = newFat
	t.insertLeaf(id)
	return true
}

// FatAABB returns the stored (fattened) AABB for a proxy.
func (t *Tree) FatAABB(id int) AABB { return t.nodes[id].aabb }

// UserData returns the opaque value passed to CreateProxy.
func (t *Tree) UserData(id int) any { return t.nodes[id].data }

// insertLeaf implements the perimeter-minimizing insertion heuristic of
// §4.1, then walks back to the root fixing AABB/height and rebalancing.
func (t *Tree) insertLeaf(leaf int) {
	if t.root == nullNode {
		t.root = leaf
		t.nodes[leaf].parent = nullNode
		return
	}

	leafAABB := t.nodes[leaf].aabb
	index := t.root
	for !t.nodes[index].isLeaf() {
		child1, child2 := t.nodes[index].child1, t.nodes[index].child2
		area := t.nodes[index].aabb.Perimeter()
		combined := t.nodes[index].aabb.Union(leafAABB)
		combinedArea := combined.Perimeter()

		cost := 2 * combinedArea
		inheritanceCost := 2 * (combinedArea - area)

		cost1 := t.childInsertCost(child1, leafAABB) + inheritanceCost
		cost2 := t.childInsertCost(child2, leafAABB) + inheritanceCost

		if cost < cost1 && cost < cost2 {
			break
		}
		if cost1 < cost2 {
			index = child1
		} else {
			index = child2
		}
	}

	sibling := index
	oldParent := t.nodes[sibling].parent
	newParent := t.allocateNode()
	t.nodes[newParent].parent = oldParent
	t.nodes[newParent].aabb = leafAABB.Union(t.nodes[sibling].aabb)
	t.nodes[newParent].height = t.nodes[sibling].height + 1

	if oldParent != nullNode {
		if t.nodes[oldParent].child1 == sibling {
			t.nodes[oldParent].child1 = newParent
		} else {
			t.nodes[oldParent].child2 = newParent
		}
		t.nodes[newParent].child1 = sibling
		t.nodes[newParent].child2 = leaf
		t.nodes[sibling].parent = newParent
		t.nodes[leaf].parent = newParent
	} else {
		t.nodes[newParent].child1 = sibling
		t.nodes[newParent].child2 = leaf
		t.nodes[sibling].parent = newParent
		t.nodes[leaf].parent = newParent
		t.root = newParent
	}

	t.fixupAncestors(t.nodes[leaf].parent)
}

// childInsertCost is either the perimeter of the leaf AABB unioned with the
// child (if the child is a leaf) or the perimeter delta of unioning into
// that subtree.
func (t *Tree) childInsertCost(child int, leafAABB AABB) float64 {
	if t.nodes[child].isLeaf() {
		return leafAABB.Union(t.nodes[child].aabb).Perimeter()
	}
	oldArea := t.nodes[child].aabb.Perimeter()
	newArea := leafAABB.Union(t.nodes[child].aabb).Perimeter()
	return newArea - oldArea
}

// fixupAncestors walks from index to the root, recomputing AABB/height
// and rebalancing by single rotation at every unbalanced ancestor on the
// way up.
func (t *Tree) fixupAncestors(index int) {
	for index != nullNode {
		index = t.balance(index)
		child1, child2 := t.nodes[index].child1, t.nodes[index].child2
		t.nodes[index].height = 1 + maxInt(t.nodes[child1].height, t.nodes[child2].height)
		t.nodes[index].aabb = t.nodes[child1].aabb.Union(t.nodes[child2].aabb)
		index = t.nodes[index].parent
	}
}

// balance rebalances the subtree rooted at iA by a single rotation,
// promoting the taller grandchild, if the height difference between its
// two children is at least 2. Returns the new root of the subtree.
func (t *Tree) balance(iA int) int {
	a := &t.nodes[iA]
	if a.isLeaf() || a.height < 2 {
		return iA
	}
	iB, iC := a.child1, a.child2
	balanceFactor := t.nodes[iC].height - t.nodes[iB].height

	if balanceFactor > 1 {
		return t.rotate(iA, iC, iB)
	}
	if balanceFactor < -1 {
		return t.rotate(iA, iB, iC)
	}
	return iA
}

// rotate promotes iHeavy (the taller child of iA) to iA's old position, and
// demotes iA to take iHeavy's old place, reparenting the lighter grandchild
// onto iA to keep the tree balanced. iLight is iA's other child.
func (t *Tree) rotate(iA, iHeavy, iLight int) int {
	heavy := &t.nodes[iHeavy]
	iF, iG := heavy.child1, heavy.child2

	heavy.child1 = iA
	heavy.parent = t.nodes[iA].parent
	t.nodes[iA].parent = iHeavy

	if heavy.parent != nullNode {
		if t.nodes[heavy.parent].child1 == iA {
			t.nodes[heavy.parent].child1 = iHeavy
		} else {
			t.nodes[heavy.parent].child2 = iHeavy
		}
	} else {
		t.root = iHeavy
	}

	// attach the taller of iHeavy's own children to iHeavy, and give the
	// other one to iA in iHeavy's vacated slot.
	var keep, give int
	if t.nodes[iF].height > t.nodes[iG].height {
		keep, give = iF, iG
	} else {
		keep, give = iG, iF
	}
	heavy.child2 = keep
	t.nodes[iA].child1, t.nodes[iA].child2 = iLight, give
	t.nodes[give].parent = iA

	t.nodes[iA].aabb = t.nodes[iLight].aabb.Union(t.nodes[give].aabb)
	t.nodes[iA].height = 1 + maxInt(t.nodes[iLight].height, t.nodes[give].height)
	heavy.aabb = t.nodes[iA].aabb.Union(t.nodes[keep].aabb)
	heavy.height = 1 + maxInt(t.nodes[iA].height, t.nodes[keep].height)

	return iHeavy
}

// removeLeaf detaches leaf, collapsing its sibling into the grandparent's
// slot and rebalancing up to the root.
func (t *Tree) removeLeaf(leaf int) {
	if leaf == t.root {
		t.root = nullNode
		return
	}

	parent := t.nodes[leaf].parent
	grandParent := t.nodes[parent].parent
	var sibling int
	if t.nodes[parent].child1 == leaf {
		sibling = t.nodes[parent].child2
	} else {
		sibling = t.nodes[parent].child1
	}

	if grandParent != nullNode {
		if t.nodes[grandParent].child1 == parent {
			t.nodes[grandParent].child1 = sibling
		} else {
			t.nodes[grandParent].child2 = sibling
		}
		t.nodes[sibling].parent = grandParent
		t.freeNode(parent)
		t.fixupAncestors(grandParent)
	} else {
		t.root = sibling
		t.nodes[sibling].parent = nullNode
		t.freeNode(parent)
	}
}

// Query performs a stack-based DFS, invoking cb(id) for every leaf whose
// stored AABB overlaps aabb; a false return aborts the query early.
func (t *Tree) Query(aabb AABB, cb func(id int) bool) {
	if t.root == nullNode {
		return
	}
	stack := []int{t.root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == nullNode || !Overlaps(t.nodes[id].aabb, aabb) {
			continue
		}
		n := &t.nodes[id]
		if n.isLeaf() {
			if !cb(id) {
				return
			}
		} else {
			stack = append(stack, n.child1, n.child2)
		}
	}
}

// TreeRayCastInput mirrors Shape.RayCast's input for tree-level ray casts.
type TreeRayCastInput struct {
	P1, P2      lin.Vec2
	MaxFraction float64
}

// RayCast walks the tree, shrinking the segment each time cb returns a
// smaller fraction; returning 0 stops the cast, a negative value skips the
// leaf without shrinking the segment (§4.1, §6).
func (t *Tree) RayCast(input TreeRayCastInput, cb func(id int, p1, p2 lin.Vec2) float64) {
	if t.root == nullNode {
		return
	}
	p1, p2 := input.P1, input.P2
	r := p2.Sub(p1)
	if r.Dot(r) < lin.Epsilon {
		return
	}
	v := lin.Perp(r).Normalize()
	absV := lin.AbsV(v)

	maxFraction := input.MaxFraction
	segBounds := func(maxFrac float64) AABB {
		t2 := p1.Add(lin.MulSV(maxFrac, r))
		return AABB{Lower: lin.MinV(p1, t2), Upper: lin.MaxV(p1, t2)}
	}
	segmentAABB := segBounds(maxFraction)

	stack := []int{t.root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == nullNode {
			continue
		}
		n := &t.nodes[id]
		if !Overlaps(n.aabb, segmentAABB) {
			continue
		}
		c := n.aabb.Center()
		h := n.aabb.Extents()
		separation := math.Abs(v.Dot(p1.Sub(c))) - absV.Dot(h)
		if separation > 0 {
			continue
		}
		if n.isLeaf() {
			value := cb(id, p1, p1.Add(lin.MulSV(maxFraction, r)))
			if value == 0 {
				return
			}
			if value > 0 {
				maxFraction = value
				segmentAABB = segBounds(maxFraction)
			}
		} else {
			stack = append(stack, n.child1, n.child2)
		}
	}
}

// ShiftOrigin subtracts delta from every stored AABB corner, used when a
// host recenters a far-travelled world to preserve floating-point
// precision (§4.1, §8 origin-shift invariance).
func (t *Tree) ShiftOrigin(delta lin.Vec2) {
	for i := range t.nodes {
		if t.nodes[i].height == -1 {
			continue
		}
		t.nodes[i].aabb = t.nodes[i].aabb.Translate(lin.Vec2{-delta[0], -delta[1]})
	}
}

// Height returns the height of the root, 0 for a single leaf, -1 if empty.
func (t *Tree) Height() int {
	if t.root == nullNode {
		return -1
	}
	return t.nodes[t.root].height
}

// MaxBalance returns the maximum |height(left) - height(right)| over every
// internal node.
func (t *Tree) MaxBalance() int {
	maxBalance := 0
	for i := range t.nodes {
		n := &t.nodes[i]
		if n.height <= 1 || n.isLeaf() {
			continue
		}
		balance := absInt(t.nodes[n.child1].height - t.nodes[n.child2].height)
		if balance > maxBalance {
			maxBalance = balance
		}
	}
	return maxBalance
}

// AreaRatio returns sum(perimeter(internal nodes)) / perimeter(root), 0 if
// the tree is empty.
func (t *Tree) AreaRatio() float64 {
	if t.root == nullNode {
		return 0
	}
	rootPerimeter := t.nodes[t.root].aabb.Perimeter()
	var total float64
	for i := range t.nodes {
		n := &t.nodes[i]
		if n.height < 0 || n.isLeaf() {
			continue
		}
		total += n.aabb.Perimeter()
	}
	return total / rootPerimeter
}

// Validate walks the whole tree checking invariant 1 of §8: every internal
// node's AABB equals the union of its children's, and its height is one
// more than the taller child's.
func (t *Tree) Validate() bool {
	if t.root == nullNode {
		return true
	}
	return t.validateNode(t.root)
}

func (t *Tree) validateNode(id int) bool {
	n := &t.nodes[id]
	if n.isLeaf() {
		return n.height == 0
	}
	c1, c2 := &t.nodes[n.child1], &t.nodes[n.child2]
	if n.height != 1+maxInt(c1.height, c2.height) {
		return false
	}
	union := c1.aabb.Union(c2.aabb)
	if union != n.aabb {
		return false
	}
	return t.validateNode(n.child1) && t.validateNode(n.child2)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func absInt(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
