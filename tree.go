package bkmeans

import (
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
)

// NodeID identifies a node in a cluster tree.
type NodeID int

// NoNode marks a missing parent or child.
const NoNode NodeID = -1

// Node is a read-only view of a cluster tree node.
//
// Internal nodes keep the center, cost and size of the cluster they held
// before being split.
type Node struct {
	ID     NodeID
	Parent NodeID
	Left   NodeID
	Right  NodeID
	Depth  int
	// LeafIndex is the position in Model.ClusterCenters, or -1 for
	// internal nodes.
	LeafIndex int
	Size      int
	Center    []float64
	Cost      float64

	members *roaring.Bitmap
}

// IsLeaf reports whether the node has no children.
func (n Node) IsLeaf() bool {
	return n.Left == NoNode && n.Right == NoNode
}

// Members returns the dataset row indices of the cluster in ascending
// order.
func (n Node) Members() []int {
	if n.members == nil {
		return nil
	}
	out := make([]int, 0, n.members.GetCardinality())
	it := n.members.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}

// Contains reports whether the dataset row belongs to the cluster.
func (n Node) Contains(row int) bool {
	if n.members == nil || row < 0 {
		return false
	}
	return n.members.Contains(uint32(row))
}

// Tree is the binary tree built by bisecting k-means. Nodes live in an
// arena indexed by NodeID; the root has ID 0.
type Tree struct {
	nodes  []Node
	leaves []NodeID
}

func newTree(center []float64, cost float64, members *roaring.Bitmap) *Tree {
	t := &Tree{}
	t.add(NoNode, center, cost, members)
	return t
}

func (t *Tree) add(parent NodeID, center []float64, cost float64, members *roaring.Bitmap) NodeID {
	id := NodeID(len(t.nodes))
	depth := 0
	if parent != NoNode {
		depth = t.nodes[parent].Depth + 1
	}
	t.nodes = append(t.nodes, Node{
		ID:        id,
		Parent:    parent,
		Left:      NoNode,
		Right:     NoNode,
		Depth:     depth,
		LeafIndex: -1,
		Size:      int(members.GetCardinality()),
		Center:    center,
		Cost:      cost,
		members:   members,
	})
	return id
}

func (t *Tree) attach(parent, left, right NodeID) {
	t.nodes[parent].Left = left
	t.nodes[parent].Right = right
}

// seal assigns leaf indices in left-to-right order.
func (t *Tree) seal() {
	t.leaves = t.leaves[:0]
	t.walk(func(n *Node) bool {
		if n.IsLeaf() {
			n.LeafIndex = len(t.leaves)
			t.leaves = append(t.leaves, n.ID)
		}
		return true
	})
}

// walk visits nodes in pre-order, left child first.
func (t *Tree) walk(fn func(*Node) bool) {
	if len(t.nodes) == 0 {
		return
	}
	stack := []NodeID{0}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &t.nodes[id]
		if !fn(n) {
			return
		}
		if n.Right != NoNode {
			stack = append(stack, n.Right)
		}
		if n.Left != NoNode {
			stack = append(stack, n.Left)
		}
	}
}

func (t *Tree) view(id NodeID) Node {
	n := t.nodes[id]
	n.Center = slices.Clone(n.Center)
	return n
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Root returns the root node.
func (t *Tree) Root() Node {
	return t.view(0)
}

// Node returns the node with the given ID.
func (t *Tree) Node(id NodeID) (Node, bool) {
	if id < 0 || int(id) >= len(t.nodes) {
		return Node{}, false
	}
	return t.view(id), true
}

// Leaves returns the leaves in left-to-right order.
func (t *Tree) Leaves() []Node {
	out := make([]Node, len(t.leaves))
	for i, id := range t.leaves {
		out[i] = t.view(id)
	}
	return out
}

// Walk visits nodes in pre-order, left child first, until fn returns false.
func (t *Tree) Walk(fn func(Node) bool) {
	t.walk(func(n *Node) bool {
		return fn(t.view(n.ID))
	})
}
