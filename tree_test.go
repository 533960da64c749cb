package bkmeans

import (
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTree() *Tree {
	//        0
	//      /   \
	//     1     2
	//          / \
	//         3   4
	t := newTree([]float64{0}, 10, roaring.BitmapOf(0, 1, 2, 3))
	l := t.add(0, []float64{-1}, 1, roaring.BitmapOf(0))
	r := t.add(0, []float64{1}, 4, roaring.BitmapOf(1, 2, 3))
	t.attach(0, l, r)
	rl := t.add(r, []float64{0.5}, 0.5, roaring.BitmapOf(1, 3))
	rr := t.add(r, []float64{2}, 0, roaring.BitmapOf(2))
	t.attach(r, rl, rr)
	t.seal()
	return t
}

func TestTree(t *testing.T) {
	tree := buildTree()

	t.Run("Structure", func(t *testing.T) {
		assert.Equal(t, 5, tree.Len())

		root := tree.Root()
		assert.Equal(t, NodeID(0), root.ID)
		assert.Equal(t, NoNode, root.Parent)
		assert.False(t, root.IsLeaf())
		assert.Equal(t, -1, root.LeafIndex)
		assert.Equal(t, 4, root.Size)

		n, ok := tree.Node(3)
		require.True(t, ok)
		assert.Equal(t, NodeID(2), n.Parent)
		assert.Equal(t, 2, n.Depth)
		assert.Equal(t, []int{1, 3}, n.Members())
		assert.True(t, n.Contains(3))
		assert.False(t, n.Contains(2))
		assert.False(t, n.Contains(-1))

		_, ok = tree.Node(5)
		assert.False(t, ok)
		_, ok = tree.Node(NoNode)
		assert.False(t, ok)
	})

	t.Run("Leaves", func(t *testing.T) {
		leaves := tree.Leaves()
		require.Len(t, leaves, 3)

		ids := make([]NodeID, len(leaves))
		for i, n := range leaves {
			ids[i] = n.ID
			assert.Equal(t, i, n.LeafIndex)
			assert.True(t, n.IsLeaf())
		}
		assert.Equal(t, []NodeID{1, 3, 4}, ids)
	})

	t.Run("Walk", func(t *testing.T) {
		var order []NodeID
		tree.Walk(func(n Node) bool {
			order = append(order, n.ID)
			return true
		})
		assert.Equal(t, []NodeID{0, 1, 2, 3, 4}, order)

		order = order[:0]
		tree.Walk(func(n Node) bool {
			order = append(order, n.ID)
			return n.ID != 2
		})
		assert.Equal(t, []NodeID{0, 1, 2}, order)
	})

	t.Run("ViewsAreCopies", func(t *testing.T) {
		n := tree.Root()
		n.Center[0] = 99
		assert.Equal(t, []float64{0}, tree.Root().Center)
	})

	t.Run("ResealIsStable", func(t *testing.T) {
		tree.seal()
		assert.Len(t, tree.Leaves(), 3)
	})
}

func TestNode_ZeroValue(t *testing.T) {
	var n Node
	assert.Nil(t, n.Members())
	assert.False(t, n.Contains(0))
}
