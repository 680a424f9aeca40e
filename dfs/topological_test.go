package dfs_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/treefit/dfs"
)

// adj is a slice-backed Tree used across the tests.
type adj [][]int

func (a adj) Len() int             { return len(a) }
func (a adj) Children(i int) []int { return a[i] }

// position returns index of v in order or -1 if not found
func position(order []int, v int) int {
	for i, x := range order {
		if x == v {
			return i
		}
	}

	return -1
}

// TestPostOrder_NilTree verifies that nil and empty trees are rejected.
func TestPostOrder_NilTree(t *testing.T) {
	_, err := dfs.PostOrder(nil, 0)
	assert.ErrorIs(t, err, dfs.ErrTreeNil)
	_, err = dfs.PostOrder(adj{}, 0)
	assert.ErrorIs(t, err, dfs.ErrTreeNil)
}

// TestPostOrder_SingleNode covers a tree of one vertex.
func TestPostOrder_SingleNode(t *testing.T) {
	order, err := dfs.PostOrder(adj{nil}, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, order)
}

// TestPostOrder_ChildrenFirst checks that every child precedes its parent.
//
//	    4
//	   / \
//	  2   3
//	 / \
//	0   1
func TestPostOrder_ChildrenFirst(t *testing.T) {
	tree := adj{nil, nil, {0, 1}, nil, {2, 3}}
	order, err := dfs.PostOrder(tree, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)

	rev, err := dfs.PostOrder(tree, 4, dfs.WithReverseChildren())
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 0, 2, 4}, rev)
	for parent, kids := range tree {
		for _, k := range kids {
			assert.Less(t, position(rev, k), position(rev, parent))
		}
	}
}

// TestTopologicalSort_ParentsFirst verifies the root-to-leaves order.
func TestTopologicalSort_ParentsFirst(t *testing.T) {
	tree := adj{nil, nil, {0, 1}, nil, {2, 3}}
	order, err := dfs.TopologicalSort(tree, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, order[0])
	assert.Less(t, position(order, 2), position(order, 0))
	assert.Less(t, position(order, 2), position(order, 1))
}

// TestPostOrder_Hooks checks pre-order depths and post-order exits.
func TestPostOrder_Hooks(t *testing.T) {
	tree := adj{nil, {0}, {1}}
	depths := map[int]int{}
	var exits []int
	_, err := dfs.PostOrder(tree, 2,
		dfs.WithOnVisit(func(id, depth int) error { depths[id] = depth; return nil }),
		dfs.WithOnExit(func(id int) error { exits = append(exits, id); return nil }),
	)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{2: 0, 1: 1, 0: 2}, depths)
	assert.Equal(t, []int{0, 1, 2}, exits)

	boom := errors.New("boom")
	_, err = dfs.PostOrder(tree, 2, dfs.WithOnExit(func(id int) error { return boom }))
	assert.ErrorIs(t, err, boom)
}

// TestPostOrder_InvalidShapes covers every structural failure.
func TestPostOrder_InvalidShapes(t *testing.T) {
	tests := []struct {
		name string
		tree adj
		root int
		want error
	}{
		{"root out of range", adj{nil}, 3, dfs.ErrUnknownVertex},
		{"child out of range", adj{{7}}, 0, dfs.ErrUnknownVertex},
		{"self loop", adj{{0}}, 0, dfs.ErrCycleDetected},
		{"cycle", adj{{1}, {2}, {0}}, 0, dfs.ErrCycleDetected},
		{"two parents", adj{{1, 2}, {3}, {3}, nil}, 0, dfs.ErrMultipleParents},
		{"orphan", adj{{1}, nil, nil}, 0, dfs.ErrUnreachable},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			order, err := dfs.PostOrder(tc.tree, tc.root)
			assert.Nil(t, order)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
