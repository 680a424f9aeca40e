// Package dfs provides topological ordering of rooted trees.
//
// TopologicalSort computes a linear ordering of vertices such that every
// parent appears before all of its children (root-to-leaves). It is the
// reverse of PostOrder and inherits all of its validation.
//
// Complexity:
//
//   - Time:   O(V + E)
//   - Memory: O(V)
package dfs

// TopologicalSort returns the vertices of t in root-to-leaves order.
// Options are forwarded to PostOrder (hooks fire in post-order).
func TopologicalSort(t Tree, root int, opts ...Option) ([]int, error) {
	order, err := PostOrder(t, root, opts...)
	if err != nil {
		return nil, err
	}
	// Reverse post-order to produce topological order
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}

	return order, nil
}
