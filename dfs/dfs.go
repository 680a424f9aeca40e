// Package dfs implements post-order depth-first traversal of a rooted tree.
//
// Complexity:
//
//   - Time:   O(V + E), plus the cost of hooks.
//   - Memory: O(V) for the recursion stack and the color array.
package dfs

import "fmt"

// walker encapsulates state during DFS.
type walker struct {
	tree  Tree    // tree being walked
	opts  Options // traversal options
	state []int   // White/Gray/Black per vertex
	order []int   // recorded post-order sequence
}

// PostOrder walks t from root and returns every vertex in post-order
// (children before parents). The whole tree is validated on the way: a cycle,
// a second parent, an out-of-range child or an unreachable vertex is an error.
func PostOrder(t Tree, root int, opts ...Option) ([]int, error) {
	// 1. Validate input tree
	if t == nil || t.Len() == 0 {
		return nil, ErrTreeNil
	}
	n := t.Len()
	if root < 0 || root >= n {
		return nil, fmt.Errorf("root %d: %w", root, ErrUnknownVertex)
	}

	// 2. Apply options
	o := DefaultOptions()
	for _, fn := range opts {
		fn(&o)
	}

	// 3. Walk from the root
	w := &walker{
		tree:  t,
		opts:  o,
		state: make([]int, n), // all vertices start as White (0)
		order: make([]int, 0, n),
	}
	if err := w.visit(root, 0); err != nil {
		return nil, err
	}

	// 4. Every vertex must have been reached exactly once
	if len(w.order) != n {
		for i, s := range w.state {
			if s == White {
				return nil, fmt.Errorf("vertex %d: %w", i, ErrUnreachable)
			}
		}
	}

	return w.order, nil
}

// visit performs the recursive walk from id, coloring vertices and running hooks.
func (w *walker) visit(id, depth int) error {
	// 1. Back-edge: id is on the current path
	if w.state[id] == Gray {
		return fmt.Errorf("vertex %d: %w", id, ErrCycleDetected)
	}
	// 2. Cross-edge: id was already finished through another parent
	if w.state[id] == Black {
		return fmt.Errorf("vertex %d: %w", id, ErrMultipleParents)
	}
	// 3. Mark as in-progress (Gray) and run pre-order hook
	w.state[id] = Gray
	if w.opts.OnVisit != nil {
		if err := w.opts.OnVisit(id, depth); err != nil {
			return err
		}
	}

	// 4. Explore children in the requested order
	children := w.tree.Children(id)
	n := w.tree.Len()
	for k := range children {
		c := children[k]
		if w.opts.ReverseChildren {
			c = children[len(children)-1-k]
		}
		if c < 0 || c >= n {
			return fmt.Errorf("child %d of vertex %d: %w", c, id, ErrUnknownVertex)
		}
		if err := w.visit(c, depth+1); err != nil {
			return err
		}
	}

	// 5. Post-order hook, then mark Black and record
	if w.opts.OnExit != nil {
		if err := w.opts.OnExit(id); err != nil {
			return err
		}
	}
	w.state[id] = Black
	w.order = append(w.order, id)

	return nil
}
