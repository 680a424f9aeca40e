// Package dfs defines types and options for depth-first traversal of trees,
// including pre-/post-order hooks and child-order control.
package dfs

import "errors"

// VertexState represents the DFS visitation state of a vertex.
const (
	White = iota // White: the vertex has not been visited yet.
	Gray         // Gray: the vertex is in the recursion stack (visiting).
	Black        // Black: the vertex and all its descendants have been fully explored.
)

var (
	// ErrTreeNil is returned when a nil or empty tree is passed in.
	ErrTreeNil = errors.New("dfs: tree is nil or empty")

	// ErrUnknownVertex indicates that the root or a child index is out of range.
	ErrUnknownVertex = errors.New("dfs: unknown vertex index")

	// ErrCycleDetected indicates that a node was found among its own ancestors.
	ErrCycleDetected = errors.New("dfs: cycle detected")

	// ErrMultipleParents indicates that a node was reached through two parents.
	ErrMultipleParents = errors.New("dfs: vertex has more than one parent")

	// ErrUnreachable indicates that at least one node is not reachable from the root.
	ErrUnreachable = errors.New("dfs: vertex unreachable from root")
)

// Tree is the minimal view the traversal needs: nodes are 0..Len()-1 and
// Children lists outgoing edges. Implementations must not mutate during a walk.
type Tree interface {
	Len() int
	Children(i int) []int
}

// Option configures optional behavior of a traversal.
type Option func(*Options)

// Options holds configurable parameters for the traversal.
type Options struct {
	// OnVisit, if non-nil, is invoked when a vertex is discovered (pre-order).
	// depth is the number of edges from the root.
	// Returning an error aborts traversal with that error.
	OnVisit func(id, depth int) error

	// OnExit, if non-nil, is invoked after all descendants of a vertex have
	// been explored (post-order), before it is appended to the order.
	OnExit func(id int) error

	// ReverseChildren visits children last-to-first. Any sibling order is a
	// valid post-order; this exists so callers can check order independence.
	ReverseChildren bool
}

// DefaultOptions returns Options with no hooks and natural child order.
func DefaultOptions() Options {
	return Options{}
}

// WithOnVisit returns an Option that installs fn as a pre-order hook.
func WithOnVisit(fn func(id, depth int) error) Option {
	return func(o *Options) {
		o.OnVisit = fn
	}
}

// WithOnExit returns an Option that installs fn as a post-order hook.
func WithOnExit(fn func(id int) error) Option {
	return func(o *Options) {
		o.OnExit = fn
	}
}

// WithReverseChildren returns an Option that visits children last-to-first.
func WithReverseChildren() Option {
	return func(o *Options) {
		o.ReverseChildren = true
	}
}
