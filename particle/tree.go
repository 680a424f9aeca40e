// SPDX-License-Identifier: MIT

package particle

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/treefit"
	"github.com/katalvlaran/treefit/constraint"
	"github.com/katalvlaran/treefit/dfs"
	"github.com/katalvlaran/treefit/helix"
	"github.com/katalvlaran/treefit/paramspace"
)

// Tree is an immutable, laid-out decay tree.
type Tree struct {
	nodes   []Node
	root    int
	order   []int
	topDown []int
	dim     int
	table   Table

	reverseChildren bool
}

// TreeOption customizes tree construction.
type TreeOption func(*Tree)

// WithBehavior overrides or adds the behavior of one kind for this tree.
func WithBehavior(kind Kind, b Behavior) TreeOption {
	return func(t *Tree) {
		t.table[kind] = b
	}
}

// WithReverseChildren lays the tree out visiting daughters last to first.
// Offsets and the update order change; the fit result does not.
func WithReverseChildren() TreeOption {
	return func(t *Tree) {
		t.reverseChildren = true
	}
}

func topologyErrorf(format string, args ...any) error {
	return fmt.Errorf("particle.NewTree: %w: %s", treefit.ErrInvalidTreeTopology, fmt.Sprintf(format, args...))
}

// NewTree validates specs, assigns every node its slice of the global vector
// and returns the tree rooted at root.
//
// Implementation:
//   - Stage 1: copy specs into the arena and link mothers.
//   - Stage 2: post-order walk from root (cycles, second mothers, dangling
//     daughters and orphans are rejected); depths are recorded on entry and
//     offsets assigned on exit. A parents-first order is kept for seeding.
//   - Stage 3: kind rules and measurement normalization.
//
// Errors: treefit.ErrInvalidTreeTopology, treefit.ErrBadInput,
// treefit.ErrDimensionMismatch (a tree without parameters).
func NewTree(specs []NodeSpec, root int, opts ...TreeOption) (*Tree, error) {
	if len(specs) == 0 {
		return nil, topologyErrorf("empty tree")
	}
	t := &Tree{nodes: make([]Node, len(specs)), root: root, table: DefaultTable().clone()}
	for _, opt := range opts {
		opt(t)
	}

	// 1. Arena and mother links
	for i := range specs {
		n := &t.nodes[i]
		n.NodeSpec = specs[i]
		n.NodeSpec.Children = append([]int(nil), specs[i].Children...)
		n.Index = i
		n.Mother = NoMother
		n.Daughters = n.NodeSpec.Children
	}
	for i := range t.nodes {
		for _, d := range t.nodes[i].Daughters {
			if d >= 0 && d < len(t.nodes) {
				t.nodes[d].Mother = i
			}
		}
	}
	if root >= 0 && root < len(t.nodes) && t.nodes[root].Mother != NoMother {
		return nil, topologyErrorf("root %d has mother %d", root, t.nodes[root].Mother)
	}

	// 2. Traversal and layout
	var offset int
	assign := func(id int) error {
		n := &t.nodes[id]
		b, ok := t.table[n.Kind]
		if !ok || b.Dim == nil || b.MeasurementDim == nil || b.Project == nil {
			return fmt.Errorf("particle.NewTree: node %q: no behavior for %s: %w", n.Name, n.Kind, treefit.ErrBadInput)
		}
		dim := b.Dim(n)
		n.assign(offset, dim)
		offset += dim

		return nil
	}
	depth := func(id, d int) error {
		t.nodes[id].Depth = d

		return nil
	}
	var walk []dfs.Option
	if t.reverseChildren {
		walk = append(walk, dfs.WithReverseChildren())
	}
	order, err := dfs.PostOrder(t, root, append(walk, dfs.WithOnVisit(depth), dfs.WithOnExit(assign))...)
	if err != nil {
		if errors.Is(err, treefit.ErrBadInput) {
			return nil, err
		}

		return nil, fmt.Errorf("particle.NewTree: %w: %w", treefit.ErrInvalidTreeTopology, err)
	}
	t.order = order
	if t.topDown, err = dfs.TopologicalSort(t, root, walk...); err != nil {
		return nil, fmt.Errorf("particle.NewTree: %w: %w", treefit.ErrInvalidTreeTopology, err)
	}
	t.dim = offset

	// 3. Kind rules and measurements
	for i := range t.nodes {
		if err := t.checkNode(&t.nodes[i]); err != nil {
			return nil, err
		}
	}
	if t.dim == 0 {
		return nil, fmt.Errorf("particle.NewTree: no fit parameters: %w", treefit.ErrDimensionMismatch)
	}

	return t, nil
}

func (t *Tree) checkNode(n *Node) error {
	if n.Kind.FinalState() || n.Kind == KindExternalPrior {
		if len(n.Daughters) > 0 {
			return topologyErrorf("%s %q has daughters", n.Kind, n.Name)
		}
		if n.IsRoot() || t.nodes[n.Mother].Kind != KindComposite {
			return topologyErrorf("%s %q needs a composite mother", n.Kind, n.Name)
		}
	}
	if n.Kind == KindComposite {
		var real int
		for _, d := range n.Daughters {
			if t.nodes[d].Kind != KindExternalPrior {
				real++
			}
		}
		if real == 0 {
			return topologyErrorf("composite %q has no daughters", n.Name)
		}
		if n.MassConstraint && !(n.Mass > 0) {
			return fmt.Errorf("particle.NewTree: composite %q: mass constraint without mass: %w", n.Name, treefit.ErrBadInput)
		}
	}
	if n.Mass < 0 {
		return fmt.Errorf("particle.NewTree: %q: negative mass: %w", n.Name, treefit.ErrBadInput)
	}
	m, err := n.Measurement.normalize(n.Name, n.Kind)
	if err != nil {
		return fmt.Errorf("particle.NewTree: %w", err)
	}
	n.Measurement = m
	if n.Kind == KindTrack {
		q, err := helix.Params(m.Params).Charge(m.Field)
		if err != nil {
			return measurementErrorf(n.Name, n.Kind, err)
		}
		n.charge = q
	}

	return nil
}

// Len returns the number of nodes. Together with Children it lets the tree
// be walked by package dfs.
func (t *Tree) Len() int { return len(t.nodes) }

// Children returns the daughter indices of node i.
func (t *Tree) Children(i int) []int { return t.nodes[i].Daughters }

// Root returns the index of the root node.
func (t *Tree) Root() int { return t.root }

// Node returns node i.
func (t *Tree) Node(i int) *Node { return &t.nodes[i] }

// Lookup returns the index of the first node with the given name.
func (t *Tree) Lookup(name string) (int, bool) {
	for i := range t.nodes {
		if t.nodes[i].Name == name {
			return i, true
		}
	}

	return -1, false
}

// Dim returns the global state dimension.
func (t *Tree) Dim() int { return t.dim }

// Order returns the node indices in post-order (daughters first).
func (t *Tree) Order() []int { return append([]int(nil), t.order...) }

// Behavior returns the behavior record used for kind.
func (t *Tree) Behavior(kind Kind) Behavior { return t.table[kind] }

// MeasurementDim returns the declared number of residual rows of node i.
func (t *Tree) MeasurementDim(i int) int {
	n := &t.nodes[i]

	return t.table[n.Kind].MeasurementDim(n)
}

// NDF returns Σ measurement dims − Σ state dims.
func (t *Tree) NDF() int {
	var m int
	for i := range t.nodes {
		m += t.MeasurementDim(i)
	}

	return m - t.dim
}

// ProductionVertex returns the mother's vertex, or the origin for the root.
func (t *Tree) ProductionVertex(n *Node, s *paramspace.Space) r3.Vec {
	if n.IsRoot() {
		return r3.Vec{}
	}

	return t.nodes[n.Mother].Vertex(s)
}

// Project returns the projections of node i linearized at the current state.
func (t *Tree) Project(i int, s *paramspace.Space) ([]*constraint.Projection, error) {
	n := &t.nodes[i]

	return t.table[n.Kind].Project(t, n, s)
}

// ValidateProjections builds every node's projections at the current state
// and checks them against the declared measurement dimension and the state
// dimension.
// Errors: treefit.ErrDimensionMismatch, or the projection error of a node.
func (t *Tree) ValidateProjections(s *paramspace.Space) error {
	for _, i := range t.order {
		projs, err := t.Project(i, s)
		if err != nil {
			return fmt.Errorf("particle.ValidateProjections: node %q: %w", t.nodes[i].Name, err)
		}
		var rows int
		for _, p := range projs {
			if err := p.Validate(s.Dim(), -1); err != nil {
				return fmt.Errorf("particle.ValidateProjections: node %q: %w", t.nodes[i].Name, err)
			}
			rows += p.Rows()
		}
		if want := t.MeasurementDim(i); rows != want {
			return fmt.Errorf("particle.ValidateProjections: node %q: %d rows, declared %d: %w",
				t.nodes[i].Name, rows, want, treefit.ErrDimensionMismatch)
		}
	}

	return nil
}
