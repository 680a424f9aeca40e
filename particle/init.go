// SPDX-License-Identifier: MIT

package particle

import (
	"fmt"

	"github.com/katalvlaran/treefit"
	"github.com/katalvlaran/treefit/paramspace"
)

// Initialize seeds every parameter of s from the measurements and inflates
// the covariance with v.
//
// Implementation:
//   - Stage 1: InitMotherless bottom-up (vertex seeding, perigee momenta).
//   - Stage 2: InitWithMother top-down on non-root nodes.
//   - Stage 3: Finalize bottom-up (momentum sums, flight lengths).
//   - Stage 4: InitCovariance.
//
// Errors: treefit.ErrDimensionMismatch if s does not match the tree, errors of
// the behavior hooks.
func (t *Tree) Initialize(s *paramspace.Space, v Variances) error {
	if s.Dim() != t.dim {
		return fmt.Errorf("particle.Initialize: space %d, tree %d: %w", s.Dim(), t.dim, treefit.ErrDimensionMismatch)
	}
	s.Reset()
	c := &InitContext{Tree: t, Space: s, seeded: make([]bool, len(t.nodes))}

	run := func(stage string, idx []int, hook func(Behavior) func(*InitContext, *Node) error) error {
		for _, i := range idx {
			n := &t.nodes[i]
			fn := hook(t.table[n.Kind])
			if fn == nil {
				continue
			}
			if err := fn(c, n); err != nil {
				return fmt.Errorf("particle.Initialize: %s %q: %w", stage, n.Name, err)
			}
		}

		return nil
	}

	if err := run("motherless", t.order, func(b Behavior) func(*InitContext, *Node) error { return b.InitMotherless }); err != nil {
		return err
	}
	topDown := make([]int, 0, len(t.topDown))
	for _, i := range t.topDown {
		if !t.nodes[i].IsRoot() {
			topDown = append(topDown, i)
		}
	}
	if err := run("with-mother", topDown, func(b Behavior) func(*InitContext, *Node) error { return b.InitWithMother }); err != nil {
		return err
	}
	if err := run("finalize", t.order, func(b Behavior) func(*InitContext, *Node) error { return b.Finalize }); err != nil {
		return err
	}

	return t.InitCovariance(s, v)
}

// InitCovariance discards the covariance and re-inflates the diagonal around
// the current state.
func (t *Tree) InitCovariance(s *paramspace.Space, v Variances) error {
	s.ResetCovariance()
	for _, i := range t.order {
		n := &t.nodes[i]
		fn := t.table[n.Kind].InitCovariance
		if fn == nil || n.Dim() == 0 {
			continue
		}
		if err := fn(s, n, v); err != nil {
			return fmt.Errorf("particle.InitCovariance: %q: %w", n.Name, err)
		}
	}

	return nil
}
