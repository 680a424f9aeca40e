// SPDX-License-Identifier: MIT

package particle

import (
	"github.com/katalvlaran/treefit/constraint"
	"github.com/katalvlaran/treefit/paramspace"
)

// projectPrior constrains the mother's vertex to the prior mean: r = μ − v.
func projectPrior(t *Tree, n *Node, s *paramspace.Space) ([]*constraint.Projection, error) {
	mother := t.Node(n.Mother)
	mu := n.clusterPosition()
	v := mother.Vertex(s)
	proj := constraint.New(constraint.KindExternalPrior, n.Index, 3, s.Dim())
	proj.Residual.SetVec(0, mu.X-v.X)
	proj.Residual.SetVec(1, mu.Y-v.Y)
	proj.Residual.SetVec(2, mu.Z-v.Z)
	proj.SetJacobian(0, paramspace.Range{Offset: mother.posIndex, Dim: 3}, 1)
	proj.SetJacobian(1, paramspace.Range{Offset: mother.posIndex, Dim: 3}, 0, 1)
	proj.SetJacobian(2, paramspace.Range{Offset: mother.posIndex, Dim: 3}, 0, 0, 1)
	proj.V.CopySym(n.Measurement.Cov)

	return []*constraint.Projection{proj}, nil
}
