// SPDX-License-Identifier: MIT

package particle

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/treefit"
	"github.com/katalvlaran/treefit/constraint"
	"github.com/katalvlaran/treefit/helix"
	"github.com/katalvlaran/treefit/paramspace"
)

var trackAngular = []bool{false, true, false, false, false}

func (n *Node) trackParams() helix.Params { return helix.Params(n.Measurement.Params) }

// initTrackMotherless seeds the momentum at the perigee.
func initTrackMotherless(c *InitContext, n *Node) error {
	_, mom, err := n.trackParams().Perigee(n.Measurement.Field)
	if err != nil {
		return fmt.Errorf("track %q: %w: %w", n.Name, treefit.ErrBadInput, err)
	}
	c.SetMomentum(n, mom)

	return nil
}

// initTrackWithMother seeds the momentum at the closest approach to the
// mother vertex. A degenerate geometry keeps the perigee momentum.
func initTrackWithMother(c *InitContext, n *Node) error {
	_, mom, err := n.trackParams().ClosestApproach(c.ProductionVertex(n), n.Measurement.Field)
	if err != nil {
		return nil
	}
	c.SetMomentum(n, mom)

	return nil
}

// projectTrack predicts the perigee helix of a particle leaving the mother
// vertex with the node momentum.
func projectTrack(t *Tree, n *Node, s *paramspace.Space) ([]*constraint.Projection, error) {
	mother := t.Node(n.Mother)
	v, p := mother.Vertex(s), n.Momentum(s)
	local := []float64{v.X, v.Y, v.Z, p.X, p.Y, p.Z}
	cols := []int{
		mother.posIndex, mother.posIndex + 1, mother.posIndex + 2,
		n.momIndex, n.momIndex + 1, n.momIndex + 2,
	}
	meas := n.Measurement
	predict := func(x []float64) ([]float64, error) {
		h, err := helix.FromState(r3.Vec{X: x[0], Y: x[1], Z: x[2]}, r3.Vec{X: x[3], Y: x[4], Z: x[5]}, n.charge, meas.Field)
		if err != nil {
			return nil, err
		}

		return h[:], nil
	}
	pred, err := predict(local)
	if err != nil {
		return nil, fmt.Errorf("track %q: %w: %w", n.Name, treefit.ErrSingular, err)
	}
	jac, err := constraint.NumericJacobian(predict, local, trackAngular)
	if err != nil {
		return nil, fmt.Errorf("track %q: %w: %w", n.Name, treefit.ErrSingular, err)
	}

	proj := constraint.New(constraint.KindTrack, n.Index, helix.Dim, s.Dim())
	for i := 0; i < helix.Dim; i++ {
		r := meas.Params[i] - pred[i]
		if trackAngular[i] {
			r = helix.WrapAngle(r)
		}
		proj.Residual.SetVec(i, r)
	}
	proj.ScatterColumns(jac, cols)
	proj.V.CopySym(meas.Cov)

	return []*constraint.Projection{proj}, nil
}
