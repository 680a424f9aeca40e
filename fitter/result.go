// SPDX-License-Identifier: MIT

package fitter

import (
	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/katalvlaran/treefit/paramspace"
	"github.com/katalvlaran/treefit/particle"
)

// NodeResult is the fitted estimate of one node.
type NodeResult struct {
	Name  string
	Kind  particle.Kind
	Range paramspace.Range
	Depth int

	// State and Covariance are copies of the node's slice; nil for nodes
	// without parameters.
	State      *mat.VecDense
	Covariance *mat.SymDense

	// Chi2 is the contribution of the node's constraints in the last iteration.
	Chi2 float64

	HasVertex bool
	Vertex    r3.Vec
	Momentum  r3.Vec
	Energy    float64

	Mass, MassErr               float64
	DecayLength, DecayLengthErr float64
}

// Result is the outcome of one fit.
type Result struct {
	RunID      uuid.UUID
	Status     Status
	Iterations int

	Chi2        float64
	NDF         int
	Probability float64

	// Nodes is indexed like the tree arena.
	Nodes []NodeResult

	// State and Covariance copy the full global estimate.
	State      *mat.VecDense
	Covariance *mat.SymDense
}

// Node returns the result of the first node with the given name.
func (r *Result) Node(name string) (NodeResult, bool) {
	for _, n := range r.Nodes {
		if n.Name == name {
			return n, true
		}
	}

	return NodeResult{}, false
}

// Chi2Probability returns P(χ²_ndf ≥ chi2). With no degrees of freedom it is 1.
func Chi2Probability(chi2 float64, ndf int) float64 {
	if ndf <= 0 {
		return 1
	}

	return distuv.ChiSquared{K: float64(ndf)}.Survival(chi2)
}

func newResult(id uuid.UUID, tree *particle.Tree, s *paramspace.Space, nodeChi2 []float64) *Result {
	cov := mat.NewSymDense(s.Dim(), nil)
	cov.CopySym(s.Covariance())
	res := &Result{
		RunID:      id,
		NDF:        tree.NDF(),
		Nodes:      make([]NodeResult, tree.Len()),
		State:      mat.VecDenseCopyOf(s.State()),
		Covariance: cov,
	}
	for i := 0; i < tree.Len(); i++ {
		n := tree.Node(i)
		nr := NodeResult{
			Name:      n.Name,
			Kind:      n.Kind,
			Range:     n.Range(),
			Depth:     n.Depth,
			Chi2:      nodeChi2[i],
			HasVertex: n.HasVertex(),
			Vertex:    n.Vertex(s),
			Momentum:  n.Momentum(s),
		}
		if n.HasMomentum() {
			nr.Energy = n.Energy(s)
		}
		if n.Dim() > 0 {
			nr.State, nr.Covariance, _ = s.Slice(n.Range())
		}
		nr.Mass, nr.MassErr = n.MassOf(s)
		nr.DecayLength, nr.DecayLengthErr = n.DecayLengthOf(s)
		res.Nodes[i] = nr
	}

	return res
}
