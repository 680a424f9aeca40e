// SPDX-License-Identifier: MIT

package particle

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/treefit"
	"github.com/katalvlaran/treefit/constraint"
	"github.com/katalvlaran/treefit/paramspace"
)

// Behavior is the function record of one node kind.
//
// Init hooks run in three passes: InitMotherless bottom-up, InitWithMother
// top-down on non-root nodes, Finalize bottom-up. Nil hooks are skipped.
type Behavior struct {
	Dim            func(n *Node) int
	MeasurementDim func(n *Node) int
	InitMotherless func(c *InitContext, n *Node) error
	InitWithMother func(c *InitContext, n *Node) error
	Finalize       func(c *InitContext, n *Node) error
	InitCovariance func(s *paramspace.Space, n *Node, v Variances) error
	Project        func(t *Tree, n *Node, s *paramspace.Space) ([]*constraint.Projection, error)
}

// Table dispatches behavior by kind.
type Table map[Kind]Behavior

// DefaultTable returns the behavior of the built-in kinds.
func DefaultTable() Table {
	return Table{
		KindTrack: {
			Dim:            func(*Node) int { return 3 },
			MeasurementDim: func(*Node) int { return 5 },
			InitMotherless: initTrackMotherless,
			InitWithMother: initTrackWithMother,
			InitCovariance: initDiagonalCovariance,
			Project:        projectTrack,
		},
		KindPhoton: {
			Dim:            photonDim,
			MeasurementDim: photonDim,
			InitMotherless: initClusterMotherless,
			InitWithMother: initClusterWithMother,
			InitCovariance: initDiagonalCovariance,
			Project:        projectPhoton,
		},
		KindNeutralHadron: {
			Dim:            func(*Node) int { return 3 },
			MeasurementDim: func(*Node) int { return 2 },
			InitMotherless: initClusterMotherless,
			InitWithMother: initClusterWithMother,
			InitCovariance: initDiagonalCovariance,
			Project:        projectNeutralHadron,
		},
		KindComposite: {
			Dim:            compositeDim,
			MeasurementDim: compositeMeasurementDim,
			InitMotherless: initCompositeMotherless,
			InitWithMother: initCompositeWithMother,
			Finalize:       finalizeComposite,
			InitCovariance: initDiagonalCovariance,
			Project:        projectComposite,
		},
		KindExternalPrior: {
			Dim:            func(*Node) int { return 0 },
			MeasurementDim: func(*Node) int { return 3 },
			Project:        projectPrior,
		},
	}
}

func (t Table) clone() Table {
	out := make(Table, len(t))
	for k, b := range t {
		out[k] = b
	}

	return out
}

// Variances are the diagonal covariance entries used to (re-)inflate the
// state before every iteration.
type Variances struct {
	Position     float64 `yaml:"position" env:"POSITION"`
	Momentum     float64 `yaml:"momentum" env:"MOMENTUM"`
	FlightLength float64 `yaml:"flight_length" env:"FLIGHT_LENGTH"`
}

// DefaultVariances returns 25 cm², 10 GeV² and 100 cm².
func DefaultVariances() Variances {
	return Variances{Position: 25, Momentum: 10, FlightLength: 100}
}

// Validate rejects non-positive variances.
func (v Variances) Validate() error {
	if !(v.Position > 0) || !(v.Momentum > 0) || !(v.FlightLength > 0) {
		return fmt.Errorf("particle.Variances: %+v: %w", v, treefit.ErrBadInput)
	}

	return nil
}

// InitContext carries the state being seeded through the init passes.
type InitContext struct {
	Tree  *Tree
	Space *paramspace.Space

	seeded []bool
}

// SetVertex writes the vertex of a node that owns one and marks it seeded.
func (c *InitContext) SetVertex(n *Node, v r3.Vec) {
	if !n.HasVertex() {
		return
	}
	setVec3(c.Space.State(), n.posIndex, v)
	c.seeded[n.Index] = true
}

// Seeded reports whether the node's vertex has been seeded.
func (c *InitContext) Seeded(n *Node) bool { return c.seeded[n.Index] }

// SetMomentum writes the node's momentum.
func (c *InitContext) SetMomentum(n *Node, p r3.Vec) {
	if n.HasMomentum() {
		setVec3(c.Space.State(), n.momIndex, p)
	}
}

// SetEnergy writes the node's energy when it is a state parameter.
func (c *InitContext) SetEnergy(n *Node, e float64) {
	if n.HasEnergy() {
		c.Space.State().SetVec(n.eIndex, e)
	}
}

// SetFlightLength writes the node's flight length when it has one.
func (c *InitContext) SetFlightLength(n *Node, l float64) {
	if n.HasFlightLength() {
		c.Space.State().SetVec(n.lenIndex, l)
	}
}

// ProductionVertex returns the vertex the node originates from (its
// mother's), or the origin for the root.
func (c *InitContext) ProductionVertex(n *Node) r3.Vec {
	return c.Tree.ProductionVertex(n, c.Space)
}

func initDiagonalCovariance(s *paramspace.Space, n *Node, v Variances) error {
	set := func(i, dim int, val float64) error {
		if i < 0 {
			return nil
		}

		return s.SetVariance(paramspace.Range{Offset: i, Dim: dim}, val)
	}
	if err := set(n.posIndex, 3, v.Position); err != nil {
		return err
	}
	if err := set(n.lenIndex, 1, v.FlightLength); err != nil {
		return err
	}
	if err := set(n.momIndex, 3, v.Momentum); err != nil {
		return err
	}

	return set(n.eIndex, 1, v.Momentum)
}
