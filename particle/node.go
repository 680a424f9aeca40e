// SPDX-License-Identifier: MIT

package particle

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/treefit/paramspace"
)

// NodeSpec describes one node of a decay tree before layout.
type NodeSpec struct {
	Name string
	Kind Kind

	// Mass is the mass hypothesis of a final-state particle, or the nominal
	// mass of a composite used by MassConstraint.
	Mass float64

	Measurement Measurement

	// Children lists daughter indices into the spec slice.
	Children []int

	// MassConstraint fixes the invariant mass of a composite to Mass.
	MassConstraint bool

	// GeometricConstraint ties a non-root composite's vertex to its mother's
	// vertex along its momentum through a flight length parameter.
	GeometricConstraint bool

	// EnergyPolicy selects how a photon carries its energy.
	EnergyPolicy EnergyPolicy
}

// Node is a laid-out member of a Tree. Nodes are owned by the tree and must
// not be modified by callers.
type Node struct {
	NodeSpec

	Index     int
	Mother    int
	Daughters []int

	// Depth counts the generations above the node; the root has 0.
	Depth int

	rng      paramspace.Range
	posIndex int
	lenIndex int
	momIndex int
	eIndex   int
	charge   float64
}

// Range returns the node's slice of the global vector.
func (n *Node) Range() paramspace.Range { return n.rng }

// Dim returns the number of parameters the node owns.
func (n *Node) Dim() int { return n.rng.Dim }

// IsRoot reports whether the node has no mother.
func (n *Node) IsRoot() bool { return n.Mother < 0 }

// HasVertex reports whether the node owns a vertex.
func (n *Node) HasVertex() bool { return n.posIndex >= 0 }

// HasFlightLength reports whether the node owns a flight length parameter.
func (n *Node) HasFlightLength() bool { return n.lenIndex >= 0 }

// HasEnergy reports whether the energy is a state parameter.
func (n *Node) HasEnergy() bool { return n.eIndex >= 0 }

// HasMomentum reports whether the node owns a momentum.
func (n *Node) HasMomentum() bool { return n.momIndex >= 0 }

// VertexIndex returns the global index of x, or −1.
func (n *Node) VertexIndex() int { return n.posIndex }

// FlightLengthIndex returns the global index of L, or −1.
func (n *Node) FlightLengthIndex() int { return n.lenIndex }

// MomentumIndex returns the global index of px, or −1.
func (n *Node) MomentumIndex() int { return n.momIndex }

// EnergyIndex returns the global index of E, or −1.
func (n *Node) EnergyIndex() int { return n.eIndex }

// Charge returns the track charge derived from the measured curvature; zero
// for every other kind.
func (n *Node) Charge() float64 { return n.charge }

// hasFlightLengthSpec is the layout rule for L.
func (n *Node) hasFlightLengthSpec() bool {
	return n.Kind == KindComposite && n.GeometricConstraint && n.Mother >= 0
}

// assign lays the node out at offset with dim parameters.
func (n *Node) assign(offset, dim int) {
	n.rng = paramspace.Range{Offset: offset, Dim: dim}
	n.posIndex, n.lenIndex, n.momIndex, n.eIndex = -1, -1, -1, -1
	if dim < 3 {
		return
	}
	i := offset
	if n.Kind == KindComposite {
		n.posIndex = i
		i += 3
		if n.hasFlightLengthSpec() {
			n.lenIndex = i
			i++
		}
	}
	if i+3 <= offset+dim {
		n.momIndex = i
		i += 3
	}
	if i < offset+dim {
		n.eIndex = i
	}
}

func vec3(x *mat.VecDense, i int) r3.Vec {
	return r3.Vec{X: x.AtVec(i), Y: x.AtVec(i + 1), Z: x.AtVec(i + 2)}
}

func setVec3(x *mat.VecDense, i int, v r3.Vec) {
	x.SetVec(i, v.X)
	x.SetVec(i+1, v.Y)
	x.SetVec(i+2, v.Z)
}

// Vertex returns the node's own vertex; zero if it has none.
func (n *Node) Vertex(s *paramspace.Space) r3.Vec {
	if !n.HasVertex() {
		return r3.Vec{}
	}

	return vec3(s.State(), n.posIndex)
}

// Momentum returns the node's 3-momentum; zero if it has none.
func (n *Node) Momentum(s *paramspace.Space) r3.Vec {
	if !n.HasMomentum() {
		return r3.Vec{}
	}

	return vec3(s.State(), n.momIndex)
}

// Energy returns the energy from the state, or √(|p|² + m²) when it is derived.
func (n *Node) Energy(s *paramspace.Space) float64 {
	if n.HasEnergy() {
		return s.State().AtVec(n.eIndex)
	}
	p := n.Momentum(s)

	return math.Sqrt(r3.Norm2(p) + n.Mass*n.Mass)
}

// FlightLength returns L, or 0 when the node has none.
func (n *Node) FlightLength(s *paramspace.Space) float64 {
	if !n.HasFlightLength() {
		return 0
	}

	return s.State().AtVec(n.lenIndex)
}
