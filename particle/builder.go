// SPDX-License-Identifier: MIT

package particle

import (
	"fmt"

	"github.com/katalvlaran/treefit"
)

// SpecOption adjusts a composite spec in Builder.Composite.
type SpecOption func(*NodeSpec)

// WithMassConstraint fixes the composite's invariant mass to its nominal mass.
func WithMassConstraint() SpecOption {
	return func(s *NodeSpec) { s.MassConstraint = true }
}

// WithGeometricConstraint adds the flight length constraint to a non-root composite.
func WithGeometricConstraint() SpecOption {
	return func(s *NodeSpec) { s.GeometricConstraint = true }
}

// Builder assembles a NodeSpec arena with mother links instead of child lists.
//
//	b := particle.NewBuilder()
//	root := b.Composite(particle.NoMother, "B0", 5.2797)
//	b.Track(root, "pi+", 0.13957, m1)
//	tree, err := b.Build()
type Builder struct {
	specs []NodeSpec
	err   error
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) add(mother int, spec NodeSpec) int {
	if b.err != nil {
		return -1
	}
	if mother != NoMother && (mother < 0 || mother >= len(b.specs)) {
		b.err = fmt.Errorf("particle.Builder: %q: unknown mother %d: %w", spec.Name, mother, treefit.ErrInvalidTreeTopology)

		return -1
	}
	id := len(b.specs)
	b.specs = append(b.specs, spec)
	if mother != NoMother {
		b.specs[mother].Children = append(b.specs[mother].Children, id)
	}

	return id
}

// Composite adds a composite node and returns its index.
func (b *Builder) Composite(mother int, name string, mass float64, opts ...SpecOption) int {
	spec := NodeSpec{Name: name, Kind: KindComposite, Mass: mass}
	for _, opt := range opts {
		opt(&spec)
	}

	return b.add(mother, spec)
}

// Track adds a charged track with the given mass hypothesis.
func (b *Builder) Track(mother int, name string, mass float64, m Measurement) int {
	return b.add(mother, NodeSpec{Name: name, Kind: KindTrack, Mass: mass, Measurement: m})
}

// Photon adds a photon cluster with the given energy policy.
func (b *Builder) Photon(mother int, name string, m Measurement, policy EnergyPolicy) int {
	return b.add(mother, NodeSpec{Name: name, Kind: KindPhoton, Measurement: m, EnergyPolicy: policy})
}

// NeutralHadron adds a neutral hadron cluster with the given mass hypothesis.
func (b *Builder) NeutralHadron(mother int, name string, mass float64, m Measurement) int {
	return b.add(mother, NodeSpec{Name: name, Kind: KindNeutralHadron, Mass: mass, Measurement: m})
}

// Prior adds a Gaussian constraint on the vertex of mother.
func (b *Builder) Prior(mother int, name string, m Measurement) int {
	return b.add(mother, NodeSpec{Name: name, Kind: KindExternalPrior, Measurement: m})
}

// Specs returns a copy of the assembled specs.
func (b *Builder) Specs() []NodeSpec {
	out := make([]NodeSpec, len(b.specs))
	copy(out, b.specs)

	return out
}

// Build validates the arena and returns the tree rooted at the single node
// without a mother.
func (b *Builder) Build(opts ...TreeOption) (*Tree, error) {
	if b.err != nil {
		return nil, b.err
	}
	hasMother := make([]bool, len(b.specs))
	for _, s := range b.specs {
		for _, c := range s.Children {
			hasMother[c] = true
		}
	}
	root := -1
	for i, m := range hasMother {
		if m {
			continue
		}
		if root >= 0 {
			return nil, fmt.Errorf("particle.Builder: roots %d and %d: %w", root, i, treefit.ErrInvalidTreeTopology)
		}
		root = i
	}
	if root < 0 {
		return nil, fmt.Errorf("particle.Builder: no root: %w", treefit.ErrInvalidTreeTopology)
	}

	return NewTree(b.Specs(), root, opts...)
}
