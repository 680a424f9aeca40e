// SPDX-License-Identifier: MIT

package particle

import "fmt"

// Kind tags a node with its variant.
type Kind uint8

// Node kinds.
const (
	KindTrack Kind = iota
	KindPhoton
	KindNeutralHadron
	KindComposite
	KindExternalPrior
)

var kindNames = [...]string{
	KindTrack:         "track",
	KindPhoton:        "photon",
	KindNeutralHadron: "neutral-hadron",
	KindComposite:     "composite",
	KindExternalPrior: "external-prior",
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return fmt.Sprintf("kind(%d)", uint8(k))
}

// FinalState reports whether the kind is a measured leaf particle.
func (k Kind) FinalState() bool {
	return k == KindTrack || k == KindPhoton || k == KindNeutralHadron
}

// EnergyPolicy selects how a photon's cluster energy enters the fit.
type EnergyPolicy uint8

const (
	// EnergyAsConstraint keeps E = |p| implicit; the cluster energy is only a residual.
	EnergyAsConstraint EnergyPolicy = iota

	// EnergyInState makes E a state parameter tied to |p| by a massless constraint.
	EnergyInState
)

// NoMother marks the root in builder calls.
const NoMother = -1
