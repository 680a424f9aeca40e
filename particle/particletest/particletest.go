// SPDX-License-Identifier: MIT

// Package particletest provides deterministic toy measurements for tests of
// decay-tree fits: exact or Gaussian-smeared tracks, clusters and beam spots
// generated from a known truth.
package particletest

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/katalvlaran/treefit/helix"
	"github.com/katalvlaran/treefit/matrix"
	"github.com/katalvlaran/treefit/particle"
)

// Field is the toy solenoid field in Tesla.
const Field = 1.5

// PionMass is the charged pion mass in GeV.
const PionMass = 0.13957

// TrackSigma is the toy track resolution (d0, φ0, ω, z0, tanλ).
var TrackSigma = [helix.Dim]float64{0.002, 0.001, 1e-5, 0.003, 0.001}

// Cluster resolution: position in cm, energy in GeV, radius of the calorimeter in cm.
const (
	ClusterPosSigma = 0.5
	ClusterESigma   = 0.03
	ClusterRadius   = 150
)

// NewRand returns a seeded generator.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func gauss(r *rand.Rand, sigma float64) float64 {
	if r == nil {
		return 0
	}

	return r.NormFloat64() * sigma
}

// Track returns the measurement of a particle with charge q produced at vertex
// with momentum mom. A nil r yields the exact helix.
func Track(r *rand.Rand, vertex, mom r3.Vec, q float64) particle.Measurement {
	h, err := helix.FromState(vertex, mom, q, Field)
	if err != nil {
		panic(err)
	}
	for i := range h {
		h[i] += gauss(r, TrackSigma[i])
	}

	return particle.TrackMeasurement(h, TrackSigma, Field)
}

// Cluster returns a calorimeter deposit (x, y, z, E) of a massless particle
// from vertex with momentum mom. A nil r yields exact values.
func Cluster(r *rand.Rand, vertex, mom r3.Vec) particle.Measurement {
	pos := r3.Add(vertex, r3.Scale(ClusterRadius, r3.Unit(mom)))
	s2 := ClusterPosSigma * ClusterPosSigma

	return particle.Measurement{
		Params: []float64{
			pos.X + gauss(r, ClusterPosSigma),
			pos.Y + gauss(r, ClusterPosSigma),
			pos.Z + gauss(r, ClusterPosSigma),
			r3.Norm(mom) + gauss(r, ClusterESigma),
		},
		Cov: matrix.Diagonal(s2, s2, s2, ClusterESigma*ClusterESigma),
	}
}

// Beamspot returns an exact Gaussian vertex prior at mu with width sigma.
func Beamspot(mu r3.Vec, sigma float64) particle.Measurement {
	s2 := sigma * sigma

	return particle.Measurement{Params: []float64{mu.X, mu.Y, mu.Z}, Cov: matrix.Diagonal(s2, s2, s2)}
}

// Truth records what a toy was generated from.
type Truth struct {
	Vertex  r3.Vec
	Momenta []r3.Vec
	Charges []float64
}

// Mass returns the invariant mass of the truth daughters under mass hypothesis m each.
func (t Truth) Mass(m float64) float64 {
	var (
		p r3.Vec
		e float64
	)
	for _, q := range t.Momenta {
		p = r3.Add(p, q)
		e += math.Sqrt(r3.Norm2(q) + m*m)
	}

	return math.Sqrt(e*e - r3.Norm2(p))
}

// DefaultTruth is a two-track decay at a slightly displaced vertex.
func DefaultTruth() Truth {
	return Truth{
		Vertex:  r3.Vec{X: 0.05, Y: -0.03, Z: 0.2},
		Momenta: []r3.Vec{{X: 0.8, Y: 0.3, Z: 0.2}, {X: -0.4, Y: 0.7, Z: -0.1}},
		Charges: []float64{+1, -1},
	}
}

// NTracks returns a truth of n tracks with alternating charges fanned out in
// azimuth around the default vertex.
func NTracks(n int) Truth {
	t := Truth{Vertex: DefaultTruth().Vertex}
	for i := 0; i < n; i++ {
		phi := 0.3 + 2*math.Pi*float64(i)/float64(n+1)
		pt := 0.5 + 0.15*float64(i)
		t.Momenta = append(t.Momenta, r3.Vec{X: pt * math.Cos(phi), Y: pt * math.Sin(phi), Z: 0.1 * float64(i%3-1)})
		q := 1.0
		if i%2 == 1 {
			q = -1
		}
		t.Charges = append(t.Charges, q)
	}

	return t
}

// Options tweak BuildTracks.
type Options struct {
	// Order lists the truth daughters in the order they are added.
	Order []int
	// MassConstraint fixes the root mass to the truth mass.
	MassConstraint bool
	// Beamspot attaches a vertex prior of this width at the truth vertex (0: none).
	Beamspot float64
}

// BuildTracks returns a builder with a root composite "root" and one pion
// track per truth daughter, named "trk<i>" after its truth index.
func BuildTracks(r *rand.Rand, t Truth, opts Options) *particle.Builder {
	b := particle.NewBuilder()
	var copts []particle.SpecOption
	if opts.MassConstraint {
		copts = append(copts, particle.WithMassConstraint())
	}
	root := b.Composite(particle.NoMother, "root", t.Mass(PionMass), copts...)
	order := opts.Order
	if order == nil {
		for i := range t.Momenta {
			order = append(order, i)
		}
	}
	meas := make([]particle.Measurement, len(t.Momenta))
	for i := range t.Momenta {
		meas[i] = Track(r, t.Vertex, t.Momenta[i], t.Charges[i])
	}
	for _, i := range order {
		b.Track(root, TrackName(i), PionMass, meas[i])
	}
	if opts.Beamspot > 0 {
		b.Prior(root, "beamspot", Beamspot(t.Vertex, opts.Beamspot))
	}

	return b
}

// TrackName returns the name BuildTracks gives to truth daughter i.
func TrackName(i int) string { return fmt.Sprintf("trk%d", i) }
