// SPDX-License-Identifier: MIT

package particle

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/treefit"
	"github.com/katalvlaran/treefit/helix"
	"github.com/katalvlaran/treefit/matrix"
)

// covSymmetryTol is the relative symmetry tolerance for measurement covariances.
const covSymmetryTol = 1e-9

// Cluster parameter indices.
const (
	ClusterX = iota
	ClusterY
	ClusterZ
	ClusterE
)

// Measurement is the reconstructed input of a final-state node or the mean
// and covariance of an external prior.
//
//	Track          Params = (d0, φ0, ω, z0, tanλ) at the origin, Cov 5×5
//	Photon         Params = (x, y, z, E), Cov 4×4
//	NeutralHadron  Params = (x, y, z) or (x, y, z, E), E only seeds |p|
//	ExternalPrior  Params = (x, y, z), Cov 3×3
type Measurement struct {
	Params []float64
	Cov    *mat.SymDense

	// Field is Bz in Tesla, used by tracks.
	Field float64

	// ScaleFactor rescales momenta: track curvature is divided by it, cluster
	// energies are multiplied by it. Zero means 1.
	ScaleFactor float64
}

// NewMeasurement builds a Measurement from a flat row-major covariance.
// Errors: treefit.ErrBadInput.
func NewMeasurement(params []float64, cov []float64) (Measurement, error) {
	n := len(params)
	c, err := matrix.NewSym(n, cov, covSymmetryTol)
	if err != nil {
		return Measurement{}, fmt.Errorf("particle.NewMeasurement: %w: %w", treefit.ErrBadInput, err)
	}
	p := make([]float64, n)
	copy(p, params)

	return Measurement{Params: p, Cov: c}, nil
}

// TrackMeasurement builds a track measurement from helix parameters and their
// uncorrelated standard deviations.
func TrackMeasurement(h helix.Params, sigma [helix.Dim]float64, field float64) Measurement {
	var v [helix.Dim]float64
	for i, s := range sigma {
		v[i] = s * s
	}

	return Measurement{Params: append([]float64(nil), h[:]...), Cov: matrix.Diagonal(v[:]...), Field: field}
}

// Len returns the number of measured parameters.
func (m Measurement) Len() int { return len(m.Params) }

func measurementErrorf(name string, kind Kind, err error) error {
	return fmt.Errorf("particle: %s %q: %w: %w", kind, name, treefit.ErrBadInput, err)
}

// normalize validates m for kind and returns a copy with the scale factor
// applied.
func (m Measurement) normalize(name string, kind Kind) (Measurement, error) {
	var want []int
	switch kind {
	case KindTrack:
		want = []int{helix.Dim}
	case KindPhoton:
		want = []int{4}
	case KindNeutralHadron:
		want = []int{3, 4}
	case KindExternalPrior:
		want = []int{3}
	default:
		return m, nil
	}
	okLen := false
	for _, w := range want {
		okLen = okLen || m.Len() == w
	}
	if !okLen {
		return m, measurementErrorf(name, kind, fmt.Errorf("%d parameters, want %v", m.Len(), want))
	}
	if m.Cov == nil || m.Cov.SymmetricDim() != m.Len() {
		return m, measurementErrorf(name, kind, fmt.Errorf("covariance does not match %d parameters", m.Len()))
	}
	if err := matrix.ValidateFiniteSlice(m.Params); err != nil {
		return m, measurementErrorf(name, kind, err)
	}
	if err := matrix.ValidateCovariance(m.Cov, covSymmetryTol); err != nil {
		return m, measurementErrorf(name, kind, err)
	}
	scale := m.ScaleFactor
	if scale == 0 {
		scale = 1
	}
	if scale < 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return m, measurementErrorf(name, kind, fmt.Errorf("scale factor %g", m.ScaleFactor))
	}

	out := Measurement{
		Params:      append([]float64(nil), m.Params...),
		Cov:         mat.NewSymDense(m.Len(), nil),
		Field:       m.Field,
		ScaleFactor: 1,
	}
	out.Cov.CopySym(m.Cov)

	switch kind {
	case KindTrack:
		if m.Field == 0 || math.IsNaN(m.Field) || math.IsInf(m.Field, 0) {
			return m, measurementErrorf(name, kind, fmt.Errorf("field %g", m.Field))
		}
		if m.Params[helix.Omega] == 0 {
			return m, measurementErrorf(name, kind, helix.ErrStraightLine)
		}
		scaleIndex(out, helix.Omega, 1/scale)
	case KindPhoton:
		if m.Params[ClusterE] <= 0 {
			return m, measurementErrorf(name, kind, fmt.Errorf("energy %g", m.Params[ClusterE]))
		}
		scaleIndex(out, ClusterE, scale)
	case KindNeutralHadron:
		if m.Len() > ClusterE {
			scaleIndex(out, ClusterE, scale)
		}
	}

	return out, nil
}

// scaleIndex multiplies parameter i by f and its covariance row/column accordingly.
func scaleIndex(m Measurement, i int, f float64) {
	m.Params[i] *= f
	for j := 0; j < m.Len(); j++ {
		m.Cov.SetSym(i, j, m.Cov.At(i, j)*f)
	}
	// The diagonal was scaled once by the loop; it needs f².
	m.Cov.SetSym(i, i, m.Cov.At(i, i)*f)
}
