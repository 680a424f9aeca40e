// SPDX-License-Identifier: MIT

package helix

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// C is the speed of light in GeV/(T·cm): pT[GeV] = C·B[T]·R[cm].
const C = 0.00299792458

// Parameter indices.
const (
	D0 = iota
	Phi0
	Omega
	Z0
	TanLambda

	// Dim is the number of helix parameters.
	Dim
)

var (
	// ErrStraightLine is returned when the trajectory has no curvature
	// (neutral particle, zero field or zero transverse momentum).
	ErrStraightLine = errors.New("helix: zero curvature")

	// ErrDegenerate is returned when the closest approach is not unique
	// (the reference point sits on the circle centre).
	ErrDegenerate = errors.New("helix: degenerate geometry")
)

// Params holds the five perigee parameters, indexed by D0..TanLambda.
type Params [Dim]float64

// Kappa returns the curvature constant C·Bz.
func Kappa(bz float64) float64 { return C * bz }

// WrapAngle maps x into [−π, π].
func WrapAngle(x float64) float64 { return math.Remainder(x, 2*math.Pi) }

// FromState returns the perigee parameters of a particle with the given charge
// passing through pos with momentum mom.
//
// Implementation:
//   - Stage 1: circle centre from the Lorentz force direction (a = −κ·q).
//   - Stage 2: closest approach of the circle to the origin.
//   - Stage 3: phase difference between pos and the perigee gives the arc,
//     and with it z0.
//
// Errors: ErrStraightLine, ErrDegenerate.
// Complexity: O(1).
func FromState(pos, mom r3.Vec, charge, bz float64) (Params, error) {
	a := -Kappa(bz) * charge
	pt := math.Hypot(mom.X, mom.Y)
	if a == 0 || pt == 0 {
		return Params{}, ErrStraightLine
	}
	xc := pos.X - mom.Y/a
	yc := pos.Y + mom.X/a
	r := pt / math.Abs(a)
	dc := math.Hypot(xc, yc)
	if dc == 0 {
		return Params{}, ErrDegenerate
	}
	// Point of the circle nearest to the origin.
	f := 1 - r/dc
	xp, yp := xc*f, yc*f
	px0, py0 := a*(yc-yp), a*(xp-xc)
	phi0 := math.Atan2(py0, px0)
	sin, cos := math.Sincos(phi0)
	dphi := WrapAngle(phi0 - math.Atan2(mom.Y, mom.X))

	return Params{
		D0:        xp*sin - yp*cos,
		Phi0:      phi0,
		Omega:     -a / pt,
		Z0:        pos.Z + dphi*mom.Z/a,
		TanLambda: mom.Z / pt,
	}, nil
}

// Charge returns the particle charge (±1) implied by the curvature sign.
func (p Params) Charge(bz float64) (float64, error) {
	k := Kappa(bz)
	if k == 0 || p[Omega] == 0 {
		return 0, ErrStraightLine
	}
	if p[Omega]/k < 0 {
		return -1, nil
	}

	return 1, nil
}

// Perigee returns position and momentum at the perigee.
// Errors: ErrStraightLine.
func (p Params) Perigee(bz float64) (pos, mom r3.Vec, err error) {
	if _, err = p.Charge(bz); err != nil {
		return r3.Vec{}, r3.Vec{}, err
	}
	pt := math.Abs(Kappa(bz) / p[Omega])
	sin, cos := math.Sincos(p[Phi0])
	pos = r3.Vec{X: p[D0] * sin, Y: -p[D0] * cos, Z: p[Z0]}
	mom = r3.Vec{X: pt * cos, Y: pt * sin, Z: pt * p[TanLambda]}

	return pos, mom, nil
}

// ClosestApproach propagates the helix to the point of closest transverse
// approach to point and returns position and momentum there. The arc length
// follows from the phase advance between the perigee and that point.
//
// Errors: ErrStraightLine, ErrDegenerate.
// Complexity: O(1).
func (p Params) ClosestApproach(point r3.Vec, bz float64) (pos, mom r3.Vec, err error) {
	q, err := p.Charge(bz)
	if err != nil {
		return r3.Vec{}, r3.Vec{}, err
	}
	pos0, mom0, _ := p.Perigee(bz)
	a := -Kappa(bz) * q
	xc := pos0.X - mom0.Y/a
	yc := pos0.Y + mom0.X/a
	r := math.Hypot(mom0.X, mom0.Y) / math.Abs(a)
	dx, dy := xc-point.X, yc-point.Y
	d := math.Hypot(dx, dy)
	if d == 0 {
		return r3.Vec{}, r3.Vec{}, ErrDegenerate
	}
	x, y := xc-r*dx/d, yc-r*dy/d
	px, py := a*(yc-y), a*(x-xc)
	dphi := WrapAngle(math.Atan2(py, px) - p[Phi0])

	return r3.Vec{X: x, Y: y, Z: pos0.Z + dphi*mom0.Z/a}, r3.Vec{X: px, Y: py, Z: mom0.Z}, nil
}

// String implements fmt.Stringer for debugging.
func (p Params) String() string {
	return fmt.Sprintf("helix{d0=%g phi0=%g omega=%g z0=%g tanl=%g}",
		p[D0], p[Phi0], p[Omega], p[Z0], p[TanLambda])
}
