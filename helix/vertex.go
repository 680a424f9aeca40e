// SPDX-License-Identifier: MIT

package helix

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// parallelTol is the relative threshold below which two lines are treated as parallel.
const parallelTol = 1e-12

// LinePOCA returns the midpoint of the shortest segment between the lines
// p1 + s·d1 and p2 + t·d2. Parallel lines yield the midpoint of p1 and p2.
// Complexity: O(1).
func LinePOCA(p1, d1, p2, d2 r3.Vec) r3.Vec {
	w := r3.Sub(p1, p2)
	a, b, c := r3.Dot(d1, d1), r3.Dot(d1, d2), r3.Dot(d2, d2)
	d, e := r3.Dot(d1, w), r3.Dot(d2, w)
	den := a*c - b*b
	if den <= parallelTol*a*c || a == 0 || c == 0 {
		return r3.Scale(0.5, r3.Add(p1, p2))
	}
	s := (b*e - c*d) / den
	t := (a*e - b*d) / den
	q1 := r3.Add(p1, r3.Scale(s, d1))
	q2 := r3.Add(p2, r3.Scale(t, d2))

	return r3.Scale(0.5, r3.Add(q1, q2))
}

// SeedVertex estimates the common origin of two helices.
//
// Implementation:
//   - Stage 1: intersect the perigee tangent lines.
//   - Stage 2: for each refinement round, move both tangents to the closest
//     approach of the current estimate and intersect again.
//
// A helix that cannot be propagated (degenerate geometry) keeps its previous
// tangent. Complexity: O(rounds).
func SeedVertex(a Params, bzA float64, b Params, bzB float64, rounds int) (r3.Vec, error) {
	pa, ma, err := a.Perigee(bzA)
	if err != nil {
		return r3.Vec{}, err
	}
	pb, mb, err := b.Perigee(bzB)
	if err != nil {
		return r3.Vec{}, err
	}
	v := LinePOCA(pa, ma, pb, mb)
	for i := 0; i < rounds; i++ {
		if p, m, err := a.ClosestApproach(v, bzA); err == nil {
			pa, ma = p, m
		}
		if p, m, err := b.ClosestApproach(v, bzB); err == nil {
			pb, mb = p, m
		}
		next := LinePOCA(pa, ma, pb, mb)
		if r3.Norm(r3.Sub(next, v)) < 1e-9*math.Max(1, r3.Norm(v)) {
			return next, nil
		}
		v = next
	}

	return v, nil
}
