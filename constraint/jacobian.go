// SPDX-License-Identifier: MIT

package constraint

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/treefit"
)

// relStep is the relative step of central differences.
const relStep = 1e-6

// Func maps local parameters to predicted measurements.
type Func func(x []float64) ([]float64, error)

// NumericJacobian differentiates f at x by central differences.
//
// Implementation:
//   - step h_i = relStep·max(1, |x_i|).
//   - output components flagged in angular are wrapped into [−π, π] before
//     dividing, so a prediction crossing ±π does not produce a 2π spike.
//
// Errors: errors of f; treefit.ErrDimensionMismatch if f changes its output
// length or angular does not match it.
// Complexity: 2·len(x) calls of f.
func NumericJacobian(f Func, x []float64, angular []bool) (*mat.Dense, error) {
	y0, err := f(x)
	if err != nil {
		return nil, fmt.Errorf("constraint.NumericJacobian: %w", err)
	}
	m, n := len(y0), len(x)
	if m == 0 || n == 0 || (angular != nil && len(angular) != m) {
		return nil, fmt.Errorf("constraint.NumericJacobian: m=%d n=%d: %w", m, n, treefit.ErrDimensionMismatch)
	}
	jac := mat.NewDense(m, n, nil)
	buf := make([]float64, n)
	for j := 0; j < n; j++ {
		h := relStep * math.Max(1, math.Abs(x[j]))
		copy(buf, x)
		buf[j] = x[j] + h
		hi, err := f(buf)
		if err != nil {
			return nil, fmt.Errorf("constraint.NumericJacobian: %w", err)
		}
		buf[j] = x[j] - h
		lo, err := f(buf)
		if err != nil {
			return nil, fmt.Errorf("constraint.NumericJacobian: %w", err)
		}
		if len(hi) != m || len(lo) != m {
			return nil, fmt.Errorf("constraint.NumericJacobian: %w", treefit.ErrDimensionMismatch)
		}
		for i := 0; i < m; i++ {
			d := hi[i] - lo[i]
			if angular != nil && angular[i] {
				d = math.Remainder(d, 2*math.Pi)
			}
			jac.Set(i, j, d/(2*h))
		}
	}

	return jac, nil
}
