// SPDX-License-Identifier: MIT

package fitter

import (
	"fmt"
	"math"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/treefit"
	"github.com/katalvlaran/treefit/kalman"
	"github.com/katalvlaran/treefit/particle"
)

// EnvPrefix prefixes every environment override read by LoadConfig.
const EnvPrefix = "TREEFIT_"

// ConvergenceFunc decides convergence from the chi-square of the previous
// and the current iteration.
type ConvergenceFunc func(prevChi2, chi2 float64) bool

// Config controls a Driver. The zero value is not usable; start from
// DefaultConfig.
type Config struct {
	// MaxIterations bounds the iteration loop.
	MaxIterations int `yaml:"max_iterations" env:"MAX_ITERATIONS"`

	// Tolerance is the chi-square change below which the default predicate
	// declares convergence, and the increase above which an iteration counts
	// as diverging.
	Tolerance float64 `yaml:"tolerance" env:"TOLERANCE"`

	// Smoothing adds a reverse re-filter to every iteration: after the
	// forward pass the covariance is re-inflated around the forward estimate
	// and all constraints are applied again from the root to the leaves. It
	// is not a Rauch-Tung-Striebel smoother; no forward and backward
	// estimates are combined.
	Smoothing bool `yaml:"smoothing" env:"SMOOTHING"`

	// MaxConsecutiveSingular fails the fit when one node hits a singular
	// update in that many consecutive iterations.
	MaxConsecutiveSingular int `yaml:"max_consecutive_singular" env:"MAX_CONSECUTIVE_SINGULAR"`

	// MassTolerance is the allowed |m_fit − m_nominal| of mass-constrained
	// composites before a warning is logged.
	MassTolerance float64 `yaml:"mass_tolerance" env:"MASS_TOLERANCE"`

	Regularization kalman.Config      `yaml:"regularization" envPrefix:"REGULARIZATION_"`
	Variances      particle.Variances `yaml:"variances" envPrefix:"VARIANCE_"`

	// Converged overrides the default |Δχ²| < Tolerance predicate.
	Converged ConvergenceFunc `yaml:"-"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		MaxIterations:          10,
		Tolerance:              0.01,
		MaxConsecutiveSingular: 3,
		MassTolerance:          1e-3,
		Regularization:         kalman.DefaultConfig(),
		Variances:              particle.DefaultVariances(),
	}
}

// LoadConfig starts from DefaultConfig, overlays the YAML file at path (when
// path is not empty) and then environment variables prefixed with EnvPrefix,
// e.g. TREEFIT_MAX_ITERATIONS or TREEFIT_VARIANCE_POSITION.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("fitter.LoadConfig: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("fitter.LoadConfig: %s: %w: %w", path, treefit.ErrBadInput, err)
		}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("fitter.LoadConfig: env: %w: %w", treefit.ErrBadInput, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate reports an unusable configuration.
// Errors: treefit.ErrBadInput.
func (c Config) Validate() error {
	switch {
	case c.MaxIterations < 2:
		return fmt.Errorf("fitter.Config: max iterations %d < 2: %w", c.MaxIterations, treefit.ErrBadInput)
	case !(c.Tolerance > 0) || math.IsInf(c.Tolerance, 0):
		return fmt.Errorf("fitter.Config: tolerance %g: %w", c.Tolerance, treefit.ErrBadInput)
	case c.MaxConsecutiveSingular < 1:
		return fmt.Errorf("fitter.Config: max consecutive singular %d: %w", c.MaxConsecutiveSingular, treefit.ErrBadInput)
	case c.MassTolerance < 0:
		return fmt.Errorf("fitter.Config: mass tolerance %g: %w", c.MassTolerance, treefit.ErrBadInput)
	}
	if err := c.Regularization.Validate(); err != nil {
		return fmt.Errorf("fitter.Config: %w", err)
	}
	if err := c.Variances.Validate(); err != nil {
		return fmt.Errorf("fitter.Config: %w", err)
	}

	return nil
}

func (c Config) converged(prev, chi2 float64) bool {
	if c.Converged != nil {
		return c.Converged(prev, chi2)
	}

	return math.Abs(chi2-prev) < c.Tolerance
}
