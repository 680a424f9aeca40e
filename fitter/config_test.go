// SPDX-License-Identifier: MIT
package fitter_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/treefit"
	"github.com/katalvlaran/treefit/fitter"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "treefit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := fitter.DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 10, cfg.MaxIterations)
	assert.Equal(t, 0.01, cfg.Tolerance)
	assert.False(t, cfg.Smoothing)
	assert.Equal(t, 3, cfg.MaxConsecutiveSingular)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	cases := map[string]func(*fitter.Config){
		"one iteration":      func(c *fitter.Config) { c.MaxIterations = 1 },
		"zero tolerance":     func(c *fitter.Config) { c.Tolerance = 0 },
		"no singular budget": func(c *fitter.Config) { c.MaxConsecutiveSingular = 0 },
		"negative mass tol":  func(c *fitter.Config) { c.MassTolerance = -1 },
		"negative variance":  func(c *fitter.Config) { c.Variances.Position = -1 },
		"negative lambda":    func(c *fitter.Config) { c.Regularization.RegularizationFactor = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			cfg := fitter.DefaultConfig()
			mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), treefit.ErrBadInput)
			_, err := fitter.New(cfg)
			assert.ErrorIs(t, err, treefit.ErrBadInput)
		})
	}
}

// The LoadConfig tests touch the environment and cannot run in parallel.

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
max_iterations: 25
smoothing: true
regularization:
  regularization_factor: 1.0e-4
variances:
  position: 16
`)
	cfg, err := fitter.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.MaxIterations)
	assert.True(t, cfg.Smoothing)
	assert.Equal(t, 1e-4, cfg.Regularization.RegularizationFactor)
	assert.Equal(t, 16.0, cfg.Variances.Position)
	// untouched keys keep their defaults
	assert.Equal(t, 0.01, cfg.Tolerance)
	assert.Equal(t, fitter.DefaultConfig().Variances.Momentum, cfg.Variances.Momentum)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "max_iterations: 25\n")
	t.Setenv("TREEFIT_MAX_ITERATIONS", "7")
	t.Setenv("TREEFIT_VARIANCE_POSITION", "9")
	t.Setenv("TREEFIT_REGULARIZATION_FACTOR", "0.001")

	cfg, err := fitter.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.MaxIterations)
	assert.Equal(t, 9.0, cfg.Variances.Position)
	assert.Equal(t, 0.001, cfg.Regularization.RegularizationFactor)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := fitter.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = fitter.LoadConfig(writeConfig(t, "max_iterations: [1, 2\n"))
	assert.ErrorIs(t, err, treefit.ErrBadInput)

	_, err = fitter.LoadConfig(writeConfig(t, "max_iterations: 1\n"))
	assert.ErrorIs(t, err, treefit.ErrBadInput)

	t.Setenv("TREEFIT_TOLERANCE", "not-a-number")
	_, err = fitter.LoadConfig("")
	assert.ErrorIs(t, err, treefit.ErrBadInput)
}
