// SPDX-License-Identifier: MIT

package fitter

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/katalvlaran/treefit/constraint"
	"github.com/katalvlaran/treefit/kalman"
	"github.com/katalvlaran/treefit/paramspace"
)

// Updater applies one projection to a parameter space. *kalman.Engine is the
// production implementation.
type Updater interface {
	Apply(s *paramspace.Space, p *constraint.Projection) (kalman.Update, error)
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the structured logger. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithMetrics records fits into m (see NewMetrics).
func WithMetrics(m *Metrics) Option {
	return func(d *Driver) { d.metrics = m }
}

// WithTracer sets the OpenTelemetry tracer. The default is the global
// provider's tracer, a no-op until one is installed.
func WithTracer(t trace.Tracer) Option {
	return func(d *Driver) {
		if t != nil {
			d.tracer = t
		}
	}
}

// WithUpdater replaces the Kalman engine built from Config.Regularization.
func WithUpdater(u Updater) Option {
	return func(d *Driver) {
		if u != nil {
			d.engine = u
		}
	}
}
