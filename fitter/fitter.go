// SPDX-License-Identifier: MIT

package fitter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/katalvlaran/treefit"
	"github.com/katalvlaran/treefit/kalman"
	"github.com/katalvlaran/treefit/paramspace"
	"github.com/katalvlaran/treefit/particle"
)

// Driver runs decay tree fits. It is immutable after New and safe for
// concurrent use.
type Driver struct {
	cfg     Config
	engine  Updater
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

// New validates cfg and returns a Driver.
// Errors: treefit.ErrBadInput.
func New(cfg Config, opts ...Option) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d := &Driver{
		cfg:    cfg,
		engine: kalman.New(cfg.Regularization),
		logger: slog.New(slog.DiscardHandler),
		tracer: otel.Tracer("github.com/katalvlaran/treefit/fitter"),
	}
	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

// Config returns the driver configuration.
func (d *Driver) Config() Config { return d.cfg }

// run is the mutable state of one fit.
type run struct {
	tree     *particle.Tree
	space    *paramspace.Space
	order    []int
	reverse  []int
	nodeChi2 []float64
	singular []int
	status   Status
	log      *slog.Logger
}

// passStats summarizes one sweep over the tree.
type passStats struct {
	chi2        float64
	skipped     int
	regularized int
	hit         []bool
}

// Fit fits tree and returns its result.
//
// Construction problems (topology, bad measurements, dimension mismatches
// found while initializing) return a nil result. A fit that starts but fails
// returns both the last valid estimate (Status == StatusFailed) and an error
// wrapping treefit.ErrSingular or treefit.ErrNotConverged. ctx carries the
// trace span; a running fit is never interrupted. A nil tree returns
// treefit.ErrInvalidTreeTopology.
func (d *Driver) Fit(ctx context.Context, tree *particle.Tree) (*Result, error) {
	if tree == nil {
		return nil, fmt.Errorf("fitter.Fit: nil tree: %w", treefit.ErrInvalidTreeTopology)
	}
	start := time.Now()
	id := uuid.New()
	ctx, span := d.tracer.Start(ctx, "treefit.Fit", trace.WithAttributes(
		attribute.String("treefit.run_id", id.String()),
		attribute.Int("treefit.nodes", tree.Len()),
		attribute.Int("treefit.dim", tree.Dim()),
	))
	defer span.End()

	r := &run{
		tree:     tree,
		order:    tree.Order(),
		nodeChi2: make([]float64, tree.Len()),
		singular: make([]int, tree.Len()),
		status:   StatusInitializing,
		log:      d.logger.With(slog.String("run_id", id.String())),
	}
	for k := len(r.order) - 1; k >= 0; k-- {
		r.reverse = append(r.reverse, r.order[k])
	}

	if err := d.initialize(r); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "initialization failed")
		r.log.WarnContext(ctx, "fit rejected", slog.Any("error", err))

		return nil, err
	}

	iterations, chi2, err := d.iterate(ctx, r)
	res := newResult(id, tree, r.space, r.nodeChi2)
	res.Status = r.status
	res.Iterations = iterations
	res.Chi2 = chi2
	res.Probability = Chi2Probability(chi2, res.NDF)
	d.checkMasses(ctx, r, res)
	d.metrics.observeFit(res, time.Since(start))

	span.SetAttributes(
		attribute.String("treefit.status", res.Status.String()),
		attribute.Int("treefit.iterations", iterations),
		attribute.Float64("treefit.chi2", chi2),
		attribute.Int("treefit.ndf", res.NDF),
	)
	attrs := []any{
		slog.String("status", res.Status.String()),
		slog.Int("iterations", iterations),
		slog.Float64("chi2", chi2),
		slog.Int("ndf", res.NDF),
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.log.InfoContext(ctx, "fit failed", append(attrs, slog.Any("error", err))...)

		return res, err
	}
	r.log.InfoContext(ctx, "fit converged", attrs...)

	return res, nil
}

// initialize allocates the space, seeds it and validates every projection
// against the declared dimensions before any Kalman update.
func (d *Driver) initialize(r *run) error {
	s, err := paramspace.Allocate(r.tree.Dim())
	if err != nil {
		return fmt.Errorf("fitter.Fit: %w", err)
	}
	r.space = s
	if err := r.tree.Initialize(s, d.cfg.Variances); err != nil {
		return fmt.Errorf("fitter.Fit: %w", err)
	}
	if err := r.tree.ValidateProjections(s); err != nil {
		return fmt.Errorf("fitter.Fit: %w", err)
	}

	return nil
}

// iterate runs the bounded iteration loop and leaves r.status terminal.
func (d *Driver) iterate(ctx context.Context, r *run) (int, float64, error) {
	var (
		prev      float64
		havePrev  bool
		increases int
	)
	for iter := 1; iter <= d.cfg.MaxIterations; iter++ {
		stats, err := d.iteration(ctx, r)
		if err != nil {
			r.status = StatusFailed

			return iter, stats.chi2, err
		}
		r.log.DebugContext(ctx, "iteration",
			slog.Int("iteration", iter),
			slog.Float64("chi2", stats.chi2),
			slog.Int("skipped", stats.skipped),
			slog.Int("regularized", stats.regularized),
		)

		for i, hit := range stats.hit {
			if !hit {
				r.singular[i] = 0
				continue
			}
			r.singular[i]++
			if r.singular[i] >= d.cfg.MaxConsecutiveSingular {
				r.status = StatusFailed

				return iter, stats.chi2, fmt.Errorf("fitter.Fit: node %q singular in %d consecutive iterations: %w",
					r.tree.Node(i).Name, r.singular[i], treefit.ErrSingular)
			}
		}

		if havePrev {
			if stats.skipped == 0 && d.cfg.converged(prev, stats.chi2) {
				r.status = StatusConverged

				return iter, stats.chi2, nil
			}
			if stats.chi2 > prev+d.cfg.Tolerance {
				increases++
				if increases >= 2 {
					r.status = StatusFailed

					return iter, stats.chi2, fmt.Errorf("fitter.Fit: chi2 diverging (%g after %g): %w",
						stats.chi2, prev, treefit.ErrNotConverged)
				}
			} else {
				increases = 0
			}
		}
		prev, havePrev = stats.chi2, true
	}
	r.status = StatusFailed

	return d.cfg.MaxIterations, prev, fmt.Errorf("fitter.Fit: %d iterations: %w", d.cfg.MaxIterations, treefit.ErrNotConverged)
}

// iteration re-inflates the covariance around the current state and sweeps
// the tree forward, then backward when smoothing is on.
func (d *Driver) iteration(ctx context.Context, r *run) (passStats, error) {
	if err := r.tree.InitCovariance(r.space, d.cfg.Variances); err != nil {
		return passStats{}, fmt.Errorf("fitter.Fit: %w", err)
	}
	r.status = StatusForward
	stats, err := d.pass(ctx, r, r.order)
	if err != nil || !d.cfg.Smoothing {
		return stats, err
	}

	if err := r.tree.InitCovariance(r.space, d.cfg.Variances); err != nil {
		return passStats{}, fmt.Errorf("fitter.Fit: %w", err)
	}
	r.status = StatusBackward
	back, err := d.pass(ctx, r, r.reverse)
	for i, hit := range stats.hit {
		back.hit[i] = back.hit[i] || hit
	}
	back.skipped += stats.skipped

	return back, err
}

// pass applies every node's projections in the given node order. Each
// constraint after a node's first is linearized again at the state left by
// the one before it. A singular update skips that constraint; any other
// error aborts.
func (d *Driver) pass(ctx context.Context, r *run, order []int) (passStats, error) {
	stats := passStats{hit: make([]bool, r.tree.Len())}
	for i := range r.nodeChi2 {
		r.nodeChi2[i] = 0
	}
	for _, i := range order {
		node := r.tree.Node(i)
		projs, err := r.tree.Project(i, r.space)
		if err != nil {
			if !errors.Is(err, treefit.ErrSingular) {
				return stats, fmt.Errorf("fitter.Fit: node %q: %w", node.Name, err)
			}
			d.skip(ctx, r, &stats, i, node.Kind.String(), err)
			continue
		}
		for k := 0; k < len(projs); k++ {
			if k > 0 {
				fresh, err := r.tree.Project(i, r.space)
				if err != nil {
					if !errors.Is(err, treefit.ErrSingular) {
						return stats, fmt.Errorf("fitter.Fit: node %q: %w", node.Name, err)
					}
					d.skip(ctx, r, &stats, i, node.Kind.String(), err)
					break
				}
				if len(fresh) != len(projs) {
					return stats, fmt.Errorf("fitter.Fit: node %q: %d projections after %d: %w",
						node.Name, len(fresh), len(projs), treefit.ErrDimensionMismatch)
				}
				projs = fresh
			}
			p := projs[k]
			up, err := d.engine.Apply(r.space, p)
			if err != nil {
				if !errors.Is(err, treefit.ErrSingular) {
					return stats, fmt.Errorf("fitter.Fit: node %q: %w", node.Name, err)
				}
				d.skip(ctx, r, &stats, i, p.Kind.String(), err)
				continue
			}
			if up.Regularized {
				stats.regularized++
			}
			stats.chi2 += up.Chi2
			r.nodeChi2[i] += up.Chi2
		}
	}

	return stats, nil
}

func (d *Driver) skip(ctx context.Context, r *run, stats *passStats, node int, kind string, err error) {
	stats.skipped++
	stats.hit[node] = true
	d.metrics.observeSkip(kind)
	r.log.WarnContext(ctx, "constraint skipped",
		slog.String("node", r.tree.Node(node).Name),
		slog.String("kind", kind),
		slog.String("status", r.status.String()),
		slog.Any("error", err),
	)
}

// checkMasses warns about mass-constrained composites off their nominal mass.
func (d *Driver) checkMasses(ctx context.Context, r *run, res *Result) {
	for i := 0; i < r.tree.Len(); i++ {
		n := r.tree.Node(i)
		if !n.MassConstraint {
			continue
		}
		if dm := math.Abs(res.Nodes[i].Mass - n.Mass); dm > d.cfg.MassTolerance {
			r.log.WarnContext(ctx, "mass constraint not satisfied",
				slog.String("node", n.Name),
				slog.Float64("mass", res.Nodes[i].Mass),
				slog.Float64("nominal", n.Mass),
			)
		}
	}
}
