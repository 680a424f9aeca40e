// SPDX-License-Identifier: MIT

package fitter

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/treefit/particle"
)

// Outcome pairs the result and error of one candidate in FitAll.
type Outcome struct {
	Result *Result
	Err    error
}

// FitAll fits independent candidate trees concurrently, at most limit at a
// time (limit ≤ 0 means one per tree). Outcomes are indexed like trees.
//
// Cancelling ctx stops scheduling: candidates not yet started get ctx.Err()
// as their error and FitAll returns ctx.Err(). Fits already running finish.
func (d *Driver) FitAll(ctx context.Context, trees []*particle.Tree, limit int) ([]Outcome, error) {
	ctx, span := d.tracer.Start(ctx, "treefit.FitAll", trace.WithAttributes(
		attribute.Int("treefit.candidates", len(trees)),
		attribute.Int("treefit.limit", limit),
	))
	defer span.End()

	out := make([]Outcome, len(trees))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	next := 0
	for ; next < len(trees); next++ {
		if ctx.Err() != nil {
			break
		}
		i, tree := next, trees[next]
		g.Go(func() error {
			res, err := d.Fit(gctx, tree)
			out[i] = Outcome{Result: res, Err: err}

			// Candidate failures are independent of each other.
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		for i := next; i < len(trees); i++ {
			out[i] = Outcome{Err: err}
		}
		span.RecordError(err)

		return out, err
	}

	return out, nil
}
