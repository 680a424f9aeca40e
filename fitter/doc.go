// Package fitter drives an iterated Kalman fit of a whole decay tree.
//
// A Driver owns no per-fit state: every Fit allocates its own parameter
// space, seeds it from the measurements and iterates
//
//	Initializing → Forward → [Backward] → … → Converged | Failed
//
// Each iteration re-inflates the covariance around the current estimate and
// applies every node's constraints leaves-to-root, each linearized at the
// state the previous one left. With smoothing the covariance is re-inflated
// once more and the constraints re-filtered root-to-leaves. The fit converges when the convergence predicate
// holds on the chi-square of two consecutive iterations and no constraint was
// skipped. A failed fit still returns the last valid estimate together with
// the error.
//
// Logging goes through an injected *slog.Logger, metrics through an optional
// prometheus registerer, spans through an OpenTelemetry tracer.
package fitter
