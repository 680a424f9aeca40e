// Package treefit is a decay-tree constrained Kalman fitter: it takes the
// measurements of every final-state particle of one hypothesized decay chain
// and returns a single consistent estimate of all vertices, momenta and masses
// in the tree, together with a goodness-of-fit statistic.
//
// What is in the box?
//
//   - Global parameter space: one state vector + covariance for the whole tree
//   - Particle nodes: tracks, photons, neutral hadrons, composites, vertex priors
//   - Constraints: helix, cluster, kinematic, geometric, mass, prior projections
//   - Kalman engine: extended-Kalman update with bounded regularization
//   - Driver: initialization, ordered passes, iteration to convergence
//
// Under the hood, everything is organized in subpackages:
//
//	constraint/  projection type (residual, Jacobian, noise) and numeric Jacobians
//	dfs/         post-order / topological traversal of index-addressed trees
//	fitter/      Driver: state machine, config, results, metrics, batches
//	helix/       perigee helix parameters and closest-approach geometry
//	kalman/      single constraint update over the global state
//	matrix/      numeric policy on top of gonum/mat (finite, symmetric, PSD)
//	paramspace/  global state vector, covariance, ranges and views
//	particle/    measurements, node arena, per-kind behavior table, builder
//
// Quick ASCII example (B0 → J/ψ K_S, J/ψ → μ+μ−, K_S → π+π−):
//
//	      B0
//	     /  \
//	  J/ψ    K_S
//	  / \    / \
//	μ+  μ− π+  π−
//
// Each composite owns a vertex and a 4-momentum; K_S additionally owns a
// flight length tying its vertex to the B0 vertex.
//
// Units are cm, GeV and Tesla throughout.
package treefit
