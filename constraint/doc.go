// Package constraint defines the linearized measurement handed to the Kalman
// engine.
//
// A Projection carries, for one node and one constraint kind:
//
//	Residual  r = measured − predicted(x), length m
//	H         ∂predicted/∂x over the full global state, m×n
//	V         measurement covariance, m×m; nil marks an exact constraint
//
// so that a state change δ moves the residual by −H·δ. Projections are built
// fresh at every linearization and discarded after the update.
package constraint
