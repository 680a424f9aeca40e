// Package paramspace owns the global parameter vector of a decay-tree fit and
// its covariance matrix.
//
// Every node of the tree owns a contiguous Range of the global vector. The
// Space hands out no-copy views of those ranges for reading and in-place
// seeding, and accepts whole-state replacements only through Commit, which
// validates shape and finiteness before swapping. A failed Commit leaves the
// previous state untouched.
//
// A Space is not safe for concurrent use; every fit owns its own Space.
package paramspace
