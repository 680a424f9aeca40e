// Package dfs implements depth-first traversal of index-addressed rooted trees
// (decay trees stored in an arena), with cycle and shape detection.
//
// What:
//
//   - PostOrder: children before parents, i.e. leaves-to-root (bottom-up)
//     order. Pre-/post-order hooks let callers assign indices on the fly.
//   - TopologicalSort: parents before children (reverse post-order), the
//     root-to-leaves order.
//   - Vertex coloring (White, Gray, Black) detects back-edges (cycles) and
//     cross-edges (a node reachable from two parents).
//
// Why:
//   - A decay tree must be a tree: one root, each node with at most one
//     mother, no cycles, every node reachable. Violations are reported before
//     any numeric work starts.
//
// Complexity:
//
//   - PostOrder, TopologicalSort: Time O(V+E), Memory O(V)
//
// Errors:
//
//   - ErrTreeNil              tree is nil or empty
//   - ErrUnknownVertex        root or child index out of range
//   - ErrCycleDetected        a node is its own ancestor
//   - ErrMultipleParents      a node is reached from two parents
//   - ErrUnreachable          a node is not reachable from the root
//   - hook errors             propagated from OnVisit or OnExit
package dfs
