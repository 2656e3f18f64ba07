// Package core is the navigation state engine: the node tree model, the
// pure tree mutation operations, the tree-to-surface flattener, the
// speculative back-gesture coordinator, and the navigator facade that
// serializes mutations through a single-writer reactive cell.
//
// Allowed here:
// - the sealed NavNode union and its derivation functions
// - pure, non-destructive tree mutations with typed failures
// - the snapshot wire contract and its invariant re-validation
//
// Not allowed here:
// - rendering, layout or animation decisions (surfaces only name what is
//   visible and its relative Z/role)
// - deep link route tables (core/route) or any I/O
package core
