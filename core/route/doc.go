// Package route maps deep link URIs onto the navigation tree.
//
// Allowed here:
// - route templates with {param} placeholders and typed query parameters
// - the immutable, composable route registry
// - the resolver that synthesizes missing ancestors and activates existing
//   tab lanes instead of duplicating history
//
// Not allowed here:
// - tree mutation primitives (those live in core and are consumed through
//   the Mutator)
// - URL scheme registration with an OS
package route
