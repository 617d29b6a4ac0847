// Package eval computes the value shown next to a parallel tree.
//
// The tree builder deliberately ignores operator precedence; the value printed
// beside it does not. An [Evaluator] receives the raw expression text, exactly
// as the user typed it, and returns a display string.
//
// # Evaluators
//
//   - [Symbolic]: algebraic simplification via github.com/Konstantin8105/sm.
//     Free variables stay symbolic, so "a+a" simplifies instead of failing.
//   - [Numeric]: arbitrary-precision arithmetic via
//     github.com/zephyrtronium/expressions. Variables must be bound.
//   - [None]: produces no value.
//
// Use [New] to construct one by name, as the CLI and config file do.
//
// # Failures
//
// An evaluator that cannot handle an expression returns an error. Callers that
// display results use [Describe], which turns that error into the value text
// itself; evaluation failure never aborts rendering a tree.
package eval
