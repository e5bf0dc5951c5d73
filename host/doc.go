// Package host compiles native expression trees into callable functions.
//
// The compiled form is a tree-walking evaluator over the native vocabulary of
// package expr. Compile rejects trees that still hold extension nodes, so
// extended trees must be reduced with package lower first.
//
// # Control Flow
//
// A jump travels outward until it reaches the nearest node whose subtree
// places the target label, which then resumes evaluation at the label.
// Resumption descends through block statements, loop bodies, conditional
// branches, switch bodies, try bodies and the first evaluated operand of an
// expression. A jump that leaves the lambda it was raised in is a fault.
//
// # Exceptions
//
// Exceptions are Go error values. A handler matches when the dynamic type of
// the exception is assignable to its test type. Host functions raise by
// returning a non-nil trailing error; a panic inside a host function is
// recovered as a *PanicError and may be caught like any other exception.
//
// # Concurrency
//
// A compiled Func is read-only and may be called from many goroutines. Each
// call evaluates in its own scope chain; closures share the scopes they
// capture.
package host
