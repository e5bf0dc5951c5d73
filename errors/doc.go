// Package errors provides structured error types for the expression tree module.
//
// Errors are categorized by Phase (which pipeline stage produced them) and Kind
// (error category). The Error type includes context: the offending construct, its
// type name, a node path and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseReduce, errors.KindUnresolvedGoto).
//		Node("goto case 7").
//		Detail("no matching case in the enclosing switch").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.TypeMismatch(errors.PhaseConstruct, "Assign", want, got)
//	err := errors.UnresolvedGoto("goto default")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
