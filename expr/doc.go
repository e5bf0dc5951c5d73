// Package expr is the native expression-tree vocabulary of the host runtime.
//
// A tree is built from immutable nodes created through validating factories.
// Every node reports a Kind, a result Type and can rebuild itself from rewritten
// children through RewriteChildren, which returns the receiver itself when every
// child is reference-identical to the original. Passes rely on that identity to
// detect "nothing changed" without comparing structure.
//
// # Types
//
// Types are reflect.Type values. Void marks statements and labels that carry no
// value; ErrorType is the type of raised exceptions; CallableType is the type of
// lambda values at run time.
//
// # Variables and labels
//
// A Variable is identified by its pointer, never by its name. Two variables
// named "x" are different storage; the same *Variable declared in two nested
// scopes is an alias which the lowering pipeline repairs. LabelTarget is the
// same for jump destinations; a typed label receives the value carried by the
// jumps that target it.
//
// # Construction
//
// Factories panic with a *errors.Error of phase construct when given a
// malformed tree: wrong arity, duplicate declarations in one scope, mismatched
// types, typed labels where void ones are required. Build converts such panics
// into an ordinary error:
//
//	n, err := expr.Build(func() expr.Node {
//	    x := expr.NewVariable(expr.IntType, "x")
//	    return expr.BlockVars([]*expr.Variable{x},
//	        expr.Assign(x, expr.Constant(1)),
//	        x,
//	    )
//	})
//
// # Host functions
//
// Method binds a Go function through reflection. A trailing error result is the
// exception channel: a non-nil error is raised in the evaluated tree.
package expr
