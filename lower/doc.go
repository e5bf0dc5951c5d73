// Package lower reduces extended expression trees to native ones.
//
// Reduce runs the pipeline stages in order:
//
//   - alias normalization: a variable or label declared in more than one
//     scope gets a fresh identity in every scope after the first
//   - shadow normalization: a declaration nested inside a scope of the same
//     identity is renamed
//   - assignment percolation: assignments of control-flow values are pushed
//     into the branches
//   - stack spilling: operands evaluated before an operand that requires an
//     empty stack are stored in temporaries
//   - reduction: every extension node is rewritten into native nodes
//   - async lowering: async lambdas become resumable state machines
//
// Every stage returns its input unchanged when it has nothing to do, so a
// native tree flows through Reduce without being rebuilt.
//
// # Usage
//
//	native, err := lower.Reduce(tree, lower.Config{})
//	if err != nil {
//	    return err
//	}
//	fn, err := host.Compile(native)
package lower
