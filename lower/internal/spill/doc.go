// Package spill empties the evaluation stack around non-local control flow.
//
// An operand that jumps, suspends or installs a protected region may not run
// while values of earlier operands are pending. The spiller stores such
// earlier operands, and the offending operand itself, in fresh temporaries
// assigned ahead of the expression, so evaluation order and the number of
// evaluations are unchanged.
package spill
