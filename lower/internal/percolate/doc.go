// Package percolate pushes assignments of control-flow values into the
// branches that produce them.
//
// V := if c { a } else { b } becomes if c { V := a } else { V := b }. After the
// pass, value-producing blocks, conditionals, tries, switches and labels no
// longer appear as assignment sources, so their bodies can be treated as
// statements by the spiller and the coroutine lowering.
package percolate
