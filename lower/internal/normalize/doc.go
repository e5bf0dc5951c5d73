// Package normalize repairs variable and label identity reuse.
//
// Trees are built by reference: reusing one *expr.Variable in two declaring
// scopes, or placing the same scope node at two positions, is legal input.
// Later passes key their state by identity, so every declaration must own its
// identity. Aliases clones any identity declared a second time anywhere in the
// tree; Shadows only clones identities redeclared inside a scope that already
// declares them.
package normalize
