// Package reduce rewrites extended nodes into the native vocabulary.
//
// Rules are applied bottom-up and their output is reduced again, so a rule may
// produce other extended nodes. Suspension points and async lambdas are left
// for the coroutine lowering.
package reduce
