// Package ext defines the extended node kinds that the host vocabulary in
// package expr does not understand: structured loops, statement switches with
// goto case, filtered catches, resource and lock scopes, foreach, conditional
// access chains, suspension points and async lambdas.
//
// Every node reports expr.KindExtension and must be rewritten by lower.Reduce
// before host.Compile accepts the tree. Method patterns (enumerators, awaiters,
// Close, Lock/Unlock) are resolved by reflection when the node is built, so
// reduction only emits calls that are already known to exist. Factories panic
// with a construction error like the expr factories; wrap them in expr.Build to
// get an error value instead.
package ext
