// Package async lowers async lambdas into resumable state machines.
//
// The body runs inside a "move next" closure. Every suspension point stores
// its number in a state variable, registers the closure with the awaiter and
// leaves; the next invocation dispatches on the state to the label placed
// right after that point. Locals whose scope spans a suspension point are
// hoisted into the enclosing lambda so they survive between invocations.
package async
