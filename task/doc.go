// Package task implements the awaitable protocol used by asynchronous lambdas.
//
// A Task is completed exactly once, either with a result or with an error, by
// its Source. Awaiting follows the awaiter pattern recognized by ext.Await:
//
//	aw := t.GetAwaiter()
//	if !aw.IsCompleted() {
//		aw.OnCompleted(resume)
//		return
//	}
//	v, err := aw.GetResult()
//
// Continuations registered before completion run on the goroutine that
// completes the task; a continuation registered after completion runs
// immediately on the caller's goroutine.
package task
