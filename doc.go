// Package exprtree extends native expression trees with higher-level control
// flow and lowers them back to the native vocabulary.
//
// Extended trees add structured loops, statement switches with goto case,
// filtered exception handlers, resource scopes, locks, null-conditional
// access and async lambdas with suspension points. The lowering pipeline
// rewrites them into blocks, loops, labels, jumps and try nodes that the host
// compiler understands.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	exprtree/            Root package with the Compile facade
//	├── expr/            Native node vocabulary, host methods and rewriting
//	├── ext/             Extension nodes and pattern resolution
//	├── lower/           Reduction pipeline from extended to native trees
//	├── host/            Tree-walking compiler for native trees
//	│   └── wasmfn/      WebAssembly exports as host functions
//	├── task/            Awaitable tasks for async lambdas
//	├── dump/            Debug rendering of trees
//	├── errors/          Structured error types for debugging
//	└── cmd/lower/       Scenario runner and stage browser
//
// # Quick Start
//
// Build an extended tree and run it:
//
//	i := expr.NewVariable(expr.IntType, "i")
//	tree := expr.Lambda("count", expr.IntType, expr.BlockVars([]*expr.Variable{i},
//	    ext.While(expr.LessThan(i, expr.Constant(10)),
//	        expr.Assign(i, expr.Add(i, expr.Constant(1))), nil, nil),
//	    i,
//	))
//
//	fn, err := exprtree.Compile(tree, lower.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := fn.Call()
//	fmt.Println(result) // 10
//
// # Async Lambdas
//
// An async lambda returns a *task.Task. Its suspension points become states
// of a resumable machine; the machine resumes on whichever goroutine
// completes the awaited task.
//
//	result, err := exprtree.Run(ctx, tree, lower.Config{})
//
// # Thread Safety
//
// Trees are immutable and every pass builds new nodes, so trees may be shared
// between goroutines. A compiled Func may be called concurrently.
package exprtree
