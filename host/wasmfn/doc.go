// Package wasmfn binds the exports of a WebAssembly core module as host
// functions for expression trees.
//
// Exported functions over i32, i64, f32 and f64 map to Go functions over
// int32, int64, float32 and float64. A trap surfaces as the raised error of
// the call, so trees can catch it like any other exception.
//
//	mod, err := wasmfn.Load(ctx, wasmBytes)
//	if err != nil {
//	    return err
//	}
//	defer mod.Close(ctx)
//	add, err := mod.Func("add")
//	tree := expr.Call(add, expr.Constant(int32(2)), expr.Constant(int32(3)))
package wasmfn
