package wasmfn

import (
	"context"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/exprtree/errors"
	"github.com/wippyai/exprtree/expr"
)

var errorType = reflect.TypeFor[error]()

// Module is an instantiated WebAssembly module.
type Module struct {
	runtime wazero.Runtime
	mod     api.Module
	// mu serializes calls into the instance.
	mu sync.Mutex
}

// Load compiles and instantiates a core module without imports.
func Load(ctx context.Context, wasm []byte) (*Module, error) {
	r := wazero.NewRuntime(ctx)
	compiled, err := r.CompileModule(ctx, wasm)
	if err != nil {
		_ = r.Close(ctx)
		return nil, errors.Wrap(errors.PhaseConstruct, errors.KindInvalidInput, err, "compile wasm module")
	}
	mod, err := r.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		_ = r.Close(ctx)
		return nil, errors.Wrap(errors.PhaseConstruct, errors.KindInvalidInput, err, "instantiate wasm module")
	}
	return &Module{runtime: r, mod: mod}, nil
}

// Exports returns the names of the exported functions, sorted.
func (m *Module) Exports() []string {
	return slices.Sorted(maps.Keys(m.mod.ExportedFunctionDefinitions()))
}

// Func binds the exported function name as a free host function.
func (m *Module) Func(name string) (*expr.Method, error) {
	fn := m.mod.ExportedFunction(name)
	if fn == nil {
		return nil, errors.NotFound(errors.PhaseConstruct, "wasm export", name)
	}
	def := fn.Definition()
	params := def.ParamTypes()
	results := def.ResultTypes()
	if len(results) > 1 {
		return nil, errors.Unsupported(errors.PhaseConstruct, fmt.Sprintf("wasm export %s has %d results", name, len(results)))
	}

	in := make([]reflect.Type, len(params))
	for i, vt := range params {
		t, ok := goType(vt)
		if !ok {
			return nil, errors.Unsupported(errors.PhaseConstruct, fmt.Sprintf("wasm export %s: parameter type %s", name, api.ValueTypeName(vt)))
		}
		in[i] = t
	}
	var out []reflect.Type
	if len(results) == 1 {
		t, ok := goType(results[0])
		if !ok {
			return nil, errors.Unsupported(errors.PhaseConstruct, fmt.Sprintf("wasm export %s: result type %s", name, api.ValueTypeName(results[0])))
		}
		out = append(out, t)
	}
	out = append(out, errorType)

	impl := reflect.MakeFunc(reflect.FuncOf(in, out, false), func(args []reflect.Value) []reflect.Value {
		stack := make([]uint64, len(args))
		for i, a := range args {
			stack[i] = encode(params[i], a)
		}
		m.mu.Lock()
		res, err := fn.Call(context.Background(), stack...)
		m.mu.Unlock()

		ret := make([]reflect.Value, len(out))
		for i, t := range out {
			ret[i] = reflect.Zero(t)
		}
		if err != nil {
			ret[len(ret)-1] = reflect.ValueOf(&err).Elem()
			return ret
		}
		if len(results) == 1 {
			ret[0] = decode(results[0], res[0])
		}
		return ret
	})
	return expr.FuncOf(name, impl.Interface()), nil
}

// Close releases the module and its runtime.
func (m *Module) Close(ctx context.Context) error {
	return m.runtime.Close(ctx)
}

func goType(vt api.ValueType) (reflect.Type, bool) {
	switch vt {
	case api.ValueTypeI32:
		return reflect.TypeFor[int32](), true
	case api.ValueTypeI64:
		return reflect.TypeFor[int64](), true
	case api.ValueTypeF32:
		return reflect.TypeFor[float32](), true
	case api.ValueTypeF64:
		return reflect.TypeFor[float64](), true
	}
	return nil, false
}

func encode(vt api.ValueType, v reflect.Value) uint64 {
	switch vt {
	case api.ValueTypeI32:
		return api.EncodeI32(int32(v.Int()))
	case api.ValueTypeI64:
		return api.EncodeI64(v.Int())
	case api.ValueTypeF32:
		return api.EncodeF32(float32(v.Float()))
	}
	return api.EncodeF64(v.Float())
}

func decode(vt api.ValueType, raw uint64) reflect.Value {
	switch vt {
	case api.ValueTypeI32:
		return reflect.ValueOf(api.DecodeI32(raw))
	case api.ValueTypeI64:
		return reflect.ValueOf(int64(raw))
	case api.ValueTypeF32:
		return reflect.ValueOf(api.DecodeF32(raw))
	}
	return reflect.ValueOf(api.DecodeF64(raw))
}
