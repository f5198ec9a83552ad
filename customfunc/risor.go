// Package customfunc lets a host register a FormCalc function whose body is a
// snippet of Risor script instead of hand-written Go, adapted from the
// teacher's risor machine (compile once, evaluate many times against
// positional globals injected per call).
package customfunc

import (
	"context"
	"fmt"

	risorLib "github.com/risor-io/risor"
	risorCompiler "github.com/risor-io/risor/compiler"
	risorObject "github.com/risor-io/risor/object"
	risorParser "github.com/risor-io/risor/parser"

	"github.com/nsforge/formcalc/cerr"
	"github.com/nsforge/formcalc/function"
	"github.com/nsforge/formcalc/value"
)

// risorFunction is a function.Function whose body is Risor bytecode compiled
// once at registration time and executed once per call, with argNames bound
// as Risor globals to the caller's positional arguments.
type risorFunction struct {
	name     string
	argNames []string
	code     *risorCompiler.Code
}

// NewRisorFunction compiles source with argNames declared as its global
// names (so the script can reference them even though their values aren't
// known until call time) and returns a function.Function that evaluates the
// compiled bytecode per invocation.
func NewRisorFunction(name string, argNames []string, source string) (function.Function, error) {
	ast, err := risorParser.Parse(context.Background(), source)
	if err != nil {
		return nil, fmt.Errorf("customfunc: compiling %q: %w", name, err)
	}

	cfg := risorLib.NewConfig()
	globalNames := append(append([]string{}, cfg.GlobalNames()...), argNames...)
	code, err := risorCompiler.Compile(ast, risorCompiler.WithGlobalNames(globalNames))
	if err != nil {
		return nil, fmt.Errorf("customfunc: compiling %q: %w", name, err)
	}

	return &risorFunction{name: name, argNames: argNames, code: code}, nil
}

func (f *risorFunction) Name() string { return f.name }
func (f *risorFunction) NumArgs() int { return len(f.argNames) }

func (f *risorFunction) Execute(args []value.Value) (value.Value, error) {
	opts := make([]risorLib.Option, 0, len(f.argNames))
	for i, name := range f.argNames {
		opts = append(opts, risorLib.WithGlobal(name, toRisorNative(args[i])))
	}

	result, err := risorLib.EvalCode(context.Background(), f.code, opts...)
	if err != nil {
		return value.Value{}, cerr.New(cerr.TypeError, "scripted function %q failed: %s", f.name, err)
	}
	return fromRisorObject(f.name, result)
}

func toRisorNative(v value.Value) any {
	switch v.Kind() {
	case value.Number:
		n, _ := v.AsNumber()
		return n
	case value.String:
		s, _ := v.AsString()
		return s
	case value.Boolean:
		b, _ := v.AsBoolean()
		return b
	default:
		return nil
	}
}

// fromRisorObject converts a Risor result object back into a FormCalc Value.
// Only the three scalar kinds FormCalc understands are accepted; any other
// Risor object type (list, map, function, error, nil) is a TypeError.
func fromRisorObject(fnName string, obj risorObject.Object) (value.Value, error) {
	switch o := obj.(type) {
	case *risorObject.Int:
		return value.NewNumber(float64(o.Value())), nil
	case *risorObject.Float:
		return value.NewNumber(o.Value()), nil
	case *risorObject.String:
		return value.NewString(o.Value()), nil
	case *risorObject.Bool:
		return value.NewBoolean(o.Value()), nil
	default:
		return value.Value{}, cerr.New(cerr.TypeError, "scripted function %q returned unsupported type %s", fnName, obj.Type())
	}
}
