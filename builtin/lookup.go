package builtin

import (
	"github.com/nsforge/formcalc/cache"
	"github.com/nsforge/formcalc/cerr"
	"github.com/nsforge/formcalc/function"
	"github.com/nsforge/formcalc/value"
)

// getOutputFrom builds the get_output_from(name) built-in bound to a single
// result cache; the engine constructs one per registry instance so every
// formula in a batch shares the same result cache the orchestrator writes to
// between layers.
func getOutputFrom(results *cache.ResultCache) function.Function {
	return &function.Native{
		FuncName: "get_output_from",
		Arity:    1,
		Body: func(args []value.Value) (value.Value, error) {
			name, ok := args[0].AsString()
			if !ok {
				return value.Value{}, cerr.New(cerr.TypeError, "get_output_from: argument must be a string, got %s", args[0].Kind())
			}
			v, ok := results.Get(name)
			if !ok {
				return value.Value{}, cerr.New(cerr.UnknownFormula, "no result available for formula %q", name)
			}
			return v, nil
		},
	}
}
