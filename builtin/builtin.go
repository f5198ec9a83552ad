// Package builtin implements FormCalc's canonical built-in function library
// (spec §4.5): math, string, date, and formula-lookup functions, each a pure,
// thread-safe function.Function.
package builtin

import (
	"github.com/nsforge/formcalc/cache"
	"github.com/nsforge/formcalc/function"
)

// Register populates reg with the full built-in set, binding get_output_from
// to results so it resolves against the engine's actual result cache.
func Register(reg *function.Registry, results *cache.ResultCache) {
	for _, fn := range mathFunctions() {
		reg.Register(fn)
	}
	for _, fn := range stringFunctions() {
		reg.Register(fn)
	}
	for _, fn := range dateFunctions() {
		reg.Register(fn)
	}
	reg.Register(getOutputFrom(results))
}
