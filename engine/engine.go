// Package engine implements the orchestrator (spec §4.7): batch execution,
// dependency layering, layer-parallel dispatch against shared caches, and the
// host-facing query surface for results and errors.
package engine

import (
	"context"
	"log/slog"

	"github.com/nsforge/formcalc/builtin"
	"github.com/nsforge/formcalc/cache"
	"github.com/nsforge/formcalc/cerr"
	"github.com/nsforge/formcalc/dag"
	"github.com/nsforge/formcalc/depgraph"
	"github.com/nsforge/formcalc/engineopts"
	"github.com/nsforge/formcalc/eval"
	"github.com/nsforge/formcalc/formula"
	"github.com/nsforge/formcalc/function"
	"github.com/nsforge/formcalc/parser"
	"github.com/nsforge/formcalc/value"
	"github.com/nsforge/formcalc/vars"
)

// Engine owns the four shared caches and runs batches of formulas against
// them. It is safe to call SetVariable/RegisterFunction/Execute/Clear from a
// single orchestrating goroutine at a time; Execute itself fans out
// read-only work to a bounded worker pool internally.
type Engine struct {
	variables      *cache.VariableCache
	functions      *function.Registry
	results        *cache.ResultCache
	errors         *cache.ErrorMap
	workerPoolSize int
	logger         *slog.Logger
}

// New constructs an Engine with built-ins pre-registered in the function
// registry and empty variable/result/error caches, per spec §4.7 `new()`.
func New(opts ...engineopts.Option) (*Engine, error) {
	cfg, err := engineopts.Build(opts...)
	if err != nil {
		return nil, err
	}

	results := cache.NewResultCache()
	functions := function.NewRegistry()
	builtin.Register(functions, results)

	e := &Engine{
		variables:      cache.NewVariableCache(),
		functions:      functions,
		results:        results,
		errors:         cache.NewErrorMap(),
		workerPoolSize: cfg.WorkerPoolSize(),
		logger:         slog.New(cfg.Handler()).WithGroup("engine"),
	}

	if p := cfg.VariableProvider(); p != nil {
		if err := e.LoadVariables(context.Background(), p); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// SetVariable upserts name into the variable cache.
func (e *Engine) SetVariable(name string, v value.Value) {
	e.variables.Set(name, v)
}

// LoadVariables pulls a full batch of variables from p and upserts them all
// into the variable cache in one call.
func (e *Engine) LoadVariables(ctx context.Context, p vars.Provider) error {
	batch, err := p.GetAll(ctx)
	if err != nil {
		return err
	}
	e.variables.SetAll(batch)
	return nil
}

// RegisterFunction upserts fn into the registry under its lower-cased name;
// this is permitted to overwrite a built-in.
func (e *Engine) RegisterFunction(fn function.Function) {
	e.functions.Register(fn)
}

// GetResult returns name's most recent successful result.
func (e *Engine) GetResult(name string) (value.Value, bool) {
	return e.results.Get(name)
}

// GetError returns name's error from the last Execute call, if any.
func (e *Engine) GetError(name string) (*cerr.Error, bool) {
	err, ok := e.errors.Get(name)
	if !ok {
		return nil, false
	}
	ce, ok := err.(*cerr.Error)
	if !ok {
		return cerr.New(cerr.ParseError, "%s", err.Error()).WithFormula(name), true
	}
	return ce, true
}

// GetErrors returns every formula name that failed in the last Execute call,
// mapped to a human-readable message (spec §4.7 `get_errors()`).
func (e *Engine) GetErrors() map[string]string {
	all := e.errors.All()
	out := make(map[string]string, len(all))
	for name, err := range all {
		out[name] = err.Error()
	}
	return out
}

// Clear drops results and errors; variables and registered functions are
// retained (spec §3 "Ownership & lifecycle").
func (e *Engine) Clear() {
	e.results.Clear()
	e.errors.Clear()
}

// Execute parses, layers, and evaluates batch. It returns an error only for a
// failure affecting the whole batch (currently none are possible — a parse
// failure or a dependency cycle is recorded per-formula, not surfaced here,
// matching spec §4.7's "Returns success even if individual formulas fail").
// Per-formula outcomes are inspected afterward via GetResult/GetErrors.
func (e *Engine) Execute(batch []formula.Descriptor) error {
	log := e.logger.WithGroup("Execute")

	e.errors.Clear()

	graph := dag.New()
	parsed := make(map[string]*formula.Formula, len(batch))

	for _, desc := range batch {
		block, err := parser.Parse(desc.Source)
		if err != nil {
			e.recordFailure(desc.Name, err)
			log.Warn("formula failed to parse", "formula", desc.Name, "error", err)
			continue
		}
		deps := depgraph.Extract(block)
		f := &formula.Formula{Name: desc.Name, Source: desc.Source, AST: block, Dependencies: deps}
		parsed[desc.Name] = f
		graph.AddNode(desc.Name, deps)
	}

	layers, cycleErrs := graph.Layerize()
	for name, cerrVal := range cycleErrs {
		e.errors.Set(name, cerrVal)
		log.Warn("formula dropped due to dependency cycle", "formula", name)
	}

	env := &eval.Env{Variables: e.variables, Functions: e.functions}

	for _, layer := range layers {
		outcomes := evalLayer(layer, e.workerPoolSize, func(name string) (value.Value, error) {
			f := parsed[name]
			return eval.Eval(env, f.AST)
		})
		for _, o := range outcomes {
			e.commit(o, log)
		}
	}

	return nil
}

func (e *Engine) commit(o layerOutcome, log *slog.Logger) {
	if o.err != nil {
		e.recordFailure(o.name, o.err)
		log.Debug("formula failed", "formula", o.name, "error", o.err)
		return
	}
	e.results.Set(o.name, o.value)
	log.Debug("formula succeeded", "formula", o.name)
}

func (e *Engine) recordFailure(name string, err error) {
	if ce, ok := err.(*cerr.Error); ok {
		e.errors.Set(name, ce.WithFormula(name))
		return
	}
	e.errors.Set(name, err)
}
