// Package eval implements FormCalc's tree-walking evaluator (spec §4.4):
// arithmetic and string coercion for `+`, comparison, short-circuiting
// logical operators, variable resolution, function dispatch, and the
// statement-level control flow (return / if / error).
package eval

import (
	"github.com/nsforge/formcalc/ast"
	"github.com/nsforge/formcalc/cache"
	"github.com/nsforge/formcalc/cerr"
	"github.com/nsforge/formcalc/function"
	"github.com/nsforge/formcalc/value"
)

// Env bundles the read-only shared state a single formula evaluation needs:
// the host's input variables and the function registry (built-ins plus any
// host-registered functions, including get_output_from bound to the
// engine's result cache). Evaluation never mutates any of these.
type Env struct {
	Variables *cache.VariableCache
	Functions *function.Registry
}

// returnSignal is the internal control-flow value used to unwind a Block once
// a Return statement fires; it is never exposed outside this package.
type returnSignal struct {
	value value.Value
}

func (returnSignal) Error() string { return "return" }

// Eval runs block to completion and yields its Return value, or the first
// error encountered (a MissingReturn if execution fell off the end of the
// block without returning).
func Eval(env *Env, block ast.Block) (value.Value, error) {
	v, err := evalBlock(env, block)
	if err != nil {
		if rs, ok := err.(returnSignal); ok {
			return rs.value, nil
		}
		return value.Value{}, err
	}
	return v, cerr.New(cerr.MissingReturn, "formula body did not produce a value")
}

// evalBlock executes each statement in order. A non-nil, non-returnSignal
// error aborts evaluation immediately; a returnSignal propagates up through
// nested if-blocks until Eval unwraps it.
func evalBlock(env *Env, block ast.Block) (value.Value, error) {
	for _, stmt := range block {
		if err := evalStmt(env, stmt); err != nil {
			return value.Value{}, err
		}
	}
	return value.Value{}, nil
}

func evalStmt(env *Env, stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.Return:
		v, err := evalExpr(env, s.Expr)
		if err != nil {
			return err
		}
		return returnSignal{value: v}
	case *ast.ErrorStmt:
		v, err := evalExpr(env, s.Expr)
		if err != nil {
			return err
		}
		return cerr.New(cerr.ErrorCall, "%s", v.ToDisplayString())
	case *ast.If:
		for _, branch := range s.Branches {
			cond, err := evalExpr(env, branch.Cond)
			if err != nil {
				return err
			}
			b, ok := cond.AsBoolean()
			if !ok {
				return cerr.New(cerr.TypeError, "if condition must be boolean, got %s", cond.Kind()).WithOffset(branch.Cond.Offset())
			}
			if b {
				_, err := evalBlock(env, branch.Block)
				return err
			}
		}
		if s.Else != nil {
			_, err := evalBlock(env, s.Else)
			return err
		}
		return nil
	default:
		return cerr.New(cerr.ParseError, "unknown statement type %T", stmt)
	}
}
