// Package depgraph extracts the static dependency set of a parsed formula body:
// every get_output_from('<literal>') call names an edge to another formula
// (spec §4.3). Calls with a non-literal argument are not collected here; they are
// still legal at runtime and resolved dynamically by the evaluator.
package depgraph

import (
	"strings"

	"github.com/nsforge/formcalc/ast"
)

const lookupFunc = "get_output_from"

// Extract walks block and returns the set of formula names it statically
// depends on, as a sorted-free map for O(1) membership testing by callers.
func Extract(block ast.Block) map[string]struct{} {
	deps := make(map[string]struct{})
	walkBlock(block, deps)
	return deps
}

func walkBlock(block ast.Block, deps map[string]struct{}) {
	for _, stmt := range block {
		walkStmt(stmt, deps)
	}
}

func walkStmt(stmt ast.Stmt, deps map[string]struct{}) {
	switch s := stmt.(type) {
	case *ast.Return:
		walkExpr(s.Expr, deps)
	case *ast.ErrorStmt:
		walkExpr(s.Expr, deps)
	case *ast.If:
		for _, branch := range s.Branches {
			walkExpr(branch.Cond, deps)
			walkBlock(branch.Block, deps)
		}
		if s.Else != nil {
			walkBlock(s.Else, deps)
		}
	}
}

func walkExpr(expr ast.Expr, deps map[string]struct{}) {
	switch e := expr.(type) {
	case *ast.Unary:
		walkExpr(e.Expr, deps)
	case *ast.Binary:
		walkExpr(e.Left, deps)
		walkExpr(e.Right, deps)
	case *ast.Call:
		if strings.EqualFold(e.Name, lookupFunc) && len(e.Args) == 1 {
			if lit, ok := e.Args[0].(*ast.StringLit); ok {
				deps[lit.Value] = struct{}{}
			}
		}
		for _, arg := range e.Args {
			walkExpr(arg, deps)
		}
	}
}
