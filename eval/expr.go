package eval

import (
	"math"

	"github.com/nsforge/formcalc/ast"
	"github.com/nsforge/formcalc/cerr"
	"github.com/nsforge/formcalc/value"
)

func evalExpr(env *Env, expr ast.Expr) (value.Value, error) {
	switch e := expr.(type) {
	case *ast.NumberLit:
		return value.NewNumber(e.Value), nil
	case *ast.StringLit:
		return value.NewString(e.Value), nil
	case *ast.BoolLit:
		return value.NewBoolean(e.Value), nil
	case *ast.VarRef:
		v, ok := env.Variables.Get(e.Name)
		if !ok {
			return value.Value{}, cerr.New(cerr.UnknownIdentifier, "unknown variable %q", e.Name).WithOffset(e.Pos)
		}
		return v, nil
	case *ast.Unary:
		return evalUnary(env, e)
	case *ast.Binary:
		return evalBinary(env, e)
	case *ast.Call:
		return evalCall(env, e)
	default:
		return value.Value{}, cerr.New(cerr.ParseError, "unknown expression type %T", expr)
	}
}

func evalUnary(env *Env, e *ast.Unary) (value.Value, error) {
	if e.Op == ast.Not {
		v, err := evalExpr(env, e.Expr)
		if err != nil {
			return value.Value{}, err
		}
		b, ok := v.AsBoolean()
		if !ok {
			return value.Value{}, cerr.New(cerr.TypeError, "'!' requires a boolean operand, got %s", v.Kind()).WithOffset(e.Pos)
		}
		return value.NewBoolean(!b), nil
	}

	v, err := evalExpr(env, e.Expr)
	if err != nil {
		return value.Value{}, err
	}
	n, ok := v.AsNumber()
	if !ok {
		return value.Value{}, cerr.New(cerr.TypeError, "unary %s requires a numeric operand, got %s", e.Op, v.Kind()).WithOffset(e.Pos)
	}
	if e.Op == ast.Neg {
		return value.NewNumber(-n), nil
	}
	return value.NewNumber(n), nil
}

func evalCall(env *Env, e *ast.Call) (value.Value, error) {
	args := make([]value.Value, len(e.Args))
	for i, argExpr := range e.Args {
		v, err := evalExpr(env, argExpr)
		if err != nil {
			return value.Value{}, err
		}
		args[i] = v
	}
	v, err := env.Functions.Call(e.Name, args)
	if err != nil {
		if ce, ok := err.(*cerr.Error); ok {
			return value.Value{}, ce.WithOffset(e.Pos)
		}
		return value.Value{}, err
	}
	return v, nil
}

func evalBinary(env *Env, e *ast.Binary) (value.Value, error) {
	switch e.Op {
	case ast.And, ast.Or:
		return evalLogical(env, e)
	}

	left, err := evalExpr(env, e.Left)
	if err != nil {
		return value.Value{}, err
	}
	right, err := evalExpr(env, e.Right)
	if err != nil {
		return value.Value{}, err
	}

	switch e.Op {
	case ast.Add:
		return evalAdd(left, right, e.Pos)
	case ast.Sub, ast.Mul, ast.Div, ast.Mod, ast.Pow:
		return evalArith(e.Op, left, right, e.Pos)
	case ast.Eq, ast.NotEq, ast.Lt, ast.Gt, ast.LtEq, ast.GtEq:
		return evalCompare(e.Op, left, right, e.Pos)
	default:
		return value.Value{}, cerr.New(cerr.ParseError, "unknown binary operator %s", e.Op).WithOffset(e.Pos)
	}
}

// evalLogical implements short-circuiting and/or: the right operand is not
// evaluated when the left already determines the result.
func evalLogical(env *Env, e *ast.Binary) (value.Value, error) {
	left, err := evalExpr(env, e.Left)
	if err != nil {
		return value.Value{}, err
	}
	lb, ok := left.AsBoolean()
	if !ok {
		return value.Value{}, cerr.New(cerr.TypeError, "%s requires boolean operands, got %s", e.Op, left.Kind()).WithOffset(e.Pos)
	}

	if e.Op == ast.And && !lb {
		return value.NewBoolean(false), nil
	}
	if e.Op == ast.Or && lb {
		return value.NewBoolean(true), nil
	}

	right, err := evalExpr(env, e.Right)
	if err != nil {
		return value.Value{}, err
	}
	rb, ok := right.AsBoolean()
	if !ok {
		return value.Value{}, cerr.New(cerr.TypeError, "%s requires boolean operands, got %s", e.Op, right.Kind()).WithOffset(e.Pos)
	}
	return value.NewBoolean(rb), nil
}

// evalAdd implements `+`: numeric-numeric addition, or string concatenation
// when either operand is a string (the other is coerced via ToDisplayString).
func evalAdd(left, right value.Value, pos int) (value.Value, error) {
	if left.IsNumber() && right.IsNumber() {
		l, _ := left.AsNumber()
		r, _ := right.AsNumber()
		return value.NewNumber(l + r), nil
	}
	if left.IsString() || right.IsString() {
		return value.NewString(left.ToDisplayString() + right.ToDisplayString()), nil
	}
	return value.Value{}, cerr.New(cerr.TypeError, "'+' requires numeric operands or a string operand, got %s and %s", left.Kind(), right.Kind()).WithOffset(pos)
}

func evalArith(op ast.BinaryOp, left, right value.Value, pos int) (value.Value, error) {
	l, ok := left.AsNumber()
	if !ok {
		return value.Value{}, cerr.New(cerr.TypeError, "%s requires numeric operands, got %s", op, left.Kind()).WithOffset(pos)
	}
	r, ok := right.AsNumber()
	if !ok {
		return value.Value{}, cerr.New(cerr.TypeError, "%s requires numeric operands, got %s", op, right.Kind()).WithOffset(pos)
	}

	switch op {
	case ast.Sub:
		return value.NewNumber(l - r), nil
	case ast.Mul:
		return value.NewNumber(l * r), nil
	case ast.Div:
		if r == 0 {
			return value.Value{}, cerr.New(cerr.DivisionByZero, "division by zero")
		}
		return value.NewNumber(l / r), nil
	case ast.Mod:
		if r == 0 {
			return value.Value{}, cerr.New(cerr.DivisionByZero, "modulo by zero")
		}
		return value.NewNumber(math.Mod(l, r)), nil
	case ast.Pow:
		if l < 0 && r != math.Trunc(r) {
			return value.Value{}, cerr.New(cerr.DomainError, "negative base %g with non-integer exponent %g", l, r).WithOffset(pos)
		}
		return value.NewNumber(math.Pow(l, r)), nil
	default:
		return value.Value{}, cerr.New(cerr.ParseError, "unknown arithmetic operator %s", op).WithOffset(pos)
	}
}

func evalCompare(op ast.BinaryOp, left, right value.Value, pos int) (value.Value, error) {
	if left.Kind() != right.Kind() {
		return value.Value{}, cerr.New(cerr.TypeError, "cannot compare %s and %s", left.Kind(), right.Kind()).WithOffset(pos)
	}

	if left.IsBoolean() {
		if op != ast.Eq && op != ast.NotEq {
			return value.Value{}, cerr.New(cerr.TypeError, "booleans only support '=' and '<>'").WithOffset(pos)
		}
		eq := left.Equal(right)
		if op == ast.NotEq {
			eq = !eq
		}
		return value.NewBoolean(eq), nil
	}

	if op == ast.Eq || op == ast.NotEq {
		eq := left.Equal(right)
		if op == ast.NotEq {
			eq = !eq
		}
		return value.NewBoolean(eq), nil
	}

	cmp, ok := left.Compare(right)
	if !ok {
		return value.Value{}, cerr.New(cerr.TypeError, "%s and %s are not orderable", left.Kind(), right.Kind()).WithOffset(pos)
	}

	switch op {
	case ast.Lt:
		return value.NewBoolean(cmp < 0), nil
	case ast.Gt:
		return value.NewBoolean(cmp > 0), nil
	case ast.LtEq:
		return value.NewBoolean(cmp <= 0), nil
	case ast.GtEq:
		return value.NewBoolean(cmp >= 0), nil
	default:
		return value.Value{}, cerr.New(cerr.ParseError, "unknown comparison operator %s", op).WithOffset(pos)
	}
}
