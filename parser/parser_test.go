package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsforge/formcalc/ast"
	"github.com/nsforge/formcalc/cerr"
	"github.com/nsforge/formcalc/parser"
)

func TestParse_SimpleReturn(t *testing.T) {
	t.Parallel()

	block, err := parser.Parse("return 2 + 2 * 3")
	require.NoError(t, err)
	require.Len(t, block, 1)

	ret, ok := block[0].(*ast.Return)
	require.True(t, ok)
	bin, ok := ret.Expr.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.Add, bin.Op)
	// multiplication binds tighter: 2 + (2*3)
	_, ok = bin.Right.(*ast.Binary)
	require.True(t, ok)
}

func TestParse_PowerIsRightAssociative(t *testing.T) {
	t.Parallel()

	block, err := parser.Parse("return 2 ^ 3 ^ 2")
	require.NoError(t, err)
	ret := block[0].(*ast.Return)
	top := ret.Expr.(*ast.Binary)
	require.Equal(t, ast.Pow, top.Op)
	// top.Left should be the literal 2, top.Right should be (3^2)
	_, leftIsLit := top.Left.(*ast.NumberLit)
	assert.True(t, leftIsLit)
	right, rightIsBin := top.Right.(*ast.Binary)
	require.True(t, rightIsBin)
	assert.Equal(t, ast.Pow, right.Op)
}

func TestParse_ComparisonDoesNotChain(t *testing.T) {
	t.Parallel()

	_, err := parser.Parse("return 1 < 2 < 3")
	require.Error(t, err)
	var cerrErr *cerr.Error
	require.ErrorAs(t, err, &cerrErr)
	assert.Equal(t, cerr.ParseError, cerrErr.Kind)
}

func TestParse_IfElseIfElse(t *testing.T) {
	t.Parallel()

	src := `if (age >= 65) then return 'Senior' else if (age >= 18) then return 'Adult' else return 'Minor' end`
	block, err := parser.Parse(src)
	require.NoError(t, err)
	require.Len(t, block, 1)

	ifStmt, ok := block[0].(*ast.If)
	require.True(t, ok)
	require.Len(t, ifStmt.Branches, 2)
	require.NotNil(t, ifStmt.Else)
}

func TestParse_ErrorStatement(t *testing.T) {
	t.Parallel()

	block, err := parser.Parse(`error('boom')`)
	require.NoError(t, err)
	require.Len(t, block, 1)
	_, ok := block[0].(*ast.ErrorStmt)
	assert.True(t, ok)
}

func TestParse_FunctionCall(t *testing.T) {
	t.Parallel()

	block, err := parser.Parse(`return max(1, 2)`)
	require.NoError(t, err)
	ret := block[0].(*ast.Return)
	call, ok := ret.Expr.(*ast.Call)
	require.True(t, ok)
	assert.Equal(t, "max", call.Name)
	assert.Len(t, call.Args, 2)
}

func TestParse_GetOutputFrom(t *testing.T) {
	t.Parallel()

	block, err := parser.Parse(`return get_output_from('a') + get_output_from('b')`)
	require.NoError(t, err)
	ret := block[0].(*ast.Return)
	bin := ret.Expr.(*ast.Binary)
	assert.Equal(t, ast.Add, bin.Op)
	left := bin.Left.(*ast.Call)
	assert.Equal(t, "get_output_from", left.Name)
	lit := left.Args[0].(*ast.StringLit)
	assert.Equal(t, "a", lit.Value)
}

func TestParse_UnaryAndLogical(t *testing.T) {
	t.Parallel()

	block, err := parser.Parse(`return !true and false or true`)
	require.NoError(t, err)
	ret := block[0].(*ast.Return)
	top, ok := ret.Expr.(*ast.Binary)
	require.True(t, ok)
	assert.Equal(t, ast.Or, top.Op)
}

func TestParse_EmptyBlockIsError(t *testing.T) {
	t.Parallel()

	_, err := parser.Parse("")
	require.Error(t, err)
}

func TestParse_MissingEndIsError(t *testing.T) {
	t.Parallel()

	_, err := parser.Parse("if (true) then return 1")
	require.Error(t, err)
	var cerrErr *cerr.Error
	require.ErrorAs(t, err, &cerrErr)
	assert.Equal(t, cerr.ParseError, cerrErr.Kind)
}

func TestParse_BlockAllowsMultipleStatements(t *testing.T) {
	t.Parallel()

	block, err := parser.Parse("return 1 return 2")
	require.NoError(t, err) // block := stmt+; the first Return still wins at eval time
	assert.Len(t, block, 2)
}
