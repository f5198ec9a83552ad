package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsforge/formcalc/cerr"
	"github.com/nsforge/formcalc/engine"
	"github.com/nsforge/formcalc/engineopts"
	"github.com/nsforge/formcalc/formula"
	"github.com/nsforge/formcalc/value"
)

func mustEngine(t *testing.T, opts ...engineopts.Option) *engine.Engine {
	t.Helper()
	e, err := engine.New(opts...)
	require.NoError(t, err)
	return e
}

func numResult(t *testing.T, e *engine.Engine, name string) float64 {
	t.Helper()
	v, ok := e.GetResult(name)
	require.True(t, ok, "expected a result for %q", name)
	n, ok := v.AsNumber()
	require.True(t, ok, "expected %q's result to be numeric", name)
	return n
}

func TestExecute_S1_SimpleArithmetic(t *testing.T) {
	t.Parallel()
	e := mustEngine(t)

	err := e.Execute([]formula.Descriptor{{Name: "r", Source: "return 2 + 2 * 3"}})
	require.NoError(t, err)
	assert.Equal(t, float64(8), numResult(t, e, "r"))
}

func TestExecute_S2_VariablesAcrossBatch(t *testing.T) {
	t.Parallel()
	e := mustEngine(t)
	e.SetVariable("x", value.NewNumber(10))
	e.SetVariable("y", value.NewNumber(5))

	err := e.Execute([]formula.Descriptor{{Name: "s", Source: "return x + y"}})
	require.NoError(t, err)
	assert.Equal(t, float64(15), numResult(t, e, "s"))
}

func TestExecute_S3_ConditionalStatus(t *testing.T) {
	t.Parallel()
	e := mustEngine(t)
	e.SetVariable("age", value.NewNumber(25))

	err := e.Execute([]formula.Descriptor{
		{Name: "status", Source: "if (age >= 18) then return 'Adult' else return 'Minor' end"},
	})
	require.NoError(t, err)
	v, ok := e.GetResult("status")
	require.True(t, ok)
	s, _ := v.AsString()
	assert.Equal(t, "Adult", s)
}

func TestExecute_S4_CrossFormulaDependency(t *testing.T) {
	t.Parallel()
	e := mustEngine(t)

	err := e.Execute([]formula.Descriptor{
		{Name: "a", Source: "return 10"},
		{Name: "b", Source: "return 20"},
		{Name: "c", Source: "return get_output_from('a')+get_output_from('b')"},
	})
	require.NoError(t, err)
	assert.Equal(t, float64(30), numResult(t, e, "c"))
}

func TestExecute_S5_ThreeLayerChain(t *testing.T) {
	t.Parallel()
	e := mustEngine(t)

	err := e.Execute([]formula.Descriptor{
		{Name: "p", Source: "return 100"},
		{Name: "t", Source: "return get_output_from('p')*0.1"},
		{Name: "tot", Source: "return get_output_from('p')+get_output_from('t')"},
	})
	require.NoError(t, err)
	assert.Equal(t, float64(110), numResult(t, e, "tot"))
}

func TestExecute_S6_DivisionByZeroRecordedAsError(t *testing.T) {
	t.Parallel()
	e := mustEngine(t)

	err := e.Execute([]formula.Descriptor{{Name: "bad", Source: "return 1/0"}})
	require.NoError(t, err)

	_, ok := e.GetResult("bad")
	assert.False(t, ok)

	ce, ok := e.GetError("bad")
	require.True(t, ok)
	assert.Equal(t, cerr.DivisionByZero, ce.Kind)
}

func TestExecute_S7_CycleDetected(t *testing.T) {
	t.Parallel()
	e := mustEngine(t)

	err := e.Execute([]formula.Descriptor{
		{Name: "a", Source: "return get_output_from('b')"},
		{Name: "b", Source: "return get_output_from('a')"},
	})
	require.NoError(t, err)

	errs := e.GetErrors()
	require.Contains(t, errs, "a")
	require.Contains(t, errs, "b")

	ceA, ok := e.GetError("a")
	require.True(t, ok)
	assert.Equal(t, cerr.CycleDetected, ceA.Kind)
}

func TestExecute_S8_Rnd(t *testing.T) {
	t.Parallel()
	e := mustEngine(t)

	err := e.Execute([]formula.Descriptor{{Name: "r", Source: "return rnd(3.14159, 2)"}})
	require.NoError(t, err)
	assert.Equal(t, 3.14, numResult(t, e, "r"))
}

func TestExecute_S9_StringConcatenation(t *testing.T) {
	t.Parallel()
	e := mustEngine(t)
	e.SetVariable("name", value.NewString("World"))

	err := e.Execute([]formula.Descriptor{{Name: "g", Source: "return 'Hello, ' + name + '!'"}})
	require.NoError(t, err)
	v, ok := e.GetResult("g")
	require.True(t, ok)
	s, _ := v.AsString()
	assert.Equal(t, "Hello, World!", s)
}

// Determinism: results must not depend on worker pool size.
func TestExecute_DeterministicAcrossPoolSizes(t *testing.T) {
	t.Parallel()

	batch := []formula.Descriptor{
		{Name: "a", Source: "return 1"},
		{Name: "b", Source: "return 2"},
		{Name: "c", Source: "return 3"},
		{Name: "sum", Source: "return get_output_from('a')+get_output_from('b')+get_output_from('c')"},
	}

	for _, size := range []int{1, 2, 4, 8} {
		e := mustEngine(t, engineopts.WithWorkerPoolSize(size))
		require.NoError(t, e.Execute(batch))
		assert.Equal(t, float64(6), numResult(t, e, "sum"), "pool size %d", size)
	}
}

func TestExecute_ClearRetainsVariablesAndFunctions(t *testing.T) {
	t.Parallel()
	e := mustEngine(t)
	e.SetVariable("x", value.NewNumber(1))

	require.NoError(t, e.Execute([]formula.Descriptor{{Name: "r", Source: "return x"}}))
	_, ok := e.GetResult("r")
	require.True(t, ok)

	e.Clear()
	_, ok = e.GetResult("r")
	assert.False(t, ok, "clear must drop results")

	require.NoError(t, e.Execute([]formula.Descriptor{{Name: "r2", Source: "return x"}}))
	assert.Equal(t, float64(1), numResult(t, e, "r2"), "clear must retain variables")
}

func TestExecute_DependentOnFailedFormulaFailsWithUnknownFormula(t *testing.T) {
	t.Parallel()
	e := mustEngine(t)

	err := e.Execute([]formula.Descriptor{
		{Name: "bad", Source: "return 1/0"},
		{Name: "dependent", Source: "return get_output_from('bad')"},
	})
	require.NoError(t, err)

	ce, ok := e.GetError("dependent")
	require.True(t, ok)
	assert.Equal(t, cerr.UnknownFormula, ce.Kind)
}

func TestExecute_ParseErrorIsolatedToOneFormula(t *testing.T) {
	t.Parallel()
	e := mustEngine(t)

	err := e.Execute([]formula.Descriptor{
		{Name: "broken", Source: "return +"},
		{Name: "fine", Source: "return 42"},
	})
	require.NoError(t, err)

	_, ok := e.GetError("broken")
	assert.True(t, ok)
	assert.Equal(t, float64(42), numResult(t, e, "fine"))
}

func TestExecute_RegisterFunctionOverwritesBuiltin(t *testing.T) {
	t.Parallel()
	e := mustEngine(t)
	e.RegisterFunction(&testDoubleMax{})

	require.NoError(t, e.Execute([]formula.Descriptor{{Name: "r", Source: "return max(1, 2)"}}))
	assert.Equal(t, float64(4), numResult(t, e, "r"))
}

type testDoubleMax struct{}

func (testDoubleMax) Name() string { return "max" }
func (testDoubleMax) NumArgs() int { return 2 }
func (testDoubleMax) Execute(args []value.Value) (value.Value, error) {
	a, _ := args[0].AsNumber()
	b, _ := args[1].AsNumber()
	big := a
	if b > big {
		big = b
	}
	return value.NewNumber(big * 2), nil
}
