package builtin_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsforge/formcalc/builtin"
	"github.com/nsforge/formcalc/cache"
	"github.com/nsforge/formcalc/cerr"
	"github.com/nsforge/formcalc/function"
	"github.com/nsforge/formcalc/value"
)

func newRegistry() (*function.Registry, *cache.ResultCache) {
	results := cache.NewResultCache()
	reg := function.NewRegistry()
	builtin.Register(reg, results)
	return reg, results
}

func callNum(t *testing.T, reg *function.Registry, name string, args ...value.Value) float64 {
	t.Helper()
	v, err := reg.Call(name, args)
	require.NoError(t, err)
	n, ok := v.AsNumber()
	require.True(t, ok)
	return n
}

func TestBuiltin_MaxMin(t *testing.T) {
	t.Parallel()
	reg, _ := newRegistry()

	assert.Equal(t, float64(5), callNum(t, reg, "max", value.NewNumber(5), value.NewNumber(2)))
	assert.Equal(t, float64(2), callNum(t, reg, "min", value.NewNumber(5), value.NewNumber(2)))
}

func TestBuiltin_Rnd_HalfAwayFromZero(t *testing.T) {
	t.Parallel()
	reg, _ := newRegistry()

	assert.Equal(t, 3.14, callNum(t, reg, "rnd", value.NewNumber(3.14159), value.NewNumber(2)))
	assert.Equal(t, float64(1), callNum(t, reg, "rnd", value.NewNumber(0.5), value.NewNumber(0)))
	assert.Equal(t, float64(-1), callNum(t, reg, "rnd", value.NewNumber(-0.5), value.NewNumber(0)))
}

func TestBuiltin_CeilFloorExp(t *testing.T) {
	t.Parallel()
	reg, _ := newRegistry()

	assert.Equal(t, float64(3), callNum(t, reg, "ceil", value.NewNumber(2.1)))
	assert.Equal(t, float64(2), callNum(t, reg, "floor", value.NewNumber(2.9)))
	assert.InDelta(t, 2.718281828, callNum(t, reg, "exp", value.NewNumber(1)), 1e-6)
}

func TestBuiltin_Substr(t *testing.T) {
	t.Parallel()
	reg, _ := newRegistry()

	v, err := reg.Call("substr", []value.Value{value.NewString("hello world"), value.NewNumber(6), value.NewNumber(5)})
	require.NoError(t, err)
	s, _ := v.AsString()
	assert.Equal(t, "world", s)

	// clamped to bounds
	v, err = reg.Call("substr", []value.Value{value.NewString("hi"), value.NewNumber(0), value.NewNumber(100)})
	require.NoError(t, err)
	s, _ = v.AsString()
	assert.Equal(t, "hi", s)

	_, err = reg.Call("substr", []value.Value{value.NewString("hi"), value.NewNumber(-1), value.NewNumber(1)})
	require.Error(t, err)
	var cerrErr *cerr.Error
	require.ErrorAs(t, err, &cerrErr)
	assert.Equal(t, cerr.DomainError, cerrErr.Kind)
}

func TestBuiltin_PaddedString(t *testing.T) {
	t.Parallel()
	reg, _ := newRegistry()

	v, err := reg.Call("padded_string", []value.Value{value.NewString("7"), value.NewNumber(3)})
	require.NoError(t, err)
	s, _ := v.AsString()
	assert.Equal(t, "007", s)

	v, err = reg.Call("padded_string", []value.Value{value.NewString("12345"), value.NewNumber(3)})
	require.NoError(t, err)
	s, _ = v.AsString()
	assert.Equal(t, "12345", s)
}

func TestBuiltin_DateFunctions(t *testing.T) {
	t.Parallel()
	reg, _ := newRegistry()

	assert.Equal(t, float64(2024), callNum(t, reg, "year", value.NewString("2024-03-15")))
	assert.Equal(t, float64(3), callNum(t, reg, "month", value.NewString("2024-03-15")))
	assert.Equal(t, float64(15), callNum(t, reg, "day", value.NewString("2024-03-15")))

	v, err := reg.Call("add_days", []value.Value{value.NewString("2024-03-15"), value.NewNumber(20)})
	require.NoError(t, err)
	s, _ := v.AsString()
	assert.Equal(t, "2024-04-04", s)

	assert.Equal(t, float64(10), callNum(t, reg, "get_diff_days", value.NewString("2024-03-15"), value.NewString("2024-03-05")))
	assert.Equal(t, float64(2), callNum(t, reg, "difference_in_months", value.NewString("2024-03-15"), value.NewString("2024-01-15")))
}

func TestBuiltin_DateFunctions_MalformedIsDateError(t *testing.T) {
	t.Parallel()
	reg, _ := newRegistry()

	_, err := reg.Call("year", []value.Value{value.NewString("not-a-date")})
	require.Error(t, err)
	var cerrErr *cerr.Error
	require.ErrorAs(t, err, &cerrErr)
	assert.Equal(t, cerr.DateError, cerrErr.Kind)
}

func TestBuiltin_GetOutputFrom(t *testing.T) {
	t.Parallel()
	reg, results := newRegistry()
	results.Set("a", value.NewNumber(42))

	v, err := reg.Call("get_output_from", []value.Value{value.NewString("a")})
	require.NoError(t, err)
	n, _ := v.AsNumber()
	assert.Equal(t, float64(42), n)

	_, err = reg.Call("get_output_from", []value.Value{value.NewString("missing")})
	require.Error(t, err)
	var cerrErr *cerr.Error
	require.ErrorAs(t, err, &cerrErr)
	assert.Equal(t, cerr.UnknownFormula, cerrErr.Kind)
}

func TestBuiltin_FunctionNamesCaseInsensitive(t *testing.T) {
	t.Parallel()
	reg, _ := newRegistry()

	assert.Equal(t, float64(5), callNum(t, reg, "MAX", value.NewNumber(5), value.NewNumber(2)))
	assert.Equal(t, float64(5), callNum(t, reg, "Max", value.NewNumber(5), value.NewNumber(2)))
}
