package builtin

import (
	"math"

	"github.com/nsforge/formcalc/cerr"
	"github.com/nsforge/formcalc/function"
	"github.com/nsforge/formcalc/value"
)

func mathFunctions() []function.Function {
	return []function.Function{
		&function.Native{FuncName: "max", Arity: 2, Body: maxFn},
		&function.Native{FuncName: "min", Arity: 2, Body: minFn},
		&function.Native{FuncName: "rnd", Arity: 2, Body: rndFn},
		&function.Native{FuncName: "ceil", Arity: 1, Body: ceilFn},
		&function.Native{FuncName: "floor", Arity: 1, Body: floorFn},
		&function.Native{FuncName: "exp", Arity: 1, Body: expFn},
	}
}

func numericArg(args []value.Value, i int, fn string) (float64, error) {
	n, ok := args[i].AsNumber()
	if !ok {
		return 0, cerr.New(cerr.TypeError, "%s: argument %d must be a number, got %s", fn, i+1, args[i].Kind())
	}
	return n, nil
}

func maxFn(args []value.Value) (value.Value, error) {
	a, err := numericArg(args, 0, "max")
	if err != nil {
		return value.Value{}, err
	}
	b, err := numericArg(args, 1, "max")
	if err != nil {
		return value.Value{}, err
	}
	return value.NewNumber(math.Max(a, b)), nil
}

func minFn(args []value.Value) (value.Value, error) {
	a, err := numericArg(args, 0, "min")
	if err != nil {
		return value.Value{}, err
	}
	b, err := numericArg(args, 1, "min")
	if err != nil {
		return value.Value{}, err
	}
	return value.NewNumber(math.Min(a, b)), nil
}

// rndFn rounds n to d decimal places, half away from zero (matches the
// original engine's use of f64::round, not banker's rounding).
func rndFn(args []value.Value) (value.Value, error) {
	n, err := numericArg(args, 0, "rnd")
	if err != nil {
		return value.Value{}, err
	}
	d, err := numericArg(args, 1, "rnd")
	if err != nil {
		return value.Value{}, err
	}
	scale := math.Pow(10, d)
	return value.NewNumber(roundHalfAwayFromZero(n*scale) / scale), nil
}

func roundHalfAwayFromZero(n float64) float64 {
	if n < 0 {
		return -math.Floor(-n + 0.5)
	}
	return math.Floor(n + 0.5)
}

func ceilFn(args []value.Value) (value.Value, error) {
	n, err := numericArg(args, 0, "ceil")
	if err != nil {
		return value.Value{}, err
	}
	return value.NewNumber(math.Ceil(n)), nil
}

func floorFn(args []value.Value) (value.Value, error) {
	n, err := numericArg(args, 0, "floor")
	if err != nil {
		return value.Value{}, err
	}
	return value.NewNumber(math.Floor(n)), nil
}

func expFn(args []value.Value) (value.Value, error) {
	n, err := numericArg(args, 0, "exp")
	if err != nil {
		return value.Value{}, err
	}
	return value.NewNumber(math.Exp(n)), nil
}
