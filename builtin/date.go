package builtin

import (
	"time"

	"github.com/nsforge/formcalc/cerr"
	"github.com/nsforge/formcalc/function"
	"github.com/nsforge/formcalc/value"
)

const isoDateLayout = "2006-01-02"

func dateFunctions() []function.Function {
	return []function.Function{
		&function.Native{FuncName: "year", Arity: 1, Body: yearFn},
		&function.Native{FuncName: "month", Arity: 1, Body: monthFn},
		&function.Native{FuncName: "day", Arity: 1, Body: dayFn},
		&function.Native{FuncName: "add_days", Arity: 2, Body: addDaysFn},
		&function.Native{FuncName: "get_diff_days", Arity: 2, Body: getDiffDaysFn},
		&function.Native{FuncName: "difference_in_months", Arity: 2, Body: differenceInMonthsFn},
	}
}

func parseISODate(args []value.Value, i int, fn string) (time.Time, error) {
	s, ok := args[i].AsString()
	if !ok {
		return time.Time{}, cerr.New(cerr.TypeError, "%s: argument %d must be a date string, got %s", fn, i+1, args[i].Kind())
	}
	t, err := time.Parse(isoDateLayout, s)
	if err != nil {
		return time.Time{}, cerr.New(cerr.DateError, "%s: malformed ISO date %q", fn, s)
	}
	return t, nil
}

func yearFn(args []value.Value) (value.Value, error) {
	t, err := parseISODate(args, 0, "year")
	if err != nil {
		return value.Value{}, err
	}
	return value.NewNumber(float64(t.Year())), nil
}

func monthFn(args []value.Value) (value.Value, error) {
	t, err := parseISODate(args, 0, "month")
	if err != nil {
		return value.Value{}, err
	}
	return value.NewNumber(float64(t.Month())), nil
}

func dayFn(args []value.Value) (value.Value, error) {
	t, err := parseISODate(args, 0, "day")
	if err != nil {
		return value.Value{}, err
	}
	return value.NewNumber(float64(t.Day())), nil
}

func addDaysFn(args []value.Value) (value.Value, error) {
	t, err := parseISODate(args, 0, "add_days")
	if err != nil {
		return value.Value{}, err
	}
	n, err := numericArg(args, 1, "add_days")
	if err != nil {
		return value.Value{}, err
	}
	return value.NewString(t.AddDate(0, 0, int(n)).Format(isoDateLayout)), nil
}

func getDiffDaysFn(args []value.Value) (value.Value, error) {
	d1, err := parseISODate(args, 0, "get_diff_days")
	if err != nil {
		return value.Value{}, err
	}
	d2, err := parseISODate(args, 1, "get_diff_days")
	if err != nil {
		return value.Value{}, err
	}
	days := d1.Sub(d2).Hours() / 24
	return value.NewNumber(roundHalfAwayFromZero(days)), nil
}

// differenceInMonthsFn counts whole months between d1 and d2, truncating the
// remainder toward zero rather than rounding it.
func differenceInMonthsFn(args []value.Value) (value.Value, error) {
	d1, err := parseISODate(args, 0, "difference_in_months")
	if err != nil {
		return value.Value{}, err
	}
	d2, err := parseISODate(args, 1, "difference_in_months")
	if err != nil {
		return value.Value{}, err
	}

	// Work on the later-minus-earlier ordering so the day-of-month correction
	// is unambiguous, then restore the caller's sign at the end.
	neg := d1.Before(d2)
	later, earlier := d1, d2
	if neg {
		later, earlier = d2, d1
	}

	months := (later.Year()-earlier.Year())*12 + int(later.Month()) - int(earlier.Month())
	if later.Day() < earlier.Day() {
		months--
	}
	if neg {
		months = -months
	}
	return value.NewNumber(float64(months)), nil
}
