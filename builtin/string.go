package builtin

import (
	"strings"

	"github.com/nsforge/formcalc/cerr"
	"github.com/nsforge/formcalc/function"
	"github.com/nsforge/formcalc/value"
)

func stringFunctions() []function.Function {
	return []function.Function{
		&function.Native{FuncName: "substr", Arity: 3, Body: substrFn},
		&function.Native{FuncName: "padded_string", Arity: 2, Body: paddedStringFn},
	}
}

func stringArg(args []value.Value, i int, fn string) (string, error) {
	s, ok := args[i].AsString()
	if !ok {
		return "", cerr.New(cerr.TypeError, "%s: argument %d must be a string, got %s", fn, i+1, args[i].Kind())
	}
	return s, nil
}

// substrFn extracts len codepoints starting at the 0-based codepoint offset
// start, clamped to the string's bounds; a negative start or len is a
// DomainError.
func substrFn(args []value.Value) (value.Value, error) {
	s, err := stringArg(args, 0, "substr")
	if err != nil {
		return value.Value{}, err
	}
	start, err := numericArg(args, 1, "substr")
	if err != nil {
		return value.Value{}, err
	}
	length, err := numericArg(args, 2, "substr")
	if err != nil {
		return value.Value{}, err
	}
	if start < 0 || length < 0 {
		return value.Value{}, cerr.New(cerr.DomainError, "substr: start and len must be non-negative")
	}

	runes := []rune(s)
	startIdx := clampInt(int(start), 0, len(runes))
	endIdx := clampInt(startIdx+int(length), startIdx, len(runes))
	return value.NewString(string(runes[startIdx:endIdx])), nil
}

func clampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// paddedStringFn left-pads s with '0' up to width w; if s is already at least
// w codepoints long, it is returned unchanged.
func paddedStringFn(args []value.Value) (value.Value, error) {
	s, err := stringArg(args, 0, "padded_string")
	if err != nil {
		return value.Value{}, err
	}
	w, err := numericArg(args, 1, "padded_string")
	if err != nil {
		return value.Value{}, err
	}
	width := int(w)
	runeLen := len([]rune(s))
	if runeLen >= width {
		return value.NewString(s), nil
	}
	return value.NewString(strings.Repeat("0", width-runeLen) + s), nil
}
