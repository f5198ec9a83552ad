// Package cerr defines the error kinds FormCalc's lexer, parser, evaluator, and
// engine can surface (spec §7), as a single comparable Kind plus an Error type that
// carries the formula name and a human-readable message.
package cerr

import "fmt"

// Kind identifies a category of FormCalc failure.
type Kind int

const (
	LexError Kind = iota
	ParseError
	TypeError
	DivisionByZero
	DomainError
	UnknownIdentifier
	UnknownFunction
	ArityMismatch
	UnknownFormula
	CycleDetected
	DateError
	MissingReturn
	ErrorCall
)

func (k Kind) String() string {
	switch k {
	case LexError:
		return "LexError"
	case ParseError:
		return "ParseError"
	case TypeError:
		return "TypeError"
	case DivisionByZero:
		return "DivisionByZero"
	case DomainError:
		return "DomainError"
	case UnknownIdentifier:
		return "UnknownIdentifier"
	case UnknownFunction:
		return "UnknownFunction"
	case ArityMismatch:
		return "ArityMismatch"
	case UnknownFormula:
		return "UnknownFormula"
	case CycleDetected:
		return "CycleDetected"
	case DateError:
		return "DateError"
	case MissingReturn:
		return "MissingReturn"
	case ErrorCall:
		return "ErrorCall"
	default:
		return "UnknownError"
	}
}

// Error is FormCalc's single error type: a Kind plus context. Formula and Offset are
// optional (Offset is the source offset set by the lexer, the parser, and most
// evaluator errors, and is zero when unset; Formula is filled in by the engine as
// errors are attributed to a batch member).
type Error struct {
	Kind    Kind
	Formula string
	Offset  int
	Message string
}

func (e *Error) Error() string {
	if e.Formula != "" {
		return fmt.Sprintf("%s in formula %q: %s", e.Kind, e.Formula, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is supports errors.Is(err, cerr.New(kind, "")) by comparing Kind only.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// New constructs an *Error with no formula/offset context.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithOffset returns a copy of e annotated with a source offset.
func (e *Error) WithOffset(offset int) *Error {
	cp := *e
	cp.Offset = offset
	return &cp
}

// WithFormula returns a copy of e annotated with the formula it occurred in.
func (e *Error) WithFormula(name string) *Error {
	cp := *e
	cp.Formula = name
	return &cp
}
