package function

import "github.com/nsforge/formcalc/value"

// Native adapts a plain Go closure to the Function interface — the shape every
// built-in in package builtin is constructed with.
type Native struct {
	FuncName string
	Arity    int
	Body     func(args []value.Value) (value.Value, error)
}

func (n *Native) Name() string { return n.FuncName }
func (n *Native) NumArgs() int { return n.Arity }

func (n *Native) Execute(args []value.Value) (value.Value, error) {
	return n.Body(args)
}
