package vars

import (
	"context"

	"github.com/nsforge/formcalc/value"
)

// StaticProvider is the trivial in-memory Provider: a fixed map handed to the
// engine verbatim.
type StaticProvider struct {
	data map[string]value.Value
}

// NewStaticProvider wraps data as a Provider. The caller retains ownership of
// data; StaticProvider takes a defensive copy so later mutation by the caller
// can't retroactively change what GetAll returns.
func NewStaticProvider(data map[string]value.Value) *StaticProvider {
	cp := make(map[string]value.Value, len(data))
	for k, v := range data {
		cp[k] = v
	}
	return &StaticProvider{data: cp}
}

// GetAll returns a copy of the wrapped data. It never errors.
func (p *StaticProvider) GetAll(ctx context.Context) (map[string]value.Value, error) {
	out := make(map[string]value.Value, len(p.data))
	for k, v := range p.data {
		out[k] = v
	}
	return out, nil
}
