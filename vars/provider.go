// Package vars lets a host hand the engine a batch of variables in one call,
// adapted from the teacher's execution/data provider pair and narrowed to
// FormCalc's closed value type.
package vars

import (
	"context"

	"github.com/nsforge/formcalc/value"
)

// Provider supplies a batch of named variables. GetAll may be called once per
// LoadVariables call; it returns an error rather than panicking so future
// providers that depend on I/O (environment lookups, config files) have
// somewhere to report failure.
type Provider interface {
	GetAll(ctx context.Context) (map[string]value.Value, error)
}
