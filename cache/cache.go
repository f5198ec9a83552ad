// Package cache implements the engine's four shared caches (spec §3
// "Caches"): variable cache, result cache, and error map are read-write
// maps guarded by a simple RWMutex discipline — read-only to layer workers
// during a batch, written only by the orchestrating goroutine between
// layers or before/after a batch. The function registry lives in package
// function since it is shaped by the Function interface, not by Value.
package cache

import (
	"sync"

	"github.com/nsforge/formcalc/value"
)

// VariableCache holds host-supplied input variables, resolved by VarRef nodes.
type VariableCache struct {
	mu   sync.RWMutex
	vars map[string]value.Value
}

// NewVariableCache returns an empty variable cache.
func NewVariableCache() *VariableCache {
	return &VariableCache{vars: make(map[string]value.Value)}
}

// Set upserts name's value.
func (c *VariableCache) Set(name string, v value.Value) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vars[name] = v
}

// SetAll upserts every entry in vars, for bulk loading via a vars.Provider.
func (c *VariableCache) SetAll(vars map[string]value.Value) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, v := range vars {
		c.vars[name] = v
	}
}

// Get returns name's value and whether it is present.
func (c *VariableCache) Get(name string) (value.Value, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.vars[name]
	return v, ok
}

// ResultCache holds the most recent successful result for each formula name,
// persisting across execute calls until Clear.
type ResultCache struct {
	mu      sync.RWMutex
	results map[string]value.Value
}

// NewResultCache returns an empty result cache.
func NewResultCache() *ResultCache {
	return &ResultCache{results: make(map[string]value.Value)}
}

// Get returns name's most recent result and whether one exists.
func (c *ResultCache) Get(name string) (value.Value, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.results[name]
	return v, ok
}

// Set commits name's result. Called only by the orchestrator, between layers.
func (c *ResultCache) Set(name string, v value.Value) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[name] = v
}

// Clear drops every stored result.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = make(map[string]value.Value)
}

// ErrorMap holds the most recent failure for each formula name that failed
// during the last execute call.
type ErrorMap struct {
	mu   sync.RWMutex
	errs map[string]error
}

// NewErrorMap returns an empty error map.
func NewErrorMap() *ErrorMap {
	return &ErrorMap{errs: make(map[string]error)}
}

// Set records err as name's failure. Called only by the orchestrator.
func (m *ErrorMap) Set(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[name] = err
}

// Get returns name's recorded error and whether one exists.
func (m *ErrorMap) Get(name string) (error, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	err, ok := m.errs[name]
	return err, ok
}

// All returns a snapshot copy of every recorded error, keyed by formula name.
func (m *ErrorMap) All() map[string]error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]error, len(m.errs))
	for name, err := range m.errs {
		out[name] = err
	}
	return out
}

// Clear drops every recorded error.
func (m *ErrorMap) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = make(map[string]error)
}
