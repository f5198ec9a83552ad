// Package formula defines the Formula record the engine parses, layers, and
// evaluates (spec §3 "Formula").
package formula

import (
	"github.com/nsforge/formcalc/ast"
)

// Descriptor is a host-submitted {name, source} pair — the unit of one
// execute() batch entry before parsing.
type Descriptor struct {
	Name   string
	Source string
}

// Formula is a parsed, dependency-extracted formula ready for layerization.
// AST and Dependencies are populated once, by the engine, when a batch is
// submitted.
type Formula struct {
	Name         string
	Source       string
	AST          ast.Block
	Dependencies map[string]struct{}
}
