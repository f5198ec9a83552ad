// Package dag builds the cross-formula dependency graph and stratifies it into
// evaluation layers (spec §4.6). Layerization repeatedly peels the set of nodes
// with zero unresolved in-edges; any nodes left over once no such set exists are
// reported as CycleDetected instead of being evaluated.
package dag

import (
	"sort"

	"github.com/nsforge/formcalc/cerr"
)

// Node is one graph entry: a formula name and the names it statically depends on.
type Node struct {
	Name    string
	Depends map[string]struct{}
	seq     int // insertion order, for deterministic layer ordering
}

// Graph is a dependency graph over formula names.
type Graph struct {
	nodes map[string]*Node
	order []string
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*Node)}
}

// AddNode inserts a formula with its static dependency set. Calling AddNode
// twice for the same name replaces the previous entry but keeps its original
// insertion sequence.
func (g *Graph) AddNode(name string, deps map[string]struct{}) {
	seq, exists := g.seqOf(name)
	if !exists {
		seq = len(g.order)
		g.order = append(g.order, name)
	}
	g.nodes[name] = &Node{Name: name, Depends: deps, seq: seq}
}

func (g *Graph) seqOf(name string) (int, bool) {
	if n, ok := g.nodes[name]; ok {
		return n.seq, true
	}
	return 0, false
}

// Layerize strata the graph: each returned layer is a slice of formula names
// with no unresolved same-batch dependency on any node in an earlier or the
// same layer, ordered by insertion sequence for determinism. A dependency
// that names a formula outside the current batch never blocks layerization —
// per spec §4.6 it is either already satisfied (carried over in the result
// cache from a prior execute call) or it will fail the referencing formula at
// evaluation time with UnknownFormula; either way it is not this package's
// concern.
//
// Any nodes left unlayered once no zero-in-degree set remains are returned as
// CycleDetected errors, one per remaining node, naming every node still stuck
// in (or blocked behind) the cycle.
func (g *Graph) Layerize() (layers [][]string, cycleErrs map[string]*cerr.Error) {
	remaining := make(map[string]*Node, len(g.nodes))
	for name, n := range g.nodes {
		remaining[name] = n
	}

	for len(remaining) > 0 {
		var ready []string
		for name, n := range remaining {
			if inDegree(n, remaining) == 0 {
				ready = append(ready, name)
			}
		}
		if len(ready) == 0 {
			break
		}
		sort.Slice(ready, func(i, j int) bool {
			return remaining[ready[i]].seq < remaining[ready[j]].seq
		})
		layers = append(layers, ready)
		for _, name := range ready {
			delete(remaining, name)
		}
	}

	if len(remaining) == 0 {
		return layers, nil
	}

	names := make([]string, 0, len(remaining))
	for name := range remaining {
		names = append(names, name)
	}
	sort.Strings(names)

	cycleErrs = make(map[string]*cerr.Error, len(remaining))
	for _, name := range names {
		cycleErrs[name] = cerr.New(cerr.CycleDetected, "formula participates in a dependency cycle with %v", names).WithFormula(name)
	}
	return layers, cycleErrs
}

// inDegree counts n's dependencies that are still unlayered members of the
// current batch; same-batch edges are the only ones that can block readiness.
func inDegree(n *Node, remaining map[string]*Node) int {
	count := 0
	for dep := range n.Depends {
		if _, stillPending := remaining[dep]; stillPending {
			count++
		}
	}
	return count
}
