// Package graph builds the file-level dependency graph and the symbol-level
// call edge set from a snapshot.
//
// Construction is best-effort: call edges whose symbol ids resolve to nothing
// are dropped silently, because the analyzer boundary makes no completeness
// promise. The built graph is read-only.
package graph

import (
	"cci/internal/index"
	"cci/internal/snapshot"
)

// CallEdges holds the resolved callers and callees of one symbol name
type CallEdges struct {
	Callers []index.Location
	Callees []index.Location
}

// Builder accumulates snapshot edges into a Graph
type Builder struct {
	snap *snapshot.Snapshot
	ix   *index.Index
}

// NewBuilder creates a builder over a snapshot and its symbol index.
// Call edges are resolved against the index by symbol id, not name, so
// overloads don't cross-wire.
func NewBuilder(snap *snapshot.Snapshot, ix *index.Index) *Builder {
	return &Builder{snap: snap, ix: ix}
}

// Build constructs the forward/reverse file maps and the call edge set in
// one pass over the snapshot.
func (b *Builder) Build() *Graph {
	g := &Graph{
		forward: make(map[string][]string),
		reverse: make(map[string][]string),
		callers: make(map[string][]index.Location),
		callees: make(map[string][]index.Location),
	}

	if b.snap == nil {
		return g
	}

	for fi := range b.snap.Files {
		file := &b.snap.Files[fi]

		g.forward[file.Path] = append([]string(nil), file.Dependencies...)
		for _, dep := range file.Dependencies {
			g.reverse[dep] = append(g.reverse[dep], file.Path)
		}

		for _, edge := range file.FunctionDependencies {
			from, okFrom := b.ix.ByID(edge.FromSymbol)
			to, okTo := b.ix.ByID(edge.ToSymbol)
			if !okFrom || !okTo {
				// Dangling edge from the analyzer; drop it.
				continue
			}
			g.callees[from.SymbolName] = append(g.callees[from.SymbolName], to)
			g.callers[to.SymbolName] = append(g.callers[to.SymbolName], from)
			g.callEdgeCount++
		}
	}

	return g
}

// Graph is the built, read-only dependency graph
type Graph struct {
	forward       map[string][]string
	reverse       map[string][]string
	callers       map[string][]index.Location
	callees       map[string][]index.Location
	callEdgeCount int
}

// Forward returns the files a file depends on
func (g *Graph) Forward(file string) []string {
	return g.forward[file]
}

// Reverse returns the files that depend on a file
func (g *Graph) Reverse(file string) []string {
	return g.reverse[file]
}

// Callers returns the resolved locations of symbols that call the named symbol
func (g *Graph) Callers(symbol string) []index.Location {
	return g.callers[symbol]
}

// Callees returns the resolved locations of symbols the named symbol calls
func (g *Graph) Callees(symbol string) []index.Location {
	return g.callees[symbol]
}

// Edges returns both directions for a symbol
func (g *Graph) Edges(symbol string) CallEdges {
	return CallEdges{
		Callers: g.callers[symbol],
		Callees: g.callees[symbol],
	}
}

// Degree returns |forward deps| + |reverse deps| for a file.
// Used to rank core components.
func (g *Graph) Degree(file string) int {
	return len(g.forward[file]) + len(g.reverse[file])
}

// Stats summarizes graph size
type Stats struct {
	Files        int `json:"files"`
	ForwardEdges int `json:"forwardEdges"`
	CallEdges    int `json:"callEdges"`
}

// Stats returns statistics about the graph
func (g *Graph) Stats() Stats {
	s := Stats{
		Files:     len(g.forward),
		CallEdges: g.callEdgeCount,
	}
	for _, deps := range g.forward {
		s.ForwardEdges += len(deps)
	}
	return s
}
