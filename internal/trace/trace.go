// Package trace implements bounded breadth-first call-chain tracing over the
// symbol call graph.
//
// A trace is a depth-limited spanning view, not an exhaustive path
// enumeration: every (symbol, file) pair is visited at most once per trace,
// so cycles terminate and diamonds collapse into a single expansion.
package trace

import (
	"context"
	"fmt"

	"cci/internal/graph"
	"cci/internal/index"
	"cci/internal/snapshot"
)

// MaxPaths caps the number of paths returned per direction regardless of
// graph fan-out.
const MaxPaths = 10

// Direction selects which way a trace walks the call graph
type Direction string

const (
	Upstream   Direction = "upstream"   // callers
	Downstream Direction = "downstream" // callees
	Both       Direction = "both"
)

// ParseDirection validates a direction string
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Upstream, Downstream, Both:
		return Direction(s), nil
	default:
		return "", fmt.Errorf("invalid direction %q (want upstream, downstream or both)", s)
	}
}

// Node is a position in a traced path. Depth is the distance from the traced
// target: 0 is the target itself.
type Node struct {
	SymbolName string              `json:"symbol_name"`
	FilePath   string              `json:"file_path"`
	LineNumber int                 `json:"line_number"`
	SymbolType snapshot.SymbolKind `json:"symbol_type"`
	Depth      int                 `json:"depth"`
}

// Chain is the result of one trace. Each inner slice is one path from the
// target outward. EntryPoints and LeafNodes are the terminal nodes of the
// upstream/downstream paths, deduplicated by (symbol, file).
type Chain struct {
	Target      Node     `json:"target"`
	Upstream    [][]Node `json:"upstream,omitempty"`
	Downstream  [][]Node `json:"downstream,omitempty"`
	EntryPoints []Node   `json:"entry_points,omitempty"`
	LeafNodes   []Node   `json:"leaf_nodes,omitempty"`
}

// Tracer walks the built call graph
type Tracer struct {
	ix       *index.Index
	g        *graph.Graph
	maxVisit int // hard ceiling on nodes expanded per trace, 0 = unlimited
}

// NewTracer creates a tracer over a built index and graph.
// maxVisit bounds work on adversarial graphs where maxDepth alone is not
// protective; pass 0 to disable.
func NewTracer(ix *index.Index, g *graph.Graph, maxVisit int) *Tracer {
	return &Tracer{ix: ix, g: g, maxVisit: maxVisit}
}

// Trace runs a bounded BFS from symbol in the given direction.
//
// Unknown symbols are not an error: the returned chain's target carries the
// "not_found" sentinel file path and no paths.
func (t *Tracer) Trace(ctx context.Context, symbol string, direction Direction, maxDepth int) Chain {
	loc, ok := t.ix.ResolveOne(symbol)
	if !ok {
		return Chain{
			Target: Node{
				SymbolName: symbol,
				FilePath:   index.NotFoundFile,
				SymbolType: "unknown",
			},
		}
	}

	target := nodeAt(loc, 0)
	chain := Chain{Target: target}

	if direction == Upstream || direction == Both {
		chain.Upstream = t.expand(ctx, target, maxDepth, t.g.Callers)
		chain.EntryPoints = terminals(chain.Upstream)
	}
	if direction == Downstream || direction == Both {
		chain.Downstream = t.expand(ctx, target, maxDepth, t.g.Callees)
		chain.LeafNodes = terminals(chain.Downstream)
	}

	return chain
}

type frontierItem struct {
	symbol string
	path   []Node
	depth  int
}

// expand is the shared BFS body. neighbors selects callers or callees.
func (t *Tracer) expand(ctx context.Context, start Node, maxDepth int, neighbors func(string) []index.Location) [][]Node {
	var paths [][]Node
	visited := make(map[string]bool)
	expanded := 0

	queue := []frontierItem{{symbol: start.SymbolName, path: []Node{start}, depth: 0}}

	for len(queue) > 0 {
		if ctx.Err() != nil {
			break
		}

		item := queue[0]
		queue = queue[1:]

		if item.depth >= maxDepth {
			// Depth-limited, even if further edges exist.
			paths = append(paths, item.path)
			continue
		}

		expanded++
		if t.maxVisit > 0 && expanded > t.maxVisit {
			paths = append(paths, item.path)
			continue
		}

		next := neighbors(item.symbol)
		if len(next) == 0 {
			// Terminal: an entry point or a leaf.
			paths = append(paths, item.path)
			continue
		}

		// Shared sub-paths are not re-expanded: a neighbor already visited
		// anywhere in this trace is skipped, which makes the result a
		// spanning view rather than literally all paths.
		for _, nb := range next {
			key := nb.SymbolName + ":" + nb.FilePath
			if visited[key] {
				continue
			}
			visited[key] = true

			node := nodeAt(nb, item.depth+1)
			path := make([]Node, len(item.path), len(item.path)+1)
			copy(path, item.path)
			path = append(path, node)
			queue = append(queue, frontierItem{symbol: nb.SymbolName, path: path, depth: item.depth + 1})
		}
	}

	if len(paths) > MaxPaths {
		paths = paths[:MaxPaths]
	}
	return paths
}

// terminals extracts the last node of each path, deduplicated by
// (symbol, file). Two call sites of one symbol in one file collapse into a
// single terminal.
func terminals(paths [][]Node) []Node {
	var out []Node
	seen := make(map[string]bool)

	for _, path := range paths {
		if len(path) == 0 {
			continue
		}
		last := path[len(path)-1]
		key := last.SymbolName + ":" + last.FilePath
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, last)
	}
	return out
}

func nodeAt(loc index.Location, depth int) Node {
	return Node{
		SymbolName: loc.SymbolName,
		FilePath:   loc.FilePath,
		LineNumber: loc.LineStart,
		SymbolType: loc.SymbolType,
		Depth:      depth,
	}
}
