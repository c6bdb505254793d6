package query

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"cci/internal/snapshot"
	"cci/internal/trace"
)

// ContextLayer is one increment of progressively assembled context.
// Layers are ordered and cumulative: a layer is only ever included after
// all of its predecessors.
type ContextLayer string

const (
	LayerCore         ContextLayer = "core"
	LayerDependencies ContextLayer = "dependencies"
	LayerCallChain    ContextLayer = "call_chain"
	LayerPatterns     ContextLayer = "patterns"
)

// layerOrder is the fixed inclusion order
var layerOrder = []ContextLayer{LayerCore, LayerDependencies, LayerCallChain, LayerPatterns}

// layerCost is the fixed token cost charged when a layer is included.
// PATTERNS is the one exception: it charges only the remaining budget.
var layerCost = map[ContextLayer]int{
	LayerCore:         1000,
	LayerDependencies: 2000,
	LayerCallChain:    3000,
	LayerPatterns:     4000,
}

// Sampling limits within layers, fixed policy rather than user knobs.
const (
	maxLayerDependencies = 5
	maxLayerPaths        = 3
	maxLayerEntryPoints  = 3
	maxLayerPatterns     = 3
)

// CoreLayer is the target's own code and metadata
type CoreLayer struct {
	Symbol    string              `json:"symbol"`
	File      string              `json:"file"`
	Type      snapshot.SymbolKind `json:"type"`
	LineRange [2]int              `json:"line_range"`
	Signature string              `json:"signature,omitempty"`
	Docstring string              `json:"docstring,omitempty"`
	Code      string              `json:"code,omitempty"`
}

// DependencyRef is one direct dependency of the target
type DependencyRef struct {
	Name      string              `json:"name"`
	File      string              `json:"file"`
	Type      snapshot.SymbolKind `json:"type,omitempty"`
	Line      int                 `json:"line,omitempty"`
	Signature string              `json:"signature,omitempty"`
}

// ChainRef is a call-chain neighbor in context form
type ChainRef struct {
	Symbol string `json:"symbol"`
	File   string `json:"file"`
	Line   int    `json:"line"`
	Depth  int    `json:"depth,omitempty"`
}

// CallChainLayer is the call-chain slice of a context
type CallChainLayer struct {
	Upstream    []ChainRef `json:"upstream,omitempty"`
	Downstream  []ChainRef `json:"downstream,omitempty"`
	EntryPoints []ChainRef `json:"entry_points,omitempty"`
}

// PatternMatch is one similar-code reference
type PatternMatch struct {
	Symbol    string              `json:"symbol"`
	File      string              `json:"file"`
	Type      snapshot.SymbolKind `json:"type,omitempty"`
	Line      int                 `json:"line"`
	Signature string              `json:"signature,omitempty"`
	Relevance float64             `json:"relevance,omitempty"`
}

// PreciseContext is the output of progressive context assembly.
// LayersIncluded records exactly which layers fit the budget, in order; it
// is always a strict prefix of the layer order.
type PreciseContext struct {
	TargetCode         *CoreLayer      `json:"target_code,omitempty"`
	DirectDependencies []DependencyRef `json:"direct_dependencies,omitempty"`
	CallChain          *CallChainLayer `json:"call_chain,omitempty"`
	SimilarPatterns    []PatternMatch  `json:"similar_patterns,omitempty"`
	ImpactAnalysis     *ImpactAnalysis `json:"impact_analysis,omitempty"`
	TokenEstimate      int             `json:"token_estimate"`
	LayersIncluded     []ContextLayer  `json:"layers_included,omitempty"`
	TaskType           string          `json:"task_type,omitempty"`
}

// ExtractPreciseContext assembles budget-bounded context for a target symbol.
//
// Layers are attempted strictly in order; each is included only when its
// full cost still fits the remaining budget. PATTERNS is the exception: it
// is attempted whenever any budget remains and charges only the remainder.
// An unresolvable target short-circuits with an empty, layers-empty result.
// Budget exhaustion is not an error; the caller reads LayersIncluded.
func (e *Engine) ExtractPreciseContext(ctx context.Context, target string, tokenBudget int, taskType string) PreciseContext {
	e.build()

	result := PreciseContext{TaskType: taskType}

	loc, ok := e.ix.ResolveOne(target)
	if !ok {
		return result
	}

	remaining := tokenBudget

	// CORE: target code and metadata.
	if remaining < layerCost[LayerCore] {
		return result
	}
	result.TargetCode = &CoreLayer{
		Symbol:    loc.SymbolName,
		File:      loc.FilePath,
		Type:      loc.SymbolType,
		LineRange: [2]int{loc.LineStart, loc.LineEnd},
		Signature: loc.Signature,
		Docstring: loc.Docstring,
		Code:      e.readCodeRange(loc.FilePath, loc.LineStart, loc.LineEnd),
	}
	result.LayersIncluded = append(result.LayersIncluded, LayerCore)
	remaining -= layerCost[LayerCore]
	result.TokenEstimate += layerCost[LayerCore]

	// DEPENDENCIES: first callees of the target.
	if remaining >= layerCost[LayerDependencies] {
		callees := e.g.Callees(target)
		for i, callee := range callees {
			if i >= maxLayerDependencies {
				break
			}
			result.DirectDependencies = append(result.DirectDependencies, DependencyRef{
				Name:      callee.SymbolName,
				File:      callee.FilePath,
				Type:      callee.SymbolType,
				Line:      callee.LineStart,
				Signature: callee.Signature,
			})
		}
		result.LayersIncluded = append(result.LayersIncluded, LayerDependencies)
		remaining -= layerCost[LayerDependencies]
		result.TokenEstimate += layerCost[LayerDependencies]
	} else {
		return result
	}

	// CALL_CHAIN: a shallow both-directions trace.
	if remaining >= layerCost[LayerCallChain] {
		chain := e.GetCallChain(ctx, target, trace.Both, 2)
		result.CallChain = chainLayer(chain)
		result.LayersIncluded = append(result.LayersIncluded, LayerCallChain)
		remaining -= layerCost[LayerCallChain]
		result.TokenEstimate += layerCost[LayerCallChain]
	} else {
		return result
	}

	// PATTERNS: included if any budget remains, charged only the remainder.
	if remaining > 0 {
		patterns := e.FindSimilarPatterns(target)
		for i, p := range patterns {
			if i >= maxLayerPatterns {
				break
			}
			result.SimilarPatterns = append(result.SimilarPatterns, PatternMatch{
				Symbol:    p.SymbolName,
				File:      p.FilePath,
				Type:      p.SymbolType,
				Line:      p.LineStart,
				Signature: p.Signature,
				Relevance: p.Relevance,
			})
		}
		result.LayersIncluded = append(result.LayersIncluded, LayerPatterns)
		charge := layerCost[LayerPatterns]
		if remaining < charge {
			charge = remaining
		}
		result.TokenEstimate += charge
	}

	return result
}

// chainLayer reduces a trace into context form: at most 3 paths per
// direction, the target itself skipped, entry points capped at 3.
func chainLayer(chain trace.Chain) *CallChainLayer {
	layer := &CallChainLayer{}

	collect := func(paths [][]trace.Node) []ChainRef {
		var refs []ChainRef
		for i, path := range paths {
			if i >= maxLayerPaths {
				break
			}
			for _, node := range path[1:] {
				refs = append(refs, ChainRef{
					Symbol: node.SymbolName,
					File:   node.FilePath,
					Line:   node.LineNumber,
					Depth:  node.Depth,
				})
			}
		}
		return refs
	}

	layer.Upstream = collect(chain.Upstream)
	layer.Downstream = collect(chain.Downstream)

	for i, ep := range chain.EntryPoints {
		if i >= maxLayerEntryPoints {
			break
		}
		layer.EntryPoints = append(layer.EntryPoints, ChainRef{
			Symbol: ep.SymbolName,
			File:   ep.FilePath,
			Line:   ep.LineNumber,
		})
	}

	return layer
}

// readCodeRange returns the target's source lines, best-effort.
// A missing or unreadable file yields empty code, not an error.
func (e *Engine) readCodeRange(filePath string, start, end int) string {
	path := filePath
	if !filepath.IsAbs(path) {
		path = filepath.Join(e.repoRoot, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	lines := strings.Split(string(data), "\n")
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start > end {
		return ""
	}
	return strings.Join(lines[start-1:end], "\n")
}
