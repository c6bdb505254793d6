// Package query provides the central engine that coordinates all CCI
// operations: call-chain tracing, architecture analysis, layered context
// extraction, impact analysis, compression, ranking and filtering.
//
// The engine builds its symbol index and dependency graph lazily, exactly
// once per snapshot; every query after that runs over read-only structures
// and is safe for concurrent use.
package query

import (
	"context"
	"sort"
	"strings"
	"sync"

	"cci/internal/architecture"
	"cci/internal/cache"
	"cci/internal/config"
	"cci/internal/graph"
	"cci/internal/index"
	"cci/internal/logging"
	"cci/internal/snapshot"
	"cci/internal/trace"
)

// locateLimit caps keyword-search results
const locateLimit = 10

// Engine is the query coordinator for one snapshot
type Engine struct {
	snap     *snapshot.Snapshot
	repoRoot string
	cfg      *config.Config
	logger   *logging.Logger
	cache    *cache.Cache // optional memoization; nil disables it

	buildOnce sync.Once
	ix        *index.Index
	g         *graph.Graph
	tracer    *trace.Tracer
	arch      *architecture.Analyzer
}

// NewEngine creates an engine over a loaded snapshot.
// logger and memo may be nil; cfg falls back to defaults.
func NewEngine(snap *snapshot.Snapshot, repoRoot string, cfg *config.Config, logger *logging.Logger, memo *cache.Cache) *Engine {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Engine{
		snap:     snap,
		repoRoot: repoRoot,
		cfg:      cfg,
		logger:   logger,
		cache:    memo,
	}
}

// build constructs the index, graph, tracer and analyzer exactly once.
// Concurrent first-callers block here instead of racing to rebuild.
func (e *Engine) build() {
	e.buildOnce.Do(func() {
		e.ix = index.NewBuilder(e.snap).Build()
		e.g = graph.NewBuilder(e.snap, e.ix).Build()
		e.tracer = trace.NewTracer(e.ix, e.g, e.cfg.Trace.MaxVisitNodes)

		e.arch = architecture.NewAnalyzer(e.snap, e.g)
		if e.cfg.Modules.ManifestPath != "" {
			decls, err := architecture.LoadManifest(e.cfg.Modules.ManifestPath)
			if err != nil {
				e.logger.Warn("Ignoring unreadable module manifest", map[string]interface{}{
					"path":  e.cfg.Modules.ManifestPath,
					"error": err.Error(),
				})
			} else {
				e.arch = e.arch.WithManifest(decls)
			}
		}

		stats := e.g.Stats()
		e.logger.Debug("Built dependency graph", map[string]interface{}{
			"files":     stats.Files,
			"fileEdges": stats.ForwardEdges,
			"callEdges": stats.CallEdges,
			"symbols":   e.ix.Len(),
		})
	})
}

// Index exposes the built symbol index
func (e *Engine) Index() *index.Index {
	e.build()
	return e.ix
}

// Graph exposes the built dependency graph
func (e *Engine) Graph() *graph.Graph {
	e.build()
	return e.g
}

// GetCallChain traces callers and/or callees of a symbol up to maxDepth.
// Unknown symbols yield a chain with the "not_found" sentinel target.
func (e *Engine) GetCallChain(ctx context.Context, symbol string, direction trace.Direction, maxDepth int) trace.Chain {
	e.build()

	if maxDepth <= 0 {
		maxDepth = e.cfg.Trace.DefaultDepth
	}
	if maxDepth > e.cfg.Trace.MaxDepth {
		maxDepth = e.cfg.Trace.MaxDepth
	}

	key := cache.GenerateKey("callchain", []interface{}{e.snap.ID, symbol}, map[string]interface{}{
		"direction": direction,
		"depth":     maxDepth,
	})
	if chain, ok := e.memoGet(key); ok {
		if typed, ok := chain.(trace.Chain); ok {
			return typed
		}
	}

	result := e.tracer.Trace(ctx, symbol, direction, maxDepth)
	e.memoSet(key, result)
	return result
}

// UnderstandArchitecture produces the architecture map for the snapshot
func (e *Engine) UnderstandArchitecture(ctx context.Context) architecture.Map {
	e.build()

	key := cache.Key("architecture", e.snap.ID)
	if v, ok := e.memoGet(key); ok {
		if typed, ok := v.(architecture.Map); ok {
			return typed
		}
	}

	result := e.arch.Analyze()
	e.memoSet(key, result)
	return result
}

// LocateImplementation searches symbol names by keyword overlap.
// Relevance is the fraction of query keywords that appear in the symbol
// name; results are the top 10 by relevance.
func (e *Engine) LocateImplementation(query string) []index.Location {
	e.build()

	keywords := strings.Fields(strings.ToLower(query))
	if len(keywords) == 0 {
		return nil
	}

	var matches []index.Location
	// Sorted name iteration keeps result order reproducible across runs.
	for _, name := range e.ix.Names() {
		lower := strings.ToLower(name)
		matched := 0
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				matched++
			}
		}
		if matched == 0 {
			continue
		}
		relevance := float64(matched) / float64(len(keywords))
		for _, loc := range e.ix.ResolveAll(name) {
			loc.Relevance = relevance
			matches = append(matches, loc)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Relevance > matches[j].Relevance
	})
	if len(matches) > locateLimit {
		matches = matches[:locateLimit]
	}
	return matches
}

// FindSimilarPatterns finds code matching a pattern description.
// It is keyword search under another name; the patterns layer uses it.
func (e *Engine) FindSimilarPatterns(pattern string) []index.Location {
	return e.LocateImplementation(pattern)
}

// EntryPoint is a top-level caller of a traced symbol
type EntryPoint struct {
	SymbolName string `json:"symbol_name"`
	FilePath   string `json:"file_path"`
	LineNumber int    `json:"line_number"`
	CallDepth  int    `json:"call_depth"`
}

// FindEntryPoints returns the topmost observed callers of a symbol
func (e *Engine) FindEntryPoints(ctx context.Context, symbol string) []EntryPoint {
	chain := e.GetCallChain(ctx, symbol, trace.Upstream, 5)

	out := make([]EntryPoint, 0, len(chain.EntryPoints))
	for _, ep := range chain.EntryPoints {
		out = append(out, EntryPoint{
			SymbolName: ep.SymbolName,
			FilePath:   ep.FilePath,
			LineNumber: ep.LineNumber,
			CallDepth:  ep.Depth,
		})
	}
	return out
}

// FindLeafDependencies returns the bottom-level callees of a symbol
func (e *Engine) FindLeafDependencies(ctx context.Context, symbol string) []index.Location {
	chain := e.GetCallChain(ctx, symbol, trace.Downstream, 5)

	out := make([]index.Location, 0, len(chain.LeafNodes))
	for _, leaf := range chain.LeafNodes {
		out = append(out, index.Location{
			FilePath:   leaf.FilePath,
			SymbolName: leaf.SymbolName,
			SymbolType: leaf.SymbolType,
			LineStart:  leaf.LineNumber,
			LineEnd:    leaf.LineNumber,
			Relevance:  1.0,
		})
	}
	return out
}

// ModuleBoundaries describes one module's interface surface
type ModuleBoundaries struct {
	ModuleName      string            `json:"module_name"`
	PublicInterface []snapshot.Symbol `json:"public_interface"`
	InternalSymbols []snapshot.Symbol `json:"internal_symbols"`
	Dependencies    []string          `json:"dependencies"`
	Dependents      []string          `json:"dependents"`
}

// GetModuleBoundaries reports the public/internal split and module-level
// dependency edges for the named module. Returns ok=false when no file
// belongs to the module.
func (e *Engine) GetModuleBoundaries(moduleName string) (ModuleBoundaries, bool) {
	e.build()

	mb := ModuleBoundaries{ModuleName: moduleName}
	depSet := make(map[string]bool)
	depdSet := make(map[string]bool)
	found := false

	for fi := range e.snap.Files {
		file := &e.snap.Files[fi]
		inModule := strings.Contains(file.Path, moduleName)

		if inModule {
			found = true
			for _, sym := range file.Symbols {
				if sym.IsExported && !sym.IsPrivate {
					mb.PublicInterface = append(mb.PublicInterface, sym)
				} else {
					mb.InternalSymbols = append(mb.InternalSymbols, sym)
				}
			}
			for _, dep := range file.Dependencies {
				if seg := firstSegment(dep); seg != "" && seg != moduleName {
					depSet[seg] = true
				}
			}
			continue
		}

		for _, dep := range file.Dependencies {
			if strings.Contains(dep, moduleName) {
				if seg := firstSegment(file.Path); seg != "" {
					depdSet[seg] = true
				}
				break
			}
		}
	}

	if !found {
		return ModuleBoundaries{}, false
	}

	mb.Dependencies = sortedKeys(depSet)
	mb.Dependents = sortedKeys(depdSet)
	return mb, true
}

func firstSegment(path string) string {
	if i := strings.Index(path, "/"); i > 0 {
		return path[:i]
	}
	return ""
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (e *Engine) memoGet(key string) (interface{}, bool) {
	if e.cache == nil {
		return nil, false
	}
	return e.cache.Get(key)
}

func (e *Engine) memoSet(key string, value interface{}) {
	if e.cache != nil {
		e.cache.Set(key, value)
	}
}
