// Package architecture infers a coarse architectural map from path
// heuristics and graph connectivity.
//
// Every classifier here is deliberately approximate and deterministic:
// substring rules over paths, reference counts over symbols, degree ranking
// over the dependency graph. Given the same snapshot the output is
// reproducible bit for bit.
package architecture

import (
	"sort"
	"strings"

	"cci/internal/graph"
	"cci/internal/snapshot"
)

// Map is the high-level architecture summary
type Map struct {
	Layers          map[string][]string `json:"layers"`
	Modules         map[string][]string `json:"modules"`
	KeyAbstractions []string            `json:"key_abstractions"`
	DesignPatterns  map[string][]string `json:"design_patterns"`
	EntryPoints     []string            `json:"entry_points"`
	CoreComponents  []string            `json:"core_components"`
}

// layerRules is the ordered rule list for layer classification.
// First matching rule wins.
var layerRules = []struct {
	layer      string
	substrings []string
}{
	{"domain", []string{"domain", "model"}},
	{"application", []string{"application", "service"}},
	{"infrastructure", []string{"adapter", "infrastructure"}},
	{"api", []string{"api", "controller", "route"}},
	{"cli", []string{"cli", "command"}},
}

// ClassifyLayer maps a file path to its architectural layer.
// Also used by the context engine's same-layer filtering.
func ClassifyLayer(path string) string {
	lower := strings.ToLower(path)
	for _, rule := range layerRules {
		for _, sub := range rule.substrings {
			if strings.Contains(lower, sub) {
				return rule.layer
			}
		}
	}
	return "other"
}

// entryPointFiles are the filename conventions treated as entry points
var entryPointFiles = []string{"main.py", "cli.py", "app.py", "server.py"}

// patternNames are the filename-substring design pattern heuristics,
// checked in order, first match wins.
var patternNames = []string{"factory", "builder", "adapter", "repository", "service", "controller"}

// coreComponentLimit caps the core-components ranking
const coreComponentLimit = 10

// Analyzer classifies the files of one snapshot
type Analyzer struct {
	snap     *snapshot.Snapshot
	g        *graph.Graph
	manifest []ModuleDeclaration
}

// NewAnalyzer creates an analyzer over a snapshot and its built graph
func NewAnalyzer(snap *snapshot.Snapshot, g *graph.Graph) *Analyzer {
	return &Analyzer{snap: snap, g: g}
}

// WithManifest attaches declared module names that override the
// first-path-segment grouping for matching path prefixes.
func (a *Analyzer) WithManifest(decls []ModuleDeclaration) *Analyzer {
	a.manifest = decls
	return a
}

// Analyze produces the architecture map
func (a *Analyzer) Analyze() Map {
	if a.snap == nil {
		return Map{
			Layers:         map[string][]string{},
			Modules:        map[string][]string{},
			DesignPatterns: map[string][]string{},
		}
	}

	return Map{
		Layers:          a.detectLayers(),
		Modules:         a.detectModules(),
		KeyAbstractions: a.keyAbstractions(),
		DesignPatterns:  a.detectPatterns(),
		EntryPoints:     a.entryPoints(),
		CoreComponents:  a.coreComponents(),
	}
}

func (a *Analyzer) detectLayers() map[string][]string {
	layers := make(map[string][]string)
	for i := range a.snap.Files {
		path := a.snap.Files[i].Path
		layer := ClassifyLayer(path)
		layers[layer] = append(layers[layer], path)
	}
	return layers
}

func (a *Analyzer) detectModules() map[string][]string {
	modules := make(map[string][]string)
	for i := range a.snap.Files {
		path := a.snap.Files[i].Path
		name := a.moduleFor(path)
		if name == "" {
			continue
		}
		modules[name] = append(modules[name], path)
	}
	return modules
}

// moduleFor resolves the module name for a path: a declared manifest module
// wins over the default first-path-segment grouping.
func (a *Analyzer) moduleFor(path string) string {
	for _, decl := range a.manifest {
		if decl.Path != "" && strings.HasPrefix(path, strings.TrimSuffix(decl.Path, "/")+"/") {
			return decl.Name
		}
	}
	if i := strings.Index(path, "/"); i > 0 {
		return path[:i]
	}
	return ""
}

// keyAbstractions ranks exported classes by raw definition count.
// This counts symbols, not usage sites, so it is an approximation of
// "most-used type", not a precise one.
func (a *Analyzer) keyAbstractions() []string {
	counts := make(map[string]int)
	for fi := range a.snap.Files {
		for _, sym := range a.snap.Files[fi].Symbols {
			if sym.Kind == snapshot.KindClass && sym.IsExported {
				counts[sym.Name]++
			}
		}
	}

	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})

	if len(names) > 10 {
		names = names[:10]
	}
	return names
}

func (a *Analyzer) detectPatterns() map[string][]string {
	patterns := make(map[string][]string)
	for fi := range a.snap.Files {
		file := &a.snap.Files[fi]
		lower := strings.ToLower(file.Path)

		for _, name := range patternNames {
			if strings.Contains(lower, name) {
				patterns[name] = append(patterns[name], file.Path)
				break
			}
		}

		// Analyzer-supplied purpose tags union into the same map.
		if file.Purpose != "" {
			patterns[file.Purpose] = append(patterns[file.Purpose], file.Path)
		}
	}
	return patterns
}

func (a *Analyzer) entryPoints() []string {
	var out []string
	for fi := range a.snap.Files {
		file := &a.snap.Files[fi]

		for _, name := range entryPointFiles {
			if strings.Contains(file.Path, name) {
				out = append(out, file.Path)
				break
			}
		}

		for _, sym := range file.Symbols {
			if sym.Name == "main" && sym.Kind == snapshot.KindFunction {
				out = append(out, file.Path+"::"+sym.Name)
			}
		}
	}
	return out
}

// coreComponents ranks files by total degree in the dependency graph,
// descending, path ascending on ties.
func (a *Analyzer) coreComponents() []string {
	paths := make([]string, 0, len(a.snap.Files))
	for i := range a.snap.Files {
		paths = append(paths, a.snap.Files[i].Path)
	}

	sort.Slice(paths, func(i, j int) bool {
		di, dj := a.g.Degree(paths[i]), a.g.Degree(paths[j])
		if di != dj {
			return di > dj
		}
		return paths[i] < paths[j]
	})

	if len(paths) > coreComponentLimit {
		paths = paths[:coreComponentLimit]
	}
	return paths
}
