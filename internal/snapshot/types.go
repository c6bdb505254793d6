// Package snapshot defines the analyzer-boundary input model.
//
// A Snapshot is the complete output of an external source analyzer for one
// repository state: files, their symbols, file-level dependency edges and
// symbol-level call edges. The engine treats a loaded snapshot as immutable;
// re-analysis replaces it wholesale.
package snapshot

import (
	"github.com/google/uuid"
)

// SymbolKind classifies a symbol
type SymbolKind string

const (
	KindFunction SymbolKind = "function"
	KindClass    SymbolKind = "class"
	KindMethod   SymbolKind = "method"
)

// Symbol is a single named definition reported by the analyzer
type Symbol struct {
	ID         string     `json:"id" yaml:"id"`
	Name       string     `json:"name" yaml:"name"`
	Kind       SymbolKind `json:"symbol_type" yaml:"symbol_type"`
	LineStart  int        `json:"line_start" yaml:"line_start"`
	LineEnd    int        `json:"line_end" yaml:"line_end"`
	Signature  string     `json:"signature,omitempty" yaml:"signature,omitempty"`
	Docstring  string     `json:"docstring,omitempty" yaml:"docstring,omitempty"`
	IsExported bool       `json:"is_exported" yaml:"is_exported"`
	IsPrivate  bool       `json:"is_private" yaml:"is_private"`
}

// FunctionDependency is a symbol-level call edge (caller id -> callee id).
// IDs reference Symbol.ID; edges with ids that resolve to nothing are
// silently dropped during graph construction.
type FunctionDependency struct {
	FromSymbol string `json:"from_symbol_id" yaml:"from_symbol_id"`
	ToSymbol   string `json:"to_symbol_id" yaml:"to_symbol_id"`
}

// FileAnalysis is the per-file slice of the snapshot
type FileAnalysis struct {
	Path                 string               `json:"path" yaml:"path"`
	Purpose              string               `json:"file_purpose,omitempty" yaml:"file_purpose,omitempty"`
	Symbols              []Symbol             `json:"symbols" yaml:"symbols"`
	Dependencies         []string             `json:"dependencies" yaml:"dependencies"`
	FunctionDependencies []FunctionDependency `json:"function_dependencies" yaml:"function_dependencies"`
}

// Snapshot is one immutable analysis of a repository
type Snapshot struct {
	ID    string         `json:"id,omitempty" yaml:"id,omitempty"`
	Root  string         `json:"root,omitempty" yaml:"root,omitempty"`
	Files []FileAnalysis `json:"files" yaml:"files"`
}

// EnsureID assigns a fresh identity if the analyzer supplied none.
// The ID participates in cache keys, so two loads of the same anonymous
// snapshot are intentionally distinct.
func (s *Snapshot) EnsureID() {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
}

// FileCount returns the number of analyzed files
func (s *Snapshot) FileCount() int {
	return len(s.Files)
}

// SymbolCount returns the total number of symbols across all files
func (s *Snapshot) SymbolCount() int {
	n := 0
	for i := range s.Files {
		n += len(s.Files[i].Symbols)
	}
	return n
}
