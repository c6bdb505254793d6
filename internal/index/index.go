// Package index provides the symbol lookup table built from a snapshot.
//
// The index is a multimap: several definitions may share one name
// (overloads, redefinitions across files). Resolution is explicit at call
// sites — ResolveOne returns the first definition in snapshot order,
// ResolveAll surfaces the ambiguity.
package index

import (
	"sort"

	"cci/internal/snapshot"
)

// NotFoundFile is the sentinel file path used when a symbol cannot be resolved.
const NotFoundFile = "not_found"

// Location is an immutable record of where a symbol lives
type Location struct {
	FilePath   string              `json:"file_path"`
	SymbolName string              `json:"symbol_name"`
	SymbolType snapshot.SymbolKind `json:"symbol_type"`
	LineStart  int                 `json:"line_start"`
	LineEnd    int                 `json:"line_end"`
	Signature  string              `json:"signature,omitempty"`
	Docstring  string              `json:"docstring,omitempty"`
	Relevance  float64             `json:"relevance_score"`
}

// Builder accumulates snapshot data into an Index. Query methods live only
// on Index, so a half-built table cannot be queried.
type Builder struct {
	snap *snapshot.Snapshot
}

// NewBuilder creates a builder over an analyzed snapshot
func NewBuilder(snap *snapshot.Snapshot) *Builder {
	return &Builder{snap: snap}
}

// Build runs a single pass over all files' symbol lists.
// Same-named symbols across files are kept in snapshot order, not deduped.
func (b *Builder) Build() *Index {
	ix := &Index{
		byName: make(map[string][]Location),
		byID:   make(map[string]Location),
	}

	if b.snap == nil {
		return ix
	}

	for fi := range b.snap.Files {
		file := &b.snap.Files[fi]
		for si := range file.Symbols {
			sym := &file.Symbols[si]
			loc := Location{
				FilePath:   file.Path,
				SymbolName: sym.Name,
				SymbolType: sym.Kind,
				LineStart:  sym.LineStart,
				LineEnd:    sym.LineEnd,
				Signature:  sym.Signature,
				Docstring:  sym.Docstring,
				Relevance:  1.0,
			}
			ix.byName[sym.Name] = append(ix.byName[sym.Name], loc)
			if sym.ID != "" {
				if _, dup := ix.byID[sym.ID]; !dup {
					ix.byID[sym.ID] = loc
				}
			}
			ix.count++
		}
	}

	ix.names = make([]string, 0, len(ix.byName))
	for name := range ix.byName {
		ix.names = append(ix.names, name)
	}
	sort.Strings(ix.names)

	return ix
}

// Index is the built, read-only symbol table
type Index struct {
	byName map[string][]Location
	byID   map[string]Location
	names  []string // sorted, for deterministic iteration
	count  int
}

// Lookup returns all locations recorded under a name.
// Unknown names return an empty result, never an error.
func (ix *Index) Lookup(name string) ([]Location, bool) {
	locs, ok := ix.byName[name]
	return locs, ok
}

// ResolveOne returns the first-found location for a name.
// By convention this is "the" definition when callers don't care about
// ambiguity.
func (ix *Index) ResolveOne(name string) (Location, bool) {
	locs, ok := ix.byName[name]
	if !ok || len(locs) == 0 {
		return Location{}, false
	}
	return locs[0], true
}

// ResolveAll returns every location for a name, in snapshot order
func (ix *Index) ResolveAll(name string) []Location {
	return ix.byName[name]
}

// ByID resolves a symbol by its analyzer-assigned id.
// Used for call-edge resolution, where names are too ambiguous.
func (ix *Index) ByID(id string) (Location, bool) {
	loc, ok := ix.byID[id]
	return loc, ok
}

// Names returns all indexed symbol names in sorted order
func (ix *Index) Names() []string {
	return ix.names
}

// Len returns the total number of indexed locations
func (ix *Index) Len() int {
	return ix.count
}
