package snapshot

import (
	"fmt"
	"os"
	"strings"

	scippb "github.com/sourcegraph/scip/bindings/go/scip"
	"google.golang.org/protobuf/proto"

	"cci/internal/errors"
)

// LoadSCIP converts a SCIP index into a snapshot.
//
// SCIP indexes carry occurrences rather than explicit call edges, so the
// conversion is best-effort: a reference occurring inside a definition is
// recorded as a call edge from the enclosing symbol, and a reference to a
// symbol defined in another document becomes a file dependency. Anything
// that cannot be attributed this way is dropped.
func LoadSCIP(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.SnapshotInvalid,
			fmt.Sprintf("failed to read SCIP index from %s", path), err)
	}

	var index scippb.Index
	if err := proto.Unmarshal(data, &index); err != nil {
		return nil, errors.New(errors.SnapshotInvalid,
			fmt.Sprintf("failed to parse SCIP index from %s", path), err)
	}

	snap := &Snapshot{}
	if index.Metadata != nil {
		snap.Root = index.Metadata.ProjectRoot
	}

	// Pass 1: locate every definition so references can be attributed to files.
	definedIn := make(map[string]string, 1024)
	infoBySymbol := make(map[string]*scippb.SymbolInformation, 1024)
	for _, doc := range index.Documents {
		for _, info := range doc.Symbols {
			infoBySymbol[info.Symbol] = info
		}
		for _, occ := range doc.Occurrences {
			if occ.SymbolRoles&int32(scippb.SymbolRole_Definition) != 0 {
				if _, seen := definedIn[occ.Symbol]; !seen {
					definedIn[occ.Symbol] = doc.RelativePath
				}
			}
		}
	}

	// Pass 2: build per-file symbol lists and edges.
	for _, doc := range index.Documents {
		file := FileAnalysis{Path: doc.RelativePath}
		depSeen := make(map[string]bool)
		edgeSeen := make(map[string]bool)

		var container string // enclosing definition for reference attribution
		for _, occ := range doc.Occurrences {
			if len(occ.Range) < 3 {
				continue
			}
			startLine := int(occ.Range[0]) + 1

			if occ.SymbolRoles&int32(scippb.SymbolRole_Definition) != 0 {
				sym := convertSCIPSymbol(occ, infoBySymbol[occ.Symbol], startLine)
				file.Symbols = append(file.Symbols, sym)
				if sym.Kind == KindFunction || sym.Kind == KindMethod {
					container = occ.Symbol
				}
				continue
			}

			// Reference occurrence.
			defFile, known := definedIn[occ.Symbol]
			if known && defFile != doc.RelativePath && !depSeen[defFile] {
				depSeen[defFile] = true
				file.Dependencies = append(file.Dependencies, defFile)
			}
			if container != "" && container != occ.Symbol && looksCallable(occ.Symbol) {
				key := container + "\x00" + occ.Symbol
				if !edgeSeen[key] {
					edgeSeen[key] = true
					file.FunctionDependencies = append(file.FunctionDependencies, FunctionDependency{
						FromSymbol: container,
						ToSymbol:   occ.Symbol,
					})
				}
			}
		}

		snap.Files = append(snap.Files, file)
	}

	snap.EnsureID()
	return snap, nil
}

func convertSCIPSymbol(occ *scippb.Occurrence, info *scippb.SymbolInformation, startLine int) Symbol {
	endLine := startLine
	if len(occ.EnclosingRange) >= 3 {
		endLine = int(occ.EnclosingRange[2]) + 1
	}

	sym := Symbol{
		ID:        occ.Symbol,
		Name:      displayName(occ.Symbol, info),
		Kind:      kindFromSCIP(occ.Symbol, info),
		LineStart: startLine,
		LineEnd:   endLine,
	}
	if info != nil {
		sym.Docstring = strings.Join(info.Documentation, "\n")
	}
	sym.IsExported = !strings.HasPrefix(sym.Name, "_")
	sym.IsPrivate = strings.HasPrefix(sym.Name, "_")
	return sym
}

func kindFromSCIP(symbol string, info *scippb.SymbolInformation) SymbolKind {
	if info != nil {
		switch info.Kind {
		case scippb.SymbolInformation_Class, scippb.SymbolInformation_Struct,
			scippb.SymbolInformation_Interface, scippb.SymbolInformation_Enum:
			return KindClass
		case scippb.SymbolInformation_Method, scippb.SymbolInformation_Constructor:
			return KindMethod
		case scippb.SymbolInformation_Function:
			return KindFunction
		}
	}
	// Fall back to descriptor shape: Type# is a class, Type#method() a method.
	if strings.HasSuffix(symbol, "#") {
		return KindClass
	}
	if strings.Contains(symbol, "#") && strings.HasSuffix(symbol, ").") {
		return KindMethod
	}
	return KindFunction
}

// looksCallable reports whether a SCIP symbol id has a function descriptor.
func looksCallable(symbol string) bool {
	return strings.HasSuffix(symbol, ").") || strings.HasSuffix(symbol, ")")
}

// displayName extracts a human-readable name for a SCIP symbol.
func displayName(symbol string, info *scippb.SymbolInformation) string {
	if info != nil && info.DisplayName != "" {
		return info.DisplayName
	}

	name := symbol
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, "().")
	name = strings.TrimSuffix(name, "()")
	name = strings.TrimSuffix(name, "#")
	name = strings.TrimSuffix(name, ".")
	if i := strings.LastIndex(name, "#"); i >= 0 {
		name = name[i+1:]
	}
	return name
}
