package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"cci/internal/errors"
)

const jsonSnapshot = `{
  "id": "snap-json",
  "files": [
    {
      "path": "src/app.py",
      "file_purpose": "entrypoint",
      "symbols": [
        {
          "id": "src/app.py::main",
          "name": "main",
          "symbol_type": "function",
          "line_start": 1,
          "line_end": 10,
          "is_exported": true,
          "is_private": false
        }
      ],
      "dependencies": ["src/util.py"],
      "function_dependencies": [
        {"from_symbol_id": "src/app.py::main", "to_symbol_id": "src/util.py::helper"}
      ]
    }
  ]
}`

const yamlSnapshot = `id: snap-yaml
files:
  - path: src/app.py
    symbols:
      - id: src/app.py::main
        name: main
        symbol_type: function
        line_start: 1
        line_end: 10
        is_exported: true
        is_private: false
    dependencies: []
    function_dependencies: []
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadJSON(t *testing.T) {
	path := writeTemp(t, "snapshot.json", jsonSnapshot)

	snap, err := Load(path, FormatJSON)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if snap.ID != "snap-json" {
		t.Errorf("ID = %q, want snap-json", snap.ID)
	}
	if snap.FileCount() != 1 || snap.SymbolCount() != 1 {
		t.Errorf("counts = %d files / %d symbols, want 1/1", snap.FileCount(), snap.SymbolCount())
	}
	file := snap.Files[0]
	if file.Purpose != "entrypoint" {
		t.Errorf("Purpose = %q, want entrypoint", file.Purpose)
	}
	if len(file.FunctionDependencies) != 1 || file.FunctionDependencies[0].ToSymbol != "src/util.py::helper" {
		t.Errorf("unexpected call edges: %+v", file.FunctionDependencies)
	}
	sym := file.Symbols[0]
	if sym.Name != "main" || sym.Kind != KindFunction || !sym.IsExported {
		t.Errorf("unexpected symbol: %+v", sym)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeTemp(t, "snapshot.yaml", yamlSnapshot)

	snap, err := Load(path, FormatYAML)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if snap.ID != "snap-yaml" {
		t.Errorf("ID = %q, want snap-yaml", snap.ID)
	}
	if snap.Files[0].Symbols[0].LineEnd != 10 {
		t.Errorf("LineEnd = %d, want 10", snap.Files[0].Symbols[0].LineEnd)
	}
}

func TestLoadAutoDetectsFormat(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"snapshot.json", jsonSnapshot},
		{"snapshot.yaml", yamlSnapshot},
		{"snapshot.yml", yamlSnapshot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemp(t, tt.name, tt.content)
			snap, err := Load(path, FormatAuto)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if snap.FileCount() != 1 {
				t.Errorf("FileCount() = %d, want 1", snap.FileCount())
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"), FormatAuto)
	if err == nil {
		t.Fatal("Load() expected error for missing file")
	}
	code, ok := errors.CodeOf(err)
	if !ok || code != errors.SnapshotMissing {
		t.Errorf("code = %q (ok=%v), want SNAPSHOT_MISSING", code, ok)
	}
}

func TestLoadMalformed(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		format Format
	}{
		{"bad json", "snapshot.json", FormatJSON},
		{"bad yaml", "snapshot.yaml", FormatYAML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemp(t, tt.file, "{not: [valid")
			_, err := Load(path, tt.format)
			if err == nil {
				t.Fatal("Load() expected error for malformed input")
			}
			code, _ := errors.CodeOf(err)
			if code != errors.SnapshotInvalid {
				t.Errorf("code = %q, want SNAPSHOT_INVALID", code)
			}
		})
	}
}

func TestLoadUnknownFormat(t *testing.T) {
	path := writeTemp(t, "snapshot.json", jsonSnapshot)
	_, err := Load(path, Format("xml"))
	if err == nil {
		t.Fatal("Load() expected error for unknown format")
	}
	code, _ := errors.CodeOf(err)
	if code != errors.ScopeInvalid {
		t.Errorf("code = %q, want SCOPE_INVALID", code)
	}
}

func TestEnsureID(t *testing.T) {
	snap := &Snapshot{}
	snap.EnsureID()
	if snap.ID == "" {
		t.Fatal("EnsureID() left ID empty")
	}
	first := snap.ID
	snap.EnsureID()
	if snap.ID != first {
		t.Errorf("EnsureID() replaced existing ID %q with %q", first, snap.ID)
	}

	other := &Snapshot{}
	other.EnsureID()
	if other.ID == first {
		t.Error("EnsureID() produced duplicate IDs for distinct snapshots")
	}
}

func TestLoadAssignsID(t *testing.T) {
	path := writeTemp(t, "snapshot.json", `{"files": []}`)
	snap, err := Load(path, FormatJSON)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if snap.ID == "" {
		t.Error("Load() did not assign an ID to an anonymous snapshot")
	}
}
