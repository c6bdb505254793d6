package trace

import (
	"context"
	"fmt"
	"testing"

	"cci/internal/graph"
	"cci/internal/index"
	"cci/internal/snapshot"
)

// chainSnapshot models foo (a.py) -> bar (b.py) -> baz (c.py)
func chainSnapshot() *snapshot.Snapshot {
	return &snapshot.Snapshot{
		ID: "snap-1",
		Files: []snapshot.FileAnalysis{
			{
				Path: "a.py",
				Symbols: []snapshot.Symbol{
					{ID: "a.py::foo", Name: "foo", Kind: snapshot.KindFunction, LineStart: 1, LineEnd: 5},
				},
				FunctionDependencies: []snapshot.FunctionDependency{
					{FromSymbol: "a.py::foo", ToSymbol: "b.py::bar"},
				},
			},
			{
				Path: "b.py",
				Symbols: []snapshot.Symbol{
					{ID: "b.py::bar", Name: "bar", Kind: snapshot.KindFunction, LineStart: 3, LineEnd: 9},
				},
				FunctionDependencies: []snapshot.FunctionDependency{
					{FromSymbol: "b.py::bar", ToSymbol: "c.py::baz"},
				},
			},
			{
				Path: "c.py",
				Symbols: []snapshot.Symbol{
					{ID: "c.py::baz", Name: "baz", Kind: snapshot.KindFunction, LineStart: 2, LineEnd: 4},
				},
			},
		},
	}
}

func newTestTracer(snap *snapshot.Snapshot, maxVisit int) *Tracer {
	ix := index.NewBuilder(snap).Build()
	g := graph.NewBuilder(snap, ix).Build()
	return NewTracer(ix, g, maxVisit)
}

func symbolsOf(path []Node) []string {
	out := make([]string, 0, len(path))
	for _, n := range path {
		out = append(out, n.SymbolName)
	}
	return out
}

func TestTraceBothDirections(t *testing.T) {
	tr := newTestTracer(chainSnapshot(), 0)

	chain := tr.Trace(context.Background(), "bar", Both, 2)

	if chain.Target.SymbolName != "bar" || chain.Target.FilePath != "b.py" {
		t.Fatalf("target = %s in %s, want bar in b.py", chain.Target.SymbolName, chain.Target.FilePath)
	}
	if chain.Target.Depth != 0 {
		t.Errorf("target depth = %d, want 0", chain.Target.Depth)
	}

	if len(chain.Upstream) != 1 {
		t.Fatalf("upstream paths = %d, want 1", len(chain.Upstream))
	}
	if got := symbolsOf(chain.Upstream[0]); len(got) != 2 || got[0] != "bar" || got[1] != "foo" {
		t.Errorf("upstream path = %v, want [bar foo]", got)
	}

	if len(chain.Downstream) != 1 {
		t.Fatalf("downstream paths = %d, want 1", len(chain.Downstream))
	}
	if got := symbolsOf(chain.Downstream[0]); len(got) != 2 || got[0] != "bar" || got[1] != "baz" {
		t.Errorf("downstream path = %v, want [bar baz]", got)
	}

	if len(chain.EntryPoints) != 1 || chain.EntryPoints[0].SymbolName != "foo" {
		t.Errorf("entry points = %v, want [foo]", chain.EntryPoints)
	}
	if len(chain.LeafNodes) != 1 || chain.LeafNodes[0].SymbolName != "baz" {
		t.Errorf("leaf nodes = %v, want [baz]", chain.LeafNodes)
	}
}

func TestTraceDepthRecorded(t *testing.T) {
	tr := newTestTracer(chainSnapshot(), 0)

	chain := tr.Trace(context.Background(), "foo", Downstream, 3)
	if len(chain.Downstream) != 1 {
		t.Fatalf("downstream paths = %d, want 1", len(chain.Downstream))
	}
	path := chain.Downstream[0]
	if len(path) != 3 {
		t.Fatalf("path length = %d, want 3", len(path))
	}
	for i, node := range path {
		if node.Depth != i {
			t.Errorf("node %d depth = %d, want %d", i, node.Depth, i)
		}
	}
}

func TestTraceUnknownSymbol(t *testing.T) {
	tr := newTestTracer(chainSnapshot(), 0)

	chain := tr.Trace(context.Background(), "nonexistent", Both, 3)

	if chain.Target.FilePath != index.NotFoundFile {
		t.Errorf("target file = %q, want %q", chain.Target.FilePath, index.NotFoundFile)
	}
	if chain.Target.SymbolType != "unknown" {
		t.Errorf("target type = %q, want unknown", chain.Target.SymbolType)
	}
	if len(chain.Upstream) != 0 || len(chain.Downstream) != 0 {
		t.Error("unknown symbol should produce no paths")
	}
}

// cycleSnapshot models ping -> pong -> ping
func cycleSnapshot() *snapshot.Snapshot {
	return &snapshot.Snapshot{
		ID: "snap-cycle",
		Files: []snapshot.FileAnalysis{
			{
				Path: "loop.py",
				Symbols: []snapshot.Symbol{
					{ID: "loop.py::ping", Name: "ping", Kind: snapshot.KindFunction, LineStart: 1, LineEnd: 3},
					{ID: "loop.py::pong", Name: "pong", Kind: snapshot.KindFunction, LineStart: 5, LineEnd: 7},
				},
				FunctionDependencies: []snapshot.FunctionDependency{
					{FromSymbol: "loop.py::ping", ToSymbol: "loop.py::pong"},
					{FromSymbol: "loop.py::pong", ToSymbol: "loop.py::ping"},
				},
			},
		},
	}
}

func TestTraceCycleTerminates(t *testing.T) {
	tr := newTestTracer(cycleSnapshot(), 0)

	// Depth bound below the cycle length: the revisit is reported as a
	// depth-limited path.
	chain := tr.Trace(context.Background(), "ping", Downstream, 2)
	if len(chain.Downstream) != 1 {
		t.Fatalf("downstream paths = %d, want 1", len(chain.Downstream))
	}
	if got := symbolsOf(chain.Downstream[0]); len(got) != 3 || got[2] != "ping" {
		t.Errorf("cycle path = %v, want [ping pong ping]", got)
	}

	// Deeper bound: the walk around the cycle exhausts visited symbols
	// before hitting the depth limit, so the path is not reported.
	chain = tr.Trace(context.Background(), "ping", Downstream, 10)
	if len(chain.Downstream) != 0 {
		t.Errorf("downstream paths = %d, want 0 once the cycle is fully visited", len(chain.Downstream))
	}
}

func TestTracePathCap(t *testing.T) {
	snap := &snapshot.Snapshot{ID: "snap-fanout"}
	hub := snapshot.FileAnalysis{
		Path: "hub.py",
		Symbols: []snapshot.Symbol{
			{ID: "hub.py::dispatch", Name: "dispatch", Kind: snapshot.KindFunction, LineStart: 1, LineEnd: 2},
		},
	}
	for i := 0; i < MaxPaths+5; i++ {
		name := fmt.Sprintf("handler_%02d", i)
		id := fmt.Sprintf("handlers.py::%s", name)
		hub.FunctionDependencies = append(hub.FunctionDependencies,
			snapshot.FunctionDependency{FromSymbol: "hub.py::dispatch", ToSymbol: id})
		snap.Files = append(snap.Files, snapshot.FileAnalysis{
			Path: "handlers.py",
			Symbols: []snapshot.Symbol{
				{ID: id, Name: name, Kind: snapshot.KindFunction, LineStart: i + 1, LineEnd: i + 2},
			},
		})
	}
	snap.Files = append(snap.Files, hub)

	tr := newTestTracer(snap, 0)
	chain := tr.Trace(context.Background(), "dispatch", Downstream, 1)

	if len(chain.Downstream) != MaxPaths {
		t.Errorf("downstream paths = %d, want cap %d", len(chain.Downstream), MaxPaths)
	}
}

func TestTraceVisitCeiling(t *testing.T) {
	tr := newTestTracer(chainSnapshot(), 1)

	chain := tr.Trace(context.Background(), "foo", Downstream, 5)
	if len(chain.Downstream) != 1 {
		t.Fatalf("downstream paths = %d, want 1", len(chain.Downstream))
	}
	// Only the start node may be expanded; the path is cut at bar.
	if got := symbolsOf(chain.Downstream[0]); len(got) != 2 || got[1] != "bar" {
		t.Errorf("path = %v, want [foo bar] under visit ceiling", got)
	}
}

func TestTraceCancelledContext(t *testing.T) {
	tr := newTestTracer(chainSnapshot(), 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	chain := tr.Trace(ctx, "foo", Downstream, 5)
	if chain.Target.SymbolName != "foo" {
		t.Fatalf("target = %q, want foo", chain.Target.SymbolName)
	}
	if len(chain.Downstream) != 0 {
		t.Errorf("downstream paths = %d, want 0 after cancellation", len(chain.Downstream))
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{"upstream", Upstream, false},
		{"downstream", Downstream, false},
		{"both", Both, false},
		{"sideways", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDirection(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDirection(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDirection(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDirection(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTerminalsDeduplicate(t *testing.T) {
	paths := [][]Node{
		{{SymbolName: "a", FilePath: "a.py"}, {SymbolName: "z", FilePath: "z.py"}},
		{{SymbolName: "b", FilePath: "b.py"}, {SymbolName: "z", FilePath: "z.py"}},
		{{SymbolName: "b", FilePath: "b.py"}, {SymbolName: "z", FilePath: "other.py"}},
	}

	got := terminals(paths)
	if len(got) != 2 {
		t.Fatalf("terminals = %d, want 2 (same symbol in two files stays distinct)", len(got))
	}
	if got[0].FilePath != "z.py" || got[1].FilePath != "other.py" {
		t.Errorf("terminal files = %q, %q", got[0].FilePath, got[1].FilePath)
	}
}
