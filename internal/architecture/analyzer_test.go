package architecture

import (
	"reflect"
	"testing"

	"cci/internal/graph"
	"cci/internal/index"
	"cci/internal/snapshot"
)

func TestClassifyLayer(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"src/domain/order.py", "domain"},
		{"src/models/user.py", "domain"},
		{"src/application/checkout.py", "application"},
		{"src/services/payment_service.py", "application"},
		{"src/adapters/stripe.py", "infrastructure"},
		{"src/infrastructure/db.py", "infrastructure"},
		{"src/api/routes.py", "api"},
		{"src/controllers/order_controller.py", "api"},
		{"src/cli/main.py", "cli"},
		{"src/util/strings.py", "other"},
		// First matching rule wins: domain beats api.
		{"src/domain/api_gateway.py", "domain"},
	}
	for _, tt := range tests {
		if got := ClassifyLayer(tt.path); got != tt.want {
			t.Errorf("ClassifyLayer(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func archSnapshot() *snapshot.Snapshot {
	return &snapshot.Snapshot{
		ID: "snap-arch",
		Files: []snapshot.FileAnalysis{
			{
				Path:    "app/main.py",
				Purpose: "entrypoint",
				Symbols: []snapshot.Symbol{
					{ID: "app/main.py::main", Name: "main", Kind: snapshot.KindFunction, LineStart: 1, LineEnd: 10},
				},
				Dependencies: []string{"app/services/payment_service.py"},
			},
			{
				Path: "app/services/payment_service.py",
				Symbols: []snapshot.Symbol{
					{ID: "svc::PaymentService", Name: "PaymentService", Kind: snapshot.KindClass, IsExported: true, LineStart: 1, LineEnd: 50},
				},
				Dependencies: []string{"app/domain/order.py"},
			},
			{
				Path: "app/domain/order.py",
				Symbols: []snapshot.Symbol{
					{ID: "domain::Order", Name: "Order", Kind: snapshot.KindClass, IsExported: true, LineStart: 1, LineEnd: 30},
					{ID: "domain::order_hidden", Name: "_hidden", Kind: snapshot.KindClass, IsExported: false, LineStart: 31, LineEnd: 40},
				},
			},
			{
				Path: "app/adapters/stripe_adapter.py",
				Symbols: []snapshot.Symbol{
					{ID: "adapter::StripeAdapter", Name: "StripeAdapter", Kind: snapshot.KindClass, IsExported: true, LineStart: 1, LineEnd: 20},
				},
				Dependencies: []string{"app/domain/order.py"},
			},
		},
	}
}

func newTestAnalyzer(snap *snapshot.Snapshot) *Analyzer {
	ix := index.NewBuilder(snap).Build()
	g := graph.NewBuilder(snap, ix).Build()
	return NewAnalyzer(snap, g)
}

func TestAnalyzeLayers(t *testing.T) {
	m := newTestAnalyzer(archSnapshot()).Analyze()

	if got := m.Layers["domain"]; len(got) != 1 || got[0] != "app/domain/order.py" {
		t.Errorf("domain layer = %v", got)
	}
	if got := m.Layers["application"]; len(got) != 1 {
		t.Errorf("application layer = %v", got)
	}
	if got := m.Layers["infrastructure"]; len(got) != 1 {
		t.Errorf("infrastructure layer = %v", got)
	}
	// main.py matches no rule and lands in other.
	if got := m.Layers["other"]; len(got) != 1 || got[0] != "app/main.py" {
		t.Errorf("other layer = %v", got)
	}
}

func TestAnalyzeEntryPoints(t *testing.T) {
	m := newTestAnalyzer(archSnapshot()).Analyze()

	wantFile, wantSym := false, false
	for _, ep := range m.EntryPoints {
		if ep == "app/main.py" {
			wantFile = true
		}
		if ep == "app/main.py::main" {
			wantSym = true
		}
	}
	if !wantFile {
		t.Error("main.py not detected as entry point file")
	}
	if !wantSym {
		t.Error("main function not detected as entry point symbol")
	}
}

func TestAnalyzeKeyAbstractions(t *testing.T) {
	m := newTestAnalyzer(archSnapshot()).Analyze()

	want := []string{"Order", "PaymentService", "StripeAdapter"}
	if !reflect.DeepEqual(m.KeyAbstractions, want) {
		t.Errorf("KeyAbstractions = %v, want %v (exported classes, name order on count ties)", m.KeyAbstractions, want)
	}
}

func TestAnalyzePatterns(t *testing.T) {
	m := newTestAnalyzer(archSnapshot()).Analyze()

	if got := m.DesignPatterns["adapter"]; len(got) != 1 || got[0] != "app/adapters/stripe_adapter.py" {
		t.Errorf("adapter pattern = %v", got)
	}
	if got := m.DesignPatterns["service"]; len(got) != 1 {
		t.Errorf("service pattern = %v", got)
	}
	// Purpose tags union into the pattern map.
	if got := m.DesignPatterns["entrypoint"]; len(got) != 1 || got[0] != "app/main.py" {
		t.Errorf("entrypoint purpose tag = %v", got)
	}
}

func TestAnalyzeCoreComponents(t *testing.T) {
	m := newTestAnalyzer(archSnapshot()).Analyze()

	if len(m.CoreComponents) != 4 {
		t.Fatalf("core components = %d, want 4", len(m.CoreComponents))
	}
	// order.py has two incoming deps, the highest degree.
	if m.CoreComponents[0] != "app/domain/order.py" {
		t.Errorf("top core component = %q, want app/domain/order.py", m.CoreComponents[0])
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	a := newTestAnalyzer(archSnapshot())
	first := a.Analyze()
	second := a.Analyze()

	if !reflect.DeepEqual(first, second) {
		t.Error("Analyze is not deterministic across calls")
	}
}

func TestModulesDefaultGrouping(t *testing.T) {
	m := newTestAnalyzer(archSnapshot()).Analyze()

	files, ok := m.Modules["app"]
	if !ok {
		t.Fatal("expected first-segment module app")
	}
	if len(files) != 4 {
		t.Errorf("module app has %d files, want 4", len(files))
	}
}

func TestModulesManifestOverride(t *testing.T) {
	a := newTestAnalyzer(archSnapshot()).WithManifest([]ModuleDeclaration{
		{Name: "payments", Path: "app/services"},
	})
	m := a.Analyze()

	files, ok := m.Modules["payments"]
	if !ok {
		t.Fatal("declared module payments missing from map")
	}
	if len(files) != 1 || files[0] != "app/services/payment_service.py" {
		t.Errorf("payments module files = %v", files)
	}
	// Undeclared paths keep the default grouping.
	if got := m.Modules["app"]; len(got) != 3 {
		t.Errorf("app module files = %v, want 3 remaining", got)
	}
}

func TestAnalyzeNilSnapshot(t *testing.T) {
	a := NewAnalyzer(nil, nil)
	m := a.Analyze()

	if len(m.Layers) != 0 || len(m.Modules) != 0 {
		t.Errorf("nil snapshot should yield empty map, got %+v", m)
	}
}
