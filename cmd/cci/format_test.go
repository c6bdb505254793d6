package main

import (
	"strings"
	"testing"

	"cci/internal/cache"
	"cci/internal/index"
	"cci/internal/query"
)

func sampleTraceResponse() *TraceResponseCLI {
	return &TraceResponseCLI{
		Target: "process_payment",
		Upstream: [][]PathNodeCLI{
			{
				{Symbol: "process_payment", File: "src/services.py", Line: 10, Kind: "function", Depth: 0},
				{Symbol: "handle_request", File: "src/api.py", Line: 5, Kind: "function", Depth: 1},
			},
		},
		Downstream: [][]PathNodeCLI{
			{
				{Symbol: "process_payment", File: "src/services.py", Line: 10, Kind: "function", Depth: 0},
				{Symbol: "validate_card", File: "src/validators.py", Line: 3, Kind: "function", Depth: 1},
			},
		},
		EntryPoints: []PathNodeCLI{{Symbol: "handle_request", File: "src/api.py", Line: 5}},
		LeafNodes:   []PathNodeCLI{{Symbol: "validate_card", File: "src/validators.py", Line: 3}},
	}
}

func TestFormatResponseJSONDeterministic(t *testing.T) {
	resp := sampleTraceResponse()

	first, err := FormatResponse(resp, FormatJSON)
	if err != nil {
		t.Fatalf("FormatResponse() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		next, err := FormatResponse(resp, FormatJSON)
		if err != nil {
			t.Fatalf("FormatResponse() error = %v", err)
		}
		if next != first {
			t.Fatalf("run %d differs from first output", i)
		}
	}
	if !strings.Contains(first, `"target": "process_payment"`) {
		t.Errorf("JSON output missing target field:\n%s", first)
	}
}

func TestFormatResponseUnsupportedFormat(t *testing.T) {
	_, err := FormatResponse(sampleTraceResponse(), OutputFormat("xml"))
	if err == nil {
		t.Fatal("FormatResponse() expected error for unsupported format")
	}
}

func TestFormatTraceHuman(t *testing.T) {
	got, err := FormatResponse(sampleTraceResponse(), FormatHuman)
	if err != nil {
		t.Fatalf("FormatResponse() error = %v", err)
	}

	for _, want := range []string{
		"Call Chain: process_payment",
		"Upstream (1 paths):",
		"process_payment (src/services.py:10) -> handle_request (src/api.py:5)",
		"Downstream (1 paths):",
		"Entry Points:",
		"Leaf Dependencies:",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("human output missing %q:\n%s", want, got)
		}
	}
}

func TestFormatTraceHumanNotFound(t *testing.T) {
	got, err := FormatResponse(&TraceResponseCLI{Target: "ghost", NotFound: true}, FormatHuman)
	if err != nil {
		t.Fatalf("FormatResponse() error = %v", err)
	}
	if !strings.Contains(got, "Symbol not found in snapshot.") {
		t.Errorf("human output missing not-found notice:\n%s", got)
	}
	if strings.Contains(got, "Upstream") {
		t.Errorf("not-found output should not list paths:\n%s", got)
	}
}

func TestFormatImpactHuman(t *testing.T) {
	analysis := &query.ImpactAnalysis{
		Change: query.CodeChange{
			TargetSymbol: "process_payment",
			Type:         query.Deletion,
		},
		RiskLevel: query.RiskHigh,
		DirectCallers: []index.Location{
			{SymbolName: "handle_request", FilePath: "src/api.py", LineStart: 5},
		},
		BreakingChanges: []string{"Deletion of process_payment will break 1 callers"},
		MigrationNotes:  []string{"Find alternative implementations for process_payment functionality"},
	}

	got, err := FormatResponse(analysis, FormatHuman)
	if err != nil {
		t.Fatalf("FormatResponse() error = %v", err)
	}
	for _, want := range []string{
		"Impact Analysis: process_payment",
		"Risk Level: high",
		"Direct Callers: 1",
		"! Deletion of process_payment will break 1 callers",
		"Migration Notes:",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("human output missing %q:\n%s", want, got)
		}
	}
}

func TestFormatCacheStatsHuman(t *testing.T) {
	got, err := FormatResponse(&cache.Stats{Hits: 3, Misses: 1, HitRate: 0.75, MemoryItems: 7}, FormatHuman)
	if err != nil {
		t.Fatalf("FormatResponse() error = %v", err)
	}
	for _, want := range []string{"Hits: 3", "Misses: 1", "Hit Rate: 75.0%", "Memory Items: 7"} {
		if !strings.Contains(got, want) {
			t.Errorf("human output missing %q:\n%s", want, got)
		}
	}
}

func TestFormatHumanUnknownTypeFallsBackToJSON(t *testing.T) {
	got, err := FormatResponse(map[string]string{"status": "ok"}, FormatHuman)
	if err != nil {
		t.Fatalf("FormatResponse() error = %v", err)
	}
	if !strings.Contains(got, `"status": "ok"`) {
		t.Errorf("fallback output is not JSON:\n%s", got)
	}
}
