package main

import (
	"fmt"
	"strings"

	"cci/internal/architecture"
	"cci/internal/cache"
	"cci/internal/output"
	"cci/internal/query"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// formatJSON formats the response as deterministic JSON
func formatJSON(resp interface{}) (string, error) {
	data, err := output.DeterministicEncodeIndented(resp, "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// formatHuman formats the response in human-readable format
func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *TraceResponseCLI:
		return formatTraceHuman(v)
	case *architecture.Map:
		return formatArchHuman(v)
	case *query.PreciseContext:
		return formatContextHuman(v)
	case *query.CompressedContext:
		return formatCompressedHuman(v)
	case *query.ImpactAnalysis:
		return formatImpactHuman(v)
	case *LocateResponseCLI:
		return formatLocateHuman(v)
	case *query.ModuleBoundaries:
		return formatBoundariesHuman(v)
	case *EntryPointsResponseCLI:
		return formatEntryPointsHuman(v)
	case *cache.Stats:
		return formatCacheStatsHuman(v)
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

func formatTraceHuman(resp *TraceResponseCLI) (string, error) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Call Chain: %s\n", resp.Target))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	if resp.NotFound {
		b.WriteString("Symbol not found in snapshot.\n")
		return b.String(), nil
	}

	writePaths := func(label string, paths [][]PathNodeCLI) {
		if len(paths) == 0 {
			return
		}
		b.WriteString(fmt.Sprintf("%s (%d paths):\n", label, len(paths)))
		for i, path := range paths {
			parts := make([]string, 0, len(path))
			for _, n := range path {
				parts = append(parts, fmt.Sprintf("%s (%s:%d)", n.Symbol, n.File, n.Line))
			}
			b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, strings.Join(parts, " -> ")))
		}
		b.WriteString("\n")
	}

	writePaths("Upstream", resp.Upstream)
	writePaths("Downstream", resp.Downstream)

	if len(resp.EntryPoints) > 0 {
		b.WriteString("Entry Points:\n")
		for _, ep := range resp.EntryPoints {
			b.WriteString(fmt.Sprintf("  - %s (%s:%d)\n", ep.Symbol, ep.File, ep.Line))
		}
		b.WriteString("\n")
	}
	if len(resp.LeafNodes) > 0 {
		b.WriteString("Leaf Dependencies:\n")
		for _, leaf := range resp.LeafNodes {
			b.WriteString(fmt.Sprintf("  - %s (%s:%d)\n", leaf.Symbol, leaf.File, leaf.Line))
		}
	}

	return b.String(), nil
}

func formatArchHuman(m *architecture.Map) (string, error) {
	var b strings.Builder

	b.WriteString("Architecture Overview\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	b.WriteString("Layers:\n")
	for _, layer := range []string{"domain", "application", "infrastructure", "api", "cli", "other"} {
		files := m.Layers[layer]
		if len(files) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("  %s: %d files\n", layer, len(files)))
	}
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("Modules: %d\n", len(m.Modules)))
	for name, files := range m.Modules {
		b.WriteString(fmt.Sprintf("  %s: %d files\n", name, len(files)))
	}
	b.WriteString("\n")

	if len(m.KeyAbstractions) > 0 {
		b.WriteString(fmt.Sprintf("Key Abstractions: %s\n", strings.Join(m.KeyAbstractions, ", ")))
	}
	if len(m.EntryPoints) > 0 {
		b.WriteString(fmt.Sprintf("Entry Points: %s\n", strings.Join(m.EntryPoints, ", ")))
	}
	if len(m.CoreComponents) > 0 {
		b.WriteString("Core Components:\n")
		for _, c := range m.CoreComponents {
			b.WriteString(fmt.Sprintf("  - %s\n", c))
		}
	}
	if len(m.DesignPatterns) > 0 {
		b.WriteString("Design Patterns:\n")
		for name, files := range m.DesignPatterns {
			b.WriteString(fmt.Sprintf("  %s: %d files\n", name, len(files)))
		}
	}

	return b.String(), nil
}

func formatContextHuman(pc *query.PreciseContext) (string, error) {
	var b strings.Builder

	b.WriteString("Extracted Context\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	b.WriteString(fmt.Sprintf("Token Estimate: %d\n", pc.TokenEstimate))
	layers := make([]string, 0, len(pc.LayersIncluded))
	for _, l := range pc.LayersIncluded {
		layers = append(layers, string(l))
	}
	b.WriteString(fmt.Sprintf("Layers: %s\n\n", strings.Join(layers, ", ")))

	if pc.TargetCode != nil {
		b.WriteString(fmt.Sprintf("Target: %s (%s:%d-%d)\n",
			pc.TargetCode.Symbol, pc.TargetCode.File,
			pc.TargetCode.LineRange[0], pc.TargetCode.LineRange[1]))
		if pc.TargetCode.Signature != "" {
			b.WriteString(fmt.Sprintf("Signature: %s\n", pc.TargetCode.Signature))
		}
		if pc.TargetCode.Code != "" {
			b.WriteString("\n" + pc.TargetCode.Code + "\n")
		}
		b.WriteString("\n")
	}

	if len(pc.DirectDependencies) > 0 {
		b.WriteString("Direct Dependencies:\n")
		for _, d := range pc.DirectDependencies {
			b.WriteString(fmt.Sprintf("  - %s (%s:%d)\n", d.Name, d.File, d.Line))
		}
		b.WriteString("\n")
	}

	if pc.CallChain != nil {
		b.WriteString(fmt.Sprintf("Call Chain: %d upstream, %d downstream paths\n",
			len(pc.CallChain.Upstream), len(pc.CallChain.Downstream)))
	}
	if len(pc.SimilarPatterns) > 0 {
		b.WriteString("Similar Patterns:\n")
		for _, p := range pc.SimilarPatterns {
			b.WriteString(fmt.Sprintf("  - %s (%s:%d)\n", p.Symbol, p.File, p.Line))
		}
	}
	if pc.ImpactAnalysis != nil {
		b.WriteString(fmt.Sprintf("Impact Risk: %s\n", pc.ImpactAnalysis.RiskLevel))
	}

	return b.String(), nil
}

func formatCompressedHuman(cc *query.CompressedContext) (string, error) {
	var b strings.Builder

	b.WriteString("Compressed Context\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	b.WriteString(fmt.Sprintf("Token Estimate: %d\n", cc.TokenEstimate))
	layers := make([]string, 0, len(cc.LayersIncluded))
	for _, l := range cc.LayersIncluded {
		layers = append(layers, string(l))
	}
	b.WriteString(fmt.Sprintf("Layers: %s\n\n", strings.Join(layers, ", ")))

	if cc.TargetCode != nil {
		b.WriteString(fmt.Sprintf("Target: %s (%s)\n", cc.TargetCode.Symbol, cc.TargetCode.File))
		if cc.TargetCode.Code != "" {
			b.WriteString("\n" + cc.TargetCode.Code + "\n")
		}
	}
	if cc.CallChain != nil {
		b.WriteString(fmt.Sprintf("\nCall Chain: %d upstream, %d downstream paths\n",
			cc.CallChain.UpstreamCount, cc.CallChain.DownstreamCount))
	}

	return b.String(), nil
}

func formatImpactHuman(ia *query.ImpactAnalysis) (string, error) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Impact Analysis: %s\n", ia.Change.TargetSymbol))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	b.WriteString(fmt.Sprintf("Change Type: %s\n", ia.Change.Type))
	b.WriteString(fmt.Sprintf("Risk Level: %s\n\n", ia.RiskLevel))

	b.WriteString(fmt.Sprintf("Direct Callers: %d\n", len(ia.DirectCallers)))
	for _, c := range ia.DirectCallers {
		b.WriteString(fmt.Sprintf("  - %s (%s:%d)\n", c.SymbolName, c.FilePath, c.LineStart))
	}
	b.WriteString(fmt.Sprintf("Indirect Callers: %d\n", len(ia.IndirectCallers)))

	if len(ia.AffectedTests) > 0 {
		b.WriteString("\nAffected Tests:\n")
		for _, t := range ia.AffectedTests {
			b.WriteString(fmt.Sprintf("  - %s\n", t))
		}
	}
	if len(ia.BreakingChanges) > 0 {
		b.WriteString("\nBreaking Changes:\n")
		for _, bc := range ia.BreakingChanges {
			b.WriteString(fmt.Sprintf("  ! %s\n", bc))
		}
	}
	if len(ia.MigrationNotes) > 0 {
		b.WriteString("\nMigration Notes:\n")
		for _, n := range ia.MigrationNotes {
			b.WriteString(fmt.Sprintf("  - %s\n", n))
		}
	}

	return b.String(), nil
}

func formatLocateHuman(resp *LocateResponseCLI) (string, error) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Results for: %s\n", resp.Query))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	b.WriteString(fmt.Sprintf("Found %d matches\n\n", len(resp.Matches)))

	for i, m := range resp.Matches {
		b.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, m.SymbolName, m.SymbolType))
		b.WriteString(fmt.Sprintf("   Location: %s:%d\n", m.FilePath, m.LineStart))
		b.WriteString(fmt.Sprintf("   Relevance: %.2f\n\n", m.Relevance))
	}

	return b.String(), nil
}

func formatBoundariesHuman(mb *query.ModuleBoundaries) (string, error) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Module: %s\n", mb.ModuleName))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	b.WriteString(fmt.Sprintf("Public Interface: %d symbols\n", len(mb.PublicInterface)))
	for _, s := range mb.PublicInterface {
		b.WriteString(fmt.Sprintf("  - %s (%s)\n", s.Name, s.Kind))
	}
	b.WriteString(fmt.Sprintf("Internal Symbols: %d\n\n", len(mb.InternalSymbols)))

	if len(mb.Dependencies) > 0 {
		b.WriteString(fmt.Sprintf("Depends On: %s\n", strings.Join(mb.Dependencies, ", ")))
	}
	if len(mb.Dependents) > 0 {
		b.WriteString(fmt.Sprintf("Depended On By: %s\n", strings.Join(mb.Dependents, ", ")))
	}

	return b.String(), nil
}

func formatEntryPointsHuman(resp *EntryPointsResponseCLI) (string, error) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Entry Points Reaching: %s\n", resp.Symbol))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	for _, ep := range resp.EntryPoints {
		b.WriteString(fmt.Sprintf("  - %s (%s:%d) depth %d\n",
			ep.SymbolName, ep.FilePath, ep.LineNumber, ep.CallDepth))
	}
	if len(resp.Leaves) > 0 {
		b.WriteString("\nLeaf Dependencies:\n")
		for _, leaf := range resp.Leaves {
			b.WriteString(fmt.Sprintf("  - %s (%s:%d)\n", leaf.SymbolName, leaf.FilePath, leaf.LineStart))
		}
	}

	return b.String(), nil
}

func formatCacheStatsHuman(st *cache.Stats) (string, error) {
	var b strings.Builder

	b.WriteString("Cache Statistics\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	b.WriteString(fmt.Sprintf("  Hits: %d\n", st.Hits))
	b.WriteString(fmt.Sprintf("  Misses: %d\n", st.Misses))
	b.WriteString(fmt.Sprintf("  Hit Rate: %.1f%%\n", st.HitRate*100))
	b.WriteString(fmt.Sprintf("  Memory Items: %d\n", st.MemoryItems))

	return b.String(), nil
}
