package query

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cci/internal/index"
	"cci/internal/trace"
)

// ChangeType classifies a proposed code change
type ChangeType string

const (
	SignatureChange      ChangeType = "signature_change"
	ImplementationChange ChangeType = "implementation_change"
	Deletion             ChangeType = "deletion"
	Addition             ChangeType = "addition"
)

// ParseChangeType validates a change type string
func ParseChangeType(s string) (ChangeType, error) {
	switch ChangeType(s) {
	case SignatureChange, ImplementationChange, Deletion, Addition:
		return ChangeType(s), nil
	default:
		return "", fmt.Errorf("invalid change type %q", s)
	}
}

// RiskLevel is the coarse risk classification of a change
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// CodeChange describes a proposed change for impact analysis.
// Caller-supplied and never mutated by the engine.
type CodeChange struct {
	TargetSymbol string     `json:"target_symbol"`
	TargetFile   string     `json:"target_file"`
	Type         ChangeType `json:"change_type"`
	Description  string     `json:"description,omitempty"`
	LineRange    [2]int     `json:"line_range,omitempty"`
}

// ImpactAnalysis is the derived impact of a CodeChange.
// It is recomputed per call: risk depends on current graph state, so it is
// never cached keyed only by symbol name.
type ImpactAnalysis struct {
	Change          CodeChange       `json:"change"`
	DirectCallers   []index.Location `json:"direct_callers,omitempty"`
	IndirectCallers []index.Location `json:"indirect_callers,omitempty"`
	AffectedTests   []string         `json:"affected_tests,omitempty"`
	RiskLevel       RiskLevel        `json:"risk_level"`
	BreakingChanges []string         `json:"breaking_changes,omitempty"`
	MigrationNotes  []string         `json:"migration_notes,omitempty"`
}

// AnalyzeImpact estimates the blast radius of a proposed change.
//
// Direct callers come from a depth-1 upstream trace; indirect callers from a
// separate depth-3 trace (nodes at depth >= 2). Test impact is a filename
// convention check, not dependency analysis.
func (e *Engine) AnalyzeImpact(ctx context.Context, change CodeChange) ImpactAnalysis {
	e.build()

	analysis := ImpactAnalysis{Change: change, RiskLevel: RiskLow}

	direct := e.tracer.Trace(ctx, change.TargetSymbol, trace.Upstream, 1)
	for _, path := range direct.Upstream {
		if len(path) > 1 {
			analysis.DirectCallers = append(analysis.DirectCallers, locationOf(path[1]))
		}
	}

	// Re-traced rather than sliced from the depth-1 result: the visited-set
	// semantics differ by depth, so the counts would drift otherwise.
	extended := e.tracer.Trace(ctx, change.TargetSymbol, trace.Upstream, 3)
	for _, path := range extended.Upstream {
		if len(path) > 2 {
			for _, node := range path[2:] {
				analysis.IndirectCallers = append(analysis.IndirectCallers, locationOf(node))
			}
		}
	}

	analysis.AffectedTests = e.findAffectedTests(change.TargetFile)
	analysis.RiskLevel = assessRisk(change.Type, len(analysis.DirectCallers), len(analysis.IndirectCallers))

	switch change.Type {
	case SignatureChange:
		analysis.BreakingChanges = append(analysis.BreakingChanges,
			fmt.Sprintf("Signature change in %s may break %d direct callers",
				change.TargetSymbol, len(analysis.DirectCallers)))
		analysis.MigrationNotes = append(analysis.MigrationNotes,
			fmt.Sprintf("Update all callers of %s to match new signature", change.TargetSymbol))
	case Deletion:
		analysis.BreakingChanges = append(analysis.BreakingChanges,
			fmt.Sprintf("Deletion of %s will break %d callers",
				change.TargetSymbol, len(analysis.DirectCallers)))
		analysis.MigrationNotes = append(analysis.MigrationNotes,
			fmt.Sprintf("Provide alternative implementation or migration path for %s", change.TargetSymbol))
	}

	e.logger.Debug("Impact analysis complete", map[string]interface{}{
		"symbol":   change.TargetSymbol,
		"type":     string(change.Type),
		"direct":   len(analysis.DirectCallers),
		"indirect": len(analysis.IndirectCallers),
		"risk":     string(analysis.RiskLevel),
	})

	return analysis
}

// assessRisk is monotonic non-decreasing in both caller counts for a fixed
// change type.
func assessRisk(changeType ChangeType, directCallers, indirectCallers int) RiskLevel {
	switch changeType {
	case Deletion, SignatureChange:
		if directCallers > 10 || indirectCallers > 20 {
			return RiskHigh
		}
		if directCallers > 3 || indirectCallers > 10 {
			return RiskMedium
		}
	case ImplementationChange:
		if directCallers > 20 {
			return RiskMedium
		}
	}
	return RiskLow
}

// testFilePatterns are the filename conventions checked for test impact,
// relative to the changed file's directory.
func testFilePatterns(stem string) []string {
	return []string{
		"test_" + stem + ".py",
		stem + "_test.py",
		filepath.Join("tests", "test_"+stem+".py"),
		filepath.Join("tests", stem+"_test.py"),
	}
}

// findAffectedTests existence-checks the conventional test file names for a
// changed file. Missing files are simply not affected; no error surface.
func (e *Engine) findAffectedTests(targetFile string) []string {
	if targetFile == "" {
		return nil
	}

	dir := filepath.Dir(targetFile)
	stem := strings.TrimSuffix(filepath.Base(targetFile), filepath.Ext(targetFile))

	var affected []string
	for _, pattern := range testFilePatterns(stem) {
		candidate := filepath.Join(dir, pattern)
		probe := candidate
		if !filepath.IsAbs(probe) {
			probe = filepath.Join(e.repoRoot, probe)
		}
		if _, err := os.Stat(probe); err == nil {
			affected = append(affected, candidate)
		}
	}
	return affected
}

func locationOf(node trace.Node) index.Location {
	return index.Location{
		FilePath:   node.FilePath,
		SymbolName: node.SymbolName,
		SymbolType: node.SymbolType,
		LineStart:  node.LineNumber,
		LineEnd:    node.LineNumber,
		Relevance:  1.0,
	}
}
