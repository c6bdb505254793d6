package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"cci/internal/query"
)

var (
	contextFormat   string
	contextBudget   int
	contextTask     string
	contextCompress int
)

var contextCmd = &cobra.Command{
	Use:   "context <symbol>",
	Short: "Extract token-budgeted context around a symbol",
	Long: `Assemble layered context for a symbol within a token budget. Layers are
added in priority order (core code, direct dependencies, call chains,
similar patterns) until the budget runs out.

Task types refine_change and impact_analysis additionally attach a change
impact report for the symbol.

Examples:
  cci context process_payment
  cci context --budget=4000 --task=bug_fix validate_card
  cci context --compress=2000 process_payment`,
	Args: cobra.ExactArgs(1),
	Run:  runContext,
}

func init() {
	contextCmd.Flags().StringVar(&contextFormat, "format", "json", "Output format (json, human)")
	contextCmd.Flags().IntVar(&contextBudget, "budget", 0, "Token budget (default from config)")
	contextCmd.Flags().StringVar(&contextTask, "task", "general", "Task type (general, bug_fix, refine_change, impact_analysis)")
	contextCmd.Flags().IntVar(&contextCompress, "compress", 0, "Compress output toward this token size (0 = off)")
	rootCmd.AddCommand(contextCmd)
}

func runContext(cmd *cobra.Command, args []string) {
	start := time.Now()
	logger := newLogger(contextFormat)
	symbol := args[0]

	repoRoot := mustGetRepoRoot()
	engine := mustGetEngine(repoRoot, logger)
	ctx := newContext()

	budget := contextBudget
	if budget <= 0 && sharedCfg != nil {
		budget = sharedCfg.Context.DefaultTokenBudget
	}

	pc := engine.ExtractPreciseContext(ctx, symbol, budget, contextTask)

	// Change-oriented tasks get the impact report attached.
	if pc.TargetCode != nil && (contextTask == "refine_change" || contextTask == "impact_analysis") {
		analysis := engine.AnalyzeImpact(ctx, query.CodeChange{
			TargetSymbol: symbol,
			TargetFile:   pc.TargetCode.File,
			Type:         query.ImplementationChange,
		})
		pc.ImpactAnalysis = &analysis
	}

	var resp interface{} = &pc
	if contextCompress > 0 {
		compressed := query.CompressContext(pc, contextCompress)
		resp = &compressed
	}

	output, err := FormatResponse(resp, OutputFormat(contextFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(output)

	logger.Debug("Context extraction completed", map[string]interface{}{
		"symbol":     symbol,
		"tokens":     pc.TokenEstimate,
		"layers":     len(pc.LayersIncluded),
		"durationMs": time.Since(start).Milliseconds(),
	})
}
