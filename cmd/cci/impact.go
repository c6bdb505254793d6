package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"cci/internal/query"
)

var (
	impactFormat      string
	impactChangeType  string
	impactFile        string
	impactDescription string
)

var impactCmd = &cobra.Command{
	Use:   "impact <symbol>",
	Short: "Analyze the blast radius of a proposed change",
	Long: `Estimate what breaks when a symbol changes: direct callers, indirect
callers, affected test files, a risk level, and migration notes.

Examples:
  cci impact process_payment
  cci impact --change-type=deletion old_handler
  cci impact --change-type=signature_change --file=src/payments.py process_payment`,
	Args: cobra.ExactArgs(1),
	Run:  runImpact,
}

func init() {
	impactCmd.Flags().StringVar(&impactFormat, "format", "json", "Output format (json, human)")
	impactCmd.Flags().StringVar(&impactChangeType, "change-type", "implementation_change",
		"Change type (signature_change, implementation_change, deletion, addition)")
	impactCmd.Flags().StringVar(&impactFile, "file", "", "File containing the symbol")
	impactCmd.Flags().StringVar(&impactDescription, "description", "", "Free-form change description")
	rootCmd.AddCommand(impactCmd)
}

func runImpact(cmd *cobra.Command, args []string) {
	start := time.Now()
	logger := newLogger(impactFormat)
	symbol := args[0]

	changeType, err := query.ParseChangeType(impactChangeType)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	repoRoot := mustGetRepoRoot()
	engine := mustGetEngine(repoRoot, logger)
	ctx := newContext()

	targetFile := impactFile
	if targetFile == "" {
		if loc, ok := engine.Index().ResolveOne(symbol); ok {
			targetFile = loc.FilePath
		}
	}

	analysis := engine.AnalyzeImpact(ctx, query.CodeChange{
		TargetSymbol: symbol,
		TargetFile:   targetFile,
		Type:         changeType,
		Description:  impactDescription,
	})

	output, err := FormatResponse(&analysis, OutputFormat(impactFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(output)

	logger.Debug("Impact analysis completed", map[string]interface{}{
		"symbol":     symbol,
		"risk":       string(analysis.RiskLevel),
		"direct":     len(analysis.DirectCallers),
		"indirect":   len(analysis.IndirectCallers),
		"durationMs": time.Since(start).Milliseconds(),
	})
}
