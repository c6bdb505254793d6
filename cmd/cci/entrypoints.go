package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"cci/internal/index"
	"cci/internal/query"
)

var (
	entryPointsFormat string
	entryPointsLeaves bool
)

var entryPointsCmd = &cobra.Command{
	Use:   "entrypoints <symbol>",
	Short: "Find the top-level callers that reach a symbol",
	Long: `Walk the caller graph upward from a symbol and report the topmost
observed callers. With --leaves, also report the bottom-level callees the
symbol eventually reaches.

Examples:
  cci entrypoints process_payment
  cci entrypoints --leaves process_payment`,
	Args: cobra.ExactArgs(1),
	Run:  runEntryPoints,
}

func init() {
	entryPointsCmd.Flags().StringVar(&entryPointsFormat, "format", "json", "Output format (json, human)")
	entryPointsCmd.Flags().BoolVar(&entryPointsLeaves, "leaves", false, "Also report leaf dependencies")
	rootCmd.AddCommand(entryPointsCmd)
}

func runEntryPoints(cmd *cobra.Command, args []string) {
	start := time.Now()
	logger := newLogger(entryPointsFormat)
	symbol := args[0]

	repoRoot := mustGetRepoRoot()
	engine := mustGetEngine(repoRoot, logger)
	ctx := newContext()

	response := &EntryPointsResponseCLI{
		Symbol:      symbol,
		EntryPoints: engine.FindEntryPoints(ctx, symbol),
	}
	if entryPointsLeaves {
		response.Leaves = engine.FindLeafDependencies(ctx, symbol)
	}

	output, err := FormatResponse(response, OutputFormat(entryPointsFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(output)

	logger.Debug("Entry point search completed", map[string]interface{}{
		"symbol":      symbol,
		"entryPoints": len(response.EntryPoints),
		"durationMs":  time.Since(start).Milliseconds(),
	})
}

// EntryPointsResponseCLI contains entry point results for CLI output
type EntryPointsResponseCLI struct {
	Symbol      string             `json:"symbol"`
	EntryPoints []query.EntryPoint `json:"entry_points"`
	Leaves      []index.Location   `json:"leaves,omitempty"`
}
