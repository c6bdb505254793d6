package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var archFormat string

var archCmd = &cobra.Command{
	Use:   "arch",
	Short: "Show the high-level architecture of the codebase",
	Long: `Analyze the snapshot and report architectural layers, module groupings,
key abstractions, design patterns, entry points, and the most-connected
core components.

Examples:
  cci arch
  cci arch --format=human`,
	Args: cobra.NoArgs,
	Run:  runArch,
}

func init() {
	archCmd.Flags().StringVar(&archFormat, "format", "json", "Output format (json, human)")
	rootCmd.AddCommand(archCmd)
}

func runArch(cmd *cobra.Command, args []string) {
	start := time.Now()
	logger := newLogger(archFormat)

	repoRoot := mustGetRepoRoot()
	engine := mustGetEngine(repoRoot, logger)
	ctx := newContext()

	archMap := engine.UnderstandArchitecture(ctx)

	output, err := FormatResponse(&archMap, OutputFormat(archFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(output)

	logger.Debug("Architecture analysis completed", map[string]interface{}{
		"modules":    len(archMap.Modules),
		"layers":     len(archMap.Layers),
		"durationMs": time.Since(start).Milliseconds(),
	})
}
