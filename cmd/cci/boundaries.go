package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var boundariesFormat string

var boundariesCmd = &cobra.Command{
	Use:   "boundaries <module>",
	Short: "Show a module's public interface and dependency edges",
	Long: `Report the public/internal symbol split for a module plus which other
modules it depends on and which depend on it. The module name matches
against file paths; MODULES.toml declarations refine the grouping used by
the architecture map.

Examples:
  cci boundaries payments
  cci boundaries --format=human auth`,
	Args: cobra.ExactArgs(1),
	Run:  runBoundaries,
}

func init() {
	boundariesCmd.Flags().StringVar(&boundariesFormat, "format", "json", "Output format (json, human)")
	rootCmd.AddCommand(boundariesCmd)
}

func runBoundaries(cmd *cobra.Command, args []string) {
	start := time.Now()
	logger := newLogger(boundariesFormat)
	moduleName := args[0]

	repoRoot := mustGetRepoRoot()
	engine := mustGetEngine(repoRoot, logger)

	mb, ok := engine.GetModuleBoundaries(moduleName)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: no files belong to module %q\n", moduleName)
		os.Exit(1)
	}

	output, err := FormatResponse(&mb, OutputFormat(boundariesFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(output)

	logger.Debug("Boundaries completed", map[string]interface{}{
		"module":     moduleName,
		"public":     len(mb.PublicInterface),
		"internal":   len(mb.InternalSymbols),
		"durationMs": time.Since(start).Milliseconds(),
	})
}
