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
	locateFormat       string
	locateExcludeTests bool
	locateExcludePaths []string
	locateMinScore     float64
	locateLimit        int
)

var locateCmd = &cobra.Command{
	Use:   "locate <query>",
	Short: "Find symbols matching a natural-language description",
	Long: `Search indexed symbols by keyword overlap with the query, ranked by
relevance.

Examples:
  cci locate "payment processing"
  cci locate --exclude-tests --min-score=0.5 "user validation"
  cci locate --exclude-path='vendor/**' "session handling"`,
	Args: cobra.ExactArgs(1),
	Run:  runLocate,
}

func init() {
	locateCmd.Flags().StringVar(&locateFormat, "format", "json", "Output format (json, human)")
	locateCmd.Flags().BoolVar(&locateExcludeTests, "exclude-tests", false, "Drop matches in test files")
	locateCmd.Flags().StringArrayVar(&locateExcludePaths, "exclude-path", nil, "Glob patterns to drop (repeatable)")
	locateCmd.Flags().Float64Var(&locateMinScore, "min-score", 0, "Minimum relevance score")
	locateCmd.Flags().IntVar(&locateLimit, "limit", 0, "Maximum results (0 = engine default)")
	rootCmd.AddCommand(locateCmd)
}

func runLocate(cmd *cobra.Command, args []string) {
	start := time.Now()
	logger := newLogger(locateFormat)
	queryText := args[0]

	repoRoot := mustGetRepoRoot()
	engine := mustGetEngine(repoRoot, logger)

	matches := engine.LocateImplementation(queryText)

	opts := query.FilterOptions{
		ExcludeTests: locateExcludeTests,
		ExcludePaths: locateExcludePaths,
		Limit:        locateLimit,
	}
	if locateMinScore > 0 {
		opts.MinSimilarity = &locateMinScore
	}
	matches = query.FilterAndDenoise(matches, opts)

	response := &LocateResponseCLI{Query: queryText, Matches: matches}

	output, err := FormatResponse(response, OutputFormat(locateFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(output)

	logger.Debug("Locate completed", map[string]interface{}{
		"query":      queryText,
		"matches":    len(matches),
		"durationMs": time.Since(start).Milliseconds(),
	})
}

// LocateResponseCLI contains search results for CLI output
type LocateResponseCLI struct {
	Query   string           `json:"query"`
	Matches []index.Location `json:"matches"`
}
