package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"cci/internal/index"
	"cci/internal/trace"
)

var (
	traceFormat    string
	traceDirection string
	traceMaxDepth  int
)

var traceCmd = &cobra.Command{
	Use:   "trace <symbol>",
	Short: "Trace call chains through a symbol",
	Long: `Trace upstream callers and downstream callees of a symbol through the
dependency graph.

Returns complete call paths, not just immediate neighbors, plus the entry
points that eventually reach the symbol and the leaf dependencies it
eventually calls.

Examples:
  cci trace process_payment
  cci trace --direction=upstream --max-depth=5 validate_card
  cci trace --format=human process_payment`,
	Args: cobra.ExactArgs(1),
	Run:  runTrace,
}

func init() {
	traceCmd.Flags().StringVar(&traceFormat, "format", "json", "Output format (json, human)")
	traceCmd.Flags().StringVar(&traceDirection, "direction", "both", "Trace direction (upstream, downstream, both)")
	traceCmd.Flags().IntVar(&traceMaxDepth, "max-depth", 3, "Maximum path depth")
	rootCmd.AddCommand(traceCmd)
}

func runTrace(cmd *cobra.Command, args []string) {
	start := time.Now()
	logger := newLogger(traceFormat)
	symbol := args[0]

	direction, err := trace.ParseDirection(traceDirection)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	repoRoot := mustGetRepoRoot()
	engine := mustGetEngine(repoRoot, logger)
	ctx := newContext()

	chain := engine.GetCallChain(ctx, symbol, direction, traceMaxDepth)
	response := convertTraceResponse(chain)

	output, err := FormatResponse(response, OutputFormat(traceFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(output)

	logger.Debug("Trace completed", map[string]interface{}{
		"symbol":     symbol,
		"upstream":   len(chain.Upstream),
		"downstream": len(chain.Downstream),
		"durationMs": time.Since(start).Milliseconds(),
	})
}

// TraceResponseCLI contains trace results for CLI output
type TraceResponseCLI struct {
	Target      string            `json:"target"`
	NotFound    bool              `json:"not_found,omitempty"`
	Upstream    [][]PathNodeCLI   `json:"upstream,omitempty"`
	Downstream  [][]PathNodeCLI   `json:"downstream,omitempty"`
	EntryPoints []PathNodeCLI     `json:"entry_points,omitempty"`
	LeafNodes   []PathNodeCLI     `json:"leaf_nodes,omitempty"`
}

// PathNodeCLI is one step of a traced path
type PathNodeCLI struct {
	Symbol string `json:"symbol"`
	File   string `json:"file"`
	Line   int    `json:"line"`
	Kind   string `json:"kind,omitempty"`
	Depth  int    `json:"depth"`
}

func convertTraceResponse(chain trace.Chain) *TraceResponseCLI {
	resp := &TraceResponseCLI{
		Target:   chain.Target.SymbolName,
		NotFound: chain.Target.FilePath == index.NotFoundFile,
	}

	convertPaths := func(paths [][]trace.Node) [][]PathNodeCLI {
		out := make([][]PathNodeCLI, 0, len(paths))
		for _, path := range paths {
			out = append(out, convertNodes(path))
		}
		return out
	}

	resp.Upstream = convertPaths(chain.Upstream)
	resp.Downstream = convertPaths(chain.Downstream)
	resp.EntryPoints = convertNodes(chain.EntryPoints)
	resp.LeafNodes = convertNodes(chain.LeafNodes)
	return resp
}

func convertNodes(nodes []trace.Node) []PathNodeCLI {
	out := make([]PathNodeCLI, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, PathNodeCLI{
			Symbol: n.SymbolName,
			File:   n.FilePath,
			Line:   n.LineNumber,
			Kind:   string(n.SymbolType),
			Depth:  n.Depth,
		})
	}
	return out
}
