package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cci/internal/cache"
	"cci/internal/config"
	"cci/internal/logging"
)

var cacheFormat string

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the query cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache hit/miss statistics",
	Args:  cobra.NoArgs,
	Run:   runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all cached query results",
	Args:  cobra.NoArgs,
	Run:   runCacheClear,
}

func init() {
	cacheCmd.PersistentFlags().StringVar(&cacheFormat, "format", "json", "Output format (json, human)")
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheStats(cmd *cobra.Command, args []string) {
	logger := newLogger(cacheFormat)
	repoRoot := mustGetRepoRoot()

	c := mustOpenCache(repoRoot, logger)
	defer c.Close()

	stats := c.Stats()

	output, err := FormatResponse(&stats, OutputFormat(cacheFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)
}

func runCacheClear(cmd *cobra.Command, args []string) {
	logger := newLogger(cacheFormat)
	repoRoot := mustGetRepoRoot()

	c := mustOpenCache(repoRoot, logger)
	defer c.Close()

	c.Clear()
	fmt.Println("Cache cleared.")
}

func mustOpenCache(repoRoot string, logger *logging.Logger) *cache.Cache {
	cfg, err := config.LoadConfig(repoRoot)
	if err != nil {
		logger.Warn("Failed to load config, using defaults", map[string]interface{}{
			"error": err.Error(),
		})
		cfg = config.DefaultConfig()
	}
	if !cfg.Cache.Enabled {
		fmt.Fprintln(os.Stderr, "Error: caching is disabled in config")
		os.Exit(1)
	}
	return openCache(repoRoot, cfg, logger)
}
