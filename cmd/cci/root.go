package main

import (
	"github.com/spf13/cobra"

	"cci/internal/version"
)

var (
	// snapshotFlag overrides the snapshot path from config
	snapshotFlag string
	// repoFlag overrides the repository root (default: current directory)
	repoFlag string
)

var rootCmd = &cobra.Command{
	Use:   "cci",
	Short: "CCI - Code Context Intelligence",
	Long: `CCI (Code Context Intelligence) answers structural questions about a codebase
from a pre-computed analyzer snapshot: call chains, architecture maps,
token-budgeted context extraction, and change impact analysis.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("CCI version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&snapshotFlag, "snapshot", "",
		"Snapshot file to load (overrides .cci/config.json)")
	rootCmd.PersistentFlags().StringVar(&repoFlag, "repo", "",
		"Repository root (default: current directory)")
}
