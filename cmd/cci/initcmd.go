package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"cci/internal/config"
	"cci/internal/errors"
	"cci/internal/logging"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize CCI configuration",
	Long:  "Creates a .cci/ directory with default configuration in the repository root",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Force reinitialization (removes existing .cci directory)")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	logger := logging.NewLogger(logging.Config{
		Format: logging.HumanFormat,
		Level:  logging.InfoLevel,
	})

	repoRoot, err := getRepoRoot()
	if err != nil {
		return errors.New(errors.InternalError, "Failed to resolve repository root", err)
	}

	cciDir := filepath.Join(repoRoot, ".cci")
	if _, statErr := os.Stat(cciDir); statErr == nil {
		if !initForce {
			// Idempotent behavior: already initialized is success (CI-friendly)
			fmt.Println("CCI already initialized.")
			fmt.Printf("Configuration at: %s\n", filepath.Join(cciDir, "config.json"))
			fmt.Println("\nRun 'cci init --force' to reinitialize.")
			return nil
		}
		if removeErr := os.RemoveAll(cciDir); removeErr != nil {
			return errors.New(errors.InternalError, "Failed to remove existing .cci directory", removeErr)
		}
		logger.Info("Removed existing .cci directory", nil)
	}

	cfg := config.DefaultConfig()
	cfg.RepoRoot = "."

	if saveErr := cfg.Save(repoRoot); saveErr != nil {
		return errors.New(errors.InternalError, "Failed to write config file", saveErr)
	}

	configPath := filepath.Join(cciDir, "config.json")
	logger.Info("CCI initialized successfully", map[string]interface{}{
		"config_path": configPath,
	})

	fmt.Println("CCI initialized successfully!")
	fmt.Printf("Configuration written to: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Point snapshot.path at your analyzer snapshot")
	fmt.Println("  2. Run 'cci arch' to see the architecture map")

	return nil
}
