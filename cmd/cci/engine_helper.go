package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"cci/internal/cache"
	"cci/internal/config"
	"cci/internal/logging"
	"cci/internal/query"
	"cci/internal/snapshot"
)

var (
	engineOnce   sync.Once
	sharedEngine *query.Engine
	sharedCache  *cache.Cache
	sharedCfg    *config.Config
	engineErr    error
)

// getEngine returns a shared query engine, lazily initialized on first use.
func getEngine(repoRoot string, logger *logging.Logger) (*query.Engine, error) {
	engineOnce.Do(func() {
		cfg, err := config.LoadConfig(repoRoot)
		if err != nil {
			logger.Warn("Failed to load config, using defaults", map[string]interface{}{
				"error": err.Error(),
			})
			cfg = config.DefaultConfig()
		}
		if err := cfg.Validate(); err != nil {
			engineErr = fmt.Errorf("invalid config: %w", err)
			return
		}

		snapPath := snapshotFlag
		if snapPath == "" {
			snapPath = cfg.Snapshot.Path
		}
		if !filepath.IsAbs(snapPath) {
			snapPath = filepath.Join(repoRoot, snapPath)
		}

		snap, err := snapshot.Load(snapPath, snapshot.Format(cfg.Snapshot.Format))
		if err != nil {
			engineErr = fmt.Errorf("failed to load snapshot: %w", err)
			return
		}

		sharedCache = openCache(repoRoot, cfg, logger)
		sharedCfg = cfg
		sharedEngine = query.NewEngine(snap, repoRoot, cfg, logger, sharedCache)
	})

	return sharedEngine, engineErr
}

// openCache builds the query cache from config. Returns nil when caching
// is disabled, which the engine treats as cache-off.
func openCache(repoRoot string, cfg *config.Config, logger *logging.Logger) *cache.Cache {
	if !cfg.Cache.Enabled {
		return nil
	}
	opts := cache.Options{
		TTL:            time.Duration(cfg.Cache.TTLSeconds) * time.Second,
		MaxMemoryItems: cfg.Cache.MaxMemoryItems,
		Logger:         logger,
	}
	if cfg.Cache.Persistent {
		dir := cfg.Cache.Dir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(repoRoot, dir)
		}
		opts.Dir = dir
	}
	return cache.New(opts)
}

// mustGetEngine returns the shared query engine or exits on error.
func mustGetEngine(repoRoot string, logger *logging.Logger) *query.Engine {
	engine, err := getEngine(repoRoot, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing engine: %v\n", err)
		os.Exit(1)
	}
	return engine
}

// getRepoRoot returns the repository root directory.
func getRepoRoot() (string, error) {
	if repoFlag != "" {
		return repoFlag, nil
	}
	return os.Getwd()
}

// mustGetRepoRoot returns the repository root or exits on error.
func mustGetRepoRoot() string {
	repoRoot, err := getRepoRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return repoRoot
}

// newContext creates a new context for command execution.
func newContext() context.Context {
	return context.Background()
}

// newLogger creates a logger with the specified format.
func newLogger(format string) *logging.Logger {
	logFormat := logging.HumanFormat
	if format == "json" {
		logFormat = logging.JSONFormat
	}
	return logging.NewLogger(logging.Config{
		Format: logFormat,
		Level:  logging.InfoLevel,
	})
}
