package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete CCI configuration
type Config struct {
	Version  int    `json:"version" mapstructure:"version"`
	RepoRoot string `json:"repoRoot" mapstructure:"repoRoot"`

	Snapshot SnapshotConfig `json:"snapshot" mapstructure:"snapshot"`
	Trace    TraceConfig    `json:"trace" mapstructure:"trace"`
	Context  ContextConfig  `json:"context" mapstructure:"context"`
	Cache    CacheConfig    `json:"cache" mapstructure:"cache"`
	Modules  ModulesConfig  `json:"modules" mapstructure:"modules"`
	Logging  LoggingConfig  `json:"logging" mapstructure:"logging"`
}

// SnapshotConfig describes where the analyzer snapshot lives and how it is encoded
type SnapshotConfig struct {
	Path   string `json:"path" mapstructure:"path"`
	Format string `json:"format" mapstructure:"format"` // json, yaml, scip, auto
}

// TraceConfig bounds call-chain traversal
type TraceConfig struct {
	DefaultDepth  int `json:"defaultDepth" mapstructure:"defaultDepth"`
	MaxDepth      int `json:"maxDepth" mapstructure:"maxDepth"`
	MaxVisitNodes int `json:"maxVisitNodes" mapstructure:"maxVisitNodes"`
}

// ContextConfig bounds layered context assembly
type ContextConfig struct {
	DefaultTokenBudget int `json:"defaultTokenBudget" mapstructure:"defaultTokenBudget"`
}

// CacheConfig contains cache tier configuration
type CacheConfig struct {
	Enabled        bool   `json:"enabled" mapstructure:"enabled"`
	Dir            string `json:"dir" mapstructure:"dir"`
	Persistent     bool   `json:"persistent" mapstructure:"persistent"`
	TTLSeconds     int    `json:"ttlSeconds" mapstructure:"ttlSeconds"`
	MaxMemoryItems int    `json:"maxMemoryItems" mapstructure:"maxMemoryItems"`
}

// ModulesConfig contains module detection configuration
type ModulesConfig struct {
	// ManifestPath is an optional MODULES.toml with declared module names
	ManifestPath string `json:"manifestPath" mapstructure:"manifestPath"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `json:"level" mapstructure:"level"`
	Format string `json:"format" mapstructure:"format"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		RepoRoot: ".",
		Snapshot: SnapshotConfig{
			Path:   ".cci/snapshot.json",
			Format: "auto",
		},
		Trace: TraceConfig{
			DefaultDepth:  3,
			MaxDepth:      10,
			MaxVisitNodes: 100000,
		},
		Context: ContextConfig{
			DefaultTokenBudget: 10000,
		},
		Cache: CacheConfig{
			Enabled:        true,
			Dir:            ".cci/cache",
			Persistent:     false,
			TTLSeconds:     3600,
			MaxMemoryItems: 1000,
		},
		Modules: ModulesConfig{},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "human",
		},
	}
}

// LoadConfig loads configuration from <repoRoot>/.cci/config.json.
// A missing file yields the defaults; a malformed file is an error.
func LoadConfig(repoRoot string) (*Config, error) {
	v := viper.New()

	v.SetDefault("version", 1)
	v.SetDefault("repoRoot", ".")

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(repoRoot, ".cci"))

	v.SetEnvPrefix("CCI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to <repoRoot>/.cci/config.json
func (c *Config) Save(repoRoot string) error {
	dir := filepath.Join(repoRoot, ".cci")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks config values for internal consistency
func (c *Config) Validate() error {
	if c.Trace.MaxDepth <= 0 {
		return fmt.Errorf("trace.maxDepth must be positive, got %d", c.Trace.MaxDepth)
	}
	if c.Trace.DefaultDepth > c.Trace.MaxDepth {
		return fmt.Errorf("trace.defaultDepth %d exceeds trace.maxDepth %d",
			c.Trace.DefaultDepth, c.Trace.MaxDepth)
	}
	if c.Cache.MaxMemoryItems <= 0 {
		return fmt.Errorf("cache.maxMemoryItems must be positive, got %d", c.Cache.MaxMemoryItems)
	}
	switch c.Snapshot.Format {
	case "", "auto", "json", "yaml", "scip":
	default:
		return fmt.Errorf("unknown snapshot format %q", c.Snapshot.Format)
	}
	return nil
}
