package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"cci/internal/errors"
)

// Format identifies a snapshot encoding
type Format string

const (
	FormatAuto Format = "auto"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatSCIP Format = "scip"
)

// Load reads a snapshot from disk in the given format.
// FormatAuto picks the decoder from the file extension.
func Load(path string, format Format) (*Snapshot, error) {
	if format == FormatAuto || format == "" {
		format = detectFormat(path)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.New(errors.SnapshotMissing,
			fmt.Sprintf("snapshot not found at %s", path), err)
	}

	switch format {
	case FormatJSON:
		return loadJSON(path)
	case FormatYAML:
		return loadYAML(path)
	case FormatSCIP:
		return LoadSCIP(path)
	default:
		return nil, errors.New(errors.ScopeInvalid,
			fmt.Sprintf("unknown snapshot format %q", format), nil)
	}
}

func detectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".scip":
		return FormatSCIP
	default:
		return FormatJSON
	}
}

func loadJSON(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.SnapshotInvalid,
			fmt.Sprintf("failed to read snapshot from %s", path), err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.New(errors.SnapshotInvalid,
			fmt.Sprintf("failed to decode JSON snapshot from %s", path), err)
	}

	snap.EnsureID()
	return &snap, nil
}

func loadYAML(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.SnapshotInvalid,
			fmt.Sprintf("failed to read snapshot from %s", path), err)
	}

	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, errors.New(errors.SnapshotInvalid,
			fmt.Sprintf("failed to decode YAML snapshot from %s", path), err)
	}

	snap.EnsureID()
	return &snap, nil
}
