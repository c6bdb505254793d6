package architecture

import (
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// ManifestFile is the default filename for module declarations
const ManifestFile = "MODULES.toml"

// ModuleDeclaration names a module rooted at a repo-relative path.
// Declared modules override the default first-path-segment grouping.
type ModuleDeclaration struct {
	// Name is the human-readable name of the module
	Name string `toml:"name"`

	// Path is the repo-relative path to the module root
	Path string `toml:"path"`

	// Responsibility is a one-line description of what this module does
	Responsibility string `toml:"responsibility,omitempty"`

	// Tags are classification tags for the module
	Tags []string `toml:"tags,omitempty"`
}

type manifestDoc struct {
	Modules []ModuleDeclaration `toml:"modules"`
}

// LoadManifest reads module declarations from a MODULES.toml file.
// A missing file is not an error; it yields no declarations.
func LoadManifest(path string) ([]ModuleDeclaration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read module manifest: %w", err)
	}

	var doc manifestDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse module manifest: %w", err)
	}

	for i, decl := range doc.Modules {
		if decl.Name == "" || decl.Path == "" {
			return nil, fmt.Errorf("module declaration %d is missing name or path", i)
		}
	}

	return doc.Modules, nil
}
