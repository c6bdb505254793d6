package query

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"cci/internal/architecture"
	"cci/internal/index"
)

// FilterOptions control context denoising. Filters apply in a fixed order:
// test exclusion, path excludes, similarity floor, layer match, then limit.
type FilterOptions struct {
	ExcludeTests  bool
	ExcludePaths  []string
	MinSimilarity *float64
	SameLayerOnly bool
	TargetPath    string
	Limit         int
}

// FilterAndDenoise reduces a candidate list per the options. Similarity is
// read from each location's relevance score. A Limit of zero or less means
// no truncation.
func FilterAndDenoise(candidates []index.Location, opts FilterOptions) []index.Location {
	filtered := make([]index.Location, 0, len(candidates))
	for _, c := range candidates {
		if opts.ExcludeTests && isTestFile(c.FilePath) {
			continue
		}
		if matchesAnyGlob(c.FilePath, opts.ExcludePaths) {
			continue
		}
		filtered = append(filtered, c)
	}

	if opts.MinSimilarity != nil {
		kept := filtered[:0]
		for _, c := range filtered {
			if c.Relevance >= *opts.MinSimilarity {
				kept = append(kept, c)
			}
		}
		filtered = kept
	}

	if opts.SameLayerOnly && opts.TargetPath != "" {
		targetLayer := architecture.ClassifyLayer(opts.TargetPath)
		kept := filtered[:0]
		for _, c := range filtered {
			if architecture.ClassifyLayer(c.FilePath) == targetLayer {
				kept = append(kept, c)
			}
		}
		filtered = kept
	}

	if opts.Limit > 0 && len(filtered) > opts.Limit {
		filtered = filtered[:opts.Limit]
	}
	return filtered
}

func isTestFile(path string) bool {
	lower := strings.ToLower(path)
	return strings.Contains(lower, "test") ||
		strings.HasPrefix(lower, "tests/") ||
		strings.Contains(lower, "/tests/")
}

func matchesAnyGlob(path string, patterns []string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, path); err == nil && ok {
			return true
		}
	}
	return false
}
