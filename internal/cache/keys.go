package cache

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// GenerateKey builds a deterministic cache key from a prefix, positional
// arguments (order-sensitive) and keyword arguments (lexicographically
// sorted). Two calls with the same kwargs in different order produce the
// same key; callers rely on that for cache-key stability.
func GenerateKey(prefix string, args []interface{}, kwargs map[string]interface{}) string {
	parts := make([]string, 0, 1+len(args)+len(kwargs))
	parts = append(parts, prefix)

	for _, arg := range args {
		parts = append(parts, fmt.Sprintf("%v", arg))
	}

	names := make([]string, 0, len(kwargs))
	for name := range kwargs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%v", name, kwargs[name]))
	}

	return fmt.Sprintf("%016x", xxhash.Sum64String(strings.Join(parts, ":")))
}

// Key is shorthand for GenerateKey with positional arguments only
func Key(prefix string, args ...interface{}) string {
	return GenerateKey(prefix, args, nil)
}
