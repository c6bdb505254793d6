package query

import (
	"sort"
	"strings"
)

// Relevance weights: semantic match dominates, dependency proximity second,
// code quality a small tiebreaker.
const (
	weightSemantic   = 0.5
	weightDependency = 0.3
	weightQuality    = 0.2
)

// ContextRecord is the unit of relevance ranking: one candidate context with
// the fields scoring reads. Consumers assemble these from search results or
// extracted contexts.
type ContextRecord struct {
	Symbol       string          `json:"symbol"`
	File         string          `json:"file,omitempty"`
	Docstring    string          `json:"docstring,omitempty"`
	Signature    string          `json:"signature,omitempty"`
	Dependencies []DependencyRef `json:"dependencies,omitempty"`
	CallChain    *CallChainLayer `json:"call_chain,omitempty"`
}

// ScoredContext pairs a context with its relevance score
type ScoredContext struct {
	Context ContextRecord `json:"context"`
	Score   float64       `json:"score"`
}

// RankContextRelevance scores contexts against a task description and a
// target symbol, highest first. The sort is stable: equal scores keep their
// input order.
func RankContextRelevance(contexts []ContextRecord, task, target string) []ScoredContext {
	scored := make([]ScoredContext, 0, len(contexts))
	for _, ctx := range contexts {
		score := weightSemantic*semanticSimilarity(ctx, task) +
			weightDependency*dependencyStrength(ctx, target) +
			weightQuality*codeQuality(ctx)
		scored = append(scored, ScoredContext{Context: ctx, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// semanticSimilarity is bag-of-words overlap between the task keywords and
// the context's symbol/docstring/signature text. Case-folded,
// whitespace-split, no stemming.
func semanticSimilarity(ctx ContextRecord, task string) float64 {
	taskWords := strings.Fields(strings.ToLower(task))
	if len(taskWords) == 0 {
		return 0.5
	}

	var text strings.Builder
	text.WriteString(strings.ToLower(ctx.Symbol))
	text.WriteString(" ")
	text.WriteString(strings.ToLower(ctx.Docstring))
	text.WriteString(" ")
	text.WriteString(strings.ToLower(ctx.Signature))

	contextWords := make(map[string]bool)
	for _, w := range strings.Fields(text.String()) {
		contextWords[w] = true
	}
	if len(contextWords) == 0 {
		return 0.0
	}

	overlap := 0
	seen := make(map[string]bool)
	for _, w := range taskWords {
		if seen[w] {
			continue
		}
		seen[w] = true
		if contextWords[w] {
			overlap++
		}
	}

	score := float64(overlap) / float64(len(seen))
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// dependencyStrength grades how directly a context relates to the target:
// the target itself, a listed dependency, a call-chain neighbor, or
// unrelated.
func dependencyStrength(ctx ContextRecord, target string) float64 {
	if ctx.Symbol == target {
		return 1.0
	}

	for _, dep := range ctx.Dependencies {
		if dep.Name == target {
			return 0.8
		}
	}

	if ctx.CallChain != nil {
		for _, n := range ctx.CallChain.Upstream {
			if n.Symbol == target {
				return 0.5
			}
		}
		for _, n := range ctx.CallChain.Downstream {
			if n.Symbol == target {
				return 0.5
			}
		}
	}

	return 0.1
}

// codeQuality is a coarse documentation/naming heuristic, capped at 1.0
func codeQuality(ctx ContextRecord) float64 {
	score := 0.5

	if ctx.Docstring != "" {
		score += 0.2
	}
	if strings.Contains(ctx.Signature, "->") || strings.Contains(ctx.Signature, ":") {
		score += 0.2
	}
	if len(ctx.Symbol) > 3 && !strings.HasPrefix(ctx.Symbol, "_") {
		score += 0.1
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}
