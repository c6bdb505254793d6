package query

import (
	"strings"
)

// CompressedCallChain is the reduced call-chain form: counts plus the first
// two entry points.
type CompressedCallChain struct {
	UpstreamCount   int        `json:"upstream_count"`
	DownstreamCount int        `json:"downstream_count"`
	EntryPoints     []ChainRef `json:"entry_points,omitempty"`
}

// CompressedContext is the lossy, one-way reduction of a PreciseContext.
// There is no decompression contract.
type CompressedContext struct {
	TargetCode         *CoreLayer           `json:"target_code,omitempty"`
	DirectDependencies []DependencyRef      `json:"direct_dependencies,omitempty"`
	CallChain          *CompressedCallChain `json:"call_chain,omitempty"`
	SimilarPatterns    []PatternMatch       `json:"similar_patterns,omitempty"`
	TokenEstimate      int                  `json:"token_estimate"`
	LayersIncluded     []ContextLayer       `json:"layers_included,omitempty"`
}

// CompressContext reduces a context toward targetSize tokens:
// comments/docstrings are stripped from the target code, dependencies keep
// only name/signature/file, the call chain collapses to counts plus two
// entry points, and pattern matches keep only file/symbol/line.
func CompressContext(ctx PreciseContext, targetSize int) CompressedContext {
	out := CompressedContext{
		TokenEstimate:  ctx.TokenEstimate,
		LayersIncluded: ctx.LayersIncluded,
	}
	if targetSize > 0 && out.TokenEstimate > targetSize {
		out.TokenEstimate = targetSize
	}

	if ctx.TargetCode != nil {
		core := *ctx.TargetCode
		core.Code = StripComments(core.Code)
		core.Docstring = ""
		out.TargetCode = &core
	}

	for _, dep := range ctx.DirectDependencies {
		out.DirectDependencies = append(out.DirectDependencies, DependencyRef{
			Name:      dep.Name,
			Signature: dep.Signature,
			File:      dep.File,
		})
	}

	if ctx.CallChain != nil {
		cc := &CompressedCallChain{
			UpstreamCount:   len(ctx.CallChain.Upstream),
			DownstreamCount: len(ctx.CallChain.Downstream),
		}
		for i, ep := range ctx.CallChain.EntryPoints {
			if i >= 2 {
				break
			}
			cc.EntryPoints = append(cc.EntryPoints, ep)
		}
		out.CallChain = cc
	}

	for _, p := range ctx.SimilarPatterns {
		out.SimilarPatterns = append(out.SimilarPatterns, PatternMatch{
			File:   p.File,
			Symbol: p.Symbol,
			Line:   p.Line,
		})
	}

	return out
}

// StripComments removes #-comments, triple-quoted blocks and blank lines
// from a code fragment. Line-based and approximate: a # inside a string
// literal is treated as a comment too.
func StripComments(code string) string {
	if code == "" {
		return code
	}

	code = stripTripleQuoted(code, `"""`)
	code = stripTripleQuoted(code, `'''`)

	var kept []string
	for _, line := range strings.Split(code, "\n") {
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// stripTripleQuoted removes every delimited block, including unterminated
// trailing ones.
func stripTripleQuoted(code, delim string) string {
	var b strings.Builder
	for {
		start := strings.Index(code, delim)
		if start < 0 {
			b.WriteString(code)
			break
		}
		b.WriteString(code[:start])
		rest := code[start+len(delim):]
		end := strings.Index(rest, delim)
		if end < 0 {
			break
		}
		code = rest[end+len(delim):]
	}
	return b.String()
}
