package indexstore

import (
	"cmp"
	"slices"

	scippb "github.com/sourcegraph/scip/bindings/go/scip"
)

// DefaultMaxFunctionLines bounds the body of the last function in a
// document when the indexer recorded no enclosing range. scip-go does not
// populate EnclosingRange, so function ends are inferred.
const DefaultMaxFunctionLines = 500

// lineRange is a 0-based inclusive line span.
type lineRange struct {
	start int
	end   int
}

type functionSpan struct {
	usr string
	lineRange
}

// functionSpans are the function bodies of one document, sorted by start line.
type functionSpans []functionSpan

// buildFunctionSpans infers function bodies for doc. An explicit enclosing
// range wins; otherwise a body runs until the next function starts.
func buildFunctionSpans(doc *scippb.Document, isFunction func(usr string) bool) functionSpans {
	var spans functionSpans
	var explicit []bool
	seen := make(map[string]bool)

	for _, occ := range doc.Occurrences {
		if occ.SymbolRoles&int32(scippb.SymbolRole_Definition) == 0 || len(occ.Range) < 3 {
			continue
		}
		if seen[occ.Symbol] || !isFunction(occ.Symbol) {
			continue
		}
		seen[occ.Symbol] = true

		start := int(occ.Range[0])
		span := functionSpan{usr: occ.Symbol, lineRange: lineRange{start: start, end: -1}}
		if r := occ.EnclosingRange; len(r) >= 3 {
			span.start = int(r[0])
			span.end = int(r[0])
			if len(r) == 4 {
				span.end = int(r[2])
			}
		}
		spans = append(spans, span)
		explicit = append(explicit, span.end >= 0)
	}

	order := make([]int, len(spans))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int { return cmp.Compare(spans[a].start, spans[b].start) })

	sorted := make(functionSpans, len(spans))
	for i, idx := range order {
		sorted[i] = spans[idx]
		if explicit[idx] {
			continue
		}
		sorted[i].end = sorted[i].start + DefaultMaxFunctionLines
		if i+1 < len(order) {
			sorted[i].end = max(spans[order[i+1]].start-1, sorted[i].start)
		}
	}
	return sorted
}

// enclosing returns the innermost function whose body contains line, or "".
func (f functionSpans) enclosing(line int) string {
	// the last span starting at or before line
	i, found := slices.BinarySearchFunc(f, line, func(s functionSpan, l int) int {
		return cmp.Compare(s.start, l)
	})
	if found {
		for i+1 < len(f) && f[i+1].start == line {
			i++
		}
	} else {
		i--
	}
	for ; i >= 0; i-- {
		if line >= f[i].start && line <= f[i].end {
			return f[i].usr
		}
	}
	return ""
}
