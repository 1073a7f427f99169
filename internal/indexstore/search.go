package indexstore

import (
	"strings"
	"unicode/utf8"

	"symgraph/internal/symbol"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a LIKE prefilter for p. SQLite LIKE folds ASCII case,
// so the result is a superset; matchSearchPattern makes the final call.
// LIKE does not fold non-ASCII letters, so a case-insensitive term outside
// ASCII gets no prefilter at all.
func likePattern(p symbol.SearchPattern) string {
	term := p.Term
	if term == "" {
		return ""
	}
	if p.IgnoreCase && !isASCII(term) {
		return ""
	}

	if p.Subsequence && !p.AnchorStart && !p.AnchorEnd {
		var b strings.Builder
		b.WriteByte('%')
		for _, r := range term {
			b.WriteString(likeEscaper.Replace(string(r)))
			b.WriteByte('%')
		}
		return b.String()
	}

	escaped := likeEscaper.Replace(term)
	switch {
	case p.AnchorStart && p.AnchorEnd:
		return escaped
	case p.AnchorStart:
		return escaped + "%"
	case p.AnchorEnd:
		return "%" + escaped
	}
	return "%" + escaped + "%"
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// matchSearchPattern is the index's own name matching: anchors are prefix
// and suffix checks, both together mean equality, and subsequence matches
// characters in order.
func matchSearchPattern(name string, p symbol.SearchPattern) bool {
	term := p.Term
	if term == "" {
		return true
	}
	if p.IgnoreCase {
		name = strings.ToLower(name)
		term = strings.ToLower(term)
	}

	switch {
	case p.AnchorStart && p.AnchorEnd:
		return name == term
	case p.AnchorStart:
		return strings.HasPrefix(name, term)
	case p.AnchorEnd:
		return strings.HasSuffix(name, term)
	case p.Subsequence:
		return isSubsequence(name, term)
	}
	return strings.Contains(name, term)
}

func isSubsequence(s, sub string) bool {
	rest := []rune(sub)
	for _, r := range s {
		if len(rest) == 0 {
			break
		}
		if r == rest[0] {
			rest = rest[1:]
		}
	}
	return len(rest) == 0
}
