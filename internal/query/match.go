package query

import "strings"

// Matches reports whether haystack satisfies needle under m. An empty
// needle matches everything. The first enabled mode decides, in the order
// AnchorStart, AnchorEnd, Subsequence, then exact equality.
//
// AnchorEnd performs a prefix check, not a suffix check. Callers relying on
// suffix semantics get them from the index search, which runs first.
func Matches(haystack, needle string, m Match) bool {
	if needle == "" {
		return true
	}
	if m.IgnoreCase {
		haystack = strings.ToLower(haystack)
		needle = strings.ToLower(needle)
	}

	switch {
	case m.AnchorStart:
		return strings.HasPrefix(haystack, needle)
	case m.AnchorEnd:
		return strings.HasPrefix(haystack, needle)
	case m.Subsequence:
		return strings.Contains(haystack, needle)
	default:
		return haystack == needle
	}
}
