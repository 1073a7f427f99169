// Package query answers relationship questions over a symbol index: which
// declarations match a name, what a type inherits from, what subclasses or
// conforms to it, what extends it and what calls a function. Results are
// resolved into ResolvedSymbol trees carrying parent chains and inheritance.
package query

import (
	"fmt"
	"slices"
	"strings"

	"symgraph/internal/symbol"
)

// Match selects how a name term is compared against symbol names.
type Match struct {
	AnchorStart bool `json:"anchorStart" yaml:"anchorStart"`
	AnchorEnd   bool `json:"anchorEnd" yaml:"anchorEnd"`
	Subsequence bool `json:"subsequence" yaml:"subsequence"`
	IgnoreCase  bool `json:"ignoreCase" yaml:"ignoreCase"`
}

var (
	// DeclarationMatch anchors both ends: the term names the declaration.
	DeclarationMatch = Match{AnchorStart: true, AnchorEnd: true}

	// SubstringMatch finds the term anywhere in the name.
	SubstringMatch = Match{Subsequence: true}
)

func (m Match) pattern(term string) symbol.SearchPattern {
	return symbol.SearchPattern{
		Term:        term,
		AnchorStart: m.AnchorStart,
		AnchorEnd:   m.AnchorEnd,
		Subsequence: m.Subsequence,
		IgnoreCase:  m.IgnoreCase,
	}
}

// Spec describes one query. It is an immutable value: every With method
// returns a modified copy and never touches the receiver.
type Spec struct {
	term     string
	files    []string
	kinds    symbol.KindSet
	roles    symbol.Role
	restrict bool
	module   string
	match    Match
}

// NewSpec returns a spec matching every kind and role inside the project.
func NewSpec() Spec {
	return Spec{
		kinds:    symbol.AllKinds,
		roles:    symbol.RoleAll,
		restrict: true,
	}
}

// Term returns the name term, or "" when names are not filtered.
func (s Spec) Term() string { return s.term }

// HasTerm reports whether a name term is set.
func (s Spec) HasTerm() bool { return s.term != "" }

// Files returns the explicit file scope.
func (s Spec) Files() []string { return slices.Clone(s.files) }

// IsFileScoped reports whether the spec carries an explicit file set.
func (s Spec) IsFileScoped() bool { return len(s.files) > 0 }

func (s Spec) Kinds() symbol.KindSet { return s.kinds }

func (s Spec) Roles() symbol.Role { return s.roles }

// RestrictsToProject reports whether results must lie in the project directory.
func (s Spec) RestrictsToProject() bool { return s.restrict }

func (s Spec) Module() string { return s.module }

func (s Spec) Match() Match { return s.match }

// WithTerm sets the name term. A blank term means no name filter.
func (s Spec) WithTerm(term string) Spec {
	if strings.TrimSpace(term) == "" {
		term = ""
	}
	s.term = term
	return s
}

// WithFiles scopes the query to files, searched in the given order.
func (s Spec) WithFiles(files ...string) Spec {
	s.files = slices.Clone(files)
	return s
}

// WithKinds replaces the kind filter.
func (s Spec) WithKinds(kinds ...symbol.Kind) Spec {
	s.kinds = symbol.NewKindSet(kinds...)
	return s
}

// WithKindSet replaces the kind filter.
func (s Spec) WithKindSet(kinds symbol.KindSet) Spec {
	s.kinds = kinds
	return s
}

// WithRoles replaces the role filter. A result needs at least one of roles.
func (s Spec) WithRoles(roles symbol.Role) Spec {
	s.roles = roles
	return s
}

// WithModule requires results to come from module. "" disables the check.
func (s Spec) WithModule(module string) Spec {
	s.module = module
	return s
}

// RestrictToProject toggles project directory containment.
func (s Spec) RestrictToProject(restrict bool) Spec {
	s.restrict = restrict
	return s
}

func (s Spec) WithMatch(m Match) Spec {
	s.match = m
	return s
}

func (s Spec) WithIgnoreCase(ignore bool) Spec {
	s.match.IgnoreCase = ignore
	return s
}

func (s Spec) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "term=%q kinds=%s roles=%s", s.term, s.kinds, s.roles)
	if len(s.files) > 0 {
		fmt.Fprintf(&b, " files=%d", len(s.files))
	}
	if s.module != "" {
		fmt.Fprintf(&b, " module=%s", s.module)
	}
	fmt.Fprintf(&b, " restrict=%t match=%+v", s.restrict, s.match)
	return b.String()
}
