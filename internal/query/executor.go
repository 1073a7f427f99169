package query

import (
	"log/slog"

	"symgraph/internal/paths"
	"symgraph/internal/slogutil"
	"symgraph/internal/symbol"
)

// SymbolIndex is the read interface the executor needs from the index.
// Implementations return results in a stable order and return nothing when
// no index is loaded.
type SymbolIndex interface {
	// CanonicalSearch streams one canonical occurrence per matching symbol
	// until fn returns false.
	CanonicalSearch(p symbol.SearchPattern, fn func(symbol.Occurrence) bool)

	// Occurrences returns occurrences of usr carrying any of roles.
	Occurrences(usr string, roles symbol.Role) []symbol.Occurrence

	// RelatedOccurrences returns occurrences with a relation to usr whose
	// roles include any of roles.
	RelatedOccurrences(usr string, roles symbol.Role) []symbol.Occurrence

	// SymbolsDeclaredInFile returns the declarations in path, in file order.
	SymbolsDeclaredInFile(path string) []symbol.Occurrence

	// Available reports whether an index is loaded.
	Available() bool
}

// ExecutorOptions configures an Executor.
type ExecutorOptions struct {
	// ProjectDir is the directory results must lie in when a spec restricts
	// to the project.
	ProjectDir string

	// RestrictToProject enables project containment. When false, specs that
	// ask for it are not restricted either.
	RestrictToProject bool
}

// Executor runs specs against a SymbolIndex. It holds no per-query state
// and may be reused.
type Executor struct {
	index  SymbolIndex
	opts   ExecutorOptions
	logger *slog.Logger
}

// NewExecutor returns an executor reading from index.
func NewExecutor(index SymbolIndex, opts ExecutorOptions, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	return &Executor{index: index, opts: opts, logger: logger}
}

func (e *Executor) newResolution() *resolution {
	return newResolution(e.index, e.logger)
}

func (e *Executor) filterFor(spec Spec) filter {
	f := newFilter(spec, e.opts.ProjectDir)
	f.skipProject = !e.opts.RestrictToProject
	return f
}

// Run executes spec. Results are deterministic for an unchanged index. An
// unavailable index yields no results.
func (e *Executor) Run(spec Spec) []*ResolvedSymbol {
	if !e.index.Available() {
		e.logger.Debug("Query skipped, index unavailable", "spec", spec.String())
		return nil
	}

	f := e.filterFor(spec)
	var candidates []symbol.Occurrence
	if spec.IsFileScoped() {
		candidates = e.fileCandidates(spec, f)
	} else {
		candidates = e.canonicalCandidates(spec, f)
	}

	res := e.newResolution()
	resolved := make([]*ResolvedSymbol, 0, len(candidates))
	for _, occ := range candidates {
		resolved = append(resolved, res.resolve(occ))
	}

	out := e.applyKinds(spec, f, res, resolved)
	e.logger.Debug("Query executed",
		"spec", spec.String(),
		"candidates", len(candidates),
		"results", len(out),
	)
	return out
}

// Resolve builds the ResolvedSymbol for a single occurrence.
func (e *Executor) Resolve(occ symbol.Occurrence) *ResolvedSymbol {
	return e.newResolution().resolve(occ)
}

// ResolveUSR resolves the declaration of usr, preferring its definition
// over a forward declaration. It reports false when the index has neither.
func (e *Executor) ResolveUSR(usr string) (*ResolvedSymbol, bool) {
	res := e.newResolution()
	occ, ok := res.declarationOf(usr, symbol.AllKinds)
	if !ok {
		return nil, false
	}
	return res.resolve(occ), true
}

// canonicalCandidates runs one whole-index name search, keeping the first
// accepted occurrence of each USR.
func (e *Executor) canonicalCandidates(spec Spec, f filter) []symbol.Occurrence {
	set := newOrderedSet(func(o symbol.Occurrence) string { return o.Symbol.USR })
	e.index.CanonicalSearch(spec.match.pattern(spec.term), func(occ symbol.Occurrence) bool {
		if f.accept(occ) {
			set.Add(occ)
		}
		return true
	})
	return set.Values()
}

// fileCandidates queries each file in order. Duplicates across files are
// kept; within a file the first occurrence of a USR wins.
func (e *Executor) fileCandidates(spec Spec, f filter) []symbol.Occurrence {
	var out []symbol.Occurrence
	for _, file := range spec.files {
		if e.opts.ProjectDir != "" {
			file = paths.JoinProjectPath(e.opts.ProjectDir, file)
		}
		set := newOrderedSet(func(o symbol.Occurrence) string { return o.Symbol.USR })
		for _, occ := range e.index.SymbolsDeclaredInFile(file) {
			if f.accept(occ) {
				set.Add(occ)
			}
		}
		out = append(out, set.Values()...)
	}
	return out
}

// applyKinds is the final step of every query. Without extension in the
// requested kinds, a result survives only on kind membership. With it,
// matching results are kept and the extensions of every candidate are
// appended, since extensions are never returned by the name search itself.
func (e *Executor) applyKinds(spec Spec, f filter, res *resolution, resolved []*ResolvedSymbol) []*ResolvedSymbol {
	kinds := spec.kinds
	if !kinds.Contains(symbol.KindExtension) {
		var out []*ResolvedSymbol
		for _, r := range resolved {
			if acceptKind(kinds, r.kind) {
				out = append(out, r)
			}
		}
		return out
	}

	out := newOrderedSet(resultKey)
	for _, r := range resolved {
		if kinds.Contains(r.kind) {
			out.Add(r)
		}
	}
	for _, r := range resolved {
		res.extensionsOf(r.usr, f, out)
	}
	return out.Values()
}
