package query

import "symgraph/internal/symbol"

// filter is the per-occurrence check shared by every query path. Kinds are
// not checked here: extension results only appear after relation expansion.
type filter struct {
	spec       Spec
	projectDir string

	// skipProject disables containment for lookups that may land outside
	// the project, such as system base types.
	skipProject bool
	skipRoles   bool
	skipName    bool
}

func newFilter(spec Spec, projectDir string) filter {
	return filter{spec: spec, projectDir: projectDir}
}

// accept applies project containment, module equality, role intersection
// and name matching, stopping at the first failure.
func (f filter) accept(occ symbol.Occurrence) bool {
	if !f.inProject(occ) {
		return false
	}
	if m := f.spec.module; m != "" && occ.Location.ModuleName != m {
		return false
	}
	if !f.skipRoles && !occ.Roles.Intersects(f.spec.roles) {
		return false
	}
	if !f.skipName && !Matches(occ.Symbol.Name, f.spec.term, f.spec.match) {
		return false
	}
	return true
}

func (f filter) inProject(occ symbol.Occurrence) bool {
	if f.skipProject || !f.spec.restrict || f.projectDir == "" {
		return true
	}
	return occ.Location.Within(f.projectDir)
}

// acceptKind is the kind step of a plain query. When the requested kinds
// include extension, extension results come from expansion instead.
func acceptKind(kinds symbol.KindSet, kind symbol.Kind) bool {
	return !kinds.IsEmpty() && kinds.Contains(kind)
}
