package query

import "symgraph/internal/symbol"

// Subclasses returns the classes deriving directly from base.
func (e *Executor) Subclasses(base string) []*ResolvedSymbol {
	return e.derived(base, symbol.NewKindSet(symbol.KindClass))
}

// Conformances returns the types that directly adopt or inherit from base,
// which is usually a protocol.
func (e *Executor) Conformances(base string) []*ResolvedSymbol {
	return e.derived(base, symbol.InheritableKinds)
}

// derived collects the types whose declaration names base as a direct base.
// Only occurrences with exactly reference|baseOf count; anything else is a
// reflexive or member-qualified edge.
func (e *Executor) derived(base string, kinds symbol.KindSet) []*ResolvedSymbol {
	if !e.index.Available() {
		return nil
	}

	var usrs []string
	seenUSR := make(map[string]bool)
	for _, occ := range e.index.Occurrences(base, symbol.RoleBaseOf) {
		if !symbol.IsDirectBaseRelation(occ.Roles) {
			continue
		}
		if e.opts.RestrictToProject && !occ.Location.Within(e.opts.ProjectDir) {
			continue
		}
		for _, rel := range occ.RelationsWith(symbol.RoleBaseOf) {
			if !seenUSR[rel.Symbol.USR] {
				seenUSR[rel.Symbol.USR] = true
				usrs = append(usrs, rel.Symbol.USR)
			}
		}
	}

	res := e.newResolution()
	out := newOrderedSet(func(r *ResolvedSymbol) string { return r.usr })
	for _, usr := range usrs {
		occ, ok := res.declarationOf(usr, kinds)
		if !ok {
			e.logger.Debug("Derived type not resolvable", "base", base, "usr", usr)
			continue
		}
		out.Add(res.resolve(occ))
	}
	return out.Values()
}

// Inheritance returns the resolved bases of the type usr, or nil when usr
// is not a type or has no bases.
func (e *Executor) Inheritance(usr string) []*ResolvedSymbol {
	if !e.index.Available() {
		return nil
	}
	res := e.newResolution()
	occ, ok := res.declarationOf(usr, symbol.InheritableKinds)
	if !ok {
		return nil
	}
	return res.resolve(occ).inheritance
}

// Extensions returns every extension of usr, populated ones first.
func (e *Executor) Extensions(usr string) []*ResolvedSymbol {
	if !e.index.Available() {
		return nil
	}
	res := e.newResolution()
	out := newOrderedSet(resultKey)
	res.extensionsOf(usr, e.filterFor(NewSpec().WithRoles(extensionRoles)), out)
	return out.Values()
}
