package query

import (
	"log/slog"

	"symgraph/internal/symbol"
)

// resolution turns raw occurrences into ResolvedSymbol trees for a single
// query. onPath holds the USRs currently being resolved, so a cyclic parent
// or base relation stops descending instead of recursing forever.
type resolution struct {
	index  SymbolIndex
	logger *slog.Logger
	onPath map[string]bool
}

func newResolution(index SymbolIndex, logger *slog.Logger) *resolution {
	return &resolution{
		index:  index,
		logger: logger,
		onPath: make(map[string]bool),
	}
}

// resolve builds the symbol for occ with its parent chain and inheritance.
func (r *resolution) resolve(occ symbol.Occurrence) *ResolvedSymbol {
	usr := occ.Symbol.USR
	r.onPath[usr] = true
	defer delete(r.onPath, usr)

	return &ResolvedSymbol{
		name:        occ.Symbol.Name,
		usr:         usr,
		kind:        occ.Symbol.Kind,
		roles:       occ.Roles,
		location:    occ.Location,
		parent:      r.parentOf(occ),
		inheritance: r.inheritanceOf(occ),
	}
}

// parentOf resolves the definition named by the childOf relation. When the
// index holds several definitions for the USR, the one whose name matches
// the relation wins.
func (r *resolution) parentOf(occ symbol.Occurrence) *ResolvedSymbol {
	rel, ok := occ.RelationWith(symbol.RoleChildOf)
	if !ok {
		return nil
	}
	if r.onPath[rel.Symbol.USR] {
		r.logger.Debug("Parent cycle skipped", "usr", occ.Symbol.USR, "parent", rel.Symbol.USR)
		return nil
	}

	defs := r.index.Occurrences(rel.Symbol.USR, symbol.RoleDefinition)
	if len(defs) == 0 {
		r.logger.Debug("Parent not resolvable", "usr", occ.Symbol.USR, "parent", rel.Symbol.USR)
		return nil
	}
	chosen := defs[0]
	for _, def := range defs {
		if def.Symbol.Name == rel.Symbol.Name {
			chosen = def
			break
		}
	}
	return r.resolve(chosen)
}

// inheritanceOf lists the direct bases of a type in index order. Each base
// carries its own bases, so the result nests instead of flattening.
func (r *resolution) inheritanceOf(occ symbol.Occurrence) []*ResolvedSymbol {
	if !symbol.InheritableKinds.Contains(occ.Symbol.Kind) {
		return nil
	}

	bases := newOrderedSet(func(b *ResolvedSymbol) string { return b.usr })
	for _, related := range r.index.RelatedOccurrences(occ.Symbol.USR, symbol.RoleBaseOf) {
		if !hasNamedRelation(related, occ.Symbol.Name, symbol.RoleBaseOf) {
			continue
		}
		baseUSR := related.Symbol.USR
		if bases.Contains(baseUSR) || r.onPath[baseUSR] {
			continue
		}
		base, ok := r.declarationOf(baseUSR, symbol.InheritableKinds)
		if !ok {
			r.logger.Debug("Base not resolvable", "usr", occ.Symbol.USR, "base", baseUSR)
			continue
		}
		bases.Add(r.resolve(base))
	}
	if bases.Len() == 0 {
		return nil
	}
	return bases.Values()
}

// declarationOf picks the occurrence that declares usr with a kind in kinds,
// preferring a definition over a forward declaration.
func (r *resolution) declarationOf(usr string, kinds symbol.KindSet) (symbol.Occurrence, bool) {
	var (
		found symbol.Occurrence
		ok    bool
	)
	for _, occ := range r.index.Occurrences(usr, symbol.RoleDefinition|symbol.RoleDeclaration) {
		if !kinds.Contains(occ.Symbol.Kind) {
			continue
		}
		if occ.Roles.Contains(symbol.RoleDefinition) {
			return occ, true
		}
		if !ok {
			found, ok = occ, true
		}
	}
	return found, ok
}

func hasNamedRelation(occ symbol.Occurrence, name string, roles symbol.Role) bool {
	for _, rel := range occ.RelationsWith(roles) {
		if rel.Symbol.Name == name {
			return true
		}
	}
	return false
}
