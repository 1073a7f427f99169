package query

import (
	"fmt"

	"symgraph/internal/symbol"
)

// extensionRoles are the roles an extension occurrence reached through an
// extendedBy edge can carry.
const extensionRoles = symbol.RoleDefinition | symbol.RoleReference | symbol.RoleExtendedBy

// resultKey identifies a result by symbol and position. An empty extension
// shares its USR with the extended type, so the USR alone is not enough.
func resultKey(r *ResolvedSymbol) string {
	loc := r.location
	return fmt.Sprintf("%s\x00%s\x00%s:%d:%d", r.usr, r.kind, loc.Path, loc.Line, loc.Column)
}

// populatedExtensions follows the references of usr to the extensions that
// declare members on it. Extensions are never definitions of the extended
// type; they are only reachable through the relations of its references.
func (r *resolution) populatedExtensions(usr string, f filter) []*ResolvedSymbol {
	f.skipName = true

	var out []*ResolvedSymbol
	for _, ref := range r.index.Occurrences(usr, symbol.RoleReference) {
		for _, rel := range ref.Relations {
			for _, occ := range r.index.Occurrences(rel.Symbol.USR, extensionRoles) {
				if occ.Symbol.Kind != symbol.KindExtension || !f.accept(occ) {
					continue
				}
				out = append(out, r.resolve(occ))
			}
		}
	}
	return out
}

// emptyExtensions finds extensions of usr that declare nothing. Such an
// extension leaves only a bare reference with no relations, which is
// retagged as an extension.
func (r *resolution) emptyExtensions(usr string, f filter) []*ResolvedSymbol {
	f.skipName = true
	f.skipRoles = true

	var out []*ResolvedSymbol
	for _, ref := range r.index.Occurrences(usr, symbol.RoleReference) {
		if !symbol.IsBareReference(ref.Roles) || len(ref.Relations) != 0 || !f.accept(ref) {
			continue
		}
		ext := r.resolve(ref)
		ext.kind = symbol.KindExtension
		ext.inheritance = nil
		out = append(out, ext)
	}
	return out
}

// extensionsOf returns both forms of extension of usr, deduplicated by
// resultKey against seen.
func (r *resolution) extensionsOf(usr string, f filter, seen *orderedSet[*ResolvedSymbol]) {
	for _, ext := range r.populatedExtensions(usr, f) {
		seen.Add(ext)
	}
	for _, ext := range r.emptyExtensions(usr, f) {
		seen.Add(ext)
	}
}
