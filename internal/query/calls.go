package query

import "symgraph/internal/symbol"

// Callers returns the functions containing a call to fn, in call-site order.
func (e *Executor) Callers(fn string) []*ResolvedSymbol {
	if !e.index.Available() {
		return nil
	}

	res := e.newResolution()
	out := newOrderedSet(func(r *ResolvedSymbol) string { return r.usr })
	for _, call := range e.index.Occurrences(fn, symbol.RoleCall) {
		for _, rel := range call.RelationsWith(symbol.RoleCalledBy) {
			if out.Contains(rel.Symbol.USR) {
				continue
			}
			caller, ok := res.declarationOf(rel.Symbol.USR, symbol.AllFunctionKinds)
			if !ok {
				e.logger.Debug("Caller not resolvable", "fn", fn, "caller", rel.Symbol.USR)
				continue
			}
			out.Add(res.resolve(caller))
		}
	}
	return out.Values()
}

// Callees returns the functions called from the body of fn, in call-site
// order. Functions known only from dependencies resolve to their
// declarations.
func (e *Executor) Callees(fn string) []*ResolvedSymbol {
	if !e.index.Available() {
		return nil
	}

	res := e.newResolution()
	out := newOrderedSet(func(r *ResolvedSymbol) string { return r.usr })
	for _, call := range e.index.RelatedOccurrences(fn, symbol.RoleCalledBy) {
		usr := call.Symbol.USR
		if out.Contains(usr) || !call.Roles.Contains(symbol.RoleCall) {
			continue
		}
		callee, ok := res.declarationOf(usr, symbol.AllFunctionKinds)
		if !ok {
			e.logger.Debug("Callee not resolvable", "fn", fn, "callee", usr)
			continue
		}
		out.Add(res.resolve(callee))
	}
	return out.Values()
}
