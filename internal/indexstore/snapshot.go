package indexstore

import "symgraph/internal/symbol"

// Snapshot is a complete index in memory, produced by an importer and
// written to the store in one transaction.
type Snapshot struct {
	// Source is the file the snapshot was built from.
	Source string

	// ProjectRoot is the absolute directory document paths were joined with.
	ProjectRoot string

	symbols     []symbol.Symbol
	byUSR       map[string]int
	occurrences []symbol.Occurrence
}

// NewSnapshot creates an empty snapshot.
func NewSnapshot(source, projectRoot string) *Snapshot {
	return &Snapshot{
		Source:      source,
		ProjectRoot: projectRoot,
		byUSR:       make(map[string]int),
	}
}

// AddSymbol registers sym, keeping the first registration's name and kind
// unless the earlier one was unsupported.
func (s *Snapshot) AddSymbol(sym symbol.Symbol) {
	if i, ok := s.byUSR[sym.USR]; ok {
		prev := &s.symbols[i]
		if prev.Kind == symbol.KindUnsupported && sym.Kind != symbol.KindUnsupported {
			prev.Kind = sym.Kind
		}
		if prev.Name == "" {
			prev.Name = sym.Name
		}
		if prev.Language == "" {
			prev.Language = sym.Language
		}
		return
	}
	s.byUSR[sym.USR] = len(s.symbols)
	s.symbols = append(s.symbols, sym)
}

// Symbol returns the registered symbol for usr.
func (s *Snapshot) Symbol(usr string) (symbol.Symbol, bool) {
	i, ok := s.byUSR[usr]
	if !ok {
		return symbol.Symbol{}, false
	}
	return s.symbols[i], true
}

// AddOccurrence appends occ in index order, registering its symbol and the
// symbols of its relations.
func (s *Snapshot) AddOccurrence(occ symbol.Occurrence) {
	s.AddSymbol(occ.Symbol)
	for _, rel := range occ.Relations {
		s.AddSymbol(rel.Symbol)
	}
	s.occurrences = append(s.occurrences, occ)
}

// Symbols returns registered symbols in registration order.
func (s *Snapshot) Symbols() []symbol.Symbol {
	return s.symbols
}

// Occurrences returns occurrences in index order.
func (s *Snapshot) Occurrences() []symbol.Occurrence {
	return s.occurrences
}

// markCanonical tags the first definition of every symbol as canonical, and
// the first declaration for symbols that have no definition.
func (s *Snapshot) markCanonical() {
	chosen := make(map[string]int, len(s.symbols))
	for _, occ := range s.occurrences {
		if occ.Roles.Contains(symbol.RoleCanonical) {
			chosen[occ.Symbol.USR] = -1
		}
	}
	for _, want := range []symbol.Role{symbol.RoleDefinition, symbol.RoleDeclaration} {
		for i, occ := range s.occurrences {
			if _, done := chosen[occ.Symbol.USR]; done {
				continue
			}
			if occ.Roles.Contains(want) {
				chosen[occ.Symbol.USR] = i
			}
		}
	}
	for _, i := range chosen {
		if i >= 0 {
			s.occurrences[i].Roles |= symbol.RoleCanonical
		}
	}
}

// refreshRelationSymbols rewrites relation and occurrence symbol values
// from the registry, so names and kinds learned late propagate everywhere.
func (s *Snapshot) refreshRelationSymbols() {
	for i := range s.occurrences {
		occ := &s.occurrences[i]
		if sym, ok := s.Symbol(occ.Symbol.USR); ok {
			occ.Symbol = sym
		}
		for j := range occ.Relations {
			if sym, ok := s.Symbol(occ.Relations[j].Symbol.USR); ok {
				occ.Relations[j].Symbol = sym
			}
		}
	}
}
