package symbol

// Symbol identifies an indexed symbol.
type Symbol struct {
	USR      string `json:"usr" yaml:"usr"`
	Name     string `json:"name" yaml:"name"`
	Kind     Kind   `json:"kind" yaml:"kind"`
	Language string `json:"language,omitempty" yaml:"language,omitempty"`
}

// Relation is a directed edge from an occurrence to another symbol.
type Relation struct {
	Symbol Symbol `json:"symbol" yaml:"symbol"`
	Roles  Role   `json:"roles" yaml:"roles"`
}

// Occurrence is one appearance of a symbol as reported by the index.
// Values are treated as immutable once produced.
type Occurrence struct {
	Symbol    Symbol     `json:"symbol" yaml:"symbol"`
	Location  Location   `json:"location" yaml:"location"`
	Roles     Role       `json:"roles" yaml:"roles"`
	Relations []Relation `json:"relations,omitempty" yaml:"relations,omitempty"`
}

// RelationWith returns the first relation carrying every bit of roles.
func (o Occurrence) RelationWith(roles Role) (Relation, bool) {
	for _, rel := range o.Relations {
		if rel.Roles.Contains(roles) {
			return rel, true
		}
	}
	return Relation{}, false
}

// RelationsWith returns every relation carrying at least one bit of roles, in order.
func (o Occurrence) RelationsWith(roles Role) []Relation {
	var out []Relation
	for _, rel := range o.Relations {
		if rel.Roles.Intersects(roles) {
			out = append(out, rel)
		}
	}
	return out
}

// SearchPattern describes a name search against the index.
type SearchPattern struct {
	Term        string
	AnchorStart bool
	AnchorEnd   bool
	Subsequence bool
	IgnoreCase  bool
}
