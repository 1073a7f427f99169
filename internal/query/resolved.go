package query

import (
	"encoding/json"
	"fmt"
	"iter"

	"symgraph/internal/symbol"
)

// ResolvedSymbol is a query result: an occurrence with its parent chain and
// inheritance resolved. Values are immutable once returned and hold no
// reference to the index.
type ResolvedSymbol struct {
	name        string
	usr         string
	kind        symbol.Kind
	roles       symbol.Role
	location    symbol.Location
	parent      *ResolvedSymbol
	inheritance []*ResolvedSymbol
}

func (r *ResolvedSymbol) Name() string              { return r.name }
func (r *ResolvedSymbol) USR() string               { return r.usr }
func (r *ResolvedSymbol) Kind() symbol.Kind         { return r.kind }
func (r *ResolvedSymbol) Roles() symbol.Role        { return r.roles }
func (r *ResolvedSymbol) Location() symbol.Location { return r.location }

// Parent returns the enclosing symbol, or nil at file scope.
func (r *ResolvedSymbol) Parent() *ResolvedSymbol { return r.parent }

// Inheritance returns the direct bases in index order. Each base carries
// its own inheritance.
func (r *ResolvedSymbol) Inheritance() []*ResolvedSymbol {
	out := make([]*ResolvedSymbol, len(r.inheritance))
	copy(out, r.inheritance)
	return out
}

// Ancestors walks parent links outward, nearest first. The sequence can be
// iterated any number of times.
func (r *ResolvedSymbol) Ancestors() iter.Seq[*ResolvedSymbol] {
	return func(yield func(*ResolvedSymbol) bool) {
		for p := r.parent; p != nil; p = p.parent {
			if !yield(p) {
				return
			}
		}
	}
}

// Depth is the number of ancestors.
func (r *ResolvedSymbol) Depth() int {
	n := 0
	for range r.Ancestors() {
		n++
	}
	return n
}

// Equal compares full structure, locations, parents and inheritance included.
func (r *ResolvedSymbol) Equal(other *ResolvedSymbol) bool {
	if r == nil || other == nil {
		return r == other
	}
	if r.name != other.name || r.usr != other.usr || r.kind != other.kind ||
		r.roles != other.roles || r.location != other.location {
		return false
	}
	if !r.parent.Equal(other.parent) || len(r.inheritance) != len(other.inheritance) {
		return false
	}
	for i := range r.inheritance {
		if !r.inheritance[i].Equal(other.inheritance[i]) {
			return false
		}
	}
	return true
}

func (r *ResolvedSymbol) String() string {
	return fmt.Sprintf("%s %s (%s) at %s", r.kind, r.name, r.usr, r.location)
}

// SymbolView is the serialisable form of a ResolvedSymbol.
type SymbolView struct {
	Name        string          `json:"name" yaml:"name"`
	USR         string          `json:"usr" yaml:"usr"`
	Kind        symbol.Kind     `json:"kind" yaml:"kind"`
	Roles       symbol.Role     `json:"roles" yaml:"roles"`
	Location    symbol.Location `json:"location" yaml:"location"`
	Parent      *SymbolView     `json:"parent,omitempty" yaml:"parent,omitempty"`
	Inheritance []SymbolView    `json:"inheritance,omitempty" yaml:"inheritance,omitempty"`
}

// View converts r into its serialisable form.
func (r *ResolvedSymbol) View() SymbolView {
	v := SymbolView{
		Name:     r.name,
		USR:      r.usr,
		Kind:     r.kind,
		Roles:    r.roles,
		Location: r.location,
	}
	if r.parent != nil {
		p := r.parent.View()
		v.Parent = &p
	}
	for _, base := range r.inheritance {
		v.Inheritance = append(v.Inheritance, base.View())
	}
	return v
}

func (r *ResolvedSymbol) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.View())
}

func (r *ResolvedSymbol) MarshalYAML() (any, error) {
	return r.View(), nil
}
