// Package symbol defines the kind, role and location model shared by the
// index store and the query layer.
package symbol

import (
	"fmt"
	"strings"
)

// Kind is the declaration category of a symbol.
type Kind uint8

const (
	KindUnsupported Kind = iota
	KindModule
	KindNamespace
	KindNamespaceAlias
	KindMacro
	KindEnum
	KindStruct
	KindClass
	KindProtocol
	KindExtension
	KindUnion
	KindTypealias
	KindFunction
	KindVariable
	KindField
	KindEnumConstant
	KindInstanceMethod
	KindClassMethod
	KindStaticMethod
	KindInstanceProperty
	KindClassProperty
	KindStaticProperty
	KindConstructor
	KindDestructor
	KindConversionFunction
	KindParameter
	KindUsing
	KindConcept
	KindCommentTag

	kindCount
)

var kindNames = [kindCount]string{
	KindUnsupported:        "unsupported",
	KindModule:             "module",
	KindNamespace:          "namespace",
	KindNamespaceAlias:     "namespaceAlias",
	KindMacro:              "macro",
	KindEnum:               "enum",
	KindStruct:             "struct",
	KindClass:              "class",
	KindProtocol:           "protocol",
	KindExtension:          "extension",
	KindUnion:              "union",
	KindTypealias:          "typealias",
	KindFunction:           "function",
	KindVariable:           "variable",
	KindField:              "field",
	KindEnumConstant:       "enumConstant",
	KindInstanceMethod:     "instanceMethod",
	KindClassMethod:        "classMethod",
	KindStaticMethod:       "staticMethod",
	KindInstanceProperty:   "instanceProperty",
	KindClassProperty:      "classProperty",
	KindStaticProperty:     "staticProperty",
	KindConstructor:        "constructor",
	KindDestructor:         "destructor",
	KindConversionFunction: "conversionFunction",
	KindParameter:          "parameter",
	KindUsing:              "using",
	KindConcept:            "concept",
	KindCommentTag:         "commentTag",
}

// String returns the lower-camel name of the kind.
func (k Kind) String() string {
	if k >= kindCount {
		return kindNames[KindUnsupported]
	}
	return kindNames[k]
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind parses a kind name. Matching is case-insensitive.
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSpace(s)
	for k, name := range kindNames {
		if strings.EqualFold(name, s) {
			return Kind(k), nil
		}
	}
	return KindUnsupported, fmt.Errorf("unknown symbol kind %q", s)
}

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// IsFunction reports whether the kind is callable.
func (k Kind) IsFunction() bool {
	return AllFunctionKinds.Contains(k)
}

// IsProperty reports whether the kind is a stored or computed value.
func (k Kind) IsProperty() bool {
	return AllPropertyKinds.Contains(k)
}

// KindSet is an ordered set of kinds. The zero value is empty.
type KindSet struct {
	order []Kind
	bits  uint64
}

// NewKindSet builds a set preserving first-seen order.
func NewKindSet(kinds ...Kind) KindSet {
	var s KindSet
	for _, k := range kinds {
		if k >= kindCount || s.bits&(1<<k) != 0 {
			continue
		}
		s.bits |= 1 << k
		s.order = append(s.order, k)
	}
	return s
}

// Contains reports membership.
func (s KindSet) Contains(k Kind) bool {
	return k < kindCount && s.bits&(1<<k) != 0
}

// Len returns the number of kinds in the set.
func (s KindSet) Len() int {
	return len(s.order)
}

// IsEmpty reports whether the set has no members.
func (s KindSet) IsEmpty() bool {
	return s.bits == 0
}

// Slice returns the members in insertion order.
func (s KindSet) Slice() []Kind {
	out := make([]Kind, len(s.order))
	copy(out, s.order)
	return out
}

// Equal reports whether both sets have the same members, ignoring order.
func (s KindSet) Equal(other KindSet) bool {
	return s.bits == other.bits
}

// Without returns a copy of the set minus k.
func (s KindSet) Without(k Kind) KindSet {
	kept := make([]Kind, 0, len(s.order))
	for _, m := range s.order {
		if m != k {
			kept = append(kept, m)
		}
	}
	return NewKindSet(kept...)
}

func (s KindSet) String() string {
	names := make([]string, len(s.order))
	for i, k := range s.order {
		names[i] = k.String()
	}
	return "{" + strings.Join(names, ",") + "}"
}

// Well-known kind groups.
var (
	AllKinds = NewKindSet(Kinds()...)

	AllFunctionKinds = NewKindSet(
		KindFunction,
		KindInstanceMethod,
		KindClassMethod,
		KindStaticMethod,
		KindConstructor,
		KindDestructor,
		KindConversionFunction,
	)

	AllPropertyKinds = NewKindSet(
		KindVariable,
		KindField,
		KindInstanceProperty,
		KindClassProperty,
		KindStaticProperty,
	)

	// DeclarationKinds are the type-like kinds searched by the "all declarations" preset.
	DeclarationKinds = NewKindSet(
		KindProtocol,
		KindClass,
		KindEnum,
		KindStruct,
		KindTypealias,
	)

	// InheritableKinds are the only kinds whose inheritance is resolved.
	InheritableKinds = NewKindSet(
		KindProtocol,
		KindStruct,
		KindEnum,
		KindClass,
	)
)
