package indexstore

import "symgraph/internal/symbol"

// NativeKind is the kind code persisted in the store. Values are stable
// across releases; unknown is 0.
type NativeKind int

const (
	NativeUnknown NativeKind = iota
	NativeModule
	NativeNamespace
	NativeNamespaceAlias
	NativeMacro
	NativeEnum
	NativeStruct
	NativeClass
	NativeProtocol
	NativeExtension
	NativeUnion
	NativeTypeAlias
	NativeFunction
	NativeVariable
	NativeField
	NativeEnumConstant
	NativeInstanceMethod
	NativeClassMethod
	NativeStaticMethod
	NativeInstanceProperty
	NativeClassProperty
	NativeStaticProperty
	NativeConstructor
	NativeDestructor
	NativeConversionFunction
	NativeParameter
	NativeUsing
	NativeConcept
	NativeCommentTag

	nativeKindCount
)

var nativeToKind = [nativeKindCount]symbol.Kind{
	NativeUnknown:            symbol.KindUnsupported,
	NativeModule:             symbol.KindModule,
	NativeNamespace:          symbol.KindNamespace,
	NativeNamespaceAlias:     symbol.KindNamespaceAlias,
	NativeMacro:              symbol.KindMacro,
	NativeEnum:               symbol.KindEnum,
	NativeStruct:             symbol.KindStruct,
	NativeClass:              symbol.KindClass,
	NativeProtocol:           symbol.KindProtocol,
	NativeExtension:          symbol.KindExtension,
	NativeUnion:              symbol.KindUnion,
	NativeTypeAlias:          symbol.KindTypealias,
	NativeFunction:           symbol.KindFunction,
	NativeVariable:           symbol.KindVariable,
	NativeField:              symbol.KindField,
	NativeEnumConstant:       symbol.KindEnumConstant,
	NativeInstanceMethod:     symbol.KindInstanceMethod,
	NativeClassMethod:        symbol.KindClassMethod,
	NativeStaticMethod:       symbol.KindStaticMethod,
	NativeInstanceProperty:   symbol.KindInstanceProperty,
	NativeClassProperty:      symbol.KindClassProperty,
	NativeStaticProperty:     symbol.KindStaticProperty,
	NativeConstructor:        symbol.KindConstructor,
	NativeDestructor:         symbol.KindDestructor,
	NativeConversionFunction: symbol.KindConversionFunction,
	NativeParameter:          symbol.KindParameter,
	NativeUsing:              symbol.KindUsing,
	NativeConcept:            symbol.KindConcept,
	NativeCommentTag:         symbol.KindCommentTag,
}

var kindToNative = func() map[symbol.Kind]NativeKind {
	m := make(map[symbol.Kind]NativeKind, nativeKindCount)
	for n, k := range nativeToKind {
		m[k] = NativeKind(n)
	}
	return m
}()

// Kind converts to the query-layer kind. Out-of-range codes map to unsupported.
func (n NativeKind) Kind() symbol.Kind {
	if n < 0 || n >= nativeKindCount {
		return symbol.KindUnsupported
	}
	return nativeToKind[n]
}

// NativeKindOf converts a query-layer kind to its stored code.
func NativeKindOf(k symbol.Kind) NativeKind {
	if n, ok := kindToNative[k]; ok {
		return n
	}
	return NativeUnknown
}

func (n NativeKind) String() string {
	if n == NativeUnknown {
		return "unknown"
	}
	return n.Kind().String()
}
