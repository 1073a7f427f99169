package indexstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"symgraph/internal/symbol"
)

func TestParseSCIPSymbol(t *testing.T) {
	tests := []struct {
		raw     string
		scheme  string
		pkg     string
		version string
		name    string
		parent  string
		kind    symbol.Kind
	}{
		{
			raw:     "scip-go gomod example.com/shapes v1.0.0 `example.com/shapes`/Circle#",
			scheme:  "scip-go",
			pkg:     "example.com/shapes",
			version: "v1.0.0",
			name:    "Circle",
			kind:    symbol.KindClass,
		},
		{
			raw:     "scip-go gomod example.com/shapes v1.0.0 `example.com/shapes`/Circle#Area().",
			scheme:  "scip-go",
			pkg:     "example.com/shapes",
			version: "v1.0.0",
			name:    "Area",
			parent:  "scip-go gomod example.com/shapes v1.0.0 `example.com/shapes`/Circle#",
			kind:    symbol.KindInstanceMethod,
		},
		{
			raw:     "scip-typescript npm @types/node 18.0.0 process.env.",
			scheme:  "scip-typescript",
			pkg:     "@types/node",
			version: "18.0.0",
			name:    "env",
			parent:  "scip-typescript npm @types/node 18.0.0 process.",
			kind:    symbol.KindVariable,
		},
		{
			raw:     "scip-java maven com.google.guava 31.0 com/google/common/collect/ImmutableList#of(+1).",
			scheme:  "scip-java",
			pkg:     "com.google.guava",
			version: "31.0",
			name:    "of",
			parent:  "scip-java maven com.google.guava 31.0 com/google/common/collect/ImmutableList#",
			kind:    symbol.KindInstanceMethod,
		},
		{
			raw:     "scip-python python . . `my pkg`/helper().(arg)",
			scheme:  "scip-python",
			name:    "arg",
			parent:  "scip-python python . . `my pkg`/helper().",
			kind:    symbol.KindParameter,
		},
		{
			raw:    "rust-analyzer cargo std 1.0 macros/println!",
			scheme: "rust-analyzer",
			pkg:    "std",
			name:   "println",
			kind:   symbol.KindMacro,
		},
		{
			raw:    "scip-ts npm pkg 1.0 Box#[T]",
			scheme: "scip-ts",
			pkg:    "pkg",
			name:   "T",
			parent: "scip-ts npm pkg 1.0 Box#",
			kind:   symbol.KindParameter,
		},
	}

	for _, tt := range tests {
		sym, err := parseSCIPSymbol(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.scheme, sym.scheme, tt.raw)
		if tt.pkg != "" {
			assert.Equal(t, tt.pkg, sym.pkg, tt.raw)
		}
		if tt.version != "" {
			assert.Equal(t, tt.version, sym.version, tt.raw)
		}
		assert.Equal(t, tt.name, sym.Name(), tt.raw)
		assert.Equal(t, tt.parent, sym.ParentUSR(), tt.raw)
		assert.Equal(t, tt.kind, sym.inferKind(), tt.raw)
	}
}

func TestParseSCIPSymbol_EscapedSpacesAndBackticks(t *testing.T) {
	sym, err := parseSCIPSymbol("scip-x my  manager pkg 1.0 `a``b`#")
	require.NoError(t, err)
	assert.Equal(t, "my manager", sym.manager)
	assert.Equal(t, "a`b", sym.Name())
}

func TestParseSCIPSymbol_Local(t *testing.T) {
	sym, err := parseSCIPSymbol("local 42")
	require.NoError(t, err)
	assert.True(t, sym.local)
	assert.Empty(t, sym.Name())
	assert.Empty(t, sym.ParentUSR())
}

func TestParseSCIPSymbol_Invalid(t *testing.T) {
	for _, raw := range []string{
		"",
		"scip-go gomod",
		"scip-go gomod pkg v1 ",
		"scip-go gomod pkg v1 Foo",
		"scip-go gomod pkg v1 `unterminated",
		"scip-go gomod pkg v1 Foo(.",
		"scip-go gomod pkg v1 [T",
	} {
		_, err := parseSCIPSymbol(raw)
		assert.Error(t, err, raw)
	}
}

func TestKindFromSCIP(t *testing.T) {
	method, _ := parseSCIPSymbol("scip-go gomod pkg v1 Foo#Bar().")
	tests := []struct {
		name string
		sym  *scipSymbol
		want symbol.Kind
	}{
		{"Interface", nil, symbol.KindProtocol},
		{"Trait", nil, symbol.KindProtocol},
		{"Struct", nil, symbol.KindStruct},
		{"Extension", nil, symbol.KindExtension},
		{"StaticMethod", nil, symbol.KindStaticMethod},
		{"UnspecifiedKind", method, symbol.KindInstanceMethod},
		{"UnspecifiedKind", nil, symbol.KindUnsupported},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, kindFromSCIP(tt.name, tt.sym), tt.name)
	}
}

func TestFunctionSpansEnclosing(t *testing.T) {
	spans := functionSpans{
		{usr: "a", lineRange: lineRange{start: 2, end: 9}},
		{usr: "b", lineRange: lineRange{start: 10, end: 20}},
		{usr: "inner", lineRange: lineRange{start: 12, end: 14}},
	}
	tests := []struct {
		line int
		want string
	}{
		{0, ""},
		{2, "a"},
		{9, "a"},
		{11, "b"},
		{12, "inner"},
		{15, "b"},
		{21, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, spans.enclosing(tt.line), "line %d", tt.line)
	}
}
