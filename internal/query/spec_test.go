package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"symgraph/internal/errors"
	"symgraph/internal/symbol"
)

func TestPresets_Defaults(t *testing.T) {
	declaration := Match{AnchorStart: true, AnchorEnd: true}
	substring := Match{Subsequence: true}
	memberRoles := symbol.RoleDefinition | symbol.RoleChildOf | symbol.RoleCanonical

	tests := []struct {
		name  string
		spec  Spec
		kinds symbol.KindSet
		roles symbol.Role
		match Match
	}{
		{"classes", Classes("T"), symbol.NewKindSet(symbol.KindClass), symbol.RoleDefinition, declaration},
		{"structs", Structs("T"), symbol.NewKindSet(symbol.KindStruct), symbol.RoleDefinition, declaration},
		{"enums", Enums("T"), symbol.NewKindSet(symbol.KindEnum), symbol.RoleDefinition, declaration},
		{"protocols", Protocols("T"), symbol.NewKindSet(symbol.KindProtocol), symbol.RoleDefinition, declaration},
		{"typealiases", Typealiases("T"), symbol.NewKindSet(symbol.KindTypealias), symbol.RoleDefinition, declaration},
		{
			"declarations", Declarations("T"),
			symbol.NewKindSet(symbol.KindProtocol, symbol.KindClass, symbol.KindEnum, symbol.KindStruct, symbol.KindTypealias),
			symbol.RoleDefinition, declaration,
		},
		{
			"functions", Functions("T"),
			symbol.NewKindSet(symbol.KindFunction, symbol.KindInstanceMethod, symbol.KindClassMethod,
				symbol.KindStaticMethod, symbol.KindConstructor, symbol.KindDestructor, symbol.KindConversionFunction),
			memberRoles, substring,
		},
		{
			"properties", Properties("T"),
			symbol.NewKindSet(symbol.KindVariable, symbol.KindField, symbol.KindInstanceProperty,
				symbol.KindClassProperty, symbol.KindStaticProperty),
			memberRoles, substring,
		},
		{"extensions", Extensions("T"), symbol.NewKindSet(symbol.KindExtension), symbol.RoleDefinition, substring},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.spec.Kinds().Equal(tt.kinds), "kinds = %s", tt.spec.Kinds())
			assert.Equal(t, tt.roles, tt.spec.Roles())
			assert.Equal(t, tt.match, tt.spec.Match())
			assert.False(t, tt.spec.Match().IgnoreCase)
			assert.True(t, tt.spec.RestrictsToProject())
			assert.False(t, tt.spec.IsFileScoped())
			assert.Equal(t, "T", tt.spec.Term())

			p, err := ParsePreset(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.spec, p.Spec("T"))

			scoped := p.SpecInFiles([]string{"a.swift", "b.swift"}, "")
			assert.True(t, scoped.Kinds().Equal(tt.kinds))
			assert.Equal(t, tt.roles, scoped.Roles())
			assert.Equal(t, tt.match, scoped.Match())
			assert.Equal(t, []string{"a.swift", "b.swift"}, scoped.Files())
			assert.False(t, scoped.HasTerm())
			assert.False(t, scoped.RestrictsToProject())
		})
	}
}

func TestPresets_InFilesHelpers(t *testing.T) {
	files := []string{"x.swift"}
	assert.Equal(t, PresetClasses.SpecInFiles(files, "A"), ClassesInFiles(files, "A"))
	assert.Equal(t, PresetFunctions.SpecInFiles(files, ""), FunctionsInFiles(files, ""))
	assert.Equal(t, PresetExtensions.SpecInFiles(files, "E"), ExtensionsInFiles(files, "E"))
	assert.Len(t, Presets(), 9)
}

func TestParsePreset(t *testing.T) {
	p, err := ParsePreset("  Classes ")
	require.NoError(t, err)
	assert.Equal(t, PresetClasses, p)

	_, err = ParsePreset("widgets")
	require.Error(t, err)
	assert.Equal(t, errors.InvalidPreset, errors.CodeOf(err))
}

func TestSpec_BuilderReturnsCopies(t *testing.T) {
	base := NewSpec()
	files := []string{"a.swift"}
	derived := base.
		WithTerm("Foo").
		WithFiles(files...).
		WithKinds(symbol.KindClass).
		WithRoles(symbol.RoleDefinition).
		WithModule("App").
		RestrictToProject(false).
		WithIgnoreCase(true)
	files[0] = "changed.swift"

	assert.False(t, base.HasTerm())
	assert.False(t, base.IsFileScoped())
	assert.True(t, base.Kinds().Equal(symbol.AllKinds))
	assert.Equal(t, symbol.RoleAll, base.Roles())
	assert.True(t, base.RestrictsToProject())
	assert.Empty(t, base.Module())
	assert.False(t, base.Match().IgnoreCase)

	assert.Equal(t, "Foo", derived.Term())
	assert.Equal(t, []string{"a.swift"}, derived.Files())
	assert.True(t, derived.Kinds().Equal(symbol.NewKindSet(symbol.KindClass)))
	assert.Equal(t, symbol.RoleDefinition, derived.Roles())
	assert.Equal(t, "App", derived.Module())
	assert.False(t, derived.RestrictsToProject())
	assert.True(t, derived.Match().IgnoreCase)

	returned := derived.Files()
	returned[0] = "mutated.swift"
	assert.Equal(t, []string{"a.swift"}, derived.Files())
}

func TestSpec_BlankTermMeansNoFilter(t *testing.T) {
	for _, term := range []string{"", " ", "\t\n"} {
		s := Classes(term)
		assert.False(t, s.HasTerm(), "%q", term)
		assert.Empty(t, s.Term())
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		haystack string
		needle   string
		m        Match
		want     bool
	}{
		{"RootClass", "Root", Match{AnchorStart: true}, true},
		{"RootClass", "Class", Match{AnchorStart: true}, false},
		// anchorEnd behaves as a prefix check
		{"RootClass", "Class", Match{AnchorEnd: true}, false},
		{"RootClass", "Root", Match{AnchorEnd: true}, true},
		{"RootClass", "Root", Match{AnchorStart: true, AnchorEnd: true}, true},
		{"FooBar", "oo", Match{Subsequence: true}, true},
		{"FooBar", "xyz", Match{Subsequence: true}, false},
		{"FooBar", "Bar", Match{AnchorStart: true, Subsequence: true}, false},
		{"Foo", "foo", Match{IgnoreCase: true}, true},
		{"Foo", "foo", Match{}, false},
		{"Foo", "Foo", Match{}, true},
		{"FooBar", "Foo", Match{}, false},
		{"Foo", "", Match{}, true},
		{"", "", Match{AnchorStart: true}, true},
		{"FOOBAR", "oob", Match{Subsequence: true, IgnoreCase: true}, true},
	}

	for _, tt := range tests {
		got := Matches(tt.haystack, tt.needle, tt.m)
		assert.Equal(t, tt.want, got, "Matches(%q, %q, %+v)", tt.haystack, tt.needle, tt.m)
	}
}

func TestSuggest(t *testing.T) {
	names := []string{"Base", "Derived", "Drawable", "DerivedView"}

	got := Suggest(names, "Derivd", 2)
	require.NotEmpty(t, got)
	assert.Equal(t, "Derived", got[0])
	assert.NotContains(t, got, "Base")
	assert.LessOrEqual(t, len(got), 2)

	assert.Nil(t, Suggest(names, "", 3))
	assert.Nil(t, Suggest(names, "Derived", 0))
	assert.Empty(t, Suggest(names, "zzzzqqqq", 3))
}
