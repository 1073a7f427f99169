package query

import (
	"context"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"symgraph/internal/indexstore"
	"symgraph/internal/slogutil"
	"symgraph/internal/symbol"
)

var _ SymbolIndex = (*indexstore.Store)(nil)

func openIndex(t *testing.T) *indexstore.Store {
	t.Helper()
	s, err := indexstore.Open(filepath.Join(t.TempDir(), "index.db"), indexstore.Options{}, slogutil.NewDiscardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// loadFixture loads testdata/name and returns an executor restricted to
// testdata/App.
func loadFixture(t *testing.T, name string) (*Executor, *indexstore.Store, string) {
	t.Helper()
	dir, err := filepath.Abs("testdata")
	require.NoError(t, err)

	s := openIndex(t)
	require.NoError(t, s.Load(context.Background(), filepath.Join(dir, name)))

	exec := NewExecutor(s, ExecutorOptions{
		ProjectDir:        filepath.Join(dir, "App"),
		RestrictToProject: true,
	}, slogutil.NewDiscardLogger())
	return exec, s, dir
}

func names(rs []*ResolvedSymbol) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Name()
	}
	return out
}

func resolvedUSRs(rs []*ResolvedSymbol) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.USR()
	}
	return out
}

func single(t *testing.T, rs []*ResolvedSymbol) *ResolvedSymbol {
	t.Helper()
	require.Len(t, rs, 1, "results: %v", names(rs))
	return rs[0]
}

func TestExecutor_UnavailableIndex(t *testing.T) {
	exec := NewExecutor(openIndex(t), ExecutorOptions{}, nil)

	assert.Empty(t, exec.Run(Classes("Base")))
	assert.Empty(t, exec.Run(ClassesInFiles([]string{"/a.swift"}, "")))
	assert.Empty(t, exec.Subclasses("c:Base"))
	assert.Empty(t, exec.Conformances("p:Named"))
	assert.Empty(t, exec.Extensions("c:Base"))
	assert.Empty(t, exec.Callers("c:Derived.draw"))
	assert.Empty(t, exec.Callees("c:Derived.render"))
	assert.Empty(t, exec.Inheritance("c:Derived"))
}

func TestExecutor_ClassesExactName(t *testing.T) {
	exec, _, dir := loadFixture(t, "zoo.toml")

	derived := single(t, exec.Run(Classes("Derived")))
	assert.Equal(t, "c:Derived", derived.USR())
	assert.Equal(t, symbol.KindClass, derived.Kind())
	assert.True(t, derived.Roles().Contains(symbol.RoleDefinition))
	assert.Equal(t, filepath.Join(dir, "App", "Derived.swift"), derived.Location().Path)
	assert.Equal(t, 1, derived.Location().Line)
	assert.Equal(t, 7, derived.Location().Column)
	assert.Nil(t, derived.Parent())

	assert.Empty(t, exec.Run(Classes("Deriv")), "declaration presets anchor both ends")
	assert.Empty(t, exec.Run(Classes("derived")))
	assert.Len(t, exec.Run(Classes("derived").WithIgnoreCase(true)), 1)
}

func TestExecutor_PrefixMatch(t *testing.T) {
	exec, _, _ := loadFixture(t, "zoo.toml")

	got := exec.Run(Declarations("Root").WithMatch(Match{AnchorStart: true}))
	assert.Equal(t, []string{"RootClass"}, names(got))
}

func TestExecutor_SuffixMatch(t *testing.T) {
	exec, _, _ := loadFixture(t, "zoo.toml")

	// The index keeps names ending in the term and the matcher keeps names
	// starting with it, so only a name that is both survives.
	assert.Empty(t, exec.Run(Declarations("Class").WithMatch(Match{AnchorEnd: true})))
	assert.Equal(t, []string{"Base"}, names(exec.Run(Classes("Base").WithMatch(Match{AnchorEnd: true}))))
}

func TestExecutor_IgnoreCaseOutsideASCII(t *testing.T) {
	exec, _, _ := loadFixture(t, "unicode.toml")

	for _, term := range []string{"École", "école", "éCOLE"} {
		got := exec.Run(Classes(term).WithIgnoreCase(true))
		assert.Equal(t, []string{"École"}, names(got), term)
	}
	assert.Empty(t, exec.Run(Classes("école")))

	method := single(t, exec.Run(Functions("ÉLÈVE").WithIgnoreCase(true)))
	require.NotNil(t, method.Parent())
	assert.Equal(t, "École", method.Parent().Name())
}

func TestExecutor_ResolveUSRPrefersDefinition(t *testing.T) {
	exec, _, dir := loadFixture(t, "zoo.toml")

	derived, ok := exec.ResolveUSR("c:Derived")
	require.True(t, ok)
	assert.True(t, derived.Roles().Contains(symbol.RoleDefinition))
	assert.Equal(t, filepath.Join(dir, "App", "Derived.swift"), derived.Location().Path)
	assert.Equal(t, 1, derived.Location().Line)
	assert.Equal(t, 7, derived.Location().Column)
	assert.Equal(t, []string{"Base"}, names(derived.Inheritance()))

	_, ok = exec.ResolveUSR("c:Nope")
	assert.False(t, ok)
}

func TestExecutor_RolesAndKindsHold(t *testing.T) {
	exec, _, _ := loadFixture(t, "zoo.toml")

	for _, p := range Presets() {
		for _, term := range []string{"", "e", "Base"} {
			spec := p.Spec(term)
			for _, r := range exec.Run(spec) {
				assert.True(t, spec.Kinds().Contains(r.Kind()), "%s %q: %s", p, term, r)
				if r.Kind() == symbol.KindExtension {
					continue
				}
				assert.True(t, r.Roles().Intersects(spec.Roles()), "%s %q: %s roles %s", p, term, r, r.Roles())
			}
		}
	}
}

func TestExecutor_CanonicalSearchIsDeterministic(t *testing.T) {
	exec, _, _ := loadFixture(t, "zoo.toml")

	for _, spec := range []Spec{Declarations(""), Functions("r"), Properties(""), Classes("")} {
		first := exec.Run(spec)
		second := exec.Run(spec)
		require.Len(t, second, len(first))
		for i := range first {
			assert.True(t, first[i].Equal(second[i]), "%s: %s != %s", spec, first[i], second[i])
		}

		seen := make(map[string]bool)
		for _, r := range first {
			assert.False(t, seen[r.USR()], "%s: duplicate %s", spec, r.USR())
			seen[r.USR()] = true
		}
	}

	assert.Equal(t, []string{"describe", "draw", "render"}, names(exec.Run(Functions("r"))))
}

func TestExecutor_ParentChain(t *testing.T) {
	exec, _, _ := loadFixture(t, "zoo.toml")

	value := single(t, exec.Run(Properties("value")))
	assert.Equal(t, 2, value.Depth())

	var chain []string
	for p := value.Parent(); p != nil; p = p.Parent() {
		chain = append(chain, p.Name())
	}
	assert.Equal(t, []string{"Inner", "Derived"}, chain)

	first := names(slices.Collect(value.Ancestors()))
	again := names(slices.Collect(value.Ancestors()))
	assert.Equal(t, chain, first)
	assert.Equal(t, first, again, "ancestors can be walked again")

	for a := range value.Ancestors() {
		assert.Equal(t, "Inner", a.Name())
		break
	}

	describe := single(t, exec.Run(Functions("describe")))
	require.NotNil(t, describe.Parent())
	assert.Equal(t, symbol.KindExtension, describe.Parent().Kind())
	assert.Equal(t, "e:Base+Ext", describe.Parent().USR())
}

func TestExecutor_InheritanceOrderAndNesting(t *testing.T) {
	exec, _, _ := loadFixture(t, "zoo.toml")

	canvas := single(t, exec.Run(Classes("Canvas")))
	bases := canvas.Inheritance()
	require.Equal(t, []string{"Named", "Drawable"}, names(bases))
	assert.Empty(t, bases[0].Inheritance())
	assert.Equal(t, []string{"Named"}, names(bases[1].Inheritance()), "bases of bases nest under their entry")

	derived := single(t, exec.Run(Classes("Derived")))
	require.Equal(t, []string{"Base"}, names(derived.Inheritance()))
	assert.Equal(t, []string{"Named"}, names(derived.Inheritance()[0].Inheritance()))

	assert.Equal(t, names(bases), names(exec.Inheritance("c:Canvas")))
	assert.Empty(t, exec.Inheritance("c:Derived.draw"))
}

func TestExecutor_SystemBaseResolvesOutsideProject(t *testing.T) {
	exec, _, _ := loadFixture(t, "zoo.toml")

	root := single(t, exec.Run(Classes("RootClass")))
	base := single(t, root.Inheritance())
	assert.Equal(t, "NSObject", base.Name())
	assert.True(t, base.Location().IsSystem)
	assert.Equal(t, "Foundation", base.Location().ModuleName)
}

func TestExecutor_Subclasses(t *testing.T) {
	exec, s, dir := loadFixture(t, "zoo.toml")

	base := single(t, exec.Run(Classes("Base")))
	derived := single(t, exec.Subclasses(base.USR()))
	assert.Equal(t, "Derived", derived.Name())
	assert.Equal(t, []string{"Base"}, names(derived.Inheritance()))
	assert.Nil(t, derived.Parent())
	assert.Equal(t, filepath.Join(dir, "App", "Derived.swift"), derived.Location().Path,
		"the definition wins over the bridged declaration")

	unrestricted := NewExecutor(s, ExecutorOptions{ProjectDir: filepath.Join(dir, "App")}, nil)
	assert.Equal(t, []string{"c:Derived", "x:Vendor"}, resolvedUSRs(unrestricted.Subclasses("c:Base")))

	assert.Equal(t, []string{"c:Base", "c:Canvas"}, resolvedUSRs(exec.Subclasses("p:Named")),
		"only class kinds count as subclasses")
}

func TestExecutor_Conformances(t *testing.T) {
	exec, _, _ := loadFixture(t, "zoo.toml")

	assert.Equal(t, []string{"p:Drawable", "c:Base", "c:Canvas"}, resolvedUSRs(exec.Conformances("p:Named")))
	assert.Equal(t, []string{"c:Canvas"}, resolvedUSRs(exec.Conformances("p:Drawable")))
}

func TestExecutor_EmptyExtension(t *testing.T) {
	exec, _, dir := loadFixture(t, "zoo.toml")

	ext := single(t, exec.Run(Extensions("Derived")))
	assert.Equal(t, symbol.KindExtension, ext.Kind())
	assert.Equal(t, "Derived", ext.Name())
	assert.Nil(t, ext.Parent())
	assert.Empty(t, ext.Inheritance())
	assert.Equal(t, filepath.Join(dir, "App", "Derived+Empty.swift"), ext.Location().Path)

	decl := single(t, exec.Run(Classes("Derived")))
	assert.False(t, ext.Equal(decl))
	assert.Equal(t, symbol.KindClass, decl.Kind())

	direct := single(t, exec.Extensions("c:Derived"))
	assert.True(t, direct.Equal(ext))
}

func TestExecutor_PopulatedExtension(t *testing.T) {
	exec, _, dir := loadFixture(t, "zoo.toml")

	ext := single(t, exec.Run(Extensions("Base")))
	assert.Equal(t, "e:Base+Ext", ext.USR())
	assert.Equal(t, symbol.KindExtension, ext.Kind())
	assert.Equal(t, filepath.Join(dir, "App", "Base+Ext.swift"), ext.Location().Path)

	assert.Equal(t, []string{"e:Base+Ext"}, resolvedUSRs(exec.Extensions("c:Base")))
}

func TestExecutor_ExtensionsWithOtherKinds(t *testing.T) {
	exec, _, _ := loadFixture(t, "zoo.toml")

	spec := Classes("Derived").WithKinds(symbol.KindClass, symbol.KindExtension)
	got := exec.Run(spec)
	require.Len(t, got, 2)
	assert.Equal(t, symbol.KindClass, got[0].Kind())
	assert.Equal(t, symbol.KindExtension, got[1].Kind())
	assert.Equal(t, got[0].USR(), got[1].USR())

	assert.Empty(t, exec.Run(Classes("Derived").WithKindSet(symbol.NewKindSet())))
}

func TestExecutor_CallersAndCallees(t *testing.T) {
	exec, _, _ := loadFixture(t, "zoo.toml")

	assert.Equal(t, []string{"render"}, names(exec.Callers("c:Derived.draw")))
	assert.Equal(t, []string{"draw"}, names(exec.Callees("c:Derived.render")))
	assert.Empty(t, exec.Callers("c:Derived.render"))
	assert.Empty(t, exec.Callees("c:Derived.draw"))
}

func TestExecutor_FileScoped(t *testing.T) {
	exec, _, dir := loadFixture(t, "zoo.toml")

	got := exec.Run(DeclarationsInFiles([]string{"Derived.swift", "Base.swift"}, ""))
	assert.Equal(t, []string{"Derived", "Inner", "Base"}, names(got))

	repeated := exec.Run(ClassesInFiles([]string{"Derived.swift", "Derived.swift"}, ""))
	assert.Equal(t, []string{"Derived", "Inner", "Derived", "Inner"}, names(repeated),
		"duplicates across files are preserved")

	assert.Equal(t, []string{"Inner"}, names(exec.Run(ClassesInFiles([]string{"Derived.swift"}, "Inner"))))

	vendor := filepath.Join(dir, "Vendor", "Vendor.swift")
	assert.Equal(t, []string{"Vendor"}, names(exec.Run(ClassesInFiles([]string{vendor}, ""))))
}

func TestExecutor_ModuleAndProjectFilters(t *testing.T) {
	exec, s, dir := loadFixture(t, "zoo.toml")

	assert.Len(t, exec.Run(Classes("Widget")), 1)
	assert.Len(t, exec.Run(Classes("Widget").WithModule("Kit")), 1)
	assert.Empty(t, exec.Run(Classes("Widget").WithModule("App")))

	assert.Empty(t, exec.Run(Classes("Vendor")))
	assert.Len(t, exec.Run(Classes("Vendor").RestrictToProject(false)), 1)

	open := NewExecutor(s, ExecutorOptions{ProjectDir: filepath.Join(dir, "App")}, nil)
	assert.Len(t, open.Run(Classes("Vendor")), 1)
}

func TestExecutor_ResolutionIsIdempotent(t *testing.T) {
	exec, s, _ := loadFixture(t, "zoo.toml")

	base := single(t, exec.Run(Classes("Base")))
	viaDerived := single(t, single(t, exec.Run(Classes("Derived"))).Inheritance())
	assert.True(t, base.Equal(viaDerived), "%s != %s", base, viaDerived)

	defs := s.Occurrences("c:Derived.Inner.value", symbol.RoleDefinition)
	require.Len(t, defs, 1)
	assert.True(t, exec.Resolve(defs[0]).Equal(exec.Resolve(defs[0])))
	assert.True(t, exec.Resolve(defs[0]).Equal(single(t, exec.Run(Properties("value")))))
}

func TestExecutor_CyclesTerminate(t *testing.T) {
	exec, _, _ := loadFixture(t, "cycle.toml")

	loopA := single(t, exec.Run(Classes("LoopA")))
	loopB := single(t, loopA.Inheritance())
	assert.Equal(t, "LoopB", loopB.Name())
	assert.Empty(t, loopB.Inheritance())

	field := single(t, exec.Run(Properties("field")))
	assert.Equal(t, []string{"Middle", "Outer"}, names(slices.Collect(field.Ancestors())))
	assert.Equal(t, 2, field.Depth())
}

func TestResolvedSymbol_View(t *testing.T) {
	exec, _, _ := loadFixture(t, "zoo.toml")

	value := single(t, exec.Run(Properties("value")))
	view := value.View()
	assert.Equal(t, "value", view.Name)
	require.NotNil(t, view.Parent)
	assert.Equal(t, "Inner", view.Parent.Name)
	require.NotNil(t, view.Parent.Parent)
	assert.Nil(t, view.Parent.Parent.Parent)

	data, err := value.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"instanceProperty"`)
	assert.Contains(t, string(data), `"roles":"definition|childOf|canonical"`)
}
