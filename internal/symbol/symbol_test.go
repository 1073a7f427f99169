package symbol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind_RoundTrip(t *testing.T) {
	for _, k := range Kinds() {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err, k.String())
		assert.Equal(t, k, parsed)
	}

	_, err := ParseKind("trait")
	assert.Error(t, err)
	k, err := ParseKind("InstanceMethod")
	require.NoError(t, err)
	assert.Equal(t, KindInstanceMethod, k, "parsing ignores case")
}

func TestKindSet(t *testing.T) {
	s := NewKindSet(KindClass, KindStruct, KindClass)

	require.Equal(t, 2, s.Len())
	assert.True(t, s.Contains(KindClass))
	assert.True(t, s.Contains(KindStruct))
	assert.False(t, s.Contains(KindEnum))
	assert.Equal(t, "{class,struct}", s.String())
	assert.True(t, s.Equal(NewKindSet(KindStruct, KindClass)))

	w := s.Without(KindClass)
	assert.False(t, w.Contains(KindClass))
	assert.Equal(t, 1, w.Len())

	var empty KindSet
	assert.True(t, empty.IsEmpty())
	assert.False(t, empty.Contains(KindUnsupported))
}

func TestKindGroups(t *testing.T) {
	assert.Equal(t, int(kindCount), AllKinds.Len())
	assert.True(t, KindStaticMethod.IsFunction())
	assert.False(t, KindStaticProperty.IsFunction())
	assert.True(t, KindField.IsProperty())
	assert.False(t, KindFunction.IsProperty())
	assert.False(t, InheritableKinds.Contains(KindTypealias), "typealias is not inheritable")
}

func TestRole_SetOperations(t *testing.T) {
	r := Roles(RoleDefinition, RoleChildOf)

	assert.True(t, r.Contains(RoleDefinition))
	assert.False(t, r.Contains(RoleDefinition|RoleReference), "Contains requires every bit")
	assert.True(t, r.Intersects(RoleReference|RoleChildOf))
	assert.Equal(t, RoleNone, r.Intersect(RoleReference))
	assert.Equal(t, RoleDefinition|RoleChildOf|RoleCanonical, r.Union(RoleCanonical))
	assert.True(t, RoleAll.Contains(RoleCanonical|RoleDeclaration))
}

func TestRole_String(t *testing.T) {
	tests := []struct {
		roles Role
		want  string
	}{
		{RoleNone, "none"},
		{RoleDefinition, "definition"},
		{RoleCanonical | RoleDefinition | RoleChildOf, "definition|childOf|canonical"},
		{RoleBaseOf | RoleReference, "reference|baseOf"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.roles.String(), "roles %d", uint64(tt.roles))
	}
}

func TestParseRoles(t *testing.T) {
	r, err := ParseRoles("definition|childOf, canonical")
	require.NoError(t, err)
	assert.Equal(t, RoleDefinition|RoleChildOf|RoleCanonical, r)

	all, err := ParseRoles("all")
	require.NoError(t, err)
	assert.Equal(t, RoleAll, all)

	_, err = ParseRoles("definition|inheritsFrom")
	assert.Error(t, err)
}

func TestRolePredicates(t *testing.T) {
	assert.True(t, IsDirectBaseRelation(RoleReference|RoleBaseOf))
	assert.False(t, IsDirectBaseRelation(RoleReference|RoleBaseOf|RoleChildOf), "a childOf-qualified base mention is not direct")
	assert.True(t, IsBareReference(RoleReference))
	assert.False(t, IsBareReference(RoleReference|RoleExtendedBy))
}

func TestOccurrence_JSON(t *testing.T) {
	occ := Occurrence{
		Symbol:   Symbol{USR: "s:4main4BaseC", Name: "Base", Kind: KindClass},
		Location: NewLocation("/p/Base.swift", "main", 3, 7, -4),
		Roles:    RoleDefinition | RoleCanonical,
	}
	assert.Zero(t, occ.Location.Offset, "negative offsets clamp to 0")

	data, err := json.Marshal(occ)
	require.NoError(t, err)
	var back Occurrence
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, KindClass, back.Symbol.Kind)
	assert.Equal(t, occ.Roles, back.Roles)
}

func TestOccurrence_RelationWith(t *testing.T) {
	occ := Occurrence{
		Relations: []Relation{
			{Symbol: Symbol{USR: "a"}, Roles: RoleContainedBy},
			{Symbol: Symbol{USR: "b"}, Roles: RoleChildOf},
			{Symbol: Symbol{USR: "c"}, Roles: RoleCalledBy | RoleContainedBy},
		},
	}
	rel, ok := occ.RelationWith(RoleChildOf)
	require.True(t, ok)
	assert.Equal(t, "b", rel.Symbol.USR)

	_, ok = occ.RelationWith(RoleBaseOf)
	assert.False(t, ok)
	assert.Len(t, occ.RelationsWith(RoleContainedBy), 2)
}

func TestLocation(t *testing.T) {
	loc := Location{Path: "/work/proj/Sources/A.swift", Line: 1, Column: 2}
	assert.True(t, loc.Within("/work/proj"))
	assert.False(t, loc.Within("/other"))
	assert.True(t, loc.Within(""))
	assert.Equal(t, "/work/proj/Sources/A.swift:1:2", loc.String())
	assert.Equal(t, "<Foundation>", Location{ModuleName: "Foundation", IsSystem: true}.String())
}
