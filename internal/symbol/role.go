package symbol

import (
	"fmt"
	"strings"
)

// Role is a bitmask describing what an occurrence represents at its location.
type Role uint64

const (
	RoleDeclaration Role = 1 << iota
	RoleDefinition
	RoleReference
	RoleRead
	RoleWrite
	RoleCall
	RoleDynamic
	RoleAddressOf
	RoleImplicit
	RoleChildOf
	RoleBaseOf
	RoleOverrideOf
	RoleReceivedBy
	RoleCalledBy
	RoleExtendedBy
	RoleAccessorOf
	RoleContainedBy
	RoleIBTypeOf
	RoleSpecializationOf
	RoleCanonical

	roleEnd

	// RoleAll covers every defined role bit.
	RoleAll = roleEnd - 1
)

// RoleNone is the empty set.
const RoleNone Role = 0

var roleNames = []struct {
	role Role
	name string
}{
	{RoleDeclaration, "declaration"},
	{RoleDefinition, "definition"},
	{RoleReference, "reference"},
	{RoleRead, "read"},
	{RoleWrite, "write"},
	{RoleCall, "call"},
	{RoleDynamic, "dynamic"},
	{RoleAddressOf, "addressOf"},
	{RoleImplicit, "implicit"},
	{RoleChildOf, "childOf"},
	{RoleBaseOf, "baseOf"},
	{RoleOverrideOf, "overrideOf"},
	{RoleReceivedBy, "receivedBy"},
	{RoleCalledBy, "calledBy"},
	{RoleExtendedBy, "extendedBy"},
	{RoleAccessorOf, "accessorOf"},
	{RoleContainedBy, "containedBy"},
	{RoleIBTypeOf, "ibTypeOf"},
	{RoleSpecializationOf, "specializationOf"},
	{RoleCanonical, "canonical"},
}

// Roles builds a set from individual roles.
func Roles(roles ...Role) Role {
	var r Role
	for _, role := range roles {
		r |= role
	}
	return r
}

// Union returns r ∪ other.
func (r Role) Union(other Role) Role { return r | other }

// Intersect returns r ∩ other.
func (r Role) Intersect(other Role) Role { return r & other }

// Contains reports whether every bit of other is set in r.
func (r Role) Contains(other Role) bool { return r&other == other }

// Intersects reports whether r and other share at least one bit.
func (r Role) Intersects(other Role) bool { return r&other != 0 }

// IsEmpty reports whether no bit is set.
func (r Role) IsEmpty() bool { return r&RoleAll == 0 }

// String lists the set bits in declaration order, joined by "|".
func (r Role) String() string {
	if r.IsEmpty() {
		return "none"
	}
	var parts []string
	for _, rn := range roleNames {
		if r&rn.role != 0 {
			parts = append(parts, rn.name)
		}
	}
	return strings.Join(parts, "|")
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRoles(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseRoles parses a "|" or "," separated role list. "all" and "none" are accepted.
func ParseRoles(s string) (Role, error) {
	var r Role
	fields := strings.FieldsFunc(s, func(c rune) bool { return c == '|' || c == ',' || c == ' ' })
	for _, f := range fields {
		switch strings.ToLower(f) {
		case "all":
			r |= RoleAll
			continue
		case "none":
			continue
		}
		found := false
		for _, rn := range roleNames {
			if strings.EqualFold(rn.name, f) {
				r |= rn.role
				found = true
				break
			}
		}
		if !found {
			return RoleNone, fmt.Errorf("unknown symbol role %q", f)
		}
	}
	return r, nil
}

// IsDirectBaseRelation reports whether roles is exactly {reference, baseOf}: the
// shape of a base-type mention in a subtype's inheritance clause.
func IsDirectBaseRelation(roles Role) bool {
	return roles == RoleReference|RoleBaseOf
}

// IsBareReference reports whether roles is exactly {reference}. An extension with
// no members leaves only such an occurrence of the extended type.
func IsBareReference(roles Role) bool {
	return roles == RoleReference
}
