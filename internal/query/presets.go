package query

import (
	"strings"

	"symgraph/internal/errors"
	"symgraph/internal/symbol"
)

// Preset names a predefined query shape.
type Preset string

const (
	PresetClasses      Preset = "classes"
	PresetStructs      Preset = "structs"
	PresetEnums        Preset = "enums"
	PresetProtocols    Preset = "protocols"
	PresetTypealiases  Preset = "typealiases"
	PresetDeclarations Preset = "declarations"
	PresetFunctions    Preset = "functions"
	PresetProperties   Preset = "properties"
	PresetExtensions   Preset = "extensions"
)

type presetDef struct {
	kinds symbol.KindSet
	roles symbol.Role
	match Match
}

var memberRoles = symbol.RoleDefinition | symbol.RoleChildOf | symbol.RoleCanonical

var presetDefs = map[Preset]presetDef{
	PresetClasses:      {symbol.NewKindSet(symbol.KindClass), symbol.RoleDefinition, DeclarationMatch},
	PresetStructs:      {symbol.NewKindSet(symbol.KindStruct), symbol.RoleDefinition, DeclarationMatch},
	PresetEnums:        {symbol.NewKindSet(symbol.KindEnum), symbol.RoleDefinition, DeclarationMatch},
	PresetProtocols:    {symbol.NewKindSet(symbol.KindProtocol), symbol.RoleDefinition, DeclarationMatch},
	PresetTypealiases:  {symbol.NewKindSet(symbol.KindTypealias), symbol.RoleDefinition, DeclarationMatch},
	PresetDeclarations: {symbol.DeclarationKinds, symbol.RoleDefinition, DeclarationMatch},
	PresetFunctions:    {symbol.AllFunctionKinds, memberRoles, SubstringMatch},
	PresetProperties:   {symbol.AllPropertyKinds, memberRoles, SubstringMatch},
	PresetExtensions:   {symbol.NewKindSet(symbol.KindExtension), symbol.RoleDefinition, SubstringMatch},
}

// Presets lists every preset in display order.
func Presets() []Preset {
	return []Preset{
		PresetClasses, PresetStructs, PresetEnums, PresetProtocols, PresetTypealiases,
		PresetDeclarations, PresetFunctions, PresetProperties, PresetExtensions,
	}
}

// ParsePreset resolves a preset name, case-insensitively.
func ParsePreset(name string) (Preset, error) {
	p := Preset(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := presetDefs[p]; !ok {
		return "", errors.Newf(errors.InvalidPreset, "unknown query preset %q", name)
	}
	return p, nil
}

// Spec builds the project-restricted spec for term.
func (p Preset) Spec(term string) Spec {
	def := presetDefs[p]
	return NewSpec().
		WithKindSet(def.kinds).
		WithRoles(def.roles).
		WithMatch(def.match).
		WithTerm(term)
}

// SpecInFiles builds the spec scoped to files. An empty term matches
// everything declared in them.
func (p Preset) SpecInFiles(files []string, term string) Spec {
	return p.Spec(term).WithFiles(files...).RestrictToProject(false)
}

func Classes(term string) Spec      { return PresetClasses.Spec(term) }
func Structs(term string) Spec      { return PresetStructs.Spec(term) }
func Enums(term string) Spec        { return PresetEnums.Spec(term) }
func Protocols(term string) Spec    { return PresetProtocols.Spec(term) }
func Typealiases(term string) Spec  { return PresetTypealiases.Spec(term) }
func Declarations(term string) Spec { return PresetDeclarations.Spec(term) }
func Functions(term string) Spec    { return PresetFunctions.Spec(term) }
func Properties(term string) Spec   { return PresetProperties.Spec(term) }
func Extensions(term string) Spec   { return PresetExtensions.Spec(term) }

func ClassesInFiles(files []string, term string) Spec {
	return PresetClasses.SpecInFiles(files, term)
}

func StructsInFiles(files []string, term string) Spec {
	return PresetStructs.SpecInFiles(files, term)
}

func EnumsInFiles(files []string, term string) Spec {
	return PresetEnums.SpecInFiles(files, term)
}

func ProtocolsInFiles(files []string, term string) Spec {
	return PresetProtocols.SpecInFiles(files, term)
}

func TypealiasesInFiles(files []string, term string) Spec {
	return PresetTypealiases.SpecInFiles(files, term)
}

func DeclarationsInFiles(files []string, term string) Spec {
	return PresetDeclarations.SpecInFiles(files, term)
}

func FunctionsInFiles(files []string, term string) Spec {
	return PresetFunctions.SpecInFiles(files, term)
}

func PropertiesInFiles(files []string, term string) Spec {
	return PresetProperties.SpecInFiles(files, term)
}

func ExtensionsInFiles(files []string, term string) Spec {
	return PresetExtensions.SpecInFiles(files, term)
}
