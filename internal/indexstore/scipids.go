package indexstore

import (
	"fmt"
	"strings"

	"symgraph/internal/symbol"
)

// descriptorSuffix classifies one descriptor of a SCIP symbol.
type descriptorSuffix uint8

const (
	suffixNamespace     descriptorSuffix = iota // name/
	suffixType                                  // name#
	suffixTerm                                  // name.
	suffixMethod                                // name(disambiguator).
	suffixTypeParameter                         // [name]
	suffixParameter                             // (name)
	suffixMeta                                  // name:
	suffixMacro                                 // name!
)

type descriptor struct {
	name          string
	disambiguator string
	suffix        descriptorSuffix

	// start is the byte offset of the descriptor within the raw symbol.
	start int
}

// scipSymbol is a parsed SCIP symbol identifier:
//
//	<scheme> <manager> <package> <version> <descriptor>+
//	local <id>
//
// Examples:
//
//	scip-go gomod example.com/shapes v1.0.0 `example.com/shapes`/Circle#Area().
//	scip-swift swiftpm Shapes 1.0 Shape#
type scipSymbol struct {
	raw         string
	scheme      string
	manager     string
	pkg         string
	version     string
	descriptors []descriptor
	local       bool
}

// parseSCIPSymbol parses a SCIP symbol identifier. A doubled space inside the
// header fields is an escaped space.
func parseSCIPSymbol(raw string) (*scipSymbol, error) {
	if raw == "" {
		return nil, fmt.Errorf("empty SCIP symbol")
	}
	if strings.HasPrefix(raw, "local ") {
		return &scipSymbol{raw: raw, local: true}, nil
	}

	sym := &scipSymbol{raw: raw}
	pos := 0
	fields := make([]string, 0, 4)
	for len(fields) < 4 {
		field, next, ok := readHeaderField(raw, pos)
		if !ok {
			return nil, fmt.Errorf("invalid SCIP symbol header: %q", raw)
		}
		fields = append(fields, field)
		pos = next
	}
	sym.scheme, sym.manager, sym.pkg, sym.version = fields[0], fields[1], fields[2], fields[3]
	if sym.manager == "." {
		sym.manager = ""
	}
	if sym.pkg == "." {
		sym.pkg = ""
	}
	if sym.version == "." {
		sym.version = ""
	}

	descs, err := parseDescriptors(raw, pos)
	if err != nil {
		return nil, err
	}
	if len(descs) == 0 {
		return nil, fmt.Errorf("SCIP symbol without descriptors: %q", raw)
	}
	sym.descriptors = descs
	return sym, nil
}

// readHeaderField reads a space-terminated field starting at pos.
func readHeaderField(s string, pos int) (string, int, bool) {
	var b strings.Builder
	for i := pos; i < len(s); i++ {
		if s[i] != ' ' {
			b.WriteByte(s[i])
			continue
		}
		if i+1 < len(s) && s[i+1] == ' ' {
			b.WriteByte(' ')
			i++
			continue
		}
		return b.String(), i + 1, true
	}
	return "", 0, false
}

func parseDescriptors(s string, pos int) ([]descriptor, error) {
	var out []descriptor
	for pos < len(s) {
		start := pos
		switch s[pos] {
		case '[':
			name, next, err := readName(s, pos+1)
			if err != nil {
				return nil, err
			}
			if next >= len(s) || s[next] != ']' {
				return nil, fmt.Errorf("unterminated type parameter in %q", s)
			}
			out = append(out, descriptor{name: name, suffix: suffixTypeParameter, start: start})
			pos = next + 1
			continue
		case '(':
			name, next, err := readName(s, pos+1)
			if err != nil {
				return nil, err
			}
			if next >= len(s) || s[next] != ')' {
				return nil, fmt.Errorf("unterminated parameter in %q", s)
			}
			out = append(out, descriptor{name: name, suffix: suffixParameter, start: start})
			pos = next + 1
			continue
		}

		name, next, err := readName(s, pos)
		if err != nil {
			return nil, err
		}
		if next >= len(s) {
			return nil, fmt.Errorf("descriptor %q has no suffix in %q", name, s)
		}
		d := descriptor{name: name, start: start}
		switch s[next] {
		case '/':
			d.suffix = suffixNamespace
		case '#':
			d.suffix = suffixType
		case '.':
			d.suffix = suffixTerm
		case ':':
			d.suffix = suffixMeta
		case '!':
			d.suffix = suffixMacro
		case '(':
			end := strings.IndexByte(s[next:], ')')
			if end < 0 || next+end+1 >= len(s) || s[next+end+1] != '.' {
				return nil, fmt.Errorf("malformed method descriptor in %q", s)
			}
			d.suffix = suffixMethod
			d.disambiguator = s[next+1 : next+end]
			next = next + end + 1
		default:
			return nil, fmt.Errorf("unexpected %q after %q in %q", s[next], name, s)
		}
		out = append(out, d)
		pos = next + 1
	}
	return out, nil
}

// readName reads a simple or backtick-escaped identifier. Inside backticks a
// doubled backtick is a literal one.
func readName(s string, pos int) (string, int, error) {
	if pos < len(s) && s[pos] == '`' {
		var b strings.Builder
		for i := pos + 1; i < len(s); i++ {
			if s[i] != '`' {
				b.WriteByte(s[i])
				continue
			}
			if i+1 < len(s) && s[i+1] == '`' {
				b.WriteByte('`')
				i++
				continue
			}
			return b.String(), i + 1, nil
		}
		return "", 0, fmt.Errorf("unterminated escaped identifier in %q", s)
	}

	i := pos
	for i < len(s) && isIdentChar(s[i]) {
		i++
	}
	if i == pos {
		return "", 0, fmt.Errorf("empty identifier at offset %d in %q", pos, s)
	}
	return s[pos:i], i, nil
}

func isIdentChar(c byte) bool {
	return c == '_' || c == '+' || c == '-' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
		c >= 0x80
}

func (s *scipSymbol) last() descriptor {
	return s.descriptors[len(s.descriptors)-1]
}

// Name returns the simple name of the innermost descriptor.
func (s *scipSymbol) Name() string {
	if s.local || len(s.descriptors) == 0 {
		return ""
	}
	return s.last().name
}

// Language derives a language name from the scheme: "scip-go" -> "go".
func (s *scipSymbol) Language() string {
	return strings.TrimPrefix(s.scheme, "scip-")
}

// ParentUSR returns the enclosing symbol encoded in the descriptor path, or
// "" when the enclosing descriptor is a namespace or there is none.
func (s *scipSymbol) ParentUSR() string {
	if s.local || len(s.descriptors) < 2 {
		return ""
	}
	parent := s.descriptors[len(s.descriptors)-2]
	switch parent.suffix {
	case suffixType, suffixTerm, suffixMethod:
		return s.raw[:s.last().start]
	}
	return ""
}

// inferKind guesses a kind from the descriptor shape when the indexer did
// not record one.
func (s *scipSymbol) inferKind() symbol.Kind {
	if s.local || len(s.descriptors) == 0 {
		return symbol.KindUnsupported
	}
	inType := len(s.descriptors) > 1 && s.descriptors[len(s.descriptors)-2].suffix == suffixType

	switch s.last().suffix {
	case suffixNamespace:
		return symbol.KindNamespace
	case suffixType:
		return symbol.KindClass
	case suffixMethod:
		if inType {
			return symbol.KindInstanceMethod
		}
		return symbol.KindFunction
	case suffixTerm:
		if inType {
			return symbol.KindInstanceProperty
		}
		return symbol.KindVariable
	case suffixParameter, suffixTypeParameter:
		return symbol.KindParameter
	case suffixMacro:
		return symbol.KindMacro
	}
	return symbol.KindUnsupported
}

// scipKindNames maps SymbolInformation.Kind enum names to kinds. Names are
// used instead of numeric values so that kinds added by newer SCIP releases
// degrade to descriptor inference.
var scipKindNames = map[string]symbol.Kind{
	"Class":               symbol.KindClass,
	"Object":              symbol.KindClass,
	"SingletonClass":      symbol.KindClass,
	"Struct":              symbol.KindStruct,
	"Protocol":            symbol.KindProtocol,
	"Interface":           symbol.KindProtocol,
	"Trait":               symbol.KindProtocol,
	"TypeClass":           symbol.KindProtocol,
	"Enum":                symbol.KindEnum,
	"EnumMember":          symbol.KindEnumConstant,
	"Extension":           symbol.KindExtension,
	"Union":               symbol.KindUnion,
	"TypeAlias":           symbol.KindTypealias,
	"Type":                symbol.KindTypealias,
	"Function":            symbol.KindFunction,
	"Method":              symbol.KindInstanceMethod,
	"AbstractMethod":      symbol.KindInstanceMethod,
	"ProtocolMethod":      symbol.KindInstanceMethod,
	"TraitMethod":         symbol.KindInstanceMethod,
	"PureVirtualMethod":   symbol.KindInstanceMethod,
	"MethodSpecification": symbol.KindInstanceMethod,
	"StaticMethod":        symbol.KindStaticMethod,
	"SingletonMethod":     symbol.KindClassMethod,
	"Constructor":         symbol.KindConstructor,
	"Variable":            symbol.KindVariable,
	"Constant":            symbol.KindVariable,
	"StaticVariable":      symbol.KindVariable,
	"Field":               symbol.KindField,
	"Property":            symbol.KindInstanceProperty,
	"Getter":              symbol.KindInstanceProperty,
	"Setter":              symbol.KindInstanceProperty,
	"Accessor":            symbol.KindInstanceProperty,
	"StaticProperty":      symbol.KindStaticProperty,
	"StaticField":         symbol.KindStaticProperty,
	"StaticDataMember":    symbol.KindStaticProperty,
	"Parameter":           symbol.KindParameter,
	"SelfParameter":       symbol.KindParameter,
	"ThisParameter":       symbol.KindParameter,
	"TypeParameter":       symbol.KindParameter,
	"Module":              symbol.KindModule,
	"PackageObject":       symbol.KindModule,
	"Namespace":           symbol.KindNamespace,
	"Package":             symbol.KindNamespace,
	"Macro":               symbol.KindMacro,
}

// kindFromSCIP maps a SymbolInformation kind name, falling back to the descriptor.
func kindFromSCIP(kindName string, sym *scipSymbol) symbol.Kind {
	if k, ok := scipKindNames[kindName]; ok {
		return k
	}
	if sym == nil {
		return symbol.KindUnsupported
	}
	return sym.inferKind()
}

// isFunctionSymbol detects a function or method from the identifier alone.
// scip-go leaves Kind unset, but function descriptors always end in "().".
func isFunctionSymbol(usr string) bool {
	return strings.Contains(usr, "().")
}
