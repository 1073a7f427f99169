package symbol

import (
	"fmt"
	"strings"
)

// Location is where an occurrence appears.
type Location struct {
	// Path is the absolute document path. Empty for symbols known only from
	// dependency metadata.
	Path string `json:"path" yaml:"path"`

	// ModuleName is the module (package) the document belongs to.
	ModuleName string `json:"module,omitempty" yaml:"module,omitempty"`

	// Line is 1-based.
	Line int `json:"line" yaml:"line"`

	// Column is 1-based, counted in UTF-8 bytes.
	Column int `json:"column" yaml:"column"`

	// Offset is the UTF-8 byte offset from the start of the document.
	Offset int `json:"offset,omitempty" yaml:"offset,omitempty"`

	// IsSystem marks declarations outside the project (SDKs, dependencies).
	IsSystem bool `json:"isSystem,omitempty" yaml:"isSystem,omitempty"`

	// IsStale marks occurrences whose backing file changed after indexing.
	// Informational only.
	IsStale bool `json:"isStale,omitempty" yaml:"isStale,omitempty"`
}

// NewLocation builds a location, clamping negative coordinates to zero.
func NewLocation(path, module string, line, column, offset int) Location {
	return Location{
		Path:       path,
		ModuleName: module,
		Line:       max(line, 0),
		Column:     max(column, 0),
		Offset:     max(offset, 0),
	}
}

// IsZero reports whether the location carries no position.
func (l Location) IsZero() bool {
	return l.Path == "" && l.Line == 0 && l.Column == 0
}

// Within reports whether the path contains dir. An empty dir matches everything.
func (l Location) Within(dir string) bool {
	if dir == "" {
		return true
	}
	return strings.Contains(l.Path, dir)
}

func (l Location) String() string {
	if l.Path == "" {
		if l.ModuleName != "" {
			return "<" + l.ModuleName + ">"
		}
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d:%d", l.Path, l.Line, l.Column)
}
