package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"symgraph/internal/errors"
	"symgraph/internal/symbol"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Circle.swift")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDeclarationLine(t *testing.T) {
	path := writeFile(t, "import Shapes\r\nclass Circle: Shape {\n    var radius: Double\n}\n")

	line, err := DeclarationLine(symbol.NewLocation(path, "", 2, 7, 0))
	require.NoError(t, err)
	assert.Equal(t, "class Circle: Shape {", line)

	line, err = DeclarationLine(symbol.NewLocation(path, "", 1, 1, 0))
	require.NoError(t, err)
	assert.Equal(t, "import Shapes", line)
}

func TestExcerpt(t *testing.T) {
	path := writeFile(t, "a\nb\nc\nd")

	lines, err := Excerpt(symbol.NewLocation(path, "", 2, 1, 0), 5, 1)
	require.NoError(t, err)
	assert.Equal(t, []Line{{1, "a"}, {2, "b"}, {3, "c"}}, lines)

	lines, err = Excerpt(symbol.NewLocation(path, "", 4, 1, 0), 1, 3)
	require.NoError(t, err)
	assert.Equal(t, []Line{{3, "c"}, {4, "d"}}, lines)
}

func TestContents(t *testing.T) {
	path := writeFile(t, "struct S {}\n")
	got, err := Contents(symbol.Location{Path: path})
	require.NoError(t, err)
	assert.Equal(t, "struct S {}\n", got)
}

func TestErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.swift")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	binary := filepath.Join(dir, "blob.bin")
	require.NoError(t, os.WriteFile(binary, []byte{0xff, 0xfe, 0x00}, 0644))
	short := writeFile(t, "one line\n")

	tests := []struct {
		name string
		loc  symbol.Location
		code errors.ErrorCode
	}{
		{"no path", symbol.Location{ModuleName: "Foundation", Line: 3}, errors.PathMissing},
		{"missing file", symbol.Location{Path: filepath.Join(dir, "gone.swift"), Line: 1}, errors.PathMissing},
		{"directory", symbol.Location{Path: dir, Line: 1}, errors.ReadFailed},
		{"empty file", symbol.Location{Path: empty, Line: 1}, errors.ContentsEmpty},
		{"invalid utf8", symbol.Location{Path: binary, Line: 1}, errors.ReadFailed},
		{"past end", symbol.Location{Path: short, Line: 2}, errors.LineOutOfRange},
		{"line zero", symbol.Location{Path: short, Line: 0}, errors.LineOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DeclarationLine(tt.loc)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.CodeOf(err))
		})
	}
}
