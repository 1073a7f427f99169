// Package source reads the text behind a symbol location: the declaration
// line or the whole file. Failures carry distinct error codes so callers can
// relay them unchanged.
package source

import (
	"bytes"
	"fmt"
	"os"
	"unicode/utf8"

	"symgraph/internal/errors"
	"symgraph/internal/symbol"
)

// Line is one numbered source line.
type Line struct {
	Number int    `json:"number" yaml:"number"`
	Text   string `json:"text" yaml:"text"`
}

// Contents returns the full text of the file at loc.
func Contents(loc symbol.Location) (string, error) {
	data, err := read(loc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DeclarationLine returns the line at loc without its line terminator.
func DeclarationLine(loc symbol.Location) (string, error) {
	lines, err := Excerpt(loc, 0, 0)
	if err != nil {
		return "", err
	}
	return lines[0].Text, nil
}

// Excerpt returns the line at loc with up to before lines above it and after
// lines below it.
func Excerpt(loc symbol.Location, before, after int) ([]Line, error) {
	data, err := read(loc)
	if err != nil {
		return nil, err
	}
	lines := splitLines(data)
	if loc.Line < 1 || loc.Line > len(lines) {
		return nil, errors.New(errors.LineOutOfRange,
			fmt.Sprintf("line %d is outside %s (%d lines)", loc.Line, loc.Path, len(lines)), nil)
	}

	first := max(loc.Line-max(before, 0), 1)
	last := min(loc.Line+max(after, 0), len(lines))
	out := make([]Line, 0, last-first+1)
	for n := first; n <= last; n++ {
		out = append(out, Line{Number: n, Text: lines[n-1]})
	}
	return out, nil
}

func read(loc symbol.Location) ([]byte, error) {
	if loc.Path == "" {
		return nil, errors.Newf(errors.PathMissing, "location %s has no file path", loc)
	}
	data, err := os.ReadFile(loc.Path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.PathMissing, fmt.Sprintf("%s does not exist", loc.Path), err)
	}
	if err != nil {
		return nil, errors.New(errors.ReadFailed, fmt.Sprintf("failed to read %s", loc.Path), err)
	}
	if len(data) == 0 {
		return nil, errors.Newf(errors.ContentsEmpty, "%s is empty", loc.Path)
	}
	if !utf8.Valid(data) {
		return nil, errors.Newf(errors.ReadFailed, "%s is not valid UTF-8", loc.Path)
	}
	return data, nil
}

// splitLines splits on \n, dropping a trailing \r from each line. A final
// newline does not start another line.
func splitLines(data []byte) []string {
	var lines []string
	for len(data) > 0 {
		end := bytes.IndexByte(data, '\n')
		var line []byte
		if end < 0 {
			line, data = data, nil
		} else {
			line, data = data[:end], data[end+1:]
		}
		lines = append(lines, string(bytes.TrimSuffix(line, []byte{'\r'})))
	}
	return lines
}
