package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"symgraph/internal/indexstore"
	"symgraph/internal/paths"
	"symgraph/internal/query"
	"symgraph/internal/source"
	"symgraph/internal/symbol"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
	FormatHuman OutputFormat = "human"
)

// FindResponse is the output of the find command.
type FindResponse struct {
	Preset      string             `json:"preset" yaml:"preset"`
	Term        string             `json:"term" yaml:"term"`
	Results     []query.SymbolView `json:"results" yaml:"results"`
	Suggestions []string           `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
}

// RelationResponse is the output of the relationship commands.
type RelationResponse struct {
	Relation string          `json:"relation" yaml:"relation"`
	Targets  []RelatedTarget `json:"targets" yaml:"targets"`
}

// RelatedTarget pairs a looked-up symbol with the symbols related to it.
type RelatedTarget struct {
	Symbol  query.SymbolView   `json:"symbol" yaml:"symbol"`
	Results []query.SymbolView `json:"results" yaml:"results"`
}

// SourceResponse is the output of the source command.
type SourceResponse struct {
	Symbol   query.SymbolView `json:"symbol" yaml:"symbol"`
	Lines    []source.Line    `json:"lines,omitempty" yaml:"lines,omitempty"`
	Contents string           `json:"contents,omitempty" yaml:"contents,omitempty"`
}

// FormatResponse formats a response according to the specified format
func FormatResponse(resp any, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatYAML:
		return formatYAML(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func formatJSON(resp any) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

func formatYAML(resp any) (string, error) {
	data, err := yaml.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

func formatHuman(resp any) (string, error) {
	switch v := resp.(type) {
	case *FindResponse:
		return formatFindHuman(v), nil
	case *RelationResponse:
		return formatRelationHuman(v), nil
	case *SourceResponse:
		return formatSourceHuman(v), nil
	case *indexstore.Stats:
		return formatStatsHuman(v), nil
	case string:
		return v, nil
	default:
		return formatJSON(resp)
	}
}

func formatFindHuman(resp *FindResponse) string {
	var b strings.Builder
	if len(resp.Results) == 0 {
		fmt.Fprintf(&b, "No %s matching %q", resp.Preset, resp.Term)
		if len(resp.Suggestions) > 0 {
			fmt.Fprintf(&b, "\nDid you mean: %s?", strings.Join(resp.Suggestions, ", "))
		}
		return b.String()
	}
	for i, v := range resp.Results {
		if i > 0 {
			b.WriteString("\n")
		}
		writeSymbolHuman(&b, v, "")
	}
	return b.String()
}

func formatRelationHuman(resp *RelationResponse) string {
	var b strings.Builder
	for i, target := range resp.Targets {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%s of %s %s (%s):", resp.Relation, target.Symbol.Kind, target.Symbol.Name, target.Symbol.USR)
		if len(target.Results) == 0 {
			b.WriteString("\n  (none)")
			continue
		}
		for _, v := range target.Results {
			b.WriteString("\n")
			writeSymbolHuman(&b, v, "  ")
		}
	}
	return b.String()
}

// writeSymbolHuman writes one symbol as "kind name  location" followed by
// its parent and bases when present.
func writeSymbolHuman(b *strings.Builder, v query.SymbolView, indent string) {
	fmt.Fprintf(b, "%s%s %s  %s", indent, v.Kind, v.Name, displayLocation(v.Location))
	if v.Parent != nil {
		fmt.Fprintf(b, "\n%s  in %s %s", indent, v.Parent.Kind, qualifiedName(v))
	}
	if len(v.Inheritance) > 0 {
		bases := make([]string, len(v.Inheritance))
		for i, base := range v.Inheritance {
			bases[i] = base.Name
		}
		fmt.Fprintf(b, "\n%s  inherits %s", indent, strings.Join(bases, ", "))
	}
}

// displayRoot is the project directory human output shows paths relative to.
var displayRoot string

func displayLocation(loc symbol.Location) string {
	if loc.Path == "" || displayRoot == "" || !paths.IsWithinProject(loc.Path, displayRoot) {
		return loc.String()
	}
	rel, err := paths.CanonicalizePath(loc.Path, displayRoot)
	if err != nil {
		return loc.String()
	}
	return fmt.Sprintf("%s:%d:%d", rel, loc.Line, loc.Column)
}

// qualifiedName joins the parent chain above v, outermost first.
func qualifiedName(v query.SymbolView) string {
	var names []string
	for p := v.Parent; p != nil; p = p.Parent {
		names = append([]string{p.Name}, names...)
	}
	return strings.Join(names, ".")
}

func formatSourceHuman(resp *SourceResponse) string {
	if resp.Contents != "" {
		return strings.TrimRight(resp.Contents, "\n")
	}
	width := 1
	if n := len(resp.Lines); n > 0 {
		width = len(fmt.Sprint(resp.Lines[n-1].Number))
	}
	var b strings.Builder
	b.WriteString(displayLocation(resp.Symbol.Location))
	for _, line := range resp.Lines {
		marker := " "
		if line.Number == resp.Symbol.Location.Line {
			marker = ">"
		}
		fmt.Fprintf(&b, "\n%s %*d | %s", marker, width, line.Number, line.Text)
	}
	return b.String()
}

func formatStatsHuman(s *indexstore.Stats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Index: %s\n", s.Source)
	fmt.Fprintf(&b, "  Project:     %s\n", s.ProjectRoot)
	fmt.Fprintf(&b, "  Loaded:      %s\n", humanize.Time(s.LoadedAt))
	fmt.Fprintf(&b, "  Symbols:     %s\n", humanize.Comma(int64(s.Symbols)))
	fmt.Fprintf(&b, "  Occurrences: %s\n", humanize.Comma(int64(s.Occurrences)))
	fmt.Fprintf(&b, "  Relations:   %s\n", humanize.Comma(int64(s.Relations)))
	fmt.Fprintf(&b, "  Files:       %s\n", humanize.Comma(int64(s.Files)))
	fmt.Fprintf(&b, "  Fingerprint: %s", shortID(s.Fingerprint))
	return b.String()
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func views(rs []*query.ResolvedSymbol) []query.SymbolView {
	out := make([]query.SymbolView, len(rs))
	for i, r := range rs {
		out[i] = r.View()
	}
	return out
}
