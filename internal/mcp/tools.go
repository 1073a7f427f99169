package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"symgraph/internal/query"
	"symgraph/internal/source"
)

// Arguments structs

type FindSymbolsArgs struct {
	Preset          string   `json:"preset" jsonschema:"one of classes, structs, enums, protocols, typealiases, declarations, functions, properties, extensions"`
	Term            string   `json:"term,omitempty" jsonschema:"name to match; empty matches everything"`
	Files           []string `json:"files,omitempty" jsonschema:"restrict the search to these source files, in order"`
	Module          string   `json:"module,omitempty" jsonschema:"only return symbols from this module"`
	IgnoreCase      bool     `json:"ignore_case,omitempty" jsonschema:"match the term case-insensitively"`
	IncludeExternal bool     `json:"include_external,omitempty" jsonschema:"include symbols outside the project directory"`
}

type SymbolArgs struct {
	Name string `json:"name,omitempty" jsonschema:"exact symbol name"`
	USR  string `json:"usr,omitempty" jsonschema:"symbol USR; takes precedence over name"`
}

type DeclarationArgs struct {
	USR     string `json:"usr" jsonschema:"symbol USR"`
	Context int    `json:"context,omitempty" jsonschema:"lines of context around the declaration"`
}

type IndexStatusArgs struct{}

// Result payloads

type findResult struct {
	Results     []query.SymbolView `json:"results"`
	Suggestions []string           `json:"suggestions,omitempty"`
}

type relatedResult struct {
	Symbol  query.SymbolView   `json:"symbol"`
	Results []query.SymbolView `json:"results"`
}

type relationFunc func(usr string) []*query.ResolvedSymbol

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.server, &mcpsdk.Tool{
		Name:        "find_symbols",
		Description: "Finds symbols with a query preset, resolving parents and inheritance",
	}, s.findSymbols)

	s.addRelationTool("subclasses", "Lists classes deriving directly from a class", query.Declarations, s.exec.Subclasses)
	s.addRelationTool("conformances", "Lists types adopting or inheriting from a protocol or type", query.Declarations, s.exec.Conformances)
	s.addRelationTool("extensions", "Lists the extensions of a type, including empty ones", query.Declarations, s.exec.Extensions)
	s.addRelationTool("inheritance", "Lists the direct bases of a type, each with its own bases", query.Declarations, s.exec.Inheritance)
	s.addRelationTool("callers", "Lists functions that call a function", exactFunctions, s.exec.Callers)
	s.addRelationTool("callees", "Lists functions called by a function", exactFunctions, s.exec.Callees)

	mcpsdk.AddTool(s.server, &mcpsdk.Tool{
		Name:        "declaration",
		Description: "Returns the source line declaring a symbol",
	}, s.declaration)

	mcpsdk.AddTool(s.server, &mcpsdk.Tool{
		Name:        "index_status",
		Description: "Returns the loaded index's source, fingerprint and counts",
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest, args IndexStatusArgs) (*mcpsdk.CallToolResult, any, error) {
		defer s.acquire(ctx)()
		stats, err := s.index.Stats()
		if err != nil {
			return errorResult(err), nil, nil
		}
		return jsonResult(stats)
	})
}

func exactFunctions(name string) query.Spec {
	return query.Functions(name).WithMatch(query.DeclarationMatch)
}

func (s *Server) findSymbols(ctx context.Context, req *mcpsdk.CallToolRequest, args FindSymbolsArgs) (*mcpsdk.CallToolResult, any, error) {
	preset, err := query.ParsePreset(args.Preset)
	if err != nil {
		return errorResult(err), nil, nil
	}
	defer s.acquire(ctx)()

	spec := preset.Spec(args.Term)
	if len(args.Files) > 0 {
		spec = preset.SpecInFiles(args.Files, args.Term)
	}
	spec = spec.WithModule(args.Module).WithIgnoreCase(args.IgnoreCase || s.opts.IgnoreCase)
	if args.IncludeExternal {
		spec = spec.RestrictToProject(false)
	}

	results := s.exec.Run(spec)
	out := findResult{Results: views(results)}
	if len(results) == 0 && spec.HasTerm() {
		out.Suggestions = query.Suggest(s.index.SymbolNames(), spec.Term(), s.opts.MaxSuggestions)
	}
	s.logger.Debug("find_symbols", "preset", preset, "term", args.Term, "results", len(results))
	return jsonResult(out)
}

func (s *Server) addRelationTool(name, description string, lookup func(string) query.Spec, rel relationFunc) {
	mcpsdk.AddTool(s.server, &mcpsdk.Tool{
		Name:        name,
		Description: description,
	}, func(ctx context.Context, req *mcpsdk.CallToolRequest, args SymbolArgs) (*mcpsdk.CallToolResult, any, error) {
		if args.Name == "" && args.USR == "" {
			return errorResult(fmt.Errorf("name or usr is required")), nil, nil
		}
		defer s.acquire(ctx)()

		var out []relatedResult
		for _, target := range s.targets(args, lookup) {
			out = append(out, relatedResult{
				Symbol:  target.View(),
				Results: views(rel(target.USR())),
			})
		}
		s.logger.Debug(name, "name", args.Name, "usr", args.USR, "targets", len(out))
		if out == nil {
			out = []relatedResult{}
		}
		return jsonResult(out)
	})
}

// targets resolves the symbols a relation tool operates on. A USR names one
// symbol; a name may match several declarations.
func (s *Server) targets(args SymbolArgs, lookup func(string) query.Spec) []*query.ResolvedSymbol {
	if args.USR != "" {
		target, ok := s.exec.ResolveUSR(args.USR)
		if !ok {
			return nil
		}
		return []*query.ResolvedSymbol{target}
	}
	return s.exec.Run(lookup(args.Name))
}

func (s *Server) declaration(ctx context.Context, req *mcpsdk.CallToolRequest, args DeclarationArgs) (*mcpsdk.CallToolResult, any, error) {
	defer s.acquire(ctx)()
	targets := s.targets(SymbolArgs{USR: args.USR}, nil)
	if len(targets) == 0 {
		return errorResult(fmt.Errorf("no declaration of %q", args.USR)), nil, nil
	}
	lines, err := source.Excerpt(targets[0].Location(), args.Context, args.Context)
	if err != nil {
		return errorResult(err), nil, nil
	}
	return jsonResult(map[string]any{
		"symbol": targets[0].View(),
		"lines":  lines,
	})
}

func views(rs []*query.ResolvedSymbol) []query.SymbolView {
	out := make([]query.SymbolView, len(rs))
	for i, r := range rs {
		out[i] = r.View()
	}
	return out
}

func jsonResult(v any) (*mcpsdk.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, nil, err
	}
	return textResult(string(data)), nil, nil
}

func textResult(text string) *mcpsdk.CallToolResult {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: text}},
	}
}

func errorResult(err error) *mcpsdk.CallToolResult {
	r := textResult(err.Error())
	r.IsError = true
	return r
}
