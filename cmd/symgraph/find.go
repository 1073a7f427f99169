package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"symgraph/internal/query"
)

var (
	findFiles      []string
	findModule     string
	findIgnoreCase bool
	findAll        bool
)

var findCmd = &cobra.Command{
	Use:   "find <preset> [term]",
	Short: "Find symbols with a query preset",
	Long: `Find symbols with one of the query presets and print each with its parent
chain and inheritance.

Presets: ` + presetNames() + `

Type presets and declarations match the whole name. functions, properties
and extensions match the term anywhere in the name. An empty term matches
every symbol of the preset's kinds.

Examples:
  symgraph find classes Circle
  symgraph find functions render --module App
  symgraph find extensions --files Sources/Circle.swift
  symgraph find declarations shape --ignore-case --all`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runFind,
}

func init() {
	findCmd.Flags().StringSliceVar(&findFiles, "files", nil, "Only search symbols declared in these files, in order")
	findCmd.Flags().StringVar(&findModule, "module", "", "Only return symbols from this module")
	findCmd.Flags().BoolVarP(&findIgnoreCase, "ignore-case", "i", false, "Match the term case-insensitively")
	findCmd.Flags().BoolVar(&findAll, "all", false, "Include symbols outside the project directory")
	rootCmd.AddCommand(findCmd)
}

func presetNames() string {
	names := make([]string, 0, len(query.Presets()))
	for _, p := range query.Presets() {
		names = append(names, string(p))
	}
	return strings.Join(names, ", ")
}

func runFind(cmd *cobra.Command, args []string) error {
	preset, err := query.ParsePreset(args[0])
	if err != nil {
		return err
	}
	var term string
	if len(args) > 1 {
		term = args[1]
	}

	e, err := openEngine(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()

	spec := preset.Spec(term)
	if len(findFiles) > 0 {
		spec = preset.SpecInFiles(findFiles, term)
	}
	spec = spec.WithModule(findModule).WithIgnoreCase(findIgnoreCase || e.cfg.Query.IgnoreCase)
	if findAll {
		spec = spec.RestrictToProject(false)
	}

	results := e.exec.Run(spec)
	resp := &FindResponse{
		Preset:  string(preset),
		Term:    term,
		Results: views(results),
	}
	if len(results) == 0 && spec.HasTerm() {
		resp.Suggestions = query.Suggest(e.store.SymbolNames(), term, e.cfg.Query.MaxSuggestions)
	}
	e.logger.Debug("find", "preset", preset, "term", term, "results", len(results))
	return printResponse(cmd, resp)
}

// printResponse writes resp to stdout in the --format format.
func printResponse(cmd *cobra.Command, resp any) error {
	out, err := FormatResponse(resp, OutputFormat(formatFlag))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}
