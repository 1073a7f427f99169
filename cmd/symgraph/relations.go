package main

import (
	"github.com/spf13/cobra"

	"symgraph/internal/query"
	"symgraph/internal/symbol"
)

var relationUSR string

// relation is one relationship subcommand.
type relation struct {
	use    string
	short  string
	lookup func(string) query.Spec
	// related returns the symbols related to target.
	related func(e *engine, target *query.ResolvedSymbol) []*query.ResolvedSymbol
}

func byUSR(rel func(*query.Executor, string) []*query.ResolvedSymbol) func(*engine, *query.ResolvedSymbol) []*query.ResolvedSymbol {
	return func(e *engine, target *query.ResolvedSymbol) []*query.ResolvedSymbol {
		return rel(e.exec, target.USR())
	}
}

func exactFunctions(name string) query.Spec {
	return query.Functions(name).WithMatch(query.DeclarationMatch)
}

// anyDeclaration matches a definition of any kind by exact name. Extensions
// are left out so the lookup does not expand into them.
func anyDeclaration(name string) query.Spec {
	return query.NewSpec().
		WithTerm(name).
		WithMatch(query.DeclarationMatch).
		WithKindSet(symbol.AllKinds.Without(symbol.KindExtension)).
		WithRoles(symbol.RoleDefinition)
}

var relations = []relation{
	{"subclasses", "Classes deriving directly from a class", query.Declarations, byUSR((*query.Executor).Subclasses)},
	{"conformances", "Types adopting or inheriting from a protocol or type", query.Declarations, byUSR((*query.Executor).Conformances)},
	{"extensions", "Extensions of a type, including empty ones", query.Declarations, byUSR((*query.Executor).Extensions)},
	{"inheritance", "Direct bases of a type, each with its own bases", query.Declarations, byUSR((*query.Executor).Inheritance)},
	{"callers", "Functions that call a function", exactFunctions, byUSR((*query.Executor).Callers)},
	{"callees", "Functions called by a function", exactFunctions, byUSR((*query.Executor).Callees)},
	{"ancestors", "Enclosing declarations of a symbol, innermost first", anyDeclaration, ancestors},
}

func ancestors(_ *engine, target *query.ResolvedSymbol) []*query.ResolvedSymbol {
	var out []*query.ResolvedSymbol
	for a := range target.Ancestors() {
		out = append(out, a)
	}
	return out
}

func init() {
	for _, rel := range relations {
		cmd := &cobra.Command{
			Use:   rel.use + " [name]",
			Short: rel.short,
			Long: rel.short + `.

The target is looked up by exact name, or by USR with --usr. A name matching
several declarations prints one section per declaration.`,
			Args: cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runRelation(cmd, args, rel)
			},
		}
		cmd.Flags().StringVar(&relationUSR, "usr", "", "Look the target up by USR instead of name")
		rootCmd.AddCommand(cmd)
	}
}

func runRelation(cmd *cobra.Command, args []string, rel relation) error {
	var name string
	if len(args) > 0 {
		name = args[0]
	}
	if name == "" && relationUSR == "" {
		return cmd.Usage()
	}

	e, err := openEngine(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()

	targets, err := e.lookup(name, relationUSR, rel.lookup)
	if err != nil {
		return err
	}
	resp := &RelationResponse{Relation: rel.use, Targets: []RelatedTarget{}}
	for _, target := range targets {
		resp.Targets = append(resp.Targets, RelatedTarget{
			Symbol:  target.View(),
			Results: views(rel.related(e, target)),
		})
	}
	return printResponse(cmd, resp)
}
