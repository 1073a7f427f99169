package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"symgraph/internal/slogutil"
	"symgraph/internal/version"
)

var (
	projectFlag string
	formatFlag  string
	verbosity   int
	quietFlag   bool
)

var rootCmd = &cobra.Command{
	Use:   "symgraph",
	Short: "symgraph - symbol relationship queries over a SCIP index",
	Long: `symgraph answers structural questions about a codebase from a prebuilt
SCIP index: which classes derive from a type, which types extend it, who calls
a function, and where each symbol lives with its parent and inheritance chain.

The index is imported into a local SQLite store under .symgraph/ and reloaded
when its source file changes.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("{{.Name}} version " + version.Info() + "\n")
	rootCmd.PersistentFlags().StringVarP(&projectFlag, "project", "C", "",
		"Project root (default: nearest directory containing .symgraph, else the working directory)")
	rootCmd.PersistentFlags().StringVar(&formatFlag, "format", string(FormatHuman),
		"Output format (human, json, yaml)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress console logs")
}

// cliLevel returns the level implied by -v/-q, or nil when neither was given
// and the configured level applies.
func cliLevel() *slog.Level {
	if verbosity == 0 && !quietFlag {
		return nil
	}
	level := slogutil.LevelFromVerbosity(verbosity, quietFlag)
	return &level
}
