package main

import (
	"github.com/spf13/cobra"

	"symgraph/internal/source"
)

var (
	sourceContext int
	sourceFull    bool
)

var sourceCmd = &cobra.Command{
	Use:   "source <usr>",
	Short: "Print the source line declaring a symbol",
	Long: `Print the line declaring a symbol, optionally with surrounding lines or
the whole file.

Examples:
  symgraph source s:Circle
  symgraph source s:Circle --context 3
  symgraph source s:Circle --full`,
	Args: cobra.ExactArgs(1),
	RunE: runSource,
}

func init() {
	sourceCmd.Flags().IntVarP(&sourceContext, "context", "n", 0, "Lines of context around the declaration")
	sourceCmd.Flags().BoolVar(&sourceFull, "full", false, "Print the whole file")
	rootCmd.AddCommand(sourceCmd)
}

func runSource(cmd *cobra.Command, args []string) error {
	e, err := openEngine(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()

	targets, err := e.lookup("", args[0], nil)
	if err != nil {
		return err
	}
	target := targets[0]
	resp := &SourceResponse{Symbol: target.View()}
	if sourceFull {
		resp.Contents, err = source.Contents(target.Location())
	} else {
		resp.Lines, err = source.Excerpt(target.Location(), sourceContext, sourceContext)
	}
	if err != nil {
		return err
	}
	return printResponse(cmd, resp)
}
