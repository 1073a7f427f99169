package main

import (
	"github.com/spf13/cobra"

	"symgraph/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if OutputFormat(formatFlag) == FormatHuman {
			return printResponse(cmd, version.Full())
		}
		return printResponse(cmd, version.Fields())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
