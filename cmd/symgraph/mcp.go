package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"symgraph/internal/config"
	"symgraph/internal/errors"
	"symgraph/internal/mcp"
	"symgraph/internal/paths"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server over stdio",
	Long: `Start the Model Context Protocol (MCP) server.

The server speaks JSON-RPC 2.0 over stdin/stdout; logs go to stderr. It
exposes the following tools:
  - find_symbols: Find symbols with a query preset
  - subclasses, conformances, extensions, inheritance: Type relationships
  - callers, callees: Call graph neighbours of a function
  - declaration: Source lines declaring a symbol
  - index_status: Counts and provenance of the loaded index

The server starts even when no index has been imported yet; queries then
return empty results until "symgraph index" runs.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

// mcpLogFile sends logs to .symgraph/logs/mcp.log when no log file is
// configured, since clients rarely surface a server's stderr.
func mcpLogFile(root string, cfg *config.Config) {
	if cfg.Logging.File == "" {
		cfg.Logging.File = filepath.Join(paths.LogsDir(root), "mcp.log")
	}
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := openEngine(ctx, cmd.ErrOrStderr(), mcpLogFile)
	if errors.HasCode(err, errors.IndexMissing) {
		e, err = openStore(cmd.ErrOrStderr(), mcpLogFile)
	}
	if err != nil {
		return err
	}
	defer e.Close()

	e.logger.Info("Serving project", "root", e.root, "store", e.cfg.Index.StorePath)
	server := mcp.NewServer(e.store, mcp.Options{
		ProjectDir:        e.cfg.ProjectDir,
		RestrictToProject: e.cfg.Query.RestrictToProject,
		IgnoreCase:        e.cfg.Query.IgnoreCase,
		MaxSuggestions:    e.cfg.Query.MaxSuggestions,
	}, e.logger)
	return server.Run(ctx)
}
