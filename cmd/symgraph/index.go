package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"symgraph/internal/indexstore"
	"symgraph/internal/watcher"
)

var indexCmd = &cobra.Command{
	Use:   "index [scip-file]",
	Short: "Import a SCIP index into the store",
	Long: `Import a SCIP index (or a TOML fixture) into the local store, replacing
whatever was loaded before, and print the resulting counts.

Without an argument the configured index.scipPath is imported.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the loaded index",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Reload the store whenever the SCIP index changes",
	Long: `Watch the loaded index's source file and re-import it after each change.
Runs until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(watchCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	e, err := openStore(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()

	path := e.cfg.Index.ScipPath
	if len(args) > 0 {
		path = args[0]
	}
	if err := e.store.Load(cmd.Context(), path); err != nil {
		return err
	}
	return printStats(cmd, e)
}

func runStatus(cmd *cobra.Command, args []string) error {
	e, err := openEngine(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()
	return printStats(cmd, e)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := openEngine(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.Close()

	cfg := watcher.DefaultConfig()
	cfg.DebounceMs = e.cfg.Watch.DebounceMs
	return e.store.Watch(ctx, cfg, func(stats indexstore.Stats, err error) {
		if err != nil {
			e.logger.Error("Reload failed", "error", err)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "reloaded %s: %d symbols, %d occurrences\n",
			stats.Source, stats.Symbols, stats.Occurrences)
	})
}

func printStats(cmd *cobra.Command, e *engine) error {
	stats, err := e.store.Stats()
	if err != nil {
		return err
	}
	return printResponse(cmd, &stats)
}
