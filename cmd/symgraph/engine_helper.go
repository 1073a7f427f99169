package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"symgraph/internal/config"
	"symgraph/internal/errors"
	"symgraph/internal/indexstore"
	"symgraph/internal/paths"
	"symgraph/internal/query"
	"symgraph/internal/slogutil"
)

// engine bundles what every query command needs.
type engine struct {
	root   string
	cfg    *config.Config
	logger *slog.Logger
	store  *indexstore.Store
	exec   *query.Executor

	logCloser io.Closer
}

// projectRoot resolves --project, falling back to the nearest directory
// holding .symgraph.
func projectRoot() (string, error) {
	if projectFlag != "" {
		return projectFlag, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return paths.FindProjectRoot(wd), nil
}

// loadConfig reads and validates the project configuration.
func loadConfig() (string, *config.Config, error) {
	root, err := projectRoot()
	if err != nil {
		return "", nil, err
	}
	cfg, err := config.LoadConfig(root)
	if err != nil {
		return "", nil, errors.New(errors.ConfigInvalid, "failed to load config", err)
	}
	if err := cfg.Validate(); err != nil {
		return "", nil, errors.New(errors.ConfigInvalid, "invalid config", err)
	}
	return root, cfg, nil
}

// openStore loads config and opens the store without touching its contents.
// Each adjust func may rewrite the loaded config first.
func openStore(stderr io.Writer, adjust ...func(root string, cfg *config.Config)) (*engine, error) {
	root, cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	for _, fn := range adjust {
		fn(root, cfg)
	}
	displayRoot = cfg.ProjectDir

	logger, closer, err := slogutil.FromConfig(cfg.Logging, slogutil.Options{
		Stderr:   stderr,
		CLILevel: cliLevel(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	store, err := indexstore.Open(cfg.Index.StorePath, indexstore.Options{
		ProjectDir:    cfg.ProjectDir,
		Exclude:       cfg.Index.Exclude,
		ImportWorkers: cfg.Index.ImportWorkers,
	}, logger)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}

	return &engine{
		root:      root,
		cfg:       cfg,
		logger:    logger,
		store:     store,
		logCloser: closer,
		exec: query.NewExecutor(store, query.ExecutorOptions{
			ProjectDir:        cfg.ProjectDir,
			RestrictToProject: cfg.Query.RestrictToProject,
		}, logger),
	}, nil
}

// openEngine opens the store and brings it up to date with the configured
// SCIP index. A store that was never loaded imports it now; a loaded one is
// reloaded only when its source changed.
func openEngine(ctx context.Context, stderr io.Writer, adjust ...func(root string, cfg *config.Config)) (*engine, error) {
	e, err := openStore(stderr, adjust...)
	if err != nil {
		return nil, err
	}
	if e.store.Available() {
		err = e.store.AwaitConsistency(ctx)
	} else {
		err = e.store.Load(ctx, e.cfg.Index.ScipPath)
	}
	if err != nil {
		_ = e.Close()
		return nil, err
	}
	return e, nil
}

func (e *engine) Close() error {
	err := e.store.Close()
	if cerr := e.logCloser.Close(); err == nil {
		err = cerr
	}
	return err
}

// lookup resolves a command's target: a USR names one symbol, a name may
// match several declarations.
func (e *engine) lookup(name, usr string, spec func(string) query.Spec) ([]*query.ResolvedSymbol, error) {
	if usr != "" {
		target, ok := e.exec.ResolveUSR(usr)
		if !ok {
			return nil, errors.Newf(errors.SymbolNotFound, "no declaration of %s", usr)
		}
		return []*query.ResolvedSymbol{target}, nil
	}
	targets := e.exec.Run(spec(name))
	if len(targets) == 0 {
		msg := fmt.Sprintf("no symbol named %q", name)
		if s := query.Suggest(e.store.SymbolNames(), name, e.cfg.Query.MaxSuggestions); len(s) > 0 {
			msg += " (did you mean " + strings.Join(s, ", ") + "?)"
		}
		return nil, errors.New(errors.SymbolNotFound, msg, nil)
	}
	return targets, nil
}
