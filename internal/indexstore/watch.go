package indexstore

import (
	"context"

	"symgraph/internal/errors"
	"symgraph/internal/watcher"
)

// ReloadFunc observes the outcome of a watch-triggered reload.
type ReloadFunc func(stats Stats, err error)

// Watch re-imports the source file whenever it changes, until ctx is
// cancelled. onReload may be nil.
func (s *Store) Watch(ctx context.Context, cfg watcher.Config, onReload ReloadFunc) error {
	source := s.Source()
	if source == "" {
		return errors.New(errors.IndexUnavailable, "no index has been loaded", nil)
	}

	w, err := watcher.New(cfg, s.logger, func(events []watcher.Event) {
		if ctx.Err() != nil {
			return
		}
		s.logger.Debug("Index source changed", "events", len(events), "source", source)

		err := s.AwaitConsistency(ctx)
		if onReload == nil {
			return
		}
		stats, statsErr := s.Stats()
		if err == nil {
			err = statsErr
		}
		onReload(stats, err)
	})
	if err != nil {
		return err
	}
	if err := w.Add(source); err != nil {
		w.Close()
		return err
	}

	s.logger.Info("Watching index source", "source", source)
	return w.Run(ctx)
}
