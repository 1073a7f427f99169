package slogutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"symgraph/internal/config"
)

// Options controls FromConfig. CLILevel, when set, overrides the configured level.
type Options struct {
	Stderr   io.Writer
	CLILevel *slog.Level
}

// FromConfig builds the process logger from the logging config: stderr in the
// configured format, tee'd to logging.file (with size rotation) when set.
// The returned closer releases the file and is never nil.
func FromConfig(cfg config.LoggingConfig, opts Options) (*slog.Logger, io.Closer, error) {
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	level := LevelFromString(cfg.Level)
	if opts.CLILevel != nil {
		level = *opts.CLILevel
	}

	if cfg.File == "" {
		return NewFormattedLogger(stderr, level, cfg.Format), nopCloser{}, nil
	}
	console := newFormatHandler(stderr, level, cfg.Format)

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
		return nil, nil, err
	}
	rf, err := OpenRotatingFile(cfg.File, ParseSize(cfg.MaxSize), cfg.MaxBackups)
	if err != nil {
		return nil, nil, err
	}

	// -q silences the console, not the configured file level.
	fileLevel := min(level, LevelFromString(cfg.Level))
	file := NewHandler(rf, &slog.HandlerOptions{Level: fileLevel})

	return slog.New(NewTeeHandler(console, file)), rf, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
