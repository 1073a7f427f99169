// Package mcp exposes the query presets and relationship queries as tools of
// a Model Context Protocol server over stdio.
package mcp

import (
	"context"
	"log/slog"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"symgraph/internal/errors"
	"symgraph/internal/indexstore"
	"symgraph/internal/query"
	"symgraph/internal/version"
)

// Index is the index the server queries. *indexstore.Store satisfies it.
type Index interface {
	query.SymbolIndex
	AwaitConsistency(ctx context.Context) error
	SymbolNames() []string
	Stats() (indexstore.Stats, error)
}

// Options configures the server.
type Options struct {
	ProjectDir        string
	RestrictToProject bool
	IgnoreCase        bool
	MaxSuggestions    int
}

// Server is an MCP server answering symbol queries. Tool calls run one at a
// time: a call may reload the index, and a reload must not land between the
// index reads of another call.
type Server struct {
	mu     sync.Mutex
	index  Index
	exec   *query.Executor
	opts   Options
	logger *slog.Logger
	server *mcpsdk.Server
}

// NewServer creates a server with every tool registered.
func NewServer(index Index, opts Options, logger *slog.Logger) *Server {
	s := &Server{
		index: index,
		exec: query.NewExecutor(index, query.ExecutorOptions{
			ProjectDir:        opts.ProjectDir,
			RestrictToProject: opts.RestrictToProject,
		}, logger),
		opts:   opts,
		logger: logger,
		server: mcpsdk.NewServer(&mcpsdk.Implementation{
			Name:    version.Name,
			Version: version.Version,
		}, nil),
	}
	s.registerTools()
	return s
}

// Run serves over stdin/stdout until the client disconnects or ctx is done.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("MCP server starting", "version", version.Version)
	return s.server.Run(ctx, &mcpsdk.StdioTransport{})
}

// Connect serves a single session over t. Used for in-process clients.
func (s *Server) Connect(ctx context.Context, t mcpsdk.Transport) (*mcpsdk.ServerSession, error) {
	return s.server.Connect(ctx, t, nil)
}

// acquire takes the query lock and brings the index up to date. The caller
// queries, then calls release. An unloaded index is not an error here:
// queries against it return nothing.
func (s *Server) acquire(ctx context.Context) (release func()) {
	s.mu.Lock()
	err := s.index.AwaitConsistency(ctx)
	switch {
	case err == nil:
	case errors.HasCode(err, errors.IndexUnavailable):
		s.logger.Debug("Query against unloaded index")
	default:
		s.logger.Warn("Index consistency check failed", "error", err)
	}
	return s.mu.Unlock
}
