// Package indexstore is the symbol index the query layer reads from. It
// imports SCIP indexes (or TOML fixtures) into a SQLite database and answers
// the primitive lookups: canonical name search, occurrences by USR, related
// occurrences by USR and declarations by file.
package indexstore

import (
	"database/sql"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"symgraph/internal/symbol"
)

// Options configures imports into the store.
type Options struct {
	// ProjectDir is joined with document paths. Empty means the index's own
	// project root.
	ProjectDir string

	// Exclude holds doublestar patterns of document paths to skip.
	Exclude []string

	// ImportWorkers bounds parallel document conversion.
	ImportWorkers int
}

// Store is a SQLite-backed symbol index. Each read takes a shared lock, so a
// reload never runs during a single primitive call. A query spans many
// calls; callers that reload concurrently with queries must serialise the
// two themselves.
type Store struct {
	db     *sql.DB
	path   string
	opts   Options
	logger *slog.Logger

	mu   sync.RWMutex
	meta loadMeta

	staleMu sync.Mutex
	stale   map[string]bool
}

// Open opens or creates the store at path. A store written by an earlier
// run is available immediately.
func Open(path string, opts Options, logger *slog.Logger) (*Store, error) {
	db, err := openDB(path, logger)
	if err != nil {
		return nil, err
	}

	s := &Store{
		db:     db,
		path:   path,
		opts:   opts,
		logger: logger,
		stale:  make(map[string]bool),
	}
	meta, err := readMeta(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.meta = meta
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Available reports whether an index has been loaded.
func (s *Store) Available() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.meta.Generation != ""
}

const occurrenceColumns = `o.id, s.usr, s.name, s.kind, s.language, o.path, o.module, o.line, o.col, o.offset, o.is_system, o.roles, o.seq`

type occurrenceRow struct {
	id  int64
	seq int64
	occ symbol.Occurrence
}

// CanonicalSearch streams the canonical occurrence of every symbol whose
// name matches p, ordered by name then USR, until fn returns false.
// The read lock is released before fn runs, so fn may call back into the
// store.
func (s *Store) CanonicalSearch(p symbol.SearchPattern, fn func(symbol.Occurrence) bool) {
	query := `SELECT ` + occurrenceColumns + `
		FROM occurrences o JOIN symbols s ON s.id = o.symbol_id
		WHERE (o.roles & ?) != 0`
	args := []any{int64(symbol.RoleCanonical)}
	if like := likePattern(p); like != "" {
		query += ` AND s.name LIKE ? ESCAPE '\'`
		args = append(args, like)
	}
	query += ` ORDER BY s.name, s.usr, o.seq`

	s.mu.RLock()
	rows := s.queryOccurrences("canonicalSearch", query, args...)
	s.mu.RUnlock()

	seen := make(map[string]bool, len(rows))
	for _, occ := range rows {
		if seen[occ.Symbol.USR] || !matchSearchPattern(occ.Symbol.Name, p) {
			continue
		}
		seen[occ.Symbol.USR] = true
		if !fn(occ) {
			return
		}
	}
}

// Occurrences returns occurrences of usr carrying any of roles, in index
// order. A zero mask means every role.
func (s *Store) Occurrences(usr string, roles symbol.Role) []symbol.Occurrence {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryOccurrences("occurrences", `SELECT `+occurrenceColumns+`
		FROM occurrences o JOIN symbols s ON s.id = o.symbol_id
		WHERE s.usr = ? AND (o.roles & ?) != 0
		ORDER BY o.seq`, usr, int64(roleMask(roles)))
}

// RelatedOccurrences returns occurrences holding a relation to usr whose
// relation roles include any of roles, in index order.
func (s *Store) RelatedOccurrences(usr string, roles symbol.Role) []symbol.Occurrence {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryOccurrences("relatedOccurrences", `SELECT DISTINCT `+occurrenceColumns+`
		FROM relations r
		JOIN symbols rs ON rs.id = r.symbol_id
		JOIN occurrences o ON o.id = r.occurrence_id
		JOIN symbols s ON s.id = o.symbol_id
		WHERE rs.usr = ? AND (r.roles & ?) != 0
		ORDER BY o.seq`, usr, int64(roleMask(roles)))
}

// SymbolsDeclaredInFile returns the definition and declaration occurrences
// in path, in file order.
func (s *Store) SymbolsDeclaredInFile(path string) []symbol.Occurrence {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryOccurrences("symbolsDeclaredInFile", `SELECT `+occurrenceColumns+`
		FROM occurrences o JOIN symbols s ON s.id = o.symbol_id
		WHERE o.path = ? AND (o.roles & ?) != 0
		ORDER BY o.seq`, path, int64(symbol.RoleDefinition|symbol.RoleDeclaration))
}

// SymbolNames returns the distinct names of canonical symbols, sorted.
func (s *Store) SymbolNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT DISTINCT s.name
		FROM symbols s JOIN occurrences o ON o.symbol_id = s.id
		WHERE (o.roles & ?) != 0 AND s.name != ''
		ORDER BY s.name`, int64(symbol.RoleCanonical))
	if err != nil {
		s.logger.Error("Index query failed", "op", "symbolNames", "error", err)
		return nil
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			s.logger.Error("Index scan failed", "op", "symbolNames", "error", err)
			return names
		}
		names = append(names, name)
	}
	return names
}

// queryOccurrences runs an occurrence query and attaches relations. Errors
// are logged and yield no results; callers hold s.mu.
func (s *Store) queryOccurrences(op, query string, args ...any) []symbol.Occurrence {
	if s.meta.Generation == "" {
		return nil
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		s.logger.Error("Index query failed", "op", op, "error", err)
		return nil
	}
	defer rows.Close()

	var found []occurrenceRow
	for rows.Next() {
		var (
			r        occurrenceRow
			kind     int
			isSystem bool
			roles    int64
		)
		err := rows.Scan(&r.id, &r.occ.Symbol.USR, &r.occ.Symbol.Name, &kind, &r.occ.Symbol.Language,
			&r.occ.Location.Path, &r.occ.Location.ModuleName, &r.occ.Location.Line, &r.occ.Location.Column,
			&r.occ.Location.Offset, &isSystem, &roles, &r.seq)
		if err != nil {
			s.logger.Error("Index scan failed", "op", op, "error", err)
			return nil
		}
		r.occ.Symbol.Kind = NativeKind(kind).Kind()
		r.occ.Location.IsSystem = isSystem
		r.occ.Location.IsStale = s.isStale(r.occ.Location.Path)
		r.occ.Roles = symbol.Role(roles)
		found = append(found, r)
	}
	if err := rows.Err(); err != nil {
		s.logger.Error("Index query failed", "op", op, "error", err)
		return nil
	}

	ids := make([]int64, len(found))
	for i, r := range found {
		ids[i] = r.id
	}
	relations, err := s.loadRelations(ids)
	if err != nil {
		s.logger.Error("Index relation query failed", "op", op, "error", err)
		return nil
	}

	out := make([]symbol.Occurrence, len(found))
	for i, r := range found {
		r.occ.Relations = relations[r.id]
		out[i] = r.occ
	}
	return out
}

const relationBatchSize = 500

// loadRelations fetches relations for occurrence ids in ord order.
func (s *Store) loadRelations(ids []int64) (map[int64][]symbol.Relation, error) {
	out := make(map[int64][]symbol.Relation)
	for start := 0; start < len(ids); start += relationBatchSize {
		batch := ids[start:min(start+relationBatchSize, len(ids))]
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(batch)), ",")
		args := make([]any, len(batch))
		for i, id := range batch {
			args[i] = id
		}

		rows, err := s.db.Query(`SELECT r.occurrence_id, s.usr, s.name, s.kind, s.language, r.roles
			FROM relations r JOIN symbols s ON s.id = r.symbol_id
			WHERE r.occurrence_id IN (`+placeholders+`)
			ORDER BY r.occurrence_id, r.ord`, args...)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var (
				id    int64
				rel   symbol.Relation
				kind  int
				roles int64
			)
			if err := rows.Scan(&id, &rel.Symbol.USR, &rel.Symbol.Name, &kind, &rel.Symbol.Language, &roles); err != nil {
				rows.Close()
				return nil, err
			}
			rel.Symbol.Kind = NativeKind(kind).Kind()
			rel.Roles = symbol.Role(roles)
			out[id] = append(out[id], rel)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// isStale reports whether path was modified after the index was loaded.
// Results are cached per load.
func (s *Store) isStale(path string) bool {
	if path == "" || s.meta.LoadedAt.IsZero() {
		return false
	}
	s.staleMu.Lock()
	defer s.staleMu.Unlock()

	if stale, ok := s.stale[path]; ok {
		return stale
	}
	stale := false
	if info, err := os.Stat(path); err == nil {
		stale = info.ModTime().After(s.meta.LoadedAt)
	}
	s.stale[path] = stale
	return stale
}

func (s *Store) resetStale() {
	s.staleMu.Lock()
	s.stale = make(map[string]bool)
	s.staleMu.Unlock()
}

func roleMask(roles symbol.Role) symbol.Role {
	if roles.IsEmpty() {
		return symbol.RoleAll
	}
	return roles
}

// Stats summarises the loaded index.
type Stats struct {
	Generation  string    `json:"generation" yaml:"generation"`
	Source      string    `json:"source" yaml:"source"`
	ProjectRoot string    `json:"projectRoot" yaml:"projectRoot"`
	Fingerprint string    `json:"fingerprint" yaml:"fingerprint"`
	LoadedAt    time.Time `json:"loadedAt" yaml:"loadedAt"`
	Symbols     int       `json:"symbols" yaml:"symbols"`
	Occurrences int       `json:"occurrences" yaml:"occurrences"`
	Relations   int       `json:"relations" yaml:"relations"`
	Files       int       `json:"files" yaml:"files"`
}

// Stats returns counts for the loaded index.
func (s *Store) Stats() (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		Generation:  s.meta.Generation,
		Source:      s.meta.Source,
		ProjectRoot: s.meta.ProjectRoot,
		Fingerprint: s.meta.Fingerprint,
		LoadedAt:    s.meta.LoadedAt,
	}
	counts := []struct {
		query string
		dst   *int
	}{
		{"SELECT COUNT(*) FROM symbols", &st.Symbols},
		{"SELECT COUNT(*) FROM occurrences", &st.Occurrences},
		{"SELECT COUNT(*) FROM relations", &st.Relations},
		{"SELECT COUNT(DISTINCT path) FROM occurrences WHERE path != ''", &st.Files},
	}
	for _, c := range counts {
		if err := s.db.QueryRow(c.query).Scan(c.dst); err != nil {
			return st, err
		}
	}
	return st, nil
}
