package indexstore

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	scippb "github.com/sourcegraph/scip/bindings/go/scip"
	"golang.org/x/crypto/blake2b"

	"symgraph/internal/errors"
)

// loadMeta is the bookkeeping of the last successful load, persisted in index_meta.
type loadMeta struct {
	Generation  string
	Source      string
	ProjectRoot string
	Fingerprint string
	LoadedAt    time.Time
}

const (
	metaGeneration  = "generation"
	metaSource      = "source"
	metaProjectRoot = "project_root"
	metaFingerprint = "fingerprint"
	metaLoadedAt    = "loaded_at"
)

func readMeta(db *sql.DB) (loadMeta, error) {
	rows, err := db.Query("SELECT key, value FROM index_meta")
	if err != nil {
		return loadMeta{}, fmt.Errorf("failed to read index metadata: %w", err)
	}
	defer rows.Close()

	var m loadMeta
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return loadMeta{}, err
		}
		switch key {
		case metaGeneration:
			m.Generation = value
		case metaSource:
			m.Source = value
		case metaProjectRoot:
			m.ProjectRoot = value
		case metaFingerprint:
			m.Fingerprint = value
		case metaLoadedAt:
			m.LoadedAt, _ = time.Parse(time.RFC3339Nano, value)
		}
	}
	return m, rows.Err()
}

func fingerprint(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Load imports the index at path, replacing the current contents. Files
// ending in .toml are fixtures; anything else is SCIP, optionally zstd
// compressed. On failure the previous index stays in place.
func (s *Store) Load(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.New(errors.IndexLoadFailed, fmt.Sprintf("invalid index path %s", path), err)
	}
	data, err := readIndexFile(abs)
	if err != nil {
		return err
	}
	return s.load(ctx, abs, data)
}

func (s *Store) load(ctx context.Context, source string, data []byte) error {
	start := time.Now()

	var snap *Snapshot
	var err error
	if strings.EqualFold(filepath.Ext(source), ".toml") {
		snap, err = decodeFixture(source, s.opts.ProjectDir, data)
	} else {
		var index *scippb.Index
		index, err = decodeSCIP(source, data)
		if err == nil {
			snap, err = newSCIPImporter(s.opts, s.logger).importSCIP(ctx, source, index)
		}
	}
	if err != nil {
		s.logger.Error("Index load failed", "source", source, "error", err)
		if errors.CodeOf(err) == "" {
			err = errors.New(errors.IndexLoadFailed, fmt.Sprintf("failed to import %s", source), err)
		}
		return err
	}

	meta := loadMeta{
		Generation:  uuid.NewString(),
		Source:      source,
		ProjectRoot: snap.ProjectRoot,
		Fingerprint: fingerprint(data),
		LoadedAt:    time.Now().UTC(),
	}
	if err := s.writeSnapshot(ctx, snap, meta); err != nil {
		s.logger.Error("Index store write failed", "source", source, "error", err)
		return errors.New(errors.IndexLoadFailed, fmt.Sprintf("failed to store index from %s", source), err)
	}

	s.logger.Info("Index loaded",
		"source", source,
		"generation", meta.Generation,
		"symbols", len(snap.Symbols()),
		"occurrences", len(snap.Occurrences()),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// writeSnapshot replaces the stored index with snap in one transaction.
func (s *Store) writeSnapshot(ctx context.Context, snap *Snapshot, meta loadMeta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := withTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		for _, table := range []string{"relations", "occurrences", "symbols", "index_meta"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}

		symStmt, err := tx.PrepareContext(ctx, "INSERT INTO symbols (usr, name, kind, language) VALUES (?, ?, ?, ?)")
		if err != nil {
			return err
		}
		defer symStmt.Close()

		ids := make(map[string]int64, len(snap.Symbols()))
		for _, sym := range snap.Symbols() {
			res, err := symStmt.ExecContext(ctx, sym.USR, sym.Name, int(NativeKindOf(sym.Kind)), sym.Language)
			if err != nil {
				return fmt.Errorf("failed to insert symbol %s: %w", sym.USR, err)
			}
			if ids[sym.USR], err = res.LastInsertId(); err != nil {
				return err
			}
		}

		occStmt, err := tx.PrepareContext(ctx, `INSERT INTO occurrences
			(symbol_id, path, module, line, col, offset, is_system, roles, seq)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer occStmt.Close()

		relStmt, err := tx.PrepareContext(ctx, "INSERT INTO relations (occurrence_id, ord, symbol_id, roles) VALUES (?, ?, ?, ?)")
		if err != nil {
			return err
		}
		defer relStmt.Close()

		for seq, occ := range snap.Occurrences() {
			loc := occ.Location
			res, err := occStmt.ExecContext(ctx, ids[occ.Symbol.USR], loc.Path, loc.ModuleName,
				loc.Line, loc.Column, loc.Offset, loc.IsSystem, int64(occ.Roles), seq)
			if err != nil {
				return fmt.Errorf("failed to insert occurrence of %s: %w", occ.Symbol.USR, err)
			}
			occID, err := res.LastInsertId()
			if err != nil {
				return err
			}
			for ord, rel := range occ.Relations {
				if _, err := relStmt.ExecContext(ctx, occID, ord, ids[rel.Symbol.USR], int64(rel.Roles)); err != nil {
					return fmt.Errorf("failed to insert relation of %s: %w", occ.Symbol.USR, err)
				}
			}
		}

		metaRows := map[string]string{
			metaGeneration:  meta.Generation,
			metaSource:      meta.Source,
			metaProjectRoot: meta.ProjectRoot,
			metaFingerprint: meta.Fingerprint,
			metaLoadedAt:    meta.LoadedAt.Format(time.RFC3339Nano),
		}
		for k, v := range metaRows {
			if _, err := tx.ExecContext(ctx, "INSERT INTO index_meta (key, value) VALUES (?, ?)", k, v); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.meta = meta
	s.resetStale()
	return nil
}

// AwaitConsistency blocks until the store reflects the current contents of
// the source it was loaded from, re-importing when the file changed. It
// fails with IndexUnavailable when nothing was ever loaded.
func (s *Store) AwaitConsistency(ctx context.Context) error {
	s.mu.RLock()
	meta := s.meta
	s.mu.RUnlock()

	if meta.Generation == "" {
		return errors.New(errors.IndexUnavailable, "no index has been loaded", nil)
	}
	data, err := readIndexFile(meta.Source)
	if err != nil {
		return err
	}
	if fingerprint(data) == meta.Fingerprint {
		return nil
	}

	s.logger.Info("Index source changed, reloading", "source", meta.Source)
	return s.load(ctx, meta.Source, data)
}

// Source returns the file the current index was loaded from.
func (s *Store) Source() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.meta.Source
}
