package indexstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
)

const currentSchemaVersion = 1

func initializeSchema(db *sql.DB, logger *slog.Logger) error {
	return withTx(context.Background(), db, logger, func(tx *sql.Tx) error {
		steps := []func(*sql.Tx) error{
			createSchemaVersionTable,
			createMetaTable,
			createSymbolsTable,
			createOccurrencesTable,
			createRelationsTable,
		}
		for _, step := range steps {
			if err := step(tx); err != nil {
				return err
			}
		}
		if err := setSchemaVersion(tx, currentSchemaVersion); err != nil {
			return err
		}

		logger.Debug("Index store schema initialized", "version", currentSchemaVersion)
		return nil
	})
}

// runMigrations rebuilds stores written by an incompatible schema. The store
// is a cache of the SCIP file, so a rebuild only costs a re-import.
func runMigrations(db *sql.DB, logger *slog.Logger) error {
	version, err := getSchemaVersion(db)
	if err != nil {
		return err
	}
	if version == currentSchemaVersion {
		return nil
	}

	logger.Info("Rebuilding index store schema", "fromVersion", version, "toVersion", currentSchemaVersion)
	err = withTx(context.Background(), db, logger, func(tx *sql.Tx) error {
		for _, table := range []string{"relations", "occurrences", "symbols", "index_meta", "schema_version"} {
			if _, err := tx.Exec("DROP TABLE IF EXISTS " + table); err != nil {
				return fmt.Errorf("failed to drop %s: %w", table, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return initializeSchema(db, logger)
}

func getSchemaVersion(db *sql.DB) (int, error) {
	var name string
	err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'`).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var version int
	err = db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return version, err
}

func setSchemaVersion(tx *sql.Tx, version int) error {
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	_, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}

func createSchemaVersionTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	return err
}

// createMetaTable holds load bookkeeping: generation, source, fingerprint, loaded_at.
func createMetaTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS index_meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create index_meta table: %w", err)
	}
	return nil
}

func createSymbolsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS symbols (
			id INTEGER PRIMARY KEY,
			usr TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			kind INTEGER NOT NULL DEFAULT 0,
			language TEXT NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create symbols table: %w", err)
	}
	_, err = tx.Exec("CREATE INDEX IF NOT EXISTS idx_symbols_name ON symbols(name)")
	return err
}

// createOccurrencesTable creates occurrences; seq preserves index order.
func createOccurrencesTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS occurrences (
			id INTEGER PRIMARY KEY,
			symbol_id INTEGER NOT NULL REFERENCES symbols(id) ON DELETE CASCADE,
			path TEXT NOT NULL,
			module TEXT NOT NULL DEFAULT '',
			line INTEGER NOT NULL,
			col INTEGER NOT NULL,
			offset INTEGER NOT NULL DEFAULT 0,
			is_system INTEGER NOT NULL DEFAULT 0,
			roles INTEGER NOT NULL,
			seq INTEGER NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create occurrences table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_occurrences_symbol ON occurrences(symbol_id, seq)",
		"CREATE INDEX IF NOT EXISTS idx_occurrences_path ON occurrences(path, seq)",
	}
	for _, indexSQL := range indexes {
		if _, err := tx.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

// createRelationsTable creates relations; ord preserves relation order within an occurrence.
func createRelationsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS relations (
			occurrence_id INTEGER NOT NULL REFERENCES occurrences(id) ON DELETE CASCADE,
			ord INTEGER NOT NULL,
			symbol_id INTEGER NOT NULL REFERENCES symbols(id) ON DELETE CASCADE,
			roles INTEGER NOT NULL,
			PRIMARY KEY (occurrence_id, ord)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create relations table: %w", err)
	}
	_, err = tx.Exec("CREATE INDEX IF NOT EXISTS idx_relations_symbol ON relations(symbol_id)")
	return err
}
