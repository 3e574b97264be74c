// Package store is kunai's GraphStore: the persistent typed multigraph
// backed by SQLite. Schema, connection setup and transaction plumbing are
// grounded on the teacher's internal/store/store.go; the table shapes and
// query semantics are grounded on
// original_source/src/app/model/model.cpp's m_createSchema and the query
// methods it drives.
package store

import (
	"database/sql"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/mattn/go-sqlite3"

	"github.com/jward/kunai/internal/classify"
	"github.com/jward/kunai/internal/graph"
)

// nodeCacheSize bounds the in-memory path->id cache consulted by upsertNode.
// Large enough to cover the working set of a single large ingestion's most
// frequently shared headers without growing unbounded on huge graphs.
const nodeCacheSize = 4096

// Store is the SQLite-backed GraphStore: nodes (targets), directed edges
// (dependency links), a key/value metadata table, and the extension table.
type Store struct {
	db         *sql.DB
	classifier *classify.Classifier
	nodeCache  *lru.Cache[string, int64]

	// tx is set while a caller-managed batch (see Batch) is in progress, so
	// the per-call writer methods (InsertBuildLink, InsertDepsEntry, ...)
	// join the caller's transaction instead of opening their own. kunai's
	// core is single-threaded (spec.md §5), so a single field is enough.
	tx *sql.Tx
}

var _ graph.BuildWriter = (*Store)(nil)
var _ graph.DepsWriter = (*Store)(nil)
var _ graph.CMakeTargetWriter = (*Store)(nil)

// Open opens or creates the SQLite database at dbPath, in WAL mode with
// foreign keys enforced, matching the teacher's connection string exactly.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	cache, err := lru.New[string, int64](nodeCacheSize)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create node cache: %w", err)
	}

	s := &Store{db: db, classifier: classify.New(), nodeCache: cache}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.seedDefaultExtensions(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB, for callers that need direct query
// access.
func (s *Store) DB() *sql.DB {
	return s.db
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS targets (
  id   INTEGER PRIMARY KEY,
  path TEXT UNIQUE NOT NULL,
  type INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS links (
  from_id INTEGER NOT NULL,
  to_id   INTEGER NOT NULL,
  PRIMARY KEY (from_id, to_id),
  FOREIGN KEY (from_id) REFERENCES targets(id),
  FOREIGN KEY (to_id) REFERENCES targets(id)
);

CREATE TABLE IF NOT EXISTS metadata (
  key   TEXT PRIMARY KEY,
  value TEXT
);

CREATE TABLE IF NOT EXISTS file_extensions (
  id   INTEGER PRIMARY KEY,
  ext  TEXT NOT NULL,
  type INTEGER NOT NULL,
  UNIQUE (ext, type)
);

CREATE INDEX IF NOT EXISTS idx_links_from ON links(from_id);
CREATE INDEX IF NOT EXISTS idx_links_to ON links(to_id);
CREATE INDEX IF NOT EXISTS idx_targets_source    ON targets(type) WHERE type = 1;
CREATE INDEX IF NOT EXISTS idx_targets_header    ON targets(type) WHERE type = 2;
CREATE INDEX IF NOT EXISTS idx_targets_object    ON targets(type) WHERE type = 3;
CREATE INDEX IF NOT EXISTS idx_targets_library   ON targets(type) WHERE type = 4;
CREATE INDEX IF NOT EXISTS idx_targets_binary    ON targets(type) WHERE type = 5;
CREATE INDEX IF NOT EXISTS idx_targets_input     ON targets(type) WHERE type = 6;
`

func (s *Store) migrate() error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// seedDefaultExtensions loads the classifier's built-in defaults into the
// file_extensions table if they aren't already present. Safe to call on an
// existing database: INSERT OR IGNORE keeps it idempotent.
func (s *Store) seedDefaultExtensions() error {
	seed := func(exts []string, kind graph.Kind) error {
		for _, ext := range exts {
			if err := s.persistExtension(ext, kind); err != nil {
				return err
			}
		}
		return nil
	}
	if err := seed(classify.DefaultSources, graph.Source); err != nil {
		return err
	}
	if err := seed(classify.DefaultHeaders, graph.Header); err != nil {
		return err
	}
	if err := seed(classify.DefaultLibraries, graph.Library); err != nil {
		return err
	}
	return seed(classify.DefaultInputs, graph.Input)
}
